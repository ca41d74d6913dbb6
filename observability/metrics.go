package observability

import (
	"math/big"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

type stakingMetrics struct {
	operations  *prometheus.CounterVec
	events      *prometheus.CounterVec
	totalStaked prometheus.Gauge
	stakeCount  prometheus.Gauge
}

var (
	stakingMetricsOnce sync.Once
	stakingRegistry    *stakingMetrics
)

// Staking returns the metrics registry tracking staking operations and pool
// aggregates.
func Staking() *stakingMetrics {
	stakingMetricsOnce.Do(func() {
		stakingRegistry = &stakingMetrics{
			operations: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: "gent",
				Subsystem: "staking",
				Name:      "operations_total",
				Help:      "Count of staking operations segmented by operation and result.",
			}, []string{"operation", "result"}),
			events: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: "gent",
				Subsystem: "staking",
				Name:      "events_total",
				Help:      "Count of emitted staking events segmented by type.",
			}, []string{"type"}),
			totalStaked: prometheus.NewGauge(prometheus.GaugeOpts{
				Namespace: "gent",
				Subsystem: "staking",
				Name:      "total_staked",
				Help:      "Current aggregate staked principal.",
			}),
			stakeCount: prometheus.NewGauge(prometheus.GaugeOpts{
				Namespace: "gent",
				Subsystem: "staking",
				Name:      "stake_count",
				Help:      "Number of currently active staker records.",
			}),
		}
		prometheus.MustRegister(
			stakingRegistry.operations,
			stakingRegistry.events,
			stakingRegistry.totalStaked,
			stakingRegistry.stakeCount,
		)
	})
	return stakingRegistry
}

// RecordOperation increments the operation counter for the supplied name and
// outcome.
func (m *stakingMetrics) RecordOperation(operation string, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.operations.WithLabelValues(operation, result).Inc()
}

// RecordEvent increments the event counter for the supplied event type.
func (m *stakingMetrics) RecordEvent(eventType string) {
	if m == nil || eventType == "" {
		return
	}
	m.events.WithLabelValues(eventType).Inc()
}

// UpdatePoolAggregates refreshes the gauges mirroring the pool record.
func (m *stakingMetrics) UpdatePoolAggregates(totalStaked *big.Int, stakeCount uint64) {
	if m == nil {
		return
	}
	if totalStaked != nil {
		value, _ := new(big.Float).SetInt(totalStaked).Float64()
		m.totalStaked.Set(value)
	}
	m.stakeCount.Set(float64(stakeCount))
}
