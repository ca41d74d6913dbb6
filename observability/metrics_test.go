package observability

import (
	"errors"
	"math/big"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestRecordOperationSegmentsByResult(t *testing.T) {
	m := Staking()

	before := testutil.ToFloat64(m.operations.WithLabelValues("stake", "ok"))
	m.RecordOperation("stake", nil)
	m.RecordOperation("stake", errors.New("boom"))
	m.RecordOperation("stake", nil)

	require.Equal(t, before+2, testutil.ToFloat64(m.operations.WithLabelValues("stake", "ok")))
	require.Equal(t, float64(1), testutil.ToFloat64(m.operations.WithLabelValues("stake", "error")))
}

func TestRecordEventIgnoresEmptyType(t *testing.T) {
	m := Staking()

	m.RecordEvent("staking.staked")
	m.RecordEvent("")

	require.Equal(t, float64(1), testutil.ToFloat64(m.events.WithLabelValues("staking.staked")))
}

func TestUpdatePoolAggregates(t *testing.T) {
	m := Staking()

	m.UpdatePoolAggregates(big.NewInt(123_456), 7)
	require.Equal(t, float64(123_456), testutil.ToFloat64(m.totalStaked))
	require.Equal(t, float64(7), testutil.ToFloat64(m.stakeCount))

	// A nil aggregate leaves the gauge untouched.
	m.UpdatePoolAggregates(nil, 8)
	require.Equal(t, float64(123_456), testutil.ToFloat64(m.totalStaked))
	require.Equal(t, float64(8), testutil.ToFloat64(m.stakeCount))
}
