package core

import (
	"context"
	"fmt"
	"math/big"
	"strconv"
	"strings"
	"sync"

	"gentstaking/native/staking"
)

const poolStreamHistoryLimit = 2048

// PoolUpdate captures a pool record change for feed subscribers.
type PoolUpdate struct {
	Sequence                uint64             `json:"sequence"`
	Cursor                  string             `json:"cursor"`
	Authority               string             `json:"authority"`
	Config                  staking.PoolConfig `json:"config"`
	TotalStaked             *big.Int           `json:"totalStaked"`
	TotalRewardsDistributed *big.Int           `json:"totalRewardsDistributed"`
	StakeCount              uint64             `json:"stakeCount"`
	Paused                  bool               `json:"paused"`
	Timestamp               int64              `json:"timestamp"`
}

func clonePoolUpdate(update PoolUpdate) PoolUpdate {
	cloned := update
	if update.TotalStaked != nil {
		cloned.TotalStaked = new(big.Int).Set(update.TotalStaked)
	}
	if update.TotalRewardsDistributed != nil {
		cloned.TotalRewardsDistributed = new(big.Int).Set(update.TotalRewardsDistributed)
	}
	return cloned
}

func (n *Node) publishPoolUpdate(update PoolUpdate) {
	if n == nil {
		return
	}

	n.poolStreamMu.Lock()
	if n.poolStreamSubs == nil {
		n.poolStreamSubs = make(map[uint64]chan PoolUpdate)
	}
	n.poolStreamSeq++
	update.Sequence = n.poolStreamSeq
	update.Cursor = strconv.FormatUint(update.Sequence, 10)
	stored := clonePoolUpdate(update)
	n.poolStreamHistory = append(n.poolStreamHistory, stored)
	if len(n.poolStreamHistory) > poolStreamHistoryLimit {
		excess := len(n.poolStreamHistory) - poolStreamHistoryLimit
		trimmed := make([]PoolUpdate, poolStreamHistoryLimit)
		copy(trimmed, n.poolStreamHistory[excess:])
		n.poolStreamHistory = trimmed
	}
	subscribers := make([]chan PoolUpdate, 0, len(n.poolStreamSubs))
	for _, ch := range n.poolStreamSubs {
		subscribers = append(subscribers, ch)
	}
	n.poolStreamMu.Unlock()

	broadcast := clonePoolUpdate(update)
	for _, ch := range subscribers {
		select {
		case ch <- broadcast:
		default:
		}
	}
}

// SubscribePoolChanges registers a subscriber for pool record changes starting
// after the supplied cursor. Slow consumers drop updates rather than block the
// publisher; the returned backlog replays retained history past the cursor.
func (n *Node) SubscribePoolChanges(ctx context.Context, cursor string) (<-chan PoolUpdate, func(), []PoolUpdate, error) {
	if n == nil {
		return nil, nil, nil, fmt.Errorf("node not initialised")
	}
	updates := make(chan PoolUpdate, 32)

	var since uint64
	if trimmed := strings.TrimSpace(cursor); trimmed != "" {
		if parsed, err := strconv.ParseUint(trimmed, 10, 64); err == nil {
			since = parsed
		}
	}

	n.poolStreamMu.Lock()
	if n.poolStreamSubs == nil {
		n.poolStreamSubs = make(map[uint64]chan PoolUpdate)
	}
	id := n.poolStreamNextID
	n.poolStreamNextID++
	n.poolStreamSubs[id] = updates
	history := make([]PoolUpdate, len(n.poolStreamHistory))
	copy(history, n.poolStreamHistory)
	n.poolStreamMu.Unlock()

	backlog := make([]PoolUpdate, 0, len(history))
	for _, entry := range history {
		if entry.Sequence > since {
			backlog = append(backlog, clonePoolUpdate(entry))
		}
	}

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			n.poolStreamMu.Lock()
			sub, ok := n.poolStreamSubs[id]
			if ok {
				delete(n.poolStreamSubs, id)
				close(sub)
			}
			n.poolStreamMu.Unlock()
		})
	}

	if ctx != nil {
		go func() {
			<-ctx.Done()
			cancel()
		}()
	}

	return updates, cancel, backlog, nil
}
