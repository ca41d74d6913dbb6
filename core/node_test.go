package core

import (
	"context"
	"math/big"
	"testing"

	"gentstaking/native/staking"
	"gentstaking/storage"
)

const testBaseTime = int64(1_700_000_000)

func testAddr(fill byte) [20]byte {
	var addr [20]byte
	for i := range addr {
		addr[i] = fill
	}
	return addr
}

func testPoolConfig() staking.PoolConfig {
	return staking.PoolConfig{
		EarlyAdopterPeriod:   2_592_000,
		MinStakeDuration:     604_800,
		MaxStakeDuration:     31_536_000,
		RewardsMultiplierBps: 500,
		TreasuryFeeBps:       1_000,
	}
}

func newTestNode(t *testing.T, now *int64) *Node {
	t.Helper()
	return NewNode(storage.NewMemDB(), WithNowFunc(func() int64 { return *now }))
}

func setupStakedNode(t *testing.T, now *int64) ([20]byte, *Node) {
	t.Helper()
	node := newTestNode(t, now)
	authority := testAddr(0x01)
	treasury := testAddr(0x02)
	owner := testAddr(0x0A)

	if _, err := node.InitializePool(authority, treasury, authority, testPoolConfig()); err != nil {
		t.Fatalf("initialize pool: %v", err)
	}
	if _, err := node.CreateStakeAccount(owner, nil); err != nil {
		t.Fatalf("create stake account: %v", err)
	}
	if err := node.CreditBalance(owner, big.NewInt(200_000)); err != nil {
		t.Fatalf("credit balance: %v", err)
	}
	if err := node.CreditBalance(treasury, big.NewInt(1_000_000)); err != nil {
		t.Fatalf("credit treasury: %v", err)
	}
	if err := node.FundVault(treasury, big.NewInt(1_000_000)); err != nil {
		t.Fatalf("fund vault: %v", err)
	}
	return owner, node
}

func TestNodeStakeLifecycle(t *testing.T) {
	now := testBaseTime
	owner, node := setupStakedNode(t, &now)

	if _, err := node.Stake(owner, big.NewInt(100_000), 7_776_000); err != nil {
		t.Fatalf("stake: %v", err)
	}

	snapshot, err := node.PoolSnapshot()
	if err != nil {
		t.Fatalf("pool snapshot: %v", err)
	}
	if snapshot.TotalStaked.String() != "100000" || snapshot.StakeCount != 1 {
		t.Fatalf("unexpected pool snapshot: staked=%s count=%d", snapshot.TotalStaked, snapshot.StakeCount)
	}
	if snapshot.VaultBalance.String() != "1000000" {
		t.Fatalf("unexpected vault balance: %s", snapshot.VaultBalance)
	}

	now = testBaseTime + 7_776_000
	staker, err := node.StakerSnapshot(owner)
	if err != nil {
		t.Fatalf("staker snapshot: %v", err)
	}
	if staker.Claimable.String() != "1849" {
		t.Fatalf("unexpected claimable: %s", staker.Claimable)
	}
	if staker.LockMaturity != testBaseTime+7_776_000 {
		t.Fatalf("unexpected lock maturity: %d", staker.LockMaturity)
	}
	if !staker.EarlyAdopter || staker.Tier != "bronze" {
		t.Fatalf("unexpected staker flags: early=%v tier=%s", staker.EarlyAdopter, staker.Tier)
	}

	result, err := node.Unstake(owner)
	if err != nil {
		t.Fatalf("unstake: %v", err)
	}
	if result.Principal.String() != "100000" || result.Rewards.Owed.String() != "1849" {
		t.Fatalf("unexpected unstake result: %s/%s", result.Principal, result.Rewards.Owed)
	}

	balance, err := node.BalanceOf(owner)
	if err != nil {
		t.Fatalf("balance: %v", err)
	}
	if balance.String() != "201665" {
		t.Fatalf("unexpected final balance: %s", balance)
	}
}

func TestNodeStatePersistsAcrossRestart(t *testing.T) {
	db := storage.NewMemDB()
	now := testBaseTime
	node := NewNode(db, WithNowFunc(func() int64 { return now }))
	authority := testAddr(0x01)
	owner := testAddr(0x0A)

	if _, err := node.InitializePool(authority, testAddr(0x02), authority, testPoolConfig()); err != nil {
		t.Fatalf("initialize pool: %v", err)
	}
	if _, err := node.CreateStakeAccount(owner, nil); err != nil {
		t.Fatalf("create stake account: %v", err)
	}
	if err := node.CreditBalance(owner, big.NewInt(100_000)); err != nil {
		t.Fatalf("credit balance: %v", err)
	}
	if _, err := node.Stake(owner, big.NewInt(100_000), 604_800); err != nil {
		t.Fatalf("stake: %v", err)
	}

	// A fresh node over the same database sees the same records.
	reopened := NewNode(db, WithNowFunc(func() int64 { return now }))
	snapshot, err := reopened.PoolSnapshot()
	if err != nil {
		t.Fatalf("pool snapshot after reopen: %v", err)
	}
	if snapshot.TotalStaked.String() != "100000" || snapshot.StakeCount != 1 {
		t.Fatalf("pool state lost across restart")
	}
	staker, err := reopened.StakerSnapshot(owner)
	if err != nil {
		t.Fatalf("staker snapshot after reopen: %v", err)
	}
	if staker.Amount.String() != "100000" {
		t.Fatalf("staker state lost across restart")
	}
}

func TestNodeCreditBalanceValidation(t *testing.T) {
	now := testBaseTime
	node := newTestNode(t, &now)
	owner := testAddr(0x0A)

	if err := node.CreditBalance(owner, big.NewInt(0)); err == nil {
		t.Fatalf("zero credit must be rejected")
	}
	if err := node.CreditBalance(owner, nil); err == nil {
		t.Fatalf("nil credit must be rejected")
	}
	if err := node.CreditBalance(owner, big.NewInt(42)); err != nil {
		t.Fatalf("credit: %v", err)
	}
	balance, err := node.BalanceOf(owner)
	if err != nil {
		t.Fatalf("balance: %v", err)
	}
	if balance.String() != "42" {
		t.Fatalf("unexpected balance: %s", balance)
	}
}

func TestPoolChangeFeedDeliversUpdates(t *testing.T) {
	now := testBaseTime
	owner, node := setupStakedNode(t, &now)

	ctx, cancelCtx := context.WithCancel(context.Background())
	defer cancelCtx()
	updates, cancel, backlog, err := node.SubscribePoolChanges(ctx, "")
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	defer cancel()

	// Initialization already produced one update.
	if len(backlog) != 1 {
		t.Fatalf("unexpected backlog length: %d", len(backlog))
	}

	if _, err := node.Stake(owner, big.NewInt(100_000), 7_776_000); err != nil {
		t.Fatalf("stake: %v", err)
	}

	update := <-updates
	if update.TotalStaked.String() != "100000" || update.StakeCount != 1 {
		t.Fatalf("unexpected update payload: staked=%s count=%d", update.TotalStaked, update.StakeCount)
	}
	if update.Sequence != backlog[0].Sequence+1 {
		t.Fatalf("sequence must be monotonic: %d after %d", update.Sequence, backlog[0].Sequence)
	}
}

func TestPoolChangeFeedCursorSkipsHistory(t *testing.T) {
	now := testBaseTime
	owner, node := setupStakedNode(t, &now)

	if _, err := node.Stake(owner, big.NewInt(100_000), 7_776_000); err != nil {
		t.Fatalf("stake: %v", err)
	}

	_, cancelAll, full, err := node.SubscribePoolChanges(nil, "")
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	cancelAll()
	if len(full) != 2 {
		t.Fatalf("expected full backlog of 2, got %d", len(full))
	}

	_, cancelTail, tail, err := node.SubscribePoolChanges(nil, full[0].Cursor)
	if err != nil {
		t.Fatalf("subscribe with cursor: %v", err)
	}
	cancelTail()
	if len(tail) != 1 || tail[0].Sequence != full[1].Sequence {
		t.Fatalf("cursor must skip acknowledged history")
	}
}

func TestPoolChangeFeedCancelStopsDelivery(t *testing.T) {
	now := testBaseTime
	owner, node := setupStakedNode(t, &now)

	updates, cancel, _, err := node.SubscribePoolChanges(nil, "")
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	cancel()
	if _, ok := <-updates; ok {
		t.Fatalf("cancel must close the channel")
	}

	// Publishing after cancel must not panic.
	if _, err := node.Stake(owner, big.NewInt(100_000), 7_776_000); err != nil {
		t.Fatalf("stake after cancel: %v", err)
	}
}
