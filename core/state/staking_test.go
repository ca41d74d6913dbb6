package state

import (
	"math/big"
	"testing"

	"gentstaking/native/staking"
	"gentstaking/storage"
)

func testAddr(fill byte) [20]byte {
	var addr [20]byte
	for i := range addr {
		addr[i] = fill
	}
	return addr
}

func TestPoolRoundTrip(t *testing.T) {
	manager := NewManager(storage.NewMemDB())

	if _, ok, err := manager.PoolGet(); err != nil || ok {
		t.Fatalf("empty store must report no pool: ok=%v err=%v", ok, err)
	}

	pool := &staking.Pool{
		Authority:      testAddr(0x01),
		Treasury:       testAddr(0x02),
		EmergencyAdmin: testAddr(0x03),
		Config: staking.PoolConfig{
			EarlyAdopterPeriod:   2_592_000,
			MinStakeDuration:     604_800,
			MaxStakeDuration:     31_536_000,
			RewardsMultiplierBps: 500,
			TreasuryFeeBps:       1_000,
		},
		CreationTime:            1_700_000_000,
		TotalStaked:             big.NewInt(123_456),
		TotalRewardsDistributed: big.NewInt(789),
		StakeCount:              7,
		Paused:                  true,
	}
	if err := manager.PoolPut(pool); err != nil {
		t.Fatalf("pool put: %v", err)
	}

	loaded, ok, err := manager.PoolGet()
	if err != nil || !ok {
		t.Fatalf("pool get: ok=%v err=%v", ok, err)
	}
	if loaded.Authority != pool.Authority || loaded.Treasury != pool.Treasury || loaded.EmergencyAdmin != pool.EmergencyAdmin {
		t.Fatalf("addresses did not survive the round trip")
	}
	if loaded.Config != pool.Config {
		t.Fatalf("config did not survive the round trip: %+v", loaded.Config)
	}
	if loaded.CreationTime != pool.CreationTime {
		t.Fatalf("unexpected creation time: %d", loaded.CreationTime)
	}
	if loaded.TotalStaked.Cmp(pool.TotalStaked) != 0 || loaded.TotalRewardsDistributed.Cmp(pool.TotalRewardsDistributed) != 0 {
		t.Fatalf("aggregates did not survive the round trip")
	}
	if loaded.StakeCount != 7 || !loaded.Paused {
		t.Fatalf("counters did not survive the round trip")
	}
}

func TestStakerRoundTrip(t *testing.T) {
	manager := NewManager(storage.NewMemDB())
	owner := testAddr(0x0A)

	if _, ok, err := manager.StakerGet(owner); err != nil || ok {
		t.Fatalf("empty store must report no staker: ok=%v err=%v", ok, err)
	}

	staker := &staking.Staker{
		Owner:          owner,
		Referrer:       testAddr(0x0B),
		Amount:         big.NewInt(100_000),
		StakeStartTime: 1_700_000_000,
		LockDuration:   604_800,
		LastClaimTime:  1_700_100_000,
		EarlyAdopter:   true,
		Tier:           staking.TierSilver,
	}
	if err := manager.StakerPut(staker); err != nil {
		t.Fatalf("staker put: %v", err)
	}

	loaded, ok, err := manager.StakerGet(owner)
	if err != nil || !ok {
		t.Fatalf("staker get: ok=%v err=%v", ok, err)
	}
	if loaded.Owner != staker.Owner || loaded.Referrer != staker.Referrer {
		t.Fatalf("addresses did not survive the round trip")
	}
	if loaded.Amount.Cmp(staker.Amount) != 0 {
		t.Fatalf("unexpected amount: %s", loaded.Amount)
	}
	if loaded.StakeStartTime != staker.StakeStartTime || loaded.LastClaimTime != staker.LastClaimTime {
		t.Fatalf("clocks did not survive the round trip")
	}
	if loaded.LockDuration != staker.LockDuration || !loaded.EarlyAdopter || loaded.Tier != staking.TierSilver {
		t.Fatalf("flags did not survive the round trip")
	}

	// Records are keyed per owner.
	if _, ok, err := manager.StakerGet(testAddr(0x0C)); err != nil || ok {
		t.Fatalf("unknown owner must report no staker: ok=%v err=%v", ok, err)
	}
}

func TestAccountDefaultsAndValidation(t *testing.T) {
	manager := NewManager(storage.NewMemDB())
	addr := testAddr(0x10)

	acc, err := manager.GetAccount(addr)
	if err != nil {
		t.Fatalf("get account: %v", err)
	}
	if acc.BalanceGENT.Sign() != 0 || acc.Nonce != 0 {
		t.Fatalf("unknown account must be zeroed")
	}

	acc.BalanceGENT = big.NewInt(-1)
	if err := manager.PutAccount(addr, acc); err == nil {
		t.Fatalf("negative balance must be rejected")
	}

	acc.BalanceGENT = big.NewInt(500)
	acc.Nonce = 3
	if err := manager.PutAccount(addr, acc); err != nil {
		t.Fatalf("put account: %v", err)
	}
	loaded, err := manager.GetAccount(addr)
	if err != nil {
		t.Fatalf("reload account: %v", err)
	}
	if loaded.BalanceGENT.String() != "500" || loaded.Nonce != 3 {
		t.Fatalf("account did not survive the round trip")
	}
}
