package staking

import (
	"math/big"
	"testing"
)

func testPoolWithMultiplier(multiplierBps, feeBps uint64) *Pool {
	return &Pool{
		Config: PoolConfig{
			EarlyAdopterPeriod:   2_592_000,
			MinStakeDuration:     604_800,
			MaxStakeDuration:     31_536_000,
			RewardsMultiplierBps: multiplierBps,
			TreasuryFeeBps:       feeBps,
		},
		TotalStaked:             big.NewInt(0),
		TotalRewardsDistributed: big.NewInt(0),
	}
}

func TestComputeOwedBaseRate(t *testing.T) {
	pool := testPoolWithMultiplier(500, 1_000)
	staker := &Staker{
		Amount:        big.NewInt(100_000),
		LastClaimTime: 0,
	}
	owed := ComputeOwed(staker, pool, DefaultEarlyAdopterBonusBps, 7_776_000)
	// 100000 * 500bps * 90d / 1y, floored.
	if owed.String() != "1232" {
		t.Fatalf("unexpected owed: %s", owed)
	}
}

func TestComputeOwedEarlyAdopterBonus(t *testing.T) {
	pool := testPoolWithMultiplier(500, 1_000)
	staker := &Staker{
		Amount:        big.NewInt(100_000),
		LastClaimTime: 0,
		EarlyAdopter:  true,
	}
	owed := ComputeOwed(staker, pool, DefaultEarlyAdopterBonusBps, 7_776_000)
	if owed.String() != "1849" {
		t.Fatalf("unexpected owed: %s", owed)
	}
}

func TestComputeOwedFullYearMatchesRate(t *testing.T) {
	pool := testPoolWithMultiplier(10_000, 0)
	staker := &Staker{Amount: big.NewInt(10_000)}
	owed := ComputeOwed(staker, pool, DefaultEarlyAdopterBonusBps, secondsPerYear)
	if owed.String() != "10000" {
		t.Fatalf("expected full principal after a year at 100%%, got %s", owed)
	}
}

func TestComputeOwedMonotonicInElapsed(t *testing.T) {
	pool := testPoolWithMultiplier(500, 0)
	staker := &Staker{Amount: big.NewInt(1_000_000), EarlyAdopter: true}
	prev := big.NewInt(-1)
	for _, now := range []int64{0, 1, 60, 3_600, 86_400, 604_800, 31_536_000} {
		owed := ComputeOwed(staker, pool, DefaultEarlyAdopterBonusBps, now)
		if owed.Cmp(prev) < 0 {
			t.Fatalf("owed decreased at elapsed=%d: %s < %s", now, owed, prev)
		}
		prev = owed
	}
}

func TestComputeOwedZeroCases(t *testing.T) {
	pool := testPoolWithMultiplier(500, 1_000)
	if got := ComputeOwed(nil, pool, 0, 100); got.Sign() != 0 {
		t.Fatalf("nil staker should owe zero, got %s", got)
	}
	if got := ComputeOwed(&Staker{Amount: big.NewInt(0)}, pool, 0, 100); got.Sign() != 0 {
		t.Fatalf("zero principal should owe zero, got %s", got)
	}
	staker := &Staker{Amount: big.NewInt(100_000), LastClaimTime: 500}
	if got := ComputeOwed(staker, pool, 0, 500); got.Sign() != 0 {
		t.Fatalf("zero elapsed should owe zero, got %s", got)
	}
	if got := ComputeOwed(staker, pool, 0, 100); got.Sign() != 0 {
		t.Fatalf("negative elapsed should owe zero, got %s", got)
	}
}

func TestSplitFee(t *testing.T) {
	fee, net := SplitFee(big.NewInt(1_000), 500)
	if fee.String() != "50" || net.String() != "950" {
		t.Fatalf("unexpected split: fee=%s net=%s", fee, net)
	}

	// Fee rounds down; the remainder stays with the user.
	fee, net = SplitFee(big.NewInt(1_849), 1_000)
	if fee.String() != "184" || net.String() != "1665" {
		t.Fatalf("unexpected split: fee=%s net=%s", fee, net)
	}
	if new(big.Int).Add(fee, net).String() != "1849" {
		t.Fatalf("fee and net must sum to owed")
	}

	fee, net = SplitFee(big.NewInt(0), 1_000)
	if fee.Sign() != 0 || net.Sign() != 0 {
		t.Fatalf("zero owed must split to zero")
	}
}
