package staking

import "math/big"

const (
	basisPointsDenom = 10_000
	// secondsPerYear is the annualization reference unit: the rewards
	// multiplier expresses a yearly rate over this fixed period.
	secondsPerYear = 365 * 24 * 60 * 60
	// DefaultEarlyAdopterBonusBps is the +50% bonus applied to the base
	// reward of stakes opened inside the early-adopter window.
	DefaultEarlyAdopterBonusBps = 5_000
)

var (
	bigBasisPoints    = big.NewInt(basisPointsDenom)
	bigSecondsPerYear = big.NewInt(secondsPerYear)
)

// ComputeOwed returns the reward owed to the staker for the elapsed time
// since its last settlement. The computation is pure: it never mutates its
// inputs and has no side effects.
//
// The base reward is amount * rewardsMultiplierBps * elapsed over the
// annualization denominator. Stakes flagged as early adopters at stake time
// receive the bonus rate on the whole accrual, not just the portion inside
// the window. Fractional reward units are truncated, never rounded up, so the
// ledger can never owe more than the vault backs.
func ComputeOwed(staker *Staker, pool *Pool, bonusBps uint64, now int64) *big.Int {
	if staker == nil || pool == nil {
		return big.NewInt(0)
	}
	if staker.Amount == nil || staker.Amount.Sign() <= 0 {
		return big.NewInt(0)
	}
	elapsed := now - staker.LastClaimTime
	if elapsed <= 0 {
		return big.NewInt(0)
	}

	owed := new(big.Int).Set(staker.Amount)
	owed.Mul(owed, new(big.Int).SetUint64(pool.Config.RewardsMultiplierBps))
	owed.Mul(owed, big.NewInt(elapsed))
	denom := new(big.Int).Mul(bigBasisPoints, bigSecondsPerYear)
	if staker.EarlyAdopter {
		// Fold the bonus into the numerator so truncation happens once.
		owed.Mul(owed, new(big.Int).SetUint64(basisPointsDenom+bonusBps))
		denom.Mul(denom, bigBasisPoints)
	}
	return owed.Div(owed, denom)
}

// SplitFee divides an owed reward into the treasury fee and the net user
// payout. The fee rounds down; the remainder stays with the user so no value
// leaves circulation beyond the floor truncation.
func SplitFee(owed *big.Int, feeBps uint64) (fee, net *big.Int) {
	total := cloneBigInt(owed)
	fee = new(big.Int).Mul(total, new(big.Int).SetUint64(feeBps))
	fee.Div(fee, bigBasisPoints)
	net = new(big.Int).Sub(total, fee)
	return fee, net
}
