package staking

import (
	"math/big"

	ethcrypto "github.com/ethereum/go-ethereum/crypto"
)

// Tier buckets stakers by the size of their locked principal. Tiers are
// informational: they are recorded at stake time and surfaced through events
// and snapshots but never feed into reward accrual.
type Tier uint8

const (
	TierBronze Tier = iota
	TierSilver
	TierGold
	TierPlatinum
	TierDiamond
)

var (
	tierSilverFloor   = big.NewInt(10_000_000_000)
	tierGoldFloor     = big.NewInt(50_000_000_000)
	tierPlatinumFloor = big.NewInt(100_000_000_000)
	tierDiamondFloor  = big.NewInt(500_000_000_000)
)

// TierFor returns the tier matching the supplied principal amount.
func TierFor(amount *big.Int) Tier {
	if amount == nil {
		return TierBronze
	}
	switch {
	case amount.Cmp(tierDiamondFloor) >= 0:
		return TierDiamond
	case amount.Cmp(tierPlatinumFloor) >= 0:
		return TierPlatinum
	case amount.Cmp(tierGoldFloor) >= 0:
		return TierGold
	case amount.Cmp(tierSilverFloor) >= 0:
		return TierSilver
	default:
		return TierBronze
	}
}

func (t Tier) String() string {
	switch t {
	case TierBronze:
		return "bronze"
	case TierSilver:
		return "silver"
	case TierGold:
		return "gold"
	case TierPlatinum:
		return "platinum"
	case TierDiamond:
		return "diamond"
	default:
		return "unknown"
	}
}

// PoolConfig groups the governance supplied staking parameters. Durations are
// in seconds, rates in basis points.
type PoolConfig struct {
	EarlyAdopterPeriod   uint64
	MinStakeDuration     uint64
	MaxStakeDuration     uint64
	RewardsMultiplierBps uint64
	TreasuryFeeBps       uint64
}

// maxConfigDuration caps every configured period at one hundred years so that
// timestamp plus duration arithmetic stays inside int64.
const maxConfigDuration = 100 * secondsPerYear

// Validate checks the configuration bounds required by the pool record.
func (c PoolConfig) Validate() error {
	if c.MinStakeDuration > c.MaxStakeDuration {
		return errConfigDurations
	}
	if c.MaxStakeDuration > maxConfigDuration || c.EarlyAdopterPeriod > maxConfigDuration {
		return errConfigDurationCap
	}
	if c.RewardsMultiplierBps > basisPointsDenom {
		return errConfigMultiplier
	}
	if c.TreasuryFeeBps > basisPointsDenom {
		return errConfigTreasuryFee
	}
	return nil
}

// Pool is the singleton record holding global parameters and running totals.
// TotalStaked always equals the sum of every active staker record's amount and
// StakeCount the number of records with a positive amount.
type Pool struct {
	Authority               [20]byte
	Treasury                [20]byte
	EmergencyAdmin          [20]byte
	Config                  PoolConfig
	CreationTime            int64
	TotalStaked             *big.Int
	TotalRewardsDistributed *big.Int
	StakeCount              uint64
	Paused                  bool
}

// Clone returns a deep copy of the pool record so callers can safely mutate
// the copy without affecting the stored instance.
func (p *Pool) Clone() *Pool {
	if p == nil {
		return nil
	}
	clone := *p
	clone.TotalStaked = cloneBigInt(p.TotalStaked)
	clone.TotalRewardsDistributed = cloneBigInt(p.TotalRewardsDistributed)
	return &clone
}

// EarlyAdopterDeadline returns the unix timestamp at which the early-adopter
// window closes.
func (p *Pool) EarlyAdopterDeadline() int64 {
	return p.CreationTime + int64(p.Config.EarlyAdopterPeriod)
}

// Staker is the per-owner stake record. It is created empty, activated by a
// stake, settled in place by claims and reset (never deleted) on exit, ready
// for a future stake cycle by the same owner.
type Staker struct {
	Owner          [20]byte
	Referrer       [20]byte
	Amount         *big.Int
	StakeStartTime int64
	LockDuration   uint64
	LastClaimTime  int64
	EarlyAdopter   bool
	Tier           Tier
}

// Clone returns a deep copy of the staker record.
func (s *Staker) Clone() *Staker {
	if s == nil {
		return nil
	}
	clone := *s
	clone.Amount = cloneBigInt(s.Amount)
	return &clone
}

// Active reports whether the record currently holds locked principal.
func (s *Staker) Active() bool {
	return s != nil && s.Amount != nil && s.Amount.Sign() > 0
}

// LockMaturity returns the unix timestamp after which the principal becomes
// withdrawable via the normal unstake path.
func (s *Staker) LockMaturity() int64 {
	return s.StakeStartTime + int64(s.LockDuration)
}

// ClaimResult reports the outcome of a reward settlement.
type ClaimResult struct {
	Owed      *big.Int
	Fee       *big.Int
	Net       *big.Int
	ClaimedAt int64
}

// UnstakeResult reports the outcome of a normal unstake, including the reward
// settlement folded into it.
type UnstakeResult struct {
	Principal *big.Int
	Rewards   ClaimResult
}

// ModuleAddress derives the deterministic ledger address for a named module
// balance. The custody and reward vault accounts live at these addresses so
// no index structure is needed to locate them.
func ModuleAddress(name string) [20]byte {
	hash := ethcrypto.Keccak256([]byte("module/staking/" + name))
	var addr [20]byte
	copy(addr[:], hash[12:])
	return addr
}

var (
	custodyAddress     = ModuleAddress("custody")
	rewardVaultAddress = ModuleAddress("reward-vault")
)

// CustodyAddress returns the pooled balance holding all staked principal.
func CustodyAddress() [20]byte { return custodyAddress }

// isReservedAddress reports whether addr is one of the module balances, which
// must never appear as a user-side party in an operation.
func isReservedAddress(addr [20]byte) bool {
	return addr == custodyAddress || addr == rewardVaultAddress
}

// RewardVaultAddress returns the balance from which reward payouts are made.
func RewardVaultAddress() [20]byte { return rewardVaultAddress }

func cloneBigInt(v *big.Int) *big.Int {
	if v == nil {
		return big.NewInt(0)
	}
	return new(big.Int).Set(v)
}
