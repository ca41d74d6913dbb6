package events

import (
	"math/big"
	"strconv"

	"gentstaking/core/types"
	"gentstaking/crypto"
)

const (
	// TypePoolInitialized is emitted once when the pool record is created.
	TypePoolInitialized = "staking.poolInitialized"
	// TypeStakeAccountCreated is emitted when an owner registers an empty staker record.
	TypeStakeAccountCreated = "staking.accountCreated"
	// TypeStaked captures principal moving into custody and a lock starting.
	TypeStaked = "staking.staked"
	// TypeRewardsClaimed is emitted when accrued rewards are settled to an owner.
	TypeRewardsClaimed = "staking.rewardsClaimed"
	// TypeUnstaked captures a matured lock returning principal with final settlement.
	TypeUnstaked = "staking.unstaked"
	// TypeEmergencyUnstaked captures the break-glass principal return path.
	TypeEmergencyUnstaked = "staking.emergencyUnstaked"
	// TypePoolPaused is emitted when the authority toggles the pause gate.
	TypePoolPaused = "staking.poolPaused"
	// TypePoolUnpaused is emitted when the authority lifts the pause gate.
	TypePoolUnpaused = "staking.poolUnpaused"
	// TypePoolConfigUpdated is emitted when the authority reconfigures the pool.
	TypePoolConfigUpdated = "staking.configUpdated"
	// TypeVaultFunded captures reward vault top-ups.
	TypeVaultFunded = "staking.vaultFunded"
)

func formatAmount(v *big.Int) string {
	if v == nil {
		return "0"
	}
	return v.String()
}

func intToString(v int64) string {
	return strconv.FormatInt(v, 10)
}

func zeroAddress(addr [20]byte) bool {
	return addr == [20]byte{}
}

func addressString(addr [20]byte) string {
	return crypto.MustNewAddress(crypto.GentPrefix, addr[:]).String()
}

// PoolInitialized captures the creation of the singleton pool record.
type PoolInitialized struct {
	Authority      [20]byte
	Treasury       [20]byte
	EmergencyAdmin [20]byte
	CreationTime   int64
}

// EventType satisfies the Event interface.
func (PoolInitialized) EventType() string { return TypePoolInitialized }

// Event converts the structured payload into a broadcastable event.
func (e PoolInitialized) Event() *types.Event {
	return &types.Event{
		Type: TypePoolInitialized,
		Attributes: map[string]string{
			"authority":      addressString(e.Authority),
			"treasury":       addressString(e.Treasury),
			"emergencyAdmin": addressString(e.EmergencyAdmin),
			"creationTime":   intToString(e.CreationTime),
		},
	}
}

// StakeAccountCreated captures the registration of an empty staker record.
type StakeAccountCreated struct {
	Owner    [20]byte
	Referrer [20]byte
}

// EventType satisfies the Event interface.
func (StakeAccountCreated) EventType() string { return TypeStakeAccountCreated }

// Event converts the structured payload into a broadcastable event.
func (e StakeAccountCreated) Event() *types.Event {
	attrs := map[string]string{
		"owner": addressString(e.Owner),
	}
	if !zeroAddress(e.Referrer) {
		attrs["referrer"] = addressString(e.Referrer)
	}
	return &types.Event{Type: TypeStakeAccountCreated, Attributes: attrs}
}

// Staked captures the activation of a staker record.
type Staked struct {
	Owner        [20]byte
	Amount       *big.Int
	LockDuration uint64
	Tier         uint8
	EarlyAdopter bool
	Timestamp    int64
}

// EventType satisfies the Event interface.
func (Staked) EventType() string { return TypeStaked }

// Event converts the structured payload into a broadcastable event.
func (e Staked) Event() *types.Event {
	return &types.Event{
		Type: TypeStaked,
		Attributes: map[string]string{
			"owner":        addressString(e.Owner),
			"amount":       formatAmount(e.Amount),
			"lockDuration": strconv.FormatUint(e.LockDuration, 10),
			"tier":         strconv.FormatUint(uint64(e.Tier), 10),
			"earlyAdopter": strconv.FormatBool(e.EarlyAdopter),
			"timestamp":    intToString(e.Timestamp),
		},
	}
}

// RewardsClaimed captures a reward settlement, including the treasury split.
type RewardsClaimed struct {
	Owner     [20]byte
	Owed      *big.Int
	Fee       *big.Int
	Net       *big.Int
	Timestamp int64
}

// EventType satisfies the Event interface.
func (RewardsClaimed) EventType() string { return TypeRewardsClaimed }

// Event converts the structured payload into a broadcastable event.
func (e RewardsClaimed) Event() *types.Event {
	return &types.Event{
		Type: TypeRewardsClaimed,
		Attributes: map[string]string{
			"owner":     addressString(e.Owner),
			"owed":      formatAmount(e.Owed),
			"fee":       formatAmount(e.Fee),
			"net":       formatAmount(e.Net),
			"timestamp": intToString(e.Timestamp),
		},
	}
}

// Unstaked captures the normal exit path with folded reward settlement.
type Unstaked struct {
	Owner     [20]byte
	Principal *big.Int
	Owed      *big.Int
	Fee       *big.Int
	Net       *big.Int
	Timestamp int64
}

// EventType satisfies the Event interface.
func (Unstaked) EventType() string { return TypeUnstaked }

// Event converts the structured payload into a broadcastable event.
func (e Unstaked) Event() *types.Event {
	return &types.Event{
		Type: TypeUnstaked,
		Attributes: map[string]string{
			"owner":     addressString(e.Owner),
			"principal": formatAmount(e.Principal),
			"owed":      formatAmount(e.Owed),
			"fee":       formatAmount(e.Fee),
			"net":       formatAmount(e.Net),
			"timestamp": intToString(e.Timestamp),
		},
	}
}

// EmergencyUnstaked captures the admin-driven exit that forfeits rewards.
type EmergencyUnstaked struct {
	Admin     [20]byte
	Owner     [20]byte
	Principal *big.Int
	Timestamp int64
}

// EventType satisfies the Event interface.
func (EmergencyUnstaked) EventType() string { return TypeEmergencyUnstaked }

// Event converts the structured payload into a broadcastable event.
func (e EmergencyUnstaked) Event() *types.Event {
	return &types.Event{
		Type: TypeEmergencyUnstaked,
		Attributes: map[string]string{
			"admin":     addressString(e.Admin),
			"owner":     addressString(e.Owner),
			"principal": formatAmount(e.Principal),
			"timestamp": intToString(e.Timestamp),
		},
	}
}

// PoolPauseChanged captures pause gate transitions in either direction.
type PoolPauseChanged struct {
	Authority [20]byte
	Paused    bool
	Timestamp int64
}

// EventType satisfies the Event interface.
func (e PoolPauseChanged) EventType() string {
	if e.Paused {
		return TypePoolPaused
	}
	return TypePoolUnpaused
}

// Event converts the structured payload into a broadcastable event.
func (e PoolPauseChanged) Event() *types.Event {
	return &types.Event{
		Type: e.EventType(),
		Attributes: map[string]string{
			"authority": addressString(e.Authority),
			"timestamp": intToString(e.Timestamp),
		},
	}
}

// PoolConfigUpdated captures an authority-driven reconfiguration.
type PoolConfigUpdated struct {
	Authority            [20]byte
	EarlyAdopterPeriod   uint64
	MinStakeDuration     uint64
	MaxStakeDuration     uint64
	RewardsMultiplierBps uint64
	TreasuryFeeBps       uint64
	Timestamp            int64
}

// EventType satisfies the Event interface.
func (PoolConfigUpdated) EventType() string { return TypePoolConfigUpdated }

// Event converts the structured payload into a broadcastable event.
func (e PoolConfigUpdated) Event() *types.Event {
	return &types.Event{
		Type: TypePoolConfigUpdated,
		Attributes: map[string]string{
			"authority":            addressString(e.Authority),
			"earlyAdopterPeriod":   strconv.FormatUint(e.EarlyAdopterPeriod, 10),
			"minStakeDuration":     strconv.FormatUint(e.MinStakeDuration, 10),
			"maxStakeDuration":     strconv.FormatUint(e.MaxStakeDuration, 10),
			"rewardsMultiplierBps": strconv.FormatUint(e.RewardsMultiplierBps, 10),
			"treasuryFeeBps":       strconv.FormatUint(e.TreasuryFeeBps, 10),
			"timestamp":            intToString(e.Timestamp),
		},
	}
}

// VaultFunded captures a reward vault top-up from an external funder.
type VaultFunded struct {
	From      [20]byte
	Amount    *big.Int
	Timestamp int64
}

// EventType satisfies the Event interface.
func (VaultFunded) EventType() string { return TypeVaultFunded }

// Event converts the structured payload into a broadcastable event.
func (e VaultFunded) Event() *types.Event {
	return &types.Event{
		Type: TypeVaultFunded,
		Attributes: map[string]string{
			"from":      addressString(e.From),
			"amount":    formatAmount(e.Amount),
			"timestamp": intToString(e.Timestamp),
		},
	}
}
