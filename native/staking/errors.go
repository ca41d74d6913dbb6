package staking

import (
	"errors"
	"fmt"
)

var (
	// ErrAlreadyInitialized guards the one-time pool creation call.
	ErrAlreadyInitialized = errors.New("staking engine: pool already initialized")
	// ErrPoolNotFound signals that no pool record exists yet.
	ErrPoolNotFound = errors.New("staking engine: pool not initialized")
	// ErrInvalidConfig rejects configuration violating the record invariants.
	ErrInvalidConfig = errors.New("staking engine: invalid pool configuration")
	// ErrAlreadyExists guards duplicate staker record creation.
	ErrAlreadyExists = errors.New("staking engine: stake account already exists")
	// ErrRecordNotFound signals a missing staker record.
	ErrRecordNotFound = errors.New("staking engine: stake account not found")
	// ErrPoolPaused rejects user mutations while the pause gate is set.
	ErrPoolPaused = errors.New("staking engine: pool paused")
	// ErrInvalidAmount rejects zero or negative stake amounts.
	ErrInvalidAmount = errors.New("staking engine: amount must be positive")
	// ErrBelowMinimumStake rejects stakes under the configured floor.
	ErrBelowMinimumStake = errors.New("staking engine: amount below minimum stake")
	// ErrLockDurationOutOfRange rejects locks outside the configured window.
	ErrLockDurationOutOfRange = errors.New("staking engine: lock duration out of range")
	// ErrInsufficientBalance signals the owner cannot cover the stake amount.
	ErrInsufficientBalance = errors.New("staking engine: insufficient balance")
	// ErrAlreadyStaked rejects staking onto an already active record.
	ErrAlreadyStaked = errors.New("staking engine: stake already active")
	// ErrNotActive rejects settlement calls against an inactive record.
	ErrNotActive = errors.New("staking engine: no active stake")
	// ErrInsufficientVaultBalance signals the reward vault cannot cover a payout.
	ErrInsufficientVaultBalance = errors.New("staking engine: insufficient reward vault balance")
	// ErrUnauthorized rejects callers lacking the required identity.
	ErrUnauthorized = errors.New("staking engine: unauthorized")
	// ErrLockNotExpired is matched by errors.Is against LockNotExpiredError.
	ErrLockNotExpired = errors.New("staking engine: lock not expired")
	// ErrReservedAddress rejects module balance addresses in user positions.
	ErrReservedAddress = errors.New("staking engine: reserved module address")

	errNilState          = errors.New("staking engine: state not configured")
	errConfigDurations   = errors.New("min stake duration exceeds max stake duration")
	errConfigMultiplier  = errors.New("rewards multiplier bps out of range")
	errConfigTreasuryFee = errors.New("treasury fee bps out of range")
	errConfigDurationCap = errors.New("stake duration exceeds ceiling")
)

// LockNotExpiredError carries the seconds remaining until lock maturity so
// callers can schedule a retry instead of polling blindly.
type LockNotExpiredError struct {
	Remaining uint64
}

func (e *LockNotExpiredError) Error() string {
	return fmt.Sprintf("staking engine: lock not expired, %d seconds remaining", e.Remaining)
}

// Unwrap lets errors.Is treat the detailed error as ErrLockNotExpired.
func (e *LockNotExpiredError) Unwrap() error { return ErrLockNotExpired }
