package staking

import (
	"fmt"
	"math/big"
	"time"

	"gentstaking/core/events"
	"gentstaking/core/types"
)

type engineState interface {
	PoolGet() (*Pool, bool, error)
	PoolPut(*Pool) error
	StakerGet(owner [20]byte) (*Staker, bool, error)
	StakerPut(*Staker) error
	GetAccount(addr [20]byte) (*types.Account, error)
	PutAccount(addr [20]byte, account *types.Account) error
}

// Engine wires the staking state machine to external state and event
// emitters. Every exported operation is an atomic all-or-nothing transition:
// validation and arithmetic complete before the first write, so any error
// leaves zero observable side effects. The engine itself is not safe for
// concurrent use; the owning node serializes operations.
type Engine struct {
	state          engineState
	emitter        events.Emitter
	nowFn          func() int64
	bonusBps       uint64
	minStakeAmount *big.Int
}

// NewEngine creates a staking engine with a no-op emitter and the default
// early-adopter bonus. Callers can override both via the setters.
func NewEngine() *Engine {
	return &Engine{
		emitter:  events.NoopEmitter{},
		nowFn:    func() int64 { return time.Now().Unix() },
		bonusBps: DefaultEarlyAdopterBonusBps,
	}
}

// SetState configures the state backend used by the engine.
func (e *Engine) SetState(state engineState) { e.state = state }

// SetEmitter configures the event emitter used by the engine. Passing nil
// resets the emitter to a no-op implementation.
func (e *Engine) SetEmitter(emitter events.Emitter) {
	if emitter == nil {
		e.emitter = events.NoopEmitter{}
		return
	}
	e.emitter = emitter
}

// SetNowFunc overrides the time source used by the engine. Primarily intended
// for tests to provide deterministic timestamps.
func (e *Engine) SetNowFunc(now func() int64) {
	if now == nil {
		e.nowFn = func() int64 { return time.Now().Unix() }
		return
	}
	e.nowFn = now
}

// SetEarlyAdopterBonusBps configures the bonus rate applied to early-adopter
// stakes.
func (e *Engine) SetEarlyAdopterBonusBps(bps uint64) {
	if e == nil {
		return
	}
	e.bonusBps = bps
}

// SetMinStakeAmount configures the optional stake floor. A nil or zero floor
// disables the check; zero amounts are always rejected regardless.
func (e *Engine) SetMinStakeAmount(min *big.Int) {
	if e == nil {
		return
	}
	if min == nil || min.Sign() <= 0 {
		e.minStakeAmount = nil
		return
	}
	e.minStakeAmount = new(big.Int).Set(min)
}

func (e *Engine) emit(event events.Event) {
	if e == nil || e.emitter == nil || event == nil {
		return
	}
	e.emitter.Emit(event)
}

func (e *Engine) now() int64 {
	if e == nil || e.nowFn == nil {
		return time.Now().Unix()
	}
	return e.nowFn()
}

func ensureAccount(acc *types.Account) *types.Account {
	if acc == nil {
		return &types.Account{BalanceGENT: big.NewInt(0)}
	}
	if acc.BalanceGENT == nil {
		acc.BalanceGENT = big.NewInt(0)
	}
	return acc
}

func (e *Engine) loadPool() (*Pool, error) {
	if e == nil || e.state == nil {
		return nil, errNilState
	}
	pool, ok, err := e.state.PoolGet()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrPoolNotFound
	}
	return pool, nil
}

func (e *Engine) loadStaker(owner [20]byte) (*Staker, error) {
	staker, ok, err := e.state.StakerGet(owner)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrRecordNotFound
	}
	return staker, nil
}

// balanceOf returns the transferable balance for the address without creating
// an account record.
func (e *Engine) balanceOf(addr [20]byte) (*big.Int, error) {
	acc, err := e.state.GetAccount(addr)
	if err != nil {
		return nil, err
	}
	return ensureAccount(acc).BalanceGENT, nil
}

// transfer moves amount between two ledger balances. The caller must have
// verified the source can cover the amount; a short balance here still fails
// cleanly before any write.
func (e *Engine) transfer(from, to [20]byte, amount *big.Int) error {
	if e == nil || e.state == nil {
		return errNilState
	}
	amt := cloneBigInt(amount)
	if amt.Sign() == 0 {
		return nil
	}
	if amt.Sign() < 0 {
		return ErrInvalidAmount
	}
	if from == to {
		// Loading the same account twice and writing both copies back would
		// let the credit overwrite the debit. Check cover and stop.
		balance, err := e.balanceOf(from)
		if err != nil {
			return err
		}
		if balance.Cmp(amt) < 0 {
			return ErrInsufficientBalance
		}
		return nil
	}
	fromAcc, err := e.state.GetAccount(from)
	if err != nil {
		return err
	}
	toAcc, err := e.state.GetAccount(to)
	if err != nil {
		return err
	}
	fromAcc = ensureAccount(fromAcc)
	toAcc = ensureAccount(toAcc)
	if fromAcc.BalanceGENT.Cmp(amt) < 0 {
		return ErrInsufficientBalance
	}
	fromAcc.BalanceGENT = new(big.Int).Sub(fromAcc.BalanceGENT, amt)
	toAcc.BalanceGENT = new(big.Int).Add(toAcc.BalanceGENT, amt)
	if err := e.state.PutAccount(from, fromAcc); err != nil {
		return err
	}
	return e.state.PutAccount(to, toAcc)
}

// InitializePool creates the singleton pool record. A second call fails with
// ErrAlreadyInitialized.
func (e *Engine) InitializePool(authority, treasury, emergencyAdmin [20]byte, cfg PoolConfig) (*Pool, error) {
	if e == nil || e.state == nil {
		return nil, errNilState
	}
	if err := cfg.Validate(); err != nil {
		return nil, joinInvalidConfig(err)
	}
	if _, ok, err := e.state.PoolGet(); err != nil {
		return nil, err
	} else if ok {
		return nil, ErrAlreadyInitialized
	}
	now := e.now()
	pool := &Pool{
		Authority:               authority,
		Treasury:                treasury,
		EmergencyAdmin:          emergencyAdmin,
		Config:                  cfg,
		CreationTime:            now,
		TotalStaked:             big.NewInt(0),
		TotalRewardsDistributed: big.NewInt(0),
	}
	if err := e.state.PoolPut(pool); err != nil {
		return nil, err
	}
	e.emit(events.PoolInitialized{
		Authority:      authority,
		Treasury:       treasury,
		EmergencyAdmin: emergencyAdmin,
		CreationTime:   now,
	})
	return pool.Clone(), nil
}

// CreateStakeAccount registers an empty, inactive staker record for the
// owner. The optional referrer is recorded verbatim and never validated.
func (e *Engine) CreateStakeAccount(owner [20]byte, referrer *[20]byte) (*Staker, error) {
	if e == nil || e.state == nil {
		return nil, errNilState
	}
	if isReservedAddress(owner) {
		return nil, ErrReservedAddress
	}
	if _, ok, err := e.state.StakerGet(owner); err != nil {
		return nil, err
	} else if ok {
		return nil, ErrAlreadyExists
	}
	staker := &Staker{
		Owner:  owner,
		Amount: big.NewInt(0),
	}
	if referrer != nil {
		staker.Referrer = *referrer
	}
	if err := e.state.StakerPut(staker); err != nil {
		return nil, err
	}
	e.emit(events.StakeAccountCreated{Owner: owner, Referrer: staker.Referrer})
	return staker.Clone(), nil
}

// Stake locks amount for lockDuration seconds, moving the principal from the
// owner's balance to custody and starting the accrual clock.
func (e *Engine) Stake(owner [20]byte, amount *big.Int, lockDuration uint64) (*Staker, error) {
	pool, err := e.loadPool()
	if err != nil {
		return nil, err
	}
	if pool.Paused {
		return nil, ErrPoolPaused
	}
	staker, err := e.loadStaker(owner)
	if err != nil {
		return nil, err
	}
	if staker.Active() {
		return nil, ErrAlreadyStaked
	}
	if amount == nil || amount.Sign() <= 0 {
		return nil, ErrInvalidAmount
	}
	if e.minStakeAmount != nil && amount.Cmp(e.minStakeAmount) < 0 {
		return nil, ErrBelowMinimumStake
	}
	if lockDuration < pool.Config.MinStakeDuration || lockDuration > pool.Config.MaxStakeDuration {
		return nil, ErrLockDurationOutOfRange
	}
	balance, err := e.balanceOf(owner)
	if err != nil {
		return nil, err
	}
	if balance.Cmp(amount) < 0 {
		return nil, ErrInsufficientBalance
	}

	now := e.now()
	if err := e.transfer(owner, custodyAddress, amount); err != nil {
		return nil, err
	}
	staker.Amount = cloneBigInt(amount)
	staker.StakeStartTime = now
	staker.LockDuration = lockDuration
	staker.LastClaimTime = now
	staker.EarlyAdopter = now < pool.EarlyAdopterDeadline()
	staker.Tier = TierFor(staker.Amount)
	if err := e.state.StakerPut(staker); err != nil {
		return nil, err
	}
	pool.TotalStaked = new(big.Int).Add(pool.TotalStaked, amount)
	pool.StakeCount++
	if err := e.state.PoolPut(pool); err != nil {
		return nil, err
	}
	e.emit(events.Staked{
		Owner:        owner,
		Amount:       cloneBigInt(amount),
		LockDuration: lockDuration,
		Tier:         uint8(staker.Tier),
		EarlyAdopter: staker.EarlyAdopter,
		Timestamp:    now,
	})
	return staker.Clone(), nil
}

// ClaimRewards settles accrued rewards in place: the owed amount is debited
// from the reward vault, split between the owner and the treasury, and the
// accrual clock restarts. A zero-owed claim succeeds as a no-op so retries
// stay idempotent.
func (e *Engine) ClaimRewards(owner [20]byte) (*ClaimResult, error) {
	pool, err := e.loadPool()
	if err != nil {
		return nil, err
	}
	if pool.Paused {
		return nil, ErrPoolPaused
	}
	staker, err := e.loadStaker(owner)
	if err != nil {
		return nil, err
	}
	if !staker.Active() {
		return nil, ErrNotActive
	}
	now := e.now()
	result, err := e.settleRewards(pool, staker, now)
	if err != nil {
		return nil, err
	}
	if result.Owed.Sign() == 0 {
		return result, nil
	}
	if err := e.state.StakerPut(staker); err != nil {
		return nil, err
	}
	if err := e.state.PoolPut(pool); err != nil {
		return nil, err
	}
	e.emit(events.RewardsClaimed{
		Owner:     owner,
		Owed:      cloneBigInt(result.Owed),
		Fee:       cloneBigInt(result.Fee),
		Net:       cloneBigInt(result.Net),
		Timestamp: now,
	})
	return result, nil
}

// settleRewards computes the owed amount at now, pays it out of the vault and
// advances the staker clock and pool aggregate in memory. Callers persist the
// mutated records. A zero owed amount performs no transfer and no mutation.
func (e *Engine) settleRewards(pool *Pool, staker *Staker, now int64) (*ClaimResult, error) {
	owed := ComputeOwed(staker, pool, e.bonusBps, now)
	fee, net := SplitFee(owed, pool.Config.TreasuryFeeBps)
	result := &ClaimResult{Owed: owed, Fee: fee, Net: net, ClaimedAt: now}
	if owed.Sign() == 0 {
		return result, nil
	}
	vaultBalance, err := e.balanceOf(rewardVaultAddress)
	if err != nil {
		return nil, err
	}
	if vaultBalance.Cmp(owed) < 0 {
		return nil, ErrInsufficientVaultBalance
	}
	if err := e.transfer(rewardVaultAddress, staker.Owner, net); err != nil {
		return nil, err
	}
	if err := e.transfer(rewardVaultAddress, pool.Treasury, fee); err != nil {
		return nil, err
	}
	staker.LastClaimTime = now
	pool.TotalRewardsDistributed = new(big.Int).Add(pool.TotalRewardsDistributed, owed)
	return result, nil
}

// Unstake returns the principal once the lock has matured. Reward settlement
// is folded in: the operation pays out exactly what ClaimRewards would have
// and then clears the record.
func (e *Engine) Unstake(owner [20]byte) (*UnstakeResult, error) {
	pool, err := e.loadPool()
	if err != nil {
		return nil, err
	}
	if pool.Paused {
		return nil, ErrPoolPaused
	}
	staker, err := e.loadStaker(owner)
	if err != nil {
		return nil, err
	}
	if !staker.Active() {
		return nil, ErrNotActive
	}
	now := e.now()
	if maturity := staker.LockMaturity(); now < maturity {
		return nil, &LockNotExpiredError{Remaining: uint64(maturity - now)}
	}
	rewards, err := e.settleRewards(pool, staker, now)
	if err != nil {
		return nil, err
	}
	principal := cloneBigInt(staker.Amount)
	if err := e.transfer(custodyAddress, owner, principal); err != nil {
		return nil, err
	}
	resetStaker(staker)
	if err := e.state.StakerPut(staker); err != nil {
		return nil, err
	}
	pool.TotalStaked = new(big.Int).Sub(pool.TotalStaked, principal)
	pool.StakeCount--
	if err := e.state.PoolPut(pool); err != nil {
		return nil, err
	}
	e.emit(events.Unstaked{
		Owner:     owner,
		Principal: cloneBigInt(principal),
		Owed:      cloneBigInt(rewards.Owed),
		Fee:       cloneBigInt(rewards.Fee),
		Net:       cloneBigInt(rewards.Net),
		Timestamp: now,
	})
	return &UnstakeResult{Principal: principal, Rewards: *rewards}, nil
}

// EmergencyUnstake returns the principal to the owner without settling
// rewards. Only the emergency admin may invoke it and the pause gate does not
// block it: the path exists precisely for use during a pause.
func (e *Engine) EmergencyUnstake(caller, owner [20]byte) (*big.Int, error) {
	pool, err := e.loadPool()
	if err != nil {
		return nil, err
	}
	if caller != pool.EmergencyAdmin {
		return nil, ErrUnauthorized
	}
	staker, err := e.loadStaker(owner)
	if err != nil {
		return nil, err
	}
	if !staker.Active() {
		return nil, ErrNotActive
	}
	principal := cloneBigInt(staker.Amount)
	if err := e.transfer(custodyAddress, owner, principal); err != nil {
		return nil, err
	}
	resetStaker(staker)
	if err := e.state.StakerPut(staker); err != nil {
		return nil, err
	}
	pool.TotalStaked = new(big.Int).Sub(pool.TotalStaked, principal)
	pool.StakeCount--
	if err := e.state.PoolPut(pool); err != nil {
		return nil, err
	}
	now := e.now()
	e.emit(events.EmergencyUnstaked{
		Admin:     caller,
		Owner:     owner,
		Principal: cloneBigInt(principal),
		Timestamp: now,
	})
	return principal, nil
}

// SetPaused toggles the pause gate. Only the pool authority may flip it;
// setting the current value is a no-op success.
func (e *Engine) SetPaused(caller [20]byte, paused bool) (*Pool, error) {
	pool, err := e.loadPool()
	if err != nil {
		return nil, err
	}
	if caller != pool.Authority {
		return nil, ErrUnauthorized
	}
	if pool.Paused == paused {
		return pool.Clone(), nil
	}
	pool.Paused = paused
	if err := e.state.PoolPut(pool); err != nil {
		return nil, err
	}
	e.emit(events.PoolPauseChanged{Authority: caller, Paused: paused, Timestamp: e.now()})
	return pool.Clone(), nil
}

// UpdateConfig replaces the pool configuration. The creation time, aggregates
// and early-adopter anchor are never touched.
func (e *Engine) UpdateConfig(caller [20]byte, cfg PoolConfig) (*Pool, error) {
	pool, err := e.loadPool()
	if err != nil {
		return nil, err
	}
	if caller != pool.Authority {
		return nil, ErrUnauthorized
	}
	if err := cfg.Validate(); err != nil {
		return nil, joinInvalidConfig(err)
	}
	pool.Config = cfg
	if err := e.state.PoolPut(pool); err != nil {
		return nil, err
	}
	e.emit(events.PoolConfigUpdated{
		Authority:            caller,
		EarlyAdopterPeriod:   cfg.EarlyAdopterPeriod,
		MinStakeDuration:     cfg.MinStakeDuration,
		MaxStakeDuration:     cfg.MaxStakeDuration,
		RewardsMultiplierBps: cfg.RewardsMultiplierBps,
		TreasuryFeeBps:       cfg.TreasuryFeeBps,
		Timestamp:            e.now(),
	})
	return pool.Clone(), nil
}

// FundVault moves amount from the funder's balance into the reward vault.
// The replenishment process itself is external; this is the credit primitive
// it uses.
func (e *Engine) FundVault(from [20]byte, amount *big.Int) error {
	if e == nil || e.state == nil {
		return errNilState
	}
	if amount == nil || amount.Sign() <= 0 {
		return ErrInvalidAmount
	}
	if isReservedAddress(from) {
		return ErrReservedAddress
	}
	balance, err := e.balanceOf(from)
	if err != nil {
		return err
	}
	if balance.Cmp(amount) < 0 {
		return ErrInsufficientBalance
	}
	if err := e.transfer(from, rewardVaultAddress, amount); err != nil {
		return err
	}
	e.emit(events.VaultFunded{From: from, Amount: cloneBigInt(amount), Timestamp: e.now()})
	return nil
}

// Claimable returns the reward the owner could settle right now. The figure
// is derived, never stored.
func (e *Engine) Claimable(owner [20]byte) (*big.Int, error) {
	pool, err := e.loadPool()
	if err != nil {
		return nil, err
	}
	staker, err := e.loadStaker(owner)
	if err != nil {
		return nil, err
	}
	return ComputeOwed(staker, pool, e.bonusBps, e.now()), nil
}

// Pool returns a copy of the pool record for read-only consumers.
func (e *Engine) Pool() (*Pool, error) {
	pool, err := e.loadPool()
	if err != nil {
		return nil, err
	}
	return pool.Clone(), nil
}

// Staker returns a copy of the owner's record for read-only consumers.
func (e *Engine) Staker(owner [20]byte) (*Staker, error) {
	if e == nil || e.state == nil {
		return nil, errNilState
	}
	staker, err := e.loadStaker(owner)
	if err != nil {
		return nil, err
	}
	return staker.Clone(), nil
}

func resetStaker(staker *Staker) {
	staker.Amount = big.NewInt(0)
	staker.StakeStartTime = 0
	staker.LockDuration = 0
	staker.LastClaimTime = 0
	staker.EarlyAdopter = false
	staker.Tier = TierBronze
}

func joinInvalidConfig(err error) error {
	return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
}
