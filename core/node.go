package core

import (
	"log/slog"
	"math/big"
	"sync"
	"time"

	"gentstaking/core/events"
	"gentstaking/core/state"
	"gentstaking/crypto"
	"gentstaking/native/staking"
	"gentstaking/observability"
	"gentstaking/storage"
)

// Node owns the database, the state manager and the staking engine, and
// serializes every mutating operation behind a single mutex. Each operation
// therefore executes as an atomic read-modify-write against the records it
// names, which is all the isolation the state machine requires.
type Node struct {
	db      storage.Database
	manager *state.Manager
	engine  *staking.Engine
	logger  *slog.Logger

	mu sync.Mutex

	poolStreamMu      sync.Mutex
	poolStreamSubs    map[uint64]chan PoolUpdate
	poolStreamNextID  uint64
	poolStreamSeq     uint64
	poolStreamHistory []PoolUpdate
}

// NodeOption customizes node construction.
type NodeOption func(*Node)

// WithLogger attaches a structured logger to the node.
func WithLogger(logger *slog.Logger) NodeOption {
	return func(n *Node) { n.logger = logger }
}

// WithNowFunc overrides the engine time source, primarily for tests.
func WithNowFunc(now func() int64) NodeOption {
	return func(n *Node) { n.engine.SetNowFunc(now) }
}

// WithEarlyAdopterBonusBps overrides the default early-adopter bonus rate.
func WithEarlyAdopterBonusBps(bps uint64) NodeOption {
	return func(n *Node) { n.engine.SetEarlyAdopterBonusBps(bps) }
}

// WithMinStakeAmount configures the optional stake floor.
func WithMinStakeAmount(min *big.Int) NodeOption {
	return func(n *Node) { n.engine.SetMinStakeAmount(min) }
}

// NewNode wires a node over the provided database.
func NewNode(db storage.Database, opts ...NodeOption) *Node {
	manager := state.NewManager(db)
	engine := staking.NewEngine()
	engine.SetState(manager)
	n := &Node{
		db:      db,
		manager: manager,
		engine:  engine,
		logger:  slog.Default(),
	}
	engine.SetEmitter(stakingEventEmitter{node: n})
	for _, opt := range opts {
		opt(n)
	}
	return n
}

type stakingEventEmitter struct {
	node *Node
}

// Emit logs each engine event and feeds the event metric. Event delivery is
// observational only; the synchronous operation result is authoritative.
func (e stakingEventEmitter) Emit(evt events.Event) {
	if e.node == nil || evt == nil {
		return
	}
	observability.Staking().RecordEvent(evt.EventType())
	if e.node.logger != nil {
		e.node.logger.Info("staking event", slog.String("type", evt.EventType()))
	}
}

// InitializePool executes the one-time pool creation call.
func (n *Node) InitializePool(authority, treasury, emergencyAdmin [20]byte, cfg staking.PoolConfig) (*staking.Pool, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	pool, err := n.engine.InitializePool(authority, treasury, emergencyAdmin, cfg)
	observability.Staking().RecordOperation("initializePool", err)
	if err != nil {
		return nil, err
	}
	n.publishPoolChange(pool)
	return pool, nil
}

// CreateStakeAccount registers an empty staker record for the owner.
func (n *Node) CreateStakeAccount(owner [20]byte, referrer *[20]byte) (*staking.Staker, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	staker, err := n.engine.CreateStakeAccount(owner, referrer)
	observability.Staking().RecordOperation("createStakeAccount", err)
	return staker, err
}

// Stake locks principal for the owner.
func (n *Node) Stake(owner [20]byte, amount *big.Int, lockDuration uint64) (*staking.Staker, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	staker, err := n.engine.Stake(owner, amount, lockDuration)
	observability.Staking().RecordOperation("stake", err)
	if err != nil {
		return nil, err
	}
	n.publishPoolChangeFromState()
	return staker, nil
}

// ClaimRewards settles accrued rewards for the owner.
func (n *Node) ClaimRewards(owner [20]byte) (*staking.ClaimResult, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	result, err := n.engine.ClaimRewards(owner)
	observability.Staking().RecordOperation("claimRewards", err)
	if err != nil {
		return nil, err
	}
	if result.Owed.Sign() > 0 {
		n.publishPoolChangeFromState()
	}
	return result, nil
}

// Unstake returns matured principal with folded reward settlement.
func (n *Node) Unstake(owner [20]byte) (*staking.UnstakeResult, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	result, err := n.engine.Unstake(owner)
	observability.Staking().RecordOperation("unstake", err)
	if err != nil {
		return nil, err
	}
	n.publishPoolChangeFromState()
	return result, nil
}

// EmergencyUnstake is the admin break-glass exit; it works while paused and
// forfeits rewards.
func (n *Node) EmergencyUnstake(caller, owner [20]byte) (*big.Int, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	principal, err := n.engine.EmergencyUnstake(caller, owner)
	observability.Staking().RecordOperation("emergencyUnstake", err)
	if err != nil {
		return nil, err
	}
	n.publishPoolChangeFromState()
	return principal, nil
}

// SetPaused flips the pool pause gate.
func (n *Node) SetPaused(caller [20]byte, paused bool) (*staking.Pool, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	pool, err := n.engine.SetPaused(caller, paused)
	observability.Staking().RecordOperation("setPaused", err)
	if err != nil {
		return nil, err
	}
	n.publishPoolChange(pool)
	return pool, nil
}

// UpdateConfig replaces the pool configuration.
func (n *Node) UpdateConfig(caller [20]byte, cfg staking.PoolConfig) (*staking.Pool, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	pool, err := n.engine.UpdateConfig(caller, cfg)
	observability.Staking().RecordOperation("updateConfig", err)
	if err != nil {
		return nil, err
	}
	n.publishPoolChange(pool)
	return pool, nil
}

// FundVault credits the reward vault from the funder's balance.
func (n *Node) FundVault(from [20]byte, amount *big.Int) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	err := n.engine.FundVault(from, amount)
	observability.Staking().RecordOperation("fundVault", err)
	return err
}

// CreditBalance is the deposit adapter for the external token bridge: it
// credits freshly arrived value to a ledger balance. It is not a staking
// operation and carries no pool semantics.
func (n *Node) CreditBalance(addr [20]byte, amount *big.Int) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if amount == nil || amount.Sign() <= 0 {
		return staking.ErrInvalidAmount
	}
	account, err := n.manager.GetAccount(addr)
	if err != nil {
		return err
	}
	account.BalanceGENT = new(big.Int).Add(account.BalanceGENT, amount)
	return n.manager.PutAccount(addr, account)
}

// BalanceOf returns the transferable balance for the address.
func (n *Node) BalanceOf(addr [20]byte) (*big.Int, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	account, err := n.manager.GetAccount(addr)
	if err != nil {
		return nil, err
	}
	return account.BalanceGENT, nil
}

// PoolSnapshot describes the pool aggregate state for read-only consumers.
type PoolSnapshot struct {
	Authority               string             `json:"authority"`
	Treasury                string             `json:"treasury"`
	EmergencyAdmin          string             `json:"emergencyAdmin"`
	Config                  staking.PoolConfig `json:"config"`
	CreationTime            int64              `json:"creationTime"`
	TotalStaked             *big.Int           `json:"totalStaked"`
	TotalRewardsDistributed *big.Int           `json:"totalRewardsDistributed"`
	StakeCount              uint64             `json:"stakeCount"`
	Paused                  bool               `json:"paused"`
	VaultBalance            *big.Int           `json:"vaultBalance"`
}

// StakerSnapshot describes a staker record plus its derived claimable amount.
type StakerSnapshot struct {
	Owner          string   `json:"owner"`
	Referrer       string   `json:"referrer,omitempty"`
	Amount         *big.Int `json:"amount"`
	StakeStartTime int64    `json:"stakeStartTime"`
	LockDuration   uint64   `json:"lockDuration"`
	LastClaimTime  int64    `json:"lastClaimTime"`
	LockMaturity   int64    `json:"lockMaturity"`
	EarlyAdopter   bool     `json:"earlyAdopter"`
	Tier           string   `json:"tier"`
	Claimable      *big.Int `json:"claimable"`
}

func addressString(addr [20]byte) string {
	return crypto.MustNewAddress(crypto.GentPrefix, addr[:]).String()
}

func (n *Node) poolSnapshotLocked() (*PoolSnapshot, error) {
	pool, err := n.engine.Pool()
	if err != nil {
		return nil, err
	}
	vaultAccount, err := n.manager.GetAccount(staking.RewardVaultAddress())
	if err != nil {
		return nil, err
	}
	snapshot := &PoolSnapshot{
		Authority:               addressString(pool.Authority),
		Treasury:                addressString(pool.Treasury),
		EmergencyAdmin:          addressString(pool.EmergencyAdmin),
		Config:                  pool.Config,
		CreationTime:            pool.CreationTime,
		TotalStaked:             pool.TotalStaked,
		TotalRewardsDistributed: pool.TotalRewardsDistributed,
		StakeCount:              pool.StakeCount,
		Paused:                  pool.Paused,
		VaultBalance:            vaultAccount.BalanceGENT,
	}
	observability.Staking().UpdatePoolAggregates(pool.TotalStaked, pool.StakeCount)
	return snapshot, nil
}

// PoolSnapshot returns the pool aggregate fields plus the pause flag and the
// current vault balance.
func (n *Node) PoolSnapshot() (*PoolSnapshot, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.poolSnapshotLocked()
}

// StakerSnapshot returns the staker record fields plus the derived claimable
// amount. The claimable figure is computed, never stored.
func (n *Node) StakerSnapshot(owner [20]byte) (*StakerSnapshot, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	staker, err := n.engine.Staker(owner)
	if err != nil {
		return nil, err
	}
	claimable := big.NewInt(0)
	if staker.Active() {
		claimable, err = n.engine.Claimable(owner)
		if err != nil {
			return nil, err
		}
	}
	snapshot := &StakerSnapshot{
		Owner:          addressString(staker.Owner),
		Amount:         staker.Amount,
		StakeStartTime: staker.StakeStartTime,
		LockDuration:   staker.LockDuration,
		LastClaimTime:  staker.LastClaimTime,
		EarlyAdopter:   staker.EarlyAdopter,
		Tier:           staker.Tier.String(),
		Claimable:      claimable,
	}
	if staker.Referrer != ([20]byte{}) {
		snapshot.Referrer = addressString(staker.Referrer)
	}
	if staker.Active() {
		snapshot.LockMaturity = staker.LockMaturity()
	}
	return snapshot, nil
}

// Close releases the backing database.
func (n *Node) Close() {
	if n == nil || n.db == nil {
		return
	}
	n.db.Close()
}

func (n *Node) publishPoolChangeFromState() {
	pool, err := n.engine.Pool()
	if err != nil {
		if n.logger != nil {
			n.logger.Error("load pool for change feed", slog.Any("error", err))
		}
		return
	}
	n.publishPoolChange(pool)
}

func (n *Node) publishPoolChange(pool *staking.Pool) {
	if pool == nil {
		return
	}
	observability.Staking().UpdatePoolAggregates(pool.TotalStaked, pool.StakeCount)
	n.publishPoolUpdate(PoolUpdate{
		Authority:               addressString(pool.Authority),
		Config:                  pool.Config,
		TotalStaked:             pool.TotalStaked,
		TotalRewardsDistributed: pool.TotalRewardsDistributed,
		StakeCount:              pool.StakeCount,
		Paused:                  pool.Paused,
		Timestamp:               time.Now().Unix(),
	})
}
