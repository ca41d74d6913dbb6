package state

import (
	"fmt"
	"math/big"

	ethcrypto "github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/rlp"

	"gentstaking/native/staking"
)

var (
	stakingPoolKeyBytes = []byte("staking/pool")
	stakingStakerPrefix = []byte("staking/staker/")
)

func stakingPoolKey() []byte {
	return ethcrypto.Keccak256(stakingPoolKeyBytes)
}

func stakingStakerKey(owner [20]byte) []byte {
	buf := make([]byte, len(stakingStakerPrefix)+len(owner))
	copy(buf, stakingStakerPrefix)
	copy(buf[len(stakingStakerPrefix):], owner[:])
	return ethcrypto.Keccak256(buf)
}

// storedPool mirrors staking.Pool in deterministic RLP-safe form: timestamps
// are persisted unsigned and the configuration is flattened.
type storedPool struct {
	Authority               [20]byte
	Treasury                [20]byte
	EmergencyAdmin          [20]byte
	EarlyAdopterPeriod      uint64
	MinStakeDuration        uint64
	MaxStakeDuration        uint64
	RewardsMultiplierBps    uint64
	TreasuryFeeBps          uint64
	CreationTime            uint64
	TotalStaked             *big.Int
	TotalRewardsDistributed *big.Int
	StakeCount              uint64
	Paused                  bool
}

func newStoredPool(pool *staking.Pool) *storedPool {
	if pool == nil {
		return nil
	}
	creation := pool.CreationTime
	if creation < 0 {
		creation = 0
	}
	stored := &storedPool{
		Authority:               pool.Authority,
		Treasury:                pool.Treasury,
		EmergencyAdmin:          pool.EmergencyAdmin,
		EarlyAdopterPeriod:      pool.Config.EarlyAdopterPeriod,
		MinStakeDuration:        pool.Config.MinStakeDuration,
		MaxStakeDuration:        pool.Config.MaxStakeDuration,
		RewardsMultiplierBps:    pool.Config.RewardsMultiplierBps,
		TreasuryFeeBps:          pool.Config.TreasuryFeeBps,
		CreationTime:            uint64(creation),
		TotalStaked:             big.NewInt(0),
		TotalRewardsDistributed: big.NewInt(0),
		StakeCount:              pool.StakeCount,
		Paused:                  pool.Paused,
	}
	if pool.TotalStaked != nil {
		stored.TotalStaked = new(big.Int).Set(pool.TotalStaked)
	}
	if pool.TotalRewardsDistributed != nil {
		stored.TotalRewardsDistributed = new(big.Int).Set(pool.TotalRewardsDistributed)
	}
	return stored
}

func (s *storedPool) toPool() *staking.Pool {
	if s == nil {
		return nil
	}
	pool := &staking.Pool{
		Authority:      s.Authority,
		Treasury:       s.Treasury,
		EmergencyAdmin: s.EmergencyAdmin,
		Config: staking.PoolConfig{
			EarlyAdopterPeriod:   s.EarlyAdopterPeriod,
			MinStakeDuration:     s.MinStakeDuration,
			MaxStakeDuration:     s.MaxStakeDuration,
			RewardsMultiplierBps: s.RewardsMultiplierBps,
			TreasuryFeeBps:       s.TreasuryFeeBps,
		},
		CreationTime:            int64(s.CreationTime),
		TotalStaked:             big.NewInt(0),
		TotalRewardsDistributed: big.NewInt(0),
		StakeCount:              s.StakeCount,
		Paused:                  s.Paused,
	}
	if s.TotalStaked != nil {
		pool.TotalStaked = new(big.Int).Set(s.TotalStaked)
	}
	if s.TotalRewardsDistributed != nil {
		pool.TotalRewardsDistributed = new(big.Int).Set(s.TotalRewardsDistributed)
	}
	return pool
}

type storedStaker struct {
	Owner          [20]byte
	Referrer       [20]byte
	Amount         *big.Int
	StakeStartTime uint64
	LockDuration   uint64
	LastClaimTime  uint64
	EarlyAdopter   bool
	Tier           uint8
}

func newStoredStaker(staker *staking.Staker) *storedStaker {
	if staker == nil {
		return nil
	}
	start := staker.StakeStartTime
	if start < 0 {
		start = 0
	}
	lastClaim := staker.LastClaimTime
	if lastClaim < 0 {
		lastClaim = 0
	}
	stored := &storedStaker{
		Owner:          staker.Owner,
		Referrer:       staker.Referrer,
		Amount:         big.NewInt(0),
		StakeStartTime: uint64(start),
		LockDuration:   staker.LockDuration,
		LastClaimTime:  uint64(lastClaim),
		EarlyAdopter:   staker.EarlyAdopter,
		Tier:           uint8(staker.Tier),
	}
	if staker.Amount != nil {
		stored.Amount = new(big.Int).Set(staker.Amount)
	}
	return stored
}

func (s *storedStaker) toStaker() *staking.Staker {
	if s == nil {
		return nil
	}
	staker := &staking.Staker{
		Owner:          s.Owner,
		Referrer:       s.Referrer,
		Amount:         big.NewInt(0),
		StakeStartTime: int64(s.StakeStartTime),
		LockDuration:   s.LockDuration,
		LastClaimTime:  int64(s.LastClaimTime),
		EarlyAdopter:   s.EarlyAdopter,
		Tier:           staking.Tier(s.Tier),
	}
	if s.Amount != nil {
		staker.Amount = new(big.Int).Set(s.Amount)
	}
	return staker
}

// PoolGet loads the singleton pool record. The boolean reports whether the
// record exists.
func (m *Manager) PoolGet() (*staking.Pool, bool, error) {
	if m == nil || m.db == nil {
		return nil, false, fmt.Errorf("state: database not configured")
	}
	key := stakingPoolKey()
	ok, err := m.db.Has(key)
	if err != nil {
		return nil, false, err
	}
	if !ok {
		return nil, false, nil
	}
	data, err := m.db.Get(key)
	if err != nil {
		return nil, false, err
	}
	stored := new(storedPool)
	if err := rlp.DecodeBytes(data, stored); err != nil {
		return nil, false, err
	}
	return stored.toPool(), true, nil
}

// PoolPut persists the singleton pool record.
func (m *Manager) PoolPut(pool *staking.Pool) error {
	if m == nil || m.db == nil {
		return fmt.Errorf("state: database not configured")
	}
	if pool == nil {
		return fmt.Errorf("state: nil pool record")
	}
	encoded, err := rlp.EncodeToBytes(newStoredPool(pool))
	if err != nil {
		return err
	}
	return m.db.Put(stakingPoolKey(), encoded)
}

// StakerGet loads the staker record for the owner. The boolean reports
// whether the record exists.
func (m *Manager) StakerGet(owner [20]byte) (*staking.Staker, bool, error) {
	if m == nil || m.db == nil {
		return nil, false, fmt.Errorf("state: database not configured")
	}
	key := stakingStakerKey(owner)
	ok, err := m.db.Has(key)
	if err != nil {
		return nil, false, err
	}
	if !ok {
		return nil, false, nil
	}
	data, err := m.db.Get(key)
	if err != nil {
		return nil, false, err
	}
	stored := new(storedStaker)
	if err := rlp.DecodeBytes(data, stored); err != nil {
		return nil, false, err
	}
	return stored.toStaker(), true, nil
}

// StakerPut persists the staker record under its owner-derived key.
func (m *Manager) StakerPut(staker *staking.Staker) error {
	if m == nil || m.db == nil {
		return fmt.Errorf("state: database not configured")
	}
	if staker == nil {
		return fmt.Errorf("state: nil staker record")
	}
	encoded, err := rlp.EncodeToBytes(newStoredStaker(staker))
	if err != nil {
		return err
	}
	return m.db.Put(stakingStakerKey(staker.Owner), encoded)
}
