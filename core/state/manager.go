package state

import (
	"fmt"
	"math/big"

	ethcrypto "github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/rlp"

	"gentstaking/core/types"
	"gentstaking/storage"
)

// Manager provides deterministic keyed access to the ledger's durable
// records. Every key is derived from a fixed domain prefix (plus the owner
// identity for per-user records) and hashed with keccak256, so any record is
// recomputable without an index. Values are RLP encoded.
//
// Manager performs no locking; the owning node serializes all mutating
// access.
type Manager struct {
	db storage.Database
}

// NewManager creates a state manager operating on the provided database.
func NewManager(db storage.Database) *Manager {
	return &Manager{db: db}
}

var accountPrefix = []byte("accounts/")

func accountKey(addr [20]byte) []byte {
	buf := make([]byte, len(accountPrefix)+len(addr))
	copy(buf, accountPrefix)
	copy(buf[len(accountPrefix):], addr[:])
	return ethcrypto.Keccak256(buf)
}

type storedAccount struct {
	Nonce       uint64
	BalanceGENT *big.Int
}

// GetAccount retrieves the account record for the address. Unknown addresses
// yield a zero-balance account rather than an error so balance reads never
// need a prior registration step.
func (m *Manager) GetAccount(addr [20]byte) (*types.Account, error) {
	if m == nil || m.db == nil {
		return nil, fmt.Errorf("state: database not configured")
	}
	key := accountKey(addr)
	ok, err := m.db.Has(key)
	if err != nil {
		return nil, err
	}
	if !ok {
		return &types.Account{BalanceGENT: big.NewInt(0)}, nil
	}
	data, err := m.db.Get(key)
	if err != nil {
		return nil, err
	}
	stored := new(storedAccount)
	if err := rlp.DecodeBytes(data, stored); err != nil {
		return nil, err
	}
	balance := big.NewInt(0)
	if stored.BalanceGENT != nil {
		balance = new(big.Int).Set(stored.BalanceGENT)
	}
	return &types.Account{Nonce: stored.Nonce, BalanceGENT: balance}, nil
}

// PutAccount persists the account record for the address.
func (m *Manager) PutAccount(addr [20]byte, account *types.Account) error {
	if m == nil || m.db == nil {
		return fmt.Errorf("state: database not configured")
	}
	if account == nil {
		return fmt.Errorf("state: nil account")
	}
	balance := big.NewInt(0)
	if account.BalanceGENT != nil {
		if account.BalanceGENT.Sign() < 0 {
			return fmt.Errorf("state: negative balance not allowed")
		}
		balance = new(big.Int).Set(account.BalanceGENT)
	}
	encoded, err := rlp.EncodeToBytes(&storedAccount{Nonce: account.Nonce, BalanceGENT: balance})
	if err != nil {
		return err
	}
	return m.db.Put(accountKey(addr), encoded)
}
