package types

import "math/big"

// Account holds the transferable GENT balance for a ledger identity. Custody,
// reward vault and treasury balances are plain accounts at module-derived
// addresses, so every token movement in the system is an account-to-account
// transfer.
type Account struct {
	Nonce       uint64   `json:"nonce"`
	BalanceGENT *big.Int `json:"balanceGENT"`
}
