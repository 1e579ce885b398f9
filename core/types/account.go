package types

import "math/big"

// Account holds the token balance tracked for a principal. Deposits move
// balance from the holder to the vault module account; withdrawals move it
// back net of fees.
type Account struct {
	Nonce      uint64   `json:"nonce"`
	BalanceSTX *big.Int `json:"balanceSTX"`
}
