package token

import (
	"math/big"
	"strings"

	ethcrypto "github.com/ethereum/go-ethereum/crypto"
)

// Token describes one supported settlement asset: its exchange rate (asset
// units per one reference unit) and whether disbursements mint new supply or
// transfer out of the system's own holdings.
type Token struct {
	Symbol   string
	Rate     *big.Int
	Mintable bool
}

// Clone returns a deep copy so callers can mutate the copy without affecting
// the stored instance.
func (t *Token) Clone() *Token {
	if t == nil {
		return nil
	}
	clone := *t
	if t.Rate != nil {
		clone.Rate = new(big.Int).Set(t.Rate)
	} else {
		clone.Rate = big.NewInt(0)
	}
	return &clone
}

// NormalizeSymbol canonicalises an asset symbol to its trimmed uppercase form.
func NormalizeSymbol(symbol string) (string, error) {
	trimmed := strings.ToUpper(strings.TrimSpace(symbol))
	if trimmed == "" {
		return "", ErrInvalidSymbol
	}
	return trimmed, nil
}

// VaultAddress returns the address holding the system's own settlement-asset
// balances, from which non-mintable disbursements are paid.
func VaultAddress() [20]byte {
	var addr [20]byte
	hash := ethcrypto.Keccak256([]byte("payvault/settlement-vault"))
	copy(addr[:], hash[:20])
	return addr
}
