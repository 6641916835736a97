package token

import (
	"fmt"
	"math/big"
)

// Minter is the capability consumed for mintable assets: new supply is
// created directly for the recipient. Any error is fatal to the calling
// operation.
type Minter interface {
	Mint(to [20]byte, amount *big.Int) error
}

// Transferor is the capability consumed for non-mintable assets: value moves
// out of the system's own pre-funded holdings. A false result (typically
// insufficient balance) is fatal to the calling operation.
type Transferor interface {
	Transfer(to [20]byte, amount *big.Int) (bool, error)
	BalanceOf(holder [20]byte) (*big.Int, error)
}

// Paymaster routes disbursements to the settler matching each asset's
// disbursement policy.
type Paymaster struct {
	minters     map[string]Minter
	transferors map[string]Transferor
}

// NewPaymaster creates an empty paymaster; settlers are bound per symbol.
func NewPaymaster() *Paymaster {
	return &Paymaster{
		minters:     make(map[string]Minter),
		transferors: make(map[string]Transferor),
	}
}

// BindMinter attaches the mint capability for a symbol.
func (p *Paymaster) BindMinter(symbol string, m Minter) {
	normalized, err := NormalizeSymbol(symbol)
	if err != nil || m == nil {
		return
	}
	p.minters[normalized] = m
}

// BindTransferor attaches the transfer capability for a symbol.
func (p *Paymaster) BindTransferor(symbol string, t Transferor) {
	normalized, err := NormalizeSymbol(symbol)
	if err != nil || t == nil {
		return
	}
	p.transferors[normalized] = t
}

// Bound reports whether any settler is attached for the symbol.
func (p *Paymaster) Bound(symbol string) bool {
	normalized, err := NormalizeSymbol(symbol)
	if err != nil {
		return false
	}
	_, hasMinter := p.minters[normalized]
	_, hasTransferor := p.transferors[normalized]
	return hasMinter || hasTransferor
}

// Disburse pays amount of the provided asset to the recipient according to
// the asset's policy. It returns whether the disbursement minted new supply.
func (p *Paymaster) Disburse(t *Token, to [20]byte, amount *big.Int) (bool, error) {
	if t == nil {
		return false, ErrNilToken
	}
	if amount == nil || amount.Sign() < 0 {
		return false, ErrNegativeAmount
	}
	if t.Mintable {
		minter, ok := p.minters[t.Symbol]
		if !ok {
			return false, fmt.Errorf("%w: no minter for %s", ErrNoSettler, t.Symbol)
		}
		if err := minter.Mint(to, amount); err != nil {
			return false, err
		}
		return true, nil
	}
	transferor, ok := p.transferors[t.Symbol]
	if !ok {
		return false, fmt.Errorf("%w: no transferor for %s", ErrNoSettler, t.Symbol)
	}
	ok, err := transferor.Transfer(to, amount)
	if err != nil {
		return false, err
	}
	if !ok {
		return false, fmt.Errorf("%w: %s", ErrTransferRejected, t.Symbol)
	}
	return false, nil
}

// --- State-backed settlers ---

type bankState interface {
	Balance(symbol string, addr [20]byte) (*big.Int, error)
	Credit(symbol string, addr [20]byte, amount *big.Int) error
	Debit(symbol string, addr [20]byte, amount *big.Int) error
}

// StateMinter settles mintable assets by crediting balances tracked in ledger
// state.
type StateMinter struct {
	st     bankState
	symbol string
}

// NewStateMinter creates a minter for the provided symbol.
func NewStateMinter(st bankState, symbol string) *StateMinter {
	normalized, _ := NormalizeSymbol(symbol)
	return &StateMinter{st: st, symbol: normalized}
}

// Mint credits the recipient's balance.
func (m *StateMinter) Mint(to [20]byte, amount *big.Int) error {
	return m.st.Credit(m.symbol, to, amount)
}

// StateTransferor settles non-mintable assets out of the system vault's
// balance tracked in ledger state.
type StateTransferor struct {
	st     bankState
	symbol string
	vault  [20]byte
}

// NewStateTransferor creates a transferor paying from the system vault.
func NewStateTransferor(st bankState, symbol string) *StateTransferor {
	normalized, _ := NormalizeSymbol(symbol)
	return &StateTransferor{st: st, symbol: normalized, vault: VaultAddress()}
}

// Transfer moves amount from the vault to the recipient. Insufficient vault
// funds reject the transfer without error so the caller can abort cleanly.
func (t *StateTransferor) Transfer(to [20]byte, amount *big.Int) (bool, error) {
	balance, err := t.st.Balance(t.symbol, t.vault)
	if err != nil {
		return false, err
	}
	if amount == nil || balance.Cmp(amount) < 0 {
		return false, nil
	}
	if err := t.st.Debit(t.symbol, t.vault, amount); err != nil {
		return false, err
	}
	if err := t.st.Credit(t.symbol, to, amount); err != nil {
		return false, err
	}
	return true, nil
}

// BalanceOf reports the holder's balance for this asset.
func (t *StateTransferor) BalanceOf(holder [20]byte) (*big.Int, error) {
	return t.st.Balance(t.symbol, holder)
}
