package reserve

import (
	"errors"
	"math/big"

	"payvault/core/events"
)

const balanceKey = "reserve:balance"

var (
	ErrInvalidAmount       = errors.New("reserve: amount must be positive")
	ErrInsufficientReserve = errors.New("reserve: insufficient balance")
)

type ledgerState interface {
	KVPut(key []byte, value interface{}) error
	KVGet(key []byte, out interface{}) (bool, error)
}

type authorizer interface {
	RequireOwner(caller [20]byte) error
}

// Ledger is the single running counter of raw value custodied by the system.
// Direct deposits and campaign contributions credit it; owner withdrawals and
// contributor refunds debit it, both bounded by the current balance. Campaign
// escrow is deliberately commingled with general deposits: there is no
// per-campaign segregation.
type Ledger struct {
	st      ledgerState
	auth    authorizer
	emitter events.Emitter
}

// NewLedger creates a reserve ledger backed by the provided state manager.
func NewLedger(st ledgerState, auth authorizer) *Ledger {
	return &Ledger{st: st, auth: auth, emitter: events.NoopEmitter{}}
}

// SetEmitter configures the event emitter. Passing nil resets it to a no-op
// implementation.
func (l *Ledger) SetEmitter(emitter events.Emitter) {
	if emitter == nil {
		l.emitter = events.NoopEmitter{}
		return
	}
	l.emitter = emitter
}

// Balance returns the current reserve balance.
func (l *Ledger) Balance() (*big.Int, error) {
	balance := new(big.Int)
	found, err := l.st.KVGet([]byte(balanceKey), balance)
	if err != nil {
		return nil, err
	}
	if !found {
		return big.NewInt(0), nil
	}
	return balance, nil
}

// Credit adds raw value to the reserve. It backs every inflow path and emits
// no event of its own; callers emit the path-specific event.
func (l *Ledger) Credit(amount *big.Int) error {
	if amount == nil || amount.Sign() <= 0 {
		return ErrInvalidAmount
	}
	balance, err := l.Balance()
	if err != nil {
		return err
	}
	return l.st.KVPut([]byte(balanceKey), new(big.Int).Add(balance, amount))
}

// Debit removes raw value from the reserve, bounded by the current balance.
func (l *Ledger) Debit(amount *big.Int) error {
	if amount == nil || amount.Sign() <= 0 {
		return ErrInvalidAmount
	}
	balance, err := l.Balance()
	if err != nil {
		return err
	}
	if balance.Cmp(amount) < 0 {
		return ErrInsufficientReserve
	}
	return l.st.KVPut([]byte(balanceKey), new(big.Int).Sub(balance, amount))
}

// Deposit credits a direct raw-value inflow from any caller and emits the
// deposit event.
func (l *Ledger) Deposit(from [20]byte, amount *big.Int) error {
	if err := l.Credit(amount); err != nil {
		return err
	}
	balance, err := l.Balance()
	if err != nil {
		return err
	}
	l.emit(events.ReserveDeposited{From: from, Amount: new(big.Int).Set(amount), Balance: balance})
	return nil
}

// Withdraw debits the reserve in favour of an external recipient. Owner only,
// bounded by the current balance.
func (l *Ledger) Withdraw(caller, to [20]byte, amount *big.Int) error {
	if err := l.auth.RequireOwner(caller); err != nil {
		return err
	}
	if err := l.Debit(amount); err != nil {
		return err
	}
	balance, err := l.Balance()
	if err != nil {
		return err
	}
	l.emit(events.ReserveWithdrawn{To: to, Amount: new(big.Int).Set(amount), Balance: balance})
	return nil
}

func (l *Ledger) emit(event events.Event) {
	if l.emitter == nil {
		return
	}
	l.emitter.Emit(event)
}
