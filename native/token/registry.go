package token

import (
	"fmt"
	"math/big"

	"payvault/core/events"
)

const (
	tokenIndexKey    = "token:index"
	referenceRateKey = "token:reference-rate"
	tokenMetaPrefix  = "token:meta:"
)

type registryState interface {
	KVPut(key []byte, value interface{}) error
	KVGet(key []byte, out interface{}) (bool, error)
	KVAppend(key []byte, value []byte) error
	KVGetList(key []byte, out interface{}) error
}

type authorizer interface {
	RequireOwner(caller [20]byte) error
	RequireOracle(caller [20]byte) error
}

// Registry is the catalog of supported settlement assets. Registration is
// owner-gated and unconditionally replaces any prior record; rate maintenance
// is oracle-gated. Lookups are pure.
type Registry struct {
	st      registryState
	auth    authorizer
	emitter events.Emitter
}

// NewRegistry creates a registry backed by the provided state manager and
// role authorizer.
func NewRegistry(st registryState, auth authorizer) *Registry {
	return &Registry{st: st, auth: auth, emitter: events.NoopEmitter{}}
}

// SetEmitter configures the event emitter. Passing nil resets it to a no-op
// implementation.
func (r *Registry) SetEmitter(emitter events.Emitter) {
	if emitter == nil {
		r.emitter = events.NoopEmitter{}
		return
	}
	r.emitter = emitter
}

func metaKey(symbol string) []byte {
	return []byte(tokenMetaPrefix + symbol)
}

// Register upserts a settlement asset. Re-registering an existing symbol
// silently replaces the prior rate and mintability; the emitted event flags
// the overwrite for external indexers.
func (r *Registry) Register(caller [20]byte, t *Token) error {
	if err := r.auth.RequireOwner(caller); err != nil {
		return err
	}
	if t == nil {
		return ErrNilToken
	}
	symbol, err := NormalizeSymbol(t.Symbol)
	if err != nil {
		return err
	}
	if t.Rate == nil || t.Rate.Sign() <= 0 {
		return ErrInvalidRate
	}
	overwritten, err := r.st.KVGet(metaKey(symbol), new(Token))
	if err != nil {
		return err
	}
	stored := &Token{Symbol: symbol, Rate: new(big.Int).Set(t.Rate), Mintable: t.Mintable}
	if err := r.st.KVPut(metaKey(symbol), stored); err != nil {
		return err
	}
	if err := r.st.KVAppend([]byte(tokenIndexKey), []byte(symbol)); err != nil {
		return err
	}
	r.emit(events.TokenRegistered{
		Symbol:      symbol,
		Rate:        stored.Clone().Rate,
		Mintable:    stored.Mintable,
		Overwritten: overwritten,
	})
	return nil
}

// SetRate updates the exchange rate of a registered asset. Oracle only; the
// asset must exist and the new rate must be positive.
func (r *Registry) SetRate(caller [20]byte, symbol string, rate *big.Int) error {
	if err := r.auth.RequireOracle(caller); err != nil {
		return err
	}
	normalized, err := NormalizeSymbol(symbol)
	if err != nil {
		return err
	}
	if rate == nil || rate.Sign() <= 0 {
		return ErrInvalidRate
	}
	stored := new(Token)
	found, err := r.st.KVGet(metaKey(normalized), stored)
	if err != nil {
		return err
	}
	if !found {
		return fmt.Errorf("%w: %s", ErrNotRegistered, normalized)
	}
	old := stored.Clone().Rate
	stored.Rate = new(big.Int).Set(rate)
	if err := r.st.KVPut(metaKey(normalized), stored); err != nil {
		return err
	}
	r.emit(events.TokenRateUpdated{Symbol: normalized, OldRate: old, NewRate: stored.Clone().Rate})
	return nil
}

// SetReferenceRate updates the single global raw-to-reference conversion rate
// used by campaign contributions. Oracle only.
func (r *Registry) SetReferenceRate(caller [20]byte, rate *big.Int) error {
	if err := r.auth.RequireOracle(caller); err != nil {
		return err
	}
	if rate == nil || rate.Sign() <= 0 {
		return ErrInvalidRate
	}
	var old *big.Int
	if current, err := r.ReferenceRate(); err == nil {
		old = current
	} else {
		old = big.NewInt(0)
	}
	if err := r.st.KVPut([]byte(referenceRateKey), rate); err != nil {
		return err
	}
	r.emit(events.ReferenceRateUpdated{OldRate: old, NewRate: new(big.Int).Set(rate)})
	return nil
}

// ReferenceRate returns the raw-to-reference conversion rate (raw units per
// one reference unit) or ErrReferenceRateUnset before the oracle first sets
// it.
func (r *Registry) ReferenceRate() (*big.Int, error) {
	rate := new(big.Int)
	found, err := r.st.KVGet([]byte(referenceRateKey), rate)
	if err != nil {
		return nil, err
	}
	if !found || rate.Sign() <= 0 {
		return nil, ErrReferenceRateUnset
	}
	return rate, nil
}

// Get retrieves a registered asset by symbol.
func (r *Registry) Get(symbol string) (*Token, bool) {
	normalized, err := NormalizeSymbol(symbol)
	if err != nil {
		return nil, false
	}
	stored := new(Token)
	found, err := r.st.KVGet(metaKey(normalized), stored)
	if err != nil || !found {
		return nil, false
	}
	return stored, true
}

// Exists reports whether the provided symbol is registered.
func (r *Registry) Exists(symbol string) bool {
	_, ok := r.Get(symbol)
	return ok
}

// List returns every registered symbol in registration order.
func (r *Registry) List() ([]string, error) {
	var raw [][]byte
	if err := r.st.KVGetList([]byte(tokenIndexKey), &raw); err != nil {
		return nil, err
	}
	symbols := make([]string, 0, len(raw))
	for _, b := range raw {
		symbols = append(symbols, string(b))
	}
	return symbols, nil
}

func (r *Registry) emit(event events.Event) {
	if r.emitter == nil {
		return
	}
	r.emitter.Emit(event)
}
