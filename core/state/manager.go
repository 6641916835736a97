package state

import (
	"bytes"
	"errors"
	"fmt"
	"math/big"
	"reflect"
	"strings"

	ethcrypto "github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/rlp"

	"payvault/storage"
)

// Manager mediates all reads and writes between the ledger engines and the
// underlying key-value store. Mutations accumulate in an in-memory overlay and
// only reach the store on Commit, which is how the ledger provides the
// all-or-nothing semantics of a single state transition: Discard drops every
// speculative write.
//
// Manager is not safe for concurrent use; the ledger serialises transitions.
type Manager struct {
	db      storage.Database
	overlay map[string]overlayEntry
}

type overlayEntry struct {
	value   []byte
	deleted bool
}

var (
	rolePrefix    = []byte("role:")
	balancePrefix = []byte("balance:")

	errEmptyKey = errors.New("state: key must not be empty")
)

// NewManager creates a state manager operating on the provided store.
func NewManager(db storage.Database) *Manager {
	return &Manager{db: db, overlay: make(map[string]overlayEntry)}
}

func hashKey(key []byte) []byte {
	return ethcrypto.Keccak256(key)
}

func roleKey(role string) []byte {
	buf := make([]byte, len(rolePrefix)+len(role))
	copy(buf, rolePrefix)
	copy(buf[len(rolePrefix):], role)
	return hashKey(buf)
}

func balanceKey(symbol string, addr [20]byte) []byte {
	buf := make([]byte, 0, len(balancePrefix)+len(symbol)+1+len(addr))
	buf = append(buf, balancePrefix...)
	buf = append(buf, symbol...)
	buf = append(buf, ':')
	buf = append(buf, addr[:]...)
	return hashKey(buf)
}

// read resolves a hashed key through the overlay and falls back to the store.
// A missing key yields (nil, nil).
func (m *Manager) read(hashed []byte) ([]byte, error) {
	if entry, ok := m.overlay[string(hashed)]; ok {
		if entry.deleted {
			return nil, nil
		}
		return entry.value, nil
	}
	data, err := m.db.Get(hashed)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, nil
	}
	return data, err
}

func (m *Manager) write(hashed, value []byte) {
	m.overlay[string(hashed)] = overlayEntry{value: value}
}

func (m *Manager) remove(hashed []byte) {
	m.overlay[string(hashed)] = overlayEntry{deleted: true}
}

// Commit flushes every speculative write to the underlying store and clears
// the overlay. On a store failure the overlay is left intact so the caller can
// retry or discard.
func (m *Manager) Commit() error {
	for key, entry := range m.overlay {
		if entry.deleted {
			if err := m.db.Delete([]byte(key)); err != nil {
				return err
			}
			continue
		}
		if err := m.db.Put([]byte(key), entry.value); err != nil {
			return err
		}
	}
	m.overlay = make(map[string]overlayEntry)
	return nil
}

// Discard drops every speculative write accumulated since the last Commit.
func (m *Manager) Discard() {
	m.overlay = make(map[string]overlayEntry)
}

// Dirty reports whether uncommitted writes exist.
func (m *Manager) Dirty() bool {
	return len(m.overlay) > 0
}

// --- Role singletons ---

// SetRoleHolder assigns the singleton holder for the provided role,
// replacing any previous assignment.
func (m *Manager) SetRoleHolder(role string, addr [20]byte) error {
	trimmed := strings.TrimSpace(role)
	if trimmed == "" {
		return fmt.Errorf("state: role must not be empty")
	}
	encoded, err := rlp.EncodeToBytes(addr[:])
	if err != nil {
		return err
	}
	m.write(roleKey(trimmed), encoded)
	return nil
}

// RoleHolder returns the singleton holder for the provided role. The boolean
// reports whether the role has been assigned.
func (m *Manager) RoleHolder(role string) ([20]byte, bool, error) {
	var holder [20]byte
	data, err := m.read(roleKey(strings.TrimSpace(role)))
	if err != nil {
		return holder, false, err
	}
	if len(data) == 0 {
		return holder, false, nil
	}
	var raw []byte
	if err := rlp.DecodeBytes(data, &raw); err != nil {
		return holder, false, err
	}
	copy(holder[:], raw)
	return holder, true, nil
}

// IsRoleHolder reports whether addr currently holds the provided role. Read
// failures resolve to false, matching the best-effort semantics expected by
// the authorization guards.
func (m *Manager) IsRoleHolder(role string, addr [20]byte) bool {
	holder, ok, err := m.RoleHolder(role)
	if err != nil || !ok {
		return false
	}
	return holder == addr
}

// --- Balances ---

// Balance retrieves the settlement-asset balance held by the provided
// account. Missing balances read as zero.
func (m *Manager) Balance(symbol string, addr [20]byte) (*big.Int, error) {
	data, err := m.read(balanceKey(symbol, addr))
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return big.NewInt(0), nil
	}
	amount := new(big.Int)
	if err := rlp.DecodeBytes(data, amount); err != nil {
		return nil, err
	}
	return amount, nil
}

// SetBalance stores a settlement-asset balance for the provided account.
func (m *Manager) SetBalance(symbol string, addr [20]byte, amount *big.Int) error {
	if amount == nil {
		amount = big.NewInt(0)
	}
	if amount.Sign() < 0 {
		return fmt.Errorf("state: negative balance not allowed")
	}
	encoded, err := rlp.EncodeToBytes(amount)
	if err != nil {
		return err
	}
	m.write(balanceKey(symbol, addr), encoded)
	return nil
}

// Credit adds amount to the account's balance for the provided asset.
func (m *Manager) Credit(symbol string, addr [20]byte, amount *big.Int) error {
	if amount == nil || amount.Sign() < 0 {
		return fmt.Errorf("state: credit amount must be non-negative")
	}
	balance, err := m.Balance(symbol, addr)
	if err != nil {
		return err
	}
	return m.SetBalance(symbol, addr, new(big.Int).Add(balance, amount))
}

// Debit subtracts amount from the account's balance for the provided asset,
// failing when the balance is insufficient.
func (m *Manager) Debit(symbol string, addr [20]byte, amount *big.Int) error {
	if amount == nil || amount.Sign() < 0 {
		return fmt.Errorf("state: debit amount must be non-negative")
	}
	balance, err := m.Balance(symbol, addr)
	if err != nil {
		return err
	}
	if balance.Cmp(amount) < 0 {
		return fmt.Errorf("state: insufficient balance for %s", symbol)
	}
	return m.SetBalance(symbol, addr, new(big.Int).Sub(balance, amount))
}

// --- Generic KV ---

// KVPut stores the provided value under the supplied key using RLP encoding.
// The key is hashed with keccak256 before insertion.
func (m *Manager) KVPut(key []byte, value interface{}) error {
	if len(key) == 0 {
		return errEmptyKey
	}
	encoded, err := rlp.EncodeToBytes(value)
	if err != nil {
		return err
	}
	m.write(hashKey(key), encoded)
	return nil
}

// KVGet retrieves the value stored under the supplied key and decodes it into
// the provided destination. The boolean reports whether the key existed.
func (m *Manager) KVGet(key []byte, out interface{}) (bool, error) {
	if len(key) == 0 {
		return false, errEmptyKey
	}
	data, err := m.read(hashKey(key))
	if err != nil {
		return false, err
	}
	if len(data) == 0 {
		return false, nil
	}
	if out == nil {
		return true, nil
	}
	if err := rlp.DecodeBytes(data, out); err != nil {
		return false, err
	}
	return true, nil
}

// KVDelete removes the value stored under the supplied key. Deleting a missing
// key is not an error.
func (m *Manager) KVDelete(key []byte) error {
	if len(key) == 0 {
		return errEmptyKey
	}
	m.remove(hashKey(key))
	return nil
}

// KVAppend appends the provided value to the byte-slice list stored under the
// supplied key. Duplicate values are ignored to keep indexes deterministic.
func (m *Manager) KVAppend(key []byte, value []byte) error {
	if len(key) == 0 {
		return errEmptyKey
	}
	hashed := hashKey(key)
	data, err := m.read(hashed)
	if err != nil {
		return err
	}
	var list [][]byte
	if len(data) > 0 {
		if err := rlp.DecodeBytes(data, &list); err != nil {
			return err
		}
	}
	for _, existing := range list {
		if bytes.Equal(existing, value) {
			return nil
		}
	}
	list = append(list, append([]byte(nil), value...))
	encoded, err := rlp.EncodeToBytes(list)
	if err != nil {
		return err
	}
	m.write(hashed, encoded)
	return nil
}

// KVGetList retrieves an RLP-encoded slice stored under the provided key and
// decodes it into the supplied destination slice pointer. A missing key
// initialises the destination with an empty slice.
func (m *Manager) KVGetList(key []byte, out interface{}) error {
	if len(key) == 0 {
		return errEmptyKey
	}
	data, err := m.read(hashKey(key))
	if err != nil {
		return err
	}
	if len(data) == 0 {
		val := reflect.ValueOf(out)
		if val.Kind() != reflect.Ptr || val.IsNil() {
			return fmt.Errorf("state: destination must be a non-nil pointer")
		}
		elem := val.Elem()
		if elem.Kind() != reflect.Slice {
			return fmt.Errorf("state: destination must point to a slice")
		}
		elem.Set(reflect.MakeSlice(elem.Type(), 0, 0))
		return nil
	}
	return rlp.DecodeBytes(data, out)
}
