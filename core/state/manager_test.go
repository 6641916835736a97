package state_test

import (
	"math/big"
	"testing"

	"payvault/core/state"
	"payvault/storage"
)

func newTestManager(t *testing.T) (*state.Manager, *storage.MemDB) {
	t.Helper()
	db := storage.NewMemDB()
	t.Cleanup(db.Close)
	return state.NewManager(db), db
}

func TestManagerCommitPersistsWrites(t *testing.T) {
	manager, db := newTestManager(t)

	if err := manager.KVPut([]byte("alpha"), uint64(7)); err != nil {
		t.Fatalf("put: %v", err)
	}
	if !manager.Dirty() {
		t.Fatalf("expected dirty overlay before commit")
	}
	if err := manager.Commit(); err != nil {
		t.Fatalf("commit: %v", err)
	}
	if manager.Dirty() {
		t.Fatalf("expected clean overlay after commit")
	}

	// A fresh manager over the same store must see the committed value.
	reopened := state.NewManager(db)
	var value uint64
	found, err := reopened.KVGet([]byte("alpha"), &value)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !found || value != 7 {
		t.Fatalf("expected committed value 7, got found=%v value=%d", found, value)
	}
}

func TestManagerDiscardDropsWrites(t *testing.T) {
	manager, _ := newTestManager(t)

	if err := manager.KVPut([]byte("alpha"), uint64(7)); err != nil {
		t.Fatalf("put: %v", err)
	}
	manager.Discard()

	var value uint64
	found, err := manager.KVGet([]byte("alpha"), &value)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if found {
		t.Fatalf("expected discarded write to be invisible")
	}
}

func TestManagerDiscardRestoresDeleted(t *testing.T) {
	manager, _ := newTestManager(t)

	if err := manager.KVPut([]byte("alpha"), uint64(7)); err != nil {
		t.Fatalf("put: %v", err)
	}
	if err := manager.Commit(); err != nil {
		t.Fatalf("commit: %v", err)
	}

	if err := manager.KVDelete([]byte("alpha")); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if found, _ := manager.KVGet([]byte("alpha"), nil); found {
		t.Fatalf("expected speculative delete to hide the key")
	}
	manager.Discard()
	if found, _ := manager.KVGet([]byte("alpha"), nil); !found {
		t.Fatalf("expected discarded delete to restore the key")
	}
}

func TestManagerRoleSingleton(t *testing.T) {
	manager, _ := newTestManager(t)
	var first, second [20]byte
	first[19] = 0x01
	second[19] = 0x02

	if _, assigned, err := manager.RoleHolder("ROLE_TEST"); err != nil || assigned {
		t.Fatalf("expected unassigned role, got assigned=%v err=%v", assigned, err)
	}
	if err := manager.SetRoleHolder("ROLE_TEST", first); err != nil {
		t.Fatalf("set role: %v", err)
	}
	if !manager.IsRoleHolder("ROLE_TEST", first) {
		t.Fatalf("expected first to hold the role")
	}

	// Reassignment replaces the previous holder entirely.
	if err := manager.SetRoleHolder("ROLE_TEST", second); err != nil {
		t.Fatalf("set role: %v", err)
	}
	if manager.IsRoleHolder("ROLE_TEST", first) {
		t.Fatalf("expected first to lose the role")
	}
	holder, assigned, err := manager.RoleHolder("ROLE_TEST")
	if err != nil || !assigned {
		t.Fatalf("expected assigned role, got err=%v", err)
	}
	if holder != second {
		t.Fatalf("unexpected holder %x", holder)
	}
}

func TestManagerBalances(t *testing.T) {
	manager, _ := newTestManager(t)
	var addr [20]byte
	addr[0] = 0xAA

	balance, err := manager.Balance("GOLD", addr)
	if err != nil {
		t.Fatalf("balance: %v", err)
	}
	if balance.Sign() != 0 {
		t.Fatalf("expected zero balance, got %s", balance)
	}

	if err := manager.Credit("GOLD", addr, big.NewInt(100)); err != nil {
		t.Fatalf("credit: %v", err)
	}
	if err := manager.Debit("GOLD", addr, big.NewInt(40)); err != nil {
		t.Fatalf("debit: %v", err)
	}
	balance, err = manager.Balance("GOLD", addr)
	if err != nil {
		t.Fatalf("balance: %v", err)
	}
	if balance.Cmp(big.NewInt(60)) != 0 {
		t.Fatalf("expected 60, got %s", balance)
	}

	if err := manager.Debit("GOLD", addr, big.NewInt(61)); err == nil {
		t.Fatalf("expected insufficient balance error")
	}
	if err := manager.SetBalance("GOLD", addr, big.NewInt(-1)); err == nil {
		t.Fatalf("expected negative balance rejection")
	}
}

func TestManagerKVAppendDeduplicates(t *testing.T) {
	manager, _ := newTestManager(t)

	if err := manager.KVAppend([]byte("index"), []byte("one")); err != nil {
		t.Fatalf("append: %v", err)
	}
	if err := manager.KVAppend([]byte("index"), []byte("two")); err != nil {
		t.Fatalf("append: %v", err)
	}
	if err := manager.KVAppend([]byte("index"), []byte("one")); err != nil {
		t.Fatalf("append duplicate: %v", err)
	}

	var list [][]byte
	if err := manager.KVGetList([]byte("index"), &list); err != nil {
		t.Fatalf("get list: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("expected two entries, got %d", len(list))
	}
	if string(list[0]) != "one" || string(list[1]) != "two" {
		t.Fatalf("unexpected order: %q %q", list[0], list[1])
	}
}

func TestManagerKVGetListMissingKey(t *testing.T) {
	manager, _ := newTestManager(t)

	list := [][]byte{[]byte("stale")}
	if err := manager.KVGetList([]byte("missing"), &list); err != nil {
		t.Fatalf("get list: %v", err)
	}
	if len(list) != 0 {
		t.Fatalf("expected empty slice for missing key, got %d entries", len(list))
	}
}
