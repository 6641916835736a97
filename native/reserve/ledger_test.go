package reserve_test

import (
	"errors"
	"math/big"
	"testing"

	"payvault/core/events"
	"payvault/core/state"
	"payvault/native/access"
	"payvault/native/reserve"
	"payvault/storage"
)

type capturingEmitter struct {
	events []events.Event
}

func (c *capturingEmitter) Emit(e events.Event) {
	c.events = append(c.events, e)
}

func newTestLedger(t *testing.T) (*reserve.Ledger, [20]byte) {
	t.Helper()
	db := storage.NewMemDB()
	t.Cleanup(db.Close)
	manager := state.NewManager(db)
	ctrl := access.NewController(manager)
	var owner, oracle [20]byte
	owner[19] = 0x01
	oracle[19] = 0x02
	if err := ctrl.Bootstrap(owner, oracle); err != nil {
		t.Fatalf("bootstrap: %v", err)
	}
	return reserve.NewLedger(manager, ctrl), owner
}

func TestReserveCreditAndDebit(t *testing.T) {
	ledger, _ := newTestLedger(t)

	balance, err := ledger.Balance()
	if err != nil {
		t.Fatalf("balance: %v", err)
	}
	if balance.Sign() != 0 {
		t.Fatalf("expected empty reserve, got %s", balance)
	}

	if err := ledger.Credit(big.NewInt(100)); err != nil {
		t.Fatalf("credit: %v", err)
	}
	if err := ledger.Debit(big.NewInt(40)); err != nil {
		t.Fatalf("debit: %v", err)
	}
	balance, _ = ledger.Balance()
	if balance.Cmp(big.NewInt(60)) != 0 {
		t.Fatalf("expected 60, got %s", balance)
	}

	if err := ledger.Debit(big.NewInt(61)); !errors.Is(err, reserve.ErrInsufficientReserve) {
		t.Fatalf("expected insufficient reserve, got %v", err)
	}
	if err := ledger.Credit(big.NewInt(0)); !errors.Is(err, reserve.ErrInvalidAmount) {
		t.Fatalf("expected invalid amount, got %v", err)
	}
	if err := ledger.Debit(big.NewInt(-1)); !errors.Is(err, reserve.ErrInvalidAmount) {
		t.Fatalf("expected invalid amount, got %v", err)
	}
}

func TestReserveDeposit(t *testing.T) {
	ledger, _ := newTestLedger(t)
	emitter := &capturingEmitter{}
	ledger.SetEmitter(emitter)

	var donor [20]byte
	donor[0] = 0x33
	if err := ledger.Deposit(donor, big.NewInt(250)); err != nil {
		t.Fatalf("deposit: %v", err)
	}
	balance, _ := ledger.Balance()
	if balance.Cmp(big.NewInt(250)) != 0 {
		t.Fatalf("expected 250, got %s", balance)
	}
	if len(emitter.events) != 1 || emitter.events[0].EventType() != events.TypeReserveDeposited {
		t.Fatalf("unexpected events: %v", emitter.events)
	}
}

func TestReserveWithdrawOwnerOnly(t *testing.T) {
	ledger, owner := newTestLedger(t)
	if err := ledger.Credit(big.NewInt(100)); err != nil {
		t.Fatalf("credit: %v", err)
	}

	var stranger, recipient [20]byte
	stranger[0] = 0x44
	recipient[0] = 0x55

	if err := ledger.Withdraw(stranger, recipient, big.NewInt(10)); !errors.Is(err, access.ErrUnauthorized) {
		t.Fatalf("expected unauthorized, got %v", err)
	}
	if err := ledger.Withdraw(owner, recipient, big.NewInt(100)); err != nil {
		t.Fatalf("withdraw: %v", err)
	}
	balance, _ := ledger.Balance()
	if balance.Sign() != 0 {
		t.Fatalf("expected drained reserve, got %s", balance)
	}
	if err := ledger.Withdraw(owner, recipient, big.NewInt(1)); !errors.Is(err, reserve.ErrInsufficientReserve) {
		t.Fatalf("expected insufficient reserve, got %v", err)
	}
}
