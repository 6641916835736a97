package access_test

import (
	"errors"
	"testing"

	"payvault/core/state"
	"payvault/native/access"
	"payvault/storage"
)

func newTestController(t *testing.T) *access.Controller {
	t.Helper()
	db := storage.NewMemDB()
	t.Cleanup(db.Close)
	return access.NewController(state.NewManager(db))
}

func TestBootstrapOnce(t *testing.T) {
	ctrl := newTestController(t)
	var owner, oracle [20]byte
	owner[19] = 0x01
	oracle[19] = 0x02

	if _, err := ctrl.Owner(); !errors.Is(err, access.ErrNotBootstrapped) {
		t.Fatalf("expected not bootstrapped, got %v", err)
	}
	if err := ctrl.Bootstrap([20]byte{}, oracle); !errors.Is(err, access.ErrZeroAddress) {
		t.Fatalf("expected zero address rejection, got %v", err)
	}
	if err := ctrl.Bootstrap(owner, oracle); err != nil {
		t.Fatalf("bootstrap: %v", err)
	}
	if err := ctrl.Bootstrap(owner, oracle); !errors.Is(err, access.ErrAlreadyBootstrapped) {
		t.Fatalf("expected repeat rejection, got %v", err)
	}

	got, err := ctrl.Owner()
	if err != nil || got != owner {
		t.Fatalf("unexpected owner %x err %v", got, err)
	}
	if !ctrl.IsOwner(owner) || ctrl.IsOwner(oracle) {
		t.Fatalf("owner role misassigned")
	}
	if !ctrl.IsOracle(oracle) || ctrl.IsOracle(owner) {
		t.Fatalf("oracle role misassigned")
	}
}

func TestSetOracle(t *testing.T) {
	ctrl := newTestController(t)
	var owner, oracle, next [20]byte
	owner[19] = 0x01
	oracle[19] = 0x02
	next[19] = 0x03
	if err := ctrl.Bootstrap(owner, oracle); err != nil {
		t.Fatalf("bootstrap: %v", err)
	}

	if err := ctrl.SetOracle(oracle, next); !errors.Is(err, access.ErrUnauthorized) {
		t.Fatalf("expected unauthorized, got %v", err)
	}
	if err := ctrl.SetOracle(owner, [20]byte{}); !errors.Is(err, access.ErrZeroAddress) {
		t.Fatalf("expected zero address rejection, got %v", err)
	}
	if err := ctrl.SetOracle(owner, next); err != nil {
		t.Fatalf("set oracle: %v", err)
	}
	if ctrl.IsOracle(oracle) {
		t.Fatalf("old oracle must lose the role")
	}
	if !ctrl.IsOracle(next) {
		t.Fatalf("new oracle must hold the role")
	}
	// The owner never gains the oracle role through rotation.
	if err := ctrl.RequireOracle(owner); !errors.Is(err, access.ErrUnauthorized) {
		t.Fatalf("expected owner to lack oracle role, got %v", err)
	}
}

func TestPaymentsGateDefaultsOpen(t *testing.T) {
	ctrl := newTestController(t)
	var owner, oracle [20]byte
	owner[19] = 0x01
	oracle[19] = 0x02
	if err := ctrl.Bootstrap(owner, oracle); err != nil {
		t.Fatalf("bootstrap: %v", err)
	}

	if !ctrl.PaymentsAllowed() {
		t.Fatalf("gate must default open")
	}
	if err := ctrl.SetPaymentsAllowed(oracle, false); !errors.Is(err, access.ErrUnauthorized) {
		t.Fatalf("expected unauthorized, got %v", err)
	}
	if err := ctrl.SetPaymentsAllowed(owner, false); err != nil {
		t.Fatalf("pause: %v", err)
	}
	if ctrl.PaymentsAllowed() {
		t.Fatalf("gate must be closed")
	}
	if err := ctrl.SetPaymentsAllowed(owner, true); err != nil {
		t.Fatalf("resume: %v", err)
	}
	if !ctrl.PaymentsAllowed() {
		t.Fatalf("gate must reopen")
	}
}
