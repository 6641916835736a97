package genesis_test

import (
	"math/big"
	"os"
	"path/filepath"
	"testing"

	"payvault/core"
	"payvault/core/genesis"
	"payvault/storage"
)

const sampleDocument = `owner: "0x1111111111111111111111111111111111111111"
oracle: "0x2222222222222222222222222222222222222222"
reference_rate: "100"
tokens:
  - symbol: GOLD
    rate: "3"
    mintable: true
  - symbol: SILVER
    rate: "2"
    mintable: false
employees:
  - address: "0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"
    yearly_entitlement: "1200"
    assets: [GOLD, SILVER]
vault:
  - symbol: SILVER
    amount: "5000"
`

func writeDocument(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "genesis.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write document: %v", err)
	}
	return path
}

func TestApply(t *testing.T) {
	doc, err := genesis.Load(writeDocument(t, sampleDocument))
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	db := storage.NewMemDB()
	defer db.Close()
	ledger := core.NewLedger(db, nil)
	if err := doc.Apply(ledger); err != nil {
		t.Fatalf("apply: %v", err)
	}

	owner, err := ledger.Owner()
	if err != nil {
		t.Fatalf("owner: %v", err)
	}
	if owner[0] != 0x11 || owner[19] != 0x11 {
		t.Fatalf("unexpected owner %x", owner)
	}

	symbols, err := ledger.Tokens()
	if err != nil {
		t.Fatalf("tokens: %v", err)
	}
	if len(symbols) != 2 || symbols[0] != "GOLD" || symbols[1] != "SILVER" {
		t.Fatalf("unexpected symbols %v", symbols)
	}

	rate, err := ledger.ReferenceRate()
	if err != nil {
		t.Fatalf("reference rate: %v", err)
	}
	if rate.Cmp(big.NewInt(100)) != 0 {
		t.Fatalf("expected reference rate 100, got %s", rate)
	}

	var alice [20]byte
	for i := range alice {
		alice[i] = 0xAA
	}
	record, ok := ledger.Employee(alice)
	if !ok {
		t.Fatalf("expected pre-enrolled employee")
	}
	if record.YearlyEntitlement.Cmp(big.NewInt(1200)) != 0 {
		t.Fatalf("unexpected entitlement %s", record.YearlyEntitlement)
	}
	if len(record.Assignments) != 2 {
		t.Fatalf("expected both assets granted, got %d", len(record.Assignments))
	}

	vaultBalance, err := ledger.VaultBalance("SILVER")
	if err != nil {
		t.Fatalf("vault balance: %v", err)
	}
	if vaultBalance.Cmp(big.NewInt(5000)) != 0 {
		t.Fatalf("expected vault 5000, got %s", vaultBalance)
	}

	if !ledger.PaymentsAllowed() {
		t.Fatalf("payments must default open")
	}
}

func TestApplyPaymentsPaused(t *testing.T) {
	doc, err := genesis.Load(writeDocument(t, `owner: "0x1111111111111111111111111111111111111111"
oracle: "0x2222222222222222222222222222222222222222"
payments_allowed: false
`))
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	db := storage.NewMemDB()
	defer db.Close()
	ledger := core.NewLedger(db, nil)
	if err := doc.Apply(ledger); err != nil {
		t.Fatalf("apply: %v", err)
	}
	if ledger.PaymentsAllowed() {
		t.Fatalf("expected payments paused at genesis")
	}
}

func TestApplyRejectsInvalidAddress(t *testing.T) {
	doc, err := genesis.Load(writeDocument(t, `owner: "not-an-address"
oracle: "0x2222222222222222222222222222222222222222"
`))
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	db := storage.NewMemDB()
	defer db.Close()
	if err := doc.Apply(core.NewLedger(db, nil)); err == nil {
		t.Fatalf("expected invalid address to fail")
	}
}

func TestApplyRejectsInvalidAmount(t *testing.T) {
	doc, err := genesis.Load(writeDocument(t, `owner: "0x1111111111111111111111111111111111111111"
oracle: "0x2222222222222222222222222222222222222222"
tokens:
  - symbol: GOLD
    rate: "three"
    mintable: true
`))
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	db := storage.NewMemDB()
	defer db.Close()
	if err := doc.Apply(core.NewLedger(db, nil)); err == nil {
		t.Fatalf("expected invalid amount to fail")
	}
}
