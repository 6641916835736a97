package token_test

import (
	"errors"
	"math/big"
	"testing"

	"payvault/core/state"
	"payvault/native/token"
	"payvault/storage"
)

func newBank(t *testing.T) *state.Manager {
	t.Helper()
	db := storage.NewMemDB()
	t.Cleanup(db.Close)
	return state.NewManager(db)
}

func TestPaymasterMintsForMintableAssets(t *testing.T) {
	bank := newBank(t)
	pm := token.NewPaymaster()
	pm.BindMinter("GOLD", token.NewStateMinter(bank, "GOLD"))

	var recipient [20]byte
	recipient[0] = 0x01
	gold := &token.Token{Symbol: "GOLD", Rate: big.NewInt(3), Mintable: true}

	minted, err := pm.Disburse(gold, recipient, big.NewInt(90))
	if err != nil {
		t.Fatalf("disburse: %v", err)
	}
	if !minted {
		t.Fatalf("expected mint policy")
	}
	balance, err := bank.Balance("GOLD", recipient)
	if err != nil {
		t.Fatalf("balance: %v", err)
	}
	if balance.Cmp(big.NewInt(90)) != 0 {
		t.Fatalf("expected minted 90, got %s", balance)
	}
}

func TestPaymasterTransfersFromVault(t *testing.T) {
	bank := newBank(t)
	pm := token.NewPaymaster()
	pm.BindTransferor("SILVER", token.NewStateTransferor(bank, "SILVER"))

	if err := bank.Credit("SILVER", token.VaultAddress(), big.NewInt(100)); err != nil {
		t.Fatalf("fund vault: %v", err)
	}

	var recipient [20]byte
	recipient[0] = 0x02
	silver := &token.Token{Symbol: "SILVER", Rate: big.NewInt(2)}

	minted, err := pm.Disburse(silver, recipient, big.NewInt(60))
	if err != nil {
		t.Fatalf("disburse: %v", err)
	}
	if minted {
		t.Fatalf("expected transfer policy")
	}
	vaultBalance, _ := bank.Balance("SILVER", token.VaultAddress())
	if vaultBalance.Cmp(big.NewInt(40)) != 0 {
		t.Fatalf("expected vault 40, got %s", vaultBalance)
	}
	recipientBalance, _ := bank.Balance("SILVER", recipient)
	if recipientBalance.Cmp(big.NewInt(60)) != 0 {
		t.Fatalf("expected recipient 60, got %s", recipientBalance)
	}
}

func TestPaymasterRejectsUnderfundedTransfer(t *testing.T) {
	bank := newBank(t)
	pm := token.NewPaymaster()
	pm.BindTransferor("SILVER", token.NewStateTransferor(bank, "SILVER"))

	if err := bank.Credit("SILVER", token.VaultAddress(), big.NewInt(10)); err != nil {
		t.Fatalf("fund vault: %v", err)
	}

	var recipient [20]byte
	silver := &token.Token{Symbol: "SILVER", Rate: big.NewInt(2)}

	if _, err := pm.Disburse(silver, recipient, big.NewInt(11)); !errors.Is(err, token.ErrTransferRejected) {
		t.Fatalf("expected transfer rejection, got %v", err)
	}
	vaultBalance, _ := bank.Balance("SILVER", token.VaultAddress())
	if vaultBalance.Cmp(big.NewInt(10)) != 0 {
		t.Fatalf("vault must be untouched, got %s", vaultBalance)
	}
}

func TestPaymasterUnboundSymbol(t *testing.T) {
	pm := token.NewPaymaster()
	var recipient [20]byte

	if _, err := pm.Disburse(&token.Token{Symbol: "GOLD", Rate: big.NewInt(1), Mintable: true}, recipient, big.NewInt(1)); !errors.Is(err, token.ErrNoSettler) {
		t.Fatalf("expected missing minter error, got %v", err)
	}
	if _, err := pm.Disburse(&token.Token{Symbol: "SILVER", Rate: big.NewInt(1)}, recipient, big.NewInt(1)); !errors.Is(err, token.ErrNoSettler) {
		t.Fatalf("expected missing transferor error, got %v", err)
	}
	if pm.Bound("GOLD") {
		t.Fatalf("expected GOLD to be unbound")
	}
	pm.BindMinter("GOLD", token.NewStateMinter(newBank(t), "GOLD"))
	if !pm.Bound("gold") {
		t.Fatalf("expected bound lookup to normalize the symbol")
	}
}
