package core

import (
	"math/big"

	"payvault/core/events"
	"payvault/core/state"
	"payvault/native/access"
	"payvault/native/campaign"
	"payvault/native/payroll"
	"payvault/native/reserve"
	"payvault/native/token"
	"payvault/storage"
)

// Ledger is the single entry point for every state transition. Each mutating
// operation runs speculatively against the state manager's overlay and is
// committed only on success; a failure discards both the writes and the
// buffered events, so callers observe all-or-nothing semantics end to end.
//
// Ledger is not safe for concurrent use: operations are expected to arrive as
// a single global sequence, matching the execution model the engines assume.
type Ledger struct {
	st        *state.Manager
	buffer    *events.Buffer
	access    *access.Controller
	tokens    *token.Registry
	payroll   *payroll.Engine
	campaigns *campaign.Engine
	reserve   *reserve.Ledger
	paymaster *token.Paymaster
}

// NewLedger assembles the engines over the provided store. Events surviving a
// committed transition are forwarded to sink; pass nil to discard them.
func NewLedger(db storage.Database, sink events.Emitter) *Ledger {
	st := state.NewManager(db)
	buffer := events.NewBuffer(sink)

	ctrl := access.NewController(st)
	ctrl.SetEmitter(buffer)

	tokens := token.NewRegistry(st, ctrl)
	tokens.SetEmitter(buffer)

	paymaster := token.NewPaymaster()

	res := reserve.NewLedger(st, ctrl)
	res.SetEmitter(buffer)

	pay := payroll.NewEngine(st, ctrl, tokens, paymaster)
	pay.SetEmitter(buffer)
	pay.SetPayments(ctrl)

	camp := campaign.NewEngine(st, ctrl, tokens, paymaster, res)
	camp.SetEmitter(buffer)

	// Assets registered in an earlier session need their default settlers
	// rebound; external capabilities can still replace them afterwards.
	if symbols, err := tokens.List(); err == nil {
		for _, symbol := range symbols {
			if !paymaster.Bound(symbol) {
				paymaster.BindMinter(symbol, token.NewStateMinter(st, symbol))
				paymaster.BindTransferor(symbol, token.NewStateTransferor(st, symbol))
			}
		}
	}

	return &Ledger{
		st:        st,
		buffer:    buffer,
		access:    ctrl,
		tokens:    tokens,
		payroll:   pay,
		campaigns: camp,
		reserve:   res,
		paymaster: paymaster,
	}
}

// SetNowFunc overrides the time source of the time-dependent engines.
// Primarily intended for tests.
func (l *Ledger) SetNowFunc(now func() uint64) {
	l.payroll.SetNowFunc(now)
	l.campaigns.SetNowFunc(now)
}

// BindMinter attaches an external mint capability for a settlement asset,
// replacing the default state-backed settler.
func (l *Ledger) BindMinter(symbol string, m token.Minter) {
	l.paymaster.BindMinter(symbol, m)
}

// BindTransferor attaches an external transfer capability for a settlement
// asset, replacing the default state-backed settler.
func (l *Ledger) BindTransferor(symbol string, t token.Transferor) {
	l.paymaster.BindTransferor(symbol, t)
}

// execute runs one speculative transition and commits or discards it.
func (l *Ledger) execute(fn func() error) error {
	if err := fn(); err != nil {
		l.st.Discard()
		l.buffer.Reset()
		return err
	}
	if err := l.st.Commit(); err != nil {
		l.st.Discard()
		l.buffer.Reset()
		return err
	}
	l.buffer.Flush()
	return nil
}

// --- Access control ---

// Bootstrap fixes the owner and oracle role holders. It may run exactly once.
func (l *Ledger) Bootstrap(owner, oracle [20]byte) error {
	return l.execute(func() error { return l.access.Bootstrap(owner, oracle) })
}

// SetOracle reassigns the oracle role. Owner only.
func (l *Ledger) SetOracle(caller, newOracle [20]byte) error {
	return l.execute(func() error { return l.access.SetOracle(caller, newOracle) })
}

// SetPaymentsAllowed toggles the global gate on employee-initiated
// operations. Owner only.
func (l *Ledger) SetPaymentsAllowed(caller [20]byte, allowed bool) error {
	return l.execute(func() error { return l.access.SetPaymentsAllowed(caller, allowed) })
}

// Owner returns the owner role holder.
func (l *Ledger) Owner() ([20]byte, error) { return l.access.Owner() }

// Oracle returns the oracle role holder.
func (l *Ledger) Oracle() ([20]byte, error) { return l.access.Oracle() }

// PaymentsAllowed reports the global payments gate.
func (l *Ledger) PaymentsAllowed() bool { return l.access.PaymentsAllowed() }

// --- Token registry ---

// RegisterToken upserts a settlement asset and, unless an external capability
// was bound, attaches the default state-backed settlers for it. Owner only.
func (l *Ledger) RegisterToken(caller [20]byte, symbol string, rate *big.Int, mintable bool) error {
	return l.execute(func() error {
		if err := l.tokens.Register(caller, &token.Token{Symbol: symbol, Rate: rate, Mintable: mintable}); err != nil {
			return err
		}
		if !l.paymaster.Bound(symbol) {
			l.paymaster.BindMinter(symbol, token.NewStateMinter(l.st, symbol))
			l.paymaster.BindTransferor(symbol, token.NewStateTransferor(l.st, symbol))
		}
		return nil
	})
}

// SetRate updates a registered asset's exchange rate. Oracle only.
func (l *Ledger) SetRate(caller [20]byte, symbol string, rate *big.Int) error {
	return l.execute(func() error { return l.tokens.SetRate(caller, symbol, rate) })
}

// SetReferenceRate updates the global raw-to-reference conversion rate.
// Oracle only.
func (l *Ledger) SetReferenceRate(caller [20]byte, rate *big.Int) error {
	return l.execute(func() error { return l.tokens.SetReferenceRate(caller, rate) })
}

// Token retrieves a registered settlement asset.
func (l *Ledger) Token(symbol string) (*token.Token, bool) { return l.tokens.Get(symbol) }

// Tokens returns every registered symbol in registration order.
func (l *Ledger) Tokens() ([]string, error) { return l.tokens.List() }

// ReferenceRate returns the global raw-to-reference conversion rate.
func (l *Ledger) ReferenceRate() (*big.Int, error) { return l.tokens.ReferenceRate() }

// --- Employee ledger ---

// Enroll creates a beneficiary record. Owner only.
func (l *Ledger) Enroll(caller, employee [20]byte, yearlyEntitlement *big.Int) error {
	return l.execute(func() error { return l.payroll.Enroll(caller, employee, yearlyEntitlement) })
}

// Unenroll deletes a beneficiary record including its lifetime history.
// Owner only.
func (l *Ledger) Unenroll(caller, employee [20]byte) error {
	return l.execute(func() error { return l.payroll.Unenroll(caller, employee) })
}

// SetEntitlement adjusts a yearly entitlement. Owner only.
func (l *Ledger) SetEntitlement(caller, employee [20]byte, yearlyEntitlement *big.Int) error {
	return l.execute(func() error { return l.payroll.SetEntitlement(caller, employee, yearlyEntitlement) })
}

// GrantAsset extends an employee's allowed-asset set. Owner only.
func (l *Ledger) GrantAsset(caller, employee [20]byte, symbol string) error {
	return l.execute(func() error { return l.payroll.GrantAsset(caller, employee, symbol) })
}

// SetMonthlyAllocation records the calling employee's standing monthly draw
// for one granted asset.
func (l *Ledger) SetMonthlyAllocation(caller [20]byte, symbol string, amount *big.Int) error {
	return l.execute(func() error { return l.payroll.SetMonthlyAllocation(caller, symbol, amount) })
}

// Claim disburses the calling employee's monthly allocation for one asset and
// returns the asset-unit amount paid.
func (l *Ledger) Claim(caller [20]byte, symbol string) (*big.Int, error) {
	var amount *big.Int
	err := l.execute(func() error {
		var claimErr error
		amount, claimErr = l.payroll.Claim(caller, symbol)
		return claimErr
	})
	if err != nil {
		return nil, err
	}
	return amount, nil
}

// Employee retrieves a beneficiary record.
func (l *Ledger) Employee(addr [20]byte) (*payroll.Employee, bool) { return l.payroll.Get(addr) }

// AggregateEntitlement returns the tracked sum of live yearly entitlements.
func (l *Ledger) AggregateEntitlement() (*big.Int, error) {
	return l.payroll.AggregateEntitlement()
}

// Employees returns every currently enrolled beneficiary address.
func (l *Ledger) Employees() ([][20]byte, error) { return l.payroll.Employees() }

// --- Campaigns ---

// CreateCampaign opens a new raise. Owner only.
func (l *Ledger) CreateCampaign(caller [20]byte, title string, goal *big.Int, durationSeconds uint64, rewardAsset string) ([32]byte, error) {
	var id [32]byte
	err := l.execute(func() error {
		var createErr error
		id, createErr = l.campaigns.Create(caller, title, goal, durationSeconds, rewardAsset)
		return createErr
	})
	return id, err
}

// Contribute accepts raw value toward an open campaign from any caller.
func (l *Ledger) Contribute(caller [20]byte, id [32]byte, rawValue *big.Int) error {
	return l.execute(func() error { return l.campaigns.Contribute(caller, id, rawValue) })
}

// FinalizeCampaign settles a campaign after its deadline. Owner only.
func (l *Ledger) FinalizeCampaign(caller [20]byte, id [32]byte) error {
	return l.execute(func() error { return l.campaigns.Finalize(caller, id) })
}

// RefundContributor refunds one contributor of a failed campaign and returns
// the raw value paid out. Owner only.
func (l *Ledger) RefundContributor(caller [20]byte, id [32]byte, contributor [20]byte) (*big.Int, error) {
	var refund *big.Int
	err := l.execute(func() error {
		var refundErr error
		refund, refundErr = l.campaigns.RefundContributor(caller, id, contributor)
		return refundErr
	})
	if err != nil {
		return nil, err
	}
	return refund, nil
}

// Campaign retrieves a campaign record.
func (l *Ledger) Campaign(id [32]byte) (*campaign.Campaign, bool) { return l.campaigns.Get(id) }

// Contribution returns one contributor's recorded reference-unit amount.
func (l *Ledger) Contribution(id [32]byte, contributor [20]byte) (*big.Int, error) {
	return l.campaigns.Contribution(id, contributor)
}

// --- Reserve ---

// Deposit credits a direct raw-value inflow from any caller.
func (l *Ledger) Deposit(from [20]byte, amount *big.Int) error {
	return l.execute(func() error { return l.reserve.Deposit(from, amount) })
}

// Withdraw debits the reserve in favour of an external recipient. Owner only.
func (l *Ledger) Withdraw(caller, to [20]byte, amount *big.Int) error {
	return l.execute(func() error { return l.reserve.Withdraw(caller, to, amount) })
}

// ReserveBalance returns the current raw-value reserve.
func (l *Ledger) ReserveBalance() (*big.Int, error) { return l.reserve.Balance() }

// --- Vault ---

// FundVault credits the system vault's holdings of a non-mintable asset so
// transfer-policy disbursements can be paid. Owner only.
func (l *Ledger) FundVault(caller [20]byte, symbol string, amount *big.Int) error {
	return l.execute(func() error {
		if err := l.access.RequireOwner(caller); err != nil {
			return err
		}
		normalized, err := token.NormalizeSymbol(symbol)
		if err != nil {
			return err
		}
		return l.st.Credit(normalized, token.VaultAddress(), amount)
	})
}

// VaultBalance returns the system vault's holdings of one asset.
func (l *Ledger) VaultBalance(symbol string) (*big.Int, error) {
	normalized, err := token.NormalizeSymbol(symbol)
	if err != nil {
		return nil, err
	}
	return l.st.Balance(normalized, token.VaultAddress())
}

// Balance returns an arbitrary account's holdings of one asset, covering the
// balanceOf capability for state-backed settlement assets.
func (l *Ledger) Balance(symbol string, addr [20]byte) (*big.Int, error) {
	normalized, err := token.NormalizeSymbol(symbol)
	if err != nil {
		return nil, err
	}
	return l.st.Balance(normalized, addr)
}
