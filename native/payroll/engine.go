package payroll

import (
	"fmt"
	"math/big"
	"time"

	"payvault/core/events"
	nativecommon "payvault/native/common"
	"payvault/native/token"
)

const (
	employeePrefix   = "payroll:employee:"
	employeeIndexKey = "payroll:index"
	aggregateKey     = "payroll:aggregate-entitlement"
)

type engineState interface {
	KVPut(key []byte, value interface{}) error
	KVGet(key []byte, out interface{}) (bool, error)
	KVDelete(key []byte) error
	KVAppend(key []byte, value []byte) error
	KVGetList(key []byte, out interface{}) error
}

type authorizer interface {
	RequireOwner(caller [20]byte) error
}

type tokenView interface {
	Get(symbol string) (*token.Token, bool)
	Exists(symbol string) bool
}

type disburser interface {
	Disburse(t *token.Token, to [20]byte, amount *big.Int) (bool, error)
}

// Engine is the employee ledger plus the payday protocol: owner-gated
// registry maintenance, employee self-service allocation with its 26-week
// cooldown, and the claim path converting a reference-unit allocation into a
// settlement-asset disbursement under the 4-week cooldown.
type Engine struct {
	st        engineState
	auth      authorizer
	tokens    tokenView
	paymaster disburser
	payments  nativecommon.PaymentsView
	emitter   events.Emitter
	nowFn     func() uint64
}

// NewEngine creates a payroll engine over the provided collaborators.
func NewEngine(st engineState, auth authorizer, tokens tokenView, paymaster disburser) *Engine {
	return &Engine{
		st:        st,
		auth:      auth,
		tokens:    tokens,
		paymaster: paymaster,
		emitter:   events.NoopEmitter{},
		nowFn:     func() uint64 { return uint64(time.Now().Unix()) },
	}
}

// SetEmitter configures the event emitter. Passing nil resets it to a no-op
// implementation.
func (e *Engine) SetEmitter(emitter events.Emitter) {
	if emitter == nil {
		e.emitter = events.NoopEmitter{}
		return
	}
	e.emitter = emitter
}

// SetPayments wires the global payments gate consulted by employee-initiated
// operations.
func (e *Engine) SetPayments(view nativecommon.PaymentsView) { e.payments = view }

// SetNowFunc overrides the time source. Primarily intended for tests to
// provide deterministic timestamps.
func (e *Engine) SetNowFunc(now func() uint64) {
	if now == nil {
		e.nowFn = func() uint64 { return uint64(time.Now().Unix()) }
		return
	}
	e.nowFn = now
}

func (e *Engine) now() uint64 { return e.nowFn() }

func employeeKey(addr [20]byte) []byte {
	buf := make([]byte, 0, len(employeePrefix)+len(addr))
	buf = append(buf, employeePrefix...)
	buf = append(buf, addr[:]...)
	return buf
}

func (e *Engine) load(addr [20]byte) (*Employee, bool, error) {
	emp := new(Employee)
	found, err := e.st.KVGet(employeeKey(addr), emp)
	if err != nil || !found {
		return nil, false, err
	}
	return emp, true, nil
}

func (e *Engine) store(emp *Employee) error {
	return e.st.KVPut(employeeKey(emp.Addr), emp)
}

func (e *Engine) aggregate() (*big.Int, error) {
	total := new(big.Int)
	found, err := e.st.KVGet([]byte(aggregateKey), total)
	if err != nil {
		return nil, err
	}
	if !found {
		return big.NewInt(0), nil
	}
	return total, nil
}

func (e *Engine) adjustAggregate(delta *big.Int) error {
	total, err := e.aggregate()
	if err != nil {
		return err
	}
	return e.st.KVPut([]byte(aggregateKey), new(big.Int).Add(total, delta))
}

// Enroll creates a beneficiary record with the provided yearly entitlement
// and adds it to the tracked aggregate. Owner only.
func (e *Engine) Enroll(caller, employee [20]byte, yearlyEntitlement *big.Int) error {
	if err := e.auth.RequireOwner(caller); err != nil {
		return err
	}
	if yearlyEntitlement == nil || yearlyEntitlement.Sign() < 0 {
		return ErrNegativeEntitlement
	}
	if _, found, err := e.load(employee); err != nil {
		return err
	} else if found {
		return ErrAlreadyEnrolled
	}
	record := &Employee{
		Addr:              employee,
		YearlyEntitlement: new(big.Int).Set(yearlyEntitlement),
		LifetimeReceived:  big.NewInt(0),
	}
	if err := e.store(record); err != nil {
		return err
	}
	if err := e.st.KVAppend([]byte(employeeIndexKey), employee[:]); err != nil {
		return err
	}
	if err := e.adjustAggregate(yearlyEntitlement); err != nil {
		return err
	}
	e.emit(events.EmployeeEnrolled{Employee: employee, Entitlement: cloneBigInt(yearlyEntitlement)})
	return nil
}

// Unenroll deletes the beneficiary record, discarding the lifetime-received
// history, and subtracts its entitlement from the aggregate. Owner only.
func (e *Engine) Unenroll(caller, employee [20]byte) error {
	if err := e.auth.RequireOwner(caller); err != nil {
		return err
	}
	record, found, err := e.load(employee)
	if err != nil {
		return err
	}
	if !found {
		return ErrNotEnrolled
	}
	if err := e.st.KVDelete(employeeKey(employee)); err != nil {
		return err
	}
	if err := e.adjustAggregate(new(big.Int).Neg(record.YearlyEntitlement)); err != nil {
		return err
	}
	e.emit(events.EmployeeRemoved{
		Employee:         employee,
		Entitlement:      cloneBigInt(record.YearlyEntitlement),
		LifetimeReceived: cloneBigInt(record.LifetimeReceived),
	})
	return nil
}

// SetEntitlement adjusts the yearly entitlement and the tracked aggregate by
// the delta. Owner only.
func (e *Engine) SetEntitlement(caller, employee [20]byte, yearlyEntitlement *big.Int) error {
	if err := e.auth.RequireOwner(caller); err != nil {
		return err
	}
	if yearlyEntitlement == nil || yearlyEntitlement.Sign() < 0 {
		return ErrNegativeEntitlement
	}
	record, found, err := e.load(employee)
	if err != nil {
		return err
	}
	if !found {
		return ErrNotEnrolled
	}
	old := cloneBigInt(record.YearlyEntitlement)
	delta := new(big.Int).Sub(yearlyEntitlement, old)
	record.YearlyEntitlement = new(big.Int).Set(yearlyEntitlement)
	if err := e.store(record); err != nil {
		return err
	}
	if err := e.adjustAggregate(delta); err != nil {
		return err
	}
	e.emit(events.EntitlementUpdated{
		Employee:       employee,
		OldEntitlement: old,
		NewEntitlement: cloneBigInt(yearlyEntitlement),
	})
	return nil
}

// GrantAsset appends the asset to the employee's allowed set. Owner only; the
// asset must be registered and not already granted.
func (e *Engine) GrantAsset(caller, employee [20]byte, symbol string) error {
	if err := e.auth.RequireOwner(caller); err != nil {
		return err
	}
	normalized, err := token.NormalizeSymbol(symbol)
	if err != nil {
		return err
	}
	if !e.tokens.Exists(normalized) {
		return fmt.Errorf("%w: %s", ErrAssetNotRegistered, normalized)
	}
	record, found, err := e.load(employee)
	if err != nil {
		return err
	}
	if !found {
		return ErrNotEnrolled
	}
	if record.Assignment(normalized) != nil {
		return fmt.Errorf("%w: %s", ErrAssetAlreadyGranted, normalized)
	}
	record.Assignments = append(record.Assignments, AssetAssignment{
		Symbol:            normalized,
		MonthlyAllocation: big.NewInt(0),
	})
	if err := e.store(record); err != nil {
		return err
	}
	e.emit(events.AssetGranted{Employee: employee, Symbol: normalized})
	return nil
}

// SetMonthlyAllocation records the caller's standing monthly draw for one
// granted asset. The amount is capped at yearlyEntitlement/12 (integer
// truncation) per asset, and a change resets the 26-week cooldown. The cap is
// checked per asset only, never against the sum across granted assets.
func (e *Engine) SetMonthlyAllocation(caller [20]byte, symbol string, amount *big.Int) error {
	if err := nativecommon.Guard(e.payments); err != nil {
		return err
	}
	normalized, err := token.NormalizeSymbol(symbol)
	if err != nil {
		return err
	}
	record, found, err := e.load(caller)
	if err != nil {
		return err
	}
	if !found {
		return ErrNotEnrolled
	}
	assignment := record.Assignment(normalized)
	if assignment == nil {
		return fmt.Errorf("%w: %s", ErrAssetNotGranted, normalized)
	}
	now := e.now()
	if assignment.LastAllocationChange != 0 && now < assignment.LastAllocationChange+AllocationCooldown {
		return ErrAllocationCooldown
	}
	if amount == nil || amount.Sign() < 0 {
		return ErrInvalidAllocation
	}
	if amount.Cmp(record.MonthlyCap()) > 0 {
		return ErrAllocationTooHigh
	}
	assignment.MonthlyAllocation = new(big.Int).Set(amount)
	assignment.LastAllocationChange = now
	if err := e.store(record); err != nil {
		return err
	}
	e.emit(events.AllocationChanged{Employee: caller, Symbol: normalized, Amount: cloneBigInt(amount)})
	return nil
}

// Claim disburses the caller's standing monthly allocation for one asset:
// allocation (reference units) times the asset's exchange rate, paid by mint
// or by transfer from the system vault depending on the asset's policy. The
// 4-week cooldown applies from the previous claim; the first claim for an
// asset is unconstrained. The ledger record is only updated when the
// disbursement succeeds, so a failed claim leaves no partial state.
func (e *Engine) Claim(caller [20]byte, symbol string) (*big.Int, error) {
	if err := nativecommon.Guard(e.payments); err != nil {
		return nil, err
	}
	normalized, err := token.NormalizeSymbol(symbol)
	if err != nil {
		return nil, err
	}
	record, found, err := e.load(caller)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, ErrNotEnrolled
	}
	assignment := record.Assignment(normalized)
	if assignment == nil {
		return nil, fmt.Errorf("%w: %s", ErrAssetNotGranted, normalized)
	}
	now := e.now()
	if assignment.LastClaim != 0 && now < assignment.LastClaim+ClaimCooldown {
		return nil, ErrClaimCooldown
	}
	if assignment.MonthlyAllocation == nil || assignment.MonthlyAllocation.Sign() == 0 {
		return nil, ErrNoAllocation
	}
	tok, ok := e.tokens.Get(normalized)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrAssetNotRegistered, normalized)
	}
	refUnits := cloneBigInt(assignment.MonthlyAllocation)
	amount := new(big.Int).Mul(refUnits, tok.Rate)
	minted, err := e.paymaster.Disburse(tok, caller, amount)
	if err != nil {
		return nil, err
	}
	assignment.LastClaim = now
	record.LifetimeReceived = new(big.Int).Add(record.LifetimeReceived, refUnits)
	if err := e.store(record); err != nil {
		return nil, err
	}
	e.emit(events.PaymentMade{
		Employee: caller,
		Symbol:   normalized,
		RefUnits: refUnits,
		Amount:   cloneBigInt(amount),
		Minted:   minted,
	})
	return amount, nil
}

// Get retrieves an employee record by address.
func (e *Engine) Get(addr [20]byte) (*Employee, bool) {
	record, found, err := e.load(addr)
	if err != nil || !found {
		return nil, false
	}
	return record, true
}

// IsEnrolled reports whether addr has a live beneficiary record.
func (e *Engine) IsEnrolled(addr [20]byte) bool {
	_, found := e.Get(addr)
	return found
}

// AggregateEntitlement returns the incrementally tracked sum of all live
// employees' yearly entitlements.
func (e *Engine) AggregateEntitlement() (*big.Int, error) {
	return e.aggregate()
}

// Employees returns every address that was ever enrolled, filtered down to
// live records. The index itself is append-only.
func (e *Engine) Employees() ([][20]byte, error) {
	var raw [][]byte
	if err := e.st.KVGetList([]byte(employeeIndexKey), &raw); err != nil {
		return nil, err
	}
	out := make([][20]byte, 0, len(raw))
	for _, b := range raw {
		var addr [20]byte
		copy(addr[:], b)
		if e.IsEnrolled(addr) {
			out = append(out, addr)
		}
	}
	return out, nil
}

func (e *Engine) emit(event events.Event) {
	if e.emitter == nil {
		return
	}
	e.emitter.Emit(event)
}
