package payroll

import (
	"math/big"
)

const (
	// ClaimCooldown is the minimum elapsed time between successive claims for
	// the same employee-asset pair: four weeks in seconds.
	ClaimCooldown uint64 = 4 * 7 * 24 * 3600
	// AllocationCooldown is the minimum elapsed time between successive
	// allocation changes for the same employee-asset pair: twenty-six weeks
	// in seconds.
	AllocationCooldown uint64 = 26 * 7 * 24 * 3600

	monthsPerYear = 12
)

// AssetAssignment is the per-asset bookkeeping attached to an employee:
// the standing monthly draw in reference units plus the cooldown anchors.
// A zero timestamp means the corresponding action never happened.
type AssetAssignment struct {
	Symbol               string
	MonthlyAllocation    *big.Int
	LastAllocationChange uint64
	LastClaim            uint64
}

// Employee is one beneficiary record. Assignments is an ordered, append-only
// sequence: granting an asset appends and nothing ever removes an entry.
type Employee struct {
	Addr              [20]byte
	YearlyEntitlement *big.Int
	LifetimeReceived  *big.Int
	Assignments       []AssetAssignment
}

// Clone returns a deep copy of the employee record.
func (e *Employee) Clone() *Employee {
	if e == nil {
		return nil
	}
	clone := &Employee{
		Addr:              e.Addr,
		YearlyEntitlement: cloneBigInt(e.YearlyEntitlement),
		LifetimeReceived:  cloneBigInt(e.LifetimeReceived),
	}
	if len(e.Assignments) > 0 {
		clone.Assignments = make([]AssetAssignment, len(e.Assignments))
		for i, a := range e.Assignments {
			clone.Assignments[i] = AssetAssignment{
				Symbol:               a.Symbol,
				MonthlyAllocation:    cloneBigInt(a.MonthlyAllocation),
				LastAllocationChange: a.LastAllocationChange,
				LastClaim:            a.LastClaim,
			}
		}
	}
	return clone
}

// Assignment returns a pointer to the employee's bookkeeping entry for the
// provided symbol, or nil when the asset was never granted.
func (e *Employee) Assignment(symbol string) *AssetAssignment {
	if e == nil {
		return nil
	}
	for i := range e.Assignments {
		if e.Assignments[i].Symbol == symbol {
			return &e.Assignments[i]
		}
	}
	return nil
}

// MonthlyCap returns the per-asset allocation ceiling: the yearly entitlement
// divided by twelve with integer truncation. The cap applies to each granted
// asset independently, not to the sum across assets.
func (e *Employee) MonthlyCap() *big.Int {
	if e == nil || e.YearlyEntitlement == nil {
		return big.NewInt(0)
	}
	return new(big.Int).Quo(e.YearlyEntitlement, big.NewInt(monthsPerYear))
}

func cloneBigInt(v *big.Int) *big.Int {
	if v == nil {
		return big.NewInt(0)
	}
	return new(big.Int).Set(v)
}
