package events

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"payvault/core/types"
)

const (
	// TypeEmployeeEnrolled is emitted when the owner enrolls a beneficiary.
	TypeEmployeeEnrolled = "payroll.employee.enrolled"
	// TypeEmployeeRemoved is emitted when the owner unenrolls a beneficiary.
	TypeEmployeeRemoved = "payroll.employee.removed"
	// TypeEntitlementUpdated is emitted when the owner adjusts a yearly
	// entitlement.
	TypeEntitlementUpdated = "payroll.entitlement.updated"
	// TypeAssetGranted is emitted when the owner extends an employee's
	// allowed-asset set.
	TypeAssetGranted = "payroll.asset.granted"
	// TypeAllocationChanged is emitted when an employee updates their monthly
	// allocation for one asset.
	TypeAllocationChanged = "payroll.allocation.changed"
	// TypePaymentMade is emitted when a claim disburses successfully.
	TypePaymentMade = "payroll.payment.made"
)

// EmployeeEnrolled captures a new beneficiary record.
type EmployeeEnrolled struct {
	Employee    [20]byte
	Entitlement *big.Int
}

// EventType implements the Event interface.
func (EmployeeEnrolled) EventType() string { return TypeEmployeeEnrolled }

// Event converts the enrollment to the generic event payload.
func (e EmployeeEnrolled) Event() *types.Event {
	return &types.Event{
		Type: TypeEmployeeEnrolled,
		Attributes: map[string]string{
			"employee":    hexAddr(e.Employee),
			"entitlement": bigString(e.Entitlement),
		},
	}
}

// EmployeeRemoved captures a beneficiary record deletion including the
// lifetime total discarded with it.
type EmployeeRemoved struct {
	Employee         [20]byte
	Entitlement      *big.Int
	LifetimeReceived *big.Int
}

// EventType implements the Event interface.
func (EmployeeRemoved) EventType() string { return TypeEmployeeRemoved }

// Event converts the removal to the generic event payload.
func (e EmployeeRemoved) Event() *types.Event {
	return &types.Event{
		Type: TypeEmployeeRemoved,
		Attributes: map[string]string{
			"employee":          hexAddr(e.Employee),
			"entitlement":       bigString(e.Entitlement),
			"lifetime_received": bigString(e.LifetimeReceived),
		},
	}
}

// EntitlementUpdated captures an entitlement adjustment.
type EntitlementUpdated struct {
	Employee       [20]byte
	OldEntitlement *big.Int
	NewEntitlement *big.Int
}

// EventType implements the Event interface.
func (EntitlementUpdated) EventType() string { return TypeEntitlementUpdated }

// Event converts the adjustment to the generic event payload.
func (e EntitlementUpdated) Event() *types.Event {
	return &types.Event{
		Type: TypeEntitlementUpdated,
		Attributes: map[string]string{
			"employee": hexAddr(e.Employee),
			"old":      bigString(e.OldEntitlement),
			"new":      bigString(e.NewEntitlement),
		},
	}
}

// AssetGranted captures an asset being added to an employee's allowed set.
type AssetGranted struct {
	Employee [20]byte
	Symbol   string
}

// EventType implements the Event interface.
func (AssetGranted) EventType() string { return TypeAssetGranted }

// Event converts the grant to the generic event payload.
func (e AssetGranted) Event() *types.Event {
	return &types.Event{
		Type: TypeAssetGranted,
		Attributes: map[string]string{
			"employee": hexAddr(e.Employee),
			"symbol":   e.Symbol,
		},
	}
}

// AllocationChanged captures an employee updating a per-asset monthly draw.
type AllocationChanged struct {
	Employee [20]byte
	Symbol   string
	Amount   *big.Int
}

// EventType implements the Event interface.
func (AllocationChanged) EventType() string { return TypeAllocationChanged }

// Event converts the allocation change to the generic event payload.
func (e AllocationChanged) Event() *types.Event {
	return &types.Event{
		Type: TypeAllocationChanged,
		Attributes: map[string]string{
			"employee": hexAddr(e.Employee),
			"symbol":   e.Symbol,
			"amount":   bigString(e.Amount),
		},
	}
}

// PaymentMade captures a successful claim disbursement. Amount is denominated
// in the settlement asset's smallest unit; RefUnits is the reference-unit
// allocation that produced it.
type PaymentMade struct {
	Employee [20]byte
	Symbol   string
	RefUnits *big.Int
	Amount   *big.Int
	Minted   bool
}

// EventType implements the Event interface.
func (PaymentMade) EventType() string { return TypePaymentMade }

// Event converts the payment to the generic event payload.
func (e PaymentMade) Event() *types.Event {
	return &types.Event{
		Type: TypePaymentMade,
		Attributes: map[string]string{
			"employee":  hexAddr(e.Employee),
			"symbol":    e.Symbol,
			"ref_units": bigString(e.RefUnits),
			"amount":    bigString(e.Amount),
			"minted":    boolString(e.Minted),
		},
	}
}

func hexAddr(addr [20]byte) string {
	return "0x" + common.Bytes2Hex(addr[:])
}

func boolString(v bool) string {
	if v {
		return "true"
	}
	return "false"
}
