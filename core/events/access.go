package events

import (
	"payvault/core/types"
)

const (
	// TypeOracleRotated is emitted when the owner reassigns the oracle role.
	TypeOracleRotated = "access.oracle.rotated"
	// TypePaymentsPaused is emitted when the owner blocks employee payments.
	TypePaymentsPaused = "access.payments.paused"
	// TypePaymentsResumed is emitted when the owner re-enables payments.
	TypePaymentsResumed = "access.payments.resumed"
)

// OracleRotated captures an oracle reassignment.
type OracleRotated struct {
	OldOracle [20]byte
	NewOracle [20]byte
}

// EventType implements the Event interface.
func (OracleRotated) EventType() string { return TypeOracleRotated }

// Event converts the rotation to the generic event payload.
func (e OracleRotated) Event() *types.Event {
	return &types.Event{
		Type: TypeOracleRotated,
		Attributes: map[string]string{
			"old_oracle": hexAddr(e.OldOracle),
			"new_oracle": hexAddr(e.NewOracle),
		},
	}
}

// PaymentsPaused captures the payments gate closing.
type PaymentsPaused struct {
	Owner [20]byte
}

// EventType implements the Event interface.
func (PaymentsPaused) EventType() string { return TypePaymentsPaused }

// Event converts the pause to the generic event payload.
func (e PaymentsPaused) Event() *types.Event {
	return &types.Event{
		Type:       TypePaymentsPaused,
		Attributes: map[string]string{"owner": hexAddr(e.Owner)},
	}
}

// PaymentsResumed captures the payments gate reopening.
type PaymentsResumed struct {
	Owner [20]byte
}

// EventType implements the Event interface.
func (PaymentsResumed) EventType() string { return TypePaymentsResumed }

// Event converts the resume to the generic event payload.
func (e PaymentsResumed) Event() *types.Event {
	return &types.Event{
		Type:       TypePaymentsResumed,
		Attributes: map[string]string{"owner": hexAddr(e.Owner)},
	}
}
