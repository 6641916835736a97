package events

import (
	"math/big"

	"payvault/core/types"
)

const (
	// TypeReserveDeposited is emitted when raw value enters the reserve
	// outside of a campaign contribution.
	TypeReserveDeposited = "reserve.deposited"
	// TypeReserveWithdrawn is emitted when the owner debits the reserve.
	TypeReserveWithdrawn = "reserve.withdrawn"
)

// ReserveDeposited captures a direct raw-value inflow.
type ReserveDeposited struct {
	From    [20]byte
	Amount  *big.Int
	Balance *big.Int
}

// EventType implements the Event interface.
func (ReserveDeposited) EventType() string { return TypeReserveDeposited }

// Event converts the deposit to the generic event payload.
func (e ReserveDeposited) Event() *types.Event {
	return &types.Event{
		Type: TypeReserveDeposited,
		Attributes: map[string]string{
			"from":    hexAddr(e.From),
			"amount":  bigString(e.Amount),
			"balance": bigString(e.Balance),
		},
	}
}

// ReserveWithdrawn captures an owner withdrawal from the reserve.
type ReserveWithdrawn struct {
	To      [20]byte
	Amount  *big.Int
	Balance *big.Int
}

// EventType implements the Event interface.
func (ReserveWithdrawn) EventType() string { return TypeReserveWithdrawn }

// Event converts the withdrawal to the generic event payload.
func (e ReserveWithdrawn) Event() *types.Event {
	return &types.Event{
		Type: TypeReserveWithdrawn,
		Attributes: map[string]string{
			"to":      hexAddr(e.To),
			"amount":  bigString(e.Amount),
			"balance": bigString(e.Balance),
		},
	}
}
