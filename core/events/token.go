package events

import (
	"math/big"
	"strconv"

	"payvault/core/types"
)

const (
	// TypeTokenRegistered is emitted when a settlement asset is registered or
	// overwritten in the registry.
	TypeTokenRegistered = "token.registered"
	// TypeTokenRateUpdated is emitted when the oracle adjusts an asset's
	// exchange rate.
	TypeTokenRateUpdated = "token.rate.updated"
	// TypeReferenceRateUpdated is emitted when the oracle adjusts the global
	// raw-to-reference conversion rate.
	TypeReferenceRateUpdated = "token.reference_rate.updated"
)

// TokenRegistered captures a settlement asset entering (or replacing an entry
// in) the registry.
type TokenRegistered struct {
	Symbol      string
	Rate        *big.Int
	Mintable    bool
	Overwritten bool
}

// EventType implements the Event interface.
func (TokenRegistered) EventType() string { return TypeTokenRegistered }

// Event converts the registration to the generic event payload.
func (e TokenRegistered) Event() *types.Event {
	return &types.Event{
		Type: TypeTokenRegistered,
		Attributes: map[string]string{
			"symbol":      e.Symbol,
			"rate":        bigString(e.Rate),
			"mintable":    strconv.FormatBool(e.Mintable),
			"overwritten": strconv.FormatBool(e.Overwritten),
		},
	}
}

// TokenRateUpdated captures an oracle rate adjustment for one asset.
type TokenRateUpdated struct {
	Symbol  string
	OldRate *big.Int
	NewRate *big.Int
}

// EventType implements the Event interface.
func (TokenRateUpdated) EventType() string { return TypeTokenRateUpdated }

// Event converts the rate update to the generic event payload.
func (e TokenRateUpdated) Event() *types.Event {
	return &types.Event{
		Type: TypeTokenRateUpdated,
		Attributes: map[string]string{
			"symbol":   e.Symbol,
			"old_rate": bigString(e.OldRate),
			"new_rate": bigString(e.NewRate),
		},
	}
}

// ReferenceRateUpdated captures an adjustment of the raw-to-reference
// conversion rate used by campaign contributions.
type ReferenceRateUpdated struct {
	OldRate *big.Int
	NewRate *big.Int
}

// EventType implements the Event interface.
func (ReferenceRateUpdated) EventType() string { return TypeReferenceRateUpdated }

// Event converts the rate update to the generic event payload.
func (e ReferenceRateUpdated) Event() *types.Event {
	return &types.Event{
		Type: TypeReferenceRateUpdated,
		Attributes: map[string]string{
			"old_rate": bigString(e.OldRate),
			"new_rate": bigString(e.NewRate),
		},
	}
}

func bigString(v *big.Int) string {
	if v == nil {
		return "0"
	}
	return v.String()
}
