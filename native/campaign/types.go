package campaign

import (
	"math/big"
)

// Status is the derived lifecycle position of a campaign. Open and
// AwaitingFinalization are functions of the clock; the finalized states are
// terminal and fixed forever at the finalize transition.
type Status uint8

const (
	StatusOpen Status = iota
	StatusAwaitingFinalization
	StatusSucceeded
	StatusFailed
)

// Campaign is one time-boxed raise. Raised and the per-contributor amounts
// are denominated in reference units; TotalRaw tracks the actual raw value
// received, which can drift from Raised in scale when the conversion rate
// moves mid-campaign. Contributors is append-only: a contributor enters the
// list exactly once and never leaves, even after a refund zeroes their
// recorded contribution.
type Campaign struct {
	ID           [32]byte
	Title        string
	Goal         *big.Int
	Raised       *big.Int
	Deadline     uint64
	Finalized    bool
	Succeeded    bool
	RewardAsset  string
	Contributors [][20]byte
	TotalRaw     *big.Int
}

// StatusAt reports the campaign's lifecycle position at the provided time.
func (c *Campaign) StatusAt(now uint64) Status {
	if c.Finalized {
		if c.Succeeded {
			return StatusSucceeded
		}
		return StatusFailed
	}
	if now <= c.Deadline {
		return StatusOpen
	}
	return StatusAwaitingFinalization
}

// Clone returns a deep copy of the campaign record.
func (c *Campaign) Clone() *Campaign {
	if c == nil {
		return nil
	}
	clone := *c
	clone.Goal = cloneBigInt(c.Goal)
	clone.Raised = cloneBigInt(c.Raised)
	clone.TotalRaw = cloneBigInt(c.TotalRaw)
	if len(c.Contributors) > 0 {
		clone.Contributors = make([][20]byte, len(c.Contributors))
		copy(clone.Contributors, c.Contributors)
	}
	return &clone
}

func cloneBigInt(v *big.Int) *big.Int {
	if v == nil {
		return big.NewInt(0)
	}
	return new(big.Int).Set(v)
}
