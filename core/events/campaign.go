package events

import (
	"math/big"
	"strconv"

	"github.com/ethereum/go-ethereum/common"

	"payvault/core/types"
)

const (
	// TypeCampaignCreated is emitted when the owner opens a new campaign.
	TypeCampaignCreated = "campaign.created"
	// TypeCampaignContributed is emitted for every accepted contribution.
	TypeCampaignContributed = "campaign.contributed"
	// TypeCampaignFinalized is emitted exactly once per campaign when the
	// owner settles it after the deadline.
	TypeCampaignFinalized = "campaign.finalized"
	// TypeCampaignRewardPaid is emitted per contributor when a successful
	// campaign disburses rewards.
	TypeCampaignRewardPaid = "campaign.reward.paid"
	// TypeCampaignRefunded is emitted when a contributor to a failed campaign
	// is refunded.
	TypeCampaignRefunded = "campaign.refunded"
)

// CampaignCreated captures a newly opened campaign.
type CampaignCreated struct {
	ID          [32]byte
	Title       string
	Goal        *big.Int
	Deadline    uint64
	RewardAsset string
}

// EventType implements the Event interface.
func (CampaignCreated) EventType() string { return TypeCampaignCreated }

// Event converts the creation to the generic event payload.
func (e CampaignCreated) Event() *types.Event {
	return &types.Event{
		Type: TypeCampaignCreated,
		Attributes: map[string]string{
			"id":           hexID(e.ID),
			"title":        e.Title,
			"goal":         bigString(e.Goal),
			"deadline":     strconv.FormatUint(e.Deadline, 10),
			"reward_asset": e.RewardAsset,
		},
	}
}

// CampaignContributed captures one accepted contribution, in both raw value
// and converted reference units.
type CampaignContributed struct {
	ID          [32]byte
	Contributor [20]byte
	RawValue    *big.Int
	RefUnits    *big.Int
	Raised      *big.Int
}

// EventType implements the Event interface.
func (CampaignContributed) EventType() string { return TypeCampaignContributed }

// Event converts the contribution to the generic event payload.
func (e CampaignContributed) Event() *types.Event {
	return &types.Event{
		Type: TypeCampaignContributed,
		Attributes: map[string]string{
			"id":          hexID(e.ID),
			"contributor": hexAddr(e.Contributor),
			"raw_value":   bigString(e.RawValue),
			"ref_units":   bigString(e.RefUnits),
			"raised":      bigString(e.Raised),
		},
	}
}

// CampaignFinalized captures the terminal success/failure decision.
type CampaignFinalized struct {
	ID        [32]byte
	Raised    *big.Int
	Goal      *big.Int
	Succeeded bool
}

// EventType implements the Event interface.
func (CampaignFinalized) EventType() string { return TypeCampaignFinalized }

// Event converts the finalization to the generic event payload.
func (e CampaignFinalized) Event() *types.Event {
	return &types.Event{
		Type: TypeCampaignFinalized,
		Attributes: map[string]string{
			"id":        hexID(e.ID),
			"raised":    bigString(e.Raised),
			"goal":      bigString(e.Goal),
			"succeeded": boolString(e.Succeeded),
		},
	}
}

// CampaignRewardPaid captures a per-contributor reward disbursement on a
// successful campaign.
type CampaignRewardPaid struct {
	ID          [32]byte
	Contributor [20]byte
	RefUnits    *big.Int
	Amount      *big.Int
	Symbol      string
}

// EventType implements the Event interface.
func (CampaignRewardPaid) EventType() string { return TypeCampaignRewardPaid }

// Event converts the reward payment to the generic event payload.
func (e CampaignRewardPaid) Event() *types.Event {
	return &types.Event{
		Type: TypeCampaignRewardPaid,
		Attributes: map[string]string{
			"id":          hexID(e.ID),
			"contributor": hexAddr(e.Contributor),
			"ref_units":   bigString(e.RefUnits),
			"amount":      bigString(e.Amount),
			"symbol":      e.Symbol,
		},
	}
}

// CampaignRefunded captures a proportional refund to one contributor of a
// failed campaign.
type CampaignRefunded struct {
	ID          [32]byte
	Contributor [20]byte
	RefUnits    *big.Int
	RawValue    *big.Int
}

// EventType implements the Event interface.
func (CampaignRefunded) EventType() string { return TypeCampaignRefunded }

// Event converts the refund to the generic event payload.
func (e CampaignRefunded) Event() *types.Event {
	return &types.Event{
		Type: TypeCampaignRefunded,
		Attributes: map[string]string{
			"id":          hexID(e.ID),
			"contributor": hexAddr(e.Contributor),
			"ref_units":   bigString(e.RefUnits),
			"raw_value":   bigString(e.RawValue),
		},
	}
}

func hexID(id [32]byte) string {
	return "0x" + common.Bytes2Hex(id[:])
}
