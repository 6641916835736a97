package campaign

import (
	"encoding/binary"
	"fmt"
	"math/big"
	"strings"
	"time"

	ethcrypto "github.com/ethereum/go-ethereum/crypto"

	"payvault/core/events"
	"payvault/native/token"
)

const (
	campaignPrefix = "campaign:meta:"
	campaignIndex  = "campaign:index"
	campaignNonce  = "campaign:nonce"
	contribPrefix  = "campaign:contrib:"
)

type engineState interface {
	KVPut(key []byte, value interface{}) error
	KVGet(key []byte, out interface{}) (bool, error)
	KVAppend(key []byte, value []byte) error
	KVGetList(key []byte, out interface{}) error
}

type authorizer interface {
	RequireOwner(caller [20]byte) error
}

type tokenView interface {
	Get(symbol string) (*token.Token, bool)
	Exists(symbol string) bool
	ReferenceRate() (*big.Int, error)
}

type disburser interface {
	Disburse(t *token.Token, to [20]byte, amount *big.Int) (bool, error)
}

type reserveLedger interface {
	Credit(amount *big.Int) error
	Debit(amount *big.Int) error
}

// Engine runs the campaign lifecycle: an owner-created, time-boxed raise that
// accumulates reference units, then either pays every contributor their
// pro-rata reward in the chosen settlement asset or leaves the raw value in
// the shared reserve for manual refunds.
type Engine struct {
	st        engineState
	auth      authorizer
	tokens    tokenView
	paymaster disburser
	reserve   reserveLedger
	emitter   events.Emitter
	nowFn     func() uint64
}

// NewEngine creates a campaign engine over the provided collaborators.
func NewEngine(st engineState, auth authorizer, tokens tokenView, paymaster disburser, reserve reserveLedger) *Engine {
	return &Engine{
		st:        st,
		auth:      auth,
		tokens:    tokens,
		paymaster: paymaster,
		reserve:   reserve,
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

func campaignKey(id [32]byte) []byte {
	buf := make([]byte, 0, len(campaignPrefix)+len(id))
	buf = append(buf, campaignPrefix...)
	buf = append(buf, id[:]...)
	return buf
}

func contribKey(id [32]byte, contributor [20]byte) []byte {
	buf := make([]byte, 0, len(contribPrefix)+len(id)+1+len(contributor))
	buf = append(buf, contribPrefix...)
	buf = append(buf, id[:]...)
	buf = append(buf, ':')
	buf = append(buf, contributor[:]...)
	return buf
}

func (e *Engine) load(id [32]byte) (*Campaign, error) {
	c := new(Campaign)
	found, err := e.st.KVGet(campaignKey(id), c)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, ErrNotFound
	}
	return c, nil
}

func (e *Engine) store(c *Campaign) error {
	return e.st.KVPut(campaignKey(c.ID), c)
}

func (e *Engine) nextNonce() (uint64, error) {
	var nonce uint64
	if _, err := e.st.KVGet([]byte(campaignNonce), &nonce); err != nil {
		return 0, err
	}
	nonce++
	if err := e.st.KVPut([]byte(campaignNonce), nonce); err != nil {
		return 0, err
	}
	return nonce, nil
}

// Create opens a new campaign with deadline = now + durationSeconds. Owner
// only; the reward asset must already be registered.
func (e *Engine) Create(caller [20]byte, title string, goal *big.Int, durationSeconds uint64, rewardAsset string) ([32]byte, error) {
	var id [32]byte
	if err := e.auth.RequireOwner(caller); err != nil {
		return id, err
	}
	trimmed := strings.TrimSpace(title)
	if trimmed == "" {
		return id, ErrInvalidTitle
	}
	if goal == nil || goal.Sign() <= 0 {
		return id, ErrInvalidGoal
	}
	if durationSeconds == 0 {
		return id, ErrInvalidDuration
	}
	normalized, err := token.NormalizeSymbol(rewardAsset)
	if err != nil {
		return id, err
	}
	if !e.tokens.Exists(normalized) {
		return id, fmt.Errorf("%w: %s", ErrRewardNotRegistered, normalized)
	}
	nonce, err := e.nextNonce()
	if err != nil {
		return id, err
	}
	var nonceBuf [8]byte
	binary.BigEndian.PutUint64(nonceBuf[:], nonce)
	copy(id[:], ethcrypto.Keccak256(nonceBuf[:], caller[:], []byte(trimmed)))

	deadline := e.now() + durationSeconds
	c := &Campaign{
		ID:          id,
		Title:       trimmed,
		Goal:        new(big.Int).Set(goal),
		Raised:      big.NewInt(0),
		Deadline:    deadline,
		RewardAsset: normalized,
		TotalRaw:    big.NewInt(0),
	}
	if err := e.store(c); err != nil {
		return id, err
	}
	if err := e.st.KVAppend([]byte(campaignIndex), id[:]); err != nil {
		return id, err
	}
	e.emit(events.CampaignCreated{
		ID:          id,
		Title:       trimmed,
		Goal:        cloneBigInt(goal),
		Deadline:    deadline,
		RewardAsset: normalized,
	})
	return id, nil
}

// Contribute accepts raw value from any caller while the campaign is open,
// converting it to reference units through the global conversion rate. A
// contribution whose converted equivalent is zero is rejected. The raw value
// is credited to the shared reserve.
func (e *Engine) Contribute(caller [20]byte, id [32]byte, rawValue *big.Int) error {
	if rawValue == nil || rawValue.Sign() <= 0 {
		return ErrInvalidContribution
	}
	c, err := e.load(id)
	if err != nil {
		return err
	}
	if c.StatusAt(e.now()) != StatusOpen {
		return ErrNotOpen
	}
	rate, err := e.tokens.ReferenceRate()
	if err != nil {
		return err
	}
	refUnits := new(big.Int).Quo(rawValue, rate)
	if refUnits.Sign() == 0 {
		return ErrContributionTooSmall
	}
	stored := new(big.Int)
	found, err := e.st.KVGet(contribKey(id, caller), stored)
	if err != nil {
		return err
	}
	if !found {
		c.Contributors = append(c.Contributors, caller)
	}
	stored.Add(stored, refUnits)
	if err := e.st.KVPut(contribKey(id, caller), stored); err != nil {
		return err
	}
	c.Raised = new(big.Int).Add(c.Raised, refUnits)
	c.TotalRaw = new(big.Int).Add(c.TotalRaw, rawValue)
	if err := e.store(c); err != nil {
		return err
	}
	if err := e.reserve.Credit(rawValue); err != nil {
		return err
	}
	e.emit(events.CampaignContributed{
		ID:          id,
		Contributor: caller,
		RawValue:    cloneBigInt(rawValue),
		RefUnits:    refUnits,
		Raised:      cloneBigInt(c.Raised),
	})
	return nil
}

// Contribution returns the recorded reference-unit contribution for one
// contributor.
func (e *Engine) Contribution(id [32]byte, contributor [20]byte) (*big.Int, error) {
	if _, err := e.load(id); err != nil {
		return nil, err
	}
	stored := new(big.Int)
	if _, err := e.st.KVGet(contribKey(id, contributor), stored); err != nil {
		return nil, err
	}
	return stored, nil
}

// Finalize settles a campaign exactly once after its deadline. Success is
// fixed forever by raised vs goal at this moment. A successful campaign pays
// every nonzero contributor contribution × rewardRate through the standard
// disbursement policy; any single disbursement failure aborts the whole
// finalize so it can be retried, leaving the campaign awaiting finalization.
// A failed campaign keeps its raw value in the reserve for manual refunds.
func (e *Engine) Finalize(caller [20]byte, id [32]byte) error {
	if err := e.auth.RequireOwner(caller); err != nil {
		return err
	}
	c, err := e.load(id)
	if err != nil {
		return err
	}
	if c.Finalized {
		return ErrAlreadyFinalized
	}
	if e.now() <= c.Deadline {
		return ErrStillOpen
	}
	succeeded := c.Raised.Cmp(c.Goal) >= 0
	if succeeded {
		reward, ok := e.tokens.Get(c.RewardAsset)
		if !ok {
			return fmt.Errorf("%w: %s", ErrRewardNotRegistered, c.RewardAsset)
		}
		for _, contributor := range c.Contributors {
			contribution := new(big.Int)
			if _, err := e.st.KVGet(contribKey(id, contributor), contribution); err != nil {
				return err
			}
			if contribution.Sign() == 0 {
				continue
			}
			amount := new(big.Int).Mul(contribution, reward.Rate)
			if _, err := e.paymaster.Disburse(reward, contributor, amount); err != nil {
				return err
			}
			e.emit(events.CampaignRewardPaid{
				ID:          id,
				Contributor: contributor,
				RefUnits:    contribution,
				Amount:      amount,
				Symbol:      reward.Symbol,
			})
		}
	}
	c.Finalized = true
	c.Succeeded = succeeded
	if err := e.store(c); err != nil {
		return err
	}
	e.emit(events.CampaignFinalized{
		ID:        id,
		Raised:    cloneBigInt(c.Raised),
		Goal:      cloneBigInt(c.Goal),
		Succeeded: succeeded,
	})
	return nil
}

// RefundContributor pays one contributor of a failed campaign their
// proportional share of the raw value actually received:
// contribution × totalRaw / raised, truncated toward zero. The recorded
// contribution is zeroed before the reserve is debited so a repeated call
// fails with ErrNoContribution. Residual division dust stays in the reserve.
func (e *Engine) RefundContributor(caller [20]byte, id [32]byte, contributor [20]byte) (*big.Int, error) {
	if err := e.auth.RequireOwner(caller); err != nil {
		return nil, err
	}
	c, err := e.load(id)
	if err != nil {
		return nil, err
	}
	if !c.Finalized {
		return nil, ErrNotFinalized
	}
	if c.Succeeded {
		return nil, ErrNotFailed
	}
	contribution := new(big.Int)
	if _, err := e.st.KVGet(contribKey(id, contributor), contribution); err != nil {
		return nil, err
	}
	if contribution.Sign() == 0 {
		return nil, ErrNoContribution
	}
	refund := new(big.Int).Mul(contribution, c.TotalRaw)
	refund.Quo(refund, c.Raised)
	if err := e.st.KVPut(contribKey(id, contributor), big.NewInt(0)); err != nil {
		return nil, err
	}
	if err := e.reserve.Debit(refund); err != nil {
		return nil, err
	}
	e.emit(events.CampaignRefunded{
		ID:          id,
		Contributor: contributor,
		RefUnits:    contribution,
		RawValue:    cloneBigInt(refund),
	})
	return refund, nil
}

// Get retrieves a campaign by identifier.
func (e *Engine) Get(id [32]byte) (*Campaign, bool) {
	c, err := e.load(id)
	if err != nil {
		return nil, false
	}
	return c, true
}

// List returns every campaign identifier in creation order.
func (e *Engine) List() ([][32]byte, error) {
	var raw [][]byte
	if err := e.st.KVGetList([]byte(campaignIndex), &raw); err != nil {
		return nil, err
	}
	ids := make([][32]byte, 0, len(raw))
	for _, b := range raw {
		var id [32]byte
		copy(id[:], b)
		ids = append(ids, id)
	}
	return ids, nil
}

func (e *Engine) emit(event events.Event) {
	if e.emitter == nil {
		return
	}
	e.emitter.Emit(event)
}
