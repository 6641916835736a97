package campaign

import "errors"

var (
	ErrNotFound             = errors.New("campaign: not found")
	ErrInvalidTitle         = errors.New("campaign: title must not be empty")
	ErrInvalidGoal          = errors.New("campaign: goal must be positive")
	ErrInvalidDuration      = errors.New("campaign: duration must be positive")
	ErrRewardNotRegistered  = errors.New("campaign: reward asset not registered")
	ErrInvalidContribution  = errors.New("campaign: contribution must be positive")
	ErrContributionTooSmall = errors.New("campaign: contribution converts to zero reference units")
	ErrNotOpen              = errors.New("campaign: not open for contributions")
	ErrStillOpen            = errors.New("campaign: deadline not reached")
	ErrAlreadyFinalized     = errors.New("campaign: already finalized")
	ErrNotFinalized         = errors.New("campaign: not finalized")
	ErrNotFailed            = errors.New("campaign: did not fail")
	ErrNoContribution       = errors.New("campaign: no contribution")
)
