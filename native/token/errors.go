package token

import "errors"

var (
	ErrNilToken           = errors.New("token: nil token")
	ErrInvalidSymbol      = errors.New("token: invalid symbol")
	ErrInvalidRate        = errors.New("token: rate must be positive")
	ErrNotRegistered      = errors.New("token: not registered")
	ErrReferenceRateUnset = errors.New("token: reference conversion rate unset")
	ErrNoSettler          = errors.New("token: no settler configured")
	ErrTransferRejected   = errors.New("token: transfer rejected")
	ErrNegativeAmount     = errors.New("token: amount must be non-negative")
)
