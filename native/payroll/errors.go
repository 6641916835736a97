package payroll

import "errors"

var (
	ErrAlreadyEnrolled     = errors.New("payroll: already enrolled")
	ErrNotEnrolled         = errors.New("payroll: not enrolled")
	ErrNegativeEntitlement = errors.New("payroll: entitlement must be non-negative")
	ErrAssetNotRegistered  = errors.New("payroll: asset not registered")
	ErrAssetAlreadyGranted = errors.New("payroll: asset already granted")
	ErrAssetNotGranted     = errors.New("payroll: asset not granted")
	ErrInvalidAllocation   = errors.New("payroll: allocation must be non-negative")
	ErrAllocationTooHigh   = errors.New("payroll: allocation exceeds monthly cap")
	ErrAllocationCooldown  = errors.New("payroll: allocation change cooldown not elapsed")
	ErrClaimCooldown       = errors.New("payroll: claim cooldown not elapsed")
	ErrNoAllocation        = errors.New("payroll: no allocation")
)
