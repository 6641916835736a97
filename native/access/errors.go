package access

import "errors"

var (
	ErrUnauthorized        = errors.New("access: unauthorized")
	ErrZeroAddress         = errors.New("access: zero address")
	ErrAlreadyBootstrapped = errors.New("access: roles already bootstrapped")
	ErrNotBootstrapped     = errors.New("access: roles not bootstrapped")
)
