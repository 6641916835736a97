package common

import "errors"

// ErrPaymentsBlocked is returned when an employee-initiated operation runs
// while the global payments gate is closed.
var ErrPaymentsBlocked = errors.New("payments blocked")

// PaymentsView exposes the global payments gate to the engines. Owner and
// oracle operations never consult it.
type PaymentsView interface {
	PaymentsAllowed() bool
}

// Guard fails employee-initiated operations while payments are blocked. A nil
// view leaves the gate open.
func Guard(p PaymentsView) error {
	if p == nil {
		return nil
	}
	if !p.PaymentsAllowed() {
		return ErrPaymentsBlocked
	}
	return nil
}
