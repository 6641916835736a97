package access

import (
	"payvault/core/events"
)

const (
	// RoleOwner is the full-admin singleton role. It is fixed at bootstrap
	// and has no transfer operation.
	RoleOwner = "ROLE_OWNER"
	// RoleOracle is the rate-setting singleton role. The owner may reassign
	// it.
	RoleOracle = "ROLE_ORACLE"

	paymentsBlockedKey = "access:payments-blocked"
)

type controllerState interface {
	SetRoleHolder(role string, addr [20]byte) error
	RoleHolder(role string) ([20]byte, bool, error)
	IsRoleHolder(role string, addr [20]byte) bool
	KVPut(key []byte, value interface{}) error
	KVGet(key []byte, out interface{}) (bool, error)
}

// Controller holds the Owner and Oracle role assignments plus the global
// payments gate. Every mutating engine consults it before touching state.
type Controller struct {
	st      controllerState
	emitter events.Emitter
}

// NewController creates a controller backed by the provided state manager.
func NewController(st controllerState) *Controller {
	return &Controller{st: st, emitter: events.NoopEmitter{}}
}

// SetEmitter configures the event emitter. Passing nil resets it to a no-op
// implementation.
func (c *Controller) SetEmitter(emitter events.Emitter) {
	if emitter == nil {
		c.emitter = events.NoopEmitter{}
		return
	}
	c.emitter = emitter
}

// Bootstrap fixes the owner and oracle assignments. It may run exactly once;
// the owner assignment can never be changed afterwards.
func (c *Controller) Bootstrap(owner, oracle [20]byte) error {
	if owner == ([20]byte{}) || oracle == ([20]byte{}) {
		return ErrZeroAddress
	}
	if _, assigned, err := c.st.RoleHolder(RoleOwner); err != nil {
		return err
	} else if assigned {
		return ErrAlreadyBootstrapped
	}
	if err := c.st.SetRoleHolder(RoleOwner, owner); err != nil {
		return err
	}
	return c.st.SetRoleHolder(RoleOracle, oracle)
}

// Owner returns the current owner assignment.
func (c *Controller) Owner() ([20]byte, error) {
	holder, ok, err := c.st.RoleHolder(RoleOwner)
	if err != nil {
		return holder, err
	}
	if !ok {
		return holder, ErrNotBootstrapped
	}
	return holder, nil
}

// Oracle returns the current oracle assignment.
func (c *Controller) Oracle() ([20]byte, error) {
	holder, ok, err := c.st.RoleHolder(RoleOracle)
	if err != nil {
		return holder, err
	}
	if !ok {
		return holder, ErrNotBootstrapped
	}
	return holder, nil
}

// IsOwner reports whether addr holds the owner role.
func (c *Controller) IsOwner(addr [20]byte) bool {
	return c.st.IsRoleHolder(RoleOwner, addr)
}

// IsOracle reports whether addr holds the oracle role.
func (c *Controller) IsOracle(addr [20]byte) bool {
	return c.st.IsRoleHolder(RoleOracle, addr)
}

// RequireOwner fails unless caller holds the owner role.
func (c *Controller) RequireOwner(caller [20]byte) error {
	if !c.IsOwner(caller) {
		return ErrUnauthorized
	}
	return nil
}

// RequireOracle fails unless caller holds the oracle role.
func (c *Controller) RequireOracle(caller [20]byte) error {
	if !c.IsOracle(caller) {
		return ErrUnauthorized
	}
	return nil
}

// SetOracle reassigns the oracle role. Only the owner may rotate it.
func (c *Controller) SetOracle(caller, newOracle [20]byte) error {
	if err := c.RequireOwner(caller); err != nil {
		return err
	}
	if newOracle == ([20]byte{}) {
		return ErrZeroAddress
	}
	old, _, err := c.st.RoleHolder(RoleOracle)
	if err != nil {
		return err
	}
	if err := c.st.SetRoleHolder(RoleOracle, newOracle); err != nil {
		return err
	}
	c.emit(events.OracleRotated{OldOracle: old, NewOracle: newOracle})
	return nil
}

// PaymentsAllowed reports the global payments gate. The zero state is open so
// a freshly bootstrapped ledger accepts claims immediately.
func (c *Controller) PaymentsAllowed() bool {
	var blocked bool
	found, err := c.st.KVGet([]byte(paymentsBlockedKey), &blocked)
	if err != nil || !found {
		return true
	}
	return !blocked
}

// SetPaymentsAllowed toggles the global payments gate. Owner only.
func (c *Controller) SetPaymentsAllowed(caller [20]byte, allowed bool) error {
	if err := c.RequireOwner(caller); err != nil {
		return err
	}
	if err := c.st.KVPut([]byte(paymentsBlockedKey), !allowed); err != nil {
		return err
	}
	if allowed {
		c.emit(events.PaymentsResumed{Owner: caller})
	} else {
		c.emit(events.PaymentsPaused{Owner: caller})
	}
	return nil
}

func (c *Controller) emit(event events.Event) {
	if c.emitter == nil {
		return
	}
	c.emitter.Emit(event)
}
