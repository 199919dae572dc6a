package domain

import (
	"errors"
	"fmt"
)

// Role is a caller role with a strict privilege ordering.
// Adding a role means adding it to roleOrder; every privilege
// comparison derives from its position there.
type Role string

const (
	// RoleStaff is establishment-scoped staff (lowest privilege).
	RoleStaff Role = "staff"
	// RoleManager is an establishment-scoped manager.
	RoleManager Role = "manager"
	// RoleAdmin is unrestricted; not bound to any establishment.
	RoleAdmin Role = "admin"
)

// roleOrder lists roles from least to most privileged.
var roleOrder = []Role{RoleStaff, RoleManager, RoleAdmin}

// unrestrictedFrom is the first role in roleOrder exempt from
// establishment scoping.
const unrestrictedFrom = RoleAdmin

func (r Role) rank() (int, bool) {
	for i, v := range roleOrder {
		if v == r {
			return i, true
		}
	}
	return -1, false
}

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	_, ok := r.rank()
	return ok
}

// AtLeast reports whether r is at least as privileged as other.
// Unknown roles are never at least anything.
func (r Role) AtLeast(other Role) bool {
	ri, ok := r.rank()
	if !ok {
		return false
	}
	oi, ok := other.rank()
	if !ok {
		return false
	}
	return ri >= oi
}

// Unrestricted reports whether r is exempt from establishment scoping.
func (r Role) Unrestricted() bool {
	return r.AtLeast(unrestrictedFrom)
}

// ParseRole returns the Role for s, or an error for unknown values.
func ParseRole(s string) (Role, error) {
	r := Role(s)
	if !r.Valid() {
		return "", fmt.Errorf("unknown role %q", s)
	}
	return r, nil
}

// Principal is the authenticated identity attached to a request.
// It is derived only from verified token claims, never from
// client-supplied fields, and is immutable for the request lifetime.
type Principal struct {
	UserID string
	Role   Role
	// EstablishmentID is the canonical string form of the caller's home
	// establishment. Empty for unrestricted roles, and for scoped roles
	// that have not yet been assigned an establishment.
	EstablishmentID string
}

// Validate checks the principal's structural invariants.
func (p Principal) Validate() error {
	if p.UserID == "" {
		return errors.New("principal: user id is required")
	}
	if !p.Role.Valid() {
		return fmt.Errorf("principal: unknown role %q", p.Role)
	}
	return nil
}
