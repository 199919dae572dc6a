// Package authz is the single source of truth for "what may this request
// see or touch". A Context is built once per request from a verified
// Principal and threaded through every data-access call; it is a pure
// value type with no mutable state, so contexts are never shared or
// updated across requests.
package authz

import (
	"fmt"

	"go.mongodb.org/mongo-driver/bson"

	identitydomain "github.com/lodgera/accesscore/internal/identity/domain"
)

// FilterKey is the document field every tenant-owned record scopes by.
const FilterKey = "establishmentId"

// Context encodes the caller's role and home establishment for one
// request. Construct with NewContext; use NewBootstrapContext only for
// the explicit bootstrap flows that assign a user to an establishment.
type Context struct {
	principal identitydomain.Principal
	bootstrap bool
}

// NewContext returns the authorization context for p. A scoped principal
// with no establishment sees no tenant-owned data through this context.
func NewContext(p identitydomain.Principal) Context {
	return Context{principal: p}
}

// NewBootstrapContext returns a context that lets a scoped principal
// without an establishment pass filters through unchanged. This is the
// narrow exception used by assign-user-to-establishment flows; it must
// not be reachable from ordinary data-listing paths.
func NewBootstrapContext(p identitydomain.Principal) Context {
	return Context{principal: p, bootstrap: true}
}

// Principal returns the principal this context was built from.
func (c Context) Principal() identitydomain.Principal { return c.principal }

// CanAccessAll reports whether the caller's role is exempt from
// establishment scoping. This is the only privilege escalation path and
// it derives from the role order alone, never from request input.
func (c Context) CanAccessAll() bool {
	return c.principal.Role.Unrestricted()
}

// EstablishmentID returns the caller's home establishment and whether one
// is set.
func (c Context) EstablishmentID() (string, bool) {
	return c.principal.EstablishmentID, c.principal.EstablishmentID != ""
}

// ApplyFilter augments base with the establishment constraint. Unrestricted
// callers and bootstrap contexts get base back unchanged. The constraint
// overwrites any client-supplied value under FilterKey: a request body can
// never widen its own scope. base is not mutated.
func (c Context) ApplyFilter(base bson.M) bson.M {
	if c.CanAccessAll() {
		return base
	}
	est, ok := c.EstablishmentID()
	if !ok {
		if c.bootstrap {
			return base
		}
		// Scoped caller with no establishment assigned: match nothing.
		return withEstablishment(base, bson.M{"$in": bson.A{}})
	}
	return withEstablishment(base, est)
}

// ValidateAccess reports whether the caller may touch res, with a
// human-readable denial reason. A resource without an establishment id is
// always denied for scoped callers; scoping never fails open.
func (c Context) ValidateAccess(res Resource) (bool, string) {
	if c.CanAccessAll() {
		return true, ""
	}
	est, ok := c.EstablishmentID()
	if !ok {
		if c.bootstrap {
			return true, ""
		}
		return false, "principal has no establishment"
	}
	resEst := res.ResourceEstablishment()
	if resEst == "" {
		return false, ReasonResourceMissingEstablishment
	}
	if resEst != est {
		return false, fmt.Sprintf("establishment mismatch: %s != %s", resEst, est)
	}
	return true, ""
}

// ValidateRelationship checks that parent and child belong to the same
// establishment before they are linked (for example an accommodation
// attached to a booking). Both must carry an establishment id; the check
// applies to every role, since a cross-establishment link corrupts tenant
// data no matter who creates it.
func (c Context) ValidateRelationship(parent, child Resource) (bool, string) {
	pEst := parent.ResourceEstablishment()
	if pEst == "" {
		return false, fmt.Sprintf("%s has no establishment", parent.ResourceType())
	}
	cEst := child.ResourceEstablishment()
	if cEst == "" {
		return false, fmt.Sprintf("%s has no establishment", child.ResourceType())
	}
	if pEst != cEst {
		return false, fmt.Sprintf("cross-establishment relationship: %s != %s", pEst, cEst)
	}
	return true, ""
}

// withEstablishment returns a copy of base with the scope constraint set.
func withEstablishment(base bson.M, v any) bson.M {
	out := make(bson.M, len(base)+1)
	for k, val := range base {
		out[k] = val
	}
	out[FilterKey] = v
	return out
}
