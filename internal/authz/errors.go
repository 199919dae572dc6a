package authz

import "errors"

// Authorization failures. These are distinct from authentication failures
// in the token package: the caller is known, but scoping denies the
// operation. Every one of them is recorded in the access audit log at the
// point of decision.
var (
	// ErrForbidden is returned when establishment scoping denies access.
	ErrForbidden = errors.New("forbidden")
	// ErrResourceMissingEstablishment is returned when a resource lacks an
	// establishment id. Such resources are always denied, never failed open.
	ErrResourceMissingEstablishment = errors.New("resource has no establishment")
	// ErrCrossEstablishment is returned when a parent/child relationship
	// spans two establishments.
	ErrCrossEstablishment = errors.New("cross-establishment relationship")
)

// ReasonResourceMissingEstablishment is the audit reason used when a
// resource carries no establishment id.
const ReasonResourceMissingEstablishment = "resource has no establishment"
