package token

import "errors"

// Sentinel errors for token verification; callers classify with errors.Is.
// Expired, revoked, and kind-mismatch are kept distinct from malformed so
// clients can tell "log in again" apart from "this token was never valid".
var (
	// ErrTokenExpired is returned when the token is past its expiry.
	ErrTokenExpired = errors.New("token expired")
	// ErrTokenMalformed is returned when the signature or structure is invalid.
	ErrTokenMalformed = errors.New("token malformed")
	// ErrTokenRevoked is returned when the token is on the revocation list,
	// or when the revocation lookup itself failed (verification fails closed).
	ErrTokenRevoked = errors.New("token revoked")
	// ErrTokenKindMismatch is returned when a refresh token is presented
	// where an access token is expected, or vice versa.
	ErrTokenKindMismatch = errors.New("token kind mismatch")
)
