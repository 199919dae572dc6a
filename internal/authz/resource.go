package authz

import (
	"fmt"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Resource is the tenant-owned view of a record: what it is, which record
// it is, and which establishment owns it. Domain types implement this (or
// hand a Ref to the context) so validation never reads raw documents.
type Resource interface {
	ResourceType() string
	ResourceID() string
	// ResourceEstablishment returns the owning establishment in canonical
	// string form, or "" when the record carries none.
	ResourceEstablishment() string
}

// Ref is a plain Resource value for call sites that do not have a domain
// type at hand.
type Ref struct {
	Type          string
	ID            string
	Establishment string
}

func (r Ref) ResourceType() string          { return r.Type }
func (r Ref) ResourceID() string            { return r.ID }
func (r Ref) ResourceEstablishment() string { return r.Establishment }

// CanonicalID normalizes an identifier to its canonical string form.
// ObjectIDs compare by hex, not by reference, so two ids naming the same
// establishment always produce the same string here.
func CanonicalID(id any) string {
	switch v := id.(type) {
	case nil:
		return ""
	case string:
		return v
	case primitive.ObjectID:
		if v.IsZero() {
			return ""
		}
		return v.Hex()
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprintf("%v", v)
	}
}
