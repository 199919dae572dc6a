package scope

import (
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"

	"github.com/lodgera/accesscore/internal/authz"
)

// Record is a single document that has already passed access validation.
// Only Injector.FindByID constructs one, and only after ValidateAccess
// allowed the fetch, so holding a Record is proof the two-step
// fetch-then-validate pattern ran; there is no way to unwrap a by-id
// result that skipped it.
type Record struct {
	raw bson.Raw
}

// Decode unmarshals the validated document into v.
func (r *Record) Decode(v any) error {
	return bson.Unmarshal(r.raw, v)
}

// Raw returns the validated document bytes.
func (r *Record) Raw() bson.Raw {
	return r.raw
}

// EstablishmentID returns the document's owning establishment in
// canonical string form, or "" when the document carries none.
func (r *Record) EstablishmentID() string {
	return establishmentOf(r.raw)
}

// establishmentOf reads the establishment field from a raw document,
// normalizing ObjectIDs to their hex form.
func establishmentOf(raw bson.Raw) string {
	v, err := raw.LookupErr(authz.FilterKey)
	if err != nil {
		return ""
	}
	switch v.Type {
	case bsontype.String:
		return v.StringValue()
	case bsontype.ObjectID:
		return v.ObjectID().Hex()
	default:
		return ""
	}
}
