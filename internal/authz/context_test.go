package authz

import (
	"testing"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	identitydomain "github.com/lodgera/accesscore/internal/identity/domain"
)

func staff(est string) identitydomain.Principal {
	return identitydomain.Principal{UserID: "u1", Role: identitydomain.RoleStaff, EstablishmentID: est}
}

func admin() identitydomain.Principal {
	return identitydomain.Principal{UserID: "root", Role: identitydomain.RoleAdmin}
}

func TestCanAccessAll_RoleDerived(t *testing.T) {
	if !NewContext(admin()).CanAccessAll() {
		t.Error("admin context should access all")
	}
	if NewContext(staff("e1")).CanAccessAll() {
		t.Error("staff context must not access all")
	}
	// Escalation is impossible through any principal field other than role.
	p := staff("e1")
	p.UserID = "admin"
	p.EstablishmentID = ""
	if NewContext(p).CanAccessAll() {
		t.Error("non-role fields must not grant access")
	}
}

func TestApplyFilter_ScopedPrincipal(t *testing.T) {
	ac := NewContext(staff("E1"))
	base := bson.M{"status": "confirmed"}

	got := ac.ApplyFilter(base)
	if got["status"] != "confirmed" {
		t.Errorf("filter lost base predicate: %v", got)
	}
	if got[FilterKey] != "E1" {
		t.Errorf("filter[%s] = %v, want E1", FilterKey, got[FilterKey])
	}
	if _, ok := base[FilterKey]; ok {
		t.Error("ApplyFilter must not mutate the base filter")
	}
}

func TestApplyFilter_UnrestrictedPassThrough(t *testing.T) {
	ac := NewContext(admin())
	base := bson.M{"status": "confirmed"}
	got := ac.ApplyFilter(base)
	if len(got) != 1 || got["status"] != "confirmed" {
		t.Errorf("unrestricted filter changed: %v", got)
	}
}

func TestApplyFilter_OverwritesClientSuppliedScope(t *testing.T) {
	ac := NewContext(staff("E1"))
	got := ac.ApplyFilter(bson.M{FilterKey: "E2"})
	if got[FilterKey] != "E1" {
		t.Errorf("client-supplied establishment survived: %v", got[FilterKey])
	}
}

func TestApplyFilter_UnassignedScopedPrincipalMatchesNothing(t *testing.T) {
	ac := NewContext(staff(""))
	got := ac.ApplyFilter(bson.M{})
	cond, ok := got[FilterKey].(bson.M)
	if !ok {
		t.Fatalf("filter[%s] = %v, want empty $in condition", FilterKey, got[FilterKey])
	}
	in, ok := cond["$in"].(bson.A)
	if !ok || len(in) != 0 {
		t.Errorf("filter[%s] = %v, want empty $in condition", FilterKey, cond)
	}
}

func TestApplyFilter_BootstrapPassThrough(t *testing.T) {
	ac := NewBootstrapContext(staff(""))
	base := bson.M{"status": "active"}
	got := ac.ApplyFilter(base)
	if len(got) != 1 || got["status"] != "active" {
		t.Errorf("bootstrap filter changed: %v", got)
	}
}

func TestValidateAccess(t *testing.T) {
	tests := []struct {
		name    string
		ctx     Context
		res     Resource
		want    bool
		wantMsg string
	}{
		{
			name: "same establishment allowed",
			ctx:  NewContext(staff("E1")),
			res:  Ref{Type: "booking", ID: "b1", Establishment: "E1"},
			want: true,
		},
		{
			name:    "different establishment denied",
			ctx:     NewContext(staff("E1")),
			res:     Ref{Type: "booking", ID: "b1", Establishment: "E2"},
			want:    false,
			wantMsg: "establishment mismatch: E2 != E1",
		},
		{
			name:    "missing resource establishment always denied",
			ctx:     NewContext(staff("E1")),
			res:     Ref{Type: "booking", ID: "b1"},
			want:    false,
			wantMsg: ReasonResourceMissingEstablishment,
		},
		{
			name: "unrestricted allowed regardless",
			ctx:  NewContext(admin()),
			res:  Ref{Type: "booking", ID: "b1", Establishment: "E2"},
			want: true,
		},
		{
			name:    "unassigned scoped principal denied",
			ctx:     NewContext(staff("")),
			res:     Ref{Type: "booking", ID: "b1", Establishment: "E1"},
			want:    false,
			wantMsg: "principal has no establishment",
		},
		{
			name: "bootstrap context allowed",
			ctx:  NewBootstrapContext(staff("")),
			res:  Ref{Type: "user", ID: "u2", Establishment: "E1"},
			want: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ok, reason := tt.ctx.ValidateAccess(tt.res)
			if ok != tt.want {
				t.Fatalf("ValidateAccess = %v (%q), want %v", ok, reason, tt.want)
			}
			if !ok && reason != tt.wantMsg {
				t.Errorf("reason = %q, want %q", reason, tt.wantMsg)
			}
		})
	}
}

func TestValidateRelationship(t *testing.T) {
	ac := NewContext(staff("E1"))

	ok, _ := ac.ValidateRelationship(
		Ref{Type: "booking", Establishment: "E1"},
		Ref{Type: "accommodation", Establishment: "E1"},
	)
	if !ok {
		t.Error("same-establishment relationship should be valid")
	}

	ok, reason := ac.ValidateRelationship(
		Ref{Type: "booking", Establishment: "E1"},
		Ref{Type: "accommodation", Establishment: "E2"},
	)
	if ok {
		t.Fatal("cross-establishment relationship should be invalid")
	}
	if reason != "cross-establishment relationship: E1 != E2" {
		t.Errorf("reason = %q", reason)
	}

	// Cross-establishment links are invalid for unrestricted callers too.
	ok, _ = NewContext(admin()).ValidateRelationship(
		Ref{Type: "booking", Establishment: "E1"},
		Ref{Type: "accommodation", Establishment: "E2"},
	)
	if ok {
		t.Error("unrestricted role must not bypass relationship validation")
	}

	ok, reason = ac.ValidateRelationship(
		Ref{Type: "booking"},
		Ref{Type: "accommodation", Establishment: "E1"},
	)
	if ok || reason != "booking has no establishment" {
		t.Errorf("missing parent establishment: ok=%v reason=%q", ok, reason)
	}

	ok, reason = ac.ValidateRelationship(
		Ref{Type: "booking", Establishment: "E1"},
		Ref{Type: "accommodation"},
	)
	if ok || reason != "accommodation has no establishment" {
		t.Errorf("missing child establishment: ok=%v reason=%q", ok, reason)
	}
}

func TestCanonicalID(t *testing.T) {
	oid := primitive.NewObjectID()
	if got := CanonicalID(oid); got != oid.Hex() {
		t.Errorf("CanonicalID(ObjectID) = %q, want %q", got, oid.Hex())
	}
	if got := CanonicalID(primitive.NilObjectID); got != "" {
		t.Errorf("CanonicalID(zero ObjectID) = %q, want empty", got)
	}
	if got := CanonicalID("E1"); got != "E1" {
		t.Errorf("CanonicalID(string) = %q", got)
	}
	if got := CanonicalID(nil); got != "" {
		t.Errorf("CanonicalID(nil) = %q, want empty", got)
	}

	// Two ObjectIDs naming the same establishment compare equal by hex.
	a, _ := primitive.ObjectIDFromHex(oid.Hex())
	if CanonicalID(a) != CanonicalID(oid) {
		t.Error("equal ObjectIDs must normalize to the same string")
	}
}
