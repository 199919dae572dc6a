// Package scope makes it structurally hard to issue an unscoped query
// against tenant data. Every query shape a handler needs goes through an
// Injector bound to one collection; the Injector applies the request's
// authorization context before delegating to the driver and records the
// decision in the access audit log.
package scope

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/lodgera/accesscore/internal/audit"
	auditdomain "github.com/lodgera/accesscore/internal/audit/domain"
	"github.com/lodgera/accesscore/internal/authz"
)

// Injector wraps one collection of tenant-owned documents.
type Injector struct {
	coll         *mongo.Collection
	resourceType string
	recorder     *audit.Recorder
}

// NewInjector returns an Injector over coll. resourceType names the
// records in audit entries (e.g. "booking", "invoice"). recorder may be
// nil; decisions are then counted but not persisted.
func NewInjector(coll *mongo.Collection, resourceType string, recorder *audit.Recorder) *Injector {
	return &Injector{coll: coll, resourceType: resourceType, recorder: recorder}
}

// Find runs a scoped find-many.
func (in *Injector) Find(ctx context.Context, ac authz.Context, filter bson.M, opts ...*options.FindOptions) (*mongo.Cursor, error) {
	scoped := ac.ApplyFilter(filter)
	in.record(ctx, ac, auditdomain.ActionRead, "", "", true, "")
	return in.coll.Find(ctx, scoped, opts...)
}

// FindOne runs a scoped find-one.
func (in *Injector) FindOne(ctx context.Context, ac authz.Context, filter bson.M, opts ...*options.FindOneOptions) *mongo.SingleResult {
	scoped := ac.ApplyFilter(filter)
	in.record(ctx, ac, auditdomain.ActionRead, "", "", true, "")
	return in.coll.FindOne(ctx, scoped, opts...)
}

// Count runs a scoped count.
func (in *Injector) Count(ctx context.Context, ac authz.Context, filter bson.M) (int64, error) {
	scoped := ac.ApplyFilter(filter)
	return in.coll.CountDocuments(ctx, scoped)
}

// UpdateOne runs a scoped single-document update.
func (in *Injector) UpdateOne(ctx context.Context, ac authz.Context, filter, update bson.M) (*mongo.UpdateResult, error) {
	scoped := ac.ApplyFilter(filter)
	in.record(ctx, ac, auditdomain.ActionUpdate, "", "", true, "")
	return in.coll.UpdateOne(ctx, scoped, update)
}

// UpdateMany runs a scoped multi-document update.
func (in *Injector) UpdateMany(ctx context.Context, ac authz.Context, filter, update bson.M) (*mongo.UpdateResult, error) {
	scoped := ac.ApplyFilter(filter)
	in.record(ctx, ac, auditdomain.ActionUpdate, "", "", true, "")
	return in.coll.UpdateMany(ctx, scoped, update)
}

// DeleteOne runs a scoped single-document delete.
func (in *Injector) DeleteOne(ctx context.Context, ac authz.Context, filter bson.M) (*mongo.DeleteResult, error) {
	scoped := ac.ApplyFilter(filter)
	in.record(ctx, ac, auditdomain.ActionDelete, "", "", true, "")
	return in.coll.DeleteOne(ctx, scoped)
}

// DeleteMany runs a scoped multi-document delete.
func (in *Injector) DeleteMany(ctx context.Context, ac authz.Context, filter bson.M) (*mongo.DeleteResult, error) {
	scoped := ac.ApplyFilter(filter)
	in.record(ctx, ac, auditdomain.ActionDelete, "", "", true, "")
	return in.coll.DeleteMany(ctx, scoped)
}

// Aggregate runs the pipeline with the establishment constraint injected
// as an initial $match stage when the context requires scoping.
func (in *Injector) Aggregate(ctx context.Context, ac authz.Context, pipeline mongo.Pipeline, opts ...*options.AggregateOptions) (*mongo.Cursor, error) {
	scoped := ScopePipeline(ac, pipeline)
	in.record(ctx, ac, auditdomain.ActionRead, "", "", true, "")
	return in.coll.Aggregate(ctx, scoped, opts...)
}

// Create validates that the caller may write res, then inserts doc. A
// denial is audited and returned as a taxonomy error; the insert never
// runs on a denied decision.
func (in *Injector) Create(ctx context.Context, ac authz.Context, res authz.Resource, doc any) (*mongo.InsertOneResult, error) {
	ok, reason := ac.ValidateAccess(res)
	in.record(ctx, ac, auditdomain.ActionCreate, res.ResourceID(), res.ResourceEstablishment(), ok, reason)
	if !ok {
		return nil, denialError(reason)
	}
	return in.coll.InsertOne(ctx, doc)
}

// FindByID fetches one document by _id and validates access to it before
// exposing it. A by-id lookup cannot carry a compound predicate, so the
// validation step is performed here and the result is returned as a
// Record that cannot exist without it. Missing documents surface as
// mongo.ErrNoDocuments.
func (in *Injector) FindByID(ctx context.Context, ac authz.Context, id any) (*Record, error) {
	raw, err := in.coll.FindOne(ctx, bson.M{"_id": id}).Raw()
	if err != nil {
		return nil, err
	}
	resID := authz.CanonicalID(id)
	resEst := establishmentOf(raw)
	ok, reason := ac.ValidateAccess(authz.Ref{Type: in.resourceType, ID: resID, Establishment: resEst})
	in.record(ctx, ac, auditdomain.ActionRead, resID, resEst, ok, reason)
	if !ok {
		return nil, denialError(reason)
	}
	return &Record{raw: raw}, nil
}

// CheckRelationship validates that parent and child belong to the same
// establishment, auditing a denial against the child record.
func (in *Injector) CheckRelationship(ctx context.Context, ac authz.Context, parent, child authz.Resource) error {
	ok, reason := ac.ValidateRelationship(parent, child)
	if !ok {
		in.record(ctx, ac, auditdomain.ActionUpdate, child.ResourceID(), child.ResourceEstablishment(), false, reason)
		return errors.Join(authz.ErrCrossEstablishment, errors.New(reason))
	}
	return nil
}

func (in *Injector) record(ctx context.Context, ac authz.Context, action auditdomain.Action, resourceID, resourceEst string, allowed bool, reason string) {
	in.recorder.Decision(ctx, ac.Principal(), action, in.resourceType, resourceID, resourceEst, allowed, reason)
}

// denialError maps a denial reason to the taxonomy error callers classify
// with errors.Is.
func denialError(reason string) error {
	if reason == authz.ReasonResourceMissingEstablishment {
		return authz.ErrResourceMissingEstablishment
	}
	return authz.ErrForbidden
}
