package repository

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/lodgera/accesscore/internal/audit/domain"
)

// Collection is the collection name used by MongoRepository.
const Collection = "access_audit_log"

// MongoRepository persists audit entries in a MongoDB collection.
// Appends are single-document inserts, so a failed write never leaves a
// partial entry behind.
type MongoRepository struct {
	coll *mongo.Collection
}

// NewMongoRepository returns an audit repository using the given database.
func NewMongoRepository(db *mongo.Database) *MongoRepository {
	return &MongoRepository{coll: db.Collection(Collection)}
}

// Insert appends one entry.
func (r *MongoRepository) Insert(ctx context.Context, e *domain.Entry) error {
	if _, err := r.coll.InsertOne(ctx, e); err != nil {
		return fmt.Errorf("audit: insert: %w", err)
	}
	return nil
}

// ListViolations returns denied entries since the given time, newest first.
func (r *MongoRepository) ListViolations(ctx context.Context, since time.Time, limit int64) ([]*domain.Entry, error) {
	filter := bson.M{"allowed": false, "createdAt": bson.M{"$gte": since}}
	return r.list(ctx, filter, limit)
}

// ListByUser returns entries for userID since the given time, newest first.
func (r *MongoRepository) ListByUser(ctx context.Context, userID string, since time.Time, limit int64) ([]*domain.Entry, error) {
	filter := bson.M{"userId": userID, "createdAt": bson.M{"$gte": since}}
	return r.list(ctx, filter, limit)
}

// ListByResource returns entries for one resource, newest first.
func (r *MongoRepository) ListByResource(ctx context.Context, resourceType, resourceID string, limit int64) ([]*domain.Entry, error) {
	filter := bson.M{"resourceType": resourceType, "resourceId": resourceID}
	return r.list(ctx, filter, limit)
}

// CountDenied returns the number of denied entries for userID since the
// given time.
func (r *MongoRepository) CountDenied(ctx context.Context, userID string, since time.Time) (int64, error) {
	filter := bson.M{"userId": userID, "allowed": false, "createdAt": bson.M{"$gte": since}}
	n, err := r.coll.CountDocuments(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("audit: count denied: %w", err)
	}
	return n, nil
}

// DeleteBefore removes entries created before cutoff.
func (r *MongoRepository) DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := r.coll.DeleteMany(ctx, bson.M{"createdAt": bson.M{"$lt": cutoff}})
	if err != nil {
		return 0, fmt.Errorf("audit: delete before: %w", err)
	}
	return res.DeletedCount, nil
}

func (r *MongoRepository) list(ctx context.Context, filter bson.M, limit int64) ([]*domain.Entry, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	if limit > 0 {
		opts = opts.SetLimit(limit)
	}
	cur, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("audit: list: %w", err)
	}
	defer cur.Close(ctx)
	var out []*domain.Entry
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("audit: decode: %w", err)
	}
	return out, nil
}
