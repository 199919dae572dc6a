package revocation

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Collection is the collection name used by MongoStore.
const Collection = "revoked_tokens"

type entry struct {
	Token     string    `bson:"token"`
	ExpiresAt time.Time `bson:"expiresAt"`
}

// MongoStore is a Store backed by a MongoDB collection, so revocations
// survive process restarts and are shared between replicas.
type MongoStore struct {
	coll *mongo.Collection
}

// NewMongoStore returns a revocation store using the given database.
func NewMongoStore(db *mongo.Database) *MongoStore {
	return &MongoStore{coll: db.Collection(Collection)}
}

// Add upserts the token keyed by its raw value. Re-revoking is a no-op.
func (s *MongoStore) Add(ctx context.Context, token string, expiresAt time.Time) error {
	_, err := s.coll.UpdateOne(ctx,
		bson.M{"token": token},
		bson.M{"$setOnInsert": entry{Token: token, ExpiresAt: expiresAt}},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("revocation: add: %w", err)
	}
	return nil
}

// IsRevoked reports whether token is present in the collection.
func (s *MongoStore) IsRevoked(ctx context.Context, token string) (bool, error) {
	n, err := s.coll.CountDocuments(ctx, bson.M{"token": token}, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("revocation: lookup: %w", err)
	}
	return n > 0, nil
}

// Sweep deletes entries whose expiry has passed.
func (s *MongoStore) Sweep(ctx context.Context, now time.Time) (int64, error) {
	res, err := s.coll.DeleteMany(ctx, bson.M{"expiresAt": bson.M{"$lt": now}})
	if err != nil {
		return 0, fmt.Errorf("revocation: sweep: %w", err)
	}
	return res.DeletedCount, nil
}
