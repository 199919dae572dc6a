// Package db opens the MongoDB connection and bootstraps the indexes the
// access-control core depends on.
package db

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	auditrepo "github.com/lodgera/accesscore/internal/audit/repository"
	"github.com/lodgera/accesscore/internal/revocation"
)

// Connect opens a client for uri and pings the deployment. Caller must
// Disconnect when done.
func Connect(ctx context.Context, uri string) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("db: connect: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("db: ping: %w", err)
	}
	return client, nil
}

// EnsureIndexes creates the indexes used by the revocation store and the
// audit log. Creation is idempotent.
func EnsureIndexes(ctx context.Context, database *mongo.Database) error {
	revoked := database.Collection(revocation.Collection)
	_, err := revoked.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "token", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "expiresAt", Value: 1}},
		},
	})
	if err != nil {
		return fmt.Errorf("db: revocation indexes: %w", err)
	}

	auditColl := database.Collection(auditrepo.Collection)
	_, err = auditColl.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "userId", Value: 1}, {Key: "createdAt", Value: -1}},
		},
		{
			Keys: bson.D{{Key: "resourceType", Value: 1}, {Key: "resourceId", Value: 1}, {Key: "createdAt", Value: -1}},
		},
		{
			Keys: bson.D{{Key: "allowed", Value: 1}, {Key: "createdAt", Value: -1}},
		},
	})
	if err != nil {
		return fmt.Errorf("db: audit indexes: %w", err)
	}
	return nil
}
