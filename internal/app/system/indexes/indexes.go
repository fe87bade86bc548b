// internal/app/system/indexes/indexes.go

// Package indexes creates the unique indexes the stores rely on.
// Uniqueness is enforced here, in the database, so concurrent writers
// cannot race their way past an application-level check.
package indexes

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// EnsureAll creates every index the application needs. CreateOne is
// idempotent for identical definitions, so this is safe on every boot.
func EnsureAll(ctx context.Context, db *mongo.Database, log *zap.Logger) error {
	type spec struct {
		collection string
		model      mongo.IndexModel
	}

	specs := []spec{
		// One account per folded email.
		{"users", mongo.IndexModel{
			Keys:    bson.D{{Key: "email_ci", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_email_ci"),
		}},
		// Community names are unique case-insensitively.
		{"communities", mongo.IndexModel{
			Keys:    bson.D{{Key: "name_ci", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_name_ci"),
		}},
		// At most one membership per (community, user).
		{"memberships", mongo.IndexModel{
			Keys:    bson.D{{Key: "community_id", Value: 1}, {Key: "user_id", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_community_user"),
		}},
		{"memberships", mongo.IndexModel{
			Keys:    bson.D{{Key: "user_id", Value: 1}},
			Options: options.Index().SetName("by_user"),
		}},
		// Provider transaction IDs never collide within a provider.
		{"payments", mongo.IndexModel{
			Keys:    bson.D{{Key: "provider", Value: 1}, {Key: "transaction_id", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_provider_txn"),
		}},
		{"payments", mongo.IndexModel{
			Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "event_id", Value: 1}, {Key: "status", Value: 1}},
			Options: options.Index().SetName("by_user_event_status"),
		}},
		{"events", mongo.IndexModel{
			Keys:    bson.D{{Key: "community_id", Value: 1}, {Key: "date", Value: 1}},
			Options: options.Index().SetName("by_community_date"),
		}},
		{"posts", mongo.IndexModel{
			Keys:    bson.D{{Key: "community_id", Value: 1}, {Key: "created_at", Value: -1}},
			Options: options.Index().SetName("by_community_created"),
		}},
		{"audit_events", mongo.IndexModel{
			Keys:    bson.D{{Key: "timestamp", Value: -1}},
			Options: options.Index().SetName("by_timestamp"),
		}},
	}

	for _, s := range specs {
		if _, err := db.Collection(s.collection).Indexes().CreateOne(ctx, s.model); err != nil {
			log.Error("index create failed",
				zap.String("collection", s.collection),
				zap.Error(err))
			return err
		}
	}
	log.Info("indexes ensured", zap.Int("count", len(specs)))
	return nil
}
