package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/healthgate/api-gateway/internal/core/domain"
)

const authEventsCollection = "auth_events"

// AuditRepository appends authentication events to the auth_events collection.
type AuditRepository struct {
	coll *mongo.Collection
}

func NewAuditRepository(db *mongo.Database) *AuditRepository {
	return &AuditRepository{coll: db.Collection(authEventsCollection)}
}

func (r *AuditRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	_, err := r.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "identifier", Value: 1}, {Key: "at", Value: -1}}},
		{Keys: bson.D{{Key: "kind", Value: 1}, {Key: "at", Value: -1}}},
	})
	if err != nil {
		return fmt.Errorf("ensure audit indexes: %w", err)
	}
	return nil
}

func (r *AuditRepository) InsertEvent(ctx context.Context, event *domain.AuthEvent) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := bson.M{
		"kind":       string(event.Kind),
		"identifier": event.Identifier,
		"at":         event.At.UTC(),
	}
	if event.UserID != "" {
		doc["userId"] = event.UserID
	}
	if event.RemoteIP != "" {
		doc["remoteIp"] = event.RemoteIP
	}

	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("insert auth event: %w", err)
	}
	return nil
}
