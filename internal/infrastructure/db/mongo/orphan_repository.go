package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/abcretailers/identity-gateway/internal/core/domain"
)

const orphanCollection = "orphaned_credentials"

// DefaultOrphanListLimit caps ListOrphans when no limit is given.
const DefaultOrphanListLimit = 100

// OrphanRepository keeps the reconciliation trail of credentials whose
// compensating delete failed.
type OrphanRepository struct {
	coll *mongo.Collection
	now  func() time.Time
}

func NewOrphanRepository(db *mongo.Database) *OrphanRepository {
	return &OrphanRepository{coll: db.Collection(orphanCollection), now: time.Now}
}

// EnsureIndexes indexes orphans by username and by detection time.
func (r *OrphanRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "username", Value: 1}}},
		{Keys: bson.D{{Key: "detected_at", Value: -1}}},
	})
	if err != nil {
		return fmt.Errorf("ensure orphan indexes: %w", err)
	}
	return nil
}

// RecordOrphan appends one reconciliation record. Records are never merged:
// repeated failures for the same username each leave their own entry.
func (r *OrphanRepository) RecordOrphan(ctx context.Context, orphan domain.OrphanedCredential) error {
	if orphan.DetectedAt.IsZero() {
		orphan.DetectedAt = r.now()
	}
	orphan.DetectedAt = orphan.DetectedAt.UTC()

	if _, err := r.coll.InsertOne(ctx, orphan); err != nil {
		return fmt.Errorf("insert orphan: %w", err)
	}
	return nil
}

// ResolveOrphan stamps resolved_at on the open records for username.
func (r *OrphanRepository) ResolveOrphan(ctx context.Context, username string) error {
	filter := bson.M{"username": username, "resolved_at": bson.M{"$exists": false}}
	update := bson.M{"$set": bson.M{"resolved_at": r.now().UTC()}}
	if _, err := r.coll.UpdateMany(ctx, filter, update); err != nil {
		return fmt.Errorf("resolve orphan: %w", err)
	}
	return nil
}

// ListOrphans returns the most recent records first.
func (r *OrphanRepository) ListOrphans(ctx context.Context, limit int64) ([]domain.OrphanedCredential, error) {
	if limit <= 0 {
		limit = DefaultOrphanListLimit
	}
	opts := options.Find().SetSort(bson.D{{Key: "detected_at", Value: -1}}).SetLimit(limit)

	cur, err := r.coll.Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, fmt.Errorf("find orphans: %w", err)
	}
	defer cur.Close(ctx)

	orphans := make([]domain.OrphanedCredential, 0)
	if err := cur.All(ctx, &orphans); err != nil {
		return nil, fmt.Errorf("decode orphans: %w", err)
	}
	return orphans, nil
}
