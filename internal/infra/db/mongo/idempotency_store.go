package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"gowaay/internal/app/middleware"
)

const idempotencyCollection = "app_idempotency"

// IdempotencyStore keeps successful command replies until expires_at, when the
// TTL monitor removes them. The first reply saved for a key wins.
type IdempotencyStore struct {
	col *mongo.Collection
	ttl time.Duration
	now func() time.Time
}

func NewIdempotencyStore(ctx context.Context, db *mongo.Database, ttl time.Duration) (*IdempotencyStore, error) {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	col := db.Collection(idempotencyCollection)
	expiry := mongo.IndexModel{
		Keys:    bson.D{{Key: "expires_at", Value: 1}},
		Options: options.Index().SetExpireAfterSeconds(0).SetName("expires_at_ttl"),
	}
	if _, err := col.Indexes().CreateOne(ctx, expiry); err != nil {
		return nil, err
	}
	return &IdempotencyStore{col: col, ttl: ttl, now: func() time.Time { return time.Now().UTC() }}, nil
}

func (s *IdempotencyStore) Get(ctx context.Context, key string) (middleware.IdempotencyRecord, bool, error) {
	doc, err := findOne[replyDocument](ctx, s.col, bson.M{"_id": key, "expires_at": bson.M{"$gt": s.now()}}, mongo.ErrNoDocuments)
	switch {
	case errors.Is(err, mongo.ErrNoDocuments):
		return middleware.IdempotencyRecord{}, false, nil
	case err != nil:
		return middleware.IdempotencyRecord{}, false, err
	}
	return middleware.IdempotencyRecord{
		Key:        doc.Key,
		Command:    doc.Command,
		Payload:    doc.Payload,
		OccurredAt: doc.OccurredAt,
	}, true, nil
}

func (s *IdempotencyStore) Save(ctx context.Context, rec middleware.IdempotencyRecord) error {
	doc := replyDocument{
		Key:        rec.Key,
		Command:    rec.Command,
		Payload:    rec.Payload,
		OccurredAt: rec.OccurredAt,
		ExpiresAt:  s.now().Add(s.ttl),
	}
	_, err := s.col.UpdateOne(ctx,
		bson.M{"_id": rec.Key},
		bson.M{"$setOnInsert": doc},
		options.Update().SetUpsert(true),
	)
	return err
}

type replyDocument struct {
	Key        string    `bson:"_id"`
	Command    string    `bson:"command"`
	Payload    []byte    `bson:"payload"`
	OccurredAt time.Time `bson:"occurred_at"`
	ExpiresAt  time.Time `bson:"expires_at"`
}

var _ middleware.IdempotencyStore = (*IdempotencyStore)(nil)
