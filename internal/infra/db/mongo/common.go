package mongo

import (
	"context"
	"errors"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// saveVersioned upserts doc under an optimistic version filter and returns the stored version.
// A stale version either matches nothing or collides on _id during the upsert.
func saveVersioned(ctx context.Context, col *mongo.Collection, id string, version int64, doc bson.M, conflict error) (int64, error) {
	next := version + 1
	delete(doc, "_id")
	doc["version"] = next
	filter := bson.M{"_id": id, "version": version}
	res, err := col.UpdateOne(ctx, filter, bson.M{"$set": doc}, options.Update().SetUpsert(true))
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return version, conflict
		}
		return version, err
	}
	if res.MatchedCount == 0 && res.UpsertedCount == 0 {
		return version, conflict
	}
	return next, nil
}

// findPage runs a newest-first paged query and the matching count.
func findPage[D any](ctx context.Context, col *mongo.Collection, filter bson.M, limit, offset int) ([]D, int, error) {
	total, err := col.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	if offset > 0 {
		opts.SetSkip(int64(offset))
	}
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}
	cur, err := col.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, err
	}
	var docs []D
	if err := cur.All(ctx, &docs); err != nil {
		return nil, 0, err
	}
	return docs, int(total), nil
}

func findOne[D any](ctx context.Context, col *mongo.Collection, filter bson.M, notFound error) (*D, error) {
	var doc D
	if err := col.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, notFound
		}
		return nil, err
	}
	return &doc, nil
}

func countWhere(ctx context.Context, col *mongo.Collection, field, value string) (int, error) {
	filter := bson.M{}
	if value != "" {
		filter[field] = value
	}
	n, err := col.CountDocuments(ctx, filter)
	return int(n), err
}

// containsInsensitive matches value as a literal case-insensitive substring.
func containsInsensitive(value string) bson.M {
	return bson.M{"$regex": regexp.QuoteMeta(value), "$options": "i"}
}

func utc(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	return t.UTC()
}

// toBSON flattens a tagged document struct into a $set-able map.
func toBSON(v any) (bson.M, error) {
	raw, err := bson.Marshal(v)
	if err != nil {
		return nil, err
	}
	var out bson.M
	if err := bson.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return out, nil
}
