package store

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoStore implements Store on top of a MongoDB database. Documents are
// addressed by string _id, matching the gateway's fixed document ids.
type MongoStore struct {
	db *mongo.Database
}

func NewMongoStore(db *mongo.Database) *MongoStore {
	return &MongoStore{db: db}
}

// splitServerTimestamps separates plain fields from ServerTimestamp sentinels.
// Sentinels become $currentDate operands so the timestamp is assigned by the
// server, not this process.
func splitServerTimestamps(fields map[string]any) (bson.M, bson.M) {
	set := bson.M{}
	current := bson.M{}
	for k, v := range fields {
		if _, ok := v.(serverTimestamp); ok {
			current[k] = true
			continue
		}
		set[k] = v
	}
	return set, current
}

func (s *MongoStore) SetMerge(ctx context.Context, collection, id string, fields map[string]any) error {
	set, current := splitServerTimestamps(fields)
	update := bson.M{}
	if len(set) > 0 {
		update["$set"] = set
	}
	if len(current) > 0 {
		update["$currentDate"] = current
	}
	if len(update) == 0 {
		return nil
	}
	opts := options.Update().SetUpsert(true)
	_, err := s.db.Collection(collection).UpdateOne(ctx, bson.M{"_id": id}, update, opts)
	return err
}

func (s *MongoStore) Set(ctx context.Context, collection, id string, fields map[string]any) error {
	set, current := splitServerTimestamps(fields)
	col := s.db.Collection(collection)
	opts := options.Replace().SetUpsert(true)
	if _, err := col.ReplaceOne(ctx, bson.M{"_id": id}, set, opts); err != nil {
		return err
	}
	// sentinels resolve on the server in a follow-up update
	if len(current) > 0 {
		if _, err := col.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$currentDate": current}); err != nil {
			return err
		}
	}
	return nil
}

func (s *MongoStore) Get(ctx context.Context, collection, id string) (map[string]any, error) {
	var doc bson.M
	err := s.db.Collection(collection).FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	delete(doc, "_id")
	out := make(map[string]any, len(doc))
	for k, v := range doc {
		out[k] = v
	}
	return out, nil
}
