package store

import (
	"context"
	"encoding/json"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// mongoStore implements Store for MongoDB, one Mongo collection per logical
// collection. The natural key is stored as _id so uniqueness comes from the
// collection itself.
type mongoStore struct {
	client   *mongo.Client
	database *mongo.Database
}

type mongoRecord struct {
	Key      string   `bson:"_id"`
	KeyField string   `bson:"key_field"`
	Details  bson.Raw `bson:"details"`
}

// NewMongoDB creates a new MongoDB-backed store.
func NewMongoDB(ctx context.Context, cfg MongoDBConfig) (Store, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("MongoDB URL is required")
	}

	dbName := cfg.Database
	if dbName == "" {
		dbName = "lolanalysis"
	}

	clientOpts := options.Client().ApplyURI(cfg.URL)

	client, err := mongo.Connect(clientOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	// Verify connection
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	return &mongoStore{
		client:   client,
		database: client.Database(dbName),
	}, nil
}

func (s *mongoStore) Get(ctx context.Context, collection, keyField, keyValue string) (json.RawMessage, bool, error) {
	if !knownCollection(collection) {
		return nil, false, fmt.Errorf("unknown collection: %s", collection)
	}

	var rec mongoRecord
	err := s.database.Collection(collection).FindOne(ctx, bson.D{{Key: "_id", Value: keyValue}}).Decode(&rec)
	if err == mongo.ErrNoDocuments {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read %s/%s: %w", collection, keyValue, err)
	}

	details, err := bson.MarshalExtJSON(rec.Details, false, false)
	if err != nil {
		return nil, false, fmt.Errorf("failed to decode %s/%s: %w", collection, keyValue, err)
	}

	return json.RawMessage(details), true, nil
}

func (s *mongoStore) Put(ctx context.Context, collection, keyField, keyValue string, payload json.RawMessage) (bool, error) {
	if !knownCollection(collection) {
		return false, fmt.Errorf("unknown collection: %s", collection)
	}

	doc, err := s.document(keyField, keyValue, payload)
	if err != nil {
		return false, err
	}

	_, err = s.database.Collection(collection).InsertOne(ctx, doc)
	if mongo.IsDuplicateKeyError(err) {
		// First-write-wins: an existing record is left untouched.
		return true, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to write %s/%s: %w", collection, keyValue, err)
	}

	return true, nil
}

func (s *mongoStore) Replace(ctx context.Context, collection, keyField, keyValue string, payload json.RawMessage) error {
	if !knownCollection(collection) {
		return fmt.Errorf("unknown collection: %s", collection)
	}

	doc, err := s.document(keyField, keyValue, payload)
	if err != nil {
		return err
	}

	opts := options.Replace().SetUpsert(true)
	_, err = s.database.Collection(collection).ReplaceOne(ctx, bson.D{{Key: "_id", Value: keyValue}}, doc, opts)
	if err != nil {
		return fmt.Errorf("failed to replace %s/%s: %w", collection, keyValue, err)
	}

	return nil
}

func (s *mongoStore) Keys(ctx context.Context, collection string) ([]string, error) {
	if !knownCollection(collection) {
		return nil, fmt.Errorf("unknown collection: %s", collection)
	}

	cursor, err := s.database.Collection(collection).Find(ctx, bson.D{},
		options.Find().SetProjection(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to list %s keys: %w", collection, err)
	}
	defer cursor.Close(ctx)

	var keys []string
	for cursor.Next(ctx) {
		var rec struct {
			Key string `bson:"_id"`
		}
		if err := cursor.Decode(&rec); err != nil {
			return nil, err
		}
		keys = append(keys, rec.Key)
	}
	return keys, cursor.Err()
}

// document converts a raw JSON payload into the BSON document shape stored
// in Mongo. Relaxed extended JSON keeps plain JSON round-trippable.
func (s *mongoStore) document(keyField, keyValue string, payload json.RawMessage) (bson.D, error) {
	var details any
	if err := bson.UnmarshalExtJSON(payload, false, &details); err != nil {
		return nil, fmt.Errorf("payload is not valid JSON: %w", err)
	}
	return bson.D{
		{Key: "_id", Value: keyValue},
		{Key: "key_field", Value: keyField},
		{Key: "details", Value: details},
	}, nil
}

func (s *mongoStore) Type() string {
	return TypeMongoDB
}

func (s *mongoStore) Close() error {
	if s.client != nil {
		return s.client.Disconnect(context.Background())
	}
	return nil
}
