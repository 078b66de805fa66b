package store

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// walletDocument is the per-username document shape in the collection.
type walletDocument struct {
	Username string `bson:"username"`
	State    string `bson:"state"` // base64-encoded wallet state blob
}

// MongoStore keeps one wallet document per username in a mongo collection.
// Write is an atomic upsert keyed by username, so concurrent writers cannot
// leave duplicate or stale records behind.
type MongoStore struct {
	collection *mongo.Collection
}

// NewMongoStore connects to the document store and ensures the unique
// username index backing the upsert exists.
func NewMongoStore(ctx context.Context, uri, database, collection string) (*MongoStore, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri).SetServerSelectionTimeout(10*time.Second))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping mongo: %w", err)
	}

	coll := client.Database(database).Collection(collection)
	_, err = coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "username", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create username index: %w", err)
	}

	return &MongoStore{collection: coll}, nil
}

// Write upserts the wallet state document for username.
func (s *MongoStore) Write(ctx context.Context, username string, state []byte) error {
	doc := walletDocument{
		Username: username,
		State:    base64.StdEncoding.EncodeToString(state),
	}
	_, err := s.collection.ReplaceOne(ctx,
		bson.D{{Key: "username", Value: username}},
		doc,
		options.Replace().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert wallet state: %w", err)
	}
	return nil
}

// Load returns the wallet state for username, or ErrNotFound when no
// document exists.
func (s *MongoStore) Load(ctx context.Context, username string) ([]byte, error) {
	var doc walletDocument
	err := s.collection.FindOne(ctx, bson.D{{Key: "username", Value: username}}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load wallet state: %w", err)
	}

	state, err := base64.StdEncoding.DecodeString(doc.State)
	if err != nil {
		return nil, fmt.Errorf("failed to decode wallet state: %w", err)
	}
	return state, nil
}
