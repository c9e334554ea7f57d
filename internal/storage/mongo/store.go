// Package mongo persists carts and users as MongoDB documents.
package mongo

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.mongodb.org/mongo-driver/x/mongo/driver/connstring"

	"github.com/GovarthanahariN/CartProjectBE/internal/storage"
)

// DefaultDatabase is used when neither the URI nor the caller names one.
const DefaultDatabase = "smartcart"

const (
	cartsCollection = "carts"
	usersCollection = "users"
)

var _ storage.Store = (*Store)(nil)

// Store is a MongoDB-backed storage.Store.
type Store struct {
	client *mongo.Client
	carts  *mongo.Collection
	users  *mongo.Collection
}

// NewStore connects to uri, pings the primary and ensures unique indexes.
// database overrides the name in the URI path when non-empty.
func NewStore(ctx context.Context, uri, database string) (*Store, error) {
	if database == "" {
		cs, err := connstring.ParseAndValidate(uri)
		if err != nil {
			return nil, fmt.Errorf("parse database url: %w", err)
		}
		database = cs.Database
	}
	if database == "" {
		database = DefaultDatabase
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	db := client.Database(database)
	s := &Store{
		client: client,
		carts:  db.Collection(cartsCollection),
		users:  db.Collection(usersCollection),
	}
	if err := s.Ping(ctx); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("ping database: %w", err)
	}
	if err := s.ensureIndexes(ctx); err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}
	return s, nil
}

// Ping checks connectivity against the primary.
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, readpref.Primary())
}

// Close disconnects the client.
func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

func (s *Store) ensureIndexes(ctx context.Context) error {
	indexes := []struct {
		coll *mongo.Collection
		key  string
	}{
		{s.carts, "cartId"},
		{s.users, "mobilenum"},
	}
	for _, idx := range indexes {
		_, err := idx.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
			Keys:    bson.D{{Key: idx.key, Value: 1}},
			Options: options.Index().SetUnique(true),
		})
		if err != nil {
			return fmt.Errorf("create %s.%s index: %w", idx.coll.Name(), idx.key, err)
		}
	}
	return nil
}

func translate(err error) error {
	switch {
	case errors.Is(err, mongo.ErrNoDocuments):
		return storage.ErrNotFound
	case mongo.IsDuplicateKeyError(err):
		return storage.ErrAlreadyExists
	default:
		return err
	}
}
