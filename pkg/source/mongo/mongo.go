// Package mongo loads a family document from a MongoDB collection.
//
// Each document in the collection is one person, with the same field names
// as the JSON format (id, name, birthYear, parentIds, ...). Extra fields such
// as _id are ignored.
//
//	doc, err := mongo.Load(ctx, mongo.Config{
//	    URI:      "mongodb://localhost:27017",
//	    Database: "genealogy",
//	})
package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/matzehuels/kintree/pkg/cache"
	"github.com/matzehuels/kintree/pkg/errors"
	"github.com/matzehuels/kintree/pkg/family"
)

// Defaults for [Config].
const (
	DefaultCollection = "people"
	DefaultSortField  = "_id"
	DefaultTimeout    = 10 * time.Second
)

// Config selects the collection to read.
type Config struct {
	URI        string        `toml:"uri" json:"-"`
	Database   string        `toml:"database" json:"database"`
	Collection string        `toml:"collection" json:"collection,omitempty"`
	SortField  string        `toml:"sort_field" json:"sort_field,omitempty"` // Defines document order, and so the default anchor
	Timeout    time.Duration `toml:"timeout" json:"timeout,omitempty"`
}

// SetDefaults fills zero fields with their defaults.
func (c *Config) SetDefaults() {
	if c.Collection == "" {
		c.Collection = DefaultCollection
	}
	if c.SortField == "" {
		c.SortField = DefaultSortField
	}
	if c.Timeout == 0 {
		c.Timeout = DefaultTimeout
	}
}

// Validate checks the connection settings.
func (c *Config) Validate() error {
	if err := errors.ValidateMongoURI(c.URI); err != nil {
		return err
	}
	if c.Database == "" {
		return errors.New(errors.ErrCodeInvalidConfig, "mongodb database is required")
	}
	if c.Timeout < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "mongodb timeout must not be negative")
	}
	return nil
}

// Load reads every person in the collection, ordered by SortField.
// Connecting is retried with backoff; a server that stays unreachable
// yields an error with code NETWORK_ERROR.
func Load(ctx context.Context, cfg Config) (*family.Document, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI).SetServerSelectionTimeout(cfg.Timeout))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "mongodb connect")
	}
	defer func() { _ = client.Disconnect(context.Background()) }()

	err = cache.RetryWithBackoff(ctx, func() error {
		if err := client.Ping(ctx, readpref.Primary()); err != nil {
			return cache.Retryable(fmt.Errorf("%w: %v", cache.ErrNetwork, err))
		}
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeNetwork, err, "mongodb unreachable")
	}

	coll := client.Database(cfg.Database).Collection(cfg.Collection)
	cur, err := coll.Find(ctx, bson.D{}, options.Find().SetSort(bson.D{{Key: cfg.SortField, Value: 1}}))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeNetwork, err, "query %s.%s", cfg.Database, cfg.Collection)
	}

	var people []family.Person
	if err := cur.All(ctx, &people); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode %s.%s", cfg.Database, cfg.Collection)
	}
	return &family.Document{People: people}, nil
}
