package store

import (
	"context"
	"fmt"
	"sort"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Glycocalex/glycowork-ab/pkg/errors"
)

// MongoStore keeps datasets in a MongoDB collection, one document per
// dataset keyed by name. Suited to shared deployments where several
// analysis services read the same curated collections.
type MongoStore struct {
	client *mongo.Client
	coll   *mongo.Collection
}

// NewMongoStore connects to MongoDB and verifies the connection. The
// datasets live in the "datasets" collection of the given database.
func NewMongoStore(ctx context.Context, uri, database string) (*MongoStore, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongodb: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("ping mongodb: %w", err)
	}
	return &MongoStore{
		client: client,
		coll:   client.Database(database).Collection("datasets"),
	}, nil
}

// Get retrieves a dataset by name.
func (s *MongoStore) Get(ctx context.Context, name string) (*Dataset, error) {
	var d Dataset
	err := s.coll.FindOne(ctx, bson.M{"name": name}).Decode(&d)
	if err == mongo.ErrNoDocuments {
		return nil, errors.New(errors.ErrCodeDatasetNotFound, "dataset %q not found", name)
	}
	if err != nil {
		return nil, fmt.Errorf("find dataset: %w", err)
	}
	return &d, nil
}

// Put stores a dataset after validating it, upserting on name.
func (s *MongoStore) Put(ctx context.Context, d *Dataset) error {
	if err := d.Validate(); err != nil {
		return err
	}
	_, err := s.coll.ReplaceOne(ctx, bson.M{"name": d.Name}, d, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("store dataset: %w", err)
	}
	return nil
}

// Delete removes a dataset.
func (s *MongoStore) Delete(ctx context.Context, name string) error {
	if _, err := s.coll.DeleteOne(ctx, bson.M{"name": name}); err != nil {
		return fmt.Errorf("delete dataset: %w", err)
	}
	return nil
}

// List returns the stored dataset names, sorted.
func (s *MongoStore) List(ctx context.Context) ([]string, error) {
	raw, err := s.coll.Distinct(ctx, "name", bson.M{})
	if err != nil {
		return nil, fmt.Errorf("list datasets: %w", err)
	}
	names := make([]string, 0, len(raw))
	for _, v := range raw {
		if name, ok := v.(string); ok {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names, nil
}

// Close disconnects from MongoDB.
func (s *MongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

var _ Store = (*MongoStore)(nil)
