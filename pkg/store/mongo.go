package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// DefaultCollection is the collection MongoStore uses.
const DefaultCollection = "entities"

// collection is the subset of *mongo.Collection the store uses.
type collection interface {
	ReplaceOne(ctx context.Context, filter interface{}, replacement interface{}, opts ...*options.ReplaceOptions) (*mongo.UpdateResult, error)
	FindOne(ctx context.Context, filter interface{}, opts ...*options.FindOneOptions) *mongo.SingleResult
	Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) (*mongo.Cursor, error)
	DeleteOne(ctx context.Context, filter interface{}, opts ...*options.DeleteOptions) (*mongo.DeleteResult, error)
}

// document is the stored form of an entity. Data holds the entity's JSON
// so that every backend stores identical payloads.
type document struct {
	ID        string    `bson:"_id"`
	Kind      string    `bson:"kind"`
	Name      string    `bson:"name"`
	Data      string    `bson:"data"`
	UpdatedAt time.Time `bson:"updated_at"`
}

// MongoStore stores entities in a single MongoDB collection, keyed by
// "<kind>/<name>".
type MongoStore struct {
	client *mongo.Client
	coll   collection
}

// NewMongoStore connects to uri and uses database's entities collection.
func NewMongoStore(ctx context.Context, uri, database string) (*MongoStore, error) {
	if uri == "" || database == "" {
		return nil, fmt.Errorf("mongodb uri and database are required")
	}
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect to mongodb: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongodb: %w", err)
	}

	return &MongoStore{
		client: client,
		coll:   client.Database(database).Collection(DefaultCollection),
	}, nil
}

func docID(kind Kind, name string) string { return string(kind) + "/" + name }

func (s *MongoStore) Put(ctx context.Context, kind Kind, name string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal %s/%s: %w", kind, name, err)
	}
	doc := document{
		ID:        docID(kind, name),
		Kind:      string(kind),
		Name:      name,
		Data:      string(data),
		UpdatedAt: time.Now().UTC(),
	}
	_, err = s.coll.ReplaceOne(ctx, bson.M{"_id": doc.ID}, doc, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("put %s/%s: %w", kind, name, err)
	}
	return nil
}

func (s *MongoStore) Get(ctx context.Context, kind Kind, name string, v any) error {
	var doc document
	err := s.coll.FindOne(ctx, bson.M{"_id": docID(kind, name)}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return fmt.Errorf("%s %q: %w", kind, name, ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("get %s/%s: %w", kind, name, err)
	}
	if err := json.Unmarshal([]byte(doc.Data), v); err != nil {
		return fmt.Errorf("parse %s/%s: %w", kind, name, err)
	}
	return nil
}

func (s *MongoStore) List(ctx context.Context, kind Kind) ([]string, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "name", Value: 1}}).
		SetProjection(bson.M{"name": 1})
	cur, err := s.coll.Find(ctx, bson.M{"kind": string(kind)}, opts)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", kind, err)
	}
	var docs []document
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("list %s: %w", kind, err)
	}
	names := make([]string, 0, len(docs))
	for _, d := range docs {
		names = append(names, d.Name)
	}
	return names, nil
}

func (s *MongoStore) Delete(ctx context.Context, kind Kind, name string) error {
	res, err := s.coll.DeleteOne(ctx, bson.M{"_id": docID(kind, name)})
	if err != nil {
		return fmt.Errorf("delete %s/%s: %w", kind, name, err)
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("%s %q: %w", kind, name, ErrNotFound)
	}
	return nil
}

// Close disconnects the client.
func (s *MongoStore) Close() error {
	if s.client == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}

var _ Store = (*MongoStore)(nil)
