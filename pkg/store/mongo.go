package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/matzehuels/conceptmap/pkg/concept"
	apperr "github.com/matzehuels/conceptmap/pkg/errors"
)

// Mongo defaults.
const (
	DefaultMongoDatabase   = "conceptmap"
	DefaultMongoCollection = "maps"
)

// MongoStore keeps maps in a MongoDB collection, one document per map keyed
// by _id.
type MongoStore struct {
	client *mongo.Client
	coll   *mongo.Collection
}

// NewMongoStore connects to uri and uses the "maps" collection of database
// (or [DefaultMongoDatabase] when empty). It pings the server and ensures a
// created_at index for listing.
func NewMongoStore(ctx context.Context, uri, database string) (*MongoStore, error) {
	if database == "" {
		database = DefaultMongoDatabase
	}
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	coll := client.Database(database).Collection(DefaultMongoCollection)
	_, err = coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "created_at", Value: -1}},
	})
	if err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("create index: %w", err)
	}
	return &MongoStore{client: client, coll: coll}, nil
}

// Save upserts rec by id.
func (s *MongoStore) Save(ctx context.Context, rec Record) error {
	if err := apperr.ValidateMapID(rec.ID); err != nil {
		return err
	}
	rec.Map = concept.Normalize(rec.Map)
	_, err := s.coll.ReplaceOne(ctx, bson.M{"_id": rec.ID}, rec, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("save map %s: %w", rec.ID, err)
	}
	return nil
}

// Get loads the map with the given id.
func (s *MongoStore) Get(ctx context.Context, id string) (Record, error) {
	if err := apperr.ValidateMapID(id); err != nil {
		return Record{}, err
	}
	var rec Record
	err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&rec)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return Record{}, ErrNotFound
	}
	if err != nil {
		return Record{}, fmt.Errorf("get map %s: %w", id, err)
	}
	rec.Map = concept.Normalize(rec.Map)
	return rec, nil
}

// List returns all maps, newest first.
func (s *MongoStore) List(ctx context.Context) ([]Record, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: 1}})
	cur, err := s.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("list maps: %w", err)
	}
	recs := []Record{}
	if err := cur.All(ctx, &recs); err != nil {
		return nil, fmt.Errorf("decode maps: %w", err)
	}
	for i := range recs {
		recs[i].Map = concept.Normalize(recs[i].Map)
	}
	return recs, nil
}

// Delete removes the map with the given id.
func (s *MongoStore) Delete(ctx context.Context, id string) error {
	if err := apperr.ValidateMapID(id); err != nil {
		return err
	}
	res, err := s.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete map %s: %w", id, err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// Close disconnects from MongoDB.
func (s *MongoStore) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}

// Ensure MongoStore implements Store.
var _ Store = (*MongoStore)(nil)
