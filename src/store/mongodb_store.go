package store

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	probe "github.com/Protocol-Lattice/go-probe"
)

// MongoStore persists result records as one document per record.
type MongoStore struct {
	client     *mongo.Client
	collection *mongo.Collection
}

const mongoCloseTimeout = 5 * time.Second

// NewMongoStore connects, pings, and returns a store writing to the given
// database and collection.
func NewMongoStore(ctx context.Context, uri, database, collection string) (*MongoStore, error) {
	if uri == "" {
		return nil, errors.New("mongo uri is required")
	}
	if database == "" {
		return nil, errors.New("mongo database name is required")
	}
	if collection == "" {
		return nil, errors.New("mongo collection name is required")
	}
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, err
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}
	return &MongoStore{
		client:     client,
		collection: client.Database(database).Collection(collection),
	}, nil
}

// Save inserts one record document.
func (ms *MongoStore) Save(ctx context.Context, runID string, rec probe.Record) error {
	if ms == nil || ms.collection == nil {
		return nil
	}
	doc := bson.M{
		"run_id":     runID,
		"tool_name":  rec.Name,
		"tool_type":  rec.ToolType,
		"status":     string(rec.Status),
		"input":      rec.Input,
		"created_at": time.Now().UTC(),
	}
	if rec.Err != "" {
		doc["error"] = rec.Err
	}
	if out := outputDocument(rec.Output); out != nil {
		doc["output"] = out
	}
	_, err := ms.collection.InsertOne(ctx, doc)
	return err
}

// Close disconnects with a bounded timeout.
func (ms *MongoStore) Close(ctx context.Context) error {
	if ms == nil || ms.client == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, mongoCloseTimeout)
	defer cancel()
	return ms.client.Disconnect(ctx)
}

// outputDocument round-trips the response through JSON so faults and decoded
// envelopes land in Mongo with the same shape other consumers see.
func outputDocument(out *probe.Response) any {
	if out == nil {
		return nil
	}
	data, err := json.Marshal(out)
	if err != nil {
		return nil
	}
	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil
	}
	return doc
}
