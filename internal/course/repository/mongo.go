package repository

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoBackend keeps each collection as a single document
// {_id: <kind>, payload: <json>, updatedAt}. Replacing one document is atomic
// in MongoDB, so a collection is never observed half-written.
type MongoBackend struct {
	col *mongo.Collection
}

type collectionDoc struct {
	Kind      string    `bson:"_id"`
	Payload   string    `bson:"payload"`
	UpdatedAt time.Time `bson:"updatedAt"`
}

func NewMongoBackend(col *mongo.Collection) *MongoBackend {
	return &MongoBackend{col: col}
}

func (m *MongoBackend) Read(ctx context.Context, kind Kind) ([]byte, error) {
	var d collectionDoc
	err := m.col.FindOne(ctx, bson.M{"_id": string(kind)}).Decode(&d)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	return []byte(d.Payload), nil
}

func (m *MongoBackend) Write(ctx context.Context, kind Kind, data []byte) error {
	doc := collectionDoc{Kind: string(kind), Payload: string(data), UpdatedAt: time.Now().UTC()}
	opts := options.Replace().SetUpsert(true)
	_, err := m.col.ReplaceOne(ctx, bson.M{"_id": string(kind)}, doc, opts)
	return err
}
