// Package retrieval exposes the document indexes the agent queries over
// user videos, stories, and comments, wrapped as workflow tools.
package retrieval

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Document is one retrieved item with its relevance score.
type Document struct {
	ID      string         `bson:"_id,omitempty" json:"id,omitempty"`
	Text    string         `bson:"text" json:"text"`
	Meta    map[string]any `bson:"meta,omitempty" json:"meta,omitempty"`
	Score   float64        `bson:"score,omitempty" json:"score,omitempty"`
	Country string         `bson:"country,omitempty" json:"country,omitempty"`
}

// Index answers free-text queries over one document corpus.
type Index interface {
	Query(ctx context.Context, query string, limit int) ([]Document, error)
}

// MongoIndex implements Index with MongoDB text search.
type MongoIndex struct {
	collection *mongo.Collection
}

func NewMongoIndex(database *mongo.Database, collection string) *MongoIndex {
	return &MongoIndex{collection: database.Collection(collection)}
}

func (i *MongoIndex) Query(ctx context.Context, query string, limit int) ([]Document, error) {
	if limit <= 0 {
		limit = 10
	}

	filter := bson.M{"$text": bson.M{"$search": query}}

	findOptions := options.Find()
	findOptions.SetProjection(bson.M{"score": bson.M{"$meta": "textScore"}})
	findOptions.SetSort(bson.M{"score": bson.M{"$meta": "textScore"}})
	findOptions.SetLimit(int64(limit))

	cursor, err := i.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to query index: %w", err)
	}
	defer cursor.Close(ctx)

	var documents []Document
	if err := cursor.All(ctx, &documents); err != nil {
		return nil, fmt.Errorf("failed to decode documents: %w", err)
	}

	return documents, nil
}
