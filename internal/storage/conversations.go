// Package storage persists conversations and question stats in MongoDB.
package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/pjamessteven/social-project-sub002/pkg/chatstream/types"
)

const conversationsCollection = "conversations"

// ErrConversationNotFound is returned when no conversation exists under
// the requested uuid.
var ErrConversationNotFound = errors.New("conversation not found")

// Conversation is a persisted chat or research session.
type Conversation struct {
	UUID      string            `bson:"uuid" json:"uuid"`
	Title     string            `bson:"title,omitempty" json:"title,omitempty"`
	Mode      string            `bson:"mode" json:"mode"`
	Featured  bool              `bson:"featured" json:"featured"`
	Archived  bool              `bson:"archived" json:"archived"`
	Summary   string            `bson:"summary,omitempty" json:"summary,omitempty"`
	Country   string            `bson:"country,omitempty" json:"country,omitempty"`
	Messages  []types.UIMessage `bson:"messages" json:"messages"`
	CreatedAt time.Time         `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time         `bson:"updated_at" json:"updatedAt"`
}

// ConversationFilter narrows List results.
type ConversationFilter struct {
	Mode     string
	Featured *bool
	Page     int
	Limit    int
}

// ConversationStore implements conversation persistence on MongoDB.
type ConversationStore struct {
	database *mongo.Database
}

func NewConversationStore(database *mongo.Database) *ConversationStore {
	store := &ConversationStore{database: database}
	store.ensureIndexes()
	return store
}

func (s *ConversationStore) ensureIndexes() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	collection := s.database.Collection(conversationsCollection)

	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "uuid", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{
				{Key: "mode", Value: 1},
				{Key: "updated_at", Value: -1},
			},
		},
		{
			Keys: bson.D{{Key: "featured", Value: 1}},
		},
	}

	if _, err := collection.Indexes().CreateMany(ctx, indexes); err != nil {
		fmt.Printf("Failed to create indexes for conversations: %v\n", err)
	}
}

// Save inserts or updates a conversation by uuid.
func (s *ConversationStore) Save(ctx context.Context, conversation *Conversation) error {
	if conversation.UUID == "" {
		return errors.New("conversation uuid is required")
	}

	collection := s.database.Collection(conversationsCollection)

	now := time.Now()
	if conversation.CreatedAt.IsZero() {
		conversation.CreatedAt = now
	}
	conversation.UpdatedAt = now

	filter := bson.M{"uuid": conversation.UUID}

	update := bson.M{
		"$set": bson.M{
			"uuid":       conversation.UUID,
			"title":      conversation.Title,
			"mode":       conversation.Mode,
			"featured":   conversation.Featured,
			"archived":   conversation.Archived,
			"summary":    conversation.Summary,
			"country":    conversation.Country,
			"messages":   conversation.Messages,
			"updated_at": conversation.UpdatedAt,
		},
		"$setOnInsert": bson.M{
			"created_at": conversation.CreatedAt,
		},
	}

	opts := options.Update().SetUpsert(true)
	if _, err := collection.UpdateOne(ctx, filter, update, opts); err != nil {
		return fmt.Errorf("failed to save conversation: %w", err)
	}

	return nil
}

// Get retrieves a single conversation by uuid.
func (s *ConversationStore) Get(ctx context.Context, uuid string) (*Conversation, error) {
	collection := s.database.Collection(conversationsCollection)

	var conversation Conversation
	err := collection.FindOne(ctx, bson.M{"uuid": uuid}).Decode(&conversation)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrConversationNotFound
		}
		return nil, fmt.Errorf("failed to find conversation: %w", err)
	}

	return &conversation, nil
}

// List returns conversations matching the filter, most recently updated
// first.
func (s *ConversationStore) List(ctx context.Context, filter ConversationFilter) ([]*Conversation, error) {
	collection := s.database.Collection(conversationsCollection)

	mongoFilter := bson.M{"archived": false}

	if filter.Mode != "" {
		mongoFilter["mode"] = filter.Mode
	}

	if filter.Featured != nil {
		mongoFilter["featured"] = *filter.Featured
	}

	limit := filter.Limit
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}

	findOptions := options.Find()
	findOptions.SetSort(bson.D{{Key: "updated_at", Value: -1}})
	findOptions.SetLimit(int64(limit))
	findOptions.SetSkip(int64((page - 1) * limit))

	cursor, err := collection.Find(ctx, mongoFilter, findOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to find conversations: %w", err)
	}
	defer cursor.Close(ctx)

	var conversations []*Conversation
	if err := cursor.All(ctx, &conversations); err != nil {
		return nil, fmt.Errorf("failed to decode conversations: %w", err)
	}

	return conversations, nil
}
