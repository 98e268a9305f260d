package storage

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const questionsCollection = "questions"

// QuestionStore tracks how often research questions are asked and keeps
// the latest final response per question. Failures are logged, never
// surfaced; stats must not break a stream.
type QuestionStore struct {
	database *mongo.Database
}

func NewQuestionStore(database *mongo.Database) *QuestionStore {
	store := &QuestionStore{database: database}
	store.ensureIndexes()
	return store
}

func (s *QuestionStore) ensureIndexes() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	collection := s.database.Collection(questionsCollection)

	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "question", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "views", Value: -1}},
		},
	}

	if _, err := collection.Indexes().CreateMany(ctx, indexes); err != nil {
		log.Warn().Err(err).Msg("Failed to create indexes for questions")
	}
}

// IncrementViews bumps the view counter for a question, creating the
// document on first sight.
func (s *QuestionStore) IncrementViews(ctx context.Context, question string) {
	if question == "" {
		return
	}

	collection := s.database.Collection(questionsCollection)

	update := bson.M{
		"$inc": bson.M{"views": 1},
		"$set": bson.M{"updated_at": time.Now()},
		"$setOnInsert": bson.M{
			"question":   question,
			"created_at": time.Now(),
		},
	}

	opts := options.Update().SetUpsert(true)
	if _, err := collection.UpdateOne(ctx, bson.M{"question": question}, update, opts); err != nil {
		log.Warn().Err(err).Msg("Failed to increment question views")
	}
}

// RecordFinalResponse stores the completed assistant response for a
// question so it can be served without re-running the workflow.
func (s *QuestionStore) RecordFinalResponse(ctx context.Context, question, response string) {
	if question == "" || response == "" {
		return
	}

	collection := s.database.Collection(questionsCollection)

	update := bson.M{
		"$set": bson.M{
			"final_response": response,
			"updated_at":     time.Now(),
		},
		"$setOnInsert": bson.M{
			"question":   question,
			"created_at": time.Now(),
		},
	}

	opts := options.Update().SetUpsert(true)
	if _, err := collection.UpdateOne(ctx, bson.M{"question": question}, update, opts); err != nil {
		log.Warn().Err(err).Msg("Failed to record final response")
	}
}
