package storage

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"clauselens/internal/config"
	"clauselens/internal/models"
)

const feedbackCollection = "chat_feedback"

// FeedbackStore persists chat feedback in MongoDB for later review.
type FeedbackStore struct {
	collection *mongo.Collection
}

// NewFeedbackStore connects to MongoDB and verifies the connection.
func NewFeedbackStore(ctx context.Context, cfg config.MongoConfig) (*FeedbackStore, error) {
	clientOptions := options.Client().ApplyURI(cfg.Address)
	if cfg.Username != "" && cfg.Password != "" {
		clientOptions.SetAuth(options.Credential{
			Username: cfg.Username,
			Password: cfg.Password,
		})
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("mongodb ping failed: %w", err)
	}

	return &FeedbackStore{
		collection: client.Database(cfg.Database).Collection(feedbackCollection),
	}, nil
}

// feedbackRecord is the stored document shape.
type feedbackRecord struct {
	MessageID    string    `bson:"message_id"`
	Feedback     string    `bson:"feedback"`
	DocumentType string    `bson:"document_type,omitempty"`
	RiskLevel    string    `bson:"risk_level,omitempty"`
	CreatedAt    time.Time `bson:"created_at"`
}

// Save records one feedback event. Only the summary identifiers of the
// document context are kept, not the full analysis.
func (s *FeedbackStore) Save(ctx context.Context, fb *models.Feedback) error {
	record := feedbackRecord{
		MessageID: fb.MessageID,
		Feedback:  fb.Feedback,
		CreatedAt: time.Now().UTC(),
	}
	if fb.DocumentContext != nil {
		record.DocumentType = fb.DocumentContext.Summary.DocumentType
		record.RiskLevel = fb.DocumentContext.Summary.OverallRiskLevel
	}
	if _, err := s.collection.InsertOne(ctx, record); err != nil {
		return fmt.Errorf("failed to store feedback: %w", err)
	}
	return nil
}
