package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"clauselens/internal/config"
	"clauselens/internal/models"
)

// ErrNotFound is returned when no analysis exists for a document id.
var ErrNotFound = errors.New("analysis not found")

const analysisTTL = 24 * time.Hour

// AnalysisStore caches finished analyses in Redis, keyed by document id,
// so clients can re-fetch a result without re-running the pipeline.
type AnalysisStore struct {
	client *redis.Client
}

// NewAnalysisStore connects to Redis and verifies the connection.
func NewAnalysisStore(ctx context.Context, cfg config.RedisConfig) (*AnalysisStore, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return &AnalysisStore{client: rdb}, nil
}

func analysisKey(docID string) string {
	return "analysis:" + docID
}

// Save stores the analysis under the document id with a TTL.
func (s *AnalysisStore) Save(ctx context.Context, docID string, analysis *models.Analysis) error {
	data, err := json.Marshal(analysis)
	if err != nil {
		return fmt.Errorf("failed to serialize analysis: %w", err)
	}
	if err := s.client.Set(ctx, analysisKey(docID), data, analysisTTL).Err(); err != nil {
		return fmt.Errorf("failed to store analysis: %w", err)
	}
	return nil
}

// Get returns the stored analysis for a document id, or ErrNotFound.
func (s *AnalysisStore) Get(ctx context.Context, docID string) (*models.Analysis, error) {
	data, err := s.client.Get(ctx, analysisKey(docID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch analysis: %w", err)
	}
	var analysis models.Analysis
	if err := json.Unmarshal(data, &analysis); err != nil {
		return nil, fmt.Errorf("failed to decode stored analysis: %w", err)
	}
	return &analysis, nil
}
