package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/noah-isme/timetabler-api/internal/domain"
)

// BestScore is the mirrored best score for one term.
type BestScore struct {
	TermID    string    `json:"term_id"`
	Hard      int       `json:"hard"`
	Soft      int       `json:"soft"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ScoreMirrorRepository mirrors the latest published best score per term into
// Redis so status reads survive process restarts and dashboards can poll the
// keys directly. All operations degrade to no-ops without a client.
type ScoreMirrorRepository struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewScoreMirrorRepository constructs the mirror.
func NewScoreMirrorRepository(client *redis.Client, ttl time.Duration, logger *zap.Logger) *ScoreMirrorRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &ScoreMirrorRepository{client: client, ttl: ttl, logger: logger}
}

func scoreKey(termID string) string {
	return "timetabler:best_score:" + termID
}

// Publish stores the score. Mirror failures are logged, never propagated: the
// in-memory store remains the source of truth.
func (r *ScoreMirrorRepository) Publish(ctx context.Context, termID string, score domain.Score) {
	if r.client == nil {
		return
	}
	payload, err := json.Marshal(BestScore{TermID: termID, Hard: score.Hard, Soft: score.Soft, UpdatedAt: time.Now().UTC()})
	if err != nil {
		r.logger.Warn("marshal best score", zap.String("term_id", termID), zap.Error(err))
		return
	}
	if err := r.client.Set(ctx, scoreKey(termID), payload, r.ttl).Err(); err != nil {
		r.logger.Warn("mirror best score", zap.String("term_id", termID), zap.Error(err))
	}
}

// Get returns the mirrored score, or false when none is stored.
func (r *ScoreMirrorRepository) Get(ctx context.Context, termID string) (BestScore, bool, error) {
	if r.client == nil {
		return BestScore{}, false, nil
	}
	raw, err := r.client.Get(ctx, scoreKey(termID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return BestScore{}, false, nil
		}
		return BestScore{}, false, fmt.Errorf("redis get %s: %w", scoreKey(termID), err)
	}
	var score BestScore
	if err := json.Unmarshal(raw, &score); err != nil {
		return BestScore{}, false, fmt.Errorf("unmarshal best score for %s: %w", termID, err)
	}
	return score, true, nil
}

// Delete removes the mirrored score.
func (r *ScoreMirrorRepository) Delete(ctx context.Context, termID string) {
	if r.client == nil {
		return
	}
	if err := r.client.Del(ctx, scoreKey(termID)).Err(); err != nil {
		r.logger.Warn("delete mirrored score", zap.String("term_id", termID), zap.Error(err))
	}
}
