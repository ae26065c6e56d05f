package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"geoquiz/internal/model"
)

// SessionStore is the persistence gateway for per-session quiz state. All
// round, answer, score and rotation reads and writes funnel through it.
// Absent keys read back as zero values; a corrupt stored value is treated
// the same as an absent one, never surfaced as an error to callers.
type SessionStore interface {
	GetRound(ctx context.Context, sessionID string) (*model.Round, error)
	SetRound(ctx context.Context, sessionID string, round *model.Round) error

	GetQuestions(ctx context.Context, sessionID string) ([]model.Question, error)
	SetQuestions(ctx context.Context, sessionID string, questions []model.Question) error

	GetAnswers(ctx context.Context, sessionID string) (map[int64]model.AnswerRecord, error)
	SetAnswers(ctx context.Context, sessionID string, answers map[int64]model.AnswerRecord) error

	GetScore(ctx context.Context, sessionID string) (int, error)
	SetScore(ctx context.Context, sessionID string, score int) error

	GetTotal(ctx context.Context, sessionID string) (int, error)
	SetTotal(ctx context.Context, sessionID string, total int) error

	GetNextCategory(ctx context.Context, sessionID string) (string, error)
	SetNextCategory(ctx context.Context, sessionID string, category string) error
}

type sessionStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewSessionStore creates a Redis-backed session store. State is scoped to
// one browser session and expires with it; cross-tab consistency is not a
// goal.
func NewSessionStore(client *redis.Client) SessionStore {
	return &sessionStore{
		client: client,
		ttl:    24 * time.Hour,
	}
}

func (s *sessionStore) roundKey(sid string) string     { return fmt.Sprintf("session:%s:round", sid) }
func (s *sessionStore) questionsKey(sid string) string { return fmt.Sprintf("session:%s:questions", sid) }
func (s *sessionStore) answersKey(sid string) string   { return fmt.Sprintf("session:%s:answers", sid) }
func (s *sessionStore) scoreKey(sid string) string     { return fmt.Sprintf("session:%s:score", sid) }
func (s *sessionStore) totalKey(sid string) string     { return fmt.Sprintf("session:%s:total", sid) }
func (s *sessionStore) nextKey(sid string) string      { return fmt.Sprintf("session:%s:nextCategory", sid) }

func (s *sessionStore) GetRound(ctx context.Context, sessionID string) (*model.Round, error) {
	data, err := s.client.Get(ctx, s.roundKey(sessionID)).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var round model.Round
	if err := json.Unmarshal([]byte(data), &round); err != nil {
		return nil, nil
	}
	return &round, nil
}

func (s *sessionStore) SetRound(ctx context.Context, sessionID string, round *model.Round) error {
	data, err := json.Marshal(round)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, s.roundKey(sessionID), data, s.ttl).Err()
}

func (s *sessionStore) GetQuestions(ctx context.Context, sessionID string) ([]model.Question, error) {
	data, err := s.client.Get(ctx, s.questionsKey(sessionID)).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var questions []model.Question
	if err := json.Unmarshal([]byte(data), &questions); err != nil {
		return nil, nil
	}
	return questions, nil
}

func (s *sessionStore) SetQuestions(ctx context.Context, sessionID string, questions []model.Question) error {
	data, err := json.Marshal(questions)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, s.questionsKey(sessionID), data, s.ttl).Err()
}

func (s *sessionStore) GetAnswers(ctx context.Context, sessionID string) (map[int64]model.AnswerRecord, error) {
	data, err := s.client.Get(ctx, s.answersKey(sessionID)).Result()
	if err == redis.Nil {
		return map[int64]model.AnswerRecord{}, nil
	}
	if err != nil {
		return nil, err
	}
	answers := make(map[int64]model.AnswerRecord)
	if err := json.Unmarshal([]byte(data), &answers); err != nil {
		return map[int64]model.AnswerRecord{}, nil
	}
	return answers, nil
}

func (s *sessionStore) SetAnswers(ctx context.Context, sessionID string, answers map[int64]model.AnswerRecord) error {
	data, err := json.Marshal(answers)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, s.answersKey(sessionID), data, s.ttl).Err()
}

func (s *sessionStore) GetScore(ctx context.Context, sessionID string) (int, error) {
	return s.getInt(ctx, s.scoreKey(sessionID))
}

func (s *sessionStore) SetScore(ctx context.Context, sessionID string, score int) error {
	return s.client.Set(ctx, s.scoreKey(sessionID), score, s.ttl).Err()
}

func (s *sessionStore) GetTotal(ctx context.Context, sessionID string) (int, error) {
	return s.getInt(ctx, s.totalKey(sessionID))
}

func (s *sessionStore) SetTotal(ctx context.Context, sessionID string, total int) error {
	return s.client.Set(ctx, s.totalKey(sessionID), total, s.ttl).Err()
}

func (s *sessionStore) GetNextCategory(ctx context.Context, sessionID string) (string, error) {
	val, err := s.client.Get(ctx, s.nextKey(sessionID)).Result()
	if err == redis.Nil {
		return "", nil
	}
	return val, err
}

func (s *sessionStore) SetNextCategory(ctx context.Context, sessionID string, category string) error {
	return s.client.Set(ctx, s.nextKey(sessionID), category, s.ttl).Err()
}

func (s *sessionStore) getInt(ctx context.Context, key string) (int, error) {
	val, err := s.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		// Malformed stored value falls back to zero.
		return 0, nil
	}
	return n, nil
}
