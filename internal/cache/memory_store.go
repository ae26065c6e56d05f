package cache

import (
	"context"
	"sync"

	"geoquiz/internal/model"
)

// MemoryStore is an in-process SessionStore used in tests and when running
// without Redis. Values are deep-copied on the way in and out so callers
// never share state through the store.
type MemoryStore struct {
	mu        sync.RWMutex
	rounds    map[string]model.Round
	questions map[string][]model.Question
	answers   map[string]map[int64]model.AnswerRecord
	scores    map[string]int
	totals    map[string]int
	nextCats  map[string]string
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		rounds:    make(map[string]model.Round),
		questions: make(map[string][]model.Question),
		answers:   make(map[string]map[int64]model.AnswerRecord),
		scores:    make(map[string]int),
		totals:    make(map[string]int),
		nextCats:  make(map[string]string),
	}
}

func (s *MemoryStore) GetRound(ctx context.Context, sessionID string) (*model.Round, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	round, ok := s.rounds[sessionID]
	if !ok {
		return nil, nil
	}
	round.QuestionIDs = append([]int64(nil), round.QuestionIDs...)
	return &round, nil
}

func (s *MemoryStore) SetRound(ctx context.Context, sessionID string, round *model.Round) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *round
	copied.QuestionIDs = append([]int64(nil), round.QuestionIDs...)
	s.rounds[sessionID] = copied
	return nil
}

func (s *MemoryStore) GetQuestions(ctx context.Context, sessionID string) ([]model.Question, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]model.Question(nil), s.questions[sessionID]...), nil
}

func (s *MemoryStore) SetQuestions(ctx context.Context, sessionID string, questions []model.Question) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.questions[sessionID] = append([]model.Question(nil), questions...)
	return nil
}

func (s *MemoryStore) GetAnswers(ctx context.Context, sessionID string) (map[int64]model.AnswerRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[int64]model.AnswerRecord, len(s.answers[sessionID]))
	for k, v := range s.answers[sessionID] {
		out[k] = v
	}
	return out, nil
}

func (s *MemoryStore) SetAnswers(ctx context.Context, sessionID string, answers map[int64]model.AnswerRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := make(map[int64]model.AnswerRecord, len(answers))
	for k, v := range answers {
		copied[k] = v
	}
	s.answers[sessionID] = copied
	return nil
}

func (s *MemoryStore) GetScore(ctx context.Context, sessionID string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.scores[sessionID], nil
}

func (s *MemoryStore) SetScore(ctx context.Context, sessionID string, score int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.scores[sessionID] = score
	return nil
}

func (s *MemoryStore) GetTotal(ctx context.Context, sessionID string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.totals[sessionID], nil
}

func (s *MemoryStore) SetTotal(ctx context.Context, sessionID string, total int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.totals[sessionID] = total
	return nil
}

func (s *MemoryStore) GetNextCategory(ctx context.Context, sessionID string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.nextCats[sessionID], nil
}

func (s *MemoryStore) SetNextCategory(ctx context.Context, sessionID string, category string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextCats[sessionID] = category
	return nil
}
