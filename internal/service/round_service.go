package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"geoquiz/internal/cache"
	"geoquiz/internal/model"
)

var (
	// ErrNoRound means the session has no round to operate on.
	ErrNoRound = errors.New("no active round")
	// ErrDataFetch means the catalog fetch or question build failed; the
	// round is left in the error state and the player must retry.
	ErrDataFetch = errors.New("failed to load round data")
	// ErrRoundSuperseded means a newer Start won the race; the late result
	// was discarded and the newer round's state is untouched.
	ErrRoundSuperseded = errors.New("round superseded by a newer one")
)

// DefaultTarget is the nominal number of questions per round.
const DefaultTarget = 10

// Catalog supplies normalized country data.
type Catalog interface {
	FetchAll(ctx context.Context) ([]model.Country, error)
	FetchLight(ctx context.Context) ([]model.Country, error)
}

// RoundService owns the round state machine: it seeds a round from the
// question generator, mediates navigation and answer submission, derives
// the score, and persists everything through the session store. No error
// escapes it without the persisted round resolving to a defined state.
type RoundService struct {
	store    cache.SessionStore
	catalog  Catalog
	builder  *QuestionService
	modes    *ModeService
	notifier *ScoreNotifier
	target   int
}

// NewRoundService creates a new round service.
func NewRoundService(store cache.SessionStore, catalog Catalog, builder *QuestionService, modes *ModeService, notifier *ScoreNotifier) *RoundService {
	return &RoundService{
		store:    store,
		catalog:  catalog,
		builder:  builder,
		modes:    modes,
		notifier: notifier,
		target:   DefaultTarget,
	}
}

// OptionView pairs an option with its derived display state.
type OptionView struct {
	Label string            `json:"label"`
	State model.OptionState `json:"state"`
}

// QuestionView is the current question as shown to the player; the answer
// itself is withheld until derived into option states.
type QuestionView struct {
	ID      int64        `json:"id"`
	Prompt  string       `json:"prompt"`
	FlagURL string       `json:"flagUrl,omitempty"`
	Options []OptionView `json:"options"`
	Locked  bool         `json:"locked"`
	Number  int          `json:"number"`
	Total   int          `json:"total"`
}

// RoundView is the snapshot the presentation surface consumes.
type RoundView struct {
	Status        model.RoundStatus `json:"status"`
	Category      model.Category    `json:"category"`
	CurrentIndex  int               `json:"currentIndex"`
	QuestionCount int               `json:"questionCount"`
	TargetCount   int               `json:"targetCount"`
	AnsweredCount int               `json:"answeredCount"`
	Score         int               `json:"score"`
	Question      *QuestionView     `json:"question,omitempty"`
}

// ScoreView is the derived round score.
type ScoreView struct {
	Score        int            `json:"score"`
	Total        int            `json:"total"`
	Category     model.Category `json:"category"`
	NextCategory model.Category `json:"nextCategory"`
}

// Start begins a new round for the session. category "" plays the mode
// rotation's current category. The previous round and its answers are
// replaced wholesale. A fetch or build failure leaves the round in the
// error state; there is no automatic retry.
func (s *RoundService) Start(ctx context.Context, sessionID string, category model.Category) (*RoundView, error) {
	if category == "" {
		current, err := s.modes.Current(ctx, sessionID)
		if err != nil {
			return nil, err
		}
		category = current
	}

	// The round ID is the generation marker for the stale-fetch guard: a
	// late-arriving fetch must never overwrite a newer round's state.
	round := &model.Round{
		ID:          uuid.New().String(),
		Category:    category,
		TargetCount: s.target,
		Status:      model.RoundLoading,
	}
	if err := s.store.SetRound(ctx, sessionID, round); err != nil {
		return nil, err
	}

	countries, err := s.fetchFor(ctx, category)
	if err != nil {
		return s.failLoad(ctx, sessionID, round, fmt.Errorf("%w: %v", ErrDataFetch, err))
	}

	questions := s.builder.Build(countries, category, s.target)
	if len(questions) == 0 {
		// Degenerate round: nothing to play. Surfaced like a fetch
		// failure so the player gets an explicit retry.
		return s.failLoad(ctx, sessionID, round, fmt.Errorf("%w: no playable questions for %s", ErrDataFetch, category))
	}

	if stale, err := s.superseded(ctx, sessionID, round.ID); err != nil {
		return nil, err
	} else if stale {
		return nil, ErrRoundSuperseded
	}

	round.Status = model.RoundReady
	round.QuestionIDs = make([]int64, len(questions))
	for i, q := range questions {
		round.QuestionIDs[i] = q.ID
	}

	if err := s.store.SetQuestions(ctx, sessionID, questions); err != nil {
		return nil, err
	}
	if err := s.store.SetAnswers(ctx, sessionID, map[int64]model.AnswerRecord{}); err != nil {
		return nil, err
	}
	if err := s.store.SetScore(ctx, sessionID, 0); err != nil {
		return nil, err
	}
	if err := s.store.SetTotal(ctx, sessionID, len(questions)); err != nil {
		return nil, err
	}
	if err := s.store.SetRound(ctx, sessionID, round); err != nil {
		return nil, err
	}

	s.notifier.Notify(sessionID)
	return s.view(round, questions, map[int64]model.AnswerRecord{}), nil
}

// Navigate moves to question index, clamped into range. Any uncommitted
// selection is reset so the destination question shows only its own
// recorded state.
func (s *RoundService) Navigate(ctx context.Context, sessionID string, index int) (*RoundView, error) {
	round, questions, answers, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if round.Status != model.RoundReady && round.Status != model.RoundComplete {
		return nil, ErrNoRound
	}

	round.CurrentIndex = round.Clamp(index)
	round.Selection = ""
	if err := s.store.SetRound(ctx, sessionID, round); err != nil {
		return nil, err
	}
	return s.view(round, questions, answers), nil
}

// Next and Prev step relative to the current question.
func (s *RoundService) Next(ctx context.Context, sessionID string) (*RoundView, error) {
	round, err := s.store.GetRound(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if round == nil {
		return nil, ErrNoRound
	}
	return s.Navigate(ctx, sessionID, round.CurrentIndex+1)
}

func (s *RoundService) Prev(ctx context.Context, sessionID string) (*RoundView, error) {
	round, err := s.store.GetRound(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if round == nil {
		return nil, ErrNoRound
	}
	return s.Navigate(ctx, sessionID, round.CurrentIndex-1)
}

// SubmitAnswer records option for the current question. The first answer
// per question is final: a submission against an already-answered question
// is ignored, not an error, and leaves the record and score untouched.
// Completion is checked edge-triggered right here, never polled.
func (s *RoundService) SubmitAnswer(ctx context.Context, sessionID, option string) (*RoundView, error) {
	round, questions, answers, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if round.Status != model.RoundReady {
		return nil, ErrNoRound
	}

	q := questions[round.Clamp(round.CurrentIndex)]
	if _, locked := answers[q.ID]; locked {
		return s.view(round, questions, answers), nil
	}

	answers[q.ID] = model.AnswerRecord{
		Choice:   option,
		Correct:  option == q.Answer,
		Category: round.Category,
	}
	round.Selection = option

	if err := s.store.SetAnswers(ctx, sessionID, answers); err != nil {
		return nil, err
	}

	score := model.RoundScore(round, answers)
	if err := s.store.SetScore(ctx, sessionID, score); err != nil {
		return nil, err
	}
	if err := s.store.SetTotal(ctx, sessionID, len(round.QuestionIDs)); err != nil {
		return nil, err
	}

	if model.AnsweredCount(round, answers) >= len(round.QuestionIDs) {
		round.Status = model.RoundComplete
		if err := s.modes.Commit(ctx, sessionID, s.modes.Next(round.Category)); err != nil {
			return nil, err
		}
	}
	if err := s.store.SetRound(ctx, sessionID, round); err != nil {
		return nil, err
	}

	s.notifier.Notify(sessionID)
	return s.view(round, questions, answers), nil
}

// State returns the current snapshot without mutating anything.
func (s *RoundService) State(ctx context.Context, sessionID string) (*RoundView, error) {
	round, questions, answers, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return s.view(round, questions, answers), nil
}

// Score derives the session's round score. Missing or corrupt persisted
// state degrades to zeroes instead of failing.
func (s *RoundService) Score(ctx context.Context, sessionID string) (*ScoreView, error) {
	round, err := s.store.GetRound(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	category, err := s.modes.Current(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if round == nil {
		return &ScoreView{Total: s.target, Category: model.RotationOrder[0], NextCategory: category}, nil
	}

	answers, err := s.store.GetAnswers(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	total := len(round.QuestionIDs)
	if total == 0 {
		total = s.target
	}
	return &ScoreView{
		Score:        model.RoundScore(round, answers),
		Total:        total,
		Category:     round.Category,
		NextCategory: category,
	}, nil
}

// failLoad marks the round as errored unless a newer round already took
// over, in which case the failure belongs to a dead generation and is
// dropped.
func (s *RoundService) failLoad(ctx context.Context, sessionID string, round *model.Round, cause error) (*RoundView, error) {
	stale, err := s.superseded(ctx, sessionID, round.ID)
	if err != nil {
		return nil, err
	}
	if stale {
		return nil, ErrRoundSuperseded
	}
	round.Status = model.RoundError
	if err := s.store.SetRound(ctx, sessionID, round); err != nil {
		return nil, err
	}
	return nil, cause
}

func (s *RoundService) superseded(ctx context.Context, sessionID, roundID string) (bool, error) {
	stored, err := s.store.GetRound(ctx, sessionID)
	if err != nil {
		return false, err
	}
	return stored == nil || stored.ID != roundID, nil
}

func (s *RoundService) fetchFor(ctx context.Context, category model.Category) ([]model.Country, error) {
	if category == model.CategoryFlag {
		return s.catalog.FetchLight(ctx)
	}
	return s.catalog.FetchAll(ctx)
}

func (s *RoundService) load(ctx context.Context, sessionID string) (*model.Round, []model.Question, map[int64]model.AnswerRecord, error) {
	round, err := s.store.GetRound(ctx, sessionID)
	if err != nil {
		return nil, nil, nil, err
	}
	if round == nil {
		return nil, nil, nil, ErrNoRound
	}
	questions, err := s.store.GetQuestions(ctx, sessionID)
	if err != nil {
		return nil, nil, nil, err
	}
	answers, err := s.store.GetAnswers(ctx, sessionID)
	if err != nil {
		return nil, nil, nil, err
	}
	return round, questions, answers, nil
}

func (s *RoundService) view(round *model.Round, questions []model.Question, answers map[int64]model.AnswerRecord) *RoundView {
	view := &RoundView{
		Status:        round.Status,
		Category:      round.Category,
		CurrentIndex:  round.CurrentIndex,
		QuestionCount: len(round.QuestionIDs),
		TargetCount:   round.TargetCount,
		AnsweredCount: model.AnsweredCount(round, answers),
		Score:         model.RoundScore(round, answers),
	}
	if len(questions) == 0 || round.Status == model.RoundLoading || round.Status == model.RoundError {
		return view
	}

	idx := round.Clamp(round.CurrentIndex)
	q := questions[idx]

	var rec *model.AnswerRecord
	if a, ok := answers[q.ID]; ok && a.Category == round.Category {
		rec = &a
	}

	options := make([]OptionView, len(q.Options))
	for i, opt := range q.Options {
		options[i] = OptionView{
			Label: opt,
			State: model.StateForOption(&q, rec, round.Selection, opt),
		}
	}

	view.Question = &QuestionView{
		ID:      q.ID,
		Prompt:  q.Prompt,
		FlagURL: q.FlagURL,
		Options: options,
		Locked:  rec != nil,
		Number:  idx + 1,
		Total:   len(questions),
	}
	return view
}
