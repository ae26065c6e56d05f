package service

import (
	"context"
	"errors"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"geoquiz/internal/cache"
	"geoquiz/internal/model"
)

type stubCatalog struct {
	countries []model.Country
	err       error
	onFetch   func()
}

func (s *stubCatalog) FetchAll(ctx context.Context) ([]model.Country, error) {
	if s.onFetch != nil {
		s.onFetch()
	}
	return s.countries, s.err
}

func (s *stubCatalog) FetchLight(ctx context.Context) ([]model.Country, error) {
	return s.FetchAll(ctx)
}

type roundFixture struct {
	svc     *RoundService
	store   *cache.MemoryStore
	catalog *stubCatalog
	modes   *ModeService
}

func newRoundFixture(countries []model.Country) *roundFixture {
	store := cache.NewMemoryStore()
	catalog := &stubCatalog{countries: countries}
	builder := NewQuestionService(rand.New(rand.NewSource(7)))
	modes := NewModeService(store)
	notifier := NewScoreNotifier()
	return &roundFixture{
		svc:     NewRoundService(store, catalog, builder, modes, notifier),
		store:   store,
		catalog: catalog,
		modes:   modes,
	}
}

// currentQuestion reads the authoritative question behind the view so
// tests can answer correctly or incorrectly on purpose.
func (f *roundFixture) currentQuestion(t *testing.T, sessionID string) model.Question {
	t.Helper()
	ctx := context.Background()
	round, err := f.store.GetRound(ctx, sessionID)
	require.NoError(t, err)
	require.NotNil(t, round)
	questions, err := f.store.GetQuestions(ctx, sessionID)
	require.NoError(t, err)
	return questions[round.Clamp(round.CurrentIndex)]
}

func (f *roundFixture) wrongOption(t *testing.T, sessionID string) string {
	t.Helper()
	q := f.currentQuestion(t, sessionID)
	for _, opt := range q.Options {
		if opt != q.Answer {
			return opt
		}
	}
	t.Fatal("question has no wrong option")
	return ""
}

func TestStart_ReadyRound(t *testing.T) {
	f := newRoundFixture(makeCountries(20))
	ctx := context.Background()

	view, err := f.svc.Start(ctx, "s1", model.CategoryCapital)
	require.NoError(t, err)

	assert.Equal(t, model.RoundReady, view.Status)
	assert.Equal(t, model.CategoryCapital, view.Category)
	assert.Equal(t, 10, view.QuestionCount)
	assert.Equal(t, 10, view.TargetCount)
	assert.Equal(t, 0, view.CurrentIndex)
	assert.Equal(t, 0, view.Score)
	require.NotNil(t, view.Question)
	assert.Len(t, view.Question.Options, model.OptionCount)
	assert.False(t, view.Question.Locked)

	total, err := f.store.GetTotal(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, 10, total)
}

func TestStart_DefaultsToRotationCategory(t *testing.T) {
	f := newRoundFixture(makeCountries(20))
	ctx := context.Background()

	require.NoError(t, f.modes.Commit(ctx, "s1", model.CategoryRegion))

	view, err := f.svc.Start(ctx, "s1", "")
	require.NoError(t, err)
	assert.Equal(t, model.CategoryRegion, view.Category)
}

func TestStart_ShortRoundOnSmallPool(t *testing.T) {
	f := newRoundFixture(makeCountries(5))

	view, err := f.svc.Start(context.Background(), "s1", model.CategoryCapital)
	require.NoError(t, err)
	assert.Equal(t, model.RoundReady, view.Status)
	assert.Equal(t, 5, view.QuestionCount)
	assert.Equal(t, 10, view.TargetCount)
}

func TestStart_FetchFailureIsTerminalErrorState(t *testing.T) {
	f := newRoundFixture(nil)
	f.catalog.err = errors.New("connection refused")
	ctx := context.Background()

	_, err := f.svc.Start(ctx, "s1", model.CategoryCapital)
	require.ErrorIs(t, err, ErrDataFetch)

	// No partial question list is exposed.
	round, err := f.store.GetRound(ctx, "s1")
	require.NoError(t, err)
	require.NotNil(t, round)
	assert.Equal(t, model.RoundError, round.Status)
	assert.Empty(t, round.QuestionIDs)
}

func TestStart_EmptyPoolIsErrorState(t *testing.T) {
	// A zero-question round surfaces as an error, not as a
	// playable-but-empty ready state.
	f := newRoundFixture(nil)
	ctx := context.Background()

	_, err := f.svc.Start(ctx, "s1", model.CategoryCapital)
	require.ErrorIs(t, err, ErrDataFetch)

	round, err := f.store.GetRound(ctx, "s1")
	require.NoError(t, err)
	require.NotNil(t, round)
	assert.Equal(t, model.RoundError, round.Status)
}

func TestStart_StaleFetchDoesNotClobberNewerRound(t *testing.T) {
	f := newRoundFixture(makeCountries(20))
	ctx := context.Background()

	var newRoundID string
	started := false
	f.catalog.onFetch = func() {
		if started {
			return
		}
		started = true
		// A second Start lands while the first fetch is in flight.
		_, err := f.svc.Start(ctx, "s1", model.CategoryRegion)
		require.NoError(t, err)
		round, err := f.store.GetRound(ctx, "s1")
		require.NoError(t, err)
		newRoundID = round.ID
	}

	_, err := f.svc.Start(ctx, "s1", model.CategoryCapital)
	require.ErrorIs(t, err, ErrRoundSuperseded)

	round, err := f.store.GetRound(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, newRoundID, round.ID)
	assert.Equal(t, model.CategoryRegion, round.Category)
	assert.Equal(t, model.RoundReady, round.Status)
}

func TestNavigate_ClampsAndResetsSelection(t *testing.T) {
	f := newRoundFixture(makeCountries(20))
	ctx := context.Background()

	_, err := f.svc.Start(ctx, "s1", model.CategoryCapital)
	require.NoError(t, err)

	view, err := f.svc.Navigate(ctx, "s1", 99)
	require.NoError(t, err)
	assert.Equal(t, 9, view.CurrentIndex)

	view, err = f.svc.Navigate(ctx, "s1", -5)
	require.NoError(t, err)
	assert.Equal(t, 0, view.CurrentIndex)

	// Answer question 0, move away and back: the destination shows only
	// its recorded state, no stale transient highlight.
	q := f.currentQuestion(t, "s1")
	_, err = f.svc.SubmitAnswer(ctx, "s1", q.Answer)
	require.NoError(t, err)

	_, err = f.svc.Next(ctx, "s1")
	require.NoError(t, err)

	round, err := f.store.GetRound(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, 1, round.CurrentIndex)
	assert.Empty(t, round.Selection)

	view, err = f.svc.Prev(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, 0, view.CurrentIndex)
	require.NotNil(t, view.Question)
	assert.True(t, view.Question.Locked)
}

func TestNavigate_WithoutRound(t *testing.T) {
	f := newRoundFixture(makeCountries(20))
	_, err := f.svc.Navigate(context.Background(), "s1", 0)
	assert.ErrorIs(t, err, ErrNoRound)
}

func TestSubmitAnswer_ScoresAndLocks(t *testing.T) {
	f := newRoundFixture(makeCountries(20))
	ctx := context.Background()

	_, err := f.svc.Start(ctx, "s1", model.CategoryCapital)
	require.NoError(t, err)

	q := f.currentQuestion(t, "s1")
	view, err := f.svc.SubmitAnswer(ctx, "s1", q.Answer)
	require.NoError(t, err)

	assert.Equal(t, 1, view.Score)
	assert.Equal(t, 1, view.AnsweredCount)
	require.NotNil(t, view.Question)
	assert.True(t, view.Question.Locked)

	// The correct option is revealed and marked as the player's pick.
	for _, opt := range view.Question.Options {
		if opt.Label == q.Answer {
			assert.Equal(t, model.OptionCorrectSelected, opt.State)
		} else {
			assert.Equal(t, model.OptionIdle, opt.State)
		}
	}

	score, err := f.store.GetScore(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, 1, score)
}

func TestSubmitAnswer_WrongPickRevealsCorrect(t *testing.T) {
	f := newRoundFixture(makeCountries(20))
	ctx := context.Background()

	_, err := f.svc.Start(ctx, "s1", model.CategoryCapital)
	require.NoError(t, err)

	q := f.currentQuestion(t, "s1")
	wrong := f.wrongOption(t, "s1")

	view, err := f.svc.SubmitAnswer(ctx, "s1", wrong)
	require.NoError(t, err)
	assert.Equal(t, 0, view.Score)

	for _, opt := range view.Question.Options {
		switch opt.Label {
		case q.Answer:
			assert.Equal(t, model.OptionCorrect, opt.State)
		case wrong:
			assert.Equal(t, model.OptionWrongSelected, opt.State)
		default:
			assert.Equal(t, model.OptionIdle, opt.State)
		}
	}
}

func TestSubmitAnswer_FirstAnswerIsFinal(t *testing.T) {
	f := newRoundFixture(makeCountries(20))
	ctx := context.Background()

	_, err := f.svc.Start(ctx, "s1", model.CategoryCapital)
	require.NoError(t, err)

	// Jump to question 3, answer correctly, then try to re-pick.
	_, err = f.svc.Navigate(ctx, "s1", 2)
	require.NoError(t, err)

	q := f.currentQuestion(t, "s1")
	view, err := f.svc.SubmitAnswer(ctx, "s1", q.Answer)
	require.NoError(t, err)
	assert.Equal(t, 1, view.Score)

	wrong := f.wrongOption(t, "s1")
	view, err = f.svc.SubmitAnswer(ctx, "s1", wrong)
	require.NoError(t, err)

	// Second selection is ignored: record and score stand.
	assert.Equal(t, 1, view.Score)
	answers, err := f.store.GetAnswers(ctx, "s1")
	require.NoError(t, err)
	rec := answers[q.ID]
	assert.Equal(t, q.Answer, rec.Choice)
	assert.True(t, rec.Correct)
}

func TestSubmitAnswer_CompletesRoundAndRotatesMode(t *testing.T) {
	f := newRoundFixture(makeCountries(20))
	ctx := context.Background()

	_, err := f.svc.Start(ctx, "s1", model.CategoryCapital)
	require.NoError(t, err)

	var view *RoundView
	for i := 0; i < 10; i++ {
		_, err = f.svc.Navigate(ctx, "s1", i)
		require.NoError(t, err)
		q := f.currentQuestion(t, "s1")
		view, err = f.svc.SubmitAnswer(ctx, "s1", q.Answer)
		require.NoError(t, err)
	}

	// Completion is edge-triggered on the final submission.
	assert.Equal(t, model.RoundComplete, view.Status)
	assert.Equal(t, 10, view.Score)
	assert.Equal(t, 10, view.AnsweredCount)

	next, err := f.modes.Current(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, model.CategoryRegion, next)
}

func TestSubmitAnswer_ShortRoundCompletesAtActualCount(t *testing.T) {
	f := newRoundFixture(makeCountries(5))
	ctx := context.Background()

	_, err := f.svc.Start(ctx, "s1", model.CategoryCapital)
	require.NoError(t, err)

	var view *RoundView
	for i := 0; i < 5; i++ {
		_, err = f.svc.Navigate(ctx, "s1", i)
		require.NoError(t, err)
		view, err = f.svc.SubmitAnswer(ctx, "s1", f.wrongOption(t, "s1"))
		require.NoError(t, err)
	}

	assert.Equal(t, model.RoundComplete, view.Status)
	assert.Equal(t, 0, view.Score)
}

func TestScore_IgnoresRecordsFromOtherCategories(t *testing.T) {
	f := newRoundFixture(makeCountries(20))
	ctx := context.Background()

	_, err := f.svc.Start(ctx, "s1", model.CategoryCapital)
	require.NoError(t, err)

	q := f.currentQuestion(t, "s1")
	_, err = f.svc.SubmitAnswer(ctx, "s1", q.Answer)
	require.NoError(t, err)

	// A stale record under another category sneaks into the persisted
	// map; the score must not count it.
	answers, err := f.store.GetAnswers(ctx, "s1")
	require.NoError(t, err)
	round, err := f.store.GetRound(ctx, "s1")
	require.NoError(t, err)
	answers[round.QuestionIDs[1]] = model.AnswerRecord{
		Choice: "whatever", Correct: true, Category: model.CategoryFlag,
	}
	require.NoError(t, f.store.SetAnswers(ctx, "s1", answers))

	score, err := f.svc.Score(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, 1, score.Score)
	assert.Equal(t, 10, score.Total)
	assert.Equal(t, model.CategoryCapital, score.Category)
}

func TestScore_WithoutRoundDegradesToDefaults(t *testing.T) {
	f := newRoundFixture(makeCountries(20))

	score, err := f.svc.Score(context.Background(), "s1")
	require.NoError(t, err)
	assert.Equal(t, 0, score.Score)
	assert.Equal(t, DefaultTarget, score.Total)
}

func TestStart_ReplacesPreviousRoundState(t *testing.T) {
	f := newRoundFixture(makeCountries(20))
	ctx := context.Background()

	_, err := f.svc.Start(ctx, "s1", model.CategoryCapital)
	require.NoError(t, err)
	q := f.currentQuestion(t, "s1")
	_, err = f.svc.SubmitAnswer(ctx, "s1", q.Answer)
	require.NoError(t, err)

	view, err := f.svc.Start(ctx, "s1", model.CategoryLanguage)
	require.NoError(t, err)

	assert.Equal(t, 0, view.Score)
	assert.Equal(t, 0, view.AnsweredCount)
	answers, err := f.store.GetAnswers(ctx, "s1")
	require.NoError(t, err)
	assert.Empty(t, answers)
}

func TestNotifier_FiresOnStartAndAnswer(t *testing.T) {
	store := cache.NewMemoryStore()
	catalog := &stubCatalog{countries: makeCountries(20)}
	builder := NewQuestionService(rand.New(rand.NewSource(7)))
	modes := NewModeService(store)
	notifier := NewScoreNotifier()
	svc := NewRoundService(store, catalog, builder, modes, notifier)

	var events []string
	notifier.Subscribe(func(sid string) { events = append(events, sid) })

	ctx := context.Background()
	_, err := svc.Start(ctx, "s1", model.CategoryCapital)
	require.NoError(t, err)
	require.Equal(t, []string{"s1"}, events)

	round, err := store.GetRound(ctx, "s1")
	require.NoError(t, err)
	questions, err := store.GetQuestions(ctx, "s1")
	require.NoError(t, err)
	_, err = svc.SubmitAnswer(ctx, "s1", questions[round.CurrentIndex].Answer)
	require.NoError(t, err)
	assert.Equal(t, []string{"s1", "s1"}, events)
}
