package app_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quiz-engine/internal/app"
	"quiz-engine/internal/domain"
	"quiz-engine/internal/grading"
	"quiz-engine/internal/infra/memory"
)

func newSession(t *testing.T, cfg domain.QuizConfig, opts app.SessionOptions) *app.Session {
	t.Helper()
	if opts.NewTicker == nil {
		opts.NewTicker = newTickers().New
	}
	s, err := app.NewSession(cfg, opts)
	require.NoError(t, err)
	t.Cleanup(s.Close)
	return s
}

func TestNewSession(t *testing.T) {
	s := newSession(t, twoQuestionQuiz(), app.SessionOptions{UserID: "u1"})

	state := s.State()
	assert.Equal(t, domain.StatusNotStarted, state.Status)
	assert.Equal(t, 0, state.CurrentQuestionIndex)
	assert.Equal(t, 1, state.AttemptNumber)
	assert.Equal(t, 15.0, state.MaxScore)
	assert.Empty(t, state.Answers)
	assert.Nil(t, state.Score)
	assert.NotEmpty(t, s.ID())
	assert.Equal(t, "u1", s.UserID())

	_, err := app.NewSession(domain.QuizConfig{ID: "empty"}, app.SessionOptions{})
	require.ErrorIs(t, err, domain.ErrInvalidConfig)
}

func TestSessionLinearNavigation(t *testing.T) {
	s := newSession(t, twoQuestionQuiz(), app.SessionOptions{})

	assert.False(t, s.CanGoNext(), "linear quiz must wait for an answer")
	assert.False(t, s.Next())
	assert.False(t, s.CanGoPrevious())

	require.NoError(t, s.SetAnswer("q1", domain.Choice("")))
	assert.False(t, s.CanGoNext(), "an empty answer does not unlock the next question")

	require.NoError(t, s.SetAnswer("q1", domain.Choice("A")))
	assert.True(t, s.CanGoNext())
	assert.True(t, s.Next())
	assert.Equal(t, 1, s.State().CurrentQuestionIndex)

	assert.False(t, s.CanGoNext(), "last question")
	assert.False(t, s.CanGoPrevious(), "navigation not allowed")
	assert.False(t, s.Previous())
}

func TestSessionFreeNavigation(t *testing.T) {
	cfg := twoQuestionQuiz()
	cfg.AllowNavigation = true
	s := newSession(t, cfg, app.SessionOptions{})

	assert.True(t, s.CanGoNext())
	assert.True(t, s.Next())
	assert.Equal(t, domain.StatusInProgress, s.Status(), "navigation starts the attempt")
	assert.True(t, s.CanGoPrevious())
	assert.True(t, s.Previous())

	assert.False(t, s.GoTo(5))
	assert.False(t, s.GoTo(-1))
	assert.Equal(t, 0, s.State().CurrentQuestionIndex)
	assert.True(t, s.GoTo(1))

	q, i := s.CurrentQuestion()
	assert.Equal(t, "q2", q.Base().ID)
	assert.Equal(t, 1, i)
}

func TestSessionSkipAllowsForwardOnly(t *testing.T) {
	cfg := twoQuestionQuiz()
	cfg.AllowSkip = true
	s := newSession(t, cfg, app.SessionOptions{})

	assert.True(t, s.Next())
	assert.False(t, s.CanGoPrevious())
}

func TestSessionAnswers(t *testing.T) {
	clock := newFakeClock()
	s := newSession(t, twoQuestionQuiz(), app.SessionOptions{Now: clock.Now})

	require.NoError(t, s.SetAnswer("q1", domain.Choice("A")))
	assert.Equal(t, domain.StatusInProgress, s.Status(), "first answer starts the attempt")

	clock.Advance(7 * time.Second)
	require.NoError(t, s.SetAnswer("q1", domain.Choice("B")))
	a, ok := s.Answer("q1")
	require.True(t, ok)
	assert.Equal(t, domain.Choice("B"), a.Value, "answers are replaced, not merged")
	assert.True(t, a.IsAnswered)
	assert.Equal(t, 7, a.TimeSpent)
	assert.Equal(t, clock.Now(), a.UpdatedAt)

	require.ErrorIs(t, s.SetAnswer("nope", domain.Bool(true)), domain.ErrQuestionNotFound)
	require.ErrorIs(t, s.SetAnswer("q2", domain.Text("true")), domain.ErrAnswerTypeMismatch)

	require.NoError(t, s.SubmitQuestion("q1"))
	require.NoError(t, s.ClearAnswer("q1"))
	_, ok = s.Answer("q1")
	assert.False(t, ok)
	_, ok = s.Submission("q1")
	assert.True(t, ok, "clearing one answer keeps its submission")

	require.NoError(t, s.SetAnswer("q1", domain.Choice("B")))
	require.NoError(t, s.ClearAllAnswers())
	state := s.State()
	assert.Empty(t, state.Answers)
	assert.Empty(t, state.Submissions)
}

func TestSessionSubmitQuestion(t *testing.T) {
	cfg := twoQuestionQuiz()
	q1 := cfg.Questions[0].(domain.MultipleChoice)
	q1.MaxAttempts = 1
	cfg.Questions[0] = q1
	clock := newFakeClock()
	s := newSession(t, cfg, app.SessionOptions{Now: clock.Now})

	require.ErrorIs(t, s.SubmitQuestion("q1"), domain.ErrNoAnswer)

	require.NoError(t, s.SetAnswer("q1", domain.Choice("B")))
	require.NoError(t, s.SubmitQuestion("q1"))

	sub, ok := s.Submission("q1")
	require.True(t, ok)
	assert.Equal(t, domain.SubmissionSubmitted, sub.Status)
	assert.Equal(t, 10.0, sub.MaxScore)
	assert.Zero(t, sub.Score, "question submission does not grade")
	assert.Equal(t, clock.Now(), sub.SubmittedAt)

	require.ErrorIs(t, s.SubmitQuestion("q1"), domain.ErrMaxAttemptsReached)
}

func TestSessionSubmitQuizAllCorrect(t *testing.T) {
	s := newSession(t, twoQuestionQuiz(), app.SessionOptions{UserID: "u1"})

	require.NoError(t, s.SetAnswer("q1", domain.Choice("B")))
	require.NoError(t, s.SetAnswer("q2", domain.Bool(true)))
	require.True(t, s.CanSubmitQuiz())

	result, err := s.SubmitQuiz(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 15.0, result.Score)
	assert.Equal(t, 15.0, result.MaxScore)
	assert.Equal(t, 100.0, result.Percentage)
	assert.True(t, result.IsPassed)
	assert.Equal(t, "u1", result.UserID)
	assert.False(t, result.Partial())
	require.Len(t, result.Submissions, 2)

	sum := 0.0
	for _, sub := range result.Submissions {
		sum += sub.Score
		assert.Equal(t, domain.SubmissionGraded, sub.Status)
		require.Len(t, sub.Feedback, 1)
		assert.Equal(t, domain.FeedbackCorrect, sub.Feedback[0].Kind)
	}
	assert.Equal(t, result.Score, sum)

	state := s.State()
	assert.Equal(t, domain.StatusGraded, state.Status)
	require.NotNil(t, state.Score)
	assert.Equal(t, 15.0, *state.Score)
	assert.NotNil(t, state.SubmittedAt)
	assert.False(t, s.CanSubmitQuiz())

	got, ok := s.Result()
	require.True(t, ok)
	assert.Equal(t, result, got)
}

func TestSessionSubmitQuizUnanswered(t *testing.T) {
	cfg := twoQuestionQuiz()
	cfg.RequireAllAnswered = true
	s := newSession(t, cfg, app.SessionOptions{})

	assert.False(t, s.CanSubmitQuiz())

	result, err := s.SubmitQuiz(context.Background())
	require.NoError(t, err, "CanSubmitQuiz is advisory")

	assert.Zero(t, result.Score)
	assert.False(t, result.IsPassed)
	require.Len(t, result.Submissions, 2)
	for _, sub := range result.Submissions {
		assert.Equal(t, domain.SubmissionNotAnswered, sub.Status)
		require.Len(t, sub.Feedback, 1)
		assert.Equal(t, grading.FeedbackNoAnswer, sub.Feedback[0].Message)
		assert.Equal(t, domain.FeedbackIncorrect, sub.Feedback[0].Kind)
	}
}

func TestSessionCanSubmitQuiz(t *testing.T) {
	s := newSession(t, twoQuestionQuiz(), app.SessionOptions{})
	assert.False(t, s.CanSubmitQuiz(), "nothing answered")

	require.NoError(t, s.SetAnswer("q2", domain.Bool(false)))
	assert.True(t, s.CanSubmitQuiz(), "one answer is enough without requireAllAnswered")
}

func TestSessionSubmitQuizUsesSubmittedSnapshot(t *testing.T) {
	s := newSession(t, twoQuestionQuiz(), app.SessionOptions{})

	require.NoError(t, s.SetAnswer("q1", domain.Choice("B")))
	require.NoError(t, s.SubmitQuestion("q1"))
	require.NoError(t, s.SetAnswer("q1", domain.Choice("A")))

	result, err := s.SubmitQuiz(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 10.0, result.Score)
}

func TestSessionIsClosedAfterSubmit(t *testing.T) {
	s := newSession(t, twoQuestionQuiz(), app.SessionOptions{})
	require.NoError(t, s.SetAnswer("q1", domain.Choice("B")))
	_, err := s.SubmitQuiz(context.Background())
	require.NoError(t, err)

	require.ErrorIs(t, s.SetAnswer("q1", domain.Choice("A")), domain.ErrQuizClosed)
	require.ErrorIs(t, s.ClearAnswer("q1"), domain.ErrQuizClosed)
	require.ErrorIs(t, s.ClearAllAnswers(), domain.ErrQuizClosed)
	require.ErrorIs(t, s.SubmitQuestion("q1"), domain.ErrQuizClosed)
	_, err = s.SubmitQuiz(context.Background())
	require.ErrorIs(t, err, domain.ErrQuizClosed)
}

func TestSessionManualGrading(t *testing.T) {
	cfg := twoQuestionQuiz()
	cfg.ManualGrading = true
	cfg.Questions = append(cfg.Questions, domain.Essay{
		QuestionBase: domain.QuestionBase{ID: "q3", Prompt: "Explain", Points: 5},
	})
	s := newSession(t, cfg, app.SessionOptions{})

	_, err := s.Grade(context.Background(), nil)
	require.ErrorIs(t, err, domain.ErrNotSubmitted)

	require.NoError(t, s.SetAnswer("q1", domain.Choice("B")))
	require.NoError(t, s.SetAnswer("q3", domain.Text("Because.")))

	submitted, err := s.SubmitQuiz(context.Background())
	require.NoError(t, err)
	assert.Equal(t, domain.StatusSubmitted, s.Status())
	assert.Zero(t, submitted.Score)
	assert.False(t, submitted.Partial())

	_, err = s.Grade(context.Background(), map[string]float64{"q9": 1})
	require.ErrorIs(t, err, domain.ErrQuestionNotFound)

	graded, err := s.Grade(context.Background(), map[string]float64{"q3": 9})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusGraded, s.Status())
	assert.Equal(t, 15.0, graded.Score, "manual score is clamped to the question's points")
	assert.Equal(t, 20.0, graded.MaxScore)
	assert.Equal(t, 75.0, graded.Percentage)

	essay, ok := s.Submission("q3")
	require.True(t, ok)
	assert.False(t, essay.NeedsManualGrading)
	assert.Equal(t, domain.FeedbackCorrect, essay.Feedback[0].Kind)
}

func TestSessionAutomaticEssayNeedsManualGrading(t *testing.T) {
	cfg := twoQuestionQuiz()
	cfg.Questions = append(cfg.Questions, domain.Essay{QuestionBase: domain.QuestionBase{ID: "q3", Points: 5}})
	s := newSession(t, cfg, app.SessionOptions{})

	require.NoError(t, s.SetAnswer("q3", domain.Text("An essay")))
	result, err := s.SubmitQuiz(context.Background())
	require.NoError(t, err)

	essay, ok := s.Submission("q3")
	require.True(t, ok)
	assert.True(t, essay.NeedsManualGrading)
	assert.Equal(t, grading.FeedbackManual, essay.Feedback[0].Message)
	assert.Zero(t, result.Score)
}

func TestSessionReviewMode(t *testing.T) {
	cfg := twoQuestionQuiz()
	s := newSession(t, cfg, app.SessionOptions{})
	assert.False(t, s.EnterReviewMode(), "review not allowed")

	cfg.AllowReview = true
	cfg.AllowNavigation = true
	s = newSession(t, cfg, app.SessionOptions{})
	require.NoError(t, s.SetAnswer("q1", domain.Choice("B")))
	assert.True(t, s.Next())

	assert.True(t, s.EnterReviewMode())
	assert.True(t, s.InReviewMode())
	assert.Equal(t, domain.StatusInProgress, s.Status(), "review mode is independent of status")

	assert.True(t, s.EditFromReview(0))
	assert.False(t, s.InReviewMode())
	assert.Equal(t, 0, s.State().CurrentQuestionIndex)
}

func TestSessionFromStoredResult(t *testing.T) {
	stored := &domain.LoadedResult{QuizResult: domain.QuizResult{
		QuizID:        "quiz-1",
		Answers:       []domain.QuestionAnswer{domain.NewAnswer("q1", domain.Choice("B"), 3, 4, time.Time{})},
		Score:         10,
		MaxScore:      15,
		AttemptNumber: 3,
		SubmittedAt:   time.Date(2024, 11, 20, 0, 0, 0, 0, time.UTC),
	}}

	s := newSession(t, twoQuestionQuiz(), app.SessionOptions{Review: stored})

	state := s.State()
	assert.Equal(t, domain.StatusGraded, state.Status)
	assert.Equal(t, 3, state.AttemptNumber)
	require.NotNil(t, state.Score)
	assert.Equal(t, 10.0, *state.Score)
	assert.Contains(t, state.Answers, "q1")
	assert.Empty(t, state.Submissions)
	assert.ErrorIs(t, s.SetAnswer("q2", domain.Bool(true)), domain.ErrQuizClosed)
}

func TestSessionChangeNotifications(t *testing.T) {
	s := newSession(t, twoQuestionQuiz(), app.SessionOptions{})

	var seen []domain.QuizState
	unregister := s.OnChange(func(st domain.QuizState) {
		seen = append(seen, st)
	})

	require.NoError(t, s.SetAnswer("q1", domain.Choice("B")))
	require.Len(t, seen, 1, "listener runs before SetAnswer returns")
	assert.Equal(t, domain.Choice("B"), seen[0].Answers["q1"].Value)

	require.NoError(t, s.ClearAnswer("missing"))
	assert.Len(t, seen, 1, "no-op changes are not announced")

	unregister()
	require.NoError(t, s.SetAnswer("q2", domain.Bool(true)))
	assert.Len(t, seen, 1)
}

func TestSessionSubscribe(t *testing.T) {
	s := newSession(t, twoQuestionQuiz(), app.SessionOptions{})

	ch, cancel := s.Subscribe()
	defer cancel()

	initial := <-ch
	assert.Equal(t, domain.StatusNotStarted, initial.Status)

	require.NoError(t, s.SetAnswer("q1", domain.Choice("B")))
	update := <-ch
	assert.Equal(t, domain.StatusInProgress, update.Status)

	// A slow reader only keeps the most recent snapshots.
	for i := 0; i < 20; i++ {
		require.NoError(t, s.SetAnswer("q2", domain.Bool(i%2 == 0)))
	}
	var last domain.QuizState
	for len(ch) > 0 {
		last = <-ch
	}
	assert.Equal(t, domain.Bool(false), last.Answers["q2"].Value)

	s.Close()
	_, open := <-ch
	assert.False(t, open, "closing the session closes subscriptions")
}

func TestSessionPersistence(t *testing.T) {
	ctx := context.Background()

	t.Run("submit saves the result", func(t *testing.T) {
		store := memory.NewResultStore()
		s := newSession(t, twoQuestionQuiz(), app.SessionOptions{UserID: "u1", Store: store})
		require.NoError(t, s.SetAnswer("q1", domain.Choice("B")))

		result, err := s.SubmitQuiz(ctx)
		require.NoError(t, err)

		loaded, err := store.LoadResult(ctx, domain.ResultQuery{QuizID: "quiz-1", UserID: "u1"})
		require.NoError(t, err)
		require.NotNil(t, loaded)
		assert.Equal(t, result, loaded.QuizResult)
		assert.NoError(t, s.LastError())
	})

	t.Run("save failure is reported and the result kept", func(t *testing.T) {
		s := newSession(t, twoQuestionQuiz(), app.SessionOptions{Store: failingStore{}})
		require.NoError(t, s.SetAnswer("q1", domain.Choice("B")))

		result, err := s.SubmitQuiz(ctx)
		require.ErrorIs(t, err, domain.ErrPersistence)
		require.ErrorIs(t, err, errStoreDown)
		assert.Equal(t, 10.0, result.Score)
		assert.Equal(t, domain.StatusGraded, s.Status())
		assert.ErrorIs(t, s.LastError(), domain.ErrPersistence)
	})

	t.Run("explicit save of a partial attempt", func(t *testing.T) {
		store := memory.NewResultStore()
		s := newSession(t, twoQuestionQuiz(), app.SessionOptions{Store: store})
		require.NoError(t, s.SetAnswer("q1", domain.Choice("B")))

		require.NoError(t, s.Save(ctx))
		loaded, _ := store.LoadResult(ctx, domain.ResultQuery{QuizID: "quiz-1"})
		require.NotNil(t, loaded)
		assert.True(t, loaded.Partial())
		assert.Zero(t, loaded.Score)
		assert.Len(t, loaded.Answers, 1)
	})

	t.Run("save without store", func(t *testing.T) {
		s := newSession(t, twoQuestionQuiz(), app.SessionOptions{})
		require.ErrorIs(t, s.Save(ctx), domain.ErrStoreUnavailable)
	})
}

func TestSessionAutoSave(t *testing.T) {
	ctx := context.Background()
	store := memory.NewResultStore()
	s := newSession(t, twoQuestionQuiz(), app.SessionOptions{
		Store:            store,
		AutoSaveInterval: 20 * time.Millisecond,
	})

	require.NoError(t, s.SetAnswer("q1", domain.Choice("A")))
	require.NoError(t, s.SetAnswer("q1", domain.Choice("B")))

	require.Eventually(t, func() bool {
		loaded, _ := store.LoadResult(ctx, domain.ResultQuery{QuizID: "quiz-1"})
		return loaded != nil
	}, time.Second, 5*time.Millisecond)

	loaded, _ := store.LoadResult(ctx, domain.ResultQuery{QuizID: "quiz-1"})
	assert.True(t, loaded.Partial())
	assert.Equal(t, domain.Choice("B"), loaded.Answers[0].Value, "only the settled state is saved")
}

func TestSessionSubmitWaitsForRunningAutoSave(t *testing.T) {
	ctx := context.Background()
	store := newStallingStore()
	s := newSession(t, twoQuestionQuiz(), app.SessionOptions{
		Store:            store,
		AutoSaveInterval: 10 * time.Millisecond,
	})

	require.NoError(t, s.SetAnswer("q1", domain.Choice("B")))
	require.NoError(t, s.SetAnswer("q2", domain.Bool(true)))

	select {
	case <-store.entered:
	case <-time.After(time.Second):
		t.Fatal("auto-save never started")
	}

	done := make(chan domain.QuizResult, 1)
	go func() {
		result, err := s.SubmitQuiz(ctx)
		assert.NoError(t, err)
		done <- result
	}()
	require.Eventually(t, func() bool { return s.Status() == domain.StatusGraded }, time.Second, time.Millisecond)
	close(store.release)

	result := <-done
	assert.Equal(t, 15.0, result.Score)

	loaded, err := store.LoadResult(ctx, domain.ResultQuery{QuizID: "quiz-1"})
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.False(t, loaded.Partial(), "the graded result is the last write")
	assert.Equal(t, 15.0, loaded.Score)
}

func TestSessionSubscribeStartsWithCurrentState(t *testing.T) {
	s := newSession(t, twoQuestionQuiz(), app.SessionOptions{})
	require.NoError(t, s.SetAnswer("q1", domain.Choice("A")))

	ch, cancel := s.Subscribe()
	defer cancel()
	require.NoError(t, s.SetAnswer("q1", domain.Choice("B")))

	first := <-ch
	assert.Equal(t, domain.Choice("A"), first.Answers["q1"].Value)
	second := <-ch
	assert.Equal(t, domain.Choice("B"), second.Answers["q1"].Value)
}

func TestSessionTimeUpAutoSubmits(t *testing.T) {
	cfg := twoQuestionQuiz()
	cfg.TimeLimit = 60
	clock := newFakeClock()
	ts := newTickers()
	s := newSession(t, cfg, app.SessionOptions{
		Now:                clock.Now,
		NewTicker:          ts.New,
		AutoSubmitOnTimeUp: true,
	})

	require.NoError(t, s.SetAnswer("q1", domain.Choice("B")))
	ticker := <-ts.ready

	clock.Advance(30 * time.Second)
	ticker.ch <- clock.Now()
	require.Eventually(t, func() bool { return s.State().TimeSpent == 30 }, time.Second, time.Millisecond)
	remaining := s.Progress().TimeRemaining
	require.NotNil(t, remaining)
	assert.Equal(t, 30, *remaining)

	clock.Advance(45 * time.Second)
	ticker.ch <- clock.Now()
	require.Eventually(t, func() bool { return s.Status() == domain.StatusGraded }, time.Second, time.Millisecond)

	assert.True(t, s.TimeUp())
	result, ok := s.Result()
	require.True(t, ok)
	assert.Equal(t, 75, result.TimeSpent)
	assert.Equal(t, 10.0, result.Score)
	require.Eventually(t, ticker.Stopped, time.Second, time.Millisecond)
}

func TestSessionCloseStopsTimer(t *testing.T) {
	ts := newTickers()
	s := newSession(t, twoQuestionQuiz(), app.SessionOptions{NewTicker: ts.New})

	require.NoError(t, s.SetAnswer("q1", domain.Choice("B")))
	ticker := <-ts.ready

	s.Close()
	require.Eventually(t, ticker.Stopped, time.Second, time.Millisecond)
	assert.True(t, s.Closed())
	assert.ErrorIs(t, s.SetAnswer("q1", domain.Choice("A")), domain.ErrQuizClosed)
}
