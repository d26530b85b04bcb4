package app_test

import (
	"context"
	"errors"
	"sync"
	"time"

	"quiz-engine/internal/app"
	"quiz-engine/internal/domain"
	"quiz-engine/internal/infra/memory"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 11, 22, 10, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

type fakeTicker struct {
	ch      chan time.Time
	mu      sync.Mutex
	stopped bool
}

func (f *fakeTicker) C() <-chan time.Time { return f.ch }

func (f *fakeTicker) Stop() {
	f.mu.Lock()
	f.stopped = true
	f.mu.Unlock()
}

func (f *fakeTicker) Stopped() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.stopped
}

// tickers hands out manually driven tickers and remembers them.
type tickers struct {
	mu      sync.Mutex
	created []*fakeTicker
	ready   chan *fakeTicker
}

func newTickers() *tickers {
	return &tickers{ready: make(chan *fakeTicker, 4)}
}

func (ts *tickers) New(time.Duration) app.Ticker {
	t := &fakeTicker{ch: make(chan time.Time)}
	ts.mu.Lock()
	ts.created = append(ts.created, t)
	ts.mu.Unlock()
	select {
	case ts.ready <- t:
	default:
	}
	return t
}

// twoQuestionQuiz is a 10 point multiple choice ("B") plus a 5 point true/false (true).
func twoQuestionQuiz() domain.QuizConfig {
	return domain.QuizConfig{
		ID:    "quiz-1",
		Title: "Two questions",
		Questions: domain.QuestionList{
			domain.MultipleChoice{
				QuestionBase: domain.QuestionBase{ID: "q1", Prompt: "Pick B", Points: 10},
				Options: []domain.Option{
					{ID: "A", Text: "A"},
					{ID: "B", Text: "B", Correct: true},
					{ID: "C", Text: "C"},
				},
			},
			domain.TrueFalse{
				QuestionBase:  domain.QuestionBase{ID: "q2", Prompt: "True?", Points: 5},
				CorrectAnswer: true,
			},
		},
		SubmissionMode: domain.SubmitHybrid,
		PassingScore:   60,
	}
}

type failingStore struct {
	app.ResultStore
}

var errStoreDown = errors.New("store down")

func (failingStore) SaveResult(context.Context, domain.QuizResult) (domain.LoadedResult, error) {
	return domain.LoadedResult{}, errStoreDown
}

// stallingStore holds partial saves until release is closed.
type stallingStore struct {
	*memory.ResultStore
	entered chan struct{}
	release chan struct{}
	once    sync.Once
}

func newStallingStore() *stallingStore {
	return &stallingStore{
		ResultStore: memory.NewResultStore(),
		entered:     make(chan struct{}),
		release:     make(chan struct{}),
	}
}

func (s *stallingStore) SaveResult(ctx context.Context, r domain.QuizResult) (domain.LoadedResult, error) {
	if r.Partial() {
		s.once.Do(func() { close(s.entered) })
		<-s.release
	}
	return s.ResultStore.SaveResult(ctx, r)
}
