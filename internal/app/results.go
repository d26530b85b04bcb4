package app

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"quiz-engine/internal/domain"
)

// ResultStore persists quiz results across attempts.
//
// LoadResult returns (nil, nil) when nothing matches; AttemptNumber 0 selects the
// latest attempt. LoadAllResults is ordered by ascending attempt number.
// DeleteResult with AttemptNumber 0 removes every attempt. An empty user ID
// addresses the anonymous user.
type ResultStore interface {
	SaveResult(ctx context.Context, result domain.QuizResult) (domain.LoadedResult, error)
	LoadResult(ctx context.Context, q domain.ResultQuery) (*domain.LoadedResult, error)
	LoadAllResults(ctx context.Context, quizID, userID string) ([]domain.LoadedResult, error)
	DeleteResult(ctx context.Context, q domain.ResultQuery) error
}

// ResultClearer is implemented by stores that can drop everything at once.
type ResultClearer interface {
	ClearAll(ctx context.Context) error
}

// ResultManager wraps a ResultStore, tags its failures with ErrPersistence and
// derives statistics from stored attempts.
type ResultManager struct {
	store ResultStore
	// loadConcurrency bounds LoadMany.
	loadConcurrency int
}

func NewResultManager(store ResultStore) *ResultManager {
	return &ResultManager{store: store, loadConcurrency: 8}
}

func (m *ResultManager) Save(ctx context.Context, result domain.QuizResult) (domain.LoadedResult, error) {
	if m.store == nil {
		return domain.LoadedResult{}, domain.ErrStoreUnavailable
	}
	saved, err := m.store.SaveResult(ctx, result)
	if err != nil {
		return domain.LoadedResult{}, persistence("save result", err)
	}
	return saved, nil
}

func (m *ResultManager) Load(ctx context.Context, q domain.ResultQuery) (*domain.LoadedResult, error) {
	if m.store == nil {
		return nil, domain.ErrStoreUnavailable
	}
	res, err := m.store.LoadResult(ctx, q)
	if err != nil {
		return nil, persistence("load result", err)
	}
	return res, nil
}

func (m *ResultManager) LoadAll(ctx context.Context, quizID, userID string) ([]domain.LoadedResult, error) {
	if m.store == nil {
		return nil, domain.ErrStoreUnavailable
	}
	res, err := m.store.LoadAllResults(ctx, quizID, userID)
	if err != nil {
		return nil, persistence("load results", err)
	}
	return res, nil
}

func (m *ResultManager) Delete(ctx context.Context, q domain.ResultQuery) error {
	if m.store == nil {
		return domain.ErrStoreUnavailable
	}
	if err := m.store.DeleteResult(ctx, q); err != nil {
		return persistence("delete result", err)
	}
	return nil
}

// ClearAll empties the store when it supports it.
func (m *ResultManager) ClearAll(ctx context.Context) error {
	c, ok := m.store.(ResultClearer)
	if !ok {
		return fmt.Errorf("clear results: %w", errors.ErrUnsupported)
	}
	if err := c.ClearAll(ctx); err != nil {
		return persistence("clear results", err)
	}
	return nil
}

// Stats summarises every stored attempt of quizID by userID. A user without
// attempts gets zero stats, not an error.
func (m *ResultManager) Stats(ctx context.Context, quizID, userID string) (domain.Stats, error) {
	results, err := m.LoadAll(ctx, quizID, userID)
	if err != nil {
		return domain.Stats{}, err
	}
	return ComputeStats(quizID, userID, results), nil
}

// ComputeStats derives statistics from loaded attempts.
func ComputeStats(quizID, userID string, results []domain.LoadedResult) domain.Stats {
	stats := domain.Stats{QuizID: quizID, UserID: userID, TotalAttempts: len(results)}
	if len(results) == 0 {
		return stats
	}

	sum := decimal.Zero
	best := decimal.NewFromFloat(results[0].Score)
	bestPct := decimal.NewFromFloat(results[0].Percentage)
	for _, r := range results {
		score := decimal.NewFromFloat(r.Score)
		sum = sum.Add(score)
		if score.GreaterThan(best) {
			best = score
		}
		if pct := decimal.NewFromFloat(r.Percentage); pct.GreaterThan(bestPct) {
			bestPct = pct
		}
		if r.AttemptNumber > stats.LastAttempt {
			stats.LastAttempt = r.AttemptNumber
		}
	}

	stats.BestScore = best.InexactFloat64()
	stats.BestPercentage = bestPct.InexactFloat64()
	stats.AverageScore = sum.Div(decimal.NewFromInt(int64(len(results)))).InexactFloat64()
	return stats
}

// NextAttemptNumber is one past the highest stored attempt.
func (m *ResultManager) NextAttemptNumber(ctx context.Context, quizID, userID string) (int, error) {
	latest, err := m.Load(ctx, domain.ResultQuery{QuizID: quizID, UserID: userID})
	if err != nil {
		return 0, err
	}
	if latest == nil {
		return 1, nil
	}
	return latest.AttemptNumber + 1, nil
}

// LoadMany loads the attempts of several users concurrently.
func (m *ResultManager) LoadMany(ctx context.Context, quizID string, userIDs []string) (map[string][]domain.LoadedResult, error) {
	var (
		mu  sync.Mutex
		out = make(map[string][]domain.LoadedResult, len(userIDs))
	)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(m.loadConcurrency)
	for _, userID := range userIDs {
		userID := userID
		g.Go(func() error {
			res, err := m.LoadAll(ctx, quizID, userID)
			if err != nil {
				return fmt.Errorf("user %q: %w", userID, err)
			}
			mu.Lock()
			out[userID] = res
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func persistence(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, domain.ErrPersistence, err)
}
