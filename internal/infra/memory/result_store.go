package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"quiz-engine/internal/domain"
)

// AnonymousUser is the storage name of the empty user ID.
const AnonymousUser = "anonymous"

// ResultStore keeps quiz results in process memory.
type ResultStore struct {
	clock func() time.Time

	mu sync.RWMutex
	// results[quizID:userID][attempt]
	results map[string]map[int]domain.LoadedResult
}

func NewResultStore() *ResultStore {
	return NewResultStoreWithClock(time.Now)
}

// NewResultStoreWithClock is used by tests for deterministic SavedAt values.
func NewResultStoreWithClock(clock func() time.Time) *ResultStore {
	return &ResultStore{
		clock:   clock,
		results: make(map[string]map[int]domain.LoadedResult),
	}
}

func (s *ResultStore) SaveResult(_ context.Context, result domain.QuizResult) (domain.LoadedResult, error) {
	loaded := domain.LoadedResult{QuizResult: result, SavedAt: s.clock()}
	key := SessionKey(result.QuizID, result.UserID)

	s.mu.Lock()
	defer s.mu.Unlock()
	attempts, ok := s.results[key]
	if !ok {
		attempts = make(map[int]domain.LoadedResult)
		s.results[key] = attempts
	}
	attempts[result.AttemptNumber] = loaded
	return loaded, nil
}

func (s *ResultStore) LoadResult(_ context.Context, q domain.ResultQuery) (*domain.LoadedResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	attempts := s.results[SessionKey(q.QuizID, q.UserID)]
	if len(attempts) == 0 {
		return nil, nil
	}

	attempt := q.AttemptNumber
	if attempt == 0 {
		for n := range attempts {
			attempt = max(attempt, n)
		}
	}
	res, ok := attempts[attempt]
	if !ok {
		return nil, nil
	}
	return &res, nil
}

func (s *ResultStore) LoadAllResults(_ context.Context, quizID, userID string) ([]domain.LoadedResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	attempts := s.results[SessionKey(quizID, userID)]
	out := make([]domain.LoadedResult, 0, len(attempts))
	for _, r := range attempts {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].AttemptNumber < out[j].AttemptNumber })
	return out, nil
}

func (s *ResultStore) DeleteResult(_ context.Context, q domain.ResultQuery) error {
	key := SessionKey(q.QuizID, q.UserID)

	s.mu.Lock()
	defer s.mu.Unlock()
	if q.AttemptNumber == 0 {
		delete(s.results, key)
		return nil
	}
	if attempts, ok := s.results[key]; ok {
		delete(attempts, q.AttemptNumber)
		if len(attempts) == 0 {
			delete(s.results, key)
		}
	}
	return nil
}

func (s *ResultStore) ClearAll(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.results = make(map[string]map[int]domain.LoadedResult)
	return nil
}
