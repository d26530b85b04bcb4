package app

import (
	"context"
	"log/slog"
	"time"

	"quiz-engine/internal/domain"
	"quiz-engine/internal/shuffle"
)

// SessionRepository abstracts where live sessions are registered (in-memory, Redis, etc).
// Sessions are keyed by quiz and user.
type SessionRepository interface {
	Get(quizID, userID string) (*Session, bool)
	Put(session *Session)
	Delete(quizID, userID string)
}

// LivenessChecker is implemented by session repositories shared between
// instances. Live reports the session ID currently holding a user's attempt.
type LivenessChecker interface {
	Live(ctx context.Context, quizID, userID string) (string, bool, error)
}

// QuizRepository loads quiz definitions (from cache/backing store).
type QuizRepository interface {
	GetQuiz(ctx context.Context, quizID string) (domain.QuizConfig, error)
}

type ServiceOptions struct {
	// Results is optional; without it attempts are neither numbered from history nor persisted.
	Results            ResultStore
	AutoSaveInterval   time.Duration
	AutoSubmitOnTimeUp bool
	Logger             *slog.Logger
	Now                func() time.Time
	NewTicker          NewTickerFunc
}

// QuizService contains the quiz use cases on top of sessions.
type QuizService struct {
	sessions SessionRepository
	quizzes  QuizRepository
	results  *ResultManager
	opts     ServiceOptions
	logger   *slog.Logger
}

func NewQuizService(sessions SessionRepository, quizzes QuizRepository, opts ServiceOptions) *QuizService {
	s := &QuizService{sessions: sessions, quizzes: quizzes, opts: opts, logger: opts.Logger}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	if opts.Results != nil {
		s.results = NewResultManager(opts.Results)
	}
	return s
}

// Results exposes the result manager, nil when no store is configured.
func (s *QuizService) Results() *ResultManager {
	return s.results
}

// Start returns the user's live attempt for quizID, or begins a new one numbered
// after the stored attempts. A quiz with MaxAttempts refuses attempts beyond it,
// and an attempt live on another instance is refused with ErrSessionActive.
func (s *QuizService) Start(ctx context.Context, quizID, userID string) (*Session, error) {
	prev, found := s.sessions.Get(quizID, userID)
	if found && !prev.Closed() && !prev.Status().Terminal() {
		return prev, nil
	}

	if lc, ok := s.sessions.(LivenessChecker); ok {
		id, live, err := lc.Live(ctx, quizID, userID)
		switch {
		case err != nil:
			s.logger.WarnContext(ctx, "quiz: liveness check failed", "quiz_id", quizID, "user_id", userID, "error", err)
		case live && (!found || id != prev.ID()):
			return nil, domain.ErrSessionActive
		}
	}

	cfg, err := s.quizzes.GetQuiz(ctx, quizID)
	if err != nil {
		return nil, err
	}

	attempt := 1
	if s.results != nil {
		if attempt, err = s.results.NextAttemptNumber(ctx, quizID, userID); err != nil {
			return nil, err
		}
	} else if found {
		attempt = prev.State().AttemptNumber + 1
	}
	if cfg.MaxAttempts > 0 && attempt > cfg.MaxAttempts {
		return nil, domain.ErrMaxAttemptsReached
	}

	session, err := NewSession(shuffle.ApplyQuiz(cfg), SessionOptions{
		UserID:             userID,
		AttemptNumber:      attempt,
		Store:              s.opts.Results,
		AutoSaveInterval:   s.opts.AutoSaveInterval,
		AutoSubmitOnTimeUp: s.opts.AutoSubmitOnTimeUp,
		Logger:             s.logger,
		Now:                s.opts.Now,
		NewTicker:          s.opts.NewTicker,
	})
	if err != nil {
		return nil, err
	}

	if found {
		prev.Close()
	}
	s.sessions.Put(session)
	s.logger.InfoContext(ctx, "quiz: session started",
		"quiz_id", quizID, "user_id", userID, "session_id", session.ID(), "attempt", attempt)
	return session, nil
}

// Resume returns the user's registered session as it is, including a submitted
// one, and only starts an attempt when none is registered.
func (s *QuizService) Resume(ctx context.Context, quizID, userID string) (*Session, error) {
	if session, ok := s.sessions.Get(quizID, userID); ok && !session.Closed() {
		return session, nil
	}
	return s.Start(ctx, quizID, userID)
}

// Session returns the registered session of a user.
func (s *QuizService) Session(quizID, userID string) (*Session, error) {
	session, ok := s.sessions.Get(quizID, userID)
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	return session, nil
}

// Submit submits the user's live attempt.
func (s *QuizService) Submit(ctx context.Context, quizID, userID string) (domain.QuizResult, error) {
	session, err := s.Session(quizID, userID)
	if err != nil {
		return domain.QuizResult{}, err
	}
	return session.SubmitQuiz(ctx)
}

// Subscribe returns a channel that receives state snapshots of the user's session.
// The caller must invoke the returned cancel function to avoid leaks.
func (s *QuizService) Subscribe(_ context.Context, quizID, userID string) (<-chan domain.QuizState, func(), error) {
	session, err := s.Session(quizID, userID)
	if err != nil {
		return nil, nil, err
	}
	ch, cancel := session.Subscribe()
	return ch, cancel, nil
}

// Review opens a stored attempt read-only; attempt 0 selects the latest. The
// session is not registered and the caller must Close it.
func (s *QuizService) Review(ctx context.Context, quizID, userID string, attempt int) (*Session, error) {
	if s.results == nil {
		return nil, domain.ErrStoreUnavailable
	}
	loaded, err := s.results.Load(ctx, domain.ResultQuery{QuizID: quizID, UserID: userID, AttemptNumber: attempt})
	if err != nil {
		return nil, err
	}
	if loaded == nil {
		return nil, domain.ErrResultNotFound
	}

	cfg, err := s.quizzes.GetQuiz(ctx, quizID)
	if err != nil {
		return nil, err
	}
	return NewSession(shuffle.ApplyQuiz(cfg), SessionOptions{
		UserID: userID,
		Review: loaded,
		Logger: s.logger,
		Now:    s.opts.Now,
	})
}

// End closes the user's session and drops it from the registry.
func (s *QuizService) End(_ context.Context, quizID, userID string) {
	session, ok := s.sessions.Get(quizID, userID)
	if !ok {
		return
	}
	session.Close()
	s.sessions.Delete(quizID, userID)
}

// Stats summarises the stored attempts of a user.
func (s *QuizService) Stats(ctx context.Context, quizID, userID string) (domain.Stats, error) {
	if s.results == nil {
		return domain.Stats{}, domain.ErrStoreUnavailable
	}
	return s.results.Stats(ctx, quizID, userID)
}
