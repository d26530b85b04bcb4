package app

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"quiz-engine/internal/domain"
	"quiz-engine/internal/grading"
	"quiz-engine/internal/validation"
)

const (
	timeUpSubmitTimeout    = 10 * time.Second
	feedbackManuallyGraded = "Graded manually"
)

type SessionOptions struct {
	UserID string
	// AttemptNumber defaults to 1.
	AttemptNumber int
	// Review opens a previously stored result read-only.
	Review *domain.LoadedResult
	// Store is optional; without it SubmitQuiz does not persist and Save fails.
	Store            ResultStore
	AutoSaveInterval time.Duration
	// AutoSubmitOnTimeUp submits the quiz when the time limit is reached.
	AutoSubmitOnTimeUp bool
	Logger             *slog.Logger
	Now                func() time.Time
	NewTicker          NewTickerFunc
}

// Session is the state machine of one quiz attempt. It is safe for concurrent
// use; change listeners run after the internal lock is released but before the
// mutating call returns.
type Session struct {
	id         string
	userID     string
	cfg        domain.QuizConfig
	now        func() time.Time
	logger     *slog.Logger
	results    *ResultManager
	autoSubmit bool

	timer *Timer
	saver *AutoSaver

	// saveMu orders writes to the store; each write snapshots the state it holds.
	saveMu sync.Mutex

	mu           sync.RWMutex
	state        domain.QuizState
	reviewMode   bool
	timeUp       bool
	closed       bool
	lastErr      error
	result       *domain.QuizResult
	enteredAt    time.Time
	submitCount  map[string]int
	listeners    map[int]func(domain.QuizState)
	nextListener int
	subscribers  map[chan domain.QuizState]struct{}
}

// NewSession validates cfg and builds a session positioned on the first question.
// cfg is used as given; apply shuffling beforehand.
func NewSession(cfg domain.QuizConfig, opts SessionOptions) (*Session, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("generate session id: %w", err)
	}

	s := &Session{
		id:          id.String(),
		userID:      opts.UserID,
		cfg:         cfg,
		now:         opts.Now,
		logger:      opts.Logger,
		autoSubmit:  opts.AutoSubmitOnTimeUp,
		submitCount: make(map[string]int),
		listeners:   make(map[int]func(domain.QuizState)),
		subscribers: make(map[chan domain.QuizState]struct{}),
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	s.logger = s.logger.With("session_id", s.id, "quiz_id", cfg.ID, "user_id", opts.UserID)
	if opts.Store != nil {
		s.results = NewResultManager(opts.Store)
		if opts.AutoSaveInterval > 0 {
			s.saver = NewAutoSaver(opts.AutoSaveInterval, s.autoSave, s.logger)
		}
	}

	attempt := opts.AttemptNumber
	if attempt <= 0 {
		attempt = 1
	}
	s.state = domain.QuizState{
		QuizID:        cfg.ID,
		Answers:       make(map[string]domain.QuestionAnswer),
		Submissions:   make(map[string]domain.QuestionSubmission),
		Status:        domain.StatusNotStarted,
		AttemptNumber: attempt,
		MaxScore:      cfg.MaxScore(),
	}

	if r := opts.Review; r != nil {
		for _, a := range r.Answers {
			if _, ok := cfg.Question(a.QuestionID); ok {
				s.state.Answers[a.QuestionID] = a
			}
		}
		score := r.Score
		s.state.Score = &score
		s.state.Status = domain.StatusGraded
		s.state.AttemptNumber = max(r.AttemptNumber, 1)
		s.state.TimeSpent = r.TimeSpent
		if !r.SubmittedAt.IsZero() {
			at := r.SubmittedAt
			s.state.SubmittedAt = &at
		}
		loaded := r.QuizResult
		s.result = &loaded
	}

	s.timer = NewTimer(TimerConfig{
		Limit:     cfg.TimeLimit,
		Now:       s.now,
		NewTicker: opts.NewTicker,
		OnTick:    s.tick,
		OnTimeUp:  s.handleTimeUp,
	})
	return s, nil
}

func (s *Session) ID() string     { return s.id }
func (s *Session) UserID() string { return s.userID }
func (s *Session) QuizID() string { return s.cfg.ID }

// Config returns the (already shuffled) quiz definition the session runs on.
func (s *Session) Config() domain.QuizConfig { return s.cfg }

// State returns a copy of the current state.
func (s *Session) State() domain.QuizState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Clone()
}

func (s *Session) Status() domain.Status {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Status
}

func (s *Session) Progress() domain.Progress {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return ComputeProgress(s.cfg, s.state)
}

// CurrentQuestion returns the question under the cursor and its index.
func (s *Session) CurrentQuestion() (domain.Question, int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i := s.state.CurrentQuestionIndex
	return s.cfg.Questions[i], i
}

func (s *Session) Answer(questionID string) (domain.QuestionAnswer, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.state.Answers[questionID]
	return a, ok
}

func (s *Session) Submission(questionID string) (domain.QuestionSubmission, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sub, ok := s.state.Submissions[questionID]
	return sub, ok
}

// Result returns the result produced by SubmitQuiz, Grade, or the reviewed attempt.
func (s *Session) Result() (domain.QuizResult, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.result == nil {
		return domain.QuizResult{}, false
	}
	return *s.result, true
}

// LastError is the most recent failure of an explicit save, nil after a successful one.
func (s *Session) LastError() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastErr
}

func (s *Session) TimeUp() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.timeUp
}

func (s *Session) InReviewMode() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.reviewMode
}

// CanGoNext reports whether Next would move. A linear quiz (no navigation, no
// skipping) only advances once the current question has an answer.
func (s *Session) CanGoNext() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.canGoNextLocked()
}

func (s *Session) CanGoPrevious() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.canGoPreviousLocked()
}

// CanSubmitQuiz is advisory: SubmitQuiz does not check it.
func (s *Session) CanSubmitQuiz() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.state.Status.Terminal() {
		return false
	}
	answered := 0
	for _, q := range s.cfg.Questions {
		if a, ok := s.state.Answers[q.Base().ID]; ok && a.IsAnswered {
			answered++
		}
	}
	if s.cfg.RequireAllAnswered {
		return answered == len(s.cfg.Questions)
	}
	return answered > 0
}

func (s *Session) canGoNextLocked() bool {
	i := s.state.CurrentQuestionIndex
	if i >= len(s.cfg.Questions)-1 {
		return false
	}
	if s.cfg.AllowNavigation || s.cfg.AllowSkip {
		return true
	}
	a, ok := s.state.Answers[s.cfg.Questions[i].Base().ID]
	return ok && a.IsAnswered
}

func (s *Session) canGoPreviousLocked() bool {
	return s.cfg.AllowNavigation && s.state.CurrentQuestionIndex > 0
}

// Next moves to the following question when CanGoNext allows it.
func (s *Session) Next() bool {
	return s.navigate(func() bool {
		if !s.canGoNextLocked() {
			return false
		}
		s.state.CurrentQuestionIndex++
		return true
	})
}

// Previous moves back when CanGoPrevious allows it.
func (s *Session) Previous() bool {
	return s.navigate(func() bool {
		if !s.canGoPreviousLocked() {
			return false
		}
		s.state.CurrentQuestionIndex--
		return true
	})
}

// GoTo jumps to index. Indices outside the question list are ignored.
func (s *Session) GoTo(index int) bool {
	return s.navigate(func() bool {
		if index < 0 || index >= len(s.cfg.Questions) {
			return false
		}
		s.state.CurrentQuestionIndex = index
		return true
	})
}

func (s *Session) navigate(move func() bool) bool {
	moved := false
	_ = s.update(false, func() (bool, error) {
		if s.closed || !move() {
			return false, nil
		}
		s.startLocked()
		s.enteredAt = s.now()
		moved = true
		return true, nil
	})
	return moved
}

// SetAnswer replaces the answer of questionID. The first answer starts the attempt.
func (s *Session) SetAnswer(questionID string, v domain.Value) error {
	return s.update(true, func() (bool, error) {
		q, ok := s.cfg.Question(questionID)
		if !ok {
			return false, fmt.Errorf("set answer %q: %w", questionID, domain.ErrQuestionNotFound)
		}
		if err := s.writableLocked(); err != nil {
			return false, err
		}
		if v != nil && !validation.Accepts(q, v) {
			return false, fmt.Errorf("set answer %q: %w: %s question got %s", questionID, domain.ErrAnswerTypeMismatch, q.Type(), v.Kind())
		}

		s.startLocked()
		now := s.now()
		spent := s.state.Answers[questionID].TimeSpent
		if !s.enteredAt.IsZero() {
			spent += int(now.Sub(s.enteredAt) / time.Second)
		}
		s.enteredAt = now
		s.state.Answers[questionID] = domain.NewAnswer(questionID, v, s.state.AttemptNumber, spent, now)
		return true, nil
	})
}

// ClearAnswer removes the answer of questionID. Its submission, if any, is kept.
func (s *Session) ClearAnswer(questionID string) error {
	return s.update(true, func() (bool, error) {
		if err := s.writableLocked(); err != nil {
			return false, err
		}
		if _, ok := s.state.Answers[questionID]; !ok {
			return false, nil
		}
		delete(s.state.Answers, questionID)
		return true, nil
	})
}

// ClearAllAnswers removes every answer together with every submission.
func (s *Session) ClearAllAnswers() error {
	return s.update(true, func() (bool, error) {
		if err := s.writableLocked(); err != nil {
			return false, err
		}
		s.state.Answers = make(map[string]domain.QuestionAnswer)
		s.state.Submissions = make(map[string]domain.QuestionSubmission)
		s.submitCount = make(map[string]int)
		return true, nil
	})
}

// SubmitQuestion freezes the current answer of questionID. Scoring happens when the quiz is submitted.
func (s *Session) SubmitQuestion(questionID string) error {
	return s.update(true, func() (bool, error) {
		q, ok := s.cfg.Question(questionID)
		if !ok {
			return false, fmt.Errorf("submit question %q: %w", questionID, domain.ErrQuestionNotFound)
		}
		if err := s.writableLocked(); err != nil {
			return false, err
		}
		a, ok := s.state.Answers[questionID]
		if !ok {
			return false, fmt.Errorf("submit question %q: %w", questionID, domain.ErrNoAnswer)
		}
		if limit := q.Base().MaxAttempts; limit > 0 && s.submitCount[questionID] >= limit {
			return false, fmt.Errorf("submit question %q: %w", questionID, domain.ErrMaxAttemptsReached)
		}

		s.submitCount[questionID]++
		s.state.Submissions[questionID] = domain.QuestionSubmission{
			QuestionID:  questionID,
			Answer:      a,
			Status:      domain.SubmissionSubmitted,
			MaxScore:    q.Base().Points,
			SubmittedAt: s.now(),
		}
		return true, nil
	})
}

// SubmitQuiz freezes every question and grades the attempt, unless the quiz uses
// manual grading, in which case it stops at StatusSubmitted. With a store the
// result is saved; a save failure is returned wrapped in ErrPersistence together
// with the result, and the session stays submitted.
func (s *Session) SubmitQuiz(ctx context.Context) (domain.QuizResult, error) {
	var result domain.QuizResult
	err := s.update(false, func() (bool, error) {
		if s.state.Status.Terminal() || s.closed {
			return false, domain.ErrQuizClosed
		}

		now := s.now()
		subs := s.freezeLocked(now)
		if s.cfg.ManualGrading {
			s.state.Submissions = subs
			s.state.Status = domain.StatusSubmitted
		} else if err := s.gradeLocked(subs, nil); err != nil {
			return false, err
		}

		s.stopLocked()
		s.state.SubmittedAt = &now
		s.reviewMode = false
		result = s.resultLocked()
		s.result = &result
		return true, nil
	})
	if err != nil {
		return domain.QuizResult{}, err
	}

	s.logger.InfoContext(ctx, "session: quiz submitted",
		"manual_grading", s.cfg.ManualGrading, "score", result.Score, "max_score", result.MaxScore)
	return result, s.persist(ctx)
}

// Grade scores a quiz left in StatusSubmitted by manual grading. manualScores
// assigns points to questions the engine cannot score; they are clamped to the
// question's points.
func (s *Session) Grade(ctx context.Context, manualScores map[string]float64) (domain.QuizResult, error) {
	var result domain.QuizResult
	err := s.update(false, func() (bool, error) {
		if s.state.Status != domain.StatusSubmitted {
			return false, domain.ErrNotSubmitted
		}
		for id := range manualScores {
			if _, ok := s.cfg.Question(id); !ok {
				return false, fmt.Errorf("grade %q: %w", id, domain.ErrQuestionNotFound)
			}
		}
		if err := s.gradeLocked(s.state.Submissions, manualScores); err != nil {
			return false, err
		}
		result = s.resultLocked()
		s.result = &result
		return true, nil
	})
	if err != nil {
		return domain.QuizResult{}, err
	}

	s.logger.InfoContext(ctx, "session: quiz graded", "score", result.Score, "max_score", result.MaxScore)
	return result, s.persist(ctx)
}

// Save persists the current result; before submission it is a partial result
// with zeroed score fields.
func (s *Session) Save(ctx context.Context) error {
	if s.results == nil {
		return domain.ErrStoreUnavailable
	}
	return s.persist(ctx)
}

// persist writes the state as it is once the previous write has finished, so a
// later write never carries an older snapshot.
func (s *Session) persist(ctx context.Context) error {
	if s.results == nil {
		return nil
	}
	s.saveMu.Lock()
	defer s.saveMu.Unlock()

	s.mu.RLock()
	result := s.resultLocked()
	s.mu.RUnlock()

	_, err := s.results.Save(ctx, result)

	s.mu.Lock()
	s.lastErr = err
	s.mu.Unlock()

	if err != nil {
		s.logger.ErrorContext(ctx, "session: save result failed", "error", err)
	}
	return err
}

// autoSave only writes while the attempt is in progress. Submission waits for a
// running auto-save before writing the final result.
func (s *Session) autoSave(ctx context.Context) error {
	s.saveMu.Lock()
	defer s.saveMu.Unlock()

	s.mu.RLock()
	if s.closed || s.state.Status != domain.StatusInProgress || len(s.state.Answers) == 0 {
		s.mu.RUnlock()
		return nil
	}
	result := s.resultLocked()
	s.mu.RUnlock()

	_, err := s.results.Save(ctx, result)
	return err
}

// EnterReviewMode shows the answer summary before submission. It reports false
// when the quiz does not allow review.
func (s *Session) EnterReviewMode() bool {
	entered := false
	_ = s.update(false, func() (bool, error) {
		if !s.cfg.AllowReview || s.closed || s.reviewMode {
			return false, nil
		}
		s.reviewMode = true
		entered = true
		return true, nil
	})
	return entered
}

func (s *Session) ExitReviewMode() {
	_ = s.update(false, func() (bool, error) {
		if !s.reviewMode {
			return false, nil
		}
		s.reviewMode = false
		return true, nil
	})
}

// EditFromReview leaves review mode on the question at index.
func (s *Session) EditFromReview(index int) bool {
	moved := s.GoTo(index)
	s.ExitReviewMode()
	return moved
}

// OnChange registers fn to run synchronously after every state change.
func (s *Session) OnChange(fn func(domain.QuizState)) (unregister func()) {
	s.mu.Lock()
	id := s.nextListener
	s.nextListener++
	s.listeners[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.listeners, id)
		s.mu.Unlock()
	}
}

// Subscribe returns a channel of state snapshots, starting with the current one.
// Slow readers only ever miss intermediate snapshots, never the latest.
// The caller must invoke cancel to avoid leaks.
func (s *Session) Subscribe() (<-chan domain.QuizState, func()) {
	ch := make(chan domain.QuizState, 8)

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		close(ch)
		return ch, func() {}
	}
	s.subscribers[ch] = struct{}{}
	ch <- s.state.Clone()
	s.mu.Unlock()

	cancel := func() {
		s.mu.Lock()
		if _, ok := s.subscribers[ch]; ok {
			delete(s.subscribers, ch)
			close(ch)
		}
		s.mu.Unlock()
	}
	return ch, cancel
}

// Close stops the timer and any pending auto-save and closes subscriptions.
// The session is read-only afterwards.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	s.stopLocked()
	if s.saver != nil {
		s.saver.Close()
	}
	for ch := range s.subscribers {
		delete(s.subscribers, ch)
		close(ch)
	}
}

func (s *Session) Closed() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.closed
}

// update runs fn under the write lock. When fn reports a change, subscribers get a
// snapshot, the auto-save window is re-armed if rearm is set, and listeners run
// after the lock is released.
func (s *Session) update(rearm bool, fn func() (bool, error)) error {
	s.mu.Lock()
	changed, err := fn()
	if err != nil || !changed {
		s.mu.Unlock()
		return err
	}
	snap := s.broadcastLocked()
	if rearm {
		s.armAutoSaveLocked()
	}
	listeners := make([]func(domain.QuizState), 0, len(s.listeners))
	for _, l := range s.listeners {
		listeners = append(listeners, l)
	}
	s.mu.Unlock()

	for _, l := range listeners {
		l(snap)
	}
	return nil
}

func (s *Session) broadcastLocked() domain.QuizState {
	snap := s.state.Clone()
	for ch := range s.subscribers {
		select {
		case ch <- snap:
		default:
			select {
			case <-ch:
			default:
			}
			ch <- snap
		}
	}
	return snap
}

func (s *Session) armAutoSaveLocked() {
	if s.saver == nil {
		return
	}
	if s.state.Status == domain.StatusInProgress && len(s.state.Answers) > 0 {
		s.saver.Trigger()
		return
	}
	s.saver.Cancel()
}

func (s *Session) writableLocked() error {
	if s.closed || s.state.Status.Terminal() {
		return domain.ErrQuizClosed
	}
	return nil
}

func (s *Session) startLocked() {
	if s.state.Status != domain.StatusNotStarted {
		return
	}
	s.state.Status = domain.StatusInProgress
	s.enteredAt = s.now()
	s.timer.Start(s.state.TimeSpent)
	s.logger.Debug("session: attempt started", "attempt", s.state.AttemptNumber)
}

func (s *Session) stopLocked() {
	if s.timer.Running() {
		s.state.TimeSpent = s.timer.Elapsed()
	}
	s.timer.Stop()
	if s.saver != nil {
		s.saver.Cancel()
	}
}

// freezeLocked returns one submission per configured question: the existing
// submission, a snapshot of the current answer, or a not-answered placeholder.
func (s *Session) freezeLocked(now time.Time) map[string]domain.QuestionSubmission {
	subs := make(map[string]domain.QuestionSubmission, len(s.cfg.Questions))
	for _, q := range s.cfg.Questions {
		b := q.Base()
		if sub, ok := s.state.Submissions[b.ID]; ok {
			subs[b.ID] = sub
			continue
		}
		sub := domain.QuestionSubmission{
			QuestionID:  b.ID,
			Status:      domain.SubmissionSubmitted,
			MaxScore:    b.Points,
			SubmittedAt: now,
		}
		if a, ok := s.state.Answers[b.ID]; ok {
			sub.Answer = a
		} else {
			sub.Answer = domain.QuestionAnswer{QuestionID: b.ID, AttemptNumber: s.state.AttemptNumber}
			sub.Status = domain.SubmissionNotAnswered
		}
		subs[b.ID] = sub
	}
	return subs
}

// gradeLocked grades the frozen answers in subs and commits them to the state.
// Nothing is modified when grading fails.
func (s *Session) gradeLocked(subs map[string]domain.QuestionSubmission, manualScores map[string]float64) error {
	answers := make(map[string]domain.QuestionAnswer, len(subs))
	for id, sub := range subs {
		if sub.Status != domain.SubmissionNotAnswered {
			answers[id] = sub.Answer
		}
	}

	grade, err := grading.GradeQuiz(s.cfg, answers)
	if err != nil {
		return err
	}

	graded := make(map[string]domain.QuestionSubmission, len(subs))
	total := 0.0
	for _, r := range grade.Ordered {
		if manual, ok := manualScores[r.QuestionID]; ok {
			r.Score = min(max(manual, 0), r.MaxScore)
			r.IsCorrect = r.Score == r.MaxScore
			r.IsPartiallyCorrect = r.Score > 0 && !r.IsCorrect
			r.NeedsManualGrading = false
			r.Feedback = feedbackManuallyGraded
		}

		sub := subs[r.QuestionID]
		sub.Score = r.Score
		sub.MaxScore = r.MaxScore
		sub.NeedsManualGrading = r.NeedsManualGrading
		sub.Feedback = []domain.Feedback{feedbackFor(r)}
		if sub.Status != domain.SubmissionNotAnswered {
			sub.Status = domain.SubmissionGraded
		}
		graded[r.QuestionID] = sub
		total += r.Score
	}

	s.state.Submissions = graded
	s.state.Score = &total
	s.state.Status = domain.StatusGraded
	return nil
}

func feedbackFor(r domain.GradingResult) domain.Feedback {
	kind := domain.FeedbackIncorrect
	if r.IsCorrect {
		kind = domain.FeedbackCorrect
	}
	return domain.Feedback{Kind: kind, Message: r.Feedback}
}

// resultLocked exports the state. Before grading the score fields are zero.
func (s *Session) resultLocked() domain.QuizResult {
	res := domain.QuizResult{
		QuizID:        s.cfg.ID,
		UserID:        s.userID,
		Answers:       make([]domain.QuestionAnswer, 0, len(s.state.Answers)),
		Submissions:   make([]domain.QuestionSubmission, 0, len(s.state.Submissions)),
		MaxScore:      s.state.MaxScore,
		TimeSpent:     s.state.TimeSpent,
		AttemptNumber: s.state.AttemptNumber,
	}
	for _, q := range s.cfg.Questions {
		id := q.Base().ID
		if a, ok := s.state.Answers[id]; ok {
			res.Answers = append(res.Answers, a)
		}
		if sub, ok := s.state.Submissions[id]; ok {
			res.Submissions = append(res.Submissions, sub)
		}
	}
	if s.state.Status == domain.StatusGraded && s.state.Score != nil {
		res.Score = *s.state.Score
		res.Percentage = domain.Percentage(res.Score, res.MaxScore)
		res.IsPassed = res.Percentage >= s.cfg.PassingScore
	}
	if s.state.SubmittedAt != nil {
		res.SubmittedAt = *s.state.SubmittedAt
	}
	return res
}

func (s *Session) tick(elapsed int) {
	_ = s.update(false, func() (bool, error) {
		if s.closed || s.state.Status != domain.StatusInProgress || s.state.TimeSpent == elapsed {
			return false, nil
		}
		s.state.TimeSpent = elapsed
		return true, nil
	})
}

func (s *Session) handleTimeUp() {
	changed := false
	_ = s.update(false, func() (bool, error) {
		if s.closed || s.state.Status != domain.StatusInProgress {
			return false, nil
		}
		s.timeUp = true
		s.state.TimeSpent = max(s.state.TimeSpent, s.cfg.TimeLimit)
		changed = true
		return true, nil
	})
	if !changed {
		return
	}

	s.logger.Info("session: time is up", "auto_submit", s.autoSubmit)
	if !s.autoSubmit {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeUpSubmitTimeout)
	defer cancel()
	if _, err := s.SubmitQuiz(ctx); err != nil {
		s.logger.WarnContext(ctx, "session: auto-submit failed", "error", err)
	}
}
