package domain

import "time"

// SubmissionMode controls whether answers are submitted per question, per quiz, or both.
type SubmissionMode string

const (
	SubmitQuestionLevel SubmissionMode = "question-level"
	SubmitQuizLevel     SubmissionMode = "quiz-level"
	SubmitHybrid        SubmissionMode = "hybrid"
)

// QuizConfig is the caller-supplied definition of a quiz and its policies.
type QuizConfig struct {
	ID                 string         `json:"id" validate:"required"`
	Title              string         `json:"title"`
	Questions          QuestionList   `json:"questions"`
	SubmissionMode     SubmissionMode `json:"submissionMode,omitempty" validate:"omitempty,oneof=question-level quiz-level hybrid"`
	AllowNavigation    bool           `json:"allowNavigation"`
	AllowSkip          bool           `json:"allowSkip"`
	ShuffleQuestions   bool           `json:"shuffleQuestions"`
	TimeLimit          int            `json:"timeLimit,omitempty" validate:"gte=0"` // seconds, 0 = none
	RequireAllAnswered bool           `json:"requireAllAnswered"`
	AllowReview        bool           `json:"allowReview"`
	PassingScore       float64        `json:"passingScore,omitempty" validate:"gte=0,lte=100"`
	ShowScore          bool           `json:"showScore"`
	ShowCorrectAnswers bool           `json:"showCorrectAnswers"`
	MaxAttempts        int            `json:"maxAttempts,omitempty" validate:"gte=0"` // 0 = unlimited
	// ManualGrading stops submission at StatusSubmitted; scoring then happens through a later Grade call.
	ManualGrading bool `json:"manualGrading,omitempty"`
}

// MaxScore is the sum of every question's points.
func (c QuizConfig) MaxScore() float64 {
	var total float64
	for _, q := range c.Questions {
		total += q.Base().Points
	}
	return total
}

// Question looks a question up by ID.
func (c QuizConfig) Question(id string) (Question, bool) {
	for _, q := range c.Questions {
		if q.Base().ID == id {
			return q, true
		}
	}
	return nil, false
}

// Status is the lifecycle state of a quiz attempt.
type Status string

const (
	StatusNotStarted Status = "not-started"
	StatusInProgress Status = "in-progress"
	StatusSubmitted  Status = "submitted"
	StatusGraded     Status = "graded"
)

// Terminal reports whether no further answer changes are accepted.
func (s Status) Terminal() bool {
	return s == StatusSubmitted || s == StatusGraded
}

// SubmissionStatus describes one question's submission record.
type SubmissionStatus string

const (
	SubmissionSubmitted   SubmissionStatus = "submitted"
	SubmissionNotAnswered SubmissionStatus = "not-answered"
	SubmissionGraded      SubmissionStatus = "graded"
)

type FeedbackKind string

const (
	FeedbackCorrect   FeedbackKind = "correct"
	FeedbackIncorrect FeedbackKind = "incorrect"
)

type Feedback struct {
	Kind    FeedbackKind `json:"type"`
	Message string       `json:"message"`
}

// QuestionSubmission is the frozen snapshot of an answer at submit time.
type QuestionSubmission struct {
	QuestionID         string           `json:"questionId"`
	Answer             QuestionAnswer   `json:"answer"`
	Status             SubmissionStatus `json:"status"`
	Score              float64          `json:"score"`
	MaxScore           float64          `json:"maxScore"`
	Feedback           []Feedback       `json:"feedback,omitempty"`
	NeedsManualGrading bool             `json:"needsManualGrading,omitempty"`
	SubmittedAt        time.Time        `json:"submittedAt"`
}

// GradingResult is the outcome of grading a single question.
type GradingResult struct {
	QuestionID         string  `json:"questionId"`
	IsCorrect          bool    `json:"isCorrect"`
	IsPartiallyCorrect bool    `json:"isPartiallyCorrect"`
	Score              float64 `json:"score"`
	MaxScore           float64 `json:"maxScore"`
	Feedback           string  `json:"feedback,omitempty"`
	NeedsManualGrading bool    `json:"needsManualGrading,omitempty"`
}

// QuizGrade aggregates the grading of every configured question.
type QuizGrade struct {
	TotalScore float64
	MaxScore   float64
	Percentage float64
	// Results is keyed by question ID; Ordered follows the quiz's question order.
	Results map[string]GradingResult
	Ordered []GradingResult
}

// QuizState is the authoritative state of one quiz attempt.
type QuizState struct {
	QuizID               string                        `json:"quizId"`
	CurrentQuestionIndex int                           `json:"currentQuestionIndex"`
	Answers              map[string]QuestionAnswer     `json:"answers"`
	Submissions          map[string]QuestionSubmission `json:"submissions"`
	Status               Status                        `json:"status"`
	AttemptNumber        int                           `json:"attemptNumber"`
	TimeSpent            int                           `json:"timeSpent"` // seconds
	MaxScore             float64                       `json:"maxScore"`
	Score                *float64                      `json:"score,omitempty"`
	SubmittedAt          *time.Time                    `json:"submittedAt,omitempty"`
}

// Clone returns a deep copy safe to hand out to other goroutines.
func (s QuizState) Clone() QuizState {
	out := s
	out.Answers = make(map[string]QuestionAnswer, len(s.Answers))
	for k, v := range s.Answers {
		out.Answers[k] = v
	}
	out.Submissions = make(map[string]QuestionSubmission, len(s.Submissions))
	for k, v := range s.Submissions {
		out.Submissions[k] = v
	}
	if s.Score != nil {
		score := *s.Score
		out.Score = &score
	}
	if s.SubmittedAt != nil {
		at := *s.SubmittedAt
		out.SubmittedAt = &at
	}
	return out
}

// QuizResult is the exported, persisted outcome of an attempt.
// The JSON field names are the storage compatibility surface.
type QuizResult struct {
	QuizID        string               `json:"quizId"`
	UserID        string               `json:"userId,omitempty"`
	Answers       []QuestionAnswer     `json:"answers"`
	Submissions   []QuestionSubmission `json:"submissions"`
	Score         float64              `json:"score"`
	MaxScore      float64              `json:"maxScore"`
	Percentage    float64              `json:"percentage"`
	IsPassed      bool                 `json:"isPassed"`
	TimeSpent     int                  `json:"timeSpent"`
	AttemptNumber int                  `json:"attemptNumber"`
	SubmittedAt   time.Time            `json:"submittedAt"`
}

// Partial reports whether the result was saved before the quiz was submitted.
func (r QuizResult) Partial() bool {
	return r.SubmittedAt.IsZero()
}

// LoadedResult is a result as returned by a result store.
type LoadedResult struct {
	QuizResult
	SavedAt time.Time `json:"savedAt"`
}

// ResultQuery addresses stored results. An empty UserID is the anonymous user;
// AttemptNumber 0 means "latest" on load and "every attempt" on delete.
type ResultQuery struct {
	QuizID        string
	UserID        string
	AttemptNumber int
}

// Percentage returns score/maxScore*100, or 0 when maxScore is 0.
func Percentage(score, maxScore float64) float64 {
	if maxScore <= 0 {
		return 0
	}
	return score / maxScore * 100
}

// Progress is derived from a QuizState; it is never stored.
type Progress struct {
	TotalQuestions    int     `json:"totalQuestions"`
	AnsweredQuestions int     `json:"answeredQuestions"`
	PercentComplete   float64 `json:"percentComplete"`
	TimeSpent         int     `json:"timeSpent"`
	TimeRemaining     *int    `json:"timeRemaining,omitempty"`
}

// Stats summarises every stored attempt of a quiz for one user.
type Stats struct {
	QuizID         string  `json:"quizId"`
	UserID         string  `json:"userId,omitempty"`
	TotalAttempts  int     `json:"totalAttempts"`
	BestScore      float64 `json:"bestScore"`
	AverageScore   float64 `json:"averageScore"`
	BestPercentage float64 `json:"bestPercentage"`
	LastAttempt    int     `json:"lastAttempt"`
}
