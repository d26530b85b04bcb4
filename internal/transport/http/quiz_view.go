package http

import (
	"quiz-engine/internal/domain"
	"quiz-engine/internal/shuffle"
)

// quizView is the quiz as a client sees it: presentation order, no answer keys
// unless the quiz shows correct answers.
type quizView struct {
	ID                 string                `json:"id"`
	Title              string                `json:"title"`
	SubmissionMode     domain.SubmissionMode `json:"submissionMode,omitempty"`
	AllowNavigation    bool                  `json:"allowNavigation"`
	AllowSkip          bool                  `json:"allowSkip"`
	AllowReview        bool                  `json:"allowReview"`
	RequireAllAnswered bool                  `json:"requireAllAnswered"`
	TimeLimit          int                   `json:"timeLimit,omitempty"`
	PassingScore       float64               `json:"passingScore,omitempty"`
	ShowScore          bool                  `json:"showScore"`
	ShowCorrectAnswers bool                  `json:"showCorrectAnswers"`
	MaxAttempts        int                   `json:"maxAttempts,omitempty"`
	MaxScore           float64               `json:"maxScore"`
	Questions          []questionView        `json:"questions"`
}

type questionView struct {
	Type        domain.QuestionType `json:"type"`
	ID          string              `json:"id"`
	Prompt      string              `json:"prompt"`
	Points      float64             `json:"points"`
	MaxAttempts int                 `json:"maxAttempts,omitempty"`
	TimeLimit   int                 `json:"timeLimit,omitempty"`
	Required    bool                `json:"required,omitempty"`

	Options     []optionView `json:"options,omitempty"`
	MultiSelect bool         `json:"multiSelect,omitempty"`

	CorrectAnswer   *bool    `json:"correctAnswer,omitempty"`
	AcceptedAnswers []string `json:"acceptedAnswers,omitempty"`
	MaxLength       int      `json:"maxLength,omitempty"`

	MinWords int `json:"minWords,omitempty"`
	MaxWords int `json:"maxWords,omitempty"`

	Segments []segmentView `json:"segments,omitempty"`

	Left  []matchItem `json:"left,omitempty"`
	Right []string    `json:"right,omitempty"`
	// Pairs maps left IDs to their right value; only sent with correct answers.
	Pairs map[string]string `json:"pairs,omitempty"`
}

type optionView struct {
	ID      string `json:"id"`
	Text    string `json:"text"`
	Correct *bool  `json:"correct,omitempty"`
}

type segmentView struct {
	Kind            domain.SegmentKind `json:"kind"`
	ID              string             `json:"id,omitempty"`
	Text            string             `json:"text,omitempty"`
	AcceptedAnswers []string           `json:"acceptedAnswers,omitempty"`
}

type matchItem struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

func viewOf(cfg domain.QuizConfig) quizView {
	v := quizView{
		ID:                 cfg.ID,
		Title:              cfg.Title,
		SubmissionMode:     cfg.SubmissionMode,
		AllowNavigation:    cfg.AllowNavigation,
		AllowSkip:          cfg.AllowSkip,
		AllowReview:        cfg.AllowReview,
		RequireAllAnswered: cfg.RequireAllAnswered,
		TimeLimit:          cfg.TimeLimit,
		PassingScore:       cfg.PassingScore,
		ShowScore:          cfg.ShowScore,
		ShowCorrectAnswers: cfg.ShowCorrectAnswers,
		MaxAttempts:        cfg.MaxAttempts,
		MaxScore:           cfg.MaxScore(),
		Questions:          make([]questionView, 0, len(cfg.Questions)),
	}
	for _, q := range cfg.Questions {
		v.Questions = append(v.Questions, questionViewOf(q, cfg.ShowCorrectAnswers))
	}
	return v
}

func questionViewOf(q domain.Question, reveal bool) questionView {
	b := q.Base()
	v := questionView{
		Type:        q.Type(),
		ID:          b.ID,
		Prompt:      b.Prompt,
		Points:      b.Points,
		MaxAttempts: b.MaxAttempts,
		TimeLimit:   b.TimeLimit,
		Required:    b.Required,
	}

	switch q := q.(type) {
	case domain.MultipleChoice:
		v.MultiSelect = q.MultiSelect
		v.Options = make([]optionView, len(q.Options))
		for i, o := range q.Options {
			v.Options[i] = optionView{ID: o.ID, Text: o.Text}
			if reveal {
				v.Options[i].Correct = &o.Correct
			}
		}
	case domain.TrueFalse:
		if reveal {
			v.CorrectAnswer = &q.CorrectAnswer
		}
	case domain.ShortAnswer:
		v.MaxLength = q.MaxLength
		if reveal {
			v.AcceptedAnswers = q.AcceptedAnswers
		}
	case domain.Essay:
		v.MinWords, v.MaxWords = q.MinWords, q.MaxWords
	case domain.FillInBlank:
		v.Segments = make([]segmentView, len(q.Segments))
		for i, s := range q.Segments {
			v.Segments[i] = segmentView{Kind: s.Kind, ID: s.ID, Text: s.Text}
			if reveal {
				v.Segments[i].AcceptedAnswers = s.AcceptedAnswers
			}
		}
	case domain.Matching:
		v.Left = make([]matchItem, len(q.Pairs))
		for i, p := range q.Pairs {
			v.Left[i] = matchItem{ID: p.ID, Text: p.Left}
		}
		v.Right = shuffle.MatchingRightColumn(q)
		if reveal {
			v.Pairs = make(map[string]string, len(q.Pairs))
			for _, p := range q.Pairs {
				v.Pairs[p.ID] = p.Right
			}
		}
	}
	return v
}
