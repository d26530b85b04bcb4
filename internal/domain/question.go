package domain

import (
	"encoding/json"
	"fmt"
)

// QuestionType is the discriminator of a question variant.
type QuestionType string

const (
	TypeMultipleChoice QuestionType = "multiple-choice"
	TypeTrueFalse      QuestionType = "true-false"
	TypeShortAnswer    QuestionType = "short-answer"
	TypeEssay          QuestionType = "essay"
	TypeFillInBlank    QuestionType = "fill-in-blank"
	TypeMatching       QuestionType = "matching"
)

// Question is the immutable definition of one quiz question.
// The set of implementations is closed: MultipleChoice, TrueFalse, ShortAnswer,
// Essay, FillInBlank and Matching.
type Question interface {
	Base() QuestionBase
	Type() QuestionType
	isQuestion()
}

// QuestionBase holds the fields shared by every question variant.
type QuestionBase struct {
	ID          string  `json:"id" validate:"required"`
	Prompt      string  `json:"prompt"`
	Points      float64 `json:"points" validate:"gte=0"`
	MaxAttempts int     `json:"maxAttempts,omitempty" validate:"gte=0"`
	TimeLimit   int     `json:"timeLimit,omitempty" validate:"gte=0"` // seconds
	Required    bool    `json:"required,omitempty"`
}

func (b QuestionBase) Base() QuestionBase { return b }
func (QuestionBase) isQuestion()           {}

// Option is a selectable answer of a multiple choice question.
type Option struct {
	ID      string `json:"id"`
	Text    string `json:"text"`
	Correct bool   `json:"correct"`
}

type MultipleChoice struct {
	QuestionBase
	Options        []Option `json:"options"`
	MultiSelect    bool     `json:"multiSelect,omitempty"`
	ShuffleOptions bool     `json:"shuffleOptions,omitempty"`
}

func (MultipleChoice) Type() QuestionType { return TypeMultipleChoice }

// CorrectOptions returns the set of option IDs flagged as correct.
func (q MultipleChoice) CorrectOptions() map[string]struct{} {
	set := make(map[string]struct{})
	for _, o := range q.Options {
		if o.Correct {
			set[o.ID] = struct{}{}
		}
	}
	return set
}

type TrueFalse struct {
	QuestionBase
	CorrectAnswer bool `json:"correctAnswer"`
}

func (TrueFalse) Type() QuestionType { return TypeTrueFalse }

type ShortAnswer struct {
	QuestionBase
	AcceptedAnswers []string `json:"acceptedAnswers,omitempty"`
	CaseSensitive   bool     `json:"caseSensitive,omitempty"`
	TrimWhitespace  bool     `json:"trimWhitespace,omitempty"`
	MaxLength       int      `json:"maxLength,omitempty"`
}

func (ShortAnswer) Type() QuestionType { return TypeShortAnswer }

type Essay struct {
	QuestionBase
	MinWords int `json:"minWords,omitempty"`
	MaxWords int `json:"maxWords,omitempty"`
}

func (Essay) Type() QuestionType { return TypeEssay }

// SegmentKind tells plain text apart from an input blank in a fill-in-blank question.
type SegmentKind string

const (
	SegmentText  SegmentKind = "text"
	SegmentBlank SegmentKind = "blank"
)

type Segment struct {
	Kind            SegmentKind `json:"kind"`
	ID              string      `json:"id,omitempty"`
	Text            string      `json:"text,omitempty"`
	AcceptedAnswers []string    `json:"acceptedAnswers,omitempty"`
	CaseSensitive   bool        `json:"caseSensitive,omitempty"`
}

type FillInBlank struct {
	QuestionBase
	Segments []Segment `json:"segments"`
}

func (FillInBlank) Type() QuestionType { return TypeFillInBlank }

// Blanks returns only the blank segments, in order.
func (q FillInBlank) Blanks() []Segment {
	blanks := make([]Segment, 0, len(q.Segments))
	for _, s := range q.Segments {
		if s.Kind == SegmentBlank {
			blanks = append(blanks, s)
		}
	}
	return blanks
}

// Pair is one left/right association of a matching question. ID identifies the left side.
type Pair struct {
	ID    string `json:"id"`
	Left  string `json:"left"`
	Right string `json:"right"`
}

type Matching struct {
	QuestionBase
	Pairs        []Pair `json:"pairs"`
	ShufflePairs bool   `json:"shufflePairs,omitempty"`
}

func (Matching) Type() QuestionType { return TypeMatching }

func (q MultipleChoice) MarshalJSON() ([]byte, error) {
	type alias MultipleChoice
	return json.Marshal(struct {
		Type QuestionType `json:"type"`
		alias
	}{q.Type(), alias(q)})
}

func (q TrueFalse) MarshalJSON() ([]byte, error) {
	type alias TrueFalse
	return json.Marshal(struct {
		Type QuestionType `json:"type"`
		alias
	}{q.Type(), alias(q)})
}

func (q ShortAnswer) MarshalJSON() ([]byte, error) {
	type alias ShortAnswer
	return json.Marshal(struct {
		Type QuestionType `json:"type"`
		alias
	}{q.Type(), alias(q)})
}

func (q Essay) MarshalJSON() ([]byte, error) {
	type alias Essay
	return json.Marshal(struct {
		Type QuestionType `json:"type"`
		alias
	}{q.Type(), alias(q)})
}

func (q FillInBlank) MarshalJSON() ([]byte, error) {
	type alias FillInBlank
	return json.Marshal(struct {
		Type QuestionType `json:"type"`
		alias
	}{q.Type(), alias(q)})
}

func (q Matching) MarshalJSON() ([]byte, error) {
	type alias Matching
	return json.Marshal(struct {
		Type QuestionType `json:"type"`
		alias
	}{q.Type(), alias(q)})
}

// QuestionList is an ordered list of questions that decodes its variants from the "type" field.
type QuestionList []Question

func (l *QuestionList) UnmarshalJSON(data []byte) error {
	var raws []json.RawMessage
	if err := json.Unmarshal(data, &raws); err != nil {
		return err
	}
	out := make(QuestionList, 0, len(raws))
	for i, raw := range raws {
		q, err := DecodeQuestion(raw)
		if err != nil {
			return fmt.Errorf("question %d: %w", i, err)
		}
		out = append(out, q)
	}
	*l = out
	return nil
}

// DecodeQuestion decodes a single tagged question.
func DecodeQuestion(raw []byte) (Question, error) {
	var head struct {
		Type QuestionType `json:"type"`
	}
	if err := json.Unmarshal(raw, &head); err != nil {
		return nil, err
	}

	switch head.Type {
	case TypeMultipleChoice:
		return decodeAs[MultipleChoice](raw)
	case TypeTrueFalse:
		return decodeAs[TrueFalse](raw)
	case TypeShortAnswer:
		return decodeAs[ShortAnswer](raw)
	case TypeEssay:
		return decodeAs[Essay](raw)
	case TypeFillInBlank:
		return decodeAs[FillInBlank](raw)
	case TypeMatching:
		return decodeAs[Matching](raw)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownQuestionType, head.Type)
	}
}

func decodeAs[T Question](raw []byte) (Question, error) {
	var q T
	if err := json.Unmarshal(raw, &q); err != nil {
		return nil, err
	}
	return q, nil
}
