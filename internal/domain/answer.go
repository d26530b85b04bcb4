package domain

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// ValueKind is the discriminator of an answer value.
type ValueKind string

const (
	KindChoice  ValueKind = "choice"
	KindChoices ValueKind = "choices"
	KindBool    ValueKind = "bool"
	KindText    ValueKind = "text"
	KindBlanks  ValueKind = "blanks"
	KindPairs   ValueKind = "pairs"
)

// Value is the type-tagged payload of an answer.
type Value interface {
	Kind() ValueKind
	// Empty reports whether the value counts as "no answer".
	Empty() bool
}

// Choice is a single selected option ID.
type Choice string

// Choices is a set of selected option IDs.
type Choices []string

type Bool bool

type Text string

// Blanks maps a blank segment ID to the text typed into it.
type Blanks map[string]string

// Pairs maps the left ID of a matching pair to the chosen right value.
type Pairs map[string]string

func (Choice) Kind() ValueKind  { return KindChoice }
func (Choices) Kind() ValueKind { return KindChoices }
func (Bool) Kind() ValueKind    { return KindBool }
func (Text) Kind() ValueKind    { return KindText }
func (Blanks) Kind() ValueKind  { return KindBlanks }
func (Pairs) Kind() ValueKind   { return KindPairs }

func (v Choice) Empty() bool  { return v == "" }
func (v Choices) Empty() bool { return len(v) == 0 }
func (Bool) Empty() bool      { return false }
func (v Text) Empty() bool    { return strings.TrimSpace(string(v)) == "" }
func (v Blanks) Empty() bool  { return !anyNonEmpty(v) }
func (v Pairs) Empty() bool   { return !anyNonEmpty(v) }

func anyNonEmpty(m map[string]string) bool {
	for _, s := range m {
		if strings.TrimSpace(s) != "" {
			return true
		}
	}
	return false
}

// IsEmptyValue treats a nil value as empty.
func IsEmptyValue(v Value) bool {
	return v == nil || v.Empty()
}

// QuestionAnswer is the current answer of one question. It is replaced, never merged, on edit.
type QuestionAnswer struct {
	QuestionID    string
	Value         Value
	IsAnswered    bool
	AttemptNumber int
	TimeSpent     int // seconds
	UpdatedAt     time.Time
}

// NewAnswer builds an answer and derives IsAnswered from the value.
func NewAnswer(questionID string, v Value, attempt int, timeSpent int, at time.Time) QuestionAnswer {
	return QuestionAnswer{
		QuestionID:    questionID,
		Value:         v,
		IsAnswered:    !IsEmptyValue(v),
		AttemptNumber: attempt,
		TimeSpent:     timeSpent,
		UpdatedAt:     at,
	}
}

type answerJSON struct {
	QuestionID    string          `json:"questionId"`
	Type          ValueKind       `json:"type,omitempty"`
	Value         json.RawMessage `json:"value"`
	IsAnswered    bool            `json:"isAnswered"`
	AttemptNumber int             `json:"attemptNumber"`
	TimeSpent     int             `json:"timeSpent"`
	UpdatedAt     time.Time       `json:"updatedAt"`
}

func (a QuestionAnswer) MarshalJSON() ([]byte, error) {
	out := answerJSON{
		QuestionID:    a.QuestionID,
		IsAnswered:    a.IsAnswered,
		AttemptNumber: a.AttemptNumber,
		TimeSpent:     a.TimeSpent,
		UpdatedAt:     a.UpdatedAt,
		Value:         json.RawMessage("null"),
	}
	if a.Value != nil {
		raw, err := json.Marshal(a.Value)
		if err != nil {
			return nil, err
		}
		out.Type = a.Value.Kind()
		out.Value = raw
	}
	return json.Marshal(out)
}

func (a *QuestionAnswer) UnmarshalJSON(data []byte) error {
	var in answerJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	v, err := DecodeValue(in.Type, in.Value)
	if err != nil {
		return fmt.Errorf("answer %s: %w", in.QuestionID, err)
	}
	*a = QuestionAnswer{
		QuestionID:    in.QuestionID,
		Value:         v,
		IsAnswered:    in.IsAnswered,
		AttemptNumber: in.AttemptNumber,
		TimeSpent:     in.TimeSpent,
		UpdatedAt:     in.UpdatedAt,
	}
	return nil
}

// DecodeValue decodes a raw JSON value of the given kind. An empty kind or a null value yields nil.
func DecodeValue(kind ValueKind, raw json.RawMessage) (Value, error) {
	if kind == "" || len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}

	switch kind {
	case KindChoice:
		return decodeValue[Choice](raw)
	case KindChoices:
		return decodeValue[Choices](raw)
	case KindBool:
		return decodeValue[Bool](raw)
	case KindText:
		return decodeValue[Text](raw)
	case KindBlanks:
		return decodeValue[Blanks](raw)
	case KindPairs:
		return decodeValue[Pairs](raw)
	default:
		return nil, fmt.Errorf("%w: unknown value kind %q", ErrAnswerTypeMismatch, kind)
	}
}

func decodeValue[T Value](raw json.RawMessage) (Value, error) {
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, err
	}
	return v, nil
}
