package validation_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"quiz-engine/internal/domain"
	"quiz-engine/internal/validation"
)

func names(rules []validation.Rule) []string {
	out := make([]string, len(rules))
	for i, r := range rules {
		out[i] = r.Name
	}
	return out
}

func TestRulesFor(t *testing.T) {
	custom := validation.Rule{Name: "custom", Message: "custom failed", Check: func(domain.Value) bool { return true }}

	tests := map[string]struct {
		question domain.Question
		opts     validation.Options
		want     []string
	}{
		"optional true false": {
			question: domain.TrueFalse{QuestionBase: domain.QuestionBase{ID: "q"}},
			want:     []string{"custom", "type"},
		},
		"required by question": {
			question: domain.TrueFalse{QuestionBase: domain.QuestionBase{ID: "q", Required: true}},
			want:     []string{"custom", "required", "type"},
		},
		"required by quiz": {
			question: domain.TrueFalse{QuestionBase: domain.QuestionBase{ID: "q"}},
			opts:     validation.Options{Required: true},
			want:     []string{"custom", "required", "type"},
		},
		"short answer with max length": {
			question: domain.ShortAnswer{QuestionBase: domain.QuestionBase{ID: "q"}, MaxLength: 5},
			want:     []string{"custom", "type", "maxLength"},
		},
		"essay with word bounds and correctness": {
			question: domain.Essay{QuestionBase: domain.QuestionBase{ID: "q"}, MinWords: 2},
			opts:     validation.Options{CheckCorrectness: true},
			want:     []string{"custom", "type", "wordCount", "correct"},
		},
	}

	for name, tt := range tests {
		tt := tt
		t.Run(name, func(t *testing.T) {
			got := validation.RulesFor(tt.question, []validation.Rule{custom}, tt.opts)
			assert.Equal(t, tt.want, names(got))
		})
	}
}

func TestEvaluate(t *testing.T) {
	short := domain.ShortAnswer{
		QuestionBase:    domain.QuestionBase{ID: "q", Required: true},
		AcceptedAnswers: []string{"go"},
		MaxLength:       5,
	}
	rules := validation.RulesFor(short, nil, validation.Options{CheckCorrectness: true})

	tests := map[string]struct {
		value domain.Value
		want  []string
	}{
		"correct": {value: domain.Text("Go"), want: nil},
		"empty": {
			value: domain.Text(" "),
			want:  []string{"An answer is required", "Answer is not correct"},
		},
		"too long and wrong": {
			value: domain.Text("golang"),
			want:  []string{"Answer must be at most 5 characters", "Answer is not correct"},
		},
		"wrong kind": {
			value: domain.Bool(true),
			want:  []string{"Answer does not fit a short-answer question", "Answer is not correct"},
		},
	}

	for name, tt := range tests {
		tt := tt
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tt.want, validation.Default.Validate(rules, tt.value))
		})
	}
}

func TestEssayWordCount(t *testing.T) {
	essay := domain.Essay{QuestionBase: domain.QuestionBase{ID: "e"}, MinWords: 2, MaxWords: 3}
	rules := validation.RulesFor(essay, nil, validation.Options{})

	assert.Empty(t, validation.Evaluate(rules, domain.Text("two words")))
	assert.Equal(t, []string{"Answer must be between 2 and 3 words"}, validation.Evaluate(rules, domain.Text("one")))
	assert.Equal(t, []string{"Answer must be between 2 and 3 words"}, validation.Evaluate(rules, domain.Text("a b c d")))
	assert.Empty(t, validation.Evaluate(rules, nil))
}

func TestEvaluateSkipsRulesWithoutCheck(t *testing.T) {
	assert.Empty(t, validation.Evaluate([]validation.Rule{{Name: "noop", Message: "never"}}, domain.Text("x")))
}
