// Package validation builds per-question answer rules for a rule-based validator.
package validation

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"quiz-engine/internal/domain"
	"quiz-engine/internal/grading"
)

var validate = validator.New()

// Rule is one named check applied to an answer value. Check reports whether the value passes.
type Rule struct {
	Name    string
	Message string
	Check   func(v domain.Value) bool
}

// Validator evaluates a set of rules and returns the messages of failed rules.
type Validator interface {
	Validate(rules []Rule, v domain.Value) []string
}

// ValidatorFunc adapts a function to Validator.
type ValidatorFunc func(rules []Rule, v domain.Value) []string

func (f ValidatorFunc) Validate(rules []Rule, v domain.Value) []string { return f(rules, v) }

// Default runs Evaluate.
var Default Validator = ValidatorFunc(Evaluate)

// Evaluate runs every rule in order. A rule without a Check always passes.
func Evaluate(rules []Rule, v domain.Value) []string {
	var errs []string
	for _, r := range rules {
		if r.Check == nil || r.Check(v) {
			continue
		}
		errs = append(errs, r.Message)
	}
	return errs
}

type Options struct {
	// Required adds a "required" rule even when the question itself is optional.
	Required bool
	// CheckCorrectness adds a rule that fails unless the answer earns full credit.
	CheckCorrectness bool
}

// RulesFor returns base plus the rules implied by the question definition.
func RulesFor(q domain.Question, base []Rule, opts Options) []Rule {
	rules := make([]Rule, 0, len(base)+4)
	rules = append(rules, base...)

	b := q.Base()
	if b.Required || opts.Required {
		rules = append(rules, Rule{
			Name:    "required",
			Message: "An answer is required",
			Check:   func(v domain.Value) bool { return !domain.IsEmptyValue(v) },
		})
	}

	rules = append(rules, Rule{
		Name:    "type",
		Message: fmt.Sprintf("Answer does not fit a %s question", q.Type()),
		Check:   func(v domain.Value) bool { return v == nil || Accepts(q, v) },
	})

	switch q := q.(type) {
	case domain.ShortAnswer:
		if q.MaxLength > 0 {
			rules = append(rules, Rule{
				Name:    "maxLength",
				Message: fmt.Sprintf("Answer must be at most %d characters", q.MaxLength),
				Check: func(v domain.Value) bool {
					t, ok := v.(domain.Text)
					return !ok || validate.Var(string(t), fmt.Sprintf("max=%d", q.MaxLength)) == nil
				},
			})
		}
	case domain.Essay:
		if q.MinWords > 0 || q.MaxWords > 0 {
			rules = append(rules, Rule{
				Name:    "wordCount",
				Message: wordCountMessage(q.MinWords, q.MaxWords),
				Check: func(v domain.Value) bool {
					t, ok := v.(domain.Text)
					if !ok || t.Empty() {
						return true
					}
					n := len(strings.Fields(string(t)))
					return n >= q.MinWords && (q.MaxWords == 0 || n <= q.MaxWords)
				},
			})
		}
	}

	if opts.CheckCorrectness {
		rules = append(rules, Rule{
			Name:    "correct",
			Message: "Answer is not correct",
			Check: func(v domain.Value) bool {
				a := domain.NewAnswer(b.ID, v, 1, 0, time.Time{})
				res, err := grading.GradeQuestion(q, &a)
				return err == nil && res.IsCorrect
			},
		})
	}

	return rules
}

func wordCountMessage(lo, hi int) string {
	switch {
	case lo > 0 && hi > 0:
		return fmt.Sprintf("Answer must be between %d and %d words", lo, hi)
	case lo > 0:
		return fmt.Sprintf("Answer must be at least %d words", lo)
	default:
		return fmt.Sprintf("Answer must be at most %d words", hi)
	}
}

// Accepts reports whether v is a value kind the question can grade.
func Accepts(q domain.Question, v domain.Value) bool {
	switch q.(type) {
	case domain.MultipleChoice:
		return v.Kind() == domain.KindChoice || v.Kind() == domain.KindChoices
	case domain.TrueFalse:
		return v.Kind() == domain.KindBool
	case domain.ShortAnswer, domain.Essay:
		return v.Kind() == domain.KindText
	case domain.FillInBlank:
		return v.Kind() == domain.KindBlanks
	case domain.Matching:
		return v.Kind() == domain.KindPairs
	default:
		return false
	}
}
