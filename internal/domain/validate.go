package domain

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// Validate checks the quiz definition. Every failure wraps ErrInvalidConfig.
func (c QuizConfig) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("%w: quiz %q: %v", ErrInvalidConfig, c.ID, err)
	}
	if len(c.Questions) == 0 {
		return fmt.Errorf("%w: quiz %q has no questions", ErrInvalidConfig, c.ID)
	}

	seen := make(map[string]struct{}, len(c.Questions))
	var errs []error
	for i, q := range c.Questions {
		if q == nil {
			errs = append(errs, fmt.Errorf("question %d is nil", i))
			continue
		}
		id := q.Base().ID
		if _, dup := seen[id]; dup {
			errs = append(errs, fmt.Errorf("duplicate question id %q", id))
		}
		seen[id] = struct{}{}

		if err := ValidateQuestion(q); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: quiz %q: %w", ErrInvalidConfig, c.ID, errors.Join(errs...))
	}
	return nil
}

// ValidateQuestion checks the variant-specific correctness data of a question.
func ValidateQuestion(q Question) error {
	base := q.Base()
	if err := validate.Struct(base); err != nil {
		return fmt.Errorf("question %q: %v", base.ID, err)
	}

	switch q := q.(type) {
	case MultipleChoice:
		if len(q.Options) == 0 {
			return fmt.Errorf("question %q: no options", base.ID)
		}
		if len(q.CorrectOptions()) == 0 {
			return fmt.Errorf("question %q: no correct option", base.ID)
		}
	case FillInBlank:
		if len(q.Blanks()) == 0 {
			return fmt.Errorf("question %q: no blanks", base.ID)
		}
	case Matching:
		if len(q.Pairs) == 0 {
			return fmt.Errorf("question %q: no pairs", base.ID)
		}
	case TrueFalse, ShortAnswer, Essay:
	default:
		return fmt.Errorf("question %q: %w", base.ID, ErrUnknownQuestionType)
	}
	return nil
}
