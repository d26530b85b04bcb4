// Package grading scores answers against question definitions.
// Every function is pure; the same inputs always produce the same result.
package grading

import (
	"fmt"
	"math"

	"quiz-engine/internal/domain"
)

const (
	FeedbackNoAnswer = "No answer provided"
	FeedbackCorrect  = "Correct!"
	FeedbackWrong    = "Incorrect"
	FeedbackManual   = "This question requires manual grading"
)

// GradeQuestion scores one answer. A nil or unanswered answer always yields the
// "no answer" result. An answer value that does not fit the question variant is a
// configuration error and is returned as ErrAnswerTypeMismatch.
func GradeQuestion(q domain.Question, a *domain.QuestionAnswer) (domain.GradingResult, error) {
	base := q.Base()
	if a == nil || !a.IsAnswered || domain.IsEmptyValue(a.Value) {
		return noAnswer(base), nil
	}

	switch q := q.(type) {
	case domain.MultipleChoice:
		if q.MultiSelect {
			return gradeMultiSelect(q, a.Value)
		}
		return gradeSingleSelect(q, a.Value)
	case domain.TrueFalse:
		return gradeTrueFalse(q, a.Value)
	case domain.ShortAnswer:
		return gradeShortAnswer(q, a.Value)
	case domain.Essay:
		return manual(base), nil
	case domain.FillInBlank:
		return gradeFillInBlank(q, a.Value)
	case domain.Matching:
		return gradeMatching(q, a.Value)
	default:
		return domain.GradingResult{}, fmt.Errorf("grade %q: %w", base.ID, domain.ErrUnknownQuestionType)
	}
}

// GradeQuiz grades every configured question, answered or not.
func GradeQuiz(cfg domain.QuizConfig, answers map[string]domain.QuestionAnswer) (domain.QuizGrade, error) {
	g := domain.QuizGrade{
		Results: make(map[string]domain.GradingResult, len(cfg.Questions)),
		Ordered: make([]domain.GradingResult, 0, len(cfg.Questions)),
	}

	for _, q := range cfg.Questions {
		var ans *domain.QuestionAnswer
		if a, ok := answers[q.Base().ID]; ok {
			ans = &a
		}

		res, err := GradeQuestion(q, ans)
		if err != nil {
			return domain.QuizGrade{}, err
		}

		g.TotalScore += res.Score
		g.MaxScore += q.Base().Points
		g.Results[res.QuestionID] = res
		g.Ordered = append(g.Ordered, res)
	}

	g.Percentage = domain.Percentage(g.TotalScore, g.MaxScore)
	return g, nil
}

func gradeSingleSelect(q domain.MultipleChoice, v domain.Value) (domain.GradingResult, error) {
	selected, err := selection(q.Base().ID, v)
	if err != nil {
		return domain.GradingResult{}, err
	}

	correct := q.CorrectOptions()
	if len(selected) == 1 {
		if _, ok := correct[selected[0]]; ok {
			return full(q.Base()), nil
		}
	}
	return wrong(q.Base()), nil
}

// gradeMultiSelect awards correct/C and deducts incorrect/C, where C is the number of
// correct options, so that selecting everything does not earn partial credit.
func gradeMultiSelect(q domain.MultipleChoice, v domain.Value) (domain.GradingResult, error) {
	selected, err := selection(q.Base().ID, v)
	if err != nil {
		return domain.GradingResult{}, err
	}

	correctSet := q.CorrectOptions()
	total := len(correctSet)
	if total == 0 {
		return domain.GradingResult{}, fmt.Errorf("grade %q: %w: no correct options", q.Base().ID, domain.ErrInvalidConfig)
	}

	var correct, incorrect int
	for id := range toSet(selected) {
		if _, ok := correctSet[id]; ok {
			correct++
		} else {
			incorrect++
		}
	}

	if correct == total && incorrect == 0 {
		return full(q.Base()), nil
	}

	fraction := math.Max(0, float64(correct)/float64(total)-float64(incorrect)/float64(total))
	res := domain.GradingResult{
		QuestionID:         q.Base().ID,
		IsPartiallyCorrect: correct > 0,
		Score:              fraction * q.Base().Points,
		MaxScore:           q.Base().Points,
		Feedback:           FeedbackWrong,
	}
	if res.IsPartiallyCorrect {
		res.Feedback = fmt.Sprintf("Partially correct (%d/%d correct, %d incorrect)", correct, total, incorrect)
	}
	return res, nil
}

func gradeTrueFalse(q domain.TrueFalse, v domain.Value) (domain.GradingResult, error) {
	b, ok := v.(domain.Bool)
	if !ok {
		return domain.GradingResult{}, mismatch(q, v)
	}
	if bool(b) == q.CorrectAnswer {
		return full(q.Base()), nil
	}
	return wrong(q.Base()), nil
}

func gradeShortAnswer(q domain.ShortAnswer, v domain.Value) (domain.GradingResult, error) {
	t, ok := v.(domain.Text)
	if !ok {
		return domain.GradingResult{}, mismatch(q, v)
	}
	if len(q.AcceptedAnswers) == 0 {
		return manual(q.Base()), nil
	}

	norm := func(s string) string { return normalizeShortAnswer(s, q.TrimWhitespace, q.CaseSensitive) }
	user := norm(string(t))
	for _, accepted := range q.AcceptedAnswers {
		if norm(accepted) == user {
			return full(q.Base()), nil
		}
	}
	return wrong(q.Base()), nil
}

func gradeFillInBlank(q domain.FillInBlank, v domain.Value) (domain.GradingResult, error) {
	answers, ok := v.(domain.Blanks)
	if !ok {
		return domain.GradingResult{}, mismatch(q, v)
	}

	blanks := q.Blanks()
	correct := 0
	for _, b := range blanks {
		user, ok := answers[b.ID]
		if !ok || user == "" {
			continue
		}
		user = normalizeBlank(user, b.CaseSensitive)
		for _, accepted := range b.AcceptedAnswers {
			if normalizeBlank(accepted, b.CaseSensitive) == user {
				correct++
				break
			}
		}
	}
	return proportional(q.Base(), correct, len(blanks), "blanks"), nil
}

func gradeMatching(q domain.Matching, v domain.Value) (domain.GradingResult, error) {
	answers, ok := v.(domain.Pairs)
	if !ok {
		return domain.GradingResult{}, mismatch(q, v)
	}

	correct := 0
	for _, p := range q.Pairs {
		if chosen, ok := answers[p.ID]; ok && chosen == p.Right {
			correct++
		}
	}
	return proportional(q.Base(), correct, len(q.Pairs), "pairs"), nil
}

func proportional(base domain.QuestionBase, correct, total int, unit string) domain.GradingResult {
	if total == 0 {
		return wrong(base)
	}
	if correct == total {
		return full(base)
	}

	res := domain.GradingResult{
		QuestionID:         base.ID,
		IsPartiallyCorrect: correct > 0,
		Score:              float64(correct) / float64(total) * base.Points,
		MaxScore:           base.Points,
		Feedback:           FeedbackWrong,
	}
	if res.IsPartiallyCorrect {
		res.Feedback = fmt.Sprintf("Partially correct (%d/%d %s)", correct, total, unit)
	}
	return res
}

// selection accepts either a single choice or a list of choices.
func selection(id string, v domain.Value) ([]string, error) {
	switch v := v.(type) {
	case domain.Choice:
		return []string{string(v)}, nil
	case domain.Choices:
		return []string(v), nil
	default:
		return nil, fmt.Errorf("grade %q: %w: got %s", id, domain.ErrAnswerTypeMismatch, v.Kind())
	}
}

func mismatch(q domain.Question, v domain.Value) error {
	return fmt.Errorf("grade %q: %w: %s question got %s", q.Base().ID, domain.ErrAnswerTypeMismatch, q.Type(), v.Kind())
}

func noAnswer(base domain.QuestionBase) domain.GradingResult {
	return domain.GradingResult{QuestionID: base.ID, MaxScore: base.Points, Feedback: FeedbackNoAnswer}
}

func manual(base domain.QuestionBase) domain.GradingResult {
	return domain.GradingResult{QuestionID: base.ID, MaxScore: base.Points, Feedback: FeedbackManual, NeedsManualGrading: true}
}

func full(base domain.QuestionBase) domain.GradingResult {
	return domain.GradingResult{QuestionID: base.ID, IsCorrect: true, Score: base.Points, MaxScore: base.Points, Feedback: FeedbackCorrect}
}

func wrong(base domain.QuestionBase) domain.GradingResult {
	return domain.GradingResult{QuestionID: base.ID, MaxScore: base.Points, Feedback: FeedbackWrong}
}

func toSet(arr []string) map[string]struct{} {
	m := make(map[string]struct{}, len(arr))
	for _, s := range arr {
		m[s] = struct{}{}
	}
	return m
}
