package app

import "quiz-engine/internal/domain"

// ComputeProgress derives progress from state. It is recomputed on demand and never stored.
func ComputeProgress(cfg domain.QuizConfig, state domain.QuizState) domain.Progress {
	p := domain.Progress{
		TotalQuestions: len(cfg.Questions),
		TimeSpent:      state.TimeSpent,
	}
	for _, a := range state.Answers {
		if a.IsAnswered {
			p.AnsweredQuestions++
		}
	}
	if p.TotalQuestions > 0 {
		p.PercentComplete = float64(p.AnsweredQuestions) / float64(p.TotalQuestions) * 100
	}
	if cfg.TimeLimit > 0 {
		remaining := max(0, cfg.TimeLimit-state.TimeSpent)
		p.TimeRemaining = &remaining
	}
	return p
}
