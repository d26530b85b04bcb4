package app_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quiz-engine/internal/app"
	"quiz-engine/internal/domain"
)

func TestComputeProgress(t *testing.T) {
	cfg := twoQuestionQuiz()
	state := domain.QuizState{
		Answers: map[string]domain.QuestionAnswer{
			"q1": {QuestionID: "q1", IsAnswered: true},
			"q2": {QuestionID: "q2", IsAnswered: false},
		},
		TimeSpent: 42,
	}

	p := app.ComputeProgress(cfg, state)
	assert.Equal(t, 2, p.TotalQuestions)
	assert.Equal(t, 1, p.AnsweredQuestions)
	assert.Equal(t, 50.0, p.PercentComplete)
	assert.Equal(t, 42, p.TimeSpent)
	assert.Nil(t, p.TimeRemaining, "no time limit")

	cfg.TimeLimit = 30
	p = app.ComputeProgress(cfg, state)
	require.NotNil(t, p.TimeRemaining)
	assert.Equal(t, 0, *p.TimeRemaining, "remaining time never goes negative")

	cfg.TimeLimit = 100
	p = app.ComputeProgress(cfg, state)
	assert.Equal(t, 58, *p.TimeRemaining)
}

func TestComputeProgressWithoutQuestions(t *testing.T) {
	p := app.ComputeProgress(domain.QuizConfig{}, domain.QuizState{})
	assert.Zero(t, p.PercentComplete)
}
