package cli

import "quiz-engine/internal/domain"

// sampleQuizzes is served when no Postgres loader is configured.
func sampleQuizzes() map[string]domain.QuizConfig {
	return map[string]domain.QuizConfig{
		"quiz-1": {
			ID:                 "quiz-1",
			Title:              "Warm-up",
			SubmissionMode:     domain.SubmitHybrid,
			AllowNavigation:    true,
			AllowReview:        true,
			ShowScore:          true,
			ShowCorrectAnswers: true,
			PassingScore:       60,
			TimeLimit:          600,
			Questions: domain.QuestionList{
				domain.MultipleChoice{
					QuestionBase:   domain.QuestionBase{ID: "q1", Prompt: "What is 2 + 2?", Points: 1},
					ShuffleOptions: true,
					Options: []domain.Option{
						{ID: "o1", Text: "3"},
						{ID: "o2", Text: "4", Correct: true},
						{ID: "o3", Text: "5"},
					},
				},
				domain.MultipleChoice{
					QuestionBase: domain.QuestionBase{ID: "q2", Prompt: "Which are prime?", Points: 3},
					MultiSelect:  true,
					Options: []domain.Option{
						{ID: "o1", Text: "2", Correct: true},
						{ID: "o2", Text: "3", Correct: true},
						{ID: "o3", Text: "4"},
						{ID: "o4", Text: "5", Correct: true},
					},
				},
				domain.TrueFalse{
					QuestionBase:  domain.QuestionBase{ID: "q3", Prompt: "Go has generics.", Points: 1},
					CorrectAnswer: true,
				},
				domain.ShortAnswer{
					QuestionBase:    domain.QuestionBase{ID: "q4", Prompt: "Name the Go mascot.", Points: 1},
					AcceptedAnswers: []string{"gopher"},
					TrimWhitespace:  true,
					MaxLength:       40,
				},
				domain.FillInBlank{
					QuestionBase: domain.QuestionBase{ID: "q5", Prompt: "Complete the sentence.", Points: 2},
					Segments: []domain.Segment{
						{Kind: domain.SegmentText, Text: "Channels are created with "},
						{Kind: domain.SegmentBlank, ID: "b1", AcceptedAnswers: []string{"make"}},
						{Kind: domain.SegmentText, Text: " and closed with "},
						{Kind: domain.SegmentBlank, ID: "b2", AcceptedAnswers: []string{"close"}},
						{Kind: domain.SegmentText, Text: "."},
					},
				},
				domain.Matching{
					QuestionBase: domain.QuestionBase{ID: "q6", Prompt: "Match the keyword to its use.", Points: 2},
					ShufflePairs: true,
					Pairs: []domain.Pair{
						{ID: "p1", Left: "defer", Right: "run at function exit"},
						{ID: "p2", Left: "go", Right: "start a goroutine"},
					},
				},
				domain.Essay{
					QuestionBase: domain.QuestionBase{ID: "q7", Prompt: "Why do you like Go?", Points: 0},
					MaxWords:     200,
				},
			},
		},
	}
}
