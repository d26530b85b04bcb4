// Package shuffle produces reproducible orderings for questions, options and matching pairs.
package shuffle

import (
	"math/rand/v2"
	"unicode/utf16"

	"quiz-engine/internal/domain"
)

// rightColumnOffset decorrelates the right-hand matching column from the pair order.
const rightColumnOffset = 1000

// lcg is the linear congruential generator used for seeded shuffles.
type lcg struct {
	seed int64
}

func (g *lcg) next() float64 {
	g.seed = (g.seed*9301 + 49297) % 233280
	return float64(g.seed) / 233280
}

// Shuffle returns a Fisher-Yates permutation of s. With a seed the permutation is
// fully deterministic; without one the runtime random source is used. s is not modified.
func Shuffle[T any](s []T, seed *int64) []T {
	out := make([]T, len(s))
	copy(out, s)

	draw := rand.Float64
	if seed != nil {
		g := &lcg{seed: *seed}
		draw = g.next
	}

	for i := len(out) - 1; i > 0; i-- {
		j := int(draw() * float64(i+1))
		out[i], out[j] = out[j], out[i]
	}
	return out
}

// SeedFromID sums the UTF-16 code units of id.
func SeedFromID(id string) int64 {
	var sum int64
	for _, u := range utf16.Encode([]rune(id)) {
		sum += int64(u)
	}
	return sum
}

// ApplyQuiz returns a copy of cfg with the configured shuffles applied: the question
// list is permuted with the quiz seed, option lists and matching pairs with their
// question seed. cfg itself is left untouched.
func ApplyQuiz(cfg domain.QuizConfig) domain.QuizConfig {
	out := cfg
	questions := make(domain.QuestionList, len(cfg.Questions))
	for i, q := range cfg.Questions {
		questions[i] = applyQuestion(q)
	}
	if cfg.ShuffleQuestions {
		seed := SeedFromID(cfg.ID)
		questions = Shuffle(questions, &seed)
	}
	out.Questions = questions
	return out
}

func applyQuestion(q domain.Question) domain.Question {
	seed := SeedFromID(q.Base().ID)
	switch q := q.(type) {
	case domain.MultipleChoice:
		if q.ShuffleOptions {
			q.Options = Shuffle(q.Options, &seed)
		}
		return q
	case domain.Matching:
		if q.ShufflePairs {
			q.Pairs = Shuffle(q.Pairs, &seed)
		}
		return q
	default:
		return q
	}
}

// MatchingRightColumn returns the right-hand values of q in presentation order.
func MatchingRightColumn(q domain.Matching) []string {
	right := make([]string, len(q.Pairs))
	for i, p := range q.Pairs {
		right[i] = p.Right
	}
	if !q.ShufflePairs {
		return right
	}
	seed := SeedFromID(q.ID) + rightColumnOffset
	return Shuffle(right, &seed)
}
