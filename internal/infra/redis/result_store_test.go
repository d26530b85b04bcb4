package redis

import (
	"context"
	"testing"

	miniredis "github.com/alicebob/miniredis/v2"

	"quiz-engine/internal/app"
	"quiz-engine/internal/domain"
)

var (
	_ app.ResultStore   = (*ResultStore)(nil)
	_ app.ResultClearer = (*ResultStore)(nil)
)

func TestResultStoreAttempts(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	store := NewResultStore(newClient(mr))
	ctx := context.Background()

	for _, attempt := range []int{2, 1, 3} {
		if _, err := store.SaveResult(ctx, domain.QuizResult{QuizID: "quiz-1", AttemptNumber: attempt, Score: float64(attempt)}); err != nil {
			t.Fatalf("save attempt %d: %v", attempt, err)
		}
	}
	if !mr.Exists("quiz:quiz-1:results:anonymous") {
		t.Fatalf("expected anonymous results hash")
	}

	all, err := store.LoadAllResults(ctx, "quiz-1", "")
	if err != nil {
		t.Fatalf("load all: %v", err)
	}
	if len(all) != 3 || all[0].AttemptNumber != 1 || all[2].AttemptNumber != 3 {
		t.Fatalf("expected attempts ordered 1..3, got %+v", all)
	}
	if all[0].SavedAt.IsZero() {
		t.Fatalf("expected saved timestamp")
	}

	latest, err := store.LoadResult(ctx, domain.ResultQuery{QuizID: "quiz-1"})
	if err != nil || latest == nil || latest.AttemptNumber != 3 {
		t.Fatalf("expected latest attempt 3, got %+v err=%v", latest, err)
	}

	second, err := store.LoadResult(ctx, domain.ResultQuery{QuizID: "quiz-1", AttemptNumber: 2})
	if err != nil || second == nil || second.Score != 2 {
		t.Fatalf("expected attempt 2, got %+v err=%v", second, err)
	}

	missing, err := store.LoadResult(ctx, domain.ResultQuery{QuizID: "quiz-1", AttemptNumber: 9})
	if err != nil || missing != nil {
		t.Fatalf("expected nil for a missing attempt, got %+v err=%v", missing, err)
	}

	if err := store.DeleteResult(ctx, domain.ResultQuery{QuizID: "quiz-1", AttemptNumber: 2}); err != nil {
		t.Fatalf("delete attempt: %v", err)
	}
	all, _ = store.LoadAllResults(ctx, "quiz-1", "")
	if len(all) != 2 {
		t.Fatalf("expected 2 attempts after delete, got %d", len(all))
	}

	if err := store.DeleteResult(ctx, domain.ResultQuery{QuizID: "quiz-1"}); err != nil {
		t.Fatalf("delete all: %v", err)
	}
	all, _ = store.LoadAllResults(ctx, "quiz-1", "")
	if len(all) != 0 {
		t.Fatalf("expected no attempts, got %d", len(all))
	}
}

func TestResultStoreClearAll(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	store := NewResultStore(newClient(mr))
	manager := app.NewResultManager(store)
	ctx := context.Background()

	_, _ = manager.Save(ctx, domain.QuizResult{QuizID: "quiz-1", UserID: "u1", AttemptNumber: 1})
	_, _ = manager.Save(ctx, domain.QuizResult{QuizID: "quiz-2", UserID: "u2", AttemptNumber: 1})
	if err := mr.Set("unrelated", "keep"); err != nil {
		t.Fatalf("seed key: %v", err)
	}

	if err := manager.ClearAll(ctx); err != nil {
		t.Fatalf("clear all: %v", err)
	}
	if mr.Exists("quiz:quiz-1:results:u1") || mr.Exists("quiz:quiz-2:results:u2") {
		t.Fatalf("expected result hashes removed")
	}
	if !mr.Exists("unrelated") {
		t.Fatalf("clear all must only touch result keys")
	}
}
