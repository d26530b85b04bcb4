package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"quiz-engine/internal/domain"
	"quiz-engine/internal/infra/memory"
)

// ResultStore persists quiz results in the quiz_results table.
// One row per (quiz_id, user_id, attempt_number); the result itself is JSONB.
type ResultStore struct {
	pool *pgxpool.Pool
}

func NewResultStore(pool *pgxpool.Pool) *ResultStore {
	return &ResultStore{pool: pool}
}

func (s *ResultStore) SaveResult(ctx context.Context, result domain.QuizResult) (domain.LoadedResult, error) {
	raw, err := json.Marshal(result)
	if err != nil {
		return domain.LoadedResult{}, fmt.Errorf("marshal result: %w", err)
	}

	var savedAt time.Time
	err = s.pool.QueryRow(ctx, `
		INSERT INTO quiz_results (quiz_id, user_id, attempt_number, data, saved_at)
		VALUES ($1, $2, $3, $4, now())
		ON CONFLICT (quiz_id, user_id, attempt_number)
		DO UPDATE SET data = EXCLUDED.data, saved_at = EXCLUDED.saved_at
		RETURNING saved_at`,
		result.QuizID, userKey(result.UserID), result.AttemptNumber, raw,
	).Scan(&savedAt)
	if err != nil {
		return domain.LoadedResult{}, fmt.Errorf("save result: %w", err)
	}
	return domain.LoadedResult{QuizResult: result, SavedAt: savedAt.UTC()}, nil
}

func (s *ResultStore) LoadResult(ctx context.Context, q domain.ResultQuery) (*domain.LoadedResult, error) {
	query := `SELECT data, saved_at FROM quiz_results
		WHERE quiz_id=$1 AND user_id=$2 AND attempt_number=$3`
	args := []interface{}{q.QuizID, userKey(q.UserID), q.AttemptNumber}
	if q.AttemptNumber == 0 {
		query = `SELECT data, saved_at FROM quiz_results
			WHERE quiz_id=$1 AND user_id=$2
			ORDER BY attempt_number DESC LIMIT 1`
		args = args[:2]
	}

	loaded, err := scanResult(s.pool.QueryRow(ctx, query, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load result: %w", err)
	}
	return &loaded, nil
}

func (s *ResultStore) LoadAllResults(ctx context.Context, quizID, userID string) ([]domain.LoadedResult, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT data, saved_at FROM quiz_results
		WHERE quiz_id=$1 AND user_id=$2
		ORDER BY attempt_number`, quizID, userKey(userID))
	if err != nil {
		return nil, fmt.Errorf("load results: %w", err)
	}
	defer rows.Close()

	var out []domain.LoadedResult
	for rows.Next() {
		loaded, err := scanResult(rows)
		if err != nil {
			return nil, fmt.Errorf("scan result: %w", err)
		}
		out = append(out, loaded)
	}
	return out, rows.Err()
}

func (s *ResultStore) DeleteResult(ctx context.Context, q domain.ResultQuery) error {
	var err error
	if q.AttemptNumber == 0 {
		_, err = s.pool.Exec(ctx, `DELETE FROM quiz_results WHERE quiz_id=$1 AND user_id=$2`,
			q.QuizID, userKey(q.UserID))
	} else {
		_, err = s.pool.Exec(ctx, `DELETE FROM quiz_results WHERE quiz_id=$1 AND user_id=$2 AND attempt_number=$3`,
			q.QuizID, userKey(q.UserID), q.AttemptNumber)
	}
	if err != nil {
		return fmt.Errorf("delete result: %w", err)
	}
	return nil
}

func (s *ResultStore) ClearAll(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, `DELETE FROM quiz_results`); err != nil {
		return fmt.Errorf("clear results: %w", err)
	}
	return nil
}

func scanResult(row pgx.Row) (domain.LoadedResult, error) {
	var (
		raw     []byte
		savedAt time.Time
	)
	if err := row.Scan(&raw, &savedAt); err != nil {
		return domain.LoadedResult{}, err
	}
	var result domain.QuizResult
	if err := json.Unmarshal(raw, &result); err != nil {
		return domain.LoadedResult{}, fmt.Errorf("unmarshal result: %w", err)
	}
	return domain.LoadedResult{QuizResult: result, SavedAt: savedAt.UTC()}, nil
}

func userKey(userID string) string {
	if userID == "" {
		return memory.AnonymousUser
	}
	return userID
}
