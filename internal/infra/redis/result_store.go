package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"quiz-engine/internal/domain"
	"quiz-engine/internal/infra/memory"
)

const resultsIndexKey = "quiz:results:index"

// ResultStore keeps results in one hash per quiz and user:
// HSET quiz:{quizID}:results:{userID|anonymous} {attempt} {json}
// Every hash key is also recorded in a set so ClearAll can find it.
type ResultStore struct {
	client *redis.Client
	clock  func() time.Time
}

func NewResultStore(client *redis.Client) *ResultStore {
	return &ResultStore{client: client, clock: time.Now}
}

func (s *ResultStore) SaveResult(ctx context.Context, result domain.QuizResult) (domain.LoadedResult, error) {
	loaded := domain.LoadedResult{QuizResult: result, SavedAt: s.clock().UTC()}
	raw, err := json.Marshal(loaded)
	if err != nil {
		return domain.LoadedResult{}, fmt.Errorf("marshal result: %w", err)
	}

	key := s.key(result.QuizID, result.UserID)
	pipe := s.client.TxPipeline()
	pipe.HSet(ctx, key, strconv.Itoa(result.AttemptNumber), raw)
	pipe.SAdd(ctx, resultsIndexKey, key)
	if _, err := pipe.Exec(ctx); err != nil {
		return domain.LoadedResult{}, fmt.Errorf("save result: %w", err)
	}
	return loaded, nil
}

func (s *ResultStore) LoadResult(ctx context.Context, q domain.ResultQuery) (*domain.LoadedResult, error) {
	if q.AttemptNumber == 0 {
		all, err := s.LoadAllResults(ctx, q.QuizID, q.UserID)
		if err != nil || len(all) == 0 {
			return nil, err
		}
		return &all[len(all)-1], nil
	}

	raw, err := s.client.HGet(ctx, s.key(q.QuizID, q.UserID), strconv.Itoa(q.AttemptNumber)).Bytes()
	if isNil(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load result: %w", err)
	}
	var loaded domain.LoadedResult
	if err := json.Unmarshal(raw, &loaded); err != nil {
		return nil, fmt.Errorf("unmarshal result: %w", err)
	}
	return &loaded, nil
}

func (s *ResultStore) LoadAllResults(ctx context.Context, quizID, userID string) ([]domain.LoadedResult, error) {
	fields, err := s.client.HGetAll(ctx, s.key(quizID, userID)).Result()
	if err != nil {
		return nil, fmt.Errorf("load results: %w", err)
	}

	out := make([]domain.LoadedResult, 0, len(fields))
	for attempt, raw := range fields {
		var loaded domain.LoadedResult
		if err := json.Unmarshal([]byte(raw), &loaded); err != nil {
			return nil, fmt.Errorf("unmarshal result %s: %w", attempt, err)
		}
		out = append(out, loaded)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].AttemptNumber < out[j].AttemptNumber })
	return out, nil
}

func (s *ResultStore) DeleteResult(ctx context.Context, q domain.ResultQuery) error {
	key := s.key(q.QuizID, q.UserID)
	if q.AttemptNumber == 0 {
		pipe := s.client.TxPipeline()
		pipe.Del(ctx, key)
		pipe.SRem(ctx, resultsIndexKey, key)
		_, err := pipe.Exec(ctx)
		return err
	}
	return s.client.HDel(ctx, key, strconv.Itoa(q.AttemptNumber)).Err()
}

func (s *ResultStore) ClearAll(ctx context.Context) error {
	keys, err := s.client.SMembers(ctx, resultsIndexKey).Result()
	if err != nil {
		return fmt.Errorf("list result keys: %w", err)
	}
	keys = append(keys, resultsIndexKey)
	return s.client.Del(ctx, keys...).Err()
}

func (s *ResultStore) key(quizID, userID string) string {
	if userID == "" {
		userID = memory.AnonymousUser
	}
	return "quiz:" + quizID + ":results:" + userID
}
