package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/cenkalti/backoff/v4"

	"quiz-engine/internal/domain"
)

// ResultStore talks to a results API:
//
//	save:   POST   {endpoint}                      body: QuizResult
//	load:   GET    {endpoint}?quizId=&userId=&attemptNumber=
//	list:   GET    {endpoint}?quizId=&userId=&all=true
//	delete: DELETE {endpoint}?quizId=&userId=&attemptNumber=
//
// A 404 on load means no result. Network errors and 5xx answers are retried.
type ResultStore struct {
	endpoint   string
	client     *http.Client
	maxRetries uint64
}

type Option func(*ResultStore)

func WithHTTPClient(c *http.Client) Option {
	return func(s *ResultStore) { s.client = c }
}

// WithMaxRetries sets how many times a failed request is retried; 0 disables retries.
func WithMaxRetries(n uint64) Option {
	return func(s *ResultStore) { s.maxRetries = n }
}

func NewResultStore(endpoint string, timeout time.Duration, opts ...Option) *ResultStore {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	s := &ResultStore{
		endpoint:   endpoint,
		client:     &http.Client{Timeout: timeout},
		maxRetries: 3,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// StatusError is returned for answers outside 2xx (other than 404 on load).
type StatusError struct {
	Status  int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("results api: status %d", e.Status)
	}
	return fmt.Sprintf("results api: status %d: %s", e.Status, e.Message)
}

func (s *ResultStore) SaveResult(ctx context.Context, result domain.QuizResult) (domain.LoadedResult, error) {
	body, err := json.Marshal(result)
	if err != nil {
		return domain.LoadedResult{}, fmt.Errorf("marshal result: %w", err)
	}
	var saved domain.LoadedResult
	if _, err := s.do(ctx, http.MethodPost, s.endpoint, body, &saved); err != nil {
		return domain.LoadedResult{}, fmt.Errorf("save result: %w", err)
	}
	return saved, nil
}

func (s *ResultStore) LoadResult(ctx context.Context, q domain.ResultQuery) (*domain.LoadedResult, error) {
	var loaded domain.LoadedResult
	status, err := s.do(ctx, http.MethodGet, s.url(q, false), nil, &loaded)
	if status == http.StatusNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load result: %w", err)
	}
	return &loaded, nil
}

func (s *ResultStore) LoadAllResults(ctx context.Context, quizID, userID string) ([]domain.LoadedResult, error) {
	var all []domain.LoadedResult
	status, err := s.do(ctx, http.MethodGet, s.url(domain.ResultQuery{QuizID: quizID, UserID: userID}, true), nil, &all)
	if status == http.StatusNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load results: %w", err)
	}
	return all, nil
}

func (s *ResultStore) DeleteResult(ctx context.Context, q domain.ResultQuery) error {
	status, err := s.do(ctx, http.MethodDelete, s.url(q, false), nil, nil)
	if status == http.StatusNotFound {
		return nil
	}
	if err != nil {
		return fmt.Errorf("delete result: %w", err)
	}
	return nil
}

func (s *ResultStore) url(q domain.ResultQuery, all bool) string {
	values := url.Values{}
	values.Set("quizId", q.QuizID)
	if q.UserID != "" {
		values.Set("userId", q.UserID)
	}
	if q.AttemptNumber > 0 {
		values.Set("attemptNumber", strconv.Itoa(q.AttemptNumber))
	}
	if all {
		values.Set("all", "true")
	}
	return s.endpoint + "?" + values.Encode()
}

// do sends the request, retrying transient failures, and decodes a 2xx body into out.
// The last status code is returned even on error.
func (s *ResultStore) do(ctx context.Context, method, target string, body []byte, out any) (int, error) {
	var status int
	operation := func() error {
		req, err := http.NewRequestWithContext(ctx, method, target, bytes.NewReader(body))
		if err != nil {
			return backoff.Permanent(err)
		}
		if body != nil {
			req.Header.Set("Content-Type", "application/json")
		}
		req.Header.Set("Accept", "application/json")

		resp, err := s.client.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()
		status = resp.StatusCode

		if status < 200 || status > 299 {
			statusErr := &StatusError{Status: status, Message: readMessage(resp.Body)}
			if status >= 500 {
				return statusErr
			}
			return backoff.Permanent(statusErr)
		}
		if out == nil || status == http.StatusNoContent {
			return nil
		}
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return backoff.Permanent(fmt.Errorf("decode response: %w", err))
		}
		return nil
	}

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = 100 * time.Millisecond
	err := backoff.Retry(operation, backoff.WithContext(backoff.WithMaxRetries(policy, s.maxRetries), ctx))

	var permanent *backoff.PermanentError
	if errors.As(err, &permanent) {
		err = permanent.Err
	}
	return status, err
}

func readMessage(r io.Reader) string {
	var payload struct {
		Message string `json:"message"`
	}
	raw, _ := io.ReadAll(io.LimitReader(r, 4096))
	if json.Unmarshal(raw, &payload) == nil && payload.Message != "" {
		return payload.Message
	}
	return string(bytes.TrimSpace(raw))
}
