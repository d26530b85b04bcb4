package redis

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"quiz-engine/internal/app"
	"quiz-engine/internal/domain"
	"quiz-engine/internal/infra/memory"
)

// releaseLive deletes a liveness key only while it still names the given session.
var releaseLive = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// SessionStore is a Redis-aware implementation of app.SessionRepository.
// Notes:
//   - Sessions own timers and listeners, so they stay in a local map.
//   - Redis marks session liveness (quiz:session:{quizID}:{userID} -> session id)
//     while the attempt runs, so QuizService.Start on other instances refuses
//     to open a second one. The mark is dropped once the attempt is submitted.
type SessionStore struct {
	client   *redis.Client
	ttl      time.Duration
	mu       sync.RWMutex
	sessions map[string]*app.Session
}

var _ app.LivenessChecker = (*SessionStore)(nil)

func NewSessionStore(client *redis.Client, ttl time.Duration) *SessionStore {
	return &SessionStore{
		client:   client,
		ttl:      ttl,
		sessions: make(map[string]*app.Session),
	}
}

func (s *SessionStore) Put(session *app.Session) {
	key := memory.SessionKey(session.QuizID(), session.UserID())

	s.mu.Lock()
	s.sessions[key] = session
	// best-effort liveness marker
	_ = s.client.Set(context.Background(), s.key(key), session.ID(), s.ttl).Err()
	s.mu.Unlock()

	id := session.ID()
	session.OnChange(func(st domain.QuizState) {
		if st.Status.Terminal() {
			s.release(key, id)
		}
	})
}

func (s *SessionStore) Get(quizID, userID string) (*app.Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[memory.SessionKey(quizID, userID)]
	return session, ok
}

func (s *SessionStore) Delete(quizID, userID string) {
	key := memory.SessionKey(quizID, userID)

	s.mu.Lock()
	session, ok := s.sessions[key]
	if ok {
		delete(s.sessions, key)
	}
	s.mu.Unlock()

	if ok {
		s.release(key, session.ID())
	}
}

func (s *SessionStore) release(sessionKey, sessionID string) {
	_ = releaseLive.Run(context.Background(), s.client, []string{s.key(sessionKey)}, sessionID).Err()
}

// Live returns the session id marked live for a user on any instance.
func (s *SessionStore) Live(ctx context.Context, quizID, userID string) (string, bool, error) {
	id, err := s.client.Get(ctx, s.key(memory.SessionKey(quizID, userID))).Result()
	if isNil(err) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return id, true, nil
}

func (s *SessionStore) key(sessionKey string) string {
	return "quiz:session:" + sessionKey
}
