package memory

import (
	"sync"

	"quiz-engine/internal/app"
)

// SessionStore is an in-memory implementation of app.SessionRepository.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*app.Session
}

func NewSessionStore() *SessionStore {
	return &SessionStore{
		sessions: make(map[string]*app.Session),
	}
}

// Put registers session under its quiz and user, replacing any previous one.
func (s *SessionStore) Put(session *app.Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[SessionKey(session.QuizID(), session.UserID())] = session
}

func (s *SessionStore) Get(quizID, userID string) (*app.Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[SessionKey(quizID, userID)]
	return session, ok
}

func (s *SessionStore) Delete(quizID, userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, SessionKey(quizID, userID))
}

// Len reports the number of registered sessions.
func (s *SessionStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// SessionKey identifies a session; the anonymous user has an empty ID.
func SessionKey(quizID, userID string) string {
	if userID == "" {
		userID = AnonymousUser
	}
	return quizID + ":" + userID
}
