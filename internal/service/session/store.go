package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/imagechat/backend/internal/model/chat"
)

var (
	ErrNotFound       = errors.New("session not found")
	ErrQuotaExhausted = errors.New("session question quota exhausted")
)

// timeNow is swapped out by tests that need to control session age.
var timeNow = time.Now

// Store is the single owner of all live sessions. Every mutation happens
// under the store lock, so the quota check and the history append for one
// session can never interleave with another request for the same id.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*chat.Session
}

// NewStore bootstraps an empty in-memory session store.
func NewStore() *Store {
	return &Store{sessions: make(map[string]*chat.Session)}
}

// Create provisions a session for a freshly described image.
func (s *Store) Create(_ context.Context, imageDescription string) (chat.Session, error) {
	sess := &chat.Session{
		ID:               uuid.NewString(),
		ImageDescription: imageDescription,
		History:          make([]chat.Turn, 0, 2*chat.MaxQuestions),
		CreatedAt:        timeNow().UTC(),
	}

	s.mu.Lock()
	s.sessions[sess.ID] = sess
	s.mu.Unlock()

	return snapshot(sess), nil
}

// Get retrieves a session by identifier. A missing session is an expected
// condition for every caller, signalled with ErrNotFound.
func (s *Store) Get(_ context.Context, id string) (chat.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.sessions[id]
	if !ok {
		return chat.Session{}, ErrNotFound
	}
	return snapshot(sess), nil
}

// Fields describes a partial session mutation. Nil fields are left untouched.
type Fields struct {
	History       []chat.Turn
	QuestionCount *int
}

// Update merges the present fields into a stored session; ID, description and
// creation time are immutable and cannot be updated.
func (s *Store) Update(_ context.Context, id string, upd Fields) (chat.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		return chat.Session{}, ErrNotFound
	}

	applyUpdate(sess, upd)
	return snapshot(sess), nil
}

// AppendExchange records one answered question as a single atomic step:
// it re-validates the quota, appends the user and assistant turns, and
// increments the counter. When the quota turns out to be already spent (a
// concurrent request won the last slot), the session is removed and
// ErrQuotaExhausted is returned so at most one of the racing requests lands.
func (s *Store) AppendExchange(_ context.Context, id, question, answer string) (chat.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		return chat.Session{}, ErrNotFound
	}
	if sess.Exhausted() {
		delete(s.sessions, id)
		return chat.Session{}, ErrQuotaExhausted
	}

	count := sess.QuestionCount + 1
	applyUpdate(sess, Fields{
		History: append(sess.History,
			chat.Turn{Role: chat.RoleUser, Content: question},
			chat.Turn{Role: chat.RoleAssistant, Content: answer},
		),
		QuestionCount: &count,
	})
	return snapshot(sess), nil
}

// Delete removes a session if present and reports whether a removal occurred.
// Deleting an absent id is not an error.
func (s *Store) Delete(_ context.Context, id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[id]; !ok {
		return false
	}
	delete(s.sessions, id)
	return true
}

// Count reports the number of live sessions.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// EvictExpired removes every session whose age has reached maxAge and returns
// the number of sessions removed.
func (s *Store) EvictExpired(_ context.Context, maxAge time.Duration) int {
	now := timeNow()

	s.mu.Lock()
	defer s.mu.Unlock()

	evicted := 0
	for id, sess := range s.sessions {
		if now.Sub(sess.CreatedAt) >= maxAge {
			delete(s.sessions, id)
			evicted++
		}
	}
	return evicted
}

func applyUpdate(sess *chat.Session, upd Fields) {
	if upd.History != nil {
		sess.History = upd.History
	}
	if upd.QuestionCount != nil {
		sess.QuestionCount = *upd.QuestionCount
	}
}

// snapshot copies a session so callers never alias store-owned state.
func snapshot(sess *chat.Session) chat.Session {
	out := *sess
	out.History = append([]chat.Turn(nil), sess.History...)
	return out
}
