package server

import (
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/ppiankov/medqa/internal/model"
)

// DefaultSessionTTL is how long an idle conversation is kept
const DefaultSessionTTL = 30 * time.Minute

// session is one conversation. Its mutex serializes questions within the
// conversation so each one sees the context left by the previous answer.
type session struct {
	mu   sync.Mutex
	conv model.ConversationContext
}

// Sessions holds conversation contexts keyed by session id. Entries expire
// after ttl without use.
type Sessions struct {
	mu    sync.Mutex
	store *gocache.Cache
	ttl   time.Duration
}

func NewSessions(ttl time.Duration) *Sessions {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &Sessions{store: gocache.New(ttl, 2*ttl), ttl: ttl}
}

// acquire returns the locked session for id, creating it when absent, and
// refreshes its expiry. The caller must call release.
func (s *Sessions) acquire(id string) *session {
	s.mu.Lock()
	var sess *session
	if v, ok := s.store.Get(id); ok {
		sess = v.(*session)
	} else {
		sess = &session{}
	}
	s.store.Set(id, sess, s.ttl)
	s.mu.Unlock()

	sess.mu.Lock()
	return sess
}

func (s *session) release() {
	s.mu.Unlock()
}

// Context returns a copy of the conversation for id
func (s *Sessions) Context(id string) (model.ConversationContext, bool) {
	v, ok := s.store.Get(id)
	if !ok {
		return model.ConversationContext{}, false
	}
	sess := v.(*session)
	sess.mu.Lock()
	defer sess.mu.Unlock()
	return sess.conv, true
}

// Reset forgets the conversation for id
func (s *Sessions) Reset(id string) {
	s.store.Delete(id)
}

// Len reports the number of live conversations
func (s *Sessions) Len() int {
	return s.store.ItemCount()
}
