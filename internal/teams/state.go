package teams

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

var ErrStateNotFound = errors.New("teams: unknown or expired flow state")

// flowState is the transient record carried across the redirect boundary:
// the PKCE verifier and the user who started the flow. Nothing else is
// remembered until the token exchange succeeds.
type flowState struct {
	Verifier  string
	UserID    string
	ExpiresAt time.Time
}

// StateStore holds in-flight authorization flows keyed by the opaque state
// parameter. Entries are single-use: Take removes what it returns.
type StateStore struct {
	mu  sync.Mutex
	ttl time.Duration
	m   map[string]flowState
	now func() time.Time
}

func NewStateStore(ttl time.Duration) *StateStore {
	return &StateStore{ttl: ttl, m: map[string]flowState{}, now: time.Now}
}

// Put registers a new flow and returns its state key.
func (s *StateStore) Put(userID, verifier string) string {
	key := uuid.NewString()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m[key] = flowState{Verifier: verifier, UserID: userID, ExpiresAt: s.now().Add(s.ttl)}
	s.sweepLocked()
	return key
}

// Take consumes the flow for the given state key. A missing or expired key
// is an error; either way the entry is gone afterwards.
func (s *StateStore) Take(key string) (userID, verifier string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.m[key]
	delete(s.m, key)
	if !ok || s.now().After(st.ExpiresAt) {
		return "", "", ErrStateNotFound
	}
	return st.UserID, st.Verifier, nil
}

func (s *StateStore) sweepLocked() {
	now := s.now()
	for k, st := range s.m {
		if now.After(st.ExpiresAt) {
			delete(s.m, k)
		}
	}
}
