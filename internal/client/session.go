// Package client provides the Liveability API client and its session store,
// the systems-side counterpart of the browser auth context: it holds the
// current {user, token} pair, persists it to durable storage, attaches it to
// outgoing requests and reacts to authorization failures.
package client

import (
	"encoding/json"
	"fmt"
	"sync"

	"liveability/internal/user"
)

// Session is the client-held mirror of an authenticated identity
type Session struct {
	Token string     `json:"token"`
	User  *user.User `json:"user"`
}

// Authenticated reports whether the session carries both halves of the
// identity; absence of either means unauthenticated.
func (s *Session) Authenticated() bool {
	return s != nil && s.Token != "" && s.User != nil
}

// SessionStore owns the current session and keeps it in sync with durable
// storage. All transitions go through the store so the authenticated state
// has a single writer.
type SessionStore struct {
	mu      sync.Mutex
	storage Storage
	current *Session
}

// NewSessionStore creates a store and hydrates it from durable storage.
// Malformed or partial stored data is discarded and the store starts
// unauthenticated.
func NewSessionStore(storage Storage) *SessionStore {
	st := &SessionStore{storage: storage}
	st.hydrate()
	return st
}

func (st *SessionStore) hydrate() {
	data, err := st.storage.Load()
	if err != nil || len(data) == 0 {
		return
	}

	var sess Session
	if err := json.Unmarshal(data, &sess); err != nil || !sess.Authenticated() {
		// Stored garbage is unrecoverable; drop it rather than carry it.
		_ = st.storage.Clear()
		return
	}

	st.current = &sess
}

// Current returns the session, or nil when unauthenticated
func (st *SessionStore) Current() *Session {
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.current
}

// Set transitions to authenticated and persists the session
func (st *SessionStore) Set(token string, u *user.User) error {
	st.mu.Lock()
	defer st.mu.Unlock()

	sess := &Session{Token: token, User: u}
	data, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}
	if err := st.storage.Save(data); err != nil {
		return err
	}

	st.current = sess
	return nil
}

// SetUser replaces the user half of the session, keeping the token. Used
// after preference saves return the updated record. No-op when
// unauthenticated.
func (st *SessionStore) SetUser(u *user.User) error {
	st.mu.Lock()
	defer st.mu.Unlock()

	if st.current == nil {
		return nil
	}

	sess := &Session{Token: st.current.Token, User: u}
	data, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}
	if err := st.storage.Save(data); err != nil {
		return err
	}

	st.current = sess
	return nil
}

// Clear transitions to unauthenticated and reports whether this call did the
// clearing. Concurrent callers race on the same guard, so exactly one gets
// true; that caller owns the follow-up navigation.
func (st *SessionStore) Clear() bool {
	st.mu.Lock()
	defer st.mu.Unlock()

	_ = st.storage.Clear()

	if st.current == nil {
		return false
	}
	st.current = nil
	return true
}
