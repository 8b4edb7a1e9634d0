// Copyright IBM Corp. 2020, 2025
// SPDX-License-Identifier: MPL-2.0

package session

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"
)

// Session is one user's browsing session: a set of string values stored in a
// Backend under the session id. It satisfies wargaming.SessionStore.
//
// Values are read from the backend once, when the session is loaded, and
// every change is written back immediately.
type Session struct {
	id      string
	backend Backend
	ttl     time.Duration

	mu     sync.Mutex
	values map[string]string
	isNew  bool
}

func newSession(id string, b Backend, ttl time.Duration) *Session {
	return &Session{
		id:      id,
		backend: b,
		ttl:     ttl,
		values:  map[string]string{},
		isNew:   true,
	}
}

// loadSession reads the session id from the backend. It returns nil when the
// backend doesn't hold it.
func loadSession(ctx context.Context, id string, b Backend, ttl time.Duration) (*Session, error) {
	const op = "session.loadSession"
	data, ok, err := b.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if !ok {
		return nil, nil
	}
	s := newSession(id, b, ttl)
	s.isNew = false
	if err := json.Unmarshal([]byte(data), &s.values); err != nil {
		return nil, fmt.Errorf("%s: %w: %w", op, ErrMalformedSession, err)
	}
	if s.values == nil {
		s.values = map[string]string{}
	}
	return s, nil
}

// ID returns the session id.
func (s *Session) ID() string { return s.id }

// IsNew returns true when the session was created by the current request.
func (s *Session) IsNew() bool { return s.isNew }

// Get returns the value for key, and false when it isn't set.
func (s *Session) Get(_ context.Context, key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.values[key]
	return v, ok, nil
}

// Set stores the value for key.
func (s *Session) Set(ctx context.Context, key, value string) error {
	const op = "Session.Set"
	if key == "" {
		return fmt.Errorf("%s: key is empty: %w", op, ErrInvalidParameter)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
	if err := s.save(ctx); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// Forget removes key.
func (s *Session) Forget(ctx context.Context, key string) error {
	const op = "Session.Forget"
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.values[key]; !ok {
		return nil
	}
	delete(s.values, key)
	if err := s.save(ctx); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// Values returns a copy of the session's values.
func (s *Session) Values() map[string]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := make(map[string]string, len(s.values))
	for k, v := range s.values {
		cp[k] = v
	}
	return cp
}

// save writes the values to the backend. The caller must hold s.mu.
func (s *Session) save(ctx context.Context) error {
	data, err := json.Marshal(s.values)
	if err != nil {
		return fmt.Errorf("unable to encode session: %w", err)
	}
	return s.backend.Set(ctx, s.id, string(data), s.ttl)
}
