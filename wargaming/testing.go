// Copyright IBM Corp. 2020, 2025
// SPDX-License-Identifier: MPL-2.0

package wargaming

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// TestSessionStore is an in-memory SessionStore for tests. It is concurrently
// safe.
type TestSessionStore struct {
	mu     sync.Mutex
	values map[string]string
	sets   int
}

// ensure that TestSessionStore implements the SessionStore interface
var _ SessionStore = (*TestSessionStore)(nil)

// NewTestSessionStore creates a TestSessionStore with optional initial
// values.
func NewTestSessionStore(values map[string]string) *TestSessionStore {
	s := &TestSessionStore{values: map[string]string{}}
	for k, v := range values {
		s.values[k] = v
	}
	return s
}

// Get implements SessionStore.Get.
func (s *TestSessionStore) Get(_ context.Context, key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.values[key]
	return v, ok, nil
}

// Set implements SessionStore.Set.
func (s *TestSessionStore) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
	s.sets++
	return nil
}

// Forget implements SessionStore.Forget.
func (s *TestSessionStore) Forget(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.values, key)
	return nil
}

// Values returns a copy of the stored values.
func (s *TestSessionStore) Values() map[string]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := make(map[string]string, len(s.values))
	for k, v := range s.values {
		cp[k] = v
	}
	return cp
}

// Sets returns the number of Set calls.
func (s *TestSessionStore) Sets() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sets
}

// TestLoggedInSession returns a TestSessionStore holding an identity that
// expires after expiresIn (a negative value gives an expired identity).
func TestLoggedInSession(t *testing.T, accountID, accessToken string, expiresIn time.Duration) *TestSessionStore {
	t.Helper()
	s := NewTestSessionStore(nil)
	err := StoreIdentity(context.Background(), s, &Identity{
		AccountID:   accountID,
		AccessToken: accessToken,
		ExpiresAt:   time.Now().Add(expiresIn),
	})
	require.NoError(t, err)
	return s
}

// TestNewProvider creates a Provider configured for the TestProvider.
func TestNewProvider(t *testing.T, tp *TestProvider, redirectURL string, opt ...Option) *Provider {
	t.Helper()
	require := require.New(t)
	opts := append([]Option{
		WithEndpoints(tp.Endpoints()),
		WithProviderCA(tp.CACert()),
	}, opt...)
	c, err := NewConfig(tp.ApplicationID(), redirectURL, opts...)
	require.NoError(err)
	p, err := NewProvider(c)
	require.NoError(err)
	return p
}
