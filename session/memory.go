// Copyright IBM Corp. 2020, 2025
// SPDX-License-Identifier: MPL-2.0

package session

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// cleanupInterval is how often expired sessions are purged from memory.
const cleanupInterval = time.Minute

// MemoryBackend is an in-process Backend. Sessions are lost when the process
// exits and aren't shared between processes, so it's meant for development
// and single instance deployments.
type MemoryBackend struct {
	c *gocache.Cache
}

// ensure that MemoryBackend implements the Backend interface
var _ Backend = (*MemoryBackend)(nil)

// NewMemoryBackend creates a MemoryBackend.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{c: gocache.New(gocache.NoExpiration, cleanupInterval)}
}

// Get implements Backend.Get.
func (m *MemoryBackend) Get(_ context.Context, key string) (string, bool, error) {
	v, ok := m.c.Get(key)
	if !ok {
		return "", false, nil
	}
	s, ok := v.(string)
	return s, ok, nil
}

// Set implements Backend.Set.
func (m *MemoryBackend) Set(_ context.Context, key, value string, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = gocache.NoExpiration
	}
	m.c.Set(key, value, ttl)
	return nil
}

// Delete implements Backend.Delete.
func (m *MemoryBackend) Delete(_ context.Context, key string) error {
	m.c.Delete(key)
	return nil
}

// Len returns the number of sessions held, including expired sessions which
// haven't been purged yet.
func (m *MemoryBackend) Len() int {
	return m.c.ItemCount()
}
