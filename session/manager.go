// Copyright IBM Corp. 2020, 2025
// SPDX-License-Identifier: MPL-2.0

package session

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/rguedes/wgauth/sdk/id"
)

const (
	// DefaultCookieName is the name of the session cookie.
	DefaultCookieName = "wgauth_session"

	// DefaultTTL is how long an idle session is kept. Every write extends it.
	DefaultTTL = 14 * 24 * time.Hour

	idPrefix = "wgs"
)

// Manager loads sessions identified by a cookie from a Backend.
type Manager struct {
	backend    Backend
	cookieName string
	path       string
	secure     bool
	ttl        time.Duration
	logger     hclog.Logger
}

// NewManager creates a Manager.
// Supported options:
//
//	WithCookieName
//	WithPath
//	WithSecure
//	WithTTL
//	WithLogger
func NewManager(b Backend, opt ...Option) (*Manager, error) {
	const op = "session.NewManager"
	if b == nil {
		return nil, fmt.Errorf("%s: backend is nil: %w", op, ErrNilParameter)
	}
	opts := getManagerOpts(opt...)
	if opts.withCookieName == "" {
		return nil, fmt.Errorf("%s: cookie name is empty: %w", op, ErrInvalidParameter)
	}
	if opts.withTTL < 0 {
		return nil, fmt.Errorf("%s: ttl is negative: %w", op, ErrInvalidParameter)
	}
	return &Manager{
		backend:    b,
		cookieName: opts.withCookieName,
		path:       opts.withPath,
		secure:     opts.withSecure,
		ttl:        opts.withTTL,
		logger:     opts.withLogger.Named("session"),
	}, nil
}

// Load returns the session of the request. When the request has no session
// cookie, or the backend doesn't know its session, a new session is created
// and its cookie is set on w. A new session isn't stored until it's written
// to.
func (m *Manager) Load(w http.ResponseWriter, r *http.Request) (*Session, error) {
	const op = "Manager.Load"
	if r == nil {
		return nil, fmt.Errorf("%s: request is nil: %w", op, ErrNilParameter)
	}
	if c, err := r.Cookie(m.cookieName); err == nil && id.Valid(idPrefix, c.Value) {
		s, err := loadSession(r.Context(), c.Value, m.backend, m.ttl)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		if s != nil {
			return s, nil
		}
		m.logger.Debug("unknown session, starting a new one")
	}

	sid, err := id.New(idPrefix)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	m.setCookie(w, sid, m.ttl)
	m.logger.Debug("session created")
	return newSession(sid, m.backend, m.ttl), nil
}

// Destroy removes the session from the backend and expires its cookie.
func (m *Manager) Destroy(ctx context.Context, w http.ResponseWriter, s *Session) error {
	const op = "Manager.Destroy"
	if s == nil {
		return fmt.Errorf("%s: session is nil: %w", op, ErrNilParameter)
	}
	if err := m.backend.Delete(ctx, s.id); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	s.mu.Lock()
	s.values = map[string]string{}
	s.mu.Unlock()
	m.setCookie(w, "", -1)
	m.logger.Debug("session destroyed")
	return nil
}

// CookieName returns the name of the session cookie.
func (m *Manager) CookieName() string { return m.cookieName }

func (m *Manager) setCookie(w http.ResponseWriter, value string, ttl time.Duration) {
	if w == nil {
		return
	}
	c := &http.Cookie{
		Name:     m.cookieName,
		Value:    value,
		Path:     m.path,
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	}
	switch {
	case ttl < 0:
		c.MaxAge = -1
	case ttl > 0:
		c.MaxAge = int(ttl.Seconds())
	}
	http.SetCookie(w, c)
}
