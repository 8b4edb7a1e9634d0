// Copyright IBM Corp. 2020, 2025
// SPDX-License-Identifier: MPL-2.0

package wargaming

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"golang.org/x/oauth2"
)

// Session keys used to persist an Identity.
const (
	SessionKeyAccountID   = "accountId"
	SessionKeyAccessToken = "accessToken"
	SessionKeyExpiresAt   = "expiresAt"
)

// SessionStore is a key/value store scoped to one user's browsing session.
//
// Implementations don't need to be concurrently safe: an Auth only uses the
// store from the request it was created for.
type SessionStore interface {
	// Get returns the value for key, and false when the key isn't set.
	Get(ctx context.Context, key string) (string, bool, error)

	// Set stores the value for key.
	Set(ctx context.Context, key, value string) error

	// Forget removes key. Forgetting a key that isn't set is not an error.
	Forget(ctx context.Context, key string) error
}

// Identity is the account id, access token and token expiry persisted for a
// session. Empty fields are absent.
type Identity struct {
	AccountID   string
	AccessToken string
	ExpiresAt   time.Time
}

// Complete returns true when both the account id and the access token are
// present.
func (i *Identity) Complete() bool {
	return i != nil && i.AccountID != "" && i.AccessToken != ""
}

// Expired returns true when the expiry is absent or isn't after now.
func (i *Identity) Expired(now time.Time) bool {
	return i == nil || i.ExpiresAt.IsZero() || !i.ExpiresAt.After(now)
}

// Token returns the access token as an oauth2.Token, or nil when there is no
// access token.
func (i *Identity) Token() *oauth2.Token {
	if i == nil || i.AccessToken == "" {
		return nil
	}
	return &oauth2.Token{
		AccessToken: i.AccessToken,
		Expiry:      i.ExpiresAt,
	}
}

// LoadIdentity reads the Identity from the session. Missing keys leave the
// corresponding fields empty.
func LoadIdentity(ctx context.Context, s SessionStore) (*Identity, error) {
	const op = "wargaming.LoadIdentity"
	if s == nil {
		return nil, fmt.Errorf("%s: session store is nil: %w", op, ErrNilParameter)
	}
	id := &Identity{}
	var err error
	if id.AccountID, _, err = s.Get(ctx, SessionKeyAccountID); err != nil {
		return nil, fmt.Errorf("%s: unable to read account id: %w", op, err)
	}
	if id.AccessToken, _, err = s.Get(ctx, SessionKeyAccessToken); err != nil {
		return nil, fmt.Errorf("%s: unable to read access token: %w", op, err)
	}
	exp, ok, err := s.Get(ctx, SessionKeyExpiresAt)
	if err != nil {
		return nil, fmt.Errorf("%s: unable to read expiry: %w", op, err)
	}
	if ok && exp != "" {
		// an unparsable expiry is treated as absent, which makes the
		// identity stale rather than failing every request of the session
		if secs, err := strconv.ParseInt(exp, 10, 64); err == nil {
			id.ExpiresAt = time.Unix(secs, 0)
		}
	}
	return id, nil
}

// StoreIdentity writes the non-empty fields of id to the session.
func StoreIdentity(ctx context.Context, s SessionStore, id *Identity) error {
	const op = "wargaming.StoreIdentity"
	switch {
	case s == nil:
		return fmt.Errorf("%s: session store is nil: %w", op, ErrNilParameter)
	case id == nil:
		return fmt.Errorf("%s: identity is nil: %w", op, ErrNilParameter)
	}
	if id.AccountID != "" {
		if err := s.Set(ctx, SessionKeyAccountID, id.AccountID); err != nil {
			return fmt.Errorf("%s: unable to store account id: %w", op, err)
		}
	}
	if id.AccessToken != "" {
		if err := s.Set(ctx, SessionKeyAccessToken, id.AccessToken); err != nil {
			return fmt.Errorf("%s: unable to store access token: %w", op, err)
		}
	}
	if !id.ExpiresAt.IsZero() {
		if err := s.Set(ctx, SessionKeyExpiresAt, strconv.FormatInt(id.ExpiresAt.Unix(), 10)); err != nil {
			return fmt.Errorf("%s: unable to store expiry: %w", op, err)
		}
	}
	return nil
}

// ClearIdentity removes the account id, access token and expiry from the
// session.
func ClearIdentity(ctx context.Context, s SessionStore) error {
	const op = "wargaming.ClearIdentity"
	if s == nil {
		return fmt.Errorf("%s: session store is nil: %w", op, ErrNilParameter)
	}
	if err := forgetKeys(ctx, s, SessionKeyAccountID, SessionKeyAccessToken, SessionKeyExpiresAt); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// forgetKeys removes keys from the session.
func forgetKeys(ctx context.Context, s SessionStore, keys ...string) error {
	for _, k := range keys {
		if err := s.Forget(ctx, k); err != nil {
			return fmt.Errorf("unable to forget %s: %w", k, err)
		}
	}
	return nil
}
