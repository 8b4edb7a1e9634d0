// Copyright IBM Corp. 2020, 2025
// SPDX-License-Identifier: MPL-2.0

package callback

import (
	"context"
	"fmt"
	"net/http"

	"github.com/rguedes/wgauth/wargaming"
	"golang.org/x/oauth2"
)

type ctxKey int

const (
	identityKey ctxKey = iota
	profileKey
)

// RequireLogin creates a middleware which only lets logged in users through
// to next; everyone else is sent to the provider's login page.
//
// In the token flow the session's access token is validated with the
// provider on every request and the user's profile is made available with
// GetProfile. The legacy flow has no token to validate, so an account id in
// the session is enough, unless it's wargaming.AnonymousAccountID.
func RequireLogin(p *wargaming.Provider, sl SessionLoader, eFn ErrorResponseFunc, next http.Handler) (http.Handler, error) {
	const op = "callback.RequireLogin"
	switch {
	case p == nil:
		return nil, fmt.Errorf("%s: provider is empty: %w", op, wargaming.ErrInvalidParameter)
	case sl == nil:
		return nil, fmt.Errorf("%s: session loader is empty: %w", op, wargaming.ErrInvalidParameter)
	case eFn == nil:
		return nil, fmt.Errorf("%s: error response func is empty: %w", op, wargaming.ErrInvalidParameter)
	case next == nil:
		return nil, fmt.Errorf("%s: next handler is empty: %w", op, wargaming.ErrInvalidParameter)
	}
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		ctx := req.Context()
		a, err := newAuth(p, sl, w, req)
		if err != nil {
			eFn(nil, fmt.Errorf("%s: %w", op, err), w, req)
			return
		}

		var ok bool
		switch p.Config().Mode {
		case wargaming.ModeLegacy:
			ok = a.AccountID() != "" && a.AccountID() != wargaming.AnonymousAccountID
		default:
			if ok, err = a.Validate(ctx); err != nil {
				eFn(nil, fmt.Errorf("%s: %w", op, err), w, req)
				return
			}
		}
		if !ok {
			a.Redirect().ServeHTTP(w, req)
			return
		}

		ctx = context.WithValue(ctx, identityKey, a.Identity())
		if profile := a.UserInfo(); profile != nil {
			ctx = context.WithValue(ctx, profileKey, profile)
		}
		next.ServeHTTP(w, req.WithContext(ctx))
	}), nil
}

// GetIdentity returns the identity RequireLogin stored in the context.
func GetIdentity(ctx context.Context) (wargaming.Identity, bool) {
	id, ok := ctx.Value(identityKey).(wargaming.Identity)
	return id, ok
}

// GetProfile returns the profile RequireLogin stored in the context.
func GetProfile(ctx context.Context) (*wargaming.ProfileRecord, bool) {
	p, ok := ctx.Value(profileKey).(*wargaming.ProfileRecord)
	return p, ok
}

// GetTokenSource returns a token source for the access token of the identity
// RequireLogin stored in the context, for use with oauth2-aware clients. It
// returns false when there is no access token (always the case in the legacy
// flow).
func GetTokenSource(ctx context.Context) (oauth2.TokenSource, bool) {
	id, ok := GetIdentity(ctx)
	if !ok {
		return nil, false
	}
	tok := id.Token()
	if tok == nil {
		return nil, false
	}
	return oauth2.StaticTokenSource(tok), true
}
