// Copyright IBM Corp. 2020, 2025
// SPDX-License-Identifier: MPL-2.0

package callback

import (
	"fmt"
	"net/http"

	"github.com/rguedes/wgauth/wargaming"
)

// Login creates a handler which sends the user to the provider's login page.
// The opts are passed to wargaming.NewAuth (for example wargaming.WithFormPost
// or wargaming.WithReturnURL).
func Login(p *wargaming.Provider, sl SessionLoader, eFn ErrorResponseFunc, opt ...wargaming.Option) (http.HandlerFunc, error) {
	const op = "callback.Login"
	switch {
	case p == nil:
		return nil, fmt.Errorf("%s: provider is empty: %w", op, wargaming.ErrInvalidParameter)
	case sl == nil:
		return nil, fmt.Errorf("%s: session loader is empty: %w", op, wargaming.ErrInvalidParameter)
	case eFn == nil:
		return nil, fmt.Errorf("%s: error response func is empty: %w", op, wargaming.ErrInvalidParameter)
	}
	return func(w http.ResponseWriter, req *http.Request) {
		a, err := newAuth(p, sl, w, req, opt...)
		if err != nil {
			eFn(nil, fmt.Errorf("%s: %w", op, err), w, req)
			return
		}
		a.Redirect().ServeHTTP(w, req)
	}, nil
}

// Callback creates a handler for the provider's redirect back to the
// application at the end of a login.
//
// In the token flow the provider's parameters are checked and the identity is
// stored in the session (see wargaming.Auth.CompleteLogin); in the legacy flow
// the OpenID response is verified with the provider. In both cases the login
// is then validated, which loads the user's profile.
//
// The SuccessResponseFunc is used to create a response when the login is
// successful. The ErrorResponseFunc is used to create a response when the
// provider reports an error or the login can't be verified.
func Callback(p *wargaming.Provider, sl SessionLoader, sFn SuccessResponseFunc, eFn ErrorResponseFunc) (http.HandlerFunc, error) {
	const op = "callback.Callback"
	switch {
	case p == nil:
		return nil, fmt.Errorf("%s: provider is empty: %w", op, wargaming.ErrInvalidParameter)
	case sl == nil:
		return nil, fmt.Errorf("%s: session loader is empty: %w", op, wargaming.ErrInvalidParameter)
	case sFn == nil:
		return nil, fmt.Errorf("%s: success response func is empty: %w", op, wargaming.ErrInvalidParameter)
	case eFn == nil:
		return nil, fmt.Errorf("%s: error response func is empty: %w", op, wargaming.ErrInvalidParameter)
	}
	return func(w http.ResponseWriter, req *http.Request) {
		ctx := req.Context()
		a, err := newAuth(p, sl, w, req)
		if err != nil {
			eFn(nil, fmt.Errorf("%s: %w", op, err), w, req)
			return
		}
		// get parameters from either the body or query parameters.
		if err := req.ParseForm(); err != nil {
			eFn(nil, fmt.Errorf("%s: unable to parse callback: %w: %w", op, wargaming.ErrMissingCallbackParams, err), w, req)
			return
		}

		switch p.Config().Mode {
		case wargaming.ModeLegacy:
			if mode := openIDMode(req); mode == "cancel" {
				eFn(&AuthenErrorResponse{Status: mode}, nil, w, req)
				return
			}
		default:
			switch status := req.Form.Get("status"); status {
			case "":
				eFn(nil, fmt.Errorf("%s: no status: %w", op, wargaming.ErrMissingCallbackParams), w, req)
				return
			case "ok":
			default:
				eFn(&AuthenErrorResponse{
					Status:  status,
					Code:    req.Form.Get("code"),
					Message: req.Form.Get("message"),
				}, nil, w, req)
				return
			}
			if err := a.CompleteLogin(ctx, req.Form); err != nil {
				eFn(nil, fmt.Errorf("%s: %w", op, err), w, req)
				return
			}
		}

		ok, err := a.Validate(ctx)
		if err != nil {
			eFn(nil, fmt.Errorf("%s: %w", op, err), w, req)
			return
		}
		if !ok {
			eFn(nil, fmt.Errorf("%s: login not confirmed by the provider: %w", op, wargaming.ErrLoginFailed), w, req)
			return
		}
		if a.AccountID() == wargaming.AnonymousAccountID {
			eFn(nil, fmt.Errorf("%s: claimed id has no account id: %w", op, wargaming.ErrLoginFailed), w, req)
			return
		}
		sFn(a, w, req)
	}, nil
}

// Logout creates a handler which invalidates the session's access token with
// the provider and removes the identity from the session. When the provider
// doesn't confirm the logout the ErrorResponseFunc receives
// wargaming.ErrLogoutFailed and the session is left as it was.
func Logout(p *wargaming.Provider, sl SessionLoader, sFn SuccessResponseFunc, eFn ErrorResponseFunc) (http.HandlerFunc, error) {
	const op = "callback.Logout"
	switch {
	case p == nil:
		return nil, fmt.Errorf("%s: provider is empty: %w", op, wargaming.ErrInvalidParameter)
	case sl == nil:
		return nil, fmt.Errorf("%s: session loader is empty: %w", op, wargaming.ErrInvalidParameter)
	case sFn == nil:
		return nil, fmt.Errorf("%s: success response func is empty: %w", op, wargaming.ErrInvalidParameter)
	case eFn == nil:
		return nil, fmt.Errorf("%s: error response func is empty: %w", op, wargaming.ErrInvalidParameter)
	}
	return func(w http.ResponseWriter, req *http.Request) {
		a, err := newAuth(p, sl, w, req)
		if err != nil {
			eFn(nil, fmt.Errorf("%s: %w", op, err), w, req)
			return
		}
		ok, err := a.Logout(req.Context())
		if err != nil {
			eFn(nil, fmt.Errorf("%s: %w", op, err), w, req)
			return
		}
		if !ok {
			eFn(nil, fmt.Errorf("%s: %w", op, wargaming.ErrLogoutFailed), w, req)
			return
		}
		sFn(a, w, req)
	}, nil
}

func newAuth(p *wargaming.Provider, sl SessionLoader, w http.ResponseWriter, req *http.Request, opt ...wargaming.Option) (*wargaming.Auth, error) {
	s, err := sl(w, req)
	if err != nil {
		return nil, fmt.Errorf("unable to load session: %w", err)
	}
	return wargaming.NewAuth(req.Context(), p, s, req, opt...)
}

func openIDMode(req *http.Request) string {
	if m := req.Form.Get("openid.mode"); m != "" {
		return m
	}
	return req.Form.Get("openid_mode")
}
