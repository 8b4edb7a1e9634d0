// Copyright IBM Corp. 2020, 2025
// SPDX-License-Identifier: MPL-2.0

package wargaming

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/hashicorp/go-hclog"
)

// Auth is the session-backed entry point for one request. Create one per
// request with NewAuth and discard it at the end of the request; the only
// state that survives is what it writes to the SessionStore.
type Auth struct {
	provider *Provider
	verifier Verifier
	store    SessionStore
	request  *http.Request
	logger   hclog.Logger

	identity     *Identity
	profile      *ProfileRecord
	authURL      string
	formPost     bool
	restartLogin bool
}

// NewAuth creates an Auth for the request r. It loads the identity from the
// session and builds the login URL immediately, so an invalid return URL
// fails construction with ErrInvalidReturnURL.
// Supported options:
//
//	WithReturnURL
//	WithFormPost
//	WithVerifier
func NewAuth(ctx context.Context, p *Provider, store SessionStore, r *http.Request, opt ...Option) (*Auth, error) {
	const op = "wargaming.NewAuth"
	switch {
	case p == nil:
		return nil, fmt.Errorf("%s: provider is nil: %w", op, ErrNilParameter)
	case store == nil:
		return nil, fmt.Errorf("%s: session store is nil: %w", op, ErrNilParameter)
	case r == nil:
		return nil, fmt.Errorf("%s: request is nil: %w", op, ErrNilParameter)
	}
	opts := getAuthOpts(opt...)

	id, err := LoadIdentity(ctx, store)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	returnURL := opts.withReturnURL
	if returnURL == "" {
		if returnURL, err = ReturnURL(p.config, r); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
	}
	authURL, err := p.LoginURL(returnURL, WithRealmHost(r.Host))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	v := opts.withVerifier
	if v == nil {
		if v, err = NewVerifier(p); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
	}

	return &Auth{
		provider: p,
		verifier: v,
		store:    store,
		request:  r,
		logger:   p.logger,
		identity: id,
		authURL:  authURL,
		formPost: opts.withFormPost,
	}, nil
}

// Validate checks whether the user is logged in, using the configured
// verification strategy. It returns false with a nil error when the user
// isn't logged in; errors are transport or protocol failures.
//
// On success the profile returned by UserInfo is refreshed and, in the
// legacy flow, the verified account id is written to the session.
// Supported options:
//
//	WithCallbackParams
func (a *Auth) Validate(ctx context.Context, opt ...Option) (bool, error) {
	const op = "Auth.Validate"
	opts := getValidateOpts(opt...)

	id, err := LoadIdentity(ctx, a.store)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	a.identity = id
	a.restartLogin = false

	params := opts.withCallbackParams
	if params == nil {
		params = a.callbackParams()
	}
	ver, err := a.verifier.Verify(ctx, &VerifyRequest{Callback: params, Identity: id})
	if err != nil {
		a.profile = nil
		return false, fmt.Errorf("%s: %w", op, err)
	}
	a.restartLogin = ver.RestartLogin
	a.logger.Debug("login verified", "mode", a.verifier.Mode(), "outcome", ver.Outcome)
	if !ver.Outcome.Valid() {
		a.profile = nil
		return false, nil
	}

	if ver.Identity != nil && *ver.Identity != *id {
		if err := StoreIdentity(ctx, a.store, ver.Identity); err != nil {
			a.profile = nil
			return false, fmt.Errorf("%s: %w", op, err)
		}
		a.identity = ver.Identity
	}
	a.profile = ver.Profile
	return true, nil
}

// CompleteLogin handles the parameters the provider sends back at the end
// of the token flow and, when the provider reports success, stores the
// identity in the session. A failed login is ErrLoginFailed and leaves the
// session untouched.
func (a *Auth) CompleteLogin(ctx context.Context, params url.Values) error {
	const op = "Auth.CompleteLogin"
	if status := params.Get("status"); status != statusOK {
		return fmt.Errorf("%s: provider reported %q (%s %s): %w", op, status, params.Get("code"), params.Get("message"), ErrLoginFailed)
	}
	id := &Identity{
		AccountID:   params.Get("account_id"),
		AccessToken: params.Get("access_token"),
	}
	if !id.Complete() {
		return fmt.Errorf("%s: account_id or access_token is missing: %w", op, ErrLoginFailed)
	}
	if exp := params.Get("expires_at"); exp != "" {
		secs, err := strconv.ParseInt(exp, 10, 64)
		if err != nil {
			return fmt.Errorf("%s: invalid expires_at %q: %w", op, exp, ErrLoginFailed)
		}
		id.ExpiresAt = time.Unix(secs, 0)
	}
	if err := StoreIdentity(ctx, a.store, id); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	a.identity = id
	a.profile = nil
	a.logger.Debug("login completed", "account_id", id.AccountID, "nickname", params.Get("nickname"))
	return nil
}

// LoadUserInfo validates the login and returns the profile. It returns
// ErrNotAuthenticated when the user isn't logged in.
func (a *Auth) LoadUserInfo(ctx context.Context) (*ProfileRecord, error) {
	const op = "Auth.LoadUserInfo"
	ok, err := a.Validate(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if !ok {
		return nil, fmt.Errorf("%s: %w", op, ErrNotAuthenticated)
	}
	return a.profile, nil
}

// ClanMembershipInfo returns the clan membership of the session's account.
func (a *Auth) ClanMembershipInfo(ctx context.Context) (*ClanMembership, error) {
	const op = "Auth.ClanMembershipInfo"
	if a.identity.AccountID == "" {
		return nil, fmt.Errorf("%s: %w", op, ErrNotAuthenticated)
	}
	m, err := a.provider.ClanMembershipInfo(ctx, a.identity.AccountID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return m, nil
}

// ClanMembers returns the members of a clan.
func (a *Auth) ClanMembers(ctx context.Context, clanID string) ([]ClanMember, error) {
	const op = "Auth.ClanMembers"
	members, err := a.provider.ClanMembers(ctx, clanID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return members, nil
}

// Logout invalidates the session's access token with the provider. When the
// provider confirms, the account id and access token are removed from the
// session and true is returned. Otherwise the session is left as it was and
// false is returned. Without an access token no request is made.
func (a *Auth) Logout(ctx context.Context) (bool, error) {
	const op = "Auth.Logout"
	id, err := LoadIdentity(ctx, a.store)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	a.identity = id
	if id.AccessToken == "" {
		return false, nil
	}
	ok, err := a.provider.Logout(ctx, id.AccessToken)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	if !ok {
		return false, nil
	}
	if err := forgetKeys(ctx, a.store, SessionKeyAccountID, SessionKeyAccessToken); err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	a.identity = &Identity{ExpiresAt: id.ExpiresAt}
	a.profile = nil
	return true, nil
}

// Redirect returns the instruction to send the user to the login URL.
func (a *Auth) Redirect() *Redirect {
	method := "get"
	if a.provider.config.Mode == ModeLegacy {
		method = "post"
	}
	return &Redirect{URL: a.authURL, FormPost: a.formPost, Method: method}
}

// SetAccountID stores the account id in the session.
func (a *Auth) SetAccountID(ctx context.Context, accountID string) error {
	if err := a.store.Set(ctx, SessionKeyAccountID, accountID); err != nil {
		return fmt.Errorf("Auth.SetAccountID: %w", err)
	}
	a.identity.AccountID = accountID
	return nil
}

// SetAccessToken stores the access token in the session.
func (a *Auth) SetAccessToken(ctx context.Context, token string) error {
	if err := a.store.Set(ctx, SessionKeyAccessToken, token); err != nil {
		return fmt.Errorf("Auth.SetAccessToken: %w", err)
	}
	a.identity.AccessToken = token
	return nil
}

// SetExpiresAt stores the access token expiry in the session.
func (a *Auth) SetExpiresAt(ctx context.Context, t time.Time) error {
	if err := a.store.Set(ctx, SessionKeyExpiresAt, strconv.FormatInt(t.Unix(), 10)); err != nil {
		return fmt.Errorf("Auth.SetExpiresAt: %w", err)
	}
	a.identity.ExpiresAt = time.Unix(t.Unix(), 0)
	return nil
}

// AuthURL returns the login URL.
func (a *Auth) AuthURL() string { return a.authURL }

// UserInfo returns the profile loaded by the last successful Validate, or nil.
func (a *Auth) UserInfo() *ProfileRecord { return a.profile }

// AccountID returns the account id of the session, or "".
func (a *Auth) AccountID() string { return a.identity.AccountID }

// AccessToken returns the access token of the session, or "".
func (a *Auth) AccessToken() string { return a.identity.AccessToken }

// ExpiresAt returns the access token expiry, or the zero time.
func (a *Auth) ExpiresAt() time.Time { return a.identity.ExpiresAt }

// Identity returns a copy of the session's identity.
func (a *Auth) Identity() Identity { return *a.identity }

// RestartLogin returns true when the last Validate failed because the
// provider rejected the access token.
func (a *Auth) RestartLogin() bool { return a.restartLogin }

func (a *Auth) callbackParams() url.Values {
	if err := a.request.ParseForm(); err != nil {
		a.logger.Debug("unable to parse callback form", "error", err)
		return a.request.URL.Query()
	}
	return a.request.Form
}

// authOptions is the set of available options for NewAuth
type authOptions struct {
	withReturnURL string
	withFormPost  bool
	withVerifier  Verifier
}

func authDefaults() authOptions {
	return authOptions{}
}

func getAuthOpts(opt ...Option) authOptions {
	opts := authDefaults()
	ApplyOpts(&opts, opt...)
	return opts
}

// WithReturnURL overrides the configured RedirectURL. It's used verbatim, so
// it must be an absolute URL.
func WithReturnURL(u string) Option {
	return func(o interface{}) {
		if o, ok := o.(*authOptions); ok {
			o.withReturnURL = u
		}
	}
}

// WithFormPost makes Redirect render an auto-submitting form.
func WithFormPost() Option {
	return func(o interface{}) {
		if o, ok := o.(*authOptions); ok {
			o.withFormPost = true
		}
	}
}

// WithVerifier overrides the verifier selected from the configured Mode.
func WithVerifier(v Verifier) Option {
	return func(o interface{}) {
		if o, ok := o.(*authOptions); ok {
			o.withVerifier = v
		}
	}
}

// validateOptions is the set of available options for Validate
type validateOptions struct {
	withCallbackParams url.Values
}

func validateDefaults() validateOptions {
	return validateOptions{}
}

func getValidateOpts(opt ...Option) validateOptions {
	opts := validateDefaults()
	ApplyOpts(&opts, opt...)
	return opts
}

// WithCallbackParams provides the callback parameters instead of reading
// them from the request.
func WithCallbackParams(params url.Values) Option {
	return func(o interface{}) {
		if o, ok := o.(*validateOptions); ok {
			o.withCallbackParams = params
		}
	}
}
