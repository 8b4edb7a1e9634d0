// Copyright IBM Corp. 2020, 2025
// SPDX-License-Identifier: MPL-2.0

package wargaming

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

// AnonymousAccountID is the account id of a legacy login whose claimed id
// can't be parsed. It identifies no user and must not be treated as logged in.
const AnonymousAccountID = "0"

// LegacyVerifier verifies OpenID 2.0 callbacks by sending the signed
// parameters back to the provider in a check_authentication request.
type LegacyVerifier struct {
	p         *Provider
	claimedID *regexp.Regexp
}

// ensure that LegacyVerifier implements the Verifier interface
var _ Verifier = (*LegacyVerifier)(nil)

// NewLegacyVerifier creates a LegacyVerifier.
func NewLegacyVerifier(p *Provider) (*LegacyVerifier, error) {
	const op = "wargaming.NewLegacyVerifier"
	if p == nil {
		return nil, fmt.Errorf("%s: provider is nil: %w", op, ErrNilParameter)
	}
	host := p.config.Endpoints.openIDHost()
	if host == "" {
		return nil, fmt.Errorf("%s: openid endpoint has no host: %w", op, ErrInvalidParameter)
	}
	// The provider issues https claimed ids, so this only matches http ones
	// and everything else falls back to the anonymous account id.
	re, err := regexp.Compile(`^http://` + regexp.QuoteMeta(host) + `/id/([0-9]{9})`)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &LegacyVerifier{p: p, claimedID: re}, nil
}

// Mode returns ModeLegacy.
func (v *LegacyVerifier) Mode() Mode { return ModeLegacy }

// Verify checks an OpenID callback. A callback without assoc_handle, signed
// and sig is OutcomeInvalid without any request to the provider.
func (v *LegacyVerifier) Verify(ctx context.Context, req *VerifyRequest) (*Verification, error) {
	const op = "LegacyVerifier.Verify"
	if req == nil {
		return nil, fmt.Errorf("%s: request is nil: %w", op, ErrNilParameter)
	}
	params := req.Callback
	assocHandle := openIDParam(params, "assoc_handle")
	signed := openIDParam(params, "signed")
	sig := openIDParam(params, "sig")
	if assocHandle == "" || signed == "" || sig == "" {
		v.p.logger.Debug("callback rejected", "error", ErrMissingCallbackParams)
		return &Verification{Outcome: OutcomeInvalid}, nil
	}

	form := url.Values{
		"openid.ns":           {openIDNamespace},
		"openid.assoc_handle": {assocHandle},
		"openid.signed":       {signed},
		"openid.sig":          {sig},
	}
	for _, name := range strings.Split(signed, ",") {
		if name == "" {
			continue
		}
		value := openIDParam(params, name)
		if v.p.config.LegacySlashEscaping {
			value = stripSlashes(value)
		}
		form.Set("openid."+name, value)
	}
	form.Set("openid.mode", openIDModeCheckAuthn)

	result, err := v.p.CheckAuthentication(ctx, form)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	accountID := v.AccountID(openIDParam(params, "claimed_id"))
	if result["is_valid"] != "true" {
		v.p.logger.Debug("provider did not confirm the callback", "is_valid", result["is_valid"])
		return &Verification{Outcome: OutcomeInvalid}, nil
	}

	ver := &Verification{
		Outcome:  OutcomeValid,
		Identity: &Identity{AccountID: accountID},
	}
	profile, err := v.p.AccountInfo(ctx, accountID, "")
	switch {
	case err == nil:
		ver.Profile = profile
	case errors.Is(err, ErrProfileNotFound):
		v.p.logger.Debug("verified account has no profile", "account_id", accountID)
	default:
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	v.p.logger.Debug("callback verified", "account_id", accountID)
	return ver, nil
}

// AccountID extracts the 9 digit account id from a claimed id, or returns
// "0" when the claimed id doesn't match.
func (v *LegacyVerifier) AccountID(claimedID string) string {
	m := v.claimedID.FindStringSubmatch(claimedID)
	if len(m) < 2 {
		return AnonymousAccountID
	}
	return m[1]
}

// openIDParam returns the openid parameter name from the callback, accepting
// both the "openid.name" form and the form some frameworks rewrite it to,
// with dots replaced by underscores.
func openIDParam(params url.Values, name string) string {
	if v := params.Get("openid." + name); v != "" {
		return v
	}
	return params.Get("openid_" + strings.ReplaceAll(name, ".", "_"))
}

// stripSlashes removes backslash escaping: every backslash is dropped and
// the character following it is kept.
func stripSlashes(s string) string {
	if !strings.Contains(s, `\`) {
		return s
	}
	var b strings.Builder
	escaped := false
	for _, r := range s {
		if r == '\\' && !escaped {
			escaped = true
			continue
		}
		escaped = false
		b.WriteRune(r)
	}
	return b.String()
}
