// Copyright IBM Corp. 2020, 2025
// SPDX-License-Identifier: MPL-2.0

package wargaming

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

const (
	openIDNamespace      = "http://specs.openid.net/auth/2.0"
	openIDIdentifierSel  = "http://specs.openid.net/auth/2.0/identifier_select"
	openIDModeSetup      = "checkid_setup"
	openIDModeCheckAuthn = "check_authentication"
)

// LoginURL builds the URL the user is sent to for login. The returnURL is
// where the provider sends the user back to; it must be an absolute URL with
// a scheme (see ReturnURL), otherwise ErrInvalidReturnURL is returned.
//
// The query parameters are encoded in sorted order, so the URL is stable for
// a given configuration.
// Supported options:
//
//	WithRealmHost
func (p *Provider) LoginURL(returnURL string, opt ...Option) (string, error) {
	const op = "Provider.LoginURL"
	u, err := validReturnURL(returnURL)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	opts := getLoginURLOpts(opt...)

	var endpoint string
	params := url.Values{}
	switch p.config.Mode {
	case ModeLegacy:
		endpoint = p.config.Endpoints.OpenID
		host := opts.withRealmHost
		if host == "" {
			host = u.Host
		}
		params.Set("openid.ns", openIDNamespace)
		params.Set("openid.mode", openIDModeSetup)
		params.Set("openid.return_to", returnURL)
		params.Set("openid.realm", scheme(p.config.HTTPS)+"://"+host)
		params.Set("openid.identity", openIDIdentifierSel)
		params.Set("openid.claimed_id", openIDIdentifierSel)
	default:
		endpoint = p.config.Endpoints.Login
		params.Set("application_id", p.config.ApplicationID)
		params.Set("redirect_uri", returnURL)
		if p.config.NoFollow {
			params.Set("nofollow", "1")
		}
		if p.config.TokenLifetime > 0 {
			// the provider accepts a delta in seconds as well as a timestamp
			params.Set("expires_at", strconv.FormatInt(int64(p.config.TokenLifetime.Seconds()), 10))
		}
	}
	return endpoint + "?" + params.Encode(), nil
}

// ReturnURL resolves the configured RedirectURL for a request. Absolute URLs
// are returned unchanged; a path is joined onto the request's host, using
// https when Config.HTTPS is set.
func ReturnURL(c *Config, r *http.Request) (string, error) {
	const op = "wargaming.ReturnURL"
	if c == nil {
		return "", fmt.Errorf("%s: config is nil: %w", op, ErrNilParameter)
	}
	target := c.RedirectURL
	if u, err := url.Parse(target); err == nil && u.IsAbs() {
		return target, nil
	}
	if r == nil || r.Host == "" {
		return "", fmt.Errorf("%s: redirect URL %q is relative and the request has no host: %w", op, target, ErrInvalidReturnURL)
	}
	if !strings.HasPrefix(target, "/") {
		target = "/" + target
	}
	return scheme(c.HTTPS) + "://" + r.Host + target, nil
}

func validReturnURL(returnURL string) (*url.URL, error) {
	u, err := url.Parse(returnURL)
	if err != nil {
		return nil, fmt.Errorf("%q: %w", returnURL, ErrInvalidReturnURL)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("%q: %w", returnURL, ErrInvalidReturnURL)
	}
	return u, nil
}

func scheme(https bool) string {
	if https {
		return "https"
	}
	return "http"
}

// loginURLOptions is the set of available options for LoginURL
type loginURLOptions struct {
	withRealmHost string
}

func loginURLDefaults() loginURLOptions {
	return loginURLOptions{}
}

func getLoginURLOpts(opt ...Option) loginURLOptions {
	opts := loginURLDefaults()
	ApplyOpts(&opts, opt...)
	return opts
}

// WithRealmHost provides the host (typically the request's Host header) used
// for the OpenID realm. It defaults to the return URL's host.
func WithRealmHost(host string) Option {
	return func(o interface{}) {
		if o, ok := o.(*loginURLOptions); ok {
			o.withRealmHost = host
		}
	}
}
