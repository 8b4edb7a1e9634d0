// Copyright IBM Corp. 2020, 2025
// SPDX-License-Identifier: MPL-2.0

package wargaming

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/hashicorp/go-hclog"
)

// maxResponseSize bounds how much of a provider response body is read.
const maxResponseSize = 1 << 20

// Provider provides integration with the Wargaming identity provider and its
// public API. A Provider is safe for concurrent use and is meant to be
// created once and shared by every request.
type Provider struct {
	config *Config
	client *http.Client
	logger hclog.Logger
}

// NewProvider creates and initializes a Provider. Unlike an OIDC provider
// there is no discovery, so no http request is made.
// Supported options:
//
//	WithHTTPClient
func NewProvider(c *Config, opt ...Option) (*Provider, error) {
	const op = "wargaming.NewProvider"
	if c == nil {
		return nil, fmt.Errorf("%s: provider config is nil: %w", op, ErrNilParameter)
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("%s: provider config is invalid: %w", op, err)
	}
	opts := getProviderOpts(opt...)

	client := opts.withHTTPClient
	if client == nil {
		var err error
		if client, err = c.HTTPClient(); err != nil {
			return nil, fmt.Errorf("%s: unable to create http client: %w", op, err)
		}
	}
	logger := c.Logger
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &Provider{
		config: c,
		client: client,
		logger: logger.Named("wargaming"),
	}, nil
}

// Config returns the provider's configuration.
func (p *Provider) Config() *Config { return p.config }

// CheckAuthentication sends an OpenID check_authentication request and
// returns the parsed key:value response.
func (p *Provider) CheckAuthentication(ctx context.Context, form url.Values) (map[string]string, error) {
	const op = "Provider.CheckAuthentication"
	body, err := p.postForm(ctx, p.config.Endpoints.OpenID, form)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	kv, err := ParseKeyValue(string(body))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return kv, nil
}

// Logout invalidates the access token with the provider. It returns true when
// the provider answered with status "ok"; any other status returns false
// with a nil error.
func (p *Provider) Logout(ctx context.Context, accessToken string) (bool, error) {
	const op = "Provider.Logout"
	if accessToken == "" {
		return false, fmt.Errorf("%s: access token is empty: %w", op, ErrInvalidParameter)
	}
	form := url.Values{
		"application_id": {p.config.ApplicationID},
		"access_token":   {accessToken},
	}
	body, err := p.postForm(ctx, p.config.Endpoints.Logout, form)
	switch {
	case errors.Is(err, ErrUnexpectedStatus):
		// an error page carrying an API envelope is a refusal, not a failure
		if resp, decErr := decodeResponse(body); decErr == nil {
			p.logger.Warn("logout rejected by provider", "status", resp.Status, "error", err)
			return false, nil
		}
		return false, fmt.Errorf("%s: %w", op, err)
	case err != nil:
		return false, fmt.Errorf("%s: %w", op, err)
	}
	resp, err := decodeResponse(body)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	if resp.Status != statusOK {
		p.logger.Warn("logout rejected by provider", "status", resp.Status, "error", resp.Error)
		return false, nil
	}
	return true, nil
}

func (p *Provider) get(ctx context.Context, endpoint string, params url.Values) ([]byte, error) {
	u, err := url.Parse(endpoint)
	if err != nil {
		return nil, fmt.Errorf("invalid endpoint %q: %w", endpoint, ErrInvalidParameter)
	}
	q := u.Query()
	for k, vs := range params {
		for _, v := range vs {
			q.Add(k, v)
		}
	}
	u.RawQuery = q.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("unable to create request: %w", err)
	}
	return p.do(req)
}

func (p *Provider) postForm(ctx context.Context, endpoint string, form url.Values) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("unable to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return p.do(req)
}

func (p *Provider) do(req *http.Request) ([]byte, error) {
	p.logger.Trace("provider request", "method", req.Method, "url", redactURL(req.URL))
	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrProviderUnreachable, err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("%w: unable to read response: %w", ErrProviderUnreachable, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// the body is returned with the error so callers can look for an API envelope
		return body, fmt.Errorf("%w: %d from %s", ErrUnexpectedStatus, resp.StatusCode, req.URL.Path)
	}
	return body, nil
}

// redactURL returns the url with the access token removed, for logging.
func redactURL(u *url.URL) string {
	q := u.Query()
	if q.Has("access_token") {
		q.Set("access_token", "[REDACTED]")
	}
	c := *u
	c.RawQuery = q.Encode()
	return c.String()
}

// providerOptions is the set of available options for NewProvider
type providerOptions struct {
	withHTTPClient *http.Client
}

func providerDefaults() providerOptions {
	return providerOptions{}
}

func getProviderOpts(opt ...Option) providerOptions {
	opts := providerDefaults()
	ApplyOpts(&opts, opt...)
	return opts
}

// WithHTTPClient provides an optional http client used instead of the one
// built from the Config.
func WithHTTPClient(c *http.Client) Option {
	return func(o interface{}) {
		if o, ok := o.(*providerOptions); ok {
			o.withHTTPClient = c
		}
	}
}
