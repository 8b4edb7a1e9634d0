// Copyright IBM Corp. 2020, 2025
// SPDX-License-Identifier: MPL-2.0

package wargaming

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/hashicorp/go-multierror"
	sdkHttp "github.com/rguedes/wgauth/sdk/http"
	"golang.org/x/text/language"
)

// Mode selects how a login callback is verified.
type Mode string

const (
	// ModeToken uses the provider's token flow (wot/auth/login) and verifies
	// a session by presenting the stored access token to the account info
	// endpoint.
	ModeToken Mode = "token"

	// ModeLegacy uses the provider's OpenID 2.0 endpoint and verifies the
	// callback with a check_authentication round trip.
	ModeLegacy Mode = "openid"
)

// Config represents the configuration of an application registered with the
// provider.
type Config struct {
	// ApplicationID is the application id issued by the provider's developer
	// room (the "api_key").
	ApplicationID string

	// RedirectURL is the URL, or the path on the current host, the provider
	// sends the user back to after login.
	RedirectURL string

	// HTTPS selects the scheme used when RedirectURL is a path, and the
	// scheme of the OpenID realm.
	HTTPS bool

	// Mode selects the login flow and the callback verification strategy.
	Mode Mode

	// Region is the provider cluster the application is registered with.
	Region Region

	// Endpoints are the provider URLs. They default to the Region's
	// endpoints.
	Endpoints Endpoints

	// ProviderCA is an optional CA cert to use when sending requests to the provider.
	ProviderCA string

	// Timeout for requests sent to the provider.
	Timeout time.Duration

	// Language is an optional provider language code sent with info
	// requests. See LanguageCode.
	Language string

	// LegacySlashEscaping strips backslash escaping from signed callback
	// values before they're sent back for check_authentication.
	LegacySlashEscaping bool

	// NoFollow asks the provider not to redirect the user back in the token
	// flow; the callback parameters are shown to the user instead.
	NoFollow bool

	// TokenLifetime is an optional requested access token lifetime for the
	// token flow.
	TokenLifetime time.Duration

	// Logger is an optional logger. It defaults to a null logger.
	Logger hclog.Logger
}

// NewConfig composes a new config for an application.
// Supported options:
//
//	WithMode
//	WithHTTPS
//	WithRegion
//	WithEndpoints
//	WithProviderCA
//	WithTimeout
//	WithLanguage
//	WithLegacySlashEscaping
//	WithNoFollow
//	WithTokenLifetime
//	WithLogger
func NewConfig(applicationID string, redirectURL string, opt ...Option) (*Config, error) {
	const op = "wargaming.NewConfig"
	opts := getConfigOpts(opt...)
	c := &Config{
		ApplicationID:       applicationID,
		RedirectURL:         redirectURL,
		HTTPS:               opts.withHTTPS,
		Mode:                opts.withMode,
		Region:              opts.withRegion,
		ProviderCA:          opts.withProviderCA,
		Timeout:             opts.withTimeout,
		Language:            opts.withLanguage,
		LegacySlashEscaping: opts.withLegacySlashEscaping,
		NoFollow:            opts.withNoFollow,
		TokenLifetime:       opts.withTokenLifetime,
		Logger:              opts.withLogger,
	}
	switch {
	case opts.withEndpoints != nil:
		c.Endpoints = *opts.withEndpoints
	default:
		// an unknown region leaves the endpoints empty, which Validate reports
		c.Endpoints, _ = RegionEndpoints(c.Region)
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("%s: invalid provider config: %w", op, err)
	}
	return c, nil
}

// Validate the configuration. Every problem found is reported in the
// returned error, which can be tested with errors.Is(err, ErrInvalidParameter).
// It doesn't verify the provider is reachable.
func (c *Config) Validate() error {
	const op = "Config.Validate"
	if c == nil {
		return fmt.Errorf("%s: provider config is nil: %w", op, ErrNilParameter)
	}
	var errs *multierror.Error
	if c.ApplicationID == "" {
		errs = multierror.Append(errs, fmt.Errorf("%s: application id is empty: %w", op, ErrInvalidParameter))
	}
	if c.RedirectURL == "" {
		errs = multierror.Append(errs, fmt.Errorf("%s: redirect URL is empty: %w", op, ErrInvalidParameter))
	}
	switch c.Mode {
	case ModeToken, ModeLegacy:
	default:
		errs = multierror.Append(errs, fmt.Errorf("%s: unsupported mode %q: %w", op, c.Mode, ErrInvalidParameter))
	}
	for name, e := range c.Endpoints.all() {
		if e == "" {
			errs = multierror.Append(errs, fmt.Errorf("%s: %s endpoint is empty: %w", op, name, ErrInvalidParameter))
			continue
		}
		u, err := url.Parse(e)
		if err != nil {
			errs = multierror.Append(errs, fmt.Errorf("%s: %s endpoint %q is invalid: %w", op, name, e, ErrInvalidParameter))
			continue
		}
		if u.Scheme != "https" && u.Scheme != "http" {
			errs = multierror.Append(errs, fmt.Errorf("%s: %s endpoint %q scheme is not http or https: %w", op, name, e, ErrInvalidParameter))
		}
	}
	if c.Timeout < 0 {
		errs = multierror.Append(errs, fmt.Errorf("%s: timeout is negative: %w", op, ErrInvalidParameter))
	}
	if c.TokenLifetime < 0 {
		errs = multierror.Append(errs, fmt.Errorf("%s: token lifetime is negative: %w", op, ErrInvalidParameter))
	}
	return errs.ErrorOrNil()
}

// HTTPClient is a helper function that creates a new http client for the
// provider configured
func (c *Config) HTTPClient() (*http.Client, error) {
	const op = "Config.HTTPClient"
	client, err := sdkHttp.NewClient(c.ProviderCA, c.Timeout)
	if err != nil {
		if errors.Is(err, sdkHttp.ErrInvalidCertificatePem) {
			return nil, fmt.Errorf("%s: could not parse CA PEM value: %w", op, ErrInvalidCACert)
		}
		return nil, fmt.Errorf("%s: could not get an http client: %w", op, err)
	}
	return client, nil
}

// configOptions is the set of available options
type configOptions struct {
	withMode                Mode
	withHTTPS               bool
	withRegion              Region
	withEndpoints           *Endpoints
	withProviderCA          string
	withTimeout             time.Duration
	withLanguage            string
	withLegacySlashEscaping bool
	withNoFollow            bool
	withTokenLifetime       time.Duration
	withLogger              hclog.Logger
}

// configDefaults is a handy way to get the defaults at runtime and during
// unit tests.
func configDefaults() configOptions {
	return configOptions{
		withMode:    ModeToken,
		withRegion:  RegionEU,
		withTimeout: sdkHttp.DefaultTimeout,
		withLogger:  hclog.NewNullLogger(),
	}
}

// getConfigOpts gets the defaults and applies the opt overrides passed in.
func getConfigOpts(opt ...Option) configOptions {
	opts := configDefaults()
	ApplyOpts(&opts, opt...)
	return opts
}

// WithMode provides an optional login flow/verification mode. ModeToken is
// the default.
func WithMode(m Mode) Option {
	return func(o interface{}) {
		if o, ok := o.(*configOptions); ok {
			o.withMode = m
		}
	}
}

// WithHTTPS makes relative redirect URLs and the OpenID realm use https.
func WithHTTPS(https bool) Option {
	return func(o interface{}) {
		if o, ok := o.(*configOptions); ok {
			o.withHTTPS = https
		}
	}
}

// WithRegion provides an optional region. RegionEU is the default.
func WithRegion(r Region) Option {
	return func(o interface{}) {
		if o, ok := o.(*configOptions); ok {
			o.withRegion = r
		}
	}
}

// WithEndpoints overrides the region endpoints.
func WithEndpoints(e Endpoints) Option {
	return func(o interface{}) {
		if o, ok := o.(*configOptions); ok {
			o.withEndpoints = &e
		}
	}
}

// WithProviderCA provides an optional CA cert for the provider's config
func WithProviderCA(cert string) Option {
	return func(o interface{}) {
		if o, ok := o.(*configOptions); ok {
			o.withProviderCA = cert
		}
	}
}

// WithTimeout provides an optional timeout for requests sent to the provider.
func WithTimeout(d time.Duration) Option {
	return func(o interface{}) {
		if o, ok := o.(*configOptions); ok {
			o.withTimeout = d
		}
	}
}

// WithLanguage provides an optional language for info requests. The tag is
// matched against the languages the provider supports; when nothing
// matches, the provider's default is used.
func WithLanguage(tag language.Tag) Option {
	return func(o interface{}) {
		if o, ok := o.(*configOptions); ok {
			o.withLanguage = LanguageCode(tag)
		}
	}
}

// WithLegacySlashEscaping enables stripping of backslash escaping from signed
// callback values in the legacy flow.
func WithLegacySlashEscaping() Option {
	return func(o interface{}) {
		if o, ok := o.(*configOptions); ok {
			o.withLegacySlashEscaping = true
		}
	}
}

// WithNoFollow sets the token flow nofollow parameter.
func WithNoFollow() Option {
	return func(o interface{}) {
		if o, ok := o.(*configOptions); ok {
			o.withNoFollow = true
		}
	}
}

// WithTokenLifetime requests an access token lifetime in the token flow.
func WithTokenLifetime(d time.Duration) Option {
	return func(o interface{}) {
		if o, ok := o.(*configOptions); ok {
			o.withTokenLifetime = d
		}
	}
}

// WithLogger provides an optional logger.
func WithLogger(l hclog.Logger) Option {
	return func(o interface{}) {
		if o, ok := o.(*configOptions); ok && l != nil {
			o.withLogger = l
		}
	}
}
