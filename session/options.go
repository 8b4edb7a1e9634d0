// Copyright IBM Corp. 2020, 2025
// SPDX-License-Identifier: MPL-2.0

package session

import (
	"time"

	"github.com/hashicorp/go-hclog"
)

// Option defines a common functional options type which can be used in a
// variadic parameter pattern.
type Option func(interface{})

// ApplyOpts takes a pointer to the options struct as a set of default options
// and applies the slice of opts as overrides.
func ApplyOpts(opts interface{}, opt ...Option) {
	for _, o := range opt {
		if o == nil { // ignore any nil Options
			continue
		}
		o(opts)
	}
}

// managerOptions is the set of available options for NewManager
type managerOptions struct {
	withCookieName string
	withPath       string
	withSecure     bool
	withTTL        time.Duration
	withLogger     hclog.Logger
}

func managerDefaults() managerOptions {
	return managerOptions{
		withCookieName: DefaultCookieName,
		withPath:       "/",
		withTTL:        DefaultTTL,
		withLogger:     hclog.NewNullLogger(),
	}
}

func getManagerOpts(opt ...Option) managerOptions {
	opts := managerDefaults()
	ApplyOpts(&opts, opt...)
	return opts
}

// WithCookieName provides an optional session cookie name.
func WithCookieName(name string) Option {
	return func(o interface{}) {
		if o, ok := o.(*managerOptions); ok {
			o.withCookieName = name
		}
	}
}

// WithPath provides an optional session cookie path. It defaults to "/".
func WithPath(path string) Option {
	return func(o interface{}) {
		if o, ok := o.(*managerOptions); ok {
			o.withPath = path
		}
	}
}

// WithSecure sets the Secure attribute of the session cookie.
func WithSecure(secure bool) Option {
	return func(o interface{}) {
		if o, ok := o.(*managerOptions); ok {
			o.withSecure = secure
		}
	}
}

// WithTTL provides an optional idle session lifetime. Zero keeps sessions
// until they're destroyed.
func WithTTL(ttl time.Duration) Option {
	return func(o interface{}) {
		if o, ok := o.(*managerOptions); ok {
			o.withTTL = ttl
		}
	}
}

// WithLogger provides an optional logger.
func WithLogger(l hclog.Logger) Option {
	return func(o interface{}) {
		if o, ok := o.(*managerOptions); ok && l != nil {
			o.withLogger = l
		}
	}
}
