// Copyright IBM Corp. 2020, 2025
// SPDX-License-Identifier: MPL-2.0

package session

import (
	"context"
	"errors"
	"time"
)

var (
	ErrInvalidParameter = errors.New("invalid parameter")
	ErrNilParameter     = errors.New("nil parameter")
	ErrMalformedSession = errors.New("malformed session data")
)

// Backend stores encoded sessions by session id.
type Backend interface {
	// Get returns the value for key, and false when it isn't set or has
	// expired.
	Get(ctx context.Context, key string) (string, bool, error)

	// Set stores the value for key. A ttl of 0 never expires.
	Set(ctx context.Context, key, value string, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
}
