// Copyright IBM Corp. 2020, 2025
// SPDX-License-Identifier: MPL-2.0

package wargaming

import (
	"context"
	"fmt"
	"net/url"
	"time"
)

// Outcome is the result of verifying a login.
type Outcome int

const (
	// OutcomeInvalid: the legacy callback was missing parameters or the
	// provider didn't confirm its signature.
	OutcomeInvalid Outcome = iota

	// OutcomeValid: the provider confirmed the legacy callback.
	OutcomeValid

	// OutcomeStale: the session has no usable access token, or the provider
	// no longer honors it.
	OutcomeStale

	// OutcomeFresh: the provider honored the session's access token.
	OutcomeFresh
)

// String returns the outcome's name.
func (o Outcome) String() string {
	switch o {
	case OutcomeInvalid:
		return "invalid"
	case OutcomeValid:
		return "valid"
	case OutcomeStale:
		return "stale"
	case OutcomeFresh:
		return "fresh"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

// Valid returns true for OutcomeValid and OutcomeFresh.
func (o Outcome) Valid() bool {
	return o == OutcomeValid || o == OutcomeFresh
}

// VerifyRequest is the input of a Verifier.
type VerifyRequest struct {
	// Callback holds the parameters the provider sent back with the user.
	Callback url.Values

	// Identity is the identity currently stored in the session.
	Identity *Identity

	// Now is the time expiry is checked against. It defaults to time.Now().
	Now time.Time
}

func (r *VerifyRequest) now() time.Time {
	if r.Now.IsZero() {
		return time.Now()
	}
	return r.Now
}

// Verification is the result of a Verifier.
type Verification struct {
	Outcome Outcome

	// Identity to persist in the session. Only set for valid outcomes.
	Identity *Identity

	// Profile of the verified account, when the provider returned one.
	Profile *ProfileRecord

	// RestartLogin is set when the provider explicitly rejected the access
	// token: the user must go through the login flow again.
	RestartLogin bool
}

// Verifier verifies that a user is logged in with the provider.
type Verifier interface {
	// Mode returns the login flow the verifier supports.
	Mode() Mode

	// Verify checks the request. Negative outcomes are reported in the
	// Verification; errors are reserved for transport and protocol failures.
	Verify(ctx context.Context, req *VerifyRequest) (*Verification, error)
}

// NewVerifier returns the Verifier for the provider's configured Mode.
func NewVerifier(p *Provider) (Verifier, error) {
	const op = "wargaming.NewVerifier"
	if p == nil {
		return nil, fmt.Errorf("%s: provider is nil: %w", op, ErrNilParameter)
	}
	switch p.config.Mode {
	case ModeLegacy:
		return NewLegacyVerifier(p)
	case ModeToken:
		return NewTokenVerifier(p)
	default:
		return nil, fmt.Errorf("%s: unsupported mode %q: %w", op, p.config.Mode, ErrInvalidParameter)
	}
}
