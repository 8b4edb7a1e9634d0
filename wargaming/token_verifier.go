// Copyright IBM Corp. 2020, 2025
// SPDX-License-Identifier: MPL-2.0

package wargaming

import (
	"context"
	"errors"
	"fmt"
)

// TokenVerifier verifies a session by presenting its access token to the
// account info endpoint. Only the token's owner receives the account's
// private data, so its presence proves the token is still honored.
type TokenVerifier struct {
	p *Provider
}

// ensure that TokenVerifier implements the Verifier interface
var _ Verifier = (*TokenVerifier)(nil)

// NewTokenVerifier creates a TokenVerifier.
func NewTokenVerifier(p *Provider) (*TokenVerifier, error) {
	const op = "wargaming.NewTokenVerifier"
	if p == nil {
		return nil, fmt.Errorf("%s: provider is nil: %w", op, ErrNilParameter)
	}
	return &TokenVerifier{p: p}, nil
}

// Mode returns ModeToken.
func (v *TokenVerifier) Mode() Mode { return ModeToken }

// Verify checks the identity in the request. An incomplete or expired
// identity is OutcomeStale without any request to the provider.
func (v *TokenVerifier) Verify(ctx context.Context, req *VerifyRequest) (*Verification, error) {
	const op = "TokenVerifier.Verify"
	if req == nil {
		return nil, fmt.Errorf("%s: request is nil: %w", op, ErrNilParameter)
	}
	id := req.Identity
	if !id.Complete() || id.Expired(req.now()) {
		return &Verification{Outcome: OutcomeStale}, nil
	}

	rec, err := v.p.AccountInfo(ctx, id.AccountID, id.AccessToken)
	switch {
	case errors.Is(err, ErrInvalidAccessToken):
		v.p.logger.Debug("access token rejected", "account_id", id.AccountID)
		return &Verification{Outcome: OutcomeStale, RestartLogin: true}, nil
	case errors.Is(err, ErrProfileNotFound):
		v.p.logger.Debug("account not found", "account_id", id.AccountID)
		return &Verification{Outcome: OutcomeStale}, nil
	case err != nil:
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if !rec.HasPrivate() {
		return &Verification{Outcome: OutcomeStale}, nil
	}
	return &Verification{
		Outcome:  OutcomeFresh,
		Identity: id,
		Profile:  rec,
	}, nil
}
