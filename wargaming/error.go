// Copyright IBM Corp. 2020, 2025
// SPDX-License-Identifier: MPL-2.0

package wargaming

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidParameter          = errors.New("invalid parameter")
	ErrNilParameter              = errors.New("nil parameter")
	ErrInvalidCACert             = errors.New("invalid CA certificate")
	ErrInvalidReturnURL          = errors.New("return URL must be a valid URL with a scheme")
	ErrMissingCallbackParams     = errors.New("callback is missing required openid parameters")
	ErrInvalidAccessToken        = errors.New("invalid access token")
	ErrProviderUnreachable       = errors.New("provider unreachable")
	ErrUnexpectedStatus          = errors.New("unexpected http status")
	ErrMalformedProviderResponse = errors.New("malformed provider response")
	ErrProviderError             = errors.New("provider error")
	ErrProfileNotFound           = errors.New("profile not found")
	ErrNotAuthenticated          = errors.New("not authenticated")
	ErrLoginFailed               = errors.New("login failed")
	ErrLogoutFailed              = errors.New("logout failed")
)

// invalidAccessTokenMessage is the error message the provider reports for an
// unknown, revoked or expired access_token.
const invalidAccessTokenMessage = "INVALID_ACCESS_TOKEN"

// ProviderError is an error reported by the provider in the "error" member of
// an API response. It wraps ErrProviderError, or ErrInvalidAccessToken when
// the provider rejected the access token.
type ProviderError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Field   string `json:"field"`
	Value   string `json:"value"`
}

// Error satisfies the error interface.
func (e *ProviderError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %d %s (%s=%s)", ErrProviderError, e.Code, e.Message, e.Field, e.Value)
	}
	return fmt.Sprintf("%s: %d %s", ErrProviderError, e.Code, e.Message)
}

// Unwrap allows errors.Is to match ErrProviderError and ErrInvalidAccessToken.
func (e *ProviderError) Unwrap() []error {
	if e.Message == invalidAccessTokenMessage {
		return []error{ErrProviderError, ErrInvalidAccessToken}
	}
	return []error{ErrProviderError}
}
