// Copyright IBM Corp. 2020, 2025
// SPDX-License-Identifier: MPL-2.0

package wargaming

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenVerifier_Verify(t *testing.T) {
	t.Parallel()
	now := time.Now()

	tests := []struct {
		name        string
		setup       func(tp *TestProvider)
		identity    *Identity
		want        Outcome
		wantRestart bool
		wantCalls   int
		wantErr     bool
		wantIsErr   error
	}{
		{
			name:      "fresh",
			identity:  &Identity{AccountID: "123456789", AccessToken: "test-access-token", ExpiresAt: now.Add(time.Hour)},
			want:      OutcomeFresh,
			wantCalls: 1,
		},
		{
			name: "no-identity",
			want: OutcomeStale,
		},
		{
			name:     "empty-identity",
			identity: &Identity{},
			want:     OutcomeStale,
		},
		{
			name:     "no-access-token",
			identity: &Identity{AccountID: "123456789", ExpiresAt: now.Add(time.Hour)},
			want:     OutcomeStale,
		},
		{
			name:     "no-expiry",
			identity: &Identity{AccountID: "123456789", AccessToken: "test-access-token"},
			want:     OutcomeStale,
		},
		{
			name:     "expired",
			identity: &Identity{AccountID: "123456789", AccessToken: "test-access-token", ExpiresAt: now.Add(-time.Second)},
			want:     OutcomeStale,
		},
		{
			name:     "expires-now",
			identity: &Identity{AccountID: "123456789", AccessToken: "test-access-token", ExpiresAt: now},
			want:     OutcomeStale,
		},
		{
			name:        "rejected-token",
			identity:    &Identity{AccountID: "123456789", AccessToken: "revoked", ExpiresAt: now.Add(time.Hour)},
			want:        OutcomeStale,
			wantRestart: true,
			wantCalls:   1,
		},
		{
			name:      "unknown-account",
			identity:  &Identity{AccountID: "111111111", AccessToken: "test-access-token", ExpiresAt: now.Add(time.Hour)},
			want:      OutcomeStale,
			wantCalls: 1,
		},
		{
			name: "no-private-data",
			setup: func(tp *TestProvider) {
				tp.SetAccountInfoResponse(`{"status":"ok","data":{"123456789":{"nickname":"test_tanker"}}}`)
			},
			identity:  &Identity{AccountID: "123456789", AccessToken: "test-access-token", ExpiresAt: now.Add(time.Hour)},
			want:      OutcomeStale,
			wantCalls: 1,
		},
		{
			name: "other-provider-error",
			setup: func(tp *TestProvider) {
				tp.SetAccountInfoResponse(`{"status":"error","error":{"code":504,"message":"SOURCE_NOT_AVAILABLE"}}`)
			},
			identity:  &Identity{AccountID: "123456789", AccessToken: "test-access-token", ExpiresAt: now.Add(time.Hour)},
			wantErr:   true,
			wantIsErr: ErrProviderError,
			wantCalls: 1,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert, require := assert.New(t), require.New(t)
			tp := StartTestProvider(t)
			if tt.setup != nil {
				tt.setup(tp)
			}
			p := TestNewProvider(t, tp, "/cb")
			v, err := NewTokenVerifier(p)
			require.NoError(err)
			assert.Equal(ModeToken, v.Mode())

			got, err := v.Verify(context.Background(), &VerifyRequest{Identity: tt.identity, Now: now})
			assert.Equal(tt.wantCalls, tp.TotalCalls())
			if tt.wantErr {
				require.Error(err)
				assert.ErrorIs(err, tt.wantIsErr)
				return
			}
			require.NoError(err)
			assert.Equal(tt.want, got.Outcome)
			assert.Equal(tt.wantRestart, got.RestartLogin)
			if tt.want != OutcomeFresh {
				assert.Nil(got.Identity)
				assert.Nil(got.Profile)
				return
			}
			assert.Equal(tt.identity, got.Identity)
			require.NotNil(got.Profile)
			assert.True(got.Profile.HasPrivate())
			assert.Equal("test_tanker", got.Profile.Nickname)
		})
	}
}

func TestNewTokenVerifier(t *testing.T) {
	t.Parallel()
	_, err := NewTokenVerifier(nil)
	assert.ErrorIs(t, err, ErrNilParameter)
}
