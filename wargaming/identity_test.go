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

func TestLoadIdentity(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	tests := []struct {
		name    string
		values  map[string]string
		want    *Identity
		wantErr bool
	}{
		{
			name: "empty",
			want: &Identity{},
		},
		{
			name: "complete",
			values: map[string]string{
				SessionKeyAccountID:   "123456789",
				SessionKeyAccessToken: "tok",
				SessionKeyExpiresAt:   "1700000000",
			},
			want: &Identity{AccountID: "123456789", AccessToken: "tok", ExpiresAt: time.Unix(1700000000, 0)},
		},
		{
			name: "unparsable-expiry",
			values: map[string]string{
				SessionKeyAccountID:   "123456789",
				SessionKeyAccessToken: "tok",
				SessionKeyExpiresAt:   "next week",
			},
			want: &Identity{AccountID: "123456789", AccessToken: "tok"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert, require := assert.New(t), require.New(t)
			got, err := LoadIdentity(ctx, NewTestSessionStore(tt.values))
			require.NoError(err)
			assert.Equal(tt.want, got)
		})
	}
	_, err := LoadIdentity(ctx, nil)
	assert.ErrorIs(t, err, ErrNilParameter)
}

func TestStoreIdentity(t *testing.T) {
	t.Parallel()
	assert, require := assert.New(t), require.New(t)
	ctx := context.Background()

	s := NewTestSessionStore(map[string]string{SessionKeyAccessToken: "old"})
	require.NoError(StoreIdentity(ctx, s, &Identity{AccountID: "123456789"}))
	assert.Equal(map[string]string{
		SessionKeyAccountID:   "123456789",
		SessionKeyAccessToken: "old",
	}, s.Values())

	assert.ErrorIs(StoreIdentity(ctx, nil, &Identity{}), ErrNilParameter)
	assert.ErrorIs(StoreIdentity(ctx, s, nil), ErrNilParameter)
}

func TestClearIdentity(t *testing.T) {
	t.Parallel()
	assert, require := assert.New(t), require.New(t)
	ctx := context.Background()

	s := TestLoggedInSession(t, "123456789", "tok", time.Hour)
	require.NoError(s.Set(ctx, "other", "kept"))
	require.NoError(ClearIdentity(ctx, s))
	assert.Equal(map[string]string{"other": "kept"}, s.Values())

	got, err := LoadIdentity(ctx, s)
	require.NoError(err)
	assert.Equal(&Identity{}, got)

	assert.ErrorIs(ClearIdentity(ctx, nil), ErrNilParameter)
}

func TestIdentity(t *testing.T) {
	t.Parallel()
	now := time.Now()
	tests := []struct {
		name         string
		id           *Identity
		wantComplete bool
		wantExpired  bool
		wantToken    bool
	}{
		{name: "nil", wantExpired: true},
		{name: "empty", id: &Identity{}, wantExpired: true},
		{name: "account-only", id: &Identity{AccountID: "1", ExpiresAt: now.Add(time.Hour)}},
		{name: "valid", id: &Identity{AccountID: "1", AccessToken: "t", ExpiresAt: now.Add(time.Hour)}, wantComplete: true, wantToken: true},
		{name: "expired", id: &Identity{AccountID: "1", AccessToken: "t", ExpiresAt: now}, wantComplete: true, wantExpired: true, wantToken: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert := assert.New(t)
			assert.Equal(tt.wantComplete, tt.id.Complete())
			assert.Equal(tt.wantExpired, tt.id.Expired(now))
			tk := tt.id.Token()
			if !tt.wantToken {
				assert.Nil(tk)
				return
			}
			assert.Equal(tt.id.AccessToken, tk.AccessToken)
			assert.Equal(tt.id.ExpiresAt, tk.Expiry)
		})
	}
}
