// Copyright IBM Corp. 2020, 2025
// SPDX-License-Identifier: MPL-2.0

package wargaming

import (
	"context"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLegacyVerifier_Verify(t *testing.T) {
	t.Parallel()
	const returnTo = "http://app.localhost/auth/callback"

	tests := []struct {
		name           string
		opt            []Option
		setup          func(tp *TestProvider)
		params         func(tp *TestProvider) url.Values
		want           Outcome
		wantAccountID  string
		wantProfile    bool
		wantCheckCalls int
		wantInfoCalls  int
		wantReturnTo   string
		wantErr        bool
		wantIsErr      error
	}{
		{
			name:           "valid",
			params:         func(tp *TestProvider) url.Values { return tp.CallbackParams(returnTo) },
			want:           OutcomeValid,
			wantAccountID:  "123456789",
			wantProfile:    true,
			wantCheckCalls: 1,
			wantInfoCalls:  1,
			wantReturnTo:   returnTo,
		},
		{
			name: "underscore-names",
			params: func(tp *TestProvider) url.Values {
				v := url.Values{}
				for k, vs := range tp.CallbackParams(returnTo) {
					v[strings.ReplaceAll(k, ".", "_")] = vs
				}
				return v
			},
			want:           OutcomeValid,
			wantAccountID:  "123456789",
			wantProfile:    true,
			wantCheckCalls: 1,
			wantInfoCalls:  1,
			wantReturnTo:   returnTo,
		},
		{
			name:   "no-params",
			params: func(tp *TestProvider) url.Values { return url.Values{} },
			want:   OutcomeInvalid,
		},
		{
			name: "missing-sig",
			params: func(tp *TestProvider) url.Values {
				v := tp.CallbackParams(returnTo)
				v.Del("openid.sig")
				return v
			},
			want: OutcomeInvalid,
		},
		{
			name: "missing-assoc-handle",
			params: func(tp *TestProvider) url.Values {
				v := tp.CallbackParams(returnTo)
				v.Del("openid.assoc_handle")
				return v
			},
			want: OutcomeInvalid,
		},
		{
			name: "bad-signature",
			params: func(tp *TestProvider) url.Values {
				v := tp.CallbackParams(returnTo)
				v.Set("openid.sig", "forged")
				return v
			},
			want:           OutcomeInvalid,
			wantCheckCalls: 1,
			wantReturnTo:   returnTo,
		},
		{
			name:  "not-confirmed",
			setup: func(tp *TestProvider) { tp.SetCheckAuthenticationResponse("ns:http://specs.openid.net/auth/2.0\nis_valid:false\n") },
			params: func(tp *TestProvider) url.Values {
				return tp.CallbackParams(returnTo)
			},
			want:           OutcomeInvalid,
			wantCheckCalls: 1,
			wantReturnTo:   returnTo,
		},
		{
			name: "signed-mode-is-not-resent",
			params: func(tp *TestProvider) url.Values {
				v := tp.CallbackParams(returnTo)
				v.Set("openid.signed", testSignedList+",mode")
				return v
			},
			want:           OutcomeValid,
			wantAccountID:  "123456789",
			wantProfile:    true,
			wantCheckCalls: 1,
			wantInfoCalls:  1,
			wantReturnTo:   returnTo,
		},
		{
			name:  "https-claimed-id",
			setup: func(tp *TestProvider) { tp.SetClaimedIDScheme("https") },
			params: func(tp *TestProvider) url.Values {
				return tp.CallbackParams(returnTo)
			},
			want:           OutcomeValid,
			wantAccountID:  "0",
			wantCheckCalls: 1,
			wantInfoCalls:  1,
			wantReturnTo:   returnTo,
		},
		{
			name: "slashes-kept",
			params: func(tp *TestProvider) url.Values {
				v := tp.CallbackParams(returnTo)
				v.Set("openid.return_to", `http:\/\/app.localhost\/auth\/callback`)
				return v
			},
			want:           OutcomeValid,
			wantAccountID:  "123456789",
			wantProfile:    true,
			wantCheckCalls: 1,
			wantInfoCalls:  1,
			wantReturnTo:   `http:\/\/app.localhost\/auth\/callback`,
		},
		{
			name: "slashes-stripped",
			opt:  []Option{WithLegacySlashEscaping()},
			params: func(tp *TestProvider) url.Values {
				v := tp.CallbackParams(returnTo)
				v.Set("openid.return_to", `http:\/\/app.localhost\/auth\/callback`)
				return v
			},
			want:           OutcomeValid,
			wantAccountID:  "123456789",
			wantProfile:    true,
			wantCheckCalls: 1,
			wantInfoCalls:  1,
			wantReturnTo:   returnTo,
		},
		{
			name:  "malformed-response",
			setup: func(tp *TestProvider) { tp.SetCheckAuthenticationResponse("<html>oops</html>") },
			params: func(tp *TestProvider) url.Values {
				return tp.CallbackParams(returnTo)
			},
			wantErr:        true,
			wantIsErr:      ErrMalformedProviderResponse,
			wantCheckCalls: 1,
			wantReturnTo:   returnTo,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert, require := assert.New(t), require.New(t)
			tp := StartTestProvider(t)
			if tt.setup != nil {
				tt.setup(tp)
			}
			p := TestNewProvider(t, tp, returnTo, append([]Option{WithMode(ModeLegacy)}, tt.opt...)...)
			v, err := NewLegacyVerifier(p)
			require.NoError(err)
			assert.Equal(ModeLegacy, v.Mode())

			got, err := v.Verify(context.Background(), &VerifyRequest{Callback: tt.params(tp)})
			assert.Equal(tt.wantCheckCalls, tp.Calls(TestPathOpenID))
			assert.Equal(tt.wantInfoCalls, tp.Calls(TestPathAccountInfo))
			if tt.wantCheckCalls > 0 {
				form := tp.LastCheckAuthentication()
				assert.Equal("check_authentication", form.Get("openid.mode"))
				assert.Equal(tt.wantReturnTo, form.Get("openid.return_to"))
			}
			if tt.wantErr {
				require.Error(err)
				assert.ErrorIs(err, tt.wantIsErr)
				return
			}
			require.NoError(err)
			assert.Equal(tt.want, got.Outcome)
			if !tt.want.Valid() {
				assert.Nil(got.Identity)
				assert.Nil(got.Profile)
				return
			}
			require.NotNil(got.Identity)
			assert.Equal(tt.wantAccountID, got.Identity.AccountID)
			assert.Empty(got.Identity.AccessToken)
			assert.Equal(tt.wantProfile, got.Profile != nil)
		})
	}
}

func TestLegacyVerifier_AccountID(t *testing.T) {
	t.Parallel()
	c, err := NewConfig("app", "/cb", WithMode(ModeLegacy))
	require.NoError(t, err)
	p, err := NewProvider(c)
	require.NoError(t, err)
	v, err := NewLegacyVerifier(p)
	require.NoError(t, err)

	tests := []struct {
		claimedID string
		want      string
	}{
		{claimedID: "http://eu.wargaming.net/id/123456789-nick/", want: "123456789"},
		{claimedID: "http://eu.wargaming.net/id/1234567890/", want: "123456789"},
		{claimedID: "https://eu.wargaming.net/id/123456789-nick/", want: "0"},
		{claimedID: "http://na.wargaming.net/id/123456789-nick/", want: "0"},
		{claimedID: "http://eu.wargaming.net/id/12345-nick/", want: "0"},
		{claimedID: "", want: "0"},
	}
	for _, tt := range tests {
		t.Run(tt.claimedID, func(t *testing.T) {
			assert.Equal(t, tt.want, v.AccountID(tt.claimedID))
		})
	}
}

func TestStripSlashes(t *testing.T) {
	t.Parallel()
	tests := []struct {
		in   string
		want string
	}{
		{in: "plain", want: "plain"},
		{in: `a\/b`, want: "a/b"},
		{in: `a\\b`, want: `a\b`},
		{in: `\'quoted\'`, want: "'quoted'"},
		{in: `trailing\`, want: "trailing"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, stripSlashes(tt.in))
		})
	}
}

func TestNewVerifier(t *testing.T) {
	t.Parallel()
	tp := StartTestProvider(t)
	tests := []struct {
		mode Mode
		want Verifier
	}{
		{mode: ModeToken, want: &TokenVerifier{}},
		{mode: ModeLegacy, want: &LegacyVerifier{}},
	}
	for _, tt := range tests {
		t.Run(string(tt.mode), func(t *testing.T) {
			assert, require := assert.New(t), require.New(t)
			p := TestNewProvider(t, tp, "/cb", WithMode(tt.mode))
			got, err := NewVerifier(p)
			require.NoError(err)
			assert.IsType(tt.want, got)
			assert.Equal(tt.mode, got.Mode())
		})
	}
	_, err := NewVerifier(nil)
	assert.ErrorIs(t, err, ErrNilParameter)
}
