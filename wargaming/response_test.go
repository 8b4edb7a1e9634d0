// Copyright IBM Corp. 2020, 2025
// SPDX-License-Identifier: MPL-2.0

package wargaming

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseKeyValue(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name      string
		body      string
		want      map[string]string
		wantIsErr error
	}{
		{
			name: "check-authentication",
			body: "is_valid:true\nns:http://specs.openid.net/auth/2.0\n",
			want: map[string]string{
				"is_valid": "true",
				"ns":       "http://specs.openid.net/auth/2.0",
			},
		},
		{
			name: "crlf-and-blank-lines",
			body: "ns:http://specs.openid.net/auth/2.0\r\n\r\nis_valid:false\r\n",
			want: map[string]string{
				"ns":       "http://specs.openid.net/auth/2.0",
				"is_valid": "false",
			},
		},
		{
			name: "empty-value",
			body: "invalidate_handle:\n",
			want: map[string]string{"invalidate_handle": ""},
		},
		{
			name: "empty",
			body: "",
			want: map[string]string{},
		},
		{
			name:      "no-colon",
			body:      "is_valid:true\n<html>\n",
			wantIsErr: ErrMalformedProviderResponse,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert, require := assert.New(t), require.New(t)
			got, err := ParseKeyValue(tt.body)
			if tt.wantIsErr != nil {
				require.Error(err)
				assert.ErrorIs(err, tt.wantIsErr)
				return
			}
			require.NoError(err)
			assert.Equal(tt.want, got)
		})
	}
}

func TestDecodeDataResponse(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name        string
		body        string
		wantIsErr   error
		wantInvalid bool
	}{
		{name: "ok", body: `{"status":"ok","data":{}}`},
		{name: "not-json", body: `<html>`, wantIsErr: ErrMalformedProviderResponse},
		{name: "no-status", body: `{"data":{}}`, wantIsErr: ErrMalformedProviderResponse},
		{
			name:        "invalid-token",
			body:        `{"status":"error","error":{"code":407,"message":"INVALID_ACCESS_TOKEN","field":"access_token","value":"x"}}`,
			wantIsErr:   ErrProviderError,
			wantInvalid: true,
		},
		{name: "error-without-detail", body: `{"status":"error"}`, wantIsErr: ErrProviderError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert, require := assert.New(t), require.New(t)
			got, err := decodeDataResponse([]byte(tt.body))
			if tt.wantIsErr != nil {
				require.Error(err)
				assert.ErrorIs(err, tt.wantIsErr)
				assert.Equal(tt.wantInvalid, errors.Is(err, ErrInvalidAccessToken))
				return
			}
			require.NoError(err)
			assert.Equal(statusOK, got.Status)
		})
	}
}

func TestAPIResponse_entry(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name      string
		data      string
		key       string
		want      string
		wantIsErr error
	}{
		{name: "found", data: `{"1":{"a":1}}`, key: "1", want: `{"a":1}`},
		{name: "null", data: `{"1":null}`, key: "1", wantIsErr: ErrProfileNotFound},
		{name: "missing", data: `{"2":{}}`, key: "1", wantIsErr: ErrProfileNotFound},
		{name: "no-data", key: "1", wantIsErr: ErrProfileNotFound},
		{name: "not-object", data: `[1]`, key: "1", wantIsErr: ErrMalformedProviderResponse},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert, require := assert.New(t), require.New(t)
			r := &apiResponse{Status: statusOK, Data: json.RawMessage(tt.data)}
			got, err := r.entry(tt.key)
			if tt.wantIsErr != nil {
				assert.ErrorIs(err, tt.wantIsErr)
				return
			}
			require.NoError(err)
			assert.JSONEq(tt.want, string(got))
		})
	}
}

func TestFirstValue(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name      string
		raw       string
		want      string
		wantIsErr error
	}{
		{name: "document-order", raw: `{"b":[2],"a":[1]}`, want: `[2]`},
		{name: "nested", raw: `{"x":{"y":1},"z":2}`, want: `{"y":1}`},
		{name: "empty-object", raw: `{}`, wantIsErr: ErrProfileNotFound},
		{name: "null", raw: `null`, wantIsErr: ErrProfileNotFound},
		{name: "null-value", raw: `{"a":null}`, wantIsErr: ErrProfileNotFound},
		{name: "array", raw: `[1]`, wantIsErr: ErrMalformedProviderResponse},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert, require := assert.New(t), require.New(t)
			got, err := firstValue(json.RawMessage(tt.raw))
			if tt.wantIsErr != nil {
				assert.ErrorIs(err, tt.wantIsErr)
				return
			}
			require.NoError(err)
			assert.JSONEq(tt.want, string(got))
		})
	}
}
