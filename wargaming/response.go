// Copyright IBM Corp. 2020, 2025
// SPDX-License-Identifier: MPL-2.0

package wargaming

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

const (
	statusOK    = "ok"
	statusError = "error"
)

// apiResponse is the envelope of every provider API response.
type apiResponse struct {
	Status string          `json:"status"`
	Error  *ProviderError  `json:"error"`
	Data   json.RawMessage `json:"data"`
}

// decodeResponse decodes an API response envelope. It doesn't look at the
// status.
func decodeResponse(body []byte) (*apiResponse, error) {
	var r apiResponse
	if err := json.Unmarshal(body, &r); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedProviderResponse, err)
	}
	if r.Status == "" {
		return nil, fmt.Errorf("%w: missing status", ErrMalformedProviderResponse)
	}
	return &r, nil
}

// decodeDataResponse decodes an API response envelope and converts an error
// status into a *ProviderError.
func decodeDataResponse(body []byte) (*apiResponse, error) {
	r, err := decodeResponse(body)
	if err != nil {
		return nil, err
	}
	if r.Status == statusError {
		if r.Error == nil {
			return nil, &ProviderError{Message: "UNKNOWN_ERROR"}
		}
		return nil, r.Error
	}
	return r, nil
}

// entry returns data[key]. A missing or null entry is ErrProfileNotFound.
func (r *apiResponse) entry(key string) (json.RawMessage, error) {
	var data map[string]json.RawMessage
	if len(r.Data) > 0 {
		if err := json.Unmarshal(r.Data, &data); err != nil {
			return nil, fmt.Errorf("%w: data: %w", ErrMalformedProviderResponse, err)
		}
	}
	v, ok := data[key]
	if !ok || isNull(v) {
		return nil, fmt.Errorf("%s: %w", key, ErrProfileNotFound)
	}
	return v, nil
}

// firstValue returns the value of the first member of a JSON object, in
// document order. An empty or null object is ErrProfileNotFound.
func firstValue(raw json.RawMessage) (json.RawMessage, error) {
	if len(raw) == 0 || isNull(raw) {
		return nil, ErrProfileNotFound
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedProviderResponse, err)
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, fmt.Errorf("%w: expected an object", ErrMalformedProviderResponse)
	}
	if !dec.More() {
		return nil, ErrProfileNotFound
	}
	if _, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedProviderResponse, err)
	}
	var v json.RawMessage
	if err := dec.Decode(&v); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedProviderResponse, err)
	}
	if isNull(v) {
		return nil, ErrProfileNotFound
	}
	return v, nil
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

// ParseKeyValue parses an OpenID key-value form encoded body: one key:value
// pair per line, split on the first colon (values may contain colons).
// Empty lines are skipped; a non-empty line without a colon is
// ErrMalformedProviderResponse.
func ParseKeyValue(body string) (map[string]string, error) {
	parsed := map[string]string{}
	for _, line := range strings.Split(body, "\n") {
		line = strings.TrimSuffix(line, "\r")
		if line == "" {
			continue
		}
		k, v, ok := strings.Cut(line, ":")
		if !ok {
			return nil, fmt.Errorf("%w: line %q is not key:value", ErrMalformedProviderResponse, line)
		}
		parsed[k] = v
	}
	return parsed, nil
}
