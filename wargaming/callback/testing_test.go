// Copyright IBM Corp. 2020, 2025
// SPDX-License-Identifier: MPL-2.0

package callback

import (
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/rguedes/wgauth/wargaming"
)

// testSuccessFn is a test SuccessResponseFunc
func testSuccessFn(a *wargaming.Auth, w http.ResponseWriter, req *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("success: " + a.AccountID()))
}

// testFailFn is a test ErrorResponseFunc
func testFailFn(r *AuthenErrorResponse, e error, w http.ResponseWriter, req *http.Request) {
	if e != nil {
		status := http.StatusInternalServerError
		if errors.Is(e, wargaming.ErrLoginFailed) || errors.Is(e, wargaming.ErrLogoutFailed) {
			status = http.StatusForbidden
		}
		w.WriteHeader(status)
		j, _ := json.Marshal(&AuthenErrorResponse{
			Status:  "internal-callback-error",
			Message: e.Error(),
		})
		_, _ = w.Write(j)
		return
	}
	if r != nil {
		w.WriteHeader(http.StatusUnauthorized)
		j, _ := json.Marshal(r)
		_, _ = w.Write(j)
		return
	}
	w.WriteHeader(http.StatusInternalServerError)
	j, _ := json.Marshal(&AuthenErrorResponse{
		Status: "unknown-callback-error",
	})
	_, _ = w.Write(j)
}

// testSessionLoader returns a SessionLoader which always returns s.
func testSessionLoader(s wargaming.SessionStore) SessionLoader {
	return func(http.ResponseWriter, *http.Request) (wargaming.SessionStore, error) {
		return s, nil
	}
}

// testFailingLoader is a SessionLoader which always fails.
func testFailingLoader(http.ResponseWriter, *http.Request) (wargaming.SessionStore, error) {
	return nil, errors.New("session backend is down")
}

// testRequest creates a request as received by the application.
func testRequest(t *testing.T, method, target string) *http.Request {
	t.Helper()
	r, err := http.NewRequest(method, "http://app.localhost"+target, nil)
	if err != nil {
		t.Fatal(err)
	}
	return r
}
