// Copyright IBM Corp. 2020, 2025
// SPDX-License-Identifier: MPL-2.0

package callback

import (
	"net/http"

	"github.com/rguedes/wgauth/wargaming"
)

// SessionLoader returns the session of the request. It may set cookies on
// the http.ResponseWriter (for example when it starts a new session).
type SessionLoader func(w http.ResponseWriter, req *http.Request) (wargaming.SessionStore, error)

// SuccessResponseFunc is used by handlers to create a http response when the
// login, callback or logout is successful.
//
// The wargaming.Auth gives access to the session's identity and, after a
// callback, to the user's profile (see Auth.UserInfo). The function should
// use the http.ResponseWriter to send back whatever content (headers, html,
// JSON, redirect, etc) it wishes to the client.
type SuccessResponseFunc func(a *wargaming.Auth, w http.ResponseWriter, req *http.Request)

// ErrorResponseFunc is used by handlers to create a http response when they
// fail.
//
// The function gets the provider's error response, when the provider sent
// one (for example when the user cancelled the login), and/or the error
// raised while processing the request. The function should use the
// http.ResponseWriter to send back whatever content (headers, html, JSON,
// etc) it wishes to the client.
type ErrorResponseFunc func(respErr *AuthenErrorResponse, e error, w http.ResponseWriter, req *http.Request)

// AuthenErrorResponse represents the provider's login error responses. In the
// token flow these are the status, code and message parameters; a cancelled
// OpenID login has a Status of "cancel".
type AuthenErrorResponse struct {
	Status  string `json:"status"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
}
