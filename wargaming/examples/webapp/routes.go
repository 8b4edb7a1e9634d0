// Copyright IBM Corp. 2020, 2025
// SPDX-License-Identifier: MPL-2.0

package main

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/rguedes/wgauth/session"
	"github.com/rguedes/wgauth/wargaming"
	"github.com/rguedes/wgauth/wargaming/callback"
)

type profileResponse struct {
	AccountID   string                    `json:"account_id"`
	TokenExpiry *time.Time                `json:"token_expiry,omitempty"`
	Profile     *wargaming.ProfileRecord  `json:"profile,omitempty"`
	Clan        *wargaming.ClanMembership `json:"clan,omitempty"`
}

// ProfileHandler writes the logged in user's profile and clan as JSON.
func ProfileHandler(p *wargaming.Provider, logger hclog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		id, _ := callback.GetIdentity(req.Context())
		resp := profileResponse{AccountID: id.AccountID}
		resp.Profile, _ = callback.GetProfile(req.Context())
		if ts, ok := callback.GetTokenSource(req.Context()); ok {
			if tok, err := ts.Token(); err == nil {
				resp.TokenExpiry = &tok.Expiry
			}
		}

		clan, err := p.ClanMembershipInfo(req.Context(), id.AccountID)
		switch {
		case err == nil:
			resp.Clan = clan
		case errors.Is(err, wargaming.ErrProfileNotFound):
		default:
			logger.Warn("unable to load clan membership", "account_id", id.AccountID, "error", err)
		}

		w.Header().Set("Content-Type", "application/json")
		enc := json.NewEncoder(w)
		enc.SetIndent("", "    ")
		if err := enc.Encode(resp); err != nil {
			logger.Error("unable to write profile", "error", err)
		}
	}
}

// LogoutSuccessHandler ends the application session once the provider has
// invalidated the access token.
func LogoutSuccessHandler(sessions *session.Manager, logger hclog.Logger) callback.SuccessResponseFunc {
	return func(_ *wargaming.Auth, w http.ResponseWriter, req *http.Request) {
		s, err := sessions.Load(w, req)
		if err == nil {
			err = sessions.Destroy(req.Context(), w, s)
		}
		if err != nil {
			logger.Error("unable to destroy session", "error", err)
		}
		_, _ = w.Write([]byte("logged out"))
	}
}

// ErrorHandler writes the provider's error response, or the error, as JSON.
func ErrorHandler(logger hclog.Logger) callback.ErrorResponseFunc {
	return func(r *callback.AuthenErrorResponse, e error, w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if e != nil {
			logger.Error("request failed", "path", req.URL.Path, "error", e)
			status := http.StatusInternalServerError
			if errors.Is(e, wargaming.ErrLoginFailed) || errors.Is(e, wargaming.ErrLogoutFailed) {
				status = http.StatusForbidden
			}
			w.WriteHeader(status)
			_ = json.NewEncoder(w).Encode(&callback.AuthenErrorResponse{Status: "error", Message: e.Error()})
			return
		}
		w.WriteHeader(http.StatusUnauthorized)
		_ = json.NewEncoder(w).Encode(r)
	}
}
