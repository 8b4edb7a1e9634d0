// Copyright IBM Corp. 2020, 2025
// SPDX-License-Identifier: MPL-2.0

package wgauth_test

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/rguedes/wgauth/session"
	"github.com/rguedes/wgauth/wargaming"
)

func Example_wargaming() {
	// Create a new Config
	pc, err := wargaming.NewConfig(
		"your_application_id",
		"http://your_redirect_url/callback",
		wargaming.WithRegion(wargaming.RegionNA),
	)
	if err != nil {
		// handle error
	}

	// Create a provider
	p, err := wargaming.NewProvider(pc)
	if err != nil {
		// handle error
	}

	sessions, err := session.NewManager(session.NewMemoryBackend())
	if err != nil {
		// handle error
	}

	// Send the user to the provider's login page.
	http.HandleFunc("/login", func(w http.ResponseWriter, r *http.Request) {
		s, err := sessions.Load(w, r)
		if err != nil {
			// handle error
		}
		a, err := wargaming.NewAuth(r.Context(), p, s, r)
		if err != nil {
			// handle error
		}
		fmt.Println("open url to kick-off authentication: ", a.AuthURL())
		a.Redirect().ServeHTTP(w, r)
	})

	// Handle the provider's redirect back to the application.
	http.HandleFunc("/callback", func(w http.ResponseWriter, r *http.Request) {
		s, err := sessions.Load(w, r)
		if err != nil {
			// handle error
		}
		a, err := wargaming.NewAuth(r.Context(), p, s, r)
		if err != nil {
			// handle error
		}
		if err := r.ParseForm(); err != nil {
			// handle error
		}
		// Store the account id and access token in the session.
		if err := a.CompleteLogin(r.Context(), r.Form); err != nil {
			// handle error
		}
		// Check the access token with the provider and get the user's profile.
		profile, err := a.LoadUserInfo(r.Context())
		if err != nil {
			// handle error
		}
		if err := json.NewEncoder(w).Encode(profile); err != nil {
			// handle error
		}
	})
}
