package wargaming_test

import (
	"context"
	"fmt"
	"net/http"

	"github.com/rguedes/wgauth/session"
	"github.com/rguedes/wgauth/wargaming"
	"golang.org/x/text/language"
)

func Example() {
	// Create a new Config
	pc, err := wargaming.NewConfig(
		"your_application_id",
		"/auth/callback",
		wargaming.WithRegion(wargaming.RegionEU),
		wargaming.WithLanguage(language.German),
	)
	if err != nil {
		// handle error
	}

	// Create a provider, shared by every request
	p, err := wargaming.NewProvider(pc)
	if err != nil {
		// handle error
	}

	// Sessions are kept in memory and identified by a cookie
	sessions, err := session.NewManager(session.NewMemoryBackend())
	if err != nil {
		// handle error
	}

	http.HandleFunc("/login", func(w http.ResponseWriter, r *http.Request) {
		s, err := sessions.Load(w, r)
		if err != nil {
			// handle error
		}
		auth, err := wargaming.NewAuth(r.Context(), p, s, r)
		if err != nil {
			// handle error
		}
		auth.Redirect().ServeHTTP(w, r)
	})

	http.HandleFunc("/auth/callback", func(w http.ResponseWriter, r *http.Request) {
		s, err := sessions.Load(w, r)
		if err != nil {
			// handle error
		}
		auth, err := wargaming.NewAuth(r.Context(), p, s, r)
		if err != nil {
			// handle error
		}
		if err := auth.CompleteLogin(r.Context(), r.URL.Query()); err != nil {
			// handle error
		}
		profile, err := auth.LoadUserInfo(r.Context())
		if err != nil {
			// handle error
		}
		fmt.Fprintf(w, "hello %s", profile.Nickname)
	})
}

func ExampleNewConfig() {
	// Create a new Config for the legacy OpenID flow
	pc, err := wargaming.NewConfig(
		"your_application_id",
		"https://your_host/auth/callback",
		wargaming.WithMode(wargaming.ModeLegacy),
		wargaming.WithRegion(wargaming.RegionNA),
	)
	if err != nil {
		// handle error
	}
	fmt.Println(pc.Endpoints.OpenID)

	// Output:
	// https://na.wargaming.net/id/openid/
}

func ExampleLanguageCode() {
	fmt.Println(wargaming.LanguageCode(language.MustParse("de-AT")))
	fmt.Println(wargaming.LanguageCode(language.MustParse("zh-Hant-TW")))

	// Output:
	// de
	// zh-tw
}

func ExampleProvider_LoginURL() {
	pc, err := wargaming.NewConfig(
		"your_application_id",
		"https://your_host/auth/callback",
	)
	if err != nil {
		// handle error
	}
	p, err := wargaming.NewProvider(pc)
	if err != nil {
		// handle error
	}
	u, err := p.LoginURL("https://your_host/auth/callback")
	if err != nil {
		// handle error
	}
	fmt.Println(u)

	// Output:
	// https://api.worldoftanks.eu/wot/auth/login/?application_id=your_application_id&redirect_uri=https%3A%2F%2Fyour_host%2Fauth%2Fcallback
}

func ExampleAuth_Logout() {
	var (
		p     *wargaming.Provider    // shared provider
		store wargaming.SessionStore // the user's session
		r     *http.Request          // the current request
	)
	auth, err := wargaming.NewAuth(context.Background(), p, store, r)
	if err != nil {
		// handle error
	}
	ok, err := auth.Logout(context.Background())
	if err != nil {
		// handle error
	}
	if !ok {
		// the provider didn't invalidate the access token
	}
}
