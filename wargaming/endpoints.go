// Copyright IBM Corp. 2020, 2025
// SPDX-License-Identifier: MPL-2.0

package wargaming

import (
	"fmt"
	"net/url"
	"strings"

	"golang.org/x/text/language"
)

// Region selects the provider cluster an application is registered with.
type Region string

const (
	RegionEU   Region = "eu"
	RegionNA   Region = "na"
	RegionAsia Region = "asia"
)

// Endpoints are the provider URLs used by the package.
type Endpoints struct {
	// Login is the token flow login page (wot/auth/login).
	Login string

	// OpenID is the OpenID 2.0 endpoint used for both checkid_setup and
	// check_authentication in the legacy flow.
	OpenID string

	// AccountInfo is the wot/account/info endpoint.
	AccountInfo string

	// ClanMembership is the wgn/clans/membersinfo endpoint.
	ClanMembership string

	// ClanInfo is the wgn/clans/info endpoint.
	ClanInfo string

	// Logout is the wot/auth/logout endpoint.
	Logout string
}

var regionHosts = map[Region]struct{ api, openid string }{
	RegionEU:   {api: "api.worldoftanks.eu", openid: "eu.wargaming.net"},
	RegionNA:   {api: "api.worldoftanks.com", openid: "na.wargaming.net"},
	RegionAsia: {api: "api.worldoftanks.asia", openid: "asia.wargaming.net"},
}

// RegionEndpoints returns the provider endpoints for a region.
func RegionEndpoints(r Region) (Endpoints, error) {
	const op = "wargaming.RegionEndpoints"
	h, ok := regionHosts[Region(strings.ToLower(string(r)))]
	if !ok {
		return Endpoints{}, fmt.Errorf("%s: unknown region %q: %w", op, r, ErrInvalidParameter)
	}
	return EndpointsForHosts("https://"+h.api, "https://"+h.openid), nil
}

// EndpointsForHosts builds Endpoints from an API base URL and an OpenID base
// URL (scheme and host, no trailing slash). It's useful for pointing the
// package at a test server.
func EndpointsForHosts(apiBase, openIDBase string) Endpoints {
	apiBase = strings.TrimSuffix(apiBase, "/")
	openIDBase = strings.TrimSuffix(openIDBase, "/")
	return Endpoints{
		Login:          apiBase + "/wot/auth/login/",
		OpenID:         openIDBase + "/id/openid/",
		AccountInfo:    apiBase + "/wot/account/info/",
		ClanMembership: apiBase + "/wgn/clans/membersinfo/",
		ClanInfo:       apiBase + "/wgn/clans/info/",
		Logout:         apiBase + "/wot/auth/logout/",
	}
}

func (e Endpoints) all() map[string]string {
	return map[string]string{
		"login":           e.Login,
		"openid":          e.OpenID,
		"account info":    e.AccountInfo,
		"clan membership": e.ClanMembership,
		"clan info":       e.ClanInfo,
		"logout":          e.Logout,
	}
}

// openIDHost returns the host of the OpenID endpoint, which is the host the
// provider uses in claimed ids.
func (e Endpoints) openIDHost() string {
	u, err := url.Parse(e.OpenID)
	if err != nil {
		return ""
	}
	return u.Host
}

// supportedLanguages are the values accepted by the provider's "language"
// request parameter, in the same order as languageTags.
var supportedLanguages = []string{
	"en", "ru", "pl", "de", "fr", "es", "zh-cn", "zh-tw", "tr", "cs", "th", "vi", "ko",
}

var languageTags = []language.Tag{
	language.English,
	language.Russian,
	language.Polish,
	language.German,
	language.French,
	language.Spanish,
	language.SimplifiedChinese,
	language.TraditionalChinese,
	language.Turkish,
	language.Czech,
	language.Thai,
	language.Vietnamese,
	language.Korean,
}

var languageMatcher = language.NewMatcher(languageTags)

// LanguageCode returns the provider language code which best matches the tag,
// or "" when the provider doesn't support anything close to it.
func LanguageCode(tag language.Tag) string {
	_, idx, conf := languageMatcher.Match(tag)
	if conf == language.No {
		return ""
	}
	return supportedLanguages[idx]
}
