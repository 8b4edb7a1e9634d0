// Copyright IBM Corp. 2020, 2025
// SPDX-License-Identifier: MPL-2.0

package wargaming

import (
	"bytes"
	"encoding/json"
	"encoding/pem"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// Paths served by the TestProvider.
const (
	TestPathLogin          = "/wot/auth/login/"
	TestPathOpenID         = "/id/openid/"
	TestPathAccountInfo    = "/wot/account/info/"
	TestPathClanMembership = "/wgn/clans/membersinfo/"
	TestPathClanInfo       = "/wgn/clans/info/"
	TestPathLogout         = "/wot/auth/logout/"
)

const (
	testAssocHandle = "test-assoc-handle"
	testSignedList  = "signed,op_endpoint,claimed_id,identity,return_to,response_nonce,assoc_handle"
)

// TestProvider is a local server emulating the provider's login pages, its
// OpenID endpoint and the account, clan and logout API endpoints. It counts
// the requests it receives per path, which lets tests assert that no request
// was made.
type TestProvider struct {
	httpServer *httptest.Server
	caCert     string

	mu                sync.Mutex
	applicationID     string
	accountID         string
	nickname          string
	accessToken       string
	tokenLifetime     time.Duration
	expectedSig       string
	claimedIDScheme   string
	loginError        string
	logoutStatus      string
	logoutHTTPStatus  int
	accountInfoBody   string
	checkAuthnBody    string
	clanID            string
	clanMembership    map[string]interface{}
	clanMembers       []map[string]interface{}
	calls             map[string]int
	lastCheckAuthn    url.Values
	lastAccountParams url.Values

	t *testing.T
}

// StartTestProvider creates a disposable TestProvider. It's stopped when the
// test completes.
func StartTestProvider(t *testing.T) *TestProvider {
	t.Helper()
	require := require.New(t)

	p := &TestProvider{
		applicationID:   "test-application-id",
		accountID:       "123456789",
		nickname:        "test_tanker",
		accessToken:     "test-access-token",
		tokenLifetime:   14 * 24 * time.Hour,
		expectedSig:     "test-signature",
		claimedIDScheme: "http",
		logoutStatus:    statusOK,
		clanID:          "500000001",
		clanMembership: map[string]interface{}{
			"account_id":   123456789,
			"account_name": "test_tanker",
			"role":         "private",
			"role_i18n":    "Private",
			"joined_at":    1500000000,
			"clan": map[string]interface{}{
				"clan_id":       500000001,
				"name":          "Test Clan",
				"tag":           "TEST",
				"color":         "#ff0000",
				"members_count": 2,
			},
		},
		clanMembers: []map[string]interface{}{
			{"account_id": 123456789, "account_name": "test_tanker", "role": "private", "joined_at": 1500000000},
			{"account_id": 987654321, "account_name": "commander", "role": "commander", "joined_at": 1400000000},
		},
		calls: map[string]int{},
		t:     t,
	}

	p.httpServer = httptest.NewUnstartedServer(p)
	p.httpServer.Config.ErrorLog = log.New(io.Discard, "", 0)
	p.httpServer.StartTLS()
	t.Cleanup(p.httpServer.Close)

	cert := p.httpServer.Certificate()

	var buf bytes.Buffer
	err := pem.Encode(&buf, &pem.Block{Type: "CERTIFICATE", Bytes: cert.Raw})
	require.NoError(err)
	p.caCert = buf.String()

	return p
}

// Stop stops the running TestProvider.
func (p *TestProvider) Stop() {
	p.httpServer.Close()
}

// Addr returns the current base URL for the test provider's running webserver.
func (p *TestProvider) Addr() string { return p.httpServer.URL }

// CACert returns the pem-encoded CA certificate used by the test provider's
// HTTPS server.
func (p *TestProvider) CACert() string { return p.caCert }

// HTTPClient returns a client which trusts the test provider.
func (p *TestProvider) HTTPClient() *http.Client { return p.httpServer.Client() }

// Endpoints returns Endpoints pointing at the test provider.
func (p *TestProvider) Endpoints() Endpoints {
	return EndpointsForHosts(p.Addr(), p.Addr())
}

// ApplicationID returns the application id the test provider accepts.
func (p *TestProvider) ApplicationID() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.applicationID
}

// SetAccount configures the account logging in, and its valid access token.
func (p *TestProvider) SetAccount(accountID, nickname, accessToken string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.accountID = accountID
	p.nickname = nickname
	p.accessToken = accessToken
}

// AccessToken returns the access token the test provider currently honors.
func (p *TestProvider) AccessToken() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.accessToken
}

// SetClaimedIDScheme configures the scheme of the claimed ids issued by the
// OpenID endpoint. It defaults to "http".
func (p *TestProvider) SetClaimedIDScheme(scheme string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.claimedIDScheme = scheme
}

// SetLoginError makes the token flow login page report an error.
func (p *TestProvider) SetLoginError(message string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.loginError = message
}

// SetLogoutStatus configures the status returned by the logout endpoint.
func (p *TestProvider) SetLogoutStatus(status string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.logoutStatus = status
}

// SetLogoutHTTPStatus makes the logout endpoint answer with the http status
// code and an error envelope. Zero restores the default behavior.
func (p *TestProvider) SetLogoutHTTPStatus(code int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.logoutHTTPStatus = code
}

// SetAccountInfoResponse makes the account info endpoint return body
// verbatim. An empty body restores the default behavior.
func (p *TestProvider) SetAccountInfoResponse(body string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.accountInfoBody = body
}

// SetCheckAuthenticationResponse makes the OpenID check_authentication
// request return body verbatim. An empty body restores the default behavior.
func (p *TestProvider) SetCheckAuthenticationResponse(body string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.checkAuthnBody = body
}

// Calls returns the number of requests received for path.
func (p *TestProvider) Calls(path string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls[path]
}

// TotalCalls returns the number of requests received.
func (p *TestProvider) TotalCalls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := 0
	for _, c := range p.calls {
		n += c
	}
	return n
}

// LastCheckAuthentication returns the form of the last check_authentication
// request.
func (p *TestProvider) LastCheckAuthentication() url.Values {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lastCheckAuthn
}

// LastAccountInfoParams returns the query of the last account info request.
func (p *TestProvider) LastAccountInfoParams() url.Values {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lastAccountParams
}

// ClaimedID returns the claimed id the OpenID endpoint issues.
func (p *TestProvider) ClaimedID() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.claimedID()
}

func (p *TestProvider) claimedID() string {
	host := strings.TrimPrefix(strings.TrimPrefix(p.Addr(), "https://"), "http://")
	return p.claimedIDScheme + "://" + host + "/id/" + p.accountID + "-" + p.nickname + "/"
}

// CallbackParams returns the parameters the OpenID endpoint sends back with
// a successful checkid_setup for returnTo.
func (p *TestProvider) CallbackParams(returnTo string) url.Values {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.callbackParams(returnTo)
}

func (p *TestProvider) callbackParams(returnTo string) url.Values {
	claimed := p.claimedID()
	return url.Values{
		"openid.ns":             {openIDNamespace},
		"openid.mode":           {"id_res"},
		"openid.op_endpoint":    {p.Addr() + TestPathOpenID},
		"openid.claimed_id":     {claimed},
		"openid.identity":       {claimed},
		"openid.return_to":      {returnTo},
		"openid.response_nonce": {time.Now().UTC().Format(time.RFC3339) + "abc"},
		"openid.assoc_handle":   {testAssocHandle},
		"openid.signed":         {testSignedList},
		"openid.sig":            {p.expectedSig},
	}
}

func (p *TestProvider) writeJSON(w http.ResponseWriter, out interface{}) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(out)
}

func (p *TestProvider) writeAPIError(w http.ResponseWriter, code int, message, field, value string) {
	p.writeJSON(w, map[string]interface{}{
		"status": statusError,
		"error": map[string]interface{}{
			"code":    code,
			"message": message,
			"field":   field,
			"value":   value,
		},
	})
}

// ServeHTTP implements the test provider's http.Handler.
func (p *TestProvider) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.t.Helper()
	p.calls[req.URL.Path]++

	if err := req.ParseForm(); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	switch req.URL.Path {
	case TestPathLogin:
		if req.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		redirectURI := req.Form.Get("redirect_uri")
		if redirectURI == "" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		q := url.Values{}
		switch {
		case req.Form.Get("application_id") != p.applicationID:
			q.Set("status", statusError)
			q.Set("code", "407")
			q.Set("message", "INVALID_APPLICATION_ID")
		case p.loginError != "":
			q.Set("status", statusError)
			q.Set("code", "401")
			q.Set("message", p.loginError)
		default:
			q.Set("status", statusOK)
			q.Set("access_token", p.accessToken)
			q.Set("nickname", p.nickname)
			q.Set("account_id", p.accountID)
			q.Set("expires_at", strconv.FormatInt(time.Now().Add(p.tokenLifetime).Unix(), 10))
		}
		http.Redirect(w, req, redirectURI+"?"+q.Encode(), http.StatusFound)

	case TestPathOpenID:
		switch req.Form.Get("openid.mode") {
		case openIDModeSetup:
			returnTo := req.Form.Get("openid.return_to")
			if returnTo == "" || req.Form.Get("openid.realm") == "" {
				w.WriteHeader(http.StatusBadRequest)
				return
			}
			http.Redirect(w, req, returnTo+"?"+p.callbackParams(returnTo).Encode(), http.StatusFound)

		case openIDModeCheckAuthn:
			if req.Method != http.MethodPost {
				w.WriteHeader(http.StatusMethodNotAllowed)
				return
			}
			p.lastCheckAuthn = req.PostForm
			w.Header().Set("Content-Type", "text/plain")
			if p.checkAuthnBody != "" {
				_, _ = io.WriteString(w, p.checkAuthnBody)
				return
			}
			valid := req.PostForm.Get("openid.sig") == p.expectedSig &&
				req.PostForm.Get("openid.assoc_handle") == testAssocHandle
			for _, name := range strings.Split(req.PostForm.Get("openid.signed"), ",") {
				if _, ok := req.PostForm["openid."+name]; !ok {
					valid = false
				}
			}
			_, _ = io.WriteString(w, "ns:"+openIDNamespace+"\nis_valid:"+strconv.FormatBool(valid)+"\n")

		default:
			w.WriteHeader(http.StatusBadRequest)
		}

	case TestPathAccountInfo:
		if req.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		p.lastAccountParams = req.Form
		if p.accountInfoBody != "" {
			w.Header().Set("Content-Type", "application/json")
			_, _ = io.WriteString(w, p.accountInfoBody)
			return
		}
		if req.Form.Get("application_id") != p.applicationID {
			p.writeAPIError(w, 407, "INVALID_APPLICATION_ID", "application_id", req.Form.Get("application_id"))
			return
		}
		token, hasToken := req.Form["access_token"]
		if hasToken && token[0] != p.accessToken {
			p.writeAPIError(w, 407, invalidAccessTokenMessage, "access_token", token[0])
			return
		}
		accountID := req.Form.Get("account_id")
		data := map[string]interface{}{accountID: nil}
		if accountID == p.accountID {
			rec := map[string]interface{}{
				"account_id":       json.Number(p.accountID),
				"nickname":         p.nickname,
				"client_language":  "en",
				"global_rating":    4321,
				"created_at":       1300000000,
				"updated_at":       1600000000,
				"last_battle_time": 1600000000,
			}
			if hasToken {
				rec["private"] = map[string]interface{}{"credits": 1000, "gold": 50}
			}
			data[accountID] = rec
		}
		p.writeJSON(w, map[string]interface{}{"status": statusOK, "data": data})

	case TestPathClanMembership:
		accountID := req.Form.Get("account_id")
		data := map[string]interface{}{accountID: nil}
		if accountID == p.accountID {
			data[accountID] = p.clanMembership
		}
		p.writeJSON(w, map[string]interface{}{"status": statusOK, "data": data})

	case TestPathClanInfo:
		clanID := req.Form.Get("clan_id")
		if req.Form.Get("fields") != "members" {
			p.writeAPIError(w, 402, "FIELDS_NOT_SPECIFIED", "fields", "")
			return
		}
		data := map[string]interface{}{clanID: nil}
		if clanID == p.clanID {
			data[clanID] = map[string]interface{}{"members": p.clanMembers}
		}
		p.writeJSON(w, map[string]interface{}{"status": statusOK, "data": data})

	case TestPathLogout:
		if req.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		if p.logoutHTTPStatus != 0 {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(p.logoutHTTPStatus)
			_ = json.NewEncoder(w).Encode(map[string]interface{}{
				"status": statusError,
				"error":  map[string]interface{}{"code": 504, "message": "SOURCE_NOT_AVAILABLE"},
			})
			return
		}
		if req.PostForm.Get("access_token") != p.accessToken {
			p.writeAPIError(w, 407, invalidAccessTokenMessage, "access_token", req.PostForm.Get("access_token"))
			return
		}
		if p.logoutStatus == statusOK {
			p.accessToken = ""
		}
		p.writeJSON(w, map[string]interface{}{"status": p.logoutStatus})

	default:
		w.WriteHeader(http.StatusNotFound)
	}
}
