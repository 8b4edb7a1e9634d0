/*
wargaming is a package for logging users in with the Wargaming.net identity
provider and reading their game account from its public API.

Primary types provided by the package

* Config: the configuration of an application registered with the provider
(application id, redirect URL, region, login flow, etc). It can be loaded from
a YAML file with LoadConfigFile.

* Provider: provides integration with the provider: building login URLs,
OpenID check_authentication requests, account and clan info requests, and
access token logout. A Provider is shared by every request.

* Verifier: verifies that a user is logged in. LegacyVerifier verifies an
OpenID 2.0 callback; TokenVerifier verifies the access token stored in the
session.

* Auth: the per-request entry point, backed by a SessionStore. It validates
the login, completes the token flow, loads the user's profile and logs the
user out.

* SessionStore: the key/value store scoped to one user's browsing session in
which the account id, access token and token expiry are kept. The session
package provides memory and redis backed implementations.

The wargaming.callback package

The callback package includes http.HandlerFunc constructors for the login
redirect, the provider's callback and logout, and a middleware which only lets
logged in users through.

Examples

* Web application:
wargaming/examples/webapp/
*/
package wargaming
