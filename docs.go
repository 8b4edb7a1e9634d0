// Copyright IBM Corp. 2020, 2025
// SPDX-License-Identifier: MPL-2.0

// wgauth (Wargaming authentication) provides a collection of related packages
// which let a web application log users in with their Wargaming.net account,
// using either the token flow or the legacy OpenID 2.0 flow.
//
//	wargaming           provider configuration, login URLs, callback verification and profiles
//	wargaming/callback  http handlers for login, callback, logout and login-required pages
//	session             cookie sessions kept in memory or in redis
package wgauth
