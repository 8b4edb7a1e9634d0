// Copyright IBM Corp. 2020, 2025
// SPDX-License-Identifier: MPL-2.0

/*
callback is a package that provides handlers (in the form of http.HandlerFunc)
for the login redirect, the provider's login callback and logout, for both the
token flow and the legacy OpenID flow, plus a middleware which only lets
logged in users through.
*/
package callback
