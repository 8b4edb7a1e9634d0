// Copyright IBM Corp. 2020, 2025
// SPDX-License-Identifier: MPL-2.0

package wargaming

import (
	"html/template"
	"net/http"
	"net/url"
	"sort"
)

// Redirect is an instruction to send the user to the provider's login page.
// It's an http.Handler so it can be served directly.
type Redirect struct {
	// URL is the login URL.
	URL string

	// FormPost renders an auto-submitting HTML form instead of answering
	// with a 302. OpenID 2.0 allows this for long requests.
	FormPost bool

	// Method is the form method used with FormPost: "post" or "get".
	Method string
}

type formField struct {
	Name  string
	Value string
}

var formPostTemplate = template.Must(template.New("form_post").Parse(`<!DOCTYPE html>
<html>
<head><title>Redirecting to login</title></head>
<body onload="document.forms[0].submit()">
<form id="login" method="{{.Method}}" action="{{.Action}}">
{{- range .Fields}}
<input type="hidden" id="{{.Name}}" name="{{.Name}}" value="{{.Value}}">
{{- end}}
<noscript><button type="submit">Continue to login</button></noscript>
</form>
</body>
</html>
`))

// ServeHTTP sends the redirect.
func (rd *Redirect) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if !rd.FormPost {
		http.Redirect(w, r, rd.URL, http.StatusFound)
		return
	}
	u, err := url.Parse(rd.URL)
	if err != nil {
		http.Error(w, "invalid login URL", http.StatusInternalServerError)
		return
	}
	q := u.Query()
	u.RawQuery = ""
	names := make([]string, 0, len(q))
	for k := range q {
		names = append(names, k)
	}
	sort.Strings(names)
	fields := make([]formField, 0, len(names))
	for _, k := range names {
		fields = append(fields, formField{Name: k, Value: q.Get(k)})
	}
	method := rd.Method
	if method == "" {
		method = "post"
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	_ = formPostTemplate.Execute(w, struct {
		Method string
		Action string
		Fields []formField
	}{
		Method: method,
		Action: u.String(),
		Fields: fields,
	})
}
