// Package canonical holds the single HTTP representation every Lambda event
// shape is decoded into, and every reply shape is encoded from.
package canonical

import (
	"net/http"
	"net/url"
	"strings"
)

// Request is an HTTP request as seen by the application, independent of the
// trigger that delivered it.
type Request struct {
	// Method is an uppercase token, e.g. GET.
	Method string
	// RawPath is the escaped, stage-relative path.
	RawPath string
	// Path is the decoded form of RawPath.
	Path string
	// Query keeps keys in the order they were first seen.
	Query Query
	// Header lookups are case-insensitive.
	Header http.Header
	Body   []byte
	// IsBinary reports the body arrived base64-framed.
	IsBinary bool
	SourceIP string
	Host     string
	// PathParams are the captures bound by the API definition, e.g. {proxy+}.
	PathParams map[string]string
	Meta       Meta
}

func NewRequest(method, path string) *Request {
	return &Request{
		Method:     strings.ToUpper(method),
		RawPath:    (&url.URL{Path: path}).EscapedPath(),
		Path:       path,
		Header:     http.Header{},
		Body:       []byte{},
		PathParams: map[string]string{},
	}
}

// URL builds the absolute request URL. The scheme follows X-Forwarded-Proto
// and defaults to https.
func (r *Request) URL() *url.URL {
	scheme := strings.ToLower(r.Header.Get("X-Forwarded-Proto"))
	if scheme == "" {
		scheme = "https"
	}
	host := r.Host
	if host == "" {
		host = r.Header.Get("Host")
	}
	if host == "" {
		host = "localhost"
	}

	u := &url.URL{
		Scheme:   scheme,
		Host:     host,
		Path:     r.Path,
		RawQuery: r.Query.Encode(),
	}
	if r.RawPath != "" && r.RawPath != u.EscapedPath() {
		u.RawPath = r.RawPath
	}
	if u.Path == "" {
		u.Path = "/"
	}
	return u
}
