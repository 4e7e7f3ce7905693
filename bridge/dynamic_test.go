package bridge_test

import (
	"context"
	"fmt"
	"net/http"
	"testing"

	"github.com/aura-studio/dynamic"
	"github.com/aura-studio/lambdaweb/bridge"
	"github.com/aura-studio/lambdaweb/canonical"
	"github.com/tidwall/gjson"
)

type mockTunnel struct {
	route string
	req   string
	reply func(route, req string) string
}

func (m *mockTunnel) Init() {}

func (m *mockTunnel) Invoke(route string, req string) string {
	m.route = route
	m.req = req
	if m.reply != nil {
		return m.reply(route, req)
	}
	return `{"ok":true}`
}

func (m *mockTunnel) Meta() string { return "{}" }

func (m *mockTunnel) Close() {}

type mockSource map[string]*mockTunnel

func (s mockSource) GetPackage(pkg string, version string) (dynamic.Tunnel, error) {
	if t, ok := s[pkg+"@"+version]; ok {
		return t, nil
	}
	return nil, fmt.Errorf("package %s@%s not found", pkg, version)
}

func serveDynamic(t *testing.T, src mockSource, req *canonical.Request) *canonical.Response {
	t.Helper()
	resp, err := bridge.Dynamic(src).ServeLambda(context.Background(), req)
	if err != nil {
		t.Fatalf("ServeLambda: %v", err)
	}
	return resp
}

func TestDynamicGet(t *testing.T) {
	tunnel := &mockTunnel{}
	src := mockSource{"users@v1": tunnel}

	req := canonical.NewRequest("GET", "/users/v1/profile/get")
	req.Query.Add("id", "42")
	req.Query.Add("id", "43")
	req.SourceIP = "1.2.3.4"
	req.Meta.RequestID = "req-1"

	resp := serveDynamic(t, src, req)

	if tunnel.route != "/profile/get" {
		t.Errorf("route = %q, want /profile/get", tunnel.route)
	}
	if got := gjson.Get(tunnel.req, "id").String(); got != "42" {
		t.Errorf("id = %q, want first value 42", got)
	}
	if got := gjson.Get(tunnel.req, "__meta__.remote_addr").String(); got != "1.2.3.4" {
		t.Errorf("__meta__.remote_addr = %q", got)
	}
	if got := gjson.Get(tunnel.req, "__meta__.request_id").String(); got != "req-1" {
		t.Errorf("__meta__.request_id = %q", got)
	}
	if resp.StatusCode != http.StatusOK || resp.ContentType() != "application/json" {
		t.Errorf("response = %d %q", resp.StatusCode, resp.ContentType())
	}
	if string(resp.Body) != `{"ok":true}` {
		t.Errorf("Body = %s", resp.Body)
	}
}

func TestDynamicPostKeepsCallerMeta(t *testing.T) {
	tunnel := &mockTunnel{}
	req := canonical.NewRequest("POST", "/users/v1/save")
	req.Body = []byte(`{"__meta__":{"host":"caller"},"a":1}`)

	serveDynamic(t, mockSource{"users@v1": tunnel}, req)
	if tunnel.req != string(req.Body) {
		t.Errorf("req = %s, want body unchanged", tunnel.req)
	}
}

func TestDynamicResponseMeta(t *testing.T) {
	tunnel := &mockTunnel{reply: func(string, string) string {
		return `{"__meta__":{"content_type":"text/html","etag":"abc","content":"<p>hi</p>","status":201},"ignored":true}`
	}}
	resp := serveDynamic(t, mockSource{"site@v2": tunnel}, canonical.NewRequest("GET", "/site/v2"))

	if resp.StatusCode != http.StatusCreated {
		t.Errorf("StatusCode = %d, want 201", resp.StatusCode)
	}
	if resp.ContentType() != "text/html" || resp.Header.Get("ETag") != "abc" {
		t.Errorf("headers = %v", resp.Header)
	}
	if string(resp.Body) != "<p>hi</p>" {
		t.Errorf("Body = %q", resp.Body)
	}
	if tunnel.route != "/" {
		t.Errorf("route = %q, want /", tunnel.route)
	}
}

func TestDynamicReplyPrefixes(t *testing.T) {
	redirect := &mockTunnel{reply: func(string, string) string { return "https://example.com/x" }}
	failing := &mockTunnel{reply: func(string, string) string { return "error://boom" }}
	hop := &mockTunnel{reply: func(string, string) string { return "path://users/v1/final" }}
	final := &mockTunnel{reply: func(route, _ string) string { return `"` + route + `"` }}
	loop := &mockTunnel{reply: func(string, string) string { return "path://loop/v1" }}
	src := mockSource{"r@v1": redirect, "e@v1": failing, "h@v1": hop, "users@v1": final, "loop@v1": loop}

	resp := serveDynamic(t, src, canonical.NewRequest("GET", "/r/v1"))
	if resp.StatusCode != http.StatusTemporaryRedirect || resp.Header.Get("Location") != "https://example.com/x" {
		t.Errorf("redirect = %d %q", resp.StatusCode, resp.Header.Get("Location"))
	}

	resp = serveDynamic(t, src, canonical.NewRequest("GET", "/e/v1"))
	if resp.StatusCode != http.StatusInternalServerError || string(resp.Body) != "boom" {
		t.Errorf("error = %d %q", resp.StatusCode, resp.Body)
	}

	resp = serveDynamic(t, src, canonical.NewRequest("GET", "/h/v1"))
	if string(resp.Body) != `"/final"` {
		t.Errorf("hop body = %q", resp.Body)
	}

	if _, err := bridge.Dynamic(src).ServeLambda(context.Background(), canonical.NewRequest("GET", "/loop/v1")); err == nil {
		t.Error("endless path:// hops should fail")
	}
}

func TestDynamicErrors(t *testing.T) {
	src := mockSource{}

	resp := serveDynamic(t, src, canonical.NewRequest("GET", "/only"))
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("StatusCode = %d, want 404", resp.StatusCode)
	}

	_, err := bridge.Dynamic(src).ServeLambda(context.Background(), canonical.NewRequest("GET", "/missing/v1/x"))
	if err == nil {
		t.Error("unknown packages surface as handler errors")
	}
}
