package bridge_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strings"
	"testing"

	"github.com/aura-studio/lambdaweb/bridge"
	"github.com/aura-studio/lambdaweb/canonical"
	"github.com/gin-gonic/gin"
	"github.com/gofiber/fiber/v2"
	"github.com/gorilla/mux"
)

func newItemRequest() *canonical.Request {
	req := canonical.NewRequest("POST", "/items/5")
	req.Query.Add("tag", "a")
	req.Query.Add("tag", "b")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Cookie", "a=1; b=2")
	req.Header.Set("X-Forwarded-Proto", "https")
	req.Host = "api.example.com"
	req.SourceIP = "1.2.3.4"
	req.Body = []byte(`{"name":"x"}`)
	return req
}

func TestHTTPWithMux(t *testing.T) {
	r := mux.NewRouter()
	r.HandleFunc("/items/{id}", func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		cookie, _ := r.Cookie("b")
		w.Header().Set("Content-Type", "text/plain")
		w.Header().Add("Set-Cookie", "s=1")
		w.Header().Add("Set-Cookie", "t=2")
		w.WriteHeader(http.StatusCreated)
		io.WriteString(w, strings.Join([]string{
			mux.Vars(r)["id"],
			strings.Join(r.URL.Query()["tag"], ","),
			cookie.Value,
			r.Host,
			r.RemoteAddr,
			string(body),
		}, "|"))
	}).Methods(http.MethodPost)

	resp, err := bridge.HTTP(r).ServeLambda(context.Background(), newItemRequest())
	if err != nil {
		t.Fatalf("ServeLambda: %v", err)
	}
	if resp.StatusCode != http.StatusCreated {
		t.Errorf("StatusCode = %d, want 201", resp.StatusCode)
	}
	want := `5|a,b|2|api.example.com|1.2.3.4:0|{"name":"x"}`
	if string(resp.Body) != want {
		t.Errorf("Body = %q, want %q", resp.Body, want)
	}
	if got := resp.Header.Values("Set-Cookie"); !reflect.DeepEqual(got, []string{"s=1", "t=2"}) {
		t.Errorf("Set-Cookie = %v", got)
	}
}

func TestHTTPDefaults(t *testing.T) {
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html><body>hi</body></html>"))
	})
	resp, err := bridge.HTTP(h).ServeLambda(context.Background(), canonical.NewRequest("GET", "/"))
	if err != nil {
		t.Fatalf("ServeLambda: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Errorf("StatusCode = %d, want 200", resp.StatusCode)
	}
	if got := resp.ContentType(); !strings.HasPrefix(got, "text/html") {
		t.Errorf("Content-Type = %q, want text/html", got)
	}
}

func TestHTTPPassesContext(t *testing.T) {
	type key struct{}
	ctx := context.WithValue(context.Background(), key{}, "v")
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, r.Context().Value(key{}).(string))
	})
	resp, _ := bridge.HTTP(h).ServeLambda(ctx, canonical.NewRequest("GET", "/"))
	if string(resp.Body) != "v" {
		t.Errorf("Body = %q, want v", resp.Body)
	}
}

func TestGin(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/items/:id", func(c *gin.Context) {
		var in struct {
			Name string `json:"name"`
		}
		if err := c.ShouldBindJSON(&in); err != nil {
			c.String(http.StatusBadRequest, err.Error())
			return
		}
		c.JSON(http.StatusOK, gin.H{"id": c.Param("id"), "name": in.Name, "tags": c.QueryArray("tag"), "ip": c.ClientIP()})
	})

	resp, err := bridge.Gin(r).ServeLambda(context.Background(), newItemRequest())
	if err != nil {
		t.Fatalf("ServeLambda: %v", err)
	}
	want := `{"id":"5","ip":"1.2.3.4","name":"x","tags":["a","b"]}`
	if string(resp.Body) != want {
		t.Errorf("Body = %s, want %s", resp.Body, want)
	}
	if got := resp.ContentType(); got != "application/json; charset=utf-8" {
		t.Errorf("Content-Type = %q", got)
	}
}

func TestFiber(t *testing.T) {
	app := fiber.New()
	app.Post("/items/:id", func(c *fiber.Ctx) error {
		c.Cookie(&fiber.Cookie{Name: "seen", Value: c.Cookies("a")})
		return c.Status(fiber.StatusAccepted).SendString(c.Params("id") + ":" + string(c.Body()))
	})

	resp, err := bridge.Fiber(app).ServeLambda(context.Background(), newItemRequest())
	if err != nil {
		t.Fatalf("ServeLambda: %v", err)
	}
	if resp.StatusCode != fiber.StatusAccepted {
		t.Errorf("StatusCode = %d, want 202", resp.StatusCode)
	}
	if string(resp.Body) != `5:{"name":"x"}` {
		t.Errorf("Body = %q", resp.Body)
	}
	if got := resp.Header.Get("Set-Cookie"); !strings.HasPrefix(got, "seen=1") {
		t.Errorf("Set-Cookie = %q, want seen=1...", got)
	}
}

func TestReadRequestWriteResponse(t *testing.T) {
	var got *canonical.Request
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		req, err := bridge.ReadRequest(r)
		if err != nil {
			t.Errorf("ReadRequest: %v", err)
		}
		got = req

		resp := canonical.NewResponse(http.StatusTeapot)
		resp.Header.Set("Content-Type", "text/plain")
		resp.Cookies = []string{"a=1", "b=2"}
		resp.Body = []byte("short and stout")
		if err := bridge.WriteResponse(w, resp); err != nil {
			t.Errorf("WriteResponse: %v", err)
		}
	}))
	defer srv.Close()

	rsp, err := http.Post(srv.URL+"/a%20b?x=1&x=2&y", "text/plain", strings.NewReader("body"))
	if err != nil {
		t.Fatalf("Post: %v", err)
	}
	defer rsp.Body.Close()
	body, _ := io.ReadAll(rsp.Body)

	if rsp.StatusCode != http.StatusTeapot || string(body) != "short and stout" {
		t.Errorf("response = %d %q", rsp.StatusCode, body)
	}
	if cookies := rsp.Header.Values("Set-Cookie"); !reflect.DeepEqual(cookies, []string{"a=1", "b=2"}) {
		t.Errorf("Set-Cookie = %v", cookies)
	}

	if got.Method != "POST" || got.Path != "/a b" || got.RawPath != "/a%20b" {
		t.Errorf("request line = %s %q %q", got.Method, got.Path, got.RawPath)
	}
	if !reflect.DeepEqual(got.Query.Values("x"), []string{"1", "2"}) || !got.Query.Has("y") {
		t.Errorf("Query = %q", got.Query.Encode())
	}
	if string(got.Body) != "body" || got.SourceIP != "127.0.0.1" {
		t.Errorf("Body = %q, SourceIP = %q", got.Body, got.SourceIP)
	}
	if got.Meta.RequestID == "" {
		t.Error("local requests get a request id")
	}
}
