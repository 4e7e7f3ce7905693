package bridge

import (
	"bytes"
	"context"
	"io"
	"net"
	"net/http"
	"strconv"

	"github.com/aura-studio/lambdaweb/canonical"
	"github.com/aura-studio/lambdaweb/event"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// HTTP binds any net/http handler, e.g. a gorilla/mux router or a chi mux.
func HTTP(h http.Handler) Handler {
	return HandlerFunc(func(ctx context.Context, req *canonical.Request) (*canonical.Response, error) {
		r, err := NewHTTPRequest(ctx, req)
		if err != nil {
			return nil, err
		}
		w := newResponseWriter()
		h.ServeHTTP(w, r)
		return w.response(), nil
	})
}

// Gin binds a gin engine.
func Gin(engine *gin.Engine) Handler {
	return HTTP(engine)
}

// NewHTTPRequest builds the server-side *http.Request a framework expects.
func NewHTTPRequest(ctx context.Context, req *canonical.Request) (*http.Request, error) {
	u := req.URL()
	r, err := http.NewRequestWithContext(ctx, req.Method, u.String(), bytes.NewReader(req.Body))
	if err != nil {
		return nil, err
	}
	r.Header = req.Header.Clone()
	if r.Header == nil {
		r.Header = http.Header{}
	}
	r.Host = u.Host
	r.RequestURI = u.RequestURI()
	r.ContentLength = int64(len(req.Body))
	if req.SourceIP != "" {
		r.RemoteAddr = net.JoinHostPort(req.SourceIP, "0")
	}
	return r, nil
}

// ReadRequest converts a request received by a local listener. It is given a
// fresh request id so handlers see the same metadata shape as on Lambda.
func ReadRequest(r *http.Request) (*canonical.Request, error) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		return nil, err
	}

	req := &canonical.Request{
		Method:     r.Method,
		RawPath:    r.URL.EscapedPath(),
		Path:       r.URL.Path,
		Query:      event.ParseRawQuery(r.URL.RawQuery),
		Header:     r.Header.Clone(),
		Body:       body,
		Host:       r.Host,
		PathParams: map[string]string{},
		Meta: canonical.Meta{
			RequestID: uuid.NewString(),
		},
	}
	if req.Method == "" {
		req.Method = http.MethodGet
	}
	if req.Header == nil {
		req.Header = http.Header{}
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		req.SourceIP = host
	} else {
		req.SourceIP = r.RemoteAddr
	}
	return req, nil
}

// WriteResponse writes resp to a local listener's ResponseWriter.
func WriteResponse(w http.ResponseWriter, resp *canonical.Response) error {
	h := w.Header()
	for k, vs := range resp.Header {
		for _, v := range vs {
			h.Add(k, v)
		}
	}
	for _, c := range resp.Cookies {
		h.Add("Set-Cookie", c)
	}
	if h.Get("Content-Length") == "" {
		h.Set("Content-Length", strconv.Itoa(len(resp.Body)))
	}
	status := resp.StatusCode
	if status == 0 {
		status = http.StatusOK
	}
	w.WriteHeader(status)
	_, err := w.Write(resp.Body)
	return err
}

type responseWriter struct {
	header      http.Header
	status      int
	wroteHeader bool
	body        bytes.Buffer
}

func newResponseWriter() *responseWriter {
	return &responseWriter{header: http.Header{}}
}

func (w *responseWriter) Header() http.Header {
	return w.header
}

func (w *responseWriter) WriteHeader(status int) {
	if w.wroteHeader {
		return
	}
	w.status = status
	w.wroteHeader = true
}

func (w *responseWriter) Write(b []byte) (int, error) {
	if !w.wroteHeader {
		w.WriteHeader(http.StatusOK)
	}
	return w.body.Write(b)
}

func (w *responseWriter) Flush() {}

func (w *responseWriter) response() *canonical.Response {
	status := w.status
	if status == 0 {
		status = http.StatusOK
	}
	resp := canonical.NewResponse(status)
	resp.Header = w.header.Clone()
	resp.Body = w.body.Bytes()
	if resp.Header.Get("Content-Type") == "" && len(resp.Body) > 0 {
		resp.Header.Set("Content-Type", http.DetectContentType(resp.Body))
	}
	return resp
}
