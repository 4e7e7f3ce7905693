package reply

import (
	"bytes"
	"net/http"
	"strings"

	"github.com/andybalholm/brotli"
	"github.com/aura-studio/lambdaweb/canonical"
)

// Compress brotli-compresses resp in place when compression is enabled, the
// client accepts br, the body is not already encoded and its Content-Type is
// textual. It reports whether the body was replaced.
func (e *Encoder) Compress(req *canonical.Request, resp *canonical.Response) bool {
	if !e.Brotli || req == nil || resp == nil || len(resp.Body) == 0 {
		return false
	}
	if resp.Header == nil {
		resp.Header = http.Header{}
	}
	if resp.Header.Get("Content-Encoding") != "" {
		return false
	}
	if !acceptsBrotli(req.Header) || !isTextual(resp.ContentType()) {
		return false
	}

	var buf bytes.Buffer
	w := brotli.NewWriterLevel(&buf, e.BrotliQuality)
	if _, err := w.Write(resp.Body); err != nil {
		return false
	}
	if err := w.Close(); err != nil {
		return false
	}

	resp.Body = buf.Bytes()
	resp.IsBinary = true
	resp.Header.Set("Content-Encoding", "br")
	resp.Header.Del("Content-Length")
	resp.Header.Add("Vary", "Accept-Encoding")
	return true
}

func acceptsBrotli(h http.Header) bool {
	for _, v := range h.Values("Accept-Encoding") {
		for _, part := range strings.Split(v, ",") {
			coding, params, _ := strings.Cut(strings.TrimSpace(part), ";")
			if !strings.EqualFold(strings.TrimSpace(coding), "br") {
				continue
			}
			q := strings.ReplaceAll(strings.TrimSpace(params), " ", "")
			if q == "q=0" || q == "q=0.0" || q == "q=0.00" || q == "q=0.000" {
				return false
			}
			return true
		}
	}
	return false
}
