package event

import (
	"encoding/base64"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/aura-studio/lambdaweb/canonical"
	"github.com/tidwall/gjson"
)

// Decode detects the format of payload and decodes it.
func Decode(payload []byte) (*canonical.Request, SourceFormat, error) {
	format, err := Detect(payload)
	if err != nil {
		return nil, format, err
	}
	req, err := DecodeAs(format, payload)
	return req, format, err
}

// DecodeAs decodes payload assuming it has the given format.
func DecodeAs(format SourceFormat, payload []byte) (*canonical.Request, error) {
	switch format {
	case RESTAPIV1:
		return DecodeRESTAPIV1(payload)
	case HTTPAPIV2, FunctionURL:
		return DecodeHTTPAPIV2(payload)
	default:
		return nil, ErrUnrecognizedEventShape
	}
}

// StripStage removes a leading /{stage} segment so the path is relative to the
// application. Paths that do not start with the stage are returned as is.
func StripStage(path, stage string) string {
	if path == "" {
		path = "/"
	}
	if stage == "" || stage == "$default" {
		return path
	}
	prefix := "/" + stage
	if path == prefix {
		return "/"
	}
	if strings.HasPrefix(path, prefix+"/") {
		return path[len(prefix):]
	}
	return path
}

// ParseRawQuery splits on '&' then on the first '=', percent-decodes key and
// value and keeps duplicate keys in encounter order. A '+' stays literal.
// Segments that fail to decode are kept verbatim.
func ParseRawQuery(raw string) canonical.Query {
	var q canonical.Query
	for _, part := range strings.Split(raw, "&") {
		if part == "" {
			continue
		}
		k, v, _ := strings.Cut(part, "=")
		q.Add(unescapeQuery(k), unescapeQuery(v))
	}
	return q
}

func unescapeQuery(s string) string {
	if u, err := url.PathUnescape(s); err == nil {
		return u
	}
	return s
}

func decodeBody(body string, isBase64 bool) ([]byte, error) {
	if body == "" {
		return []byte{}, nil
	}
	if !isBase64 {
		return []byte(body), nil
	}
	b, err := base64.StdEncoding.DecodeString(body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedBody, err)
	}
	return b, nil
}

// addHeaders copies a JSON object of string or string-array values into h,
// keeping document order so repeated names stay deterministic.
func addHeaders(h http.Header, obj gjson.Result, skipPresent bool) {
	obj.ForEach(func(key, value gjson.Result) bool {
		name := key.String()
		if skipPresent && len(h.Values(name)) > 0 {
			return true
		}
		if value.IsArray() {
			value.ForEach(func(_, item gjson.Result) bool {
				h.Add(name, item.String())
				return true
			})
			return true
		}
		if value.Type != gjson.Null {
			h.Add(name, value.String())
		}
		return true
	})
}

func copyParams(src map[string]string) map[string]string {
	dst := make(map[string]string, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}

func escapedPath(p string) string {
	return (&url.URL{Path: p}).EscapedPath()
}
