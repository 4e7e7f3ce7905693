// Package reply frames canonical responses in the JSON shape each Lambda
// trigger expects back.
package reply

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/textproto"
	"strings"
	"unicode/utf8"

	"github.com/aura-studio/lambdaweb/canonical"
	"github.com/aura-studio/lambdaweb/event"
)

var ErrNilResponse = errors.New("reply: nil response")

type restReply struct {
	StatusCode        int                 `json:"statusCode"`
	Headers           map[string]string   `json:"headers"`
	MultiValueHeaders map[string][]string `json:"multiValueHeaders"`
	Body              string              `json:"body"`
	IsBase64Encoded   bool                `json:"isBase64Encoded"`
}

type httpReply struct {
	StatusCode      int               `json:"statusCode"`
	Headers         map[string]string `json:"headers"`
	Cookies         []string          `json:"cookies"`
	Body            string            `json:"body"`
	IsBase64Encoded bool              `json:"isBase64Encoded"`
}

type Encoder struct {
	*Options
	isBinaryType func(string) bool
}

func NewEncoder(opts ...Option) *Encoder {
	e := &Encoder{
		Options: NewOptions(opts...),
	}
	e.isBinaryType = e.BinaryPredicate
	if e.isBinaryType == nil {
		e.isBinaryType = MediaTypes(e.BinaryMediaTypes...)
	}
	return e
}

// Encode frames resp for format. The body is base64 framed when it is not
// valid UTF-8, when its Content-Type is a binary media type, or when it
// carries a Content-Encoding.
func (e *Encoder) Encode(format event.SourceFormat, resp *canonical.Response) ([]byte, error) {
	if resp == nil {
		return nil, ErrNilResponse
	}

	body, isBase64 := e.frameBody(resp)

	switch format {
	case event.RESTAPIV1:
		return marshal(e.restReply(resp, body, isBase64))
	case event.HTTPAPIV2, event.FunctionURL:
		return marshal(e.httpReply(resp, body, isBase64))
	default:
		return nil, fmt.Errorf("reply: cannot encode for format %s", format)
	}
}

func (e *Encoder) frameBody(resp *canonical.Response) (string, bool) {
	if e.isBinary(resp) {
		return base64.StdEncoding.EncodeToString(resp.Body), true
	}
	return string(resp.Body), false
}

func (e *Encoder) isBinary(resp *canonical.Response) bool {
	if !utf8.Valid(resp.Body) {
		return true
	}
	if resp.Header == nil {
		return false
	}
	if ce := resp.Header.Get("Content-Encoding"); ce != "" && !strings.EqualFold(ce, "identity") {
		return true
	}
	return e.isBinaryType(resp.ContentType())
}

func (e *Encoder) restReply(resp *canonical.Response, body string, isBase64 bool) *restReply {
	r := &restReply{
		StatusCode:        resp.StatusCode,
		Headers:           map[string]string{},
		MultiValueHeaders: map[string][]string{},
		Body:              body,
		IsBase64Encoded:   isBase64,
	}
	for k, vs := range resp.Header {
		if len(vs) == 0 {
			continue
		}
		r.MultiValueHeaders[k] = append([]string(nil), vs...)
		r.Headers[k] = vs[len(vs)-1]
	}
	if len(resp.Cookies) > 0 {
		const name = "Set-Cookie"
		r.MultiValueHeaders[name] = append(r.MultiValueHeaders[name], resp.Cookies...)
		r.Headers[name] = resp.Cookies[len(resp.Cookies)-1]
	}
	return r
}

func (e *Encoder) httpReply(resp *canonical.Response, body string, isBase64 bool) *httpReply {
	r := &httpReply{
		StatusCode:      resp.StatusCode,
		Headers:         map[string]string{},
		Cookies:         []string{},
		Body:            body,
		IsBase64Encoded: isBase64,
	}
	for k, vs := range resp.Header {
		if len(vs) == 0 {
			continue
		}
		if textproto.CanonicalMIMEHeaderKey(k) == "Set-Cookie" {
			r.Cookies = append(r.Cookies, vs...)
			continue
		}
		r.Headers[k] = strings.Join(vs, ",")
	}
	r.Cookies = append(r.Cookies, resp.Cookies...)
	return r
}

func marshal(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// Decode parses a reply payload back into a canonical response. Set-Cookie
// values found in a v2 cookies array land in Cookies; REST API v1 cookies stay
// in Header.
func Decode(format event.SourceFormat, payload []byte) (*canonical.Response, error) {
	var (
		resp    = canonical.NewResponse(0)
		body    string
		encoded bool
	)

	switch format {
	case event.RESTAPIV1:
		var r restReply
		if err := json.Unmarshal(payload, &r); err != nil {
			return nil, err
		}
		resp.StatusCode = r.StatusCode
		for k, vs := range r.MultiValueHeaders {
			for _, v := range vs {
				resp.Header.Add(k, v)
			}
		}
		for k, v := range r.Headers {
			if len(resp.Header.Values(k)) == 0 {
				resp.Header.Set(k, v)
			}
		}
		body, encoded = r.Body, r.IsBase64Encoded
	case event.HTTPAPIV2, event.FunctionURL:
		var r httpReply
		if err := json.Unmarshal(payload, &r); err != nil {
			return nil, err
		}
		resp.StatusCode = r.StatusCode
		for k, v := range r.Headers {
			resp.Header.Set(k, v)
		}
		resp.Cookies = append(resp.Cookies, r.Cookies...)
		body, encoded = r.Body, r.IsBase64Encoded
	default:
		return nil, fmt.Errorf("reply: cannot decode format %s", format)
	}

	if !encoded {
		resp.Body = []byte(body)
		return resp, nil
	}
	b, err := base64.StdEncoding.DecodeString(body)
	if err != nil {
		return nil, fmt.Errorf("reply: body: %w", err)
	}
	resp.Body = b
	resp.IsBinary = true
	return resp, nil
}
