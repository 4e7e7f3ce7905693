package event

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/aura-studio/lambdaweb/canonical"
	"github.com/aws/aws-lambda-go/events"
	"github.com/tidwall/gjson"
)

// DecodeHTTPAPIV2 decodes an API Gateway HTTP API (payload 2.0) or Lambda
// Function URL event. The cookies array is folded back into one Cookie header.
func DecodeHTTPAPIV2(payload []byte) (*canonical.Request, error) {
	var ev events.APIGatewayV2HTTPRequest
	if err := json.Unmarshal(payload, &ev); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnrecognizedEventShape, err)
	}

	rawPath := StripStage(ev.RawPath, ev.RequestContext.Stage)
	path, err := url.PathUnescape(rawPath)
	if err != nil {
		path = rawPath
	}

	req := &canonical.Request{
		Method:     strings.ToUpper(ev.RequestContext.HTTP.Method),
		RawPath:    rawPath,
		Path:       path,
		Query:      ParseRawQuery(ev.RawQueryString),
		Header:     http.Header{},
		SourceIP:   ev.RequestContext.HTTP.SourceIP,
		Host:       ev.RequestContext.DomainName,
		PathParams: copyParams(ev.PathParameters),
		IsBinary:   ev.IsBase64Encoded,
	}

	addHeaders(req.Header, gjson.GetBytes(payload, "headers"), false)
	if len(ev.Cookies) > 0 {
		req.Header.Set("Cookie", strings.Join(ev.Cookies, "; "))
	}
	if h := req.Header.Get("Host"); h != "" {
		req.Host = h
	}

	body, err := decodeBody(ev.Body, ev.IsBase64Encoded)
	if err != nil {
		return nil, err
	}
	req.Body = body

	return req, nil
}
