package event

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/aura-studio/lambdaweb/canonical"
	"github.com/aws/aws-lambda-go/events"
	"github.com/tidwall/gjson"
)

// DecodeRESTAPIV1 decodes an API Gateway REST API (payload 1.0) event.
//
// multiValueHeaders and multiValueQueryStringParameters are authoritative; the
// single-value maps only contribute keys the multi-value maps lack.
func DecodeRESTAPIV1(payload []byte) (*canonical.Request, error) {
	var ev events.APIGatewayProxyRequest
	if err := json.Unmarshal(payload, &ev); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnrecognizedEventShape, err)
	}
	root := gjson.ParseBytes(payload)

	path := StripStage(ev.Path, ev.RequestContext.Stage)
	req := &canonical.Request{
		Method:     strings.ToUpper(ev.HTTPMethod),
		RawPath:    escapedPath(path),
		Path:       path,
		Header:     http.Header{},
		SourceIP:   ev.RequestContext.Identity.SourceIP,
		PathParams: copyParams(ev.PathParameters),
		IsBinary:   ev.IsBase64Encoded,
	}

	addHeaders(req.Header, root.Get("multiValueHeaders"), false)
	addHeaders(req.Header, root.Get("headers"), true)

	root.Get("multiValueQueryStringParameters").ForEach(func(key, values gjson.Result) bool {
		values.ForEach(func(_, v gjson.Result) bool {
			req.Query.Add(key.String(), v.String())
			return true
		})
		return true
	})
	root.Get("queryStringParameters").ForEach(func(key, v gjson.Result) bool {
		if !req.Query.Has(key.String()) && v.Type != gjson.Null {
			req.Query.Add(key.String(), v.String())
		}
		return true
	})

	req.Host = req.Header.Get("Host")
	if req.Host == "" {
		req.Host = ev.RequestContext.DomainName
	}

	body, err := decodeBody(ev.Body, ev.IsBase64Encoded)
	if err != nil {
		return nil, err
	}
	req.Body = body

	return req, nil
}
