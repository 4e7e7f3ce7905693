package bridge

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/aura-studio/dynamic"
	"github.com/aura-studio/lambdaweb/canonical"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

const (
	ReqMetaRemoteAddr          = "remote_addr"
	ReqMetaXForwardedFor       = "x_forwarded_for"
	ReqMetaXForwardedPort      = "x_forwarded_port"
	ReqMetaXForwardedProto     = "x_forwarded_proto"
	ReqMetaCloudFrontPolicy    = "cloudfront_policy"
	ReqMetaCloudFrontSignature = "cloudfront_signature"
	ReqMetaCloudFrontKeyPairId = "cloudfront_key_pair_id"
	ReqMetaHost                = "host"
	ReqMetaRequestID           = "request_id"
	ReqMetaFunctionARN         = "function_arn"
	ReqMetaTraceID             = "trace_id"
)

const (
	RspMetaETag        = "etag"
	RspMetaContentType = "content_type"
	RspMetaContent     = "content"
	RspMetaStatus      = "status"
)

const maxPathHops = 8

// TunnelSource resolves a package tunnel, e.g. *dynamic.Loader.
type TunnelSource interface {
	GetPackage(pkg string, version string) (dynamic.Tunnel, error)
}

// Dynamic binds dynamically loaded packages. A request for
// /{package}/{version}/{route...} is passed to the package tunnel as a JSON
// string: the query for GET and HEAD, the raw body otherwise.
//
// Tunnel replies may redirect (http:// or https://), fail (error://) or hand
// over to another package path (path://). A JSON reply may carry a __meta__
// object controlling status, content type, etag and content.
func Dynamic(source TunnelSource) Handler {
	return HandlerFunc(func(ctx context.Context, req *canonical.Request) (*canonical.Response, error) {
		path := req.Path
		payload := dynamicRequest(req)

		for hop := 0; hop < maxPathHops; hop++ {
			pkg, version, route, ok := splitPackagePath(path)
			if !ok {
				return textResponse(http.StatusNotFound, fmt.Sprintf("invalid path: %q", path)), nil
			}

			tunnel, err := source.GetPackage(pkg, version)
			if err != nil {
				return nil, err
			}

			rsp := tunnel.Invoke(route, payload)
			switch {
			case strings.HasPrefix(rsp, "http://"), strings.HasPrefix(rsp, "https://"):
				resp := canonical.NewResponse(http.StatusTemporaryRedirect)
				resp.Header.Set("Location", rsp)
				return resp, nil
			case strings.HasPrefix(rsp, "error://"):
				return textResponse(http.StatusInternalServerError, strings.TrimPrefix(rsp, "error://")), nil
			case strings.HasPrefix(rsp, "path://"):
				path = "/" + strings.TrimPrefix(rsp, "path://")
				continue
			}
			return dynamicResponse(rsp), nil
		}

		return nil, fmt.Errorf("bridge: too many path:// hops from %q", req.Path)
	})
}

func splitPackagePath(path string) (pkg, version, route string, ok bool) {
	parts := strings.Split(strings.Trim(path, "/"), "/")
	if len(parts) < 2 || parts[0] == "" || parts[1] == "" {
		return "", "", "", false
	}
	return parts[0], parts[1], "/" + strings.Join(parts[2:], "/"), true
}

func dynamicRequest(req *canonical.Request) string {
	var payload string
	switch req.Method {
	case http.MethodGet, http.MethodHead, "":
		dataMap := map[string]any{}
		for _, k := range req.Query.Keys() {
			dataMap[k] = req.Query.Get(k)
		}
		data, _ := json.Marshal(dataMap)
		payload = string(data)
	default:
		payload = string(req.Body)
	}

	if gjson.Valid(payload) && gjson.Get(payload, "__meta__").Exists() {
		return payload
	}
	if gjson.Valid(payload) && gjson.Parse(payload).IsObject() {
		if withMeta, err := sjson.Set(payload, "__meta__", requestMeta(req)); err == nil {
			return withMeta
		}
	}
	return payload
}

func requestMeta(req *canonical.Request) map[string]any {
	return map[string]any{
		ReqMetaXForwardedFor:       req.Header.Get("X-Forwarded-For"),
		ReqMetaXForwardedPort:      req.Header.Get("X-Forwarded-Port"),
		ReqMetaXForwardedProto:     req.Header.Get("X-Forwarded-Proto"),
		ReqMetaRemoteAddr:          req.SourceIP,
		ReqMetaCloudFrontPolicy:    req.Header.Get("CloudFront-Policy"),
		ReqMetaCloudFrontSignature: req.Header.Get("CloudFront-Signature"),
		ReqMetaCloudFrontKeyPairId: req.Header.Get("CloudFront-Key-Pair-Id"),
		ReqMetaHost:                req.URL().Host,
		ReqMetaRequestID:           req.Meta.RequestID,
		ReqMetaFunctionARN:         req.Meta.FunctionARN,
		ReqMetaTraceID:             req.Meta.TraceID,
	}
}

// dynamicResponse applies a reply's __meta__:
// content_type defaults to application/json, content replaces the body when
// set, etag and status are copied as is.
func dynamicResponse(rsp string) *canonical.Response {
	resp := canonical.NewResponse(http.StatusOK)
	contentType := "application/json"

	if gjson.Valid(rsp) {
		if meta := gjson.Get(rsp, "__meta__"); meta.Exists() {
			rsp, _ = sjson.Delete(rsp, "__meta__")

			if v := meta.Get(RspMetaETag).String(); v != "" {
				resp.Header.Set("ETag", v)
			}
			if v := meta.Get(RspMetaContentType).String(); v != "" {
				contentType = v
			}
			if v := meta.Get(RspMetaContent).String(); v != "" {
				rsp = v
			}
			if v := meta.Get(RspMetaStatus).Int(); v >= 100 && v <= 599 {
				resp.StatusCode = int(v)
			}
		}
	}

	resp.Header.Set("Content-Type", contentType)
	resp.Body = []byte(rsp)
	return resp
}

func textResponse(status int, body string) *canonical.Response {
	resp := canonical.NewResponse(status)
	resp.Header.Set("Content-Type", "text/plain; charset=utf-8")
	resp.Body = []byte(body)
	return resp
}
