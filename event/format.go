// Package event classifies raw Lambda HTTP payloads and decodes them into
// canonical requests.
package event

import (
	"errors"
	"fmt"
	"strings"

	"github.com/tidwall/gjson"
)

var (
	ErrUnrecognizedEventShape = errors.New("event: unrecognized event shape")
	ErrMalformedBody          = errors.New("event: malformed body")
)

// SourceFormat tags the trigger that produced an event.
type SourceFormat int

const (
	FormatUnknown SourceFormat = iota
	RESTAPIV1
	HTTPAPIV2
	FunctionURL
)

func (f SourceFormat) String() string {
	switch f {
	case RESTAPIV1:
		return "rest_api_v1"
	case HTTPAPIV2:
		return "http_api_v2"
	case FunctionURL:
		return "function_url"
	default:
		return "unknown"
	}
}

// MultiValue reports whether the format carries multiValueHeaders.
func (f SourceFormat) MultiValue() bool {
	return f == RESTAPIV1
}

// Detect classifies payload. The version discriminator wins when present;
// REST API v1 payloads predate it and are recognized by structure.
func Detect(payload []byte) (SourceFormat, error) {
	if !gjson.ValidBytes(payload) {
		return FormatUnknown, fmt.Errorf("%w: invalid json", ErrUnrecognizedEventShape)
	}
	root := gjson.ParseBytes(payload)
	if !root.IsObject() {
		return FormatUnknown, fmt.Errorf("%w: payload is not an object", ErrUnrecognizedEventShape)
	}

	version := root.Get("version")
	if version.Type == gjson.String && version.Str == "2.0" && root.Get("requestContext.http").IsObject() {
		if strings.Contains(root.Get("requestContext.domainName").String(), ".lambda-url.") {
			return FunctionURL, nil
		}
		return HTTPAPIV2, nil
	}

	if !version.Exists() && (root.Get("multiValueHeaders").Exists() || root.Get("resource").Exists()) {
		return RESTAPIV1, nil
	}

	return FormatUnknown, ErrUnrecognizedEventShape
}
