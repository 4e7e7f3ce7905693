package canonical

import "net/http"

// Response is the application's reply before it is framed for a trigger.
// Cookies are kept apart from Header because HTTP API v2 carries them in a
// dedicated array.
type Response struct {
	StatusCode int
	Header     http.Header
	Cookies    []string
	Body       []byte
	IsBinary   bool
}

func NewResponse(statusCode int) *Response {
	return &Response{
		StatusCode: statusCode,
		Header:     http.Header{},
		Body:       []byte{},
	}
}

func (r *Response) ContentType() string {
	if r.Header == nil {
		return ""
	}
	return r.Header.Get("Content-Type")
}
