package runtime

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/aura-studio/lambdaweb/canonical"
	"github.com/aws/aws-lambda-go/lambda/messages"
)

const (
	apiVersion = "2018-06-01"

	headerRequestID   = "Lambda-Runtime-Aws-Request-Id"
	headerDeadlineMs  = "Lambda-Runtime-Deadline-Ms"
	headerFunctionARN = "Lambda-Runtime-Invoked-Function-Arn"
	headerTraceID     = "Lambda-Runtime-Trace-Id"
	headerErrorType   = "Lambda-Runtime-Function-Error-Type"

	contentTypeJSON = "application/json"
)

// Invocation is one event handed out by the Runtime API.
type Invocation struct {
	RequestID   string
	Deadline    time.Time
	FunctionARN string
	TraceID     string
	Payload     []byte
}

func (i *Invocation) Meta() canonical.Meta {
	return canonical.Meta{
		RequestID:   i.RequestID,
		FunctionARN: i.FunctionARN,
		Deadline:    i.Deadline,
		TraceID:     i.TraceID,
	}
}

// Client speaks the Runtime API wire protocol over one persistent connection.
type Client struct {
	address    string
	baseURL    string
	httpClient *http.Client
}

// NewClient targets address, the host:port found in AWS_LAMBDA_RUNTIME_API.
// A nil httpClient gets a dedicated transport with no timeout, since Next
// blocks until an event arrives.
func NewClient(address string, httpClient *http.Client) *Client {
	if httpClient == nil {
		transport := http.DefaultTransport.(*http.Transport).Clone()
		transport.MaxIdleConnsPerHost = 1
		transport.DisableCompression = true
		httpClient = &http.Client{Transport: transport}
	}
	return &Client{
		address:    address,
		baseURL:    "http://" + address + "/" + apiVersion + "/runtime/",
		httpClient: httpClient,
	}
}

// Next blocks until the next invocation is available.
func (c *Client) Next(ctx context.Context) (*Invocation, error) {
	const op = "next"

	if c.address == "" {
		return nil, &RuntimeAPIError{Op: op, Err: ErrNoRuntimeAPI}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"invocation/next", nil)
	if err != nil {
		return nil, &RuntimeAPIError{Op: op, Err: err}
	}
	rsp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &RuntimeAPIError{Op: op, Err: err}
	}
	defer rsp.Body.Close()

	body, err := io.ReadAll(rsp.Body)
	if err != nil {
		return nil, &RuntimeAPIError{Op: op, Err: err}
	}
	if rsp.StatusCode != http.StatusOK {
		return nil, &RuntimeAPIError{Op: op, StatusCode: rsp.StatusCode, Err: errors.New(string(body))}
	}

	inv := &Invocation{
		RequestID:   rsp.Header.Get(headerRequestID),
		FunctionARN: rsp.Header.Get(headerFunctionARN),
		TraceID:     rsp.Header.Get(headerTraceID),
		Payload:     body,
	}
	if inv.RequestID == "" {
		return nil, &RuntimeAPIError{Op: op, Err: errors.New("missing " + headerRequestID)}
	}
	if v := rsp.Header.Get(headerDeadlineMs); v != "" {
		ms, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return nil, &RuntimeAPIError{Op: op, Err: fmt.Errorf("bad %s %q: %w", headerDeadlineMs, v, err)}
		}
		inv.Deadline = time.UnixMilli(ms)
	}
	return inv, nil
}

// PostResponse submits the encoded reply for requestID.
func (c *Client) PostResponse(ctx context.Context, requestID string, payload []byte) error {
	return c.post(ctx, "response", "invocation/"+requestID+"/response", payload, "")
}

// PostError reports a failed invocation.
func (c *Client) PostError(ctx context.Context, requestID string, errorType string, message string) error {
	payload, err := errorPayload(errorType, message)
	if err != nil {
		return err
	}
	return c.post(ctx, "error", "invocation/"+requestID+"/error", payload, errorType)
}

// PostInitError reports a failure before the first poll.
func (c *Client) PostInitError(ctx context.Context, errorType string, message string) error {
	payload, err := errorPayload(errorType, message)
	if err != nil {
		return err
	}
	return c.post(ctx, "init error", "init/error", payload, errorType)
}

func (c *Client) post(ctx context.Context, op string, path string, payload []byte, errorType string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return &RuntimeAPIError{Op: op, Err: err}
	}
	req.Header.Set("Content-Type", contentTypeJSON)
	if errorType != "" {
		req.Header.Set(headerErrorType, errorType)
	}

	rsp, err := c.httpClient.Do(req)
	if err != nil {
		return &RuntimeAPIError{Op: op, Err: err}
	}
	defer rsp.Body.Close()

	body, _ := io.ReadAll(rsp.Body)
	if rsp.StatusCode < 200 || rsp.StatusCode > 299 {
		return &RuntimeAPIError{Op: op, StatusCode: rsp.StatusCode, Err: errors.New(string(body))}
	}
	return nil
}

func errorPayload(errorType string, message string) ([]byte, error) {
	return json.Marshal(messages.InvokeResponse_Error{
		Message: message,
		Type:    errorType,
	})
}
