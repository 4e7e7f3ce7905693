// Package runtime drives an HTTP handler from the Lambda Runtime API: it
// polls for invocations, decodes them, calls the handler and posts back the
// framed reply or an error.
package runtime

import (
	"context"
	"errors"
	"os"
	"sync/atomic"
	"time"

	"github.com/aura-studio/lambdaweb/bridge"
	"github.com/aura-studio/lambdaweb/canonical"
	"github.com/aura-studio/lambdaweb/event"
	"github.com/aura-studio/lambdaweb/metrics"
	"github.com/aura-studio/lambdaweb/mode"
	"github.com/aura-studio/lambdaweb/notify"
	"github.com/aura-studio/lambdaweb/reply"
	"github.com/aws/aws-lambda-go/lambdacontext"
	"github.com/sirupsen/logrus"
)

const traceEnv = "_X_AMZN_TRACE_ID"

type State int32

const (
	StateIdle State = iota
	StatePolling
	StateDecoding
	StateInvoking
	StateResponding
	StateFatal
	StateInitFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "Idle"
	case StatePolling:
		return "Polling"
	case StateDecoding:
		return "Decoding"
	case StateInvoking:
		return "Invoking"
	case StateResponding:
		return "Responding"
	case StateFatal:
		return "Fatal"
	case StateInitFailed:
		return "InitFailed"
	default:
		return "Unknown"
	}
}

type Engine struct {
	*Options
	client  *Client
	encoder *reply.Encoder
	handler bridge.Handler
	state   atomic.Int32
	running atomic.Int32
}

func NewEngine(handler bridge.Handler, opts ...Option) *Engine {
	e := &Engine{
		Options: NewOptions(opts...),
		handler: handler,
	}
	if e.Logger == nil {
		e.Logger = logrus.StandardLogger()
	}
	if e.DebugMode && !e.Logger.IsLevelEnabled(logrus.DebugLevel) {
		e.Logger.SetLevel(logrus.DebugLevel)
	}
	if e.Address == "" {
		env, err := mode.Load()
		if err != nil {
			e.Logger.WithError(err).Warn("[Runtime] lambda environment")
		}
		e.Address = env.RuntimeAPI
	}
	e.client = NewClient(e.Address, e.HTTPClient)
	e.encoder = reply.NewEncoder(e.Reply...)
	e.running.Store(1)
	return e
}

func (e *Engine) Start() {
	e.running.Store(1)
}

// Stop lets the current invocation finish; Run returns before the next poll.
func (e *Engine) Stop() {
	e.running.Store(0)
}

func (e *Engine) IsRunning() bool {
	return e.running.Load() == 1
}

func (e *Engine) State() State {
	return State(e.state.Load())
}

func (e *Engine) setState(s State) {
	e.state.Store(int32(s))
}

// Init runs fn and installs the handler it returns. A failure or panic is
// posted to the init error endpoint and returned as *InitializationError.
func (e *Engine) Init(ctx context.Context, fn func(ctx context.Context) (bridge.Handler, error)) error {
	var (
		h   bridge.Handler
		err error
	)
	if perr := doSafe(func() { h, err = fn(ctx) }); perr != nil {
		err = perr
	}
	if err == nil && h == nil {
		err = errors.New("nil handler")
	}
	if err != nil {
		e.setState(StateInitFailed)
		initErr := &InitializationError{Err: err}
		if postErr := e.client.PostInitError(ctx, ErrorTypeInitialization, err.Error()); postErr != nil {
			e.Logger.WithError(postErr).Error("[Runtime] post init error failed")
		}
		return initErr
	}
	e.handler = h
	return nil
}

// Run serves invocations one at a time until the engine is stopped, ctx is
// done, or the Runtime API fails. Only the last case returns an error other
// than ctx.Err().
func (e *Engine) Run(ctx context.Context) error {
	if e.handler == nil {
		return errors.New("runtime: no handler")
	}
	for e.IsRunning() {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := e.Step(ctx); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			e.setState(StateFatal)
			e.Logger.WithError(err).Error("[Runtime] runtime api failure")
			return err
		}
	}
	return nil
}

// Step polls and fully handles one invocation. Decode and handler failures
// are reported to the Runtime API and are not returned; the returned error is
// always a *RuntimeAPIError.
func (e *Engine) Step(ctx context.Context) error {
	e.setState(StatePolling)
	inv, err := e.client.Next(ctx)
	if err != nil {
		return err
	}
	start := time.Now()
	defer e.setState(StateIdle)
	defer setTraceID(inv.TraceID)()

	e.setState(StateDecoding)
	req, format, err := event.Decode(inv.Payload)
	if err != nil {
		return e.fail(ctx, inv, format, decodeErrorType(err), err, start)
	}
	req.Meta = inv.Meta()

	e.setState(StateInvoking)
	resp, err := e.invoke(ctx, inv, req)
	if err != nil {
		return e.fail(ctx, inv, format, ErrorTypeHandler, err, start)
	}

	e.setState(StateResponding)
	e.encoder.Compress(req, resp)
	payload, err := e.encoder.Encode(format, resp)
	if err != nil {
		return e.fail(ctx, inv, format, ErrorTypeResponseEncoding, err, start)
	}
	if err := e.client.PostResponse(ctx, inv.RequestID, payload); err != nil {
		return err
	}

	if e.DebugMode {
		e.Logger.WithFields(logrus.Fields{
			"requestId": inv.RequestID,
			"format":    format.String(),
			"method":    req.Method,
			"path":      req.Path,
			"status":    resp.StatusCode,
		}).Debug("[Runtime] invocation")
	}
	e.Metrics.Observe(format.String(), metrics.OutcomeSuccess, time.Since(start))
	return nil
}

func (e *Engine) invoke(ctx context.Context, inv *Invocation, req *canonical.Request) (*canonical.Response, error) {
	hctx := lambdacontext.NewContext(ctx, &lambdacontext.LambdaContext{
		AwsRequestID:       inv.RequestID,
		InvokedFunctionArn: inv.FunctionARN,
	})

	var (
		resp *canonical.Response
		err  error
	)
	if perr := doSafe(func() { resp, err = e.handler.ServeLambda(hctx, req) }); perr != nil {
		return nil, &HandlerError{Err: perr}
	}
	if err != nil {
		return nil, &HandlerError{Err: err}
	}
	if resp == nil {
		return nil, &HandlerError{Err: errors.New("handler returned no response")}
	}
	return resp, nil
}

func (e *Engine) fail(ctx context.Context, inv *Invocation, format event.SourceFormat, errorType string, err error, start time.Time) error {
	e.setState(StateResponding)
	e.Logger.WithFields(logrus.Fields{
		"requestId": inv.RequestID,
		"format":    format.String(),
		"errorType": errorType,
	}).WithError(err).Error("[Runtime] invocation failed")

	postErr := e.client.PostError(ctx, inv.RequestID, errorType, err.Error())

	if e.Notifier != nil {
		_ = e.Notifier.Notify(ctx, notify.Failure{
			RequestID:    inv.RequestID,
			FunctionARN:  inv.FunctionARN,
			Format:       format.String(),
			ErrorType:    errorType,
			ErrorMessage: err.Error(),
		})
	}
	e.Metrics.Observe(format.String(), errorType, time.Since(start))
	return postErr
}

// setTraceID exposes id to the handler through the environment and returns
// a func restoring the previous value.
func setTraceID(id string) func() {
	prev, had := os.LookupEnv(traceEnv)
	if id == "" {
		os.Unsetenv(traceEnv)
	} else {
		os.Setenv(traceEnv, id)
	}
	return func() {
		if had {
			os.Setenv(traceEnv, prev)
		} else {
			os.Unsetenv(traceEnv)
		}
	}
}
