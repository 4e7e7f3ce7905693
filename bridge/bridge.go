// Package bridge adapts web frameworks to the canonical request/response
// model so they can be driven by the Lambda invocation loop.
package bridge

import (
	"context"

	"github.com/aura-studio/lambdaweb/canonical"
)

// Handler serves one canonical request. An error is reported to the Runtime
// API as is; it is never retried.
type Handler interface {
	ServeLambda(ctx context.Context, req *canonical.Request) (*canonical.Response, error)
}

type HandlerFunc func(ctx context.Context, req *canonical.Request) (*canonical.Response, error)

func (f HandlerFunc) ServeLambda(ctx context.Context, req *canonical.Request) (*canonical.Response, error) {
	return f(ctx, req)
}
