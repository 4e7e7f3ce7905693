package runtime

import (
	"context"

	"github.com/aura-studio/lambdaweb/bridge"
)

// Start runs the invocation loop for handler and never returns normally: a
// Runtime API failure exits the process.
func Start(handler bridge.Handler, opts ...Option) {
	e := NewEngine(handler, opts...)
	if err := e.Run(context.Background()); err != nil {
		e.Logger.WithError(err).Fatal("[Runtime] exiting")
	}
}

// StartWithInit builds the handler with fn before the first poll. If fn
// fails the error is reported to the init endpoint and the process exits.
func StartWithInit(fn func(ctx context.Context) (bridge.Handler, error), opts ...Option) {
	ctx := context.Background()
	e := NewEngine(nil, opts...)
	if err := e.Init(ctx, fn); err != nil {
		e.Logger.WithError(err).Fatal("[Runtime] exiting")
	}
	if err := e.Run(ctx); err != nil {
		e.Logger.WithError(err).Fatal("[Runtime] exiting")
	}
}
