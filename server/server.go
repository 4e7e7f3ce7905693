// Package server starts a bridged handler the right way for where the
// process runs: the Runtime API loop on Lambda, a local listener elsewhere.
package server

import (
	"context"
	"errors"

	"github.com/aura-studio/lambdaweb/bridge"
	"github.com/aura-studio/lambdaweb/dynamic"
	"github.com/aura-studio/lambdaweb/metrics"
	"github.com/aura-studio/lambdaweb/mode"
	"github.com/aura-studio/lambdaweb/notify"
	"github.com/aura-studio/lambdaweb/runtime"
	"github.com/sirupsen/logrus"
)

type dynamicHandler struct {
	bridge.Handler
	loader *dynamic.Loader
}

// Serve blocks serving handler. A nil handler serves dynamically loaded
// packages configured with WithDynamic or a dynamic: config section.
func Serve(handler bridge.Handler, opts ...Option) error {
	return ServeContext(context.Background(), handler, opts...)
}

func ServeContext(ctx context.Context, handler bridge.Handler, opts ...Option) error {
	options := NewOptions(opts...)
	if options.Logger == nil {
		options.Logger = logrus.StandardLogger()
	}
	if options.Metrics == nil {
		options.Metrics = metrics.New()
	}

	if handler == nil {
		if len(options.Dynamic) == 0 {
			return errors.New("server: no handler and no dynamic packages configured")
		}
		loader := dynamic.NewLoader(append(options.Dynamic, dynamic.WithLogger(options.Logger))...)
		handler = dynamicHandler{Handler: bridge.Dynamic(loader), loader: loader}
	}

	if !options.onLambda() {
		local := newLocal(handler, options)
		done := make(chan struct{})
		defer close(done)
		go func() {
			select {
			case <-ctx.Done():
				local.Close(context.Background())
			case <-done:
			}
		}()
		return local.ListenAndServe()
	}

	runtimeOpts := append([]runtime.Option{
		runtime.WithLogger(options.Logger),
		runtime.WithMetrics(options.Metrics),
	}, options.Runtime...)

	if len(options.Notify) > 0 {
		notifier, err := notify.NewNotifier(append([]notify.Option{notify.WithLogger(options.Logger)}, options.Notify...)...)
		if err != nil {
			return err
		}
		runtimeOpts = append(runtimeOpts, runtime.WithNotifier(notifier))
	}

	return runtime.NewEngine(handler, runtimeOpts...).Run(ctx)
}

func (o *Options) onLambda() bool {
	switch o.Mode {
	case ModeLambda:
		return true
	case ModeLocal:
		return false
	default:
		return mode.IsRunningOnLambda()
	}
}
