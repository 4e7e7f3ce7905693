package server

import (
	"github.com/aura-studio/lambdaweb/dynamic"
	"github.com/aura-studio/lambdaweb/metrics"
	"github.com/aura-studio/lambdaweb/notify"
	"github.com/aura-studio/lambdaweb/runtime"
	"github.com/mohae/deepcopy"
	"github.com/sirupsen/logrus"
)

const (
	ModeAuto   = "auto"
	ModeLambda = "lambda"
	ModeLocal  = "local"
)

type Option interface {
	Apply(o *Options)
}

type OptionFunc func(*Options)

func (f OptionFunc) Apply(o *Options) { f(o) }

type Options struct {
	// Mode is ModeAuto, ModeLambda or ModeLocal.
	Mode string

	// Local listener
	Address         string
	DebugMode       bool
	CorsMode        bool
	HealthCheckPath string
	MetricsPath     string

	Runtime []runtime.Option
	Notify  []notify.Option
	Dynamic []dynamic.Option

	Metrics *metrics.Collector
	Logger  *logrus.Logger
}

var defaultOptions = &Options{
	Mode:            ModeAuto,
	Address:         ":8080",
	DebugMode:       false,
	CorsMode:        false,
	HealthCheckPath: "/health-check",
	MetricsPath:     "/metrics",
	Runtime:         []runtime.Option{},
	Notify:          []notify.Option{},
	Dynamic:         []dynamic.Option{},
}

func NewOptions(opts ...Option) *Options {
	options := deepcopy.Copy(defaultOptions).(*Options)
	options.init(opts...)
	return options
}

func (o *Options) init(opts ...Option) {
	for _, opt := range opts {
		if opt != nil {
			opt.Apply(o)
		}
	}
}

// WithLambda forces the runtime loop (true) or the local listener (false)
// instead of detecting the environment.
func WithLambda(onLambda bool) Option {
	return OptionFunc(func(o *Options) {
		if onLambda {
			o.Mode = ModeLambda
		} else {
			o.Mode = ModeLocal
		}
	})
}

func WithAddress(addr string) Option {
	return OptionFunc(func(o *Options) {
		o.Address = addr
	})
}

func WithDebugMode() Option {
	return OptionFunc(func(o *Options) {
		o.DebugMode = true
	})
}

func WithCors() Option {
	return OptionFunc(func(o *Options) {
		o.CorsMode = true
	})
}

func WithHealthCheckPath(path string) Option {
	return OptionFunc(func(o *Options) {
		o.HealthCheckPath = path
	})
}

func WithMetricsPath(path string) Option {
	return OptionFunc(func(o *Options) {
		o.MetricsPath = path
	})
}

func WithRuntime(opts ...runtime.Option) Option {
	return OptionFunc(func(o *Options) {
		o.Runtime = append(o.Runtime, opts...)
	})
}

// WithNotify enables failure notifications on Lambda.
func WithNotify(opts ...notify.Option) Option {
	return OptionFunc(func(o *Options) {
		o.Notify = append(o.Notify, opts...)
	})
}

// WithDynamic serves dynamically loaded packages when Serve gets no handler.
func WithDynamic(opts ...dynamic.Option) Option {
	return OptionFunc(func(o *Options) {
		o.Dynamic = append(o.Dynamic, opts...)
	})
}

func WithMetrics(c *metrics.Collector) Option {
	return OptionFunc(func(o *Options) {
		o.Metrics = c
	})
}

func WithLogger(logger *logrus.Logger) Option {
	return OptionFunc(func(o *Options) {
		o.Logger = logger
	})
}
