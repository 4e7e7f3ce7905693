package runtime

import (
	"net/http"

	"github.com/aura-studio/lambdaweb/metrics"
	"github.com/aura-studio/lambdaweb/notify"
	"github.com/aura-studio/lambdaweb/reply"
	"github.com/mohae/deepcopy"
	"github.com/sirupsen/logrus"
)

type Option interface {
	Apply(o *Options)
}

type OptionFunc func(*Options)

func (f OptionFunc) Apply(o *Options) { f(o) }

type Options struct {
	// Address is the Runtime API host:port. Empty means AWS_LAMBDA_RUNTIME_API.
	Address   string
	DebugMode bool
	Reply     []reply.Option

	HTTPClient *http.Client
	Logger     *logrus.Logger
	Metrics    *metrics.Collector
	Notifier   *notify.Notifier
}

var defaultOptions = &Options{
	Address:   "",
	DebugMode: false,
	Reply:     []reply.Option{},
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

// -------------- Runtime Options ----------------
func WithAddress(addr string) Option {
	return OptionFunc(func(o *Options) {
		o.Address = addr
	})
}

func WithDebugMode(debug bool) Option {
	return OptionFunc(func(o *Options) {
		o.DebugMode = debug
	})
}

// WithReply configures response framing: binary media types and brotli.
func WithReply(opts ...reply.Option) Option {
	return OptionFunc(func(o *Options) {
		o.Reply = append(o.Reply, opts...)
	})
}

func WithBinaryMediaTypes(patterns ...string) Option {
	return WithReply(reply.WithBinaryMediaTypes(patterns...))
}

func WithBrotli() Option {
	return WithReply(reply.WithBrotli())
}

func WithHTTPClient(client *http.Client) Option {
	return OptionFunc(func(o *Options) {
		o.HTTPClient = client
	})
}

func WithLogger(logger *logrus.Logger) Option {
	return OptionFunc(func(o *Options) {
		o.Logger = logger
	})
}

func WithMetrics(c *metrics.Collector) Option {
	return OptionFunc(func(o *Options) {
		o.Metrics = c
	})
}

func WithNotifier(n *notify.Notifier) Option {
	return OptionFunc(func(o *Options) {
		o.Notifier = n
	})
}
