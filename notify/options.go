package notify

import (
	"time"

	"github.com/mohae/deepcopy"
	"github.com/sirupsen/logrus"
)

type Option interface {
	Apply(o *Options)
}

type OptionFunc func(*Options)

func (f OptionFunc) Apply(o *Options) { f(o) }

type Options struct {
	QueueURL       string
	MessageGroupID string
	Timeout        time.Duration
	SQSClient      SQSClient
	Logger         *logrus.Logger
}

var defaultOptions = &Options{
	QueueURL:       "",
	MessageGroupID: "lambdaweb",
	Timeout:        2 * time.Second,
	SQSClient:      nil,
	Logger:         nil,
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

func WithQueueURL(url string) Option {
	return OptionFunc(func(o *Options) {
		o.QueueURL = url
	})
}

// WithMessageGroupID sets the group used for FIFO queues.
func WithMessageGroupID(id string) Option {
	return OptionFunc(func(o *Options) {
		o.MessageGroupID = id
	})
}

func WithTimeout(d time.Duration) Option {
	return OptionFunc(func(o *Options) {
		o.Timeout = d
	})
}

func WithSQSClient(client SQSClient) Option {
	return OptionFunc(func(o *Options) {
		o.SQSClient = client
	})
}

func WithLogger(logger *logrus.Logger) Option {
	return OptionFunc(func(o *Options) {
		o.Logger = logger
	})
}
