package reply

import (
	"github.com/mohae/deepcopy"
)

type Option interface {
	Apply(o *Options)
}

type OptionFunc func(*Options)

func (f OptionFunc) Apply(o *Options) { f(o) }

type Options struct {
	// BinaryMediaTypes are patterns such as image/png or image/*. They are
	// ignored when BinaryPredicate is set.
	BinaryMediaTypes []string
	BinaryPredicate  func(contentType string) bool
	Brotli           bool
	BrotliQuality    int
}

var defaultOptions = &Options{
	BinaryMediaTypes: []string{},
	BinaryPredicate:  nil,
	Brotli:           false,
	BrotliQuality:    4,
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

func WithBinaryMediaTypes(patterns ...string) Option {
	return OptionFunc(func(o *Options) {
		o.BinaryMediaTypes = append(o.BinaryMediaTypes, patterns...)
	})
}

func WithBinaryPredicate(fn func(contentType string) bool) Option {
	return OptionFunc(func(o *Options) {
		o.BinaryPredicate = fn
	})
}

func WithBrotli() Option {
	return OptionFunc(func(o *Options) {
		o.Brotli = true
	})
}

func WithBrotliQuality(quality int) Option {
	return OptionFunc(func(o *Options) {
		o.Brotli = true
		o.BrotliQuality = quality
	})
}
