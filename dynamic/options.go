package dynamic

import (
	"github.com/aura-studio/dynamic"
	"github.com/mohae/deepcopy"
	"github.com/sirupsen/logrus"
)

type Option interface {
	Apply(o *Options)
}

type OptionFunc func(*Options)

func (f OptionFunc) Apply(o *Options) { f(o) }

// Package is a package/version pair, with a tunnel when it is linked into the
// binary instead of loaded from a warehouse.
type Package struct {
	Package string
	Version string
	Tunnel  dynamic.Tunnel
}

type Toolchain struct {
	OS       string
	Arch     string
	Compiler string
	Variant  string
}

type Options struct {
	Toolchain       Toolchain
	LocalWarehouse  string
	RemoteWarehouse string
	Namespace       string
	DefaultVersion  string
	StaticPackages  []*Package
	PreloadPackages []*Package
	Logger          *logrus.Logger
}

var defaultOptions = &Options{
	Toolchain:       Toolchain{},
	LocalWarehouse:  "",
	RemoteWarehouse: "",
	Namespace:       "",
	DefaultVersion:  "",
	StaticPackages:  []*Package{},
	PreloadPackages: []*Package{},
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

func WithToolchain(tc Toolchain) Option {
	return OptionFunc(func(o *Options) {
		o.Toolchain = tc
	})
}

func WithWarehouse(local, remote string) Option {
	return OptionFunc(func(o *Options) {
		o.LocalWarehouse = local
		o.RemoteWarehouse = remote
	})
}

func WithNamespace(namespace string) Option {
	return OptionFunc(func(o *Options) {
		o.Namespace = namespace
	})
}

func WithDefaultVersion(version string) Option {
	return OptionFunc(func(o *Options) {
		o.DefaultVersion = version
	})
}

// WithStaticPackage links tunnel under pkg/version without a warehouse.
func WithStaticPackage(pkg, version string, tunnel dynamic.Tunnel) Option {
	return OptionFunc(func(o *Options) {
		o.StaticPackages = append(o.StaticPackages, &Package{Package: pkg, Version: version, Tunnel: tunnel})
	})
}

// WithPreload loads pkg/version at startup so the first request does not pay
// for it.
func WithPreload(pkg, version string) Option {
	return OptionFunc(func(o *Options) {
		o.PreloadPackages = append(o.PreloadPackages, &Package{Package: pkg, Version: version})
	})
}

func WithLogger(logger *logrus.Logger) Option {
	return OptionFunc(func(o *Options) {
		o.Logger = logger
	})
}
