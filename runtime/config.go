package runtime

import (
	"fmt"
	"os"

	"github.com/aura-studio/lambdaweb/reply"
	yaml "gopkg.in/yaml.v2"
)

// Config is the runtime: section of a YAML config.
type Config struct {
	Debug            bool     `yaml:"debug"`
	BinaryMediaTypes []string `yaml:"binaryMediaTypes"`
	Brotli           struct {
		Enabled bool `yaml:"enabled"`
		Quality int  `yaml:"quality"`
	} `yaml:"brotli"`
}

type yamlConfig struct {
	Runtime Config `yaml:"runtime"`
}

func OptionFromConfig(cfg Config) Option {
	return OptionFunc(func(o *Options) {
		o.DebugMode = cfg.Debug
		if len(cfg.BinaryMediaTypes) > 0 {
			o.Reply = append(o.Reply, reply.WithBinaryMediaTypes(cfg.BinaryMediaTypes...))
		}
		if cfg.Brotli.Enabled {
			o.Reply = append(o.Reply, reply.WithBrotli())
			if cfg.Brotli.Quality > 0 {
				o.Reply = append(o.Reply, reply.WithBrotliQuality(cfg.Brotli.Quality))
			}
		}
	})
}

// WithConfig parses YAML bytes with a top-level runtime: section.
// It panics if the YAML is invalid.
func WithConfig(yamlBytes []byte) Option {
	var cfg yamlConfig
	if err := yaml.Unmarshal(yamlBytes, &cfg); err != nil {
		return OptionFunc(func(*Options) {
			panic(fmt.Errorf("runtime.WithConfig: %w", err))
		})
	}
	return OptionFromConfig(cfg.Runtime)
}

// WithConfigFile loads a YAML file and applies it to Options.
// It panics if the file cannot be read or YAML is invalid.
func WithConfigFile(path string) Option {
	b, err := os.ReadFile(path)
	if err != nil {
		return OptionFunc(func(*Options) {
			panic(fmt.Errorf("runtime.WithConfigFile(%s): %w", path, err))
		})
	}
	return WithConfig(b)
}
