package notify

import (
	"fmt"
	"os"
	"time"

	yaml "gopkg.in/yaml.v2"
)

// Config is the notify: section of a YAML config.
type Config struct {
	QueueURL       string `yaml:"queueUrl"`
	MessageGroupID string `yaml:"messageGroupId"`
	TimeoutMs      int    `yaml:"timeoutMs"`
}

type yamlConfig struct {
	Notify Config `yaml:"notify"`
}

// OptionFromConfig turns a decoded notify: section into an Option.
func OptionFromConfig(cfg Config) Option {
	return OptionFunc(func(o *Options) {
		if cfg.QueueURL != "" {
			o.QueueURL = cfg.QueueURL
		}
		if cfg.MessageGroupID != "" {
			o.MessageGroupID = cfg.MessageGroupID
		}
		if cfg.TimeoutMs > 0 {
			o.Timeout = time.Duration(cfg.TimeoutMs) * time.Millisecond
		}
	})
}

// WithConfig parses YAML bytes with a top-level notify: section.
// It panics if the YAML is invalid.
func WithConfig(yamlBytes []byte) Option {
	var cfg yamlConfig
	if err := yaml.Unmarshal(yamlBytes, &cfg); err != nil {
		return OptionFunc(func(*Options) {
			panic(fmt.Errorf("notify.WithConfig: %w", err))
		})
	}
	return OptionFromConfig(cfg.Notify)
}

// WithConfigFile loads a YAML file and applies it to Options.
// It panics if the file cannot be read or YAML is invalid.
func WithConfigFile(path string) Option {
	b, err := os.ReadFile(path)
	if err != nil {
		return OptionFunc(func(*Options) {
			panic(fmt.Errorf("notify.WithConfigFile(%s): %w", path, err))
		})
	}
	return WithConfig(b)
}
