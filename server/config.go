package server

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/aura-studio/lambdaweb/dynamic"
	"github.com/aura-studio/lambdaweb/notify"
	"github.com/aura-studio/lambdaweb/runtime"
	yaml "gopkg.in/yaml.v2"
)

type yamlLocalConfig struct {
	Address         string `yaml:"address"`
	Debug           bool   `yaml:"debug"`
	Cors            bool   `yaml:"cors"`
	HealthCheckPath string `yaml:"healthCheckPath"`
	MetricsPath     string `yaml:"metricsPath"`
}

type yamlServerConfig struct {
	Mode    string          `yaml:"mode"`
	Local   yamlLocalConfig `yaml:"local"`
	Runtime *runtime.Config `yaml:"runtime"`
	Notify  *notify.Config  `yaml:"notify"`
	Dynamic *dynamic.Config `yaml:"dynamic"`
}

func optionFromConfig(cfg yamlServerConfig) Option {
	return OptionFunc(func(o *Options) {
		switch cfg.Mode {
		case ModeAuto, ModeLambda, ModeLocal:
			o.Mode = cfg.Mode
		}

		if cfg.Local.Address != "" {
			o.Address = cfg.Local.Address
		}
		o.DebugMode = o.DebugMode || cfg.Local.Debug
		o.CorsMode = o.CorsMode || cfg.Local.Cors
		if cfg.Local.HealthCheckPath != "" {
			o.HealthCheckPath = cfg.Local.HealthCheckPath
		}
		if cfg.Local.MetricsPath != "" {
			o.MetricsPath = cfg.Local.MetricsPath
		}

		if cfg.Runtime != nil {
			o.Runtime = append(o.Runtime, runtime.OptionFromConfig(*cfg.Runtime))
		}
		if cfg.Notify != nil && cfg.Notify.QueueURL != "" {
			o.Notify = append(o.Notify, notify.OptionFromConfig(*cfg.Notify))
		}
		if cfg.Dynamic != nil {
			o.Dynamic = append(o.Dynamic, dynamic.OptionFromConfig(*cfg.Dynamic))
		}
	})
}

// WithServeConfig parses YAML bytes following lambda.yaml structure.
// It panics if the YAML is invalid.
func WithServeConfig(yamlBytes []byte) Option {
	var cfg yamlServerConfig
	if err := yaml.Unmarshal(yamlBytes, &cfg); err != nil {
		panic(fmt.Errorf("server.WithServeConfig: %w", err))
	}
	return optionFromConfig(cfg)
}

// WithServeConfigFile loads a YAML file and applies it as an Option.
func WithServeConfigFile(path string) Option {
	b, err := os.ReadFile(path)
	if err != nil {
		panic(fmt.Errorf("server.WithServeConfigFile(%s): %w", path, err))
	}
	return WithServeConfig(b)
}

// ConfigEnvVar names an explicit lambda.yaml path that wins over the search.
const ConfigEnvVar = "LAMBDAWEB_CONFIG"

// ErrConfigNotFound is returned when no default config file exists.
var ErrConfigNotFound = errors.New("lambda.yaml not found")

// DefaultServeConfigCandidates lists the file names tried in each search
// directory.
func DefaultServeConfigCandidates() []string {
	return []string{
		"lambda.yaml",
		"lambda.yml",
		"lambdaweb.yaml",
		"lambdaweb.yml",
		filepath.FromSlash("config/lambda.yaml"),
		filepath.FromSlash("config/lambda.yml"),
	}
}

func configSearchDirs() []string {
	dirs := []string{""}
	if root := os.Getenv("LAMBDA_TASK_ROOT"); root != "" {
		dirs = append(dirs, root)
	}
	if exe, err := os.Executable(); err == nil {
		dirs = append(dirs, filepath.Dir(exe))
	}
	return dirs
}

// FindDefaultServeConfigFile returns the path named by LAMBDAWEB_CONFIG, or
// the first candidate found in the working directory, LAMBDA_TASK_ROOT or
// the executable's directory.
func FindDefaultServeConfigFile() (string, error) {
	if p := os.Getenv(ConfigEnvVar); p != "" {
		if !isFile(p) {
			return "", fmt.Errorf("%s=%s: %w", ConfigEnvVar, p, ErrConfigNotFound)
		}
		return p, nil
	}

	dirs := configSearchDirs()
	for _, dir := range dirs {
		for _, name := range DefaultServeConfigCandidates() {
			if p := filepath.Join(dir, name); isFile(p) {
				return p, nil
			}
		}
	}
	return "", fmt.Errorf("searched %q: %w", dirs, ErrConfigNotFound)
}

func isFile(p string) bool {
	st, err := os.Stat(p)
	return err == nil && st.Mode().IsRegular()
}

// WithDefaultServeConfigFile loads the default config file when there is one.
// Unlike WithServeConfigFile a missing file is not an error.
func WithDefaultServeConfigFile() Option {
	p, err := FindDefaultServeConfigFile()
	if err != nil {
		return nil
	}
	return WithServeConfigFile(p)
}
