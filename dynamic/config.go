package dynamic

import (
	"fmt"
	"os"

	yaml "gopkg.in/yaml.v2"
)

// Config is the dynamic: section of a YAML config.
type Config struct {
	Toolchain struct {
		OS       string `yaml:"os"`
		Arch     string `yaml:"arch"`
		Compiler string `yaml:"compiler"`
		Variant  string `yaml:"variant"`
	} `yaml:"toolchain"`
	Warehouse struct {
		Local  string `yaml:"local"`
		Remote string `yaml:"remote"`
	} `yaml:"warehouse"`
	Namespace      string `yaml:"namespace"`
	DefaultVersion string `yaml:"defaultVersion"`
	Preload        []struct {
		Package string `yaml:"package"`
		Version string `yaml:"version"`
	} `yaml:"preload"`
}

type yamlConfig struct {
	Dynamic Config `yaml:"dynamic"`
}

func OptionFromConfig(cfg Config) Option {
	return OptionFunc(func(o *Options) {
		o.Toolchain = Toolchain{
			OS:       cfg.Toolchain.OS,
			Arch:     cfg.Toolchain.Arch,
			Compiler: cfg.Toolchain.Compiler,
			Variant:  cfg.Toolchain.Variant,
		}
		o.LocalWarehouse = cfg.Warehouse.Local
		o.RemoteWarehouse = cfg.Warehouse.Remote
		o.Namespace = cfg.Namespace
		o.DefaultVersion = cfg.DefaultVersion

		for _, p := range cfg.Preload {
			if p.Package == "" {
				continue
			}
			o.PreloadPackages = append(o.PreloadPackages, &Package{Package: p.Package, Version: p.Version})
		}
	})
}

// WithConfig parses YAML bytes with a top-level dynamic: section.
// It panics if the YAML is invalid.
func WithConfig(yamlBytes []byte) Option {
	var cfg yamlConfig
	if err := yaml.Unmarshal(yamlBytes, &cfg); err != nil {
		return OptionFunc(func(*Options) {
			panic(fmt.Errorf("dynamic.WithConfig: %w", err))
		})
	}
	return OptionFromConfig(cfg.Dynamic)
}

// WithConfigFile loads a YAML file and applies it to Options.
// It panics if the file cannot be read or YAML is invalid.
func WithConfigFile(path string) Option {
	b, err := os.ReadFile(path)
	if err != nil {
		return OptionFunc(func(*Options) {
			panic(fmt.Errorf("dynamic.WithConfigFile(%s): %w", path, err))
		})
	}
	return WithConfig(b)
}
