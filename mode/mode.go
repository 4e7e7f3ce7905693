// Package mode tells whether the process runs inside the Lambda runtime.
package mode

import (
	"os"
	"strings"
	"sync"

	"github.com/caarlos0/env/v6"
)

// RuntimeAPIVar holds the Runtime API host:port inside Lambda.
const RuntimeAPIVar = "AWS_LAMBDA_RUNTIME_API"

// Environment is the subset of the Lambda execution environment this module
// reads.
type Environment struct {
	RuntimeAPI      string `env:"AWS_LAMBDA_RUNTIME_API"`
	FunctionName    string `env:"AWS_LAMBDA_FUNCTION_NAME"`
	FunctionVersion string `env:"AWS_LAMBDA_FUNCTION_VERSION"`
	MemoryMB        int    `env:"AWS_LAMBDA_FUNCTION_MEMORY_SIZE"`
	Region          string `env:"AWS_REGION"`
	LogGroupName    string `env:"AWS_LAMBDA_LOG_GROUP_NAME"`
}

// Load reads the process environment.
func Load() (*Environment, error) {
	return LoadFrom(environ())
}

// LoadFrom reads the given variables instead of the process environment.
// A malformed field yields an error, but the returned Environment is never
// nil and always carries RuntimeAPI.
func LoadFrom(vars map[string]string) (*Environment, error) {
	e := Environment{RuntimeAPI: vars[RuntimeAPIVar]}
	if err := env.Parse(&e, env.Options{Environment: vars}); err != nil {
		return &e, err
	}
	return &e, nil
}

func (e *Environment) OnLambda() bool {
	return e != nil && e.RuntimeAPI != ""
}

var (
	onLambdaOnce sync.Once
	onLambda     bool
)

// IsRunningOnLambda reports whether AWS_LAMBDA_RUNTIME_API is set. The answer
// is computed once and stays the same for the life of the process.
func IsRunningOnLambda() bool {
	onLambdaOnce.Do(func() {
		v, ok := os.LookupEnv(RuntimeAPIVar)
		onLambda = ok && v != ""
	})
	return onLambda
}

func environ() map[string]string {
	vars := map[string]string{}
	for _, kv := range os.Environ() {
		if k, v, ok := strings.Cut(kv, "="); ok {
			vars[k] = v
		}
	}
	return vars
}
