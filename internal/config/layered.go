package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Layer represents a configuration layer source.
type Layer string

const (
	// LayerDefaults represents default configuration values.
	LayerDefaults Layer = "defaults"

	// LayerFile represents the YAML configuration file.
	LayerFile Layer = "file"

	// LayerDotEnv represents variables read from a .env file.
	LayerDotEnv Layer = "dotenv"

	// LayerEnv represents configuration from environment variables.
	LayerEnv Layer = "env"

	// LayerFlags represents configuration from command-line flags.
	LayerFlags Layer = "flags"
)

// LoadLayered builds the configuration and reports which layers contributed.
//
// Layer precedence (later layers override earlier ones):
//  1. Defaults - DefaultConfig()
//  2. File - ~/.pulse/config.yaml
//  3. DotEnv - .env in the working directory, below real environment variables
//  4. Environment - PULSE_* variables
//  5. Flags - overrides, when not nil
func (l *Loader) LoadLayered(flags *Overrides) (*Config, []Layer, error) {
	cfg := DefaultConfig()
	layers := []Layer{LayerDefaults}

	found, err := l.readFile(cfg)
	if err != nil {
		return nil, nil, err
	}
	if found {
		layers = append(layers, LayerFile)
	}

	environ, fromDotEnv, err := l.environment()
	if err != nil {
		return nil, nil, err
	}
	if fromDotEnv {
		layers = append(layers, LayerDotEnv)
	}

	before := *cfg
	if err := env.ParseWithOptions(cfg, env.Options{Environment: environ}); err != nil {
		return nil, nil, fmt.Errorf("failed to load environment variables: %w", err)
	}
	if *cfg != before {
		layers = append(layers, LayerEnv)
	}

	if flags != nil && flags.Apply(cfg) {
		layers = append(layers, LayerFlags)
	}

	return cfg, layers, nil
}

// environment merges the .env file under the process environment. The
// second result reports whether the .env file supplied any variable.
func (l *Loader) environment() (map[string]string, bool, error) {
	environ := env.ToMap(os.Environ())

	dotenv, err := godotenv.Read(l.DotEnvPath())
	if errors.Is(err, fs.ErrNotExist) {
		return environ, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read %s: %w", l.DotEnvPath(), err)
	}

	used := false
	for k, v := range dotenv {
		if _, ok := environ[k]; ok {
			continue
		}
		environ[k] = v
		used = true
	}
	return environ, used, nil
}
