package lumen

import (
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
	"github.com/pkg/errors"

	"github.com/wayneeseguin/lumen/pkg/formatters"
)

// EnvPrefix is the prefix of the environment variables read by LoadConfig.
const EnvPrefix = "LUMEN_"

// WorkerEnvVar marks a process as a worker. Its value names the worker.
const WorkerEnvVar = "LUMEN_WORKER"

// EnvironmentConfig holds the defaults an Environment applies to every
// logger it creates.
type EnvironmentConfig struct {
	Level         string `koanf:"level"`          // minimum level name
	Format        string `koanf:"format"`         // message template
	TimeFormat    string `koanf:"time_format"`    // time.Format layout
	TempDir       string `koanf:"temp_dir"`       // scratch files and flush lock
	ForceColorize bool   `koanf:"force_colorize"` // colorize every stream
	Buffering     bool   `koanf:"buffering"`      // buffer worker output
}

// DefaultEnvironmentConfig returns the built-in defaults.
func DefaultEnvironmentConfig() EnvironmentConfig {
	return EnvironmentConfig{
		Level:      DefaultLevel.String(),
		Format:     formatters.DefaultFormat,
		TimeFormat: formatters.DefaultTimestampFormat,
		TempDir:    os.TempDir(),
		Buffering:  true,
	}
}

// LoadConfig loads configuration with layered sources:
//  1. Defaults: DefaultEnvironmentConfig
//  2. Config File: optional YAML file at path (skipped when path is empty)
//  3. Environment Variables: LUMEN_LEVEL, LUMEN_FORMAT, LUMEN_TIME_FORMAT,
//     LUMEN_TEMP_DIR, LUMEN_FORCE_COLORIZE and LUMEN_BUFFERING
//
// The result is validated before it is returned.
func LoadConfig(path string) (*EnvironmentConfig, error) {
	k := koanf.New(".")

	defaults := DefaultEnvironmentConfig()
	if err := k.Load(structs.Provider(defaults, "koanf"), nil); err != nil {
		return nil, errors.Wrap(err, "load defaults")
	}

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, errors.Wrapf(err, "load config file %s", path)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envTransformFunc), nil); err != nil {
		return nil, errors.Wrap(err, "load environment variables")
	}

	cfg := &EnvironmentConfig{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, errors.Wrap(err, "unmarshal configuration")
	}

	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}
	return cfg, nil
}

var envKeys = map[string]string{
	"level":          "level",
	"format":         "format",
	"time_format":    "time_format",
	"temp_dir":       "temp_dir",
	"force_colorize": "force_colorize",
	"buffering":      "buffering",
}

// envTransformFunc maps LUMEN_TIME_FORMAT to time_format. Unknown
// variables, LUMEN_WORKER included, are ignored.
func envTransformFunc(key string) string {
	key = strings.ToLower(strings.TrimPrefix(key, EnvPrefix))
	return envKeys[key]
}

// Validate checks the configuration and fills empty fields with defaults.
func (c *EnvironmentConfig) Validate() error {
	defaults := DefaultEnvironmentConfig()
	if c.Level == "" {
		c.Level = defaults.Level
	}
	if _, err := ParseLevel(c.Level); err != nil {
		return err
	}
	if c.Format == "" {
		c.Format = defaults.Format
	}
	if c.TimeFormat == "" {
		c.TimeFormat = defaults.TimeFormat
	}
	if c.TempDir == "" {
		c.TempDir = defaults.TempDir
	}
	return nil
}

// level returns the parsed minimum level, assuming Validate succeeded.
func (c *EnvironmentConfig) level() Level {
	l, err := ParseLevel(c.Level)
	if err != nil {
		return DefaultLevel
	}
	return l
}
