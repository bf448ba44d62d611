// Package config loads cqlexec settings from a YAML or TOML file, an
// optional .env file and CQLTASK_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/arloliu/cqltask/internal/logging"
	"github.com/arloliu/cqltask/types"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "CQLTASK_"

var (
	// ErrUnsupportedFormat is returned for config files that are neither YAML nor TOML.
	ErrUnsupportedFormat = errors.New("config: unsupported config file format")

	// ErrInvalidDriver is returned for driver names other than v1 and v2.
	ErrInvalidDriver = errors.New("config: driver must be v1 or v2")

	// ErrInvalidOutputFormat is returned for unknown output formats.
	ErrInvalidOutputFormat = errors.New("config: output format must be json, table or xlsx")

	// ErrOutputPathRequired is returned when xlsx output has no file path.
	ErrOutputPathRequired = errors.New("config: xlsx output requires an output path")
)

// Drivers and output formats accepted by Validate.
var (
	Drivers       = []string{"v1", "v2"}
	OutputFormats = []string{"json", "table", "xlsx"}
)

// ClusterConfig describes the cluster to connect to.
type ClusterConfig struct {
	ContactPoints  []string      `yaml:"contact_points" toml:"contact_points"`
	Port           int           `yaml:"port" toml:"port"`
	Keyspace       string        `yaml:"keyspace" toml:"keyspace"`
	Consistency    string        `yaml:"consistency" toml:"consistency"`
	Timeout        time.Duration `yaml:"timeout" toml:"timeout"`
	ConnectTimeout time.Duration `yaml:"connect_timeout" toml:"connect_timeout"`
	PageSize       int           `yaml:"page_size" toml:"page_size"`
	Driver         string        `yaml:"driver" toml:"driver"`
}

// AuthConfig holds credentials. Password may reference an environment
// variable as ${NAME}.
type AuthConfig struct {
	Username       string `yaml:"username" toml:"username"`
	Password       string `yaml:"password" toml:"password"`
	KeyringService string `yaml:"keyring_service" toml:"keyring_service"`
}

// OutputConfig selects how results are rendered.
type OutputConfig struct {
	Format string `yaml:"format" toml:"format"`
	Path   string `yaml:"path" toml:"path"`
}

// TelemetryConfig controls metrics and tracing output.
type TelemetryConfig struct {
	MetricsFile string `yaml:"metrics_file" toml:"metrics_file"`
	Trace       bool   `yaml:"trace" toml:"trace"`
}

// Config is the complete cqlexec configuration.
type Config struct {
	Cluster   ClusterConfig   `yaml:"cluster" toml:"cluster"`
	Auth      AuthConfig      `yaml:"auth" toml:"auth"`
	Output    OutputConfig    `yaml:"output" toml:"output"`
	Telemetry TelemetryConfig `yaml:"telemetry" toml:"telemetry"`
	Logging   logging.Config  `yaml:"logging" toml:"logging"`
}

// Default returns the configuration used when nothing else is set.
func Default() *Config {
	return &Config{
		Cluster: ClusterConfig{
			Port:           types.DefaultPort,
			Consistency:    types.Quorum.String(),
			Timeout:        10 * time.Second,
			ConnectTimeout: 10 * time.Second,
			Driver:         "v1",
		},
		Output: OutputConfig{Format: "json"},
		Logging: logging.Config{
			ConsoleLevel: "warn",
			Format:       "text",
			FileLevel:    "debug",
		},
	}
}

// FromFile reads path on top of the defaults. The format is chosen by
// extension: .yaml/.yml or .toml.
//
// Parameters:
//   - path: Config file path
//
// Returns:
//   - *Config: Loaded configuration
//   - error: Read, decode or format error
func FromFile(path string) (*Config, error) {
	conf := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: failed to read %s: %w", path, err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, conf); err != nil {
			return nil, fmt.Errorf("config: failed to decode YAML %s: %w", path, err)
		}
	case ".toml":
		if _, err := toml.Decode(string(data), conf); err != nil {
			return nil, fmt.Errorf("config: failed to decode TOML %s: %w", path, err)
		}
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}

	return conf, nil
}

// Load reads the optional config file and env file, then applies
// environment overrides. Empty paths are skipped.
//
// Parameters:
//   - path: Config file path, may be empty
//   - envFile: .env file path, may be empty
//
// Returns:
//   - *Config: Resolved configuration
//   - error: Any load error
func Load(path, envFile string) (*Config, error) {
	conf := Default()
	if path != "" {
		var err error
		if conf, err = FromFile(path); err != nil {
			return nil, err
		}
	}

	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			return nil, fmt.Errorf("config: failed to load env file %s: %w", envFile, err)
		}
	}

	if err := conf.ApplyEnv(os.LookupEnv); err != nil {
		return nil, err
	}

	return conf, nil
}

// ApplyEnv overrides fields from CQLTASK_* variables found by lookup and
// expands a ${NAME} password reference.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	get := func(name string) (string, bool) {
		v, ok := lookup(EnvPrefix + name)
		if !ok || strings.TrimSpace(v) == "" {
			return "", false
		}

		return strings.TrimSpace(v), true
	}

	intVar := func(name string, dst *int) error {
		v, ok := get(name)
		if !ok {
			return nil
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("config: invalid %s%s %q: %w", EnvPrefix, name, v, err)
		}
		*dst = n

		return nil
	}
	durationVar := func(name string, dst *time.Duration) error {
		v, ok := get(name)
		if !ok {
			return nil
		}
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("config: invalid %s%s %q: %w", EnvPrefix, name, v, err)
		}
		*dst = d

		return nil
	}
	stringVar := func(name string, dst *string) {
		if v, ok := get(name); ok {
			*dst = v
		}
	}

	if v, ok := get("CONTACT_POINTS"); ok {
		c.Cluster.ContactPoints = splitList(v)
	}
	if err := intVar("PORT", &c.Cluster.Port); err != nil {
		return err
	}
	stringVar("KEYSPACE", &c.Cluster.Keyspace)
	stringVar("CONSISTENCY", &c.Cluster.Consistency)
	if err := durationVar("TIMEOUT", &c.Cluster.Timeout); err != nil {
		return err
	}
	if err := durationVar("CONNECT_TIMEOUT", &c.Cluster.ConnectTimeout); err != nil {
		return err
	}
	if err := intVar("PAGE_SIZE", &c.Cluster.PageSize); err != nil {
		return err
	}
	stringVar("DRIVER", &c.Cluster.Driver)

	stringVar("USERNAME", &c.Auth.Username)
	if v, ok := lookup(EnvPrefix + "PASSWORD"); ok && v != "" {
		c.Auth.Password = v
	}
	stringVar("KEYRING_SERVICE", &c.Auth.KeyringService)

	stringVar("FORMAT", &c.Output.Format)
	stringVar("OUTPUT", &c.Output.Path)

	stringVar("METRICS_FILE", &c.Telemetry.MetricsFile)
	if v, ok := get("TRACE"); ok {
		trace, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("config: invalid %sTRACE %q: %w", EnvPrefix, v, err)
		}
		c.Telemetry.Trace = trace
	}

	stringVar("LOG_LEVEL", &c.Logging.ConsoleLevel)

	c.Auth.Password = expandRef(c.Auth.Password, lookup)

	return nil
}

// Validate checks enumerated settings.
func (c *Config) Validate() error {
	if _, err := types.ParseConsistency(c.Cluster.Consistency); err != nil {
		return err
	}
	if !slices.Contains(Drivers, strings.ToLower(c.Cluster.Driver)) {
		return fmt.Errorf("%w: %q", ErrInvalidDriver, c.Cluster.Driver)
	}
	format := strings.ToLower(c.Output.Format)
	if !slices.Contains(OutputFormats, format) {
		return fmt.Errorf("%w: %q", ErrInvalidOutputFormat, c.Output.Format)
	}
	if format == "xlsx" && c.Output.Path == "" {
		return ErrOutputPathRequired
	}

	return nil
}

// expandRef resolves a value of the form ${NAME} through lookup.
func expandRef(value string, lookup func(string) (string, bool)) string {
	if !strings.HasPrefix(value, "${") || !strings.HasSuffix(value, "}") {
		return value
	}
	v, _ := lookup(strings.TrimSuffix(strings.TrimPrefix(value, "${"), "}"))

	return v
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}

	return out
}
