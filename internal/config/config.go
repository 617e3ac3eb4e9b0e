// Package config is for run-wide settings that are unmarshalled from viper:
// defaults, an optional YAML file, VANNOT_ environment variables and
// command line flags bound in cmd/.
package config

import (
	"fmt"
	"runtime"
	"strings"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. VANNOT_OVERHANG_WIDTH.
const EnvPrefix = "VANNOT"

// ServerConfig is for the HTTP server.
type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

// Config is the root-level settings struct.
type Config struct {
	// number of residues a flank reaches back into the seed
	OverhangWidth uint64 `mapstructure:"overhang-width"`

	// whether model coordinates wrap around
	Circular bool `mapstructure:"circular"`

	WorkerConcurrency int `mapstructure:"worker-concurrency"`

	// k-mer length used to pick between several models
	KmerSize int `mapstructure:"kmer-size"`

	// mean confidence below which a joined alignment raises an alert; 0 disables
	MinConfidence float64 `mapstructure:"min-confidence"`

	// paths to the external aligners; empty selects the in-process aligners
	Blastn  string `mapstructure:"blastn"`
	Cmalign string `mapstructure:"cmalign"`

	// threads handed to each external aligner call
	AlignerThreads int `mapstructure:"aligner-threads"`

	// matrix budget of the in-process aligners
	MaxCells int `mapstructure:"max-cells"`

	TmpDir   string `mapstructure:"tmp-dir"`
	LogLevel string `mapstructure:"log-level"`

	Server ServerConfig `mapstructure:"server"`
}

// SetDefaults registers every key with its default so that environment
// overrides are picked up on Unmarshal.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("overhang-width", 100)
	v.SetDefault("circular", false)
	v.SetDefault("worker-concurrency", runtime.NumCPU())
	v.SetDefault("kmer-size", 8)
	v.SetDefault("min-confidence", 0.0)
	v.SetDefault("blastn", "")
	v.SetDefault("cmalign", "")
	v.SetDefault("aligner-threads", 1)
	v.SetDefault("max-cells", 50_000_000)
	v.SetDefault("tmp-dir", "")
	v.SetDefault("log-level", "info")
	v.SetDefault("server.host", "localhost")
	v.SetDefault("server.port", 8080)
}

// New returns a viper instance with defaults and environment overrides.
func New() *viper.Viper {
	v := viper.New()
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads file into v when it is set, then unmarshals and validates.
func Load(v *viper.Viper, file string) (*Config, error) {
	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", file, err)
		}
		log.WithField("file", v.ConfigFileUsed()).Debug("config loaded")
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Validate checks every setting once so later stages can trust them.
func (c *Config) Validate() error {
	switch {
	case c.OverhangWidth < 1:
		return &Error{Key: "overhang-width", Reason: "must be at least 1"}
	case c.WorkerConcurrency < 1:
		return &Error{Key: "worker-concurrency", Reason: "must be at least 1"}
	case c.KmerSize < 1 || c.KmerSize > 32:
		return &Error{Key: "kmer-size", Reason: "must be between 1 and 32"}
	case c.MinConfidence < 0 || c.MinConfidence > 1:
		return &Error{Key: "min-confidence", Reason: "must be between 0 and 1"}
	case c.AlignerThreads < 1:
		return &Error{Key: "aligner-threads", Reason: "must be at least 1"}
	case c.MaxCells < 1:
		return &Error{Key: "max-cells", Reason: "must be positive"}
	case c.Server.Port < 0 || c.Server.Port > 65535:
		return &Error{Key: "server.port", Reason: "out of range"}
	}
	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		return &Error{Key: "log-level", Reason: err.Error()}
	}
	return nil
}

// Addr returns the server listen address.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// Error reports an invalid setting.
type Error struct {
	Key    string
	Reason string
}

func (e *Error) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Key, e.Reason)
}

// IsConfigError marks errors from this package.
func (e *Error) IsConfigError() {}
