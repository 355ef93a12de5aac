package config

import (
	"fmt"
	"math/big"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/caarlos0/env/v10"
	"gopkg.in/yaml.v3"
)

// EnvPrefix is the prefix of all environment variables read by Load.
const EnvPrefix = "STACKCALC_"

// EnvConfigFile names the environment variable holding a config file path,
// used when Load is given no path.
const EnvConfigFile = EnvPrefix + "CONFIG"

// Config holds all configuration for evaluation, output and logging.
type Config struct {
	// Evaluation
	MaxDepth int  `env:"MAX_DEPTH" toml:"max_depth" yaml:"max_depth"`
	Prec     uint `env:"PREC" toml:"prec" yaml:"prec"`

	// Output
	Format   string `env:"FORMAT" toml:"format" yaml:"format"`
	Template string `env:"TEMPLATE" toml:"template" yaml:"template"`

	// Logging
	LogLevel    string `env:"LOG_LEVEL" toml:"log_level" yaml:"log_level"`
	LogEncoding string `env:"LOG_ENCODING" toml:"log_encoding" yaml:"log_encoding"`

	Worker Worker `envPrefix:"WORKER_" toml:"worker" yaml:"worker"`
}

// Worker holds configuration for the Redis Streams worker.
type Worker struct {
	ID string `env:"ID" toml:"id" yaml:"id"`

	RedisAddr     string `env:"REDIS_ADDR" toml:"redis_addr" yaml:"redis_addr"`
	RedisPassword string `env:"REDIS_PASS" toml:"redis_password" yaml:"redis_password"`
	RedisDB       int    `env:"REDIS_DB" toml:"redis_db" yaml:"redis_db"`

	StreamKey     string        `env:"STREAM_KEY" toml:"stream_key" yaml:"stream_key"`
	ConsumerGroup string        `env:"CONSUMER_GROUP" toml:"consumer_group" yaml:"consumer_group"`
	ResultStream  string        `env:"RESULT_STREAM" toml:"result_stream" yaml:"result_stream"`
	BlockTime     time.Duration `env:"BLOCK_TIME" toml:"block_time" yaml:"block_time"`
	BatchSize     int64         `env:"BATCH_SIZE" toml:"batch_size" yaml:"batch_size"`

	HealthPort int `env:"HEALTH_PORT" toml:"health_port" yaml:"health_port"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		MaxDepth:    1000,
		Prec:        64,
		Format:      "%g",
		LogLevel:    "info",
		LogEncoding: "console",
		Worker: Worker{
			ID:            "stackcalc-1",
			RedisAddr:     "localhost:6379",
			StreamKey:     "stackcalc.requests",
			ConsumerGroup: "stackcalc-workers",
			ResultStream:  "stackcalc.results",
			BlockTime:     time.Second,
			BatchSize:     16,
			HealthPort:    8082,
		},
	}
}

// Load builds a configuration from defaults, the config file at path, and
// the environment. If path is empty, the file named by STACKCALC_CONFIG is
// used if that is set.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		path = os.Getenv(EnvConfigFile)
	}
	if path != "" {
		if err := cfg.loadFile(os.ExpandEnv(path)); err != nil {
			return nil, err
		}
	}

	if err := env.ParseWithOptions(cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// loadFile decodes a TOML or YAML file over the current values.
func (c *Config) loadFile(path string) error {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".toml":
		if _, err := toml.DecodeFile(path, c); err != nil {
			return fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	case ".yaml", ".yml":
		content, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(content, c); err != nil {
			return fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	default:
		return fmt.Errorf("unsupported config file format %q", ext)
	}
	return nil
}

// Validate validates the evaluation, output and logging configuration.
func (c *Config) Validate() error {
	if c.MaxDepth < 1 {
		return fmt.Errorf("MAX_DEPTH must be at least 1")
	}

	if c.Prec < 1 || c.Prec > big.MaxPrec {
		return fmt.Errorf("PREC must be between 1 and %d", uint(big.MaxPrec))
	}

	if c.Format == "" && c.Template == "" {
		return fmt.Errorf("one of FORMAT or TEMPLATE is required")
	}

	if !isValidLogLevel(c.LogLevel) {
		return fmt.Errorf("LOG_LEVEL must be one of: debug, info, warn, error")
	}

	if c.LogEncoding != "json" && c.LogEncoding != "console" {
		return fmt.Errorf("LOG_ENCODING must be json or console")
	}

	return nil
}

// ValidateWorker validates the worker configuration.
func (c *Config) ValidateWorker() error {
	w := &c.Worker
	if w.ID == "" {
		return fmt.Errorf("WORKER_ID is required")
	}

	if w.RedisAddr == "" {
		return fmt.Errorf("WORKER_REDIS_ADDR is required")
	}

	if w.StreamKey == "" {
		return fmt.Errorf("WORKER_STREAM_KEY is required")
	}

	if w.ConsumerGroup == "" {
		return fmt.Errorf("WORKER_CONSUMER_GROUP is required")
	}

	if w.ResultStream == "" {
		return fmt.Errorf("WORKER_RESULT_STREAM is required")
	}

	if w.ResultStream == w.StreamKey {
		return fmt.Errorf("WORKER_RESULT_STREAM must differ from WORKER_STREAM_KEY")
	}

	if w.BlockTime <= 0 {
		return fmt.Errorf("WORKER_BLOCK_TIME must be positive")
	}

	if w.BatchSize < 1 {
		return fmt.Errorf("WORKER_BATCH_SIZE must be positive")
	}

	if w.HealthPort <= 0 || w.HealthPort > 65535 {
		return fmt.Errorf("WORKER_HEALTH_PORT must be between 1 and 65535")
	}

	return nil
}

func isValidLogLevel(level string) bool {
	switch level {
	case "debug", "info", "warn", "error":
		return true
	}
	return false
}

// String returns a string representation of the config without the Redis
// password.
func (c *Config) String() string {
	return fmt.Sprintf(
		"Config{MaxDepth=%d, Prec=%d, Format=%q, Template=%t, LogLevel=%s, LogEncoding=%s, "+
			"WorkerID=%s, RedisAddr=%s, RedisDB=%d, StreamKey=%s, ConsumerGroup=%s, ResultStream=%s, HealthPort=%d}",
		c.MaxDepth,
		c.Prec,
		c.Format,
		c.Template != "",
		c.LogLevel,
		c.LogEncoding,
		c.Worker.ID,
		c.Worker.RedisAddr,
		c.Worker.RedisDB,
		c.Worker.StreamKey,
		c.Worker.ConsumerGroup,
		c.Worker.ResultStream,
		c.Worker.HealthPort,
	)
}
