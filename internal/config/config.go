// Package config loads the ndx-rsi YAML configuration: the backtest block, the
// per-strategy blocks, the index table and notification targets.
package config

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/rxtech-lab/ndx-rsi/internal/backtest/engine"
	"github.com/rxtech-lab/ndx-rsi/internal/datasource"
	"github.com/rxtech-lab/ndx-rsi/internal/strategy"
	"github.com/rxtech-lab/ndx-rsi/internal/version"
	"github.com/rxtech-lab/ndx-rsi/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Environment variables read by Load and ApplyEnv.
const (
	EnvConfigPath    = "NDX_RSI_CONFIG"
	EnvPolygonAPIKey = "POLYGON_API_KEY"
	EnvWebhookURLs   = "NDX_RSI_WEBHOOK_URLS"
	// EnvLegacyWebhookURLs is read when EnvWebhookURLs is unset.
	EnvLegacyWebhookURLs = "CUSTOM_WEBHOOK_URLS"
)

// DefaultFileName is looked up when the config path is a directory.
const DefaultFileName = "ndx-rsi.yaml"

// CurrentVersion is written into generated configuration files.
const CurrentVersion = "1.0.0"

// IndexConfig maps a symbol to its upstream code and provider.
type IndexConfig struct {
	Code     string                  `yaml:"code" json:"code" validate:"required"`
	Provider datasource.ProviderType `yaml:"provider" json:"provider" validate:"omitempty,oneof=polygon duckdb"`
	// Path is the parquet or CSV file backing a duckdb index.
	Path string `yaml:"path,omitempty" json:"path,omitempty" validate:"required_if=Provider duckdb"`
}

// NotifyConfig lists the webhook targets of signal reports.
type NotifyConfig struct {
	WebhookURLs []string      `yaml:"webhook_urls" json:"webhook_urls" validate:"dive,url"`
	Timeout     time.Duration `yaml:"timeout" json:"timeout" validate:"gte=0"`
}

// Config is the root of the configuration file.
type Config struct {
	Version    string                 `yaml:"version" json:"version" validate:"required"`
	DataDir    string                 `yaml:"data_dir" json:"data_dir"`
	Backtest   engine.Config          `yaml:"backtest" json:"backtest"`
	Strategies strategy.Configs       `yaml:"strategies" json:"strategies"`
	Indices    map[string]IndexConfig `yaml:"indices" json:"indices" validate:"dive"`
	Notify     NotifyConfig           `yaml:"notify" json:"notify"`

	// PolygonAPIKey comes from the environment only.
	PolygonAPIKey string `yaml:"-" json:"-"`
}

// Default returns a configuration with every block at its defaults.
func Default() *Config {
	return &Config{
		Version:    CurrentVersion,
		DataDir:    "data",
		Backtest:   engine.DefaultConfig(),
		Strategies: strategy.DefaultConfigs(),
		Indices: map[string]IndexConfig{
			"QQQ":  {Code: "QQQ", Provider: datasource.ProviderPolygon},
			"TQQQ": {Code: "TQQQ", Provider: datasource.ProviderPolygon},
		},
		Notify: NotifyConfig{Timeout: 10 * time.Second},
	}
}

// Load reads path, or the file named by NDX_RSI_CONFIG when path is empty,
// over the defaults. Keys missing from the file keep their default values.
// With neither a path nor the variable set the defaults are returned.
func Load(path string) (*Config, error) {
	if path == "" {
		path = os.Getenv(EnvConfigPath)
	}

	cfg := Default()

	if path != "" {
		resolved, err := resolve(path)
		if err != nil {
			return nil, err
		}

		data, err := os.ReadFile(resolved)
		if err != nil {
			return nil, errors.Wrapf(errors.ErrCodeInvalidConfiguration, err, "failed to read config %s", resolved)
		}

		if err := cfg.decode(data); err != nil {
			return nil, err
		}
	}

	cfg.ApplyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Parse decodes data over the defaults and validates the result. The environment is not read.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := cfg.decode(data); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func resolve(path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", errors.Wrapf(errors.ErrCodeInvalidConfiguration, err, "config %s not found", path)
	}

	if info.IsDir() {
		return filepath.Join(path, DefaultFileName), nil
	}

	return path, nil
}

func (c *Config) decode(data []byte) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	if err := dec.Decode(c); err != nil {
		// an empty file decodes to io.EOF and keeps the defaults
		if len(bytes.TrimSpace(data)) == 0 {
			return nil
		}

		return errors.Wrap(errors.ErrCodeInvalidConfiguration, "failed to parse config", err)
	}

	return nil
}

// LoadEnvFiles loads .env style files into the process environment.
// Missing files are skipped and existing variables win.
func LoadEnvFiles(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}

	for _, f := range files {
		if _, err := os.Stat(f); err != nil {
			continue
		}

		if err := godotenv.Load(f); err != nil {
			return errors.Wrapf(errors.ErrCodeInvalidConfiguration, err, "failed to load %s", f)
		}
	}

	return nil
}

// ApplyEnv copies secrets and webhook targets from the environment.
// Webhooks from the environment replace the ones in the file.
func (c *Config) ApplyEnv() {
	if key := strings.TrimSpace(os.Getenv(EnvPolygonAPIKey)); key != "" {
		c.PolygonAPIKey = key
	}

	urls := os.Getenv(EnvWebhookURLs)
	if urls == "" {
		urls = os.Getenv(EnvLegacyWebhookURLs)
	}

	if parsed := splitList(urls); len(parsed) > 0 {
		c.Notify.WebhookURLs = parsed
	}
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

// Validate checks the version gate, field ranges and the backtest block.
func (c *Config) Validate() error {
	if err := version.CheckConfigVersion(version.GetVersion(), c.Version); err != nil {
		return err
	}

	if err := validator.New().Struct(c); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfiguration, "invalid configuration", err)
	}

	return c.Backtest.Validate()
}

// Index returns the configuration of symbol. Unknown symbols map to themselves on polygon.
func (c *Config) Index(symbol string) IndexConfig {
	if idx, ok := c.Indices[symbol]; ok {
		if idx.Provider == "" {
			idx.Provider = datasource.ProviderPolygon
		}

		return idx
	}

	return IndexConfig{Code: symbol, Provider: datasource.ProviderPolygon}
}

// Marshal renders the configuration as YAML.
func (c *Config) Marshal() ([]byte, error) {
	var buf bytes.Buffer

	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)

	if err := enc.Encode(c); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfiguration, "failed to encode config", err)
	}

	if err := enc.Close(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfiguration, "failed to encode config", err)
	}

	return buf.Bytes(), nil
}
