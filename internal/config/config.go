package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/cleared-dev/aggregate/internal/model"
)

// FileName is the config file looked up in the working directory.
const FileName = "aggregate.yaml"

// EnvPrefix prefixes every environment override, e.g. AGGREGATE_CURRENCY.
const EnvPrefix = "AGGREGATE"

// Keys shared by viper, the yaml file and the CLI flags.
const (
	KeyFilesFolder = "files_folder"
	KeyFilesPrefix = "files_prefix"
	KeyFilename    = "filename"
	KeyCurrency    = "currency"
	KeyFormat      = "format"
	KeyLogLevel    = "log_level"
	KeyRunLog      = "run_log"
)

// Config represents aggregate.yaml and its env/flag overrides.
type Config struct {
	FilesFolder string `yaml:"files_folder" mapstructure:"files_folder"`
	FilesPrefix string `yaml:"files_prefix" mapstructure:"files_prefix"`
	Filename    string `yaml:"filename" mapstructure:"filename"` // empty = result<timestamp>
	Currency    string `yaml:"currency" mapstructure:"currency"` // euro | usd
	Format      string `yaml:"format" mapstructure:"format"`     // csv | json | xml | yaml | sqlite
	LogLevel    string `yaml:"log_level" mapstructure:"log_level"`
	RunLog      string `yaml:"run_log" mapstructure:"run_log"` // empty = no run history
}

// Default returns a Config with the built-in defaults.
func Default() *Config {
	return &Config{
		FilesFolder: "files",
		FilesPrefix: "",
		Filename:    "",
		Currency:    model.DefaultCurrency,
		Format:      "csv",
		LogLevel:    "info",
		RunLog:      "",
	}
}

// NewViper returns a viper instance carrying the defaults and reading
// AGGREGATE_* environment variables.
func NewViper() *viper.Viper {
	v := viper.New()
	d := Default()
	v.SetDefault(KeyFilesFolder, d.FilesFolder)
	v.SetDefault(KeyFilesPrefix, d.FilesPrefix)
	v.SetDefault(KeyFilename, d.Filename)
	v.SetDefault(KeyCurrency, d.Currency)
	v.SetDefault(KeyFormat, d.Format)
	v.SetDefault(KeyLogLevel, d.LogLevel)
	v.SetDefault(KeyRunLog, d.RunLog)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()
	return v
}

// Resolve builds the effective Config. Precedence: flags bound to v, then
// environment (including .env.local and .env in dir), then the config file,
// then defaults. configFile must exist when given; otherwise dir/aggregate.yaml
// is read if present.
func Resolve(v *viper.Viper, configFile, dir string) (*Config, error) {
	loadEnvFiles(dir)

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config %s: %w", configFile, err)
		}
	} else {
		v.SetConfigName(strings.TrimSuffix(FileName, filepath.Ext(FileName)))
		v.SetConfigType("yaml")
		v.AddConfigPath(dir)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("reading config: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks values that can be checked without touching the filesystem.
func (c *Config) Validate() error {
	if _, err := model.LookupCurrency(c.Currency); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if strings.TrimSpace(c.Format) == "" {
		return errors.New("invalid config: format is empty")
	}
	return nil
}

// Save writes a Config to a YAML file.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// loadEnvFiles exports .env.local then .env from dir. Variables already set
// are never overwritten, so .env.local wins over .env.
func loadEnvFiles(dir string) {
	for _, name := range []string{".env.local", ".env"} {
		_ = godotenv.Load(filepath.Join(dir, name))
	}
}
