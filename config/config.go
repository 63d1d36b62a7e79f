package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/Yulian302/lfusys-wetransfer/apperror"
	"gopkg.in/yaml.v3"
)

const (
	DefaultBaseURL     = "https://dev.wetransfer.com"
	DefaultHTTPTimeout = 60 * time.Second

	authorizePath = "/v2/authorize"
	transfersPath = "/v2/transfers"
	boardsPath    = "/v2/boards"
)

type RedisConfig struct {
	HOST string `yaml:"host"`
}

type AWSConfig struct {
	Region string `yaml:"region"`
}

type DynamoDBConfig struct {
	ResourcesTableName string `yaml:"resources_table"`
}

type BreakerConfig struct {
	Enabled     bool          `yaml:"enabled"`
	MaxFailures uint32        `yaml:"max_failures"`
	Timeout     time.Duration `yaml:"timeout"`
}

type Config struct {
	APIKey      string        `yaml:"api_key"`
	BaseURL     string        `yaml:"base_url"`
	HTTPTimeout time.Duration `yaml:"http_timeout"`
	Env         string        `yaml:"env"`
	Tracing     bool          `yaml:"tracing"`

	RedisConfig    *RedisConfig    `yaml:"redis"`
	AWSConfig      *AWSConfig      `yaml:"aws"`
	DynamoDBConfig *DynamoDBConfig `yaml:"dynamodb"`
	BreakerConfig  *BreakerConfig  `yaml:"breaker"`
}

func NewDefaultConfig() Config {
	return Config{
		BaseURL:        DefaultBaseURL,
		HTTPTimeout:    DefaultHTTPTimeout,
		Env:            "DEV",
		RedisConfig:    &RedisConfig{},
		AWSConfig:      &AWSConfig{Region: "eu-west-1"},
		DynamoDBConfig: &DynamoDBConfig{},
		BreakerConfig: &BreakerConfig{
			MaxFailures: 5,
			Timeout:     10 * time.Second,
		},
	}
}

// LoadConfig starts from the defaults, applies the YAML file at CONFIG_PATH
// when it exists and then the environment.
func LoadConfig() (Config, error) {
	cfg := NewDefaultConfig()

	if path := os.Getenv("CONFIG_PATH"); path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return cfg, err
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")

	return cfg, nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv("WETRANSFER_API_KEY"); v != "" {
		c.APIKey = v
	}
	if v := os.Getenv("WETRANSFER_BASE_URL"); v != "" {
		c.BaseURL = v
	}
	if v := os.Getenv("ENV"); v != "" {
		c.Env = v
	}
	if v := os.Getenv("HTTP_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("HTTP_TIMEOUT: %w", err)
		}
		c.HTTPTimeout = d
	}
	if v := os.Getenv("TRACING"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("TRACING: %w", err)
		}
		c.Tracing = b
	}

	if c.RedisConfig == nil {
		c.RedisConfig = &RedisConfig{}
	}
	if v := os.Getenv("REDIS_HOST"); v != "" {
		c.RedisConfig.HOST = v
	}

	if c.AWSConfig == nil {
		c.AWSConfig = &AWSConfig{}
	}
	if v := os.Getenv("AWS_REGION"); v != "" {
		c.AWSConfig.Region = v
	}

	if c.DynamoDBConfig == nil {
		c.DynamoDBConfig = &DynamoDBConfig{}
	}
	if v := os.Getenv("DYNAMODB_RESOURCES_TABLE"); v != "" {
		c.DynamoDBConfig.ResourcesTableName = v
	}

	if c.BreakerConfig == nil {
		c.BreakerConfig = &BreakerConfig{}
	}
	if v := os.Getenv("BREAKER_ENABLED"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("BREAKER_ENABLED: %w", err)
		}
		c.BreakerConfig.Enabled = b
	}
	if v := os.Getenv("BREAKER_MAX_FAILURES"); v != "" {
		n, err := strconv.ParseUint(v, 10, 32)
		if err != nil {
			return fmt.Errorf("BREAKER_MAX_FAILURES: %w", err)
		}
		c.BreakerConfig.MaxFailures = uint32(n)
	}
	if v := os.Getenv("BREAKER_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("BREAKER_TIMEOUT: %w", err)
		}
		c.BreakerConfig.Timeout = d
	}

	return nil
}

func (c Config) ValidateAllSecrets() error {
	if c.APIKey == "" {
		return apperror.ErrMissingAPIKey
	}
	return nil
}

func (c Config) AuthorizeURL() string {
	return c.BaseURL + authorizePath
}

func (c Config) TransfersURL() string {
	return c.BaseURL + transfersPath
}

func (c Config) BoardsURL() string {
	return c.BaseURL + boardsPath
}
