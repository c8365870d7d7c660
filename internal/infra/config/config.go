package config

import (
	"fmt"
	"log"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// DefaultBaseURL - адрес публичного API Feedbucket.
const DefaultBaseURL = "https://dashboard.feedbucket.app/api/v1"

// Транспорты MCP сервера.
const (
	TransportStdio = "stdio"
	TransportHTTP  = "http"
)

// AppConfig описывает конфигурацию сервиса.
type AppConfig struct {
	AppEnv   string `envconfig:"APP_ENV" default:"prod"`
	LogLevel string `envconfig:"LOG_LEVEL"`

	Feedbucket struct {
		ProjectID  string        `envconfig:"FEEDBUCKET_PROJECT_ID" required:"true"`
		PrivateKey string        `envconfig:"FEEDBUCKET_PRIVATE_KEY" required:"true"`
		APIKey     string        `envconfig:"FEEDBUCKET_API_KEY"`
		BaseURL    string        `envconfig:"FEEDBUCKET_API_BASE_URL" default:"https://dashboard.feedbucket.app/api/v1"`
		Timeout    time.Duration `envconfig:"FEEDBUCKET_TIMEOUT" default:"0s"`
	} `envconfig:""`

	MCP struct {
		Transport string `envconfig:"MCP_TRANSPORT" default:"stdio"`
		HTTPAddr  string `envconfig:"HTTP_ADDR" default:":8080"`
	} `envconfig:""`

	Metrics struct {
		Enabled bool   `envconfig:"METRICS_ENABLED" default:"false"`
		Addr    string `envconfig:"METRICS_ADDR" default:":9090"`
	} `envconfig:""`
}

// Parse читает конфиг из окружения и проверяет его.
func Parse() (AppConfig, error) {
	var cfg AppConfig
	if err := envconfig.Process("", &cfg); err != nil {
		return AppConfig{}, err
	}
	if err := cfg.Validate(); err != nil {
		return AppConfig{}, err
	}
	return cfg, nil
}

// Load загружает конфиг и завершает процесс, если он неполный.
func Load() AppConfig {
	cfg, err := Parse()
	if err != nil {
		log.Fatalf("feedbucket-mcp: failed to load config: %v", err)
	}
	return cfg
}

// Validate проверяет значения, которые envconfig не умеет проверить сам.
func (c AppConfig) Validate() error {
	if strings.TrimSpace(c.Feedbucket.ProjectID) == "" {
		return fmt.Errorf("FEEDBUCKET_PROJECT_ID is required")
	}
	if strings.TrimSpace(c.Feedbucket.PrivateKey) == "" {
		return fmt.Errorf("FEEDBUCKET_PRIVATE_KEY is required")
	}
	parsed, err := url.Parse(c.Feedbucket.BaseURL)
	if err != nil {
		return fmt.Errorf("FEEDBUCKET_API_BASE_URL: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("FEEDBUCKET_API_BASE_URL must be an http(s) URL, got %q", c.Feedbucket.BaseURL)
	}
	if c.Feedbucket.Timeout < 0 {
		return fmt.Errorf("FEEDBUCKET_TIMEOUT must not be negative")
	}
	switch c.MCP.Transport {
	case TransportStdio, TransportHTTP:
	default:
		return fmt.Errorf("MCP_TRANSPORT must be %q or %q, got %q", TransportStdio, TransportHTTP, c.MCP.Transport)
	}
	return nil
}
