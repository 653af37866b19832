package cargofive

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/erp/seafreight/internal/domain/freight"
)

// Config holds configuration for the CargoFive public rates API
type Config struct {
	// APIKey is sent in the x-api-key header
	APIKey string
	// BaseURL is the API root, e.g. https://coreapp.cargofive.com/api
	BaseURL string
	// TimeoutSeconds is the HTTP request timeout
	TimeoutSeconds int
	// Verbose logs request URLs and response sizes at info level
	Verbose bool
}

const (
	// ProductionBaseURL is the production API root
	ProductionBaseURL = "https://coreapp.cargofive.com/api"

	defaultTimeoutSeconds = 30
)

// Errors for CargoFive configuration
var (
	ErrConfigMissingAPIKey  = fmt.Errorf("%w: cargofive api key is required", freight.ErrConfiguration)
	ErrConfigInvalidBaseURL = fmt.Errorf("%w: cargofive base url is invalid", freight.ErrConfiguration)
)

// NewConfig creates a new CargoFive configuration with defaults
func NewConfig(apiKey string) *Config {
	return &Config{
		APIKey:         apiKey,
		BaseURL:        ProductionBaseURL,
		TimeoutSeconds: defaultTimeoutSeconds,
	}
}

// Validate validates the configuration and fills in defaults.
// An empty base URL is the omitted one and means production; any other
// value must be an absolute http(s) URL.
func (c *Config) Validate() error {
	if c == nil || strings.TrimSpace(c.APIKey) == "" {
		return ErrConfigMissingAPIKey
	}
	if c.BaseURL == "" {
		c.BaseURL = ProductionBaseURL
	}
	u, err := url.Parse(strings.TrimSpace(c.BaseURL))
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return ErrConfigInvalidBaseURL
	}
	c.BaseURL = strings.TrimRight(u.String(), "/")
	if c.TimeoutSeconds <= 0 {
		c.TimeoutSeconds = defaultTimeoutSeconds
	}
	return nil
}

// ratesURL returns the public rates endpoint
func (c *Config) ratesURL() string {
	return c.BaseURL + "/v1/public/rates"
}

// host returns the API host for span attributes
func (c *Config) host() string {
	if u, err := url.Parse(c.BaseURL); err == nil {
		return u.Host
	}
	return ""
}
