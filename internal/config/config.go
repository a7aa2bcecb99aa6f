// Package config loads the proxy configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"

	"sheetproxy/helper"
	"sheetproxy/internal/model"

	"github.com/joho/godotenv"
)

const DefaultPort = 3001

// Configuration validation errors.
var (
	ErrMissingProductURL = errors.New("PRODUCT_DATABASE_URL is required")
	ErrMissingOrderURL   = errors.New("ORDER_DATABASE_URL is required")
	ErrMissingAgentURL   = errors.New("AGENT_DATABASE_URL is required")
	ErrInvalidSourceURL  = errors.New("source URL must be an absolute http(s) URL")
	ErrInvalidPort       = errors.New("PORT must be between 1 and 65535")
	ErrInvalidCallback   = errors.New("LEGACY_CALLBACK must be a valid identifier")
	ErrInvalidLogLevel   = errors.New("LOG_LEVEL must be one of: debug, info, warn, error")
)

type Config struct {
	ProductURL     string
	OrderURL       string
	AgentURL       string
	Port           int
	LegacyCallback string
	AuditDSN       string
	LogLevel       string
}

// Load reads envFile (if it exists) into the process environment and builds
// a validated Config. Variables already set in the environment win.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to load env file: %w", err)
		}
	}

	cfg, err := FromEnv()
	if err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

func FromEnv() (*Config, error) {
	cfg := &Config{
		ProductURL:     os.Getenv("PRODUCT_DATABASE_URL"),
		OrderURL:       os.Getenv("ORDER_DATABASE_URL"),
		AgentURL:       os.Getenv("AGENT_DATABASE_URL"),
		Port:           DefaultPort,
		LegacyCallback: os.Getenv("LEGACY_CALLBACK"),
		AuditDSN:       os.Getenv("AUDIT_DATABASE_URL"),
		LogLevel:       strings.ToLower(strings.TrimSpace(os.Getenv("LOG_LEVEL"))),
	}

	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}

	if p := os.Getenv("PORT"); p != "" {
		port, err := strconv.Atoi(p)
		if err != nil {
			return nil, fmt.Errorf("%w: %q", ErrInvalidPort, p)
		}
		cfg.Port = port
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	required := []struct {
		value string
		err   error
	}{
		{c.ProductURL, ErrMissingProductURL},
		{c.OrderURL, ErrMissingOrderURL},
		{c.AgentURL, ErrMissingAgentURL},
	}

	for _, r := range required {
		if r.value == "" {
			return r.err
		}
		u, err := url.Parse(r.value)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("%w: %s", ErrInvalidSourceURL, r.value)
		}
	}

	if c.Port < 1 || c.Port > 65535 {
		return ErrInvalidPort
	}

	if c.LegacyCallback != "" && !helper.IsValidIdentifier(c.LegacyCallback) {
		return ErrInvalidCallback
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[c.LogLevel] {
		return ErrInvalidLogLevel
	}

	return nil
}

// Sources maps each resource to its upstream base URL.
func (c *Config) Sources() map[model.Resource]string {
	return map[model.Resource]string{
		model.ResourceProducts: c.ProductURL,
		model.ResourceOrders:   c.OrderURL,
		model.ResourceAgents:   c.AgentURL,
	}
}

func (c *Config) Addr() string {
	return ":" + strconv.Itoa(c.Port)
}

func (c *Config) String() string {
	return fmt.Sprintf("Config{Port: %d, LegacyCallback: %q, Audit: %t, LogLevel: %s}",
		c.Port, c.LegacyCallback, c.AuditDSN != "", c.LogLevel)
}
