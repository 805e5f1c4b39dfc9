// Package config loads and validates the gateway configuration.
//
// Configuration is read once at process start from flags and environment
// variables (via viper); it is not hot-reloaded.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Authentication methods against the Homebox API.
const (
	// AuthMethodPassword exchanges email+password for a bearer token.
	AuthMethodPassword = "password"

	// AuthMethodToken uses a pre-issued static API token, never renewed.
	AuthMethodToken = "token"
)

// Config holds the gateway configuration.
type Config struct {
	// HomeboxURL is the base URL of the Homebox instance.
	HomeboxURL string

	// AuthMethod selects how to authenticate against Homebox:
	// "password" or "token".
	AuthMethod string

	// Email and Password are used with the password method.
	Email    string
	Password string

	// Token is the pre-issued API token used with the token method.
	Token string

	// MCPAuthEnabled gates the SSE endpoint behind a bearer token.
	MCPAuthEnabled bool

	// MCPAuthToken is the secret required when the gate is enabled.
	MCPAuthToken string

	// Host and Port are the listen address of the gateway.
	Host string
	Port int
}

// Keys used in viper. Flags are bound to the same keys by the serve command,
// env vars via BindEnv below.
const (
	keyHomeboxURL     = "homebox-url"
	keyAuthMethod     = "auth-method"
	keyEmail          = "homebox-email"
	keyPassword       = "homebox-password"
	keyToken          = "homebox-token"
	keyMCPAuthEnabled = "mcp-auth-enabled"
	keyMCPAuthToken   = "mcp-auth-token"
	keyHost           = "host"
	keyPort           = "port"
)

// SetDefaults registers defaults and environment bindings in viper.
func SetDefaults() {
	viper.SetDefault(keyHomeboxURL, "http://localhost:7745")
	viper.SetDefault(keyAuthMethod, AuthMethodPassword)
	viper.SetDefault(keyHost, "0.0.0.0")
	viper.SetDefault(keyPort, 8099)

	// Environment variable names match the original addon configuration.
	_ = viper.BindEnv(keyHomeboxURL, "HOMEBOX_URL")
	_ = viper.BindEnv(keyAuthMethod, "AUTH_METHOD")
	_ = viper.BindEnv(keyEmail, "HOMEBOX_EMAIL")
	_ = viper.BindEnv(keyPassword, "HOMEBOX_PASSWORD")
	_ = viper.BindEnv(keyToken, "HOMEBOX_TOKEN")
	_ = viper.BindEnv(keyMCPAuthEnabled, "MCP_AUTH_ENABLED")
	_ = viper.BindEnv(keyMCPAuthToken, "MCP_AUTH_TOKEN")
	_ = viper.BindEnv(keyHost, "SERVER_HOST")
	_ = viper.BindEnv(keyPort, "SERVER_PORT")
}

// Load reads the configuration from viper and validates it.
func Load() (*Config, error) {
	cfg := &Config{
		HomeboxURL:     viper.GetString(keyHomeboxURL),
		AuthMethod:     viper.GetString(keyAuthMethod),
		Email:          viper.GetString(keyEmail),
		Password:       viper.GetString(keyPassword),
		Token:          viper.GetString(keyToken),
		MCPAuthEnabled: viper.GetBool(keyMCPAuthEnabled),
		MCPAuthToken:   viper.GetString(keyMCPAuthToken),
		Host:           viper.GetString(keyHost),
		Port:           viper.GetInt(keyPort),
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration for consistency.
func (c *Config) Validate() error {
	if c.HomeboxURL == "" {
		return fmt.Errorf("homebox URL is required")
	}

	switch c.AuthMethod {
	case AuthMethodPassword:
		if c.Email == "" || c.Password == "" {
			return fmt.Errorf("auth method %q requires homebox email and password", AuthMethodPassword)
		}
		// Password and static-token credentials are mutually exclusive;
		// guessing a precedence would silently ignore one of them.
		if c.Token != "" {
			return fmt.Errorf("auth method %q must not be combined with a static token", AuthMethodPassword)
		}
	case AuthMethodToken:
		if c.Token == "" {
			return fmt.Errorf("auth method %q requires a homebox token", AuthMethodToken)
		}
		if c.Email != "" || c.Password != "" {
			return fmt.Errorf("auth method %q must not be combined with email/password credentials", AuthMethodToken)
		}
	default:
		return fmt.Errorf("unknown auth method %q (expected %q or %q)", c.AuthMethod, AuthMethodPassword, AuthMethodToken)
	}

	if c.MCPAuthEnabled && c.MCPAuthToken == "" {
		return fmt.Errorf("mcp auth is enabled but no token is configured")
	}

	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Port)
	}

	return nil
}

// APIBaseURL returns the base URL for Homebox API calls.
func (c *Config) APIBaseURL() string {
	return strings.TrimRight(c.HomeboxURL, "/") + "/api/v1"
}
