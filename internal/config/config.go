// Package config provides configuration loading for the OpenAPI tool bridge.
package config

import (
	configloader "github.com/GabrielNunesIT/go-libs/config-loader"
)

// Config holds the application configuration. Every field can also be set
// through the CLI flags, which take precedence over the environment.
type Config struct {
	// Spec is the specification source: file path, URL, or raw JSON/YAML.
	Spec string `koanf:"spec"`

	// Name is the served MCP server name; defaults to the spec title.
	Name string `koanf:"name"`

	// ServerURL overrides the server URLs declared in the spec.
	ServerURL string `koanf:"server_url"`

	// BearerToken is an explicit token for authenticated endpoints. It wins
	// over an OAuth-obtained token.
	BearerToken string `koanf:"bearer_token"`

	OAuth OAuthConfig `koanf:"oauth"`

	// Headers are sent with every invocation.
	Headers map[string]string `koanf:"headers"`

	// Constants always replace agent-supplied values for matching
	// parameter names.
	Constants map[string]string `koanf:"constants"`

	// IncludePattern and ExcludePattern filter endpoints by raw path.
	IncludePattern string `koanf:"include_pattern"`
	ExcludePattern string `koanf:"exclude_pattern"`

	// TimeoutSeconds bounds each HTTP invocation. Non-positive values fall
	// back to the 30-second default.
	TimeoutSeconds int `koanf:"timeout_seconds"`
}

// OAuthConfig configures the client-credentials token provider.
type OAuthConfig struct {
	ClientID     string   `koanf:"client_id"`
	ClientSecret string   `koanf:"client_secret"`
	TokenURL     string   `koanf:"token_url"`
	Scopes       []string `koanf:"scopes"`
}

// Load returns the application configuration using go-libs config-loader.
func Load() (*Config, error) {
	defaults := Config{
		TimeoutSeconds: 30,
	}

	loader := configloader.NewConfigLoader(
		configloader.WithDefaults(defaults),
		configloader.WithEnv[Config]("OPENAPI_MCP_"),
	)

	cfg, err := loader.Load()
	if err != nil {
		return nil, err
	}

	return &cfg, nil
}
