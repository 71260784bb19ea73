package relaybridge

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultConfigPath is used when CONFIG_PATH is unset.
const DefaultConfigPath = "./config.yaml"

// ConfigPathFromEnv returns the CONFIG_PATH environment variable, or
// DefaultConfigPath if unset.
func ConfigPathFromEnv() string {
	if p := os.Getenv("CONFIG_PATH"); p != "" {
		return p
	}
	return DefaultConfigPath
}

// LoadConfig reads and parses a config file from the given path, applies
// defaults, validates it, and compiles it against the packaged JSON
// schema. Supported formats: YAML (.yaml, .yml) and JSON (.json).
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var cfg Config
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parsing YAML config: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parsing JSON config: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported config file extension %q: use .yaml, .yml, or .json", ext)
	}

	cfg.applyDefaults()

	asJSON, err := json.Marshal(cfg)
	if err != nil {
		return nil, fmt.Errorf("re-marshal config for schema validation: %w", err)
	}
	if err := validateSchema(asJSON); err != nil {
		return nil, fmt.Errorf("config schema validation: %w", err)
	}

	if err := ValidateConfig(cfg); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return &cfg, nil
}

// ValidateConfig applies the semantic checks a JSON Schema cannot express:
// name uniqueness, and cross-field numeric ranges. Startup fails loudly on
// violation.
func ValidateConfig(cfg Config) error {
	if len(cfg.Providers) == 0 {
		return fmt.Errorf("at least one provider is required")
	}

	seen := make(map[string]bool, len(cfg.Providers))
	for _, p := range cfg.Providers {
		if p.Name == "" {
			return fmt.Errorf("provider name must not be empty")
		}
		if seen[p.Name] {
			return fmt.Errorf("duplicate provider name %q", p.Name)
		}
		seen[p.Name] = true

		if p.BaseURL == "" {
			return fmt.Errorf("provider %q: base_url must not be empty", p.Name)
		}
		if providerBaseURLHasTrailingSlash(p.BaseURL) {
			return fmt.Errorf("provider %q: base_url must not have a trailing slash", p.Name)
		}

		switch p.CredentialMode {
		case CredentialStatic:
		case CredentialOAuth2:
			if p.OAuth2 == nil {
				return fmt.Errorf("provider %q: credential_mode oauth2 requires an oauth2 block", p.Name)
			}
		case CredentialAWSSigV4:
			if p.AWSSigV4 == nil {
				return fmt.Errorf("provider %q: credential_mode aws_sigv4 requires an aws_sigv4 block", p.Name)
			}
		default:
			return fmt.Errorf("provider %q: unknown credential_mode %q", p.Name, p.CredentialMode)
		}
	}

	if cfg.Gateway.CircuitBreaker.FailureThreshold < 1 {
		return fmt.Errorf("circuit_breaker.failure_threshold must be >= 1")
	}
	if cfg.Gateway.CircuitBreaker.ResetTimeout <= 0 {
		return fmt.Errorf("circuit_breaker.reset_timeout must be > 0")
	}
	if p := cfg.Gateway.CircuitBreaker.ProbeProbability; p < 0 || p > 1 {
		return fmt.Errorf("circuit_breaker.probe_probability must be in [0, 1]")
	}

	switch cfg.Gateway.RequestLog.Driver {
	case "sqlite", "postgres", "none":
	default:
		return fmt.Errorf("request_log.driver must be one of sqlite, postgres, none")
	}

	return nil
}
