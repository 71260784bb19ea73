package relaybridge

import (
	"encoding/json"
	"time"

	"gopkg.in/yaml.v3"
)

// CredentialMode selects how the Auth Gate obtains the outbound credential
// substituted into a forwarded request for one provider.
type CredentialMode string

const (
	// CredentialStatic substitutes Provider.UpstreamToken verbatim.
	CredentialStatic CredentialMode = "static"
	// CredentialOAuth2 substitutes a live token fetched via OAuth2
	// client-credentials (internal/oauthcred).
	CredentialOAuth2 CredentialMode = "oauth2"
	// CredentialAWSSigV4 signs the outbound request with AWS SigV4
	// (internal/awssig) instead of substituting a header value.
	CredentialAWSSigV4 CredentialMode = "aws_sigv4"
)

// Provider is one configured upstream the gateway may forward to.
// Immutable after load; providers form an ordered sequence where index 0
// is highest priority.
type Provider struct {
	Name          string `json:"name" yaml:"name"`
	BaseURL       string `json:"base_url" yaml:"base_url"`
	UpstreamToken string `json:"token" yaml:"token"`

	// ModelOverride, when set, rewrites a JSON body's top-level "model"
	// field before dispatch on the buffered path only.
	ModelOverride string `json:"model_override,omitempty" yaml:"model_override,omitempty"`

	CredentialMode CredentialMode  `json:"credential_mode,omitempty" yaml:"credential_mode,omitempty"`
	OAuth2         *OAuth2Config   `json:"oauth2,omitempty" yaml:"oauth2,omitempty"`
	AWSSigV4       *AWSSigV4Config `json:"aws_sigv4,omitempty" yaml:"aws_sigv4,omitempty"`
}

// OAuth2Config configures a CredentialOAuth2 provider.
type OAuth2Config struct {
	TokenURL     string   `json:"token_url" yaml:"token_url"`
	ClientID     string   `json:"client_id" yaml:"client_id"`
	ClientSecret string   `json:"client_secret" yaml:"client_secret"`
	Scopes       []string `json:"scopes,omitempty" yaml:"scopes,omitempty"`
}

// AWSSigV4Config configures a CredentialAWSSigV4 provider.
type AWSSigV4Config struct {
	AccessKeyID     string `json:"access_key_id" yaml:"access_key_id"`
	SecretAccessKey string `json:"secret_access_key" yaml:"secret_access_key"`
	SessionToken    string `json:"session_token,omitempty" yaml:"session_token,omitempty"`
	Service         string `json:"service" yaml:"service"`
	Region          string `json:"region" yaml:"region"`
}

// CircuitBreakerPolicy configures every provider's breaker identically.
type CircuitBreakerPolicy struct {
	FailureThreshold int           `json:"failure_threshold" yaml:"failure_threshold"`
	ResetTimeout     time.Duration `json:"reset_timeout" yaml:"reset_timeout"`
	ProbeProbability float64       `json:"probe_probability" yaml:"probe_probability"`

	// probeSet records that probe_probability was present in the parsed
	// config file, so applyDefaults keeps an explicit 0.
	probeSet bool
}

// GatewayPolicy is the gateway-wide policy block, immutable after load.
type GatewayPolicy struct {
	AccessToken    string                `json:"access_token" yaml:"access_token"`
	RequestTimeout time.Duration         `json:"timeout" yaml:"timeout"`
	CircuitBreaker CircuitBreakerPolicy  `json:"circuit_breaker" yaml:"circuit_breaker"`
	RequestLog     RequestLogConfig      `json:"request_log,omitempty" yaml:"request_log,omitempty"`
}

// RequestLogConfig selects the durable per-attempt audit log backend.
type RequestLogConfig struct {
	// Driver is "sqlite" (default), "postgres", or "none".
	Driver string `json:"driver,omitempty" yaml:"driver,omitempty"`
	DSN    string `json:"dsn,omitempty" yaml:"dsn,omitempty"`
}

// Config is the top-level gateway configuration, loaded once at startup.
type Config struct {
	Gateway   GatewayPolicy `json:"gateway" yaml:"gateway"`
	Providers []Provider    `json:"providers" yaml:"providers"`
}

// applyDefaults mirrors the config file's documented defaults, applied after
// parsing and before validation.
func (c *Config) applyDefaults() {
	if c.Gateway.RequestTimeout == 0 {
		c.Gateway.RequestTimeout = 60 * time.Second
	}
	if c.Gateway.CircuitBreaker.FailureThreshold == 0 {
		c.Gateway.CircuitBreaker.FailureThreshold = 5
	}
	if c.Gateway.CircuitBreaker.ResetTimeout == 0 {
		c.Gateway.CircuitBreaker.ResetTimeout = 600 * time.Second
	}
	if !c.Gateway.CircuitBreaker.probeSet && c.Gateway.CircuitBreaker.ProbeProbability == 0 {
		c.Gateway.CircuitBreaker.ProbeProbability = 0.05
	}
	if c.Gateway.RequestLog.Driver == "" {
		c.Gateway.RequestLog.Driver = "sqlite"
	}
	for i := range c.Providers {
		if c.Providers[i].CredentialMode == "" {
			c.Providers[i].CredentialMode = CredentialStatic
		}
	}
}

// rawCircuitBreakerPolicy mirrors the config file's circuit_breaker block,
// where reset_timeout is written in seconds rather than a Go duration
// string.
type rawCircuitBreakerPolicy struct {
	FailureThreshold int      `yaml:"failure_threshold" json:"failure_threshold"`
	ResetTimeout     float64  `yaml:"reset_timeout" json:"reset_timeout"`
	ProbeProbability *float64 `yaml:"probe_probability" json:"probe_probability"`
}

func (c *CircuitBreakerPolicy) fromRaw(r rawCircuitBreakerPolicy) {
	c.FailureThreshold = r.FailureThreshold
	c.ResetTimeout = time.Duration(r.ResetTimeout * float64(time.Second))
	if r.ProbeProbability != nil {
		c.ProbeProbability = *r.ProbeProbability
		c.probeSet = true
	}
}

func (c *CircuitBreakerPolicy) UnmarshalYAML(value *yaml.Node) error {
	var r rawCircuitBreakerPolicy
	if err := value.Decode(&r); err != nil {
		return err
	}
	c.fromRaw(r)
	return nil
}

func (c *CircuitBreakerPolicy) UnmarshalJSON(data []byte) error {
	var r rawCircuitBreakerPolicy
	if err := json.Unmarshal(data, &r); err != nil {
		return err
	}
	c.fromRaw(r)
	return nil
}

// rawGatewayPolicy mirrors the config file's gateway block, where timeout
// is written in seconds rather than a Go duration string.
type rawGatewayPolicy struct {
	AccessToken    string                `yaml:"access_token" json:"access_token"`
	Timeout        float64               `yaml:"timeout" json:"timeout"`
	CircuitBreaker CircuitBreakerPolicy  `yaml:"circuit_breaker" json:"circuit_breaker"`
	RequestLog     RequestLogConfig      `yaml:"request_log" json:"request_log"`
}

func (g *GatewayPolicy) fromRaw(r rawGatewayPolicy) {
	g.AccessToken = r.AccessToken
	g.RequestTimeout = time.Duration(r.Timeout * float64(time.Second))
	g.CircuitBreaker = r.CircuitBreaker
	g.RequestLog = r.RequestLog
}

func (g *GatewayPolicy) UnmarshalYAML(value *yaml.Node) error {
	var r rawGatewayPolicy
	if err := value.Decode(&r); err != nil {
		return err
	}
	g.fromRaw(r)
	return nil
}

func (g *GatewayPolicy) UnmarshalJSON(data []byte) error {
	var r rawGatewayPolicy
	if err := json.Unmarshal(data, &r); err != nil {
		return err
	}
	g.fromRaw(r)
	return nil
}
