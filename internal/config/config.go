// Package config loads gateway configuration from the environment.
package config

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/sethvargo/go-envconfig"
)

// Config holds everything the gateway reads from its environment. All fields
// have defaults suitable for local development against a kubeconfig.
type Config struct {
	// Port the HTTP server listens on.
	Port string `env:"PORT, default=8000"`

	// Namespace scopes every registry operation. Empty means "resolve from
	// the mounted service account, then kubeconfig, then default".
	Namespace string `env:"NAMESPACE"`

	// DefaultTimeoutSeconds bounds task execution when the caller supplies
	// no deadline of its own.
	DefaultTimeoutSeconds int `env:"A2A_DEFAULT_TIMEOUT, default=300"`

	// PollIntervalSeconds is how often the route table is reconciled against
	// the cluster when running outside a cluster. In-cluster the interval is
	// fixed at 30s.
	PollIntervalSeconds int `env:"A2A_POLL_INTERVAL_SECONDS, default=3"`

	AgentCard AgentCardConfig `env:", prefix=ARK_A2A_AGENT_CARD_"`

	Auth AuthConfig
}

// AgentCardConfig controls the externally reachable URL advertised in agent
// cards. The port falls back to the server port when unset.
type AgentCardConfig struct {
	Protocol string `env:"PROTOCOL, default=http"`
	Host     string `env:"HOST, default=localhost"`
	Port     string `env:"PORT"`
	Path     string `env:"PATH"`
}

// AuthConfig selects how incoming requests are authenticated.
type AuthConfig struct {
	// Mode is one of "open", "sso", or "hybrid". Empty means open.
	Mode string `env:"AUTH_MODE"`

	OIDCIssuerURL     string `env:"OIDC_ISSUER_URL"`
	OIDCApplicationID string `env:"OIDC_APPLICATION_ID"`
}

// Load reads configuration from process environment variables.
func Load(ctx context.Context) (*Config, error) {
	var cfg Config
	if err := envconfig.Process(ctx, &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment config: %w", err)
	}
	if cfg.AgentCard.Port == "" {
		cfg.AgentCard.Port = cfg.Port
	}
	return &cfg, nil
}

// InCluster reports whether the process is running inside a Kubernetes pod.
func InCluster() bool {
	return os.Getenv("KUBERNETES_SERVICE_HOST") != ""
}

// EffectivePollInterval returns the route-table reconcile period: a fixed 30s
// in-cluster, the configured interval otherwise.
func (c *Config) EffectivePollInterval() time.Duration {
	if InCluster() {
		return 30 * time.Second
	}
	return time.Duration(c.PollIntervalSeconds) * time.Second
}

// DefaultTimeout returns the execution deadline as a duration.
func (c *Config) DefaultTimeout() time.Duration {
	return time.Duration(c.DefaultTimeoutSeconds) * time.Second
}

// ExternalBaseURL renders the advertised gateway base URL from the agent card
// settings, e.g. "http://localhost:8000".
func (c *Config) ExternalBaseURL() string {
	return fmt.Sprintf("%s://%s:%s%s", c.AgentCard.Protocol, c.AgentCard.Host, c.AgentCard.Port, c.AgentCard.Path)
}
