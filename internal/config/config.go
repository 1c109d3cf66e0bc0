// Package config defines the process configuration for hostfacts and the
// deployment-environment resolver used to scope secret identifiers.
//
// Values are resolved via a priority chain:
//
//	OS Environment (Highest) -> Dotenv File -> struct defaults (Lowest)
package config

import "time"

// Config is the top-level configuration struct. It is populated once at
// startup and never modified.
type Config struct {
	// Environment is the raw APP_ENV value. Use Config.DeploymentEnvironment
	// for the resolved prefix.
	Environment string `envconfig:"APP_ENV"`
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info" validate:"oneof=debug info warn error"`
	LogFormat   string `envconfig:"LOG_FORMAT" default:"text" validate:"oneof=text json"`

	AWS      AWSConfig
	Metadata MetadataConfig
	Secrets  SecretsConfig
	Server   ServerConfig

	// Build Metadata (Injected via ldflags, not Env)
	Build BuildInfo
}

// AWSConfig holds regional configuration shared by the SDK clients.
type AWSConfig struct {
	// Region is optional; when empty the instance region is used, then us-east-1.
	Region string `envconfig:"AWS_REGION"`

	// LocalStack Support (Empty in Prod)
	EndpointURL string `envconfig:"AWS_ENDPOINT_URL" validate:"omitempty,url"`
}

// MetadataConfig controls the EC2 instance metadata client.
type MetadataConfig struct {
	Endpoint string `envconfig:"EC2_METADATA_ENDPOINT" validate:"omitempty,url"`
	Disabled bool   `envconfig:"AWS_EC2_METADATA_DISABLED" default:"false"`
	// Timeout bounds each metadata lookup. Zero leaves the transport default.
	Timeout time.Duration `envconfig:"EC2_METADATA_TIMEOUT" default:"0s"`
}

// Secrets backends.
const (
	BackendSecretsManager = "secretsmanager"
	BackendSSM            = "ssm"
	BackendEnv            = "env"
)

// SecretsConfig selects and tunes the secrets store.
type SecretsConfig struct {
	Backend        string `envconfig:"SECRETS_BACKEND" default:"secretsmanager" validate:"oneof=secretsmanager ssm env"`
	BreakerEnabled bool   `envconfig:"SECRETS_BREAKER_ENABLED" default:"false"`
}

// ServerConfig holds the listen address for the optional HTTP surface.
type ServerConfig struct {
	Addr string `envconfig:"SERVER_ADDR" default:":8080" validate:"required"`
}

// DeploymentEnvironment resolves the configured APP_ENV value.
func (c *Config) DeploymentEnvironment() Environment {
	return ResolveEnvironment(c.Environment)
}

// BuildInfo holds build-time metadata injected via ldflags.
// These values are NOT populated from environment variables.
type BuildInfo struct {
	Version   string
	Commit    string
	BuildTime string
}

// ConfigErrorType categorizes configuration loading failures to aid debugging.
type ConfigErrorType string

const (
	// ErrValidation indicates the configuration failed struct validation rules.
	ErrValidation ConfigErrorType = "VALIDATION_FAILED"
	// ErrParsing indicates a failure when parsing environment variable values
	// into their target types.
	ErrParsing ConfigErrorType = "PARSING_FAILED"
)
