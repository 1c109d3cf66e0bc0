package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

// clearConfigEnv blanks every variable LoadConfig reads so host settings do
// not leak into assertions.
func clearConfigEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"APP_ENV", "LOG_LEVEL", "LOG_FORMAT",
		"AWS_REGION", "AWS_ENDPOINT_URL",
		"EC2_METADATA_ENDPOINT", "AWS_EC2_METADATA_DISABLED", "EC2_METADATA_TIMEOUT",
		"SECRETS_BACKEND", "SECRETS_BREAKER_ENABLED",
		"SERVER_ADDR",
	} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	clearConfigEnv(t)

	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.env"))
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}

	if cfg.LogLevel != "info" {
		t.Errorf("LogLevel = %q, want default %q", cfg.LogLevel, "info")
	}
	if cfg.LogFormat != "text" {
		t.Errorf("LogFormat = %q, want default %q", cfg.LogFormat, "text")
	}
	if cfg.Secrets.Backend != BackendSecretsManager {
		t.Errorf("Secrets.Backend = %q, want %q", cfg.Secrets.Backend, BackendSecretsManager)
	}
	if cfg.Secrets.BreakerEnabled {
		t.Error("Secrets.BreakerEnabled should default to false")
	}
	if cfg.Server.Addr != ":8080" {
		t.Errorf("Server.Addr = %q, want %q", cfg.Server.Addr, ":8080")
	}
	if cfg.Metadata.Disabled {
		t.Error("Metadata.Disabled should default to false")
	}
	if cfg.Metadata.Timeout != 0 {
		t.Errorf("Metadata.Timeout = %v, want 0", cfg.Metadata.Timeout)
	}
	if cfg.DeploymentEnvironment() != Development {
		t.Errorf("DeploymentEnvironment() = %q, want %q", cfg.DeploymentEnvironment(), Development)
	}
	if cfg.Build.Version != "dev" {
		t.Errorf("Build.Version = %q, want %q", cfg.Build.Version, "dev")
	}
}

func TestLoadConfigFromEnvironment(t *testing.T) {
	clearConfigEnv(t)
	t.Setenv("APP_ENV", "Production")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "json")
	t.Setenv("AWS_REGION", "eu-west-1")
	t.Setenv("EC2_METADATA_ENDPOINT", "http://127.0.0.1:1338")
	t.Setenv("EC2_METADATA_TIMEOUT", "3s")
	t.Setenv("SECRETS_BACKEND", "ssm")
	t.Setenv("SECRETS_BREAKER_ENABLED", "true")

	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.env"))
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}

	if cfg.DeploymentEnvironment() != Production {
		t.Errorf("DeploymentEnvironment() = %q, want %q", cfg.DeploymentEnvironment(), Production)
	}
	if cfg.AWS.Region != "eu-west-1" {
		t.Errorf("AWS.Region = %q, want %q", cfg.AWS.Region, "eu-west-1")
	}
	if cfg.Metadata.Endpoint != "http://127.0.0.1:1338" {
		t.Errorf("Metadata.Endpoint = %q", cfg.Metadata.Endpoint)
	}
	if cfg.Metadata.Timeout != 3*time.Second {
		t.Errorf("Metadata.Timeout = %v, want 3s", cfg.Metadata.Timeout)
	}
	if cfg.Secrets.Backend != BackendSSM {
		t.Errorf("Secrets.Backend = %q, want %q", cfg.Secrets.Backend, BackendSSM)
	}
	if !cfg.Secrets.BreakerEnabled {
		t.Error("Secrets.BreakerEnabled should be true")
	}
}

func TestLoadConfigDotenvDoesNotOverrideEnvironment(t *testing.T) {
	clearConfigEnv(t)
	t.Setenv("LOG_LEVEL", "warn")
	t.Cleanup(func() {
		os.Unsetenv("SECRETS_BACKEND")
	})

	path := filepath.Join(t.TempDir(), ".env")
	content := "LOG_LEVEL=debug\nSECRETS_BACKEND=env\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("writing dotenv file: %v", err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}

	if cfg.LogLevel != "warn" {
		t.Errorf("LogLevel = %q, want OS value %q", cfg.LogLevel, "warn")
	}
	if cfg.Secrets.Backend != BackendEnv {
		t.Errorf("Secrets.Backend = %q, want dotenv value %q", cfg.Secrets.Backend, BackendEnv)
	}
}

func TestLoadConfigValidationFailure(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"unknown backend", "SECRETS_BACKEND", "vault"},
		{"bad log level", "LOG_LEVEL", "trace"},
		{"bad metadata endpoint", "EC2_METADATA_ENDPOINT", "not a url"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearConfigEnv(t)
			t.Setenv(tt.key, tt.value)

			_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.env"))
			if err == nil {
				t.Fatal("expected validation error, got nil")
			}

			var cfgErr *ConfigError
			if !errors.As(err, &cfgErr) {
				t.Fatalf("expected *ConfigError, got %T: %v", err, err)
			}
			if cfgErr.Type != ErrValidation {
				t.Errorf("Type = %q, want %q", cfgErr.Type, ErrValidation)
			}
		})
	}
}

func TestLoadConfigParsingFailure(t *testing.T) {
	clearConfigEnv(t)
	t.Setenv("SECRETS_BREAKER_ENABLED", "maybe")

	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.env"))

	var cfgErr *ConfigError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("expected *ConfigError, got %T: %v", err, err)
	}
	if cfgErr.Type != ErrParsing {
		t.Errorf("Type = %q, want %q", cfgErr.Type, ErrParsing)
	}
}
