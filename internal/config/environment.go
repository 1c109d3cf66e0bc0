package config

import (
	"os"
	"strings"
)

// EnvironmentVar is the process environment variable that selects the
// deployment environment.
const EnvironmentVar = "APP_ENV"

// Environment is a deployment stage. Its string value is used verbatim as
// the first component of a secret identifier.
type Environment string

const (
	Development Environment = "Development"
	Staging     Environment = "Staging"
	Production  Environment = "Production"
)

// ResolveEnvironment maps a raw value to an Environment, case-insensitively.
// Unrecognized and empty values resolve to Development.
func ResolveEnvironment(value string) Environment {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "staging":
		return Staging
	case "production":
		return Production
	default:
		return Development
	}
}

// EnvironmentFrom resolves the environment using the given lookup function.
func EnvironmentFrom(lookup func(string) (string, bool)) Environment {
	value, _ := lookup(EnvironmentVar)
	return ResolveEnvironment(value)
}

// CurrentEnvironment reads APP_ENV from the process environment. It is
// evaluated on every call so changes to the environment take effect.
func CurrentEnvironment() Environment {
	return EnvironmentFrom(os.LookupEnv)
}
