package secrets

import (
	"context"
	"fmt"
	"os"

	"hostfacts/internal/types"
)

// EnvStore implements Store by resolving secret payloads from OS environment
// variables. This is the provider for local development, where the JSON
// payload is set directly in the environment or via a .env file.
type EnvStore struct {
	lookupEnv func(string) (string, bool)
}

// NewEnvStore creates a new EnvStore backed by os.LookupEnv.
func NewEnvStore() *EnvStore {
	return &EnvStore{lookupEnv: os.LookupEnv}
}

// GetSecretString looks up EnvVarName(id).
func (s *EnvStore) GetSecretString(_ context.Context, id string) (string, error) {
	name := EnvVarName(id)
	value, ok := s.lookupEnv(name)
	if !ok {
		return "", types.NewAppErrorWithDetails(
			types.ErrCodeSecretNotFound,
			fmt.Sprintf("secret %s not found in environment", id),
			nil,
			map[string]any{"env_var": name},
		)
	}
	return value, nil
}
