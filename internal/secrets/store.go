package secrets

import (
	"context"
	"strings"
	"unicode"
)

// Store abstracts the retrieval of a secret's raw string payload so the
// client can run against AWS Secrets Manager, SSM Parameter Store or the
// process environment.
type Store interface {
	// GetSecretString returns the string payload of the secret identified by
	// id. Failures are *types.AppError values carrying one of the secret_*
	// error codes.
	GetSecretString(ctx context.Context, id string) (string, error)
}

// EnvVarName maps a secret identifier to the environment variable EnvStore
// reads: "Production/app/creds" becomes "PRODUCTION_APP_CREDS".
func EnvVarName(id string) string {
	var b strings.Builder
	b.Grow(len(id))
	for _, r := range id {
		if r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)) {
			b.WriteRune(unicode.ToUpper(r))
		} else {
			b.WriteByte('_')
		}
	}
	return b.String()
}
