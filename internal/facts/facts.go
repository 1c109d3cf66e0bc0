// Package facts exposes instance metadata and secrets under two namespaces,
// EC2 and Secrets. It adds no behavior of its own.
package facts

import (
	"context"

	"hostfacts/internal/metadata"
	"hostfacts/internal/secrets"
)

// Helper groups the EC2 and Secrets namespaces.
type Helper struct {
	EC2     EC2
	Secrets Secrets
}

// New creates a Helper over the given clients.
func New(md *metadata.Client, sc *secrets.Client) *Helper {
	return &Helper{
		EC2:     EC2{client: md},
		Secrets: Secrets{client: sc},
	}
}

// EC2 answers questions about the host instance.
type EC2 struct {
	client *metadata.Client
}

// GetInstanceID returns the instance ID, e.g. "i-1234567890abcdef0". The
// fact is empty off EC2 and unknown when the metadata service failed.
func (e EC2) GetInstanceID(ctx context.Context) metadata.Fact {
	return e.client.InstanceID(ctx)
}

// GetInstanceRegion returns the instance's region, or false when it cannot
// be determined.
func (e EC2) GetInstanceRegion(ctx context.Context) (metadata.Region, bool) {
	return e.client.Region(ctx)
}

// Secrets reads environment-scoped secrets.
type Secrets struct {
	client *secrets.Client
}

// GetSecretByKey returns one field of the secret folder/secretName.
func (s Secrets) GetSecretByKey(ctx context.Context, folder, secretName, key string) (string, bool) {
	return s.client.GetSecretByKey(ctx, folder, secretName, key)
}

// GetSecretAsMap returns every field of the secret folder/secretName, or nil.
func (s Secrets) GetSecretAsMap(ctx context.Context, folder, secretName string) map[string]string {
	return s.client.GetSecretAsMap(ctx, folder, secretName)
}
