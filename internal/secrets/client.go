// Package secrets fetches flat JSON key/value secrets from a managed store,
// scoped by the deployment environment.
//
// Identifiers have the form "{Environment}/{folder}/{name}", where the
// environment is resolved from APP_ENV on every call. Secrets are not cached.
package secrets

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"hostfacts/internal/config"
	"hostfacts/internal/types"
)

// SecretID builds the fully-qualified identifier of a secret. Components are
// not validated.
func SecretID(env config.Environment, folder, name string) string {
	return fmt.Sprintf("%s/%s/%s", env, folder, name)
}

// Client reads secrets from a Store.
type Client struct {
	store       Store
	environment func() config.Environment
	logger      *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithEnvironment overrides how the deployment environment is resolved.
// The default is config.CurrentEnvironment.
func WithEnvironment(fn func() config.Environment) Option {
	return func(c *Client) {
		if fn != nil {
			c.environment = fn
		}
	}
}

// NewClient creates a Client reading from store.
func NewClient(store Store, opts ...Option) *Client {
	c := &Client{
		store:       store,
		environment: config.CurrentEnvironment,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Fetch returns the raw string payload of folder/name in the current
// environment.
func (c *Client) Fetch(ctx context.Context, folder, name string) (string, error) {
	id := SecretID(c.environment(), folder, name)
	payload, err := c.store.GetSecretString(ctx, id)
	if err != nil {
		return "", err
	}
	c.logger.Debug("secret fetched",
		slog.String("secret_id", id),
		slog.Any("payload", types.SecretString(payload)),
		slog.Int("payload_length", len(payload)),
	)
	return payload, nil
}

// Map fetches folder/name and decodes it as a flat JSON object of strings.
// A value that is not a JSON string fails the whole secret; no partial map
// is returned.
func (c *Client) Map(ctx context.Context, folder, name string) (map[string]string, error) {
	fields, err := c.fields(ctx, folder, name)
	if err != nil {
		return nil, err
	}

	result := make(map[string]string, len(fields))
	for key, raw := range fields {
		value, err := decodeString(raw)
		if err != nil {
			return nil, malformed(folder, name, fmt.Sprintf("value of %q is not a string", key), err)
		}
		result[key] = value
	}
	return result, nil
}

// Value fetches folder/name and decodes the single field key. A missing key
// is not an error and reports false. Other fields are not inspected.
func (c *Client) Value(ctx context.Context, folder, name, key string) (string, bool, error) {
	fields, err := c.fields(ctx, folder, name)
	if err != nil {
		return "", false, err
	}

	raw, ok := fields[key]
	if !ok {
		return "", false, nil
	}
	value, err := decodeString(raw)
	if err != nil {
		return "", false, malformed(folder, name, fmt.Sprintf("value of %q is not a string", key), err)
	}
	return value, true, nil
}

// GetSecretAsMap is Map with failures logged and absorbed: it returns nil
// when the secret cannot be fetched or decoded.
func (c *Client) GetSecretAsMap(ctx context.Context, folder, name string) map[string]string {
	m, err := c.Map(ctx, folder, name)
	if err != nil {
		c.logFailure(folder, name, err)
		return nil
	}
	return m
}

// GetSecretByKey is Value with failures logged and absorbed: it reports
// false when the key is missing or the secret cannot be fetched or decoded.
func (c *Client) GetSecretByKey(ctx context.Context, folder, name, key string) (string, bool) {
	value, ok, err := c.Value(ctx, folder, name, key)
	if err != nil {
		c.logFailure(folder, name, err)
		return "", false
	}
	return value, ok
}

func (c *Client) fields(ctx context.Context, folder, name string) (map[string]json.RawMessage, error) {
	payload, err := c.Fetch(ctx, folder, name)
	if err != nil {
		return nil, err
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(payload), &fields); err != nil {
		return nil, malformed(folder, name, "payload is not a JSON object", err)
	}
	if fields == nil {
		// "null" decodes into a nil map.
		return nil, malformed(folder, name, "payload is not a JSON object", nil)
	}
	return fields, nil
}

func (c *Client) logFailure(folder, name string, err error) {
	c.logger.Error("secret lookup failed",
		slog.String("folder", folder),
		slog.String("secret", name),
		slog.String("code", string(types.CodeOf(err))),
		slog.String("error", err.Error()),
	)
}

// decodeString accepts only JSON strings; null, numbers, booleans, arrays
// and objects are rejected.
func decodeString(raw json.RawMessage) (string, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || raw[0] != '"' {
		return "", fmt.Errorf("expected JSON string, got %s", kindOf(raw))
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", err
	}
	return s, nil
}

func kindOf(raw json.RawMessage) string {
	if len(raw) == 0 {
		return "nothing"
	}
	switch raw[0] {
	case '{':
		return "object"
	case '[':
		return "array"
	case 'n':
		return "null"
	case 't', 'f':
		return "boolean"
	default:
		return "number"
	}
}

func malformed(folder, name, message string, err error) error {
	return types.NewAppErrorWithDetails(types.ErrCodeSecretMalformed, message, err,
		map[string]any{"folder": folder, "secret": name})
}
