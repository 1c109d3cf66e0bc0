package facts

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"

	"hostfacts/internal/config"
	"hostfacts/internal/metadata"
	"hostfacts/internal/secrets"
)

// fallbackRegion is used when neither configuration nor instance metadata
// names a region.
const fallbackRegion = "us-east-1"

// Components holds everything NewFromConfig wires, for callers that need
// more than the Helper (e.g. health probes).
type Components struct {
	Helper   *Helper
	Metadata *metadata.Client
	Secrets  *secrets.Client
	Store    secrets.Store
	AWS      aws.Config
}

// NewFromConfig builds a Helper from cfg. The secrets store region is, in
// order: AWS_REGION, the instance region, us-east-1.
func NewFromConfig(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Helper, error) {
	c, err := Build(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	return c.Helper, nil
}

// Build wires the metadata client, secrets store and secrets client.
func Build(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Components, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must not be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	mdOpts := []metadata.Option{
		metadata.WithLogger(logger),
		metadata.WithDisabled(cfg.Metadata.Disabled),
		metadata.WithTimeout(cfg.Metadata.Timeout),
	}
	var md *metadata.Client
	if cfg.Metadata.Endpoint != "" {
		md = metadata.NewWithEndpoint(cfg.Metadata.Endpoint, metadata.NewCache(), mdOpts...)
	}

	region := cfg.AWS.Region
	if region == "" && md != nil {
		if r, ok := md.Region(ctx); ok {
			region = r.Name
		}
	}

	loadOpts := []func(*awsconfig.LoadOptions) error{}
	if region != "" {
		loadOpts = append(loadOpts, awsconfig.WithRegion(region))
	}
	if cfg.AWS.EndpointURL != "" {
		loadOpts = append(loadOpts, awsconfig.WithBaseEndpoint(cfg.AWS.EndpointURL))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("loading AWS config: %w", err)
	}

	if md == nil {
		md = metadata.NewFromConfig(awsCfg, metadata.NewCache(), mdOpts...)
	}
	if awsCfg.Region == "" {
		if r, ok := md.Region(ctx); ok {
			awsCfg.Region = r.Name
		} else {
			awsCfg.Region = fallbackRegion
		}
	}

	store, err := newStore(cfg.Secrets, awsCfg)
	if err != nil {
		return nil, err
	}
	store = withBreaker(cfg.Secrets, store)

	logger.Info("hostfacts initialized",
		slog.String("environment", string(cfg.DeploymentEnvironment())),
		slog.String("region", awsCfg.Region),
		slog.String("secrets_backend", cfg.Secrets.Backend),
		slog.Bool("secrets_breaker", cfg.Secrets.BreakerEnabled),
	)

	sc := secrets.NewClient(store, secrets.WithLogger(logger))
	return &Components{
		Helper:   New(md, sc),
		Metadata: md,
		Secrets:  sc,
		Store:    store,
		AWS:      awsCfg,
	}, nil
}

// withBreaker wraps store in a circuit breaker when the configuration asks
// for one. Without it every call reaches the store.
func withBreaker(cfg config.SecretsConfig, store secrets.Store) secrets.Store {
	if !cfg.BreakerEnabled {
		return store
	}
	return secrets.NewBreakerStore(store, "secrets-"+cfg.Backend)
}

func newStore(cfg config.SecretsConfig, awsCfg aws.Config) (secrets.Store, error) {
	switch cfg.Backend {
	case config.BackendSecretsManager, "":
		return secrets.NewSecretsManagerStore(awsCfg), nil
	case config.BackendSSM:
		return secrets.NewParameterStore(awsCfg), nil
	case config.BackendEnv:
		return secrets.NewEnvStore(), nil
	default:
		return nil, fmt.Errorf("unknown secrets backend %q", cfg.Backend)
	}
}
