// Package metadata reads host identity and placement from the EC2 Instance
// Metadata Service (IMDSv2) and memoizes the results in an injected Cache.
//
// Lookups never fail from the caller's point of view. A fact is either
// populated, empty (not running on an EC2 Linux host) or unknown (the
// metadata service could not be reached or returned an unusable body).
// Unknown facts are refetched on the next read.
package metadata

import (
	"context"
	"io"
	"log/slog"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/ec2/imds"
	"github.com/aws/smithy-go/middleware"
	smithyhttp "github.com/aws/smithy-go/transport/http"
	"golang.org/x/sync/singleflight"
)

// hostOS is the only GOOS for which the metadata service is queried.
const hostOS = "linux"

// maxBodySize caps how much of a metadata response is read.
const maxBodySize = 64 << 10

// tokenTTL is the lifetime requested for IMDSv2 session tokens. The SDK
// requests five minutes and offers no option for it.
const tokenTTL = 6 * time.Hour

const tokenTTLHeader = "X-aws-ec2-metadata-token-ttl-seconds"

// metadataAPI is the subset of the IMDS client used by Client.
// This interface enables testing with a mock client.
type metadataAPI interface {
	GetMetadata(ctx context.Context, params *imds.GetMetadataInput, optFns ...func(*imds.Options)) (*imds.GetMetadataOutput, error)
}

// Client resolves instance metadata facts through a Cache.
type Client struct {
	api      metadataAPI
	cache    *Cache
	goos     string
	disabled bool
	timeout  time.Duration
	logger   *slog.Logger

	group singleflight.Group
}

// Option configures a Client.
type Option func(*Client)

// WithGOOS overrides the detected platform.
func WithGOOS(goos string) Option {
	return func(c *Client) {
		c.goos = goos
	}
}

// WithDisabled makes every lookup behave as if the process were not running
// on EC2.
func WithDisabled(disabled bool) Option {
	return func(c *Client) {
		c.disabled = disabled
	}
}

// WithTimeout bounds each metadata fetch. Zero means no bound beyond the
// caller's context.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.timeout = d
	}
}

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// New creates a Client backed by api. A nil cache gets a fresh one.
func New(api metadataAPI, cache *Cache, opts ...Option) *Client {
	if cache == nil {
		cache = NewCache()
	}
	c := &Client{
		api:    api,
		cache:  cache,
		goos:   runtime.GOOS,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// NewFromConfig creates a Client using the IMDS client derived from cfg.
func NewFromConfig(cfg aws.Config, cache *Cache, opts ...Option) *Client {
	return New(imds.NewFromConfig(cfg, tokenOptions), cache, opts...)
}

// NewWithEndpoint creates a Client talking to the metadata service at
// endpoint, e.g. a local emulator.
func NewWithEndpoint(endpoint string, cache *Cache, opts ...Option) *Client {
	return New(imds.New(imds.Options{Endpoint: endpoint}, tokenOptions), cache, opts...)
}

// tokenOptions pins the IMDSv2 token TTL and disables the tokenless IMDSv1
// fallback.
func tokenOptions(o *imds.Options) {
	o.EnableFallback = aws.FalseTernary
	o.APIOptions = append(o.APIOptions, addTokenTTL)
}

// addTokenTTL rewrites the TTL header of PUT /latest/api/token. It is added
// after the SDK's own serializer for that header; requests without the header
// pass through untouched.
func addTokenTTL(stack *middleware.Stack) error {
	return stack.Serialize.Add(middleware.SerializeMiddlewareFunc("HostfactsTokenTTL",
		func(ctx context.Context, in middleware.SerializeInput, next middleware.SerializeHandler) (
			middleware.SerializeOutput, middleware.Metadata, error,
		) {
			if req, ok := in.Request.(*smithyhttp.Request); ok && req.Header.Get(tokenTTLHeader) != "" {
				req.Header.Set(tokenTTLHeader, strconv.Itoa(int(tokenTTL/time.Second)))
			}
			return next.HandleSerialize(ctx, in)
		}), middleware.After)
}

// InstanceID returns the EC2 instance ID fact.
func (c *Client) InstanceID(ctx context.Context) Fact {
	return c.Lookup(ctx, KeyInstanceID)
}

// Region returns the instance's region. It reports false when the region
// fact is not populated or does not name a known region format.
func (c *Client) Region(ctx context.Context) (Region, bool) {
	f := c.Lookup(ctx, KeyRegion)
	if !f.Populated() {
		return Region{}, false
	}
	region, ok := LookupRegion(f.Value)
	if !ok {
		c.logger.Warn("unresolvable instance region", slog.String("region", f.Value))
	}
	return region, ok
}

// Lookup returns the fact for key, fetching it when it is not cached or the
// cached fact is unknown.
func (c *Client) Lookup(ctx context.Context, key Key) Fact {
	if f, ok := c.cache.Get(key); ok && f.State != StateUnknown {
		return f
	}

	if c.disabled || c.goos != hostOS {
		f := Fact{State: StateEmpty}
		c.cache.Set(key, f)
		return f
	}

	// Concurrent readers of the same key share one round-trip. The shared
	// fetch outlives any single caller; each caller still stops waiting when
	// its own context ends.
	ch := c.group.DoChan(string(key), func() (any, error) {
		f := c.fetch(context.WithoutCancel(ctx), key)
		c.cache.Set(key, f)
		return f, nil
	})
	select {
	case res := <-ch:
		return res.Val.(Fact)
	case <-ctx.Done():
		return Fact{State: StateUnknown}
	}
}

func (c *Client) fetch(ctx context.Context, key Key) Fact {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	out, err := c.api.GetMetadata(ctx, &imds.GetMetadataInput{Path: string(key)})
	if err != nil {
		c.logger.Warn("instance metadata request failed",
			slog.String("key", string(key)),
			slog.String("error", err.Error()),
		)
		return Fact{State: StateUnknown}
	}
	defer out.Content.Close()

	body, err := io.ReadAll(io.LimitReader(out.Content, maxBodySize))
	if err != nil {
		c.logger.Warn("reading instance metadata response failed",
			slog.String("key", string(key)),
			slog.String("error", err.Error()),
		)
		return Fact{State: StateUnknown}
	}

	value := strings.TrimSpace(string(body))
	if !usable(value) {
		c.logger.Warn("instance metadata returned an unusable body",
			slog.String("key", string(key)),
			slog.Int("body_length", len(body)),
		)
		return Fact{State: StateUnknown}
	}

	return Fact{State: StatePopulated, Value: value}
}

// usable rejects empty bodies and HTML error pages.
func usable(value string) bool {
	return value != "" && !strings.Contains(strings.ToLower(value), "html")
}
