// Package factory constructs adapters and model clients by vendor tag. It is
// the only package that depends on every vendor implementation, keeping the
// chat contracts free of import cycles.
package factory

import (
	"net/http"

	"github.com/devconsole/modelbridge/core/catalog"
	"github.com/devconsole/modelbridge/core/errs"
	"github.com/devconsole/modelbridge/core/vendors"
	"github.com/devconsole/modelbridge/providers/chat"
	"github.com/devconsole/modelbridge/providers/chat/anthropic"
	"github.com/devconsole/modelbridge/providers/chat/bedrock"
)

// Option customizes a client built by [NewModelClient]. Options that do not
// apply to the selected vendor are ignored.
type Option func(*config)

type config struct {
	catalog        *catalog.Catalog
	httpClient     *http.Client
	bedrockRuntime bedrock.Runtime
	apiKey         string
}

// WithCatalog replaces the built-in model catalog.
func WithCatalog(c *catalog.Catalog) Option {
	return func(cfg *config) { cfg.catalog = c }
}

// WithHTTPClient injects the HTTP client used by the direct-API path.
func WithHTTPClient(client *http.Client) Option {
	return func(cfg *config) { cfg.httpClient = client }
}

// WithBedrockRuntime injects the transport used by the managed-gateway path.
// Useful for request signing stacks and test doubles.
func WithBedrockRuntime(runtime bedrock.Runtime) Option {
	return func(cfg *config) { cfg.bedrockRuntime = runtime }
}

// WithAPIKey overrides the credential read from the environment on the
// direct-API path.
func WithAPIKey(apiKey string) Option {
	return func(cfg *config) { cfg.apiKey = apiKey }
}

// NewAdapter returns the request/response adapter for vendor. Vendors without
// an implementation fail with errs.ErrNotSupported.
func NewAdapter(vendor vendors.Vendor) (chat.Adapter, error) {
	switch vendor {
	case vendors.Anthropic:
		return anthropic.NewAdapter(), nil
	case vendors.AWS:
		return bedrock.NewAdapter(), nil
	}
	return nil, errs.NotSupportedf("no adapter for vendor %q", vendor)
}

// NewModelClient returns a ready-to-use client for vendor, configured from
// the environment and then adjusted by opts. Vendors without an
// implementation fail with errs.ErrNotSupported.
func NewModelClient(vendor vendors.Vendor, opts ...Option) (chat.ModelClient, error) {
	var cfg config
	for _, opt := range opts {
		opt(&cfg)
	}

	switch vendor {
	case vendors.Anthropic:
		client := anthropic.New()
		if cfg.apiKey != "" {
			client.WithAPIKey(cfg.apiKey)
		}
		if cfg.httpClient != nil {
			client.WithHTTPClient(cfg.httpClient)
		}
		if cfg.catalog != nil {
			client.WithCatalog(cfg.catalog)
		}
		return client, nil

	case vendors.AWS:
		client := bedrock.New()
		if cfg.catalog != nil {
			client.WithCatalog(cfg.catalog)
		}
		if cfg.bedrockRuntime != nil {
			client.WithRuntime(cfg.bedrockRuntime)
		}
		return client, nil
	}

	return nil, errs.NotSupportedf("no client for vendor %q", vendor)
}
