package sfclient

import (
	"context"
	"fmt"
	"strings"

	"github.com/fivetwenty-io/sfctl/internal/client"
	"github.com/fivetwenty-io/sfctl/pkg/sf"
)

// New creates a Service Fabric client. The caller's config is not modified.
func New(ctx context.Context, config *sf.Config) (sf.Client, error) {
	if config == nil {
		return nil, sf.ErrConfigRequired
	}

	if config.Endpoint == "" {
		return nil, sf.ErrEndpointRequired
	}

	normalized := *config
	normalized.Endpoint = NormalizeEndpoint(config.Endpoint)

	c, err := client.New(ctx, &normalized)
	if err != nil {
		return nil, fmt.Errorf("failed to create new client: %w", err)
	}

	return c, nil
}

// NormalizeEndpoint trims trailing slashes and defaults the scheme to https.
func NormalizeEndpoint(endpoint string) string {
	endpoint = strings.TrimRight(strings.TrimSpace(endpoint), "/")
	if !strings.HasPrefix(endpoint, "http://") && !strings.HasPrefix(endpoint, "https://") {
		endpoint = "https://" + endpoint
	}

	return endpoint
}

// NewWithEndpoint creates a client for an unsecured cluster.
func NewWithEndpoint(ctx context.Context, endpoint string) (sf.Client, error) {
	return New(ctx, &sf.Config{
		Endpoint: endpoint,
	})
}

// NewWithToken creates a client that sends a fixed bearer token.
func NewWithToken(ctx context.Context, endpoint, token string) (sf.Client, error) {
	return New(ctx, &sf.Config{
		Endpoint:    endpoint,
		AccessToken: token,
	})
}

// NewWithCertificate creates a client that authenticates with an X.509
// client certificate.
func NewWithCertificate(ctx context.Context, endpoint, certFile, keyFile string) (sf.Client, error) {
	return New(ctx, &sf.Config{
		Endpoint:       endpoint,
		ClientCertFile: certFile,
		ClientKeyFile:  keyFile,
	})
}
