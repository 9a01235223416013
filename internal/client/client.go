package client

import (
	"context"
	"crypto/sha1" //nolint:gosec // Service Fabric thumbprints are SHA-1 by definition
	"crypto/tls"
	"crypto/x509"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/fivetwenty-io/sfctl/internal/auth"
	"github.com/fivetwenty-io/sfctl/internal/constants"
	"github.com/fivetwenty-io/sfctl/internal/http"
	"github.com/fivetwenty-io/sfctl/pkg/sf"
)

// Static errors for err113 compliance.
var (
	ErrThumbprintMismatch  = errors.New("server certificate thumbprint mismatch")
	ErrNoServerCertificate = errors.New("server presented no certificate")
)

// Client implements the sf.Client interface.
type Client struct {
	httpClient   *http.Client
	tokenManager auth.TokenManager
	cache        sf.Cache
	baseURL      string
	logger       sf.Logger

	applications     *ApplicationsClient
	applicationTypes *ApplicationTypesClient
	nodes            *NodesClient
	services         *ServicesClient
	partitions       *PartitionsClient
	replicas         *ReplicasClient
	backupPolicies   *BackupPoliciesClient
}

// New creates a Service Fabric client from config.
func New(ctx context.Context, config *sf.Config) (*Client, error) {
	if config == nil {
		return nil, sf.ErrConfigRequired
	}

	if config.Endpoint == "" {
		return nil, sf.ErrEndpointRequired
	}

	err := validator.New().StructCtx(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", sf.ErrInvalidConfig, err)
	}

	tokenManager, err := createTokenManager(config)
	if err != nil {
		return nil, err
	}

	return NewWithTokenManager(config, tokenManager)
}

// NewWithTokenManager creates a client that authenticates with tokenManager,
// which may be nil.
func NewWithTokenManager(config *sf.Config, tokenManager auth.TokenManager) (*Client, error) {
	if config.Endpoint == "" {
		return nil, sf.ErrEndpointRequired
	}

	httpOpts, cache, err := createHTTPClientOptions(config)
	if err != nil {
		return nil, err
	}

	client := &Client{
		httpClient:   http.NewClient(config.Endpoint, tokenManager, httpOpts...),
		tokenManager: tokenManager,
		cache:        cache,
		baseURL:      config.Endpoint,
		logger:       config.Logger,
	}

	client.initializeResourceClients()

	return client, nil
}

func createTokenManager(config *sf.Config) (auth.TokenManager, error) {
	if config.AccessToken != "" {
		return auth.NewStaticTokenManager(config.AccessToken), nil
	}

	if config.ClientSecret != "" {
		manager, err := auth.NewClientCredentialsTokenManager(&auth.AADConfig{
			AuthorityHost: config.AuthorityHost,
			TenantID:      config.TenantID,
			ClientID:      config.ClientID,
			ClientSecret:  config.ClientSecret,
			Resource:      config.Resource,
		})
		if err != nil {
			return nil, fmt.Errorf("configuring Azure AD authentication: %w", err)
		}

		return manager, nil
	}

	return nil, nil //nolint:nilnil // no credentials means unauthenticated requests
}

func createHTTPClientOptions(config *sf.Config) ([]http.Option, sf.Cache, error) {
	var httpOpts []http.Option

	if config.Logger != nil {
		httpOpts = append(httpOpts, http.WithLogger(config.Logger))
	}

	if config.Debug {
		httpOpts = append(httpOpts, http.WithDebug(true))
	}

	if config.UserAgent != "" {
		httpOpts = append(httpOpts, http.WithUserAgent(config.UserAgent))
	}

	if config.HTTPTimeout > 0 {
		httpOpts = append(httpOpts, http.WithTimeout(config.HTTPTimeout))
	}

	if config.RetryMax > 0 {
		retryWaitMin := constants.DefaultRetryWaitMin
		retryWaitMax := constants.DefaultRetryWaitMax

		if config.RetryWaitMin > 0 {
			retryWaitMin = config.RetryWaitMin
		}

		if config.RetryWaitMax > 0 {
			retryWaitMax = config.RetryWaitMax
		}

		httpOpts = append(httpOpts, http.WithRetryConfig(config.RetryMax, retryWaitMin, retryWaitMax))
	}

	tlsConfig, err := buildTLSConfig(config)
	if err != nil {
		return nil, nil, err
	}

	if tlsConfig != nil {
		httpOpts = append(httpOpts, http.WithTLSConfig(tlsConfig))
	}

	var cache sf.Cache

	if config.Cache != nil {
		cache, err = sf.NewCacheFromConfig(config.Cache)
		if err != nil {
			return nil, nil, fmt.Errorf("creating response cache: %w", err)
		}

		ttl := config.CacheTTL
		if ttl == 0 {
			ttl = constants.DefaultCacheTTL
		}

		httpOpts = append(httpOpts, http.WithCache(cache, ttl))
	}

	return httpOpts, cache, nil
}

// buildTLSConfig returns nil when the defaults apply.
func buildTLSConfig(config *sf.Config) (*tls.Config, error) {
	if config.ClientCertFile == "" && config.CAFile == "" && config.ServerCertThumbprint == "" {
		return nil, nil //nolint:nilnil // default transport settings
	}

	if config.CAFile != "" && config.ServerCertThumbprint != "" {
		return nil, sf.ErrThumbprintWithCA
	}

	tlsConfig := &tls.Config{MinVersion: tls.VersionTLS12}

	if config.ClientCertFile != "" || config.ClientKeyFile != "" {
		if config.ClientCertFile == "" || config.ClientKeyFile == "" {
			return nil, sf.ErrCertificateKeyPair
		}

		cert, err := tls.LoadX509KeyPair(config.ClientCertFile, config.ClientKeyFile)
		if err != nil {
			return nil, fmt.Errorf("loading client certificate: %w", err)
		}

		tlsConfig.Certificates = []tls.Certificate{cert}
	}

	if config.CAFile != "" {
		pem, err := os.ReadFile(config.CAFile)
		if err != nil {
			return nil, fmt.Errorf("reading CA bundle: %w", err)
		}

		pool := x509.NewCertPool()
		if !pool.AppendCertsFromPEM(pem) {
			return nil, fmt.Errorf("%w: %s", sf.ErrInvalidCABundle, config.CAFile)
		}

		tlsConfig.RootCAs = pool
	}

	if config.ServerCertThumbprint != "" {
		expected := strings.ToLower(config.ServerCertThumbprint)

		// Chain verification is replaced by the thumbprint pin.
		tlsConfig.InsecureSkipVerify = true //nolint:gosec // verified in VerifyPeerCertificate
		tlsConfig.VerifyPeerCertificate = func(rawCerts [][]byte, _ [][]*x509.Certificate) error {
			if len(rawCerts) == 0 {
				return ErrNoServerCertificate
			}

			sum := sha1.Sum(rawCerts[0]) //nolint:gosec // thumbprint comparison
			if hex.EncodeToString(sum[:]) != expected {
				return ErrThumbprintMismatch
			}

			return nil
		}
	}

	return tlsConfig, nil
}

func (c *Client) initializeResourceClients() {
	c.applications = NewApplicationsClient(c.httpClient, c.logger)
	c.applicationTypes = NewApplicationTypesClient(c.httpClient, c.logger)
	c.nodes = NewNodesClient(c.httpClient, c.logger)
	c.services = NewServicesClient(c.httpClient, c.logger)
	c.partitions = NewPartitionsClient(c.httpClient, c.logger)
	c.replicas = NewReplicasClient(c.httpClient, c.logger)
	c.backupPolicies = NewBackupPoliciesClient(c.httpClient, c.logger)
}

// GetTokenManager returns the token manager for this client.
func (c *Client) GetTokenManager() auth.TokenManager {
	return c.tokenManager
}

// Cache returns the response cache, or nil when caching is off.
func (c *Client) Cache() sf.Cache {
	return c.cache
}

// GetClusterVersion implements sf.ClusterInfoClient.GetClusterVersion.
func (c *Client) GetClusterVersion(ctx context.Context) (*sf.ClusterVersion, error) {
	return getJSON[sf.ClusterVersion](ctx, c.httpClient, "/$/GetClusterVersion", constants.APIVersionCluster, "cluster version")
}

// Applications implements sf.Client.Applications.
func (c *Client) Applications() sf.ApplicationsClient {
	return c.applications
}

// ApplicationTypes implements sf.Client.ApplicationTypes.
func (c *Client) ApplicationTypes() sf.ApplicationTypesClient {
	return c.applicationTypes
}

// Nodes implements sf.Client.Nodes.
func (c *Client) Nodes() sf.NodesClient {
	return c.nodes
}

// Services implements sf.Client.Services.
func (c *Client) Services() sf.ServicesClient {
	return c.services
}

// Partitions implements sf.Client.Partitions.
func (c *Client) Partitions() sf.PartitionsClient {
	return c.partitions
}

// Replicas implements sf.Client.Replicas.
func (c *Client) Replicas() sf.ReplicasClient {
	return c.replicas
}

// BackupPolicies implements sf.Client.BackupPolicies.
func (c *Client) BackupPolicies() sf.BackupPoliciesClient {
	return c.backupPolicies
}

var _ sf.Client = (*Client)(nil)
