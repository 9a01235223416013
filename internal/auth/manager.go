package auth

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	"github.com/fivetwenty-io/sfctl/internal/constants"
)

// TokenManager supplies bearer tokens to the HTTP client.
type TokenManager interface {
	GetToken(ctx context.Context) (string, error)
	RefreshToken(ctx context.Context) error
	SetToken(token string, expiresAt time.Time)
}

// StaticTokenManager serves a token that was obtained out of band.
type StaticTokenManager struct {
	store *TokenStore
}

// NewStaticTokenManager creates a manager for a fixed access token.
func NewStaticTokenManager(accessToken string) *StaticTokenManager {
	store := NewTokenStore()
	store.Set(&Token{AccessToken: accessToken, TokenType: "Bearer"})

	return &StaticTokenManager{store: store}
}

// GetToken returns the token while it is valid.
func (m *StaticTokenManager) GetToken(ctx context.Context) (string, error) {
	token := m.store.Get()
	if !token.Valid() {
		return "", constants.ErrNoAccessToken
	}

	return token.AccessToken, nil
}

// RefreshToken fails, a static token cannot be renewed.
func (m *StaticTokenManager) RefreshToken(ctx context.Context) error {
	return fmt.Errorf("refreshing static token: %w", constants.ErrNoAccessToken)
}

// SetToken replaces the token.
func (m *StaticTokenManager) SetToken(token string, expiresAt time.Time) {
	m.store.Set(&Token{AccessToken: token, TokenType: "Bearer", ExpiresAt: expiresAt})
}

// AADConfig configures the Azure AD client credentials grant.
type AADConfig struct {
	AuthorityHost string
	TenantID      string
	ClientID      string
	ClientSecret  string
	// Resource is the application ID URI of the cluster application.
	Resource string
	// HTTPClient is used for token requests. Nil uses http.DefaultClient.
	HTTPClient *http.Client
}

// TokenURL returns the v2.0 token endpoint of the tenant.
func (c *AADConfig) TokenURL() string {
	authority := c.AuthorityHost
	if authority == "" {
		authority = constants.DefaultAuthorityHost
	}

	return fmt.Sprintf("%s/%s/oauth2/v2.0/token", strings.TrimSuffix(authority, "/"), c.TenantID)
}

// ClientCredentialsTokenManager obtains tokens from Azure AD for a service
// principal and caches them until they are about to expire.
type ClientCredentialsTokenManager struct {
	config     *clientcredentials.Config
	httpClient *http.Client
	store      *TokenStore
	mutex      sync.Mutex
}

// NewClientCredentialsTokenManager creates a manager for the given principal.
func NewClientCredentialsTokenManager(config *AADConfig) (*ClientCredentialsTokenManager, error) {
	if config.TenantID == "" || config.ClientID == "" || config.ClientSecret == "" || config.Resource == "" {
		return nil, constants.ErrIncompleteAADAuth
	}

	return &ClientCredentialsTokenManager{
		config: &clientcredentials.Config{
			ClientID:     config.ClientID,
			ClientSecret: config.ClientSecret,
			TokenURL:     config.TokenURL(),
			Scopes:       []string{strings.TrimSuffix(config.Resource, "/") + "/.default"},
			AuthStyle:    oauth2.AuthStyleInParams,
		},
		httpClient: config.HTTPClient,
		store:      NewTokenStore(),
	}, nil
}

// GetToken returns a cached token or requests a new one.
func (m *ClientCredentialsTokenManager) GetToken(ctx context.Context) (string, error) {
	token := m.store.Get()
	if token.Valid() {
		return token.AccessToken, nil
	}

	err := m.RefreshToken(ctx)
	if err != nil {
		return "", err
	}

	return m.store.Get().AccessToken, nil
}

// RefreshToken requests a new token.
func (m *ClientCredentialsTokenManager) RefreshToken(ctx context.Context) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if m.httpClient != nil {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, m.httpClient)
	}

	token, err := m.config.Token(ctx)
	if err != nil {
		return fmt.Errorf("requesting Azure AD token: %w", err)
	}

	m.store.Set(&Token{
		AccessToken: token.AccessToken,
		TokenType:   token.TokenType,
		ExpiresAt:   token.Expiry,
	})

	return nil
}

// SetToken seeds the cache with a token obtained elsewhere.
func (m *ClientCredentialsTokenManager) SetToken(token string, expiresAt time.Time) {
	m.store.Set(&Token{AccessToken: token, TokenType: "Bearer", ExpiresAt: expiresAt})
}
