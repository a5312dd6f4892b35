package credential

import (
	"context"
	"errors"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
)

// AzureSource fetches tokens through an azcore.TokenCredential.
type AzureSource struct {
	cred azcore.TokenCredential
}

// NewAzureSource builds a source backed by DefaultAzureCredential. tenantID
// may be empty to let the chain pick the tenant.
func NewAzureSource(tenantID string) (*AzureSource, error) {
	cred, err := azidentity.NewDefaultAzureCredential(&azidentity.DefaultAzureCredentialOptions{
		TenantID: tenantID,
	})
	if err != nil {
		return nil, NewAuthError("azure", "failed to build credential chain", err)
	}
	return &AzureSource{cred: cred}, nil
}

// NewTokenCredentialSource wraps an existing azcore.TokenCredential.
func NewTokenCredentialSource(cred azcore.TokenCredential) *AzureSource {
	return &AzureSource{cred: cred}
}

// Fetch implements Source.
func (s *AzureSource) Fetch(ctx context.Context, scope string) (Token, error) {
	at, err := s.cred.GetToken(ctx, policy.TokenRequestOptions{Scopes: []string{scope}})
	if err != nil {
		return Token{}, NewAuthError("azure", "failed to acquire token", err)
	}
	return Token{Value: at.Token, ExpiresOn: at.ExpiresOn}, nil
}

// StaticSource serves a fixed token. Each fetch reports an expiry TTL from
// now, so the cache treats it like any other token.
type StaticSource struct {
	token string
	ttl   time.Duration
}

// DefaultStaticTTL is the lifetime reported for static tokens.
const DefaultStaticTTL = time.Hour

// NewStaticSource creates a StaticSource.
func NewStaticSource(token string) *StaticSource {
	return &StaticSource{token: token, ttl: DefaultStaticTTL}
}

// Fetch implements Source.
func (s *StaticSource) Fetch(_ context.Context, _ string) (Token, error) {
	if s.token == "" {
		return Token{}, NewAuthError("static", "no token configured", errors.New("empty static token"))
	}
	return Token{Value: s.token, ExpiresOn: time.Now().Add(s.ttl)}, nil
}
