package credential

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"

	"github.com/tapilab/azure-openai-proxy/pkg/config"
)

type fakeTokenCredential struct {
	scopes []string
	token  azcore.AccessToken
	err    error
}

func (f *fakeTokenCredential) GetToken(_ context.Context, opts policy.TokenRequestOptions) (azcore.AccessToken, error) {
	f.scopes = opts.Scopes
	return f.token, f.err
}

func TestAzureSource_RequestsScope(t *testing.T) {
	expires := time.Now().Add(time.Hour)
	cred := &fakeTokenCredential{token: azcore.AccessToken{Token: "aad-token", ExpiresOn: expires}}

	tok, err := NewTokenCredentialSource(cred).Fetch(context.Background(), CognitiveServicesScope)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}

	if len(cred.scopes) != 1 || cred.scopes[0] != "https://cognitiveservices.azure.com/.default" {
		t.Errorf("unexpected scopes %v", cred.scopes)
	}
	if tok.Value != "aad-token" || !tok.ExpiresOn.Equal(expires) {
		t.Errorf("unexpected token %+v", tok)
	}
}

func TestAzureSource_WrapsFailure(t *testing.T) {
	cause := errors.New("no managed identity endpoint")
	cred := &fakeTokenCredential{err: cause}

	_, err := NewTokenCredentialSource(cred).Fetch(context.Background(), CognitiveServicesScope)

	var authErr *AuthError
	if !errors.As(err, &authErr) {
		t.Fatalf("expected AuthError, got %T", err)
	}
	if authErr.Source != "azure" {
		t.Errorf("expected source azure, got %q", authErr.Source)
	}
	if !errors.Is(err, cause) {
		t.Error("expected cause to be unwrappable")
	}
}

func TestStaticSource(t *testing.T) {
	tok, err := NewStaticSource("dev-token").Fetch(context.Background(), CognitiveServicesScope)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if tok.Value != "dev-token" || !tok.ValidAt(time.Now()) {
		t.Errorf("unexpected token %+v", tok)
	}

	if _, err := NewStaticSource("").Fetch(context.Background(), CognitiveServicesScope); err == nil {
		t.Error("expected error for empty static token")
	}
}

func TestNewProviderFromConfig_Static(t *testing.T) {
	p, err := NewProviderFromConfig(config.CredentialConfig{
		Mode:        config.CredentialModeStatic,
		StaticToken: "abc",
	}, nil, nil)
	if err != nil {
		t.Fatalf("NewProviderFromConfig: %v", err)
	}

	tok, err := p.GetToken(context.Background())
	if err != nil {
		t.Fatalf("GetToken: %v", err)
	}
	if tok.Value != "abc" {
		t.Errorf("expected abc, got %q", tok.Value)
	}
}

func TestNewSource_UnknownMode(t *testing.T) {
	if _, err := NewSource(config.CredentialConfig{Mode: "kerberos"}); err == nil {
		t.Fatal("expected error for unknown mode")
	}
}
