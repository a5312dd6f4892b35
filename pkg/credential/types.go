package credential

import (
	"context"
	"time"
)

// CognitiveServicesScope is the audience for Azure OpenAI data plane calls.
const CognitiveServicesScope = "https://cognitiveservices.azure.com/.default"

// Token is a bearer credential and the instant it stops being accepted.
type Token struct {
	Value     string
	ExpiresOn time.Time
}

// ValidAt reports whether the token is non-empty and unexpired at t.
func (t Token) ValidAt(now time.Time) bool {
	return t.Value != "" && now.Before(t.ExpiresOn)
}

// Provider supplies the token to attach to the next upstream call.
type Provider interface {
	GetToken(ctx context.Context) (Token, error)
}

// Source fetches a fresh token for scope from an identity backend.
type Source interface {
	Fetch(ctx context.Context, scope string) (Token, error)
}

// SourceFunc adapts a function to Source.
type SourceFunc func(ctx context.Context, scope string) (Token, error)

// Fetch calls f.
func (f SourceFunc) Fetch(ctx context.Context, scope string) (Token, error) {
	return f(ctx, scope)
}
