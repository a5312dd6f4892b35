package credential

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// DefaultRefreshMargin is how early a cached token is replaced.
const DefaultRefreshMargin = 5 * time.Minute

// DefaultFetchTimeout bounds one shared call to the token source.
const DefaultFetchTimeout = 30 * time.Second

// Observer receives credential cache events. metrics.Collector implements it.
type Observer interface {
	RecordTokenAcquisition(source, result string, duration time.Duration)
	RecordTokenCache(hit bool)
	SetTokenExpiry(expiresOn time.Time)
}

// CachingProviderConfig configures a CachingProvider.
type CachingProviderConfig struct {
	// Source fetches fresh tokens. Required.
	Source Source

	// SourceName labels logs and metrics (e.g. "azure").
	SourceName string

	// Scope is the token audience. Defaults to CognitiveServicesScope.
	Scope string

	// RefreshMargin is how long before expiry the token is replaced.
	// Defaults to DefaultRefreshMargin.
	RefreshMargin time.Duration

	// FetchTimeout bounds a shared fetch, which outlives the caller that
	// started it. Defaults to DefaultFetchTimeout.
	FetchTimeout time.Duration

	// Logger receives refresh diagnostics. Defaults to slog.Default().
	Logger *slog.Logger

	// Observer is optional.
	Observer Observer

	// Now overrides the clock in tests.
	Now func() time.Time
}

// CachingProvider is a Provider that reuses a token until it nears expiry.
// It is safe for concurrent use.
type CachingProvider struct {
	source     Source
	sourceName string
	scope      string
	margin     time.Duration
	timeout    time.Duration
	logger     *slog.Logger
	observer   Observer
	now        func() time.Time

	mu     sync.RWMutex
	cached Token

	group singleflight.Group
}

// NewCachingProvider creates a CachingProvider.
func NewCachingProvider(cfg CachingProviderConfig) (*CachingProvider, error) {
	if cfg.Source == nil {
		return nil, errors.New("credential: source is required")
	}
	if cfg.Scope == "" {
		cfg.Scope = CognitiveServicesScope
	}
	if cfg.RefreshMargin <= 0 {
		cfg.RefreshMargin = DefaultRefreshMargin
	}
	if cfg.FetchTimeout <= 0 {
		cfg.FetchTimeout = DefaultFetchTimeout
	}
	if cfg.SourceName == "" {
		cfg.SourceName = "custom"
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	return &CachingProvider{
		source:     cfg.Source,
		sourceName: cfg.SourceName,
		scope:      cfg.Scope,
		margin:     cfg.RefreshMargin,
		timeout:    cfg.FetchTimeout,
		logger:     cfg.Logger,
		observer:   cfg.Observer,
		now:        cfg.Now,
	}, nil
}

// GetToken returns the cached token while it is outside the refresh margin,
// and otherwise fetches a new one. Concurrent callers share one fetch.
//
// The shared fetch does not inherit ctx's cancellation, so one caller giving
// up does not fail the others waiting on it. A caller whose ctx ends first
// gets ctx's error wrapped in an AuthError.
//
// If a refresh fails while the cached token is still unexpired, the cached
// token is returned and the failure is logged. An expired token is never
// returned.
func (p *CachingProvider) GetToken(ctx context.Context) (Token, error) {
	now := p.now()

	p.mu.RLock()
	tok := p.cached
	p.mu.RUnlock()

	if tok.Value != "" && now.Before(tok.ExpiresOn.Add(-p.margin)) {
		p.recordCache(true)
		return tok, nil
	}
	p.recordCache(false)

	ch := p.group.DoChan(p.scope, func() (interface{}, error) {
		fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), p.timeout)
		defer cancel()
		return p.refresh(fetchCtx)
	})

	var res singleflight.Result
	select {
	case res = <-ch:
	case <-ctx.Done():
		return Token{}, NewAuthError(p.sourceName, "gave up waiting for token", ctx.Err())
	}

	if err := res.Err; err != nil {
		if tok.ValidAt(p.now()) {
			p.logger.WarnContext(ctx, "Token refresh failed, using cached token",
				"source", p.sourceName,
				"expires_in", tok.ExpiresOn.Sub(p.now()).Round(time.Second).String(),
				"error", err,
			)
			return tok, nil
		}
		return Token{}, err
	}
	return res.Val.(Token), nil
}

// refresh fetches a token from the source and stores it.
func (p *CachingProvider) refresh(ctx context.Context) (Token, error) {
	start := p.now()
	tok, err := p.source.Fetch(ctx, p.scope)
	elapsed := p.now().Sub(start)

	if err != nil {
		p.recordAcquisition("error", elapsed)
		var authErr *AuthError
		if errors.As(err, &authErr) {
			return Token{}, err
		}
		return Token{}, NewAuthError(p.sourceName, "failed to acquire token", err)
	}

	if !tok.ValidAt(p.now()) {
		p.recordAcquisition("expired", elapsed)
		return Token{}, NewAuthError(p.sourceName, "source returned an expired or empty token", nil)
	}

	p.mu.Lock()
	p.cached = tok
	p.mu.Unlock()

	p.recordAcquisition("success", elapsed)
	if p.observer != nil {
		p.observer.SetTokenExpiry(tok.ExpiresOn)
	}

	p.logger.DebugContext(ctx, "Token acquired",
		"source", p.sourceName,
		"expires_on", tok.ExpiresOn.UTC().Format(time.RFC3339),
		"duration_ms", elapsed.Milliseconds(),
	)

	return tok, nil
}

// Invalidate drops the cached token so the next GetToken fetches a new one.
func (p *CachingProvider) Invalidate() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.cached = Token{}
}

// TokenExpiry returns the expiry of the cached token, or the zero time.
func (p *CachingProvider) TokenExpiry() time.Time {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.cached.ExpiresOn
}

// HasValidToken reports whether an unexpired token is cached.
func (p *CachingProvider) HasValidToken() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.cached.ValidAt(p.now())
}

func (p *CachingProvider) recordCache(hit bool) {
	if p.observer != nil {
		p.observer.RecordTokenCache(hit)
	}
}

func (p *CachingProvider) recordAcquisition(result string, d time.Duration) {
	if p.observer != nil {
		p.observer.RecordTokenAcquisition(p.sourceName, result, d)
	}
}
