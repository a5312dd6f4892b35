package credential

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

// fakeClock is a settable clock.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

// countingSource hands out numbered tokens valid for ttl.
type countingSource struct {
	clock *fakeClock
	ttl   time.Duration
	calls atomic.Int32
	err   error
	delay time.Duration
}

func (s *countingSource) Fetch(ctx context.Context, scope string) (Token, error) {
	n := s.calls.Add(1)
	if s.delay > 0 {
		time.Sleep(s.delay)
	}
	if s.err != nil {
		return Token{}, s.err
	}
	return Token{
		Value:     "token-" + string(rune('0'+n)),
		ExpiresOn: s.clock.Now().Add(s.ttl),
	}, nil
}

func newTestProvider(t *testing.T, src Source, clock *fakeClock) *CachingProvider {
	t.Helper()
	p, err := NewCachingProvider(CachingProviderConfig{
		Source:        src,
		SourceName:    "test",
		RefreshMargin: 5 * time.Minute,
		Now:           clock.Now,
	})
	if err != nil {
		t.Fatalf("NewCachingProvider: %v", err)
	}
	return p
}

func TestCachingProvider_ReusesToken(t *testing.T) {
	clock := &fakeClock{now: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}
	src := &countingSource{clock: clock, ttl: time.Hour}
	p := newTestProvider(t, src, clock)

	first, err := p.GetToken(context.Background())
	if err != nil {
		t.Fatalf("GetToken: %v", err)
	}
	clock.Advance(30 * time.Minute)
	second, err := p.GetToken(context.Background())
	if err != nil {
		t.Fatalf("GetToken: %v", err)
	}

	if first.Value != second.Value {
		t.Errorf("expected cached token %q, got %q", first.Value, second.Value)
	}
	if got := src.calls.Load(); got != 1 {
		t.Errorf("expected 1 source call, got %d", got)
	}
}

func TestCachingProvider_RefreshesWithinMargin(t *testing.T) {
	clock := &fakeClock{now: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}
	src := &countingSource{clock: clock, ttl: time.Hour}
	p := newTestProvider(t, src, clock)

	first, _ := p.GetToken(context.Background())
	clock.Advance(56 * time.Minute)
	second, err := p.GetToken(context.Background())
	if err != nil {
		t.Fatalf("GetToken: %v", err)
	}

	if first.Value == second.Value {
		t.Error("expected a new token inside the refresh margin")
	}
	if !second.ValidAt(clock.Now()) {
		t.Error("returned token is not valid")
	}
}

func TestCachingProvider_NeverReturnsExpired(t *testing.T) {
	clock := &fakeClock{now: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}
	src := &countingSource{clock: clock, ttl: time.Hour}
	p := newTestProvider(t, src, clock)

	if _, err := p.GetToken(context.Background()); err != nil {
		t.Fatalf("GetToken: %v", err)
	}

	src.err = errors.New("identity endpoint unreachable")
	clock.Advance(2 * time.Hour)

	_, err := p.GetToken(context.Background())
	if err == nil {
		t.Fatal("expected error once the cached token has expired")
	}
	var authErr *AuthError
	if !errors.As(err, &authErr) {
		t.Fatalf("expected AuthError, got %T", err)
	}
}

func TestCachingProvider_FallsBackToUnexpiredTokenOnRefreshFailure(t *testing.T) {
	clock := &fakeClock{now: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}
	src := &countingSource{clock: clock, ttl: time.Hour}
	p := newTestProvider(t, src, clock)

	first, _ := p.GetToken(context.Background())
	src.err = errors.New("throttled")
	clock.Advance(57 * time.Minute)

	got, err := p.GetToken(context.Background())
	if err != nil {
		t.Fatalf("expected cached token, got error %v", err)
	}
	if got.Value != first.Value {
		t.Errorf("expected %q, got %q", first.Value, got.Value)
	}
}

func TestCachingProvider_RejectsExpiredFromSource(t *testing.T) {
	clock := &fakeClock{now: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}
	src := &countingSource{clock: clock, ttl: -time.Minute}
	p := newTestProvider(t, src, clock)

	if _, err := p.GetToken(context.Background()); err == nil {
		t.Fatal("expected error for an already expired token")
	}
}

func TestCachingProvider_ConcurrentRefreshCollapses(t *testing.T) {
	clock := &fakeClock{now: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}
	src := &countingSource{clock: clock, ttl: time.Hour, delay: 50 * time.Millisecond}
	p := newTestProvider(t, src, clock)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := p.GetToken(context.Background()); err != nil {
				t.Errorf("GetToken: %v", err)
			}
		}()
	}
	wg.Wait()

	if got := src.calls.Load(); got > 2 {
		t.Errorf("expected concurrent refreshes to collapse, got %d source calls", got)
	}
}

// gatedSource blocks in Fetch until release is closed or its ctx ends.
type gatedSource struct {
	started chan struct{}
	release chan struct{}
	once    sync.Once
	calls   atomic.Int32
}

func newGatedSource() *gatedSource {
	return &gatedSource{started: make(chan struct{}), release: make(chan struct{})}
}

func (s *gatedSource) Fetch(ctx context.Context, scope string) (Token, error) {
	s.calls.Add(1)
	s.once.Do(func() { close(s.started) })
	select {
	case <-s.release:
		return Token{Value: "shared", ExpiresOn: time.Now().Add(time.Hour)}, nil
	case <-ctx.Done():
		return Token{}, ctx.Err()
	}
}

func TestCachingProvider_CancelledCallerDoesNotFailOthers(t *testing.T) {
	src := newGatedSource()
	p, err := NewCachingProvider(CachingProviderConfig{Source: src, SourceName: "test"})
	if err != nil {
		t.Fatal(err)
	}

	leaderCtx, cancelLeader := context.WithCancel(context.Background())
	leaderErr := make(chan error, 1)
	go func() {
		_, err := p.GetToken(leaderCtx)
		leaderErr <- err
	}()
	<-src.started

	type result struct {
		tok Token
		err error
	}
	waiter := make(chan result, 1)
	go func() {
		tok, err := p.GetToken(context.Background())
		waiter <- result{tok, err}
	}()

	// Let the second caller join the in-flight fetch before the leader leaves.
	time.Sleep(50 * time.Millisecond)
	cancelLeader()

	select {
	case err := <-leaderErr:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("leader error = %v, want context.Canceled", err)
		}
		var authErr *AuthError
		if !errors.As(err, &authErr) {
			t.Errorf("leader error = %T, want *AuthError", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("cancelled caller did not return")
	}

	close(src.release)

	select {
	case got := <-waiter:
		if got.err != nil {
			t.Fatalf("waiting caller failed after another caller was cancelled: %v", got.err)
		}
		if got.tok.Value != "shared" {
			t.Errorf("token = %q, want shared", got.tok.Value)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("waiting caller did not return")
	}

	if tok, err := p.GetToken(context.Background()); err != nil || tok.Value != "shared" {
		t.Errorf("expected the shared fetch to be cached, got %q, %v", tok.Value, err)
	}
	if got := src.calls.Load(); got != 1 {
		t.Errorf("source calls = %d, want 1", got)
	}
}

func TestCachingProvider_FetchTimeoutBoundsSharedFetch(t *testing.T) {
	src := newGatedSource()
	p, err := NewCachingProvider(CachingProviderConfig{
		Source:       src,
		SourceName:   "test",
		FetchTimeout: 50 * time.Millisecond,
	})
	if err != nil {
		t.Fatal(err)
	}

	_, err = p.GetToken(context.Background())
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("error = %v, want deadline exceeded", err)
	}
}

func TestCachingProvider_Invalidate(t *testing.T) {
	clock := &fakeClock{now: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}
	src := &countingSource{clock: clock, ttl: time.Hour}
	p := newTestProvider(t, src, clock)

	if _, err := p.GetToken(context.Background()); err != nil {
		t.Fatal(err)
	}
	if !p.HasValidToken() {
		t.Error("expected a valid cached token")
	}

	p.Invalidate()
	if p.HasValidToken() {
		t.Error("expected no token after Invalidate")
	}
	if !p.TokenExpiry().IsZero() {
		t.Error("expected zero expiry after Invalidate")
	}

	if _, err := p.GetToken(context.Background()); err != nil {
		t.Fatal(err)
	}
	if got := src.calls.Load(); got != 2 {
		t.Errorf("expected 2 source calls, got %d", got)
	}
}

type recordingObserver struct {
	mu      sync.Mutex
	results []string
	hits    int
	misses  int
	expiry  time.Time
}

func (o *recordingObserver) RecordTokenAcquisition(source, result string, _ time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.results = append(o.results, source+":"+result)
}

func (o *recordingObserver) RecordTokenCache(hit bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if hit {
		o.hits++
	} else {
		o.misses++
	}
}

func (o *recordingObserver) SetTokenExpiry(t time.Time) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.expiry = t
}

func TestCachingProvider_Observer(t *testing.T) {
	clock := &fakeClock{now: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}
	src := &countingSource{clock: clock, ttl: time.Hour}
	obs := &recordingObserver{}

	p, err := NewCachingProvider(CachingProviderConfig{
		Source:     src,
		SourceName: "static",
		Observer:   obs,
		Now:        clock.Now,
	})
	if err != nil {
		t.Fatal(err)
	}

	p.GetToken(context.Background())
	p.GetToken(context.Background())

	if obs.misses != 1 || obs.hits != 1 {
		t.Errorf("expected 1 miss and 1 hit, got %d misses %d hits", obs.misses, obs.hits)
	}
	if len(obs.results) != 1 || obs.results[0] != "static:success" {
		t.Errorf("unexpected acquisitions %v", obs.results)
	}
	if !obs.expiry.Equal(clock.Now().Add(time.Hour)) {
		t.Errorf("unexpected expiry %v", obs.expiry)
	}
}

func TestNewCachingProvider_RequiresSource(t *testing.T) {
	if _, err := NewCachingProvider(CachingProviderConfig{}); err == nil {
		t.Fatal("expected error without a source")
	}
}
