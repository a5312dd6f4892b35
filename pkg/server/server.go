package server

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/tapilab/azure-openai-proxy/pkg/config"
	"github.com/tapilab/azure-openai-proxy/pkg/credential"
	"github.com/tapilab/azure-openai-proxy/pkg/proxy/handlers"
	"github.com/tapilab/azure-openai-proxy/pkg/proxy/middleware"
	"github.com/tapilab/azure-openai-proxy/pkg/telemetry/metrics"
	"github.com/tapilab/azure-openai-proxy/pkg/upstream"
)

// Dependencies are the collaborators the server routes requests to.
type Dependencies struct {
	// Credentials supplies bearer tokens. Required.
	Credentials credential.Provider

	// Forwarder sends validated bodies upstream. Required.
	Forwarder handlers.Forwarder

	// Metrics is optional; nil disables request metrics and /metrics.
	Metrics *metrics.Collector
}

// Server is the HTTP front end of the proxy.
type Server struct {
	config         *config.ProxyConfig
	securityConfig *config.SecurityConfig
	metricsConfig  *config.MetricsConfig
	deps           Dependencies

	httpServer   *http.Server
	listener     net.Listener
	shutdownChan chan struct{}
	shutdownOnce sync.Once
	mu           sync.RWMutex
	isRunning    bool
}

// NewServer creates a new proxy server.
func NewServer(cfg *config.Config, deps Dependencies) *Server {
	return &Server{
		config:         &cfg.Proxy,
		securityConfig: &cfg.Security,
		metricsConfig:  &cfg.Telemetry.Metrics,
		deps:           deps,
		shutdownChan:   make(chan struct{}),
	}
}

// Start listens on the configured address and serves until ctx is
// cancelled, SIGINT/SIGTERM arrives, Stop is called, or serving fails.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return errors.New("server is already running")
	}
	if s.deps.Credentials == nil || s.deps.Forwarder == nil {
		s.mu.Unlock()
		return errors.New("server requires a credential provider and a forwarder")
	}

	s.httpServer = &http.Server{
		Addr:           s.config.ListenAddress,
		Handler:        s.setupRoutes(),
		ReadTimeout:    s.config.ReadTimeout,
		WriteTimeout:   s.config.WriteTimeout,
		IdleTimeout:    s.config.IdleTimeout,
		MaxHeaderBytes: s.config.MaxHeaderBytes,
		ErrorLog:       slog.NewLogLogger(slog.Default().Handler(), slog.LevelWarn),
	}

	// Certificate polling stops when Start returns.
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if s.securityConfig.TLS.Enabled {
		tlsConfig, err := s.configureTLS(ctx)
		if err != nil {
			s.mu.Unlock()
			return fmt.Errorf("failed to configure TLS: %w", err)
		}
		s.httpServer.TLSConfig = tlsConfig
	}

	ln, err := net.Listen("tcp", s.config.ListenAddress)
	if err != nil {
		s.mu.Unlock()
		return fmt.Errorf("failed to listen on %s: %w", s.config.ListenAddress, err)
	}
	s.listener = ln
	s.isRunning = true
	s.mu.Unlock()

	errChan := make(chan error, 1)
	go func() {
		slog.Info("starting proxy server",
			"address", ln.Addr().String(),
			"tls_enabled", s.securityConfig.TLS.Enabled,
		)

		var err error
		if s.securityConfig.TLS.Enabled {
			err = s.httpServer.ServeTLS(ln, "", "")
		} else {
			err = s.httpServer.Serve(ln)
		}

		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- fmt.Errorf("server error: %w", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	select {
	case <-ctx.Done():
		slog.Info("context cancelled, initiating shutdown")
		return s.Shutdown(context.Background())
	case sig := <-sigChan:
		slog.Info("received shutdown signal", "signal", sig.String())
		return s.Shutdown(context.Background())
	case err := <-errChan:
		s.mu.Lock()
		s.isRunning = false
		s.mu.Unlock()
		return err
	case <-s.shutdownChan:
		slog.Info("shutdown requested")
		return s.Shutdown(context.Background())
	}
}

// Stop asks a running Start to shut down and return.
func (s *Server) Stop() {
	select {
	case <-s.shutdownChan:
	default:
		close(s.shutdownChan)
	}
}

// Shutdown gracefully shuts down the server, waiting up to the configured
// shutdown timeout for in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		s.mu.Lock()
		if !s.isRunning {
			s.mu.Unlock()
			return
		}
		s.mu.Unlock()

		slog.Info("initiating graceful shutdown", "timeout", s.config.ShutdownTimeout.String())

		shutdownCtx, cancel := context.WithTimeout(ctx, s.config.ShutdownTimeout)
		defer cancel()

		if s.httpServer != nil {
			if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
				slog.Error("error during server shutdown", "error", err)
				shutdownErr = fmt.Errorf("server shutdown error: %w", err)
			}
		}

		s.mu.Lock()
		s.isRunning = false
		s.mu.Unlock()

		slog.Info("proxy server stopped")
	})

	return shutdownErr
}

// setupRoutes configures HTTP routes and the middleware chain.
func (s *Server) setupRoutes() http.Handler {
	mux := http.NewServeMux()

	functionKeys := middleware.FunctionKeyMiddleware(s.securityConfig.FunctionKeys)
	for _, route := range upstream.Routes() {
		var h http.Handler = handlers.NewForwardHandler(route, s.deps.Credentials, s.deps.Forwarder, s.config.MaxBodyBytes)
		h = functionKeys(h)
		h = middleware.Instrument(route.Name, s.deps.Metrics)(h)
		mux.Handle(route.Path, h)
	}

	mux.Handle("/health", handlers.NewHealthHandler())
	mux.Handle("/ready", handlers.NewReadyHandler(s.deps.Credentials))

	if s.deps.Metrics.Enabled() {
		mux.Handle(s.metricsConfig.Path, s.deps.Metrics.Handler())
	}

	var handler http.Handler = mux

	// Timeout middleware
	handler = middleware.TimeoutMiddleware(s.config.WriteTimeout)(handler)

	// CORS middleware
	handler = middleware.CORSMiddleware(s.config.CORS)(handler)

	// Request ID middleware
	handler = middleware.RequestIDMiddleware(handler)

	// Logging middleware
	handler = middleware.LoggingMiddleware(handler)

	// Tracing middleware
	handler = middleware.TracingMiddleware(handler)

	// Recovery middleware (outermost)
	handler = middleware.RecoveryMiddleware(handler)

	return handler
}

// configureTLS loads the key pair and returns a TLS 1.3 config that serves
// it through a reloader polling the files every security.tls.reload_interval.
func (s *Server) configureTLS(ctx context.Context) (*tls.Config, error) {
	tlsCfg := s.securityConfig.TLS
	if tlsCfg.CertFile == "" {
		return nil, errors.New("TLS cert file not specified")
	}
	if tlsCfg.KeyFile == "" {
		return nil, errors.New("TLS key file not specified")
	}

	reloader := newCertReloader(tlsCfg.CertFile, tlsCfg.KeyFile, tlsCfg.ReloadInterval)
	if err := reloader.start(ctx); err != nil {
		return nil, err
	}

	return &tls.Config{
		MinVersion:     tls.VersionTLS13,
		GetCertificate: reloader.getCertificate,
	}, nil
}

// IsRunning returns true if the server is running.
func (s *Server) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// Addr returns the bound listener address, or nil before Start.
func (s *Server) Addr() net.Addr {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Handler returns the configured HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.setupRoutes()
}
