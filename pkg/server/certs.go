package server

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"
)

// certExpiryWarning is how close to NotAfter a loaded certificate starts
// logging at warn level.
const certExpiryWarning = 30 * 24 * time.Hour

// certReloader serves the TLS key pair from disk and picks up renewed files
// without a restart. Files are polled by modification time.
type certReloader struct {
	certFile string
	keyFile  string
	interval time.Duration

	mu       sync.RWMutex
	cert     *tls.Certificate
	certTime time.Time
	keyTime  time.Time
}

func newCertReloader(certFile, keyFile string, interval time.Duration) *certReloader {
	return &certReloader{
		certFile: certFile,
		keyFile:  keyFile,
		interval: interval,
	}
}

// start loads the key pair and, when interval is positive, polls for
// changes until ctx is done. A failed initial load is returned.
func (r *certReloader) start(ctx context.Context) error {
	if err := r.load(); err != nil {
		return err
	}
	r.logCertificate()

	if r.interval > 0 {
		go r.loop(ctx)
	}
	return nil
}

func (r *certReloader) loop(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if !r.changed() {
				continue
			}
			if err := r.load(); err != nil {
				// The previous pair keeps serving.
				slog.Error("failed to reload TLS certificate",
					"error", err,
					"cert_file", r.certFile,
				)
				continue
			}
			slog.Info("TLS certificate reloaded", "cert_file", r.certFile)
			r.logCertificate()
		}
	}
}

func (r *certReloader) changed() bool {
	certInfo, err := os.Stat(r.certFile)
	if err != nil {
		return false
	}
	keyInfo, err := os.Stat(r.keyFile)
	if err != nil {
		return false
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	return certInfo.ModTime().After(r.certTime) || keyInfo.ModTime().After(r.keyTime)
}

func (r *certReloader) load() error {
	certInfo, err := os.Stat(r.certFile)
	if err != nil {
		return fmt.Errorf("TLS cert file: %w", err)
	}
	keyInfo, err := os.Stat(r.keyFile)
	if err != nil {
		return fmt.Errorf("TLS key file: %w", err)
	}

	pair, err := tls.LoadX509KeyPair(r.certFile, r.keyFile)
	if err != nil {
		return fmt.Errorf("failed to load TLS key pair: %w", err)
	}
	leaf, err := x509.ParseCertificate(pair.Certificate[0])
	if err != nil {
		return fmt.Errorf("failed to parse TLS certificate: %w", err)
	}
	if time.Now().After(leaf.NotAfter) {
		return errors.New("TLS certificate has expired")
	}
	pair.Leaf = leaf

	r.mu.Lock()
	r.cert = &pair
	r.certTime = certInfo.ModTime()
	r.keyTime = keyInfo.ModTime()
	r.mu.Unlock()
	return nil
}

// getCertificate is installed as tls.Config.GetCertificate.
func (r *certReloader) getCertificate(*tls.ClientHelloInfo) (*tls.Certificate, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.cert == nil {
		return nil, errors.New("no TLS certificate loaded")
	}
	return r.cert, nil
}

func (r *certReloader) logCertificate() {
	r.mu.RLock()
	leaf := r.cert.Leaf
	r.mu.RUnlock()

	remaining := time.Until(leaf.NotAfter)
	level := slog.LevelInfo
	if remaining < certExpiryWarning {
		level = slog.LevelWarn
	}
	slog.Log(context.Background(), level, "TLS certificate loaded",
		"subject", leaf.Subject.CommonName,
		"issuer", leaf.Issuer.CommonName,
		"expires_in_days", int(remaining.Hours()/24),
		"expires_at", leaf.NotAfter.Format(time.RFC3339),
	)
}
