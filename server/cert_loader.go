package server

import (
	"crypto/tls"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"
)

const defaultCertCheckInterval = time.Minute

// CertLoader serves a TLS certificate from disk and picks up replacements
// (e.g. after a renewal) without a restart. The files are stat'ed at most
// once per check interval, during a handshake.
type CertLoader struct {
	certFile      string
	keyFile       string
	checkInterval time.Duration
	logger        *slog.Logger

	mu        sync.RWMutex
	cert      *tls.Certificate
	loadedAt  time.Time
	lastCheck time.Time
}

// NewCertLoader loads the key pair and returns a CertLoader for it.
func NewCertLoader(certFile, keyFile string, logger *slog.Logger) (*CertLoader, error) {
	l := &CertLoader{
		certFile:      certFile,
		keyFile:       keyFile,
		checkInterval: defaultCertCheckInterval,
		logger:        logger,
	}
	if err := l.reload(); err != nil {
		return nil, err
	}
	return l, nil
}

// TLSConfig returns a tls.Config that serves the loader's certificate.
func (l *CertLoader) TLSConfig() *tls.Config {
	return &tls.Config{
		MinVersion:     tls.VersionTLS12,
		GetCertificate: l.GetCertificate,
	}
}

// GetCertificate is a callback for tls.Config.GetCertificate.
func (l *CertLoader) GetCertificate(*tls.ClientHelloInfo) (*tls.Certificate, error) {
	l.mu.RLock()
	if time.Since(l.lastCheck) < l.checkInterval {
		defer l.mu.RUnlock()
		return l.cert, nil
	}
	l.mu.RUnlock()

	l.mu.Lock()
	defer l.mu.Unlock()

	// Another handshake may have checked while we waited for the lock.
	if time.Since(l.lastCheck) < l.checkInterval {
		return l.cert, nil
	}
	l.lastCheck = time.Now()

	if l.changed() {
		if err := l.reload(); err != nil {
			// Keep serving the old certificate.
			l.logger.Error("failed to reload certificate", "error", err)
		}
	}
	return l.cert, nil
}

// changed reports whether either file was modified after the last load.
func (l *CertLoader) changed() bool {
	for _, path := range []string{l.certFile, l.keyFile} {
		st, err := os.Stat(path)
		if err != nil {
			l.logger.Error("failed to stat certificate file", "path", path, "error", err)
			return false
		}
		if st.ModTime().After(l.loadedAt) {
			return true
		}
	}
	return false
}

// reload must be called with mu held, or before l is shared.
func (l *CertLoader) reload() error {
	cert, err := tls.LoadX509KeyPair(l.certFile, l.keyFile)
	if err != nil {
		return fmt.Errorf("failed to load key pair: %w", err)
	}

	l.cert = &cert
	l.loadedAt = time.Now()
	l.logger.Info("loaded tls certificate", "cert", l.certFile, "key", l.keyFile)
	return nil
}
