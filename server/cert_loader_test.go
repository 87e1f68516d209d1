package server

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/tls"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"io"
	"log/slog"
	"math/big"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeKeyPair writes a self-signed certificate for commonName into dir.
func writeKeyPair(t *testing.T, dir, commonName string) (certFile, keyFile string) {
	t.Helper()

	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)

	tmpl := &x509.Certificate{
		SerialNumber: big.NewInt(time.Now().UnixNano()),
		Subject:      pkix.Name{CommonName: commonName},
		NotBefore:    time.Now().Add(-time.Hour),
		NotAfter:     time.Now().Add(time.Hour),
		DNSNames:     []string{"localhost"},
	}
	der, err := x509.CreateCertificate(rand.Reader, tmpl, tmpl, &key.PublicKey, key)
	require.NoError(t, err)
	keyDER, err := x509.MarshalECPrivateKey(key)
	require.NoError(t, err)

	certFile = filepath.Join(dir, "cert.pem")
	keyFile = filepath.Join(dir, "key.pem")
	require.NoError(t, os.WriteFile(certFile, pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: der}), 0600))
	require.NoError(t, os.WriteFile(keyFile, pem.EncodeToMemory(&pem.Block{Type: "EC PRIVATE KEY", Bytes: keyDER}), 0600))
	return certFile, keyFile
}

func commonName(t *testing.T, l *CertLoader) string {
	t.Helper()
	cert, err := l.GetCertificate(nil)
	require.NoError(t, err)
	leaf, err := x509.ParseCertificate(cert.Certificate[0])
	require.NoError(t, err)
	return leaf.Subject.CommonName
}

func TestNewCertLoader(t *testing.T) {
	certFile, keyFile := writeKeyPair(t, t.TempDir(), "first")

	l, err := NewCertLoader(certFile, keyFile, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	assert.Equal(t, "first", commonName(t, l))
	assert.NotNil(t, l.TLSConfig().GetCertificate)
}

func TestNewCertLoader_Missing(t *testing.T) {
	dir := t.TempDir()
	_, err := NewCertLoader(filepath.Join(dir, "c.pem"), filepath.Join(dir, "k.pem"), slog.Default())
	assert.Error(t, err)
}

func TestCertLoader_ReloadsChangedFiles(t *testing.T) {
	dir := t.TempDir()
	certFile, keyFile := writeKeyPair(t, dir, "first")

	l, err := NewCertLoader(certFile, keyFile, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	l.checkInterval = 0

	writeKeyPair(t, dir, "second")
	future := time.Now().Add(time.Minute)
	require.NoError(t, os.Chtimes(certFile, future, future))

	assert.Equal(t, "second", commonName(t, l))
}

func TestCertLoader_KeepsOldCertOnBadReload(t *testing.T) {
	dir := t.TempDir()
	certFile, keyFile := writeKeyPair(t, dir, "first")

	l, err := NewCertLoader(certFile, keyFile, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	l.checkInterval = 0

	require.NoError(t, os.WriteFile(certFile, []byte("garbage"), 0600))
	future := time.Now().Add(time.Minute)
	require.NoError(t, os.Chtimes(certFile, future, future))

	assert.Equal(t, "first", commonName(t, l))
}

func insecureTLSConfig() *tls.Config {
	return &tls.Config{InsecureSkipVerify: true}
}
