package util

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServerCertificateGeneratesWhenMissing(t *testing.T) {
	dir := t.TempDir()
	certPath := filepath.Join(dir, "tls", "tls.crt")
	keyPath := filepath.Join(dir, "tls", "tls.key")

	cert, err := ServerCertificate(certPath, keyPath)
	require.NoError(t, err)

	assert.NotEmpty(t, cert.Certificate)
	assert.NotNil(t, cert.PrivateKey)
	assert.FileExists(t, certPath)
	assert.FileExists(t, keyPath)
}

func TestServerCertificateReloadsExisting(t *testing.T) {
	dir := t.TempDir()
	certPath := filepath.Join(dir, "tls.crt")
	keyPath := filepath.Join(dir, "tls.key")

	first, err := ServerCertificate(certPath, keyPath)
	require.NoError(t, err)

	second, err := ServerCertificate(certPath, keyPath)
	require.NoError(t, err)

	require.NotEmpty(t, first.Certificate)
	require.NotEmpty(t, second.Certificate)
	assert.Equal(t, first.Certificate[0], second.Certificate[0])
}

func TestServerCertificateRejectsCorruptFiles(t *testing.T) {
	dir := t.TempDir()
	certPath := filepath.Join(dir, "tls.crt")
	keyPath := filepath.Join(dir, "tls.key")

	require.NoError(t, writePEM(certPath, "CERTIFICATE", []byte("garbage")))
	require.NoError(t, writePEM(keyPath, "EC PRIVATE KEY", []byte("garbage")))

	_, err := ServerCertificate(certPath, keyPath)
	assert.Error(t, err)
}
