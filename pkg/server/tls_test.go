package server

import (
	"crypto/tls"
	"path/filepath"
	"testing"
)

// TestGenerateSelfSignedCert tests that the generated pair loads as a
// valid TLS certificate
func TestGenerateSelfSignedCert(t *testing.T) {
	dir := t.TempDir()
	certFile := filepath.Join(dir, "cert.pem")
	keyFile := filepath.Join(dir, "key.pem")

	if err := GenerateSelfSignedCert(certFile, keyFile, "localhost"); err != nil {
		t.Fatalf("GenerateSelfSignedCert failed: %v", err)
	}

	if _, err := tls.LoadX509KeyPair(certFile, keyFile); err != nil {
		t.Errorf("Generated pair does not load: %v", err)
	}
}

// TestServerAcceptsGeneratedCert tests that New validates the generated
// files
func TestServerAcceptsGeneratedCert(t *testing.T) {
	dir := t.TempDir()
	certFile := filepath.Join(dir, "cert.pem")
	keyFile := filepath.Join(dir, "key.pem")
	if err := GenerateSelfSignedCert(certFile, keyFile, "localhost"); err != nil {
		t.Fatalf("GenerateSelfSignedCert failed: %v", err)
	}

	config := DefaultConfig()
	config.EnableLogging = false
	config.EnableTLS = true
	config.TLSCertFile = certFile
	config.TLSKeyFile = keyFile

	if _, err := New(config, nil); err != nil {
		t.Errorf("New with generated cert failed: %v", err)
	}
}
