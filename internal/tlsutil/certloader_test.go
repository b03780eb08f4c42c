package tlsutil

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/tls"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"log/slog"
	"math/big"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/dskow/smartbee-api/internal/config"
)

// generateTestCert creates a self-signed cert/key pair and writes them to
// the given directory. Returns the file paths.
func generateTestCert(t *testing.T, dir string) (certFile, keyFile string) {
	return generateNamedCert(t, dir, "smartbee.test")
}

func generateNamedCert(t *testing.T, dir, commonName string) (certFile, keyFile string) {
	t.Helper()

	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}

	template := &x509.Certificate{
		SerialNumber: big.NewInt(1),
		Subject:      pkix.Name{CommonName: commonName},
		NotBefore:    time.Now(),
		NotAfter:     time.Now().Add(24 * time.Hour),
	}

	certDER, err := x509.CreateCertificate(rand.Reader, template, template, &key.PublicKey, key)
	if err != nil {
		t.Fatalf("create cert: %v", err)
	}

	certFile = filepath.Join(dir, "cert.pem")
	keyFile = filepath.Join(dir, "key.pem")

	certPEM := pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: certDER})
	if err := os.WriteFile(certFile, certPEM, 0o644); err != nil {
		t.Fatalf("write cert: %v", err)
	}

	keyDER, err := x509.MarshalECPrivateKey(key)
	if err != nil {
		t.Fatalf("marshal key: %v", err)
	}
	keyPEM := pem.EncodeToMemory(&pem.Block{Type: "EC PRIVATE KEY", Bytes: keyDER})
	if err := os.WriteFile(keyFile, keyPEM, 0o644); err != nil {
		t.Fatalf("write key: %v", err)
	}

	return certFile, keyFile
}

func TestCertLoader_InitialLoad(t *testing.T) {
	dir := t.TempDir()
	certFile, keyFile := generateTestCert(t, dir)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cl, err := New(config.TLSConfig{Enabled: true, CertFile: certFile, KeyFile: keyFile}, logger)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer cl.Stop()

	cert, err := cl.GetCertificate(&tls.ClientHelloInfo{})
	if err != nil {
		t.Fatalf("GetCertificate: %v", err)
	}
	if cert == nil {
		t.Fatal("expected non-nil certificate")
	}
}

func TestCertLoader_InvalidCert(t *testing.T) {
	dir := t.TempDir()
	certFile := filepath.Join(dir, "cert.pem")
	keyFile := filepath.Join(dir, "key.pem")

	os.WriteFile(certFile, []byte("invalid"), 0o644)
	os.WriteFile(keyFile, []byte("invalid"), 0o644)

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	_, err := New(config.TLSConfig{Enabled: true, CertFile: certFile, KeyFile: keyFile}, logger)
	if err == nil {
		t.Fatal("expected error for invalid cert")
	}
}

func TestCertLoader_Reload(t *testing.T) {
	dir := t.TempDir()
	certFile, keyFile := generateTestCert(t, dir)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cl, err := New(config.TLSConfig{Enabled: true, CertFile: certFile, KeyFile: keyFile}, logger)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer cl.Stop()

	// Generate a new cert and overwrite the files.
	generateNamedCert(t, dir, "rotated.smartbee.test")

	if err := cl.Reload(); err != nil {
		t.Fatalf("Reload: %v", err)
	}

	cert, err := cl.GetCertificate(&tls.ClientHelloInfo{})
	if err != nil {
		t.Fatalf("GetCertificate after reload: %v", err)
	}
	if cert == nil {
		t.Fatal("expected non-nil certificate after reload")
	}

	leaf, err := x509.ParseCertificate(cert.Certificate[0])
	if err != nil {
		t.Fatalf("parse leaf: %v", err)
	}
	if leaf.Subject.CommonName != "rotated.smartbee.test" {
		t.Errorf("expected rotated cert, got CN %q", leaf.Subject.CommonName)
	}
}

func TestCertLoader_FailedReloadKeepsCurrent(t *testing.T) {
	dir := t.TempDir()
	certFile, keyFile := generateTestCert(t, dir)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cl, err := New(config.TLSConfig{Enabled: true, CertFile: certFile, KeyFile: keyFile}, logger)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer cl.Stop()

	before, _ := cl.GetCertificate(nil)
	os.WriteFile(certFile, []byte("garbage"), 0o644)

	if err := cl.Reload(); err == nil {
		t.Fatal("expected reload error")
	}
	after, _ := cl.GetCertificate(nil)
	if after != before {
		t.Error("certificate changed after failed reload")
	}
}

func TestCertLoader_TLSConfig(t *testing.T) {
	dir := t.TempDir()
	certFile, keyFile := generateTestCert(t, dir)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cl, err := New(config.TLSConfig{Enabled: true, CertFile: certFile, KeyFile: keyFile, MinVersion: "1.3"}, logger)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer cl.Stop()

	cfg := cl.TLSConfig()
	if cfg.MinVersion != tls.VersionTLS13 {
		t.Errorf("MinVersion = %x, want TLS 1.3", cfg.MinVersion)
	}
	if cfg.GetCertificate == nil {
		t.Error("expected GetCertificate callback")
	}
}

func TestMinVersion(t *testing.T) {
	for in, want := range map[string]uint16{"": tls.VersionTLS12, "1.2": tls.VersionTLS12, "1.3": tls.VersionTLS13} {
		if got := MinVersion(in); got != want {
			t.Errorf("MinVersion(%q) = %x, want %x", in, got, want)
		}
	}
}

func TestCertLoader_Relevant(t *testing.T) {
	cl := &CertLoader{certFile: "/certs/tls.crt", keyFile: "/certs/tls.key"}

	tests := []struct {
		event fsnotify.Event
		want  bool
	}{
		{fsnotify.Event{Name: "/certs/tls.crt", Op: fsnotify.Write}, true},
		{fsnotify.Event{Name: "/certs/tls.key", Op: fsnotify.Create}, true},
		{fsnotify.Event{Name: "/certs/..data", Op: fsnotify.Create}, true},
		{fsnotify.Event{Name: "/certs/tls.crt", Op: fsnotify.Chmod}, false},
		{fsnotify.Event{Name: "/certs/other.pem", Op: fsnotify.Write}, false},
	}
	for _, tt := range tests {
		if got := cl.relevant(tt.event); got != tt.want {
			t.Errorf("relevant(%v) = %v, want %v", tt.event, got, tt.want)
		}
	}
}
