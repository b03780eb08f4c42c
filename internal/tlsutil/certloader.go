// Package tlsutil terminates TLS for the SmartBee API. Certificates are
// loaded from disk and swapped in place when the files change, so rotation
// needs no restart.
package tlsutil

import (
	"crypto/tls"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/dskow/smartbee-api/internal/config"
)

const reloadDebounce = 300 * time.Millisecond

// CertLoader serves the current certificate to TLS handshakes and reloads it
// when the cert or key file is rewritten.
type CertLoader struct {
	cert     atomic.Pointer[tls.Certificate]
	certFile string
	keyFile  string
	minVer   uint16
	logger   *slog.Logger
	watcher  *fsnotify.Watcher
	stopCh   chan struct{}
	stopOnce sync.Once
}

// MinVersion maps a config min_version string onto a tls version constant.
// Anything other than "1.3" yields TLS 1.2.
func MinVersion(v string) uint16 {
	if v == "1.3" {
		return tls.VersionTLS13
	}
	return tls.VersionTLS12
}

// New loads the initial certificate named by cfg and starts watching the
// directories holding the cert and key. Watching directories rather than the
// files keeps reloads working when a secret mount swaps a symlink.
func New(cfg config.TLSConfig, logger *slog.Logger) (*CertLoader, error) {
	cl := &CertLoader{
		certFile: filepath.Clean(cfg.CertFile),
		keyFile:  filepath.Clean(cfg.KeyFile),
		minVer:   MinVersion(cfg.MinVersion),
		logger:   logger,
		stopCh:   make(chan struct{}),
	}

	if err := cl.loadCert(); err != nil {
		return nil, fmt.Errorf("initial certificate load: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating file watcher: %w", err)
	}
	for _, dir := range cl.watchDirs() {
		if err := watcher.Add(dir); err != nil {
			watcher.Close()
			return nil, fmt.Errorf("watching %s: %w", dir, err)
		}
	}

	cl.watcher = watcher
	go cl.watchLoop()

	logger.Info("TLS certificate loaded, watching for changes",
		"cert_file", cl.certFile, "key_file", cl.keyFile)

	return cl, nil
}

func (cl *CertLoader) watchDirs() []string {
	certDir, keyDir := filepath.Dir(cl.certFile), filepath.Dir(cl.keyFile)
	if certDir == keyDir {
		return []string{certDir}
	}
	return []string{certDir, keyDir}
}

// TLSConfig returns a server tls.Config that always presents the most
// recently loaded certificate.
func (cl *CertLoader) TLSConfig() *tls.Config {
	return &tls.Config{
		MinVersion:     cl.minVer,
		GetCertificate: cl.GetCertificate,
	}
}

// GetCertificate returns the current certificate. It is the
// tls.Config.GetCertificate callback and runs on every handshake.
func (cl *CertLoader) GetCertificate(*tls.ClientHelloInfo) (*tls.Certificate, error) {
	return cl.cert.Load(), nil
}

// Reload reloads the cert/key from disk. A failed reload keeps the
// certificate already in use.
func (cl *CertLoader) Reload() error {
	if err := cl.loadCert(); err != nil {
		cl.logger.Error("TLS certificate reload failed, keeping current",
			"error", err, "cert_file", cl.certFile, "key_file", cl.keyFile)
		return err
	}
	cl.logger.Info("TLS certificate reloaded", "cert_file", cl.certFile, "key_file", cl.keyFile)
	return nil
}

// Stop terminates the file watcher. It is safe to call more than once.
func (cl *CertLoader) Stop() {
	cl.stopOnce.Do(func() {
		close(cl.stopCh)
		if cl.watcher != nil {
			cl.watcher.Close()
		}
	})
}

func (cl *CertLoader) loadCert() error {
	cert, err := tls.LoadX509KeyPair(cl.certFile, cl.keyFile)
	if err != nil {
		return err
	}
	cl.cert.Store(&cert)
	return nil
}

// relevant reports whether a directory event touches the cert or key.
func (cl *CertLoader) relevant(event fsnotify.Event) bool {
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
		return false
	}
	name := filepath.Clean(event.Name)
	if name == cl.certFile || name == cl.keyFile {
		return true
	}
	// Kubernetes-style secret mounts replace a ..data symlink.
	return filepath.Base(name) == "..data"
}

func (cl *CertLoader) watchLoop() {
	var debounce *time.Timer

	for {
		select {
		case event, ok := <-cl.watcher.Events:
			if !ok {
				return
			}
			if !cl.relevant(event) {
				continue
			}
			if debounce != nil {
				debounce.Stop()
			}
			debounce = time.AfterFunc(reloadDebounce, func() {
				cl.Reload() //nolint:errcheck
			})
		case err, ok := <-cl.watcher.Errors:
			if !ok {
				return
			}
			cl.logger.Error("TLS cert file watcher error", "error", err)
		case <-cl.stopCh:
			if debounce != nil {
				debounce.Stop()
			}
			return
		}
	}
}
