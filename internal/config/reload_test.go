package config

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func newTestLogger() (*slog.Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))
	return logger, &buf
}

func writeTestConfig(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "test-config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}
	return path
}

const validConfig = `
server:
  port: 8000
rate_limit:
  enabled: true
  requests_per_second: 100
  burst_size: 50
`

const validConfigUpdated = `
server:
  port: 8000
rate_limit:
  enabled: true
  requests_per_second: 200
  burst_size: 100
logging:
  endpoint_levels:
    /health: none
`

const invalidConfig = `
server:
  port: -1
`

// newReloader writes validConfig to a temp dir and returns a reloader for it.
func newReloader(t *testing.T) (*Reloader, string, *bytes.Buffer) {
	t.Helper()
	logger, logBuf := newTestLogger()
	path := writeTestConfig(t, t.TempDir(), validConfig)
	initial, err := Load(path)
	if err != nil {
		t.Fatalf("failed to load initial config: %v", err)
	}
	return NewReloader(path, initial, logger), path, logBuf
}

func rewrite(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to update config: %v", err)
	}
}

func TestReloader_Current(t *testing.T) {
	r, _, _ := newReloader(t)
	if got := r.Current().RateLimit.RequestsPerSecond; got != 100 {
		t.Errorf("expected 100 rps, got %v", got)
	}
}

func TestReloader_Reload(t *testing.T) {
	tests := []struct {
		name      string
		content   string
		wantOK    bool
		wantRPS   float64
		wantBurst int
	}{
		{"valid update applied", validConfigUpdated, true, 200, 100},
		{"invalid keeps current", invalidConfig, false, 100, 50},
		{"unparseable keeps current", "server: [", false, 100, 50},
		{"empty file resets to defaults", "", true, 100, 50},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, path, logBuf := newReloader(t)

			var calls int
			var seen *Config
			r.OnReload(func(cfg *Config) {
				calls++
				seen = cfg
			})

			rewrite(t, path, tt.content)
			if ok := r.Reload(); ok != tt.wantOK {
				t.Fatalf("Reload() = %v, want %v", ok, tt.wantOK)
			}

			cfg := r.Current()
			if cfg.RateLimit.RequestsPerSecond != tt.wantRPS || cfg.RateLimit.BurstSize != tt.wantBurst {
				t.Errorf("rate_limit = %v/%d, want %v/%d",
					cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.BurstSize, tt.wantRPS, tt.wantBurst)
			}

			if tt.wantOK {
				if calls != 1 || seen != cfg {
					t.Errorf("callback calls = %d, want 1 with the new config", calls)
				}
			} else {
				if calls != 0 {
					t.Error("callback should not run on a failed reload")
				}
				if !strings.Contains(logBuf.String(), "config reload failed") {
					t.Error("expected the failure to be logged")
				}
			}
		})
	}
}

func TestReloader_RateLimitToggle(t *testing.T) {
	r, path, _ := newReloader(t)

	rewrite(t, path, "rate_limit:\n  enabled: false\n")
	if !r.Reload() {
		t.Fatal("expected reload to succeed")
	}
	if r.Current().RateLimit.Enabled {
		t.Error("expected rate limiting disabled after reload")
	}
}

func TestReloader_LogChanges(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"rate limit", validConfigUpdated, "rate limit config changed"},
		{"endpoint levels", validConfigUpdated, "endpoint log levels changed"},
		{"port needs restart", "server:\n  port: 9000\n", "restart required"},
		{"admin needs restart", "admin:\n  enabled: true\n  ip_allowlist: [\"127.0.0.1/32\"]\n", "admin enabled changed"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, path, logBuf := newReloader(t)
			rewrite(t, path, tt.content)
			if !r.Reload() {
				t.Fatal("expected reload to succeed")
			}
			if !strings.Contains(logBuf.String(), tt.want) {
				t.Errorf("expected %q in log output", tt.want)
			}
		})
	}
}

func TestReloader_EndpointLevelsApplied(t *testing.T) {
	r, path, _ := newReloader(t)
	rewrite(t, path, validConfigUpdated)
	r.Reload()
	if got := r.Current().Logging.EndpointLevels["/health"]; got != "none" {
		t.Errorf("expected /health level none after reload, got %q", got)
	}
}

// startWatching starts r and returns a channel that receives one value per
// completed reload.
func startWatching(t *testing.T, r *Reloader) <-chan struct{} {
	t.Helper()
	reloaded := make(chan struct{}, 4)
	r.OnReload(func(*Config) {
		select {
		case reloaded <- struct{}{}:
		default:
		}
	})
	r.Start()
	t.Cleanup(r.Stop)
	time.Sleep(100 * time.Millisecond)
	return reloaded
}

func TestReloader_FileWatch(t *testing.T) {
	tests := []struct {
		name  string
		write func(t *testing.T, path string)
	}{
		{"write in place", func(t *testing.T, path string) {
			rewrite(t, path, validConfigUpdated)
		}},
		{"atomic rename", func(t *testing.T, path string) {
			tmp := path + ".tmp"
			rewrite(t, tmp, validConfigUpdated)
			if err := os.Rename(tmp, path); err != nil {
				t.Fatal(err)
			}
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, path, _ := newReloader(t)
			reloaded := startWatching(t, r)

			tt.write(t, path)

			select {
			case <-reloaded:
				if got := r.Current().RateLimit.BurstSize; got != 100 {
					t.Errorf("burst = %d after reload, want 100", got)
				}
			case <-time.After(3 * time.Second):
				t.Fatal("file watch reload timed out")
			}
		})
	}
}

func TestReloader_IgnoresSiblingFiles(t *testing.T) {
	r, path, _ := newReloader(t)
	reloaded := startWatching(t, r)

	rewrite(t, filepath.Join(filepath.Dir(path), "other.yaml"), "x: 1\n")

	select {
	case <-reloaded:
		t.Error("writing a sibling file should not trigger a reload")
	case <-time.After(reloadDebounce + 300*time.Millisecond):
	}
}

func TestReloader_StopIdempotent(t *testing.T) {
	r, _, _ := newReloader(t)
	r.Start()
	r.Stop()
	r.Stop()
}
