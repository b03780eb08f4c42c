// Package config provides YAML configuration loading with validation and
// environment variable substitution for the SmartBee API.
package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"reflect"
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Config is the top-level service configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server" json:"server"`
	Service   ServiceConfig   `yaml:"service" json:"service"`
	CORS      CORSConfig      `yaml:"cors" json:"cors"`
	Metrics   MetricsConfig   `yaml:"metrics" json:"metrics"`
	Logging   LoggingConfig   `yaml:"logging" json:"logging"`
	RateLimit RateLimitConfig `yaml:"rate_limit" json:"rate_limit"`
	Admin     AdminConfig     `yaml:"admin" json:"admin"`

	// Warnings holds non-fatal config issues detected during loading.
	// Stored on the Config itself (not a package-level var) so it is
	// safe to call Load concurrently from the hot-reload goroutine.
	Warnings []string `yaml:"-" json:"-"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port            int           `yaml:"port" json:"port" validate:"min=1,max=65535"`
	ReadTimeout     time.Duration `yaml:"read_timeout" json:"read_timeout" validate:"gt=0"`
	WriteTimeout    time.Duration `yaml:"write_timeout" json:"write_timeout" validate:"gt=0"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" json:"shutdown_timeout" validate:"gt=0"`
	TrustedProxies  []string      `yaml:"trusted_proxies" json:"trusted_proxies" validate:"dive,cidr"`
	MaxBodyBytes    int64         `yaml:"max_body_bytes" json:"max_body_bytes" validate:"gt=0"`
	GlobalTimeoutMs int           `yaml:"global_timeout_ms" json:"global_timeout_ms" validate:"gte=0"`
	TLS             TLSConfig     `yaml:"tls" json:"tls"`
}

// GlobalTimeout returns the global request deadline as a time.Duration.
// Returns 0 (disabled) when GlobalTimeoutMs is not set.
func (s ServerConfig) GlobalTimeout() time.Duration {
	if s.GlobalTimeoutMs <= 0 {
		return 0
	}
	return time.Duration(s.GlobalTimeoutMs) * time.Millisecond
}

// TLSConfig holds TLS termination settings.
type TLSConfig struct {
	Enabled    bool   `yaml:"enabled" json:"enabled"`
	CertFile   string `yaml:"cert_file" json:"cert_file" validate:"required_if=Enabled true"`
	KeyFile    string `yaml:"key_file" json:"key_file" validate:"required_if=Enabled true"`
	MinVersion string `yaml:"min_version" json:"min_version" validate:"omitempty,oneof=1.2 1.3"` // default: "1.2"
}

// ServiceConfig is the identity reported by the root endpoint.
type ServiceConfig struct {
	Name    string `yaml:"name" json:"name" validate:"required"`
	Version string `yaml:"version" json:"version" validate:"required"`
	Network string `yaml:"network" json:"network" validate:"required"`
}

// CORSConfig holds cross-origin settings. The defaults allow any origin and
// header for GET and POST.
type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins" json:"allowed_origins" validate:"min=1"`
	AllowedMethods []string `yaml:"allowed_methods" json:"allowed_methods" validate:"min=1,dive,oneof=GET POST PUT PATCH DELETE OPTIONS HEAD"`
	AllowedHeaders []string `yaml:"allowed_headers" json:"allowed_headers" validate:"min=1"`
	MaxAge         string   `yaml:"max_age" json:"max_age" validate:"omitempty,number"`
}

// MetricsConfig holds Prometheus metrics endpoint settings.
// Enabled defaults to true; set to false to disable metrics.
type MetricsConfig struct {
	Enabled *bool  `yaml:"enabled" json:"enabled"`
	Path    string `yaml:"path" json:"path" validate:"startswith=/"`
}

// IsEnabled returns whether metrics are enabled (defaults to true).
func (m MetricsConfig) IsEnabled() bool {
	if m.Enabled == nil {
		return true
	}
	return *m.Enabled
}

// LoggingConfig holds log output and access log settings.
type LoggingConfig struct {
	Level           string            `yaml:"level" json:"level" validate:"omitempty,oneof=debug info warn error"` // default: "info"
	Output          string            `yaml:"output" json:"output"`                                                 // "stdout", "stderr", or file path; default: "stdout"
	MaxSizeMB       int               `yaml:"max_size_mb" json:"max_size_mb"`                                       // max log file size before rotation; default: 100
	MaxBackups      int               `yaml:"max_backups" json:"max_backups"`                                       // number of rotated files to keep; default: 3
	MaxAgeDays      int               `yaml:"max_age_days" json:"max_age_days"`                                     // max days to retain rotated files; default: 30
	BodyLogging     bool              `yaml:"body_logging" json:"body_logging"`                                     // log request/response bodies; default: false
	MaxBodyLogBytes int               `yaml:"max_body_log_bytes" json:"max_body_log_bytes"`                         // max bytes of body to log; default: 4096
	EndpointLevels  map[string]string `yaml:"endpoint_levels" json:"endpoint_levels,omitempty"`                     // path prefix -> access log level
}

// ToFile reports whether log output goes to a file rather than a std stream.
func (l LoggingConfig) ToFile() bool {
	return l.Output != "stdout" && l.Output != "stderr"
}

// RateLimitConfig holds the per-client rate limiter settings. Rate limiting
// is off unless Enabled is set.
type RateLimitConfig struct {
	Enabled           bool           `yaml:"enabled" json:"enabled"`
	RequestsPerSecond float64        `yaml:"requests_per_second" json:"requests_per_second" validate:"gt=0"`
	BurstSize         int            `yaml:"burst_size" json:"burst_size" validate:"gt=0"`
	Overrides         []RateOverride `yaml:"overrides" json:"overrides,omitempty" validate:"dive"`
}

// RateOverride replaces the global rate for requests under PathPrefix.
type RateOverride struct {
	PathPrefix        string  `yaml:"path_prefix" json:"path_prefix" validate:"required,startswith=/"`
	RequestsPerSecond float64 `yaml:"requests_per_second" json:"requests_per_second" validate:"gt=0"`
	BurstSize         int     `yaml:"burst_size" json:"burst_size" validate:"gt=0"`
}

// AdminConfig holds admin API settings.
type AdminConfig struct {
	Enabled     bool     `yaml:"enabled" json:"enabled"`                                             // default: false
	IPAllowlist []string `yaml:"ip_allowlist" json:"ip_allowlist" validate:"required_if=Enabled true"` // CIDR notation
}

// ValidLogLevels are the accepted access log level strings for endpoints.
var ValidLogLevels = map[string]bool{
	"":      true, // empty means default ("info")
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
	"none":  true,
}

var envVarRe = regexp.MustCompile(`\$\{([^}]+)\}`)

// expandEnvVars replaces ${VAR_NAME} patterns in s with the corresponding
// environment variable value.
func expandEnvVars(s string) string {
	return envVarRe.ReplaceAllStringFunc(s, func(match string) string {
		key := match[2 : len(match)-1]
		if val, ok := os.LookupEnv(key); ok {
			return val
		}
		return match
	})
}

var validate = newValidator()

// newValidator reports failing fields by their YAML names so errors read
// like the config file.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("yaml"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Load reads and parses a YAML configuration file, applies environment
// variable substitution, sets defaults, and validates the result.
// Warnings are stored on cfg.Warnings (goroutine-safe, no package-level state).
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	return LoadFromBytes(data)
}

// LoadOrDefault behaves like Load but returns the default configuration when
// the file does not exist. The bool result reports whether a file was read.
func LoadOrDefault(path string) (*Config, bool, error) {
	cfg, err := Load(path)
	if err == nil {
		return cfg, true, nil
	}
	if errors.Is(err, os.ErrNotExist) {
		cfg, err := LoadFromBytes(nil)
		return cfg, false, err
	}
	return nil, false, err
}

// LoadFromBytes parses configuration from raw YAML bytes. Useful for testing.
func LoadFromBytes(data []byte) (*Config, error) {
	expanded := expandEnvVars(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	applyDefaults(&cfg)

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	cfg.Warnings = collectWarnings(&cfg)

	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8000
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = 15 * time.Second
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = 15 * time.Second
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = 10 * time.Second
	}
	if cfg.Server.MaxBodyBytes == 0 {
		cfg.Server.MaxBodyBytes = 1048576 // 1 MB
	}
	if cfg.Server.TLS.Enabled && cfg.Server.TLS.MinVersion == "" {
		cfg.Server.TLS.MinVersion = "1.2"
	}

	if cfg.Service.Name == "" {
		cfg.Service.Name = "SmartBee API"
	}
	if cfg.Service.Version == "" {
		cfg.Service.Version = "0.1.0"
	}
	if cfg.Service.Network == "" {
		cfg.Service.Network = "Greater Manchester"
	}

	if len(cfg.CORS.AllowedOrigins) == 0 {
		cfg.CORS.AllowedOrigins = []string{"*"}
	}
	if len(cfg.CORS.AllowedMethods) == 0 {
		cfg.CORS.AllowedMethods = []string{"GET", "POST"}
	}
	if len(cfg.CORS.AllowedHeaders) == 0 {
		cfg.CORS.AllowedHeaders = []string{"*"}
	}
	if cfg.CORS.MaxAge == "" {
		cfg.CORS.MaxAge = "600"
	}

	if cfg.Metrics.Path == "" {
		cfg.Metrics.Path = "/metrics"
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Output == "" {
		cfg.Logging.Output = "stdout"
	}
	if cfg.Logging.MaxSizeMB == 0 {
		cfg.Logging.MaxSizeMB = 100
	}
	if cfg.Logging.MaxBackups == 0 {
		cfg.Logging.MaxBackups = 3
	}
	if cfg.Logging.MaxAgeDays == 0 {
		cfg.Logging.MaxAgeDays = 30
	}
	if cfg.Logging.MaxBodyLogBytes == 0 {
		cfg.Logging.MaxBodyLogBytes = 4096
	}

	if cfg.RateLimit.RequestsPerSecond == 0 {
		cfg.RateLimit.RequestsPerSecond = 100
	}
	if cfg.RateLimit.BurstSize == 0 {
		cfg.RateLimit.BurstSize = 50
	}
}

func validateConfig(cfg *Config) error {
	if err := validate.Struct(cfg); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return fmt.Errorf("%s failed %q check (value %v)", yamlPath(fe.Namespace()), fe.Tag(), fe.Value())
		}
		return err
	}

	// Cross-field checks the struct tags cannot express.
	if cfg.Logging.ToFile() && cfg.Logging.MaxSizeMB < 1 {
		return fmt.Errorf("logging.max_size_mb must be positive when output is a file path")
	}
	if cfg.Logging.BodyLogging && cfg.Logging.MaxBodyLogBytes < 1 {
		return fmt.Errorf("logging.max_body_log_bytes must be positive when body_logging is enabled")
	}
	for prefix, level := range cfg.Logging.EndpointLevels {
		if !strings.HasPrefix(prefix, "/") {
			return fmt.Errorf("logging.endpoint_levels: key %q must start with /", prefix)
		}
		if !ValidLogLevels[level] {
			return fmt.Errorf("logging.endpoint_levels[%s] must be one of debug, info, warn, error, none; got %q", prefix, level)
		}
	}

	seen := make(map[string]bool)
	for i, o := range cfg.RateLimit.Overrides {
		if seen[o.PathPrefix] {
			return fmt.Errorf("rate_limit.overrides[%d]: duplicate path_prefix %s", i, o.PathPrefix)
		}
		seen[o.PathPrefix] = true
	}

	for i, cidr := range cfg.Admin.IPAllowlist {
		if _, _, err := net.ParseCIDR(cidr); err != nil {
			return fmt.Errorf("admin.ip_allowlist[%d]: invalid CIDR %q: %w", i, cidr, err)
		}
	}

	return nil
}

// yamlPath drops the root struct name from a validator namespace, turning
// "Config.rate_limit.burst_size" into "rate_limit.burst_size".
func yamlPath(ns string) string {
	if _, rest, ok := strings.Cut(ns, "."); ok {
		return rest
	}
	return ns
}

func collectWarnings(cfg *Config) []string {
	var warnings []string
	if strings.Contains(cfg.Server.TLS.CertFile, "${") || strings.Contains(cfg.Server.TLS.KeyFile, "${") {
		warnings = append(warnings, "server.tls contains unresolved environment variable")
	}
	if cfg.RateLimit.Enabled && len(cfg.Server.TrustedProxies) == 0 {
		warnings = append(warnings, "rate_limit is enabled without trusted_proxies; clients behind a proxy share one bucket")
	}
	for _, o := range cfg.CORS.AllowedOrigins {
		if o != "*" && !strings.HasPrefix(o, "http://") && !strings.HasPrefix(o, "https://") {
			warnings = append(warnings, fmt.Sprintf("cors.allowed_origins entry %q has no scheme", o))
		}
	}
	return warnings
}
