// Package middleware provides the HTTP middleware wrapped around the SmartBee
// handlers: structured access logging, request ids, CORS, security headers,
// body limits, deadlines, metrics and panic recovery.
package middleware

import (
	"bytes"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/dskow/smartbee-api/internal/routing"
)

// LogLevelNone is a sentinel value indicating no log entry should be emitted.
// It is higher than any slog.Level so logger.Enabled() will always return false.
const LogLevelNone slog.Level = slog.LevelError + 100

// defaultMaxBodyLog caps logged bodies when AccessLog.MaxBodyLogBytes is unset.
const defaultMaxBodyLog = 4096

// ParseLogLevel converts an endpoint log level string to a slog.Level.
// Returns slog.LevelInfo for empty string (default).
func ParseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	case "none":
		return LogLevelNone
	default:
		return slog.LevelInfo
	}
}

// LevelTable maps path prefixes to access log levels. It can be swapped at
// runtime by Update, so config reloads take effect without a restart.
type LevelTable struct {
	entries atomic.Pointer[levelEntries]
}

type levelEntries struct {
	prefixes []string
	levels   map[string]slog.Level
}

// NewLevelTable builds a table from prefix -> level name pairs such as
// {"/health": "none"}.
func NewLevelTable(levels map[string]string) *LevelTable {
	t := &LevelTable{}
	t.Update(levels)
	return t
}

// Update replaces the table contents.
func (t *LevelTable) Update(levels map[string]string) {
	e := &levelEntries{levels: make(map[string]slog.Level, len(levels))}
	for prefix, name := range levels {
		e.prefixes = append(e.prefixes, prefix)
		e.levels[prefix] = ParseLogLevel(name)
	}
	t.entries.Store(e)
}

// Level returns the level for the longest matching prefix, or Info.
func (t *LevelTable) Level(path string) slog.Level {
	e := t.entries.Load()
	if prefix, ok := routing.Longest(path, e.prefixes); ok {
		return e.levels[prefix]
	}
	return slog.LevelInfo
}

// AccessLog configures the Logging middleware. Nil funcs fall back to Info
// for every path, the raw path as endpoint, and the RemoteAddr host as
// client.
type AccessLog struct {
	Level    func(path string) slog.Level
	Endpoint func(path string) string
	ClientIP func(r *http.Request) string

	// BodyLogging adds JSON request and response bodies, capped at
	// MaxBodyLogBytes, to each entry.
	BodyLogging     bool
	MaxBodyLogBytes int
}

func (a *AccessLog) withDefaults() {
	if a.Level == nil {
		a.Level = func(string) slog.Level { return slog.LevelInfo }
	}
	if a.Endpoint == nil {
		a.Endpoint = func(path string) string { return path }
	}
	if a.ClientIP == nil {
		a.ClientIP = remoteHost
	}
	if a.MaxBodyLogBytes <= 0 {
		a.MaxBodyLogBytes = defaultMaxBodyLog
	}
}

func remoteHost(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// Logging returns middleware that writes one "request" entry per request at
// the level cfg.Level assigns to its path.
func Logging(logger *slog.Logger, cfg AccessLog) func(http.Handler) http.Handler {
	cfg.withDefaults()

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			level := cfg.Level(r.URL.Path)
			if level == LogLevelNone || !logger.Enabled(r.Context(), level) {
				next.ServeHTTP(w, r)
				return
			}

			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, statusCode: http.StatusOK}

			var reqBody string
			if cfg.BodyLogging {
				reqBody = peekBody(r, cfg.MaxBodyLogBytes)
				rec.body = &cappedBuffer{max: cfg.MaxBodyLogBytes}
			}

			next.ServeHTTP(rec, r)

			attrs := []slog.Attr{
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.String("endpoint", cfg.Endpoint(r.URL.Path)),
				slog.Int("status", rec.statusCode),
				slog.Int("bytes", rec.written),
				slog.Int64("latency_ms", time.Since(start).Milliseconds()),
				slog.String("client_ip", cfg.ClientIP(r)),
				slog.String("request_id", GetRequestID(r.Context())),
			}
			if reqBody != "" {
				attrs = append(attrs, slog.String("request_body", reqBody))
			}
			if rec.body != nil && isJSON(w.Header().Get("Content-Type")) && rec.body.Len() > 0 {
				attrs = append(attrs, slog.String("response_body", rec.body.String()))
			}

			logger.LogAttrs(r.Context(), level, "request", attrs...)
		})
	}
}

func isJSON(contentType string) bool {
	return strings.Contains(strings.ToLower(contentType), "json")
}

// peekBody returns up to limit bytes of a JSON request body and leaves
// r.Body readable from the start.
func peekBody(r *http.Request, limit int) string {
	if r.Body == nil || r.Body == http.NoBody || !isJSON(r.Header.Get("Content-Type")) {
		return ""
	}
	head := make([]byte, limit+1)
	n, err := io.ReadFull(r.Body, head)
	head = head[:n]
	r.Body = readCloser{io.MultiReader(bytes.NewReader(head), r.Body), r.Body}
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return ""
	}
	if n > limit {
		return string(head[:limit]) + "...[truncated]"
	}
	return string(head)
}

type readCloser struct {
	io.Reader
	io.Closer
}

// statusRecorder captures the status code and byte count of a response, and
// optionally a prefix of its body.
type statusRecorder struct {
	http.ResponseWriter
	statusCode  int
	written     int
	wroteHeader bool
	body        *cappedBuffer
}

func (sr *statusRecorder) WriteHeader(code int) {
	if !sr.wroteHeader {
		sr.wroteHeader = true
		sr.statusCode = code
	}
	sr.ResponseWriter.WriteHeader(code)
}

func (sr *statusRecorder) Unwrap() http.ResponseWriter { return sr.ResponseWriter }

func (sr *statusRecorder) Write(b []byte) (int, error) {
	sr.wroteHeader = true
	n, err := sr.ResponseWriter.Write(b)
	sr.written += n
	if sr.body != nil {
		sr.body.keep(b[:n])
	}
	return n, err
}

// cappedBuffer keeps the first max bytes written to it.
type cappedBuffer struct {
	bytes.Buffer
	max int
}

func (c *cappedBuffer) keep(p []byte) {
	if room := c.max - c.Len(); room > 0 {
		if len(p) > room {
			p = p[:room]
		}
		c.Buffer.Write(p)
	}
}
