// Package ratelimit provides opt-in per-client-IP token bucket rate limiting
// middleware for the SmartBee API.
package ratelimit

import (
	"log/slog"
	"math"
	"net"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/dskow/smartbee-api/internal/apierror"
	"github.com/dskow/smartbee-api/internal/config"
	"github.com/dskow/smartbee-api/internal/metrics"
	"github.com/dskow/smartbee-api/internal/routing"
)

type client struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// clientKey encodes IP, rate, and burst so different path overrides get
// separate buckets.
type clientKey struct {
	ip    string
	rate  rate.Limit
	burst int
}

// limits is the immutable rate table swapped in by UpdateConfig.
type limits struct {
	enabled   bool
	rate      rate.Limit
	burst     int
	prefixes  []string
	overrides map[string]config.RateOverride
}

// Limiter tracks per-client rate limiters and performs periodic cleanup
// of stale entries. When the configuration has rate limiting disabled the
// middleware passes every request through.
type Limiter struct {
	mu           sync.RWMutex
	clients      map[clientKey]*client
	limits       limits
	trustedCIDRs []*net.IPNet
	endpoint     func(string) string
	logger       *slog.Logger
	stopCh       chan struct{}
	stopOnce     sync.Once
}

// Entry describes one live client bucket, as reported by Snapshot.
type Entry struct {
	ClientIP          string  `json:"client_ip"`
	RequestsPerSecond float64 `json:"requests_per_second"`
	BurstSize         int     `json:"burst_size"`
	Tokens            float64 `json:"tokens"`
	LastSeen          string  `json:"last_seen"`
}

// New creates a new Limiter from the rate limit section of the config. It
// starts a background goroutine that cleans up stale client entries every
// minute. trustedProxies is a list of CIDR strings (e.g. "10.0.0.0/8") whose
// X-Forwarded-For headers are trusted. endpoint maps a path onto the bounded
// label used for the rejection metric; nil reports every path as unmatched.
func New(cfg config.RateLimitConfig, trustedProxies []string, endpoint func(string) string, logger *slog.Logger) *Limiter {
	if endpoint == nil {
		endpoint = func(string) string { return routing.Unmatched }
	}
	l := &Limiter{
		clients:      make(map[clientKey]*client),
		limits:       buildLimits(cfg),
		trustedCIDRs: parseCIDRs(trustedProxies, logger),
		endpoint:     endpoint,
		logger:       logger,
		stopCh:       make(chan struct{}),
	}
	go l.cleanup()
	return l
}

func buildLimits(cfg config.RateLimitConfig) limits {
	lim := limits{
		enabled:   cfg.Enabled,
		rate:      rate.Limit(cfg.RequestsPerSecond),
		burst:     cfg.BurstSize,
		overrides: make(map[string]config.RateOverride, len(cfg.Overrides)),
	}
	for _, o := range cfg.Overrides {
		lim.prefixes = append(lim.prefixes, o.PathPrefix)
		lim.overrides[o.PathPrefix] = o
	}
	return lim
}

func parseCIDRs(cidrs []string, logger *slog.Logger) []*net.IPNet {
	var nets []*net.IPNet
	for _, cidr := range cidrs {
		_, ipNet, err := net.ParseCIDR(cidr)
		if err != nil {
			logger.Warn("invalid trusted proxy CIDR, skipping", "cidr", cidr, "error", err)
			continue
		}
		nets = append(nets, ipNet)
	}
	return nets
}

// Stop terminates the background cleanup goroutine. It is safe to call more
// than once.
func (l *Limiter) Stop() {
	l.stopOnce.Do(func() { close(l.stopCh) })
}

// UpdateConfig hot-reloads the rate limit settings, including the enabled
// flag. Existing per-client limiters are cleared so new limits take effect
// immediately.
func (l *Limiter) UpdateConfig(cfg config.RateLimitConfig) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.limits = buildLimits(cfg)
	l.clients = make(map[clientKey]*client)
}

// Enabled reports whether requests are currently being limited.
func (l *Limiter) Enabled() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.limits.enabled
}

// Middleware returns an HTTP middleware that enforces rate limits.
func (l *Limiter) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rateLimit, burst, enabled := l.limitsForPath(r.URL.Path)
			if !enabled {
				next.ServeHTTP(w, r)
				return
			}

			ip := l.ClientIP(r)
			limiter := l.getLimiter(ip, rateLimit, burst)
			if !limiter.Allow() {
				l.logger.Warn("rate limit exceeded", "client_ip", ip, "path", r.URL.Path)
				metrics.RateLimitHits.WithLabelValues(l.endpoint(r.URL.Path)).Inc()
				w.Header().Set("Retry-After", retryAfter(rateLimit))
				apierror.WriteJSON(w, r, http.StatusTooManyRequests, apierror.RateLimitExceeded, "rate limit exceeded, retry later")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// retryAfter is the whole number of seconds until one token refills,
// never less than one.
func retryAfter(r rate.Limit) string {
	secs := math.Ceil(1.0 / float64(r))
	if secs < 1 || math.IsInf(secs, 0) || math.IsNaN(secs) {
		secs = 1
	}
	return strconv.FormatFloat(secs, 'f', 0, 64)
}

// ClientIP extracts the real client IP. X-Forwarded-For is only trusted when
// the direct peer (RemoteAddr) is in the trusted proxies list.
func (l *Limiter) ClientIP(r *http.Request) string {
	peerIP := extractIP(r.RemoteAddr)

	if len(l.trustedCIDRs) > 0 && l.isTrusted(peerIP) {
		if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
			// Walk right-to-left, return first non-trusted IP
			parts := strings.Split(xff, ",")
			for i := len(parts) - 1; i >= 0; i-- {
				ip := strings.TrimSpace(parts[i])
				if ip != "" && !l.isTrusted(ip) {
					return ip
				}
			}
		}
	}

	return peerIP
}

func (l *Limiter) isTrusted(ipStr string) bool {
	ip := net.ParseIP(ipStr)
	if ip == nil {
		return false
	}
	for _, cidr := range l.trustedCIDRs {
		if cidr.Contains(ip) {
			return true
		}
	}
	return false
}

func extractIP(remoteAddr string) string {
	host, _, err := net.SplitHostPort(remoteAddr)
	if err != nil {
		return remoteAddr
	}
	return host
}

// limitsForPath returns the rate and burst for path, honouring the longest
// matching override.
func (l *Limiter) limitsForPath(path string) (rate.Limit, int, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	lim := l.limits
	if !lim.enabled {
		return 0, 0, false
	}
	if prefix, ok := routing.Longest(path, lim.prefixes); ok {
		o := lim.overrides[prefix]
		return rate.Limit(o.RequestsPerSecond), o.BurstSize, true
	}
	return lim.rate, lim.burst, true
}

// getLimiter returns or creates a rate limiter for the given client key.
// Uses RWMutex: read-lock for existing clients (common path), write-lock
// only for new insertions. rate.Limiter is internally goroutine-safe so
// Allow() does not need to be called under our lock.
func (l *Limiter) getLimiter(ip string, r rate.Limit, burst int) *rate.Limiter {
	key := clientKey{ip: ip, rate: r, burst: burst}

	l.mu.RLock()
	if c, exists := l.clients[key]; exists {
		// The cleanup threshold is 3 minutes; refreshing once per minute
		// is sufficient to prevent eviction.
		if time.Since(c.lastSeen) > 1*time.Minute {
			l.mu.RUnlock()
			l.mu.Lock()
			c.lastSeen = time.Now()
			l.mu.Unlock()
		} else {
			l.mu.RUnlock()
		}
		return c.limiter
	}
	l.mu.RUnlock()

	l.mu.Lock()
	defer l.mu.Unlock()

	// Double-check after acquiring write lock.
	if c, exists := l.clients[key]; exists {
		c.lastSeen = time.Now()
		return c.limiter
	}

	limiter := rate.NewLimiter(r, burst)
	l.clients[key] = &client{limiter: limiter, lastSeen: time.Now()}
	return limiter
}

// Snapshot returns the live client buckets ordered by client IP.
func (l *Limiter) Snapshot() []Entry {
	l.mu.RLock()
	defer l.mu.RUnlock()

	now := time.Now()
	entries := make([]Entry, 0, len(l.clients))
	for key, c := range l.clients {
		entries = append(entries, Entry{
			ClientIP:          key.ip,
			RequestsPerSecond: float64(key.rate),
			BurstSize:         key.burst,
			Tokens:            c.limiter.TokensAt(now),
			LastSeen:          c.lastSeen.UTC().Format(time.RFC3339),
		})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].ClientIP != entries[j].ClientIP {
			return entries[i].ClientIP < entries[j].ClientIP
		}
		return entries[i].RequestsPerSecond < entries[j].RequestsPerSecond
	})
	return entries
}

func (l *Limiter) cleanup() {
	ticker := time.NewTicker(1 * time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			l.mu.Lock()
			for key, c := range l.clients {
				if time.Since(c.lastSeen) > 3*time.Minute {
					delete(l.clients, key)
				}
			}
			l.mu.Unlock()
		case <-l.stopCh:
			return
		}
	}
}
