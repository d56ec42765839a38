package daemon

import (
	"context"
	"net/http"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// RateLimitConfig defines rate limits for a specific route or globally.
type RateLimitConfig struct {
	// RequestsPerSecond is the sustainable rate (tokens added per second).
	RequestsPerSecond float64

	// BurstSize is the maximum number of requests allowed in a burst.
	BurstSize int
}

// Route patterns that change state.
const (
	RouteSelectTheme    = "PUT /api/theme"
	RouteRandomizeTheme = "POST /api/theme/randomize"
	RouteDeleteUser     = "DELETE /api/users/{id}"
)

// DefaultRateLimits keys limits by ServeMux pattern or gRPC full method.
var DefaultRateLimits = map[string]RateLimitConfig{
	// Mutations
	RouteSelectTheme:    {RequestsPerSecond: 5, BurstSize: 10},
	RouteRandomizeTheme: {RequestsPerSecond: 5, BurstSize: 10},
	RouteDeleteUser:     {RequestsPerSecond: 2, BurstSize: 5},

	// Health checks - essentially unlimited
	"/grpc.health.v1.Health/Check": {RequestsPerSecond: 1000, BurstSize: 1000},
	"/grpc.health.v1.Health/Watch": {RequestsPerSecond: 10, BurstSize: 20},
}

// MutatingRoutes lists the routes whose limits follow server.rate_limit.
var MutatingRoutes = []string{RouteSelectTheme, RouteRandomizeTheme, RouteDeleteUser}

// tokenBucket implements the token bucket algorithm for rate limiting.
type tokenBucket struct {
	mu           sync.Mutex
	tokens       float64
	lastUpdate   time.Time
	ratePerSec   float64
	maxTokens    float64
	requestCount int64
	deniedCount  int64
}

func newTokenBucket(cfg RateLimitConfig) *tokenBucket {
	return &tokenBucket{
		tokens:     float64(cfg.BurstSize),
		lastUpdate: time.Now(),
		ratePerSec: cfg.RequestsPerSecond,
		maxTokens:  float64(cfg.BurstSize),
	}
}

// allow consumes a token if one is available.
func (tb *tokenBucket) allow() bool {
	return take(tb) == nil
}

// take consumes one token from every non-nil bucket, or from none of them when any
// bucket is empty. It returns the first empty bucket. Buckets are locked in argument
// order, so callers always pass the global bucket first.
func take(buckets ...*tokenBucket) *tokenBucket {
	held := make([]*tokenBucket, 0, len(buckets))
	for _, b := range buckets {
		if b != nil {
			b.mu.Lock()
			held = append(held, b)
		}
	}
	defer func() {
		for _, b := range held {
			b.mu.Unlock()
		}
	}()

	now := time.Now()
	var empty *tokenBucket
	for _, b := range held {
		b.requestCount++
		b.refillLocked(now)
		if empty == nil && b.tokens < 1.0 {
			empty = b
		}
	}
	if empty != nil {
		empty.deniedCount++
		return empty
	}
	for _, b := range held {
		b.tokens--
	}
	return nil
}

func (tb *tokenBucket) refillLocked(now time.Time) {
	elapsed := now.Sub(tb.lastUpdate).Seconds()
	tb.tokens += elapsed * tb.ratePerSec
	if tb.tokens > tb.maxTokens {
		tb.tokens = tb.maxTokens
	}
	tb.lastUpdate = now
}

// retryAfter estimates how long until the next token.
func (tb *tokenBucket) retryAfter() time.Duration {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	if tb.ratePerSec <= 0 {
		return time.Second
	}
	missing := 1.0 - tb.tokens
	if missing <= 0 {
		return 0
	}
	return time.Duration(missing / tb.ratePerSec * float64(time.Second))
}

func (tb *tokenBucket) stats() (available float64, requestCount, deniedCount int64) {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	elapsed := time.Since(tb.lastUpdate).Seconds()
	available = tb.tokens + elapsed*tb.ratePerSec
	if available > tb.maxTokens {
		available = tb.maxTokens
	}
	return available, tb.requestCount, tb.deniedCount
}

// RateLimiter manages token buckets per route.
type RateLimiter struct {
	mu      sync.RWMutex
	buckets map[string]*tokenBucket
	configs map[string]RateLimitConfig

	globalBucket *tokenBucket
	globalConfig *RateLimitConfig

	enabled bool
}

// RateLimiterOption configures the RateLimiter.
type RateLimiterOption func(*RateLimiter)

// WithRouteLimits sets custom limits for specific routes.
func WithRouteLimits(limits map[string]RateLimitConfig) RateLimiterOption {
	return func(rl *RateLimiter) {
		for route, cfg := range limits {
			rl.configs[route] = cfg
		}
	}
}

// WithGlobalLimit sets a limit shared by all routes.
func WithGlobalLimit(cfg RateLimitConfig) RateLimiterOption {
	return func(rl *RateLimiter) {
		rl.globalConfig = &cfg
		rl.globalBucket = newTokenBucket(cfg)
	}
}

// WithEnabled enables or disables rate limiting.
func WithEnabled(enabled bool) RateLimiterOption {
	return func(rl *RateLimiter) {
		rl.enabled = enabled
	}
}

// NewRateLimiter creates a rate limiter seeded with DefaultRateLimits.
func NewRateLimiter(opts ...RateLimiterOption) *RateLimiter {
	rl := &RateLimiter{
		buckets: make(map[string]*tokenBucket),
		configs: make(map[string]RateLimitConfig),
		enabled: true,
	}

	for route, cfg := range DefaultRateLimits {
		rl.configs[route] = cfg
	}
	for _, opt := range opts {
		opt(rl)
	}
	return rl
}

// Allow reports whether a request to route may proceed.
func (rl *RateLimiter) Allow(route string) bool {
	return rl.reserve(route) == nil
}

// reserve takes a token for route from the global and route buckets together. It
// returns the bucket that denied the request, or nil when the request may proceed.
func (rl *RateLimiter) reserve(route string) *tokenBucket {
	if !rl.IsEnabled() {
		return nil
	}
	return take(rl.globalBucket, rl.getBucket(route))
}

func (rl *RateLimiter) getBucket(route string) *tokenBucket {
	rl.mu.RLock()
	bucket, exists := rl.buckets[route]
	rl.mu.RUnlock()
	if exists {
		return bucket
	}

	rl.mu.Lock()
	defer rl.mu.Unlock()

	if bucket, exists = rl.buckets[route]; exists {
		return bucket
	}
	cfg, ok := rl.configs[route]
	if !ok {
		return nil
	}
	bucket = newTokenBucket(cfg)
	rl.buckets[route] = bucket
	return bucket
}

// RouteStats is a snapshot of one bucket.
type RouteStats struct {
	Route            string  `json:"route"`
	Available        float64 `json:"available"`
	RequestsPerSec   float64 `json:"requests_per_sec"`
	BurstSize        int     `json:"burst_size"`
	TotalRequests    int64   `json:"total_requests"`
	DeniedRequests   int64   `json:"denied_requests"`
	DeniedPercentage float64 `json:"denied_percentage"`
}

// Stats returns statistics for all configured routes, sorted by route.
func (rl *RateLimiter) Stats() []RouteStats {
	rl.mu.RLock()
	defer rl.mu.RUnlock()

	stats := make([]RouteStats, 0, len(rl.configs))
	for route, cfg := range rl.configs {
		rs := RouteStats{
			Route:          route,
			RequestsPerSec: cfg.RequestsPerSecond,
			BurstSize:      cfg.BurstSize,
			Available:      float64(cfg.BurstSize),
		}
		if bucket, ok := rl.buckets[route]; ok {
			rs.Available, rs.TotalRequests, rs.DeniedRequests = bucket.stats()
			if rs.TotalRequests > 0 {
				rs.DeniedPercentage = float64(rs.DeniedRequests) / float64(rs.TotalRequests) * 100
			}
		}
		stats = append(stats, rs)
	}
	slices.SortFunc(stats, func(a, b RouteStats) int { return strings.Compare(a.Route, b.Route) })
	return stats
}

// GlobalStats returns statistics for the global limit, or nil if unset.
func (rl *RateLimiter) GlobalStats() *RouteStats {
	if rl.globalBucket == nil || rl.globalConfig == nil {
		return nil
	}

	available, total, denied := rl.globalBucket.stats()
	rs := &RouteStats{
		Route:          "global",
		Available:      available,
		RequestsPerSec: rl.globalConfig.RequestsPerSecond,
		BurstSize:      rl.globalConfig.BurstSize,
		TotalRequests:  total,
		DeniedRequests: denied,
	}
	if total > 0 {
		rs.DeniedPercentage = float64(denied) / float64(total) * 100
	}
	return rs
}

// SetEnabled enables or disables rate limiting at runtime.
func (rl *RateLimiter) SetEnabled(enabled bool) {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	rl.enabled = enabled
}

// IsEnabled returns whether rate limiting is currently enabled.
func (rl *RateLimiter) IsEnabled() bool {
	rl.mu.RLock()
	defer rl.mu.RUnlock()
	return rl.enabled
}

// Limit wraps next so requests beyond route's budget get 429.
func (rl *RateLimiter) Limit(route string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if denied := rl.reserve(route); denied != nil {
			secs := int(denied.retryAfter().Seconds()) + 1
			w.Header().Set("Retry-After", strconv.Itoa(secs))
			writeError(w, http.StatusTooManyRequests, "rate limit exceeded for "+route)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// UnaryServerInterceptor returns a gRPC unary interceptor that applies rate limiting.
func (rl *RateLimiter) UnaryServerInterceptor() grpc.UnaryServerInterceptor {
	return func(
		ctx context.Context,
		req any,
		info *grpc.UnaryServerInfo,
		handler grpc.UnaryHandler,
	) (any, error) {
		if !rl.Allow(info.FullMethod) {
			return nil, status.Errorf(codes.ResourceExhausted,
				"rate limit exceeded for method %s", info.FullMethod)
		}
		return handler(ctx, req)
	}
}

// StreamServerInterceptor limits the rate of stream creation, not individual messages.
func (rl *RateLimiter) StreamServerInterceptor() grpc.StreamServerInterceptor {
	return func(
		srv any,
		ss grpc.ServerStream,
		info *grpc.StreamServerInfo,
		handler grpc.StreamHandler,
	) error {
		if !rl.Allow(info.FullMethod) {
			return status.Errorf(codes.ResourceExhausted,
				"rate limit exceeded for stream %s", info.FullMethod)
		}
		return handler(srv, ss)
	}
}
