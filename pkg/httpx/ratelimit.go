package httpx

import (
	"net"
	"net/http"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/aussiebroadwan/kurdforest/pkg/slogx"
	"golang.org/x/time/rate"
)

// RateLimitConfig defines the rate limiting parameters.
type RateLimitConfig struct {
	// RequestsPerWindow is the sustained number of requests per Window
	RequestsPerWindow int
	Window            time.Duration
	// Burst is how many requests may be spent at once
	Burst int
}

// Rate limit profiles. Each can be overridden with RATELIMIT_{NAME}_REQUESTS,
// RATELIMIT_{NAME}_WINDOW_SEC and RATELIMIT_{NAME}_BURST.
var (
	// StrictLimit guards credential and code submission.
	StrictLimit = RateLimitConfig{RequestsPerWindow: 5, Window: time.Minute, Burst: 5}

	// ModerateLimit guards authenticated mutations that reach the metadata provider.
	ModerateLimit = RateLimitConfig{RequestsPerWindow: 30, Window: time.Minute, Burst: 30}

	// LenientLimit guards page renders, reads and health probes.
	LenientLimit = RateLimitConfig{RequestsPerWindow: 120, Window: time.Minute, Burst: 120}
)

func init() {
	StrictLimit = ParseRateLimitFromEnv("STRICT", StrictLimit)
	ModerateLimit = ParseRateLimitFromEnv("MODERATE", ModerateLimit)
	LenientLimit = ParseRateLimitFromEnv("LENIENT", LenientLimit)
}

// ParseRateLimitFromEnv overlays RATELIMIT_{prefix}_* variables on def.
// Unparseable or non-positive values are ignored.
func ParseRateLimitFromEnv(prefix string, def RateLimitConfig) RateLimitConfig {
	cfg := def
	if n, ok := positiveEnvInt("RATELIMIT_" + prefix + "_REQUESTS"); ok {
		cfg.RequestsPerWindow = n
	}
	if n, ok := positiveEnvInt("RATELIMIT_" + prefix + "_WINDOW_SEC"); ok {
		cfg.Window = time.Duration(n) * time.Second
	}
	if n, ok := positiveEnvInt("RATELIMIT_" + prefix + "_BURST"); ok {
		cfg.Burst = n
	}
	return cfg
}

func positiveEnvInt(key string) (int, bool) {
	n, err := strconv.Atoi(os.Getenv(key))
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}

// KeyExtractor groups requests into rate limit buckets.
type KeyExtractor func(*http.Request) string

// IPKeyExtractor returns the client IP, honouring X-Forwarded-For and X-Real-IP.
func IPKeyExtractor(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		return strings.TrimSpace(first)
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}

	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

// SubjectKeyExtractor returns the authenticated user id, if any.
func SubjectKeyExtractor(r *http.Request) string {
	return SubjectFromContext(r.Context())
}

// FormFieldKeyExtractor returns a query or form value, lower-cased so that
// "Alice@x.com" and "alice@x.com" share a bucket.
func FormFieldKeyExtractor(field string) KeyExtractor {
	return func(r *http.Request) string {
		if err := r.ParseForm(); err != nil {
			return ""
		}
		return strings.ToLower(strings.TrimSpace(r.FormValue(field)))
	}
}

// CompositeKeyExtractor joins the non-empty keys of several extractors.
func CompositeKeyExtractor(sep string, extractors ...KeyExtractor) KeyExtractor {
	return func(r *http.Request) string {
		parts := make([]string, 0, len(extractors))
		for _, extract := range extractors {
			if key := extract(r); key != "" {
				parts = append(parts, key)
			}
		}
		return strings.Join(parts, sep)
	}
}

// idleEviction is how long an untouched bucket survives.
const idleEviction = 10 * time.Minute

type bucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

type limiterSet struct {
	mu        sync.Mutex
	buckets   map[string]*bucket
	limit     rate.Limit
	burst     int
	lastSweep time.Time
}

func (s *limiterSet) get(key string, now time.Time) *rate.Limiter {
	s.mu.Lock()
	defer s.mu.Unlock()

	if now.Sub(s.lastSweep) > idleEviction {
		for k, b := range s.buckets {
			if now.Sub(b.lastSeen) > idleEviction {
				delete(s.buckets, k)
			}
		}
		s.lastSweep = now
	}

	b, ok := s.buckets[key]
	if !ok {
		b = &bucket{limiter: rate.NewLimiter(s.limit, s.burst)}
		s.buckets[key] = b
	}
	b.lastSeen = now
	return b.limiter
}

// RateLimitMiddleware rejects requests beyond cfg per key with 429 and a
// Retry-After header. Requests without a key pass through.
func RateLimitMiddleware(cfg RateLimitConfig, keyOf KeyExtractor) Middleware {
	set := &limiterSet{
		buckets:   make(map[string]*bucket),
		limit:     rate.Limit(float64(cfg.RequestsPerWindow) / cfg.Window.Seconds()),
		burst:     cfg.Burst,
		lastSweep: time.Now(),
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := keyOf(r)
			if key == "" {
				next.ServeHTTP(w, r)
				return
			}

			limiter := set.get(key, time.Now())
			if limiter.Allow() {
				next.ServeHTTP(w, r)
				return
			}

			reservation := limiter.Reserve()
			retryAfter := max(int(reservation.Delay().Seconds()), 1)
			reservation.Cancel()

			w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(cfg.RequestsPerWindow))
			w.Header().Set("X-RateLimit-Window", cfg.Window.String())

			slogx.FromContext(r.Context()).Warn("rate limit exceeded",
				"key", key,
				"retry_after", retryAfter,
			)
			WriteError(w, http.StatusTooManyRequests, "Too many requests. Please try again later.")
		})
	}
}

// RateLimitByIP limits by client IP.
func RateLimitByIP(cfg RateLimitConfig) Middleware {
	return RateLimitMiddleware(cfg, IPKeyExtractor)
}

// RateLimitBySubject limits by the authenticated user, falling back to IP.
func RateLimitBySubject(cfg RateLimitConfig) Middleware {
	return RateLimitMiddleware(cfg, CompositeKeyExtractor(":", SubjectKeyExtractor, IPKeyExtractor))
}

// RateLimitByIPAndFormField limits by IP plus a submitted field, e.g. the
// email address on a login form.
func RateLimitByIPAndFormField(cfg RateLimitConfig, field string) Middleware {
	return RateLimitMiddleware(cfg, CompositeKeyExtractor(":", IPKeyExtractor, FormFieldKeyExtractor(field)))
}
