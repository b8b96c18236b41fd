package httpserver

import (
	"encoding/json"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/fdg312/curo/internal/config"
	"golang.org/x/time/rate"
)

// submitPath forwards to the paid completion service and gets its own budget.
const submitPath = "/v1/consultation/submit"

// Buckets with a full token count are dropped every sweepEvery lookups.
const sweepEvery = 1000

type limiterStore struct {
	mu      sync.Mutex
	buckets map[string]*rate.Limiter
	limit   rate.Limit
	burst   int
	lookups int
}

func newLimiterStore(limit rate.Limit, burst int) *limiterStore {
	return &limiterStore{
		buckets: make(map[string]*rate.Limiter),
		limit:   limit,
		burst:   burst,
	}
}

func (s *limiterStore) allow(ip string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	l, ok := s.buckets[ip]
	if !ok {
		l = rate.NewLimiter(s.limit, s.burst)
		s.buckets[ip] = l
	}
	allowed := l.Allow()

	s.lookups++
	if s.lookups%sweepEvery == 0 {
		for key, b := range s.buckets {
			if b.Tokens() >= float64(s.burst) {
				delete(s.buckets, key)
			}
		}
	}
	return allowed
}

func (s *limiterStore) size() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.buckets)
}

type rateLimitedBody struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func writeRateLimited(w http.ResponseWriter, retryAfter time.Duration, message string) {
	secs := int(retryAfter.Round(time.Second) / time.Second)
	if secs < 1 {
		secs = 1
	}
	var body rateLimitedBody
	body.Error.Code = "rate_limited"
	body.Error.Message = message

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Retry-After", strconv.Itoa(secs))
	w.WriteHeader(http.StatusTooManyRequests)
	_ = json.NewEncoder(w).Encode(body)
}

// RateLimitMiddleware enforces per-IP token buckets. RATE_LIMIT_RPS covers
// every route; RATE_LIMIT_SUBMIT_PER_MINUTE additionally caps advice
// requests. Either is off when <= 0.
func RateLimitMiddleware(cfg *config.Config, next http.Handler) http.Handler {
	var general, submit *limiterStore
	if cfg.RateLimitRPS > 0 {
		burst := cfg.RateLimitBurst
		if burst <= 0 {
			burst = cfg.RateLimitRPS
		}
		general = newLimiterStore(rate.Limit(cfg.RateLimitRPS), burst)
	}
	perMinute := cfg.RateLimitSubmitPerMinute
	if perMinute > 0 {
		submit = newLimiterStore(rate.Every(time.Minute/time.Duration(perMinute)), perMinute)
	}
	if general == nil && submit == nil {
		return next
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := clientIP(r)

		if general != nil && !general.allow(ip) {
			writeRateLimited(w, time.Second, "Too many requests")
			return
		}
		if submit != nil && r.Method == http.MethodPost && r.URL.Path == submitPath && !submit.allow(ip) {
			writeRateLimited(w, time.Minute/time.Duration(perMinute), "Too many consultations, try again shortly")
			return
		}

		next.ServeHTTP(w, r)
	})
}

func clientIP(r *http.Request) string {
	// First hop of X-Forwarded-For when behind a proxy.
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}

	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}
