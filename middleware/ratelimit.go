package middleware

import (
	"net/http"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/Shweta-Mathanker/womanSafetyDTI/pkg/appenv"
	"github.com/Shweta-Mathanker/womanSafetyDTI/types"
)

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// limiterStore maps client IPs to token buckets. A janitor goroutine evicts
// entries not seen for staleAfter to bound memory.
type limiterStore struct {
	mu         sync.Mutex
	entries    map[string]*limiterEntry
	staleAfter time.Duration
}

func newLimiterStore(staleAfter time.Duration) *limiterStore {
	s := &limiterStore{
		entries:    make(map[string]*limiterEntry),
		staleAfter: staleAfter,
	}
	go func() {
		ticker := time.NewTicker(time.Minute)
		defer ticker.Stop()
		for range ticker.C {
			s.cleanup()
		}
	}()
	return s
}

func (s *limiterStore) allow(key string, r rate.Limit, burst int) bool {
	s.mu.Lock()
	e, ok := s.entries[key]
	if !ok {
		e = &limiterEntry{limiter: rate.NewLimiter(r, burst)}
		s.entries[key] = e
	}
	e.lastSeen = time.Now()
	lim := e.limiter
	s.mu.Unlock()
	return lim.Allow()
}

func (s *limiterStore) cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()
	cutoff := time.Now().Add(-s.staleAfter)
	for k, e := range s.entries {
		if e.lastSeen.Before(cutoff) {
			delete(s.entries, k)
		}
	}
}

func rateFromEnv(rpsVar, burstVar string, defRPS float64, defBurst int) (rate.Limit, int) {
	rps, burst := defRPS, defBurst
	if v := strings.TrimSpace(os.Getenv(rpsVar)); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f > 0 {
			rps = f
		}
	}
	if v := strings.TrimSpace(os.Getenv(burstVar)); v != "" {
		if i, err := strconv.Atoi(v); err == nil && i > 0 {
			burst = i
		}
	}
	return rate.Limit(rps), burst
}

func limitingDisabled() bool {
	switch strings.ToLower(strings.TrimSpace(os.Getenv("RATE_LIMIT_ENABLED"))) {
	case "0", "false", "no":
		return true
	}
	return appenv.IsTest()
}

func reject(c *gin.Context) {
	c.Header("Retry-After", "1")
	c.JSON(http.StatusTooManyRequests, types.NewErrorResponse(types.ErrorCodeRateLimit, "Too many requests"))
	c.Abort()
}

// RateLimit applies a per-IP token bucket to all endpoints except preflight
// and /health. Configure with RATE_LIMIT_RPS and RATE_LIMIT_BURST; disable
// with RATE_LIMIT_ENABLED=false (automatic in APP_ENV=test).
func RateLimit() gin.HandlerFunc {
	if limitingDisabled() {
		return func(c *gin.Context) { c.Next() }
	}
	r, burst := rateFromEnv("RATE_LIMIT_RPS", "RATE_LIMIT_BURST", 5, 20)
	store := newLimiterStore(10 * time.Minute)

	return func(c *gin.Context) {
		if c.Request.Method == http.MethodOptions || c.Request.URL.Path == "/health" {
			c.Next()
			return
		}
		if !store.allow(c.ClientIP(), r, burst) {
			reject(c)
			return
		}
		c.Next()
	}
}

// SosRateLimit applies a much stricter per-IP limit to the SOS endpoint,
// independent of the global limiter: every accepted request fans out one SMS
// per roster entry, so this is the SMS-spam guard.
func SosRateLimit() gin.HandlerFunc {
	if limitingDisabled() {
		return func(c *gin.Context) { c.Next() }
	}
	r, burst := rateFromEnv("SOS_RATE_LIMIT_RPS", "SOS_RATE_LIMIT_BURST", 0.2, 3)
	store := newLimiterStore(10 * time.Minute)

	return func(c *gin.Context) {
		if !store.allow(c.ClientIP(), r, burst) {
			reject(c)
			return
		}
		c.Next()
	}
}
