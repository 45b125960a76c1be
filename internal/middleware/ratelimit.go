package middleware

import (
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	apperrors "budgettracker/internal/errors"
)

// RateLimiterConfig configures RateLimit.
type RateLimiterConfig struct {
	PerMinute int
	Burst     int
	// ExpiresIn is how long an idle client's limiter is kept.
	ExpiresIn time.Duration
}

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiterStore holds one token bucket per client. Clients are keyed by
// user id when authenticated and by IP otherwise.
type RateLimiterStore struct {
	limit     rate.Limit
	burst     int
	expiresIn time.Duration

	mu          sync.Mutex
	visitors    map[string]*visitor
	lastCleanup time.Time
	now         func() time.Time
}

// NewRateLimiterStore creates a store. A non-positive PerMinute disables
// limiting.
func NewRateLimiterStore(cfg RateLimiterConfig) *RateLimiterStore {
	if cfg.Burst < 1 {
		cfg.Burst = 1
	}
	if cfg.ExpiresIn <= 0 {
		cfg.ExpiresIn = 3 * time.Minute
	}
	limit := rate.Inf
	if cfg.PerMinute > 0 {
		limit = rate.Limit(float64(cfg.PerMinute) / 60.0)
	}
	return &RateLimiterStore{
		limit:     limit,
		burst:     cfg.Burst,
		expiresIn: cfg.ExpiresIn,
		visitors:  make(map[string]*visitor),
		now:       time.Now,
	}
}

// Allow reports whether the client identified by key may proceed.
func (s *RateLimiterStore) Allow(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	v, ok := s.visitors[key]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(s.limit, s.burst)}
		s.visitors[key] = v
	}
	v.lastSeen = now

	if now.Sub(s.lastCleanup) > s.expiresIn {
		for k, other := range s.visitors {
			if now.Sub(other.lastSeen) > s.expiresIn {
				delete(s.visitors, k)
			}
		}
		s.lastCleanup = now
	}
	return v.limiter.AllowN(now, 1)
}

// RateLimit rejects requests over the store's rate with RATE_LIMITED.
func RateLimit(store *RateLimiterStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.GetString("userID")
		if key == "" {
			key = "ip:" + c.ClientIP()
		}
		if !store.Allow(key) {
			c.Header("Retry-After", "60")
			RenderError(c, apperrors.ErrRateLimited)
			return
		}
		c.Next()
	}
}
