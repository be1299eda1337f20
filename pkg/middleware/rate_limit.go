package middleware

import (
	"fmt"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/devtree/devtree/backend/api/internal/config"
	"github.com/devtree/devtree/backend/api/internal/tokens"
	"github.com/devtree/devtree/backend/api/pkg/metrics"
)

// KeyFunc names the bucket a request is counted against.
type KeyFunc func(c *gin.Context) string

// limiterStore keeps one token bucket per key.
type limiterStore struct {
	m     sync.Map // map[string]*rate.Limiter
	rps   float64
	burst int
}

// get returns (and lazily creates) the limiter for key
func (s *limiterStore) get(key string) *rate.Limiter {
	if v, ok := s.m.Load(key); ok {
		return v.(*rate.Limiter)
	}
	v, _ := s.m.LoadOrStore(key, rate.NewLimiter(rate.Limit(s.rps), s.burst))
	return v.(*rate.Limiter)
}

// rateKey prefers the user already loaded into the context, otherwise the client IP.
func rateKey(c *gin.Context) string {
	if u, ok := CurrentUser(c); ok {
		return "user:" + u.ID.Hex()
	}
	return ipKey(c)
}

func ipKey(c *gin.Context) string {
	ip := c.ClientIP()
	if ip == "" {
		ip = "unknown"
	}
	return "ip:" + ip
}

// TokenRateKey keys requests by the userId claim of a valid Bearer token. It
// runs before Protect, so the token is only verified here, never revocation
// checked. Requests without a usable token fall back to the client IP.
func TokenRateKey(cfg *config.Config) KeyFunc {
	return func(c *gin.Context) string {
		if u, ok := CurrentUser(c); ok {
			return "user:" + u.ID.Hex()
		}
		var raw string
		if n, _ := fmt.Sscanf(c.GetHeader("Authorization"), "Bearer %s", &raw); n == 1 {
			if claims, err := tokens.ParseAccessToken(cfg, raw); err == nil && claims.UserID != "" {
				return "user:" + claims.UserID
			}
		}
		return ipKey(c)
	}
}

// RateLimitMiddleware returns a Gin middleware enforcing a token-bucket per-key limit.
// rps = allowed events per second, burst = maximum tokens in bucket.
func RateLimitMiddleware(rps float64, burst int) gin.HandlerFunc {
	return RateLimitMiddlewareWithKey(rps, burst, rateKey)
}

// RateLimitMiddlewareWithKey is RateLimitMiddleware with a custom bucket key.
func RateLimitMiddlewareWithKey(rps float64, burst int, key KeyFunc) gin.HandlerFunc {
	if key == nil {
		key = rateKey
	}
	store := &limiterStore{rps: rps, burst: burst}
	return func(c *gin.Context) {
		if !store.get(key(c)).Allow() {
			c.Header("Retry-After", "1")
			metrics.RateLimitRejected.WithLabelValues("memory").Inc()
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"message": "Demasiadas solicitudes"})
			return
		}
		metrics.RateLimitAllowed.WithLabelValues("memory").Inc()
		c.Next()
	}
}
