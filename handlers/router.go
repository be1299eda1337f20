package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/devtree/devtree/backend/api/internal/app"
	"github.com/devtree/devtree/backend/api/internal/config"
	"github.com/devtree/devtree/backend/api/internal/tokens"
	"github.com/devtree/devtree/backend/api/pkg/middleware"
)

var startTime = time.Now()

// readyTimeout bounds each dependency check of /ready.
const readyTimeout = 2 * time.Second

// RouterOptions carries optional infrastructure. Zero values disable the
// matching feature.
type RouterOptions struct {
	// Redis backs the fixed-window rate limiter when RATE_LIMIT_USE_REDIS is set.
	Redis     *redis.Client
	Blacklist *tokens.Blacklist
	// Checks are run by /ready, keyed by dependency name.
	Checks map[string]func(ctx context.Context) error
}

// NewRouter assembles the HTTP API.
func NewRouter(cfg *config.Config, svc *app.Services, opts RouterOptions) *gin.Engine {
	r := gin.New()
	r.Use(middleware.RequestID(), corsMiddleware(cfg.CORS), middleware.AccessLog(), gin.Recovery())

	if cfg.RateLimit.Enabled {
		// the limiter runs ahead of Protect, so users are keyed from the token claim
		key := middleware.TokenRateKey(cfg)
		if cfg.RateLimit.UseRedis && opts.Redis != nil {
			win := time.Duration(cfg.RateLimit.WindowSeconds) * time.Second
			r.Use(middleware.RedisRateLimitMiddlewareWithKey(opts.Redis, cfg.RateLimit.RPS, cfg.RateLimit.Burst, win, key))
		} else {
			r.Use(middleware.RateLimitMiddlewareWithKey(cfg.RateLimit.RPS, cfg.RateLimit.Burst, key))
		}
	}

	r.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, "¡Backend DEVTREE funcionando!")
	})
	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "healthy")
	})
	r.GET("/ready", readiness(opts.Checks))
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	RegisterSwagger(r)

	protect := middleware.Protect(cfg, svc.Users, opts.Blacklist)
	api := r.Group("/api")
	NewAuthHandler(cfg, svc.Users, opts.Blacklist).Register(api, protect)
	NewTreeHandler(svc.Trees).Register(api, protect)
	NewNodeHandler(svc.Nodes).Register(api, protect)
	NewProgressHandler(svc.Progress).Register(api, protect)
	NewCommentHandler(svc.Comments).Register(api, protect)
	NewBadgeHandler(svc.Badges).Register(api, protect)
	NewSearchHandler(svc.Search).Register(api, protect)
	return r
}

func corsMiddleware(cfg config.CORSConfig) gin.HandlerFunc {
	cc := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "Authorization", middleware.RequestIDHeader},
		ExposeHeaders: []string{"Content-Length", middleware.RequestIDHeader},
		MaxAge:        12 * time.Hour,
	}
	if len(cfg.AllowedOrigins) == 0 {
		cc.AllowAllOrigins = true
	} else {
		cc.AllowOrigins = cfg.AllowedOrigins
		cc.AllowCredentials = true
	}
	return cors.New(cc)
}

// readiness returns 200 only when every check passes.
func readiness(checks map[string]func(ctx context.Context) error) gin.HandlerFunc {
	return func(c *gin.Context) {
		ready := true
		deps := make(map[string]bool, len(checks))
		for name, check := range checks {
			ctx, cancel := context.WithTimeout(c.Request.Context(), readyTimeout)
			err := check(ctx)
			cancel()
			deps[name] = err == nil
			if err != nil {
				ready = false
			}
		}
		uptime := time.Since(startTime).String()
		if !ready {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not_ready", "deps": deps, "uptime": uptime})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready", "deps": deps, "uptime": uptime})
	}
}
