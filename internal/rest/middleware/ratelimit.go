package middleware

import (
	"time"

	"github.com/Filament-Bry/gd-checkout/internal/config"
	ierr "github.com/Filament-Bry/gd-checkout/internal/errors"
	"github.com/gin-gonic/gin"
	goCache "github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"
)

// idle limiters are evicted after this long
const limiterIdleTTL = 10 * time.Minute

// RateLimitMiddleware applies a token bucket per client IP. A zero rate disables it.
func RateLimitMiddleware(cfg *config.Configuration) gin.HandlerFunc {
	rl := cfg.Checkout.RateLimit
	if rl.RPS <= 0 {
		return func(c *gin.Context) {
			c.Next()
		}
	}

	burst := rl.Burst
	if burst < 1 {
		burst = 1
	}
	limiters := goCache.New(limiterIdleTTL, limiterIdleTTL)

	return func(c *gin.Context) {
		ip := c.ClientIP()

		var limiter *rate.Limiter
		if v, ok := limiters.Get(ip); ok {
			limiter = v.(*rate.Limiter)
		} else {
			limiter = rate.NewLimiter(rate.Limit(rl.RPS), burst)
			if err := limiters.Add(ip, limiter, goCache.DefaultExpiration); err != nil {
				// lost the race, use the stored one
				if v, ok := limiters.Get(ip); ok {
					limiter = v.(*rate.Limiter)
				}
			}
		}
		// keep active clients from being evicted
		limiters.SetDefault(ip, limiter)

		if !limiter.Allow() {
			c.Header("Retry-After", "1")
			c.Error(ierr.NewError("rate limit exceeded").
				WithHint("Too many requests, please try again shortly").
				Mark(ierr.ErrRateLimited))
			c.Abort()
			return
		}
		c.Next()
	}
}
