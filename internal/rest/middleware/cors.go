package middleware

import (
	"net/http"
	"strings"

	"github.com/Filament-Bry/gd-checkout/internal/config"
	"github.com/gin-gonic/gin"
	"github.com/samber/lo"
)

// CORSMiddleware echoes the caller's origin when it is on the allow-list and
// answers preflight requests
func CORSMiddleware(cfg *config.Configuration) gin.HandlerFunc {
	allowed := lo.SliceToMap(cfg.Checkout.AllowedOrigins, func(origin string) (string, struct{}) {
		return strings.TrimRight(strings.TrimSpace(origin), "/"), struct{}{}
	})

	return func(c *gin.Context) {
		h := c.Writer.Header()
		h.Set("Access-Control-Allow-Methods", "POST, OPTIONS")
		h.Set("Access-Control-Allow-Headers", "Content-Type")
		h.Set("Access-Control-Max-Age", "86400")
		h.Add("Vary", "Origin")

		if origin := c.GetHeader("Origin"); origin != "" {
			if _, ok := allowed[origin]; ok {
				h.Set("Access-Control-Allow-Origin", origin)
			}
		}

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
