package middleware

import (
	"github.com/Filament-Bry/gd-checkout/internal/types"
	"github.com/gin-gonic/gin"
)

// maxRequestIDLength bounds caller-supplied ids before they reach logs and idempotency keys
const maxRequestIDLength = 128

func RequestIDMiddleware(c *gin.Context) {
	requestID := c.GetHeader(types.HeaderRequestID)
	if requestID == "" || len(requestID) > maxRequestIDLength {
		requestID = types.GenerateUUIDWithPrefix(types.UUID_PREFIX_REQUEST)
	}

	ctx := types.SetRequestID(c.Request.Context(), requestID)
	c.Request = c.Request.WithContext(ctx)

	c.Header(types.HeaderRequestID, requestID)

	c.Next()
}
