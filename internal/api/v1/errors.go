package v1

import (
	"net/http"

	"github.com/Filament-Bry/gd-checkout/internal/api/dto"
	"github.com/gin-gonic/gin"
)

// MethodNotAllowed answers any method a route does not register
func MethodNotAllowed(c *gin.Context) {
	c.JSON(http.StatusMethodNotAllowed, dto.ErrorMessage{Error: "Method Not Allowed"})
}
