package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/bicired/bicired-api/internal/middleware"
	"github.com/bicired/bicired-api/internal/models"
)

// claimsFromContext returns the claims stored by the JWT middleware, or nil
// when the request was not authenticated.
func claimsFromContext(c *gin.Context) *models.JWTClaims {
	value, ok := c.Get(middleware.ContextUserKey)
	if !ok {
		return nil
	}
	claims, _ := value.(*models.JWTClaims)
	return claims
}
