package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/gardenia-api/internal/middleware"
	"github.com/noah-isme/gardenia-api/internal/models"
	appErrors "github.com/noah-isme/gardenia-api/pkg/errors"
	"github.com/noah-isme/gardenia-api/pkg/response"
)

// claimsFromContext returns the authenticated operator, or nil on public routes.
func claimsFromContext(c *gin.Context) *models.JWTClaims {
	claims, ok := middleware.CurrentUser(c)
	if !ok {
		return nil
	}
	return claims
}

// badRequest answers a request whose body or query could not be bound.
// The binder's message stays in the logs.
func badRequest(c *gin.Context, err error, message string) {
	response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, message))
}
