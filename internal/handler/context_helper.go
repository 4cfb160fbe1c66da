package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/bodhmantraa/bodhmantraa-api/internal/middleware"
	"github.com/bodhmantraa/bodhmantraa-api/internal/models"
)

func principalFromContext(c *gin.Context) *models.Principal {
	principal, ok := middleware.PrincipalFrom(c)
	if !ok {
		return nil
	}
	return principal
}
