package api

import (
	"github.com/gin-gonic/gin"

	"github.com/nutralink/directory/internal/handlers"
)

func registerCompanyRoutes(api *gin.RouterGroup, handler *handlers.CompanyHandler, optionalAuth, requireAuth gin.HandlerFunc) {
	if api == nil || handler == nil {
		return
	}

	companies := api.Group("/companies")
	{
		companies.GET("", handler.List)
		companies.GET("/:id", handler.Get)
		companies.GET("/:id/saved-count", optionalAuth, handler.SavedCount)
		companies.POST("", requireAuth, handler.Create)
		companies.PATCH("/:id", requireAuth, handler.Update)
		companies.DELETE("/:id", requireAuth, handler.Delete)
	}
}
