package api

import (
	"github.com/gin-gonic/gin"

	"github.com/nutralink/directory/internal/handlers"
)

func registerSearchRoutes(api *gin.RouterGroup, handler *handlers.SearchHandler, optionalAuth gin.HandlerFunc) {
	if api == nil || handler == nil {
		return
	}

	searchGroup := api.Group("/search", optionalAuth)
	{
		searchGroup.GET("", handler.Search)
		searchGroup.GET("/parse", handler.Parse)
	}
}
