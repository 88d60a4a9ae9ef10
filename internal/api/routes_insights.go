package api

import (
	"github.com/gin-gonic/gin"

	"github.com/nutralink/directory/internal/handlers"
)

func registerInsightsRoutes(api *gin.RouterGroup, handler *handlers.InsightsHandler) {
	if api == nil || handler == nil {
		return
	}

	api.GET("/insights/searches", handler.Searches)
}
