package api

import (
	"github.com/gin-gonic/gin"

	"github.com/nutralink/directory/internal/handlers"
)

func registerSavedRoutes(api *gin.RouterGroup, handler *handlers.SavedCompanyHandler) {
	if api == nil || handler == nil {
		return
	}

	saved := api.Group("/saved")
	{
		saved.GET("", handler.List)
		saved.GET("/count", handler.Count)
		saved.POST("/:companyID", handler.Save)
		saved.DELETE("/:companyID", handler.Unsave)
	}
}
