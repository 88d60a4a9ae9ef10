package api

import (
	"github.com/gin-gonic/gin"

	"github.com/nutralink/directory/internal/handlers"
)

func registerWorkspaceRoutes(api *gin.RouterGroup, templates *handlers.EmailTemplateHandler, outreach *handlers.OutreachHandler) {
	if api == nil {
		return
	}

	workspace := api.Group("/workspace")

	if templates != nil {
		group := workspace.Group("/templates")
		group.GET("", templates.List)
		group.POST("", templates.Create)
		group.GET("/:id", templates.Get)
		group.PATCH("/:id", templates.Update)
		group.DELETE("/:id", templates.Delete)
	}

	if outreach != nil {
		workspace.GET("/emails", outreach.List)
		workspace.POST("/emails", outreach.Send)
	}
}
