package api

import (
	"github.com/gin-gonic/gin"

	"github.com/nutralink/directory/internal/handlers"
	"github.com/nutralink/directory/internal/realtime"
)

func registerRealtimeRoutes(api *gin.RouterGroup, handler *handlers.RealtimeHandler, hub *realtime.Hub) {
	if api == nil || handler == nil || hub == nil {
		return
	}

	api.GET("/realtime", handler.Stream)
}
