package handlers

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/nutralink/directory/internal/realtime"
	"github.com/nutralink/directory/pkg/errors"
	"github.com/nutralink/directory/pkg/response"
)

// RealtimeHandler upgrades authenticated requests into websocket streams.
type RealtimeHandler struct {
	hub *realtime.Hub
}

// NewRealtimeHandler constructs a realtime handler.
func NewRealtimeHandler(hub *realtime.Hub) *RealtimeHandler {
	return &RealtimeHandler{hub: hub}
}

// Stream GET /api/realtime?streams=saved.companies,companies
// Without a streams parameter the connection subscribes to every known stream.
func (h *RealtimeHandler) Stream(c *gin.Context) {
	if h == nil || h.hub == nil {
		response.Error(c, errors.ErrNotFound)
		return
	}

	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	streams := parseListQuery(c, "streams")
	if len(streams) == 0 {
		streams = realtime.KnownStreams()
	}
	for i, stream := range streams {
		streams[i] = strings.ToLower(stream)
	}

	h.hub.Serve(userID, streams, c.Writer, c.Request)
}
