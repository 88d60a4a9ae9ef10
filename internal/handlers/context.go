package handlers

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/nutralink/directory/internal/middleware"
	"github.com/nutralink/directory/internal/services"
	apperrors "github.com/nutralink/directory/pkg/errors"
	"github.com/nutralink/directory/pkg/response"
)

// requestContext safely returns the request context with a background fallback for tests.
func requestContext(c *gin.Context) context.Context {
	if c == nil {
		return context.Background()
	}
	if req := c.Request; req != nil {
		return req.Context()
	}
	return context.Background()
}

// currentUserID returns the authenticated user or writes a 401 and returns false.
func currentUserID(c *gin.Context) (string, bool) {
	userID := strings.TrimSpace(c.GetString(middleware.CtxUserIDKey))
	if userID == "" {
		response.Error(c, apperrors.ErrUnauthorized)
		return "", false
	}
	return userID, true
}

// optionalUserID returns the caller when a valid token accompanied the request.
func optionalUserID(c *gin.Context) string {
	return strings.TrimSpace(c.GetString(middleware.CtxUserIDKey))
}

// currentActor builds the mutation actor from the verified claims.
func currentActor(c *gin.Context) (services.Actor, bool) {
	claims, ok := middleware.ClaimsFromContext(c)
	if !ok || strings.TrimSpace(claims.UserID) == "" {
		response.Error(c, apperrors.ErrUnauthorized)
		return services.Actor{}, false
	}
	return services.Actor{
		UserID:    claims.UserID,
		Admin:     claims.IsAdmin(),
		IPAddress: c.ClientIP(),
		UserAgent: c.Request.UserAgent(),
	}, true
}

// senderName is the display name used in outreach templates.
func senderName(c *gin.Context) string {
	claims, ok := middleware.ClaimsFromContext(c)
	if !ok {
		return ""
	}
	return claims.DisplayName()
}
