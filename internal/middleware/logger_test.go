package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/nutralink/directory/pkg/logger"
)

func TestLoggerMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	core, logs := observer.New(zapcore.DebugLevel)
	previous := logger.Logger()
	logger.Replace(zap.New(core))
	t.Cleanup(func() { logger.Replace(previous) })

	r := gin.New()
	r.Use(Logger())
	r.GET("/ping", func(c *gin.Context) {
		c.Set(CtxUserIDKey, "user-1")
		c.String(http.StatusOK, "pong")
	})
	r.GET("/fail", func(c *gin.Context) {
		c.Status(http.StatusInternalServerError)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "pong", w.Body.String())

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/fail", nil))

	entries := logs.FilterMessage("request").All()
	require.Len(t, entries, 2)

	first := entries[0].ContextMap()
	require.Equal(t, "http", first["module"])
	require.Equal(t, "/ping", first["path"])
	require.Equal(t, int64(http.StatusOK), first["status"])
	require.Equal(t, "user-1", first["user_id"])
	require.Equal(t, zapcore.InfoLevel, entries[0].Level)

	require.Equal(t, zapcore.WarnLevel, entries[1].Level)
}

func TestLoggerMiddlewareRecordsSearchQuery(t *testing.T) {
	gin.SetMode(gin.TestMode)

	core, logs := observer.New(zapcore.DebugLevel)
	previous := logger.Logger()
	logger.Replace(zap.New(core))
	t.Cleanup(func() { logger.Replace(previous) })

	r := gin.New()
	r.Use(Logger())
	r.GET("/api/search", func(c *gin.Context) {
		_ = c.Error(errors.New("cache unavailable"))
		c.Status(http.StatusOK)
	})

	long := strings.Repeat("हल्दी ", 40)
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/search?q="+url.QueryEscape(long), nil))

	entries := logs.FilterMessage("request").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	require.Equal(t, "/api/search", fields["route"])
	query, ok := fields["query"].(string)
	require.True(t, ok)
	require.Equal(t, 121, utf8.RuneCountInString(query))
	require.True(t, strings.HasSuffix(query, "…"))
	require.Equal(t, []any{"cache unavailable"}, fields["errors"])
}

func TestTruncateRunes(t *testing.T) {
	require.Equal(t, "ashwagandha", truncateRunes("ashwagandha", 20))
	require.Equal(t, "हल्…", truncateRunes("हल्दी", 3))
}
