package middleware

import (
	stderrors "errors"
	"net/http"
	"syscall"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/nutralink/directory/pkg/errors"
	"github.com/nutralink/directory/pkg/logger"
	"github.com/nutralink/directory/pkg/response"
)

// Recovery turns a handler panic into the standard 500 envelope. A client
// that hung up mid-response is logged without a stack and gets no body.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}

			fields := []zap.Field{
				zap.String("method", c.Request.Method),
				zap.String("route", c.FullPath()),
				zap.Any("error", rec),
			}
			log := logger.WithModule("http")

			if err, ok := rec.(error); ok && clientGone(err) {
				log.Warn("client connection closed", fields...)
				c.Abort()
				return
			}

			log.Error("panic", append(fields, zap.Stack("stack"))...)
			if c.Writer.Written() {
				c.Abort()
				return
			}
			response.Error(c, errors.ErrInternalServer)
			c.Abort()
		}()
		c.Next()
	}
}

func clientGone(err error) bool {
	return stderrors.Is(err, syscall.EPIPE) || stderrors.Is(err, syscall.ECONNRESET) || stderrors.Is(err, http.ErrAbortHandler)
}

// NotFoundHandler answers unknown routes with the JSON error envelope.
func NotFoundHandler(c *gin.Context) {
	response.Error(c, errors.NewNotFound("route "+c.Request.URL.Path))
}

// MethodNotAllowedHandler answers known routes hit with the wrong method.
func MethodNotAllowedHandler(c *gin.Context) {
	response.Error(c, errors.New("METHOD_NOT_ALLOWED", "Method not allowed", http.StatusMethodNotAllowed))
}
