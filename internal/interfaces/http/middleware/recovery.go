package middleware

import (
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/erp/seafreight/internal/infrastructure/logger"
	"github.com/erp/seafreight/internal/interfaces/http/dto"
)

// Recovery turns a handler panic into a 500 ERR_INTERNAL response and logs
// the stack through the request logger.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				logger.L(c.Request.Context()).Error("Panic recovered",
					zap.Any("panic", r),
					zap.String("path", c.Request.URL.Path),
					zap.ByteString("stack", debug.Stack()),
				)
				c.AbortWithStatusJSON(http.StatusInternalServerError, dto.NewErrorResponseWithRequestID(
					dto.ErrCodeInternal,
					"Internal server error",
					GetRequestID(c),
				))
			}
		}()
		c.Next()
	}
}
