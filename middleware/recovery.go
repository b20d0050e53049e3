package middleware

import (
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"
	logger "github.com/sirupsen/logrus"
)

// ResponseCodeKey is the context key handlers use to expose the envelope
// code to the access log.
const ResponseCodeKey = "responseCode"

// Recovery turns a panic in a handler into a 500 and logs the stack.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				logger.WithFields(logger.Fields{
					"method": c.Request.Method,
					"path":   c.Request.URL.Path,
				}).Errorf("panic: %v\n%s", err, debug.Stack())
				c.AbortWithStatus(http.StatusInternalServerError)
			}
		}()
		c.Next()
	}
}
