package middleware

import (
	"strings"
	"time"

	"git.thinkinpower.net/ribdb/mod"
	"github.com/gin-gonic/gin"
	logger "github.com/sirupsen/logrus"
)

// route params holding account identifiers, masked in the access log
var maskedParams = map[string]bool{"value": true}

// Log writes one access log entry per request. Handlers answer 200 with an
// envelope code, so a refused request (any code but success) is logged at
// warn level and panics or server errors at error level.
func Log() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		fields := logger.Fields{
			"statusCode": c.Writer.Status(),
			"latency":    time.Since(start).Microseconds(),
			"clientIp":   c.ClientIP(),
			"method":     c.Request.Method,
			"route":      c.FullPath(),
			"path":       maskPath(c),
			"userAgent":  c.Request.UserAgent(),
		}
		if size := c.Writer.Size(); size > 0 {
			fields["dataLength"] = size
		}
		code, hasCode := c.Get(ResponseCodeKey)
		if hasCode {
			fields[ResponseCodeKey] = code
		}
		entry := logger.WithFields(fields)

		switch status := c.Writer.Status(); {
		case len(c.Errors) > 0:
			entry.Error(c.Errors.ByType(gin.ErrorTypePrivate).String())
		case status > 499:
			entry.Error("request failed")
		case status > 399:
			entry.Warn("request rejected")
		case hasCode && code != mod.ResponseCodeSuccess:
			entry.Warn("request refused")
		default:
			entry.Info("request served")
		}
	}
}

// maskPath hides all but the last 4 characters of account identifiers
// carried in the path.
func maskPath(c *gin.Context) string {
	path := c.Request.URL.Path
	for _, p := range c.Params {
		if !maskedParams[p.Key] || len(p.Value) <= 4 {
			continue
		}
		masked := strings.Repeat("*", len(p.Value)-4) + p.Value[len(p.Value)-4:]
		path = strings.Replace(path, p.Value, masked, 1)
	}
	return path
}
