package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/zfogg/murmur/internal/logger"
	"github.com/zfogg/murmur/internal/util"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// quietPaths are polled by probes and scrapers; they log at debug
var quietPaths = map[string]bool{
	"/health":  true,
	"/metrics": true,
}

// GinLoggerMiddleware logs one structured line per request in place of gin.Logger
func GinLoggerMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		status := c.Writer.Status()
		entry := logger.Log.Check(requestLevel(path, status), "HTTP request")
		if entry == nil {
			return
		}

		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.String("route", c.FullPath()),
			logger.WithStatus(status),
			logger.WithDuration(time.Since(start)),
			logger.WithIP(c.ClientIP()),
			zap.Int("bytes", c.Writer.Size()),
		}
		if q := c.Request.URL.RawQuery; q != "" {
			fields = append(fields, zap.String("query", q))
		}
		if id := c.GetString(RequestIDKey); id != "" {
			fields = append(fields, logger.WithRequestID(id))
		}
		if uid := util.OptionalUserID(c); uid != "" {
			fields = append(fields, logger.WithUserID(uid))
		}
		if len(c.Errors) > 0 {
			fields = append(fields, zap.String("errors", c.Errors.String()))
		}
		entry.Write(fields...)
	}
}

func requestLevel(path string, status int) zapcore.Level {
	switch {
	case status >= 500:
		return zapcore.ErrorLevel
	case status >= 400:
		return zapcore.WarnLevel
	case quietPaths[path]:
		return zapcore.DebugLevel
	default:
		return zapcore.InfoLevel
	}
}
