package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/user/where2watch/internal/logger"
	"go.uber.org/zap"
)

// Logger 请求日志中间件
func Logger(log *zap.Logger) gin.HandlerFunc {
	log = logger.OrNop(log).Named("http")
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		// 处理请求
		c.Next()

		status := c.Writer.Status()
		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.String("ip", c.ClientIP()),
			zap.Int("status", status),
			zap.Duration("latency", time.Since(start)),
		}
		if len(c.Errors) > 0 {
			fields = append(fields, zap.String("errors", c.Errors.String()))
		}

		switch {
		case status >= 500:
			log.Error("request", fields...)
		case status >= 400:
			log.Warn("request", fields...)
		default:
			log.Info("request", fields...)
		}
	}
}

// Recovery panic 恢复，记录堆栈后返回 500
func Recovery(log *zap.Logger) gin.HandlerFunc {
	log = logger.OrNop(log).Named("http")
	return gin.CustomRecovery(func(c *gin.Context, err any) {
		log.Error("panic recovered", zap.Any("error", err), zap.String("path", c.Request.URL.Path), zap.Stack("stack"))
		c.AbortWithStatusJSON(500, gin.H{"code": 500, "message": "服务器内部错误", "data": nil, "success": false})
	})
}
