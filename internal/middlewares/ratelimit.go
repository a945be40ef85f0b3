package middlewares

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/xiyue520/xiyue-chat/pkg/ratelimit"
)

// RateLimitMiddleware 按客户端 IP 限流，窗口为 1 秒
// 限流器故障时放行由 limiter 的 fail-open 策略决定
func RateLimitMiddleware(limiter ratelimit.Limiter, qps int) gin.HandlerFunc {
	return func(c *gin.Context) {
		allowed, err := limiter.Allow(c.Request.Context(), "ip:"+c.ClientIP(), qps, time.Second)
		if err != nil {
			zap.L().Error("限流检查失败", zap.Error(err))
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "服务器内部错误"})
			return
		}
		if !allowed {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "请求过于频繁，请稍后再试"})
			return
		}
		c.Next()
	}
}
