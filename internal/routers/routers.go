package routers

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/xiyue520/xiyue-chat/config"
	"github.com/xiyue520/xiyue-chat/internal/handlers"
	"github.com/xiyue520/xiyue-chat/internal/middlewares"
	"github.com/xiyue520/xiyue-chat/internal/services"
	"github.com/xiyue520/xiyue-chat/pkg/jwt"
	"github.com/xiyue520/xiyue-chat/pkg/ratelimit"
)

// SetupRoutes 设置所有路由
func SetupRoutes(r *gin.Engine, cfg *config.Config,
	userHandler *handlers.UserHandler,
	messageHandler *handlers.MessageHandler,
	systemHandler *handlers.SystemHandler,
	tokenManager *jwt.TokenManager,
	userService *services.UserService,
	limiter ratelimit.Limiter,
) {
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowAllOrigins = true
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization"}
	r.Use(cors.New(corsConfig))

	// 错误的请求方法返回 405 而不是 gin 默认的 404
	r.HandleMethodNotAllowed = true
	r.NoMethod(func(c *gin.Context) {
		c.JSON(http.StatusMethodNotAllowed, gin.H{"error": "请求方法错误"})
	})
	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "路径不存在"})
	})

	// 首页与健康检查
	r.GET("/", systemHandler.Landing)
	r.GET("/health", systemHandler.Health)

	// 全局限流
	if cfg.RateLimit.Enabled && limiter != nil {
		r.Use(middlewares.RateLimitMiddleware(limiter, cfg.RateLimit.QPS))
	}

	// 异步处理中间件：请求进入 Worker Pool 排队执行
	r.Use(middlewares.AsyncMiddleware())

	RegisterAPIRoutes(r, userHandler, messageHandler, systemHandler, tokenManager, userService)
}

// RegisterAPIRoutes 注册 /api 路由，公开路由在前，其余要求认证
func RegisterAPIRoutes(r *gin.Engine,
	userHandler *handlers.UserHandler,
	messageHandler *handlers.MessageHandler,
	systemHandler *handlers.SystemHandler,
	tokenManager *jwt.TokenManager,
	userService *services.UserService,
) {
	apiGroup := r.Group("/api")
	{
		apiGroup.POST("/register", userHandler.Register) // 注册
		apiGroup.POST("/login", userHandler.Login)       // 登录
		apiGroup.GET("/uptime", systemHandler.Uptime)    // 运行时长
	}
	apiGroup.Use(middlewares.AuthMiddleware(tokenManager, userService))
	{
		apiGroup.GET("/users", userHandler.ListUsers)         // 联系人列表
		apiGroup.GET("/messages", messageHandler.GetMessages) // 会话历史
		apiGroup.POST("/send", messageHandler.Send)           // 发送消息
	}
}
