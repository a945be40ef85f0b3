package main

import (
	"context"
	"log"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/xiyue520/xiyue-chat/config"
	"github.com/xiyue520/xiyue-chat/internal/handlers"
	"github.com/xiyue520/xiyue-chat/internal/repositories"
	"github.com/xiyue520/xiyue-chat/internal/routers"
	"github.com/xiyue520/xiyue-chat/internal/services"
	"github.com/xiyue520/xiyue-chat/internal/storage"
	"github.com/xiyue520/xiyue-chat/internal/utils"
	"github.com/xiyue520/xiyue-chat/pkg/jwt"
	"github.com/xiyue520/xiyue-chat/pkg/logger"
	"github.com/xiyue520/xiyue-chat/pkg/ratelimit"
)

func main() {
	cfg, err := config.LoadConfig("./config.toml")
	if err != nil {
		log.Fatalf("配置初始化失败: %v", err)
	}

	// 初始化日志
	zlog, err := logger.NewLogger(&cfg.Logging)
	if err != nil {
		log.Fatalf("日志初始化失败: %v", err)
	}
	defer zlog.Sync()
	zap.ReplaceGlobals(zlog.Logger)

	// 初始化全局 Worker Pool (协程池)
	// 用于异步处理请求，防止高并发下 Goroutine 暴涨
	utils.InitGlobalWorkerPool(cfg.WorkerPool.Size, cfg.WorkerPool.QueueSize)

	// 初始化 Redis（唯一持久层）
	redisClient, err := storage.InitRedis(&cfg.Redis)
	if err != nil {
		zlog.Fatal("redis 初始化失败", zap.Error(err))
	}
	defer redisClient.Close()

	ctx := context.Background()

	// 初始化仓储层
	userRepo, err := repositories.NewUserRepository(ctx, redisClient)
	if err != nil {
		zlog.Fatal("用户仓储初始化失败", zap.Error(err))
	}
	convRepo := repositories.NewConversationRepository(redisClient, cfg.Chat.HistoryLimit)
	systemRepo := repositories.NewSystemRepository(redisClient)

	// 初始化服务层
	userService := services.NewUserService(userRepo, &cfg.Chat, zlog.Logger)
	messageService := services.NewMessageService(convRepo, userRepo, zlog.Logger)
	bootstrap := services.NewBootstrapService(userRepo, systemRepo, &cfg.Chat, zlog.Logger)

	// 冷启动引导：种子 admin 账号 + 站点启动时间标记（幂等）
	if err := bootstrap.Run(ctx); err != nil {
		zlog.Fatal("系统引导失败", zap.Error(err))
	}

	// 会话 token 管理器
	tokenManager := jwt.NewTokenManager(cfg.JWT.Secret, cfg.JWT.ExpireHours)

	// 限流器（redis 支撑，fail-open）
	limiter := ratelimit.NewFixedWindowLimiter(redisClient, zlog.Logger, true)

	// 初始化处理器
	userHandler := handlers.NewUserHandler(userService, tokenManager)
	messageHandler := handlers.NewMessageHandler(messageService)
	systemHandler := handlers.NewSystemHandler(bootstrap)

	// 配置并创建 Gin 引擎
	gin.SetMode(cfg.Server.Mode)

	r := gin.Default()

	// 设置路由
	routers.SetupRoutes(r,
		cfg,
		userHandler,
		messageHandler,
		systemHandler,
		tokenManager,
		userService,
		limiter,
	)

	// 启动服务器
	zlog.Info("正在启动服务器", zap.Int("port", cfg.Server.Port))
	if err := r.Run(":" + strconv.Itoa(cfg.Server.Port)); err != nil {
		zlog.Fatal("启动服务器失败", zap.Error(err))
	}
}
