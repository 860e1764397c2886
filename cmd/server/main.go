package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"campus-social/config"
	"campus-social/internal/handler"
	"campus-social/internal/model"
	"campus-social/internal/repository"
	"campus-social/internal/service"
	dbPkg "campus-social/pkg/db"
	"campus-social/pkg/jwt"
	"campus-social/pkg/logger"
	"campus-social/pkg/redis"
	"campus-social/pkg/response"
	"campus-social/pkg/websocket"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	// 1. 加载配置
	cfg := config.LoadConfig()

	// 2. 初始化日志系统
	log := logger.InitLogger(cfg.Log)
	defer log.Sync()

	log.Info("=== 校园社交服务启动 ===")
	log.Info("服务器配置信息",
		zap.String("port", cfg.Server.Port),
		zap.String("database_driver", cfg.Database.Driver),
		zap.String("database_host", cfg.Database.Host),
		zap.Int("database_port", cfg.Database.Port),
		zap.String("database_name", cfg.Database.Database),
		zap.Duration("jwt_expire_time", cfg.JWT.ExpireTime),
		zap.String("log_level", cfg.Log.Level),
		zap.Int("suggestion_pool_cap", cfg.Suggestion.PoolCap),
	)

	// 3. 初始化数据库连接
	orm, err := dbPkg.InitDB(cfg.Database)
	if err != nil {
		log.Fatal("数据库连接失败", zap.Error(err))
	}
	defer func() {
		if err := dbPkg.CloseDB(); err != nil {
			log.Error("关闭数据库连接失败", zap.Error(err))
		}
	}()
	log.Info("数据库连接成功")

	// 3.1 自动迁移表结构
	if err := dbPkg.AutoMigrate(&model.User{}, &model.Student{}, &model.Friendship{}, &model.Notification{}); err != nil {
		log.Fatal("自动迁移失败", zap.Error(err))
	}
	log.Info("自动迁移完成")

	// 3.2 Redis 可选：不可用时推荐不缓存、未读数走数据库、离线通知不暂存
	if err := redis.InitRedis(cfg.Redis); err != nil {
		log.Warn("Redis不可用，以降级模式运行", zap.Error(err))
	} else {
		log.Info("Redis连接成功")
	}
	defer redis.Close()

	var (
		suggestionCache service.SuggestionCache
		unreadCounter   service.UnreadCounter
		offline         websocket.OfflineStore
	)
	if client := redis.GetClient(); client != nil {
		suggestionCache = redis.NewSuggestionCache(client)
		unreadCounter = redis.NewUnreadCounter(client)
		offline = redis.NewOfflineQueue(client)
	}

	// 3.3 初始化业务服务
	jwtSvc := jwt.NewJWTService(cfg.JWT)
	wsManager := websocket.NewManager(offline)

	userRepo := repository.NewUserRepository(orm)
	friendshipRepo := repository.NewFriendshipRepository(orm)
	notificationRepo := repository.NewNotificationRepository(orm)

	notificationSvc := service.NewNotificationService(notificationRepo, unreadCounter, wsManager)
	suggestionSvc := service.NewSuggestionService(userRepo, friendshipRepo, suggestionCache, cfg.Suggestion)
	friendshipSvc := service.NewFriendshipService(userRepo, friendshipRepo, notificationSvc, suggestionSvc)
	userSvc := service.NewUserService(userRepo, jwtSvc, suggestionSvc)

	routes := &handler.Routes{
		Auth:          jwtSvc.AuthMiddleware(),
		Users:         handler.NewUserHandler(userSvc, friendshipSvc),
		Friends:       handler.NewFriendHandler(friendshipSvc, suggestionSvc),
		Notifications: handler.NewNotificationHandler(notificationSvc),
	}
	wsHandler := websocket.NewHandler(jwtSvc, cfg.WebSocket, wsManager, func(ctx context.Context, userID uint) {
		_, _ = notificationSvc.MarkAllAsRead(ctx, userID)
	})

	// 4. 设置Gin模式
	if os.Getenv("GIN_MODE") == "" {
		gin.SetMode(gin.ReleaseMode)
	}

	// 5. 创建Gin路由
	router := gin.New()

	// 使用中间件
	router.Use(logger.RequestIDMiddleware())   // 请求ID
	router.Use(logger.RequestLogger())         // 请求日志
	router.Use(logger.ErrorLoggerMiddleware()) // panic 恢复与错误日志

	// 6. 设置基础路由
	setupBasicRoutes(router, wsManager)

	// 6.1 绑定业务路由
	routes.Register(router.Group("/api/v1"))

	// WebSocket路由（通知推送）
	router.GET("/ws", wsHandler.Serve)

	// 7. 创建HTTP服务器
	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// 8. 启动HTTP服务器
	go func() {
		log.Info("HTTP服务器启动", zap.String("port", cfg.Server.Port))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP服务器启动失败", zap.Error(err))
		}
	}()

	// 9. 优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("正在关闭服务器...")

	// 设置关闭超时
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// 关闭HTTP服务器
	if err := server.Shutdown(ctx); err != nil {
		log.Error("HTTP服务器关闭失败", zap.Error(err))
	}
	wsManager.CloseAll()

	log.Info("服务器已安全关闭")
}

// setupBasicRoutes 设置基础路由
func setupBasicRoutes(router *gin.Engine, ws *websocket.Manager) {
	// 健康检查
	// 完整url为：http://localhost:8080/health
	router.GET("/health", func(c *gin.Context) {
		status := "ok"
		dbStatus, redisStatus := "up", "up"
		if err := dbPkg.HealthCheck(); err != nil {
			status, dbStatus = "db-down", "down"
		}
		if err := redis.HealthCheck(c.Request.Context()); err != nil {
			redisStatus = "down"
		}
		response.Success(c, gin.H{
			"status":       status,
			"database":     dbStatus,
			"redis":        redisStatus,
			"online_users": ws.OnlineCount(),
			"time":         time.Now().Format(time.RFC3339),
		})
	})

	// 根路径
	router.GET("/", func(c *gin.Context) {
		response.Success(c, gin.H{
			"message": "校园社交服务",
			"version": "1.0.0",
		})
	})
}
