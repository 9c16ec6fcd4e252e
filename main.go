package main

import (
	"context"
	"time"

	"lingua/cache"
	"lingua/config"
	"lingua/handler"
	"lingua/metrics"
	"lingua/middleware"
	"lingua/service"
	"lingua/utils"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

const pictureCacheEntries = 10000

func init() {
	// 设置时区为 UTC（推荐服务端统一使用 UTC）
	time.Local = time.UTC
}

func main() {
	// 加载配置
	cfg := config.Load()
	utils.InitLogger(cfg.LogLevel, cfg.LogFormat)
	if cfg.LogLevel != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}

	// 初始化数据库
	if err := utils.InitDB(cfg.DatabaseURL); err != nil {
		utils.Logger().Fatalf("Failed to connect to database: %v", err)
	}
	defer utils.CloseDB()

	if cfg.AutoMigrate {
		if err := utils.Migrate(utils.GetDB()); err != nil {
			utils.Logger().Fatalf("Failed to migrate database: %v", err)
		}
	}

	// Redis 可选，未配置时头像缓存使用内存
	if err := utils.InitRedis(cfg.RedisURL, cfg.RedisPassword, cfg.RedisDB); err != nil {
		utils.Logger().WithError(err).Warn("Redis unavailable, falling back to in-memory cache")
	}
	defer utils.CloseRedis()

	// 初始化认证中间件
	middleware.InitAuth(cfg.JWTSecret)

	r := setupRouter(cfg, utils.GetDB(), utils.GetRedis())

	utils.Logger().Infof("🚀 lingua service starting on port %s", cfg.Port)
	if err := r.Run(":" + cfg.Port); err != nil {
		utils.Logger().Fatalf("Failed to start server: %v", err)
	}
}

// setupRouter 创建服务并注册路由
func setupRouter(cfg *config.Config, db *gorm.DB, rdb *redis.Client) *gin.Engine {
	ctx := context.Background()

	// 系统配置服务（全局单例）
	sysSvc := service.NewSystemSettingsService(db)
	if err := sysSvc.InitDefaultSettings(ctx); err != nil {
		utils.Logger().WithError(err).Warn("Failed to init default system settings")
	}

	// 通知模板
	templateSvc := service.NewNotificationTemplateService(db)
	if err := templateSvc.InitDefaultTemplates(ctx); err != nil {
		utils.Logger().WithError(err).Warn("Failed to init default notification templates")
	}

	pictureSvc := service.NewProfilePictureService(
		cfg.UsernameAPIURL,
		cfg.ExternalAPITimeout,
		cache.New(rdb, pictureCacheEntries),
		cfg.ProfilePictureTTL,
		sysSvc,
	)
	notifSvc := service.NewNotificationService(service.NotificationConfig{
		URL:     cfg.NotificationURL,
		AppID:   cfg.NotificationAppID,
		Path:    cfg.NotificationPath,
		Timeout: cfg.ExternalAPITimeout,
	}, templateSvc, sysSvc)

	userSvc := service.NewUserService(db, pictureSvc)
	contactSvc := service.NewContactService(db)
	ratingSvc := service.NewRatingService(db)

	// 创建处理器
	userHandler := handler.NewUserHandler(userSvc)
	contactHandler := handler.NewContactHandler(contactSvc, userSvc, notifSvc)
	ratingHandler := handler.NewRatingHandler(ratingSvc)
	notifHandler := handler.NewNotificationHandler(notifSvc, userSvc)
	pictureHandler := handler.NewProfilePictureHandler(pictureSvc)
	paymentHandler := handler.NewPaymentHandler()
	sysHandler := handler.NewSystemSettingsHandler(sysSvc)
	templateHandler := handler.NewNotificationTemplateHandler(templateSvc)

	limiter := middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)

	r := gin.New()
	r.Use(middleware.RequestLogger())
	// 注册统一错误处理中间件
	r.Use(middleware.ErrorHandlerMiddleware())

	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		utils.SuccessResponse(c, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	// 公开接口：语伴列表
	public := r.Group("/api/v1")
	public.Use(middleware.OptionalAuthMiddleware())
	public.Use(limiter.Middleware())
	{
		public.GET("/users", userHandler.SearchUsers)
	}

	// HTTP API 路由组（需要认证）
	api := r.Group("/api/v1")
	api.Use(middleware.AuthMiddleware())
	api.Use(limiter.Middleware())
	{
		// 用户资料
		api.POST("/users", userHandler.UpsertUser)
		api.GET("/users/:wallet", userHandler.GetUser)

		// 联系人
		api.GET("/contacts", contactHandler.ListContacts)
		api.POST("/contacts", contactHandler.RecordContact)

		// 评分
		api.GET("/ratings", ratingHandler.GetMyRating)
		api.POST("/ratings", ratingHandler.SubmitRating)
		api.POST("/ratings/batch", ratingHandler.GetMyRatings)

		api.POST("/notifications/send", notifHandler.SendNotification)
		api.GET("/profile-picture", pictureHandler.GetProfilePicture)
		api.POST("/payments/initiate", paymentHandler.InitiatePayment)
	}

	// 管理员 API 路由组（需要认证 + 管理员权限）
	admin := r.Group("/api/admin")
	admin.Use(middleware.AuthMiddleware())
	admin.Use(handler.AdminAuthMiddleware(cfg.IsAdmin))
	{
		// 系统配置管理
		admin.GET("/settings", sysHandler.GetSystemSettings)
		admin.POST("/settings/reload", sysHandler.ReloadSystemSettings)
		admin.POST("/settings/:key", sysHandler.UpdateSystemSetting)

		// 通知模板管理
		admin.GET("/templates", templateHandler.ListTemplates)
		admin.POST("/templates/init", templateHandler.InitDefaultTemplates)
		admin.POST("/templates/:type", templateHandler.UpdateTemplate)
	}

	return r
}
