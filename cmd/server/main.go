// WannaWork 主程序
// 功能：校招求职平台后端，核心是投递生命周期引擎
// （投递、撤回、重新激活、级联删除）与事后通知分发
// 架构：DDD + Gin + GORM + Kafka
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	accountapp "github.com/StefanoVidesott/WannaWork-App/internal/account/application"
	accountmysql "github.com/StefanoVidesott/WannaWork-App/internal/account/infrastructure/persistence/mysql"
	accounthttp "github.com/StefanoVidesott/WannaWork-App/internal/account/interfaces/http"
	appsvc "github.com/StefanoVidesott/WannaWork-App/internal/application/application"
	appmysql "github.com/StefanoVidesott/WannaWork-App/internal/application/infrastructure/persistence/mysql"
	apphttp "github.com/StefanoVidesott/WannaWork-App/internal/application/interfaces/http"
	notifapp "github.com/StefanoVidesott/WannaWork-App/internal/notification/application"
	"github.com/StefanoVidesott/WannaWork-App/internal/notification/infrastructure/sender"
	offerapp "github.com/StefanoVidesott/WannaWork-App/internal/offer/application"
	offermysql "github.com/StefanoVidesott/WannaWork-App/internal/offer/infrastructure/persistence/mysql"
	offerhttp "github.com/StefanoVidesott/WannaWork-App/internal/offer/interfaces/http"
	profileapp "github.com/StefanoVidesott/WannaWork-App/internal/profile/application"
	profilemysql "github.com/StefanoVidesott/WannaWork-App/internal/profile/infrastructure/persistence/mysql"
	profilehttp "github.com/StefanoVidesott/WannaWork-App/internal/profile/interfaces/http"
	"github.com/StefanoVidesott/WannaWork-App/pkg/cache"
	"github.com/StefanoVidesott/WannaWork-App/pkg/config"
	"github.com/StefanoVidesott/WannaWork-App/pkg/db"
	"github.com/StefanoVidesott/WannaWork-App/pkg/logger"
	"github.com/StefanoVidesott/WannaWork-App/pkg/metrics"
	"github.com/StefanoVidesott/WannaWork-App/pkg/middleware"
	"github.com/StefanoVidesott/WannaWork-App/pkg/mq"
	"github.com/StefanoVidesott/WannaWork-App/pkg/ratelimit"
)

func main() {
	// 1. 加载配置
	configPath := os.Getenv("WANNAWORK_CONFIG")
	if configPath == "" {
		configPath = "configs/config.toml"
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// 2. 初始化日志
	loggerCfg := logger.Config{
		Level:      cfg.Logger.Level,
		Format:     cfg.Logger.Format,
		Output:     cfg.Logger.Output,
		FilePath:   cfg.Logger.FilePath,
		MaxSize:    cfg.Logger.MaxSize,
		MaxBackups: cfg.Logger.MaxBackups,
		MaxAge:     cfg.Logger.MaxAge,
		Compress:   cfg.Logger.Compress,
		WithCaller: cfg.Logger.WithCaller,
	}
	if err := logger.Init(loggerCfg); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()
	logger.Info(ctx, "Starting WannaWork server",
		"service", cfg.ServiceName,
		"version", cfg.Version,
		"environment", cfg.Environment,
	)

	// 3. 初始化数据库
	dbCfg := db.Config{
		Driver:             cfg.Database.Driver,
		DSN:                cfg.Database.DSN,
		MaxOpenConns:       cfg.Database.MaxOpenConns,
		MaxIdleConns:       cfg.Database.MaxIdleConns,
		ConnMaxLifetime:    cfg.Database.ConnMaxLifetime,
		LogEnabled:         cfg.Database.LogEnabled,
		SlowQueryThreshold: cfg.Database.SlowQueryThreshold,
		TxTimeout:          cfg.Database.TxTimeout,
	}
	database, err := db.Init(dbCfg)
	if err != nil {
		logger.Fatal(ctx, "Failed to initialize database", "error", err)
	}
	defer database.Close()

	if err := database.AutoMigrate(
		&accountmysql.AccountModel{},
		&profilemysql.ProfileModel{},
		&offermysql.OfferModel{},
		&appmysql.ApplicationModel{},
		&appmysql.ApplicationHistoryModel{},
	); err != nil {
		logger.Fatal(ctx, "Failed to migrate database schema", "error", err)
	}

	// 4. 初始化 Redis
	redisCfg := cache.Config{
		Host:         cfg.Redis.Host,
		Port:         cfg.Redis.Port,
		Password:     cfg.Redis.Password,
		DB:           cfg.Redis.DB,
		MaxPoolSize:  cfg.Redis.MaxPoolSize,
		ConnTimeout:  cfg.Redis.ConnTimeout,
		ReadTimeout:  cfg.Redis.ReadTimeout,
		WriteTimeout: cfg.Redis.WriteTimeout,
	}
	redisCache, err := cache.New(redisCfg)
	if err != nil {
		logger.Fatal(ctx, "Failed to initialize Redis", "error", err)
	}
	defer redisCache.Close()

	// 5. 初始化 Kafka 生产者与通知分发器
	producer, err := mq.NewProducer(mq.KafkaConfig{
		Brokers:      cfg.Kafka.Brokers,
		MaxRetries:   cfg.Kafka.MaxRetries,
		RetryBackoff: cfg.Kafka.RetryBackoff,
	})
	if err != nil {
		logger.Fatal(ctx, "Failed to initialize Kafka producer", "error", err)
	}
	defer producer.Close()

	// 6. 初始化指标
	appMetrics := metrics.New(cfg.ServiceName)
	if err := appMetrics.Register(); err != nil {
		logger.Fatal(ctx, "Failed to register metrics", "error", err)
	}
	if cfg.Metrics.Enabled {
		if err := metrics.StartHTTPServer(cfg.Metrics.Port, cfg.Metrics.Path); err != nil {
			logger.Error(ctx, "Failed to start metrics server", "error", err)
		}
	}

	dispatcher := notifapp.NewDispatcher(
		sender.NewKafkaSender(producer, cfg.Kafka.NotificationTopic),
		appMetrics,
	)

	// 7. 初始化仓储
	accountRepo := accountmysql.NewAccountRepository(database.DB)
	profileRepo := profilemysql.NewProfileRepository(database.DB)
	offerRepo := offermysql.NewOfferRepository(database.DB)
	applicationRepo := appmysql.NewApplicationRepository(database.DB)

	// 8. 初始化应用服务
	cascadeEngine := appsvc.NewCascadeEngine(
		database, applicationRepo, offerRepo, profileRepo, accountRepo, dispatcher, appMetrics,
	)
	applicationCommands := appsvc.NewApplicationCommandService(
		database, applicationRepo, offerRepo, profileRepo, accountRepo, dispatcher, appMetrics,
	)
	applicationQueries := appsvc.NewApplicationQueryService(applicationRepo, offerRepo, accountRepo)
	offerCommands := offerapp.NewOfferCommandService(
		database, offerRepo, applicationRepo, accountRepo, cascadeEngine, dispatcher,
	)
	offerQueries := offerapp.NewOfferQueryService(offerRepo, applicationRepo, accountRepo, redisCache)
	profileService := profileapp.NewProfileService(profileRepo, accountRepo, cascadeEngine)
	accountService := accountapp.NewAccountService(
		accountRepo, cfg.Auth.JWTSecret, time.Duration(cfg.Auth.TokenTTL)*time.Hour,
	)

	// 9. 初始化 Gin 路由
	if cfg.Environment == "prod" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(middleware.GinRecoveryMiddleware())
	router.Use(middleware.GinLoggingMiddleware())
	router.Use(middleware.GinCORSMiddleware())
	router.Use(middleware.GinMetricsMiddleware(appMetrics))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "service": cfg.ServiceName})
	})

	api := router.Group("/api/v1")
	accounthttp.NewAuthHandler(accountService).RegisterRoutes(api)

	protected := router.Group("/api/v1")
	protected.Use(middleware.GinAuthMiddleware(cfg.Auth.JWTSecret))

	var applyLimiter []gin.HandlerFunc
	if cfg.RateLimit.Enabled {
		limiter := ratelimit.NewRedisRateLimiter(redisCache.GetClient())
		applyLimiter = append(applyLimiter, middleware.RateLimitMiddleware(limiter, cfg.RateLimit))
	}
	apphttp.NewApplicationHandler(applicationCommands, applicationQueries).RegisterRoutes(protected, applyLimiter...)
	offerhttp.NewOfferHandler(offerCommands, offerQueries).RegisterRoutes(protected)
	profilehttp.NewProfileHandler(profileService).RegisterRoutes(protected)

	// 10. 启动 HTTP 服务
	addr := fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeout) * time.Second,
	}
	go func() {
		logger.Info(ctx, "HTTP server listening", "addr", addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal(ctx, "HTTP server failed", "error", err)
		}
	}()

	// 11. 优雅关停
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info(ctx, "Shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error(ctx, "Server forced to shutdown", "error", err)
	}
	// 等待在途通知投递完成
	dispatcher.Wait()
	logger.Info(ctx, "Server exited")
}
