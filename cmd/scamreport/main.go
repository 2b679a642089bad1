// ScamReport 主程序
// 功能：诈骗案件上报、审核、按账户聚合统计与证据文件去重上传
// 架构：DDD 分层 + 读穿透缓存 + Kafka 事件
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	bankapp "github.com/wyfcoding/scamreport/internal/bank/application"
	"github.com/wyfcoding/scamreport/internal/bank/infrastructure/vietqr"
	bankhttp "github.com/wyfcoding/scamreport/internal/bank/interfaces/http"
	caseapp "github.com/wyfcoding/scamreport/internal/casereport/application"
	"github.com/wyfcoding/scamreport/internal/casereport/domain"
	"github.com/wyfcoding/scamreport/internal/casereport/infrastructure/messaging"
	"github.com/wyfcoding/scamreport/internal/casereport/infrastructure/persistence/mysql"
	casehttp "github.com/wyfcoding/scamreport/internal/casereport/interfaces/http"
	evidenceapp "github.com/wyfcoding/scamreport/internal/evidence/application"
	evidencedomain "github.com/wyfcoding/scamreport/internal/evidence/domain"
	"github.com/wyfcoding/scamreport/internal/evidence/infrastructure/blob/local"
	"github.com/wyfcoding/scamreport/internal/evidence/infrastructure/blob/s3store"
	evidencehttp "github.com/wyfcoding/scamreport/internal/evidence/interfaces/http"
	"github.com/wyfcoding/scamreport/pkg/cache"
	"github.com/wyfcoding/scamreport/pkg/config"
	"github.com/wyfcoding/scamreport/pkg/db"
	"github.com/wyfcoding/scamreport/pkg/logger"
	"github.com/wyfcoding/scamreport/pkg/metrics"
	"github.com/wyfcoding/scamreport/pkg/middleware"
	"github.com/wyfcoding/scamreport/pkg/mq"
	"github.com/wyfcoding/scamreport/pkg/ratelimit"
)

func main() {
	configPath := flag.String("config", "configs/scamreport/config.toml", "config file path")
	flag.Parse()

	// 1. 加载配置
	cfg, err := config.LoadWithDefaults(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// 2. 初始化日志
	if err := logger.Init(logger.Config{
		ServiceName: cfg.ServiceName,
		Level:       cfg.Logger.Level,
		Format:      cfg.Logger.Format,
		Output:      cfg.Logger.Output,
		FilePath:    cfg.Logger.FilePath,
		MaxSize:     cfg.Logger.MaxSize,
		MaxBackups:  cfg.Logger.MaxBackups,
		MaxAge:      cfg.Logger.MaxAge,
		Compress:    cfg.Logger.Compress,
		WithCaller:  cfg.Logger.WithCaller,
	}); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()
	logger.Info(ctx, "Starting ScamReport",
		"service", cfg.ServiceName,
		"version", cfg.Version,
		"environment", cfg.Environment,
	)

	// 3. 初始化数据库
	database, err := db.Init(db.Config{
		Driver:             cfg.Database.Driver,
		DSN:                cfg.Database.DSN,
		MaxOpenConns:       cfg.Database.MaxOpenConns,
		MaxIdleConns:       cfg.Database.MaxIdleConns,
		ConnMaxLifetime:    cfg.Database.ConnMaxLifetime,
		LogEnabled:         cfg.Database.LogEnabled,
		SlowQueryThreshold: cfg.Database.SlowQueryThreshold,
	})
	if err != nil {
		logger.Fatal(ctx, "Failed to initialize database", "error", err)
	}
	defer database.Close()

	if cfg.Database.AutoMigrate {
		if err := database.AutoMigrate(mysql.Models()...); err != nil {
			logger.Fatal(ctx, "Failed to migrate database", "error", err)
		}
	}

	// 4. 初始化指标
	metricsInstance := metrics.New(cfg.ServiceName)
	if err := metricsInstance.Register(); err != nil {
		logger.Fatal(ctx, "Failed to register metrics", "error", err)
	}

	// 5. 初始化缓存与限流器
	var (
		kv          cache.KV
		rateLimiter ratelimit.RateLimiter
	)
	switch cfg.Cache.Driver {
	case "redis":
		redisCache, err := cache.New(cache.Config{
			Host:         cfg.Redis.Host,
			Port:         cfg.Redis.Port,
			Password:     cfg.Redis.Password,
			DB:           cfg.Redis.DB,
			MaxPoolSize:  cfg.Redis.MaxPoolSize,
			ConnTimeout:  cfg.Redis.ConnTimeout,
			ReadTimeout:  cfg.Redis.ReadTimeout,
			WriteTimeout: cfg.Redis.WriteTimeout,
		})
		if err != nil {
			logger.Fatal(ctx, "Failed to initialize Redis", "error", err)
		}
		defer redisCache.Close()
		kv = redisCache
		rateLimiter = ratelimit.NewRedisRateLimiter(redisCache.GetClient())
	default:
		kv = cache.NewMemory(time.Minute)
		logger.Warn(ctx, "Using in-process cache, rate limiting disabled")
	}
	rt := cache.NewReadThrough(kv, metricsInstance)

	// 6. 初始化事件发布
	var publisher domain.EventPublisher = messaging.NoopEventPublisher{}
	if len(cfg.Kafka.Brokers) > 0 {
		producer, err := mq.NewProducer(mq.KafkaConfig{
			Brokers:      cfg.Kafka.Brokers,
			Topic:        cfg.Kafka.Topic,
			MaxRetries:   cfg.Kafka.MaxRetries,
			RetryBackoff: cfg.Kafka.RetryBackoff,
		})
		if err != nil {
			logger.Fatal(ctx, "Failed to initialize Kafka producer", "error", err)
		}
		defer producer.Close()
		publisher = messaging.NewKafkaEventPublisher(producer)
	}

	// 7. 初始化对象存储
	var blobs evidencedomain.BlobStore
	switch cfg.Blob.Driver {
	case "s3":
		store, err := s3store.New(ctx, cfg.Blob)
		if err != nil {
			logger.Fatal(ctx, "Failed to initialize blob store", "error", err)
		}
		blobs = store
	default:
		blobs = local.NewOS(cfg.Blob.BaseDir)
	}

	// 8. 初始化仓储与应用服务
	caseRepo := mysql.NewCaseRepository(database.DB)
	statsRepo := mysql.NewStatsRepository(database.DB)
	ttl := caseapp.CacheTTL{
		Lookup: time.Duration(cfg.Cache.LookupTTL) * time.Second,
		Count:  time.Duration(cfg.Cache.CountTTL) * time.Second,
	}
	caseCmd := caseapp.NewCaseCommandService(
		caseRepo,
		caseapp.NewStatsAggregator(statsRepo),
		caseapp.NewInvalidator(rt, metricsInstance),
		publisher,
		metricsInstance,
	)
	caseQuery := caseapp.NewCaseQueryService(caseRepo, statsRepo, rt, ttl)

	dedup := evidenceapp.NewDedupService(blobs, rt.KV(), evidencedomain.Policy{
		MaxFileSize:  cfg.Upload.MaxFileSize,
		MaxFiles:     cfg.Upload.MaxFiles,
		AllowedTypes: cfg.Upload.AllowedTypes,
	}, time.Duration(cfg.Cache.FileTTL)*time.Second, metricsInstance)

	banks := bankapp.NewBankService(
		vietqr.New(cfg.Bank.APIURL, time.Duration(cfg.Bank.Timeout)*time.Second),
		rt,
		time.Duration(cfg.Cache.BankTTL)*time.Second,
	)

	// 9. 创建 HTTP 服务器
	router := newRouter(cfg, metricsInstance, rateLimiter)
	api := router.Group("/api/v1")
	if rateLimiter != nil && cfg.RateLimit.Enabled {
		api.Use(middleware.RateLimitMiddleware(rateLimiter, cfg.RateLimit))
	}
	admin := api.Group("/admin", middleware.AdminAuthMiddleware(cfg.Admin.Token))

	caseHandler := casehttp.NewCaseHandler(caseCmd, caseQuery)
	caseHandler.RegisterRoutes(api)
	caseHandler.RegisterAdminRoutes(admin)

	evidencehttp.NewUploadHandler(dedup, cfg.Upload.MaxFileSize).RegisterRoutes(api)

	bankHandler := bankhttp.NewBankHandler(banks)
	bankHandler.RegisterRoutes(api)
	bankHandler.RegisterAdminRoutes(admin)

	httpServer := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeout) * time.Second,
	}

	// 10. 启动 HTTP 服务器
	go func() {
		logger.Info(ctx, "Starting HTTP server", "addr", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal(ctx, "HTTP server error", "error", err)
		}
	}()

	// 11. 优雅关停
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	logger.Info(ctx, "Shutting down ScamReport")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error(ctx, "HTTP server shutdown error", "error", err)
	}

	logger.Info(ctx, "ScamReport stopped")
}

// newRouter 创建带公共中间件、健康检查与指标端点的路由
func newRouter(cfg *config.Config, m *metrics.Metrics, limiter ratelimit.RateLimiter) *gin.Engine {
	if cfg.Environment == "prod" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.MaxMultipartMemory = cfg.HTTP.MaxMultipartMemory << 20

	router.Use(middleware.GinLoggingMiddleware())
	router.Use(middleware.GinRecoveryMiddleware())
	router.Use(middleware.GinCORSMiddleware())
	router.Use(middleware.GinMetricsMiddleware(m))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":       "healthy",
			"service":      cfg.ServiceName,
			"version":      cfg.Version,
			"rate_limited": limiter != nil && cfg.RateLimit.Enabled,
			"timestamp":    time.Now().Unix(),
		})
	})

	if cfg.Metrics.Enabled {
		router.GET(cfg.Metrics.Path, gin.WrapH(m.Handler()))
	}
	return router
}
