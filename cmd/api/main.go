package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "go.uber.org/automaxprocs"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gorm.io/gorm"

	"camp-ratings/internal/core/auth"
	"camp-ratings/internal/core/cache"
	"camp-ratings/internal/core/config"
	"camp-ratings/internal/core/database"
	"camp-ratings/internal/core/logger"
	"camp-ratings/internal/core/server"
	"camp-ratings/internal/domain"
	"camp-ratings/internal/identity"
	"camp-ratings/internal/mail"
	"camp-ratings/internal/repo"
	"camp-ratings/internal/seed"
	"camp-ratings/internal/transport/http/router"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load(os.Getenv("CONFIG_PATH"))
	log, cleanup := newLogger(cfg)
	defer cleanup()

	// 数据库（失败会直接 Fatal）
	db := mustOpenDB(cfg, log)
	log.Info("database connected", zap.String("driver", cfg.DB.Driver))

	// 自动迁移
	if cfg.DB.AutoMigrate {
		if err := db.AutoMigrate(&domain.User{}, &domain.Camp{}, &domain.Review{}); err != nil {
			log.Fatal("automigrate failed", zap.Error(err))
		}
		log.Info("automigrate done")
	}

	// JWT
	jwter := &auth.JWTer{
		Secret: []byte(cfg.JWT.Secret),
		Issuer: cfg.JWT.Issuer,
		TTL:    time.Duration(cfg.JWT.AccessTokenTTLMin) * time.Minute,
	}

	// Redis：详情缓存、确认 token、登录锁定、注销拉黑
	rc := cache.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)

	campRepo := repo.NewCampRepo(db)
	reviewRepo := repo.NewReviewRepo(db)
	userRepo := repo.NewUserRepo(db)

	sender := mail.NewSMTP(cfg.SMTP.Host, cfg.SMTP.Port, cfg.SMTP.Username, cfg.SMTP.Password, cfg.SMTP.From, log)
	deny := &identity.RedisDenylist{C: rc}
	idSvc := identity.NewService(
		userRepo,
		&identity.RedisTokenStore{C: rc},
		&identity.RedisLockout{
			C:         rc,
			Threshold: cfg.Identity.LockoutThreshold,
			Window:    time.Duration(cfg.Identity.LockoutWindowMin) * time.Minute,
			Duration:  time.Duration(cfg.Identity.LockoutDurationMin) * time.Minute,
		},
		deny,
		sender,
		jwter,
		log,
		cfg.Identity.PublicBaseURL,
		time.Duration(cfg.Identity.ConfirmTokenTTLMin)*time.Minute,
	)

	// 默认管理员
	if cfg.Identity.SeedAdmin {
		if err := seed.EnsureAdmin(context.Background(), userRepo,
			cfg.Identity.SeedAdminEmail, cfg.Identity.SeedAdminPassword, log); err != nil {
			log.Fatal("seed admin failed", zap.Error(err))
		}
	}

	// 路由（用户端）
	r := router.NewAPIEngine(router.APIDeps{
		Log:      log,
		JWT:      jwter,
		Cache:    rc,
		Deny:     deny,
		Camps:    campRepo,
		Reviews:  reviewRepo,
		Users:    userRepo,
		Identity: idSvc,
	})

	// HTTP Server
	addr := server.Addr(cfg.App.HTTP.Host, cfg.App.HTTP.Port)
	srv := server.BuildServer(
		addr, r,
		time.Duration(cfg.App.HTTP.ReadTimeoutSec)*time.Second,
		time.Duration(cfg.App.HTTP.WriteTimeoutSec)*time.Second,
		time.Duration(cfg.App.HTTP.IdleTimeoutSec)*time.Second,
	)
	if errLog, err := logger.ToStdLogger(log, zapcore.ErrorLevel); err == nil {
		srv.ErrorLog = errLog
	}

	// 启动日志
	host4human := cfg.App.HTTP.Host
	if host4human == "" || host4human == "0.0.0.0" {
		host4human = "127.0.0.1"
	}
	baseURL := "http://" + host4human + ":" + fmt.Sprint(cfg.App.HTTP.Port)
	log.Info("camp api starting",
		zap.String("addr", addr),
		zap.String("open", baseURL),
		zap.String("health", baseURL+"/health"),
		zap.String("api_v1", baseURL+"/api/v1"),
	)

	// 异步启动
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("camp api start FAILED", zap.Error(err))
		}
	}()
	log.Info("camp api started SUCCESS")

	// 优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(ctx)
	log.Info("camp api stopped gracefully")
}

// newLogger 可选落盘切割；标准库 log 和 gin 默认输出都并进 zap
func newLogger(cfg *config.Config) (*zap.Logger, func()) {
	var l *zap.Logger
	var cleanup func()
	if cfg.Log.File != "" {
		l, cleanup = logger.NewWithRotate(cfg.Log.Level, cfg.Log.JSON, cfg.Log.File,
			cfg.Log.MaxSizeMB, cfg.Log.MaxBackups, cfg.Log.MaxAgeDays, cfg.Log.Compress)
	} else {
		l, cleanup = logger.New(cfg.Log.Level, cfg.Log.JSON)
	}
	undo := logger.RedirectStdLog(l, zapcore.ErrorLevel)
	gin.DefaultWriter = logger.ToWriter(l, zapcore.InfoLevel)
	gin.DefaultErrorWriter = logger.ToWriter(l, zapcore.ErrorLevel)
	return l, func() { undo(); cleanup() }
}

func mustOpenDB(cfg *config.Config, l *zap.Logger) *gorm.DB {
	db, err := database.NewGorm(database.Opts{
		Driver:             cfg.DB.Driver,
		DSN:                cfg.DB.DSN,
		MaxOpenConns:       cfg.DB.MaxOpenConns,
		MaxIdleConns:       cfg.DB.MaxIdleConns,
		ConnMaxLifetimeMin: cfg.DB.ConnMaxLifetimeMin,
		LogLevel:           cfg.DB.LogLevel,
	})
	if err != nil {
		l.Fatal("db open", zap.Error(err))
	}
	return db
}
