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
	"camp-ratings/internal/identity"
	"camp-ratings/internal/mail"
	"camp-ratings/internal/repo"
	"camp-ratings/internal/transport/http/router"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load(os.Getenv("CONFIG_PATH"))
	log, cleanup := newLogger(cfg)
	defer cleanup()

	// DB 连接（失败直接 Fatal）
	db := mustOpenDB(cfg, log)
	log.Info("database connected", zap.String("driver", cfg.DB.Driver))

	// 依赖
	jwter := &auth.JWTer{
		Secret: []byte(cfg.JWT.Secret),
		Issuer: cfg.JWT.Issuer,
		TTL:    time.Duration(cfg.JWT.AccessTokenTTLMin) * time.Minute,
	}
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

	// 路由（后台端）
	r := router.NewAdminEngine(router.AdminDeps{
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
	addr := server.Addr(cfg.App.Admin.Host, cfg.App.Admin.Port)
	srv := server.BuildServer(addr, r, 5*time.Second, 10*time.Second, 60*time.Second)
	if errLog, err := logger.ToStdLogger(log, zapcore.ErrorLevel); err == nil {
		srv.ErrorLog = errLog
	}

	// 启动前打印可点击地址
	host4human := cfg.App.Admin.Host
	if host4human == "" || host4human == "0.0.0.0" {
		host4human = "127.0.0.1"
	}
	baseURL := "http://" + host4human + ":" + fmt.Sprint(cfg.App.Admin.Port)
	log.Info("admin api starting",
		zap.String("addr", addr),
		zap.String("open", baseURL),
		zap.String("health", baseURL+"/health"),
		zap.String("admin_v1", baseURL+"/admin/v1"),
	)

	// 异步启动；失败立即退出
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("admin api start FAILED", zap.Error(err))
		}
	}()
	log.Info("admin api started SUCCESS")

	// 关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(ctx)
	log.Info("admin api stopped gracefully")
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
