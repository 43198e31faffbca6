package router

import (
	"net/http"
	"time"

	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"camp-ratings/internal/core/auth"
	"camp-ratings/internal/core/cache"
	"camp-ratings/internal/domain"
	"camp-ratings/internal/identity"
	"camp-ratings/internal/transport/http/handler"
	mdw "camp-ratings/internal/transport/http/middleware"
)

type AdminDeps struct {
	Log      *zap.Logger
	JWT      *auth.JWTer
	Cache    *cache.Cache
	Deny     identity.Denylist
	Camps    domain.CampRepository
	Reviews  domain.ReviewRepository
	Users    domain.UserRepository
	Identity *identity.Service
}

func NewAdminEngine(d AdminDeps) *gin.Engine {
	r := gin.New()

	r.Use(
		mdw.RequestID(),
		mdw.RateLimit(200, 400),
		mdw.ConcurrencyLimit(300),
		mdw.MaxBodyBytes(16<<20),
		mdw.Timeout(10*time.Second),
		ginzap.RecoveryWithZap(d.Log, true),
		mdw.Metrics(),
		mdw.AccessLog(d.Log),
	)

	// 健康检查 + 指标
	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"ok": 1}) })
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// 管理端 v1（统一要求 admin 角色）
	admin := r.Group("/admin/v1")
	admin.Use(mdw.AuthJWT(d.JWT, d.Deny, domain.RoleAdmin))

	campH := handler.NewCampHandler(d.Camps, d.Cache, d.Log)
	adminH := handler.NewAdminHandler(d.Users, d.Camps, d.Reviews, d.Identity, d.Cache, d.Log)

	MountAdmin(admin, campH, adminH)

	return r
}
