package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"camp-ratings/internal/core/auth"
	"camp-ratings/internal/core/cache"
	"camp-ratings/internal/domain"
	"camp-ratings/internal/identity"
	"camp-ratings/internal/transport/http/handler"
	mdw "camp-ratings/internal/transport/http/middleware"
)

type APIDeps struct {
	Log      *zap.Logger
	JWT      *auth.JWTer
	Cache    *cache.Cache
	Deny     identity.Denylist
	Camps    domain.CampRepository
	Reviews  domain.ReviewRepository
	Users    domain.UserRepository
	Identity *identity.Service
}

func NewAPIEngine(d APIDeps) *gin.Engine {
	r := gin.New()

	// 中间件；公开面加一层每 IP 限速
	r.Use(
		mdw.RequestID(),
		mdw.RateLimit(200, 400),
		mdw.RateLimitPerIP(20, 40),
		mdw.ConcurrencyLimit(300),
		mdw.MaxBodyBytes(16<<20),
		mdw.Timeout(10*time.Second),
		ginzap.RecoveryWithZap(d.Log, true),
		mdw.Metrics(),
		mdw.AccessLog(d.Log),
		cors.Default(),
	)

	// 健康检查
	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"ok": 1}) })

	api := r.Group("/api/v1")

	// 鉴权分组；管理员专属分组在签发角色上再收一层
	authUser := api.Group("")
	authUser.Use(mdw.AuthJWT(d.JWT, d.Deny, ""))
	adminOnly := api.Group("")
	adminOnly.Use(mdw.AuthJWT(d.JWT, d.Deny, domain.RoleAdmin))

	campH := handler.NewCampHandler(d.Camps, d.Cache, d.Log)
	reviewH := handler.NewReviewHandler(d.Reviews, d.Camps, d.Cache, d.Log)
	userH := handler.NewUserHandler(d.Identity, d.Users, d.Log)
	homeH := handler.NewHomeHandler(d.JWT)

	// 公开：营地读、落地页、身份入口
	MountAPI(api, campH, homeH)
	userH.MountPublic(api)

	// 登录后：评论、个人资料、注销
	reviewH.MountAPI(authUser)
	userH.MountAuthed(authUser)

	// 管理员（用户端口径）：非管理员用户列表
	userH.MountAdminOnly(adminOnly)

	return r
}
