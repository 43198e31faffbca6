package handler

import (
	"context"
	"errors"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"camp-ratings/internal/core/cache"
	"camp-ratings/internal/domain"
	"camp-ratings/internal/identity"
	"camp-ratings/internal/transport/http/action"
)

const dashboardTTL = 30 * time.Second
const dashboardKey = "admin:dashboard"

type AdminHandler struct {
	users   domain.UserRepository
	camps   domain.CampRepository
	reviews domain.ReviewRepository
	svc     *identity.Service
	cache   *cache.Cache // 可为 nil
	log     *zap.Logger
}

func NewAdminHandler(users domain.UserRepository, camps domain.CampRepository, reviews domain.ReviewRepository,
	svc *identity.Service, c *cache.Cache, log *zap.Logger) *AdminHandler {
	return &AdminHandler{users: users, camps: camps, reviews: reviews, svc: svc, cache: c, log: log}
}

// MountAdmin 分组整体已要求 admin 角色
func (h *AdminHandler) MountAdmin(g *gin.RouterGroup) {
	g.GET("/dashboard", h.dashboard)
	g.GET("/users", h.listUsers)
	g.POST("/users", h.createUser)
	g.PUT("/users/:id", h.editUser)
	g.GET("/users/:id/delete", h.deleteUserConfirm)
	g.DELETE("/users/:id", h.deleteUserConfirmed)
}

type dashboardOut struct {
	UserCount   int64 `json:"userCount"`
	CampCount   int64 `json:"campCount"`
	ReviewCount int64 `json:"reviewCount"`
}

func (h *AdminHandler) dashboard(c *gin.Context) {
	ctx := c.Request.Context()
	load := func(ctx context.Context) (*dashboardOut, error) {
		var out dashboardOut
		var err error
		if out.UserCount, err = h.users.Count(ctx); err != nil {
			return nil, err
		}
		if out.CampCount, err = h.camps.Count(ctx); err != nil {
			return nil, err
		}
		if out.ReviewCount, err = h.reviews.Count(ctx); err != nil {
			return nil, err
		}
		return &out, nil
	}

	var out *dashboardOut
	var err error
	if h.cache != nil {
		out, err = cache.GetOrLoadJSON[dashboardOut](h.cache, ctx, dashboardKey, dashboardTTL, load)
	} else {
		out, err = load(ctx)
	}
	if err != nil {
		action.Fail(c, action.Internal("dashboard counts failed", err))
		return
	}
	action.OK(c, out)
}

func (h *AdminHandler) listUsers(c *gin.Context) {
	users, err := h.users.List(c.Request.Context(), c.Query("q"))
	if err != nil {
		action.Fail(c, action.Internal("list users failed", err))
		return
	}
	action.OK(c, gin.H{"items": users, "total": len(users)})
}

// createUser 管理员代建，流程与自助注册一致（含确认邮件）
func (h *AdminHandler) createUser(c *gin.Context) {
	var in identity.RegisterInput
	if err := c.ShouldBindJSON(&in); err != nil {
		action.Fail(c, action.BadRequest(err.Error()))
		return
	}
	u, err := h.svc.Register(c.Request.Context(), in)
	if err != nil {
		failIdentity(c, err)
		return
	}
	h.log.Info("user created by admin", zap.String("user", u.ID))
	action.OK(c, gin.H{"user": u, "redirect": "/admin/v1/users"})
}

// editUser 只改姓名和邮箱，没有改密码的入口。
// 邮箱就是登录名，所以走和自助资料更新同一条归一化/校验通道
func (h *AdminHandler) editUser(c *gin.Context) {
	var in identity.ProfileInput
	if err := c.ShouldBindJSON(&in); err != nil {
		action.Fail(c, action.BadRequest(err.Error()))
		return
	}
	u, err := h.svc.UpdateProfile(c.Request.Context(), c.Param("id"), in)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			action.Fail(c, action.NotFound("user not found"))
			return
		}
		failIdentity(c, err)
		return
	}
	action.OK(c, gin.H{"user": u, "redirect": "/admin/v1/users"})
}

// deleteUserConfirm 确认页也拦管理员，不等确认提交才报错
func (h *AdminHandler) deleteUserConfirm(c *gin.Context) {
	u, err := h.users.FindByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		action.Fail(c, action.Internal("load user failed", err))
		return
	}
	if u == nil {
		action.Fail(c, action.NotFound("user not found"))
		return
	}
	if !domain.CanDeleteUser(u) {
		action.Fail(c, action.Forbidden("Cannot delete an administrator."))
		return
	}
	action.OK(c, gin.H{"user": u, "confirm": "DELETE /admin/v1/users/" + u.ID})
}

func (h *AdminHandler) deleteUserConfirmed(c *gin.Context) {
	id := c.Param("id")
	err := h.users.DeleteNonAdmin(c.Request.Context(), id)
	switch {
	case err == nil:
		h.log.Info("user deleted", zap.String("user", id))
		action.OK(c, gin.H{"redirect": "/admin/v1/users"})
	case errors.Is(err, domain.ErrNotFound):
		action.Fail(c, action.NotFound("user not found"))
	case errors.Is(err, domain.ErrAdminUndeletable):
		// 确认页之后角色才变的情况，事务里重查兜住
		action.Fail(c, action.Forbidden("Cannot delete an administrator."))
	default:
		action.Fail(c, action.Internal("delete user failed", err))
	}
}
