package handler

import (
	"errors"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"camp-ratings/internal/core/auth"
	"camp-ratings/internal/domain"
	"camp-ratings/internal/identity"
	"camp-ratings/internal/transport/http/action"
	resp "camp-ratings/internal/transport/http/response"
)

type UserHandler struct {
	svc   *identity.Service
	users domain.UserRepository
	log   *zap.Logger
}

func NewUserHandler(svc *identity.Service, users domain.UserRepository, log *zap.Logger) *UserHandler {
	return &UserHandler{svc: svc, users: users, log: log}
}

// MountPublic 无需登录的身份入口
func (h *UserHandler) MountPublic(g *gin.RouterGroup) {
	g.POST("/auth/register", h.register)
	g.GET("/auth/confirm", h.confirmEmail)
	g.POST("/auth/login", h.login)
}

// MountAuthed 需要登录
func (h *UserHandler) MountAuthed(g *gin.RouterGroup) {
	g.POST("/auth/logout", h.logout)
	g.GET("/profile", h.profile)
	g.PUT("/profile", h.updateProfile)
}

// MountAdminOnly 用户端 API 里的管理员路由
func (h *UserHandler) MountAdminOnly(g *gin.RouterGroup) {
	g.GET("/users/non-admins", h.nonAdmins)
}

func failIdentity(c *gin.Context, err error) {
	var ve *identity.ValidationError
	if errors.As(err, &ve) {
		action.Fail(c, action.Invalid(ve.Fields))
		return
	}
	action.Fail(c, err)
}

func (h *UserHandler) register(c *gin.Context) {
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
	action.OK(c, gin.H{
		"status":  "confirmation-pending",
		"message": "Please check your email to confirm your account.",
		"userId":  u.ID,
	})
}

// confirmEmail 失败可见但非致命：确认页渲染错误消息
func (h *UserHandler) confirmEmail(c *gin.Context) {
	err := h.svc.ConfirmEmail(c.Request.Context(), c.Query("userId"), c.Query("token"))
	switch {
	case err == nil:
		action.OK(c, gin.H{"message": "Thank you for confirming your email. You can login."})
	case errors.Is(err, identity.ErrBadAccount), errors.Is(err, identity.ErrConfirmFailed):
		action.Fail(c, action.BadRequest(err.Error()))
	default:
		action.Fail(c, action.Internal("confirm email failed", err))
	}
}

type loginIn struct {
	Email      string `json:"email"`
	Password   string `json:"password"`
	RememberMe bool   `json:"rememberMe"`
}

func (h *UserHandler) login(c *gin.Context) {
	var in loginIn
	if err := c.ShouldBindJSON(&in); err != nil {
		action.Fail(c, action.BadRequest(err.Error()))
		return
	}
	res, err := h.svc.Login(c.Request.Context(), in.Email, in.Password)
	switch {
	case err == nil:
		action.OK(c, res)
	case errors.Is(err, identity.ErrLockedOut):
		action.Fail(c, &action.Err{Code: resp.CodeForbidden, Msg: "This account has been locked out, please try again later."})
	case errors.Is(err, identity.ErrInvalidLogin):
		// 未知邮箱和错误密码口径一致
		action.Fail(c, action.BadRequest(identity.ErrInvalidLogin.Error()))
	default:
		action.Fail(c, action.Internal("login failed", err))
	}
}

func (h *UserHandler) logout(c *gin.Context) {
	claims, ok := c.MustGet("claims").(*auth.Claims)
	if !ok {
		action.Fail(c, action.Unauthorized("unauthorized"))
		return
	}
	if err := h.svc.Logout(c.Request.Context(), claims); err != nil {
		action.Fail(c, action.Internal("logout failed", err))
		return
	}
	action.OK(c, gin.H{"redirect": "/"})
}

func (h *UserHandler) profile(c *gin.Context) {
	u, err := h.users.FindByID(c.Request.Context(), c.GetString("userId"))
	if err != nil {
		action.Fail(c, action.Internal("load profile failed", err))
		return
	}
	if u == nil {
		action.Fail(c, action.NotFound("user not found"))
		return
	}
	action.OK(c, gin.H{"firstName": u.FirstName, "lastName": u.LastName, "email": u.Email})
}

func (h *UserHandler) updateProfile(c *gin.Context) {
	var in identity.ProfileInput
	if err := c.ShouldBindJSON(&in); err != nil {
		action.Fail(c, action.BadRequest(err.Error()))
		return
	}
	u, err := h.svc.UpdateProfile(c.Request.Context(), c.GetString("userId"), in)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			action.Fail(c, action.NotFound("user not found"))
			return
		}
		failIdentity(c, err)
		return
	}
	action.OK(c, gin.H{
		"message": "Profile updated successfully!",
		"profile": gin.H{"firstName": u.FirstName, "lastName": u.LastName, "email": u.Email},
	})
}

func (h *UserHandler) nonAdmins(c *gin.Context) {
	users, err := h.users.ListNonAdmins(c.Request.Context())
	if err != nil {
		action.Fail(c, action.Internal("list users failed", err))
		return
	}
	action.OK(c, gin.H{"items": users, "total": len(users)})
}
