package handler

import (
	"strings"

	"github.com/gin-gonic/gin"

	"camp-ratings/internal/core/auth"
	"camp-ratings/internal/domain"
	"camp-ratings/internal/transport/http/action"
)

type HomeHandler struct {
	jwt *auth.JWTer
}

func NewHomeHandler(jwt *auth.JWTer) *HomeHandler { return &HomeHandler{jwt: jwt} }

func (h *HomeHandler) MountAPI(g *gin.RouterGroup) {
	g.GET("/home", h.home)
}

// home 落地页分流：没 token 当游客，不报 401
func (h *HomeHandler) home(c *gin.Context) {
	ah := c.GetHeader("Authorization")
	if !strings.HasPrefix(ah, "Bearer ") {
		action.OK(c, gin.H{"landing": "guest"})
		return
	}
	claims, err := h.jwt.Parse(strings.TrimPrefix(ah, "Bearer "))
	if err != nil {
		action.OK(c, gin.H{"landing": "guest"})
		return
	}
	landing := "user"
	if domain.IsAdmin(claims.Role) {
		landing = "admin"
	}
	action.OK(c, gin.H{"landing": landing, "userId": claims.UID})
}
