package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"camp-ratings/internal/core/auth"
	"camp-ratings/internal/identity"
	resp "camp-ratings/internal/transport/http/response"
)

// AuthJWT 解析 token，把 userId/role 放进上下文；角色每会话只解析一次（签发时）
// deny 可为 nil（测试或不接 redis 时跳过注销检查）
func AuthJWT(j *auth.JWTer, deny identity.Denylist, requireRole string) gin.HandlerFunc {
	return func(c *gin.Context) {
		ah := c.GetHeader("Authorization")
		if !strings.HasPrefix(ah, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusOK, resp.Error(resp.CodeUnauthorized, "missing token"))
			return
		}
		claims, err := j.Parse(strings.TrimPrefix(ah, "Bearer "))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusOK, resp.Error(resp.CodeUnauthorized, "invalid token"))
			return
		}
		if deny != nil {
			// redis 查询出错按未拉黑放行（fail-open）：注销失效可容忍，拦掉活人不行
			if revoked, err := deny.Revoked(c.Request.Context(), claims.ID); err == nil && revoked {
				c.AbortWithStatusJSON(http.StatusOK, resp.Error(resp.CodeUnauthorized, "token revoked"))
				return
			}
		}
		if requireRole != "" && claims.Role != requireRole {
			c.AbortWithStatusJSON(http.StatusOK, resp.Error(resp.CodeForbidden, "forbidden"))
			return
		}
		c.Set("claims", claims)
		c.Set("userId", claims.UID)
		c.Set("role", claims.Role)
		c.Next()
	}
}
