package middleware

import (
	"net/http"
	"strings"

	"mini_shop/pkg/response"
	"mini_shop/pkg/utils"

	"github.com/gin-gonic/gin"
)

const (
	ctxUserID = "userID"
	ctxRole   = "role"

	// RoleAdmin 管理员角色，与 user 模型中的角色取值一致
	RoleAdmin = "admin"
)

// AuthMiddleware JWT认证中间件
// 优先读取 "Authorization: Bearer <token>"，兼容旧客户端的 x-auth-token 头
func AuthMiddleware(j *utils.JWT) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, ok := extractToken(c)
		if !ok {
			response.Error(c, http.StatusUnauthorized, response.ErrTokenInvalid, "No token, authorization denied")
			c.Abort()
			return
		}

		claims, err := j.ParseToken(tokenString)
		if err != nil {
			response.Error(c, http.StatusUnauthorized, response.ErrTokenInvalid, "Token is not valid")
			c.Abort()
			return
		}

		// 将 userID 和 role 存入上下文
		c.Set(ctxUserID, claims.UserID)
		c.Set(ctxRole, claims.Role)

		c.Next()
	}
}

func extractToken(c *gin.Context) (string, bool) {
	if authHeader := c.GetHeader("Authorization"); authHeader != "" {
		// 检查格式 "Bearer <token>"
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
			return "", false
		}
		return parts[1], true
	}
	if token := c.GetHeader("x-auth-token"); token != "" {
		return token, true
	}
	return "", false
}

// AdminMiddleware 管理员权限中间件，必须在 AuthMiddleware 之后使用
func AdminMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		role, exists := c.Get(ctxRole)
		if !exists {
			response.Error(c, http.StatusUnauthorized, response.ErrNoPermission, "Unauthorized")
			c.Abort()
			return
		}

		if r, _ := role.(string); r != RoleAdmin {
			response.Error(c, http.StatusForbidden, response.ErrNoPermission, "Admin access required")
			c.Abort()
			return
		}

		c.Next()
	}
}

// GetUserID 读取 AuthMiddleware 写入的用户 ID
func GetUserID(c *gin.Context) uint {
	val, _ := c.Get(ctxUserID)
	id, _ := val.(uint)
	return id
}
