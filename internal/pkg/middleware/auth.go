package middleware

import (
	"net/http"
	"strings"
	"thywilluche/pkg/response"
	"thywilluche/pkg/utils"

	"github.com/gin-gonic/gin"
)

// 上下文键
const (
	ContextUserID = "userID"
	ContextRole   = "role"
)

// RoleAdmin 与 user 模块的角色值保持一致，这里不引用 user/model 以避免循环依赖
const RoleAdmin = "ADMIN"

// AuthMiddleware JWT认证中间件
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := parseBearer(c)
		if !ok {
			return
		}
		if claims == nil {
			response.Error(c, http.StatusUnauthorized, response.ErrUnauthorized, "Authorization header is required")
			c.Abort()
			return
		}

		setIdentity(c, claims)
		c.Next()
	}
}

// OptionalAuthMiddleware 可选认证：带合法 token 时写入身份，不带 token 时匿名放行
// 非法 token 仍然返回 401，避免客户端以为自己已登录
func OptionalAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := parseBearer(c)
		if !ok {
			return
		}
		if claims != nil {
			setIdentity(c, claims)
		}
		c.Next()
	}
}

// AdminMiddleware 管理员权限中间件，必须放在 AuthMiddleware 之后
func AdminMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, exists := c.Get(ContextUserID); !exists {
			response.Error(c, http.StatusUnauthorized, response.ErrUnauthorized, "Unauthorized")
			c.Abort()
			return
		}

		if !IsAdmin(c) {
			response.Error(c, http.StatusForbidden, response.ErrNoPermission, "Admin permission required")
			c.Abort()
			return
		}

		c.Next()
	}
}

// parseBearer 返回 (nil, true) 表示没有 Authorization 头
// 返回 ok=false 时已经写入错误响应
func parseBearer(c *gin.Context) (*utils.Claims, bool) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return nil, true
	}

	// 检查格式 "Bearer <token>"
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
		response.Error(c, http.StatusUnauthorized, response.ErrTokenInvalid, "Invalid authorization header format")
		c.Abort()
		return nil, false
	}

	claims, err := utils.ParseToken(parts[1])
	if err != nil {
		response.Error(c, http.StatusUnauthorized, response.ErrTokenInvalid, "Invalid or expired token")
		c.Abort()
		return nil, false
	}
	return claims, true
}

func setIdentity(c *gin.Context, claims *utils.Claims) {
	c.Set(ContextUserID, claims.UserID())
	c.Set(ContextRole, claims.Role)
}

// GetUserID 当前登录用户 ID，匿名时为空字符串
func GetUserID(c *gin.Context) string {
	return c.GetString(ContextUserID)
}

// IsAdmin 当前用户是否管理员
func IsAdmin(c *gin.Context) bool {
	return c.GetString(ContextRole) == RoleAdmin
}
