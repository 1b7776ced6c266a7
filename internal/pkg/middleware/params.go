package middleware

import (
	"net/http"
	"thywilluche/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// UUIDParams 路径参数不是合法 UUID 时直接返回 404，避免把非法值交给数据库
func UUIDParams(names ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		for _, name := range names {
			if v := c.Param(name); v != "" {
				if _, err := uuid.Parse(v); err != nil {
					response.Error(c, http.StatusNotFound, response.ErrNotFound, "resource not found")
					c.Abort()
					return
				}
			}
		}
		c.Next()
	}
}
