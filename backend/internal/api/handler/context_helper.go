package handler

import (
	"time"

	"github.com/gin-gonic/gin"

	"ecs-mentoring/backend/internal/model"
	"ecs-mentoring/backend/pkg/response"
)

// MustGetUserID 从 Gin 上下文中安全提取 user_id。
// 如果 JWT 中间件未正确注入 user_id，返回 false 并写入 401 响应。
// 调用方应在 ok=false 时直接 return。
func MustGetUserID(c *gin.Context) (string, bool) {
	v, exists := c.Get("user_id")
	if !exists {
		response.Unauthorized(c, 10002, "未认证")
		return "", false
	}
	s, ok := v.(string)
	if !ok || s == "" {
		response.Unauthorized(c, 10002, "未认证")
		return "", false
	}
	return s, true
}

// MustGetRole 从 Gin 上下文中安全提取 role，非法角色视为未认证。
func MustGetRole(c *gin.Context) (model.Role, bool) {
	v, exists := c.Get("role")
	if !exists {
		response.Unauthorized(c, 10002, "未认证")
		return "", false
	}
	s, ok := v.(string)
	if !ok || !model.Role(s).Valid() {
		response.Unauthorized(c, 10002, "未认证")
		return "", false
	}
	return model.Role(s), true
}

// MustGetTokenMeta 提取当前 Access Token 的 JTI 与过期时间（退出登录时写黑名单）
func MustGetTokenMeta(c *gin.Context) (string, time.Time, bool) {
	jti := c.GetString("token_jti")
	v, exists := c.Get("token_exp")
	exp, ok := v.(time.Time)
	if jti == "" || !exists || !ok {
		response.Unauthorized(c, 10002, "未认证")
		return "", time.Time{}, false
	}
	return jti, exp, true
}
