package middleware

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"

	"ecs-mentoring/backend/pkg/redis"
	"ecs-mentoring/backend/pkg/response"
)

// RateLimit 基于 Redis 滑动窗口的速率限制中间件（按客户端 IP）
// limit: 窗口内允许的最大请求数
// window: 滑动窗口时长
// rdb 为 nil 时降级放行（与 JWTAuth 策略一致）
func RateLimit(rdb *redis.Client, limit int, window time.Duration) gin.HandlerFunc {
	return rateLimit(rdb, limit, window, func(c *gin.Context) string {
		return fmt.Sprintf("rate_limit:%s:%s", c.ClientIP(), c.FullPath())
	})
}

// UserRateLimit 按登录用户限流，须挂在 JWTAuth 之后
func UserRateLimit(rdb *redis.Client, limit int, window time.Duration) gin.HandlerFunc {
	return rateLimit(rdb, limit, window, func(c *gin.Context) string {
		return fmt.Sprintf("rate_limit:user:%s:%s", c.GetString("user_id"), c.FullPath())
	})
}

func rateLimit(rdb *redis.Client, limit int, window time.Duration, keyFn func(*gin.Context) string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if rdb == nil || limit <= 0 {
			c.Next()
			return
		}

		allowed, err := rdb.CheckRateLimit(c.Request.Context(), keyFn(c), limit, window)
		if err != nil {
			// Redis 出错时降级放行
			c.Next()
			return
		}

		if !allowed {
			response.TooManyRequests(c, 10004, "请求过于频繁，请稍后再试")
			c.Abort()
			return
		}

		c.Next()
	}
}
