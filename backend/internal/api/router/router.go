package router

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"ecs-mentoring/backend/config"
	"ecs-mentoring/backend/internal/api/handler"
	"ecs-mentoring/backend/internal/api/middleware"
	"ecs-mentoring/backend/pkg/jwt"
	"ecs-mentoring/backend/pkg/redis"
)

// maxBodyBytes JSON 请求体上限
const maxBodyBytes = 1 << 20

// Setup 初始化并返回 Gin 路由引擎
// rdb 为 nil 时黑名单与限流降级放行
func Setup(cfg *config.Config, h *handler.Handler, jwtMgr *jwt.Manager, rdb *redis.Client, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	if err := handler.RegisterValidators(); err != nil {
		logger.Fatal("注册参数校验器失败", zap.Error(err))
	}

	r := gin.New()

	// ── 全局中间件 ──
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Metrics())
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))
	r.Use(middleware.BodyLimit(maxBodyBytes))

	// ── 健康检查 / 指标 ──
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	rl := cfg.RateLimit

	// ── API v1 ──
	v1 := r.Group("/api/v1")
	{
		// 认证模块（无需认证）
		auth := v1.Group("/auth")
		{
			auth.POST("/login", middleware.RateLimit(rdb, rl.LoginLimit, rl.LoginWindow), h.Auth.Login)
			auth.POST("/refresh", h.Auth.RefreshToken)
		}

		// 需要认证的路由
		authorized := v1.Group("")
		authorized.Use(middleware.JWTAuth(jwtMgr, rdb))
		{
			// 认证模块（需要认证）
			authorized.POST("/auth/logout", h.Auth.Logout)
			authorized.GET("/auth/me", h.Auth.GetCurrentUser)
			authorized.PUT("/auth/me", h.Auth.UpdateMe)

			// 私信模块（轮询）
			chat := authorized.Group("/chat")
			{
				chat.GET("/contacts", h.Chat.ListContacts)
				chat.GET("/conversations", h.Chat.ListConversations)
				chat.POST("/conversations", h.Chat.GetOrCreateConversation)
				chat.GET("/conversations/:id/messages", h.Chat.GetMessages)
				chat.POST("/conversations/:id/messages",
					middleware.UserRateLimit(rdb, rl.MessageLimit, rl.MessageWindow), h.Chat.SendMessage)
				chat.PATCH("/messages/:id/read", h.Chat.MarkMessageRead)
			}

			// 公告模块
			announcements := authorized.Group("/announcements")
			{
				announcements.GET("", h.Announcement.ListAnnouncements)
				announcements.GET("/:id", h.Announcement.GetAnnouncement)
				announcements.POST("", middleware.RoleAuth("teacher", "admin"), h.Announcement.CreateAnnouncement)
			}

			// 辅导会话模块（写操作限教师，本人校验在 Service 层）
			sessions := authorized.Group("/sessions")
			{
				sessions.GET("", h.Session.ListSessions)
				sessions.GET("/calendar", h.Session.Calendar)
				sessions.GET("/:id", h.Session.GetSession)
				sessions.POST("", middleware.RoleAuth("teacher"), h.Session.CreateSession)
				sessions.PUT("/:id", middleware.RoleAuth("teacher"), h.Session.UpdateSession)
				sessions.PATCH("/:id/meet-link", middleware.RoleAuth("teacher"), h.Session.UpdateMeetLink)
				sessions.DELETE("/:id", middleware.RoleAuth("teacher"), h.Session.DeleteSession)
			}

			// 通知模块
			notifications := authorized.Group("/notifications")
			{
				notifications.GET("", h.Notification.ListNotifications)
				notifications.GET("/unread-count", h.Notification.UnreadCount)
				notifications.PATCH("/read-all", h.Notification.MarkAllRead)
				notifications.PATCH("/:id/read", h.Notification.MarkRead)
			}

			// 管理员：师生关系维护与名册导出
			admin := authorized.Group("/admin")
			admin.Use(middleware.RoleAuth("admin"))
			{
				admin.GET("/students", h.Admin.ListStudents)
				admin.GET("/teachers", h.Admin.ListTeachers)
				admin.PUT("/students/:id/mentor", h.Admin.AssignMentor)
				admin.POST("/parents/:id/students", h.Admin.LinkParent)
				admin.GET("/export/roster", h.Export.ExportRoster)
			}
		}
	}

	return r
}
