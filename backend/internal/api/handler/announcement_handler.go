package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"ecs-mentoring/backend/internal/dto"
	"ecs-mentoring/backend/internal/service"
	"ecs-mentoring/backend/pkg/response"
)

// AnnouncementHandler 公告模块 HTTP 处理器
type AnnouncementHandler struct {
	announcementSvc service.AnnouncementService
}

// NewAnnouncementHandler 创建 AnnouncementHandler
func NewAnnouncementHandler(announcementSvc service.AnnouncementService) *AnnouncementHandler {
	return &AnnouncementHandler{announcementSvc: announcementSvc}
}

// ListAnnouncements 当前角色可见的公告
// GET /api/v1/announcements?limit=30&pinned_only=true&target_type=all
func (h *AnnouncementHandler) ListAnnouncements(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	role, ok := MustGetRole(c)
	if !ok {
		return
	}

	var req dto.AnnouncementListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	list, err := h.announcementSvc.List(c.Request.Context(), userID, role, &req)
	if err != nil {
		h.handleAnnouncementError(c, err)
		return
	}

	response.OK(c, gin.H{"list": list})
}

// GetAnnouncement 公告详情
// GET /api/v1/announcements/:id
func (h *AnnouncementHandler) GetAnnouncement(c *gin.Context) {
	a, err := h.announcementSvc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handleAnnouncementError(c, err)
		return
	}

	response.OK(c, a)
}

// CreateAnnouncement 发布公告（教师、管理员）
// POST /api/v1/announcements
func (h *AnnouncementHandler) CreateAnnouncement(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.CreateAnnouncementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	a, err := h.announcementSvc.Create(c.Request.Context(), userID, &req)
	if err != nil {
		h.handleAnnouncementError(c, err)
		return
	}

	response.Created(c, a)
}

func (h *AnnouncementHandler) handleAnnouncementError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrAnnouncementNotFound):
		response.NotFound(c, 13001, "公告不存在")
	case errors.Is(err, service.ErrAnnouncementEmpty):
		response.BadRequest(c, 13002, "标题和正文不能为空")
	default:
		respondByKind(c, err)
	}
}
