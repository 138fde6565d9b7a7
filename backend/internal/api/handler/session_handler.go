package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"ecs-mentoring/backend/internal/dto"
	"ecs-mentoring/backend/internal/service"
	"ecs-mentoring/backend/pkg/response"
)

// SessionHandler 辅导会话模块 HTTP 处理器
type SessionHandler struct {
	sessionSvc service.SessionService
}

// NewSessionHandler 创建 SessionHandler
func NewSessionHandler(sessionSvc service.SessionService) *SessionHandler {
	return &SessionHandler{sessionSvc: sessionSvc}
}

// ListSessions 当前角色可见的辅导会话
// GET /api/v1/sessions?upcoming=true&status=scheduled&limit=50
func (h *SessionHandler) ListSessions(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	role, ok := MustGetRole(c)
	if !ok {
		return
	}

	var req dto.SessionListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	list, err := h.sessionSvc.List(c.Request.Context(), userID, role, &req)
	if err != nil {
		h.handleSessionError(c, err)
		return
	}

	response.OK(c, gin.H{"list": list})
}

// GetSession 辅导会话详情
// GET /api/v1/sessions/:id
func (h *SessionHandler) GetSession(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	role, ok := MustGetRole(c)
	if !ok {
		return
	}

	sess, err := h.sessionSvc.GetByID(c.Request.Context(), userID, role, c.Param("id"))
	if err != nil {
		h.handleSessionError(c, err)
		return
	}

	response.OK(c, sess)
}

// Calendar 导出可见辅导会话为 iCalendar
// GET /api/v1/sessions/calendar
func (h *SessionHandler) Calendar(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	role, ok := MustGetRole(c)
	if !ok {
		return
	}

	data, err := h.sessionSvc.Calendar(c.Request.Context(), userID, role)
	if err != nil {
		h.handleSessionError(c, err)
		return
	}

	c.Header("Content-Disposition", "attachment; filename=sessions.ics")
	c.Data(http.StatusOK, "text/calendar; charset=utf-8", data)
}

// CreateSession 创建辅导会话（教师）
// POST /api/v1/sessions
func (h *SessionHandler) CreateSession(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.CreateSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	sess, err := h.sessionSvc.Create(c.Request.Context(), userID, &req)
	if err != nil {
		h.handleSessionError(c, err)
		return
	}

	response.Created(c, sess)
}

// UpdateSession 更新辅导会话（仅本人）
// PUT /api/v1/sessions/:id
func (h *SessionHandler) UpdateSession(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.UpdateSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	sess, err := h.sessionSvc.Update(c.Request.Context(), userID, c.Param("id"), &req)
	if err != nil {
		h.handleSessionError(c, err)
		return
	}

	response.OK(c, sess)
}

// UpdateMeetLink 上传会议链接
// PATCH /api/v1/sessions/:id/meet-link
func (h *SessionHandler) UpdateMeetLink(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.UpdateMeetLinkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	sess, err := h.sessionSvc.UpdateMeetLink(c.Request.Context(), userID, c.Param("id"), req.MeetLink)
	if err != nil {
		h.handleSessionError(c, err)
		return
	}

	response.OK(c, sess)
}

// DeleteSession 删除辅导会话（仅本人）
// DELETE /api/v1/sessions/:id
func (h *SessionHandler) DeleteSession(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	if err := h.sessionSvc.Delete(c.Request.Context(), userID, c.Param("id")); err != nil {
		h.handleSessionError(c, err)
		return
	}

	response.OK(c, nil)
}

func (h *SessionHandler) handleSessionError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrTeacherProfileMissing):
		response.Forbidden(c, 14001, "教师档案不存在")
	case errors.Is(err, service.ErrSessionNotFound):
		response.NotFound(c, 14002, "辅导会话不存在")
	case errors.Is(err, service.ErrSessionAccessDenied):
		response.Forbidden(c, 14003, "无权查看该辅导会话")
	case errors.Is(err, service.ErrSessionInvalid):
		response.BadRequest(c, 14004, "标题和开始时间不能为空")
	case errors.Is(err, service.ErrMeetLinkEmpty):
		response.BadRequest(c, 14005, "会议链接不能为空")
	default:
		respondByKind(c, err)
	}
}
