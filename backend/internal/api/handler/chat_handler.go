package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"ecs-mentoring/backend/internal/dto"
	"ecs-mentoring/backend/internal/service"
	"ecs-mentoring/backend/pkg/response"
)

// ChatHandler 私信模块 HTTP 处理器
type ChatHandler struct {
	chatSvc service.ChatService
}

// NewChatHandler 创建 ChatHandler
func NewChatHandler(chatSvc service.ChatService) *ChatHandler {
	return &ChatHandler{chatSvc: chatSvc}
}

// ListContacts 可私信的联系人
// GET /api/v1/chat/contacts
func (h *ChatHandler) ListContacts(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	contacts, err := h.chatSvc.ListContacts(c.Request.Context(), userID)
	if err != nil {
		h.handleChatError(c, err)
		return
	}

	response.OK(c, gin.H{"list": contacts})
}

// ListConversations 当前用户的会话列表
// GET /api/v1/chat/conversations
func (h *ChatHandler) ListConversations(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	convs, err := h.chatSvc.ListConversations(c.Request.Context(), userID)
	if err != nil {
		h.handleChatError(c, err)
		return
	}

	response.OK(c, gin.H{"list": convs})
}

// GetOrCreateConversation 获取或创建与对方的会话
// POST /api/v1/chat/conversations
func (h *ChatHandler) GetOrCreateConversation(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.CreateConversationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	conv, err := h.chatSvc.GetOrCreateConversation(c.Request.Context(), userID, req.OtherUserID)
	if err != nil {
		h.handleChatError(c, err)
		return
	}

	response.OK(c, conv)
}

// GetMessages 会话消息（时间正序）
// GET /api/v1/chat/conversations/:id/messages?limit=50&before=2026-01-01T00:00:00Z
func (h *ChatHandler) GetMessages(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.MessageListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.chatSvc.GetConversationMessages(c.Request.Context(), userID, c.Param("id"), &req)
	if err != nil {
		h.handleChatError(c, err)
		return
	}

	response.OK(c, result)
}

// SendMessage 发送消息
// POST /api/v1/chat/conversations/:id/messages
func (h *ChatHandler) SendMessage(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	msg, err := h.chatSvc.SendMessage(c.Request.Context(), userID, c.Param("id"), req.Content)
	if err != nil {
		h.handleChatError(c, err)
		return
	}

	response.Created(c, msg)
}

// MarkMessageRead 标记消息已读
// PATCH /api/v1/chat/messages/:id/read
func (h *ChatHandler) MarkMessageRead(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	msg, err := h.chatSvc.MarkMessageRead(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		h.handleChatError(c, err)
		return
	}

	response.OK(c, msg)
}

func (h *ChatHandler) handleChatError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidUserID):
		response.BadRequest(c, 12001, "用户 ID 格式错误")
	case errors.Is(err, service.ErrSelfConversation):
		response.BadRequest(c, 12002, "不能与自己创建会话")
	case errors.Is(err, service.ErrEmptyMessage):
		response.BadRequest(c, 12003, "消息内容不能为空")
	case errors.Is(err, service.ErrContactNotAllowed):
		response.Forbidden(c, 12004, "无权与该用户私信")
	case errors.Is(err, service.ErrNotParticipant):
		response.Forbidden(c, 12005, "不是该会话成员")
	case errors.Is(err, service.ErrConversationNotFound):
		response.NotFound(c, 12006, "会话不存在")
	case errors.Is(err, service.ErrMessageNotFound):
		response.NotFound(c, 12007, "消息不存在")
	default:
		respondByKind(c, err)
	}
}
