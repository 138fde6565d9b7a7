package dto

import "time"

// ── 私信模块 DTO ──

// CreateConversationRequest 创建或获取会话请求
type CreateConversationRequest struct {
	OtherUserID string `json:"other_user_id" binding:"required"`
}

// MessageListRequest 消息分页参数
// Before 为 RFC3339 时间，只返回该时间之前的消息
type MessageListRequest struct {
	Limit  int        `form:"limit"  binding:"omitempty,min=1"`
	Before *time.Time `form:"before" time_format:"2006-01-02T15:04:05Z07:00"`
}

// SendMessageRequest 发送消息请求
type SendMessageRequest struct {
	Content string `json:"content" binding:"required,max=5000"`
}

// ContactResponse 可联系人
type ContactResponse struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// ParticipantBrief 会话对方摘要
type ParticipantBrief struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Role string `json:"role"`
}

// MessagePreview 最后一条消息预览
type MessagePreview struct {
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// ConversationResponse 会话
type ConversationResponse struct {
	ID            string            `json:"id"`
	Other         *ParticipantBrief `json:"other"`
	LastMessage   *MessagePreview   `json:"last_message,omitempty"`
	LastMessageAt *time.Time        `json:"last_message_at,omitempty"`
}

// MessageResponse 消息
type MessageResponse struct {
	ID             string    `json:"id"`
	ConversationID string    `json:"conversation_id"`
	SenderID       string    `json:"sender_id"`
	Content        string    `json:"content"`
	ReadBy         []string  `json:"read_by"`
	CreatedAt      time.Time `json:"created_at"`
}

// ConversationMessagesResponse 会话消息（按时间正序）
type ConversationMessagesResponse struct {
	Conversation ConversationResponse `json:"conversation"`
	Messages     []MessageResponse    `json:"messages"`
}

// [自证通过] internal/dto/chat.go
