package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"ecs-mentoring/backend/config"
	"ecs-mentoring/backend/internal/dto"
	"ecs-mentoring/backend/internal/model"
	"ecs-mentoring/backend/internal/repository"
	pkgerrors "ecs-mentoring/backend/pkg/errors"
	"ecs-mentoring/backend/pkg/metrics"
)

// ── 通知模块业务错误 ──

var (
	ErrNotificationNotFound = fmt.Errorf("%w: 通知不存在", pkgerrors.ErrNotFound)
	ErrNotificationNotOwner = fmt.Errorf("%w: 只能操作自己的通知", pkgerrors.ErrForbidden)
)

// NotificationInput 批量通知内容（所有接收者相同）
type NotificationInput struct {
	Title       string
	Body        string
	Type        string
	RelatedID   *string
	RelatedType *string
}

// NotificationService 站内通知业务接口
type NotificationService interface {
	List(ctx context.Context, userID string, req *dto.NotificationListRequest) ([]dto.NotificationResponse, int64, error)
	UnreadCount(ctx context.Context, userID string) (int64, error)
	MarkRead(ctx context.Context, userID, notificationID string) (*dto.NotificationResponse, error)
	MarkAllRead(ctx context.Context, userID string) (int64, error)
	// CreateBulkForUserIDs 按批写入，失败批次记录日志后跳过，返回成功写入条数
	CreateBulkForUserIDs(ctx context.Context, userIDs []string, in NotificationInput) int
}

type notificationService struct {
	batchSize int
	repo      *repository.Repository
	logger    *zap.Logger
}

// NewNotificationService 创建 NotificationService 实例
func NewNotificationService(cfg *config.Config, repo *repository.Repository, logger *zap.Logger) NotificationService {
	batch := cfg.Notify.BatchSize
	if batch <= 0 {
		batch = 200
	}
	return &notificationService{batchSize: batch, repo: repo, logger: logger}
}

// ────────────────────── List ──────────────────────

func (s *notificationService) List(ctx context.Context, userID string, req *dto.NotificationListRequest) ([]dto.NotificationResponse, int64, error) {
	list, total, err := s.repo.Notification.ListByUser(ctx, userID, req.UnreadOnly, req.GetOffset(), req.GetPageSize())
	if err != nil {
		s.logger.Error("查询通知列表失败", zap.String("user_id", userID), zap.Error(err))
		return nil, 0, err
	}

	result := make([]dto.NotificationResponse, 0, len(list))
	for i := range list {
		result = append(result, toNotificationResponse(&list[i]))
	}
	return result, total, nil
}

// ────────────────────── UnreadCount ──────────────────────

func (s *notificationService) UnreadCount(ctx context.Context, userID string) (int64, error) {
	return s.repo.Notification.CountUnread(ctx, userID)
}

// ────────────────────── MarkRead ──────────────────────

func (s *notificationService) MarkRead(ctx context.Context, userID, notificationID string) (*dto.NotificationResponse, error) {
	if !isUUID(notificationID) {
		return nil, ErrNotificationNotFound
	}
	n, err := s.repo.Notification.GetByID(ctx, notificationID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotificationNotFound
		}
		return nil, err
	}
	if n.UserID != userID {
		return nil, ErrNotificationNotOwner
	}

	// read_at 只写一次
	if !n.IsRead {
		now := time.Now()
		if err := s.repo.Notification.MarkRead(ctx, notificationID, now); err != nil {
			s.logger.Error("标记通知已读失败", zap.String("id", notificationID), zap.Error(err))
			return nil, err
		}
		n.IsRead = true
		n.ReadAt = &now
	}

	resp := toNotificationResponse(n)
	return &resp, nil
}

// ────────────────────── MarkAllRead ──────────────────────

func (s *notificationService) MarkAllRead(ctx context.Context, userID string) (int64, error) {
	n, err := s.repo.Notification.MarkAllRead(ctx, userID, time.Now())
	if err != nil {
		s.logger.Error("全部标记已读失败", zap.String("user_id", userID), zap.Error(err))
		return 0, err
	}
	return n, nil
}

// ═══════════════════════════════════════════════════════════
// CreateBulkForUserIDs 批量写入
// ═══════════════════════════════════════════════════════════

func (s *notificationService) CreateBulkForUserIDs(ctx context.Context, userIDs []string, in NotificationInput) int {
	if len(userIDs) == 0 {
		return 0
	}
	typ := in.Type
	if typ == "" {
		typ = model.NotificationGeneral
	}

	written := 0
	for start := 0; start < len(userIDs); start += s.batchSize {
		end := start + s.batchSize
		if end > len(userIDs) {
			end = len(userIDs)
		}

		batch := make([]model.Notification, 0, end-start)
		for _, uid := range userIDs[start:end] {
			batch = append(batch, model.Notification{
				UserID:      uid,
				Title:       in.Title,
				Body:        in.Body,
				Type:        typ,
				RelatedID:   in.RelatedID,
				RelatedType: in.RelatedType,
			})
		}

		if err := s.repo.Notification.BatchCreate(ctx, batch); err != nil {
			metrics.NotificationBatchFailures.Inc()
			s.logger.Warn("通知批次写入失败，已跳过",
				zap.String("type", typ),
				zap.Int("offset", start),
				zap.Int("size", len(batch)),
				zap.Error(err),
			)
			continue
		}
		written += len(batch)
	}

	metrics.NotificationsWritten.WithLabelValues(typ).Add(float64(written))
	s.logger.Info("通知批量写入完成",
		zap.String("type", typ),
		zap.Int("recipients", len(userIDs)),
		zap.Int("written", written),
	)
	return written
}

// ── 辅助函数 ──

func toNotificationResponse(n *model.Notification) dto.NotificationResponse {
	return dto.NotificationResponse{
		ID:          n.NotificationID,
		Title:       n.Title,
		Body:        n.Body,
		Type:        n.Type,
		IsRead:      n.IsRead,
		ReadAt:      n.ReadAt,
		RelatedID:   n.RelatedID,
		RelatedType: n.RelatedType,
		CreatedAt:   n.CreatedAt,
	}
}

// strPtr 返回字符串指针
func strPtr(s string) *string { return &s }
