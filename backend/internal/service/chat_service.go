package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"ecs-mentoring/backend/config"
	"ecs-mentoring/backend/internal/dto"
	"ecs-mentoring/backend/internal/model"
	"ecs-mentoring/backend/internal/repository"
	pkgerrors "ecs-mentoring/backend/pkg/errors"
	"ecs-mentoring/backend/pkg/metrics"
)

// ── 私信模块业务错误 ──

var (
	ErrInvalidUserID        = fmt.Errorf("%w: 用户 ID 格式错误", pkgerrors.ErrInvalidInput)
	ErrSelfConversation     = fmt.Errorf("%w: 不能与自己创建会话", pkgerrors.ErrInvalidInput)
	ErrEmptyMessage         = fmt.Errorf("%w: 消息内容不能为空", pkgerrors.ErrInvalidInput)
	ErrContactNotAllowed    = fmt.Errorf("%w: 无权与该用户私信", pkgerrors.ErrForbidden)
	ErrNotParticipant       = fmt.Errorf("%w: 不是该会话成员", pkgerrors.ErrForbidden)
	ErrConversationNotFound = fmt.Errorf("%w: 会话不存在", pkgerrors.ErrNotFound)
	ErrMessageNotFound      = fmt.Errorf("%w: 消息不存在", pkgerrors.ErrNotFound)
)

// ChatService 私信业务接口（轮询模式）
type ChatService interface {
	ListContacts(ctx context.Context, userID string) ([]dto.ContactResponse, error)
	ListConversations(ctx context.Context, userID string) ([]dto.ConversationResponse, error)
	// GetOrCreateConversation 同一用户对只存在一个会话；并发创建时返回已存在的会话
	GetOrCreateConversation(ctx context.Context, meID, otherID string) (*dto.ConversationResponse, error)
	GetConversationMessages(ctx context.Context, userID, conversationID string, req *dto.MessageListRequest) (*dto.ConversationMessagesResponse, error)
	SendMessage(ctx context.Context, userID, conversationID, content string) (*dto.MessageResponse, error)
	MarkMessageRead(ctx context.Context, userID, messageID string) (*dto.MessageResponse, error)
}

type chatService struct {
	cfg      config.ChatConfig
	repo     *repository.Repository
	access   AccessService
	notifier NotificationService
	logger   *zap.Logger
}

// NewChatService 创建 ChatService 实例
func NewChatService(
	cfg *config.Config,
	repo *repository.Repository,
	access AccessService,
	notifier NotificationService,
	logger *zap.Logger,
) ChatService {
	return &chatService{
		cfg:      cfg.Chat,
		repo:     repo,
		access:   access,
		notifier: notifier,
		logger:   logger,
	}
}

// CanonicalPair 返回两个用户 ID 的规范顺序（按字符串字典序，小者在前）
// 与调用顺序无关，写入与查询使用同一结果
func CanonicalPair(x, y string) (string, string) {
	if x < y {
		return x, y
	}
	return y, x
}

// normalizeUserID 校验并规范化 UUID 字符串（小写、带连字符）
func normalizeUserID(id string) (string, error) {
	u, err := uuid.Parse(strings.TrimSpace(id))
	if err != nil {
		return "", ErrInvalidUserID
	}
	return u.String(), nil
}

// ────────────────────── ListContacts ──────────────────────

func (s *chatService) ListContacts(ctx context.Context, userID string) ([]dto.ContactResponse, error) {
	return s.access.ListContacts(ctx, userID)
}

// ────────────────────── ListConversations ──────────────────────

func (s *chatService) ListConversations(ctx context.Context, userID string) ([]dto.ConversationResponse, error) {
	convs, err := s.repo.Conversation.ListByUser(ctx, userID)
	if err != nil {
		s.logger.Error("查询会话列表失败", zap.String("user_id", userID), zap.Error(err))
		return nil, err
	}

	otherIDs := make([]string, 0, len(convs))
	for i := range convs {
		otherIDs = append(otherIDs, convs[i].Other(userID))
	}
	others, err := s.userBriefs(ctx, otherIDs)
	if err != nil {
		return nil, err
	}

	result := make([]dto.ConversationResponse, 0, len(convs))
	for i := range convs {
		c := &convs[i]
		item := dto.ConversationResponse{
			ID:            c.ConversationID,
			Other:         others[c.Other(userID)],
			LastMessageAt: c.LastMessageAt,
		}

		last, err := s.repo.Message.LatestByConversation(ctx, c.ConversationID)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			s.logger.Error("查询最后一条消息失败", zap.String("conversation_id", c.ConversationID), zap.Error(err))
			return nil, err
		}
		if last != nil {
			item.LastMessage = &dto.MessagePreview{
				Content:   truncateRunes(last.Content, s.cfg.PreviewLength),
				CreatedAt: last.CreatedAt,
			}
		}
		result = append(result, item)
	}
	return result, nil
}

// ═══════════════════════════════════════════════════════════
// GetOrCreateConversation
// ═══════════════════════════════════════════════════════════

func (s *chatService) GetOrCreateConversation(ctx context.Context, meID, otherID string) (*dto.ConversationResponse, error) {
	me, err := normalizeUserID(meID)
	if err != nil {
		return nil, err
	}
	other, err := normalizeUserID(otherID)
	if err != nil {
		return nil, err
	}
	if me == other {
		return nil, ErrSelfConversation
	}

	a, b := CanonicalPair(me, other)

	// 1. 已存在则直接返回
	conv, err := s.repo.Conversation.GetByPair(ctx, a, b)
	if err == nil {
		return s.toConversationResponse(ctx, conv, me)
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		s.logger.Error("查询会话失败", zap.Error(err))
		return nil, err
	}

	// 2. 关系校验
	allowed, err := s.access.CanContact(ctx, me, other)
	if err != nil {
		return nil, err
	}
	if !allowed {
		metrics.ContactDenials.Inc()
		s.logger.Info("拒绝创建会话", zap.String("initiator", me), zap.String("target", other))
		return nil, ErrContactNotAllowed
	}

	// 3. 创建；唯一约束冲突说明对方请求先一步写入，回查已存在的会话
	conv = &model.Conversation{ParticipantA: a, ParticipantB: b}
	if err := s.repo.Conversation.Create(ctx, conv); err != nil {
		if !errors.Is(err, pkgerrors.ErrConflict) {
			s.logger.Error("创建会话失败", zap.Error(err))
			return nil, err
		}
		existing, getErr := s.repo.Conversation.GetByPair(ctx, a, b)
		if getErr != nil {
			s.logger.Error("并发创建后回查会话失败", zap.Error(getErr))
			return nil, getErr
		}
		metrics.ConversationsCreated.WithLabelValues("true").Inc()
		return s.toConversationResponse(ctx, existing, me)
	}

	metrics.ConversationsCreated.WithLabelValues("false").Inc()
	s.logger.Info("创建会话", zap.String("conversation_id", conv.ConversationID))
	return s.toConversationResponse(ctx, conv, me)
}

// ────────────────────── GetConversationMessages ──────────────────────

func (s *chatService) GetConversationMessages(ctx context.Context, userID, conversationID string, req *dto.MessageListRequest) (*dto.ConversationMessagesResponse, error) {
	conv, err := s.memberConversation(ctx, userID, conversationID)
	if err != nil {
		return nil, err
	}

	limit := req.Limit
	if limit <= 0 {
		limit = s.cfg.DefaultPageSize
	}
	if limit > s.cfg.MaxPageSize {
		limit = s.cfg.MaxPageSize
	}

	msgs, err := s.repo.Message.ListByConversation(ctx, conv.ConversationID, req.Before, limit)
	if err != nil {
		s.logger.Error("查询消息失败", zap.String("conversation_id", conversationID), zap.Error(err))
		return nil, err
	}

	// 存储层按时间倒序返回，输出为正序
	result := make([]dto.MessageResponse, 0, len(msgs))
	for i := len(msgs) - 1; i >= 0; i-- {
		result = append(result, toMessageResponse(&msgs[i]))
	}

	convResp, err := s.toConversationResponse(ctx, conv, userID)
	if err != nil {
		return nil, err
	}
	return &dto.ConversationMessagesResponse{Conversation: *convResp, Messages: result}, nil
}

// ────────────────────── SendMessage ──────────────────────

func (s *chatService) SendMessage(ctx context.Context, userID, conversationID, content string) (*dto.MessageResponse, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, ErrEmptyMessage
	}

	conv, err := s.memberConversation(ctx, userID, conversationID)
	if err != nil {
		return nil, err
	}

	msg := &model.Message{
		ConversationID: conv.ConversationID,
		SenderID:       userID,
		Content:        content,
		ReadBy:         model.StringArray{},
		CreatedAt:      time.Now(),
	}
	if err := s.repo.Message.Create(ctx, msg); err != nil {
		s.logger.Error("发送消息失败", zap.String("conversation_id", conversationID), zap.Error(err))
		return nil, err
	}

	if err := s.repo.Conversation.TouchLastMessage(ctx, conv.ConversationID, msg.CreatedAt); err != nil {
		s.logger.Warn("更新会话最后消息时间失败", zap.String("conversation_id", conversationID), zap.Error(err))
	}

	s.notifyRecipient(ctx, conv.Other(userID), userID, msg)

	resp := toMessageResponse(msg)
	return &resp, nil
}

// notifyRecipient 给对方写一条 chat 通知，失败不影响发送结果
func (s *chatService) notifyRecipient(ctx context.Context, recipientID, senderID string, msg *model.Message) {
	title := "New message"
	if sender, err := s.repo.User.GetByID(ctx, senderID); err == nil {
		title = "New message from " + sender.Name
	}
	s.notifier.CreateBulkForUserIDs(ctx, []string{recipientID}, NotificationInput{
		Title:       title,
		Body:        truncateRunes(msg.Content, s.cfg.PreviewLength),
		Type:        model.NotificationChat,
		RelatedID:   strPtr(msg.MessageID),
		RelatedType: strPtr(model.RelatedMessage),
	})
}

// ────────────────────── MarkMessageRead ──────────────────────

func (s *chatService) MarkMessageRead(ctx context.Context, userID, messageID string) (*dto.MessageResponse, error) {
	if !isUUID(messageID) {
		return nil, ErrMessageNotFound
	}
	msg, err := s.repo.Message.GetByID(ctx, messageID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMessageNotFound
		}
		return nil, err
	}

	conv, err := s.repo.Conversation.GetByID(ctx, msg.ConversationID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMessageNotFound
		}
		return nil, err
	}
	if !conv.HasParticipant(userID) {
		return nil, ErrNotParticipant
	}

	if !msg.ReadBy.Contains(userID) {
		if err := s.repo.Message.AddReader(ctx, messageID, userID); err != nil {
			s.logger.Error("标记消息已读失败", zap.String("message_id", messageID), zap.Error(err))
			return nil, err
		}
		msg.ReadBy.Add(userID)
	}

	resp := toMessageResponse(msg)
	return &resp, nil
}

// ── 辅助函数 ──

// memberConversation 查询会话并校验成员身份；非成员按不存在处理
func (s *chatService) memberConversation(ctx context.Context, userID, conversationID string) (*model.Conversation, error) {
	if !isUUID(conversationID) {
		return nil, ErrConversationNotFound
	}
	conv, err := s.repo.Conversation.GetByID(ctx, conversationID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrConversationNotFound
		}
		s.logger.Error("查询会话失败", zap.String("conversation_id", conversationID), zap.Error(err))
		return nil, err
	}
	if !conv.HasParticipant(userID) {
		return nil, ErrConversationNotFound
	}
	return conv, nil
}

func (s *chatService) userBriefs(ctx context.Context, ids []string) (map[string]*dto.ParticipantBrief, error) {
	users, err := s.repo.User.ListByIDs(ctx, ids)
	if err != nil {
		s.logger.Error("批量查询用户失败", zap.Error(err))
		return nil, err
	}
	m := make(map[string]*dto.ParticipantBrief, len(users))
	for _, u := range users {
		m[u.UserID] = &dto.ParticipantBrief{ID: u.UserID, Name: u.Name, Role: string(u.Role)}
	}
	return m, nil
}

func (s *chatService) toConversationResponse(ctx context.Context, conv *model.Conversation, meID string) (*dto.ConversationResponse, error) {
	others, err := s.userBriefs(ctx, []string{conv.Other(meID)})
	if err != nil {
		return nil, err
	}
	return &dto.ConversationResponse{
		ID:            conv.ConversationID,
		Other:         others[conv.Other(meID)],
		LastMessageAt: conv.LastMessageAt,
	}, nil
}

func toMessageResponse(m *model.Message) dto.MessageResponse {
	readBy := []string(m.ReadBy)
	if readBy == nil {
		readBy = []string{}
	}
	return dto.MessageResponse{
		ID:             m.MessageID,
		ConversationID: m.ConversationID,
		SenderID:       m.SenderID,
		Content:        m.Content,
		ReadBy:         readBy,
		CreatedAt:      m.CreatedAt,
	}
}

// truncateRunes 按字符截断
func truncateRunes(s string, n int) string {
	if n <= 0 {
		return s
	}
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
