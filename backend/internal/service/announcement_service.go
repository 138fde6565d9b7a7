package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"ecs-mentoring/backend/config"
	"ecs-mentoring/backend/internal/dto"
	"ecs-mentoring/backend/internal/model"
	"ecs-mentoring/backend/internal/repository"
	pkgerrors "ecs-mentoring/backend/pkg/errors"
)

// ── 公告模块业务错误 ──

var (
	ErrAnnouncementNotFound = fmt.Errorf("%w: 公告不存在", pkgerrors.ErrNotFound)
	ErrAnnouncementEmpty    = fmt.Errorf("%w: 标题和正文不能为空", pkgerrors.ErrInvalidInput)
)

const (
	announcementDefaultLimit = 30
	announcementTitlePrefix  = "New announcement: "
)

// AnnouncementService 公告业务接口
type AnnouncementService interface {
	// Create 发布公告并向解析出的受众批量写入通知
	Create(ctx context.Context, authorID string, req *dto.CreateAnnouncementRequest) (*dto.AnnouncementResponse, error)
	// List 按角色可见范围查询，置顶优先、时间倒序
	List(ctx context.Context, userID string, role model.Role, req *dto.AnnouncementListRequest) ([]dto.AnnouncementResponse, error)
	GetByID(ctx context.Context, id string) (*dto.AnnouncementResponse, error)
}

type announcementService struct {
	previewLength int
	repo          *repository.Repository
	audience      AudienceResolver
	notifier      NotificationService
	logger        *zap.Logger
}

// NewAnnouncementService 创建 AnnouncementService 实例
func NewAnnouncementService(
	cfg *config.Config,
	repo *repository.Repository,
	audience AudienceResolver,
	notifier NotificationService,
	logger *zap.Logger,
) AnnouncementService {
	return &announcementService{
		previewLength: cfg.Notify.PreviewLength,
		repo:          repo,
		audience:      audience,
		notifier:      notifier,
		logger:        logger,
	}
}

// ────────────────────── Create ──────────────────────

func (s *announcementService) Create(ctx context.Context, authorID string, req *dto.CreateAnnouncementRequest) (*dto.AnnouncementResponse, error) {
	title := strings.TrimSpace(req.Title)
	body := strings.TrimSpace(req.Body)
	if title == "" || body == "" {
		return nil, ErrAnnouncementEmpty
	}

	targetType := req.TargetType
	if targetType == "" {
		targetType = model.TargetAll
	}
	var dept *string
	if req.TargetDepartment != nil && strings.TrimSpace(*req.TargetDepartment) != "" {
		d := strings.TrimSpace(*req.TargetDepartment)
		dept = &d
	}

	a := &model.Announcement{
		Title:            title,
		Body:             body,
		AuthorID:         authorID,
		TargetType:       targetType,
		TargetDepartment: dept,
		TargetStudentIDs: model.StringArray(req.TargetStudentIDs),
		IsPinned:         req.IsPinned,
	}
	if a.TargetStudentIDs == nil {
		a.TargetStudentIDs = model.StringArray{}
	}

	if err := s.repo.Announcement.Create(ctx, a); err != nil {
		s.logger.Error("创建公告失败", zap.Error(err))
		return nil, err
	}

	// 受众解析失败不影响公告本身
	recipients := 0
	spec := AudienceSpec{TargetType: targetType, StudentIDs: a.TargetStudentIDs}
	if dept != nil {
		spec.Department = *dept
	}
	userIDs, err := s.audience.Resolve(ctx, spec)
	if err != nil {
		s.logger.Warn("解析公告受众失败，跳过通知", zap.String("announcement_id", a.AnnouncementID), zap.Error(err))
	} else if len(userIDs) > 0 {
		recipients = s.notifier.CreateBulkForUserIDs(ctx, userIDs, NotificationInput{
			Title:       announcementTitlePrefix + title,
			Body:        previewWithEllipsis(body, s.previewLength),
			Type:        model.NotificationAnnouncement,
			RelatedID:   strPtr(a.AnnouncementID),
			RelatedType: strPtr(model.RelatedAnnouncement),
		})
	}

	s.logger.Info("发布公告",
		zap.String("announcement_id", a.AnnouncementID),
		zap.String("target_type", targetType),
		zap.Int("recipients", recipients),
	)

	created, err := s.repo.Announcement.GetByID(ctx, a.AnnouncementID)
	if err != nil {
		created = a
	}
	resp := toAnnouncementResponse(created)
	resp.Recipients = &recipients
	return &resp, nil
}

// ────────────────────── List ──────────────────────

func (s *announcementService) List(ctx context.Context, userID string, role model.Role, req *dto.AnnouncementListRequest) ([]dto.AnnouncementResponse, error) {
	filter := &repository.AnnouncementFilter{
		PinnedOnly: req.PinnedOnly,
		Limit:      req.Limit,
	}
	if filter.Limit <= 0 {
		filter.Limit = announcementDefaultLimit
	}

	switch role {
	case model.RoleAdmin, model.RoleTeacher:
		filter.TargetType = req.TargetType
	case model.RoleStudent:
		vis := &repository.AnnouncementVisibility{
			TargetTypes: []string{model.TargetAll, model.TargetStudents},
		}
		profile, err := s.repo.StudentProfile.GetByUserID(ctx, userID)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		if profile != nil {
			vis.StudentProfileID = profile.StudentProfileID
			vis.Department = profile.Department
		}
		filter.Visibility = vis
	case model.RoleParent:
		filter.Visibility = &repository.AnnouncementVisibility{
			TargetTypes: []string{model.TargetAll, model.TargetParents},
		}
	default:
		return []dto.AnnouncementResponse{}, nil
	}

	list, err := s.repo.Announcement.List(ctx, filter)
	if err != nil {
		s.logger.Error("查询公告列表失败", zap.Error(err))
		return nil, err
	}

	result := make([]dto.AnnouncementResponse, 0, len(list))
	for i := range list {
		result = append(result, toAnnouncementResponse(&list[i]))
	}
	return result, nil
}

// ────────────────────── GetByID ──────────────────────

func (s *announcementService) GetByID(ctx context.Context, id string) (*dto.AnnouncementResponse, error) {
	if !isUUID(id) {
		return nil, ErrAnnouncementNotFound
	}
	a, err := s.repo.Announcement.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAnnouncementNotFound
		}
		s.logger.Error("查询公告失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	resp := toAnnouncementResponse(a)
	return &resp, nil
}

// ── 辅助函数 ──

func toAnnouncementResponse(a *model.Announcement) dto.AnnouncementResponse {
	resp := dto.AnnouncementResponse{
		ID:               a.AnnouncementID,
		Title:            a.Title,
		Body:             a.Body,
		TargetType:       a.TargetType,
		TargetDepartment: a.TargetDepartment,
		TargetStudentIDs: []string(a.TargetStudentIDs),
		IsPinned:         a.IsPinned,
		CreatedAt:        a.CreatedAt,
	}
	if resp.TargetStudentIDs == nil {
		resp.TargetStudentIDs = []string{}
	}
	if a.Author != nil {
		resp.Author = &dto.AuthorBrief{ID: a.Author.UserID, Name: a.Author.Name, Email: a.Author.Email}
	}
	return resp
}

// previewWithEllipsis 超过 n 个字符时截断并追加省略号
func previewWithEllipsis(s string, n int) string {
	if n <= 0 || len([]rune(s)) <= n {
		return s
	}
	return truncateRunes(s, n) + "…"
}
