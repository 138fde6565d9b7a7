package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	ics "github.com/arran4/golang-ical"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"ecs-mentoring/backend/internal/dto"
	"ecs-mentoring/backend/internal/model"
	"ecs-mentoring/backend/internal/repository"
	pkgerrors "ecs-mentoring/backend/pkg/errors"
)

// ── 辅导会话模块业务错误 ──

var (
	ErrTeacherProfileMissing = fmt.Errorf("%w: 教师档案不存在", pkgerrors.ErrForbidden)
	ErrSessionNotFound       = fmt.Errorf("%w: 辅导会话不存在", pkgerrors.ErrNotFound)
	ErrSessionAccessDenied   = fmt.Errorf("%w: 无权查看该辅导会话", pkgerrors.ErrForbidden)
	ErrSessionInvalid        = fmt.Errorf("%w: 标题和开始时间不能为空", pkgerrors.ErrInvalidInput)
	ErrMeetLinkEmpty         = fmt.Errorf("%w: 会议链接不能为空", pkgerrors.ErrInvalidInput)
)

const (
	sessionDefaultDuration = 30
	sessionDefaultLimit    = 50
	calendarMaxSessions    = 200
	calendarProductID      = "-//ECS Mentoring//Sessions//EN"
)

// SessionService 辅导会话业务接口
type SessionService interface {
	Create(ctx context.Context, userID string, req *dto.CreateSessionRequest) (*dto.SessionResponse, error)
	Update(ctx context.Context, userID, sessionID string, req *dto.UpdateSessionRequest) (*dto.SessionResponse, error)
	// UpdateMeetLink 写入会议链接并置为直播中，通知会话学生
	UpdateMeetLink(ctx context.Context, userID, sessionID, meetLink string) (*dto.SessionResponse, error)
	Delete(ctx context.Context, userID, sessionID string) error
	GetByID(ctx context.Context, userID string, role model.Role, sessionID string) (*dto.SessionResponse, error)
	List(ctx context.Context, userID string, role model.Role, req *dto.SessionListRequest) ([]dto.SessionResponse, error)
	// Calendar 导出当前用户可见的辅导会话为 iCalendar
	Calendar(ctx context.Context, userID string, role model.Role) ([]byte, error)
}

type sessionService struct {
	repo     *repository.Repository
	audience AudienceResolver
	notifier NotificationService
	logger   *zap.Logger
}

// NewSessionService 创建 SessionService 实例
func NewSessionService(
	repo *repository.Repository,
	audience AudienceResolver,
	notifier NotificationService,
	logger *zap.Logger,
) SessionService {
	return &sessionService{repo: repo, audience: audience, notifier: notifier, logger: logger}
}

// ────────────────────── Create ──────────────────────

func (s *sessionService) Create(ctx context.Context, userID string, req *dto.CreateSessionRequest) (*dto.SessionResponse, error) {
	tp, err := s.teacherProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	title := strings.TrimSpace(req.Title)
	if title == "" || req.ScheduledAt.IsZero() {
		return nil, ErrSessionInvalid
	}

	duration := req.Duration
	if duration <= 0 {
		duration = sessionDefaultDuration
	}

	sess := &model.Session{
		Title:       title,
		Description: req.Description,
		TeacherID:   tp.TeacherProfileID,
		Students:    dedupeIDs(req.Students),
		ScheduledAt: req.ScheduledAt,
		Duration:    duration,
		MeetLink:    trimmedOrNil(req.MeetLink),
		Status:      model.SessionStatusScheduled,
		CreatedBy:   userID,
	}

	if err := s.repo.Session.Create(ctx, sess); err != nil {
		s.logger.Error("创建辅导会话失败", zap.Error(err))
		return nil, err
	}

	s.notifyStudents(ctx, sess, "New session: "+sess.Title,
		"Scheduled at "+sess.ScheduledAt.Format("2006-01-02 15:04 MST"))

	s.logger.Info("创建辅导会话",
		zap.String("session_id", sess.SessionID),
		zap.Int("students", len(sess.Students)),
	)
	resp := toSessionResponse(sess)
	return &resp, nil
}

// ────────────────────── Update ──────────────────────

func (s *sessionService) Update(ctx context.Context, userID, sessionID string, req *dto.UpdateSessionRequest) (*dto.SessionResponse, error) {
	sess, err := s.ownedSession(ctx, userID, sessionID)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		t := strings.TrimSpace(*req.Title)
		if t == "" {
			return nil, ErrSessionInvalid
		}
		sess.Title = t
	}
	if req.Description != nil {
		sess.Description = req.Description
	}
	if req.Students != nil {
		sess.Students = dedupeIDs(*req.Students)
	}
	if req.ScheduledAt != nil {
		if req.ScheduledAt.IsZero() {
			return nil, ErrSessionInvalid
		}
		sess.ScheduledAt = *req.ScheduledAt
	}
	if req.Duration != nil {
		sess.Duration = *req.Duration
	}
	if req.MeetLink != nil {
		sess.MeetLink = trimmedOrNil(req.MeetLink)
	}
	if req.IsLive != nil {
		sess.IsLive = *req.IsLive
	}
	if req.Status != nil {
		sess.Status = *req.Status
	}
	if req.MentoringNotes != nil {
		sess.MentoringNotes = req.MentoringNotes
	}

	if err := s.repo.Session.Update(ctx, sess); err != nil {
		s.logger.Error("更新辅导会话失败", zap.String("session_id", sessionID), zap.Error(err))
		return nil, err
	}
	resp := toSessionResponse(sess)
	return &resp, nil
}

// ────────────────────── UpdateMeetLink ──────────────────────

func (s *sessionService) UpdateMeetLink(ctx context.Context, userID, sessionID, meetLink string) (*dto.SessionResponse, error) {
	link := strings.TrimSpace(meetLink)
	if link == "" {
		return nil, ErrMeetLinkEmpty
	}

	sess, err := s.ownedSession(ctx, userID, sessionID)
	if err != nil {
		return nil, err
	}

	sess.MeetLink = &link
	sess.IsLive = true
	if err := s.repo.Session.Update(ctx, sess); err != nil {
		s.logger.Error("更新会议链接失败", zap.String("session_id", sessionID), zap.Error(err))
		return nil, err
	}

	s.notifyStudents(ctx, sess, "Meet link added: "+sess.Title, link)

	resp := toSessionResponse(sess)
	return &resp, nil
}

// ────────────────────── Delete ──────────────────────

func (s *sessionService) Delete(ctx context.Context, userID, sessionID string) error {
	tp, err := s.teacherProfile(ctx, userID)
	if err != nil {
		return err
	}
	if !isUUID(sessionID) {
		return ErrSessionNotFound
	}

	n, err := s.repo.Session.Delete(ctx, sessionID, tp.TeacherProfileID)
	if err != nil {
		s.logger.Error("删除辅导会话失败", zap.String("session_id", sessionID), zap.Error(err))
		return err
	}
	if n == 0 {
		return ErrSessionNotFound
	}
	s.logger.Info("删除辅导会话", zap.String("session_id", sessionID))
	return nil
}

// ────────────────────── GetByID ──────────────────────

func (s *sessionService) GetByID(ctx context.Context, userID string, role model.Role, sessionID string) (*dto.SessionResponse, error) {
	sess, err := s.getSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	visible, err := s.canView(ctx, userID, role, sess)
	if err != nil {
		return nil, err
	}
	if !visible {
		return nil, ErrSessionAccessDenied
	}

	resp := toSessionResponse(sess)
	return &resp, nil
}

// canView 学生须在名单中；教师须为本人会话；家长须有关联学生在名单中；管理员不限
func (s *sessionService) canView(ctx context.Context, userID string, role model.Role, sess *model.Session) (bool, error) {
	switch role {
	case model.RoleAdmin:
		return true, nil
	case model.RoleTeacher:
		tp, err := s.repo.TeacherProfile.GetByUserID(ctx, userID)
		if err != nil {
			return false, ignoreNotFound(err)
		}
		return tp.TeacherProfileID == sess.TeacherID, nil
	case model.RoleStudent:
		sp, err := s.repo.StudentProfile.GetByUserID(ctx, userID)
		if err != nil {
			return false, ignoreNotFound(err)
		}
		return sess.Students.Contains(sp.StudentProfileID), nil
	case model.RoleParent:
		pp, err := s.repo.ParentProfile.GetByUserID(ctx, userID)
		if err != nil {
			return false, ignoreNotFound(err)
		}
		return sess.Students.Intersects(pp.LinkedStudents), nil
	}
	return false, nil
}

// ────────────────────── List ──────────────────────

func (s *sessionService) List(ctx context.Context, userID string, role model.Role, req *dto.SessionListRequest) ([]dto.SessionResponse, error) {
	filter, ok, err := s.scopeFilter(ctx, userID, role)
	if err != nil {
		return nil, err
	}
	if !ok {
		return []dto.SessionResponse{}, nil
	}

	filter.Status = req.Status
	filter.Limit = req.Limit
	if filter.Limit <= 0 {
		filter.Limit = sessionDefaultLimit
	}
	if req.Upcoming {
		now := time.Now()
		filter.UpcomingFrom = &now
	}

	list, err := s.repo.Session.List(ctx, filter)
	if err != nil {
		s.logger.Error("查询辅导会话列表失败", zap.Error(err))
		return nil, err
	}

	result := make([]dto.SessionResponse, 0, len(list))
	for i := range list {
		result = append(result, toSessionResponse(&list[i]))
	}
	return result, nil
}

// scopeFilter 按角色限定查询范围；ok=false 表示该用户没有可见会话
func (s *sessionService) scopeFilter(ctx context.Context, userID string, role model.Role) (*repository.SessionFilter, bool, error) {
	filter := &repository.SessionFilter{}
	switch role {
	case model.RoleAdmin:
		return filter, true, nil
	case model.RoleTeacher:
		tp, err := s.repo.TeacherProfile.GetByUserID(ctx, userID)
		if err != nil {
			return nil, false, ignoreNotFound(err)
		}
		filter.TeacherID = tp.TeacherProfileID
	case model.RoleStudent:
		sp, err := s.repo.StudentProfile.GetByUserID(ctx, userID)
		if err != nil {
			return nil, false, ignoreNotFound(err)
		}
		filter.AnyOfStudents = []string{sp.StudentProfileID}
	case model.RoleParent:
		pp, err := s.repo.ParentProfile.GetByUserID(ctx, userID)
		if err != nil {
			return nil, false, ignoreNotFound(err)
		}
		if len(pp.LinkedStudents) == 0 {
			return nil, false, nil
		}
		filter.AnyOfStudents = pp.LinkedStudents
	default:
		return nil, false, nil
	}
	return filter, true, nil
}

// ═══════════════════════════════════════════════════════════
// Calendar iCalendar 导出
// ═══════════════════════════════════════════════════════════

func (s *sessionService) Calendar(ctx context.Context, userID string, role model.Role) ([]byte, error) {
	filter, ok, err := s.scopeFilter(ctx, userID, role)
	if err != nil {
		return nil, err
	}

	var sessions []model.Session
	if ok {
		filter.Limit = calendarMaxSessions
		sessions, err = s.repo.Session.List(ctx, filter)
		if err != nil {
			s.logger.Error("查询日历会话失败", zap.Error(err))
			return nil, err
		}
	}

	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId(calendarProductID)

	stamp := time.Now().UTC()
	for i := range sessions {
		sess := &sessions[i]
		evt := cal.AddEvent(sess.SessionID + "@ecs-mentoring")
		evt.SetDtStampTime(stamp)
		evt.SetStartAt(sess.ScheduledAt.UTC())
		evt.SetEndAt(sess.ScheduledAt.Add(time.Duration(sess.Duration) * time.Minute).UTC())
		evt.SetSummary(sess.Title)
		if sess.Description != nil {
			evt.SetDescription(*sess.Description)
		}
		if sess.MeetLink != nil {
			evt.SetURL(*sess.MeetLink)
			evt.SetLocation(*sess.MeetLink)
		}
		if sess.Status == model.SessionStatusCancelled {
			evt.AddProperty(ics.ComponentPropertyStatus, "CANCELLED")
		}
	}

	return []byte(cal.Serialize()), nil
}

// ── 辅助函数 ──

func (s *sessionService) teacherProfile(ctx context.Context, userID string) (*model.TeacherProfile, error) {
	tp, err := s.repo.TeacherProfile.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTeacherProfileMissing
		}
		return nil, err
	}
	return tp, nil
}

func (s *sessionService) getSession(ctx context.Context, sessionID string) (*model.Session, error) {
	if !isUUID(sessionID) {
		return nil, ErrSessionNotFound
	}
	sess, err := s.repo.Session.GetByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSessionNotFound
		}
		s.logger.Error("查询辅导会话失败", zap.String("session_id", sessionID), zap.Error(err))
		return nil, err
	}
	return sess, nil
}

// ownedSession 仅返回当前教师本人的会话，其他会话按不存在处理
func (s *sessionService) ownedSession(ctx context.Context, userID, sessionID string) (*model.Session, error) {
	tp, err := s.teacherProfile(ctx, userID)
	if err != nil {
		return nil, err
	}
	sess, err := s.getSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if sess.TeacherID != tp.TeacherProfileID {
		return nil, ErrSessionNotFound
	}
	return sess, nil
}

// notifyStudents 以显式名单解析会话学生并写入通知
func (s *sessionService) notifyStudents(ctx context.Context, sess *model.Session, title, body string) {
	if len(sess.Students) == 0 {
		return
	}
	userIDs, err := s.audience.Resolve(ctx, AudienceSpec{
		TargetType: model.TargetExplicit,
		StudentIDs: sess.Students,
	})
	if err != nil {
		s.logger.Warn("解析会话学生失败，跳过通知", zap.String("session_id", sess.SessionID), zap.Error(err))
		return
	}
	s.notifier.CreateBulkForUserIDs(ctx, userIDs, NotificationInput{
		Title:       title,
		Body:        body,
		Type:        model.NotificationSessionReminder,
		RelatedID:   strPtr(sess.SessionID),
		RelatedType: strPtr(model.RelatedSession),
	})
}

func toSessionResponse(sess *model.Session) dto.SessionResponse {
	students := []string(sess.Students)
	if students == nil {
		students = []string{}
	}
	return dto.SessionResponse{
		ID:             sess.SessionID,
		Title:          sess.Title,
		Description:    sess.Description,
		TeacherID:      sess.TeacherID,
		Students:       students,
		ScheduledAt:    sess.ScheduledAt,
		Duration:       sess.Duration,
		MeetLink:       sess.MeetLink,
		IsLive:         sess.IsLive,
		Status:         sess.Status,
		MentoringNotes: sess.MentoringNotes,
		CreatedAt:      sess.CreatedAt,
	}
}

// dedupeIDs 去重并保持顺序
func dedupeIDs(ids []string) model.StringArray {
	out := model.StringArray{}
	for _, id := range ids {
		out.Add(id)
	}
	return out
}

func trimmedOrNil(p *string) *string {
	if p == nil {
		return nil
	}
	v := strings.TrimSpace(*p)
	if v == "" {
		return nil
	}
	return &v
}
