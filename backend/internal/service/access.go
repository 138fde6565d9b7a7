package service

import (
	"context"
	"errors"
	"sort"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"ecs-mentoring/backend/internal/dto"
	"ecs-mentoring/backend/internal/model"
	"ecs-mentoring/backend/internal/repository"
)

// AccessService 关系与访问控制
//
// 规则：
//   - 学生 ↔ 导师（学生档案 mentor 指向该教师档案 / 教师 assignedStudents 包含该学生）
//   - 教师 ↔ 家长（家长 linkedStudents 中至少一名学生由该教师负责）
//   - 教师 ↔ 管理员（无条件）
//   - 其余组合一律拒绝
//
// 关系引用缺失或悬空时视为"无关系"，不返回错误；只有存储层故障才会返回 error。
type AccessService interface {
	// CanContact 判断 initiator 能否与 target 建立私信会话
	CanContact(ctx context.Context, initiatorID, targetID string) (bool, error)
	// ListContacts 枚举用户可联系的全部对象（已去重）
	ListContacts(ctx context.Context, userID string) ([]dto.ContactResponse, error)
}

type accessService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewAccessService 创建 AccessService 实例
func NewAccessService(repo *repository.Repository, logger *zap.Logger) AccessService {
	return &accessService{repo: repo, logger: logger}
}

// ═══════════════════════════════════════════════════════════
// 角色组合矩阵
// ═══════════════════════════════════════════════════════════

// contactMatrix 按角色允许的联系方向，必须按角色对称
var contactMatrix = map[model.Role][]model.Role{
	model.RoleStudent: {model.RoleTeacher},
	model.RoleTeacher: {model.RoleStudent, model.RoleParent, model.RoleAdmin},
	model.RoleParent:  {model.RoleTeacher},
	model.RoleAdmin:   {model.RoleTeacher},
}

// rolePairAllowed 角色组合是否在矩阵内
func rolePairAllowed(from, to model.Role) bool {
	for _, r := range contactMatrix[from] {
		if r == to {
			return true
		}
	}
	return false
}

// ═══════════════════════════════════════════════════════════
// 按角色分派的关系策略
// ═══════════════════════════════════════════════════════════

// rolePolicy 单一角色视角下的关系规则
// canContact 调用前已保证 target 角色在矩阵内
type rolePolicy interface {
	canContact(ctx context.Context, me, target *model.User) (bool, error)
	contacts(ctx context.Context, me *model.User) ([]model.User, error)
}

func (s *accessService) policyFor(role model.Role) rolePolicy {
	switch role {
	case model.RoleStudent:
		return studentPolicy{repo: s.repo}
	case model.RoleTeacher:
		return teacherPolicy{repo: s.repo}
	case model.RoleParent:
		return parentPolicy{repo: s.repo}
	case model.RoleAdmin:
		return adminPolicy{repo: s.repo}
	}
	return nil
}

// ── 学生 ──

type studentPolicy struct {
	repo *repository.Repository
}

// mentorProfile 学生的导师档案；未分配或悬空时返回 nil
func (p studentPolicy) mentorProfile(ctx context.Context, userID string) (*model.TeacherProfile, error) {
	sp, err := p.repo.StudentProfile.GetByUserID(ctx, userID)
	if err != nil {
		return nil, ignoreNotFound(err)
	}
	if !sp.HasMentor() {
		return nil, nil
	}
	tp, err := p.repo.TeacherProfile.GetByID(ctx, *sp.MentorID)
	if err != nil {
		return nil, ignoreNotFound(err)
	}
	return tp, nil
}

func (p studentPolicy) canContact(ctx context.Context, me, target *model.User) (bool, error) {
	tp, err := p.mentorProfile(ctx, me.UserID)
	if err != nil || tp == nil {
		return false, err
	}
	return tp.UserID == target.UserID, nil
}

func (p studentPolicy) contacts(ctx context.Context, me *model.User) ([]model.User, error) {
	tp, err := p.mentorProfile(ctx, me.UserID)
	if err != nil || tp == nil {
		return nil, err
	}
	return p.repo.User.ListByIDs(ctx, []string{tp.UserID})
}

// ── 教师 ──

type teacherPolicy struct {
	repo *repository.Repository
}

// assignedStudents 教师名下实际存在的学生档案；教师档案缺失时返回空
func (p teacherPolicy) assignedStudents(ctx context.Context, userID string) (*model.TeacherProfile, []model.StudentProfile, error) {
	tp, err := p.repo.TeacherProfile.GetByUserID(ctx, userID)
	if err != nil {
		return nil, nil, ignoreNotFound(err)
	}
	students, err := p.repo.StudentProfile.ListByIDs(ctx, tp.AssignedStudents)
	if err != nil {
		return nil, nil, err
	}
	return tp, students, nil
}

func (p teacherPolicy) canContact(ctx context.Context, me, target *model.User) (bool, error) {
	if target.Role == model.RoleAdmin {
		return true, nil
	}

	tp, err := p.repo.TeacherProfile.GetByUserID(ctx, me.UserID)
	if err != nil {
		return false, ignoreNotFound(err)
	}

	switch target.Role {
	case model.RoleStudent:
		sp, err := p.repo.StudentProfile.GetByUserID(ctx, target.UserID)
		if err != nil {
			return false, ignoreNotFound(err)
		}
		return tp.AssignedStudents.Contains(sp.StudentProfileID), nil

	case model.RoleParent:
		pp, err := p.repo.ParentProfile.GetByUserID(ctx, target.UserID)
		if err != nil {
			return false, ignoreNotFound(err)
		}
		shared := intersect(pp.LinkedStudents, tp.AssignedStudents)
		if len(shared) == 0 {
			return false, nil
		}
		// 仅计入仍存在的学生档案
		existing, err := p.repo.StudentProfile.ListByIDs(ctx, shared)
		if err != nil {
			return false, err
		}
		return len(existing) > 0, nil
	}
	return false, nil
}

func (p teacherPolicy) contacts(ctx context.Context, me *model.User) ([]model.User, error) {
	_, students, err := p.assignedStudents(ctx, me.UserID)
	if err != nil {
		return nil, err
	}

	userIDs := make([]string, 0, len(students))
	studentIDs := make([]string, 0, len(students))
	for _, sp := range students {
		userIDs = append(userIDs, sp.UserID)
		studentIDs = append(studentIDs, sp.StudentProfileID)
	}

	parents, err := p.repo.ParentProfile.ListLinkedToAny(ctx, studentIDs)
	if err != nil {
		return nil, err
	}
	for _, pp := range parents {
		userIDs = append(userIDs, pp.UserID)
	}

	users, err := p.repo.User.ListByIDs(ctx, userIDs)
	if err != nil {
		return nil, err
	}

	admins, err := p.repo.User.ListByRole(ctx, model.RoleAdmin)
	if err != nil {
		return nil, err
	}
	return append(users, admins...), nil
}

// ── 家长 ──

type parentPolicy struct {
	repo *repository.Repository
}

// mentorIDs 家长关联学生的导师档案 ID（去重）
func (p parentPolicy) mentorIDs(ctx context.Context, userID string) ([]string, error) {
	pp, err := p.repo.ParentProfile.GetByUserID(ctx, userID)
	if err != nil {
		return nil, ignoreNotFound(err)
	}
	students, err := p.repo.StudentProfile.ListByIDs(ctx, pp.LinkedStudents)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	var ids []string
	for _, sp := range students {
		if !sp.HasMentor() || seen[*sp.MentorID] {
			continue
		}
		seen[*sp.MentorID] = true
		ids = append(ids, *sp.MentorID)
	}
	return ids, nil
}

func (p parentPolicy) canContact(ctx context.Context, me, target *model.User) (bool, error) {
	tp, err := p.repo.TeacherProfile.GetByUserID(ctx, target.UserID)
	if err != nil {
		return false, ignoreNotFound(err)
	}
	ids, err := p.mentorIDs(ctx, me.UserID)
	if err != nil {
		return false, err
	}
	for _, id := range ids {
		if id == tp.TeacherProfileID {
			return true, nil
		}
	}
	return false, nil
}

func (p parentPolicy) contacts(ctx context.Context, me *model.User) ([]model.User, error) {
	ids, err := p.mentorIDs(ctx, me.UserID)
	if err != nil || len(ids) == 0 {
		return nil, err
	}
	teachers, err := p.repo.TeacherProfile.ListByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	userIDs := make([]string, 0, len(teachers))
	for _, tp := range teachers {
		userIDs = append(userIDs, tp.UserID)
	}
	return p.repo.User.ListByIDs(ctx, userIDs)
}

// ── 管理员 ──

type adminPolicy struct {
	repo *repository.Repository
}

func (p adminPolicy) canContact(_ context.Context, _, _ *model.User) (bool, error) {
	return true, nil
}

func (p adminPolicy) contacts(ctx context.Context, _ *model.User) ([]model.User, error) {
	return p.repo.User.ListByRole(ctx, model.RoleTeacher)
}

// ═══════════════════════════════════════════════════════════
// CanContact
// ═══════════════════════════════════════════════════════════

func (s *accessService) CanContact(ctx context.Context, initiatorID, targetID string) (bool, error) {
	if initiatorID == targetID {
		return false, nil
	}

	me, err := s.repo.User.GetByID(ctx, initiatorID)
	if err != nil {
		return false, s.lookupError(err, initiatorID)
	}
	target, err := s.repo.User.GetByID(ctx, targetID)
	if err != nil {
		return false, s.lookupError(err, targetID)
	}

	if !rolePairAllowed(me.Role, target.Role) {
		return false, nil
	}
	policy := s.policyFor(me.Role)
	if policy == nil {
		return false, nil
	}

	ok, err := policy.canContact(ctx, me, target)
	if err != nil {
		s.logger.Error("校验联系权限失败",
			zap.String("initiator", initiatorID), zap.String("target", targetID), zap.Error(err))
		return false, err
	}
	return ok, nil
}

// ═══════════════════════════════════════════════════════════
// ListContacts
// ═══════════════════════════════════════════════════════════

func (s *accessService) ListContacts(ctx context.Context, userID string) ([]dto.ContactResponse, error) {
	me, err := s.repo.User.GetByID(ctx, userID)
	if err != nil {
		if err := s.lookupError(err, userID); err != nil {
			return nil, err
		}
		return []dto.ContactResponse{}, nil
	}

	policy := s.policyFor(me.Role)
	if policy == nil {
		return []dto.ContactResponse{}, nil
	}

	users, err := policy.contacts(ctx, me)
	if err != nil {
		s.logger.Error("枚举联系人失败", zap.String("user_id", userID), zap.Error(err))
		return nil, err
	}

	seen := make(map[string]bool, len(users))
	result := make([]dto.ContactResponse, 0, len(users))
	for _, u := range users {
		// 角色不符的档案归属用户（数据不一致）同样按无关系处理
		if u.UserID == me.UserID || seen[u.UserID] || !rolePairAllowed(me.Role, u.Role) {
			continue
		}
		seen[u.UserID] = true
		result = append(result, dto.ContactResponse{
			ID:    u.UserID,
			Name:  u.Name,
			Email: u.Email,
			Role:  string(u.Role),
		})
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].Role != result[j].Role {
			return result[i].Role < result[j].Role
		}
		return result[i].Name < result[j].Name
	})
	return result, nil
}

// ── 辅助函数 ──

// lookupError 用户不存在视为无关系（nil），其余错误记录后返回
func (s *accessService) lookupError(err error, userID string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	s.logger.Error("查询用户失败", zap.String("user_id", userID), zap.Error(err))
	return err
}

// ignoreNotFound 将记录不存在折叠为 nil
func ignoreNotFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	return err
}

// intersect 返回两个 ID 集合的交集（保持 a 中的顺序）
func intersect(a, b model.StringArray) []string {
	var out []string
	for _, id := range a {
		if b.Contains(id) {
			out = append(out, id)
		}
	}
	return out
}
