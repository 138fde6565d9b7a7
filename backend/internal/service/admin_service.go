package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"ecs-mentoring/backend/internal/dto"
	"ecs-mentoring/backend/internal/model"
	"ecs-mentoring/backend/internal/repository"
	pkgerrors "ecs-mentoring/backend/pkg/errors"
)

// ── 管理员模块业务错误 ──

var (
	ErrStudentProfileNotFound = fmt.Errorf("%w: 学生档案不存在", pkgerrors.ErrNotFound)
	ErrTeacherProfileNotFound = fmt.Errorf("%w: 教师档案不存在", pkgerrors.ErrNotFound)
	ErrParentProfileNotFound  = fmt.Errorf("%w: 家长档案不存在", pkgerrors.ErrNotFound)
)

// AdminService 师生/家长关系维护
//
// 学生 mentor 与教师 assignedStudents 是同一关系的两端，
// 分配导师时在同一事务中同步两端，并从原导师名下移除。
type AdminService interface {
	AssignMentor(ctx context.Context, studentProfileID, teacherProfileID string) (*dto.StudentResponse, error)
	LinkParent(ctx context.Context, parentProfileID, studentProfileID string) error
	ListStudents(ctx context.Context, req *dto.StudentListRequest) ([]dto.StudentResponse, int64, error)
	ListTeachers(ctx context.Context, req *dto.PaginationRequest) ([]dto.TeacherResponse, int64, error)
}

type adminService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewAdminService 创建 AdminService 实例
func NewAdminService(repo *repository.Repository, logger *zap.Logger) AdminService {
	return &adminService{repo: repo, logger: logger}
}

// ═══════════════════════════════════════════════════════════
// AssignMentor
// ═══════════════════════════════════════════════════════════

func (s *adminService) AssignMentor(ctx context.Context, studentProfileID, teacherProfileID string) (*dto.StudentResponse, error) {
	if !isUUID(studentProfileID) {
		return nil, ErrStudentProfileNotFound
	}

	tx, err := s.repo.BeginTx(ctx)
	if err != nil {
		s.logger.Error("开启事务失败", zap.Error(err))
		return nil, err
	}
	defer func() {
		if r := recover(); r != nil {
			if tx != nil {
				tx.Rollback()
			}
			panic(r)
		}
	}()
	rollback := func() {
		if tx != nil {
			tx.Rollback()
		}
	}

	txRepo := s.repo.WithTx(tx)

	sp, err := txRepo.StudentProfile.GetByID(ctx, studentProfileID)
	if err != nil {
		rollback()
		return nil, notFoundAs(err, ErrStudentProfileNotFound)
	}
	tp, err := txRepo.TeacherProfile.GetByID(ctx, teacherProfileID)
	if err != nil {
		rollback()
		return nil, notFoundAs(err, ErrTeacherProfileNotFound)
	}

	// 从原导师名下移除；原导师档案悬空时跳过
	if sp.HasMentor() && *sp.MentorID != tp.TeacherProfileID {
		prev, err := txRepo.TeacherProfile.GetByID(ctx, *sp.MentorID)
		switch {
		case err == nil:
			if prev.AssignedStudents.Remove(sp.StudentProfileID) {
				if err := txRepo.TeacherProfile.Update(ctx, prev); err != nil {
					rollback()
					s.logger.Error("更新原导师失败", zap.String("teacher_profile_id", prev.TeacherProfileID), zap.Error(err))
					return nil, err
				}
			}
		case !errors.Is(err, gorm.ErrRecordNotFound):
			rollback()
			return nil, err
		}
	}

	sp.MentorID = &tp.TeacherProfileID
	if err := txRepo.StudentProfile.Update(ctx, sp); err != nil {
		rollback()
		s.logger.Error("更新学生导师失败", zap.String("student_profile_id", sp.StudentProfileID), zap.Error(err))
		return nil, err
	}

	if tp.AssignedStudents.Add(sp.StudentProfileID) {
		if err := txRepo.TeacherProfile.Update(ctx, tp); err != nil {
			rollback()
			s.logger.Error("更新导师名下学生失败", zap.String("teacher_profile_id", tp.TeacherProfileID), zap.Error(err))
			return nil, err
		}
	}

	if tx != nil {
		if err := tx.Commit().Error; err != nil {
			s.logger.Error("提交事务失败", zap.Error(err))
			return nil, err
		}
	}

	s.logger.Info("分配导师",
		zap.String("student_profile_id", sp.StudentProfileID),
		zap.String("teacher_profile_id", tp.TeacherProfileID),
	)

	users, err := s.usersByID(ctx, []string{sp.UserID})
	if err != nil {
		return nil, err
	}
	resp := toStudentResponse(sp, users[sp.UserID])
	return &resp, nil
}

// ═══════════════════════════════════════════════════════════
// LinkParent
// ═══════════════════════════════════════════════════════════

func (s *adminService) LinkParent(ctx context.Context, parentProfileID, studentProfileID string) error {
	if !isUUID(parentProfileID) {
		return ErrParentProfileNotFound
	}

	tx, err := s.repo.BeginTx(ctx)
	if err != nil {
		s.logger.Error("开启事务失败", zap.Error(err))
		return err
	}
	rollback := func() {
		if tx != nil {
			tx.Rollback()
		}
	}
	txRepo := s.repo.WithTx(tx)

	pp, err := txRepo.ParentProfile.GetByID(ctx, parentProfileID)
	if err != nil {
		rollback()
		return notFoundAs(err, ErrParentProfileNotFound)
	}
	sp, err := txRepo.StudentProfile.GetByID(ctx, studentProfileID)
	if err != nil {
		rollback()
		return notFoundAs(err, ErrStudentProfileNotFound)
	}

	if pp.LinkedStudents.Add(sp.StudentProfileID) {
		if err := txRepo.ParentProfile.Update(ctx, pp); err != nil {
			rollback()
			s.logger.Error("更新家长关联学生失败", zap.Error(err))
			return err
		}
	}
	if sp.ParentID == nil || *sp.ParentID != pp.ParentProfileID {
		sp.ParentID = &pp.ParentProfileID
		if err := txRepo.StudentProfile.Update(ctx, sp); err != nil {
			rollback()
			s.logger.Error("更新学生家长失败", zap.Error(err))
			return err
		}
	}

	if tx != nil {
		if err := tx.Commit().Error; err != nil {
			s.logger.Error("提交事务失败", zap.Error(err))
			return err
		}
	}

	s.logger.Info("关联家长",
		zap.String("parent_profile_id", pp.ParentProfileID),
		zap.String("student_profile_id", sp.StudentProfileID),
	)
	return nil
}

// ────────────────────── ListStudents ──────────────────────

func (s *adminService) ListStudents(ctx context.Context, req *dto.StudentListRequest) ([]dto.StudentResponse, int64, error) {
	profiles, total, err := s.repo.StudentProfile.List(ctx, req.Department, req.GetOffset(), req.GetPageSize())
	if err != nil {
		s.logger.Error("查询学生列表失败", zap.Error(err))
		return nil, 0, err
	}

	ids := make([]string, 0, len(profiles))
	for _, p := range profiles {
		ids = append(ids, p.UserID)
	}
	users, err := s.usersByID(ctx, ids)
	if err != nil {
		return nil, 0, err
	}

	result := make([]dto.StudentResponse, 0, len(profiles))
	for i := range profiles {
		result = append(result, toStudentResponse(&profiles[i], users[profiles[i].UserID]))
	}
	return result, total, nil
}

// ────────────────────── ListTeachers ──────────────────────

func (s *adminService) ListTeachers(ctx context.Context, req *dto.PaginationRequest) ([]dto.TeacherResponse, int64, error) {
	profiles, total, err := s.repo.TeacherProfile.List(ctx, req.GetOffset(), req.GetPageSize())
	if err != nil {
		s.logger.Error("查询教师列表失败", zap.Error(err))
		return nil, 0, err
	}

	ids := make([]string, 0, len(profiles))
	for _, p := range profiles {
		ids = append(ids, p.UserID)
	}
	users, err := s.usersByID(ctx, ids)
	if err != nil {
		return nil, 0, err
	}

	result := make([]dto.TeacherResponse, 0, len(profiles))
	for i := range profiles {
		p := &profiles[i]
		item := dto.TeacherResponse{
			ProfileID:        p.TeacherProfileID,
			UserID:           p.UserID,
			Department:       p.Department,
			Designation:      p.Designation,
			AssignedStudents: []string(p.AssignedStudents),
		}
		if item.AssignedStudents == nil {
			item.AssignedStudents = []string{}
		}
		if u := users[p.UserID]; u != nil {
			item.Name = u.Name
			item.Email = u.Email
		}
		result = append(result, item)
	}
	return result, total, nil
}

// ── 辅助函数 ──

func (s *adminService) usersByID(ctx context.Context, ids []string) (map[string]*model.User, error) {
	users, err := s.repo.User.ListByIDs(ctx, ids)
	if err != nil {
		s.logger.Error("批量查询用户失败", zap.Error(err))
		return nil, err
	}
	m := make(map[string]*model.User, len(users))
	for i := range users {
		m[users[i].UserID] = &users[i]
	}
	return m, nil
}

func toStudentResponse(p *model.StudentProfile, u *model.User) dto.StudentResponse {
	resp := dto.StudentResponse{
		ProfileID:  p.StudentProfileID,
		UserID:     p.UserID,
		Department: p.Department,
		RollNo:     p.RollNo,
		MentorID:   p.MentorID,
		ParentID:   p.ParentID,
	}
	if u != nil {
		resp.Name = u.Name
		resp.Email = u.Email
	}
	return resp
}

// notFoundAs 记录不存在时替换为业务错误
func notFoundAs(err, target error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return target
	}
	return err
}
