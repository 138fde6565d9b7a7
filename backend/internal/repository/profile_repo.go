package repository

import (
	"context"

	"gorm.io/gorm"

	"ecs-mentoring/backend/internal/model"
)

// ── 学生档案 ──

// StudentProfileRepository 学生档案数据访问接口
type StudentProfileRepository interface {
	Create(ctx context.Context, profile *model.StudentProfile) error
	GetByID(ctx context.Context, id string) (*model.StudentProfile, error)
	GetByUserID(ctx context.Context, userID string) (*model.StudentProfile, error)
	ListByIDs(ctx context.Context, ids []string) ([]model.StudentProfile, error)
	// ListByDepartment department 为空时返回全部学生档案
	ListByDepartment(ctx context.Context, department string) ([]model.StudentProfile, error)
	List(ctx context.Context, department string, offset, limit int) ([]model.StudentProfile, int64, error)
	Update(ctx context.Context, profile *model.StudentProfile) error
}

type studentProfileRepo struct {
	db *gorm.DB
}

// NewStudentProfileRepo 创建 StudentProfileRepository 实例
func NewStudentProfileRepo(db *gorm.DB) StudentProfileRepository {
	return &studentProfileRepo{db: db}
}

func (r *studentProfileRepo) Create(ctx context.Context, profile *model.StudentProfile) error {
	return translateError(r.db.WithContext(ctx).Create(profile).Error)
}

func (r *studentProfileRepo) GetByID(ctx context.Context, id string) (*model.StudentProfile, error) {
	var p model.StudentProfile
	if err := r.db.WithContext(ctx).Where("student_profile_id = ?", id).First(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *studentProfileRepo) GetByUserID(ctx context.Context, userID string) (*model.StudentProfile, error) {
	var p model.StudentProfile
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *studentProfileRepo) ListByIDs(ctx context.Context, ids []string) ([]model.StudentProfile, error) {
	if len(ids) == 0 {
		return []model.StudentProfile{}, nil
	}
	var list []model.StudentProfile
	err := r.db.WithContext(ctx).Where("student_profile_id IN ?", ids).Find(&list).Error
	return list, err
}

func (r *studentProfileRepo) ListByDepartment(ctx context.Context, department string) ([]model.StudentProfile, error) {
	var list []model.StudentProfile
	db := r.db.WithContext(ctx)
	if department != "" {
		db = db.Where("department = ?", department)
	}
	err := db.Order("roll_no ASC").Find(&list).Error
	return list, err
}

func (r *studentProfileRepo) List(ctx context.Context, department string, offset, limit int) ([]model.StudentProfile, int64, error) {
	var list []model.StudentProfile
	var total int64

	db := r.db.WithContext(ctx).Model(&model.StudentProfile{})
	if department != "" {
		db = db.Where("department = ?", department)
	}
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if err := db.Order("roll_no ASC").Offset(offset).Limit(limit).Find(&list).Error; err != nil {
		return nil, 0, err
	}
	return list, total, nil
}

func (r *studentProfileRepo) Update(ctx context.Context, profile *model.StudentProfile) error {
	return r.db.WithContext(ctx).Save(profile).Error
}

// ── 教师档案 ──

// TeacherProfileRepository 教师档案数据访问接口
type TeacherProfileRepository interface {
	Create(ctx context.Context, profile *model.TeacherProfile) error
	GetByID(ctx context.Context, id string) (*model.TeacherProfile, error)
	GetByUserID(ctx context.Context, userID string) (*model.TeacherProfile, error)
	ListByIDs(ctx context.Context, ids []string) ([]model.TeacherProfile, error)
	List(ctx context.Context, offset, limit int) ([]model.TeacherProfile, int64, error)
	Update(ctx context.Context, profile *model.TeacherProfile) error
}

type teacherProfileRepo struct {
	db *gorm.DB
}

// NewTeacherProfileRepo 创建 TeacherProfileRepository 实例
func NewTeacherProfileRepo(db *gorm.DB) TeacherProfileRepository {
	return &teacherProfileRepo{db: db}
}

func (r *teacherProfileRepo) Create(ctx context.Context, profile *model.TeacherProfile) error {
	return translateError(r.db.WithContext(ctx).Create(profile).Error)
}

func (r *teacherProfileRepo) GetByID(ctx context.Context, id string) (*model.TeacherProfile, error) {
	var p model.TeacherProfile
	if err := r.db.WithContext(ctx).Where("teacher_profile_id = ?", id).First(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *teacherProfileRepo) GetByUserID(ctx context.Context, userID string) (*model.TeacherProfile, error) {
	var p model.TeacherProfile
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *teacherProfileRepo) ListByIDs(ctx context.Context, ids []string) ([]model.TeacherProfile, error) {
	if len(ids) == 0 {
		return []model.TeacherProfile{}, nil
	}
	var list []model.TeacherProfile
	err := r.db.WithContext(ctx).Where("teacher_profile_id IN ?", ids).Find(&list).Error
	return list, err
}

func (r *teacherProfileRepo) List(ctx context.Context, offset, limit int) ([]model.TeacherProfile, int64, error) {
	var list []model.TeacherProfile
	var total int64

	db := r.db.WithContext(ctx).Model(&model.TeacherProfile{})
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if err := db.Order("department ASC").Offset(offset).Limit(limit).Find(&list).Error; err != nil {
		return nil, 0, err
	}
	return list, total, nil
}

func (r *teacherProfileRepo) Update(ctx context.Context, profile *model.TeacherProfile) error {
	return r.db.WithContext(ctx).Save(profile).Error
}

// ── 家长档案 ──

// ParentProfileRepository 家长档案数据访问接口
type ParentProfileRepository interface {
	Create(ctx context.Context, profile *model.ParentProfile) error
	GetByID(ctx context.Context, id string) (*model.ParentProfile, error)
	GetByUserID(ctx context.Context, userID string) (*model.ParentProfile, error)
	ListByIDs(ctx context.Context, ids []string) ([]model.ParentProfile, error)
	// ListLinkedToAny 查询 linked_students 与给定学生集合有交集的家长档案
	ListLinkedToAny(ctx context.Context, studentProfileIDs []string) ([]model.ParentProfile, error)
	Update(ctx context.Context, profile *model.ParentProfile) error
}

type parentProfileRepo struct {
	db *gorm.DB
}

// NewParentProfileRepo 创建 ParentProfileRepository 实例
func NewParentProfileRepo(db *gorm.DB) ParentProfileRepository {
	return &parentProfileRepo{db: db}
}

func (r *parentProfileRepo) Create(ctx context.Context, profile *model.ParentProfile) error {
	return translateError(r.db.WithContext(ctx).Create(profile).Error)
}

func (r *parentProfileRepo) GetByID(ctx context.Context, id string) (*model.ParentProfile, error) {
	var p model.ParentProfile
	if err := r.db.WithContext(ctx).Where("parent_profile_id = ?", id).First(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *parentProfileRepo) GetByUserID(ctx context.Context, userID string) (*model.ParentProfile, error) {
	var p model.ParentProfile
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *parentProfileRepo) ListByIDs(ctx context.Context, ids []string) ([]model.ParentProfile, error) {
	if len(ids) == 0 {
		return []model.ParentProfile{}, nil
	}
	var list []model.ParentProfile
	err := r.db.WithContext(ctx).Where("parent_profile_id IN ?", ids).Find(&list).Error
	return list, err
}

func (r *parentProfileRepo) ListLinkedToAny(ctx context.Context, studentProfileIDs []string) ([]model.ParentProfile, error) {
	if len(studentProfileIDs) == 0 {
		return []model.ParentProfile{}, nil
	}
	var list []model.ParentProfile
	err := r.db.WithContext(ctx).
		Where("linked_students && ?::uuid[]", model.StringArray(studentProfileIDs)).
		Find(&list).Error
	return list, err
}

func (r *parentProfileRepo) Update(ctx context.Context, profile *model.ParentProfile) error {
	return r.db.WithContext(ctx).Save(profile).Error
}
