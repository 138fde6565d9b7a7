package service

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"ecs-mentoring/backend/internal/model"
	"ecs-mentoring/backend/internal/repository"
)

// AudienceSpec 通知受众描述
type AudienceSpec struct {
	TargetType string
	Department string
	StudentIDs []string // 学生档案 ID
}

// AudienceResolver 将受众描述解析为接收通知的用户 ID 集合
//
// 优先级：显式名单 > 院系定向 > 全体广播（all / students，可按院系过滤）。
// 无法识别的描述返回空集合，不报错。
type AudienceResolver interface {
	Resolve(ctx context.Context, spec AudienceSpec) ([]string, error)
}

type audienceResolver struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewAudienceResolver 创建 AudienceResolver 实例
func NewAudienceResolver(repo *repository.Repository, logger *zap.Logger) AudienceResolver {
	return &audienceResolver{repo: repo, logger: logger}
}

func (r *audienceResolver) Resolve(ctx context.Context, spec AudienceSpec) ([]string, error) {
	var (
		profiles []model.StudentProfile
		err      error
	)

	switch {
	case len(spec.StudentIDs) > 0:
		profiles, err = r.repo.StudentProfile.ListByIDs(ctx, validUUIDs(spec.StudentIDs))
	case spec.TargetType == model.TargetDepartment && spec.Department != "":
		profiles, err = r.repo.StudentProfile.ListByDepartment(ctx, spec.Department)
	case spec.TargetType == model.TargetAll || spec.TargetType == model.TargetStudents:
		profiles, err = r.repo.StudentProfile.ListByDepartment(ctx, spec.Department)
	default:
		return []string{}, nil
	}
	if err != nil {
		r.logger.Error("解析通知受众失败", zap.String("target_type", spec.TargetType), zap.Error(err))
		return nil, err
	}

	seen := make(map[string]bool, len(profiles))
	userIDs := make([]string, 0, len(profiles))
	for _, p := range profiles {
		if p.UserID == "" || seen[p.UserID] {
			continue
		}
		seen[p.UserID] = true
		userIDs = append(userIDs, p.UserID)
	}
	return userIDs, nil
}

// validUUIDs 过滤掉格式非法的 ID
func validUUIDs(ids []string) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if isUUID(id) {
			out = append(out, id)
		}
	}
	return out
}

// isUUID 路径参数等外部输入的 ID 格式检查
func isUUID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}
