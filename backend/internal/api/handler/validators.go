package handler

import (
	"fmt"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"ecs-mentoring/backend/internal/model"
)

// 自定义校验标签
const (
	roleTag     = "ecs_role"
	audienceTag = "ecs_audience"
)

// RegisterValidators 向 gin 的 binding 引擎注册自定义校验标签
// DTO 中使用了 ecs_role / ecs_audience，须在绑定请求前调用
func RegisterValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return fmt.Errorf("binding 引擎不是 validator/v10")
	}
	if err := v.RegisterValidation(roleTag, validateRole); err != nil {
		return fmt.Errorf("注册 %s 失败: %w", roleTag, err)
	}
	if err := v.RegisterValidation(audienceTag, validateAudience); err != nil {
		return fmt.Errorf("注册 %s 失败: %w", audienceTag, err)
	}
	return nil
}

func validateRole(fl validator.FieldLevel) bool {
	return model.Role(fl.Field().String()).Valid()
}

func validateAudience(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case model.TargetAll, model.TargetStudents, model.TargetParents, model.TargetDepartment, model.TargetExplicit:
		return true
	}
	return false
}
