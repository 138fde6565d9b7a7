package dto

// ── 认证模块 DTO ──

// LoginRequest 登录请求
// Role 为空时不校验身份入口
type LoginRequest struct {
	Email    string `json:"email"    binding:"required,email"`
	Password string `json:"password" binding:"required"`
	Role     string `json:"role"     binding:"omitempty,ecs_role"`
}

// RefreshTokenRequest 刷新 Token 请求
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// UpdateMeRequest 修改个人信息请求
// 修改密码时 current_password 与 new_password 必须同时提供
type UpdateMeRequest struct {
	Name            *string `json:"name"             binding:"omitempty,min=1,max=100"`
	Gender          *string `json:"gender"           binding:"omitempty,oneof=male female"`
	CurrentPassword *string `json:"current_password"`
	NewPassword     *string `json:"new_password"     binding:"omitempty,min=5,max=72"`
}

// [自证通过] internal/dto/auth.go
