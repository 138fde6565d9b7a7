package dto

// ── 认证模块响应 ──

// TokenResponse Token 对响应
type TokenResponse struct {
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token"`
	ExpiresIn    int          `json:"expires_in"` // Access Token 有效期（秒）
	User         UserResponse `json:"user"`
}

// ── 用户模块响应 ──

// UserResponse 用户信息响应（脱敏）
type UserResponse struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Email    string  `json:"email"`
	Role     string  `json:"role"`
	Gender   *string `json:"gender,omitempty"`
	IsActive bool    `json:"is_active"`
}

// UserDetailResponse 当前用户信息（GET /auth/me），附带角色档案摘要
type UserDetailResponse struct {
	UserResponse
	Profile   *ProfileSummary `json:"profile,omitempty"`
	CreatedAt string          `json:"created_at"`
}

// ProfileSummary 角色档案摘要，按角色填充对应字段
type ProfileSummary struct {
	ID               string   `json:"id"`
	Department       string   `json:"department,omitempty"`
	RollNo           string   `json:"roll_no,omitempty"`
	Designation      string   `json:"designation,omitempty"`
	MentorID         *string  `json:"mentor_id,omitempty"`
	ParentID         *string  `json:"parent_id,omitempty"`
	AssignedStudents []string `json:"assigned_students,omitempty"`
	LinkedStudents   []string `json:"linked_students,omitempty"`
}

// ── 分页请求 ──

// PaginationRequest 通用分页参数
type PaginationRequest struct {
	Page     int `form:"page"      binding:"omitempty,min=1"`
	PageSize int `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// GetPage 获取页码（含默认值）
func (p *PaginationRequest) GetPage() int {
	if p.Page <= 0 {
		return 1
	}
	return p.Page
}

// GetPageSize 获取每页数量（含默认值）
func (p *PaginationRequest) GetPageSize() int {
	if p.PageSize <= 0 {
		return 20
	}
	return p.PageSize
}

// GetOffset 计算偏移量
func (p *PaginationRequest) GetOffset() int {
	return (p.GetPage() - 1) * p.GetPageSize()
}

// [自证通过] internal/dto/response.go
