package model

// 公告受众类型
const (
	TargetAll        = "all"
	TargetStudents   = "students"
	TargetParents    = "parents"
	TargetDepartment = "department"
	TargetExplicit   = "explicit"
)

// Announcement 公告，对应 announcements
type Announcement struct {
	AnnouncementID   string      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"announcement_id"`
	Title            string      `gorm:"type:varchar(200);not null"                     json:"title"`
	Body             string      `gorm:"type:text;not null"                             json:"body"`
	AuthorID         string      `gorm:"type:uuid;not null"                             json:"author_id"`
	TargetType       string      `gorm:"type:varchar(20);not null;default:'all'"        json:"target_type"`
	TargetDepartment *string     `gorm:"type:varchar(50)"                               json:"target_department,omitempty"`
	TargetStudentIDs StringArray `gorm:"type:uuid[];not null;default:'{}'"              json:"target_student_ids"`
	IsPinned         bool        `gorm:"not null;default:false"                         json:"is_pinned"`
	BaseModel

	Author *User `gorm:"foreignKey:AuthorID;references:UserID" json:"author,omitempty"`
}

// TableName 指定表名
func (Announcement) TableName() string { return "announcements" }
