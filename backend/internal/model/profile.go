package model

// StudentProfile 学生档案，对应 student_profiles（与 users 1:1）
// MentorID 指向 TeacherProfile，ParentID 指向 ParentProfile；均可为空或悬空
type StudentProfile struct {
	StudentProfileID string  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"student_profile_id"`
	UserID           string  `gorm:"type:uuid;not null;uniqueIndex"                 json:"user_id"`
	MentorID         *string `gorm:"type:uuid"                                      json:"mentor_id,omitempty"`
	ParentID         *string `gorm:"type:uuid"                                      json:"parent_id,omitempty"`
	Department       string  `gorm:"type:varchar(50)"                               json:"department,omitempty"`
	RollNo           string  `gorm:"type:varchar(30)"                               json:"roll_no,omitempty"`
	BaseModel
}

// TableName 指定表名
func (StudentProfile) TableName() string { return "student_profiles" }

// HasMentor 判断是否已分配导师
func (p *StudentProfile) HasMentor() bool {
	return p.MentorID != nil && *p.MentorID != ""
}

// TeacherProfile 教师档案，对应 teacher_profiles
type TeacherProfile struct {
	TeacherProfileID string      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"teacher_profile_id"`
	UserID           string      `gorm:"type:uuid;not null;uniqueIndex"                 json:"user_id"`
	Department       string      `gorm:"type:varchar(50)"                               json:"department,omitempty"`
	Designation      string      `gorm:"type:varchar(100)"                              json:"designation,omitempty"`
	AssignedStudents StringArray `gorm:"type:uuid[];not null;default:'{}'"              json:"assigned_students"`
	BaseModel
}

// TableName 指定表名
func (TeacherProfile) TableName() string { return "teacher_profiles" }

// ParentProfile 家长档案，对应 parent_profiles
type ParentProfile struct {
	ParentProfileID string      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"parent_profile_id"`
	UserID          string      `gorm:"type:uuid;not null;uniqueIndex"                 json:"user_id"`
	LinkedStudents  StringArray `gorm:"type:uuid[];not null;default:'{}'"              json:"linked_students"`
	BaseModel
}

// TableName 指定表名
func (ParentProfile) TableName() string { return "parent_profiles" }
