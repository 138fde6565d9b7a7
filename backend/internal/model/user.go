package model

// Role 用户角色（封闭集合）
type Role string

const (
	RoleStudent Role = "student"
	RoleTeacher Role = "teacher"
	RoleParent  Role = "parent"
	RoleAdmin   Role = "admin"
)

// AllRoles 全部角色
var AllRoles = []Role{RoleStudent, RoleTeacher, RoleParent, RoleAdmin}

// Valid 判断角色是否属于封闭集合
func (r Role) Valid() bool {
	switch r {
	case RoleStudent, RoleTeacher, RoleParent, RoleAdmin:
		return true
	}
	return false
}

// User 用户表，对应 users
// 角色在创建后不可修改
type User struct {
	UserID       string  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"user_id"`
	Name         string  `gorm:"type:varchar(100);not null"                     json:"name"`
	Email        string  `gorm:"type:varchar(255);not null"                     json:"email"`
	PasswordHash string  `gorm:"type:varchar(255);not null"                     json:"-"`
	Role         Role    `gorm:"type:varchar(20);not null"                      json:"role"`
	Gender       *string `gorm:"type:varchar(10)"                               json:"gender,omitempty"`
	IsActive     bool    `gorm:"not null;default:true"                          json:"is_active"`
	BaseModel
}

// TableName 指定表名
func (User) TableName() string { return "users" }

// [自证通过] internal/model/user.go
