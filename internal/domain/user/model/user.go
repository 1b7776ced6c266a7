package model

import "thywilluche/pkg/model"

const (
	RoleUser  = "USER"
	RoleAdmin = "ADMIN"
)

// User 用户模型，只做逻辑删除
type User struct {
	model.BaseModel
	Name          string `gorm:"size:100;not null" json:"name"`
	Username      string `gorm:"size:30;uniqueIndex;not null" json:"username"`
	Email         string `gorm:"size:255;uniqueIndex;not null" json:"email"`
	Password      string `gorm:"not null" json:"-"` // 密码不返回给前端
	Role          string `gorm:"size:10;default:USER;not null" json:"role"`
	Image         string `json:"image"`
	Bio           string `gorm:"size:500" json:"bio"`
	EmailVerified bool   `gorm:"default:false" json:"emailVerified"`
}

// IsValidRole 角色只允许 USER / ADMIN
func IsValidRole(role string) bool {
	return role == RoleUser || role == RoleAdmin
}

// Summary 作者信息，嵌入到帖子、评论等响应中
type Summary struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Username string `json:"username"`
	Image    string `json:"image"`
}
