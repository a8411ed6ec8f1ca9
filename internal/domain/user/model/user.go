package model

import (
	baseModel "mini_shop/pkg/model"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User 用户模型
type User struct {
	baseModel.BaseModel
	Username string `gorm:"uniqueIndex;size:20;not null" json:"username"`
	Password string `gorm:"size:100;not null" json:"-"` // bcrypt 哈希，不返回给前端
	Email    string `gorm:"size:255" json:"email"`
	Address  string `gorm:"size:500" json:"address"`
	Phone    string `gorm:"size:32" json:"phone"`
	Role     string `gorm:"size:16;not null;default:user" json:"role"`
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
