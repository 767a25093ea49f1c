package models

import (
	"time"
)

const UserTable = "mag_users"
const AccountTable = "mag_accounts"

// User 是业务侧的用户档案（角色、个人码）。
// 认证身份在 Account 里，两者用 email 关联 —— 允许“已登录但没有档案”的状态。
type User struct {
	ID           string `gorm:"type:uuid;primaryKey" json:"id"`
	Name         string `gorm:"size:255;not null" json:"name"`
	Role         string `gorm:"size:40;not null" json:"role"`
	PersonalCode string `gorm:"size:7;not null" json:"personalCode"`
	Email        string `gorm:"uniqueIndex;size:255;not null" json:"email"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (User) TableName() string { return UserTable }

// Account 保存登录凭据与登录快照，密码只存 bcrypt 哈希。
type Account struct {
	ID           string `gorm:"type:uuid;primaryKey" json:"id"`
	Email        string `gorm:"uniqueIndex;size:255;not null" json:"email"`
	PasswordHash []byte `gorm:"not null" json:"-"`

	LastLoginAt *time.Time `gorm:"index" json:"lastLoginAt,omitempty"`
	LastSeenAt  *time.Time `gorm:"index" json:"lastSeenAt,omitempty"`
	LoginCount  int64      `gorm:"not null;default:0" json:"loginCount"`
	LastLoginIP string     `gorm:"size:45" json:"-"`
	LastLoginUA string     `gorm:"size:255" json:"-"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (Account) TableName() string { return AccountTable }
