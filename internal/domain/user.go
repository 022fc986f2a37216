package domain

import (
	"time"

	"gorm.io/gorm"
)

// 积分规则（业务常量，不要改成派生值）
const (
	WelcomePoints = 30 // 注册奖励
	ItemPoints    = 10 // 每上架一件物品
)

type User struct {
	ID           string `gorm:"primaryKey;size:36" json:"id"`
	UID          string `gorm:"uniqueIndex;size:128" json:"uid"` // 外部身份主体 id
	Email        string `gorm:"uniqueIndex;size:191" json:"email"`
	Name         string `gorm:"size:64" json:"name"`
	Avatar       string `gorm:"size:255" json:"avatar"`
	Bio          string `gorm:"size:255" json:"bio"`
	PasswordHash string `gorm:"size:191" json:"-"`
	Role         string `gorm:"size:16" json:"role"` // "user"/"admin"
	Points       uint   `gorm:"not null;default:0" json:"points"`

	Achievements []Achievement `gorm:"foreignKey:UserID" json:"achievements,omitempty"`

	CreatedAt time.Time      `json:"createdAt"` // 同分名次按它决胜
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (User) TableName() string { return "users" }

// Achievement 只追加，不更新不删除
type Achievement struct {
	ID          uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID      string    `gorm:"index;size:36;not null" json:"-"`
	Title       string    `gorm:"size:128" json:"title"`
	Description string    `gorm:"size:255" json:"description"`
	Points      uint      `json:"points"`
	CreatedAt   time.Time `json:"createdAt"`
}

func (Achievement) TableName() string { return "achievements" }
