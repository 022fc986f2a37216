package domain

import "time"

const NotifKindLike = "like"

// Notification 归属物品主人，只追加；唯一的变更是整体置已读
type Notification struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID    string    `gorm:"index;size:36;not null" json:"-"`
	Kind      string    `gorm:"size:16;not null;default:like" json:"type"`
	ItemName  string    `gorm:"size:128" json:"itemName"`
	LikedBy   string    `gorm:"size:64" json:"likedBy"`
	Contact   string    `gorm:"size:191" json:"contact"`
	Message   string    `gorm:"size:512" json:"message"`
	Read      bool      `gorm:"column:is_read;not null;default:false;index" json:"read"` // read 在 MySQL 是保留字
	CreatedAt time.Time `gorm:"index" json:"createdAt"`
}

func (Notification) TableName() string { return "notifications" }
