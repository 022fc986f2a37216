package domain

import "time"

// 物品生命周期：available → claimed → donated，单向不回退
const (
	StatusAvailable = "available"
	StatusClaimed   = "claimed"
	StatusDonated   = "donated"
)

var statusOrder = map[string]int{
	StatusAvailable: 0,
	StatusClaimed:   1,
	StatusDonated:   2,
}

// ValidStatus 是否为合法状态值
func ValidStatus(s string) bool {
	_, ok := statusOrder[s]
	return ok
}

// CanTransition 只允许沿生命周期向前走
func CanTransition(from, to string) bool {
	a, ok1 := statusOrder[from]
	b, ok2 := statusOrder[to]
	return ok1 && ok2 && b == a+1
}

type Item struct {
	ID          string `gorm:"primaryKey;size:36" json:"id"`
	Title       string `gorm:"size:128;not null" json:"title"`
	Description string `gorm:"size:1024" json:"description"`
	ImageURL    string `gorm:"size:512" json:"imageUrl"` // 外部图床的不透明 URL
	OwnerID     string `gorm:"index;size:36;not null" json:"ownerId"`
	Status      string `gorm:"size:16;not null;default:available;index" json:"status"`

	Owner *User `gorm:"foreignKey:OwnerID" json:"user,omitempty"`

	CreatedAt time.Time `gorm:"index" json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (Item) TableName() string { return "items" }

// Like 点赞关系的唯一事实来源。
// “用户的已赞集合”和“物品的点赞者集合”都是对它的两种视图，
// 双向一致性由单行插入/删除天然保证。
type Like struct {
	UserID    string    `gorm:"primaryKey;size:36" json:"userId"`
	ItemID    string    `gorm:"primaryKey;size:36;index" json:"itemId"`
	CreatedAt time.Time `json:"createdAt"`
}

func (Like) TableName() string { return "likes" }
