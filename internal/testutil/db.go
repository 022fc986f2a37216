// Package testutil 测试用的内存库和种子数据。
package testutil

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"recircle-backend/internal/domain"
	"recircle-backend/pkg/utils"
)

// OpenDB 每个测试一个独立的内存 sqlite。
// 连接数压到 1，避免 sqlite 写并发的 busy 噪音——
// 并发正确性靠服务层的键锁保证，这里只要求串行落盘。
func OpenDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", utils.NewID())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(
		&domain.User{}, &domain.Achievement{},
		&domain.Item{}, &domain.Like{}, &domain.Notification{},
	))
	return db
}

type UserOpt func(*domain.User)

func WithPoints(p uint) UserOpt          { return func(u *domain.User) { u.Points = p } }
func WithCreatedAt(ts time.Time) UserOpt { return func(u *domain.User) { u.CreatedAt = ts } }
func WithRole(r string) UserOpt          { return func(u *domain.User) { u.Role = r } }

func SeedUser(t *testing.T, db *gorm.DB, uid, name string, opts ...UserOpt) *domain.User {
	t.Helper()
	u := &domain.User{
		ID:     utils.NewID(),
		UID:    uid,
		Name:   name,
		Email:  uid + "@example.com",
		Role:   "user",
		Points: domain.WelcomePoints,
	}
	for _, o := range opts {
		o(u)
	}
	require.NoError(t, db.Create(u).Error)
	return u
}

type ItemOpt func(*domain.Item)

func WithStatus(s string) ItemOpt            { return func(i *domain.Item) { i.Status = s } }
func WithItemCreatedAt(ts time.Time) ItemOpt { return func(i *domain.Item) { i.CreatedAt = ts } }

func SeedItem(t *testing.T, db *gorm.DB, owner *domain.User, title string, opts ...ItemOpt) *domain.Item {
	t.Helper()
	it := &domain.Item{
		ID:          utils.NewID(),
		Title:       title,
		Description: "a " + title,
		ImageURL:    "https://img.example.com/" + title + ".jpg",
		OwnerID:     owner.ID,
		Status:      domain.StatusAvailable,
	}
	for _, o := range opts {
		o(it)
	}
	require.NoError(t, db.Create(it).Error)
	return it
}
