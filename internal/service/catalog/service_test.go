package catalog_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"recircle-backend/internal/domain"
	"recircle-backend/internal/identity"
	"recircle-backend/internal/repo"
	"recircle-backend/internal/service/catalog"
	"recircle-backend/internal/testutil"
)

func newService(db *gorm.DB) *catalog.Service {
	ids := identity.NewRepoResolver(repo.NewUserRepo(db))
	return catalog.New(db, repo.NewItemRepo(db), ids, 0, zap.NewNop())
}

func TestListCandidates_Filters(t *testing.T) {
	db := testutil.OpenDB(t)
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	viewer := testutil.SeedUser(t, db, "viewer", "Vik")
	other := testutil.SeedUser(t, db, "other", "Oba")

	mine := testutil.SeedItem(t, db, viewer, "mine")
	older := testutil.SeedItem(t, db, other, "older", testutil.WithItemCreatedAt(base))
	newer := testutil.SeedItem(t, db, other, "newer", testutil.WithItemCreatedAt(base.Add(time.Hour)))
	liked := testutil.SeedItem(t, db, other, "liked")
	claimed := testutil.SeedItem(t, db, other, "claimed", testutil.WithStatus(domain.StatusClaimed))
	require.NoError(t, db.Create(&domain.Like{UserID: viewer.ID, ItemID: liked.ID}).Error)

	items, err := newService(db).ListCandidates(context.Background(), viewer.UID)
	require.NoError(t, err)

	got := make([]string, 0, len(items))
	for _, it := range items {
		got = append(got, it.ID)
	}
	assert.NotContains(t, got, mine.ID)    // 自己的不出现
	assert.NotContains(t, got, liked.ID)   // 赞过的不出现
	assert.NotContains(t, got, claimed.ID) // 非 available 不出现
	require.Len(t, items, 2)
	assert.Equal(t, newer.ID, items[0].ID) // 最新在前
	assert.Equal(t, older.ID, items[1].ID)
	// 物主信息随卡片带出
	require.NotNil(t, items[0].Owner)
	assert.Equal(t, "Oba", items[0].Owner.Name)
}

// 未知 viewer 跳过排除条件而不是失败
func TestListCandidates_UnknownViewerUnfiltered(t *testing.T) {
	db := testutil.OpenDB(t)
	owner := testutil.SeedUser(t, db, "owner", "Olivia")
	testutil.SeedItem(t, db, owner, "bike")
	testutil.SeedItem(t, db, owner, "lamp")

	items, err := newService(db).ListCandidates(context.Background(), "stale-or-unknown")
	require.NoError(t, err)
	assert.Len(t, items, 2)
}

func TestAddItem_GrantsPointsAndAchievement(t *testing.T) {
	db := testutil.OpenDB(t)
	owner := testutil.SeedUser(t, db, "owner", "Olivia", testutil.WithPoints(domain.WelcomePoints))
	svc := newService(db)

	item, err := svc.AddItem(context.Background(), owner.UID, catalog.AddItemInput{
		Title:       "bike",
		Description: "city bike, working",
		ImageURL:    "https://img.example.com/bike.jpg",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusAvailable, item.Status)
	assert.Equal(t, owner.ID, item.OwnerID)

	var u domain.User
	require.NoError(t, db.First(&u, "id = ?", owner.ID).Error)
	assert.EqualValues(t, domain.WelcomePoints+domain.ItemPoints, u.Points)

	var as []domain.Achievement
	require.NoError(t, db.Where("user_id = ?", owner.ID).Find(&as).Error)
	require.Len(t, as, 1)
	assert.Equal(t, "Added item: bike", as[0].Title)
	assert.EqualValues(t, domain.ItemPoints, as[0].Points)
}

func TestAddItem_UnknownOwner(t *testing.T) {
	db := testutil.OpenDB(t)
	_, err := newService(db).AddItem(context.Background(), "ghost", catalog.AddItemInput{
		Title: "x", Description: "y", ImageURL: "https://img.example.com/x.jpg",
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDetail(t *testing.T) {
	db := testutil.OpenDB(t)
	owner := testutil.SeedUser(t, db, "owner", "Olivia")
	liker := testutil.SeedUser(t, db, "liker", "Liam")
	item := testutil.SeedItem(t, db, owner, "bike")
	require.NoError(t, db.Create(&domain.Like{UserID: liker.ID, ItemID: item.ID}).Error)

	d, err := newService(db).Detail(context.Background(), item.ID)
	require.NoError(t, err)
	assert.Equal(t, item.ID, d.Item.ID)
	assert.EqualValues(t, 1, d.LikesCount)
	require.NotNil(t, d.Item.Owner)
	assert.Equal(t, "Olivia", d.Item.Owner.Name)

	_, err = newService(db).Detail(context.Background(), "no-such-item")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestUserItems(t *testing.T) {
	db := testutil.OpenDB(t)
	a := testutil.SeedUser(t, db, "a", "Ann")
	b := testutil.SeedUser(t, db, "b", "Ben")
	testutil.SeedItem(t, db, a, "bike")
	testutil.SeedItem(t, db, b, "lamp")

	items, err := newService(db).UserItems(context.Background(), a.UID)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "bike", items[0].Title)
}
