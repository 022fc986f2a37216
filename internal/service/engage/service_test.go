package engage_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"recircle-backend/internal/domain"
	"recircle-backend/internal/identity"
	"recircle-backend/internal/repo"
	"recircle-backend/internal/service/engage"
	"recircle-backend/internal/testutil"
)

func newService(t *testing.T, db *gorm.DB) *engage.Service {
	t.Helper()
	ids := identity.NewRepoResolver(repo.NewUserRepo(db))
	return engage.New(db, ids, engage.NewMemoryTokenStore(), time.Minute, zap.NewNop())
}

func likeRows(t *testing.T, db *gorm.DB, itemID string) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(&domain.Like{}).Where("item_id = ?", itemID).Count(&n).Error)
	return n
}

func TestToggleLike_LikeThenUnlike(t *testing.T) {
	db := testutil.OpenDB(t)
	owner := testutil.SeedUser(t, db, "owner", "Olivia")
	liker := testutil.SeedUser(t, db, "liker", "Liam")
	item := testutil.SeedItem(t, db, owner, "bike")
	svc := newService(t, db)
	ctx := context.Background()

	res, err := svc.ToggleLike(ctx, liker.UID, item.ID, "")
	require.NoError(t, err)
	assert.True(t, res.Liked)
	assert.EqualValues(t, 1, res.LikesCount)

	res, err = svc.ToggleLike(ctx, liker.UID, item.ID, "")
	require.NoError(t, err)
	assert.False(t, res.Liked)
	assert.EqualValues(t, 0, res.LikesCount)
	assert.EqualValues(t, 0, likeRows(t, db, item.ID))
}

func TestToggleLike_NotFound(t *testing.T) {
	db := testutil.OpenDB(t)
	owner := testutil.SeedUser(t, db, "owner", "Olivia")
	item := testutil.SeedItem(t, db, owner, "bike")
	svc := newService(t, db)
	ctx := context.Background()

	_, err := svc.ToggleLike(ctx, "ghost", item.ID, "")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = svc.ToggleLike(ctx, owner.UID, "no-such-item", "")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// 偶数次回到原点，奇数次恰好翻一次
func TestToggleLike_Parity(t *testing.T) {
	db := testutil.OpenDB(t)
	owner := testutil.SeedUser(t, db, "owner", "Olivia")
	liker := testutil.SeedUser(t, db, "liker", "Liam")
	item := testutil.SeedItem(t, db, owner, "bike")
	svc := newService(t, db)
	ctx := context.Background()

	for i := 1; i <= 5; i++ {
		res, err := svc.ToggleLike(ctx, liker.UID, item.ID, "")
		require.NoError(t, err)
		wantLiked := i%2 == 1
		assert.Equal(t, wantLiked, res.Liked, "toggle #%d", i)
		if wantLiked {
			assert.EqualValues(t, 1, res.LikesCount)
		} else {
			assert.EqualValues(t, 0, res.LikesCount)
		}
	}
}

// 双边关系落在同一张 likes 表上：两个方向的视图必然一致
func TestToggleLike_Bijection(t *testing.T) {
	db := testutil.OpenDB(t)
	owner := testutil.SeedUser(t, db, "owner", "Olivia")
	a := testutil.SeedUser(t, db, "ua", "Ann")
	b := testutil.SeedUser(t, db, "ub", "Ben")
	item := testutil.SeedItem(t, db, owner, "bike")
	svc := newService(t, db)
	ctx := context.Background()

	_, err := svc.ToggleLike(ctx, a.UID, item.ID, "")
	require.NoError(t, err)
	res, err := svc.ToggleLike(ctx, b.UID, item.ID, "")
	require.NoError(t, err)
	assert.EqualValues(t, 2, res.LikesCount)

	// a 侧解除后，物品侧点赞数同步回落
	res, err = svc.ToggleLike(ctx, a.UID, item.ID, "")
	require.NoError(t, err)
	assert.False(t, res.Liked)
	assert.EqualValues(t, 1, res.LikesCount)

	var fromUserSide int64
	require.NoError(t, db.Model(&domain.Like{}).Where("user_id = ?", b.ID).Count(&fromUserSide).Error)
	assert.EqualValues(t, 1, fromUserSide)
}

func TestToggleLike_NotifiesOwner(t *testing.T) {
	db := testutil.OpenDB(t)
	owner := testutil.SeedUser(t, db, "owner", "Olivia")
	liker := testutil.SeedUser(t, db, "liker", "Liam")
	item := testutil.SeedItem(t, db, owner, "bike")
	svc := newService(t, db)
	ctx := context.Background()

	_, err := svc.ToggleLike(ctx, liker.UID, item.ID, "")
	require.NoError(t, err)

	var ns []domain.Notification
	require.NoError(t, db.Where("user_id = ?", owner.ID).Find(&ns).Error)
	require.Len(t, ns, 1)
	assert.Equal(t, domain.NotifKindLike, ns[0].Kind)
	assert.Equal(t, "bike", ns[0].ItemName)
	assert.Equal(t, "Liam", ns[0].LikedBy)
	assert.Equal(t, liker.Email, ns[0].Contact)
	assert.False(t, ns[0].Read)

	// 解除不追加也不删除通知
	_, err = svc.ToggleLike(ctx, liker.UID, item.ID, "")
	require.NoError(t, err)
	require.NoError(t, db.Where("user_id = ?", owner.ID).Find(&ns).Error)
	assert.Len(t, ns, 1)
}

func TestToggleLike_NoSelfNotification(t *testing.T) {
	db := testutil.OpenDB(t)
	owner := testutil.SeedUser(t, db, "owner", "Olivia")
	item := testutil.SeedItem(t, db, owner, "bike")
	svc := newService(t, db)

	res, err := svc.ToggleLike(context.Background(), owner.UID, item.ID, "")
	require.NoError(t, err)
	assert.True(t, res.Liked)

	var n int64
	require.NoError(t, db.Model(&domain.Notification{}).Count(&n).Error)
	assert.EqualValues(t, 0, n)
}

// 同一 token 的重试重放结果，不再翻状态
func TestToggleLike_TokenReplay(t *testing.T) {
	db := testutil.OpenDB(t)
	owner := testutil.SeedUser(t, db, "owner", "Olivia")
	liker := testutil.SeedUser(t, db, "liker", "Liam")
	item := testutil.SeedItem(t, db, owner, "bike")
	svc := newService(t, db)
	ctx := context.Background()

	first, err := svc.ToggleLike(ctx, liker.UID, item.ID, "tok-1")
	require.NoError(t, err)
	assert.True(t, first.Liked)

	replay, err := svc.ToggleLike(ctx, liker.UID, item.ID, "tok-1")
	require.NoError(t, err)
	assert.Equal(t, first, replay)
	assert.EqualValues(t, 1, likeRows(t, db, item.ID))

	// 换 token 才是真的下一次切换
	next, err := svc.ToggleLike(ctx, liker.UID, item.ID, "tok-2")
	require.NoError(t, err)
	assert.False(t, next.Liked)
}

// 同键并发切换必须串行：任意并发度下表里最多一行，奇偶与次数一致
func TestToggleLike_ConcurrentSamePair(t *testing.T) {
	db := testutil.OpenDB(t)
	owner := testutil.SeedUser(t, db, "owner", "Olivia")
	liker := testutil.SeedUser(t, db, "liker", "Liam")
	item := testutil.SeedItem(t, db, owner, "bike")
	svc := newService(t, db)

	const n = 8
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func() {
			defer wg.Done()
			_, err := svc.ToggleLike(context.Background(), liker.UID, item.ID, "")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	// n 为偶数 → 回到未赞
	assert.EqualValues(t, 0, likeRows(t, db, item.ID))
}
