package rank_test

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
	"recircle-backend/internal/service/rank"
	"recircle-backend/internal/testutil"
)

func newService(db *gorm.DB) *rank.Service {
	users := repo.NewUserRepo(db)
	return rank.New(users, identity.NewRepoResolver(users), nil, 0, zap.NewNop())
}

func TestRank_TieBreaksByRegistrationTime(t *testing.T) {
	db := testutil.OpenDB(t)
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	testutil.SeedUser(t, db, "a", "Ann",
		testutil.WithPoints(100), testutil.WithCreatedAt(base))
	testutil.SeedUser(t, db, "b", "Ben",
		testutil.WithPoints(100), testutil.WithCreatedAt(base.Add(time.Hour)))
	svc := newService(db)
	ctx := context.Background()

	ra, err := svc.Rank(ctx, "a")
	require.NoError(t, err)
	rb, err := svc.Rank(ctx, "b")
	require.NoError(t, err)
	assert.Equal(t, 1, ra) // 同分，先注册者在前
	assert.Equal(t, 2, rb)

	// 插入更高分用户，所有名次顺延
	testutil.SeedUser(t, db, "c", "Cid",
		testutil.WithPoints(150), testutil.WithCreatedAt(base.Add(2*time.Hour)))
	rc, err := svc.Rank(ctx, "c")
	require.NoError(t, err)
	ra, _ = svc.Rank(ctx, "a")
	rb, _ = svc.Rank(ctx, "b")
	assert.Equal(t, 1, rc)
	assert.Equal(t, 2, ra)
	assert.Equal(t, 3, rb)
}

func TestRank_NotFound(t *testing.T) {
	db := testutil.OpenDB(t)
	svc := newService(db)
	_, err := svc.Rank(context.Background(), "ghost")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// 名次不缓存：分数一变下一次查询立即反映
func TestRank_FreshEveryCall(t *testing.T) {
	db := testutil.OpenDB(t)
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	a := testutil.SeedUser(t, db, "a", "Ann",
		testutil.WithPoints(50), testutil.WithCreatedAt(base))
	testutil.SeedUser(t, db, "b", "Ben",
		testutil.WithPoints(100), testutil.WithCreatedAt(base))
	svc := newService(db)
	ctx := context.Background()

	ra, err := svc.Rank(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, 2, ra)

	require.NoError(t, db.Model(&domain.User{}).
		Where("id = ?", a.ID).Update("points", 200).Error)
	ra, err = svc.Rank(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, 1, ra)
}

func TestLeaderboard_Ordering(t *testing.T) {
	db := testutil.OpenDB(t)
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	testutil.SeedUser(t, db, "a", "Ann",
		testutil.WithPoints(100), testutil.WithCreatedAt(base.Add(time.Hour)))
	testutil.SeedUser(t, db, "b", "Ben",
		testutil.WithPoints(100), testutil.WithCreatedAt(base))
	testutil.SeedUser(t, db, "c", "Cid",
		testutil.WithPoints(150), testutil.WithCreatedAt(base))
	svc := newService(db)

	entries, err := svc.Leaderboard(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, "c", entries[0].UID)
	assert.Equal(t, "b", entries[1].UID) // 同分先注册者在前
	assert.Equal(t, "a", entries[2].UID)
	for i, e := range entries {
		assert.Equal(t, i+1, e.Rank)
	}
}
