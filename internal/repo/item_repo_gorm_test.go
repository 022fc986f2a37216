package repo_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"recircle-backend/internal/domain"
	"recircle-backend/internal/repo"
	"recircle-backend/internal/testutil"
)

func TestItemRepo_UpdateStatus_ForwardOnly(t *testing.T) {
	db := testutil.OpenDB(t)
	owner := testutil.SeedUser(t, db, "owner", "Olivia")
	item := testutil.SeedItem(t, db, owner, "bike")
	r := repo.NewItemRepo(db)
	ctx := context.Background()

	require.NoError(t, r.UpdateStatus(ctx, item.ID, domain.StatusClaimed))
	// 回退与跳级都被拒
	assert.ErrorIs(t, r.UpdateStatus(ctx, item.ID, domain.StatusAvailable), domain.ErrConflict)
	require.NoError(t, r.UpdateStatus(ctx, item.ID, domain.StatusDonated))
	assert.ErrorIs(t, r.UpdateStatus(ctx, item.ID, domain.StatusClaimed), domain.ErrConflict)

	it, err := r.FindByID(ctx, item.ID)
	require.NoError(t, err)
	require.NotNil(t, it)
	assert.Equal(t, domain.StatusDonated, it.Status)

	assert.ErrorIs(t, r.UpdateStatus(ctx, "no-such-item", domain.StatusClaimed), domain.ErrNotFound)
}

func TestItemRepo_FindByID_Missing(t *testing.T) {
	db := testutil.OpenDB(t)
	it, err := repo.NewItemRepo(db).FindByID(context.Background(), "nope")
	require.NoError(t, err)
	assert.Nil(t, it)
}
