package account_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"recircle-backend/internal/domain"
	"recircle-backend/internal/repo"
	"recircle-backend/internal/service/account"
	"recircle-backend/internal/testutil"
)

func newService(db *gorm.DB) *account.Service {
	return account.New(db, repo.NewUserRepo(db))
}

func TestRegister_GrantsWelcome(t *testing.T) {
	db := testutil.OpenDB(t)
	svc := newService(db)

	u, err := svc.Register(context.Background(), account.RegisterInput{
		Email:    "ann@example.com",
		Password: "secret123",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, u.ID)
	assert.NotEmpty(t, u.UID) // 没给外部 uid 就自发一个
	assert.Equal(t, "ann", u.Name)
	assert.Equal(t, "user", u.Role)
	assert.EqualValues(t, domain.WelcomePoints, u.Points)

	as, err := svc.Achievements(context.Background(), u.UID)
	require.NoError(t, err)
	require.Len(t, as, 1)
	assert.Equal(t, "Welcome to ReCircle!", as[0].Title)
	assert.EqualValues(t, domain.WelcomePoints, as[0].Points)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	db := testutil.OpenDB(t)
	svc := newService(db)
	ctx := context.Background()

	_, err := svc.Register(ctx, account.RegisterInput{Email: "ann@example.com", Password: "x"})
	require.NoError(t, err)
	_, err = svc.Register(ctx, account.RegisterInput{Email: "ann@example.com", Password: "y"})
	assert.ErrorIs(t, err, account.ErrExists)
}

func TestLogin(t *testing.T) {
	db := testutil.OpenDB(t)
	svc := newService(db)
	ctx := context.Background()

	reg, err := svc.Register(ctx, account.RegisterInput{Email: "ann@example.com", Password: "secret123"})
	require.NoError(t, err)

	u, err := svc.Login(ctx, "ann@example.com", "secret123")
	require.NoError(t, err)
	assert.Equal(t, reg.ID, u.ID)

	_, err = svc.Login(ctx, "ann@example.com", "wrong")
	assert.ErrorIs(t, err, account.ErrBadCredentials)
	_, err = svc.Login(ctx, "nobody@example.com", "secret123")
	assert.ErrorIs(t, err, account.ErrBadCredentials)
}

func TestProfile_NotFound(t *testing.T) {
	db := testutil.OpenDB(t)
	_, err := newService(db).Profile(context.Background(), "ghost")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
