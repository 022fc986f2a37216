package repo

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"recircle-backend/internal/domain"
)

type UserRepo struct{ db *gorm.DB }

func NewUserRepo(db *gorm.DB) *UserRepo { return &UserRepo{db: db} }

func (r *UserRepo) FindByID(ctx context.Context, id string) (*domain.User, error) {
	var u domain.User
	err := r.db.WithContext(ctx).First(&u, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &u, err
}

func (r *UserRepo) FindByUID(ctx context.Context, uid string) (*domain.User, error) {
	var u domain.User
	err := r.db.WithContext(ctx).First(&u, "uid = ?", uid).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &u, err
}

func (r *UserRepo) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	var u domain.User
	err := r.db.WithContext(ctx).First(&u, "email = ?", email).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &u, err
}

// CountAhead 排在 u 前面的人数：分高，或同分但注册更早
func (r *UserRepo) CountAhead(ctx context.Context, u *domain.User) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&domain.User{}).
		Where("points > ? OR (points = ? AND created_at < ?)", u.Points, u.Points, u.CreatedAt).
		Count(&n).Error
	return n, err
}

// TopN 排行榜前 N：分数降序，同分先注册者在前
func (r *UserRepo) TopN(ctx context.Context, n int) ([]domain.User, error) {
	var users []domain.User
	err := r.db.WithContext(ctx).
		Order("points DESC, created_at ASC").
		Limit(n).Find(&users).Error
	return users, err
}

func (r *UserRepo) Achievements(ctx context.Context, userID string) ([]domain.Achievement, error) {
	var as []domain.Achievement
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at ASC").Find(&as).Error
	return as, err
}

func (r *UserRepo) List(ctx context.Context, q string, offset, limit int, withDeleted bool) ([]domain.User, int64, error) {
	tx := r.db.WithContext(ctx).Model(&domain.User{})
	if withDeleted {
		tx = tx.Unscoped()
	}
	if q != "" {
		like := "%" + q + "%"
		tx = tx.Where("email LIKE ? OR name LIKE ?", like, like)
	}
	var total int64
	if err := tx.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var users []domain.User
	if err := tx.Order("created_at DESC").Offset(offset).Limit(limit).Find(&users).Error; err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

func (r *UserRepo) SoftDelete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&domain.User{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}
