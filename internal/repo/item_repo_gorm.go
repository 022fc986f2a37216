package repo

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"recircle-backend/internal/domain"
)

type ItemRepo struct{ db *gorm.DB }

func NewItemRepo(db *gorm.DB) *ItemRepo { return &ItemRepo{db: db} }

func (r *ItemRepo) FindByID(ctx context.Context, id string) (*domain.Item, error) {
	var it domain.Item
	err := r.db.WithContext(ctx).Preload("Owner").First(&it, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &it, err
}

// ListCandidates 发现流候选：仅 available，排除 viewer 自己的和已赞过的，最新在前。
// viewerID 为空时不做排除（未知 viewer 的降级路径）。
func (r *ItemRepo) ListCandidates(ctx context.Context, viewerID string, limit int) ([]domain.Item, error) {
	q := r.db.WithContext(ctx).
		Preload("Owner").
		Where("status = ?", domain.StatusAvailable)
	if viewerID != "" {
		q = q.Where("owner_id <> ?", viewerID).
			Where("id NOT IN (?)", r.db.Model(&domain.Like{}).
				Select("item_id").Where("user_id = ?", viewerID))
	}
	if limit > 0 {
		q = q.Limit(limit)
	}
	var items []domain.Item
	err := q.Order("created_at DESC").Find(&items).Error
	return items, err
}

func (r *ItemRepo) ListByOwner(ctx context.Context, ownerID string) ([]domain.Item, error) {
	var items []domain.Item
	err := r.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("created_at DESC").Find(&items).Error
	return items, err
}

func (r *ItemRepo) CountLikes(ctx context.Context, itemID string) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&domain.Like{}).
		Where("item_id = ?", itemID).Count(&n).Error
	return n, err
}

// UpdateStatus 生命周期只能向前：available → claimed → donated
func (r *ItemRepo) UpdateStatus(ctx context.Context, id, to string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var it domain.Item
		if err := tx.First(&it, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrNotFound
			}
			return err
		}
		if !domain.CanTransition(it.Status, to) {
			return domain.ErrConflict
		}
		return tx.Model(&it).Update("status", to).Error
	})
}
