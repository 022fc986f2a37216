// Package catalog 物品目录：候选列表、上架、我的物品。
package catalog

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"recircle-backend/internal/domain"
	"recircle-backend/internal/identity"
	"recircle-backend/internal/repo"
	"recircle-backend/pkg/utils"
)

type Service struct {
	db      *gorm.DB
	items   *repo.ItemRepo
	ids     identity.Resolver
	maxDeck int
	log     *zap.Logger
}

func New(db *gorm.DB, items *repo.ItemRepo, ids identity.Resolver, maxDeck int, log *zap.Logger) *Service {
	return &Service{db: db, items: items, ids: ids, maxDeck: maxDeck, log: log}
}

// ListCandidates 发现流候选，只读。
// viewer 解析不到时跳过排除条件而不是整个失败——
// 过期/未知的 viewer id 不应该把发现流整个堵死。
func (s *Service) ListCandidates(ctx context.Context, viewerUID string) ([]domain.Item, error) {
	viewerID := ""
	if viewerUID != "" {
		u, err := s.ids.Resolve(ctx, viewerUID)
		switch {
		case err == nil:
			viewerID = u.ID
		case errors.Is(err, domain.ErrNotFound):
			s.log.Warn("unknown viewer, listing unfiltered", zap.String("uid", viewerUID))
		default:
			return nil, err
		}
	}
	items, err := s.items.ListCandidates(ctx, viewerID, s.maxDeck)
	if err != nil {
		return nil, fmt.Errorf("%w: list candidates: %v", domain.ErrUpstream, err)
	}
	return items, nil
}

type AddItemInput struct {
	Title       string
	Description string
	ImageURL    string
}

// AddItem 上架 + 加 10 分 + 记一条成就，一个事务内完成
func (s *Service) AddItem(ctx context.Context, uid string, in AddItemInput) (*domain.Item, error) {
	owner, err := s.ids.Resolve(ctx, uid)
	if err != nil {
		return nil, err
	}
	item := &domain.Item{
		ID:          utils.NewID(),
		Title:       in.Title,
		Description: in.Description,
		ImageURL:    in.ImageURL,
		OwnerID:     owner.ID,
		Status:      domain.StatusAvailable,
	}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(item).Error; err != nil {
			return err
		}
		if err := tx.Model(&domain.User{}).Where("id = ?", owner.ID).
			Update("points", gorm.Expr("points + ?", domain.ItemPoints)).Error; err != nil {
			return err
		}
		return tx.Create(&domain.Achievement{
			UserID:      owner.ID,
			Title:       fmt.Sprintf("Added item: %s", in.Title),
			Description: "Thanks for contributing!",
			Points:      domain.ItemPoints,
		}).Error
	})
	if err != nil {
		return nil, err
	}
	return item, nil
}

type ItemDetail struct {
	Item       *domain.Item `json:"item"`
	LikesCount int64        `json:"likesCount"`
}

// Detail 单件物品详情，点赞数现数
func (s *Service) Detail(ctx context.Context, itemID string) (*ItemDetail, error) {
	it, err := s.items.FindByID(ctx, itemID)
	if err != nil {
		return nil, fmt.Errorf("%w: item detail: %v", domain.ErrUpstream, err)
	}
	if it == nil {
		return nil, domain.ErrNotFound
	}
	n, err := s.items.CountLikes(ctx, itemID)
	if err != nil {
		return nil, fmt.Errorf("%w: count likes: %v", domain.ErrUpstream, err)
	}
	return &ItemDetail{Item: it, LikesCount: n}, nil
}

// UserItems 用户上架过的物品（物品属性以目录为准，不在用户侧存标题）
func (s *Service) UserItems(ctx context.Context, uid string) ([]domain.Item, error) {
	u, err := s.ids.Resolve(ctx, uid)
	if err != nil {
		return nil, err
	}
	return s.items.ListByOwner(ctx, u.ID)
}
