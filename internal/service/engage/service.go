// Package engage 实现点赞切换——整个互动子系统唯一的状态迁移原语。
package engage

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"recircle-backend/internal/domain"
	"recircle-backend/internal/identity"
)

var (
	toggleTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "engage_toggle_total", Help: "Count of like toggles by outcome"},
		[]string{"outcome"}, // like / unlike
	)
	tokenReplayTotal = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "engage_token_replay_total", Help: "Idempotency token replays"},
	)
)

func init() { prometheus.MustRegister(toggleTotal, tokenReplayTotal) }

type ToggleResult struct {
	Liked      bool  `json:"liked"`
	LikesCount int64 `json:"likesCount"`
}

type Service struct {
	db     *gorm.DB
	ids    identity.Resolver
	locks  *keyLock
	tokens TokenStore
	ttl    time.Duration
	log    *zap.Logger
}

func New(db *gorm.DB, ids identity.Resolver, tokens TokenStore, tokenTTL time.Duration, log *zap.Logger) *Service {
	if tokens == nil {
		tokens = NewMemoryTokenStore()
	}
	if tokenTTL <= 0 {
		tokenTTL = 10 * time.Minute
	}
	return &Service{
		db:     db,
		ids:    ids,
		locks:  newKeyLock(),
		tokens: tokens,
		ttl:    tokenTTL,
		log:    log,
	}
}

// ToggleLike 对 (user,item) 做纯切换：
// 未赞则建立关系并通知物主（自赞不通知），已赞则解除。
// token 非空时同一 token 的重试直接重放上次结果。
// likesCount 一律在变更后现数，不缓存。
func (s *Service) ToggleLike(ctx context.Context, uid, itemID, token string) (ToggleResult, error) {
	user, err := s.ids.Resolve(ctx, uid)
	if err != nil {
		return ToggleResult{}, err
	}

	tokenKey := ""
	if token != "" {
		tokenKey = fmt.Sprintf("engage:tok:%s:%s:%s", user.ID, itemID, token)
		if res, ok, terr := s.tokens.Get(ctx, tokenKey); terr == nil && ok {
			tokenReplayTotal.Inc()
			return res, nil
		}
	}

	// 同键并发切换必须串行；不同键互不相干
	unlock := s.locks.Lock(user.ID + "|" + itemID)
	defer unlock()

	var res ToggleResult
	// 锁挡不住别的进程实例，唯一键冲突时重读一次
	for attempt := 0; ; attempt++ {
		res, err = s.toggleTx(ctx, user, itemID)
		if errors.Is(err, domain.ErrConflict) && attempt == 0 {
			continue
		}
		break
	}
	if err != nil {
		return ToggleResult{}, err
	}

	if tokenKey != "" {
		if terr := s.tokens.Put(ctx, tokenKey, res, s.ttl); terr != nil {
			s.log.Warn("token store put", zap.Error(terr))
		}
	}
	outcome := "unlike"
	if res.Liked {
		outcome = "like"
	}
	toggleTotal.WithLabelValues(outcome).Inc()
	return res, nil
}

// toggleTx 双边变更（用户已赞集合 ↔ 物品点赞者集合）落在 likes 单表上，
// 同通知追加一起跑在一个事务里，不存在半边生效的中间态。
func (s *Service) toggleTx(ctx context.Context, user *domain.User, itemID string) (ToggleResult, error) {
	var res ToggleResult
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var it domain.Item
		if err := tx.First(&it, "id = ?", itemID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrNotFound
			}
			return err
		}

		var lk domain.Like
		err := tx.First(&lk, "user_id = ? AND item_id = ?", user.ID, itemID).Error
		switch {
		case err == nil:
			// 解除：删关系行，不动历史通知
			if err := tx.Delete(&domain.Like{}, "user_id = ? AND item_id = ?", user.ID, itemID).Error; err != nil {
				return err
			}
			res.Liked = false

		case errors.Is(err, gorm.ErrRecordNotFound):
			if err := tx.Create(&domain.Like{UserID: user.ID, ItemID: itemID}).Error; err != nil {
				if isDupKey(err) {
					return domain.ErrConflict
				}
				return err
			}
			res.Liked = true
			if it.OwnerID != user.ID {
				n := domain.Notification{
					UserID:   it.OwnerID,
					Kind:     domain.NotifKindLike,
					ItemName: it.Title,
					LikedBy:  user.Name,
					Contact:  user.Email,
					Message:  fmt.Sprintf("%s has liked your item %s\nContact: %s", user.Name, it.Title, user.Email),
				}
				if err := tx.Create(&n).Error; err != nil {
					return err
				}
			}

		default:
			return err
		}

		var n int64
		if err := tx.Model(&domain.Like{}).Where("item_id = ?", itemID).Count(&n).Error; err != nil {
			return err
		}
		res.LikesCount = n
		return nil
	})
	return res, err
}

func isDupKey(err error) bool {
	// 不依赖 gorm.ErrDuplicatedKey，避免版本差异导致“undefined”
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate") ||
		strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "unique violation") ||
		strings.Contains(msg, "unique failed") ||
		strings.Contains(msg, "duplicate key")
}
