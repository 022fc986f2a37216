// Package rank 全量用户按积分的总排序。
package rank

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"recircle-backend/internal/core/cache"
	"recircle-backend/internal/domain"
	"recircle-backend/internal/identity"
	"recircle-backend/internal/repo"
)

type Entry struct {
	Rank   int    `json:"rank"`
	UID    string `json:"uid"`
	Name   string `json:"name"`
	Avatar string `json:"avatar"`
	Points uint   `json:"points"`
}

type board struct {
	Entries []Entry `json:"entries"`
}

type Service struct {
	users *repo.UserRepo
	ids   identity.Resolver
	cache *cache.Cache // 可为 nil：只影响排行榜视图，名次本身永远现算
	ttl   time.Duration
	log   *zap.Logger
}

func New(users *repo.UserRepo, ids identity.Resolver, c *cache.Cache, boardTTL time.Duration, log *zap.Logger) *Service {
	if boardTTL <= 0 {
		boardTTL = 30 * time.Second
	}
	return &Service{users: users, ids: ids, cache: c, ttl: boardTTL, log: log}
}

// Rank 1 起始名次：积分降序，同分先注册者在前。
// 每次调用对全量用户现算（O(n log n)），不维护增量索引——
// 用简单和新鲜换扩展性，这个体量下划算。
func (s *Service) Rank(ctx context.Context, uid string) (int, error) {
	u, err := s.ids.Resolve(ctx, uid)
	if err != nil {
		return 0, err
	}
	ahead, err := s.users.CountAhead(ctx, u)
	if err != nil {
		return 0, fmt.Errorf("%w: count ahead: %v", domain.ErrUpstream, err)
	}
	return int(ahead) + 1, nil
}

// Leaderboard 前 N 视图，短 TTL 缓存 + singleflight 合并回源
func (s *Service) Leaderboard(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	load := func(ctx context.Context) (*board, error) {
		users, err := s.users.TopN(ctx, limit)
		if err != nil {
			return nil, fmt.Errorf("%w: leaderboard: %v", domain.ErrUpstream, err)
		}
		b := &board{Entries: make([]Entry, 0, len(users))}
		for i, u := range users {
			b.Entries = append(b.Entries, Entry{
				Rank: i + 1, UID: u.UID, Name: u.Name, Avatar: u.Avatar, Points: u.Points,
			})
		}
		return b, nil
	}
	if s.cache == nil {
		b, err := load(ctx)
		if err != nil {
			return nil, err
		}
		return b.Entries, nil
	}
	key := fmt.Sprintf("rank:board:%d", limit)
	b, err := cache.GetOrLoadJSON[board](s.cache, ctx, key, s.ttl, load)
	if err != nil {
		// 缓存层故障不挡读，直接回源
		s.log.Warn("leaderboard cache", zap.Error(err))
		b, err = load(ctx)
		if err != nil {
			return nil, err
		}
	}
	return b.Entries, nil
}
