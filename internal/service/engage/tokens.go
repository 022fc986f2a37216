package engage

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// TokenStore 记录“某次携带幂等 token 的切换已经落盘的结果”。
// 超时重试带同一 token 时直接重放结果，避免把状态多翻一次。
type TokenStore interface {
	Get(ctx context.Context, key string) (ToggleResult, bool, error)
	Put(ctx context.Context, key string, res ToggleResult, ttl time.Duration) error
}

// RedisTokenStore 多实例部署用
type RedisTokenStore struct{ rdb *redis.Client }

func NewRedisTokenStore(rdb *redis.Client) *RedisTokenStore { return &RedisTokenStore{rdb: rdb} }

func (s *RedisTokenStore) Get(ctx context.Context, key string) (ToggleResult, bool, error) {
	b, err := s.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return ToggleResult{}, false, nil
	}
	if err != nil {
		return ToggleResult{}, false, err
	}
	var res ToggleResult
	if err := json.Unmarshal(b, &res); err != nil {
		return ToggleResult{}, false, err
	}
	return res, true, nil
}

func (s *RedisTokenStore) Put(ctx context.Context, key string, res ToggleResult, ttl time.Duration) error {
	b, err := json.Marshal(res)
	if err != nil {
		return err
	}
	return s.rdb.Set(ctx, key, b, ttl).Err()
}

// MemoryTokenStore 单实例 / 测试用
type MemoryTokenStore struct {
	mu sync.Mutex
	m  map[string]memToken
}

type memToken struct {
	res ToggleResult
	exp time.Time
}

func NewMemoryTokenStore() *MemoryTokenStore {
	return &MemoryTokenStore{m: make(map[string]memToken)}
}

func (s *MemoryTokenStore) Get(_ context.Context, key string) (ToggleResult, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.m[key]
	if !ok || time.Now().After(t.exp) {
		delete(s.m, key)
		return ToggleResult{}, false, nil
	}
	return t.res, true, nil
}

func (s *MemoryTokenStore) Put(_ context.Context, key string, res ToggleResult, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m[key] = memToken{res: res, exp: time.Now().Add(ttl)}
	return nil
}
