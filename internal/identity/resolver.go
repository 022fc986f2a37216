// Package identity 把外部身份主体 id 映射为本地用户。
// 以接口注入各服务，替代进程级单例，方便在测试里替换。
package identity

import (
	"context"
	"fmt"

	"recircle-backend/internal/domain"
	"recircle-backend/internal/repo"
)

type Resolver interface {
	// Resolve uid 未知时返回 domain.ErrNotFound，底层故障返回 domain.ErrUpstream
	Resolve(ctx context.Context, uid string) (*domain.User, error)
}

type RepoResolver struct{ users *repo.UserRepo }

func NewRepoResolver(users *repo.UserRepo) *RepoResolver { return &RepoResolver{users: users} }

func (r *RepoResolver) Resolve(ctx context.Context, uid string) (*domain.User, error) {
	u, err := r.users.FindByUID(ctx, uid)
	if err != nil {
		return nil, fmt.Errorf("%w: resolve %q: %v", domain.ErrUpstream, uid, err)
	}
	if u == nil {
		return nil, domain.ErrNotFound
	}
	return u, nil
}
