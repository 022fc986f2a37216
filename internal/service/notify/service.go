// Package notify 物主通知日志的读取和批量已读。
package notify

import (
	"context"
	"fmt"

	"recircle-backend/internal/domain"
	"recircle-backend/internal/identity"
	"recircle-backend/internal/repo"
)

type Service struct {
	notifs *repo.NotificationRepo
	ids    identity.Resolver
}

func New(notifs *repo.NotificationRepo, ids identity.Resolver) *Service {
	return &Service{notifs: notifs, ids: ids}
}

// ListUnread 未读通知，最新在前
func (s *Service) ListUnread(ctx context.Context, uid string) ([]domain.Notification, error) {
	u, err := s.ids.Resolve(ctx, uid)
	if err != nil {
		return nil, err
	}
	ns, err := s.notifs.ListUnread(ctx, u.ID)
	if err != nil {
		return nil, fmt.Errorf("%w: list unread: %v", domain.ErrUpstream, err)
	}
	return ns, nil
}

// MarkAllRead 全量置已读，幂等；不支持单条确认
func (s *Service) MarkAllRead(ctx context.Context, uid string) error {
	u, err := s.ids.Resolve(ctx, uid)
	if err != nil {
		return err
	}
	return s.notifs.MarkAllRead(ctx, u.ID)
}
