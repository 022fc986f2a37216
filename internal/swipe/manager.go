package swipe

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// Manager 每个 viewer 最多一个活动会话
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*Session

	loader  CandidateLoader
	toggler LikeToggler
	log     *zap.Logger
}

func NewManager(loader CandidateLoader, toggler LikeToggler, log *zap.Logger) *Manager {
	return &Manager{
		sessions: make(map[string]*Session),
		loader:   loader,
		toggler:  toggler,
		log:      log,
	}
}

// Start 新开会话；已有会话直接作废替换
func (m *Manager) Start(ctx context.Context, uid string) (*Session, error) {
	items, err := m.loader.ListCandidates(ctx, uid)
	if err != nil {
		return nil, err
	}
	s := newSession(uid, buildDeck(items), m.loader, m.toggler, m.log)
	m.mu.Lock()
	m.sessions[uid] = s
	m.mu.Unlock()
	m.log.Info("swipe session started", zap.String("uid", uid), zap.Int("deck", len(items)))
	return s, nil
}

func (m *Manager) Get(uid string) (*Session, error) {
	m.mu.RLock()
	s, ok := m.sessions[uid]
	m.mu.RUnlock()
	if !ok {
		return nil, ErrNoSession
	}
	return s, nil
}

// End 放弃会话
func (m *Manager) End(uid string) {
	m.mu.Lock()
	delete(m.sessions, uid)
	m.mu.Unlock()
}
