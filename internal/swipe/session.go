// Package swipe 发现流的滑动会话：牌堆、游标、可回退的操作历史。
// 会话只存在于内存，牌堆耗尽或被放弃即结束。
package swipe

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"recircle-backend/internal/domain"
	"recircle-backend/internal/service/engage"
)

type Direction string

const (
	DirLike    Direction = "like"
	DirDislike Direction = "dislike"
)

type State string

const (
	StateActive    State = "active"
	StateExhausted State = "exhausted"
)

var (
	ErrExhausted     = errors.New("deck exhausted")
	ErrNothingToUndo = errors.New("nothing to undo")
	ErrNotExhausted  = errors.New("session still active")
	ErrNoSession     = errors.New("no active session")
	ErrBadDirection  = errors.New("bad direction")
)

// CandidateLoader 目录协作方：给会话供牌
type CandidateLoader interface {
	ListCandidates(ctx context.Context, viewerUID string) ([]domain.Item, error)
}

// LikeToggler 点赞切换协作方；Undo 靠再切换一次完成反转
type LikeToggler interface {
	ToggleLike(ctx context.Context, uid, itemID, token string) (engage.ToggleResult, error)
}

type Card struct {
	ItemID      string `json:"itemId"`
	Title       string `json:"title"`
	Description string `json:"description"`
	ImageURL    string `json:"imageUrl"`
	OwnerName   string `json:"ownerName"`
	OwnerAvatar string `json:"ownerAvatar"`
}

// Action 历史栈的一帧。Confirmed=false 表示点赞网络调用没成功，
// 本地照样前进，由调用方决定要不要重试。
type Action struct {
	Direction Direction `json:"direction"`
	ItemID    string    `json:"itemId"`
	Confirmed bool      `json:"confirmed"`
	At        time.Time `json:"at"`
}

type Stats struct {
	TotalViewed   int `json:"totalViewed"`
	TotalLiked    int `json:"totalLiked"`
	TotalDisliked int `json:"totalDisliked"`
	Remaining     int `json:"remaining"`
}

// Session 单个 viewer 的滑动会话。
// 约定调用方自己串行（切换请求未返回时禁用输入），锁只是兜底。
// 牌堆从最后一张往前消费，游标递减，-1 即耗尽。
type Session struct {
	mu      sync.Mutex
	uid     string
	deck    []Card
	cursor  int
	history []Action

	loader  CandidateLoader
	toggler LikeToggler
	log     *zap.Logger
}

func newSession(uid string, deck []Card, loader CandidateLoader, toggler LikeToggler, log *zap.Logger) *Session {
	return &Session{
		uid:     uid,
		deck:    deck,
		cursor:  len(deck) - 1,
		loader:  loader,
		toggler: toggler,
		log:     log,
	}
}

func (s *Session) state() State {
	if s.cursor < 0 {
		return StateExhausted
	}
	return StateActive
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state()
}

type DecideResult struct {
	State      State  `json:"state"`
	Cursor     int    `json:"cursor"`
	Liked      bool   `json:"liked"`
	LikesCount int64  `json:"likesCount"`
	LikeErr    string `json:"likeError,omitempty"` // 上报给调用方做对账/重试
}

// Decide 只在 Active 下合法。like 先同步调切换服务，失败也照样记录、
// 照样前进——把已划走的牌再亮回来会毁掉滑动的体感。
func (s *Session) Decide(ctx context.Context, dir Direction, token string) (DecideResult, error) {
	if dir != DirLike && dir != DirDislike {
		return DecideResult{}, ErrBadDirection
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state() != StateActive {
		return DecideResult{}, ErrExhausted
	}

	card := s.deck[s.cursor]
	act := Action{Direction: dir, ItemID: card.ItemID, Confirmed: true, At: time.Now()}
	var res DecideResult
	if dir == DirLike {
		tr, err := s.toggler.ToggleLike(ctx, s.uid, card.ItemID, token)
		if err != nil {
			act.Confirmed = false
			res.LikeErr = err.Error()
			s.log.Warn("swipe like failed, advancing anyway",
				zap.String("uid", s.uid), zap.String("item", card.ItemID), zap.Error(err))
		} else {
			res.Liked = tr.Liked
			res.LikesCount = tr.LikesCount
		}
	}

	s.history = append(s.history, act)
	s.cursor--
	res.State = s.state()
	res.Cursor = s.cursor
	return res, nil
}

type UndoResult struct {
	State      State  `json:"state"`
	Cursor     int    `json:"cursor"`
	Undone     Action `json:"undone"`
	LikesCount int64  `json:"likesCount,omitempty"`
	LikeErr    string `json:"likeError,omitempty"`
}

// Undo 单级回退：每次只撤最近一步，连续 Undo 沿历史继续往回走。
// like 的撤销靠再切换一次（切换的奇偶性保证恰好反转）。
// 本地游标/历史的恢复不等网络结果。
func (s *Session) Undo(ctx context.Context) (UndoResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.history) == 0 || s.cursor >= len(s.deck)-1 {
		return UndoResult{}, ErrNothingToUndo
	}

	act := s.history[len(s.history)-1]
	s.history = s.history[:len(s.history)-1]
	s.cursor++

	res := UndoResult{Undone: act}
	if act.Direction == DirLike && act.Confirmed {
		tr, err := s.toggler.ToggleLike(ctx, s.uid, act.ItemID, "")
		if err != nil {
			res.LikeErr = err.Error()
			s.log.Warn("undo toggle failed", zap.String("item", act.ItemID), zap.Error(err))
		} else {
			res.LikesCount = tr.LikesCount
		}
	}
	res.State = s.state()
	res.Cursor = s.cursor
	return res, nil
}

// Restart 只有 Exhausted 能重开（force 可以强行重开）：
// 重新取候选、游标回到顶、历史清空
func (s *Session) Restart(ctx context.Context, force bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state() != StateExhausted && !force {
		return ErrNotExhausted
	}
	items, err := s.loader.ListCandidates(ctx, s.uid)
	if err != nil {
		return err
	}
	s.deck = buildDeck(items)
	s.cursor = len(s.deck) - 1
	s.history = nil
	return nil
}

// Stats 现场从历史推导，不单独存
func (s *Session) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := Stats{TotalViewed: len(s.history)}
	for _, a := range s.history {
		if a.Direction == DirLike {
			st.TotalLiked++
		} else {
			st.TotalDisliked++
		}
	}
	if s.cursor+1 > 0 {
		st.Remaining = s.cursor + 1
	}
	return st
}

// Current 当前牌面（Active 下有效）
func (s *Session) Current() (Card, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state() != StateActive {
		return Card{}, false
	}
	return s.deck[s.cursor], true
}

func (s *Session) Cursor() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cursor
}

func (s *Session) DeckSize() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.deck)
}

func buildDeck(items []domain.Item) []Card {
	deck := make([]Card, 0, len(items))
	// 目录给的是最新在前；牌堆从末位往前消费，所以倒着摆，
	// 让最新的一张落在堆顶
	for i := len(items) - 1; i >= 0; i-- {
		it := items[i]
		c := Card{
			ItemID:      it.ID,
			Title:       it.Title,
			Description: it.Description,
			ImageURL:    it.ImageURL,
		}
		if it.Owner != nil {
			c.OwnerName = it.Owner.Name
			c.OwnerAvatar = it.Owner.Avatar
		}
		deck = append(deck, c)
	}
	return deck
}
