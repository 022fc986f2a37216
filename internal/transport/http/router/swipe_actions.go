package router

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"recircle-backend/internal/swipe"
	httpez "recircle-backend/internal/transport/http/httpez"
)

// 会话级错误 → 业务响应码
func swipeErr(err error) error {
	switch {
	case errors.Is(err, swipe.ErrNoSession):
		return httpez.NotFound("no active session, start first")
	case errors.Is(err, swipe.ErrExhausted):
		return httpez.BadRequest("deck exhausted, restart to continue")
	case errors.Is(err, swipe.ErrNothingToUndo):
		return httpez.BadRequest("nothing to undo")
	case errors.Is(err, swipe.ErrNotExhausted):
		return httpez.BadRequest("session still active")
	case errors.Is(err, swipe.ErrBadDirection):
		return httpez.BadRequest("direction must be like or dislike")
	default:
		return err
	}
}

func mountSwipeActions(authed httpez.EZ, d Deps) {
	type sessionOut struct {
		State    swipe.State `json:"state"`
		DeckSize int         `json:"deckSize"`
		Cursor   int         `json:"cursor"`
		Current  *swipe.Card `json:"current,omitempty"`
		Stats    swipe.Stats `json:"stats"`
	}
	snapshot := func(s *swipe.Session) sessionOut {
		out := sessionOut{
			State:    s.State(),
			DeckSize: s.DeckSize(),
			Cursor:   s.Cursor(),
			Stats:    s.Stats(),
		}
		if card, ok := s.Current(); ok {
			out.Current = &card
		}
		return out
	}

	// 开启（或重开）会话
	httpez.RegisterAction[struct{}, sessionOut](authed, httpez.Action[struct{}, sessionOut]{
		Method: http.MethodPost,
		Path:   "/swipe/start",
		Binder: httpez.BindNone,
		Auth:   true,
		Handler: func(c *gin.Context, _ *struct{}) (sessionOut, error) {
			s, err := d.Swipe.Start(c.Request.Context(), c.GetString("userId"))
			if err != nil {
				return sessionOut{}, err
			}
			return snapshot(s), nil
		},
	})

	// 决策：like / dislike；like 失败不挡牌堆前进，错误随响应带回
	type decideIn struct {
		Direction string `json:"direction" binding:"required,oneof=like dislike"`
	}
	type decideOut struct {
		swipe.DecideResult
		Session sessionOut `json:"session"`
	}
	httpez.RegisterAction[decideIn, decideOut](authed, httpez.Action[decideIn, decideOut]{
		Method: http.MethodPost,
		Path:   "/swipe/decide",
		Binder: httpez.BindJSON,
		Auth:   true,
		Handler: func(c *gin.Context, in *decideIn) (decideOut, error) {
			s, err := d.Swipe.Get(c.GetString("userId"))
			if err != nil {
				return decideOut{}, swipeErr(err)
			}
			res, err := s.Decide(c.Request.Context(), swipe.Direction(in.Direction), c.GetHeader("X-Idempotency-Key"))
			if err != nil {
				return decideOut{}, swipeErr(err)
			}
			return decideOut{DecideResult: res, Session: snapshot(s)}, nil
		},
	})

	// 回退最近一步
	type undoOut struct {
		swipe.UndoResult
		Session sessionOut `json:"session"`
	}
	httpez.RegisterAction[struct{}, undoOut](authed, httpez.Action[struct{}, undoOut]{
		Method: http.MethodPost,
		Path:   "/swipe/undo",
		Binder: httpez.BindNone,
		Auth:   true,
		Handler: func(c *gin.Context, _ *struct{}) (undoOut, error) {
			s, err := d.Swipe.Get(c.GetString("userId"))
			if err != nil {
				return undoOut{}, swipeErr(err)
			}
			res, err := s.Undo(c.Request.Context())
			if err != nil {
				return undoOut{}, swipeErr(err)
			}
			return undoOut{UndoResult: res, Session: snapshot(s)}, nil
		},
	})

	// 重开（默认只许耗尽后；force=1 强开）
	type restartQ struct {
		Force bool `form:"force"`
	}
	httpez.RegisterAction[restartQ, sessionOut](authed, httpez.Action[restartQ, sessionOut]{
		Method: http.MethodPost,
		Path:   "/swipe/restart",
		Binder: httpez.BindQuery,
		Auth:   true,
		Handler: func(c *gin.Context, in *restartQ) (sessionOut, error) {
			s, err := d.Swipe.Get(c.GetString("userId"))
			if err != nil {
				return sessionOut{}, swipeErr(err)
			}
			if err := s.Restart(c.Request.Context(), in.Force); err != nil {
				return sessionOut{}, swipeErr(err)
			}
			return snapshot(s), nil
		},
	})

	// 会话统计（现场从历史推导）
	httpez.RegisterAction[struct{}, sessionOut](authed, httpez.Action[struct{}, sessionOut]{
		Method: http.MethodGet,
		Path:   "/swipe/stats",
		Binder: httpez.BindNone,
		Auth:   true,
		Handler: func(c *gin.Context, _ *struct{}) (sessionOut, error) {
			s, err := d.Swipe.Get(c.GetString("userId"))
			if err != nil {
				return sessionOut{}, swipeErr(err)
			}
			return snapshot(s), nil
		},
	})

	// 放弃会话
	httpez.RegisterAction[struct{}, gin.H](authed, httpez.Action[struct{}, gin.H]{
		Method: http.MethodDelete,
		Path:   "/swipe",
		Binder: httpez.BindNone,
		Auth:   true,
		Handler: func(c *gin.Context, _ *struct{}) (gin.H, error) {
			d.Swipe.End(c.GetString("userId"))
			return gin.H{"ok": 1}, nil
		},
	})
}
