package router

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"recircle-backend/internal/service/catalog"
	"recircle-backend/internal/service/engage"
	httpez "recircle-backend/internal/transport/http/httpez"
)

func mountEngageActions(pub, authed httpez.EZ, d Deps) {
	// 发现流候选（viewer 未知时自动降级为不过滤）
	httpez.RegisterAction[struct{}, gin.H](authed, httpez.Action[struct{}, gin.H]{
		Method: http.MethodGet,
		Path:   "/items/candidates",
		Binder: httpez.BindNone,
		Auth:   true,
		Handler: func(c *gin.Context, _ *struct{}) (gin.H, error) {
			items, err := d.Catalog.ListCandidates(c.Request.Context(), c.GetString("userId"))
			if err != nil {
				return nil, err
			}
			return gin.H{"items": items}, nil
		},
	})

	// 上架（图片已由外部图床托管，这里只收 URL）
	type addIn struct {
		Title       string `json:"title"       binding:"required,max=128"`
		Description string `json:"description" binding:"required,max=1024"`
		ImageURL    string `json:"imageUrl"    binding:"required,url"`
	}
	httpez.RegisterAction[addIn, gin.H](authed, httpez.Action[addIn, gin.H]{
		Method: http.MethodPost,
		Path:   "/items",
		Binder: httpez.BindJSON,
		Auth:   true,
		Handler: func(c *gin.Context, in *addIn) (gin.H, error) {
			item, err := d.Catalog.AddItem(c.Request.Context(), c.GetString("userId"), catalog.AddItemInput{
				Title: in.Title, Description: in.Description, ImageURL: in.ImageURL,
			})
			if err != nil {
				return nil, err
			}
			return gin.H{"item": item}, nil
		},
	})

	// 我的物品
	httpez.RegisterAction[struct{}, gin.H](authed, httpez.Action[struct{}, gin.H]{
		Method: http.MethodGet,
		Path:   "/items/mine",
		Binder: httpez.BindNone,
		Auth:   true,
		Handler: func(c *gin.Context, _ *struct{}) (gin.H, error) {
			items, err := d.Catalog.UserItems(c.Request.Context(), c.GetString("userId"))
			if err != nil {
				return nil, err
			}
			return gin.H{"items": items}, nil
		},
	})

	// 物品详情（公开，不需要登录）
	httpez.RegisterAction[struct{}, *catalog.ItemDetail](pub, httpez.Action[struct{}, *catalog.ItemDetail]{
		Method: http.MethodGet,
		Path:   "/items/:id",
		Binder: httpez.BindNone,
		Handler: func(c *gin.Context, _ *struct{}) (*catalog.ItemDetail, error) {
			return d.Catalog.Detail(c.Request.Context(), c.Param("id"))
		},
	})

	// 点赞切换。幂等 token 走 X-Idempotency-Key 头（可选），
	// 超时重试带同一 token 不会把状态多翻一次
	httpez.RegisterAction[struct{}, engage.ToggleResult](authed, httpez.Action[struct{}, engage.ToggleResult]{
		Method: http.MethodPost,
		Path:   "/items/:id/like",
		Binder: httpez.BindNone,
		Auth:   true,
		Handler: func(c *gin.Context, _ *struct{}) (engage.ToggleResult, error) {
			token := c.GetHeader("X-Idempotency-Key")
			return d.Engage.ToggleLike(c.Request.Context(), c.GetString("userId"), c.Param("id"), token)
		},
	})

	// 未读通知
	httpez.RegisterAction[struct{}, gin.H](authed, httpez.Action[struct{}, gin.H]{
		Method: http.MethodGet,
		Path:   "/notifications/unread",
		Binder: httpez.BindNone,
		Auth:   true,
		Handler: func(c *gin.Context, _ *struct{}) (gin.H, error) {
			ns, err := d.Notify.ListUnread(c.Request.Context(), c.GetString("userId"))
			if err != nil {
				return nil, err
			}
			return gin.H{"notifications": ns}, nil
		},
	})

	// 批量置已读（幂等）
	httpez.RegisterAction[struct{}, gin.H](authed, httpez.Action[struct{}, gin.H]{
		Method: http.MethodPost,
		Path:   "/notifications/read",
		Binder: httpez.BindNone,
		Auth:   true,
		Handler: func(c *gin.Context, _ *struct{}) (gin.H, error) {
			if err := d.Notify.MarkAllRead(c.Request.Context(), c.GetString("userId")); err != nil {
				return nil, err
			}
			return gin.H{"ok": 1}, nil
		},
	})
}
