package router

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"recircle-backend/internal/core/server"
	"recircle-backend/internal/domain"
	httpez "recircle-backend/internal/transport/http/httpez"
	mdw "recircle-backend/internal/transport/http/middleware"
)

func NewAdminEngine(l *zap.Logger, d Deps) *gin.Engine {
	r := server.NewRouter(l)

	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"ok": 1}) })
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	admin := r.Group("/admin/v1")
	admin.Use(mdw.AuthJWT(d.JWT, "admin"))
	mountAdminActions(httpez.New(admin), d)

	return r
}

func mountAdminActions(ez httpez.EZ, d Deps) {
	// --- 用户列表 ---
	type listQ struct {
		Offset      int    `form:"offset,default=0"`
		Limit       int    `form:"limit,default=20"`
		Q           string `form:"q"`            // 可选：按 email/name 模糊搜
		WithDeleted bool   `form:"with_deleted"` // 是否包含软删
	}
	type row struct {
		ID        string    `json:"id"`
		UID       string    `json:"uid"`
		Email     string    `json:"email"`
		Name      string    `json:"name"`
		Role      string    `json:"role"`
		Points    uint      `json:"points"`
		CreatedAt time.Time `json:"createdAt"`
	}
	type listOut struct {
		Total int64 `json:"total"`
		Items []row `json:"items"`
	}
	httpez.RegisterAction[listQ, listOut](ez, httpez.Action[listQ, listOut]{
		Method: http.MethodGet,
		Path:   "/users",
		Binder: httpez.BindQuery,
		Auth:   true,
		Roles:  []string{"admin"},
		Handler: func(c *gin.Context, in *listQ) (listOut, error) {
			if in.Limit <= 0 || in.Limit > 100 {
				in.Limit = 20
			}
			us, total, err := d.Users.List(c.Request.Context(), in.Q, in.Offset, in.Limit, in.WithDeleted)
			if err != nil {
				return listOut{}, httpez.Internal("list users failed", err)
			}
			out := listOut{Total: total, Items: make([]row, 0, len(us))}
			for _, u := range us {
				out.Items = append(out.Items, row{
					ID: u.ID, UID: u.UID, Email: u.Email, Name: u.Name,
					Role: u.Role, Points: u.Points, CreatedAt: u.CreatedAt,
				})
			}
			return out, nil
		},
	})

	// --- 封禁（软删） ---
	httpez.RegisterAction[struct{}, gin.H](ez, httpez.Action[struct{}, gin.H]{
		Method: http.MethodPost,
		Path:   "/users/:id/ban",
		Binder: httpez.BindNone,
		Auth:   true,
		Roles:  []string{"admin"},
		Handler: func(c *gin.Context, _ *struct{}) (gin.H, error) {
			id := c.Param("id")
			if id == "" {
				return nil, httpez.BadRequest("missing id")
			}
			if err := d.Users.SoftDelete(c.Request.Context(), id); err != nil {
				return nil, err
			}
			return gin.H{"id": id}, nil
		},
	})

	// --- 物品生命周期推进：available → claimed → donated，只许向前 ---
	type statusIn struct {
		Status string `json:"status" binding:"required"`
	}
	httpez.RegisterAction[statusIn, gin.H](ez, httpez.Action[statusIn, gin.H]{
		Method: http.MethodPost,
		Path:   "/items/:id/status",
		Binder: httpez.BindJSON,
		Auth:   true,
		Roles:  []string{"admin"},
		Handler: func(c *gin.Context, in *statusIn) (gin.H, error) {
			if !domain.ValidStatus(in.Status) {
				return nil, httpez.BadRequest("unknown status")
			}
			err := d.Items.UpdateStatus(c.Request.Context(), c.Param("id"), in.Status)
			switch {
			case err == nil:
				return gin.H{"id": c.Param("id"), "status": in.Status}, nil
			case err == domain.ErrConflict:
				return nil, httpez.BadRequest("illegal status transition")
			default:
				return nil, err
			}
		},
	})
}
