package router

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"recircle-backend/internal/core/auth"
	"recircle-backend/internal/repo"
	"recircle-backend/internal/service/account"
	"recircle-backend/internal/service/catalog"
	"recircle-backend/internal/service/engage"
	"recircle-backend/internal/service/notify"
	"recircle-backend/internal/service/rank"
	"recircle-backend/internal/swipe"
	httpez "recircle-backend/internal/transport/http/httpez"
	mdw "recircle-backend/internal/transport/http/middleware"
)

// Deps 所有协作方都显式注入，不走进程级单例
type Deps struct {
	JWT     *auth.JWTer
	Account *account.Service
	Catalog *catalog.Service
	Engage  *engage.Service
	Rank    *rank.Service
	Notify  *notify.Service
	Swipe   *swipe.Manager
	Users   *repo.UserRepo
	Items   *repo.ItemRepo
}

func NewAPIEngine(l *zap.Logger, d Deps) *gin.Engine {
	r := gin.New()

	// 中间件
	r.Use(
		mdw.RequestID(),
		mdw.RateLimit(200, 400),
		mdw.ConcurrencyLimit(300),
		mdw.MaxBodyBytes(1<<20),
		mdw.Timeout(10*time.Second),
		mdw.SimpleRecovery(),
		mdw.Metrics(),
		mdw.AccessLog(l),
	)

	// 健康检查
	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"ok": 1}) })

	api := r.Group("/api/v1")

	// 公共分组（无需登录）
	ezPublic := httpez.New(api)

	// 鉴权分组
	authed := api.Group("")
	authed.Use(mdw.AuthJWT(d.JWT, ""))
	ezAuth := httpez.New(authed)

	mountAccountActions(ezPublic, ezAuth, d)
	mountEngageActions(ezPublic, ezAuth, d)
	mountSwipeActions(ezAuth, d)

	return r
}
