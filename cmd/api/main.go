package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "go.uber.org/automaxprocs"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gorm.io/gorm"

	"recircle-backend/internal/core/auth"
	"recircle-backend/internal/core/cache"
	"recircle-backend/internal/core/config"
	"recircle-backend/internal/core/database"
	"recircle-backend/internal/core/logger"
	"recircle-backend/internal/core/server"
	"recircle-backend/internal/domain"
	"recircle-backend/internal/identity"
	"recircle-backend/internal/repo"
	"recircle-backend/internal/service/account"
	"recircle-backend/internal/service/catalog"
	"recircle-backend/internal/service/engage"
	"recircle-backend/internal/service/notify"
	"recircle-backend/internal/service/rank"
	"recircle-backend/internal/swipe"
	"recircle-backend/internal/transport/http/router"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load(os.Getenv("CONFIG_PATH"))
	log, cleanup := newLogger(cfg)
	defer cleanup()
	// gorm 驱动层还有零星标准库 log，统一并进 zap
	defer logger.RedirectStdLog(log, zapcore.InfoLevel)()

	// 数据库（失败会直接 Fatal）
	db := mustOpenDB(cfg, log)
	log.Info("database connected", zap.String("driver", cfg.DB.Driver))

	// 自动迁移
	if cfg.DB.AutoMigrate {
		if err := db.AutoMigrate(
			&domain.User{}, &domain.Achievement{},
			&domain.Item{}, &domain.Like{}, &domain.Notification{},
		); err != nil {
			log.Fatal("automigrate failed", zap.Error(err))
		}
		log.Info("automigrate done")
	}

	// JWT
	jwter := &auth.JWTer{
		Secret: []byte(cfg.JWT.Secret),
		Issuer: cfg.JWT.Issuer,
		TTL:    time.Duration(cfg.JWT.AccessTokenTTLMin) * time.Minute,
	}

	// Redis（可选：没配就退化为内存 token 表 + 无缓存排行榜）
	var c *cache.Cache
	var tokens engage.TokenStore
	if cfg.Redis.Addr != "" {
		c = cache.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		tokens = engage.NewRedisTokenStore(c.RDB)
		log.Info("redis connected", zap.String("addr", cfg.Redis.Addr))
	}

	// 仓储 + 服务装配（身份解析按接口注入）
	users := repo.NewUserRepo(db)
	items := repo.NewItemRepo(db)
	notifs := repo.NewNotificationRepo(db)
	ids := identity.NewRepoResolver(users)

	engageSvc := engage.New(db, ids, tokens,
		time.Duration(cfg.Engage.TokenTTLMin)*time.Minute, log)
	catalogSvc := catalog.New(db, items, ids, cfg.Swipe.MaxDeck, log)
	rankSvc := rank.New(users, ids, c,
		time.Duration(cfg.Rank.BoardTTLSec)*time.Second, log)
	notifySvc := notify.New(notifs, ids)
	accountSvc := account.New(db, users)
	swipeMgr := swipe.NewManager(catalogSvc, engageSvc, log)

	r := router.NewAPIEngine(log, router.Deps{
		JWT:     jwter,
		Account: accountSvc,
		Catalog: catalogSvc,
		Engage:  engageSvc,
		Rank:    rankSvc,
		Notify:  notifySvc,
		Swipe:   swipeMgr,
		Users:   users,
		Items:   items,
	})

	// HTTP Server
	addr := server.Addr(cfg.App.HTTP.Host, cfg.App.HTTP.Port)
	srv := server.BuildServer(
		addr, r,
		time.Duration(cfg.App.HTTP.ReadTimeoutSec)*time.Second,
		time.Duration(cfg.App.HTTP.WriteTimeoutSec)*time.Second,
		time.Duration(cfg.App.HTTP.IdleTimeoutSec)*time.Second,
	)

	// 启动日志
	host4human := cfg.App.HTTP.Host
	if host4human == "" || host4human == "0.0.0.0" {
		host4human = "127.0.0.1"
	}
	baseURL := "http://" + host4human + ":" + fmt.Sprint(cfg.App.HTTP.Port)
	log.Info("api starting",
		zap.String("addr", addr),
		zap.String("open", baseURL),
		zap.String("health", baseURL+"/health"),
		zap.String("api_v1", baseURL+"/api/v1"),
	)

	// 异步启动
	go func() {
		if err := server.StartHTTP(srv, log); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("api start FAILED", zap.Error(err))
		}
	}()
	log.Info("api started SUCCESS")

	// 优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(ctx)
	log.Info("api stopped gracefully")
}

func newLogger(cfg *config.Config) (*zap.Logger, func()) {
	if cfg.Log.File != "" {
		return logger.NewWithRotate(cfg.Log.Level, cfg.Log.JSON, cfg.Log.File,
			cfg.Log.MaxSizeMB, cfg.Log.MaxBackups, cfg.Log.MaxAgeDays, cfg.Log.Compress)
	}
	return logger.New(cfg.Log.Level, cfg.Log.JSON)
}

func mustOpenDB(cfg *config.Config, l *zap.Logger) *gorm.DB {
	db, err := database.NewGorm(database.Opts{
		Driver:             cfg.DB.Driver,
		DSN:                cfg.DB.DSN,
		Username:           cfg.DB.Username,
		Password:           cfg.DB.Password,
		MaxOpenConns:       cfg.DB.MaxOpenConns,
		MaxIdleConns:       cfg.DB.MaxIdleConns,
		ConnMaxLifetimeMin: cfg.DB.ConnMaxLifetimeMin,
		LogLevel:           cfg.DB.LogLevel,
	})
	if err != nil {
		l.Fatal("db open", zap.Error(err))
	}
	return db
}
