package router

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"recircle-backend/internal/domain"
	"recircle-backend/internal/service/account"
	httpez "recircle-backend/internal/transport/http/httpez"
)

type userOut struct {
	ID     string `json:"id"`
	UID    string `json:"uid"`
	Email  string `json:"email"`
	Name   string `json:"name"`
	Avatar string `json:"avatar"`
	Bio    string `json:"bio"`
	Role   string `json:"role"`
	Points uint   `json:"points"`
}

func mountAccountActions(pub, authed httpez.EZ, d Deps) {
	// /auth/register：建档 + 欢迎积分/成就 + 发 JWT
	type registerIn struct {
		UID      string `json:"uid"      binding:"omitempty,max=128"`
		Name     string `json:"name"     binding:"omitempty,max=64"`
		Email    string `json:"email"    binding:"required,email"`
		Password string `json:"password" binding:"required,min=6"`
	}
	type tokenOut struct {
		Token string  `json:"token"`
		User  userOut `json:"user"`
	}
	httpez.RegisterAction[registerIn, tokenOut](pub, httpez.Action[registerIn, tokenOut]{
		Method: http.MethodPost,
		Path:   "/auth/register",
		Binder: httpez.BindJSON,
		Handler: func(c *gin.Context, in *registerIn) (tokenOut, error) {
			u, err := d.Account.Register(c.Request.Context(), account.RegisterInput{
				UID: in.UID, Name: in.Name, Email: in.Email, Password: in.Password,
			})
			if err != nil {
				if errors.Is(err, account.ErrExists) {
					return tokenOut{}, httpez.BadRequest("user already exists")
				}
				return tokenOut{}, httpez.Internal("register failed", err)
			}
			// token 主体用外部 uid，后续所有操作都按它解析身份
			tok, err := d.JWT.Issue(u.UID, u.Role)
			if err != nil || tok == "" {
				return tokenOut{}, httpez.Internal("issue token failed", err)
			}
			return tokenOut{Token: tok, User: toUserOut(u)}, nil
		},
	})

	// /auth/login
	type loginIn struct {
		Email    string `json:"email"    binding:"required,email"`
		Password string `json:"password" binding:"required"`
	}
	httpez.RegisterAction[loginIn, tokenOut](pub, httpez.Action[loginIn, tokenOut]{
		Method: http.MethodPost,
		Path:   "/auth/login",
		Binder: httpez.BindJSON,
		Handler: func(c *gin.Context, in *loginIn) (tokenOut, error) {
			u, err := d.Account.Login(c.Request.Context(), in.Email, in.Password)
			if err != nil {
				if errors.Is(err, account.ErrBadCredentials) {
					return tokenOut{}, httpez.Unauthorized("invalid credentials")
				}
				return tokenOut{}, httpez.Internal("login failed", err)
			}
			tok, err := d.JWT.Issue(u.UID, u.Role)
			if err != nil || tok == "" {
				return tokenOut{}, httpez.Internal("issue token failed", err)
			}
			return tokenOut{Token: tok, User: toUserOut(u)}, nil
		},
	})

	// /me：当前用户 + 名次
	type meOut struct {
		User userOut `json:"user"`
		Rank int     `json:"rank"`
	}
	httpez.RegisterAction[struct{}, meOut](authed, httpez.Action[struct{}, meOut]{
		Method: http.MethodGet,
		Path:   "/me",
		Binder: httpez.BindNone,
		Auth:   true,
		Handler: func(c *gin.Context, _ *struct{}) (meOut, error) {
			uid := c.GetString("userId")
			u, err := d.Account.Profile(c.Request.Context(), uid)
			if err != nil {
				return meOut{}, err
			}
			rk, err := d.Rank.Rank(c.Request.Context(), uid)
			if err != nil {
				return meOut{}, err
			}
			return meOut{User: toUserOut(u), Rank: rk}, nil
		},
	})

	// 公开资料
	httpez.RegisterAction[struct{}, meOut](pub, httpez.Action[struct{}, meOut]{
		Method: http.MethodGet,
		Path:   "/users/:uid",
		Binder: httpez.BindNone,
		Handler: func(c *gin.Context, _ *struct{}) (meOut, error) {
			uid := c.Param("uid")
			u, err := d.Account.Profile(c.Request.Context(), uid)
			if err != nil {
				return meOut{}, err
			}
			rk, err := d.Rank.Rank(c.Request.Context(), uid)
			if err != nil {
				return meOut{}, err
			}
			return meOut{User: toUserOut(u), Rank: rk}, nil
		},
	})

	// 名次（每次全量现算）
	type rankOut struct {
		Rank int `json:"rank"`
	}
	httpez.RegisterAction[struct{}, rankOut](pub, httpez.Action[struct{}, rankOut]{
		Method: http.MethodGet,
		Path:   "/users/:uid/rank",
		Binder: httpez.BindNone,
		Handler: func(c *gin.Context, _ *struct{}) (rankOut, error) {
			rk, err := d.Rank.Rank(c.Request.Context(), c.Param("uid"))
			if err != nil {
				return rankOut{}, err
			}
			return rankOut{Rank: rk}, nil
		},
	})

	// 成就列表
	httpez.RegisterAction[struct{}, gin.H](pub, httpez.Action[struct{}, gin.H]{
		Method: http.MethodGet,
		Path:   "/users/:uid/achievements",
		Binder: httpez.BindNone,
		Handler: func(c *gin.Context, _ *struct{}) (gin.H, error) {
			as, err := d.Account.Achievements(c.Request.Context(), c.Param("uid"))
			if err != nil {
				return nil, err
			}
			return gin.H{"achievements": as}, nil
		},
	})

	// 排行榜
	type boardQ struct {
		Limit int `form:"limit,default=20"`
	}
	httpez.RegisterAction[boardQ, gin.H](pub, httpez.Action[boardQ, gin.H]{
		Method: http.MethodGet,
		Path:   "/leaderboard",
		Binder: httpez.BindQuery,
		Handler: func(c *gin.Context, in *boardQ) (gin.H, error) {
			entries, err := d.Rank.Leaderboard(c.Request.Context(), in.Limit)
			if err != nil {
				return nil, err
			}
			return gin.H{"leaderboard": entries}, nil
		},
	})
}

func toUserOut(u *domain.User) userOut {
	return userOut{
		ID: u.ID, UID: u.UID, Email: u.Email, Name: u.Name,
		Avatar: u.Avatar, Bio: u.Bio, Role: u.Role, Points: u.Points,
	}
}
