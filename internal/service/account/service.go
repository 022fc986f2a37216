// Package account 注册/登录与资料读取。注册送 30 分和欢迎成就。
package account

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"recircle-backend/internal/domain"
	"recircle-backend/internal/repo"
	"recircle-backend/pkg/utils"
)

var ErrBadCredentials = errors.New("invalid credentials")
var ErrExists = errors.New("user already exists")

type Service struct {
	db    *gorm.DB
	users *repo.UserRepo
}

func New(db *gorm.DB, users *repo.UserRepo) *Service {
	return &Service{db: db, users: users}
}

type RegisterInput struct {
	UID      string // 外部身份主体 id，可为空（自发身份时生成）
	Name     string
	Email    string
	Password string
}

// Register 建档 + 欢迎积分 + 欢迎成就，一个事务
func (s *Service) Register(ctx context.Context, in RegisterInput) (*domain.User, error) {
	email := strings.TrimSpace(in.Email)
	name := strings.TrimSpace(in.Name)
	if name == "" {
		if at := strings.IndexByte(email, '@'); at > 0 {
			name = email[:at]
		} else {
			name = "user"
		}
	}
	uid := strings.TrimSpace(in.UID)
	if uid == "" {
		uid = utils.NewID()
	}
	u := &domain.User{
		ID:           utils.NewID(),
		UID:          uid,
		Email:        email,
		Name:         name,
		PasswordHash: utils.HashPassword(in.Password),
		Role:         "user",
		Points:       domain.WelcomePoints,
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(u).Error; err != nil {
			return err
		}
		return tx.Create(&domain.Achievement{
			UserID:      u.ID,
			Title:       "Welcome to ReCircle!",
			Description: "Signup successful",
			Points:      domain.WelcomePoints,
		}).Error
	})
	if err != nil {
		if isDupKey(err) {
			return nil, ErrExists
		}
		return nil, err
	}
	return u, nil
}

func (s *Service) Login(ctx context.Context, email, password string) (*domain.User, error) {
	u, err := s.users.FindByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		return nil, fmt.Errorf("%w: login: %v", domain.ErrUpstream, err)
	}
	if u == nil || !utils.CheckPassword(password, u.PasswordHash) {
		return nil, ErrBadCredentials
	}
	return u, nil
}

func (s *Service) Profile(ctx context.Context, uid string) (*domain.User, error) {
	u, err := s.users.FindByUID(ctx, uid)
	if err != nil {
		return nil, fmt.Errorf("%w: profile: %v", domain.ErrUpstream, err)
	}
	if u == nil {
		return nil, domain.ErrNotFound
	}
	return u, nil
}

func (s *Service) Achievements(ctx context.Context, uid string) ([]domain.Achievement, error) {
	u, err := s.Profile(ctx, uid)
	if err != nil {
		return nil, err
	}
	return s.users.Achievements(ctx, u.ID)
}

func isDupKey(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate") ||
		strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "unique violation") ||
		strings.Contains(msg, "unique failed")
}
