package service

import (
	"context"
	"time"

	"github.com/erayastyle/ops-hub/internal/auth/domain"
	"github.com/erayastyle/ops-hub/internal/clock"
	"github.com/erayastyle/ops-hub/internal/config"
	userdomain "github.com/erayastyle/ops-hub/internal/user/domain"
	"github.com/google/uuid"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	Cfg   config.Config
	Repo  domain.Repository
	Users userdomain.Service
	Clock clock.Clock
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	ttl   time.Duration
	repo  domain.Repository
	users userdomain.Service
	clock clock.Clock
}

func New(p Params) domain.Service {
	ttl := time.Duration(p.Cfg.SessionTTLDays) * 24 * time.Hour
	if ttl <= 0 {
		ttl = 7 * 24 * time.Hour
	}
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("auth.service"),
		ttl:   ttl,
		repo:  p.Repo,
		users: p.Users,
		clock: p.Clock,
	}
}

func (s *Service) Login(ctx context.Context, email, password string) (*domain.LoginResult, error) {
	user, err := s.users.Authenticate(ctx, email, password)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	session := &domain.Session{
		Token:     uuid.NewString(),
		UserID:    user.ID,
		ExpiresAt: now.Add(s.ttl),
		CreatedAt: now,
	}
	if err := s.repo.Insert(ctx, s.db, session); err != nil {
		return nil, err
	}

	s.log.Info("user logged in", zap.String("user_id", user.ID))
	return &domain.LoginResult{User: user, Session: session}, nil
}

func (s *Service) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	return s.repo.Delete(ctx, s.db, token)
}

func (s *Service) Resolve(ctx context.Context, token string) (*userdomain.User, error) {
	if token == "" {
		return nil, domain.ErrInvalidSession
	}

	session, err := s.repo.FindByToken(ctx, s.db, token)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, domain.ErrInvalidSession
	}
	if s.clock.Now().After(session.ExpiresAt) {
		if err := s.repo.Delete(ctx, s.db, token); err != nil {
			s.log.Warn("failed to drop expired session", zap.Error(err))
		}
		return nil, domain.ErrSessionExpired
	}

	user, err := s.users.Get(ctx, session.UserID)
	if err != nil {
		if err == userdomain.ErrNotFound {
			return nil, domain.ErrInvalidSession
		}
		return nil, err
	}
	if !user.Active {
		return nil, domain.ErrInvalidSession
	}
	return user, nil
}
