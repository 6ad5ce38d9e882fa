package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/erayastyle/ops-hub/internal/auth/domain"
	"github.com/erayastyle/ops-hub/internal/auth/repository"
	"github.com/erayastyle/ops-hub/internal/clock"
	"github.com/erayastyle/ops-hub/internal/config"
	userdomain "github.com/erayastyle/ops-hub/internal/user/domain"
	userrepo "github.com/erayastyle/ops-hub/internal/user/repository"
	userservice "github.com/erayastyle/ops-hub/internal/user/service"
	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newTestService(t *testing.T) (domain.Service, userdomain.Service, *gorm.DB, *clock.FakeClock) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.Session{}, &userdomain.User{}))

	fake := clock.NewFakeClock(time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC))
	users := userservice.New(userservice.Params{
		DB:    db,
		Log:   zap.NewNop(),
		Repo:  userrepo.Provide(),
		Clock: fake,
	})
	svc := New(Params{
		DB:    db,
		Log:   zap.NewNop(),
		Cfg:   config.Config{SessionTTLDays: 7},
		Repo:  repository.Provide(),
		Users: users,
		Clock: fake,
	})
	return svc, users, db, fake
}

func seedUser(t *testing.T, users userdomain.Service) *userdomain.User {
	t.Helper()
	user, err := users.Create(context.Background(), userdomain.CreateUserRequest{
		Email:    "mira@eraya.in",
		Password: "s3cret-pass",
		Name:     "Mira",
		Role:     userdomain.RoleManager,
	})
	require.NoError(t, err)
	return user
}

func TestLoginAndResolve(t *testing.T) {
	svc, users, _, fake := newTestService(t)
	ctx := context.Background()
	user := seedUser(t, users)

	result, err := svc.Login(ctx, "mira@eraya.in", "s3cret-pass")
	require.NoError(t, err)
	assert.Equal(t, user.ID, result.User.ID)
	assert.NotEmpty(t, result.Session.Token)
	assert.Equal(t, fake.Now().Add(7*24*time.Hour), result.Session.ExpiresAt)

	resolved, err := svc.Resolve(ctx, result.Session.Token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, resolved.ID)
}

func TestLoginBadCredentials(t *testing.T) {
	svc, users, _, _ := newTestService(t)
	ctx := context.Background()
	seedUser(t, users)

	_, err := svc.Login(ctx, "mira@eraya.in", "wrong-pass")
	require.ErrorIs(t, err, userdomain.ErrInvalidCredentials)

	_, err = svc.Login(ctx, "ghost@eraya.in", "s3cret-pass")
	require.ErrorIs(t, err, userdomain.ErrInvalidCredentials)
}

func TestResolveExpiredSessionIsDropped(t *testing.T) {
	svc, users, db, fake := newTestService(t)
	ctx := context.Background()
	seedUser(t, users)

	result, err := svc.Login(ctx, "mira@eraya.in", "s3cret-pass")
	require.NoError(t, err)

	fake.Advance(7*24*time.Hour + time.Minute)

	_, err = svc.Resolve(ctx, result.Session.Token)
	require.ErrorIs(t, err, domain.ErrSessionExpired)

	// the expired row is gone, so a second resolve fails differently
	var count int64
	require.NoError(t, db.Model(&domain.Session{}).Count(&count).Error)
	assert.Zero(t, count)

	_, err = svc.Resolve(ctx, result.Session.Token)
	require.ErrorIs(t, err, domain.ErrInvalidSession)
}

func TestResolveRejectsInactiveUser(t *testing.T) {
	svc, users, _, _ := newTestService(t)
	ctx := context.Background()
	user := seedUser(t, users)

	result, err := svc.Login(ctx, "mira@eraya.in", "s3cret-pass")
	require.NoError(t, err)

	inactive := false
	_, err = users.Update(ctx, userdomain.UpdateUserRequest{ID: user.ID, Active: &inactive})
	require.NoError(t, err)

	_, err = svc.Resolve(ctx, result.Session.Token)
	require.ErrorIs(t, err, domain.ErrInvalidSession)
}

func TestResolveEmptyToken(t *testing.T) {
	svc, _, _, _ := newTestService(t)

	_, err := svc.Resolve(context.Background(), "")
	require.ErrorIs(t, err, domain.ErrInvalidSession)
}

func TestLogout(t *testing.T) {
	svc, users, _, _ := newTestService(t)
	ctx := context.Background()
	seedUser(t, users)

	result, err := svc.Login(ctx, "mira@eraya.in", "s3cret-pass")
	require.NoError(t, err)

	require.NoError(t, svc.Logout(ctx, result.Session.Token))

	_, err = svc.Resolve(ctx, result.Session.Token)
	require.ErrorIs(t, err, domain.ErrInvalidSession)

	// unknown or empty tokens are a no-op
	require.NoError(t, svc.Logout(ctx, "never-issued"))
	require.NoError(t, svc.Logout(ctx, ""))
}
