package seed

import (
	"time"

	chatdomain "github.com/erayastyle/ops-hub/internal/chat/domain"
	"github.com/erayastyle/ops-hub/internal/config"
	userdomain "github.com/erayastyle/ops-hub/internal/user/domain"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// EnsureDefaultChannels creates any missing default chat channels.
// Safe to run on every boot.
func EnsureDefaultChannels(conn *gorm.DB) error {
	for _, name := range chatdomain.DefaultChannels {
		var count int64
		if err := conn.Model(&chatdomain.Channel{}).Where("name = ?", name).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			continue
		}
		channel := chatdomain.Channel{
			ID:        uuid.NewString(),
			Name:      name,
			CreatedAt: time.Now().UTC(),
		}
		if err := conn.Create(&channel).Error; err != nil {
			return err
		}
	}
	return nil
}

// EnsureAdminUser creates the bootstrap admin when credentials are
// configured and no user with that email exists.
func EnsureAdminUser(conn *gorm.DB, cfg config.Config) error {
	if cfg.SeedAdminEmail == "" || cfg.SeedAdminPassword == "" {
		return nil
	}

	var count int64
	if err := conn.Model(&userdomain.User{}).Where("email = ?", cfg.SeedAdminEmail).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(cfg.SeedAdminPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	admin := userdomain.User{
		ID:           uuid.NewString(),
		Email:        cfg.SeedAdminEmail,
		PasswordHash: string(hash),
		Name:         cfg.SeedAdminName,
		Role:         userdomain.RoleAdmin,
		Active:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	return conn.Create(&admin).Error
}
