package migration

import (
	attendancedomain "github.com/erayastyle/ops-hub/internal/attendance/domain"
	authdomain "github.com/erayastyle/ops-hub/internal/auth/domain"
	chatdomain "github.com/erayastyle/ops-hub/internal/chat/domain"
	"github.com/erayastyle/ops-hub/internal/config"
	orderdomain "github.com/erayastyle/ops-hub/internal/order/domain"
	"github.com/erayastyle/ops-hub/internal/ordersync"
	"github.com/erayastyle/ops-hub/internal/seed"
	taskdomain "github.com/erayastyle/ops-hub/internal/task/domain"
	userdomain "github.com/erayastyle/ops-hub/internal/user/domain"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB, cfg config.Config) error {
		if cfg.DBType == "postgres" {
			sqlDB, err := conn.DB()
			if err != nil {
				return err
			}
			if err := RunMigrations(sqlDB); err != nil {
				return err
			}
		} else if err := AutoMigrate(conn); err != nil {
			return err
		}

		if err := seed.EnsureDefaultChannels(conn); err != nil {
			return err
		}
		return seed.EnsureAdminUser(conn, cfg)
	}),
)

// AutoMigrate builds the schema through gorm for the non-postgres
// engines (sqlite for local runs and tests, mysql).
func AutoMigrate(conn *gorm.DB) error {
	return conn.AutoMigrate(
		&userdomain.User{},
		&authdomain.Session{},
		&orderdomain.Order{},
		&orderdomain.OrderLineItem{},
		&orderdomain.OrderFulfillment{},
		&orderdomain.OrderEvent{},
		&ordersync.SyncStatus{},
		&chatdomain.Channel{},
		&chatdomain.DirectConversation{},
		&chatdomain.Message{},
		&chatdomain.MessageRead{},
		&attendancedomain.Record{},
		&taskdomain.Task{},
		&taskdomain.Comment{},
		&taskdomain.ActivityLog{},
		&taskdomain.RecurringTemplate{},
		&taskdomain.Announcement{},
	)
}
