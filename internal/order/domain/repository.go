package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	// FindByRef resolves either an internal id or an upstream id, with
	// line items, fulfillments and events preloaded. Returns nil when
	// no row matches.
	FindByRef(ctx context.Context, db *gorm.DB, ref string) (*Order, error)

	// FindByShopifyID resolves by upstream id without preloads, for the
	// sync upsert path. Returns nil when no row matches.
	FindByShopifyID(ctx context.Context, db *gorm.DB, shopifyID string) (*Order, error)

	// MaxShopifyID returns the numerically largest stored upstream id,
	// zero when no orders exist. Incremental sync starts from here.
	MaxShopifyID(ctx context.Context, db *gorm.DB) (int64, error)

	// List returns up to limit rows matching filter, newest id first,
	// strictly below beforeID when beforeID > 0.
	List(ctx context.Context, db *gorm.DB, filter ListFilter, limit int, beforeID snowflake.ID) ([]*Order, error)

	Count(ctx context.Context, db *gorm.DB, filter ListFilter) (int64, error)

	Save(ctx context.Context, db *gorm.DB, order *Order) error

	AppendEvent(ctx context.Context, db *gorm.DB, event *OrderEvent) error

	Metrics(ctx context.Context, db *gorm.DB, from, to *time.Time, now time.Time) (MetricsResponse, error)
}
