package repository

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/erayastyle/ops-hub/internal/order/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) FindByRef(ctx context.Context, db *gorm.DB, ref string) (*domain.Order, error) {
	stmt := db.WithContext(ctx).
		Preload("LineItems").
		Preload("Fulfillments").
		Preload("Events", func(tx *gorm.DB) *gorm.DB {
			return tx.Order("created_at asc, id asc")
		})
	if id, perr := strconv.ParseInt(ref, 10, 64); perr == nil {
		stmt = stmt.Where("id = ? OR shopify_id = ?", id, ref)
	} else {
		stmt = stmt.Where("shopify_id = ?", ref)
	}

	var order domain.Order
	err := stmt.First(&order).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &order, nil
}

func (r *repo) FindByShopifyID(ctx context.Context, db *gorm.DB, shopifyID string) (*domain.Order, error) {
	var order domain.Order
	err := db.WithContext(ctx).
		Preload("LineItems").
		Preload("Fulfillments").
		Where("shopify_id = ?", shopifyID).
		First(&order).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &order, nil
}

// maxShopifyIDExpr casts the stored upstream id to an integer for MAX;
// mysql spells the integer cast differently.
func maxShopifyIDExpr(dialect string) string {
	cast := "CAST(shopify_id AS bigint)"
	if dialect == "mysql" {
		cast = "CAST(shopify_id AS SIGNED)"
	}
	return "COALESCE(MAX(" + cast + "), 0)"
}

func (r *repo) MaxShopifyID(ctx context.Context, db *gorm.DB) (int64, error) {
	var max int64
	err := db.WithContext(ctx).
		Model(&domain.Order{}).
		Select(maxShopifyIDExpr(db.Dialector.Name())).
		Scan(&max).Error
	return max, err
}

func applyFilter(stmt *gorm.DB, filter domain.ListFilter) *gorm.DB {
	if len(filter.Statuses) > 0 {
		stmt = stmt.Where("current_status IN ?", filter.Statuses)
	}
	if q := strings.TrimSpace(filter.Query); q != "" {
		like := "%" + strings.ToLower(q) + "%"
		stmt = stmt.Where(
			"LOWER(order_number) LIKE ? OR LOWER(customer_name) LIKE ? OR LOWER(email) LIKE ? OR LOWER(phone) LIKE ?",
			like, like, like, like,
		)
	}
	if filter.StartDate != nil {
		stmt = stmt.Where("created_at >= ?", *filter.StartDate)
	}
	if filter.EndDate != nil {
		stmt = stmt.Where("created_at <= ?", *filter.EndDate)
	}
	if filter.PaymentMethod != "" {
		stmt = stmt.Where("payment_method = ?", filter.PaymentMethod)
	}
	if filter.City != "" {
		stmt = stmt.Where("LOWER(shipping_city) LIKE ?", "%"+strings.ToLower(filter.City)+"%")
	}
	if filter.State != "" {
		stmt = stmt.Where("LOWER(shipping_state) LIKE ?", "%"+strings.ToLower(filter.State)+"%")
	}
	if filter.Tag != "" {
		// tags is a JSON array; a quoted LIKE match works across the
		// supported dialects without a JSON1/jsonb dependency.
		stmt = stmt.Where("tags LIKE ?", "%\""+filter.Tag+"\"%")
	}
	return stmt
}

func (r *repo) List(ctx context.Context, db *gorm.DB, filter domain.ListFilter, limit int, beforeID snowflake.ID) ([]*domain.Order, error) {
	var orders []*domain.Order
	stmt := applyFilter(db.WithContext(ctx).Model(&domain.Order{}), filter)
	if beforeID > 0 {
		stmt = stmt.Where("id < ?", beforeID)
	}
	err := stmt.
		Order("id desc").
		Limit(limit).
		Find(&orders).Error
	if err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *repo) Count(ctx context.Context, db *gorm.DB, filter domain.ListFilter) (int64, error) {
	var total int64
	err := applyFilter(db.WithContext(ctx).Model(&domain.Order{}), filter).Count(&total).Error
	return total, err
}

func (r *repo) Save(ctx context.Context, db *gorm.DB, order *domain.Order) error {
	// child rows are merged in place by the sync path, so they must be
	// written through, not just created
	return db.WithContext(ctx).
		Session(&gorm.Session{FullSaveAssociations: true}).
		Save(order).Error
}

func (r *repo) AppendEvent(ctx context.Context, db *gorm.DB, event *domain.OrderEvent) error {
	return db.WithContext(ctx).Create(event).Error
}

func (r *repo) Metrics(ctx context.Context, db *gorm.DB, from, to *time.Time, now time.Time) (domain.MetricsResponse, error) {
	resp := domain.MetricsResponse{
		StatusCounts: make(map[domain.Status]int64, len(domain.AllStatuses)),
	}

	base := func() *gorm.DB {
		stmt := db.WithContext(ctx).Model(&domain.Order{})
		if from != nil {
			stmt = stmt.Where("created_at >= ?", *from)
		}
		if to != nil {
			stmt = stmt.Where("created_at <= ?", *to)
		}
		return stmt
	}

	if err := base().Count(&resp.TotalOrders).Error; err != nil {
		return resp, err
	}

	type statusCount struct {
		CurrentStatus domain.Status
		N             int64
	}
	var counts []statusCount
	if err := base().
		Select("current_status, COUNT(*) AS n").
		Group("current_status").
		Scan(&counts).Error; err != nil {
		return resp, err
	}
	for _, c := range counts {
		resp.StatusCounts[c.CurrentStatus] = c.N
	}

	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	weekStart := dayStart.AddDate(0, 0, -int(dayStart.Weekday()))

	if err := base().
		Where("current_status = ? AND updated_at >= ?", domain.StatusShipped, dayStart).
		Count(&resp.ShippedToday).Error; err != nil {
		return resp, err
	}
	if err := base().
		Where("current_status = ? AND updated_at >= ?", domain.StatusDelivered, dayStart).
		Count(&resp.DeliveredToday).Error; err != nil {
		return resp, err
	}
	if err := base().
		Where("current_status = ? AND updated_at >= ?", domain.StatusShipped, weekStart).
		Count(&resp.ShippedWeek).Error; err != nil {
		return resp, err
	}
	if err := base().
		Where("tags LIKE ?", "%\"RTO\"%").
		Count(&resp.RTOOrders).Error; err != nil {
		return resp, err
	}
	if err := base().
		Where("current_status = ?", domain.StatusDisputed).
		Count(&resp.DisputedOrders).Error; err != nil {
		return resp, err
	}
	if err := base().
		Where("sla_breached = ?", true).
		Count(&resp.SLABreached).Error; err != nil {
		return resp, err
	}

	return resp, nil
}
