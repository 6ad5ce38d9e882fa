package ordersync

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/erayastyle/ops-hub/internal/clock"
	"github.com/erayastyle/ops-hub/internal/config"
	"github.com/erayastyle/ops-hub/internal/observability/metrics"
	"github.com/erayastyle/ops-hub/internal/order/domain"
	"github.com/erayastyle/ops-hub/internal/shopify"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	backfillPageSize = 250
	interPageSleep   = 500 * time.Millisecond
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Cfg   config.Config
	SLA   *config.SLAPolicyHolder
	Clock clock.Clock
	Repo  domain.Repository
}

// Service pulls orders from the upstream Admin API into the local store.
// The client is nil when credentials are absent; every entry point then
// returns shopify.ErrNotConfigured.
type Service struct {
	db      *gorm.DB
	log     *zap.Logger
	genID   *snowflake.Node
	client  *shopify.Client
	secret  string
	sla     *config.SLAPolicyHolder
	clock   clock.Clock
	repo    domain.Repository
	metrics *metrics.SchedulerMetrics
}

func New(p Params) *Service {
	var client *shopify.Client
	if p.Cfg.ShopifyConfigured() {
		client = shopify.NewClient(p.Cfg.ShopifyShopURL, p.Cfg.ShopifyAccessToken, p.Log)
	}
	return &Service{
		db:      p.DB,
		log:     p.Log.Named("ordersync"),
		genID:   p.GenID,
		client:  client,
		secret:  p.Cfg.ShopifyWebhookSecret,
		sla:     p.SLA,
		clock:   p.Clock,
		repo:    p.Repo,
		metrics: metrics.Scheduler(),
	}
}

func (s *Service) Configured() bool {
	return s.client != nil
}

// VerifyWebhook checks the request signature against the shared secret.
func (s *Service) VerifyWebhook(body []byte, signature string) bool {
	if s.secret == "" {
		return false
	}
	return shopify.VerifyWebhook([]byte(s.secret), body, signature)
}

// HandleWebhook ingests a single-order webhook payload.
func (s *Service) HandleWebhook(ctx context.Context, body []byte) error {
	var payload shopify.Order
	if err := json.Unmarshal(body, &payload); err != nil {
		return err
	}
	_, err := s.SyncOrder(ctx, payload)
	return err
}

// SyncOrder upserts one upstream order inside its own transaction and
// returns whether the derived status changed. A status_change event is
// appended only on an actual transition; re-syncing an unchanged payload
// writes no event.
func (s *Service) SyncOrder(ctx context.Context, payload shopify.Order) (bool, error) {
	policy := s.sla.Get()
	now := s.clock.Now()
	shopifyID := strconv.FormatInt(payload.ID, 10)

	changed := false
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		order, err := s.repo.FindByShopifyID(ctx, tx, shopifyID)
		if err != nil {
			return err
		}
		if order == nil {
			order = &domain.Order{
				ID:        s.genID.Generate(),
				ShopifyID: shopifyID,
			}
		}

		oldStatus := order.CurrentStatus
		s.applyPayload(order, payload)

		status := domain.ComputeStatus(payload)
		order.CurrentStatus = status
		order.SLADueAt = domain.ComputeSLADueAt(payload, status, policy)
		order.SLABreached = domain.IsSLABreached(payload, status, policy, now)

		if err := s.repo.Save(ctx, tx, order); err != nil {
			return err
		}

		if status != oldStatus {
			changed = true
			event := &domain.OrderEvent{
				ID:        s.genID.Generate(),
				OrderID:   order.ID,
				EventType: domain.EventStatusChange,
				NewValue:  datatypes.JSONMap{"status": string(status)},
				ActorID:   domain.SystemActorID,
				ActorName: domain.SystemActorName,
				CreatedAt: now,
			}
			if oldStatus != "" {
				event.OldValue = datatypes.JSONMap{"status": string(oldStatus)}
			}
			if err := s.repo.AppendEvent(ctx, tx, event); err != nil {
				return err
			}
		}
		return nil
	})
	return changed, err
}

// applyPayload overwrites the order's scalar fields and upserts children
// by their upstream ids. Children that disappeared upstream are left in
// place.
func (s *Service) applyPayload(order *domain.Order, payload shopify.Order) {
	order.OrderNumber = strconv.FormatInt(payload.OrderNumber, 10)
	order.Email = payload.Email
	order.Phone = payload.Phone

	order.CustomerName = payload.Customer.DisplayName()
	if addr := payload.ShippingAddress; addr != nil {
		order.ShippingName = addr.Name
		order.ShippingAddress1 = addr.Address1
		order.ShippingAddress2 = addr.Address2
		order.ShippingCity = addr.City
		order.ShippingState = addr.Province
		order.ShippingPincode = addr.Zip
		order.ShippingCountry = addr.CountryCode
	}

	order.Currency = payload.Currency
	order.TotalPrice = parseMoney(payload.TotalPrice)
	order.SubtotalPrice = parseMoney(payload.SubtotalPrice)
	order.TotalTax = parseMoney(payload.TotalTax)
	order.TotalShipping = parseMoney(payload.TotalShippingPriceSet.ShopMoney.Amount)
	order.TotalDiscounts = parseMoney(payload.TotalDiscounts)

	order.PaymentMethod = "prepaid"
	if len(payload.PaymentGatewayNames) == 1 && payload.PaymentGatewayNames[0] == "cash_on_delivery" {
		order.PaymentMethod = "cod"
	}
	order.PaymentStatus = payload.FinancialStatus
	order.FulfillmentStatus = payload.FulfillmentStatus
	if order.FulfillmentStatus == "" {
		order.FulfillmentStatus = "unfulfilled"
	}

	order.CreatedAt = payload.CreatedAt
	order.UpdatedAt = payload.UpdatedAt
	order.CancelledAt = payload.CancelledAt
	order.ClosedAt = payload.ClosedAt

	order.Tags = datatypes.JSONSlice[string](splitTags(payload.Tags))
	order.Note = payload.Note

	existingItems := make(map[string]int, len(order.LineItems))
	for i, item := range order.LineItems {
		existingItems[item.ShopifyID] = i
	}
	for _, li := range payload.LineItems {
		id := strconv.FormatInt(li.ID, 10)
		idx, ok := existingItems[id]
		if !ok {
			order.LineItems = append(order.LineItems, domain.OrderLineItem{
				ID:        s.genID.Generate(),
				OrderID:   order.ID,
				ShopifyID: id,
			})
			idx = len(order.LineItems) - 1
		}
		item := &order.LineItems[idx]
		item.ProductID = strconv.FormatInt(li.ProductID, 10)
		item.VariantID = strconv.FormatInt(li.VariantID, 10)
		item.SKU = li.SKU
		item.Title = li.Title
		item.VariantTitle = li.VariantTitle
		item.Quantity = li.Quantity
		item.Price = parseMoney(li.Price)

		props := li.PropertyMap()
		fields := make(datatypes.JSONMap, len(props))
		for k, v := range props {
			fields[k] = v
		}
		item.CustomizationFields = fields
		item.RequiresEngraving = li.RequiresEngraving()
		item.EngravingText = li.EngravingText()
	}

	existingFulfillments := make(map[string]int, len(order.Fulfillments))
	for i, f := range order.Fulfillments {
		existingFulfillments[f.ShopifyID] = i
	}
	for _, pf := range payload.Fulfillments {
		id := strconv.FormatInt(pf.ID, 10)
		idx, ok := existingFulfillments[id]
		if !ok {
			order.Fulfillments = append(order.Fulfillments, domain.OrderFulfillment{
				ID:        s.genID.Generate(),
				OrderID:   order.ID,
				ShopifyID: id,
			})
			idx = len(order.Fulfillments) - 1
		}
		f := &order.Fulfillments[idx]
		f.Status = pf.Status
		f.TrackingNumber = pf.TrackingNumber
		f.TrackingURL = pf.TrackingURL
		f.TrackingCompany = pf.TrackingCompany
		f.CreatedAt = pf.CreatedAt
		f.UpdatedAt = pf.UpdatedAt
	}
}

// Backfill walks the full upstream order listing from startDate (all
// history when nil) and syncs every page. Order failures are logged and
// counted without aborting the pass.
func (s *Service) Backfill(ctx context.Context, startDate *time.Time) (int, error) {
	if s.client == nil {
		return 0, shopify.ErrNotConfigured
	}

	params := shopify.ListOrdersParams{
		Limit:        backfillPageSize,
		Status:       "any",
		CreatedAtMin: startDate,
	}

	synced := 0
	for {
		orders, nextPage, err := s.client.ListOrders(ctx, params)
		if err != nil {
			s.finishPass(ctx, synced, err, true)
			return synced, err
		}
		if len(orders) == 0 && nextPage == "" {
			break
		}

		for _, payload := range orders {
			if _, err := s.SyncOrder(ctx, payload); err != nil {
				s.metrics.IncSyncFailure()
				s.log.Error("order sync failed",
					zap.Int64("shopify_id", payload.ID),
					zap.Error(err))
				continue
			}
			synced++
		}
		s.metrics.AddOrdersSynced(len(orders))

		if nextPage == "" {
			break
		}
		params = shopify.ListOrdersParams{Limit: backfillPageSize, PageInfo: nextPage}

		select {
		case <-ctx.Done():
			s.finishPass(ctx, synced, ctx.Err(), true)
			return synced, ctx.Err()
		case <-time.After(interPageSleep):
		}
	}

	s.finishPass(ctx, synced, nil, true)
	return synced, nil
}

// SyncRecent fetches one bounded page of orders created after the newest
// stored upstream id. The scheduler calls this on its interval.
func (s *Service) SyncRecent(ctx context.Context) (int, error) {
	if s.client == nil {
		return 0, shopify.ErrNotConfigured
	}

	sinceID, err := s.repo.MaxShopifyID(ctx, s.db)
	if err != nil {
		return 0, err
	}

	orders, _, err := s.client.ListOrders(ctx, shopify.ListOrdersParams{
		Limit:   backfillPageSize,
		Status:  "any",
		SinceID: sinceID,
	})
	if err != nil {
		s.finishPass(ctx, 0, err, false)
		return 0, err
	}

	synced := 0
	for _, payload := range orders {
		if _, err := s.SyncOrder(ctx, payload); err != nil {
			s.metrics.IncSyncFailure()
			s.log.Error("order sync failed",
				zap.Int64("shopify_id", payload.ID),
				zap.Error(err))
			continue
		}
		synced++
	}
	s.metrics.AddOrdersSynced(synced)

	s.finishPass(ctx, synced, nil, false)
	return synced, nil
}

// Status returns the singleton sync status row, a "never" placeholder
// before the first pass.
func (s *Service) Status(ctx context.Context) (SyncStatus, error) {
	var status SyncStatus
	err := s.db.WithContext(ctx).First(&status, 1).Error
	if err == gorm.ErrRecordNotFound {
		return SyncStatus{ID: 1, Status: SyncStatusNever}, nil
	}
	return status, err
}

func (s *Service) finishPass(ctx context.Context, synced int, passErr error, backfill bool) {
	now := s.clock.Now()

	var status SyncStatus
	if err := s.db.WithContext(ctx).First(&status, 1).Error; err != nil {
		status = SyncStatus{ID: 1}
	}

	status.LastSyncAt = &now
	if backfill {
		status.LastBackfillAt = &now
	}
	status.OrdersSynced = synced
	status.Status = SyncStatusSuccess
	status.LastError = ""
	if passErr != nil {
		status.Status = SyncStatusError
		status.LastError = passErr.Error()
	}
	status.UpdatedAt = now

	if err := s.db.WithContext(ctx).Save(&status).Error; err != nil {
		s.log.Warn("failed to persist sync status", zap.Error(err))
	}
}

func parseMoney(s string) float64 {
	if s == "" {
		return 0
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}

func splitTags(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return []string{}
	}
	parts := strings.Split(raw, ",")
	tags := make([]string, 0, len(parts))
	for _, part := range parts {
		if tag := strings.TrimSpace(part); tag != "" {
			tags = append(tags, tag)
		}
	}
	return tags
}
