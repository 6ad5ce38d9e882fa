package ordersync

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/erayastyle/ops-hub/internal/clock"
	"github.com/erayastyle/ops-hub/internal/config"
	orderdomain "github.com/erayastyle/ops-hub/internal/order/domain"
	orderrepo "github.com/erayastyle/ops-hub/internal/order/repository"
	"github.com/erayastyle/ops-hub/internal/shopify"
	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newTestService(t *testing.T, cfg config.Config) (*Service, *gorm.DB) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&orderdomain.Order{},
		&orderdomain.OrderLineItem{},
		&orderdomain.OrderFulfillment{},
		&orderdomain.OrderEvent{},
		&SyncStatus{},
	))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	svc := New(Params{
		DB:    db,
		Log:   zap.NewNop(),
		GenID: node,
		Cfg:   cfg,
		SLA:   config.NewStaticSLAPolicyHolder(config.DefaultSLAPolicy()),
		Clock: clock.NewFakeClock(time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)),
		Repo:  orderrepo.Provide(),
	})
	return svc, db
}

func paidOrder(id int64) shopify.Order {
	return shopify.Order{
		ID:              id,
		OrderNumber:     1000 + id,
		Email:           "buyer@example.com",
		Currency:        "INR",
		TotalPrice:      "1499.00",
		FinancialStatus: "paid",
		PaymentGatewayNames: []string{
			"razorpay",
		},
		Tags:      "priority, gift",
		CreatedAt: time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC),
		UpdatedAt: time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC),
		LineItems: []shopify.LineItem{
			{ID: id * 10, Title: "Ring", Quantity: 1, Price: "1499.00"},
		},
	}
}

func TestSyncOrderCreateAndIdempotentResync(t *testing.T) {
	svc, db := newTestService(t, config.Config{})
	ctx := context.Background()

	changed, err := svc.SyncOrder(ctx, paidOrder(1))
	require.NoError(t, err)
	assert.True(t, changed)

	// same payload again: no new row, no new event
	changed, err = svc.SyncOrder(ctx, paidOrder(1))
	require.NoError(t, err)
	assert.False(t, changed)

	var orders int64
	require.NoError(t, db.Model(&orderdomain.Order{}).Count(&orders).Error)
	assert.Equal(t, int64(1), orders)

	// scalar fields carry the upstream values, not sync wall-clock time,
	// and a resync of an identical payload leaves them untouched
	var stored orderdomain.Order
	require.NoError(t, db.First(&stored).Error)
	payload := paidOrder(1)
	assert.Equal(t, payload.CreatedAt, stored.CreatedAt.UTC())
	assert.Equal(t, payload.UpdatedAt, stored.UpdatedAt.UTC())
	assert.Equal(t, "buyer@example.com", stored.Email)
	assert.Equal(t, 1499.0, stored.TotalPrice)

	var events []orderdomain.OrderEvent
	require.NoError(t, db.Find(&events).Error)
	require.Len(t, events, 1)
	assert.Equal(t, orderdomain.EventStatusChange, events[0].EventType)
	assert.Empty(t, events[0].OldValue, "first transition carries no old value")
	assert.Equal(t, string(orderdomain.StatusReadyToPack), events[0].NewValue["status"])
}

func TestSyncOrderStatusTransition(t *testing.T) {
	svc, db := newTestService(t, config.Config{})
	ctx := context.Background()

	_, err := svc.SyncOrder(ctx, paidOrder(2))
	require.NoError(t, err)

	next := paidOrder(2)
	next.FulfillmentStatus = "fulfilled"
	next.Fulfillments = []shopify.Fulfillment{{
		ID:             21,
		Status:         "success",
		TrackingNumber: "AWB123",
		CreatedAt:      time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC),
		UpdatedAt:      time.Date(2026, 3, 10, 10, 30, 0, 0, time.UTC),
	}}
	changed, err := svc.SyncOrder(ctx, next)
	require.NoError(t, err)
	assert.True(t, changed)

	var fulfillment orderdomain.OrderFulfillment
	require.NoError(t, db.First(&fulfillment).Error)
	assert.Equal(t, "AWB123", fulfillment.TrackingNumber)
	assert.Equal(t, next.Fulfillments[0].CreatedAt, fulfillment.CreatedAt.UTC())
	assert.Equal(t, next.Fulfillments[0].UpdatedAt, fulfillment.UpdatedAt.UTC())

	var events []orderdomain.OrderEvent
	require.NoError(t, db.Order("created_at asc, id asc").Find(&events).Error)
	require.Len(t, events, 2)
	assert.Equal(t, string(orderdomain.StatusReadyToPack), events[1].OldValue["status"])
	assert.Equal(t, string(orderdomain.StatusShipped), events[1].NewValue["status"])

	var order orderdomain.Order
	require.NoError(t, db.First(&order).Error)
	assert.Equal(t, orderdomain.StatusShipped, order.CurrentStatus)
}

func TestSyncOrderUpsertsByUpstreamID(t *testing.T) {
	svc, db := newTestService(t, config.Config{})
	ctx := context.Background()

	// 30 payloads cycling over 10 upstream ids; last write wins
	for i := 0; i < 30; i++ {
		payload := paidOrder(int64(i%10 + 1))
		payload.Note = fmt.Sprintf("pass %d", i)
		_, err := svc.SyncOrder(ctx, payload)
		require.NoError(t, err)
	}

	var orders []orderdomain.Order
	require.NoError(t, db.Find(&orders).Error)
	require.Len(t, orders, 10)
	for _, o := range orders {
		assert.Contains(t, o.Note, "pass 2", "last write should win")
	}

	// children were upserted, not duplicated
	var items int64
	require.NoError(t, db.Model(&orderdomain.OrderLineItem{}).Count(&items).Error)
	assert.Equal(t, int64(10), items)
}

func TestSyncOrderPaymentMethod(t *testing.T) {
	svc, db := newTestService(t, config.Config{})
	ctx := context.Background()

	cod := paidOrder(5)
	cod.PaymentGatewayNames = []string{"cash_on_delivery"}
	_, err := svc.SyncOrder(ctx, cod)
	require.NoError(t, err)

	mixed := paidOrder(6)
	mixed.PaymentGatewayNames = []string{"cash_on_delivery", "razorpay"}
	_, err = svc.SyncOrder(ctx, mixed)
	require.NoError(t, err)

	var first, second orderdomain.Order
	require.NoError(t, db.Where("shopify_id = ?", "5").First(&first).Error)
	require.NoError(t, db.Where("shopify_id = ?", "6").First(&second).Error)
	assert.Equal(t, "cod", first.PaymentMethod)
	assert.Equal(t, "prepaid", second.PaymentMethod)
}

func TestSyncOrderDefaultsFulfillmentStatus(t *testing.T) {
	svc, db := newTestService(t, config.Config{})

	_, err := svc.SyncOrder(context.Background(), paidOrder(7))
	require.NoError(t, err)

	var order orderdomain.Order
	require.NoError(t, db.First(&order).Error)
	assert.Equal(t, "unfulfilled", order.FulfillmentStatus)
	assert.Equal(t, []string{"priority", "gift"}, []string(order.Tags))
}

func TestVerifyWebhookRequiresSecret(t *testing.T) {
	svc, _ := newTestService(t, config.Config{})
	assert.False(t, svc.VerifyWebhook([]byte(`{}`), "any"))
}

func TestHandleWebhook(t *testing.T) {
	svc, db := newTestService(t, config.Config{})

	body := []byte(`{"id": 42, "order_number": 1042, "financial_status": "pending", "created_at": "2026-03-10T09:00:00Z", "updated_at": "2026-03-10T09:00:00Z"}`)
	require.NoError(t, svc.HandleWebhook(context.Background(), body))

	var order orderdomain.Order
	require.NoError(t, db.Where("shopify_id = ?", "42").First(&order).Error)
	assert.Equal(t, orderdomain.StatusPending, order.CurrentStatus)
}

func TestBackfillPagesThroughListing(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if r.URL.Query().Get("page_info") == "" {
			w.Header().Set("Link", fmt.Sprintf(`<%s/admin/api/2024-01/orders.json?page_info=p2>; rel="next"`, "https://x.example"))
			fmt.Fprint(w, `{"orders":[{"id":1,"financial_status":"paid"},{"id":2,"financial_status":"pending"}]}`)
			return
		}
		fmt.Fprint(w, `{"orders":[{"id":3,"financial_status":"paid"}]}`)
	}))
	defer srv.Close()

	svc, db := newTestService(t, config.Config{
		ShopifyShopURL:     srv.URL,
		ShopifyAccessToken: "token",
	})

	synced, err := svc.Backfill(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, 3, synced)
	assert.Equal(t, 2, calls)

	var orders int64
	require.NoError(t, db.Model(&orderdomain.Order{}).Count(&orders).Error)
	assert.Equal(t, int64(3), orders)

	status, err := svc.Status(context.Background())
	require.NoError(t, err)
	assert.Equal(t, SyncStatusSuccess, status.Status)
	require.NotNil(t, status.LastBackfillAt)
}

func TestSyncRecentUsesHighWaterMark(t *testing.T) {
	var sinceID string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sinceID = r.URL.Query().Get("since_id")
		fmt.Fprint(w, `{"orders":[{"id":11,"financial_status":"paid"}]}`)
	}))
	defer srv.Close()

	svc, _ := newTestService(t, config.Config{
		ShopifyShopURL:     srv.URL,
		ShopifyAccessToken: "token",
	})

	_, err := svc.SyncOrder(context.Background(), paidOrder(9))
	require.NoError(t, err)

	synced, err := svc.SyncRecent(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, synced)
	assert.Equal(t, "9", sinceID)
}

func TestSyncNotConfigured(t *testing.T) {
	svc, _ := newTestService(t, config.Config{})

	_, err := svc.SyncRecent(context.Background())
	require.ErrorIs(t, err, shopify.ErrNotConfigured)

	_, err = svc.Backfill(context.Background(), nil)
	require.ErrorIs(t, err, shopify.ErrNotConfigured)
}

func TestStatusDefaultsToNever(t *testing.T) {
	svc, _ := newTestService(t, config.Config{})

	status, err := svc.Status(context.Background())
	require.NoError(t, err)
	assert.Equal(t, SyncStatusNever, status.Status)
}
