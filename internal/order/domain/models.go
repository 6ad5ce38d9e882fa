package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// Order is the locally stored copy of an upstream commerce order. Rows
// are created on first sync of an upstream id and updated on every
// subsequent sync; they are never hard-deleted (cancellation is a
// status, not a deletion).
type Order struct {
	ID          snowflake.ID `gorm:"primaryKey" json:"id"`
	ShopifyID   string       `gorm:"uniqueIndex;not null" json:"shopify_id"`
	OrderNumber string       `gorm:"index" json:"order_number"`
	Email       string       `json:"email"`
	Phone       string       `json:"phone"`

	CustomerName     string `json:"customer_name"`
	ShippingName     string `json:"shipping_name"`
	ShippingAddress1 string `json:"shipping_address1"`
	ShippingAddress2 string `json:"shipping_address2"`
	ShippingCity     string `json:"shipping_city"`
	ShippingState    string `json:"shipping_state"`
	ShippingPincode  string `json:"shipping_pincode"`
	ShippingCountry  string `json:"shipping_country"`

	Currency       string  `gorm:"default:INR" json:"currency"`
	TotalPrice     float64 `json:"total_price"`
	SubtotalPrice  float64 `json:"subtotal_price"`
	TotalTax       float64 `json:"total_tax"`
	TotalShipping  float64 `json:"total_shipping"`
	TotalDiscounts float64 `json:"total_discounts"`

	PaymentMethod     string `json:"payment_method"` // cod|prepaid
	PaymentStatus     string `json:"payment_status"`
	FulfillmentStatus string `json:"fulfillment_status"`
	CurrentStatus     Status `gorm:"index" json:"current_status"`

	// upstream timestamps, never stamped locally
	CreatedAt   time.Time  `gorm:"autoCreateTime:false" json:"created_at"`
	UpdatedAt   time.Time  `gorm:"autoUpdateTime:false" json:"updated_at"`
	CancelledAt *time.Time `json:"cancelled_at,omitempty"`
	ClosedAt    *time.Time `json:"closed_at,omitempty"`

	SLADueAt    *time.Time `json:"sla_due_at,omitempty"`
	SLABreached bool       `json:"sla_breached"`

	Tags                datatypes.JSONSlice[string] `json:"tags"`
	Note                string                      `gorm:"type:text" json:"note"`
	CustomizationFields datatypes.JSONMap           `json:"customization_fields,omitempty"`

	LineItems    []OrderLineItem    `gorm:"foreignKey:OrderID" json:"line_items,omitempty"`
	Fulfillments []OrderFulfillment `gorm:"foreignKey:OrderID" json:"fulfillments,omitempty"`
	Events       []OrderEvent       `gorm:"foreignKey:OrderID" json:"events,omitempty"`
}

func (Order) TableName() string { return "orders" }

// HasTag reports tag membership.
func (o Order) HasTag(tag string) bool {
	for _, t := range o.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

type OrderLineItem struct {
	ID        snowflake.ID `gorm:"primaryKey" json:"id"`
	OrderID   snowflake.ID `gorm:"index;not null" json:"order_id"`
	ShopifyID string       `gorm:"index" json:"shopify_id"`

	ProductID    string  `json:"product_id"`
	VariantID    string  `json:"variant_id"`
	SKU          string  `json:"sku"`
	Title        string  `json:"title"`
	VariantTitle string  `json:"variant_title"`
	Quantity     int     `json:"quantity"`
	Price        float64 `json:"price"`

	CustomizationFields datatypes.JSONMap `json:"customization_fields,omitempty"`
	RequiresEngraving   bool              `json:"requires_engraving"`
	EngravingText       string            `json:"engraving_text,omitempty"`
}

func (OrderLineItem) TableName() string { return "order_line_items" }

type OrderFulfillment struct {
	ID        snowflake.ID `gorm:"primaryKey" json:"id"`
	OrderID   snowflake.ID `gorm:"index;not null" json:"order_id"`
	ShopifyID string       `gorm:"index" json:"shopify_id"`

	Status          string `json:"status"`
	TrackingNumber  string `json:"tracking_number"`
	TrackingURL     string `json:"tracking_url"`
	TrackingCompany string `json:"tracking_company"`

	CreatedAt time.Time `gorm:"autoCreateTime:false" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime:false" json:"updated_at"`
}

func (OrderFulfillment) TableName() string { return "order_fulfillments" }

// OrderEvent is an append-only audit row. One is written whenever the
// computed status changes, a manual status update happens, or tags/note
// change.
type OrderEvent struct {
	ID      snowflake.ID `gorm:"primaryKey" json:"id"`
	OrderID snowflake.ID `gorm:"index;not null" json:"order_id"`

	EventType string            `gorm:"index" json:"event_type"`
	OldValue  datatypes.JSONMap `json:"old_value,omitempty"`
	NewValue  datatypes.JSONMap `json:"new_value,omitempty"`

	ActorID   string `json:"actor_id"`
	ActorName string `json:"actor_name"`

	CreatedAt time.Time `json:"created_at"`
}

func (OrderEvent) TableName() string { return "order_events" }

const (
	EventStatusChange = "status_change"
	EventTagChange    = "tag_change"
	EventNoteChange   = "note_change"
)

// System actor used for sync-driven events.
const (
	SystemActorID   = "system"
	SystemActorName = "Shopify Sync"
)
