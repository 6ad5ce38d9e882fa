package domain

import (
	"context"
	"errors"
	"time"
)

var (
	ErrNotFound       = errors.New("order_not_found")
	ErrInvalidStatus  = errors.New("invalid_status")
	ErrInvalidRequest = errors.New("invalid_order_request")
)

type ListOrdersRequest struct {
	Statuses      []Status
	Query         string
	StartDate     *time.Time
	EndDate       *time.Time
	PaymentMethod string
	City          string
	State         string
	Tag           string
	Cursor        string
	Limit         int
}

type OrderSummary struct {
	Order
	StatusDisplay StatusDisplay `json:"status_display"`
}

type ListOrdersResponse struct {
	Orders     []OrderSummary `json:"orders"`
	Total      int64          `json:"total"`
	NextCursor string         `json:"next_cursor,omitempty"`
	HasMore    bool           `json:"has_more"`
}

type UpdateStatusRequest struct {
	Ref       string // internal or upstream id
	Status    Status
	Note      string
	ActorID   string
	ActorName string
}

type UpdateTagsRequest struct {
	Ref       string
	Tags      []string
	ActorID   string
	ActorName string
}

type UpdateNoteRequest struct {
	Ref       string
	Note      string
	ActorID   string
	ActorName string
}

type MetricsRequest struct {
	StartDate *time.Time
	EndDate   *time.Time
}

type MetricsResponse struct {
	TotalOrders    int64            `json:"total_orders"`
	StatusCounts   map[Status]int64 `json:"status_counts"`
	ShippedToday   int64            `json:"shipped_today"`
	DeliveredToday int64            `json:"delivered_today"`
	ShippedWeek    int64            `json:"shipped_week"`
	RTOOrders      int64            `json:"rto_orders"`
	DisputedOrders int64            `json:"disputed_orders"`
	SLABreached    int64            `json:"sla_breached"`
}

type Service interface {
	List(ctx context.Context, req ListOrdersRequest) (ListOrdersResponse, error)
	Get(ctx context.Context, ref string) (*OrderSummary, error)
	UpdateStatus(ctx context.Context, req UpdateStatusRequest) error
	UpdateTags(ctx context.Context, req UpdateTagsRequest) error
	UpdateNote(ctx context.Context, req UpdateNoteRequest) error
	Metrics(ctx context.Context, req MetricsRequest) (MetricsResponse, error)
}

// ListFilter is the repository-level projection of ListOrdersRequest.
type ListFilter struct {
	Statuses      []Status
	Query         string
	StartDate     *time.Time
	EndDate       *time.Time
	PaymentMethod string
	City          string
	State         string
	Tag           string
}
