package domain

import (
	"github.com/erayastyle/ops-hub/internal/shopify"
)

// Status is the internal order status derived from the upstream payload.
type Status string

const (
	StatusPending     Status = "pending"
	StatusConfirmed   Status = "confirmed"
	StatusProcessing  Status = "processing"
	StatusReadyToPack Status = "ready_to_pack"
	StatusPacked      Status = "packed"
	StatusShipped     Status = "shipped"
	StatusDelivered   Status = "delivered"
	StatusCancelled   Status = "cancelled"
	StatusReturned    Status = "returned"
	StatusRefunded    Status = "refunded"
	StatusOnHold      Status = "on_hold"
	StatusDisputed    Status = "disputed"
	StatusError       Status = "error"
)

// AllStatuses lists every internal status, in display order.
var AllStatuses = []Status{
	StatusPending, StatusConfirmed, StatusProcessing, StatusReadyToPack,
	StatusPacked, StatusShipped, StatusDelivered, StatusCancelled,
	StatusReturned, StatusRefunded, StatusOnHold, StatusDisputed, StatusError,
}

// ValidStatus reports whether s names a defined status.
func ValidStatus(s Status) bool {
	for _, known := range AllStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// terminal statuses carry no SLA.
func (s Status) Terminal() bool {
	switch s {
	case StatusDelivered, StatusCancelled, StatusRefunded, StatusReturned:
		return true
	}
	return false
}

// ComputeStatus classifies an upstream payload into an internal status.
// The checks run in a fixed order because upstream fields co-occur:
// cancellation and closure win over fulfillment, which wins over the
// financial status. Total and deterministic over its input.
func ComputeStatus(o shopify.Order) Status {
	if o.CancelledAt != nil {
		if o.HasSuccessfulRefund() {
			return StatusRefunded
		}
		return StatusCancelled
	}

	if o.ClosedAt != nil {
		if len(o.Refunds) > 0 {
			return StatusRefunded
		}
		return StatusDelivered
	}

	switch o.FulfillmentStatus {
	case "fulfilled":
		if f := o.LatestFulfillment(); f != nil && f.TrackingInfo.Status == "delivered" {
			return StatusDelivered
		}
		return StatusShipped
	case "partial":
		return StatusProcessing
	}

	switch o.FinancialStatus {
	case "pending":
		return StatusPending
	case "paid", "partially_paid":
		if o.RequiresEngraving() {
			return StatusProcessing
		}
		return StatusReadyToPack
	}

	if o.HasOpenDispute() {
		return StatusDisputed
	}

	if o.FinancialStatus == "voided" {
		return StatusError
	}

	return StatusPending
}
