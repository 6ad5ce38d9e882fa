package domain

import (
	"time"

	"github.com/erayastyle/ops-hub/internal/config"
	"github.com/erayastyle/ops-hub/internal/shopify"
)

// ComputeSLADueAt returns the deadline by which an order is expected to
// leave its current status, nil for terminal statuses and for statuses
// without a budget (on_hold, disputed, error). Engraved orders get the
// configured surcharge on top of the base budget.
func ComputeSLADueAt(o shopify.Order, status Status, policy config.SLAPolicy) *time.Time {
	if status.Terminal() {
		return nil
	}

	hours, ok := policy.Hours[string(status)]
	if !ok || hours <= 0 {
		return nil
	}

	if o.RequiresEngraving() {
		hours += policy.EngravingSurchargeHours
	}

	due := o.CreatedAt.Add(time.Duration(hours) * time.Hour)
	return &due
}

// StoredSLADueAt mirrors ComputeSLADueAt for an order already in the
// store, used when a status is set manually and no upstream payload is
// at hand. Engraving is read off the persisted line items.
func StoredSLADueAt(o *Order, status Status, policy config.SLAPolicy) *time.Time {
	if status.Terminal() {
		return nil
	}

	hours, ok := policy.Hours[string(status)]
	if !ok || hours <= 0 {
		return nil
	}

	for _, li := range o.LineItems {
		if li.RequiresEngraving {
			hours += policy.EngravingSurchargeHours
			break
		}
	}

	due := o.CreatedAt.Add(time.Duration(hours) * time.Hour)
	return &due
}

// IsSLABreached is a point-in-time check against now; it is recomputed
// on every sync pass rather than maintained as independent state.
func IsSLABreached(o shopify.Order, status Status, policy config.SLAPolicy, now time.Time) bool {
	due := ComputeSLADueAt(o, status, policy)
	if due == nil {
		return false
	}
	return now.After(*due)
}
