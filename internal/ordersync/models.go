package ordersync

import "time"

// SyncStatus is a singleton row recording the outcome of the most recent
// sync pass, surfaced through the API so operators can see whether the
// upstream connection is healthy.
type SyncStatus struct {
	ID             uint       `gorm:"primaryKey" json:"-"`
	LastSyncAt     *time.Time `json:"last_sync_at,omitempty"`
	LastBackfillAt *time.Time `json:"last_backfill_at,omitempty"`
	OrdersSynced   int        `json:"orders_synced"`
	Status         string     `json:"status"` // success|error|never
	LastError      string     `json:"last_error,omitempty"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

func (SyncStatus) TableName() string { return "sync_status" }

const (
	SyncStatusNever   = "never"
	SyncStatusSuccess = "success"
	SyncStatusError   = "error"
)
