package domain

import (
	"context"
	"errors"
	"time"
)

var (
	ErrAlreadyCheckedIn = errors.New("already_checked_in")
	ErrNotCheckedIn     = errors.New("not_checked_in")
)

// Hours beyond this per day count as overtime.
const OvertimeThresholdHours = 8.0

type RecordsRequest struct {
	UserID    string // empty for all users
	StartDate *time.Time
	EndDate   *time.Time
}

// ReportRow aggregates one user's attendance over the requested range.
type ReportRow struct {
	UserID      string  `json:"user_id"`
	UserName    string  `json:"user_name"`
	PresentDays int     `json:"present_days"`
	TotalHours  float64 `json:"total_hours"`
	AvgHours    float64 `json:"avg_hours"`
}

// OvertimeRow lists a user's hours beyond the daily threshold.
type OvertimeRow struct {
	UserID        string  `json:"user_id"`
	UserName      string  `json:"user_name"`
	OvertimeHours float64 `json:"overtime_hours"`
	Days          int     `json:"days"`
}

type Service interface {
	// CheckIn opens a record for the user; fails with
	// ErrAlreadyCheckedIn while one is open.
	CheckIn(ctx context.Context, userID, userName string) (*Record, error)

	// CheckOut closes the user's open record; fails with
	// ErrNotCheckedIn when none is open.
	CheckOut(ctx context.Context, userID string) (*Record, error)

	// Open returns the user's open record, nil when none.
	Open(ctx context.Context, userID string) (*Record, error)

	Records(ctx context.Context, req RecordsRequest) ([]Record, error)
	Report(ctx context.Context, req RecordsRequest) ([]ReportRow, error)
	Overtime(ctx context.Context, req RecordsRequest) ([]OvertimeRow, error)

	ExportCSV(ctx context.Context, req RecordsRequest) ([]byte, error)
	ExportXLSX(ctx context.Context, req RecordsRequest) ([]byte, error)
}
