package domain

import "time"

// Record is one user's attendance for one day. At most one record per
// user may have a nil CheckOut; checking in while one is open is
// rejected.
type Record struct {
	ID       string     `gorm:"primaryKey" json:"id"`
	UserID   string     `gorm:"index;not null" json:"user_id"`
	UserName string     `json:"user_name"`
	Date     string     `gorm:"index;not null" json:"date"` // YYYY-MM-DD bucket
	CheckIn  time.Time  `json:"check_in"`
	CheckOut *time.Time `json:"check_out,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Record) TableName() string { return "attendance_records" }

// WorkedHours is the span between check-in and check-out, zero while
// the record is still open.
func (r Record) WorkedHours() float64 {
	if r.CheckOut == nil {
		return 0
	}
	return r.CheckOut.Sub(r.CheckIn).Hours()
}

// DateBucket formats a timestamp into the day key records are grouped by.
func DateBucket(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}
