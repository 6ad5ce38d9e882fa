package pagination

import (
	"errors"
	"strconv"
)

// Pagination carries the raw cursor parameters bound from the query string.
// The cursor is the last-seen row id: pages are served as `id < cursor`
// over a fixed newest-id-first sort, which stays stable under concurrent
// inserts because new rows always sort before the cursor window.
type Pagination struct {
	Cursor string `form:"cursor"`
	Limit  int    `form:"limit,default=50" validate:"gte=1,lte=200"`
}

type PageInfo struct {
	NextCursor string `json:"next_cursor,omitempty"`
	HasMore    bool   `json:"has_more"`
}

var ErrInvalidCursor = errors.New("invalid_cursor")

// DecodeIDCursor parses a less-than-id cursor. Empty means first page.
func DecodeIDCursor(cursor string) (int64, error) {
	if cursor == "" {
		return 0, nil
	}
	id, err := strconv.ParseInt(cursor, 10, 64)
	if err != nil || id <= 0 {
		return 0, ErrInvalidCursor
	}
	return id, nil
}

// Trim expects rows fetched with limit+1 and returns the page plus its
// PageInfo. The extra row only signals that a further page exists; the
// boundary id of the trimmed page becomes the next cursor.
func Trim[T any](rows []*T, limit int, lastID func(*T) int64) ([]*T, PageInfo) {
	if len(rows) <= limit {
		return rows, PageInfo{}
	}
	rows = rows[:limit]
	return rows, PageInfo{
		HasMore:    true,
		NextCursor: strconv.FormatInt(lastID(rows[len(rows)-1]), 10),
	}
}
