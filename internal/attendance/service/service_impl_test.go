package service

import (
	"context"
	"encoding/csv"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/erayastyle/ops-hub/internal/attendance/domain"
	"github.com/erayastyle/ops-hub/internal/attendance/repository"
	"github.com/erayastyle/ops-hub/internal/clock"
	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newTestService(t *testing.T) (domain.Service, *clock.FakeClock) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.Record{}))

	fake := clock.NewFakeClock(time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC))
	svc := New(Params{
		DB:    db,
		Log:   zap.NewNop(),
		Repo:  repository.Provide(),
		Clock: fake,
	})
	return svc, fake
}

func TestCheckInCheckOutCycle(t *testing.T) {
	svc, fake := newTestService(t)
	ctx := context.Background()

	record, err := svc.CheckIn(ctx, "u1", "Priya")
	require.NoError(t, err)
	assert.Equal(t, "2026-03-10", record.Date)
	assert.Nil(t, record.CheckOut)

	// double check-in rejected while a record is open
	_, err = svc.CheckIn(ctx, "u1", "Priya")
	require.ErrorIs(t, err, domain.ErrAlreadyCheckedIn)

	// another user is unaffected
	_, err = svc.CheckIn(ctx, "u2", "Arun")
	require.NoError(t, err)

	fake.Advance(9 * time.Hour)
	closed, err := svc.CheckOut(ctx, "u1")
	require.NoError(t, err)
	require.NotNil(t, closed.CheckOut)
	assert.InDelta(t, 9.0, closed.WorkedHours(), 0.001)

	// check-out without an open record rejected
	_, err = svc.CheckOut(ctx, "u1")
	require.ErrorIs(t, err, domain.ErrNotCheckedIn)

	open, err := svc.Open(ctx, "u1")
	require.NoError(t, err)
	assert.Nil(t, open)
}

func workDay(t *testing.T, svc domain.Service, fake *clock.FakeClock, userID, userName string, hours time.Duration) {
	t.Helper()
	_, err := svc.CheckIn(context.Background(), userID, userName)
	require.NoError(t, err)
	fake.Advance(hours)
	_, err = svc.CheckOut(context.Background(), userID)
	require.NoError(t, err)
}

func TestReportAggregatesPerUser(t *testing.T) {
	svc, fake := newTestService(t)
	ctx := context.Background()

	workDay(t, svc, fake, "u1", "Priya", 8*time.Hour)
	fake.Advance(16 * time.Hour) // next day
	workDay(t, svc, fake, "u1", "Priya", 6*time.Hour)
	workDay(t, svc, fake, "u2", "Arun", 4*time.Hour)

	rows, err := svc.Report(ctx, domain.RecordsRequest{})
	require.NoError(t, err)
	require.Len(t, rows, 2)

	// sorted by name
	assert.Equal(t, "Arun", rows[0].UserName)
	assert.Equal(t, 1, rows[0].PresentDays)
	assert.InDelta(t, 4.0, rows[0].TotalHours, 0.001)

	assert.Equal(t, "Priya", rows[1].UserName)
	assert.Equal(t, 2, rows[1].PresentDays)
	assert.InDelta(t, 14.0, rows[1].TotalHours, 0.001)
	assert.InDelta(t, 7.0, rows[1].AvgHours, 0.001)
}

func TestOvertimeCountsHoursBeyondThreshold(t *testing.T) {
	svc, fake := newTestService(t)
	ctx := context.Background()

	// split shift: 5h + 6h on the same day counts once against the threshold
	workDay(t, svc, fake, "u1", "Priya", 5*time.Hour)
	fake.Advance(time.Hour)
	workDay(t, svc, fake, "u1", "Priya", 6*time.Hour)

	workDay(t, svc, fake, "u2", "Arun", 7*time.Hour)

	rows, err := svc.Overtime(ctx, domain.RecordsRequest{})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "u1", rows[0].UserID)
	assert.InDelta(t, 3.0, rows[0].OvertimeHours, 0.001)
	assert.Equal(t, 1, rows[0].Days)
}

func TestRecordsFilter(t *testing.T) {
	svc, fake := newTestService(t)
	ctx := context.Background()

	workDay(t, svc, fake, "u1", "Priya", 8*time.Hour)
	workDay(t, svc, fake, "u2", "Arun", 8*time.Hour)

	records, err := svc.Records(ctx, domain.RecordsRequest{UserID: "u1"})
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "u1", records[0].UserID)
}

func TestExportCSV(t *testing.T) {
	svc, fake := newTestService(t)
	workDay(t, svc, fake, "u1", "Priya", 8*time.Hour)

	data, err := svc.ExportCSV(context.Background(), domain.RecordsRequest{})
	require.NoError(t, err)

	rows, err := csv.NewReader(strings.NewReader(string(data))).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"Date", "User", "Check In", "Check Out", "Hours"}, rows[0])
	assert.Equal(t, "2026-03-10", rows[1][0])
	assert.Equal(t, "Priya", rows[1][1])
}

func TestExportXLSX(t *testing.T) {
	svc, fake := newTestService(t)
	workDay(t, svc, fake, "u1", "Priya", 8*time.Hour)

	data, err := svc.ExportXLSX(context.Background(), domain.RecordsRequest{})
	require.NoError(t, err)

	book, err := excelize.OpenReader(strings.NewReader(string(data)))
	require.NoError(t, err)
	defer book.Close()

	cells, err := book.GetRows("Attendance")
	require.NoError(t, err)
	require.Len(t, cells, 2)
	assert.Equal(t, "Date", cells[0][0])
	assert.Equal(t, "Priya", cells[1][1])
}
