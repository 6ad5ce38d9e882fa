package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"sort"

	"github.com/erayastyle/ops-hub/internal/attendance/domain"
	"github.com/erayastyle/ops-hub/internal/clock"
	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	Repo  domain.Repository
	Clock clock.Clock
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	repo  domain.Repository
	clock clock.Clock
}

func New(p Params) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("attendance.service"),
		repo:  p.Repo,
		clock: p.Clock,
	}
}

func (s *Service) CheckIn(ctx context.Context, userID, userName string) (*domain.Record, error) {
	var record *domain.Record
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		open, err := s.repo.FindOpen(ctx, tx, userID)
		if err != nil {
			return err
		}
		if open != nil {
			return domain.ErrAlreadyCheckedIn
		}

		now := s.clock.Now()
		record = &domain.Record{
			ID:        uuid.NewString(),
			UserID:    userID,
			UserName:  userName,
			Date:      domain.DateBucket(now),
			CheckIn:   now,
			CreatedAt: now,
			UpdatedAt: now,
		}
		return s.repo.Insert(ctx, tx, record)
	})
	if err != nil {
		return nil, err
	}
	return record, nil
}

func (s *Service) CheckOut(ctx context.Context, userID string) (*domain.Record, error) {
	var record *domain.Record
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		open, err := s.repo.FindOpen(ctx, tx, userID)
		if err != nil {
			return err
		}
		if open == nil {
			return domain.ErrNotCheckedIn
		}

		now := s.clock.Now()
		open.CheckOut = &now
		open.UpdatedAt = now
		record = open
		return s.repo.Save(ctx, tx, open)
	})
	if err != nil {
		return nil, err
	}
	return record, nil
}

func (s *Service) Open(ctx context.Context, userID string) (*domain.Record, error) {
	return s.repo.FindOpen(ctx, s.db, userID)
}

func (s *Service) Records(ctx context.Context, req domain.RecordsRequest) ([]domain.Record, error) {
	return s.repo.List(ctx, s.db, req)
}

func (s *Service) Report(ctx context.Context, req domain.RecordsRequest) ([]domain.ReportRow, error) {
	records, err := s.repo.List(ctx, s.db, req)
	if err != nil {
		return nil, err
	}

	byUser := make(map[string]*domain.ReportRow)
	days := make(map[string]map[string]struct{})
	for _, record := range records {
		row, ok := byUser[record.UserID]
		if !ok {
			row = &domain.ReportRow{UserID: record.UserID, UserName: record.UserName}
			byUser[record.UserID] = row
			days[record.UserID] = make(map[string]struct{})
		}
		days[record.UserID][record.Date] = struct{}{}
		row.TotalHours += record.WorkedHours()
	}

	rows := make([]domain.ReportRow, 0, len(byUser))
	for userID, row := range byUser {
		row.PresentDays = len(days[userID])
		if row.PresentDays > 0 {
			row.AvgHours = row.TotalHours / float64(row.PresentDays)
		}
		rows = append(rows, *row)
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].UserName < rows[j].UserName })
	return rows, nil
}

func (s *Service) Overtime(ctx context.Context, req domain.RecordsRequest) ([]domain.OvertimeRow, error) {
	records, err := s.repo.List(ctx, s.db, req)
	if err != nil {
		return nil, err
	}

	// Sum per user per day first so split shifts within one day count
	// against a single threshold.
	type dayKey struct{ userID, date string }
	hoursByDay := make(map[dayKey]float64)
	names := make(map[string]string)
	for _, record := range records {
		hoursByDay[dayKey{record.UserID, record.Date}] += record.WorkedHours()
		names[record.UserID] = record.UserName
	}

	byUser := make(map[string]*domain.OvertimeRow)
	for key, hours := range hoursByDay {
		if hours <= domain.OvertimeThresholdHours {
			continue
		}
		row, ok := byUser[key.userID]
		if !ok {
			row = &domain.OvertimeRow{UserID: key.userID, UserName: names[key.userID]}
			byUser[key.userID] = row
		}
		row.OvertimeHours += hours - domain.OvertimeThresholdHours
		row.Days++
	}

	rows := make([]domain.OvertimeRow, 0, len(byUser))
	for _, row := range byUser {
		rows = append(rows, *row)
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].UserName < rows[j].UserName })
	return rows, nil
}

var exportHeader = []string{"Date", "User", "Check In", "Check Out", "Hours"}

func (s *Service) ExportCSV(ctx context.Context, req domain.RecordsRequest) ([]byte, error) {
	records, err := s.repo.List(ctx, s.db, req)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(exportHeader); err != nil {
		return nil, err
	}
	for _, record := range records {
		if err := w.Write(exportRow(record)); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (s *Service) ExportXLSX(ctx context.Context, req domain.RecordsRequest) ([]byte, error) {
	records, err := s.repo.List(ctx, s.db, req)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Attendance"
	idx, err := f.NewSheet(sheet)
	if err != nil {
		return nil, err
	}
	f.SetActiveSheet(idx)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, err
	}

	for col, title := range exportHeader {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		if err := f.SetCellValue(sheet, cell, title); err != nil {
			return nil, err
		}
	}
	for i, record := range records {
		for col, value := range exportRow(record) {
			cell, _ := excelize.CoordinatesToCellName(col+1, i+2)
			if err := f.SetCellValue(sheet, cell, value); err != nil {
				return nil, err
			}
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func exportRow(record domain.Record) []string {
	checkOut := ""
	if record.CheckOut != nil {
		checkOut = record.CheckOut.Format("15:04:05")
	}
	return []string{
		record.Date,
		record.UserName,
		record.CheckIn.Format("15:04:05"),
		checkOut,
		fmt.Sprintf("%.2f", record.WorkedHours()),
	}
}
