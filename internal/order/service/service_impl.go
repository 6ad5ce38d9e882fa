package service

import (
	"context"
	"sort"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/erayastyle/ops-hub/internal/clock"
	"github.com/erayastyle/ops-hub/internal/config"
	"github.com/erayastyle/ops-hub/internal/order/domain"
	"github.com/erayastyle/ops-hub/pkg/db/pagination"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Repo  domain.Repository
	SLA   *config.SLAPolicyHolder
	Clock clock.Clock
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	repo  domain.Repository
	sla   *config.SLAPolicyHolder
	clock clock.Clock
}

func New(p Params) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("order.service"),
		genID: p.GenID,
		repo:  p.Repo,
		sla:   p.SLA,
		clock: p.Clock,
	}
}

func (s *Service) List(ctx context.Context, req domain.ListOrdersRequest) (domain.ListOrdersResponse, error) {
	for _, status := range req.Statuses {
		if !domain.ValidStatus(status) {
			return domain.ListOrdersResponse{}, domain.ErrInvalidStatus
		}
	}

	limit := req.Limit
	if limit <= 0 {
		limit = 50
	}
	if limit > 200 {
		limit = 200
	}

	beforeID, err := pagination.DecodeIDCursor(req.Cursor)
	if err != nil {
		return domain.ListOrdersResponse{}, domain.ErrInvalidRequest
	}

	filter := domain.ListFilter{
		Statuses:      req.Statuses,
		Query:         strings.TrimSpace(req.Query),
		StartDate:     req.StartDate,
		EndDate:       req.EndDate,
		PaymentMethod: strings.TrimSpace(req.PaymentMethod),
		City:          strings.TrimSpace(req.City),
		State:         strings.TrimSpace(req.State),
		Tag:           strings.TrimSpace(req.Tag),
	}

	rows, err := s.repo.List(ctx, s.db, filter, limit+1, snowflake.ID(beforeID))
	if err != nil {
		return domain.ListOrdersResponse{}, err
	}

	total, err := s.repo.Count(ctx, s.db, filter)
	if err != nil {
		return domain.ListOrdersResponse{}, err
	}

	rows, pageInfo := pagination.Trim(rows, limit, func(o *domain.Order) int64 {
		return int64(o.ID)
	})

	orders := make([]domain.OrderSummary, 0, len(rows))
	for _, row := range rows {
		orders = append(orders, domain.OrderSummary{
			Order:         *row,
			StatusDisplay: row.CurrentStatus.Display(),
		})
	}

	return domain.ListOrdersResponse{
		Orders:     orders,
		Total:      total,
		NextCursor: pageInfo.NextCursor,
		HasMore:    pageInfo.HasMore,
	}, nil
}

func (s *Service) Get(ctx context.Context, ref string) (*domain.OrderSummary, error) {
	order, err := s.repo.FindByRef(ctx, s.db, ref)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, domain.ErrNotFound
	}
	return &domain.OrderSummary{
		Order:         *order,
		StatusDisplay: order.CurrentStatus.Display(),
	}, nil
}

func (s *Service) UpdateStatus(ctx context.Context, req domain.UpdateStatusRequest) error {
	if !domain.ValidStatus(req.Status) {
		return domain.ErrInvalidStatus
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		order, err := s.repo.FindByRef(ctx, tx, req.Ref)
		if err != nil {
			return err
		}
		if order == nil {
			return domain.ErrNotFound
		}
		if order.CurrentStatus == req.Status {
			return nil
		}

		policy := s.sla.Get()
		now := s.clock.Now()

		old := order.CurrentStatus
		order.CurrentStatus = req.Status
		order.SLADueAt = domain.StoredSLADueAt(order, req.Status, policy)
		order.SLABreached = order.SLADueAt != nil && now.After(*order.SLADueAt)
		order.UpdatedAt = now

		if err := s.repo.Save(ctx, tx, order); err != nil {
			return err
		}

		newValue := datatypes.JSONMap{"status": string(req.Status)}
		if note := strings.TrimSpace(req.Note); note != "" {
			newValue["note"] = note
		}

		return s.repo.AppendEvent(ctx, tx, &domain.OrderEvent{
			ID:        s.genID.Generate(),
			OrderID:   order.ID,
			EventType: domain.EventStatusChange,
			OldValue:  datatypes.JSONMap{"status": string(old)},
			NewValue:  newValue,
			ActorID:   req.ActorID,
			ActorName: req.ActorName,
			CreatedAt: now,
		})
	})
}

func (s *Service) UpdateTags(ctx context.Context, req domain.UpdateTagsRequest) error {
	tags := make([]string, 0, len(req.Tags))
	seen := make(map[string]struct{}, len(req.Tags))
	for _, tag := range req.Tags {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			continue
		}
		if _, ok := seen[tag]; ok {
			continue
		}
		seen[tag] = struct{}{}
		tags = append(tags, tag)
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		order, err := s.repo.FindByRef(ctx, tx, req.Ref)
		if err != nil {
			return err
		}
		if order == nil {
			return domain.ErrNotFound
		}
		if equalTagSets(order.Tags, tags) {
			return nil
		}

		now := s.clock.Now()
		old := []string(order.Tags)
		order.Tags = datatypes.JSONSlice[string](tags)
		order.UpdatedAt = now

		if err := s.repo.Save(ctx, tx, order); err != nil {
			return err
		}

		return s.repo.AppendEvent(ctx, tx, &domain.OrderEvent{
			ID:        s.genID.Generate(),
			OrderID:   order.ID,
			EventType: domain.EventTagChange,
			OldValue:  datatypes.JSONMap{"tags": old},
			NewValue:  datatypes.JSONMap{"tags": tags},
			ActorID:   req.ActorID,
			ActorName: req.ActorName,
			CreatedAt: now,
		})
	})
}

func (s *Service) UpdateNote(ctx context.Context, req domain.UpdateNoteRequest) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		order, err := s.repo.FindByRef(ctx, tx, req.Ref)
		if err != nil {
			return err
		}
		if order == nil {
			return domain.ErrNotFound
		}
		if order.Note == req.Note {
			return nil
		}

		now := s.clock.Now()
		old := order.Note
		order.Note = req.Note
		order.UpdatedAt = now

		if err := s.repo.Save(ctx, tx, order); err != nil {
			return err
		}

		return s.repo.AppendEvent(ctx, tx, &domain.OrderEvent{
			ID:        s.genID.Generate(),
			OrderID:   order.ID,
			EventType: domain.EventNoteChange,
			OldValue:  datatypes.JSONMap{"note": old},
			NewValue:  datatypes.JSONMap{"note": req.Note},
			ActorID:   req.ActorID,
			ActorName: req.ActorName,
			CreatedAt: now,
		})
	})
}

func (s *Service) Metrics(ctx context.Context, req domain.MetricsRequest) (domain.MetricsResponse, error) {
	return s.repo.Metrics(ctx, s.db, req.StartDate, req.EndDate, s.clock.Now())
}

func equalTagSets(a []string, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	as := append([]string(nil), a...)
	bs := append([]string(nil), b...)
	sort.Strings(as)
	sort.Strings(bs)
	for i := range as {
		if as[i] != bs[i] {
			return false
		}
	}
	return true
}
