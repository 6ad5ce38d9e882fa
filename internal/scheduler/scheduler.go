package scheduler

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/erayastyle/ops-hub/internal/clock"
	obsmetrics "github.com/erayastyle/ops-hub/internal/observability/metrics"
	"github.com/erayastyle/ops-hub/internal/ordersync"
	"github.com/erayastyle/ops-hub/internal/shopify"
	taskdomain "github.com/erayastyle/ops-hub/internal/task/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var ErrInvalidConfig = errors.New("scheduler: invalid configuration")

type Params struct {
	fx.In

	Log     *zap.Logger
	SyncSvc *ordersync.Service
	TaskSvc taskdomain.Service
	Clock   clock.Clock
	Config  Config `optional:"true"`
}

type Scheduler struct {
	log     *zap.Logger
	cfg     Config
	clock   clock.Clock
	syncSvc *ordersync.Service
	taskSvc taskdomain.Service
}

func New(p Params) (*Scheduler, error) {
	if p.Log == nil || p.SyncSvc == nil || p.TaskSvc == nil || p.Clock == nil {
		return nil, ErrInvalidConfig
	}
	return &Scheduler{
		log:     p.Log.Named("scheduler").With(zap.String("component", "scheduler")),
		cfg:     p.Config.withDefaults(),
		clock:   p.Clock,
		syncSvc: p.SyncSvc,
		taskSvc: p.TaskSvc,
	}, nil
}

func (s *Scheduler) runJob(
	parent context.Context,
	name string,
	timeout time.Duration,
	fn func(ctx context.Context) error,
) error {
	start := s.clock.Now()
	ctx, cancel := context.WithTimeout(parent, timeout)
	defer cancel()

	log := s.log.With(zap.String("job", name))
	schedMetrics := obsmetrics.Scheduler()
	schedMetrics.IncJobRun(name)

	err := fn(ctx)
	schedMetrics.ObserveJobDuration(name, time.Since(start))
	if err == nil {
		return nil
	}

	// treat deadline as soft-timeout
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		schedMetrics.IncJobTimeout(name)
		log.Warn("job timed out",
			zap.Duration("timeout", timeout),
			zap.Error(err),
		)
		return nil
	}

	schedMetrics.IncJobError(name)
	return fmt.Errorf("%s: %w", name, err)
}

// OrderSyncJob pulls orders newer than the highest stored upstream id.
// An unconfigured integration is skipped silently so the rest of the
// hub keeps running without credentials.
func (s *Scheduler) OrderSyncJob(ctx context.Context) error {
	synced, err := s.syncSvc.SyncRecent(ctx)
	if err != nil {
		if errors.Is(err, shopify.ErrNotConfigured) {
			return nil
		}
		return err
	}
	if synced > 0 {
		s.log.Info("order sync pass complete", zap.Int("synced", synced))
	}
	return nil
}

// RecurringTasksJob spawns tasks for templates whose window covers now.
func (s *Scheduler) RecurringTasksJob(ctx context.Context) error {
	spawned, err := s.taskSvc.SpawnRecurring(ctx, s.clock.Now())
	if err != nil {
		return err
	}
	if spawned > 0 {
		s.log.Info("recurring tasks spawned", zap.Int("spawned", spawned))
	}
	return nil
}

func (s *Scheduler) RunOnce(parent context.Context) error {
	var err error

	jobs := []struct {
		Name    string
		Timeout time.Duration
		Run     func(context.Context) error
	}{
		{"order_sync", s.cfg.SyncTimeout, s.OrderSyncJob},
		{"recurring_tasks", s.cfg.RecurringTimeout, s.RecurringTasksJob},
	}

	for _, job := range jobs {
		if !s.isJobEnabled(job.Name) {
			continue
		}
		err = errors.Join(err, s.runJob(parent, job.Name, job.Timeout, job.Run))
	}
	return err
}

func (s *Scheduler) RunForever(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.RunInterval)
	defer ticker.Stop()

	for {
		if err := s.RunOnce(ctx); err != nil {
			s.log.Warn("scheduler run failed", zap.Error(err))
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func (s *Scheduler) isJobEnabled(jobName string) bool {
	// empty means all jobs enabled
	if len(s.cfg.EnabledJobs) == 0 {
		return true
	}
	for _, enabled := range s.cfg.EnabledJobs {
		if strings.EqualFold(enabled, jobName) {
			return true
		}
	}
	return false
}
