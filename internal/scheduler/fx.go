package scheduler

import (
	"context"
	"time"

	"github.com/erayastyle/ops-hub/internal/config"
	"go.uber.org/fx"
)

var Module = fx.Module("scheduler",
	fx.Provide(ProvideConfig),
	fx.Provide(New),
	fx.Invoke(StartScheduler),
)

func ProvideConfig(cfg config.Config) Config {
	c := DefaultConfig()
	if cfg.SyncIntervalMinutes > 0 {
		c.RunInterval = time.Duration(cfg.SyncIntervalMinutes) * time.Minute
	}
	return c
}

func StartScheduler(lc fx.Lifecycle, sched *Scheduler) {
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			ctx, cancel := context.WithCancel(context.Background())

			go sched.RunForever(ctx)

			lc.Append(fx.Hook{
				OnStop: func(context.Context) error {
					cancel()
					return nil
				},
			})

			return nil
		},
	})
}
