package attendance

import (
	"github.com/erayastyle/ops-hub/internal/attendance/repository"
	"github.com/erayastyle/ops-hub/internal/attendance/service"
	"go.uber.org/fx"
)

var Module = fx.Module("attendance.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
