package user

import (
	"github.com/erayastyle/ops-hub/internal/user/repository"
	"github.com/erayastyle/ops-hub/internal/user/service"
	"go.uber.org/fx"
)

var Module = fx.Module("user.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
