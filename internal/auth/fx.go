package auth

import (
	"github.com/erayastyle/ops-hub/internal/auth/repository"
	"github.com/erayastyle/ops-hub/internal/auth/service"
	"go.uber.org/fx"
)

var Module = fx.Module("auth.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
