package order

import (
	"github.com/erayastyle/ops-hub/internal/order/repository"
	"github.com/erayastyle/ops-hub/internal/order/service"
	"go.uber.org/fx"
)

var Module = fx.Module("order.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
