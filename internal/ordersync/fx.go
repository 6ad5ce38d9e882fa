package ordersync

import "go.uber.org/fx"

var Module = fx.Module("ordersync",
	fx.Provide(New),
)
