package chat

import (
	"github.com/erayastyle/ops-hub/internal/chat/repository"
	"github.com/erayastyle/ops-hub/internal/chat/service"
	"go.uber.org/fx"
)

var Module = fx.Module("chat.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
