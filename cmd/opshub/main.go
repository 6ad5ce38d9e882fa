package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/erayastyle/ops-hub/internal/clock"
	"github.com/erayastyle/ops-hub/internal/config"
	"github.com/erayastyle/ops-hub/internal/logger"
	"github.com/erayastyle/ops-hub/internal/migration"
	"github.com/erayastyle/ops-hub/internal/server"
	"github.com/erayastyle/ops-hub/pkg/db"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		config.Module,
		logger.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		clock.Module,
		migration.Module,
		server.Module,
	)
	app.Run()
}

func RegisterSnowflake() *snowflake.Node {
	node, err := snowflake.NewNode(1)
	if err != nil {
		panic(err)
	}
	return node
}
