package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/predialis/predialis/internal/clock"
	"github.com/predialis/predialis/internal/config"
	"github.com/predialis/predialis/internal/logger"
	"github.com/predialis/predialis/internal/migration"
	"github.com/predialis/predialis/internal/scheduler"
	"github.com/predialis/predialis/internal/server"
	"github.com/predialis/predialis/pkg/db"
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
		scheduler.Module,
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
