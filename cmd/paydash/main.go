package main

import (
	"github.com/smallbiznis/paydash/internal/clock"
	"github.com/smallbiznis/paydash/internal/config"
	"github.com/smallbiznis/paydash/internal/dashboard"
	"github.com/smallbiznis/paydash/internal/observability"
	"github.com/smallbiznis/paydash/internal/payroll/dataset"
	"github.com/smallbiznis/paydash/internal/server"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
)

func main() {
	app := fx.New(
		// Core Infrastructure
		config.Module,
		observability.Module,
		clock.Module,
		fx.WithLogger(func(log *zap.Logger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: log.Named("fx")}
		}),

		// Payroll dashboard
		dataset.Module,
		dashboard.Module,
		server.Module,
	)
	app.Run()
}
