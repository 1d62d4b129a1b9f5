package dashboard

import (
	"context"

	"github.com/smallbiznis/paydash/internal/clock"
	"github.com/smallbiznis/paydash/internal/config"
	"github.com/smallbiznis/paydash/internal/observability/metrics"
	"github.com/smallbiznis/paydash/internal/payroll/aggregation"
	"github.com/smallbiznis/paydash/internal/payroll/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("dashboard",
	fx.Provide(aggregation.Default),
	fx.Provide(NewPayrollDispatcher),
)

type Params struct {
	fx.In

	Table    *domain.Table
	Registry *aggregation.Registry
	Config   *config.DashboardConfigHolder
	Clock    clock.Clock
	Metrics  *metrics.Metrics
	Log      *zap.Logger
}

// NewPayrollDispatcher wires the payroll outputs and computes them for the
// configured default selection.
func NewPayrollDispatcher(p Params) (*Dispatcher, error) {
	maxRows := func() int { return p.Config.Get().TableMaxRows }
	graph, err := NewGraph(Inputs, PayrollOutputs(p.Table, p.Registry, maxRows)...)
	if err != nil {
		return nil, err
	}

	cfg := p.Config.Get()
	if !p.Registry.Has(cfg.DefaultMetric) {
		p.Log.Warn("default metric is not registered", zap.String("metric", cfg.DefaultMetric))
	}
	initial := domain.Selection{Entities: cfg.DefaultEntities, Metric: cfg.DefaultMetric}

	return NewDispatcher(context.Background(), graph, initial,
		WithClock(p.Clock),
		WithMetrics(p.Metrics),
		WithLogger(p.Log),
	), nil
}
