package dashboard

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/smallbiznis/paydash/internal/clock"
	"github.com/smallbiznis/paydash/internal/config"
	"github.com/smallbiznis/paydash/internal/observability/metrics"
	"github.com/smallbiznis/paydash/internal/payroll/aggregation"
	"github.com/smallbiznis/paydash/internal/payroll/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/metric/noop"
	"go.uber.org/zap"
)

const (
	police = "POLICE DEPARTMENT"
	fire   = "FIRE DEPARTMENT"
	parks  = "DEPT OF PARKS & RECREATION"
)

var allOutputs = []OutputName{
	OutputPeriodChart,
	OutputSummaryTable,
	OutputOvertimeScatter,
	OutputRegularPayScatter,
	OutputRegularSummaryTable,
	OutputOvertimeSummaryTable,
}

func payrollTable() *domain.Table {
	return domain.NewTable([]domain.Record{
		{Agency: police, EmployeeID: "p1", FiscalYear: 2016, RegularHours: 2080, RegularGrossPaid: 80000, OTHours: 100, TotalOTPaid: 9000, TotalPay: 90000},
		{Agency: fire, EmployeeID: "f1", FiscalYear: 2016, RegularHours: 2080, RegularGrossPaid: 76000, OTHours: 300, TotalOTPaid: 21000, TotalPay: 100000},
		{Agency: police, EmployeeID: "p2", FiscalYear: 2017, RegularHours: 2080, RegularGrossPaid: 82000, OTHours: 50, TotalOTPaid: 4000, TotalPay: 91000},
		{Agency: parks, EmployeeID: "k1", FiscalYear: 2017, RegularHours: 1820, RegularGrossPaid: 50000, TotalPay: 51000},
		{Agency: fire, EmployeeID: "f2", FiscalYear: 2018, RegularHours: 2080, RegularGrossPaid: 79000, OTHours: 250, TotalOTPaid: 19000, TotalPay: 101000},
	})
}

type fixture struct {
	dispatcher  *Dispatcher
	clock       *clock.FakeClock
	transitions map[OutputName][]State
}

func newFixture(t *testing.T, maxRows int) *fixture {
	t.Helper()

	m, err := metrics.New(metrics.Config{}, noop.NewMeterProvider())
	require.NoError(t, err)

	f := &fixture{
		clock:       clock.NewFakeClock(time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)),
		transitions: map[OutputName][]State{},
	}
	graph, err := NewGraph(Inputs, PayrollOutputs(payrollTable(), aggregation.Default(), func() int { return maxRows })...)
	require.NoError(t, err)

	f.dispatcher = NewDispatcher(context.Background(), graph,
		domain.Selection{Entities: []string{police, fire}, Metric: "Total Pay"},
		WithClock(f.clock),
		WithMetrics(m),
		WithLogger(zap.NewNop()),
		WithStateObserver(func(name OutputName, state State) {
			f.transitions[name] = append(f.transitions[name], state)
		}),
	)
	return f
}

func (f *fixture) reset() {
	f.transitions = map[OutputName][]State{}
}

func names(regions []Region) []OutputName {
	out := make([]OutputName, 0, len(regions))
	for _, r := range regions {
		out = append(out, r.Name)
	}
	return out
}

func TestGraphDependents(t *testing.T) {
	graph, err := NewGraph(Inputs, PayrollOutputs(payrollTable(), aggregation.Default(), func() int { return 10 })...)
	require.NoError(t, err)

	assert.Equal(t, allOutputs, graph.Dependents(InputEntitySelection))
	assert.Equal(t, []OutputName{OutputPeriodChart, OutputSummaryTable}, graph.Dependents(InputMetricSelection))
	assert.Empty(t, graph.Dependents("yearSelection"))
	assert.Equal(t, allOutputs, graph.Outputs())
}

func TestNewGraphValidates(t *testing.T) {
	compute := func(context.Context, domain.Selection) (Content, error) { return Content{}, nil }

	_, err := NewGraph(Inputs,
		Output{Name: "a", DependsOn: []InputName{"yearSelection"}, Compute: compute},
		Output{Name: "a", DependsOn: []InputName{InputEntitySelection}, Compute: compute},
		Output{Name: "b", DependsOn: []InputName{InputEntitySelection}},
	)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "undeclared input")
	assert.Contains(t, err.Error(), "declared twice")
	assert.Contains(t, err.Error(), "no compute function")

	_, err = NewGraph([]InputName{InputEntitySelection, InputEntitySelection})
	assert.Error(t, err)
}

func TestInitialComputation(t *testing.T) {
	f := newFixture(t, 10)

	regions := f.dispatcher.Regions()
	require.Len(t, regions, len(allOutputs))
	revision := regions[0].Revision
	assert.NotEmpty(t, revision)
	for _, r := range regions {
		assert.Equal(t, StateReady, r.State, r.Name)
		assert.Empty(t, r.Error, r.Name)
		assert.Equal(t, revision, r.Revision, "one interaction shares one revision")
		assert.Equal(t, f.clock.Now(), r.ComputedAt)
	}

	chart, err := f.dispatcher.Region(OutputPeriodChart)
	require.NoError(t, err)
	assert.Equal(t, KindFigure, chart.Kind)
	require.NotNil(t, chart.Figure)
	assert.Len(t, chart.Figure.Data, 2)

	table, err := f.dispatcher.Region(OutputSummaryTable)
	require.NoError(t, err)
	assert.Equal(t, KindTable, table.Kind)
	require.NotNil(t, table.Table)
	assert.Equal(t, []string{"Agency Name", "2016", "2017", "2018"}, table.Table.Header)
}

func TestMetricChangeRecomputesMetricOutputsOnly(t *testing.T) {
	f := newFixture(t, 10)
	before := f.dispatcher.Regions()
	f.reset()
	f.clock.Advance(time.Minute)

	regions, err := f.dispatcher.Apply(context.Background(), SelectMetric("Regular Hours"))
	require.NoError(t, err)

	assert.Equal(t, []OutputName{OutputPeriodChart, OutputSummaryTable}, names(regions))
	assert.Equal(t, []State{StateStale, StateComputing, StateReady}, f.transitions[OutputPeriodChart])
	assert.Equal(t, []State{StateStale, StateComputing, StateReady}, f.transitions[OutputSummaryTable])
	assert.NotContains(t, f.transitions, OutputOvertimeScatter)

	chart, _ := f.dispatcher.Region(OutputPeriodChart)
	assert.Equal(t, "Regular Hours (Sum)", chart.Figure.Layout.Title.Text)
	assert.Equal(t, f.clock.Now(), chart.ComputedAt)

	scatter, _ := f.dispatcher.Region(OutputOvertimeScatter)
	assert.Equal(t, before[2], scatter, "entity-only outputs are untouched")
	assert.Equal(t, "Regular Hours", f.dispatcher.Selection().Metric)
}

func TestEntityChangeRecomputesAllOutputs(t *testing.T) {
	f := newFixture(t, 10)
	f.reset()

	regions, err := f.dispatcher.Apply(context.Background(), SelectEntities(fire, parks))
	require.NoError(t, err)

	assert.Equal(t, allOutputs, names(regions))
	for _, name := range allOutputs {
		assert.Equal(t, []State{StateStale, StateComputing, StateReady}, f.transitions[name], name)
	}

	overtime, _ := f.dispatcher.Region(OutputOvertimeSummaryTable)
	require.NotNil(t, overtime.Table)
	require.Len(t, overtime.Table.Rows, 1, "parks reports no overtime hours")
	assert.Equal(t, fire, overtime.Table.Rows[0][0])

	regular, _ := f.dispatcher.Region(OutputRegularSummaryTable)
	assert.Len(t, regular.Table.Rows, 2)
}

func TestStaleMarkingPrecedesComputation(t *testing.T) {
	f := newFixture(t, 10)

	var order []string
	f.dispatcher.observer = func(name OutputName, state State) {
		order = append(order, string(name)+":"+string(state))
	}
	_, err := f.dispatcher.Apply(context.Background(), SelectMetric("OT Hours"))
	require.NoError(t, err)

	assert.Equal(t, []string{
		"periodChart:stale",
		"summaryTable:stale",
		"periodChart:computing",
		"periodChart:ready",
		"summaryTable:computing",
		"summaryTable:ready",
	}, order)
}

func TestEmptySelectionYieldsEmptyOutputs(t *testing.T) {
	f := newFixture(t, 10)

	regions, err := f.dispatcher.Apply(context.Background(), SelectEntities())
	require.NoError(t, err)

	for _, r := range regions {
		assert.Empty(t, r.Error, r.Name)
		switch r.Kind {
		case KindFigure:
			require.NotNil(t, r.Figure, r.Name)
			assert.Empty(t, r.Figure.Data, r.Name)
		case KindTable:
			require.NotNil(t, r.Table, r.Name)
			assert.Empty(t, r.Table.Rows, r.Name)
		}
	}
	assert.Equal(t, []string{}, f.dispatcher.Selection().Entities)
}

func TestUnknownMetricBecomesErrorRegion(t *testing.T) {
	f := newFixture(t, 10)

	regions, err := f.dispatcher.Apply(context.Background(), SelectMetric("Median Pay"))
	require.NoError(t, err)
	require.Len(t, regions, 2)

	for _, r := range regions {
		assert.Equal(t, StateReady, r.State)
		assert.Contains(t, r.Error, "unknown metric")
		assert.Nil(t, r.Figure)
		assert.Nil(t, r.Table)
	}

	scatter, _ := f.dispatcher.Region(OutputRegularPayScatter)
	assert.Empty(t, scatter.Error)
	assert.NotNil(t, scatter.Figure)

	_, err = f.dispatcher.Apply(context.Background(), SelectMetric("Total Pay"))
	require.NoError(t, err)
	chart, _ := f.dispatcher.Region(OutputPeriodChart)
	assert.Empty(t, chart.Error, "a valid metric clears the error")
}

func TestApplyUnknownInput(t *testing.T) {
	f := newFixture(t, 10)

	_, err := f.dispatcher.Apply(context.Background(), Change{Input: "yearSelection"})
	assert.True(t, errors.Is(err, ErrUnknownInput))

	_, err = f.dispatcher.Region("pieChart")
	assert.True(t, errors.Is(err, ErrUnknownOutput))
}

func TestTableMaxRowsApplied(t *testing.T) {
	f := newFixture(t, 1)

	table, _ := f.dispatcher.Region(OutputSummaryTable)
	assert.Len(t, table.Table.Rows, 1)
	assert.True(t, table.Table.Truncated)
	assert.Equal(t, 2, table.Table.TotalRows)
}

func TestEvaluateIsStateless(t *testing.T) {
	f := newFixture(t, 10)
	before := f.dispatcher.Regions()
	f.reset()

	sel := domain.Selection{Entities: []string{parks}, Metric: "Employee_Id"}
	first, err := f.dispatcher.Evaluate(context.Background(), sel)
	require.NoError(t, err)
	second, err := f.dispatcher.Evaluate(context.Background(), sel)
	require.NoError(t, err)

	require.Len(t, first, len(allOutputs))
	for i := range first {
		first[i].Revision, second[i].Revision = "", ""
	}
	assert.Equal(t, first, second, "identical selections give identical results")
	assert.Empty(t, f.transitions)
	assert.Equal(t, before, f.dispatcher.Regions())

	only, err := f.dispatcher.Evaluate(context.Background(), sel, OutputSummaryTable)
	require.NoError(t, err)
	require.Len(t, only, 1)
	assert.Equal(t, [][]string{{parks, "1"}}, only[0].Table.Rows)

	_, err = f.dispatcher.Evaluate(context.Background(), sel, "pieChart")
	assert.True(t, errors.Is(err, ErrUnknownOutput))
}

func TestNewPayrollDispatcher(t *testing.T) {
	m, err := metrics.New(metrics.Config{}, noop.NewMeterProvider())
	require.NoError(t, err)

	holder := config.NewStaticDashboardConfigHolder(config.DashboardConfig{
		DefaultEntities: []string{fire},
		DefaultMetric:   "OT Hours",
		TableMaxRows:    5,
	})
	d, err := NewPayrollDispatcher(Params{
		Table:    payrollTable(),
		Registry: aggregation.Default(),
		Config:   holder,
		Clock:    clock.NewFakeClock(time.Unix(0, 0)),
		Metrics:  m,
		Log:      zap.NewNop(),
	})
	require.NoError(t, err)

	assert.Equal(t, domain.Selection{Entities: []string{fire}, Metric: "OT Hours"}, d.Selection())
	chart, _ := d.Region(OutputPeriodChart)
	assert.Equal(t, "Overtime Hours (Sum)", chart.Figure.Layout.Title.Text)
}

func TestApplyAllRecomputesUnionOnce(t *testing.T) {
	f := newFixture(t, 10)
	f.reset()

	regions, err := f.dispatcher.ApplyAll(context.Background(),
		SelectEntities(fire),
		SelectMetric("OT Hours"),
	)
	require.NoError(t, err)

	assert.Equal(t, allOutputs, names(regions))
	revision := regions[0].Revision
	require.NotEmpty(t, revision)
	for _, r := range regions {
		assert.Equal(t, revision, r.Revision, r.Name)
	}
	for _, name := range allOutputs {
		assert.Equal(t, []State{StateStale, StateComputing, StateReady}, f.transitions[name], name)
	}
	assert.Equal(t, domain.Selection{Entities: []string{fire}, Metric: "OT Hours"}, f.dispatcher.Selection())

	chart, _ := f.dispatcher.Region(OutputPeriodChart)
	assert.Equal(t, "Overtime Hours (Sum)", chart.Figure.Layout.Title.Text)
	require.Len(t, chart.Figure.Data, 1)
}

func TestApplyAllUnknownInputChangesNothing(t *testing.T) {
	f := newFixture(t, 10)
	before := f.dispatcher.Selection()
	f.reset()

	_, err := f.dispatcher.ApplyAll(context.Background(),
		SelectMetric("OT Hours"),
		Change{Input: "yearSelection"},
	)
	assert.ErrorIs(t, err, ErrUnknownInput)
	assert.Equal(t, before, f.dispatcher.Selection())
	assert.Empty(t, f.transitions)

	regions, err := f.dispatcher.ApplyAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, regions)
}

func TestPanickingOutputBecomesErrorRegion(t *testing.T) {
	graph, err := NewGraph(Inputs, Output{
		Name:      "broken",
		Kind:      KindTable,
		DependsOn: []InputName{InputEntitySelection},
		Compute: func(context.Context, domain.Selection) (Content, error) {
			panic("cannot create a decimal from NaN")
		},
	})
	require.NoError(t, err)

	d := NewDispatcher(context.Background(), graph, domain.Selection{Metric: "Total Pay"})

	region, err := d.Region("broken")
	require.NoError(t, err)
	assert.Equal(t, StateReady, region.State)
	assert.Contains(t, region.Error, "panic")
	assert.Nil(t, region.Table)
}
