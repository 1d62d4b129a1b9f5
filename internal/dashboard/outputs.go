package dashboard

import (
	"context"

	"github.com/smallbiznis/paydash/internal/payroll/aggregation"
	"github.com/smallbiznis/paydash/internal/payroll/domain"
	"github.com/smallbiznis/paydash/internal/payroll/transform"
	"github.com/smallbiznis/paydash/internal/presentation"
)

const (
	regularSummaryTitle  = "Regular Hours and Gross Pay by Agency (Average)"
	overtimeSummaryTitle = "Overtime Hours and Pay by Agency (Average)"
)

// PayrollOutputs declares the six payroll regions over table. maxRows is read
// on every computation so table limits follow config reloads.
func PayrollOutputs(table *domain.Table, registry *aggregation.Registry, maxRows func() int) []Output {
	both := []InputName{InputEntitySelection, InputMetricSelection}
	entities := []InputName{InputEntitySelection}

	return []Output{
		{
			Name:      OutputPeriodChart,
			Kind:      KindFigure,
			DependsOn: both,
			Compute: func(_ context.Context, sel domain.Selection) (Content, error) {
				pivot, err := transform.AggregateByPeriodAndEntity(transform.FilterByEntities(table, sel.Entities), registry, sel.Metric)
				if err != nil {
					return Content{}, err
				}
				fig := presentation.BarChart(pivot)
				return Content{Figure: &fig}, nil
			},
		},
		{
			Name:      OutputSummaryTable,
			Kind:      KindTable,
			DependsOn: both,
			Compute: func(_ context.Context, sel domain.Selection) (Content, error) {
				pivot, err := transform.AggregateByEntityAndPeriod(transform.FilterByEntities(table, sel.Entities), registry, sel.Metric)
				if err != nil {
					return Content{}, err
				}
				tbl := presentation.PivotTable(pivot, maxRows())
				return Content{Table: &tbl}, nil
			},
		},
		scatterOutput(OutputOvertimeScatter, table, transform.Overtime, presentation.OvertimeScatterLabels, entities),
		scatterOutput(OutputRegularPayScatter, table, transform.RegularPay, presentation.RegularPayScatterLabels, entities),
		summaryOutput(OutputRegularSummaryTable, table, transform.RegularPay, regularSummaryTitle, maxRows, entities),
		summaryOutput(OutputOvertimeSummaryTable, table, transform.Overtime, overtimeSummaryTitle, maxRows, entities),
	}
}

func scatterOutput(name OutputName, table *domain.Table, spec transform.SummarySpec, labels presentation.ScatterLabels, deps []InputName) Output {
	return Output{
		Name:      name,
		Kind:      KindFigure,
		DependsOn: deps,
		Compute: func(_ context.Context, sel domain.Selection) (Content, error) {
			summary, err := transform.AggregateByEntityOnly(transform.FilterByEntities(table, sel.Entities), spec)
			if err != nil {
				return Content{}, err
			}
			fig := presentation.ScatterChart(summary, labels)
			return Content{Figure: &fig}, nil
		},
	}
}

func summaryOutput(name OutputName, table *domain.Table, spec transform.SummarySpec, title string, maxRows func() int, deps []InputName) Output {
	return Output{
		Name:      name,
		Kind:      KindTable,
		DependsOn: deps,
		Compute: func(_ context.Context, sel domain.Selection) (Content, error) {
			summary, err := transform.AggregateByEntityOnly(transform.FilterByEntities(table, sel.Entities), spec)
			if err != nil {
				return Content{}, err
			}
			tbl := presentation.SummaryTable(summary, maxRows())
			tbl.Title = title
			return Content{Table: &tbl}, nil
		},
	}
}
