package transform

import (
	"github.com/smallbiznis/paydash/internal/payroll/aggregation"
	"github.com/smallbiznis/paydash/internal/payroll/domain"
)

// Cell is one aggregated value and the number of rows behind it.
type Cell struct {
	Value float64 `json:"value"`
	Count int     `json:"count"`
}

// PeriodRow holds the cells of one period keyed by entity. Entities without
// rows in the period have no cell.
type PeriodRow struct {
	Period int             `json:"period"`
	Cells  map[string]Cell `json:"cells"`
}

// Value returns the entity's cell value, reporting false when absent.
func (r PeriodRow) Value(entity string) (float64, bool) {
	c, ok := r.Cells[entity]
	return c.Value, ok
}

// PeriodPivot has periods as rows and entities as columns.
type PeriodPivot struct {
	Metric   aggregation.Spec `json:"metric"`
	Entities []string         `json:"entities"`
	Rows     []PeriodRow      `json:"rows"`
}

// EntityRow holds the cells of one entity keyed by period.
type EntityRow struct {
	Entity string       `json:"entity"`
	Cells  map[int]Cell `json:"cells"`
}

// Value returns the period's cell value, reporting false when absent.
func (r EntityRow) Value(period int) (float64, bool) {
	c, ok := r.Cells[period]
	return c.Value, ok
}

// EntityPivot has entities as rows and periods as columns, rounded to one decimal.
type EntityPivot struct {
	Metric  aggregation.Spec `json:"metric"`
	Periods []int            `json:"periods"`
	Rows    []EntityRow      `json:"rows"`
}

// AggregateByPeriodAndEntity groups rows by (period, entity), applies the
// named metric and pivots periods onto rows. Missing combinations stay absent.
func AggregateByPeriodAndEntity(table *domain.Table, registry *aggregation.Registry, metric string, opts ...Option) (PeriodPivot, error) {
	spec, err := registry.Resolve(metric)
	if err != nil {
		return PeriodPivot{}, err
	}

	g := groupByPeriodAndEntity(table, spec, applyOptions(opts))
	out := PeriodPivot{
		Metric:   spec,
		Entities: g.entities,
		Rows:     make([]PeriodRow, 0, len(g.periods)),
	}
	for _, period := range g.periods {
		row := PeriodRow{Period: period, Cells: make(map[string]Cell, len(g.entities))}
		for _, entity := range g.entities {
			if c, ok := g.cell(period, entity, false); ok {
				row.Cells[entity] = c
			}
		}
		out.Rows = append(out.Rows, row)
	}
	return out, nil
}

// AggregateByEntityAndPeriod is the transposed view used by the pivot table.
// Values are rounded to one decimal.
func AggregateByEntityAndPeriod(table *domain.Table, registry *aggregation.Registry, metric string, opts ...Option) (EntityPivot, error) {
	spec, err := registry.Resolve(metric)
	if err != nil {
		return EntityPivot{}, err
	}

	g := groupByPeriodAndEntity(table, spec, applyOptions(opts))
	out := EntityPivot{
		Metric:  spec,
		Periods: g.periods,
		Rows:    make([]EntityRow, 0, len(g.entities)),
	}
	if out.Periods == nil {
		out.Periods = []int{}
	}
	for _, entity := range g.entities {
		row := EntityRow{Entity: entity, Cells: make(map[int]Cell, len(g.periods))}
		for _, period := range g.periods {
			if c, ok := g.cell(period, entity, true); ok {
				row.Cells[period] = c
			}
		}
		out.Rows = append(out.Rows, row)
	}
	return out, nil
}
