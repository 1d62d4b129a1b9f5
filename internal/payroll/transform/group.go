package transform

import (
	"slices"

	"github.com/smallbiznis/paydash/internal/payroll/aggregation"
	"github.com/smallbiznis/paydash/internal/payroll/domain"
)

type cellKey struct {
	period int
	entity string
}

// grouping accumulates one metric per (period, entity) pair.
type grouping struct {
	entities []string
	periods  []int
	cells    map[cellKey]aggregation.Accumulator
}

func groupByPeriodAndEntity(table *domain.Table, spec aggregation.Spec, o options) grouping {
	g := grouping{cells: make(map[cellKey]aggregation.Accumulator)}
	seenEntity := make(map[string]struct{})
	seenPeriod := make(map[int]struct{})

	for _, rec := range table.All() {
		if _, ok := seenEntity[rec.Agency]; !ok {
			seenEntity[rec.Agency] = struct{}{}
			g.entities = append(g.entities, rec.Agency)
		}
		if _, ok := seenPeriod[rec.FiscalYear]; !ok {
			seenPeriod[rec.FiscalYear] = struct{}{}
			g.periods = append(g.periods, rec.FiscalYear)
		}

		key := cellKey{period: rec.FiscalYear, entity: rec.Agency}
		acc, ok := g.cells[key]
		if !ok {
			acc = spec.Func.NewAccumulator(spec.Column)
			g.cells[key] = acc
		}
		acc.Add(rec)
	}

	slices.Sort(g.periods)
	if o.order == OrderAlphabetical {
		slices.Sort(g.entities)
	}
	if g.entities == nil {
		g.entities = []string{}
	}
	return g
}

func (g grouping) cell(period int, entity string, round bool) (Cell, bool) {
	acc, ok := g.cells[cellKey{period: period, entity: entity}]
	if !ok {
		return Cell{}, false
	}
	value := acc.Value()
	if round {
		value = Round1(value)
	}
	return Cell{Value: value, Count: acc.Count()}, true
}
