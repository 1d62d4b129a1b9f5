package transform

import (
	"fmt"
	"slices"

	"github.com/smallbiznis/paydash/internal/payroll/aggregation"
	"github.com/smallbiznis/paydash/internal/payroll/domain"
)

// Measure is one aggregated column of an entity summary.
type Measure struct {
	Column domain.Column    `json:"column"`
	Func   aggregation.Func `json:"func"`
}

// SummarySpec describes a per-entity summary of an hours measure and a pay
// measure, with an optional distinct employee count.
type SummarySpec struct {
	Name           string  `json:"name"`
	Hours          Measure `json:"hours"`
	Pay            Measure `json:"pay"`
	CountEmployees bool    `json:"count_employees"`
}

var (
	// RegularPay summarises regular hours against regular gross pay.
	RegularPay = SummarySpec{
		Name:           "regular",
		Hours:          Measure{Column: domain.ColumnRegularHours, Func: aggregation.FuncMean},
		Pay:            Measure{Column: domain.ColumnRegularGrossPaid, Func: aggregation.FuncMean},
		CountEmployees: true,
	}
	// Overtime summarises overtime hours against overtime pay.
	Overtime = SummarySpec{
		Name:           "overtime",
		Hours:          Measure{Column: domain.ColumnOTHours, Func: aggregation.FuncMean},
		Pay:            Measure{Column: domain.ColumnTotalOTPaid, Func: aggregation.FuncMean},
		CountEmployees: true,
	}
)

func (s SummarySpec) validate() error {
	for _, m := range []Measure{s.Hours, s.Pay} {
		if !m.Column.Numeric() {
			return fmt.Errorf("%w: column %q is not numeric", domain.ErrInvalidMeasure, m.Column)
		}
		if m.Func != aggregation.FuncSum && m.Func != aggregation.FuncMean {
			return fmt.Errorf("%w: %q is not sum or mean", domain.ErrInvalidMeasure, m.Func)
		}
	}
	return nil
}

// EntitySummaryRow is one entity of a summary, rounded to one decimal.
type EntitySummaryRow struct {
	Entity    string  `json:"entity"`
	Hours     float64 `json:"hours"`
	Pay       float64 `json:"pay"`
	Employees int     `json:"employees"`
	Records   int     `json:"records"`
}

// EntitySummary is the result of AggregateByEntityOnly.
type EntitySummary struct {
	Spec SummarySpec        `json:"spec"`
	Rows []EntitySummaryRow `json:"rows"`
}

type entityGroup struct {
	hours     aggregation.Accumulator
	pay       aggregation.Accumulator
	employees aggregation.Accumulator
}

// AggregateByEntityOnly groups rows by entity and computes the spec's measures
// together. Entities whose rounded hours value is not strictly positive are
// dropped.
func AggregateByEntityOnly(table *domain.Table, spec SummarySpec, opts ...Option) (EntitySummary, error) {
	if err := spec.validate(); err != nil {
		return EntitySummary{}, err
	}
	o := applyOptions(opts)

	order := make([]string, 0)
	groups := make(map[string]*entityGroup)
	for _, rec := range table.All() {
		g, ok := groups[rec.Agency]
		if !ok {
			g = &entityGroup{
				hours:     spec.Hours.Func.NewAccumulator(spec.Hours.Column),
				pay:       spec.Pay.Func.NewAccumulator(spec.Pay.Column),
				employees: aggregation.FuncCountDistinct.NewAccumulator(domain.ColumnEmployeeID),
			}
			groups[rec.Agency] = g
			order = append(order, rec.Agency)
		}
		g.hours.Add(rec)
		g.pay.Add(rec)
		g.employees.Add(rec)
	}
	if o.order == OrderAlphabetical {
		slices.Sort(order)
	}

	out := EntitySummary{Spec: spec, Rows: make([]EntitySummaryRow, 0, len(order))}
	for _, entity := range order {
		g := groups[entity]
		hours := Round1(g.hours.Value())
		if hours <= 0 {
			continue
		}
		row := EntitySummaryRow{
			Entity:  entity,
			Hours:   hours,
			Pay:     Round1(g.pay.Value()),
			Records: g.hours.Count(),
		}
		if spec.CountEmployees {
			row.Employees = int(g.employees.Value())
		}
		out.Rows = append(out.Rows, row)
	}
	return out, nil
}
