package aggregation

import (
	"strconv"

	"github.com/smallbiznis/paydash/internal/payroll/domain"
)

// Func names an aggregation function.
type Func string

const (
	FuncSum           Func = "sum"
	FuncMean          Func = "mean"
	FuncCountDistinct Func = "nunique"
)

// Valid reports whether f is a known function.
func (f Func) Valid() bool {
	switch f {
	case FuncSum, FuncMean, FuncCountDistinct:
		return true
	default:
		return false
	}
}

// Accumulator folds records of one group into a single value.
type Accumulator interface {
	Add(rec domain.Record)
	Value() float64
	Count() int
}

// NewAccumulator returns a fresh accumulator for f over column.
func (f Func) NewAccumulator(column domain.Column) Accumulator {
	switch f {
	case FuncSum:
		return &sumAccumulator{column: column}
	case FuncMean:
		return &meanAccumulator{sumAccumulator{column: column}}
	case FuncCountDistinct:
		return &distinctAccumulator{column: column, seen: make(map[string]struct{})}
	default:
		return nil
	}
}

type sumAccumulator struct {
	column domain.Column
	sum    float64
	count  int
}

func (a *sumAccumulator) Add(rec domain.Record) {
	v, _ := rec.Number(a.column)
	a.sum += v
	a.count++
}

func (a *sumAccumulator) Value() float64 { return a.sum }

func (a *sumAccumulator) Count() int { return a.count }

type meanAccumulator struct {
	sumAccumulator
}

func (a *meanAccumulator) Value() float64 {
	if a.count == 0 {
		return 0
	}
	return a.sum / float64(a.count)
}

// distinctAccumulator counts distinct non-empty values.
type distinctAccumulator struct {
	column domain.Column
	seen   map[string]struct{}
	count  int
}

func (a *distinctAccumulator) Add(rec domain.Record) {
	a.count++
	var key string
	if text, ok := rec.Text(a.column); ok {
		key = text
	} else if num, ok := rec.Number(a.column); ok {
		key = strconv.FormatFloat(num, 'g', -1, 64)
	}
	if key == "" {
		return
	}
	a.seen[key] = struct{}{}
}

func (a *distinctAccumulator) Value() float64 { return float64(len(a.seen)) }

func (a *distinctAccumulator) Count() int { return a.count }
