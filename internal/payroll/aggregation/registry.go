package aggregation

import (
	"errors"
	"fmt"
	"strings"

	"github.com/smallbiznis/paydash/internal/payroll/domain"
)

// DefaultMetric is the metric selected when nothing else is configured.
const DefaultMetric = "Total Pay"

// Spec describes one named metric.
type Spec struct {
	Name   string        `json:"name"`
	Column domain.Column `json:"column"`
	Func   Func          `json:"func"`
	Label  string        `json:"label"`
}

// Validate checks that the function can be applied to the column.
func (s Spec) Validate() error {
	if strings.TrimSpace(s.Name) == "" {
		return errors.New("metric name is required")
	}
	if s.Column.Kind() == domain.KindUnknown {
		return fmt.Errorf("metric %q: unknown column %q", s.Name, s.Column)
	}
	if !s.Func.Valid() {
		return fmt.Errorf("metric %q: unknown aggregation %q", s.Name, s.Func)
	}
	if s.Func != FuncCountDistinct && !s.Column.Numeric() {
		return fmt.Errorf("metric %q: %s requires a numeric column, got %q", s.Name, s.Func, s.Column)
	}
	return nil
}

// Registry is a static, read-only lookup of metrics by name.
type Registry struct {
	specs map[string]Spec
	order []string
}

// NewRegistry validates specs and freezes them in declaration order.
func NewRegistry(specs ...Spec) (*Registry, error) {
	r := &Registry{
		specs: make(map[string]Spec, len(specs)),
		order: make([]string, 0, len(specs)),
	}
	var errs error
	for _, spec := range specs {
		if err := spec.Validate(); err != nil {
			errs = errors.Join(errs, err)
			continue
		}
		if _, dup := r.specs[spec.Name]; dup {
			errs = errors.Join(errs, fmt.Errorf("metric %q registered twice", spec.Name))
			continue
		}
		r.specs[spec.Name] = spec
		r.order = append(r.order, spec.Name)
	}
	if errs != nil {
		return nil, errs
	}
	return r, nil
}

// Default returns the nine payroll metrics.
func Default() *Registry {
	r, err := NewRegistry(defaultSpecs...)
	if err != nil {
		panic(err)
	}
	return r
}

var defaultSpecs = []Spec{
	{Name: "Work Location Borough", Column: domain.ColumnBorough, Func: FuncCountDistinct, Label: "Boroughs (Unique)"},
	{Name: "Employee_Id", Column: domain.ColumnEmployeeID, Func: FuncCountDistinct, Label: "Employees (Unique)"},
	{Name: "Title Description", Column: domain.ColumnTitle, Func: FuncCountDistinct, Label: "Job Roles (Unique)"},
	{Name: "Regular Hours", Column: domain.ColumnRegularHours, Func: FuncSum, Label: "Regular Hours (Sum)"},
	{Name: "Regular Gross Paid", Column: domain.ColumnRegularGrossPaid, Func: FuncMean, Label: "Gross Pay (Average)"},
	{Name: "OT Hours", Column: domain.ColumnOTHours, Func: FuncSum, Label: "Overtime Hours (Sum)"},
	{Name: "Total OT Paid", Column: domain.ColumnTotalOTPaid, Func: FuncMean, Label: "Overtime Pay (Average)"},
	{Name: "Total Other Pay", Column: domain.ColumnTotalOtherPay, Func: FuncMean, Label: "Other Pay (Average)"},
	{Name: DefaultMetric, Column: domain.ColumnTotalPay, Func: FuncMean, Label: "Total Pay (Average)"},
}

// Resolve looks up a metric by name.
func (r *Registry) Resolve(name string) (Spec, error) {
	if r != nil {
		if spec, ok := r.specs[name]; ok {
			return spec, nil
		}
	}
	return Spec{}, &domain.UnknownMetricError{Name: name}
}

// Has reports whether name is registered.
func (r *Registry) Has(name string) bool {
	_, err := r.Resolve(name)
	return err == nil
}

// Names returns metric names in declaration order.
func (r *Registry) Names() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// Specs returns all metrics in declaration order.
func (r *Registry) Specs() []Spec {
	out := make([]Spec, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.specs[name])
	}
	return out
}
