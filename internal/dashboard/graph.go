package dashboard

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/smallbiznis/paydash/internal/payroll/domain"
	"github.com/smallbiznis/paydash/internal/presentation"
)

// InputName identifies an input control.
type InputName string

const (
	InputEntitySelection InputName = "entitySelection"
	InputMetricSelection InputName = "metricSelection"
)

// Inputs lists the dashboard inputs in page order.
var Inputs = []InputName{InputEntitySelection, InputMetricSelection}

// OutputName identifies a display region.
type OutputName string

const (
	OutputPeriodChart          OutputName = "periodChart"
	OutputSummaryTable         OutputName = "summaryTable"
	OutputOvertimeScatter      OutputName = "overtimeScatter"
	OutputRegularPayScatter    OutputName = "regularPayScatter"
	OutputRegularSummaryTable  OutputName = "regularSummaryTable"
	OutputOvertimeSummaryTable OutputName = "overtimeSummaryTable"
)

// Content is what an output renders. Exactly one field is set on success.
type Content struct {
	Figure *presentation.Figure
	Table  *presentation.Table
}

// ComputeFunc derives an output from the selection. It must not keep state
// between calls.
type ComputeFunc func(ctx context.Context, sel domain.Selection) (Content, error)

// Output declares a region, the inputs it reads and how to compute it.
type Output struct {
	Name      OutputName
	Kind      Kind
	DependsOn []InputName
	Compute   ComputeFunc
}

// Graph is the static dependency declaration between inputs and outputs.
type Graph struct {
	inputs  []InputName
	outputs []Output
	index   map[OutputName]int
}

// NewGraph checks that names are unique and every dependency is a declared input.
func NewGraph(inputs []InputName, outputs ...Output) (*Graph, error) {
	g := &Graph{
		inputs:  slices.Clone(inputs),
		outputs: make([]Output, 0, len(outputs)),
		index:   make(map[OutputName]int, len(outputs)),
	}

	var errs error
	seenInputs := make(map[InputName]struct{}, len(inputs))
	for _, in := range inputs {
		if _, dup := seenInputs[in]; dup {
			errs = errors.Join(errs, fmt.Errorf("input %q declared twice", in))
		}
		seenInputs[in] = struct{}{}
	}
	for _, out := range outputs {
		if _, dup := g.index[out.Name]; dup {
			errs = errors.Join(errs, fmt.Errorf("output %q declared twice", out.Name))
			continue
		}
		if out.Compute == nil {
			errs = errors.Join(errs, fmt.Errorf("output %q has no compute function", out.Name))
		}
		for _, dep := range out.DependsOn {
			if _, ok := seenInputs[dep]; !ok {
				errs = errors.Join(errs, fmt.Errorf("output %q depends on undeclared input %q", out.Name, dep))
			}
		}
		out.DependsOn = slices.Clone(out.DependsOn)
		g.index[out.Name] = len(g.outputs)
		g.outputs = append(g.outputs, out)
	}
	if errs != nil {
		return nil, errs
	}
	return g, nil
}

// HasInput reports whether name is a declared input.
func (g *Graph) HasInput(name InputName) bool {
	return slices.Contains(g.inputs, name)
}

// Dependents lists the outputs that read input, in declaration order.
func (g *Graph) Dependents(input InputName) []OutputName {
	out := make([]OutputName, 0, len(g.outputs))
	for _, o := range g.outputs {
		if slices.Contains(o.DependsOn, input) {
			out = append(out, o.Name)
		}
	}
	return out
}

// Outputs lists every output name in declaration order.
func (g *Graph) Outputs() []OutputName {
	out := make([]OutputName, 0, len(g.outputs))
	for _, o := range g.outputs {
		out = append(out, o.Name)
	}
	return out
}

func (g *Graph) output(name OutputName) (Output, bool) {
	i, ok := g.index[name]
	if !ok {
		return Output{}, false
	}
	return g.outputs[i], true
}
