package dashboard

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/smallbiznis/paydash/internal/clock"
	"github.com/smallbiznis/paydash/internal/observability/logger"
	"github.com/smallbiznis/paydash/internal/observability/metrics"
	"github.com/smallbiznis/paydash/internal/payroll/domain"
	"github.com/smallbiznis/paydash/pkg/telemetry/correlation"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const triggerInitial = "initial"

// Change sets one input. Entities is read for entitySelection, Metric for
// metricSelection.
type Change struct {
	Input    InputName
	Entities []string
	Metric   string
}

func SelectEntities(entities ...string) Change {
	return Change{Input: InputEntitySelection, Entities: entities}
}

func SelectMetric(metric string) Change {
	return Change{Input: InputMetricSelection, Metric: metric}
}

// Dispatcher owns the current selection and the region of every output.
// Interactions are serialised: one Apply finishes before the next starts.
type Dispatcher struct {
	mu        sync.Mutex
	graph     *Graph
	selection domain.Selection
	regions   map[OutputName]Region

	clock    clock.Clock
	metrics  *metrics.Metrics
	tracer   trace.Tracer
	log      *zap.Logger
	observer func(OutputName, State)
}

// DispatcherOption customises a Dispatcher.
type DispatcherOption func(*Dispatcher)

func WithClock(c clock.Clock) DispatcherOption {
	return func(d *Dispatcher) { d.clock = c }
}

func WithMetrics(m *metrics.Metrics) DispatcherOption {
	return func(d *Dispatcher) { d.metrics = m }
}

func WithLogger(log *zap.Logger) DispatcherOption {
	return func(d *Dispatcher) { d.log = log.Named("dashboard") }
}

// WithStateObserver registers fn to see every region state transition.
func WithStateObserver(fn func(OutputName, State)) DispatcherOption {
	return func(d *Dispatcher) { d.observer = fn }
}

// NewDispatcher computes every output for the initial selection.
func NewDispatcher(ctx context.Context, graph *Graph, initial domain.Selection, opts ...DispatcherOption) *Dispatcher {
	d := &Dispatcher{
		graph:     graph,
		selection: initial.Clone(),
		regions:   make(map[OutputName]Region, len(graph.outputs)),
		clock:     clock.NewSystemClock(),
		tracer:    otel.Tracer("paydash/dashboard"),
		log:       zap.NewNop(),
	}
	for _, opt := range opts {
		opt(d)
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	ctx, revision := correlation.EnsureCorrelationID(ctx)
	d.recompute(ctx, graph.Outputs(), triggerInitial, revision)
	return d
}

// Apply sets one input and recomputes the outputs that depend on it. It
// returns the recomputed regions in declaration order.
func (d *Dispatcher) Apply(ctx context.Context, change Change) ([]Region, error) {
	return d.ApplyAll(ctx, change)
}

// ApplyAll sets several inputs as one interaction. Every output depending on
// any of them is recomputed once, under a single revision. Nothing changes
// when one of the inputs is unknown.
func (d *Dispatcher) ApplyAll(ctx context.Context, changes ...Change) ([]Region, error) {
	triggers := make([]string, 0, len(changes))
	for _, change := range changes {
		if !d.graph.HasInput(change.Input) {
			return nil, fmt.Errorf("%w: %q", ErrUnknownInput, change.Input)
		}
		triggers = append(triggers, string(change.Input))
	}
	if len(changes) == 0 {
		return []Region{}, nil
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	touched := make(map[OutputName]struct{})
	for _, change := range changes {
		switch change.Input {
		case InputEntitySelection:
			d.selection.Entities = slices.Clone(change.Entities)
			if d.selection.Entities == nil {
				d.selection.Entities = []string{}
			}
		case InputMetricSelection:
			d.selection.Metric = change.Metric
		}
		for _, name := range d.graph.Dependents(change.Input) {
			touched[name] = struct{}{}
		}
	}

	dependents := make([]OutputName, 0, len(touched))
	for _, name := range d.graph.Outputs() {
		if _, ok := touched[name]; ok {
			dependents = append(dependents, name)
		}
	}

	ctx, revision := correlation.EnsureCorrelationID(ctx)
	return d.recompute(ctx, dependents, strings.Join(triggers, "+"), revision), nil
}

// recompute marks names stale, then brings each to ready. Callers hold d.mu.
func (d *Dispatcher) recompute(ctx context.Context, names []OutputName, trigger, revision string) []Region {
	for _, name := range names {
		d.transition(name, StateStale)
	}

	log := logger.WithContext(ctx, d.log)
	sel := d.selection.Clone()
	out := make([]Region, 0, len(names))
	for _, name := range names {
		d.transition(name, StateComputing)
		o, _ := d.graph.output(name)
		region := d.compute(ctx, o, sel, trigger)
		region.Revision = revision
		d.regions[name] = region
		d.notify(name, region.State)
		if region.Error != "" {
			log.Warn("output computed with error",
				zap.String("output", string(name)),
				zap.String("trigger", trigger),
				zap.String("error", region.Error),
			)
		}
		out = append(out, region)
	}
	log.Debug("outputs recomputed",
		zap.String("trigger", trigger),
		zap.Int("outputs", len(out)),
	)
	return out
}

func (d *Dispatcher) transition(name OutputName, state State) {
	region := d.regions[name]
	region.Name = name
	region.State = state
	d.regions[name] = region
	d.notify(name, state)
}

func (d *Dispatcher) notify(name OutputName, state State) {
	if d.observer != nil {
		d.observer(name, state)
	}
}

// compute runs one output from scratch. Errors become an error region.
func (d *Dispatcher) compute(ctx context.Context, o Output, sel domain.Selection, trigger string) Region {
	ctx, span := d.tracer.Start(ctx, "dashboard.compute "+string(o.Name),
		trace.WithAttributes(
			attribute.String("output", string(o.Name)),
			attribute.String("trigger", trigger),
			attribute.String("metric", sel.Metric),
			attribute.Int("entities", len(sel.Entities)),
		),
	)
	defer span.End()

	start := time.Now()
	content, err := safeCompute(ctx, o, sel)
	d.metrics.RecordRecompute(ctx, string(o.Name), trigger, time.Since(start), err != nil)

	region := Region{
		Name:       o.Name,
		Kind:       o.Kind,
		State:      StateReady,
		ComputedAt: d.clock.Now(),
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "compute failed")
		region.Error = err.Error()
		return region
	}
	region.Figure = content.Figure
	region.Table = content.Table
	return region
}

// safeCompute turns a panic inside an output into an error so the region
// still reaches ready.
func safeCompute(ctx context.Context, o Output, sel domain.Selection) (content Content, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("compute %s: panic: %v", o.Name, r)
		}
	}()
	return o.Compute(ctx, sel)
}

// Evaluate computes outputs for sel without touching the dispatcher state.
// With no names every output is computed.
func (d *Dispatcher) Evaluate(ctx context.Context, sel domain.Selection, names ...OutputName) ([]Region, error) {
	if len(names) == 0 {
		names = d.graph.Outputs()
	}
	outputs := make([]Output, 0, len(names))
	for _, name := range names {
		o, ok := d.graph.output(name)
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownOutput, name)
		}
		outputs = append(outputs, o)
	}

	ctx, revision := correlation.EnsureCorrelationID(ctx)
	sel = sel.Clone()
	out := make([]Region, 0, len(outputs))
	for _, o := range outputs {
		region := d.compute(ctx, o, sel, "evaluate")
		region.Revision = revision
		out = append(out, region)
	}
	return out, nil
}

// Selection returns a copy of the current selection.
func (d *Dispatcher) Selection() domain.Selection {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.selection.Clone()
}

// Regions returns every region in declaration order.
func (d *Dispatcher) Regions() []Region {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]Region, 0, len(d.regions))
	for _, name := range d.graph.Outputs() {
		out = append(out, d.regions[name])
	}
	return out
}

// Region returns the named region.
func (d *Dispatcher) Region(name OutputName) (Region, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	region, ok := d.regions[name]
	if !ok {
		return Region{}, fmt.Errorf("%w: %q", ErrUnknownOutput, name)
	}
	return region, nil
}

// Outputs lists the output names in declaration order.
func (d *Dispatcher) Outputs() []OutputName {
	return d.graph.Outputs()
}
