package dashboard

import (
	"time"

	"github.com/smallbiznis/paydash/internal/presentation"
)

// Kind is the type of content an output renders.
type Kind string

const (
	KindFigure Kind = "figure"
	KindTable  Kind = "table"
)

// State is the lifecycle position of a region.
type State string

const (
	StateStale     State = "stale"
	StateComputing State = "computing"
	StateReady     State = "ready"
)

// Region is the current content of one output. A failed computation leaves a
// ready region with Error set and no content.
type Region struct {
	Name       OutputName           `json:"name"`
	Kind       Kind                 `json:"kind"`
	State      State                `json:"state"`
	Figure     *presentation.Figure `json:"figure,omitempty"`
	Table      *presentation.Table  `json:"table,omitempty"`
	Error      string               `json:"error,omitempty"`
	Revision   string               `json:"revision,omitempty"`
	ComputedAt time.Time            `json:"computed_at"`
}
