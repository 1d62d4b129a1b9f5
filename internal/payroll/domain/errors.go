package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrDataLoad       = errors.New("data_load_error")
	ErrUnknownMetric  = errors.New("unknown_metric")
	ErrInvalidMeasure = errors.New("invalid_measure")
)

// DataLoadError reports why the dataset could not be loaded. It is fatal at startup.
type DataLoadError struct {
	Source string
	Line   int
	Column Column
	Err    error
}

func (e *DataLoadError) Error() string {
	var b strings.Builder
	b.WriteString("load dataset")
	if e.Source != "" {
		fmt.Fprintf(&b, " %q", e.Source)
	}
	if e.Line > 0 {
		fmt.Fprintf(&b, " line %d", e.Line)
	}
	if e.Column != "" {
		fmt.Fprintf(&b, " column %q", string(e.Column))
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *DataLoadError) Unwrap() error { return e.Err }

func (e *DataLoadError) Is(target error) bool { return target == ErrDataLoad }

// UnknownMetricError reports a metric name missing from the registry.
type UnknownMetricError struct {
	Name string
}

func (e *UnknownMetricError) Error() string {
	return fmt.Sprintf("unknown metric %q", e.Name)
}

func (e *UnknownMetricError) Is(target error) bool { return target == ErrUnknownMetric }
