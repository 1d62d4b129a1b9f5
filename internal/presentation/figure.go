package presentation

import (
	"strconv"

	"github.com/gosimple/slug"
	"github.com/smallbiznis/paydash/internal/payroll/domain"
	"github.com/smallbiznis/paydash/internal/payroll/transform"
)

// Figure is a chart description in the JSON shape plotly.js accepts.
type Figure struct {
	Data   []Trace `json:"data"`
	Layout Layout  `json:"layout"`
}

// Trace is one visual series.
type Trace struct {
	UID     string    `json:"uid"`
	Type    string    `json:"type"`
	Name    string    `json:"name"`
	X       []float64 `json:"x"`
	Y       []float64 `json:"y"`
	Text    []string  `json:"text,omitempty"`
	Mode    string    `json:"mode,omitempty"`
	Opacity float64   `json:"opacity,omitempty"`
	Marker  *Marker   `json:"marker,omitempty"`
}

type Marker struct {
	Size float64    `json:"size"`
	Line MarkerLine `json:"line"`
}

type MarkerLine struct {
	Width float64 `json:"width"`
	Color string  `json:"color"`
}

type Layout struct {
	Title   Title  `json:"title"`
	XAxis   Axis   `json:"xaxis"`
	YAxis   Axis   `json:"yaxis"`
	BarMode string `json:"barmode,omitempty"`
}

type Axis struct {
	Title Title `json:"title"`
}

type Title struct {
	Text string `json:"text"`
}

// ScatterLabels names a scatter chart and its axes.
type ScatterLabels struct {
	Title string
	XAxis string
	YAxis string
}

var (
	OvertimeScatterLabels = ScatterLabels{
		Title: "Overtime Pay vs. Overtime Hours (Average)",
		XAxis: "OT Hours (average)",
		YAxis: "Total OT Paid (average)",
	}
	RegularPayScatterLabels = ScatterLabels{
		Title: "Gross Pay vs. Regular Hours (Average)",
		XAxis: "Regular Hours (average)",
		YAxis: "Regular Pay (average)",
	}
)

// BarChart draws one bar series per entity over the periods. Periods with no
// data for an entity are left out of that series rather than drawn as zero.
func BarChart(p transform.PeriodPivot) Figure {
	fig := Figure{
		Data: make([]Trace, 0, len(p.Entities)),
		Layout: Layout{
			Title:   Title{Text: p.Metric.Label},
			XAxis:   Axis{Title: Title{Text: domain.ColumnFiscalYear.String()}},
			YAxis:   Axis{Title: Title{Text: p.Metric.Label}},
			BarMode: "group",
		},
	}
	for _, entity := range p.Entities {
		trace := Trace{
			UID:  TraceUID(entity),
			Type: "bar",
			Name: entity,
			X:    []float64{},
			Y:    []float64{},
		}
		for _, row := range p.Rows {
			if v, ok := row.Value(entity); ok {
				trace.X = append(trace.X, float64(row.Period))
				trace.Y = append(trace.Y, v)
			}
		}
		fig.Data = append(fig.Data, trace)
	}
	return fig
}

// ScatterChart draws one marker series per entity, hours on x and pay on y.
func ScatterChart(s transform.EntitySummary, labels ScatterLabels) Figure {
	fig := Figure{
		Data: make([]Trace, 0, len(s.Rows)),
		Layout: Layout{
			Title: Title{Text: labels.Title},
			XAxis: Axis{Title: Title{Text: labels.XAxis}},
			YAxis: Axis{Title: Title{Text: labels.YAxis}},
		},
	}
	for _, row := range s.Rows {
		fig.Data = append(fig.Data, Trace{
			UID:     TraceUID(row.Entity),
			Type:    "scatter",
			Name:    row.Entity,
			X:       []float64{row.Hours},
			Y:       []float64{row.Pay},
			Text:    []string{row.Entity},
			Mode:    "markers",
			Opacity: 0.7,
			Marker: &Marker{
				Size: 15,
				Line: MarkerLine{Width: 0.5, Color: "white"},
			},
		})
	}
	return fig
}

// TraceUID is a stable, URL-safe identifier for an entity's series.
func TraceUID(entity string) string {
	return slug.Make(entity)
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
