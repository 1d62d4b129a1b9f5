package presentation

import (
	"bytes"
	"errors"
	"fmt"
	"html/template"
	"strconv"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
)

const tableHTMLTemplate = `<table class="data-table">
  <thead>
    <tr>{{range .Header}}<th>{{.}}</th>{{end}}</tr>
  </thead>
  <tbody>
{{- range .Rows}}
    <tr>{{range .}}<td>{{.}}</td>{{end}}</tr>
{{- end}}
  </tbody>
</table>
{{- if .Truncated}}
<p class="table-note">Showing {{len .Rows}} of {{.TotalRows}} rows</p>
{{- end}}`

var tableTpl = template.Must(template.New("table").Parse(tableHTMLTemplate))

// RenderTableHTML renders t as an escaped HTML table fragment.
func RenderTableHTML(t Table) (template.HTML, error) {
	var buf bytes.Buffer
	if err := tableTpl.Execute(&buf, t); err != nil {
		return "", err
	}
	return template.HTML(buf.String()), nil
}

const gridSize = 12

var (
	ErrNoColumns      = errors.New("table_has_no_columns")
	ErrTooManyColumns = errors.New("table_has_too_many_columns")
)

// RenderTablePDF exports t as a PDF document. The first column is widest.
func RenderTablePDF(t Table) ([]byte, error) {
	widths, err := columnWidths(len(t.Header))
	if err != nil {
		return nil, err
	}

	cfg := config.NewBuilder().
		WithPageNumber(props.PageNumber{
			Pattern: "Page {current} of {total}",
			Place:   props.RightBottom,
		}).
		Build()
	m := maroto.New(cfg)

	if t.Title != "" {
		m.AddRow(15,
			text.NewCol(gridSize, t.Title, props.Text{
				Size:  14,
				Style: fontstyle.Bold,
				Align: align.Left,
			}),
		)
	}

	m.AddRow(10, cells(t.Header, widths, props.Text{Style: fontstyle.Bold, Size: 9})...)
	for _, row := range t.Rows {
		m.AddRow(8, cells(row, widths, props.Text{Size: 9})...)
	}
	if t.Truncated {
		m.AddRow(8,
			text.NewCol(gridSize, "Showing "+strconv.Itoa(len(t.Rows))+" of "+strconv.Itoa(t.TotalRows)+" rows",
				props.Text{Size: 8, Style: fontstyle.Italic, Top: 2}),
		)
	}

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("generate pdf: %w", err)
	}
	return doc.GetBytes(), nil
}

func cells(values []string, widths []int, base props.Text) []core.Col {
	cols := make([]core.Col, 0, len(widths))
	for i, width := range widths {
		value := ""
		if i < len(values) {
			value = values[i]
		}
		style := base
		if i > 0 {
			style.Align = align.Right
		}
		cols = append(cols, text.NewCol(width, value, style))
	}
	return cols
}

// columnWidths splits the 12-column grid, giving the label column the rest.
func columnWidths(n int) ([]int, error) {
	if n == 0 {
		return nil, ErrNoColumns
	}
	if n > gridSize {
		return nil, fmt.Errorf("%w: %d columns, at most %d fit a page", ErrTooManyColumns, n, gridSize)
	}
	widths := make([]int, n)
	if n == 1 {
		widths[0] = gridSize
		return widths, nil
	}
	other := max((gridSize-4)/(n-1), 1)
	widths[0] = gridSize - other*(n-1)
	for i := 1; i < n; i++ {
		widths[i] = other
	}
	return widths, nil
}
