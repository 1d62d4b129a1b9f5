package presentation

import (
	"strconv"

	"github.com/smallbiznis/paydash/internal/payroll/domain"
	"github.com/smallbiznis/paydash/internal/payroll/transform"
)

// DefaultMaxRows caps tables when the caller passes a non-positive limit.
const DefaultMaxRows = 10

// Table is a display table of strings. Only the first rows are kept.
type Table struct {
	Title     string     `json:"title"`
	Header    []string   `json:"header"`
	Rows      [][]string `json:"rows"`
	TotalRows int        `json:"total_rows"`
	Truncated bool       `json:"truncated"`
}

// PivotTable lays out entities as rows and periods as columns. Absent cells
// render as empty strings.
func PivotTable(p transform.EntityPivot, maxRows int) Table {
	header := make([]string, 0, len(p.Periods)+1)
	header = append(header, domain.ColumnAgency.String())
	for _, period := range p.Periods {
		header = append(header, strconv.Itoa(period))
	}

	rows := make([][]string, 0, len(p.Rows))
	for _, r := range p.Rows {
		row := make([]string, 0, len(header))
		row = append(row, r.Entity)
		for _, period := range p.Periods {
			cell := ""
			if v, ok := r.Value(period); ok {
				cell = formatNumber(v)
			}
			row = append(row, cell)
		}
		rows = append(rows, row)
	}
	return truncate(Table{Title: p.Metric.Label, Header: header}, rows, maxRows)
}

// SummaryTable lays out one row per entity with the hours, pay and employee
// count columns of the summary.
func SummaryTable(s transform.EntitySummary, maxRows int) Table {
	header := []string{
		domain.ColumnAgency.String(),
		s.Spec.Hours.Column.String(),
		s.Spec.Pay.Column.String(),
	}
	if s.Spec.CountEmployees {
		header = append(header, domain.ColumnEmployeeID.String())
	}

	rows := make([][]string, 0, len(s.Rows))
	for _, r := range s.Rows {
		row := []string{r.Entity, formatNumber(r.Hours), formatNumber(r.Pay)}
		if s.Spec.CountEmployees {
			row = append(row, strconv.Itoa(r.Employees))
		}
		rows = append(rows, row)
	}
	return truncate(Table{Header: header}, rows, maxRows)
}

func truncate(t Table, rows [][]string, maxRows int) Table {
	if maxRows <= 0 {
		maxRows = DefaultMaxRows
	}
	t.TotalRows = len(rows)
	if len(rows) > maxRows {
		rows = rows[:maxRows]
		t.Truncated = true
	}
	t.Rows = rows
	return t
}
