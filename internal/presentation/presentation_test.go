package presentation

import (
	"bytes"
	"encoding/json"
	"strconv"
	"testing"

	"github.com/smallbiznis/paydash/internal/payroll/aggregation"
	"github.com/smallbiznis/paydash/internal/payroll/domain"
	"github.com/smallbiznis/paydash/internal/payroll/transform"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pivotFixture(t *testing.T) (transform.PeriodPivot, transform.EntityPivot) {
	t.Helper()
	table := domain.NewTable([]domain.Record{
		{Agency: "POLICE DEPARTMENT", FiscalYear: 2016, TotalPay: 90000},
		{Agency: "FIRE DEPARTMENT", FiscalYear: 2016, TotalPay: 100000},
		{Agency: "POLICE DEPARTMENT", FiscalYear: 2017, TotalPay: 91000.25},
	})
	reg := aggregation.Default()
	byPeriod, err := transform.AggregateByPeriodAndEntity(table, reg, "Total Pay")
	require.NoError(t, err)
	byEntity, err := transform.AggregateByEntityAndPeriod(table, reg, "Total Pay")
	require.NoError(t, err)
	return byPeriod, byEntity
}

func TestBarChart(t *testing.T) {
	byPeriod, _ := pivotFixture(t)

	fig := BarChart(byPeriod)

	require.Len(t, fig.Data, 2)
	assert.Equal(t, "Total Pay (Average)", fig.Layout.Title.Text)
	assert.Equal(t, "Fiscal Year", fig.Layout.XAxis.Title.Text)
	assert.Equal(t, "Total Pay (Average)", fig.Layout.YAxis.Title.Text)

	policeTrace := fig.Data[0]
	assert.Equal(t, "police-department", policeTrace.UID)
	assert.Equal(t, "bar", policeTrace.Type)
	assert.Equal(t, []float64{2016, 2017}, policeTrace.X)

	fireTrace := fig.Data[1]
	assert.Equal(t, []float64{2016}, fireTrace.X, "absent periods are skipped, not zero")
	assert.Equal(t, []float64{100000}, fireTrace.Y)
}

func TestBarChartEmpty(t *testing.T) {
	fig := BarChart(transform.PeriodPivot{})
	assert.Empty(t, fig.Data)

	raw, err := json.Marshal(fig)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"data":[]`)
}

func TestScatterChart(t *testing.T) {
	summary := transform.EntitySummary{
		Spec: transform.Overtime,
		Rows: []transform.EntitySummaryRow{
			{Entity: "FIRE DEPARTMENT", Hours: 275, Pay: 20000, Employees: 1},
			{Entity: "POLICE DEPARTMENT", Hours: 50, Pay: 4333.3, Employees: 2},
		},
	}

	fig := ScatterChart(summary, OvertimeScatterLabels)

	require.Len(t, fig.Data, 2)
	assert.Equal(t, "Overtime Pay vs. Overtime Hours (Average)", fig.Layout.Title.Text)
	tr := fig.Data[1]
	assert.Equal(t, "scatter", tr.Type)
	assert.Equal(t, "markers", tr.Mode)
	assert.Equal(t, 0.7, tr.Opacity)
	assert.Equal(t, []float64{50}, tr.X)
	assert.Equal(t, []float64{4333.3}, tr.Y)
	assert.Equal(t, []string{"POLICE DEPARTMENT"}, tr.Text)
	assert.Equal(t, &Marker{Size: 15, Line: MarkerLine{Width: 0.5, Color: "white"}}, tr.Marker)
}

func TestPivotTable(t *testing.T) {
	_, byEntity := pivotFixture(t)

	tbl := PivotTable(byEntity, 10)

	assert.Equal(t, []string{"Agency Name", "2016", "2017"}, tbl.Header)
	assert.Equal(t, [][]string{
		{"POLICE DEPARTMENT", "90000", "91000.3"},
		{"FIRE DEPARTMENT", "100000", ""},
	}, tbl.Rows)
	assert.False(t, tbl.Truncated)
}

func TestTablesTruncate(t *testing.T) {
	rows := make([]transform.EntitySummaryRow, 0, 14)
	for i := range 14 {
		rows = append(rows, transform.EntitySummaryRow{Entity: "AGENCY " + strconv.Itoa(i), Hours: 1, Pay: 2, Employees: 3})
	}
	summary := transform.EntitySummary{Spec: transform.RegularPay, Rows: rows}

	tbl := SummaryTable(summary, 0)
	assert.Len(t, tbl.Rows, DefaultMaxRows)
	assert.Equal(t, 14, tbl.TotalRows)
	assert.True(t, tbl.Truncated)
	assert.Equal(t, "AGENCY 0", tbl.Rows[0][0], "first rows are kept, order unchanged")
	assert.Equal(t, []string{"Agency Name", "Regular Hours", "Regular Gross Paid", "Employee_Id"}, tbl.Header)
	assert.Equal(t, []string{"AGENCY 0", "1", "2", "3"}, tbl.Rows[0])

	tbl = SummaryTable(summary, 3)
	assert.Len(t, tbl.Rows, 3)
}

func TestRenderTableHTMLEscapes(t *testing.T) {
	html, err := RenderTableHTML(Table{
		Header:    []string{"Agency Name"},
		Rows:      [][]string{{"<script>x</script>"}},
		TotalRows: 5,
		Truncated: true,
	})
	require.NoError(t, err)

	out := string(html)
	assert.Contains(t, out, "<th>Agency Name</th>")
	assert.Contains(t, out, "&lt;script&gt;")
	assert.NotContains(t, out, "<script>")
	assert.Contains(t, out, "Showing 1 of 5 rows")
}

func TestRenderTablePDF(t *testing.T) {
	_, byEntity := pivotFixture(t)

	doc, err := RenderTablePDF(PivotTable(byEntity, 10))
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(doc, []byte("%PDF")))

	_, err = RenderTablePDF(Table{})
	assert.ErrorIs(t, err, ErrNoColumns)

	wide := Table{Header: make([]string, gridSize+1)}
	_, err = RenderTablePDF(wide)
	assert.ErrorIs(t, err, ErrTooManyColumns)
}

func TestColumnWidths(t *testing.T) {
	cases := map[int][]int{
		1: {12},
		4: {6, 2, 2, 2},
		6: {7, 1, 1, 1, 1, 1},
	}
	for n, want := range cases {
		got, err := columnWidths(n)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	_, err := columnWidths(13)
	assert.ErrorIs(t, err, ErrTooManyColumns)
}
