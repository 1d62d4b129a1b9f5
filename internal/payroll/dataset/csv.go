package dataset

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/smallbiznis/paydash/internal/payroll/domain"
)

// Option customises the CSV reader.
type Option func(*options)

type options struct {
	delimiter rune
}

// WithDelimiter sets the field separator. The default is a comma.
func WithDelimiter(r rune) Option {
	return func(o *options) {
		if r != 0 {
			o.delimiter = r
		}
	}
}

// Load reads the payroll file at path into an immutable table.
func Load(path string, opts ...Option) (*domain.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &domain.DataLoadError{Source: path, Err: err}
	}
	defer f.Close()

	return LoadReader(f, path, opts...)
}

// LoadReader parses delimited payroll rows from r. source only labels errors.
func LoadReader(r io.Reader, source string, opts ...Option) (*domain.Table, error) {
	o := options{delimiter: ','}
	for _, opt := range opts {
		opt(&o)
	}

	reader := csv.NewReader(bufio.NewReader(r))
	reader.Comma = o.delimiter
	reader.LazyQuotes = true
	reader.ReuseRecord = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			err = errors.New("missing header row")
		}
		return nil, &domain.DataLoadError{Source: source, Line: 1, Err: err}
	}

	index, err := headerIndex(header)
	if err != nil {
		var loadErr *domain.DataLoadError
		if errors.As(err, &loadErr) {
			loadErr.Source = source
			loadErr.Line = 1
		}
		return nil, err
	}

	rows := make([]domain.Record, 0, 1024)
	for {
		fields, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var parseErr *csv.ParseError
			line := 0
			if errors.As(err, &parseErr) {
				line = parseErr.Line
			}
			return nil, &domain.DataLoadError{Source: source, Line: line, Err: err}
		}
		line, _ := reader.FieldPos(0)

		rec, col, err := parseRecord(fields, index)
		if err == nil {
			col, err = validate(rec)
		}
		if err != nil {
			return nil, &domain.DataLoadError{Source: source, Line: line, Column: col, Err: err}
		}
		rows = append(rows, rec)
	}

	return domain.NewTable(rows), nil
}

// headerIndex maps every required column to its position in the header.
func headerIndex(header []string) (map[domain.Column]int, error) {
	positions := make(map[string]int, len(header))
	for i, h := range header {
		name := cleanHeader(h)
		if _, dup := positions[name]; !dup {
			positions[name] = i
		}
	}

	index := make(map[domain.Column]int, len(domain.RequiredColumns))
	var missing []string
	for _, col := range domain.RequiredColumns {
		pos, ok := positions[col.String()]
		if !ok {
			missing = append(missing, col.String())
			continue
		}
		index[col] = pos
	}
	if len(missing) > 0 {
		return nil, &domain.DataLoadError{
			Column: domain.Column(missing[0]),
			Err:    fmt.Errorf("missing required columns: %s", strings.Join(missing, ", ")),
		}
	}
	return index, nil
}

func cleanHeader(h string) string {
	h = strings.TrimPrefix(h, "\ufeff")
	h = strings.ReplaceAll(h, `"`, "")
	return strings.TrimSpace(h)
}

func parseRecord(fields []string, index map[domain.Column]int) (domain.Record, domain.Column, error) {
	text := func(c domain.Column) string {
		return strings.TrimSpace(fields[index[c]])
	}

	rec := domain.Record{
		Agency:     text(domain.ColumnAgency),
		Borough:    text(domain.ColumnBorough),
		EmployeeID: text(domain.ColumnEmployeeID),
		Title:      text(domain.ColumnTitle),
	}

	year, err := parseYear(text(domain.ColumnFiscalYear))
	if err != nil {
		return rec, domain.ColumnFiscalYear, err
	}
	rec.FiscalYear = year

	numbers := []struct {
		col domain.Column
		dst *float64
	}{
		{domain.ColumnRegularHours, &rec.RegularHours},
		{domain.ColumnRegularGrossPaid, &rec.RegularGrossPaid},
		{domain.ColumnOTHours, &rec.OTHours},
		{domain.ColumnTotalOTPaid, &rec.TotalOTPaid},
		{domain.ColumnTotalOtherPay, &rec.TotalOtherPay},
		{domain.ColumnTotalPay, &rec.TotalPay},
	}
	for _, n := range numbers {
		v, err := parseNumber(text(n.col))
		if err != nil {
			return rec, n.col, err
		}
		*n.dst = v
	}
	return rec, "", nil
}

func parseNumber(raw string) (float64, error) {
	cleaned := strings.NewReplacer("$", "", ",", "", " ", "").Replace(raw)
	if cleaned == "" {
		return 0, errors.New("empty numeric value")
	}
	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("invalid number %q", raw)
	}
	return v, nil
}

// parseYear accepts integral values, including the "2016.0" form spreadsheets emit.
func parseYear(raw string) (int, error) {
	if raw == "" {
		return 0, errors.New("empty fiscal year")
	}
	if year, err := strconv.Atoi(raw); err == nil {
		return year, nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || f != float64(int(f)) {
		return 0, fmt.Errorf("invalid fiscal year %q", raw)
	}
	return int(f), nil
}
