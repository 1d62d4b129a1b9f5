package domain

// Column identifies a record attribute by its dataset header name.
type Column string

const (
	ColumnAgency           Column = "Agency Name"
	ColumnBorough          Column = "Work Location Borough"
	ColumnEmployeeID       Column = "Employee_Id"
	ColumnTitle            Column = "Title Description"
	ColumnFiscalYear       Column = "Fiscal Year"
	ColumnRegularHours     Column = "Regular Hours"
	ColumnRegularGrossPaid Column = "Regular Gross Paid"
	ColumnOTHours          Column = "OT Hours"
	ColumnTotalOTPaid      Column = "Total OT Paid"
	ColumnTotalOtherPay    Column = "Total Other Pay"
	ColumnTotalPay         Column = "Total Pay"
)

// ColumnKind classifies how a column can be aggregated.
type ColumnKind string

const (
	KindText    ColumnKind = "text"
	KindPeriod  ColumnKind = "period"
	KindNumeric ColumnKind = "numeric"
	KindUnknown ColumnKind = "unknown"
)

// RequiredColumns lists every column the data provider must find in the source.
var RequiredColumns = []Column{
	ColumnAgency,
	ColumnBorough,
	ColumnEmployeeID,
	ColumnTitle,
	ColumnFiscalYear,
	ColumnRegularHours,
	ColumnRegularGrossPaid,
	ColumnOTHours,
	ColumnTotalOTPaid,
	ColumnTotalOtherPay,
	ColumnTotalPay,
}

// Kind reports the column kind.
func (c Column) Kind() ColumnKind {
	switch c {
	case ColumnAgency, ColumnBorough, ColumnEmployeeID, ColumnTitle:
		return KindText
	case ColumnFiscalYear:
		return KindPeriod
	case ColumnRegularHours, ColumnRegularGrossPaid, ColumnOTHours,
		ColumnTotalOTPaid, ColumnTotalOtherPay, ColumnTotalPay:
		return KindNumeric
	default:
		return KindUnknown
	}
}

// Numeric reports whether sum and mean apply to the column.
func (c Column) Numeric() bool {
	return c.Kind() == KindNumeric
}

func (c Column) String() string { return string(c) }

// Record is one payroll row. Pay and hours are never negative.
type Record struct {
	Agency           string  `json:"agency_name" gorm:"column:agency_name"`
	Borough          string  `json:"work_location_borough" gorm:"column:work_location_borough"`
	EmployeeID       string  `json:"employee_id" gorm:"column:employee_id"`
	Title            string  `json:"title_description" gorm:"column:title_description"`
	FiscalYear       int     `json:"fiscal_year" gorm:"column:fiscal_year"`
	RegularHours     float64 `json:"regular_hours" gorm:"column:regular_hours"`
	RegularGrossPaid float64 `json:"regular_gross_paid" gorm:"column:regular_gross_paid"`
	OTHours          float64 `json:"ot_hours" gorm:"column:ot_hours"`
	TotalOTPaid      float64 `json:"total_ot_paid" gorm:"column:total_ot_paid"`
	TotalOtherPay    float64 `json:"total_other_pay" gorm:"column:total_other_pay"`
	TotalPay         float64 `json:"total_pay" gorm:"column:total_pay"`
}

// Text returns the value of a text column.
func (r Record) Text(c Column) (string, bool) {
	switch c {
	case ColumnAgency:
		return r.Agency, true
	case ColumnBorough:
		return r.Borough, true
	case ColumnEmployeeID:
		return r.EmployeeID, true
	case ColumnTitle:
		return r.Title, true
	default:
		return "", false
	}
}

// Number returns the value of a numeric column.
func (r Record) Number(c Column) (float64, bool) {
	switch c {
	case ColumnRegularHours:
		return r.RegularHours, true
	case ColumnRegularGrossPaid:
		return r.RegularGrossPaid, true
	case ColumnOTHours:
		return r.OTHours, true
	case ColumnTotalOTPaid:
		return r.TotalOTPaid, true
	case ColumnTotalOtherPay:
		return r.TotalOtherPay, true
	case ColumnTotalPay:
		return r.TotalPay, true
	case ColumnFiscalYear:
		return float64(r.FiscalYear), true
	default:
		return 0, false
	}
}

// Selection is the user-chosen state driving every derived output.
type Selection struct {
	Entities []string `json:"entities"`
	Metric   string   `json:"metric"`
}

// Clone returns a copy that does not share the entity slice.
func (s Selection) Clone() Selection {
	entities := make([]string, len(s.Entities))
	copy(entities, s.Entities)
	return Selection{Entities: entities, Metric: s.Metric}
}
