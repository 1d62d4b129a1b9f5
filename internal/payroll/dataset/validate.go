package dataset

import (
	"errors"
	"fmt"
	"math"

	"github.com/smallbiznis/paydash/internal/payroll/domain"
)

// validate rejects records that break the dataset invariants. Pay and hours
// are finite and never negative.
func validate(rec domain.Record) (domain.Column, error) {
	if rec.Agency == "" {
		return domain.ColumnAgency, errors.New("empty agency name")
	}
	for _, col := range domain.RequiredColumns {
		if !col.Numeric() {
			continue
		}
		v, _ := rec.Number(col)
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return col, fmt.Errorf("non-finite value %v", v)
		}
		if v < 0 {
			return col, fmt.Errorf("negative value %v", v)
		}
	}
	return "", nil
}
