package dataset

import (
	"context"
	"errors"
	"strings"

	"github.com/smallbiznis/paydash/internal/payroll/domain"
	"gorm.io/gorm"
)

// LoadFromDB reads every payroll row of tableName in a single SELECT.
// Columns use the snake_case names of domain.Record.
func LoadFromDB(ctx context.Context, db *gorm.DB, tableName string) (*domain.Table, error) {
	tableName = strings.TrimSpace(tableName)
	if tableName == "" {
		return nil, &domain.DataLoadError{Err: errors.New("table name is required")}
	}

	var rows []domain.Record
	if err := db.WithContext(ctx).Table(tableName).Find(&rows).Error; err != nil {
		return nil, &domain.DataLoadError{Source: tableName, Err: err}
	}

	for i, rec := range rows {
		rows[i].Agency = strings.TrimSpace(rec.Agency)
		if col, err := validate(rows[i]); err != nil {
			return nil, &domain.DataLoadError{Source: tableName, Line: i + 1, Column: col, Err: err}
		}
	}
	return domain.NewTable(rows), nil
}
