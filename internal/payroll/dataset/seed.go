package dataset

import (
	"context"
	"errors"
	"strings"

	"github.com/smallbiznis/paydash/internal/payroll/domain"
	"gorm.io/gorm"
)

const seedBatchSize = 500

// Seed creates tableName when missing and copies src into it. A table that
// already holds rows is left untouched. It reports how many rows were written.
func Seed(ctx context.Context, db *gorm.DB, tableName string, src *domain.Table) (int, error) {
	if db == nil {
		return 0, errors.New("seed database handle is required")
	}
	tableName = strings.TrimSpace(tableName)
	if tableName == "" {
		return 0, errors.New("table name is required")
	}

	written := 0
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Table(tableName).AutoMigrate(&domain.Record{}); err != nil {
			return err
		}

		var existing int64
		if err := tx.Table(tableName).Count(&existing).Error; err != nil {
			return err
		}
		if existing > 0 || src.Len() == 0 {
			return nil
		}

		rows := make([]domain.Record, 0, src.Len())
		for _, rec := range src.All() {
			rows = append(rows, rec)
		}
		if err := tx.Table(tableName).CreateInBatches(rows, seedBatchSize).Error; err != nil {
			return err
		}
		written = len(rows)
		return nil
	})
	if err != nil {
		return 0, err
	}
	return written, nil
}
