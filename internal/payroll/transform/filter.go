package transform

import "github.com/smallbiznis/paydash/internal/payroll/domain"

// FilterByEntities keeps the rows whose agency is one of entities, in table
// order. An empty entity set yields an empty table.
func FilterByEntities(table *domain.Table, entities []string) *domain.Table {
	if len(entities) == 0 {
		return domain.NewTable(nil)
	}
	set := make(map[string]struct{}, len(entities))
	for _, e := range entities {
		set[e] = struct{}{}
	}

	rows := make([]domain.Record, 0)
	for _, rec := range table.All() {
		if _, ok := set[rec.Agency]; ok {
			rows = append(rows, rec)
		}
	}
	return domain.NewTable(rows)
}
