package board

import (
	"fmt"

	"taskboard/internal/models"
)

// CheckColumns verifies that every task appears in exactly one column and
// that its column id names the column holding it.
func CheckColumns(cols []models.Column) error {
	seen := make(map[string]string)
	for _, col := range cols {
		for _, t := range col.Tasks {
			if other, dup := seen[t.ID]; dup {
				return fmt.Errorf("task %s appears in columns %s and %s", t.ID, other, col.ID)
			}
			seen[t.ID] = col.ID
			if t.ColumnID != col.ID {
				return fmt.Errorf("task %s has column_id %s but sits in column %s", t.ID, t.ColumnID, col.ID)
			}
		}
	}
	return nil
}

// Check runs CheckColumns over every project in the store.
func (s *Store) Check() error {
	for _, p := range s.Projects() {
		if err := CheckColumns(p.Columns); err != nil {
			return fmt.Errorf("project %s: %w", p.ID, err)
		}
	}
	return nil
}
