package board

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"taskboard/internal/models"
)

// ArchiveDateLayout formats the day in archive column titles (US short date).
const ArchiveDateLayout = "1/2/2006"

// AddColumn appends an empty column to the active project.
func (s *Store) AddColumn(ctx context.Context, title string) (models.Column, bool) {
	col := models.Column{ID: s.newID(models.PrefixColumn), Title: title, Tasks: []models.Task{}}
	ok := s.updateColumns(ctx, "add_column", func(cols []models.Column) ([]models.Column, bool) {
		return append(cols, col), true
	})
	return col, ok
}

// UpdateColumnTitle renames a column. A title that is empty after trimming
// leaves the old title in place.
func (s *Store) UpdateColumnTitle(ctx context.Context, columnID, title string) bool {
	title = strings.TrimSpace(title)
	if title == "" {
		return false
	}
	return s.updateColumns(ctx, "rename_column", func(cols []models.Column) ([]models.Column, bool) {
		idx := columnIndex(cols, columnID)
		if idx < 0 || cols[idx].Title == title {
			return cols, false
		}
		cols[idx].Title = title
		return cols, true
	})
}

// DeleteColumn removes a column together with the tasks it holds.
func (s *Store) DeleteColumn(ctx context.Context, columnID string) bool {
	return s.updateColumns(ctx, "delete_column", func(cols []models.Column) ([]models.Column, bool) {
		idx := columnIndex(cols, columnID)
		if idx < 0 {
			return cols, false
		}
		return append(cols[:idx], cols[idx+1:]...), true
	})
}

// ArchiveTitle is the title of the archive column for the day of now.
func ArchiveTitle(now time.Time) string {
	return "Completed " + now.Format(ArchiveDateLayout)
}

// ArchiveCompletedTasks moves every done task out of columns whose title
// does not mention "completed" into today's archive column, creating it at
// the end when missing. Moved tasks keep their relative order. It returns
// the number of tasks moved; zero means nothing changed.
func (s *Store) ArchiveCompletedTasks(ctx context.Context) int {
	target := ArchiveTitle(s.now())
	moved := 0

	s.updateColumns(ctx, "archive", func(cols []models.Column) ([]models.Column, bool) {
		var archived []models.Task
		for i := range cols {
			if isArchiveColumn(cols[i]) {
				continue
			}
			kept := make([]models.Task, 0, len(cols[i].Tasks))
			for _, t := range cols[i].Tasks {
				if t.IsDone() {
					archived = append(archived, t)
					continue
				}
				kept = append(kept, t)
			}
			cols[i].Tasks = kept
		}
		if len(archived) == 0 {
			return cols, false
		}

		idx := -1
		for i := range cols {
			if cols[i].Title == target {
				idx = i
				break
			}
		}
		if idx < 0 {
			cols = append(cols, models.Column{ID: s.newID(models.PrefixColumn), Title: target, Tasks: []models.Task{}})
			idx = len(cols) - 1
		}
		for i := range archived {
			archived[i].ColumnID = cols[idx].ID
		}
		cols[idx].Tasks = append(cols[idx].Tasks, archived...)
		moved = len(archived)
		return cols, true
	})

	if moved > 0 {
		s.logger.Info("archived completed tasks", slog.Int("count", moved), slog.String("column", target))
	}
	return moved
}

func isArchiveColumn(col models.Column) bool {
	return strings.Contains(strings.ToLower(col.Title), "completed")
}
