package board

import (
	"context"
	"log/slog"

	"taskboard/internal/dnd"
	"taskboard/internal/metrics"
	"taskboard/internal/models"
)

// ApplyMove commits a drag plan to the active project. Dropping into the
// column titled "Done" celebrates once, however many tasks moved.
func (s *Store) ApplyMove(ctx context.Context, plan dnd.Plan) bool {
	return s.commitMove(ctx, func([]models.Column) (dnd.Plan, bool) {
		return plan, true
	})
}

// Drop ends ctrl's drag over target and commits the resulting plan in one
// step under the store lock, so the insertion index is computed against the
// same columns it is applied to. Without an active project the drag is
// still ended and nothing changes.
func (s *Store) Drop(ctx context.Context, ctrl *dnd.Controller, target dnd.Target) (dnd.Plan, bool) {
	var plan dnd.Plan
	ended := false
	changed := s.commitMove(ctx, func(cols []models.Column) (dnd.Plan, bool) {
		ended = true
		var ok bool
		plan, ok = ctrl.End(cols, target)
		return plan, ok
	})
	if !ended {
		ctrl.End(nil, target)
	}
	return plan, changed
}

func (s *Store) commitMove(ctx context.Context, planFor func([]models.Column) (dnd.Plan, bool)) bool {
	var (
		plan      dnd.Plan
		moved     int
		destTitle string
	)
	ok := s.updateColumns(ctx, "move_tasks", func(cols []models.Column) ([]models.Column, bool) {
		var planned bool
		plan, planned = planFor(cols)
		if !planned {
			return cols, false
		}
		var next []models.Column
		next, moved = dnd.Apply(cols, plan)
		if moved == 0 {
			return cols, false
		}
		destTitle = next[columnIndex(next, plan.ColumnID)].Title
		return next, true
	})
	if !ok {
		return false
	}

	metrics.TasksMoved.Add(float64(moved))
	s.logger.Debug("tasks moved",
		slog.Int("count", moved),
		slog.String("column", plan.ColumnID),
		slog.Int("index", plan.Index),
	)
	if destTitle == DoneColumnTitle {
		s.celebrate()
	}
	return true
}
