package board

import (
	"context"
	"fmt"

	"taskboard/internal/models"
)

// AddTask appends a new task to the tail of columnID in the active project.
// Defaults are applied first and overrides last, so overrides win. When the
// resulting assignee is not the actor, the assignee is notified. It returns
// false when there is no active project or the column does not exist.
func (s *Store) AddTask(ctx context.Context, actor models.UserRef, title, description string, priority models.Priority, columnID string, overrides models.TaskOverrides) (models.Task, bool) {
	task := models.Task{
		ID:            s.newID(models.PrefixTask),
		Title:         title,
		Description:   description,
		Priority:      priority,
		Status:        models.StatusTodo,
		ColumnID:      columnID,
		Collaborators: []models.UserRef{},
		Subtasks:      []models.Subtask{},
		Dependencies:  []string{},
		Projects:      []string{s.ActiveProjectID()},
	}
	if actor.ID != "" {
		a := actor
		task.Assignee = &a
		b := actor
		task.Assigner = &b
	}
	overrides.Apply(&task)
	// The task always lives in the column it is appended to.
	task.ColumnID = columnID

	added := s.updateColumns(ctx, "add_task", func(cols []models.Column) ([]models.Column, bool) {
		idx := columnIndex(cols, columnID)
		if idx < 0 {
			return cols, false
		}
		cols[idx].Tasks = append(cols[idx].Tasks, task)
		return cols, true
	})
	if !added {
		return models.Task{}, false
	}

	if task.Assignee != nil && task.Assignee.ID != actor.ID {
		s.notify(ctx, task.Assignee.ID, actor, task.ID, models.ActionAssigned,
			fmt.Sprintf("%s assigned you a new task: %q", actor.DisplayName(), task.Title))
	}
	return task.Clone(), true
}

// UpdateTask replaces the stored task with the same id at the same position
// of the same column. It never moves a task between columns: the stored
// column id is kept whatever updated carries. Comments are append-only and
// also kept; AddComment is the only way to change them.
//
// Compared with the previous value it notifies a newly assigned user other
// than the actor, and on a transition to done it celebrates and notifies the
// assigner when the assigner is not the actor. An unknown task that arrives
// as done still celebrates.
func (s *Store) UpdateTask(ctx context.Context, actor models.UserRef, updated models.Task) bool {
	if s.ActiveProjectID() == "" {
		return false
	}

	var prev models.Task
	var found bool
	s.updateColumns(ctx, "update_task", func(cols []models.Column) ([]models.Column, bool) {
		var ci int
		prev, ci, found = findTask(cols, updated.ID)
		if !found {
			return cols, false
		}
		next := updated.Clone()
		next.ColumnID = cols[ci].ID
		next.Comments = prev.Comments
		cols[ci].Tasks[cols[ci].IndexOf(updated.ID)] = next
		return cols, true
	})

	if !found {
		if updated.IsDone() {
			s.celebrate()
		}
		return false
	}

	if updated.Assignee != nil && updated.Assignee.ID != "" &&
		(prev.Assignee == nil || prev.Assignee.ID != updated.Assignee.ID) &&
		updated.Assignee.ID != actor.ID {
		s.notify(ctx, updated.Assignee.ID, actor, updated.ID, models.ActionAssigned,
			fmt.Sprintf("%s assigned you a task: %q", actor.DisplayName(), updated.Title))
	}

	if updated.IsDone() && !prev.IsDone() {
		s.celebrate()
		if updated.Assigner != nil && updated.Assigner.ID != actor.ID {
			s.notify(ctx, updated.Assigner.ID, actor, updated.ID, models.ActionCompleted,
				fmt.Sprintf("%s completed a task you assigned: %q", actor.DisplayName(), updated.Title))
		}
	}
	return true
}

// DeleteTask removes a task from the active project.
func (s *Store) DeleteTask(ctx context.Context, taskID string) bool {
	return s.updateColumns(ctx, "delete_task", func(cols []models.Column) ([]models.Column, bool) {
		_, ci, ok := findTask(cols, taskID)
		if !ok {
			return cols, false
		}
		ti := cols[ci].IndexOf(taskID)
		cols[ci].Tasks = append(cols[ci].Tasks[:ti], cols[ci].Tasks[ti+1:]...)
		return cols, true
	})
}
