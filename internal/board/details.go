package board

import (
	"context"
	"fmt"
	"strings"

	"taskboard/internal/models"
)

// AddComment appends a comment by actor to a task. The assignee and every
// collaborator other than the actor are notified, the assignee only once.
func (s *Store) AddComment(ctx context.Context, actor models.UserRef, taskID, content string) (models.Comment, bool) {
	if strings.TrimSpace(content) == "" || actor.ID == "" {
		return models.Comment{}, false
	}
	comment := models.Comment{
		ID:        s.newID(models.PrefixComment),
		Content:   content,
		Author:    actor,
		CreatedAt: s.now(),
	}

	var task models.Task
	ok := s.mutateTask(ctx, "add_comment", taskID, func(t *models.Task) bool {
		t.Comments = append(t.Comments, comment)
		task = *t
		return true
	})
	if !ok {
		return models.Comment{}, false
	}

	msg := fmt.Sprintf("%s commented on task: %q", actor.DisplayName(), task.Title)
	if task.Assignee != nil && task.Assignee.ID != actor.ID {
		s.notify(ctx, task.Assignee.ID, actor, task.ID, models.ActionCommented, msg)
	}
	for _, c := range task.Collaborators {
		if c.ID == actor.ID || (task.Assignee != nil && c.ID == task.Assignee.ID) {
			continue
		}
		s.notify(ctx, c.ID, actor, task.ID, models.ActionCommented, msg)
	}
	return comment, true
}

// AddSubtask appends a checklist entry to a task.
func (s *Store) AddSubtask(ctx context.Context, taskID, title string) (models.Subtask, bool) {
	title = strings.TrimSpace(title)
	if title == "" {
		return models.Subtask{}, false
	}
	st := models.Subtask{ID: s.newID(models.PrefixSubtask), Title: title}
	ok := s.mutateTask(ctx, "add_subtask", taskID, func(t *models.Task) bool {
		t.Subtasks = append(t.Subtasks, st)
		return true
	})
	return st, ok
}

// ToggleSubtask flips a subtask. Completing one fires the mini celebration.
func (s *Store) ToggleSubtask(ctx context.Context, taskID, subtaskID string) bool {
	completed := false
	ok := s.mutateTask(ctx, "toggle_subtask", taskID, func(t *models.Task) bool {
		for i := range t.Subtasks {
			if t.Subtasks[i].ID == subtaskID {
				t.Subtasks[i].Completed = !t.Subtasks[i].Completed
				completed = t.Subtasks[i].Completed
				return true
			}
		}
		return false
	})
	if ok && completed {
		s.celebrateMini()
	}
	return ok
}

// DeleteSubtask removes a subtask.
func (s *Store) DeleteSubtask(ctx context.Context, taskID, subtaskID string) bool {
	return s.mutateTask(ctx, "delete_subtask", taskID, func(t *models.Task) bool {
		for i := range t.Subtasks {
			if t.Subtasks[i].ID == subtaskID {
				t.Subtasks = append(t.Subtasks[:i], t.Subtasks[i+1:]...)
				return true
			}
		}
		return false
	})
}

// mutateTask applies fn to a private copy of a task in the active project
// and stores it back in place.
func (s *Store) mutateTask(ctx context.Context, op, taskID string, fn func(t *models.Task) bool) bool {
	return s.updateColumns(ctx, op, func(cols []models.Column) ([]models.Column, bool) {
		_, ci, ok := findTask(cols, taskID)
		if !ok {
			return cols, false
		}
		ti := cols[ci].IndexOf(taskID)
		t := cols[ci].Tasks[ti].Clone()
		if !fn(&t) {
			return cols, false
		}
		cols[ci].Tasks[ti] = t
		return cols, true
	})
}
