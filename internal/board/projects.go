package board

import (
	"context"
	"log/slog"

	"taskboard/internal/metrics"
	"taskboard/internal/models"
)

// AddProject creates a project with one empty column and makes it active.
// Name validation belongs to the caller.
func (s *Store) AddProject(ctx context.Context, actor models.UserRef, name, description string, memberIDs []string) models.Project {
	createdBy := actor.ID
	if createdBy == "" {
		createdBy = "anon"
	}
	p := models.Project{
		ID:          s.newID(models.PrefixProject),
		Name:        name,
		Description: description,
		Members:     append([]string{}, memberIDs...),
		Columns: []models.Column{
			{ID: s.newID(models.PrefixColumn), Title: DefaultColumnTitle, Tasks: []models.Task{}},
		},
		CreatedAt: s.now(),
		CreatedBy: createdBy,
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.projects = append(append([]models.Project{}, s.projects...), p)
	s.activeID = p.ID
	metrics.StoreMutations.WithLabelValues("add_project").Inc()
	s.persistLocked(ctx)

	s.logger.Info("project created", slog.String("project", p.ID), slog.String("name", name))
	return cloneProject(p)
}

// DeleteProject removes a project with all of its columns and tasks. When
// it was active no project is active afterwards.
func (s *Store) DeleteProject(ctx context.Context, id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := make([]models.Project, 0, len(s.projects))
	for _, p := range s.projects {
		if p.ID != id {
			kept = append(kept, p)
		}
	}
	if len(kept) == len(s.projects) {
		return false
	}
	s.projects = kept
	if s.activeID == id {
		s.activeID = ""
	}
	metrics.StoreMutations.WithLabelValues("delete_project").Inc()
	s.persistLocked(ctx)

	s.logger.Info("project deleted", slog.String("project", id))
	return true
}
