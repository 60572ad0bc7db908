// Package board owns the canonical projects, columns and tasks of the board
// and every mutation on them.
package board

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"time"

	"taskboard/internal/metrics"
	"taskboard/internal/models"
	"taskboard/internal/storage"
)

// Notifier records notifications produced by store mutations.
type Notifier interface {
	Add(ctx context.Context, recipientID, actorID, resourceID string, resourceType models.ResourceType, action models.Action, message string)
}

// Celebrator receives fire-and-forget celebration triggers.
type Celebrator interface {
	Celebrate()
	Mini()
}

// DefaultColumnTitle is the single column of a newly created project.
const DefaultColumnTitle = "Section 1"

// DoneColumnTitle marks the column whose drops trigger a celebration.
const DoneColumnTitle = "Done"

// Store holds the projects and the active project selection. Every
// mutation replaces the affected project with a fresh copy, so snapshots
// handed out earlier are never modified.
type Store struct {
	mu       sync.RWMutex
	projects []models.Project
	activeID string

	kv         storage.KV
	notifier   Notifier
	celebrator Celebrator
	logger     *slog.Logger
	now        func() time.Time
	newID      func(prefix string) string
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the store logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithClock replaces the store time source.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithIDs replaces the identifier generator.
func WithIDs(newID func(prefix string) string) Option {
	return func(s *Store) { s.newID = newID }
}

// New constructs an empty store. kv, notifier and celebrator may be nil.
func New(kv storage.KV, notifier Notifier, celebrator Celebrator, opts ...Option) *Store {
	s := &Store{
		kv:         kv,
		notifier:   notifier,
		celebrator: celebrator,
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
		now:        time.Now,
		newID:      models.NewID,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load restores persisted projects. When nothing has been saved yet it
// migrates a legacy column list or seeds a starter project. The first
// project becomes active.
func (s *Store) Load(ctx context.Context, actor models.UserRef) {
	var projects []models.Project
	found := false
	if s.kv != nil {
		var err error
		found, err = storage.LoadJSON(ctx, s.kv, storage.KeyProjects, &projects)
		if err != nil {
			s.logger.Error("failed to load projects", slog.String("error", err.Error()))
			found = false
		}
		if !found {
			var legacy []models.Column
			ok, err := storage.LoadJSON(ctx, s.kv, storage.KeyLegacyColumns, &legacy)
			if err != nil {
				s.logger.Error("failed to migrate legacy columns", slog.String("error", err.Error()))
			}
			if ok {
				projects = []models.Project{{
					ID:          "proj-default",
					Name:        "Marketing Launch",
					Description: "Migrated from previous version",
					Members:     []string{},
					Columns:     legacy,
					CreatedAt:   s.now(),
					CreatedBy:   "system",
				}}
				found = true
				s.logger.Info("migrated legacy columns", slog.Int("columns", len(legacy)))
			}
		}
	}
	if !found {
		projects = []models.Project{s.starterProject(actor)}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.projects = projects
	s.activeID = ""
	if len(projects) > 0 {
		s.activeID = projects[0].ID
	}
	if !found {
		s.persistLocked(ctx)
	}
}

func (s *Store) starterProject(actor models.UserRef) models.Project {
	createdBy := actor.ID
	if createdBy == "" {
		createdBy = "anon"
	}
	cols := []models.Column{}
	for _, title := range []string{"To Do", "In Progress", "Review", "Done"} {
		cols = append(cols, models.Column{ID: s.newID(models.PrefixColumn), Title: title, Tasks: []models.Task{}})
	}
	return models.Project{
		ID:          s.newID(models.PrefixProject),
		Name:        "My First Project",
		Description: "Welcome to your new project board",
		Members:     []string{},
		Columns:     cols,
		CreatedAt:   s.now(),
		CreatedBy:   createdBy,
	}
}

// Projects returns a copy of every project.
func (s *Store) Projects() []models.Project {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Project, len(s.projects))
	for i, p := range s.projects {
		out[i] = cloneProject(p)
	}
	return out
}

// ActiveProjectID returns the id of the active project, or "" when none is active.
func (s *Store) ActiveProjectID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.activeID
}

// ActiveProject returns a copy of the active project.
func (s *Store) ActiveProject() (models.Project, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	idx := s.activeIndexLocked()
	if idx < 0 {
		return models.Project{}, false
	}
	return cloneProject(s.projects[idx]), true
}

// Columns returns a copy of the active project's columns.
func (s *Store) Columns() []models.Column {
	s.mu.RLock()
	defer s.mu.RUnlock()
	idx := s.activeIndexLocked()
	if idx < 0 {
		return []models.Column{}
	}
	return models.CloneColumns(s.projects[idx].Columns)
}

// Task looks a task up in the active project.
func (s *Store) Task(taskID string) (models.Task, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	idx := s.activeIndexLocked()
	if idx < 0 {
		return models.Task{}, false
	}
	if t, _, ok := findTask(s.projects[idx].Columns, taskID); ok {
		return t.Clone(), true
	}
	return models.Task{}, false
}

// SetActiveProject switches the active project. Unknown ids are ignored.
func (s *Store) SetActiveProject(ctx context.Context, id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.projects {
		if p.ID == id {
			s.activeID = id
			return true
		}
	}
	return false
}

func (s *Store) activeIndexLocked() int {
	if s.activeID == "" {
		return -1
	}
	for i := range s.projects {
		if s.projects[i].ID == s.activeID {
			return i
		}
	}
	return -1
}

// updateColumns applies fn to a copy of the active project's columns and
// commits the result when fn reports a change. It reports whether a commit
// happened.
func (s *Store) updateColumns(ctx context.Context, op string, fn func(cols []models.Column) ([]models.Column, bool)) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.activeIndexLocked()
	if idx < 0 {
		s.logger.Debug("mutation skipped: no active project", slog.String("op", op))
		return false
	}
	next, changed := fn(models.CloneColumns(s.projects[idx].Columns))
	if !changed {
		return false
	}

	projects := append([]models.Project{}, s.projects...)
	p := projects[idx]
	p.Columns = next
	projects[idx] = p
	s.projects = projects

	metrics.StoreMutations.WithLabelValues(op).Inc()
	s.persistLocked(ctx)
	return true
}

// persistLocked writes the project list. A failed write leaves the
// in-memory state advanced; it is logged and counted, never returned.
func (s *Store) persistLocked(ctx context.Context) {
	if s.kv == nil {
		return
	}
	if err := storage.SaveJSON(ctx, s.kv, storage.KeyProjects, s.projects); err != nil {
		metrics.PersistFailures.WithLabelValues(storage.KeyProjects).Inc()
		s.logger.Warn("failed to persist projects", slog.String("error", err.Error()))
	}
}

func (s *Store) notify(ctx context.Context, recipientID string, actor models.UserRef, resourceID string, action models.Action, message string) {
	if s.notifier == nil {
		return
	}
	actorID := actor.ID
	if actorID == "" {
		actorID = "system"
	}
	s.notifier.Add(ctx, recipientID, actorID, resourceID, models.ResourceTask, action, message)
}

func (s *Store) celebrate() {
	if s.celebrator != nil {
		s.celebrator.Celebrate()
	}
}

func (s *Store) celebrateMini() {
	if s.celebrator != nil {
		s.celebrator.Mini()
	}
}

func cloneProject(p models.Project) models.Project {
	out := p
	out.Members = append([]string{}, p.Members...)
	out.Columns = models.CloneColumns(p.Columns)
	return out
}

// findTask locates taskID in cols and returns it with its column index.
func findTask(cols []models.Column, taskID string) (models.Task, int, bool) {
	for ci := range cols {
		if ti := cols[ci].IndexOf(taskID); ti >= 0 {
			return cols[ci].Tasks[ti], ci, true
		}
	}
	return models.Task{}, -1, false
}

func columnIndex(cols []models.Column, columnID string) int {
	for i := range cols {
		if cols[i].ID == columnID {
			return i
		}
	}
	return -1
}
