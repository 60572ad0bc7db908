package board

import (
	"context"

	"taskboard/internal/metrics"
	"taskboard/internal/models"
)

// RefreshUserRefs rewrites the snapshot of user in every task reference of
// every project. References are otherwise left stale after a user edit;
// callers run this opportunistically. It reports whether anything changed.
func (s *Store) RefreshUserRefs(ctx context.Context, user models.User) bool {
	ref := user.Ref()

	s.mu.Lock()
	defer s.mu.Unlock()

	changed := false
	projects := make([]models.Project, len(s.projects))
	for pi, p := range s.projects {
		np := p
		np.Columns = models.CloneColumns(p.Columns)
		for ci := range np.Columns {
			for ti, t := range np.Columns[ci].Tasks {
				nt, ok := refreshTask(t, ref)
				if ok {
					np.Columns[ci].Tasks[ti] = nt
					changed = true
				}
			}
		}
		projects[pi] = np
	}
	if !changed {
		return false
	}
	s.projects = projects
	metrics.StoreMutations.WithLabelValues("refresh_user_refs").Inc()
	s.persistLocked(ctx)
	return true
}

func refreshTask(t models.Task, ref models.UserRef) (models.Task, bool) {
	stale := func(r *models.UserRef) bool {
		return r != nil && r.ID == ref.ID && *r != ref
	}
	touched := stale(t.Assignee) || stale(t.Assigner)
	for i := range t.Collaborators {
		touched = touched || stale(&t.Collaborators[i])
	}
	for i := range t.Comments {
		touched = touched || stale(&t.Comments[i].Author)
	}
	if !touched {
		return t, false
	}

	nt := t.Clone()
	if stale(nt.Assignee) {
		*nt.Assignee = ref
	}
	if stale(nt.Assigner) {
		*nt.Assigner = ref
	}
	for i := range nt.Collaborators {
		if nt.Collaborators[i].ID == ref.ID {
			nt.Collaborators[i] = ref
		}
	}
	for i := range nt.Comments {
		if nt.Comments[i].Author.ID == ref.ID {
			nt.Comments[i].Author = ref
		}
	}
	return nt, true
}
