// Package projection derives the displayable column list from canonical board state.
package projection

import (
	"strings"

	"taskboard/internal/models"
)

// Filter selects tasks by completion.
type Filter string

const (
	FilterAll        Filter = "all"
	FilterIncomplete Filter = "incomplete"
	FilterCompleted  Filter = "completed"
)

// DefaultFilter is what a fresh view shows.
const DefaultFilter = FilterIncomplete

// ParseFilter maps a query value to a Filter, falling back to DefaultFilter.
func ParseFilter(raw string) Filter {
	switch Filter(strings.ToLower(strings.TrimSpace(raw))) {
	case FilterAll:
		return FilterAll
	case FilterCompleted:
		return FilterCompleted
	case FilterIncomplete:
		return FilterIncomplete
	default:
		return DefaultFilter
	}
}

// Project applies the search string and then the status filter to cols.
// Columns left without tasks are kept. cols is never modified.
func Project(cols []models.Column, search string, filter Filter) []models.Column {
	query := strings.ToLower(strings.TrimSpace(search))

	out := make([]models.Column, 0, len(cols))
	for _, col := range cols {
		projected := models.Column{ID: col.ID, Title: col.Title, Tasks: []models.Task{}}
		for _, task := range col.Tasks {
			if query != "" && !MatchesSearch(task, query) {
				continue
			}
			if !matchesFilter(task, filter) {
				continue
			}
			projected.Tasks = append(projected.Tasks, task)
		}
		out = append(out, projected)
	}
	return out
}

// MatchesSearch reports whether query (already lower-cased) occurs in the
// task's title, description or one of its tags.
func MatchesSearch(task models.Task, query string) bool {
	if strings.Contains(strings.ToLower(task.Title), query) {
		return true
	}
	if strings.Contains(strings.ToLower(task.Description), query) {
		return true
	}
	for _, tag := range task.Tags {
		if strings.Contains(strings.ToLower(tag), query) {
			return true
		}
	}
	return false
}

func matchesFilter(task models.Task, filter Filter) bool {
	switch filter {
	case FilterIncomplete:
		return !task.IsDone()
	case FilterCompleted:
		return task.IsDone()
	default:
		return true
	}
}
