package models

// TaskOverrides lists every task field a caller may set when creating a task.
// Nil fields keep the defaults; non-nil fields replace them.
type TaskOverrides struct {
	Status        *Status
	Assignee      *UserRef
	Assigner      *UserRef
	Collaborators []UserRef
	DueDate       *string
	Tags          []string
	Subtasks      []Subtask
	Dependencies  []string
	TimeEstimate  *TimeEstimate
	Projects      []string
}

// Apply writes the overrides onto t.
func (o TaskOverrides) Apply(t *Task) {
	if o.Status != nil {
		t.Status = *o.Status
	}
	if o.Assignee != nil {
		a := *o.Assignee
		t.Assignee = &a
	}
	if o.Assigner != nil {
		a := *o.Assigner
		t.Assigner = &a
	}
	if o.Collaborators != nil {
		t.Collaborators = append([]UserRef{}, o.Collaborators...)
	}
	if o.DueDate != nil {
		t.DueDate = *o.DueDate
	}
	if o.Tags != nil {
		t.Tags = append([]string{}, o.Tags...)
	}
	if o.Subtasks != nil {
		t.Subtasks = append([]Subtask{}, o.Subtasks...)
	}
	if o.Dependencies != nil {
		t.Dependencies = append([]string{}, o.Dependencies...)
	}
	if o.TimeEstimate != nil {
		te := *o.TimeEstimate
		t.TimeEstimate = &te
	}
	if o.Projects != nil {
		t.Projects = append([]string{}, o.Projects...)
	}
}
