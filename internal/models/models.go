package models

import (
	"strings"
	"time"
)

// Role is the access level of a board user.
type Role string

const (
	RoleAdmin  Role = "admin"
	RoleMember Role = "member"
)

// Status is the workflow state of a task. It is independent of the column a task sits in.
type Status string

const (
	StatusTodo       Status = "todo"
	StatusInProgress Status = "in-progress"
	StatusReview     Status = "review"
	StatusDone       Status = "done"
)

// Priority ranks tasks on the board.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// ValidTaskStatuses enumerates the statuses a task may carry.
var ValidTaskStatuses = map[Status]struct{}{
	StatusTodo:       {},
	StatusInProgress: {},
	StatusReview:     {},
	StatusDone:       {},
}

// ValidPriorities enumerates the supported priorities.
var ValidPriorities = map[Priority]struct{}{
	PriorityLow:    {},
	PriorityMedium: {},
	PriorityHigh:   {},
}

// User is an account that can sign in to the board.
type User struct {
	ID                 string `json:"id"`
	Email              string `json:"email"`
	Name               string `json:"name"`
	Role               Role   `json:"role"`
	Title              string `json:"title,omitempty"`
	Credential         string `json:"credential,omitempty"`
	MustChangePassword bool   `json:"must_change_password,omitempty"`
}

// IsAdmin reports whether the user holds the admin role.
func (u User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// Ref returns a snapshot reference to the user.
func (u User) Ref() UserRef {
	return UserRef{ID: u.ID, Name: u.Name, Email: u.Email}
}

// UserRef is a weak reference to a user together with a snapshot of the
// user's display fields taken when the reference was made. Snapshots are not
// kept in sync with later user edits.
type UserRef struct {
	ID    string `json:"id"`
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
}

// DisplayName falls back to a neutral label for anonymous actors.
func (r UserRef) DisplayName() string {
	if strings.TrimSpace(r.Name) != "" {
		return r.Name
	}
	return "Someone"
}

// Comment is an entry in a task's discussion. Comments are append-only.
type Comment struct {
	ID        string    `json:"id"`
	Content   string    `json:"content"`
	Author    UserRef   `json:"author"`
	CreatedAt time.Time `json:"created_at"`
}

// Subtask is a checklist entry owned by a task.
type Subtask struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Completed bool   `json:"completed"`
}

// TimeUnit is the unit of a task's time estimate.
type TimeUnit string

const (
	UnitMinutes TimeUnit = "minutes"
	UnitHours   TimeUnit = "hours"
	UnitDays    TimeUnit = "days"
)

// TimeEstimate is the expected effort of a task.
type TimeEstimate struct {
	Value float64  `json:"value"`
	Unit  TimeUnit `json:"unit"`
}

// Task represents a single card on the board.
type Task struct {
	ID            string        `json:"id"`
	Title         string        `json:"title"`
	Description   string        `json:"description"`
	Status        Status        `json:"status"`
	Priority      Priority      `json:"priority"`
	ColumnID      string        `json:"column_id"`
	Assignee      *UserRef      `json:"assignee,omitempty"`
	Assigner      *UserRef      `json:"assigner,omitempty"`
	Collaborators []UserRef     `json:"collaborators"`
	DueDate       string        `json:"due_date,omitempty"`
	Tags          []string      `json:"tags,omitempty"`
	Subtasks      []Subtask     `json:"subtasks"`
	Comments      []Comment     `json:"comments,omitempty"`
	Dependencies  []string      `json:"dependencies"`
	TimeEstimate  *TimeEstimate `json:"time_estimate,omitempty"`
	Projects      []string      `json:"projects"`
}

// Clone returns a deep copy of the task so callers can mutate it freely.
func (t Task) Clone() Task {
	out := t
	if t.Assignee != nil {
		a := *t.Assignee
		out.Assignee = &a
	}
	if t.Assigner != nil {
		a := *t.Assigner
		out.Assigner = &a
	}
	if t.TimeEstimate != nil {
		te := *t.TimeEstimate
		out.TimeEstimate = &te
	}
	out.Collaborators = append([]UserRef(nil), t.Collaborators...)
	out.Tags = append([]string(nil), t.Tags...)
	out.Subtasks = append([]Subtask(nil), t.Subtasks...)
	out.Comments = append([]Comment(nil), t.Comments...)
	out.Dependencies = append([]string(nil), t.Dependencies...)
	out.Projects = append([]string(nil), t.Projects...)
	return out
}

// IsDone reports whether the task is completed.
func (t Task) IsDone() bool {
	return t.Status == StatusDone
}

// Column is an ordered container of tasks, shown as a board lane or a list section.
type Column struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Tasks []Task `json:"tasks"`
}

// Clone copies the column and its task slice. Tasks themselves are values.
func (c Column) Clone() Column {
	out := c
	out.Tasks = append([]Task{}, c.Tasks...)
	return out
}

// IndexOf returns the position of the task in the column or -1.
func (c Column) IndexOf(taskID string) int {
	for i := range c.Tasks {
		if c.Tasks[i].ID == taskID {
			return i
		}
	}
	return -1
}

// CloneColumns copies a column list so the result can be modified without
// touching the original.
func CloneColumns(cols []Column) []Column {
	out := make([]Column, len(cols))
	for i := range cols {
		out[i] = cols[i].Clone()
	}
	return out
}

// Project groups the columns of one board.
type Project struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Members     []string  `json:"members"`
	Columns     []Column  `json:"columns"`
	CreatedAt   time.Time `json:"created_at"`
	CreatedBy   string    `json:"created_by"`
}

// ResourceType names the kind of entity a notification points at.
type ResourceType string

const (
	ResourceTask    ResourceType = "task"
	ResourceComment ResourceType = "comment"
	ResourceProject ResourceType = "project"
)

// Action is what happened to the resource.
type Action string

const (
	ActionAssigned  Action = "assigned"
	ActionCommented Action = "commented"
	ActionCompleted Action = "completed"
	ActionMentioned Action = "mentioned"
	ActionUpdated   Action = "updated"
)

// Notification is an inbox entry addressed to one user.
type Notification struct {
	ID           string       `json:"id"`
	RecipientID  string       `json:"recipient_id"`
	ActorID      string       `json:"actor_id"`
	ResourceID   string       `json:"resource_id"`
	ResourceType ResourceType `json:"resource_type"`
	Action       Action       `json:"action"`
	Message      string       `json:"message"`
	IsRead       bool         `json:"is_read"`
	CreatedAt    time.Time    `json:"created_at"`
}
