// Package dnd implements multi-selection and drag-and-drop of tasks between
// columns. A Controller holds only transient gesture state; canonical columns
// are passed in on every event and never modified.
package dnd

import (
	"sort"
	"sync"

	"taskboard/internal/models"
)

// State is the phase of a drag gesture.
type State int

const (
	Idle State = iota
	Dragging
	Previewing
)

func (s State) String() string {
	switch s {
	case Dragging:
		return "dragging"
	case Previewing:
		return "previewing"
	default:
		return "idle"
	}
}

// Controller tracks the selected tasks of one view and the drag in progress.
// Board and list views each own a Controller.
type Controller struct {
	mu       sync.Mutex
	selected map[string]struct{}

	state    State
	activeID string
	sourceID string

	previewColumn string
	previewIndex  int
}

// NewController returns an idle controller with an empty selection.
func NewController() *Controller {
	return &Controller{selected: map[string]struct{}{}}
}

// Toggle flips the selection membership of a task.
func (c *Controller) Toggle(taskID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.selected[taskID]; ok {
		delete(c.selected, taskID)
		return
	}
	c.selected[taskID] = struct{}{}
}

// ClearSelection empties the selection.
func (c *Controller) ClearSelection() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.selected = map[string]struct{}{}
}

// Selection returns the selected task ids sorted for stable output.
func (c *Controller) Selection() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, 0, len(c.selected))
	for id := range c.selected {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// State returns the current gesture phase.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// ActiveID returns the task being dragged, if any.
func (c *Controller) ActiveID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.activeID
}

// Snapshot is a read-only view of the controller for clients.
type Snapshot struct {
	State         string   `json:"state"`
	ActiveID      string   `json:"active_id,omitempty"`
	SourceID      string   `json:"source_id,omitempty"`
	PreviewColumn string   `json:"preview_column,omitempty"`
	PreviewIndex  int      `json:"preview_index,omitempty"`
	Selection     []string `json:"selection"`
}

// Snapshot captures the gesture state and selection.
func (c *Controller) Snapshot() Snapshot {
	sel := c.Selection()
	c.mu.Lock()
	defer c.mu.Unlock()
	return Snapshot{
		State:         c.state.String(),
		ActiveID:      c.activeID,
		SourceID:      c.sourceID,
		PreviewColumn: c.previewColumn,
		PreviewIndex:  c.previewIndex,
		Selection:     sel,
	}
}

// Start begins dragging taskID. Dragging a task outside the selection
// replaces the selection with that task alone. It returns false when the
// task is not on the board.
func (c *Controller) Start(cols []models.Column, taskID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	src := FindColumn(cols, taskID)
	if src < 0 || cols[src].ID == taskID {
		return false
	}
	if _, ok := c.selected[taskID]; !ok {
		c.selected = map[string]struct{}{taskID: {}}
	}
	c.state = Dragging
	c.activeID = taskID
	c.sourceID = cols[src].ID
	c.previewColumn = ""
	c.previewIndex = 0
	return true
}

// Over records the hovered target. Hovering a different column than the
// source enters the preview phase with a provisional index for the dragged
// task; hovering the source column leaves it.
func (c *Controller) Over(cols []models.Column, target Target) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == Idle || target.ID == "" || target.ID == c.activeID {
		return
	}
	src := FindColumn(cols, c.activeID)
	dst := FindColumn(cols, target.ID)
	if src < 0 || dst < 0 {
		return
	}
	if src == dst {
		c.state = Dragging
		c.previewColumn = ""
		c.previewIndex = 0
		return
	}
	c.state = Previewing
	c.previewColumn = cols[dst].ID
	c.previewIndex = insertionIndex(cols[dst], target)
}

// Preview returns cols as they should be rendered during the gesture: while
// previewing, only the dragged task is shown in its provisional position.
func (c *Controller) Preview(cols []models.Column) []models.Column {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != Previewing {
		return models.CloneColumns(cols)
	}
	src := FindColumn(cols, c.activeID)
	dst := FindColumn(cols, c.previewColumn)
	if src < 0 || dst < 0 || src == dst {
		return models.CloneColumns(cols)
	}
	return previewMove(cols, c.activeID, src, dst, c.previewIndex)
}

// End finishes the gesture over target. When the drop lands in another
// column it returns the plan to commit; the selection survives a commit.
// A drop with no target, on the dragged task itself, or back into the
// source column is a no-op that clears the selection.
func (c *Controller) End(cols []models.Column, target Target) (Plan, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	defer c.reset()

	if c.state == Idle {
		return Plan{}, false
	}
	if target.ID == "" || target.ID == c.activeID {
		c.selected = map[string]struct{}{}
		return Plan{}, false
	}

	src := FindColumn(cols, c.activeID)
	dst := FindColumn(cols, target.ID)
	if src < 0 || dst < 0 || src == dst {
		c.selected = map[string]struct{}{}
		return Plan{}, false
	}

	moving := c.selected
	if len(moving) == 0 {
		moving = map[string]struct{}{c.activeID: {}}
	}

	// Ordered by position on the board, not by when they were selected.
	var ids []string
	for _, col := range cols {
		for _, t := range col.Tasks {
			if _, ok := moving[t.ID]; ok {
				ids = append(ids, t.ID)
			}
		}
	}

	remaining := models.Column{ID: cols[dst].ID, Title: cols[dst].Title}
	for _, t := range cols[dst].Tasks {
		if _, ok := moving[t.ID]; !ok {
			remaining.Tasks = append(remaining.Tasks, t)
		}
	}

	return Plan{
		TaskIDs:  ids,
		ColumnID: cols[dst].ID,
		Index:    insertionIndex(remaining, target),
	}, true
}

// Cancel aborts the gesture without committing anything.
func (c *Controller) Cancel() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.reset()
}

func (c *Controller) reset() {
	c.state = Idle
	c.activeID = ""
	c.sourceID = ""
	c.previewColumn = ""
	c.previewIndex = 0
}
