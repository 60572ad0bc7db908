package dnd

import "taskboard/internal/models"

// Rect is the vertical geometry of a hovered element.
type Rect struct {
	Top    float64 `json:"top"`
	Height float64 `json:"height"`
}

// Target is what the pointer is over: a column id or a task id, plus the
// geometry needed to decide between inserting above or below a task.
type Target struct {
	ID         string  `json:"id"`
	Rect       Rect    `json:"rect"`
	PointerTop float64 `json:"pointer_top"`
}

// Below reports whether the dragged element's top edge is past the bottom of
// the hovered element.
func (t Target) Below() bool {
	return t.PointerTop > t.Rect.Top+t.Rect.Height
}

// Plan is a committed move: TaskIDs in the order they will be inserted,
// spliced as one block into ColumnID at Index.
type Plan struct {
	TaskIDs  []string `json:"task_ids"`
	ColumnID string   `json:"column_id"`
	Index    int      `json:"index"`
}

// FindColumn returns the index of the column identified by id, or of the
// column containing the task id. It returns -1 when neither matches.
func FindColumn(cols []models.Column, id string) int {
	if id == "" {
		return -1
	}
	for i := range cols {
		if cols[i].ID == id {
			return i
		}
	}
	for i := range cols {
		if cols[i].IndexOf(id) >= 0 {
			return i
		}
	}
	return -1
}

// insertionIndex computes where a drop lands inside col. A drop on the
// column itself, or on a task that is not in it, yields len+1, which Splice
// clamps to an append.
func insertionIndex(col models.Column, target Target) int {
	if target.ID == col.ID {
		return len(col.Tasks) + 1
	}
	idx := col.IndexOf(target.ID)
	if idx < 0 {
		return len(col.Tasks) + 1
	}
	if target.Below() {
		return idx + 1
	}
	return idx
}

// Splice inserts tasks into list at index, clamping index into [0, len(list)].
// list is not modified.
func Splice(list []models.Task, index int, tasks ...models.Task) []models.Task {
	if index < 0 {
		index = 0
	}
	if index > len(list) {
		index = len(list)
	}
	out := make([]models.Task, 0, len(list)+len(tasks))
	out = append(out, list[:index]...)
	out = append(out, tasks...)
	out = append(out, list[index:]...)
	return out
}

// Apply executes plan against cols and returns the new column list with the
// number of tasks moved. The moved tasks keep their cross-column display
// order from cols regardless of the order of plan.TaskIDs, and their ColumnID
// is rewritten. moved is 0 when the destination column does not exist or none
// of the tasks were found; cols is never modified.
func Apply(cols []models.Column, plan Plan) (out []models.Column, moved int) {
	moving := make(map[string]struct{}, len(plan.TaskIDs))
	for _, id := range plan.TaskIDs {
		moving[id] = struct{}{}
	}

	var captured []models.Task
	for _, col := range cols {
		for _, t := range col.Tasks {
			if _, sel := moving[t.ID]; sel {
				captured = append(captured, t)
			}
		}
	}
	if len(captured) == 0 {
		return cols, 0
	}

	out = make([]models.Column, len(cols))
	dest := -1
	for i, col := range cols {
		kept := make([]models.Task, 0, len(col.Tasks))
		for _, t := range col.Tasks {
			if _, sel := moving[t.ID]; !sel {
				kept = append(kept, t)
			}
		}
		out[i] = models.Column{ID: col.ID, Title: col.Title, Tasks: kept}
		if col.ID == plan.ColumnID {
			dest = i
		}
	}
	if dest < 0 {
		return cols, 0
	}

	for i := range captured {
		captured[i].ColumnID = plan.ColumnID
	}
	out[dest].Tasks = Splice(out[dest].Tasks, plan.Index, captured...)
	return out, len(captured)
}

// previewMove moves only the task activeID from column src to dst at index.
func previewMove(cols []models.Column, activeID string, src, dst, index int) []models.Column {
	out := models.CloneColumns(cols)
	pos := out[src].IndexOf(activeID)
	if pos < 0 {
		return out
	}
	task := out[src].Tasks[pos]
	out[src].Tasks = append(out[src].Tasks[:pos], out[src].Tasks[pos+1:]...)
	task.ColumnID = out[dst].ID
	out[dst].Tasks = Splice(out[dst].Tasks, index, task)
	return out
}
