package board

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"testing"
	"time"

	"taskboard/internal/dnd"
	"taskboard/internal/models"
	"taskboard/internal/storage"
	"taskboard/internal/storage/memory"
)

type sentNotification struct {
	recipient string
	actor     string
	resource  string
	action    models.Action
	message   string
}

type recordingNotifier struct {
	sent []sentNotification
}

func (r *recordingNotifier) Add(_ context.Context, recipientID, actorID, resourceID string, _ models.ResourceType, action models.Action, message string) {
	r.sent = append(r.sent, sentNotification{recipientID, actorID, resourceID, action, message})
}

func (r *recordingNotifier) count(action models.Action, recipient string) int {
	n := 0
	for _, s := range r.sent {
		if s.action == action && s.recipient == recipient {
			n++
		}
	}
	return n
}

type countingCelebrator struct {
	full, mini int
}

func (c *countingCelebrator) Celebrate() { c.full++ }
func (c *countingCelebrator) Mini()      { c.mini++ }

type failingKV struct{ *memory.Store }

func (failingKV) Set(context.Context, string, []byte) error { return errors.New("quota exceeded") }

var (
	alice = models.UserRef{ID: "u-alice", Name: "Alice"}
	bob   = models.UserRef{ID: "u-bob", Name: "Bob"}
	carol = models.UserRef{ID: "u-carol", Name: "Carol"}
)

type fixture struct {
	store    *Store
	kv       *memory.Store
	notifier *recordingNotifier
	party    *countingCelebrator
	now      time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		kv:       memory.New(),
		notifier: &recordingNotifier{},
		party:    &countingCelebrator{},
		now:      time.Date(2026, 3, 9, 15, 4, 5, 0, time.UTC),
	}
	seq := 0
	f.store = New(f.kv, f.notifier, f.party,
		WithClock(func() time.Time { return f.now }),
		WithIDs(func(prefix string) string {
			seq++
			return fmt.Sprintf("%s%d", prefix, seq)
		}),
	)
	f.store.Load(context.Background(), alice)
	return f
}

func (f *fixture) column(t *testing.T, title string) models.Column {
	t.Helper()
	for _, c := range f.store.Columns() {
		if c.Title == title {
			return c
		}
	}
	t.Fatalf("column %q not found", title)
	return models.Column{}
}

func (f *fixture) mustCheck(t *testing.T) {
	t.Helper()
	if err := f.store.Check(); err != nil {
		t.Fatalf("invariant violated: %v", err)
	}
}

func taskIDs(col models.Column) []string {
	out := []string{}
	for _, t := range col.Tasks {
		out = append(out, t.ID)
	}
	return out
}

func TestLoadSeedsStarterProject(t *testing.T) {
	f := newFixture(t)
	p, ok := f.store.ActiveProject()
	if !ok {
		t.Fatalf("expected an active project")
	}
	if p.Name != "My First Project" || p.CreatedBy != alice.ID {
		t.Fatalf("unexpected starter project: %+v", p)
	}
	var titles []string
	for _, c := range p.Columns {
		titles = append(titles, c.Title)
	}
	if !reflect.DeepEqual(titles, []string{"To Do", "In Progress", "Review", "Done"}) {
		t.Fatalf("titles = %v", titles)
	}

	// Seeded state is persisted and reloads unchanged.
	again := New(f.kv, nil, nil)
	again.Load(context.Background(), bob)
	if again.ActiveProjectID() != p.ID {
		t.Fatalf("reloaded active = %s, want %s", again.ActiveProjectID(), p.ID)
	}
}

func TestLoadMigratesLegacyColumns(t *testing.T) {
	ctx := context.Background()
	kv := memory.New()
	legacy := []models.Column{{ID: "col-1", Title: "Old", Tasks: []models.Task{{ID: "t-1", Title: "kept", ColumnID: "col-1"}}}}
	if err := storage.SaveJSON(ctx, kv, storage.KeyLegacyColumns, legacy); err != nil {
		t.Fatalf("SaveJSON: %v", err)
	}
	s := New(kv, nil, nil)
	s.Load(ctx, alice)

	if s.ActiveProjectID() != "proj-default" {
		t.Fatalf("active = %q", s.ActiveProjectID())
	}
	if _, ok := s.Task("t-1"); !ok {
		t.Fatalf("legacy task lost")
	}
}

func TestTaskLifecycle(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	todo := f.column(t, "To Do")

	first, ok := f.store.AddTask(ctx, alice, "Warm up", "", models.PriorityLow, todo.ID, models.TaskOverrides{})
	if !ok {
		t.Fatalf("AddTask failed")
	}
	task, ok := f.store.AddTask(ctx, alice, "Ship it", "", models.PriorityHigh, todo.ID, models.TaskOverrides{Assigner: &bob})
	if !ok {
		t.Fatalf("AddTask failed")
	}
	f.mustCheck(t)

	col := f.column(t, "To Do")
	if got := taskIDs(col); !reflect.DeepEqual(got, []string{first.ID, task.ID}) {
		t.Fatalf("new task not at tail: %v", got)
	}
	stored := col.Tasks[1]
	if stored.Status != models.StatusTodo || stored.Assignee == nil || stored.Assignee.ID != alice.ID {
		t.Fatalf("unexpected defaults: %+v", stored)
	}
	if !reflect.DeepEqual(stored.Projects, []string{f.store.ActiveProjectID()}) {
		t.Fatalf("projects = %v", stored.Projects)
	}
	if len(f.notifier.sent) != 0 {
		t.Fatalf("self-assigned task must not notify: %+v", f.notifier.sent)
	}

	stored.Status = models.StatusDone
	if !f.store.UpdateTask(ctx, alice, stored) {
		t.Fatalf("UpdateTask failed")
	}
	got, _ := f.store.Task(task.ID)
	if got.Status != models.StatusDone {
		t.Fatalf("status = %s", got.Status)
	}
	if f.party.full != 1 {
		t.Fatalf("celebrations = %d", f.party.full)
	}
	if n := f.notifier.count(models.ActionCompleted, bob.ID); n != 1 {
		t.Fatalf("completed notifications to assigner = %d", n)
	}
	if got := taskIDs(f.column(t, "To Do")); !reflect.DeepEqual(got, []string{first.ID, task.ID}) {
		t.Fatalf("update moved the task: %v", got)
	}

	// Already done: no second celebration or notification.
	f.store.UpdateTask(ctx, alice, got)
	if f.party.full != 1 || f.notifier.count(models.ActionCompleted, bob.ID) != 1 {
		t.Fatalf("repeated done update produced side effects")
	}
	f.mustCheck(t)
}

func TestAddTaskOverridesAndAssignment(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	todo := f.column(t, "To Do")

	review := models.StatusReview
	task, ok := f.store.AddTask(ctx, alice, "Delegate", "", models.PriorityMedium, todo.ID, models.TaskOverrides{
		Status:   &review,
		Assignee: &bob,
		Tags:     []string{"ops"},
	})
	if !ok {
		t.Fatalf("AddTask failed")
	}
	if task.Status != models.StatusReview || task.Assignee.ID != bob.ID || task.Assigner.ID != alice.ID {
		t.Fatalf("overrides not applied after defaults: %+v", task)
	}
	if n := f.notifier.count(models.ActionAssigned, bob.ID); n != 1 {
		t.Fatalf("assigned notifications = %d", n)
	}
	if f.notifier.sent[0].actor != alice.ID || f.notifier.sent[0].resource != task.ID {
		t.Fatalf("notification = %+v", f.notifier.sent[0])
	}

	if _, ok := f.store.AddTask(ctx, alice, "Nowhere", "", models.PriorityLow, "col-missing", models.TaskOverrides{}); ok {
		t.Fatalf("AddTask into a missing column should be a no-op")
	}
	if len(f.notifier.sent) != 1 {
		t.Fatalf("no-op add must not notify")
	}
}

func TestUpdateTaskReassignAndStayInPlace(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	todo := f.column(t, "To Do")
	doing := f.column(t, "In Progress")
	task, _ := f.store.AddTask(ctx, alice, "Move me?", "", models.PriorityLow, todo.ID, models.TaskOverrides{})

	task.Assignee = &carol
	task.ColumnID = doing.ID
	f.store.UpdateTask(ctx, alice, task)

	if n := f.notifier.count(models.ActionAssigned, carol.ID); n != 1 {
		t.Fatalf("assigned notifications = %d", n)
	}
	if got := taskIDs(f.column(t, "To Do")); !reflect.DeepEqual(got, []string{task.ID}) {
		t.Fatalf("update must not move tasks: %v", got)
	}
	f.mustCheck(t)

	// Reassigning to the actor is silent.
	task.Assignee = &alice
	f.store.UpdateTask(ctx, alice, task)
	if len(f.notifier.sent) != 1 {
		t.Fatalf("self-assignment notified: %+v", f.notifier.sent)
	}
}

func TestUpdateUnknownDoneTaskCelebrates(t *testing.T) {
	f := newFixture(t)
	if f.store.UpdateTask(context.Background(), alice, models.Task{ID: "ghost", Status: models.StatusDone}) {
		t.Fatalf("unknown task should not be stored")
	}
	if f.party.full != 1 {
		t.Fatalf("celebrations = %d", f.party.full)
	}
}

func TestMutationsWithoutActiveProject(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	todo := f.column(t, "To Do")
	p, _ := f.store.ActiveProject()

	if !f.store.DeleteProject(ctx, p.ID) {
		t.Fatalf("DeleteProject failed")
	}
	if f.store.ActiveProjectID() != "" {
		t.Fatalf("active project should be cleared")
	}
	if _, ok := f.store.AddTask(ctx, alice, "x", "", models.PriorityLow, todo.ID, models.TaskOverrides{}); ok {
		t.Fatalf("AddTask should no-op")
	}
	if _, ok := f.store.AddColumn(ctx, "x"); ok {
		t.Fatalf("AddColumn should no-op")
	}
	if f.store.ArchiveCompletedTasks(ctx) != 0 {
		t.Fatalf("archive should no-op")
	}
	if f.store.UpdateTask(ctx, alice, models.Task{ID: "t", Status: models.StatusDone}) {
		t.Fatalf("UpdateTask should no-op")
	}
	if f.party.full != 0 {
		t.Fatalf("no project, no celebration")
	}
	if len(f.store.Columns()) != 0 {
		t.Fatalf("Columns should be empty")
	}
}

func TestAddProjectBecomesActive(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	p := f.store.AddProject(ctx, bob, "Launch", "go live", []string{bob.ID, carol.ID})

	if f.store.ActiveProjectID() != p.ID {
		t.Fatalf("new project not active")
	}
	cols := f.store.Columns()
	if len(cols) != 1 || cols[0].Title != DefaultColumnTitle || len(cols[0].Tasks) != 0 {
		t.Fatalf("columns = %+v", cols)
	}
	if len(f.store.Projects()) != 2 {
		t.Fatalf("projects = %d", len(f.store.Projects()))
	}
	if !f.store.SetActiveProject(ctx, f.store.Projects()[0].ID) {
		t.Fatalf("SetActiveProject failed")
	}
	if f.store.SetActiveProject(ctx, "nope") {
		t.Fatalf("unknown project accepted")
	}
}

func TestColumnMutations(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	col, ok := f.store.AddColumn(ctx, "Backlog")
	if !ok {
		t.Fatalf("AddColumn failed")
	}
	cols := f.store.Columns()
	if cols[len(cols)-1].ID != col.ID {
		t.Fatalf("column not appended")
	}

	if f.store.UpdateColumnTitle(ctx, col.ID, "   ") {
		t.Fatalf("blank title accepted")
	}
	if f.column(t, "Backlog").ID != col.ID {
		t.Fatalf("blank edit should revert")
	}
	if !f.store.UpdateColumnTitle(ctx, col.ID, "  Icebox ") {
		t.Fatalf("rename failed")
	}
	f.column(t, "Icebox")

	f.store.AddTask(ctx, alice, "frozen", "", models.PriorityLow, col.ID, models.TaskOverrides{})
	if !f.store.DeleteColumn(ctx, col.ID) {
		t.Fatalf("DeleteColumn failed")
	}
	for _, c := range f.store.Columns() {
		if c.ID == col.ID {
			t.Fatalf("column still present")
		}
		if len(c.Tasks) != 0 {
			t.Fatalf("tasks should be discarded with their column")
		}
	}
	f.mustCheck(t)
}

func TestArchiveCompletedTasks(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	todo := f.column(t, "To Do")
	done := models.StatusDone

	a, _ := f.store.AddTask(ctx, alice, "a", "", models.PriorityLow, todo.ID, models.TaskOverrides{Status: &done})
	b, _ := f.store.AddTask(ctx, alice, "b", "", models.PriorityLow, todo.ID, models.TaskOverrides{})
	c, _ := f.store.AddTask(ctx, alice, "c", "", models.PriorityLow, f.column(t, "Review").ID, models.TaskOverrides{Status: &done})

	if n := f.store.ArchiveCompletedTasks(ctx); n != 2 {
		t.Fatalf("moved = %d", n)
	}
	f.mustCheck(t)

	archive := f.column(t, "Completed 3/9/2026")
	if got := taskIDs(archive); !reflect.DeepEqual(got, []string{a.ID, c.ID}) {
		t.Fatalf("archive = %v", got)
	}
	if got := taskIDs(f.column(t, "To Do")); !reflect.DeepEqual(got, []string{b.ID}) {
		t.Fatalf("To Do = %v", got)
	}

	before := f.store.Projects()
	if n := f.store.ArchiveCompletedTasks(ctx); n != 0 {
		t.Fatalf("second archive moved %d", n)
	}
	if !reflect.DeepEqual(before, f.store.Projects()) {
		t.Fatalf("second archive changed state")
	}

	// Same day: appended to the existing column.
	d, _ := f.store.AddTask(ctx, alice, "d", "", models.PriorityLow, todo.ID, models.TaskOverrides{Status: &done})
	f.store.ArchiveCompletedTasks(ctx)
	if got := taskIDs(f.column(t, "Completed 3/9/2026")); !reflect.DeepEqual(got, []string{a.ID, c.ID, d.ID}) {
		t.Fatalf("archive = %v", got)
	}
	count := 0
	for _, col := range f.store.Columns() {
		if isArchiveColumn(col) {
			count++
		}
	}
	if count != 1 {
		t.Fatalf("archive columns = %d", count)
	}
}

func TestArchiveSkipsCompletedColumns(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	old, _ := f.store.AddColumn(ctx, "Completed last week")
	done := models.StatusDone
	f.store.AddTask(ctx, alice, "old", "", models.PriorityLow, old.ID, models.TaskOverrides{Status: &done})

	if n := f.store.ArchiveCompletedTasks(ctx); n != 0 {
		t.Fatalf("moved = %d", n)
	}
	for _, col := range f.store.Columns() {
		if col.Title == ArchiveTitle(f.now) {
			t.Fatalf("archive column created with nothing to move")
		}
	}
}

func TestApplyMove(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	todo := f.column(t, "To Do")
	doneCol := f.column(t, "Done")

	t1, _ := f.store.AddTask(ctx, alice, "t1", "", models.PriorityLow, todo.ID, models.TaskOverrides{})
	t2, _ := f.store.AddTask(ctx, alice, "t2", "", models.PriorityLow, todo.ID, models.TaskOverrides{})

	board := dnd.NewController()
	board.Toggle(t2.ID)
	board.Toggle(t1.ID)
	board.Start(f.store.Columns(), t1.ID)
	plan, ok := board.End(f.store.Columns(), dnd.Target{ID: doneCol.ID})
	if !ok {
		t.Fatalf("expected plan")
	}
	if !f.store.ApplyMove(ctx, plan) {
		t.Fatalf("ApplyMove failed")
	}
	f.mustCheck(t)

	if got := taskIDs(f.column(t, "Done")); !reflect.DeepEqual(got, []string{t1.ID, t2.ID}) {
		t.Fatalf("Done = %v", got)
	}
	if f.party.full != 1 {
		t.Fatalf("one celebration per drop, got %d", f.party.full)
	}
	moved, _ := f.store.Task(t1.ID)
	if moved.ColumnID != doneCol.ID || moved.Status != models.StatusTodo {
		t.Fatalf("drop must rewrite column but not status: %+v", moved)
	}

	if f.store.ApplyMove(ctx, dnd.Plan{TaskIDs: []string{"ghost"}, ColumnID: todo.ID}) {
		t.Fatalf("unknown task move should no-op")
	}
}

func TestDropComputesAndCommitsTogether(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	todo := f.column(t, "To Do")
	review := f.column(t, "Review")
	a, _ := f.store.AddTask(ctx, alice, "a", "", models.PriorityLow, todo.ID, models.TaskOverrides{})
	r1, _ := f.store.AddTask(ctx, alice, "r1", "", models.PriorityLow, review.ID, models.TaskOverrides{})

	view := dnd.NewController()
	view.Start(f.store.Columns(), a.ID)
	// A task lands above the hovered one after the drag started.
	r0, _ := f.store.AddTask(ctx, alice, "r0", "", models.PriorityLow, review.ID, models.TaskOverrides{})
	f.store.ApplyMove(ctx, dnd.Plan{TaskIDs: []string{r0.ID}, ColumnID: review.ID, Index: 0})

	plan, ok := f.store.Drop(ctx, view, dnd.Target{ID: r1.ID, Rect: dnd.Rect{Top: 0, Height: 20}, PointerTop: 5})
	if !ok {
		t.Fatalf("Drop = %+v, false", plan)
	}
	if got := taskIDs(f.column(t, "Review")); !reflect.DeepEqual(got, []string{r0.ID, a.ID, r1.ID}) {
		t.Fatalf("Review = %v", got)
	}
	if view.State() != dnd.Idle {
		t.Fatalf("drag should end, state = %v", view.State())
	}
	f.mustCheck(t)

	view.Start(f.store.Columns(), r0.ID)
	if _, ok := f.store.Drop(ctx, view, dnd.Target{ID: r1.ID}); ok {
		t.Fatalf("same column drop should not commit")
	}
}

func TestDropWithoutActiveProjectEndsDrag(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	todo := f.column(t, "To Do")
	doneCol := f.column(t, "Done")
	a, _ := f.store.AddTask(ctx, alice, "a", "", models.PriorityLow, todo.ID, models.TaskOverrides{})

	view := dnd.NewController()
	view.Start(f.store.Columns(), a.ID)
	p, _ := f.store.ActiveProject()
	f.store.DeleteProject(ctx, p.ID)

	if _, ok := f.store.Drop(ctx, view, dnd.Target{ID: doneCol.ID}); ok {
		t.Fatalf("Drop without a project should not commit")
	}
	if view.State() != dnd.Idle {
		t.Fatalf("state = %v", view.State())
	}
}

func TestBoardAndListViewsProduceSameState(t *testing.T) {
	ctx := context.Background()
	run := func(view *dnd.Controller) []models.Column {
		f := newFixture(t)
		todo := f.column(t, "To Do")
		review := f.column(t, "Review")
		a, _ := f.store.AddTask(ctx, alice, "a", "", models.PriorityLow, todo.ID, models.TaskOverrides{})
		b, _ := f.store.AddTask(ctx, alice, "b", "", models.PriorityLow, todo.ID, models.TaskOverrides{})
		r, _ := f.store.AddTask(ctx, alice, "r", "", models.PriorityLow, review.ID, models.TaskOverrides{})

		view.Toggle(b.ID)
		view.Toggle(a.ID)
		view.Start(f.store.Columns(), b.ID)
		view.Over(f.store.Columns(), dnd.Target{ID: r.ID})
		plan, ok := view.End(f.store.Columns(), dnd.Target{ID: r.ID, Rect: dnd.Rect{Top: 0, Height: 20}, PointerTop: 5})
		if !ok {
			t.Fatalf("expected plan")
		}
		f.store.ApplyMove(ctx, plan)
		f.mustCheck(t)
		return f.store.Columns()
	}

	boardCols := run(dnd.NewController())
	listCols := run(dnd.NewController())
	if !reflect.DeepEqual(boardCols, listCols) {
		t.Fatalf("views diverged")
	}
}

func TestCommentsAndSubtasks(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	todo := f.column(t, "To Do")
	task, _ := f.store.AddTask(ctx, alice, "Discuss", "", models.PriorityLow, todo.ID, models.TaskOverrides{
		Assignee:      &bob,
		Collaborators: []models.UserRef{bob, carol, alice},
	})
	f.notifier.sent = nil

	if _, ok := f.store.AddComment(ctx, alice, task.ID, "  "); ok {
		t.Fatalf("blank comment accepted")
	}
	c, ok := f.store.AddComment(ctx, alice, task.ID, "hello")
	if !ok || c.Author.ID != alice.ID {
		t.Fatalf("AddComment = %+v, %v", c, ok)
	}
	if f.notifier.count(models.ActionCommented, bob.ID) != 1 || f.notifier.count(models.ActionCommented, carol.ID) != 1 {
		t.Fatalf("comment notifications = %+v", f.notifier.sent)
	}
	if len(f.notifier.sent) != 2 {
		t.Fatalf("actor must not notify themselves: %+v", f.notifier.sent)
	}

	st, ok := f.store.AddSubtask(ctx, task.ID, "write notes")
	if !ok {
		t.Fatalf("AddSubtask failed")
	}
	f.store.ToggleSubtask(ctx, task.ID, st.ID)
	f.store.ToggleSubtask(ctx, task.ID, st.ID)
	if f.party.mini != 1 {
		t.Fatalf("mini celebrations = %d", f.party.mini)
	}
	if !f.store.DeleteSubtask(ctx, task.ID, st.ID) {
		t.Fatalf("DeleteSubtask failed")
	}
	got, _ := f.store.Task(task.ID)
	if len(got.Subtasks) != 0 || len(got.Comments) != 1 {
		t.Fatalf("task = %+v", got)
	}

	if !f.store.DeleteTask(ctx, task.ID) {
		t.Fatalf("DeleteTask failed")
	}
	if _, ok := f.store.Task(task.ID); ok {
		t.Fatalf("task still present")
	}
}

func TestUpdateTaskKeepsComments(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	task, _ := f.store.AddTask(ctx, alice, "Review", "", models.PriorityLow, f.column(t, "To Do").ID, models.TaskOverrides{})
	if _, ok := f.store.AddComment(ctx, bob, task.ID, "looks good"); !ok {
		t.Fatalf("AddComment failed")
	}

	edit := task
	edit.Title = "Review copy"
	edit.Comments = nil
	if !f.store.UpdateTask(ctx, alice, edit) {
		t.Fatalf("UpdateTask returned false")
	}
	got, _ := f.store.Task(task.ID)
	if got.Title != "Review copy" || len(got.Comments) != 1 || got.Comments[0].Content != "looks good" {
		t.Fatalf("task = %+v", got)
	}

	edit.Comments = []models.Comment{{ID: "forged", Content: "injected"}}
	f.store.UpdateTask(ctx, alice, edit)
	got, _ = f.store.Task(task.ID)
	if len(got.Comments) != 1 || got.Comments[0].ID == "forged" {
		t.Fatalf("comments = %+v", got.Comments)
	}
	f.mustCheck(t)
}

func TestSnapshotsAreIsolated(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	todo := f.column(t, "To Do")
	task, _ := f.store.AddTask(ctx, alice, "iso", "", models.PriorityLow, todo.ID, models.TaskOverrides{})
	st, _ := f.store.AddSubtask(ctx, task.ID, "step")

	before := f.store.Columns()
	f.store.ToggleSubtask(ctx, task.ID, st.ID)

	for _, c := range before {
		for _, tk := range c.Tasks {
			if tk.ID == task.ID && tk.Subtasks[0].Completed {
				t.Fatalf("earlier snapshot was mutated")
			}
		}
	}
}

func TestRefreshUserRefs(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	todo := f.column(t, "To Do")
	task, _ := f.store.AddTask(ctx, alice, "refs", "", models.PriorityLow, todo.ID, models.TaskOverrides{Assignee: &bob})

	renamed := models.User{ID: bob.ID, Name: "Robert", Email: "bob@example.com"}
	if !f.store.RefreshUserRefs(ctx, renamed) {
		t.Fatalf("expected a refresh")
	}
	got, _ := f.store.Task(task.ID)
	if got.Assignee.Name != "Robert" {
		t.Fatalf("assignee = %+v", got.Assignee)
	}
	if f.store.RefreshUserRefs(ctx, renamed) {
		t.Fatalf("second refresh should be a no-op")
	}
}

func TestPersistFailureKeepsMemoryState(t *testing.T) {
	ctx := context.Background()
	s := New(failingKV{Store: memory.New()}, nil, nil)
	s.Load(ctx, alice)
	col, ok := s.AddColumn(ctx, "Still here")
	if !ok {
		t.Fatalf("mutation must succeed when persisting fails")
	}
	found := false
	for _, c := range s.Columns() {
		if c.ID == col.ID {
			found = true
		}
	}
	if !found {
		t.Fatalf("in-memory state did not advance")
	}
}

func TestPersistedRoundTrip(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	todo := f.column(t, "To Do")
	task, _ := f.store.AddTask(ctx, alice, "persist", "body", models.PriorityHigh, todo.ID, models.TaskOverrides{Tags: []string{"x"}})

	again := New(f.kv, nil, nil)
	again.Load(ctx, alice)
	got, ok := again.Task(task.ID)
	if !ok || got.Description != "body" || got.Priority != models.PriorityHigh || got.Tags[0] != "x" {
		t.Fatalf("reloaded task = %+v, %v", got, ok)
	}
	if err := again.Check(); err != nil {
		t.Fatalf("reloaded state invalid: %v", err)
	}
}
