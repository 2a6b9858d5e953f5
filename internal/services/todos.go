package services

import (
	"log"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"kipped/internal/database"
)

// ReminderScheduler is told whenever a to-do's reminder should start or stop.
type ReminderScheduler interface {
	Schedule(todo database.Todo)
	Cancel(id string)
}

// TodoService keeps to-dos in memory and persists the whole list on every
// change. Archiving is a flag flip; Active and Archived are filters.
type TodoService struct {
	mu        sync.RWMutex
	kv        database.KeyValue
	now       func() time.Time
	todos     []database.Todo
	scheduler ReminderScheduler
}

func NewTodoService(kv database.KeyValue, now func() time.Time) *TodoService {
	ts := &TodoService{kv: kv, now: now}
	ts.load()
	return ts
}

func (ts *TodoService) load() {
	var todos []database.Todo
	if _, err := database.GetJSON(ts.kv, database.TodosKey, &todos); err != nil {
		log.Printf("⚠️ Failed to load todos, starting empty: %v", err)
		todos = nil
	}
	ts.todos = todos
	log.Printf("📋 Loaded %d todos", len(todos))
}

// SetReminderScheduler attaches the scheduler and hands it every reminder not
// yet delivered, including ones that fell due while nothing was attached.
func (ts *TodoService) SetReminderScheduler(s ReminderScheduler) {
	ts.mu.Lock()
	defer ts.mu.Unlock()

	ts.scheduler = s
	for _, t := range ts.todos {
		if ts.pendingReminder(t) {
			ts.scheduler.Schedule(t)
		}
	}
}

func (ts *TodoService) saveLocked() {
	if err := database.SetJSON(ts.kv, database.TodosKey, ts.todos); err != nil {
		log.Printf("⚠️ Failed to save todos: %v", err)
	}
}

func (ts *TodoService) pendingReminder(t database.Todo) bool {
	return t.ReminderDate != nil && !t.ReminderSent && !t.IsCompleted && !t.IsArchived
}

func (ts *TodoService) scheduleLocked(t database.Todo) {
	if ts.scheduler == nil || !ts.pendingReminder(t) {
		return
	}
	if t.ReminderDate.After(ts.now()) {
		ts.scheduler.Schedule(t)
	}
}

// MarkReminderSent records that the reminder for id went out, so it is not
// handed to a scheduler again after a restart.
func (ts *TodoService) MarkReminderSent(id string) {
	ts.mu.Lock()
	defer ts.mu.Unlock()

	idx := ts.indexByID(id)
	if idx < 0 || ts.todos[idx].ReminderSent {
		return
	}
	ts.todos[idx].ReminderSent = true
	ts.saveLocked()
}

func (ts *TodoService) cancelLocked(id string) {
	if ts.scheduler != nil {
		ts.scheduler.Cancel(id)
	}
}

func (ts *TodoService) indexByID(id string) int {
	_, idx, ok := lo.FindIndexOf(ts.todos, func(t database.Todo) bool { return t.ID == id })
	if !ok {
		return -1
	}
	return idx
}

func (ts *TodoService) Add(title string, reminder *time.Time) database.Todo {
	ts.mu.Lock()
	defer ts.mu.Unlock()

	todo := database.Todo{
		ID:           uuid.New().String(),
		Title:        title,
		CreatedAt:    ts.now(),
		ReminderDate: copyTime(reminder),
	}
	ts.todos = append(ts.todos, todo)
	ts.saveLocked()
	ts.scheduleLocked(todo)
	return todo
}

// Edit replaces title and reminder. A nil reminder clears it.
func (ts *TodoService) Edit(id, title string, reminder *time.Time) (database.Todo, bool) {
	ts.mu.Lock()
	defer ts.mu.Unlock()

	idx := ts.indexByID(id)
	if idx < 0 {
		return database.Todo{}, false
	}

	ts.cancelLocked(id)
	if !sameReminder(ts.todos[idx].ReminderDate, reminder) {
		ts.todos[idx].ReminderSent = false
	}
	ts.todos[idx].Title = title
	ts.todos[idx].ReminderDate = copyTime(reminder)
	ts.saveLocked()
	ts.scheduleLocked(ts.todos[idx])
	return ts.todos[idx], true
}

func (ts *TodoService) ToggleCompletion(id string) (database.Todo, bool) {
	return ts.mutate(id, func(t *database.Todo) { t.IsCompleted = !t.IsCompleted })
}

func (ts *TodoService) Archive(id string) (database.Todo, bool) {
	return ts.mutate(id, func(t *database.Todo) { t.IsArchived = true })
}

func (ts *TodoService) Unarchive(id string) (database.Todo, bool) {
	return ts.mutate(id, func(t *database.Todo) { t.IsArchived = false })
}

// mutate applies fn and then brings the reminder schedule in line with the new state.
func (ts *TodoService) mutate(id string, fn func(*database.Todo)) (database.Todo, bool) {
	ts.mu.Lock()
	defer ts.mu.Unlock()

	idx := ts.indexByID(id)
	if idx < 0 {
		return database.Todo{}, false
	}

	fn(&ts.todos[idx])
	ts.saveLocked()

	t := ts.todos[idx]
	if t.IsCompleted || t.IsArchived {
		ts.cancelLocked(id)
	} else {
		ts.scheduleLocked(t)
	}
	return t, true
}

func (ts *TodoService) Delete(id string) bool {
	ts.mu.Lock()
	defer ts.mu.Unlock()

	idx := ts.indexByID(id)
	if idx < 0 {
		return false
	}
	ts.todos = append(ts.todos[:idx], ts.todos[idx+1:]...)
	ts.saveLocked()
	ts.cancelLocked(id)
	return true
}

// Lookup finds a to-do by full ID or by a unique ID prefix.
func (ts *TodoService) Lookup(idOrPrefix string) (database.Todo, bool) {
	if idOrPrefix == "" {
		return database.Todo{}, false
	}

	ts.mu.RLock()
	defer ts.mu.RUnlock()

	matches := lo.Filter(ts.todos, func(t database.Todo, _ int) bool {
		return strings.HasPrefix(t.ID, idOrPrefix)
	})
	if len(matches) != 1 {
		return database.Todo{}, false
	}
	return matches[0], true
}

// Active returns todos that are not archived, newest first.
func (ts *TodoService) Active() []database.Todo {
	return ts.filter(func(t database.Todo) bool { return !t.IsArchived })
}

func (ts *TodoService) Archived() []database.Todo {
	return ts.filter(func(t database.Todo) bool { return t.IsArchived })
}

func (ts *TodoService) All() []database.Todo {
	return ts.filter(func(database.Todo) bool { return true })
}

func (ts *TodoService) filter(keep func(database.Todo) bool) []database.Todo {
	ts.mu.RLock()
	defer ts.mu.RUnlock()

	out := lo.Filter(ts.todos, func(t database.Todo, _ int) bool { return keep(t) })
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func copyTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}

func sameReminder(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equal(*b)
}
