// Package board holds the task list and draft input behind the single
// TaskBoard screen.
//
// A Board is not safe for concurrent use. The TUI touches it only from its
// update loop; CLI commands use it from one goroutine.
package board

import (
	"context"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/nibzard/taskboard/internal/todo"
)

// Persister loads the list at startup and saves it after every change.
// Load reports ok only when a stored list was read and decoded. Save must
// not retain or modify the list it is given beyond encoding it.
type Persister interface {
	Load(ctx context.Context) (list todo.List, ok bool)
	Save(list todo.List)
}

// Board is the state container: an ordered task list plus the draft text.
type Board struct {
	tasks  todo.List
	draft  string
	loaded bool

	store  Persister
	newID  func() string
	logger *log.Logger
}

// Option configures a Board.
type Option func(*Board)

// WithIDFunc replaces the id generator. Ids must be unique and non-empty.
func WithIDFunc(fn func() string) Option {
	return func(b *Board) {
		if fn != nil {
			b.newID = fn
		}
	}
}

// WithLogger sets the logger for debug tracing of mutations.
func WithLogger(logger *log.Logger) Option {
	return func(b *Board) {
		if logger != nil {
			b.logger = logger
		}
	}
}

// New returns an empty, not yet loaded board backed by store.
func New(store Persister, opts ...Option) *Board {
	b := &Board{
		tasks:  todo.List{},
		store:  store,
		newID:  uuid.NewString,
		logger: log.Default(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Load reads the persisted list and applies it with Restore.
func (b *Board) Load(ctx context.Context) {
	b.Restore(b.store.Load(ctx))
}

// Restore replaces the list with the startup result. Changes made before
// Restore are kept in memory only and are replaced here.
//
// The list is saved back only when ok. A missing or unreadable slot starts
// the board empty and leaves storage alone until the first real change.
func (b *Board) Restore(list todo.List, ok bool) {
	if list == nil || !ok {
		list = todo.List{}
	}
	b.tasks = list.Clone()
	b.loaded = true
	b.logger.Debug("board restored", "tasks", len(b.tasks), "completed", b.CompletedCount(), "stored", ok)
	if ok {
		b.persist()
	}
}

// Loaded reports whether Restore has run.
func (b *Board) Loaded() bool { return b.loaded }

// AddTask appends a task with the trimmed text and clears the draft.
// Text that is empty after trimming is ignored.
func (b *Board) AddTask(text string) bool {
	text = strings.TrimSpace(text)
	if text == "" {
		return false
	}
	task := todo.Task{ID: b.newID(), Text: text}
	b.tasks = b.tasks.WithAppended(task)
	b.draft = ""
	b.logger.Debug("task added", "id", task.ID)
	b.persist()
	return true
}

// Submit adds the current draft.
func (b *Board) Submit() bool {
	return b.AddTask(b.draft)
}

// ToggleCompleted flips the completed flag of id. It reports false, and
// persists nothing, when id is unknown.
func (b *Board) ToggleCompleted(id string) bool {
	tasks, ok := b.tasks.WithToggled(id)
	if !ok {
		return false
	}
	b.tasks = tasks
	b.logger.Debug("task toggled", "id", id)
	b.persist()
	return true
}

// DeleteTask removes id. It reports false, and persists nothing, when id is
// unknown.
func (b *Board) DeleteTask(id string) bool {
	tasks, ok := b.tasks.WithoutID(id)
	if !ok {
		return false
	}
	b.tasks = tasks
	b.logger.Debug("task deleted", "id", id)
	b.persist()
	return true
}

// SetDraft updates the draft input. Drafts are never persisted.
func (b *Board) SetDraft(text string) { b.draft = text }

// Draft returns the draft input.
func (b *Board) Draft() string { return b.draft }

// Tasks returns a copy of the list.
func (b *Board) Tasks() todo.List { return b.tasks.Clone() }

// Task returns the task at pos.
func (b *Board) Task(pos int) (todo.Task, bool) {
	if pos < 0 || pos >= len(b.tasks) {
		return todo.Task{}, false
	}
	return b.tasks[pos], true
}

// Total returns the number of tasks.
func (b *Board) Total() int { return len(b.tasks) }

// CompletedCount returns the number of completed tasks.
func (b *Board) CompletedCount() int { return b.tasks.CompletedCount() }

// persist hands the current list to the store. Lists are copy-on-write, so
// the slice is never modified after this call. Nothing is saved before the
// first Restore, which keeps an unloaded board from overwriting stored data.
func (b *Board) persist() {
	if !b.loaded {
		return
	}
	b.store.Save(b.tasks)
}
