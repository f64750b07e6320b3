// Package persist bridges the in-memory task list and its storage slot.
//
// The list is read once at startup and rewritten in full after every change.
// Read and write failures are logged and never reach the caller: a bad slot
// loads as an empty list, and a failed write leaves memory untouched.
package persist

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/nibzard/taskboard/internal/storage"
	"github.com/nibzard/taskboard/internal/todo"
)

// Key is the storage key holding the task list.
const Key = "tasks"

// Bridge loads and saves the task list under Key.
type Bridge struct {
	store  storage.Store
	logger *log.Logger
	saver  *saver
}

// Option configures a Bridge.
type Option func(*Bridge)

// WithLogger sets the logger used for load and save failures.
func WithLogger(logger *log.Logger) Option {
	return func(b *Bridge) {
		if logger != nil {
			b.logger = logger
		}
	}
}

// New starts a Bridge over store. Writes use ctx's values but are not
// canceled with it; call Close to stop the writer.
func New(ctx context.Context, store storage.Store, opts ...Option) *Bridge {
	b := &Bridge{
		store:  store,
		logger: log.Default(),
	}
	for _, opt := range opts {
		opt(b)
	}
	b.saver = newSaver(ctx, store, Key, b.logger)
	return b
}

// Read returns the stored list. found is false when the slot has never been
// written; the list is then empty and err is nil.
func (b *Bridge) Read(ctx context.Context) (list todo.List, found bool, err error) {
	raw, found, err := b.store.Get(ctx, Key)
	if err != nil {
		return todo.List{}, false, fmt.Errorf("read %s: %w", Key, err)
	}
	if !found {
		return todo.List{}, false, nil
	}
	list, err = todo.Decode(raw)
	if err != nil {
		return todo.List{}, true, fmt.Errorf("decode %s: %w", Key, err)
	}
	return list, true, nil
}

// Load reads the stored list for startup. ok is true only when the slot
// exists and decodes. Any failure is logged and yields an empty list.
func (b *Bridge) Load(ctx context.Context) (list todo.List, ok bool) {
	list, found, err := b.Read(ctx)
	if err != nil {
		b.logger.Error("load task list", "key", Key, "err", err)
		return todo.List{}, false
	}
	b.logger.Debug("loaded task list", "key", Key, "found", found, "tasks", len(list))
	return list, found
}

// Save encodes list now and queues it for writing. It does not wait for
// the write.
func (b *Bridge) Save(list todo.List) {
	payload, err := todo.Encode(list)
	if err != nil {
		b.logger.Error("encode task list", "key", Key, "tasks", len(list), "err", err)
		return
	}
	b.saver.enqueue(payload, len(list))
}

// Flush waits until every Save issued before the call has been attempted.
func (b *Bridge) Flush(ctx context.Context) error {
	return b.saver.flush(ctx)
}

// Close writes any queued list and stops the writer. It does not close the
// underlying store.
func (b *Bridge) Close() error {
	b.saver.close()
	return nil
}
