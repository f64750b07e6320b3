package persist

import (
	"context"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/nibzard/taskboard/internal/storage"
)

// snapshot is one encoded list waiting to be written.
type snapshot struct {
	seq     uint64
	payload string
	tasks   int
}

// saver writes snapshots to one storage key from a single goroutine.
//
// At most one snapshot waits at a time; a newer one replaces it. Writes
// never overlap and are issued in sequence order, so once the queue drains
// the slot holds the most recent snapshot.
type saver struct {
	ctx    context.Context
	store  storage.Store
	key    string
	logger *log.Logger

	mu       sync.Mutex
	pending  *snapshot
	seq      uint64        // last sequence handed out
	written  uint64        // last sequence attempted
	progress chan struct{} // closed and replaced after every attempt
	closed   bool

	wake chan struct{}
	done chan struct{}
}

func newSaver(ctx context.Context, store storage.Store, key string, logger *log.Logger) *saver {
	s := &saver{
		ctx:      context.WithoutCancel(ctx),
		store:    store,
		key:      key,
		logger:   logger,
		progress: make(chan struct{}),
		wake:     make(chan struct{}, 1),
		done:     make(chan struct{}),
	}
	go s.run()
	return s
}

// enqueue schedules payload for writing and returns its sequence number.
// It returns 0 once the saver is closed.
func (s *saver) enqueue(payload string, tasks int) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		s.logger.Warn("save dropped after close", "key", s.key, "tasks", tasks)
		return 0
	}

	s.seq++
	if s.pending != nil {
		s.logger.Debug("save superseded", "key", s.key, "seq", s.pending.seq, "by", s.seq)
	}
	s.pending = &snapshot{seq: s.seq, payload: payload, tasks: tasks}

	select {
	case s.wake <- struct{}{}:
	default:
	}
	return s.seq
}

func (s *saver) run() {
	defer close(s.done)
	for range s.wake {
		s.drain()
	}
}

func (s *saver) drain() {
	for {
		s.mu.Lock()
		snap := s.pending
		s.pending = nil
		s.mu.Unlock()

		if snap == nil {
			return
		}

		if err := s.store.Set(s.ctx, s.key, snap.payload); err != nil {
			s.logger.Error("save task list", "key", s.key, "seq", snap.seq, "tasks", snap.tasks, "err", err)
		} else {
			s.logger.Debug("saved task list", "key", s.key, "seq", snap.seq, "tasks", snap.tasks)
		}

		s.mu.Lock()
		s.written = snap.seq
		close(s.progress)
		s.progress = make(chan struct{})
		s.mu.Unlock()
	}
}

// flush waits until every snapshot enqueued before the call was attempted.
func (s *saver) flush(ctx context.Context) error {
	s.mu.Lock()
	target := s.seq
	for s.written < target {
		ch := s.progress
		s.mu.Unlock()
		select {
		case <-ch:
		case <-ctx.Done():
			return ctx.Err()
		}
		s.mu.Lock()
	}
	s.mu.Unlock()
	return nil
}

// close stops accepting snapshots, writes the pending one and waits for
// the writer goroutine to exit.
func (s *saver) close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		<-s.done
		return
	}
	s.closed = true
	close(s.wake)
	s.mu.Unlock()
	<-s.done
}
