package player

import (
	"context"
	"sync"

	"github.com/tessro/showcase/internal/core"
)

// Observer receives the full snapshot after every change. Observers run on
// whichever goroutine caused the change and must not block.
type Observer func(core.Snapshot)

// Subscription is returned by Subscribe.
type Subscription struct {
	once   sync.Once
	cancel func()
}

// Unsubscribe stops delivery. Calling it more than once is harmless.
func (s *Subscription) Unsubscribe() {
	if s == nil || s.cancel == nil {
		return
	}
	s.once.Do(s.cancel)
}

type subscribers struct {
	mu   sync.RWMutex
	next uint64
	m    map[uint64]Observer
}

func (s *subscribers) add(o Observer) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.m == nil {
		s.m = make(map[uint64]Observer)
	}
	s.next++
	s.m[s.next] = o
	return s.next
}

func (s *subscribers) remove(id uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.m, id)
}

func (s *subscribers) len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.m)
}

// publish calls every observer outside the lock so observers may issue
// further commands.
func (s *subscribers) publish(snap core.Snapshot) {
	s.mu.RLock()
	observers := make([]Observer, 0, len(s.m))
	for _, o := range s.m {
		observers = append(observers, o)
	}
	s.mu.RUnlock()

	for _, o := range observers {
		o(snap)
	}
}

// Watch returns a channel that receives the current snapshot immediately
// and every later one. A slow reader only loses intermediate snapshots,
// never the latest. The channel is closed when ctx is done or the
// coordinator is closed.
func (c *Coordinator) Watch(ctx context.Context) <-chan core.Snapshot {
	w := &watcher{ch: make(chan core.Snapshot, 16)}
	sub := c.Subscribe(w.send)
	w.send(c.Snapshot())

	go func() {
		select {
		case <-ctx.Done():
		case <-c.done:
		}
		sub.Unsubscribe()
		w.close()
	}()

	return w.ch
}

type watcher struct {
	mu     sync.Mutex
	ch     chan core.Snapshot
	last   uint64
	closed bool
}

func (w *watcher) send(snap core.Snapshot) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed || (snap.Seq != 0 && snap.Seq <= w.last) {
		return
	}
	w.last = snap.Seq

	select {
	case w.ch <- snap:
		return
	default:
	}
	// Full: drop the oldest queued snapshot.
	select {
	case <-w.ch:
	default:
	}
	select {
	case w.ch <- snap:
	default:
	}
}

func (w *watcher) close() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.closed {
		w.closed = true
		close(w.ch)
	}
}
