// Package autosave implements the debounced draft writer. It decouples the
// scheduling policy (coalesce rapid edits into one durable write) from the
// draft service, as an explicit state machine:
//
//	Clean --Queue--> Dirty --timer--> Saving --ok--> Clean
//	                   ^                 |
//	                   +-----failure-----+  (dirty retained, retried next cycle)
//
// Queue never blocks the caller; completion is observed through IsSaving,
// LastSaved and the non-fatal OnError callback.
package autosave

import (
	"context"
	"sync"
	"time"

	"prospace/internal/registration/models"
)

// State is the autosaver's position in its save cycle.
type State int

const (
	StateClean State = iota
	StateDirty
	StateSaving
	StateError
)

func (s State) String() string {
	switch s {
	case StateClean:
		return "clean"
	case StateDirty:
		return "dirty"
	case StateSaving:
		return "saving"
	case StateError:
		return "error"
	}
	return "unknown"
}

// Flusher persists one coalesced snapshot. Implemented by the draft service's
// durable write path.
type Flusher func(ctx context.Context, email string, step models.Step, data models.FormData) error

type snapshot struct {
	email string
	step  models.Step
	data  models.FormData
}

// Saver debounces draft writes. One Saver serves all in-flight registrations;
// snapshots are coalesced per email so only the latest state within the
// debounce window reaches the store.
type Saver struct {
	flush        Flusher
	debounce     time.Duration
	flushTimeout time.Duration
	onError      func(email string, err error)

	mu        sync.Mutex
	pending   map[string]snapshot
	timer     *time.Timer
	state     State
	lastSaved time.Time
	closed    bool
	inflight  sync.WaitGroup
}

// Option configures a Saver.
type Option func(*Saver)

// WithOnError installs a non-fatal error callback. Errors never propagate to
// the caller of Queue; the dirty snapshot is retained and retried on the next
// cycle.
func WithOnError(fn func(email string, err error)) Option {
	return func(s *Saver) { s.onError = fn }
}

// WithFlushTimeout bounds a single durable write.
func WithFlushTimeout(d time.Duration) Option {
	return func(s *Saver) { s.flushTimeout = d }
}

func New(debounce time.Duration, flush Flusher, opts ...Option) *Saver {
	s := &Saver{
		flush:        flush,
		debounce:     debounce,
		flushTimeout: 10 * time.Second,
		pending:      make(map[string]snapshot),
		state:        StateClean,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Queue records a snapshot for debounced persistence and returns immediately.
// A newer snapshot for the same email replaces the pending one, so saving
// identical data twice costs one durable write.
func (s *Saver) Queue(email string, step models.Step, data models.FormData) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	s.pending[email] = snapshot{email: email, step: step, data: data}
	if s.state != StateSaving {
		s.state = StateDirty
	}
	s.schedule()
}

// Forget drops any pending snapshot for the email. Called when a draft is
// cleared or finalized so a stale flush cannot resurrect it.
func (s *Saver) Forget(email string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.pending, email)
	if len(s.pending) == 0 && s.state == StateDirty {
		s.state = StateClean
	}
}

// State reports the current save-cycle state.
func (s *Saver) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// IsSaving reports whether a flush is in flight.
func (s *Saver) IsSaving() bool {
	return s.State() == StateSaving
}

// LastSaved returns the time of the last fully successful flush cycle.
// Advisory only; used for UI feedback, never for conflict resolution.
func (s *Saver) LastSaved() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSaved
}

// Flush forces an immediate synchronous flush of all pending snapshots.
// Used on shutdown and in tests; the debounced path is flushCycle.
func (s *Saver) Flush(ctx context.Context) error {
	s.mu.Lock()
	batch := s.takePendingLocked()
	s.mu.Unlock()

	var firstErr error
	for _, snap := range batch {
		if err := s.flush(ctx, snap.email, snap.step, snap.data); err != nil {
			s.requeue(snap, err)
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	s.settle(firstErr == nil)
	return firstErr
}

// Close stops scheduling further flushes and waits for any in-flight cycle.
// Pending snapshots are flushed best-effort; failures are reported through
// OnError and then dropped, mirroring the fire-and-forget unmount semantics.
func (s *Saver) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.mu.Unlock()

	s.inflight.Wait()

	ctx, cancel := context.WithTimeout(context.Background(), s.flushTimeout)
	defer cancel()
	_ = s.Flush(ctx)
}

// schedule arms (or re-arms) the debounce timer. Caller holds s.mu.
func (s *Saver) schedule() {
	if s.timer != nil {
		s.timer.Stop()
	}
	s.timer = time.AfterFunc(s.debounce, s.flushCycle)
}

func (s *Saver) flushCycle() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	batch := s.takePendingLocked()
	if len(batch) == 0 {
		if s.state == StateDirty {
			s.state = StateClean
		}
		s.mu.Unlock()
		return
	}
	s.state = StateSaving
	s.inflight.Add(1)
	s.mu.Unlock()

	defer s.inflight.Done()

	ctx, cancel := context.WithTimeout(context.Background(), s.flushTimeout)
	defer cancel()

	ok := true
	for _, snap := range batch {
		if err := s.flush(ctx, snap.email, snap.step, snap.data); err != nil {
			ok = false
			s.requeue(snap, err)
		}
	}
	s.settle(ok)
}

// takePendingLocked drains the pending map. Caller holds s.mu.
func (s *Saver) takePendingLocked() []snapshot {
	if len(s.pending) == 0 {
		return nil
	}
	batch := make([]snapshot, 0, len(s.pending))
	for _, snap := range s.pending {
		batch = append(batch, snap)
	}
	s.pending = make(map[string]snapshot)
	return batch
}

// requeue restores a failed snapshot unless a newer one arrived while the
// flush was in flight; the newer state wins.
func (s *Saver) requeue(snap snapshot, err error) {
	s.mu.Lock()
	if _, exists := s.pending[snap.email]; !exists && !s.closed {
		s.pending[snap.email] = snap
	}
	s.mu.Unlock()

	if s.onError != nil {
		s.onError(snap.email, err)
	}
}

// settle moves the machine out of Saving once a cycle completes.
func (s *Saver) settle(ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch {
	case !ok:
		s.state = StateError
		if !s.closed {
			s.schedule()
		}
	case len(s.pending) > 0:
		// New edits arrived mid-flush.
		s.state = StateDirty
		s.lastSaved = time.Now()
		if !s.closed {
			s.schedule()
		}
	default:
		s.state = StateClean
		s.lastSaved = time.Now()
	}
}
