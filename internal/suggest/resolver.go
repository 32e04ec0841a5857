// Package suggest turns a stream of query edits into a throttled sequence of
// remote lookups and exposes the latest suggestion set.
//
// Each edit cancels the pending lookup timer and starts a new one; a lookup
// fires only once the query has been quiet for the configured delay. A
// request already sent is never cancelled, but its result is dropped when the
// query changed while it was in flight.
package suggest

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"
	"unicode/utf8"
)

// DefaultDelay is the quiescence window used when Options.Delay is zero.
const DefaultDelay = 500 * time.Millisecond

var (
	// ErrStale is returned by Select when the suggestion set does not belong
	// to the current query.
	ErrStale = errors.New("suggestions are not for the current query")

	// ErrOutOfRange is returned by Select for an index outside the set.
	ErrOutOfRange = errors.New("suggestion index out of range")
)

// State is the resolver's position in its lookup cycle.
type State int

// Idle -> Scheduled -> Fetching -> Resolved | Failed, re-entered on every edit.
const (
	Idle State = iota
	Scheduled
	Fetching
	Resolved
	Failed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Scheduled:
		return "scheduled"
	case Fetching:
		return "fetching"
	case Resolved:
		return "resolved"
	case Failed:
		return "failed"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// LookupFunc fetches suggestions for a trimmed query.
type LookupFunc[T any] func(ctx context.Context, query string) ([]T, error)

// Snapshot is the observable state after a change.
type Snapshot[T any] struct {
	// Seq increases with every edit.
	Seq         uint64
	Query       string
	State       State
	Suggestions []T
	Err         error
}

// Newer reports whether s supersedes prev. Callbacks run outside the
// resolver's lock, so observers use this to ignore snapshots that arrive out
// of order.
func (s Snapshot[T]) Newer(prev Snapshot[T]) bool {
	if s.Seq != prev.Seq {
		return s.Seq > prev.Seq
	}
	return s.State > prev.State
}

// Options configures a Resolver.
type Options[T any] struct {
	// Delay is the quiescence window. Zero means DefaultDelay.
	Delay time.Duration
	// MinLength is the minimum trimmed query length, in runes, that triggers
	// a lookup. Values below 1 are treated as 1.
	MinLength int
	// OnChange is called after every state change.
	OnChange func(Snapshot[T])
	// OnError is called once per failed lookup.
	OnError func(query string, err error)
}

// Resolver debounces query edits into lookups. It is safe for concurrent use.
type Resolver[T any] struct {
	lookup    LookupFunc[T]
	delay     time.Duration
	minLength int
	onChange  func(Snapshot[T])
	onError   func(string, error)

	ctx    context.Context
	cancel context.CancelFunc

	mu          sync.Mutex
	timer       *time.Timer
	seq         uint64
	query       string
	state       State
	suggestions []T
	err         error
	selected    int
	closed      bool

	inflight sync.WaitGroup
}

// New creates a resolver around lookup.
func New[T any](lookup LookupFunc[T], opts Options[T]) *Resolver[T] {
	if opts.Delay == 0 {
		opts.Delay = DefaultDelay
	}
	if opts.MinLength < 1 {
		opts.MinLength = 1
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Resolver[T]{
		lookup:    lookup,
		delay:     opts.Delay,
		minLength: opts.MinLength,
		onChange:  opts.OnChange,
		onError:   opts.OnError,
		ctx:       ctx,
		cancel:    cancel,
		selected:  -1,
	}
}

// Ready reports whether query is long enough to be looked up: at least
// minLength runes once surrounding whitespace is trimmed.
func Ready(query string, minLength int) bool {
	n := utf8.RuneCountInString(strings.TrimSpace(query))
	return n > 0 && n >= minLength
}

// Update records a query edit. A query below the minimum length clears the
// suggestion set at once; anything else (re)schedules a lookup.
func (r *Resolver[T]) Update(query string) {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}

	r.seq++
	r.query = query
	r.selected = -1
	if r.timer != nil {
		r.timer.Stop()
		r.timer = nil
	}

	trimmed := strings.TrimSpace(query)
	if !Ready(trimmed, r.minLength) {
		r.state = Idle
		r.suggestions = nil
		r.err = nil
	} else {
		r.state = Scheduled
		seq := r.seq
		r.timer = time.AfterFunc(r.delay, func() { r.fire(seq, trimmed) })
	}

	snap := r.snapshotLocked()
	r.mu.Unlock()
	r.emit(snap)
}

// Clear empties the query, the suggestion set and the selection.
func (r *Resolver[T]) Clear() {
	r.Update("")
}

// fire runs on the timer goroutine.
func (r *Resolver[T]) fire(seq uint64, query string) {
	r.mu.Lock()
	if r.closed || seq != r.seq {
		r.mu.Unlock()
		return
	}
	r.timer = nil
	r.state = Fetching
	r.inflight.Add(1)
	snap := r.snapshotLocked()
	r.mu.Unlock()
	r.emit(snap)

	defer r.inflight.Done()

	results, err := r.call(query)

	r.mu.Lock()
	if r.closed || seq != r.seq {
		// The query moved on while the request was in flight.
		r.mu.Unlock()
		return
	}
	if err != nil {
		r.state = Failed
		r.suggestions = nil
		r.err = err
	} else {
		r.state = Resolved
		r.suggestions = results
		r.err = nil
	}
	snap = r.snapshotLocked()
	r.mu.Unlock()

	if err != nil && r.onError != nil {
		r.onError(query, err)
	}
	r.emit(snap)
}

// call runs the lookup, turning a panic into an error so a broken lookup
// cannot take the caller's UI down.
func (r *Resolver[T]) call(query string) (results []T, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("lookup %q panicked: %v", query, p)
		}
	}()
	return r.lookup(r.ctx, query)
}

// Select picks suggestion i from the current set. The set must have been
// fetched for the current query.
func (r *Resolver[T]) Select(i int) (T, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var zero T
	if r.state != Resolved {
		return zero, ErrStale
	}
	if i < 0 || i >= len(r.suggestions) {
		return zero, ErrOutOfRange
	}
	r.selected = i
	return r.suggestions[i], nil
}

// Selected returns the current selection, if any.
func (r *Resolver[T]) Selected() (T, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var zero T
	if r.selected < 0 {
		return zero, false
	}
	return r.suggestions[r.selected], true
}

// Snapshot returns the current state.
func (r *Resolver[T]) Snapshot() Snapshot[T] {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.snapshotLocked()
}

// Close stops the pending timer, cancels the lookup context and waits for an
// in-flight lookup to return. Later edits are ignored.
func (r *Resolver[T]) Close() {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}
	r.closed = true
	if r.timer != nil {
		r.timer.Stop()
		r.timer = nil
	}
	r.selected = -1
	r.mu.Unlock()

	r.cancel()
	r.inflight.Wait()
}

func (r *Resolver[T]) snapshotLocked() Snapshot[T] {
	return Snapshot[T]{
		Seq:         r.seq,
		Query:       r.query,
		State:       r.state,
		Suggestions: r.suggestions,
		Err:         r.err,
	}
}

func (r *Resolver[T]) emit(s Snapshot[T]) {
	if r.onChange != nil {
		r.onChange(s)
	}
}
