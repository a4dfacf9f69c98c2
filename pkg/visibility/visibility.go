// Package visibility maintains the per-field visibility map for a form
// instance. The tracker subscribes to the value store, re-evaluates only the
// fields that declare a condition, clears hidden fields' values in the same
// reactive cycle, and publishes the map downstream only when at least one
// entry flipped.
package visibility

import (
	"errors"
	"log/slog"
	"sync"

	"github.com/goliatone/go-formengine/pkg/schema"
	"github.com/goliatone/go-formengine/pkg/values"
)

// RuleCompiler turns a string visibility rule into an executable condition.
// schema/exprcond provides the expr-lang backed implementation.
type RuleCompiler interface {
	Compile(rule string) (schema.Condition, error)
}

// Option customises tracker construction.
type Option func(*Tracker)

// WithLogger injects the logger used to report configuration errors. Defaults
// to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(t *Tracker) {
		if logger != nil {
			t.logger = logger
		}
	}
}

// WithRuleCompiler enables string visibleWhen rules. Without a compiler such
// rules are logged and treated as always-visible.
func WithRuleCompiler(compiler RuleCompiler) Option {
	return func(t *Tracker) {
		t.compiler = compiler
	}
}

// Tracker owns the visibility map for one schema instance.
type Tracker struct {
	mu        sync.Mutex
	store     *values.Store
	conds     map[string]schema.Condition
	visible   map[string]bool
	listeners map[int]func(map[string]bool)
	nextID    int
	unsub     func()
	closed    bool

	// cycling marks an in-progress recompute cycle. Store notifications
	// arriving while the cycle clears hidden values park their snapshot in
	// pending instead of starting a nested cycle.
	cycling    bool
	pending    schema.Snapshot
	hasPending bool

	logger   *slog.Logger
	compiler RuleCompiler
}

// NewTracker builds the condition table from the schema, computes the initial
// visibility map against the store's current snapshot, and subscribes to
// further changes. Callers must Close the tracker to release the
// subscription.
func NewTracker(s *schema.FormSchema, store *values.Store, opts ...Option) (*Tracker, error) {
	if s == nil {
		return nil, errors.New("visibility: schema is required")
	}
	if store == nil {
		return nil, errors.New("visibility: value store is required")
	}

	t := &Tracker{
		store:     store,
		conds:     make(map[string]schema.Condition),
		visible:   make(map[string]bool),
		listeners: make(map[int]func(map[string]bool)),
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(t)
		}
	}

	for _, field := range s.Fields() {
		t.visible[field.Name] = true
		if cond := t.conditionFor(field); cond != nil {
			t.conds[field.Name] = cond
		}
	}

	t.recompute(store.Snapshot())
	t.unsub = store.Subscribe(func(change values.Change) {
		t.recompute(change.Values)
	})
	return t, nil
}

func (t *Tracker) conditionFor(field schema.FieldSpec) schema.Condition {
	if field.Conditional != nil {
		return field.Conditional
	}
	if field.VisibleWhen == "" {
		return nil
	}
	if t.compiler == nil {
		t.logger.Warn("visibility: field declares visibleWhen but no rule compiler is configured; treating as always visible",
			"field", field.Name)
		return nil
	}
	cond, err := t.compiler.Compile(field.VisibleWhen)
	if err != nil {
		t.logger.Warn("visibility: rule failed to compile; treating as always visible",
			"field", field.Name, "rule", field.VisibleWhen, "error", err)
		return nil
	}
	return cond
}

// recompute re-evaluates every conditional field against the snapshot. Hidden
// fields' values are cleared in the same cycle, and when a clear re-triggers
// other conditions the cycle runs that pass too, so listeners see exactly one
// map per batch and that map is never a partially recomputed one. The cycle
// terminates because the store skips clearing names with no value.
func (t *Tracker) recompute(snapshot schema.Snapshot) {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return
	}
	if t.cycling {
		t.pending = snapshot
		t.hasPending = true
		t.mu.Unlock()
		return
	}
	t.cycling = true

	changed := false
	for {
		var hidden []string
		for name, cond := range t.conds {
			next := cond.Evaluate(snapshot)
			if prev := t.visible[name]; prev != next {
				t.visible[name] = next
				changed = true
				if !next {
					hidden = append(hidden, name)
				}
			}
		}
		if len(hidden) == 0 {
			break
		}

		// Clearing notifies the store's subscribers, which re-enters
		// recompute; the cycle guard parks that snapshot in pending.
		t.mu.Unlock()
		t.store.Clear(hidden...)
		t.mu.Lock()
		if t.closed {
			t.cycling = false
			t.mu.Unlock()
			return
		}
		if !t.hasPending {
			break
		}
		snapshot = t.pending
		t.pending = nil
		t.hasPending = false
	}
	t.cycling = false

	if !changed {
		t.mu.Unlock()
		return
	}

	visibleCopy := t.copyVisibleLocked()
	listeners := make([]func(map[string]bool), 0, len(t.listeners))
	for _, fn := range t.listeners {
		listeners = append(listeners, fn)
	}
	t.mu.Unlock()

	for _, fn := range listeners {
		fn(visibleCopy)
	}
}

// Visible returns a copy of the current visibility map.
func (t *Tracker) Visible() map[string]bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.copyVisibleLocked()
}

// IsVisible reports whether the named field is currently visible. Names the
// schema never declared report true, matching the rule that absence of a
// condition means always-visible.
func (t *Tracker) IsVisible(name string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	v, ok := t.visible[name]
	if !ok {
		return true
	}
	return v
}

// OnUpdate registers a listener invoked with a copy of the map whenever at
// least one entry flips. Returns the listener's unsubscribe func.
func (t *Tracker) OnUpdate(fn func(map[string]bool)) func() {
	if fn == nil {
		return func() {}
	}
	t.mu.Lock()
	id := t.nextID
	t.nextID++
	t.listeners[id] = fn
	t.mu.Unlock()

	return func() {
		t.mu.Lock()
		delete(t.listeners, id)
		t.mu.Unlock()
	}
}

// Close releases the store subscription. The tracker stops recomputing; the
// last published map remains readable.
func (t *Tracker) Close() {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return
	}
	t.closed = true
	unsub := t.unsub
	t.unsub = nil
	t.mu.Unlock()

	if unsub != nil {
		unsub()
	}
}

func (t *Tracker) copyVisibleLocked() map[string]bool {
	out := make(map[string]bool, len(t.visible))
	for k, v := range t.visible {
		out[k] = v
	}
	return out
}
