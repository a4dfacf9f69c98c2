package formengine

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/goliatone/go-formengine/pkg/orchestrator"
	"github.com/goliatone/go-formengine/pkg/schema"
	"github.com/goliatone/go-formengine/pkg/validation"
	"github.com/goliatone/go-formengine/pkg/values"
	"github.com/goliatone/go-formengine/pkg/visibility"
)

// Option customises engine construction.
type Option func(*engineConfig)

type engineConfig struct {
	registry      validation.Registry
	asyncRegistry validation.AsyncRegistry
	compiler      visibility.RuleCompiler
	submit        orchestrator.SubmitFunc
	initial       schema.Snapshot
	logger        *slog.Logger
}

// WithRegistry injects synchronous cross-field validators.
func WithRegistry(registry validation.Registry) Option {
	return func(c *engineConfig) { c.registry = registry }
}

// WithAsyncRegistry injects asynchronous validators.
func WithAsyncRegistry(registry validation.AsyncRegistry) Option {
	return func(c *engineConfig) { c.asyncRegistry = registry }
}

// WithRuleCompiler enables string visibleWhen rules (see schema/exprcond).
func WithRuleCompiler(compiler visibility.RuleCompiler) Option {
	return func(c *engineConfig) { c.compiler = compiler }
}

// WithSubmit registers the terminal submit callback.
func WithSubmit(fn orchestrator.SubmitFunc) Option {
	return func(c *engineConfig) { c.submit = fn }
}

// WithInitialValues seeds the value store.
func WithInitialValues(initial schema.Snapshot) Option {
	return func(c *engineConfig) { c.initial = initial }
}

// WithLogger injects the logger shared by every component. Defaults to
// slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(c *engineConfig) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// Engine wires a value store, visibility tracker, compiled ruleset, and step
// flow for one schema instance. The ruleset compiles exactly once here;
// subsequent value changes only re-run evaluation.
type Engine struct {
	schema  *schema.FormSchema
	store   *values.Store
	tracker *visibility.Tracker
	ruleset *validation.Ruleset
	flow    *orchestrator.Flow
}

// New compiles the schema and assembles the engine.
func New(s *schema.FormSchema, opts ...Option) (*Engine, error) {
	cfg := engineConfig{logger: slog.Default()}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	ruleset, err := validation.Compile(s,
		validation.WithRegistry(cfg.registry),
		validation.WithAsyncRegistry(cfg.asyncRegistry),
		validation.WithLogger(cfg.logger),
	)
	if err != nil {
		return nil, fmt.Errorf("formengine: %w", err)
	}

	store := values.NewStore(cfg.initial)
	tracker, err := visibility.NewTracker(s, store,
		visibility.WithLogger(cfg.logger),
		visibility.WithRuleCompiler(cfg.compiler),
	)
	if err != nil {
		return nil, fmt.Errorf("formengine: %w", err)
	}

	flow, err := orchestrator.NewFlow(s,
		orchestrator.WithRegistry(cfg.registry),
		orchestrator.WithAsyncRegistry(cfg.asyncRegistry),
		orchestrator.WithRuleCompiler(cfg.compiler),
		orchestrator.WithSubmit(cfg.submit),
		orchestrator.WithLogger(cfg.logger),
	)
	if err != nil {
		tracker.Close()
		return nil, fmt.Errorf("formengine: %w", err)
	}

	return &Engine{
		schema:  s,
		store:   store,
		tracker: tracker,
		ruleset: ruleset,
		flow:    flow,
	}, nil
}

// Store exposes the field value store.
func (e *Engine) Store() *values.Store { return e.store }

// Tracker exposes the visibility tracker.
func (e *Engine) Tracker() *visibility.Tracker { return e.tracker }

// Flow exposes the step orchestrator.
func (e *Engine) Flow() *orchestrator.Flow { return e.flow }

// Schema returns the schema this engine was built for.
func (e *Engine) Schema() *schema.FormSchema { return e.schema }

// Validate runs the whole-schema ruleset against the store's current
// snapshot, scoped to the current visibility map.
func (e *Engine) Validate(ctx context.Context) validation.Result {
	return e.ruleset.Validate(ctx, e.store.Snapshot(), e.tracker.Visible())
}

// Close releases the tracker's store subscription.
func (e *Engine) Close() {
	e.tracker.Close()
}
