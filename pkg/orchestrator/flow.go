package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"dario.cat/mergo"

	"github.com/goliatone/go-formengine/pkg/schema"
	"github.com/goliatone/go-formengine/pkg/validation"
	"github.com/goliatone/go-formengine/pkg/visibility"
)

// ErrFlowComplete is returned by Advance once the terminal submit has fired.
var ErrFlowComplete = errors.New("orchestrator: flow is already complete")

// SubmitFunc receives the merged payload when the final step advances.
type SubmitFunc func(ctx context.Context, payload map[string]any) error

// Option customises flow construction.
type Option func(*config)

type config struct {
	registry      validation.Registry
	asyncRegistry validation.AsyncRegistry
	compiler      visibility.RuleCompiler
	submit        SubmitFunc
	logger        *slog.Logger
}

// WithRegistry injects the host's synchronous cross-field validators.
func WithRegistry(registry validation.Registry) Option {
	return func(c *config) { c.registry = registry }
}

// WithAsyncRegistry injects the host's asynchronous validators.
func WithAsyncRegistry(registry validation.AsyncRegistry) Option {
	return func(c *config) { c.asyncRegistry = registry }
}

// WithRuleCompiler enables string visibleWhen rules for submit-time
// visibility scoping.
func WithRuleCompiler(compiler visibility.RuleCompiler) Option {
	return func(c *config) { c.compiler = compiler }
}

// WithSubmit registers the terminal submit callback.
func WithSubmit(fn SubmitFunc) Option {
	return func(c *config) { c.submit = fn }
}

// WithLogger injects the logger shared with the per-step validation
// compilers. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// Step is one section of the schema presented and validated independently.
type Step struct {
	Index       int
	Title       string
	Description string
	Schema      *schema.FormSchema

	ruleset *validation.Ruleset
	conds   map[string]schema.Condition
}

// StepResult reports the outcome of one Advance call.
type StepResult struct {
	// Result carries per-field validation messages for the attempted step.
	Result validation.Result
	// Advanced reports whether the flow moved forward (or, on the final
	// step, completed).
	Advanced bool
	// Done reports that the terminal submit fired.
	Done bool
}

// Flow is the step orchestrator for one schema instance. It is not
// goroutine-safe; drive it from the host's event loop.
type Flow struct {
	steps     []*Step
	idx       int
	payload   map[string]any
	submit    SubmitFunc
	submitted bool
}

// NewFlow partitions the schema into steps and compiles each step's ruleset
// once. A flat schema (no sections) makes a single step. Rulesets never
// recompile after this point.
func NewFlow(s *schema.FormSchema, opts ...Option) (*Flow, error) {
	if s == nil {
		return nil, errors.New("orchestrator: schema is required")
	}
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("orchestrator: %w", err)
	}

	cfg := config{logger: slog.Default()}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	subSchemas := partition(s)
	flow := &Flow{
		steps:   make([]*Step, 0, len(subSchemas)),
		payload: make(map[string]any),
		submit:  cfg.submit,
	}

	compileOpts := []validation.Option{
		validation.WithRegistry(cfg.registry),
		validation.WithAsyncRegistry(cfg.asyncRegistry),
		validation.WithLogger(cfg.logger),
	}

	for idx, sub := range subSchemas {
		ruleset, err := validation.Compile(sub, compileOpts...)
		if err != nil {
			return nil, fmt.Errorf("orchestrator: compile step %d: %w", idx, err)
		}
		step := &Step{
			Index:       idx,
			Title:       sub.Title,
			Description: sub.Description,
			Schema:      sub,
			ruleset:     ruleset,
			conds:       stepConditions(sub, cfg),
		}
		flow.steps = append(flow.steps, step)
	}

	return flow, nil
}

func partition(s *schema.FormSchema) []*schema.FormSchema {
	if len(s.Sections) == 0 {
		return []*schema.FormSchema{{
			Title:       s.Title,
			Description: s.Description,
			FieldList:   s.FieldList,
			Layout:      s.Layout,
		}}
	}
	out := make([]*schema.FormSchema, 0, len(s.Sections))
	for _, section := range s.Sections {
		out = append(out, &schema.FormSchema{
			Title:       section.Title,
			Description: section.Description,
			FieldList:   section.Fields,
			Layout:      s.Layout,
		})
	}
	return out
}

func stepConditions(sub *schema.FormSchema, cfg config) map[string]schema.Condition {
	conds := make(map[string]schema.Condition)
	for _, field := range sub.FieldList {
		if field.Conditional != nil {
			conds[field.Name] = field.Conditional
			continue
		}
		if field.VisibleWhen == "" || cfg.compiler == nil {
			continue
		}
		cond, err := cfg.compiler.Compile(field.VisibleWhen)
		if err != nil {
			cfg.logger.Warn("orchestrator: visibleWhen rule failed to compile; treating as always visible",
				"field", field.Name, "error", err)
			continue
		}
		conds[field.Name] = cond
	}
	return conds
}

// Current returns the active step.
func (f *Flow) Current() *Step {
	return f.steps[f.idx]
}

// Steps returns the ordered step list. The slice is a copy; the steps are
// shared.
func (f *Flow) Steps() []*Step {
	return append([]*Step(nil), f.steps...)
}

// Index reports the active step index, Len the total step count.
func (f *Flow) Index() int { return f.idx }

// Len reports the number of steps.
func (f *Flow) Len() int { return len(f.steps) }

// IsTerminal reports whether the active step is the last one.
func (f *Flow) IsTerminal() bool { return f.idx == len(f.steps)-1 }

// Payload returns a copy of the cumulative merged data.
func (f *Flow) Payload() map[string]any {
	out := make(map[string]any, len(f.payload))
	for k, v := range f.payload {
		out[k] = v
	}
	return out
}

// Advance validates stepData against the active step, scoped to the step's
// current visibility, and on success merges it into the cumulative payload.
// Visibility resolves against the cumulative data plus stepData, so
// conditions may reference fields captured in earlier steps. On the terminal
// step the submit callback receives the merged payload; Advance returns the
// callback's error, and the flow completes only when the callback succeeds.
func (f *Flow) Advance(ctx context.Context, stepData map[string]any) (StepResult, error) {
	if f.submitted {
		return StepResult{}, ErrFlowComplete
	}

	step := f.steps[f.idx]
	combined := f.combinedSnapshot(stepData)
	visible := step.visibleIn(combined)

	result := step.ruleset.Validate(ctx, combined, visible)
	if !result.Valid {
		return StepResult{Result: result}, nil
	}

	// Only the step's own visible fields enter the payload; hidden or stray
	// keys in stepData never reach the final submission.
	accepted := make(map[string]any)
	for _, field := range step.Schema.FieldList {
		if visible != nil && !visible[field.Name] {
			continue
		}
		if value, ok := stepData[field.Name]; ok {
			accepted[field.Name] = value
		}
	}
	if err := mergo.Merge(&f.payload, accepted, mergo.WithOverride); err != nil {
		return StepResult{}, fmt.Errorf("orchestrator: merge step data: %w", err)
	}

	if !f.IsTerminal() {
		f.idx++
		return StepResult{Result: result, Advanced: true}, nil
	}

	if f.submit != nil {
		if err := f.submit(ctx, f.Payload()); err != nil {
			return StepResult{Result: result}, fmt.Errorf("orchestrator: submit: %w", err)
		}
	}
	f.submitted = true
	return StepResult{Result: result, Advanced: true, Done: true}, nil
}

// Retreat steps back one step, floored at the first. Data captured for the
// step being left is kept.
func (f *Flow) Retreat() int {
	if f.idx > 0 {
		f.idx--
	}
	return f.idx
}

func (f *Flow) combinedSnapshot(stepData map[string]any) schema.Snapshot {
	snap := make(schema.Snapshot, len(f.payload)+len(stepData))
	for k, v := range f.payload {
		snap[k] = v
	}
	for k, v := range stepData {
		snap[k] = v
	}
	return snap
}

// visibleIn computes the step's visibility map against a snapshot. Fields
// without a condition are visible.
func (s *Step) visibleIn(snap schema.Snapshot) map[string]bool {
	if len(s.conds) == 0 {
		return nil
	}
	visible := make(map[string]bool, len(s.Schema.FieldList))
	for _, field := range s.Schema.FieldList {
		cond, ok := s.conds[field.Name]
		if !ok {
			visible[field.Name] = true
			continue
		}
		visible[field.Name] = cond.Evaluate(snap)
	}
	return visible
}
