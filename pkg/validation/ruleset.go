package validation

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/goliatone/go-formengine/pkg/schema"
)

// Result is the outcome of one validation pass: overall validity plus the
// user-facing messages attached to each offending field.
type Result struct {
	Valid  bool                `json:"valid"`
	Errors map[string][]string `json:"errors,omitempty"`
}

// FieldErrors returns the messages attached to one field.
func (r Result) FieldErrors(name string) []string {
	return r.Errors[name]
}

// Ruleset is the compiled validation program for one schema instance. It is
// immutable after Compile: value changes re-run Validate, never recompile.
type Ruleset struct {
	fields []*fieldRule
	cross  []*crossRule
	logger *slog.Logger
}

// FieldNames lists the compiled fields in schema order.
func (rs *Ruleset) FieldNames() []string {
	out := make([]string, 0, len(rs.fields))
	for _, rule := range rs.fields {
		out = append(out, rule.name)
	}
	return out
}

// HasAsync reports whether any compiled rule defers to an async validator.
func (rs *Ruleset) HasAsync() bool {
	for _, rule := range rs.fields {
		if rule.async != nil {
			return true
		}
	}
	return false
}

// Validate runs the compiled checks against a snapshot, scoped to the current
// visibility map. A nil map means everything is visible; hidden fields are
// skipped entirely, so a hidden required field never blocks submission.
//
// Stages run strictly in order: per-field, then cross-field, then async.
// Each later stage only runs when every earlier stage passed.
func (rs *Ruleset) Validate(ctx context.Context, snapshot schema.Snapshot, visible map[string]bool) Result {
	errs := make(map[string][]string)

	for _, rule := range rs.fields {
		if hidden(rule.name, visible) {
			continue
		}
		rs.validateField(rule, snapshot, errs)
	}
	if len(errs) > 0 {
		return Result{Valid: false, Errors: errs}
	}

	for _, rule := range rs.cross {
		if anyHidden(rule.fields, visible) {
			continue
		}
		if rule.fn(snapshot, rule.fields) {
			continue
		}
		// The same message lands on every implicated field so each one's
		// display surfaces the failure.
		for _, name := range rule.fields {
			errs[name] = append(errs[name], rule.message)
		}
	}
	if len(errs) > 0 {
		return Result{Valid: false, Errors: errs}
	}

	for _, rule := range rs.fields {
		if rule.async == nil || hidden(rule.name, visible) {
			continue
		}
		rs.validateAsync(ctx, rule, snapshot, errs)
	}

	return Result{Valid: len(errs) == 0, Errors: nonEmpty(errs)}
}

func (rs *Ruleset) validateField(rule *fieldRule, snapshot schema.Snapshot, errs map[string][]string) {
	value := snapshot[rule.name]

	if schema.IsEmpty(value) {
		if rule.required {
			errs[rule.name] = append(errs[rule.name], rule.failureMessage(fmt.Sprintf("%s is required", rule.label)))
		}
		// Optional and empty: nothing further to check.
		return
	}

	for _, msg := range rule.checker(rule, value) {
		errs[rule.name] = append(errs[rule.name], rule.failureMessage(msg))
	}
}

// validateAsync invokes the deferred validator with the field's current value
// and the companion values named in params. Companions resolve from the
// snapshot at call time, never at compile time.
func (rs *Ruleset) validateAsync(ctx context.Context, rule *fieldRule, snapshot schema.Snapshot, errs map[string][]string) {
	companions := make([]any, len(rule.async.params))
	for i, param := range rule.async.params {
		companions[i] = snapshot[param]
	}

	ok, err := rule.async.fn(ctx, snapshot[rule.name], companions...)
	if err != nil {
		rs.logger.Warn("validation: async validator failed",
			"field", rule.name, "validator", rule.async.name, "error", err)
		errs[rule.name] = append(errs[rule.name], fmt.Sprintf("%s could not be verified", rule.label))
		return
	}
	if !ok {
		errs[rule.name] = append(errs[rule.name], rule.failureMessage(fmt.Sprintf("%s is not valid", rule.label)))
	}
}

func (r *fieldRule) failureMessage(fallback string) string {
	if r.message != "" {
		return r.message
	}
	return fallback
}

func hidden(name string, visible map[string]bool) bool {
	if visible == nil {
		return false
	}
	v, ok := visible[name]
	return ok && !v
}

func anyHidden(names []string, visible map[string]bool) bool {
	for _, name := range names {
		if hidden(name, visible) {
			return true
		}
	}
	return false
}

func nonEmpty(errs map[string][]string) map[string][]string {
	if len(errs) == 0 {
		return nil
	}
	return errs
}
