// Package formengine interprets declarative form schemas: it compiles them
// into executable validation rulesets, tracks conditional visibility
// reactively as values change, and coordinates multi-step submission. The
// root package re-exports the common contracts and offers an Engine that
// wires the pieces together for a single form instance.
package formengine

import (
	"github.com/goliatone/go-formengine/pkg/orchestrator"
	"github.com/goliatone/go-formengine/pkg/schema"
	"github.com/goliatone/go-formengine/pkg/validation"
)

// FormSchema is the declarative document describing a form.
type FormSchema = schema.FormSchema

// FieldSpec describes one input slot.
type FieldSpec = schema.FieldSpec

// ConditionExpr gates a field's visibility on other fields' values.
type ConditionExpr = schema.ConditionExpr

// Snapshot maps field names to current values.
type Snapshot = schema.Snapshot

// Registry holds the host's synchronous cross-field validators.
type Registry = validation.Registry

// AsyncRegistry holds the host's asynchronous validators.
type AsyncRegistry = validation.AsyncRegistry

// Result is a validation outcome with per-field messages.
type Result = validation.Result

// SubmitFunc receives the merged payload at the terminal step.
type SubmitFunc = orchestrator.SubmitFunc

// ParseSchema decodes and validates a JSON or YAML schema document.
func ParseSchema(raw []byte) (*FormSchema, error) {
	return schema.Parse(raw)
}
