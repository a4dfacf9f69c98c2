package schema

// FieldType is the open tag describing which kind of input a field renders
// as. The engine dispatches shape checks on this tag; unrecognised tags fall
// back to the loosest string rule rather than failing dispatch.
type FieldType string

// Built-in field type tags. The set is open: hosts may declare additional
// tags and register matching widgets on their side.
const (
	FieldTypeString      FieldType = "string"
	FieldTypeNumber      FieldType = "number"
	FieldTypeBoolean     FieldType = "boolean"
	FieldTypeDate        FieldType = "date"
	FieldTypeRadio       FieldType = "radio"
	FieldTypeSelect      FieldType = "select"
	FieldTypeTextarea    FieldType = "textarea"
	FieldTypeFile        FieldType = "file"
	FieldTypeMultiSelect FieldType = "multiselect"
	FieldTypeDropzone    FieldType = "dropzone"
	FieldTypeSignature   FieldType = "signature"
)

// Snapshot maps field names to their current values. Unset fields are simply
// absent; a nil entry counts as empty. Snapshots are owned by the value
// store; components receiving one must treat it as read-only.
type Snapshot map[string]any

// FormSchema is the top-level declarative document. Exactly one of Fields or
// Sections carries the field list; Fields() flattens either shape into the
// authoritative ordered list.
type FormSchema struct {
	Title       string      `json:"formTitle,omitempty" yaml:"formTitle,omitempty"`
	Description string      `json:"formDescription,omitempty" yaml:"formDescription,omitempty"`
	FieldList   []FieldSpec `json:"fields,omitempty" yaml:"fields,omitempty"`
	Sections    []Section   `json:"sections,omitempty" yaml:"sections,omitempty"`
	// Layout is a column-count rendering hint, opaque to the engine.
	Layout int `json:"layout,omitempty" yaml:"layout,omitempty"`
}

// Section groups fields for multi-step presentation. Each section becomes one
// step when the schema is run through the step orchestrator.
type Section struct {
	Title       string      `json:"title,omitempty" yaml:"title,omitempty"`
	Description string      `json:"description,omitempty" yaml:"description,omitempty"`
	Fields      []FieldSpec `json:"fields" yaml:"fields"`
}

// FieldSpec describes a single named, typed input slot.
type FieldSpec struct {
	Name string    `json:"name" yaml:"name"`
	Type FieldType `json:"type" yaml:"type"`

	// Display metadata, opaque to the engine apart from sanitization.
	Label       string `json:"label,omitempty" yaml:"label,omitempty"`
	Placeholder string `json:"placeholder,omitempty" yaml:"placeholder,omitempty"`
	HelpText    string `json:"helpText,omitempty" yaml:"helpText,omitempty"`

	// Options lists enum values for choice-like types (radio, select,
	// multiselect). Render metadata; the engine does not enforce membership.
	Options []string `json:"options,omitempty" yaml:"options,omitempty"`

	Validation *ValidationRules `json:"validation,omitempty" yaml:"validation,omitempty"`

	// Conditional gates visibility on other fields' values. Absence means
	// always visible.
	Conditional *ConditionExpr `json:"conditional,omitempty" yaml:"conditional,omitempty"`

	// VisibleWhen is an alternative string-rule form of Conditional, compiled
	// through a visibility.RuleCompiler (see schema/exprcond). When both are
	// present the structured tree wins.
	VisibleWhen string `json:"visibleWhen,omitempty" yaml:"visibleWhen,omitempty"`
}

// ValidationRules carries the declarative constraints for one field.
type ValidationRules struct {
	Required  bool     `json:"required,omitempty" yaml:"required,omitempty"`
	Min       *float64 `json:"min,omitempty" yaml:"min,omitempty"`
	Max       *float64 `json:"max,omitempty" yaml:"max,omitempty"`
	MinLength *int     `json:"minLength,omitempty" yaml:"minLength,omitempty"`
	MaxLength *int     `json:"maxLength,omitempty" yaml:"maxLength,omitempty"`
	Pattern   string   `json:"pattern,omitempty" yaml:"pattern,omitempty"`

	// ErrorMessage overrides the default message for any failing check on
	// this field.
	ErrorMessage string `json:"errorMessage,omitempty" yaml:"errorMessage,omitempty"`

	Custom *CrossFieldRule `json:"customValidator,omitempty" yaml:"customValidator,omitempty"`
	Async  *AsyncRule      `json:"asyncValidator,omitempty" yaml:"asyncValidator,omitempty"`
}

// CrossFieldRule names a registered synchronous predicate evaluated over the
// whole value snapshot restricted to Fields. Field order is part of the
// validator's contract: an equality check over [a, b] receives exactly those
// two names in that order.
type CrossFieldRule struct {
	Fields    []string `json:"fields" yaml:"fields"`
	Validator string   `json:"validator" yaml:"validator"`
}

// AsyncRule names a registered asynchronous predicate. Params lists companion
// field names whose values are resolved from the live snapshot at call time,
// never captured at compile time.
type AsyncRule struct {
	Name   string   `json:"name" yaml:"name"`
	Params []string `json:"params,omitempty" yaml:"params,omitempty"`
}
