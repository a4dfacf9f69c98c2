// Package schema defines the declarative form schema consumed by the rest of
// the engine: sections, fields, validation rules, and conditional-visibility
// expressions. Schemas decode from JSON or YAML and are validated once at
// load time; every downstream component keys on the flattened field list
// returned by FormSchema.Fields.
package schema
