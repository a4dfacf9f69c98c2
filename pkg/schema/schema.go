package schema

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

var (
	// ErrNoFields reports a schema that carries neither a flat field list nor
	// sections.
	ErrNoFields = errors.New("schema: document declares no fields")
	// ErrAmbiguousShape reports a schema populating both the flat field list
	// and sections.
	ErrAmbiguousShape = errors.New("schema: fields and sections are mutually exclusive")
)

// Parse decodes a schema document from JSON or YAML, sniffing the format from
// the payload, and validates its shape. The returned schema has display
// metadata sanitized.
func Parse(raw []byte) (*FormSchema, error) {
	trimmed := bytes.TrimLeft(raw, " \t\r\n")
	if len(trimmed) == 0 {
		return nil, errors.New("schema: document is empty")
	}
	if trimmed[0] == '{' {
		return ParseJSON(raw)
	}
	return ParseYAML(raw)
}

// ParseJSON decodes and validates a JSON schema document.
func ParseJSON(raw []byte) (*FormSchema, error) {
	var s FormSchema
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, fmt.Errorf("schema: decode json: %w", err)
	}
	return finishParse(&s)
}

// ParseYAML decodes and validates a YAML schema document.
func ParseYAML(raw []byte) (*FormSchema, error) {
	var s FormSchema
	if err := yaml.Unmarshal(raw, &s); err != nil {
		return nil, fmt.Errorf("schema: decode yaml: %w", err)
	}
	return finishParse(&s)
}

func finishParse(s *FormSchema) (*FormSchema, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	s.sanitize()
	return s, nil
}

// Fields returns the authoritative flattened field list, in declaration
// order. Sections flatten front to back.
func (s *FormSchema) Fields() []FieldSpec {
	if s == nil {
		return nil
	}
	if len(s.Sections) == 0 {
		return s.FieldList
	}
	var out []FieldSpec
	for _, section := range s.Sections {
		out = append(out, section.Fields...)
	}
	return out
}

// FieldMap indexes the flattened field list by name. Call Validate first;
// duplicate names are rejected there, so the map is lossless afterwards.
func (s *FormSchema) FieldMap() map[string]FieldSpec {
	fields := s.Fields()
	out := make(map[string]FieldSpec, len(fields))
	for _, f := range fields {
		out[f.Name] = f
	}
	return out
}

// Validate checks structural invariants: exactly one field shape, non-empty
// unique field names, and well-formed condition expressions. Duplicate names
// are rejected outright rather than resolved last-wins, because every
// downstream component keys on the name.
func (s *FormSchema) Validate() error {
	if s == nil {
		return errors.New("schema: nil schema")
	}
	if len(s.FieldList) > 0 && len(s.Sections) > 0 {
		return ErrAmbiguousShape
	}
	fields := s.Fields()
	if len(fields) == 0 {
		return ErrNoFields
	}

	seen := make(map[string]struct{}, len(fields))
	for idx, field := range fields {
		name := strings.TrimSpace(field.Name)
		if name == "" {
			return fmt.Errorf("schema: field %d has no name", idx)
		}
		if _, dup := seen[name]; dup {
			return fmt.Errorf("schema: duplicate field name %q", name)
		}
		seen[name] = struct{}{}

		if field.Conditional != nil {
			if err := field.Conditional.check(); err != nil {
				return fmt.Errorf("schema: field %q: %w", name, err)
			}
		}
		if field.Validation != nil {
			if err := checkRules(field.Validation); err != nil {
				return fmt.Errorf("schema: field %q: %w", name, err)
			}
		}
	}
	return nil
}

func checkRules(rules *ValidationRules) error {
	if rules.Custom != nil {
		if strings.TrimSpace(rules.Custom.Validator) == "" {
			return errors.New("customValidator is missing a validator name")
		}
		if len(rules.Custom.Fields) == 0 {
			return errors.New("customValidator names no fields")
		}
	}
	if rules.Async != nil && strings.TrimSpace(rules.Async.Name) == "" {
		return errors.New("asyncValidator is missing a name")
	}
	return nil
}
