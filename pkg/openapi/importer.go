// Package openapi derives form schemas from OpenAPI operations. It is a
// convenience producer for hosts whose forms are authored against an API
// surface: the request body schema of an operation becomes a flat FormSchema
// with validation rules mapped from the OpenAPI constraints.
package openapi

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/goliatone/go-formengine/pkg/schema"
)

// Import loads an OpenAPI document from raw bytes and converts the named
// operation's request body into a FormSchema.
func Import(ctx context.Context, raw []byte, operationID string) (*schema.FormSchema, error) {
	if len(raw) == 0 {
		return nil, errors.New("openapi: document payload is empty")
	}
	loader := &openapi3.Loader{Context: ctx}
	doc, err := loader.LoadFromData(raw)
	if err != nil {
		return nil, fmt.Errorf("openapi: load document: %w", err)
	}
	return ImportOperation(doc, operationID)
}

// ImportOperation converts one operation of an already-loaded document.
func ImportOperation(doc *openapi3.T, operationID string) (*schema.FormSchema, error) {
	if doc == nil {
		return nil, errors.New("openapi: document is required")
	}
	if operationID == "" {
		return nil, errors.New("openapi: operation id is required")
	}

	op := findOperation(doc, operationID)
	if op == nil {
		return nil, fmt.Errorf("openapi: operation %q not found", operationID)
	}

	body := requestSchema(op.RequestBody)
	if body == nil {
		return nil, fmt.Errorf("openapi: operation %q has no request schema", operationID)
	}

	out := &schema.FormSchema{
		Title:       firstNonEmpty(op.Summary, operationID),
		Description: op.Description,
	}

	required := make(map[string]bool, len(body.Required))
	for _, name := range body.Required {
		required[name] = true
	}

	// Property iteration order is map order; sort for a stable field list.
	names := make([]string, 0, len(body.Properties))
	for name := range body.Properties {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		ref := body.Properties[name]
		if ref == nil || ref.Value == nil {
			continue
		}
		out.FieldList = append(out.FieldList, convertField(name, ref.Value, required[name]))
	}

	if err := out.Validate(); err != nil {
		return nil, fmt.Errorf("openapi: imported schema: %w", err)
	}
	return out, nil
}

func findOperation(doc *openapi3.T, operationID string) *openapi3.Operation {
	if doc.Paths == nil {
		return nil
	}
	for _, item := range doc.Paths.Map() {
		if item == nil {
			continue
		}
		for _, op := range item.Operations() {
			if op != nil && op.OperationID == operationID {
				return op
			}
		}
	}
	return nil
}

func requestSchema(body *openapi3.RequestBodyRef) *openapi3.Schema {
	if body == nil || body.Value == nil {
		return nil
	}
	content := body.Value.Content
	for _, mediaType := range []string{"application/json", "application/x-www-form-urlencoded", "multipart/form-data"} {
		if mt, ok := content[mediaType]; ok && mt.Schema != nil && mt.Schema.Value != nil {
			return mt.Schema.Value
		}
	}
	for _, mt := range content {
		if mt.Schema != nil && mt.Schema.Value != nil {
			return mt.Schema.Value
		}
	}
	return nil
}

func convertField(name string, src *openapi3.Schema, required bool) schema.FieldSpec {
	field := schema.FieldSpec{
		Name:     name,
		Type:     fieldType(src),
		Label:    firstNonEmpty(src.Title, name),
		HelpText: src.Description,
	}

	if len(src.Enum) > 0 {
		field.Options = make([]string, 0, len(src.Enum))
		for _, v := range src.Enum {
			field.Options = append(field.Options, schema.ToString(v))
		}
	}

	rules := convertRules(src, required)
	if rules != nil {
		field.Validation = rules
	}
	return field
}

func fieldType(src *openapi3.Schema) schema.FieldType {
	switch firstType(src.Type) {
	case "boolean":
		return schema.FieldTypeBoolean
	case "integer", "number":
		return schema.FieldTypeNumber
	case "array":
		return schema.FieldTypeMultiSelect
	case "string":
		switch src.Format {
		case "date", "date-time":
			return schema.FieldTypeDate
		case "binary":
			return schema.FieldTypeFile
		}
		if len(src.Enum) > 0 {
			return schema.FieldTypeSelect
		}
		return schema.FieldTypeString
	default:
		return schema.FieldTypeString
	}
}

func convertRules(src *openapi3.Schema, required bool) *schema.ValidationRules {
	rules := schema.ValidationRules{Required: required}
	populated := required

	if src.Min != nil {
		value := *src.Min
		rules.Min = &value
		populated = true
	}
	if src.Max != nil {
		value := *src.Max
		rules.Max = &value
		populated = true
	}
	if src.MinLength != 0 {
		value := int(src.MinLength)
		rules.MinLength = &value
		populated = true
	}
	if src.MaxLength != nil {
		value := int(*src.MaxLength)
		rules.MaxLength = &value
		populated = true
	}
	if src.Pattern != "" {
		rules.Pattern = src.Pattern
		populated = true
	}

	if !populated {
		return nil
	}
	return &rules
}

func firstType(types *openapi3.Types) string {
	if types == nil {
		return ""
	}
	values := types.Slice()
	if len(values) == 0 {
		return ""
	}
	return values[0]
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
