package validation

import (
	"fmt"
	"time"

	"github.com/goliatone/go-formengine/pkg/schema"
)

// checkerFunc validates the shape of a non-empty value against a compiled
// field rule, returning user-facing messages.
type checkerFunc func(rule *fieldRule, value any) []string

// checkers dispatches shape checks by field type tag. The tag set is open:
// tags without an entry fall back to the string checker, the loosest rule,
// rather than a dispatch failure.
var checkers = map[schema.FieldType]checkerFunc{
	schema.FieldTypeString:      checkString,
	schema.FieldTypeTextarea:    checkString,
	schema.FieldTypeRadio:       checkString,
	schema.FieldTypeSelect:      checkString,
	schema.FieldTypeSignature:   checkString,
	schema.FieldTypeNumber:      checkNumber,
	schema.FieldTypeBoolean:     checkBoolean,
	schema.FieldTypeDate:        checkDate,
	schema.FieldTypeMultiSelect: checkArray,
	schema.FieldTypeFile:        checkArray,
	schema.FieldTypeDropzone:    checkArray,
}

func checkerFor(fieldType schema.FieldType) checkerFunc {
	if checker, ok := checkers[fieldType]; ok {
		return checker
	}
	return checkString
}

func checkString(rule *fieldRule, value any) []string {
	text := schema.ToString(value)
	var msgs []string
	if rule.minLen != nil && len([]rune(text)) < *rule.minLen {
		msgs = append(msgs, fmt.Sprintf("%s must be at least %d characters", rule.label, *rule.minLen))
	}
	if rule.maxLen != nil && len([]rune(text)) > *rule.maxLen {
		msgs = append(msgs, fmt.Sprintf("%s must be at most %d characters", rule.label, *rule.maxLen))
	}
	if rule.pattern != nil && !rule.pattern.MatchString(text) {
		msgs = append(msgs, fmt.Sprintf("%s has an invalid format", rule.label))
	}
	return msgs
}

func checkNumber(rule *fieldRule, value any) []string {
	n, ok := schema.ToNumber(value)
	if !ok {
		return []string{fmt.Sprintf("%s must be a number", rule.label)}
	}
	var msgs []string
	if rule.min != nil && n < *rule.min {
		msgs = append(msgs, fmt.Sprintf("%s must be at least %v", rule.label, *rule.min))
	}
	if rule.max != nil && n > *rule.max {
		msgs = append(msgs, fmt.Sprintf("%s must be at most %v", rule.label, *rule.max))
	}
	return msgs
}

func checkBoolean(rule *fieldRule, value any) []string {
	switch v := value.(type) {
	case bool:
		return nil
	case string:
		if v == "true" || v == "false" {
			return nil
		}
	}
	return []string{fmt.Sprintf("%s must be true or false", rule.label)}
}

// dateLayouts accepted for date-typed fields. Values arrive as ISO-formatted
// strings from date widgets.
var dateLayouts = []string{"2006-01-02", time.RFC3339}

func checkDate(rule *fieldRule, value any) []string {
	text := schema.ToString(value)
	for _, layout := range dateLayouts {
		if _, err := time.Parse(layout, text); err == nil {
			return nil
		}
	}
	return []string{fmt.Sprintf("%s must be a valid date", rule.label)}
}

func checkArray(rule *fieldRule, value any) []string {
	length, ok := arrayLen(value)
	if !ok {
		return []string{fmt.Sprintf("%s must be a list of values", rule.label)}
	}
	var msgs []string
	if rule.minLen != nil && length < *rule.minLen {
		msgs = append(msgs, fmt.Sprintf("%s needs at least %d entries", rule.label, *rule.minLen))
	}
	if rule.maxLen != nil && length > *rule.maxLen {
		msgs = append(msgs, fmt.Sprintf("%s allows at most %d entries", rule.label, *rule.maxLen))
	}
	return msgs
}

func arrayLen(value any) (int, bool) {
	switch v := value.(type) {
	case []any:
		return len(v), true
	case []string:
		return len(v), true
	default:
		return 0, false
	}
}
