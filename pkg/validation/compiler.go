package validation

import (
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/goliatone/go-formengine/pkg/schema"
)

// Option customises compilation.
type Option func(*compileConfig)

type compileConfig struct {
	registry      Registry
	asyncRegistry AsyncRegistry
	logger        *slog.Logger
}

// WithRegistry injects the host's synchronous cross-field validators.
func WithRegistry(registry Registry) Option {
	return func(c *compileConfig) {
		c.registry = registry
	}
}

// WithAsyncRegistry injects the host's asynchronous validators.
func WithAsyncRegistry(registry AsyncRegistry) Option {
	return func(c *compileConfig) {
		c.asyncRegistry = registry
	}
}

// WithLogger injects the logger used for configuration errors. Defaults to
// slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(c *compileConfig) {
		if logger != nil {
			c.logger = logger
		}
	}
}

type fieldRule struct {
	name     string
	label    string
	required bool
	checker  checkerFunc

	min, max       *float64
	minLen, maxLen *int
	pattern        *regexp.Regexp

	// message overrides every failing check's text for this field.
	message string

	async *asyncBinding
}

type asyncBinding struct {
	name   string
	fn     AsyncFunc
	params []string
}

type crossRule struct {
	name    string
	fn      CrossFieldFunc
	fields  []string
	message string
}

// Compile translates a schema's field list into an immutable Ruleset. The
// schema must pass its own shape validation; beyond that compilation never
// fails. Unknown validator names and invalid patterns are logged and dropped
// so the rest of the form keeps working.
func Compile(s *schema.FormSchema, opts ...Option) (*Ruleset, error) {
	if s == nil {
		return nil, fmt.Errorf("validation: schema is required")
	}
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("validation: %w", err)
	}

	cfg := compileConfig{logger: slog.Default()}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	fields := s.Fields()
	rs := &Ruleset{
		fields: make([]*fieldRule, 0, len(fields)),
		logger: cfg.logger,
	}

	for _, field := range fields {
		rule := compileField(field, cfg)
		rs.fields = append(rs.fields, rule)

		if field.Validation != nil && field.Validation.Custom != nil {
			if cross := compileCross(field, cfg); cross != nil {
				rs.cross = append(rs.cross, cross)
			}
		}
	}

	return rs, nil
}

func compileField(field schema.FieldSpec, cfg compileConfig) *fieldRule {
	rule := &fieldRule{
		name:    field.Name,
		label:   fieldLabel(field),
		checker: checkerFor(field.Type),
	}

	rules := field.Validation
	if rules == nil {
		return rule
	}

	rule.required = rules.Required
	rule.min = rules.Min
	rule.max = rules.Max
	rule.minLen = rules.MinLength
	rule.maxLen = rules.MaxLength
	rule.message = strings.TrimSpace(rules.ErrorMessage)

	if rules.Pattern != "" {
		re, err := regexp.Compile(rules.Pattern)
		if err != nil {
			cfg.logger.Warn("validation: pattern does not compile; skipping",
				"field", field.Name, "pattern", rules.Pattern, "error", err)
		} else {
			rule.pattern = re
		}
	}

	if rules.Async != nil {
		binding := &asyncBinding{
			name:   rules.Async.Name,
			params: append([]string(nil), rules.Async.Params...),
		}
		fn, ok := cfg.asyncRegistry[rules.Async.Name]
		if !ok {
			cfg.logger.Warn("validation: async validator is not registered; treating as passing",
				"field", field.Name, "validator", rules.Async.Name)
		} else {
			binding.fn = fn
			rule.async = binding
		}
	}

	return rule
}

func compileCross(field schema.FieldSpec, cfg compileConfig) *crossRule {
	spec := field.Validation.Custom
	fn, ok := cfg.registry[spec.Validator]
	if !ok {
		cfg.logger.Warn("validation: cross-field validator is not registered; treating as passing",
			"field", field.Name, "validator", spec.Validator)
		return nil
	}

	message := ""
	if field.Validation != nil {
		message = strings.TrimSpace(field.Validation.ErrorMessage)
	}
	if message == "" {
		message = fmt.Sprintf("values do not pass the %s check", spec.Validator)
	}

	return &crossRule{
		name:    spec.Validator,
		fn:      fn,
		fields:  append([]string(nil), spec.Fields...),
		message: message,
	}
}

func fieldLabel(field schema.FieldSpec) string {
	if label := strings.TrimSpace(field.Label); label != "" {
		return label
	}
	return field.Name
}
