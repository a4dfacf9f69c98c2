package schema

import (
	"errors"
	"strings"
)

// Operator identifies a leaf comparison in a condition expression.
type Operator string

// Supported leaf operators. Unknown operators degrade to equality so that a
// typo in a schema never breaks evaluation.
const (
	OperatorEquals      Operator = "equals"
	OperatorNotEquals   Operator = "notEquals"
	OperatorGreaterThan Operator = "greaterThan"
	OperatorLessThan    Operator = "lessThan"
	OperatorContains    Operator = "contains"
	OperatorNotContains Operator = "notContains"
	OperatorIsEmpty     Operator = "isEmpty"
	OperatorIsNotEmpty  Operator = "isNotEmpty"
)

// Logical operators joining composite condition children.
const (
	LogicalAnd = "and"
	LogicalOr  = "or"
)

// Condition is anything that can decide visibility against a snapshot.
// Implementations must be pure and total: no side effects, no panics.
type Condition interface {
	Evaluate(values Snapshot) bool
}

// ConditionExpr is either a leaf comparison (Field/Operator/Value) or a
// composite joining child conditions with a logical operator. The deprecated
// Equals alias is a synonym for the leaf-equality form; when both Equals and
// Operator are present, Equals wins for backward compatibility.
type ConditionExpr struct {
	Field    string   `json:"field,omitempty" yaml:"field,omitempty"`
	Operator Operator `json:"operator,omitempty" yaml:"operator,omitempty"`
	Value    any      `json:"value,omitempty" yaml:"value,omitempty"`

	// Equals is the deprecated leaf-equality alias. A pointer so presence is
	// distinguishable from an explicit null.
	Equals *any `json:"equals,omitempty" yaml:"equals,omitempty"`

	Conditions      []ConditionExpr `json:"conditions,omitempty" yaml:"conditions,omitempty"`
	LogicalOperator string          `json:"logicalOperator,omitempty" yaml:"logicalOperator,omitempty"`
}

var _ Condition = (*ConditionExpr)(nil)

// Evaluate walks the expression depth-first against the snapshot. It is pure
// and total: malformed nodes evaluate to true (fail-open, the field stays
// visible) and unknown operators fall back to equality.
func (c *ConditionExpr) Evaluate(values Snapshot) bool {
	if c == nil {
		return true
	}
	if len(c.Conditions) > 0 {
		return c.evaluateComposite(values)
	}
	return c.evaluateLeaf(values)
}

func (c *ConditionExpr) evaluateComposite(values Snapshot) bool {
	or := strings.EqualFold(c.LogicalOperator, LogicalOr)
	for i := range c.Conditions {
		ok := c.Conditions[i].Evaluate(values)
		if or && ok {
			return true
		}
		if !or && !ok {
			return false
		}
	}
	return !or
}

func (c *ConditionExpr) evaluateLeaf(values Snapshot) bool {
	if strings.TrimSpace(c.Field) == "" {
		// Malformed leaf: a condition with no field cannot gate anything.
		return true
	}
	current := values[c.Field]

	if c.Equals != nil {
		return looseEqual(current, *c.Equals)
	}

	switch c.Operator {
	case OperatorNotEquals:
		return !looseEqual(current, c.Value)
	case OperatorGreaterThan:
		a, aok := ToNumber(current)
		b, bok := ToNumber(c.Value)
		return aok && bok && a > b
	case OperatorLessThan:
		a, aok := ToNumber(current)
		b, bok := ToNumber(c.Value)
		return aok && bok && a < b
	case OperatorContains:
		return containsValue(current, c.Value)
	case OperatorNotContains:
		return !containsValue(current, c.Value)
	case OperatorIsEmpty:
		return IsEmpty(current)
	case OperatorIsNotEmpty:
		return !IsEmpty(current)
	default:
		// OperatorEquals, empty, and anything unrecognised.
		return looseEqual(current, c.Value)
	}
}

// check validates the expression shape at schema load time. Composite nodes
// recurse; leaves require a field name.
func (c *ConditionExpr) check() error {
	if c == nil {
		return nil
	}
	if len(c.Conditions) > 0 {
		if c.LogicalOperator != "" &&
			!strings.EqualFold(c.LogicalOperator, LogicalAnd) &&
			!strings.EqualFold(c.LogicalOperator, LogicalOr) {
			return errors.New("condition: logicalOperator must be \"and\" or \"or\"")
		}
		for i := range c.Conditions {
			if err := c.Conditions[i].check(); err != nil {
				return err
			}
		}
		return nil
	}
	if strings.TrimSpace(c.Field) == "" {
		return errors.New("condition: leaf is missing a field")
	}
	return nil
}
