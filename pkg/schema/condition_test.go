package schema

import "testing"

func TestEvaluateLeafOperators(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name   string
		expr   ConditionExpr
		values Snapshot
		want   bool
	}{
		{
			name:   "equals string",
			expr:   ConditionExpr{Field: "plan", Operator: OperatorEquals, Value: "pro"},
			values: Snapshot{"plan": "pro"},
			want:   true,
		},
		{
			name:   "default operator is equality",
			expr:   ConditionExpr{Field: "plan", Value: "pro"},
			values: Snapshot{"plan": "pro"},
			want:   true,
		},
		{
			name:   "unknown operator falls back to equality",
			expr:   ConditionExpr{Field: "plan", Operator: "matches", Value: "pro"},
			values: Snapshot{"plan": "pro"},
			want:   true,
		},
		{
			name:   "notEquals",
			expr:   ConditionExpr{Field: "shipTo", Operator: OperatorNotEquals, Value: "domestic"},
			values: Snapshot{"shipTo": "international"},
			want:   true,
		},
		{
			name:   "numeric equality across types",
			expr:   ConditionExpr{Field: "count", Operator: OperatorEquals, Value: 3},
			values: Snapshot{"count": 3.0},
			want:   true,
		},
		{
			name:   "boolean equals string form",
			expr:   ConditionExpr{Field: "agree", Operator: OperatorEquals, Value: true},
			values: Snapshot{"agree": "true"},
			want:   true,
		},
		{
			name:   "boolean never equals a non-boolean string",
			expr:   ConditionExpr{Field: "agree", Operator: OperatorEquals, Value: true},
			values: Snapshot{"agree": "no"},
			want:   false,
		},
		{
			name:   "boolean equals numeric one",
			expr:   ConditionExpr{Field: "agree", Operator: OperatorEquals, Value: true},
			values: Snapshot{"agree": 1},
			want:   true,
		},
		{
			name:   "greaterThan numeric",
			expr:   ConditionExpr{Field: "age", Operator: OperatorGreaterThan, Value: 17},
			values: Snapshot{"age": 21},
			want:   true,
		},
		{
			name:   "greaterThan non-numeric is false",
			expr:   ConditionExpr{Field: "age", Operator: OperatorGreaterThan, Value: 17},
			values: Snapshot{"age": "abc"},
			want:   false,
		},
		{
			name:   "lessThan",
			expr:   ConditionExpr{Field: "qty", Operator: OperatorLessThan, Value: 10},
			values: Snapshot{"qty": "3"},
			want:   true,
		},
		{
			name:   "contains array membership",
			expr:   ConditionExpr{Field: "tags", Operator: OperatorContains, Value: "beta"},
			values: Snapshot{"tags": []any{"alpha", "beta"}},
			want:   true,
		},
		{
			name:   "contains substring",
			expr:   ConditionExpr{Field: "email", Operator: OperatorContains, Value: "@corp."},
			values: Snapshot{"email": "dev@corp.example"},
			want:   true,
		},
		{
			name:   "notContains",
			expr:   ConditionExpr{Field: "tags", Operator: OperatorNotContains, Value: "beta"},
			values: Snapshot{"tags": []string{"alpha"}},
			want:   true,
		},
		{
			name:   "isEmpty nil",
			expr:   ConditionExpr{Field: "note", Operator: OperatorIsEmpty},
			values: Snapshot{},
			want:   true,
		},
		{
			name:   "isEmpty empty array",
			expr:   ConditionExpr{Field: "files", Operator: OperatorIsEmpty},
			values: Snapshot{"files": []any{}},
			want:   true,
		},
		{
			name:   "isNotEmpty",
			expr:   ConditionExpr{Field: "note", Operator: OperatorIsNotEmpty},
			values: Snapshot{"note": "hi"},
			want:   true,
		},
		{
			name:   "leaf without field is fail-open",
			expr:   ConditionExpr{Operator: OperatorEquals, Value: "x"},
			values: Snapshot{},
			want:   true,
		},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := tc.expr.Evaluate(tc.values); got != tc.want {
				t.Fatalf("Evaluate = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestEvaluateEqualsAliasPrecedence(t *testing.T) {
	t.Parallel()

	want := any("legacy")
	expr := ConditionExpr{
		Field:    "mode",
		Operator: OperatorNotEquals,
		Value:    "legacy",
		Equals:   &want,
	}
	// The alias wins: equality against "legacy", not the notEquals path.
	if !expr.Evaluate(Snapshot{"mode": "legacy"}) {
		t.Fatalf("expected equals alias to take precedence over operator")
	}
	if expr.Evaluate(Snapshot{"mode": "modern"}) {
		t.Fatalf("expected alias equality to fail for different value")
	}
}

func TestEvaluateComposite(t *testing.T) {
	t.Parallel()

	and := ConditionExpr{
		Conditions: []ConditionExpr{
			{Field: "a", Operator: OperatorEquals, Value: 1},
			{Field: "b", Operator: OperatorEquals, Value: 2},
		},
	}
	or := ConditionExpr{
		LogicalOperator: LogicalOr,
		Conditions: []ConditionExpr{
			{Field: "a", Operator: OperatorEquals, Value: 1},
			{Field: "b", Operator: OperatorEquals, Value: 2},
		},
	}

	both := Snapshot{"a": 1, "b": 2}
	one := Snapshot{"a": 1, "b": 99}
	neither := Snapshot{"a": 0, "b": 0}

	if !and.Evaluate(both) {
		t.Fatalf("and: expected true when all children hold")
	}
	if and.Evaluate(one) {
		t.Fatalf("and: expected false when one child fails")
	}
	if !or.Evaluate(one) {
		t.Fatalf("or: expected true when one child holds")
	}
	if or.Evaluate(neither) {
		t.Fatalf("or: expected false when no child holds")
	}
}

func TestEvaluateNestedComposite(t *testing.T) {
	t.Parallel()

	expr := ConditionExpr{
		LogicalOperator: LogicalOr,
		Conditions: []ConditionExpr{
			{Field: "role", Operator: OperatorEquals, Value: "admin"},
			{
				Conditions: []ConditionExpr{
					{Field: "role", Operator: OperatorEquals, Value: "editor"},
					{Field: "approved", Operator: OperatorEquals, Value: true},
				},
			},
		},
	}

	if !expr.Evaluate(Snapshot{"role": "admin"}) {
		t.Fatalf("expected admin branch to pass")
	}
	if !expr.Evaluate(Snapshot{"role": "editor", "approved": true}) {
		t.Fatalf("expected editor+approved branch to pass")
	}
	if expr.Evaluate(Snapshot{"role": "editor", "approved": false}) {
		t.Fatalf("expected editor without approval to fail")
	}
}

func TestEvaluateNilExpr(t *testing.T) {
	t.Parallel()

	var expr *ConditionExpr
	if !expr.Evaluate(Snapshot{}) {
		t.Fatalf("nil condition must evaluate true")
	}
}
