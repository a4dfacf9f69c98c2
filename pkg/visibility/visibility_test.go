package visibility

import (
	"testing"

	"github.com/goliatone/go-formengine/pkg/schema"
	"github.com/goliatone/go-formengine/pkg/schema/exprcond"
	"github.com/goliatone/go-formengine/pkg/values"
)

func shippingSchema() *schema.FormSchema {
	return &schema.FormSchema{
		FieldList: []schema.FieldSpec{
			{Name: "shipTo", Type: schema.FieldTypeSelect, Options: []string{"domestic", "international"}},
			{
				Name: "country",
				Type: schema.FieldTypeString,
				Conditional: &schema.ConditionExpr{
					Field:    "shipTo",
					Operator: schema.OperatorNotEquals,
					Value:    "domestic",
				},
			},
		},
	}
}

func TestHideClearsValueInSameCycle(t *testing.T) {
	t.Parallel()

	store := values.NewStore(nil)
	tracker, err := NewTracker(shippingSchema(), store)
	if err != nil {
		t.Fatalf("NewTracker returned error: %v", err)
	}
	defer tracker.Close()

	store.Set("shipTo", "international")
	store.Set("country", "DE")
	if !tracker.IsVisible("country") {
		t.Fatalf("expected country visible for international shipping")
	}

	var clearBatch *values.Change
	store.Subscribe(func(c values.Change) {
		for _, name := range c.Names {
			if name == "country" {
				batch := c
				clearBatch = &batch
			}
		}
	})

	store.Set("shipTo", "domestic")

	if tracker.IsVisible("country") {
		t.Fatalf("expected country hidden for domestic shipping")
	}
	if _, ok := store.Get("country"); ok {
		t.Fatalf("expected country value cleared when hidden")
	}
	// The clear must ride the same reactive cycle, not wait for submit time.
	if clearBatch == nil {
		t.Fatalf("expected a clear notification for country")
	}
	if _, ok := clearBatch.Values["country"]; ok {
		t.Fatalf("clear notification still carries the stale country value")
	}
}

func TestCascadingHidePublishesFinalMapOnce(t *testing.T) {
	t.Parallel()

	// Hiding upstream clears its value, which in turn hides downstream:
	// listeners must see a single map with the whole chain resolved.
	s := &schema.FormSchema{
		FieldList: []schema.FieldSpec{
			{Name: "shipTo", Type: schema.FieldTypeSelect},
			{
				Name: "upstream",
				Type: schema.FieldTypeString,
				Conditional: &schema.ConditionExpr{
					Field:    "shipTo",
					Operator: schema.OperatorNotEquals,
					Value:    "domestic",
				},
			},
			{
				Name: "downstream",
				Type: schema.FieldTypeString,
				Conditional: &schema.ConditionExpr{
					Field:    "upstream",
					Operator: schema.OperatorIsNotEmpty,
				},
			},
		},
	}

	store := values.NewStore(nil)
	tracker, err := NewTracker(s, store)
	if err != nil {
		t.Fatalf("NewTracker returned error: %v", err)
	}
	defer tracker.Close()

	store.Set("shipTo", "international")
	store.Set("upstream", "x")
	if !tracker.IsVisible("downstream") {
		t.Fatalf("expected downstream visible while upstream has a value")
	}

	var published []map[string]bool
	tracker.OnUpdate(func(m map[string]bool) { published = append(published, m) })

	store.Set("shipTo", "domestic")

	if len(published) != 1 {
		t.Fatalf("expected one publication for the batch, got %d: %v", len(published), published)
	}
	last := published[0]
	if last["upstream"] || last["downstream"] {
		t.Fatalf("published map must hide the whole chain, got %v", last)
	}
	if tracker.IsVisible("downstream") {
		t.Fatalf("expected downstream hidden after cascade")
	}
	if _, ok := store.Get("upstream"); ok {
		t.Fatalf("expected upstream value cleared")
	}
}

func TestPublishOnlyOnFlip(t *testing.T) {
	t.Parallel()

	store := values.NewStore(nil)
	tracker, err := NewTracker(shippingSchema(), store)
	if err != nil {
		t.Fatalf("NewTracker returned error: %v", err)
	}
	defer tracker.Close()

	updates := 0
	tracker.OnUpdate(func(map[string]bool) { updates++ })

	// country is already visible (shipTo unset, notEquals "domestic" holds),
	// so typing into unrelated fields must not publish.
	store.Set("firstName", "Ada")
	store.Set("firstName", "Adal")
	store.Set("shipTo", "international")
	if updates != 0 {
		t.Fatalf("expected no updates without a flip, got %d", updates)
	}

	store.Set("shipTo", "domestic")
	if updates != 1 {
		t.Fatalf("expected one update after the flip, got %d", updates)
	}
}

func TestUnknownFieldDefaultsVisible(t *testing.T) {
	t.Parallel()

	store := values.NewStore(nil)
	tracker, err := NewTracker(shippingSchema(), store)
	if err != nil {
		t.Fatalf("NewTracker returned error: %v", err)
	}
	defer tracker.Close()

	if !tracker.IsVisible("neverDeclared") {
		t.Fatalf("fields without a condition default to visible")
	}
}

func TestVisibleWhenRuleWithCompiler(t *testing.T) {
	t.Parallel()

	s := &schema.FormSchema{
		FieldList: []schema.FieldSpec{
			{Name: "plan", Type: schema.FieldTypeSelect},
			{Name: "seats", Type: schema.FieldTypeNumber, VisibleWhen: `plan == "team"`},
		},
	}
	store := values.NewStore(nil)
	tracker, err := NewTracker(s, store, WithRuleCompiler(exprcond.New()))
	if err != nil {
		t.Fatalf("NewTracker returned error: %v", err)
	}
	defer tracker.Close()

	if tracker.IsVisible("seats") {
		t.Fatalf("expected seats hidden before plan is chosen")
	}
	store.Set("plan", "team")
	if !tracker.IsVisible("seats") {
		t.Fatalf("expected seats visible for team plan")
	}
}

func TestVisibleWhenWithoutCompilerFailsOpen(t *testing.T) {
	t.Parallel()

	s := &schema.FormSchema{
		FieldList: []schema.FieldSpec{
			{Name: "plan", Type: schema.FieldTypeSelect},
			{Name: "seats", Type: schema.FieldTypeNumber, VisibleWhen: `plan == "team"`},
		},
	}
	store := values.NewStore(nil)
	tracker, err := NewTracker(s, store)
	if err != nil {
		t.Fatalf("NewTracker returned error: %v", err)
	}
	defer tracker.Close()

	if !tracker.IsVisible("seats") {
		t.Fatalf("expected fail-open visibility without a rule compiler")
	}
}

func TestCloseStopsRecomputation(t *testing.T) {
	t.Parallel()

	store := values.NewStore(nil)
	tracker, err := NewTracker(shippingSchema(), store)
	if err != nil {
		t.Fatalf("NewTracker returned error: %v", err)
	}

	store.Set("shipTo", "international")
	tracker.Close()
	store.Set("shipTo", "domestic")

	if !tracker.IsVisible("country") {
		t.Fatalf("closed tracker must keep its last map")
	}
}
