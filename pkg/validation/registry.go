package validation

import (
	"context"

	"github.com/goliatone/go-formengine/pkg/schema"
)

// CrossFieldFunc is a synchronous predicate over the value snapshot
// restricted to the named fields. Field order is part of the contract: an
// equality validator over [password, confirm] receives exactly those names in
// that order.
type CrossFieldFunc func(values schema.Snapshot, fields []string) bool

// AsyncFunc is an asynchronous predicate over a field's own value plus the
// companion values named in the schema's params list, resolved from the live
// snapshot at call time. Returning an error marks the field with a generic
// failure message instead of propagating a fault.
type AsyncFunc func(ctx context.Context, value any, companions ...any) (bool, error)

// Registry maps validator names to synchronous cross-field predicates. It is
// supplied by the host and injected into Compile, never ambient, so multiple
// form instances can carry different registries.
type Registry map[string]CrossFieldFunc

// AsyncRegistry maps validator names to asynchronous predicates.
type AsyncRegistry map[string]AsyncFunc
