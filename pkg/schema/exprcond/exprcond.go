// Package exprcond compiles string visibility rules into schema.Condition
// values using the expr-lang/expr expression language. It complements the
// structured condition tree for schemas authored with free-form rules such as
// `shipTo != "domestic" && len(items) > 0`.
package exprcond

import (
	"fmt"
	"sync"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/goliatone/go-formengine/pkg/schema"
)

// Compiler compiles visibility rules and caches compiled programs, so the
// same rule string is compiled at most once per compiler instance.
type Compiler struct {
	mu    sync.RWMutex
	cache map[string]*vm.Program
}

// New constructs a rule compiler with an empty cache.
func New() *Compiler {
	return &Compiler{cache: make(map[string]*vm.Program)}
}

// Compile turns a rule string into a Condition evaluated against the value
// snapshot. An empty rule compiles to an always-true condition. Compilation
// errors are configuration errors and are returned to the caller; runtime
// evaluation errors make the condition report true (fail-open: the field
// stays visible rather than silently vanishing).
func (c *Compiler) Compile(rule string) (schema.Condition, error) {
	if rule == "" {
		return alwaysVisible{}, nil
	}
	program, err := c.compile(rule)
	if err != nil {
		return nil, fmt.Errorf("exprcond: compile %q: %w", rule, err)
	}
	return &condition{program: program}, nil
}

func (c *Compiler) compile(rule string) (*vm.Program, error) {
	c.mu.RLock()
	if prog, ok := c.cache[rule]; ok {
		c.mu.RUnlock()
		return prog, nil
	}
	c.mu.RUnlock()

	prog, err := expr.Compile(rule,
		expr.AllowUndefinedVariables(),
		expr.AsBool(),
	)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.cache[rule] = prog
	c.mu.Unlock()
	return prog, nil
}

// CacheSize reports the number of compiled rules. Mainly useful in tests.
func (c *Compiler) CacheSize() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.cache)
}

type condition struct {
	program *vm.Program
}

func (c *condition) Evaluate(values schema.Snapshot) bool {
	env := make(map[string]any, len(values))
	for k, v := range values {
		env[k] = v
	}
	out, err := expr.Run(c.program, env)
	if err != nil {
		return true
	}
	ok, isBool := out.(bool)
	if !isBool {
		return true
	}
	return ok
}

type alwaysVisible struct{}

func (alwaysVisible) Evaluate(schema.Snapshot) bool { return true }
