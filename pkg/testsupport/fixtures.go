// Package testsupport holds fixture helpers shared by the engine's test
// suites.
package testsupport

import (
	"testing"

	"github.com/goliatone/go-formengine/pkg/schema"
)

// MustParseSchema parses a schema document, failing the test on error.
func MustParseSchema(t *testing.T, raw []byte) *schema.FormSchema {
	t.Helper()

	s, err := schema.Parse(raw)
	if err != nil {
		t.Fatalf("parse schema: %v", err)
	}
	return s
}
