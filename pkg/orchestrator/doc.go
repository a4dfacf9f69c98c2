// Package orchestrator walks a multi-section schema as an ordered sequence of
// steps. Each step exposes a sub-schema holding only that section's fields,
// so per-step validation never enforces constraints for fields that are not
// on screen. Step submissions merge into a cumulative payload; completing the
// final step hands the merged payload to the host's submit callback exactly
// once.
package orchestrator
