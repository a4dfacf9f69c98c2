// Package validation compiles a form schema into an executable Ruleset.
//
// Compilation happens once per schema instance; value changes never
// recompile. A Ruleset runs three stages in strict order: per-field shape
// checks, then registered cross-field checks, then asynchronous checks, so a
// user is never shown a remote-validation failure while cheaper local checks
// still fail. Validation failures are data, not errors: they come back as
// per-field messages in a Result. Configuration mistakes (unknown validator
// names, bad patterns) are logged and fail open so a typo in one rule does
// not block unrelated fields from submitting.
package validation
