package plan

import "fmt"

// ValidationError reports a todo that violates the scheduler's input
// preconditions. Malformed input fails the whole run; nothing is silently
// coerced to a default.
type ValidationError struct {
	TodoID string
	Field  string
	Value  string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("todo %q: invalid %s %q", e.TodoID, e.Field, e.Value)
}
