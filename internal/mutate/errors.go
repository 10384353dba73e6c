package mutate

import (
	"fmt"
	"sort"
	"strings"
)

// Errors maps a form field to its message. Submission proceeds only when it
// is empty.
type Errors map[string]string

func (e Errors) Empty() bool { return len(e) == 0 }

// Fields returns the field names in a stable order.
func (e Errors) Fields() []string {
	out := make([]string, 0, len(e))
	for k := range e {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

type ValidationError struct {
	Kind   string
	Fields Errors
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, k := range e.Fields.Fields() {
		parts = append(parts, fmt.Sprintf("%s: %s", k, e.Fields[k]))
	}
	return fmt.Sprintf("invalid %s: %s", e.Kind, strings.Join(parts, "; "))
}

func (e *ValidationError) FieldErrors() map[string]string { return e.Fields }
