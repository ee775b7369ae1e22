package registry

import (
	"fmt"
	"strings"
)

// Violation names one record that breaks a registry invariant.
type Violation struct {
	Ordinal string
	Slug    string
	Reason  string
}

func (v Violation) String() string {
	return fmt.Sprintf("%s/%s: %s", v.Ordinal, v.Slug, v.Reason)
}

// IntegrityError reports every invariant violation found in a candidate
// record set. Nothing is committed when it is returned.
type IntegrityError struct {
	Violations []Violation
}

func (e *IntegrityError) Error() string {
	parts := make([]string, len(e.Violations))
	for i, v := range e.Violations {
		parts[i] = v.String()
	}
	return fmt.Sprintf("registry integrity: %d violation(s): %s", len(e.Violations), strings.Join(parts, "; "))
}
