package errors

import (
	"fmt"
	"strings"
)

// Format returns a multi-line, human-readable rendering of the error,
// including location, detail, suggestion, and documentation link.
func (e *VerdantError) Format() string {
	var b strings.Builder

	if e.Code != "" {
		fmt.Fprintf(&b, "ERROR %s: %s\n", e.Code, e.Message)
	} else {
		fmt.Fprintf(&b, "ERROR: %s\n", e.Message)
	}

	if e.Location != nil && e.Location.String() != "" {
		fmt.Fprintf(&b, "\n  %s\n", e.Location.String())
	}

	if e.Detail != "" {
		fmt.Fprintf(&b, "\n  %s\n", e.Detail)
	}

	if e.Wrapped != nil {
		fmt.Fprintf(&b, "\n  Caused by: %v\n", e.Wrapped)
	}

	if e.Suggestion != "" {
		fmt.Fprintf(&b, "\n  Hint: %s\n", e.Suggestion)
	}

	if e.DocURL != "" {
		fmt.Fprintf(&b, "\n  Learn more: %s\n", e.DocURL)
	}

	return b.String()
}
