// Package errors provides structured, actionable error messages for Verdant.
//
// Errors carry a code, a category, an approximate location inside the
// offending description tree, and a fix suggestion:
//
//	err := errors.New("E101").
//	    WithPath("div/ul/li[2]").
//	    WithSuggestion("Give the element a non-empty tag name")
//
//	fmt.Println(err.Format())
//
// # Error Categories
//
//   - structural: malformed node descriptions; abort the current pass
//   - hydration: server/client shape mismatches; recovered by a full
//     client render
//   - property: a single attribute or listener failed to apply; isolated
//   - component: a component render failed; contained by error boundaries
//   - dom: a host-tree primitive failed; rethrown with description context
package errors
