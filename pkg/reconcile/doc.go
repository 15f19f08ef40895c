// Package reconcile turns immutable description trees into minimal
// mutations of a live dom tree.
//
// An Engine owns all reconciliation state for its roots: the last
// committed description per live node, the single engine-attached
// listener per (node, event) pair, and the component instance chains
// behind component-backed nodes. Render diffs a description against the
// committed tree and patches in place wherever node identity allows;
// Hydrate adopts server-rendered markup instead of rebuilding it.
//
// Keyed children are matched by key map, so list reorders move live
// nodes rather than rewriting their contents. Component render errors
// unwind to the nearest enclosing error boundary, which swaps in its
// fallback output; uncontained errors surface as host-level events and
// leave sibling subtrees untouched.
package reconcile
