// Package vdom defines the virtual node model: immutable descriptions of
// desired UI produced fresh on every render pass.
//
// A VNode is a tagged union over exactly three variants:
//
//   - Text: a plain string value
//   - Element: a tag name, a property map, ordered children, an optional
//     key, and an optional ref callback
//   - Component: stateless (a render function of props) or stateful
//     (a constructor producing a persistent instance)
//
// Descriptions are built with the element constructors (Div, Span, ...),
// attribute helpers (Class, Href, ...), and event helpers (OnClick, ...):
//
//	vdom.Div(
//	    vdom.Class("counter"),
//	    vdom.Button(vdom.OnClick(increment), "+1"),
//	    vdom.Textf("count: %d", n),
//	)
//
// Descriptions are ephemeral: they exist for the duration of one
// reconciliation pass and are never mutated by the engine after being
// committed.
package vdom
