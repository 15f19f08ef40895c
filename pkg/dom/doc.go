// Package dom is the host UI toolkit boundary: a live, persistent tree
// mutated exclusively through the primitive operations the reconciliation
// engine issues — create node, set text, set/remove attribute or property,
// add/remove event listener, insert-before, remove-child.
//
// Every primitive is recorded on the owning Document's op log. The log
// serves two consumers: tests assert minimal-mutation properties against
// it ("a second identical pass records zero ops"), and live sessions ship
// it to thin clients as patch frames.
//
// ParseFragment adopts externally rendered HTML (via golang.org/x/net/html)
// into live nodes, which is how server markup enters the engine for
// hydration.
package dom
