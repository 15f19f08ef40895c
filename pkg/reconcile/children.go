package reconcile

import (
	"strconv"

	"github.com/verdant-ui/verdant/pkg/dom"
	"github.com/verdant-ui/verdant/pkg/vdom"
)

// childKey returns the reconciliation key for a child description:
// the explicit key when present, the position otherwise. Positional
// fallbacks never collide with explicit keys because they live in a
// separate namespace prefix.
func childKey(desc *vdom.VNode, i int) string {
	if desc.Key != "" {
		return "k:" + desc.Key
	}
	return "i:" + strconv.Itoa(i)
}

// patchChildren reconciles a live element's children against the new
// child descriptions in two passes: match-and-patch, then reorder.
// Matching is by key map, so a permuted keyed list reuses every live
// child and moves nodes instead of rewriting them.
func (e *Engine) patchChildren(parent *dom.Node, next []*vdom.VNode) error {
	oldLive := parent.Children()

	// Index the current children by their committed keys. The first
	// occurrence wins on duplicate keys; later duplicates fall through
	// to replacement.
	byKey := make(map[string]*dom.Node, len(oldLive))
	for i, c := range oldLive {
		key := "i:" + strconv.Itoa(i)
		if desc := e.committed[c]; desc != nil {
			key = childKey(desc, i)
		}
		if _, dup := byKey[key]; !dup {
			byKey[key] = c
		}
	}

	// Pass 1: produce the new child list, patching matches in place and
	// creating fresh subtrees for the rest.
	newLive := make([]*dom.Node, 0, len(next))
	claimed := make(map[*dom.Node]bool, len(next))
	for i, desc := range next {
		key := childKey(desc, i)
		match := byKey[key]
		if match != nil && (claimed[match] || !e.compatible(match, desc)) {
			match = nil
		}

		var (
			node *dom.Node
			err  error
		)
		if match != nil {
			node, err = e.diffNode(parent, match, desc)
		} else {
			node, err = e.createTree(parent.Document(), desc)
		}
		if err != nil {
			return err
		}
		newLive = append(newLive, node)
		claimed[node] = true
	}

	// Remove children with no position in the new list before
	// reordering, releasing their resources first.
	for _, c := range parent.Children() {
		if !claimed[c] {
			e.release(c)
			if err := parent.RemoveChild(c); err != nil {
				return err
			}
		}
	}

	// Pass 2: put survivors and newcomers in order. A node already at
	// its position costs nothing; everything else is one insert-before.
	for i, want := range newLive {
		if parent.ChildAt(i) == want {
			continue
		}
		ref := parent.ChildAt(i)
		if err := parent.InsertBefore(want, ref); err != nil {
			return err
		}
	}
	return nil
}
