package reconcile

import (
	"strings"

	"github.com/verdant-ui/verdant/internal/errors"
	"github.com/verdant-ui/verdant/pkg/dom"
	"github.com/verdant-ui/verdant/pkg/vdom"
)

// effectiveOld returns the non-component description that last produced
// the live node's content: the innermost component output when a chain is
// attached, the committed description otherwise.
func (e *Engine) effectiveOld(live *dom.Node) *vdom.VNode {
	if chain := e.chains[live]; len(chain) > 0 {
		return chain[len(chain)-1].rendered
	}
	return e.committed[live]
}

// canPatch decides reuse vs. replace for one live node. Text targets need
// a live text node; element targets need a live element whose tag matches
// case-insensitively. When both descriptions carry keys the keys must
// match; a key on only one side forces replacement.
func canPatch(live *dom.Node, old, next *vdom.VNode) bool {
	if live == nil || old == nil || next == nil {
		return false
	}
	switch {
	case next.IsText():
		return old.IsText() && live.Kind() == dom.TextNode
	case next.IsElement():
		if !old.IsElement() || live.Kind() != dom.ElementNode {
			return false
		}
		if !strings.EqualFold(live.Tag(), next.Tag) {
			return false
		}
		if old.Key != "" || next.Key != "" {
			return old.Key == next.Key
		}
		return true
	default:
		return false
	}
}

// compatible reports whether a live node can be patched in place by desc,
// including component identity when desc is a component.
func (e *Engine) compatible(live *dom.Node, desc *vdom.VNode) bool {
	if desc == nil {
		return false
	}
	if desc.IsComponent() {
		chain := e.chains[live]
		return len(chain) > 0 && chainCompatible(chain[0], desc)
	}
	return canPatch(live, e.effectiveOld(live), desc)
}

// diffNode reconciles live (a child of parent) against next, patching in
// place when compatible and replacing the subtree otherwise. It returns
// the node now occupying the position.
func (e *Engine) diffNode(parent, live *dom.Node, next *vdom.VNode) (*dom.Node, error) {
	doc := live.Document()
	oldChain := e.chains[live]
	oldEff := e.effectiveOld(live)
	// The pass owns the chain from here; commit re-attaches it. Without
	// this, releasing the node on replacement would tear down instances
	// the new chain still holds.
	delete(e.chains, live)

	var (
		eff   *vdom.VNode
		chain []*instance
		err   error
	)

	if next.IsComponent() {
		if len(oldChain) > 0 && chainCompatible(oldChain[0], next) {
			eff, chain, err = e.resolveChain(oldChain, next)
		} else {
			teardownChain(oldChain)
			eff, chain, err = e.resolveChain(nil, next)
		}
		if err != nil {
			// The node's own chain failed to render; a shallower level
			// of the same chain may be a boundary.
			if ce, ok := err.(*componentError); ok {
				node, chain2, herr := e.catchAtBoundary(doc, parent, live, chain, ce)
				if herr != nil {
					return live, herr
				}
				e.commit(node, next, chain2, live)
				return node, nil
			}
			return live, err
		}
	} else {
		if len(oldChain) > 0 {
			// Component identity lost to a plain description.
			teardownChain(oldChain)
		}
		eff = next
	}

	node, err := e.patchOrReplace(parent, live, oldEff, eff)
	if err != nil {
		if ce, ok := err.(*componentError); ok && len(chain) > 0 {
			// A descendant component failed; this node's chain is the
			// nearest set of candidate boundaries on the way up.
			fallbackNode, chain2, herr := e.catchAtBoundary(doc, parent, node, chain, ce)
			if herr != nil {
				return node, herr
			}
			e.commit(fallbackNode, next, chain2, live)
			return fallbackNode, nil
		}
		return node, err
	}

	e.commit(node, next, chain, live)
	return node, nil
}

// commit records the association and instance chain for the node now at
// the position. prev is the node previously at the position; its chain
// entry moves when the node was replaced.
func (e *Engine) commit(node *dom.Node, desc *vdom.VNode, chain []*instance, prev *dom.Node) {
	if node == nil {
		return
	}
	if prev != nil && prev != node {
		delete(e.chains, prev)
	}
	e.committed[node] = desc
	if len(chain) > 0 {
		e.chains[node] = chain
	} else {
		delete(e.chains, node)
	}
}

// patchOrReplace applies an effective (non-component) description to a
// live node: in-place patch when compatible, subtree replacement
// otherwise.
func (e *Engine) patchOrReplace(parent, live *dom.Node, oldEff, eff *vdom.VNode) (*dom.Node, error) {
	if canPatch(live, oldEff, eff) {
		if eff.IsText() {
			// Avoid redundant writes: only touch content that changed.
			if live.Text() != eff.Text {
				live.SetText(eff.Text)
			}
			return live, nil
		}

		var oldProps vdom.Props
		if oldEff != nil {
			oldProps = oldEff.Props
		}
		e.patchProps(live, oldProps, eff.Props)
		if err := e.patchChildren(live, eff.Children); err != nil {
			return live, err
		}
		return live, nil
	}

	node, err := e.createTree(live.Document(), eff)
	if err != nil {
		return live, err
	}
	// Release first: listeners must be unregistered while their node is
	// still attached.
	e.release(live)
	if err := parent.ReplaceChild(node, live); err != nil {
		return live, errors.New("E401").Wrap(err).WithTag(eff.Tag)
	}
	return node, nil
}

// createTree constructs a fresh live subtree from a description. No
// diffing is performed; every node, attribute, and listener is new.
func (e *Engine) createTree(doc *dom.Document, desc *vdom.VNode) (*dom.Node, error) {
	switch {
	case desc.IsText():
		n := doc.CreateText(desc.Text)
		e.committed[n] = desc
		return n, nil

	case desc.IsElement():
		if strings.TrimSpace(desc.Tag) == "" {
			return nil, errors.New("E101").WithTag(desc.Tag)
		}
		n := doc.CreateElement(desc.Tag)
		e.patchProps(n, nil, desc.Props)
		for _, child := range desc.Children {
			cn, err := e.createTree(doc, child)
			if err != nil {
				return nil, err
			}
			if err := n.AppendChild(cn); err != nil {
				return nil, errors.New("E401").Wrap(err).WithTag(desc.Tag)
			}
		}
		e.committed[n] = desc
		if desc.Ref != nil {
			desc.Ref(n)
		}
		return n, nil

	case desc.IsComponent():
		eff, chain, err := e.resolveChain(nil, desc)
		var n *dom.Node
		if err == nil {
			n, err = e.createTree(doc, eff)
		}
		if err != nil {
			ce, ok := err.(*componentError)
			if !ok {
				return nil, err
			}
			n, chain, err = e.catchAtBoundary(doc, nil, nil, chain, ce)
			if err != nil {
				return nil, err
			}
		}
		e.committed[n] = desc
		e.chains[n] = chain
		return n, nil

	default:
		return nil, errors.New("E103")
	}
}
