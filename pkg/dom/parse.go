package dom

import (
	"fmt"
	"io"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// ParseFragment parses server-rendered HTML and appends the resulting
// live nodes to container. The fragment is parsed in the context of the
// container's tag, so content models (table rows, list items) resolve the
// way a browser would resolve them.
//
// Comments and doctypes are dropped; they have no description equivalent
// and take no part in hydration.
func (d *Document) ParseFragment(r io.Reader, container *Node) error {
	if container == nil || container.kind != ElementNode {
		return fmt.Errorf("dom: parse container must be an element")
	}

	ctx := &html.Node{
		Type:     html.ElementNode,
		Data:     container.tag,
		DataAtom: atom.Lookup([]byte(container.tag)),
	}
	parsed, err := html.ParseFragment(r, ctx)
	if err != nil {
		return fmt.Errorf("dom: parse fragment: %w", err)
	}

	for _, hn := range parsed {
		n := d.fromHTML(hn)
		if n == nil {
			continue
		}
		if err := container.AppendChild(n); err != nil {
			return err
		}
	}
	return nil
}

// fromHTML converts one parsed html.Node subtree into live nodes.
func (d *Document) fromHTML(hn *html.Node) *Node {
	switch hn.Type {
	case html.TextNode:
		return d.CreateText(hn.Data)

	case html.ElementNode:
		n := d.CreateElement(hn.Data)
		for _, a := range hn.Attr {
			n.SetAttribute(a.Key, a.Val)
		}
		for c := hn.FirstChild; c != nil; c = c.NextSibling {
			child := d.fromHTML(c)
			if child != nil {
				n.AppendChild(child)
			}
		}
		return n

	default:
		return nil
	}
}
