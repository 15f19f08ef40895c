package dom

import (
	"strings"

	"golang.org/x/net/html"
)

// voidTags are elements serialized without a closing tag.
var voidTags = map[string]bool{
	"area": true, "base": true, "br": true, "col": true, "embed": true,
	"hr": true, "img": true, "input": true, "link": true, "meta": true,
	"param": true, "source": true, "track": true, "wbr": true,
}

// OuterHTML serializes the node and its subtree to HTML. Attributes are
// written in sorted order so output is deterministic.
func (n *Node) OuterHTML() string {
	var b strings.Builder
	n.writeHTML(&b)
	return b.String()
}

// InnerHTML serializes only the node's children.
func (n *Node) InnerHTML() string {
	var b strings.Builder
	for _, c := range n.children {
		c.writeHTML(&b)
	}
	return b.String()
}

func (n *Node) writeHTML(b *strings.Builder) {
	if n.kind == TextNode {
		b.WriteString(html.EscapeString(n.text))
		return
	}

	b.WriteByte('<')
	b.WriteString(n.tag)
	for _, name := range n.AttrNames() {
		b.WriteByte(' ')
		b.WriteString(name)
		b.WriteString(`="`)
		b.WriteString(html.EscapeString(n.attrs[name]))
		b.WriteByte('"')
	}
	b.WriteByte('>')

	if voidTags[n.tag] {
		return
	}

	for _, c := range n.children {
		c.writeHTML(b)
	}

	b.WriteString("</")
	b.WriteString(n.tag)
	b.WriteByte('>')
}
