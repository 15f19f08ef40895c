package render

import (
	"bytes"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/verdant-ui/verdant/internal/errors"
	"github.com/verdant-ui/verdant/pkg/vdom"
)

// Renderer serializes description trees to HTML. Output is deterministic
// (attributes in sorted order) and attribute-compatible with what the
// reconciliation engine writes, so hydrating server markup against the
// same description produces no mismatches.
type Renderer struct {
	maxDepth int
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithMaxDepth caps component resolution depth. The default of 100
// guards against components that render themselves.
func WithMaxDepth(n int) Option {
	return func(r *Renderer) {
		if n > 0 {
			r.maxDepth = n
		}
	}
}

// NewRenderer creates a Renderer.
func NewRenderer(opts ...Option) *Renderer {
	r := &Renderer{maxDepth: 100}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// RenderToString renders a description tree to an HTML string.
func (r *Renderer) RenderToString(node *vdom.VNode) (string, error) {
	var buf bytes.Buffer
	if err := r.RenderToWriter(&buf, node); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// RenderToWriter streams a description tree to the given writer.
func (r *Renderer) RenderToWriter(w io.Writer, node *vdom.VNode) error {
	if err := vdom.Validate(node); err != nil {
		return err
	}
	return r.renderNode(w, node, 0)
}

func (r *Renderer) renderNode(w io.Writer, node *vdom.VNode, depth int) error {
	if node == nil {
		return nil
	}
	if depth > r.maxDepth {
		return fmt.Errorf("render: component nesting exceeds %d levels", r.maxDepth)
	}

	switch node.Kind {
	case vdom.KindText:
		_, err := io.WriteString(w, escapeHTML(node.Text))
		return err
	case vdom.KindElement:
		return r.renderElement(w, node, depth)
	case vdom.KindComponent:
		return r.renderComponent(w, node, depth)
	default:
		return errors.New("E103")
	}
}

func (r *Renderer) renderElement(w io.Writer, node *vdom.VNode, depth int) error {
	if _, err := fmt.Fprintf(w, "<%s", node.Tag); err != nil {
		return err
	}
	if err := renderAttributes(w, node.Props); err != nil {
		return err
	}
	if _, err := io.WriteString(w, ">"); err != nil {
		return err
	}

	if vdom.IsVoidElement(node.Tag) {
		return nil
	}

	for _, child := range node.Children {
		if err := r.renderNode(w, child, depth+1); err != nil {
			return err
		}
	}

	_, err := fmt.Fprintf(w, "</%s>", node.Tag)
	return err
}

// renderComponent resolves component logic to its effective output and
// renders that. Stateless logic is called directly; stateful logic gets
// a throwaway instance, since server renders never patch.
func (r *Renderer) renderComponent(w io.Writer, node *vdom.VNode, depth int) error {
	var out *vdom.VNode
	if node.Fn != nil {
		out = node.Fn(node.Props)
	} else if node.Ctor != nil {
		out = node.Ctor(node.Props).Render()
	}
	if out == nil {
		return errors.New("E302")
	}
	return r.renderNode(w, out, depth+1)
}

// renderAttributes writes an element's props as attributes in sorted
// order. Event handlers and reserved props are not serialized; they are
// attached by the hydrating engine.
func renderAttributes(w io.Writer, props vdom.Props) error {
	if len(props) == 0 {
		return nil
	}

	keys := make([]string, 0, len(props))
	for key := range props {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		if vdom.IsReserved(key) || isEventProp(key) {
			continue
		}
		name, value, ok := attrValue(key, props[key])
		if !ok {
			continue
		}
		if _, err := fmt.Fprintf(w, ` %s="%s"`, name, escapeAttr(value)); err != nil {
			return err
		}
	}
	return nil
}

// attrValue normalizes one prop to its attribute spelling and string
// value, mirroring how the engine writes the live tree.
func attrValue(key string, v any) (name, value string, ok bool) {
	if v == nil {
		return "", "", false
	}

	name = key
	switch key {
	case "class", "className":
		return "class", vdom.ClassString(v), true
	case "style":
		switch s := v.(type) {
		case string:
			return "style", s, true
		case map[string]string:
			return "style", vdom.StyleString(s), true
		}
		return "", "", false
	}

	switch val := v.(type) {
	case bool:
		if !val {
			return "", "", false
		}
		return name, "", true
	case string:
		return name, val, true
	case fmt.Stringer:
		return name, val.String(), true
	default:
		return name, fmt.Sprintf("%v", val), true
	}
}

func isEventProp(name string) bool {
	return len(name) > 2 && strings.EqualFold(name[:2], "on")
}
