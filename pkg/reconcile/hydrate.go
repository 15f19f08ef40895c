package reconcile

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/verdant-ui/verdant/internal/errors"
	"github.com/verdant-ui/verdant/pkg/dom"
	"github.com/verdant-ui/verdant/pkg/render"
	"github.com/verdant-ui/verdant/pkg/vdom"
)

// Hydrate attaches the engine to server-rendered markup inside
// container: it walks the existing live nodes in lockstep with desc,
// adopting matching nodes instead of recreating them, attaching event
// listeners, and correcting recoverable content differences in place.
//
// A structural mismatch (different tag or node kind) or any render error
// abandons hydration: the container is cleared and rendered fresh from
// desc, so the caller always ends with a committed tree.
func (e *Engine) Hydrate(ctx context.Context, container *dom.Node, desc *vdom.VNode) error {
	if container == nil || container.Kind() != dom.ElementNode {
		return fmt.Errorf("reconcile: hydration container must be an element node")
	}
	if e.inPass[container] {
		return fmt.Errorf("reconcile: re-entrant pass against the same root")
	}
	e.inPass[container] = true
	defer delete(e.inPass, container)

	if err := vdom.Validate(desc); err != nil {
		return err
	}

	var span trace.Span
	if e.tracer != nil {
		_, span = e.tracer.Start(ctx, "reconcile.Hydrate")
		defer span.End()
	}

	start := time.Now()
	doc := container.Document()
	mark := doc.Mark()

	desc = e.mergeStatePayload(container, desc)

	err := e.hydrateRoot(container, desc)
	if err != nil {
		e.logger.Warn("hydration abandoned, rendering fresh",
			"error", err,
		)
		e.hstats.Fallbacks++
		if e.metrics != nil {
			e.metrics.hydrationFallbacks.Inc()
		}
		e.clearContainer(container)
		err = e.renderPass(container, desc)
	}

	if e.metrics != nil {
		e.metrics.observePass(string(PhaseHydrate), time.Since(start), doc.OpsSince(mark))
	}
	if span != nil {
		span.SetAttributes(
			attribute.Int("reconcile.hydration_mismatches", e.hstats.Mismatches),
		)
	}

	if ce, ok := err.(*componentError); ok {
		e.emitError(RenderError{
			Err:       ce.Unwrap(),
			Phase:     PhaseHydrate,
			Component: ce.component,
			Time:      time.Now(),
		})
		return errors.FromError(ce.Unwrap(), "E301")
	}
	return err
}

// HydrateIslands hydrates every marked island under root against its
// named description. Islands are isolated: a failure inside one is
// logged and the rest still hydrate. Unmatched island names are
// reported but not fatal.
func (e *Engine) HydrateIslands(ctx context.Context, root *dom.Node, islands map[string]*vdom.VNode) error {
	var firstErr error
	for _, n := range findIslands(root) {
		name, _ := n.Attr(render.IslandAttr)
		desc, ok := islands[name]
		if !ok {
			err := errors.New("E204").WithDetail(fmt.Sprintf("island %q has no registered description", name))
			e.logger.Warn("island not hydrated", "island", name, "error", err)
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		if err := e.Hydrate(ctx, n, desc); err != nil {
			e.logger.Warn("island hydration failed", "island", name, "error", err)
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		n.SetAttribute(render.HydratedAttr, "")
	}
	return firstErr
}

func findIslands(n *dom.Node) []*dom.Node {
	var out []*dom.Node
	if n.Kind() == dom.ElementNode {
		if _, ok := n.Attr(render.IslandAttr); ok {
			out = append(out, n)
		}
	}
	for _, c := range n.Children() {
		out = append(out, findIslands(c)...)
	}
	return out
}

// mergeStatePayload locates the embedded state script, folds its props
// into the root description, and removes the script node. A payload
// that fails to decode is dropped with a warning; hydration proceeds on
// the description's own props.
func (e *Engine) mergeStatePayload(container *dom.Node, desc *vdom.VNode) *vdom.VNode {
	// The script may sit outside the mount element, so search from the
	// top of the tree the container belongs to.
	top := container
	for top.Parent() != nil {
		top = top.Parent()
	}
	script := findStateScript(top)
	if script == nil {
		return desc
	}

	text := ""
	if tn := script.FirstChild(); tn != nil {
		text = tn.Text()
	}
	if p := script.Parent(); p != nil {
		e.release(script)
		p.RemoveChild(script)
	}

	var payload render.StatePayload
	if err := json.Unmarshal([]byte(text), &payload); err != nil {
		e.logger.Warn("discarding state payload",
			"error", errors.New("E203").Wrap(err),
		)
		return desc
	}
	if len(payload.Props) == 0 {
		return desc
	}

	merged := *desc
	merged.Props = make(vdom.Props, len(desc.Props)+len(payload.Props))
	for k, v := range desc.Props {
		merged.Props[k] = v
	}
	for k, v := range payload.Props {
		merged.Props[k] = v
	}
	return &merged
}

func findStateScript(n *dom.Node) *dom.Node {
	if n.Kind() == dom.ElementNode && n.Tag() == "script" {
		if id, _ := n.Attr("id"); id == render.StateScriptID {
			return n
		}
	}
	for _, c := range n.Children() {
		if found := findStateScript(c); found != nil {
			return found
		}
	}
	return nil
}

// hydrateRoot adopts the container's first element or text child as the
// root. Leading and trailing whitespace-only text from the parsed
// markup is ignored.
func (e *Engine) hydrateRoot(container *dom.Node, desc *vdom.VNode) error {
	var live *dom.Node
	for _, c := range container.Children() {
		if c.Kind() == dom.TextNode && strings.TrimSpace(c.Text()) == "" {
			continue
		}
		live = c
		break
	}
	if live == nil {
		return errors.New("E201").WithDetail("container has no server-rendered content")
	}
	return e.hydrateNode(live, desc)
}

// hydrateNode walks one live node and its description in lockstep.
// Text differences are recoverable; kind and tag differences are not.
func (e *Engine) hydrateNode(live *dom.Node, desc *vdom.VNode) error {
	if desc.IsComponent() {
		eff, chain, err := e.resolveChain(nil, desc)
		if err != nil {
			return err
		}
		if err := e.hydrateNode(live, eff); err != nil {
			teardownChain(chain)
			return err
		}
		e.commit(live, desc, chain, nil)
		return nil
	}

	switch {
	case desc.IsText():
		if live.Kind() != dom.TextNode {
			return errors.New("E202").WithDetail(
				fmt.Sprintf("expected text content, found <%s>", live.Tag()))
		}
		if live.Text() != desc.Text {
			e.noteMismatch(live, "text content differs")
			live.SetText(desc.Text)
		}

	case desc.IsElement():
		if live.Kind() != dom.ElementNode {
			return errors.New("E202").WithDetail("expected an element, found text content")
		}
		if !strings.EqualFold(live.Tag(), desc.Tag) {
			return errors.New("E201").
				WithTag(desc.Tag).
				WithDetail(fmt.Sprintf("server markup has <%s>", live.Tag()))
		}
		e.hydrateProps(live, desc.Props)
		if err := e.hydrateChildren(live, desc.Children); err != nil {
			return err
		}
		if desc.Ref != nil {
			desc.Ref(live)
		}

	default:
		return errors.New("E103")
	}

	e.committed[live] = desc
	return nil
}

// hydrateProps brings a live element's attributes in line with its
// description and attaches event listeners. Listeners are always
// attached; attributes are only written when the rendered markup
// disagrees, each disagreement counted as a mismatch.
func (e *Engine) hydrateProps(n *dom.Node, props vdom.Props) {
	desired := make(map[string]string)
	for name, v := range props {
		if vdom.IsReserved(name) {
			continue
		}
		if isEventProp(name) {
			e.syncListener(n, name, v)
			continue
		}
		if _, direct := directProps[name]; direct {
			if v != nil {
				n.SetProperty(name, v)
			}
			continue
		}
		if v == nil {
			continue
		}
		if an, av, ok := attrText(name, v); ok {
			desired[an] = av
		}
	}

	for _, name := range n.AttrNames() {
		if _, direct := directProps[name]; direct {
			// Server markup carries initial values for direct props;
			// the live property is authoritative from here on.
			continue
		}
		if name == render.IslandAttr || name == render.HydratedAttr {
			continue
		}
		want, ok := desired[name]
		cur, _ := n.Attr(name)
		switch {
		case !ok:
			e.noteMismatch(n, "attribute "+name+" not in description")
			n.RemoveAttribute(name)
		case cur != want:
			e.noteMismatch(n, "attribute "+name+" differs")
			n.SetAttribute(name, want)
		}
		delete(desired, name)
	}
	for name, want := range desired {
		e.noteMismatch(n, "attribute "+name+" missing from markup")
		n.SetAttribute(name, want)
	}
}

// hydrateChildren matches children by position. Surplus server nodes
// are released; missing ones are created fresh.
func (e *Engine) hydrateChildren(parent *dom.Node, descs []*vdom.VNode) error {
	live := parent.Children()

	for i, desc := range descs {
		if i < len(live) {
			if err := e.hydrateNode(live[i], desc); err != nil {
				return err
			}
			continue
		}
		node, err := e.createTree(parent.Document(), desc)
		if err != nil {
			return err
		}
		e.noteMismatch(parent, "child missing from markup")
		if err := parent.AppendChild(node); err != nil {
			return errors.New("E401").Wrap(err)
		}
	}

	for _, extra := range live[min(len(descs), len(live)):] {
		e.noteMismatch(parent, "surplus child in markup")
		e.release(extra)
		if err := parent.RemoveChild(extra); err != nil {
			return errors.New("E401").Wrap(err)
		}
	}
	return nil
}

func (e *Engine) noteMismatch(n *dom.Node, detail string) {
	e.hstats.Mismatches++
	if e.metrics != nil {
		e.metrics.hydrationMismatches.Inc()
	}
	e.logger.Warn("hydration mismatch", "node", n.ID(), "detail", detail)
}
