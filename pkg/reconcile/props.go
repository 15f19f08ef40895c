package reconcile

import (
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/verdant-ui/verdant/pkg/dom"
	"github.com/verdant-ui/verdant/pkg/vdom"
)

// directProps are set as live node properties rather than serialized
// attributes, with the zero value written on removal.
var directProps = map[string]any{
	"value":    "",
	"checked":  false,
	"selected": false,
	"disabled": false,
	"muted":    false,
	"open":     false,
}

// patchProps reconciles a live element's attributes, properties, and
// listeners against a new prop map. Unchanged entries produce no
// primitive operations. A failing write is logged and skipped; it never
// aborts the rest of the pass.
func (e *Engine) patchProps(n *dom.Node, old, next vdom.Props) {
	names := make([]string, 0, len(old)+len(next))
	seen := make(map[string]bool, len(old)+len(next))
	for name := range old {
		if !vdom.IsReserved(name) {
			names = append(names, name)
			seen[name] = true
		}
	}
	for name := range next {
		if !vdom.IsReserved(name) && !seen[name] {
			names = append(names, name)
		}
	}
	sort.Strings(names)

	for _, name := range names {
		oldV, hasOld := old[name]
		newV, hasNext := next[name]

		if isEventProp(name) {
			if !hasNext {
				newV = nil
			}
			e.syncListener(n, name, newV)
			continue
		}

		switch {
		case !hasNext:
			e.applyProp(n, name, nil, true)
		case hasOld && propsEqual(oldV, newV):
			// No write for an unchanged value.
		default:
			e.applyProp(n, name, newV, false)
		}
	}
}

// applyProp writes or removes one non-event property. Panics from the
// host tree are contained here so one bad value cannot take down the
// whole pass.
func (e *Engine) applyProp(n *dom.Node, name string, v any, remove bool) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Warn("property write failed",
				"node", n.ID(),
				"prop", name,
				"error", fmt.Sprintf("%v", r),
			)
		}
	}()

	if zero, direct := directProps[name]; direct {
		if remove || v == nil {
			n.SetProperty(name, zero)
		} else {
			n.SetProperty(name, v)
		}
		return
	}

	if remove || v == nil {
		n.RemoveAttribute(attrName(name))
		return
	}

	if an, av, ok := attrText(name, v); ok {
		n.SetAttribute(an, av)
	} else {
		n.RemoveAttribute(attrName(name))
	}
}

// attrText normalizes one prop to its attribute spelling and serialized
// value. ok is false when the value maps to attribute absence (false
// booleans, unsupported style shapes).
func attrText(name string, v any) (string, string, bool) {
	switch name {
	case "class", "className":
		return "class", vdom.ClassString(v), true
	case "style":
		if s, ok := styleString(v); ok {
			return "style", s, true
		}
		return "", "", false
	}

	if b, ok := v.(bool); ok {
		// Boolean attributes: present when true, absent when false.
		if b {
			return name, "", true
		}
		return "", "", false
	}

	return name, propToString(v), true
}

// attrName maps prop names to their attribute spelling.
func attrName(name string) string {
	if name == "className" {
		return "class"
	}
	return name
}

// styleString materializes a style value to the single attribute write
// the host tree accepts.
func styleString(v any) (string, bool) {
	switch s := v.(type) {
	case string:
		return s, true
	case map[string]string:
		return vdom.StyleString(s), true
	default:
		return "", false
	}
}

// isEventProp reports whether a prop name is an event handler slot
// ("onclick", "onInput", ...).
func isEventProp(name string) bool {
	return len(name) > 2 && strings.EqualFold(name[:2], "on")
}

// syncListener reconciles the single engine-owned listener for one
// (node, event) pair. The node carries one stable trampoline that
// dispatches through the registry entry, so assigning a new handler
// (including a closure recreated with fresh captures) updates the entry
// without touching the node. Dispatch always runs the most recently
// assigned handler. A nil or non-callable value removes the
// registration.
func (e *Engine) syncListener(n *dom.Node, name string, v any) {
	event := strings.ToLower(name[2:])
	regs := e.listeners[n]
	reg := regs[event]

	_, callable := adaptHandler(v)
	if v != nil && !callable {
		e.logger.Warn("event prop is not a callable handler",
			"node", n.ID(),
			"event", event,
			"type", fmt.Sprintf("%T", v),
		)
	}

	if v == nil || !callable {
		if reg != nil {
			n.RemoveEventListener(reg.token)
			delete(regs, event)
			if len(regs) == 0 {
				delete(e.listeners, n)
			}
		}
		return
	}

	if reg != nil {
		reg.handler = v
		return
	}

	reg = &listenerReg{handler: v}
	reg.token = n.AddEventListener(event, func(ev dom.Event) {
		if h, ok := adaptHandler(reg.handler); ok {
			h(ev)
		}
	})
	if regs == nil {
		regs = make(map[string]*listenerReg)
		e.listeners[n] = regs
	}
	regs[event] = reg
}

// adaptHandler converts the accepted handler shapes to the host
// signature.
func adaptHandler(v any) (dom.EventHandler, bool) {
	switch fn := v.(type) {
	case dom.EventHandler:
		return fn, fn != nil
	case func(dom.Event):
		return fn, fn != nil
	case func():
		if fn == nil {
			return nil, false
		}
		return func(dom.Event) { fn() }, true
	default:
		return nil, false
	}
}

// propsEqual compares prop values with fast paths for the common scalar
// types. Function values never compare equal here; listeners are
// reconciled through the registry in syncListener instead.
func propsEqual(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	switch av := a.(type) {
	case string:
		bv, ok := b.(string)
		return ok && av == bv
	case bool:
		bv, ok := b.(bool)
		return ok && av == bv
	case int:
		bv, ok := b.(int)
		return ok && av == bv
	case int64:
		bv, ok := b.(int64)
		return ok && av == bv
	case float64:
		bv, ok := b.(float64)
		return ok && av == bv
	}
	if reflect.ValueOf(a).Kind() == reflect.Func || reflect.ValueOf(b).Kind() == reflect.Func {
		return false
	}
	return reflect.DeepEqual(a, b)
}

// propToString serializes a prop value for attribute storage.
func propToString(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case fmt.Stringer:
		return s.String()
	default:
		return fmt.Sprintf("%v", v)
	}
}
