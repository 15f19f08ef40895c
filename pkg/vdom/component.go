package vdom

// createComponent builds a component VNode. Attr arguments become props,
// node and string arguments become children. Children are passed through
// to the component under the reserved "children" prop.
func createComponent(args []any) *VNode {
	node := &VNode{
		Kind:     KindComponent,
		Props:    make(Props),
		Children: make([]*VNode, 0),
	}
	for _, arg := range args {
		applyArg(node, arg)
	}
	if len(node.Children) > 0 {
		node.Props[PropChildren] = node.Children
	}
	return node
}

// Stateless creates a component description with the function calling
// convention. fn is invoked with the current props on every render pass.
func Stateless(fn RenderFunc, args ...any) *VNode {
	node := createComponent(args)
	node.Fn = fn
	return node
}

// Stateful creates a component description with the instance calling
// convention. ctor runs once per tree position; the instance is reused
// across passes while its (ctor, key) identity is stable, and torn down
// when identity is lost.
func Stateful(ctor Ctor, args ...any) *VNode {
	node := createComponent(args)
	node.Ctor = ctor
	return node
}
