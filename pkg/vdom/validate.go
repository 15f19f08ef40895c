package vdom

import (
	"fmt"
	"strings"

	"github.com/verdant-ui/verdant/internal/errors"
)

// Validate checks a description tree for structural errors: empty element
// tags, component descriptions without render logic, and unknown kinds.
// The returned error carries the approximate location of the offending
// description as a path like "div/ul/li[2]".
func Validate(node *VNode) error {
	if node == nil {
		return errors.New("E103").WithDetail("nil description")
	}
	return validate(node, "")
}

func validate(node *VNode, path string) error {
	if node == nil {
		return nil
	}

	switch node.Kind {
	case KindText:
		return nil

	case KindElement:
		if strings.TrimSpace(node.Tag) == "" {
			return errors.New("E101").
				WithPath(path).
				WithSuggestion("Give the element a non-empty tag name")
		}
		self := joinPath(path, node.Tag)
		for i, child := range node.Children {
			childPath := self
			if i > 0 {
				childPath = fmt.Sprintf("%s[%d]", self, i)
			}
			if err := validate(child, childPath); err != nil {
				return err
			}
		}
		return nil

	case KindComponent:
		if node.Fn == nil && node.Ctor == nil {
			return errors.New("E102").
				WithPath(path).
				WithSuggestion("Construct components with vdom.Stateless or vdom.Stateful")
		}
		return nil

	default:
		return errors.New("E103").WithPath(path)
	}
}

func joinPath(path, tag string) string {
	if path == "" {
		return tag
	}
	return path + "/" + tag
}
