package render

import (
	"fmt"
	"io"

	"github.com/verdant-ui/verdant/pkg/vdom"
)

// Page describes a full HTML document around a rendered root.
type Page struct {
	Title string
	Lang  string

	// Head is raw markup appended inside <head> (meta tags, stylesheets).
	// The caller owns its escaping.
	Head string

	// Root renders inside the mount element.
	Root *vdom.VNode

	// MountID is the id of the element the client hydrates into.
	// Defaults to "app".
	MountID string

	// State is embedded as the hydration payload when non-nil.
	State *StatePayload

	// Scripts are src URLs emitted as deferred script tags before
	// </body>.
	Scripts []string
}

// WritePage renders a complete document. The mount element wraps the
// root so the hydrating client has a stable container to claim.
func (r *Renderer) WritePage(w io.Writer, p Page) error {
	if p.MountID == "" {
		p.MountID = "app"
	}
	if p.Lang == "" {
		p.Lang = "en"
	}

	if _, err := fmt.Fprintf(w, "<!DOCTYPE html>\n<html lang=%q><head><meta charset=\"utf-8\"><title>%s</title>",
		p.Lang, escapeHTML(p.Title)); err != nil {
		return err
	}
	if p.Head != "" {
		if _, err := io.WriteString(w, p.Head); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintf(w, "</head><body><div id=%q>", p.MountID); err != nil {
		return err
	}

	if p.Root != nil {
		if err := r.RenderToWriter(w, p.Root); err != nil {
			return err
		}
	}

	if _, err := io.WriteString(w, "</div>"); err != nil {
		return err
	}
	if p.State != nil {
		if err := WriteStateScript(w, p.State); err != nil {
			return err
		}
	}
	for _, src := range p.Scripts {
		if _, err := fmt.Fprintf(w, `<script src=%q defer></script>`, src); err != nil {
			return err
		}
	}
	_, err := io.WriteString(w, "</body></html>")
	return err
}
