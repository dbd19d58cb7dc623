package view

import (
	"context"
	"io"

	"github.com/a-h/templ"
	"maragu.dev/gomponents"
)

// GomponentToTemplAdapter wraps a gomponents.Node to satisfy templ.Component,
// so pages built with gomponents render with the request context.
type GomponentToTemplAdapter struct {
	Node gomponents.Node
}

// Render writes nothing once ctx is done.
func (a *GomponentToTemplAdapter) Render(ctx context.Context, w io.Writer) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return a.Node.Render(w)
}

// AdaptGomponentToTempl converts a gomponents.Node into a templ.Component.
func AdaptGomponentToTempl(node gomponents.Node) templ.Component {
	return &GomponentToTemplAdapter{Node: node}
}

// SafeURL returns u for use in an href, replaced by templ's failure URL when
// it carries a scheme other than http, https, mailto or tel.
func SafeURL(u string) string {
	return string(templ.URL(u))
}
