package templates

import (
	"strings"

	"github.com/AtRiskMedia/folio-go/internal/application/engagement"
	"github.com/AtRiskMedia/folio-go/internal/presentation/dom"
)

// Fragments collects htmx out-of-band swaps for one response.
type Fragments struct {
	b strings.Builder
}

// Replace swaps each node into the page by id.
func (f *Fragments) Replace(nodes ...*dom.Node) *Fragments {
	for _, n := range nodes {
		if n == nil {
			continue
		}
		n.SetAttr("hx-swap-oob", "true")
		f.b.WriteString(n.OuterHTML())
		n.RemoveAttr("hx-swap-oob")
	}
	return f
}

// Toasts appends the given toasts to the page's toast container.
func (f *Fragments) Toasts(toasts []dom.Element) *Fragments {
	var inner strings.Builder
	for _, t := range toasts {
		if n, ok := t.(*dom.Node); ok {
			inner.WriteString(n.OuterHTML())
		}
	}
	if inner.Len() == 0 {
		return f
	}
	f.b.WriteString(`<div hx-swap-oob="beforeend:#` + engagement.IDToastContainer + `">`)
	f.b.WriteString(inner.String())
	f.b.WriteString(`</div>`)
	return f
}

// Empty reports whether nothing was collected.
func (f *Fragments) Empty() bool { return f.b.Len() == 0 }

func (f *Fragments) String() string { return f.b.String() }
