// Package dom defines the element handles the engagement widget writes to and
// an in-memory document that renders to HTML for the server host.
package dom

// Element is a handle on one DOM element.
type Element interface {
	ID() string
	Text() string
	SetText(text string)
	// SetHTML replaces the element's children with trusted markup.
	SetHTML(markup string)
	Value() string
	SetValue(value string)
	AddClass(names ...string)
	RemoveClass(names ...string)
	HasClass(name string) bool
	Attr(name string) string
	SetAttr(name, value string)
	// SetStyle sets an inline style property; an empty value removes it.
	SetStyle(property, value string)
	Focus()
	AppendChild(child Element)
	Remove()
}

// Document looks up and creates elements.
type Document interface {
	// ByID returns nil when no element has the id.
	ByID(id string) Element
	CreateElement(tag string) Element
	// Body returns nil when the document has no body.
	Body() Element
}
