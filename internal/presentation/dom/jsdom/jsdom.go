//go:build js && wasm

// Package jsdom implements dom.Document and dom.Element over the browser DOM.
package jsdom

import (
	"syscall/js"

	"github.com/AtRiskMedia/folio-go/internal/presentation/dom"
)

// Document wraps window.document.
type Document struct {
	doc js.Value
}

// New returns the current window's document.
func New() *Document {
	return &Document{doc: js.Global().Get("document")}
}

func (d *Document) ByID(id string) dom.Element {
	v := d.doc.Call("getElementById", id)
	if v.IsNull() || v.IsUndefined() {
		return nil
	}
	return &Element{v: v}
}

func (d *Document) CreateElement(tag string) dom.Element {
	return &Element{v: d.doc.Call("createElement", tag)}
}

func (d *Document) Body() dom.Element {
	b := d.doc.Get("body")
	if b.IsNull() || b.IsUndefined() {
		return nil
	}
	return &Element{v: b}
}

// Element wraps a DOM element value.
type Element struct {
	v js.Value
}

// Wrap exposes an arbitrary element value, e.g. an event target.
func Wrap(v js.Value) *Element {
	return &Element{v: v}
}

// JSValue returns the underlying js.Value.
func (e *Element) JSValue() js.Value { return e.v }

func (e *Element) ID() string { return e.v.Get("id").String() }

func (e *Element) Text() string { return e.v.Get("textContent").String() }

func (e *Element) SetText(text string) { e.v.Set("textContent", text) }

func (e *Element) SetHTML(markup string) { e.v.Set("innerHTML", markup) }

func (e *Element) Value() string {
	v := e.v.Get("value")
	if v.IsUndefined() || v.IsNull() {
		return ""
	}
	return v.String()
}

func (e *Element) SetValue(value string) { e.v.Set("value", value) }

func (e *Element) AddClass(names ...string) {
	args := make([]any, len(names))
	for i, n := range names {
		args[i] = n
	}
	e.v.Get("classList").Call("add", args...)
}

func (e *Element) RemoveClass(names ...string) {
	args := make([]any, len(names))
	for i, n := range names {
		args[i] = n
	}
	e.v.Get("classList").Call("remove", args...)
}

func (e *Element) HasClass(name string) bool {
	return e.v.Get("classList").Call("contains", name).Bool()
}

func (e *Element) Attr(name string) string {
	v := e.v.Call("getAttribute", name)
	if v.IsNull() {
		return ""
	}
	return v.String()
}

func (e *Element) SetAttr(name, value string) { e.v.Call("setAttribute", name, value) }

func (e *Element) SetStyle(property, value string) {
	if value == "" {
		e.v.Get("style").Call("removeProperty", property)
		return
	}
	e.v.Get("style").Call("setProperty", property, value)
}

func (e *Element) Focus() { e.v.Call("focus") }

func (e *Element) AppendChild(child dom.Element) {
	if c, ok := child.(*Element); ok {
		e.v.Call("appendChild", c.v)
	}
}

func (e *Element) Remove() { e.v.Call("remove") }

// Is reports whether e and other wrap the same DOM node.
func (e *Element) Is(other js.Value) bool {
	return e.v.Equal(other)
}
