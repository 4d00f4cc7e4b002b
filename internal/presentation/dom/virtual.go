package dom

import (
	"html"
	"slices"
	"sort"
	"strings"
)

var voidTags = map[string]bool{
	"area": true, "br": true, "col": true, "hr": true, "img": true,
	"input": true, "link": true, "meta": true, "source": true, "wbr": true,
}

// VirtualDocument is an in-memory Document. It is not safe for concurrent use.
type VirtualDocument struct {
	ids     map[string]*Node
	body    *Node
	focused *Node
}

// NewDocument creates an empty document with a body element.
func NewDocument() *VirtualDocument {
	d := &VirtualDocument{ids: make(map[string]*Node)}
	d.body = d.newNode("body")
	return d
}

func (d *VirtualDocument) newNode(tag string) *Node {
	return &Node{
		Tag:   strings.ToLower(tag),
		doc:   d,
		attrs: make(map[string]string),
	}
}

// ByID implements Document.
func (d *VirtualDocument) ByID(id string) Element {
	if n, ok := d.ids[id]; ok {
		return n
	}
	return nil
}

// Node returns the concrete node for id, or nil.
func (d *VirtualDocument) Node(id string) *Node {
	return d.ids[id]
}

// CreateElement implements Document.
func (d *VirtualDocument) CreateElement(tag string) Element {
	return d.newNode(tag)
}

// Create is CreateElement returning the concrete node.
func (d *VirtualDocument) Create(tag, id string, classes ...string) *Node {
	n := d.newNode(tag)
	if id != "" {
		n.SetAttr("id", id)
	}
	n.AddClass(classes...)
	return n
}

// Body implements Document.
func (d *VirtualDocument) Body() Element {
	return d.body
}

// BodyNode returns the concrete body node.
func (d *VirtualDocument) BodyNode() *Node {
	return d.body
}

// Focused returns the element that last received focus.
func (d *VirtualDocument) Focused() *Node {
	return d.focused
}

type style struct {
	property string
	value    string
}

// Node is an element of a VirtualDocument.
type Node struct {
	Tag      string
	doc      *VirtualDocument
	parent   *Node
	children []*Node
	classes  []string
	attrs    map[string]string
	styles   []style
	text     string
	markup   string
	hasHTML  bool
	value    string
}

func (n *Node) ID() string { return n.attrs["id"] }

// Text returns the element's own text content.
func (n *Node) Text() string {
	if n.hasHTML {
		return n.markup
	}
	return n.text
}

func (n *Node) SetText(text string) {
	n.detachChildren()
	n.text = text
	n.markup = ""
	n.hasHTML = false
}

func (n *Node) SetHTML(markup string) {
	n.detachChildren()
	n.markup = markup
	n.text = ""
	n.hasHTML = true
}

func (n *Node) Value() string { return n.value }

func (n *Node) SetValue(value string) { n.value = value }

func (n *Node) AddClass(names ...string) {
	for _, name := range names {
		if name != "" && !slices.Contains(n.classes, name) {
			n.classes = append(n.classes, name)
		}
	}
}

func (n *Node) RemoveClass(names ...string) {
	n.classes = slices.DeleteFunc(n.classes, func(c string) bool {
		return slices.Contains(names, c)
	})
}

func (n *Node) HasClass(name string) bool {
	return slices.Contains(n.classes, name)
}

// Classes returns the class list in insertion order.
func (n *Node) Classes() []string {
	return slices.Clone(n.classes)
}

func (n *Node) Attr(name string) string {
	if name == "class" {
		return strings.Join(n.classes, " ")
	}
	return n.attrs[name]
}

func (n *Node) SetAttr(name, value string) {
	if name == "class" {
		n.classes = strings.Fields(value)
		return
	}
	if name == "id" {
		if old := n.attrs["id"]; old != "" && n.doc.ids[old] == n {
			delete(n.doc.ids, old)
		}
		if value != "" {
			n.doc.ids[value] = n
		}
	}
	n.attrs[name] = value
}

// RemoveAttr deletes an attribute.
func (n *Node) RemoveAttr(name string) {
	switch name {
	case "class":
		n.classes = nil
	case "id":
		n.unregisterID()
	}
	delete(n.attrs, name)
}

func (n *Node) unregisterID() {
	if id := n.attrs["id"]; id != "" && n.doc.ids[id] == n {
		delete(n.doc.ids, id)
	}
}

// Style returns an inline style property.
func (n *Node) Style(property string) string {
	for _, s := range n.styles {
		if s.property == property {
			return s.value
		}
	}
	return ""
}

func (n *Node) SetStyle(property, value string) {
	for i, s := range n.styles {
		if s.property == property {
			if value == "" {
				n.styles = slices.Delete(n.styles, i, i+1)
			} else {
				n.styles[i].value = value
			}
			return
		}
	}
	if value != "" {
		n.styles = append(n.styles, style{property: property, value: value})
	}
}

func (n *Node) Focus() {
	n.doc.focused = n
}

func (n *Node) AppendChild(child Element) {
	c, ok := child.(*Node)
	if !ok || c.doc != n.doc {
		return
	}
	if c.parent != nil {
		c.parent.removeChild(c)
	}
	c.parent = n
	n.children = append(n.children, c)
}

// Append adds children and returns n for chaining.
func (n *Node) Append(children ...*Node) *Node {
	for _, c := range children {
		n.AppendChild(c)
	}
	return n
}

// Children returns the element children.
func (n *Node) Children() []*Node {
	return slices.Clone(n.children)
}

// Parent returns the parent node or nil.
func (n *Node) Parent() *Node {
	return n.parent
}

func (n *Node) Remove() {
	if n.parent != nil {
		n.parent.removeChild(n)
		n.parent = nil
	}
	n.unregister()
}

func (n *Node) removeChild(c *Node) {
	n.children = slices.DeleteFunc(n.children, func(x *Node) bool { return x == c })
}

func (n *Node) detachChildren() {
	for _, c := range n.children {
		c.parent = nil
		c.unregister()
	}
	n.children = nil
}

func (n *Node) unregister() {
	if id := n.attrs["id"]; id != "" && n.doc.ids[id] == n {
		delete(n.doc.ids, id)
	}
	if n.doc.focused == n {
		n.doc.focused = nil
	}
	for _, c := range n.children {
		c.unregister()
	}
}

// OuterHTML serializes the node and its subtree.
func (n *Node) OuterHTML() string {
	var b strings.Builder
	n.render(&b)
	return b.String()
}

// InnerHTML serializes the node's content without its own tag.
func (n *Node) InnerHTML() string {
	var b strings.Builder
	n.renderContent(&b)
	return b.String()
}

func (n *Node) render(b *strings.Builder) {
	b.WriteByte('<')
	b.WriteString(n.Tag)

	attrs := make(map[string]string, len(n.attrs)+3)
	for k, v := range n.attrs {
		attrs[k] = v
	}
	if len(n.classes) > 0 {
		attrs["class"] = strings.Join(n.classes, " ")
	}
	if len(n.styles) > 0 {
		parts := make([]string, len(n.styles))
		for i, s := range n.styles {
			parts[i] = s.property + ": " + s.value
		}
		attrs["style"] = strings.Join(parts, "; ")
	}
	if n.Tag == "input" {
		attrs["value"] = n.value
	}

	// id first keeps fragments readable; everything else sorted for stable output.
	if id, ok := attrs["id"]; ok {
		writeAttr(b, "id", id)
		delete(attrs, "id")
	}
	keys := make([]string, 0, len(attrs))
	for k := range attrs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		writeAttr(b, k, attrs[k])
	}
	if n.doc.focused == n {
		b.WriteString(" autofocus")
	}
	b.WriteByte('>')

	if voidTags[n.Tag] {
		return
	}

	n.renderContent(b)
	b.WriteString("</")
	b.WriteString(n.Tag)
	b.WriteByte('>')
}

func (n *Node) renderContent(b *strings.Builder) {
	switch {
	case n.Tag == "textarea":
		b.WriteString(html.EscapeString(n.value))
	case n.hasHTML:
		b.WriteString(n.markup)
	default:
		b.WriteString(html.EscapeString(n.text))
	}
	for _, c := range n.children {
		c.render(b)
	}
}

func writeAttr(b *strings.Builder, name, value string) {
	b.WriteByte(' ')
	b.WriteString(name)
	b.WriteString(`="`)
	b.WriteString(html.EscapeString(value))
	b.WriteByte('"')
}
