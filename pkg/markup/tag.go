// Package markup builds and serializes the element trees embedded into
// rendered documents.
//
// A [Tag] is a lightweight element node: a name, ordered attributes and
// ordered children. Trees are serialized as HTML through golang.org/x/net/html,
// which takes care of attribute escaping, so JSON payloads can be stored in
// attributes verbatim.
//
// Tags are built once and then only grown with [Tag.AppendChild]; attributes
// are fixed at construction.
package markup

import (
	"bytes"
	"io"

	"golang.org/x/net/html"
)

// Attr is a single element attribute.
type Attr struct {
	Key string
	Val string
}

// A constructs an attribute.
func A(key, val string) Attr { return Attr{Key: key, Val: val} }

// Tag is an element node.
type Tag struct {
	name     string
	attrs    []Attr
	children []*Tag
}

// NewTag creates a tag with the given name and attributes. Attributes keep
// their order when rendered. Later duplicates of a key replace earlier ones.
func NewTag(name string, attrs ...Attr) *Tag {
	t := &Tag{name: name}
	for _, a := range attrs {
		t.setAttr(a)
	}
	return t
}

func (t *Tag) setAttr(a Attr) {
	for i := range t.attrs {
		if t.attrs[i].Key == a.Key {
			t.attrs[i].Val = a.Val
			return
		}
	}
	t.attrs = append(t.attrs, a)
}

// Name returns the tag name.
func (t *Tag) Name() string { return t.name }

// Attr returns the value of the named attribute.
func (t *Tag) Attr(key string) (string, bool) {
	for _, a := range t.attrs {
		if a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

// Attrs returns a copy of the attributes in order.
func (t *Tag) Attrs() []Attr {
	out := make([]Attr, len(t.attrs))
	copy(out, t.attrs)
	return out
}

// Children returns a copy of the child list.
func (t *Tag) Children() []*Tag {
	out := make([]*Tag, len(t.children))
	copy(out, t.children)
	return out
}

// Len returns the number of children.
func (t *Tag) Len() int { return len(t.children) }

// AppendChild adds child as the last child of t and returns t.
func (t *Tag) AppendChild(child *Tag) *Tag {
	t.children = append(t.children, child)
	return t
}

// Node converts the tree rooted at t into an html.Node tree.
func (t *Tag) Node() *html.Node {
	n := &html.Node{Type: html.ElementNode, Data: t.name}
	for _, a := range t.attrs {
		n.Attr = append(n.Attr, html.Attribute{Key: a.Key, Val: a.Val})
	}
	for _, c := range t.children {
		n.AppendChild(c.Node())
	}
	return n
}

// Render writes the tree rooted at t as HTML to w.
func (t *Tag) Render(w io.Writer) error {
	return html.Render(w, t.Node())
}

// String returns the HTML serialization of t.
func (t *Tag) String() string {
	var buf bytes.Buffer
	if err := t.Render(&buf); err != nil {
		return ""
	}
	return buf.String()
}
