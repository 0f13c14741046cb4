package markup

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// DocumentOption configures [RenderDocument].
type DocumentOption func(*document)

type document struct {
	title       string
	scripts     []string
	stylesheets []string
	imports     []string
}

// WithTitle sets the document title.
func WithTitle(title string) DocumentOption { return func(d *document) { d.title = title } }

// WithScripts adds <script src> elements to the document head, in order.
func WithScripts(urls ...string) DocumentOption {
	return func(d *document) { d.scripts = append(d.scripts, urls...) }
}

// WithStylesheets adds <link rel="stylesheet"> elements to the document head.
func WithStylesheets(urls ...string) DocumentOption {
	return func(d *document) { d.stylesheets = append(d.stylesheets, urls...) }
}

// WithImports adds <link rel="import"> elements for web component bundles.
func WithImports(urls ...string) DocumentOption {
	return func(d *document) { d.imports = append(d.imports, urls...) }
}

// RenderDocument writes a standalone HTML5 document with body as the only
// element of <body>.
func RenderDocument(w io.Writer, body *Tag, opts ...DocumentOption) error {
	d := document{}
	for _, opt := range opts {
		opt(&d)
	}

	root := &html.Node{Type: html.DocumentNode}
	root.AppendChild(&html.Node{Type: html.DoctypeNode, Data: "html"})

	htmlNode := element(atom.Html)
	root.AppendChild(htmlNode)

	head := element(atom.Head)
	htmlNode.AppendChild(head)

	meta := element(atom.Meta)
	meta.Attr = []html.Attribute{{Key: "charset", Val: "utf-8"}}
	head.AppendChild(meta)

	if d.title != "" {
		title := element(atom.Title)
		title.AppendChild(&html.Node{Type: html.TextNode, Data: d.title})
		head.AppendChild(title)
	}
	for _, href := range d.stylesheets {
		link := element(atom.Link)
		link.Attr = []html.Attribute{{Key: "rel", Val: "stylesheet"}, {Key: "href", Val: href}}
		head.AppendChild(link)
	}
	for _, href := range d.imports {
		link := element(atom.Link)
		link.Attr = []html.Attribute{{Key: "rel", Val: "import"}, {Key: "href", Val: href}}
		head.AppendChild(link)
	}
	for _, src := range d.scripts {
		script := element(atom.Script)
		script.Attr = []html.Attribute{{Key: "src", Val: src}}
		head.AppendChild(script)
	}

	bodyNode := element(atom.Body)
	htmlNode.AppendChild(bodyNode)
	if body != nil {
		bodyNode.AppendChild(body.Node())
	}

	if err := html.Render(w, root); err != nil {
		return fmt.Errorf("render document: %w", err)
	}
	return nil
}

func element(a atom.Atom) *html.Node {
	return &html.Node{Type: html.ElementNode, DataAtom: a, Data: a.String()}
}

// ParseFragment parses HTML produced by [Tag.Render] back into tags. Text and
// comment nodes are dropped.
func ParseFragment(r io.Reader) ([]*Tag, error) {
	context := element(atom.Body)
	nodes, err := html.ParseFragment(r, context)
	if err != nil {
		return nil, fmt.Errorf("parse fragment: %w", err)
	}
	var out []*Tag
	for _, n := range nodes {
		if n.Type == html.ElementNode {
			out = append(out, fromNode(n))
		}
	}
	return out, nil
}

func fromNode(n *html.Node) *Tag {
	t := &Tag{name: strings.ToLower(n.Data)}
	for _, a := range n.Attr {
		t.setAttr(Attr{Key: a.Key, Val: a.Val})
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode {
			t.children = append(t.children, fromNode(c))
		}
	}
	return t
}
