package io

import (
	"io"
	"os"

	"github.com/matzehuels/genomechart/pkg/composer"
	"github.com/matzehuels/genomechart/pkg/errors"
	"github.com/matzehuels/genomechart/pkg/markup"
)

// Default locations of the epiviz chart web components.
var (
	DefaultScripts = []string{
		"https://epiviz.github.io/polymer/charts/components/webcomponentsjs/webcomponents-lite.js",
	}
	DefaultImports = []string{
		"https://epiviz.github.io/polymer/charts/components/epiviz-charts/epiviz-charts.html",
	}
)

// DefaultTitle is the document title when none is given.
const DefaultTitle = "genomechart"

// HTMLOptions configures the exported document.
type HTMLOptions struct {
	Title       string
	Scripts     []string
	Imports     []string
	Stylesheets []string
}

// WriteHTML writes env as a standalone HTML document to w.
func WriteHTML(w io.Writer, env *composer.Environment, opts HTMLOptions) error {
	title := opts.Title
	if title == "" {
		title = DefaultTitle
	}
	scripts := opts.Scripts
	if len(scripts) == 0 {
		scripts = DefaultScripts
	}
	imports := opts.Imports
	if len(imports) == 0 {
		imports = DefaultImports
	}
	err := markup.RenderDocument(w, env.Tag(),
		markup.WithTitle(title),
		markup.WithScripts(scripts...),
		markup.WithImports(imports...),
		markup.WithStylesheets(opts.Stylesheets...),
	)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "render document")
	}
	return nil
}

// ExportHTML writes env as a standalone HTML document to the file at path.
func ExportHTML(path string, env *composer.Environment, opts HTMLOptions) error {
	if err := errors.ValidatePath(path); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidPath, err, "create %s", path)
	}
	if err := WriteHTML(f, env, opts); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "close %s", path)
	}
	return nil
}
