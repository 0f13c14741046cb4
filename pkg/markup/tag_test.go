package markup

import (
	"bytes"
	"strings"
	"testing"
)

func TestNewTag(t *testing.T) {
	tag := NewTag("epiviz-json-line-plot", A("class", "charts"), A("id", "ms1"), A("class", "override"))

	if tag.Name() != "epiviz-json-line-plot" {
		t.Errorf("Name() = %q", tag.Name())
	}
	if v, ok := tag.Attr("class"); !ok || v != "override" {
		t.Errorf("Attr(class) = %q, %v", v, ok)
	}
	if _, ok := tag.Attr("missing"); ok {
		t.Error("Attr(missing) should not be found")
	}

	attrs := tag.Attrs()
	if len(attrs) != 2 || attrs[0].Key != "class" || attrs[1].Key != "id" {
		t.Errorf("Attrs() = %+v", attrs)
	}
	attrs[0].Val = "mutated"
	if v, _ := tag.Attr("class"); v != "override" {
		t.Error("Attrs() should return a copy")
	}
}

func TestAppendChild(t *testing.T) {
	env := NewTag("epiviz-environment")
	a := NewTag("epiviz-json-blocks-track", A("id", "a"))
	b := NewTag("epiviz-json-line-plot", A("id", "b"))

	if got := env.AppendChild(a).AppendChild(b); got != env {
		t.Error("AppendChild should return the receiver")
	}
	if env.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", env.Len())
	}
	children := env.Children()
	if children[0] != a || children[1] != b {
		t.Error("children out of order")
	}

	children[0] = nil
	if env.Children()[0] != a {
		t.Error("Children() should return a copy")
	}
}

func TestRenderEscapesJSON(t *testing.T) {
	payload := `{"rows":[1,2],"label":"<b>&</b>"}`
	tag := NewTag("epiviz-json-line-plot", A("data", payload))

	out := tag.String()
	if strings.Contains(out, `"rows"`) {
		t.Errorf("quotes should be escaped: %s", out)
	}
	if !strings.HasPrefix(out, "<epiviz-json-line-plot") || !strings.HasSuffix(out, "</epiviz-json-line-plot>") {
		t.Errorf("unexpected rendering: %s", out)
	}

	parsed, err := ParseFragment(strings.NewReader(out))
	if err != nil {
		t.Fatalf("ParseFragment error: %v", err)
	}
	if len(parsed) != 1 {
		t.Fatalf("parsed %d tags, want 1", len(parsed))
	}
	if v, _ := parsed[0].Attr("data"); v != payload {
		t.Errorf("round-tripped attribute = %q, want %q", v, payload)
	}
}

func TestParseFragmentNested(t *testing.T) {
	env := NewTag("epiviz-environment", A("chr", "chr1"))
	env.AppendChild(NewTag("epiviz-json-blocks-track", A("id", "a")))
	env.AppendChild(NewTag("epiviz-json-line-track", A("id", "b")))

	parsed, err := ParseFragment(strings.NewReader(env.String()))
	if err != nil {
		t.Fatalf("ParseFragment error: %v", err)
	}
	if len(parsed) != 1 || parsed[0].Len() != 2 {
		t.Fatalf("unexpected tree: %+v", parsed)
	}
	if id, _ := parsed[0].Children()[1].Attr("id"); id != "b" {
		t.Errorf("second child id = %q", id)
	}
}

func TestRenderDocument(t *testing.T) {
	env := NewTag("epiviz-environment")
	var buf bytes.Buffer
	err := RenderDocument(&buf, env,
		WithTitle("Peaks & signal"),
		WithScripts("https://example.org/epiviz.js"),
		WithStylesheets("style.css"),
		WithImports("charts.html"),
	)
	if err != nil {
		t.Fatalf("RenderDocument error: %v", err)
	}

	out := buf.String()
	for _, want := range []string{
		"<!DOCTYPE html>",
		"<title>Peaks &amp; signal</title>",
		`<script src="https://example.org/epiviz.js"></script>`,
		`<link rel="stylesheet" href="style.css"/>`,
		`<link rel="import" href="charts.html"/>`,
		"<body><epiviz-environment></epiviz-environment></body>",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("document missing %q:\n%s", want, out)
		}
	}
}
