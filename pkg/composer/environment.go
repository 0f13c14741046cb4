package composer

import (
	"io"
	"strconv"

	"github.com/matzehuels/genomechart/pkg/genomics"
	"github.com/matzehuels/genomechart/pkg/markup"
)

// EnvironmentTag is the tag name of the container holding all charts.
const EnvironmentTag = "epiviz-environment"

// Environment accumulates the charts of one composer under a single
// epiviz-environment tag. Charts are only ever appended; the order of
// [Environment.Charts] is the order of the tag's children.
type Environment struct {
	window genomics.Window
	tag    *markup.Tag
	charts []*Chart
	byID   map[string]*Chart
}

func newEnvironment(w genomics.Window) *Environment {
	return &Environment{
		window: w,
		tag: markup.NewTag(EnvironmentTag,
			markup.A("chr", w.Chr),
			markup.A("start", strconv.FormatInt(w.Start, 10)),
			markup.A("end", strconv.FormatInt(w.End, 10)),
		),
		byID: make(map[string]*Chart),
	}
}

// Append adds c as the last chart and returns the environment.
func (e *Environment) Append(c *Chart) *Environment {
	e.charts = append(e.charts, c)
	e.tag.AppendChild(c.Tag())
	if _, ok := e.byID[c.ID]; !ok {
		e.byID[c.ID] = c
	}
	return e
}

// Window returns the genomic window shared by all charts.
func (e *Environment) Window() genomics.Window { return e.window }

// Len returns the number of charts.
func (e *Environment) Len() int { return len(e.charts) }

// Charts returns the charts in append order.
func (e *Environment) Charts() []*Chart {
	out := make([]*Chart, len(e.charts))
	copy(out, e.charts)
	return out
}

// Chart returns the first chart with the given ID.
func (e *Environment) Chart(id string) (*Chart, bool) {
	c, ok := e.byID[id]
	return c, ok
}

// Tag returns the environment tag with all charts as children.
func (e *Environment) Tag() *markup.Tag { return e.tag }

// Render writes the environment tag as HTML.
func (e *Environment) Render(w io.Writer) error { return e.tag.Render(w) }
