// Package display presents composed chart environments.
//
// Two [composer.Displayer] implementations are provided:
//
//   - [File] writes the environment as a standalone HTML document.
//   - [Server] serves the environment over HTTP. Each Display call replaces
//     the served environment, so a long-running server can show the result
//     of the latest plot session.
//
// # Routes
//
//	GET /              standalone HTML document
//	GET /environment   bare epiviz-environment tag
//	GET /charts        JSON chart summaries
//	GET /charts/{id}   single chart tag
package display

import (
	"context"
	"encoding/json"

	"github.com/matzehuels/genomechart/pkg/composer"
	gcio "github.com/matzehuels/genomechart/pkg/io"
)

// Summary describes one chart of an environment.
type Summary struct {
	ID           string `json:"id"`
	Tag          string `json:"tag"`
	Rows         int    `json:"rows"`
	Measurements int    `json:"measurements"`
	HasColumns   bool   `json:"has_columns"`
}

// Summarize returns a summary per chart, in environment order.
func Summarize(env *composer.Environment) []Summary {
	charts := env.Charts()
	out := make([]Summary, len(charts))
	for i, c := range charts {
		out[i] = Summary{
			ID:           c.ID,
			Tag:          c.TagName,
			Rows:         c.Payload.RowCount,
			Measurements: countMeasurements(c),
			HasColumns:   c.HasColumns(),
		}
	}
	return out
}

func countMeasurements(c *composer.Chart) int {
	var ms []json.RawMessage
	if err := json.Unmarshal([]byte(c.Payload.Measurements), &ms); err != nil {
		return 0
	}
	return len(ms)
}

// File writes environments to Path.
type File struct {
	Path    string
	Options gcio.HTMLOptions
}

// Ensure File implements composer.Displayer.
var _ composer.Displayer = (*File)(nil)

// Display writes env to f.Path.
func (f *File) Display(_ context.Context, env *composer.Environment) error {
	return gcio.ExportHTML(f.Path, env, f.Options)
}
