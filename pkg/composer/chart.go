package composer

import (
	"encoding/json"

	"github.com/matzehuels/genomechart/pkg/errors"
	"github.com/matzehuels/genomechart/pkg/markup"
)

// ChartClass is the class attribute shared by all chart tags.
const ChartClass = "charts"

// Chart attribute names.
const (
	AttrClass        = "class"
	AttrID           = "id"
	AttrMeasurements = "measurements"
	AttrData         = "data"
	AttrSettings     = "settings"
	AttrColors       = "colors"
)

// Chart is one chart widget: a tag name from the chart vocabulary plus the
// payloads of the measurement set it was built from. Charts are immutable.
type Chart struct {
	TagName  string
	ID       string
	Payload  Payload
	Settings map[string]any
	Colors   map[string]any

	tag *markup.Tag
}

// chartData is the value of the data attribute. Rows and cols are embedded
// as JSON, not as strings; cols encodes as null when absent.
type chartData struct {
	Rows json.RawMessage `json:"rows"`
	Cols json.RawMessage `json:"cols"`
}

func newChart(tagName, id string, p Payload, settings, colors map[string]any) (*Chart, error) {
	c := &Chart{
		TagName:  tagName,
		ID:       id,
		Payload:  p,
		Settings: settings,
		Colors:   colors,
	}

	data := chartData{Rows: json.RawMessage(p.Rows)}
	if p.Cols != nil {
		data.Cols = json.RawMessage(*p.Cols)
	}
	dataJSON, err := json.Marshal(data)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "encode data attribute")
	}
	settingsJSON, err := json.Marshal(settings)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "encode settings")
	}
	colorsJSON, err := json.Marshal(colors)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "encode colors")
	}

	c.tag = markup.NewTag(tagName,
		markup.A(AttrClass, ChartClass),
		markup.A(AttrID, id),
		markup.A(AttrMeasurements, p.Measurements),
		markup.A(AttrData, string(dataJSON)),
		markup.A(AttrSettings, string(settingsJSON)),
		markup.A(AttrColors, string(colorsJSON)),
	)
	return c, nil
}

// Tag returns the chart's markup tag.
func (c *Chart) Tag() *markup.Tag { return c.tag }

// HasColumns reports whether the chart carries per-measurement values.
func (c *Chart) HasColumns() bool { return c.Payload.Cols != nil }
