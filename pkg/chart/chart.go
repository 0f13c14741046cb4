// Package chart defines the chart vocabulary understood by the epiviz web
// components.
//
// Two related notions live here:
//
//   - [Type] is the closed set of chart types a caller may request by name.
//     Each maps to exactly one markup tag name.
//   - [Kind] describes any chart kind a data manager may report as the
//     default for a measurement set, including kinds that cannot be
//     requested by name (e.g. "GenesTrack"). Kinds carry capability flags
//     such as [Kind.HasValueSeries].
package chart

import (
	"github.com/matzehuels/genomechart/pkg/errors"
)

// Type is a chart type that can be requested explicitly.
type Type int

// Requestable chart types.
const (
	BlocksTrack Type = iota
	HeatmapPlot
	LinePlot
	LineTrack
	ScatterPlot
	StackedLinePlot
	StackedLineTrack

	numTypes
)

type typeInfo struct {
	name string
	tag  string
}

// types is indexed by Type. Its length is checked against numTypes below,
// so adding a Type without a table entry fails to compile.
var types = [...]typeInfo{
	BlocksTrack:      {"BlocksTrack", "epiviz-json-blocks-track"},
	HeatmapPlot:      {"HeatmapPlot", "epiviz-json-heatmap-plot"},
	LinePlot:         {"LinePlot", "epiviz-json-line-plot"},
	LineTrack:        {"LineTrack", "epiviz-json-line-track"},
	ScatterPlot:      {"ScatterPlot", "epiviz-json-scatter-plot"},
	StackedLinePlot:  {"StackedLinePlot", "epiviz-json-stacked-line-plot"},
	StackedLineTrack: {"StackedLineTrack", "epiviz-json-stacked-line-track"},
}

var _ = [1]struct{}{}[len(types)-int(numTypes)]

// Types returns all requestable chart types in declaration order.
func Types() []Type {
	out := make([]Type, numTypes)
	for i := range out {
		out[i] = Type(i)
	}
	return out
}

// ParseType resolves a chart type name. Names are case-sensitive.
func ParseType(name string) (Type, error) {
	for i, info := range types {
		if info.name == name {
			return Type(i), nil
		}
	}
	return 0, errors.New(errors.ErrCodeInvalidChartType, "unknown chart type %q", name)
}

// Valid reports whether t is one of the declared types.
func (t Type) Valid() bool {
	return t >= 0 && t < numTypes
}

// String returns the chart type name, e.g. "LinePlot".
func (t Type) String() string {
	if !t.Valid() {
		return "Type(invalid)"
	}
	return types[t].name
}

// TagName returns the markup tag name for t, e.g. "epiviz-json-line-plot".
func (t Type) TagName() string {
	if !t.Valid() {
		return ""
	}
	return types[t].tag
}

// Kind returns the kind descriptor for t.
func (t Type) Kind() Kind {
	return LookupKind(t.String())
}

// MarshalText implements encoding.TextMarshaler.
func (t Type) MarshalText() ([]byte, error) {
	if !t.Valid() {
		return nil, errors.New(errors.ErrCodeInvalidChartType, "invalid chart type %d", int(t))
	}
	return []byte(t.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler, so chart types decode
// directly from TOML and JSON.
func (t *Type) UnmarshalText(text []byte) error {
	parsed, err := ParseType(string(text))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}
