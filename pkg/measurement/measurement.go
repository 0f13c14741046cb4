// Package measurement defines the contract between the chart composer and the
// data manager that owns registered data sources.
//
// A [Manager] accepts arbitrary data objects and returns a [Set]: a handle
// onto the measurements the data object provides. Sets answer two queries
// scoped to a genomic window: the feature rows overlapping the window, and
// the value series of one measurement over those rows.
//
// The types in this package mirror the JSON shapes consumed by the epiviz
// web components (camelCase keys, columnar row values).
//
// # Implementations
//
//   - [github.com/matzehuels/genomechart/pkg/measurement/memory]: in-memory
//     manager for BED-like intervals, gene annotations and numeric tables.
package measurement

import (
	"context"

	"github.com/matzehuels/genomechart/pkg/genomics"
)

// Manager registers data objects as measurement sets.
type Manager interface {
	// AddMeasurements registers data under name. originName records where
	// the data came from (a file, a variable) and may equal name. params
	// carries manager-specific options and may be nil.
	AddMeasurements(ctx context.Context, data any, name, originName string, params map[string]any) (Set, error)
}

// Set is a handle onto the measurements of one registered data source.
type Set interface {
	// ID returns the identifier of the set. IDs must change whenever the
	// set's content changes: payloads are cached by ID, and a reused ID
	// serves stale payloads from a persistent cache.
	ID() string
	// DefaultChartKind returns the chart kind best suited to the set,
	// e.g. "BlocksTrack".
	DefaultChartKind() string
	// DefaultTagName returns the markup tag for DefaultChartKind.
	DefaultTagName() string
	// Measurements returns the measurements in declaration order.
	Measurements() []Measurement
	// Rows returns the features overlapping w. A non-nil filter keeps only
	// rows whose metadata matches every key/value pair.
	Rows(ctx context.Context, w genomics.Window, filter Filter) (*Rows, error)
	// Values returns the values of one measurement for the rows that Rows
	// returns for the same window and filter, in the same order.
	Values(ctx context.Context, w genomics.Window, measurementID string, filter Filter) (*Values, error)
}

// Filter restricts row queries by metadata value.
type Filter map[string]string

// Match reports whether meta satisfies every constraint of f. A missing key
// never matches, not even an empty value.
func (f Filter) Match(meta map[string]string) bool {
	for k, v := range f {
		if got, ok := meta[k]; !ok || got != v {
			return false
		}
	}
	return true
}

// Measurement describes one data series of a set.
type Measurement struct {
	ID               string            `json:"id"`
	Name             string            `json:"name"`
	Type             string            `json:"type"`
	DatasourceID     string            `json:"datasourceId"`
	DatasourceGroup  string            `json:"datasourceGroup"`
	DataProvider     string            `json:"dataprovider"`
	DefaultChartType string            `json:"defaultChartType,omitempty"`
	Annotation       map[string]string `json:"annotation,omitempty"`
	MinValue         *float64          `json:"minValue,omitempty"`
	MaxValue         *float64          `json:"maxValue,omitempty"`
	Metadata         []string          `json:"metadata,omitempty"`
}

// Measurement types.
const (
	// TypeRange marks interval-only measurements.
	TypeRange = "range"
	// TypeFeature marks measurements with a value per feature.
	TypeFeature = "feature"
)

// Rows holds the features overlapping a window in columnar form.
type Rows struct {
	GlobalStartIndex int       `json:"globalStartIndex"`
	UseOffset        bool      `json:"useOffset"`
	Values           RowValues `json:"values"`
}

// Len returns the number of rows.
func (r *Rows) Len() int {
	if r == nil {
		return 0
	}
	return len(r.Values.ID)
}

// RowValues is the columnar body of [Rows]. All slices have the same length;
// every Metadata column too.
type RowValues struct {
	ID       []int               `json:"id"`
	Chr      []string            `json:"chr"`
	Start    []int64             `json:"start"`
	End      []int64             `json:"end"`
	Strand   []string            `json:"strand"`
	Metadata map[string][]string `json:"metadata"`
}

// Values holds one measurement's values for the rows overlapping a window,
// aligned with [Rows].
type Values struct {
	GlobalStartIndex int       `json:"globalStartIndex"`
	Values           []float64 `json:"values"`
}
