package memory

import (
	"context"
	"math"
	"sort"

	"github.com/matzehuels/genomechart/pkg/errors"
	"github.com/matzehuels/genomechart/pkg/genomics"
	"github.com/matzehuels/genomechart/pkg/measurement"
)

// Metadata columns reported for gene sets.
const (
	metaGene       = "gene"
	metaExonStarts = "exon_starts"
	metaExonEnds   = "exon_ends"
)

type row struct {
	Interval
	values     []float64
	gene       string
	exonStarts []int64
	exonEnds   []int64
}

// Set is a registered measurement set. It implements [measurement.Set] and is
// immutable after registration.
type Set struct {
	id          string
	name        string
	origin      string
	group       string
	kind        string
	tag         string
	genes       bool
	rows        []row
	samples     []string
	annotations map[string]map[string]string

	metaKeys     []string
	measurements []measurement.Measurement
	index        map[string]int
}

// Ensure Set implements measurement.Set.
var _ measurement.Set = (*Set)(nil)

// finalize sorts rows and derives the measurement descriptors.
func (s *Set) finalize(provider string) {
	sortRows(s.rows)

	keys := make(map[string]bool)
	for _, r := range s.rows {
		for k := range r.Meta {
			keys[k] = true
		}
	}
	if s.genes {
		keys[metaGene], keys[metaExonStarts], keys[metaExonEnds] = true, true, true
	}
	for k := range keys {
		s.metaKeys = append(s.metaKeys, k)
	}
	sort.Strings(s.metaKeys)

	s.index = make(map[string]int, len(s.samples))
	if len(s.samples) == 0 {
		s.measurements = []measurement.Measurement{{
			ID:               s.name,
			Name:             s.name,
			Type:             measurement.TypeRange,
			DatasourceID:     s.id,
			DatasourceGroup:  s.group,
			DataProvider:     provider,
			DefaultChartType: s.kind,
			Metadata:         s.metaKeys,
		}}
		return
	}

	for j, sample := range s.samples {
		lo, hi := s.valueRange(j)
		s.measurements = append(s.measurements, measurement.Measurement{
			ID:               sample,
			Name:             sample,
			Type:             measurement.TypeFeature,
			DatasourceID:     s.id,
			DatasourceGroup:  s.group,
			DataProvider:     provider,
			DefaultChartType: s.kind,
			Annotation:       s.annotations[sample],
			MinValue:         lo,
			MaxValue:         hi,
			Metadata:         s.metaKeys,
		})
		s.index[sample] = j
	}
}

func (s *Set) valueRange(col int) (*float64, *float64) {
	if len(s.rows) == 0 {
		return nil, nil
	}
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, r := range s.rows {
		v := r.values[col]
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	return &lo, &hi
}

// ID returns the set's UUID.
func (s *Set) ID() string { return s.id }

// Name returns the datasource name the set was registered under.
func (s *Set) Name() string { return s.name }

// OriginName returns the datasource origin name.
func (s *Set) OriginName() string { return s.origin }

// DefaultChartKind returns the set's default chart kind.
func (s *Set) DefaultChartKind() string { return s.kind }

// DefaultTagName returns the markup tag of the default chart kind.
func (s *Set) DefaultTagName() string { return s.tag }

// Len returns the number of features in the set.
func (s *Set) Len() int { return len(s.rows) }

// Measurements returns a copy of the measurement descriptors.
func (s *Set) Measurements() []measurement.Measurement {
	out := make([]measurement.Measurement, len(s.measurements))
	copy(out, s.measurements)
	return out
}

// overlapping returns the indices of rows overlapping w in position order.
func (s *Set) overlapping(w genomics.Window) []int {
	var out []int
	for i, r := range s.rows {
		if r.Chr == w.Chr && r.Start >= w.End {
			break
		}
		if w.Overlaps(r.Chr, r.Start, r.End) {
			out = append(out, i)
		}
	}
	return out
}

// Rows returns the features overlapping w. Row IDs are indices into the
// set's position-sorted features.
func (s *Set) Rows(ctx context.Context, w genomics.Window, filter measurement.Filter) (*measurement.Rows, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := w.Validate(); err != nil {
		return nil, err
	}

	out := &measurement.Rows{
		Values: measurement.RowValues{
			ID:       []int{},
			Chr:      []string{},
			Start:    []int64{},
			End:      []int64{},
			Strand:   []string{},
			Metadata: make(map[string][]string, len(s.metaKeys)),
		},
	}
	for _, k := range s.metaKeys {
		out.Values.Metadata[k] = []string{}
	}

	for _, i := range s.overlapping(w) {
		r := s.rows[i]
		meta := s.rowMeta(r)
		if filter != nil && !filter.Match(meta) {
			continue
		}
		if out.Len() == 0 {
			out.GlobalStartIndex = i
		}
		v := &out.Values
		v.ID = append(v.ID, i)
		v.Chr = append(v.Chr, r.Chr)
		v.Start = append(v.Start, r.Start)
		v.End = append(v.End, r.End)
		strand := r.Strand
		if strand == "" {
			strand = "*"
		}
		v.Strand = append(v.Strand, strand)
		for _, k := range s.metaKeys {
			v.Metadata[k] = append(v.Metadata[k], meta[k])
		}
	}
	return out, nil
}

func (s *Set) rowMeta(r row) map[string]string {
	if !s.genes {
		return r.Meta
	}
	meta := make(map[string]string, len(r.Meta)+3)
	for k, v := range r.Meta {
		meta[k] = v
	}
	meta[metaGene] = r.gene
	meta[metaExonStarts] = joinInts(r.exonStarts)
	meta[metaExonEnds] = joinInts(r.exonEnds)
	return meta
}

// Values returns the values of one sample for the features overlapping w
// that match filter, aligned with [Set.Rows].
func (s *Set) Values(ctx context.Context, w genomics.Window, measurementID string, filter measurement.Filter) (*measurement.Values, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := w.Validate(); err != nil {
		return nil, err
	}
	col, ok := s.index[measurementID]
	if !ok {
		return nil, errors.New(errors.ErrCodeMeasurementNotFound, "measurement %q not found in %s", measurementID, s.name)
	}

	out := &measurement.Values{Values: []float64{}}
	for _, i := range s.overlapping(w) {
		if filter != nil && !filter.Match(s.rowMeta(s.rows[i])) {
			continue
		}
		if len(out.Values) == 0 {
			out.GlobalStartIndex = i
		}
		out.Values = append(out.Values, s.rows[i].values[col])
	}
	return out, nil
}
