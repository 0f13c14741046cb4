// Package memory provides an in-memory measurement manager.
//
// The manager accepts three data types:
//   - [*BlockSet]: intervals without values (default kind BlocksTrack)
//   - [*GeneSet]: gene annotations (default kind GenesTrack)
//   - [*FeatureSet]: intervals with one value column per sample (default kind
//     from FeatureSet.Kind, LineTrack when empty)
//
// Registered data is copied and sorted by position, so callers may reuse
// their slices afterwards.
//
// Supported registration parameters:
//   - "type": chart kind overriding the data type's default
//   - "group": datasource group reported in measurement descriptors
package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
	"sync"

	"github.com/google/uuid"

	"github.com/matzehuels/genomechart/pkg/chart"
	"github.com/matzehuels/genomechart/pkg/errors"
	"github.com/matzehuels/genomechart/pkg/measurement"
)

// Registration parameter keys.
const (
	ParamType  = "type"
	ParamGroup = "group"
)

// DefaultProvider is the data provider name reported in measurements.
const DefaultProvider = "genomechart"

// idNamespace scopes the name-based UUIDs assigned to sets.
var idNamespace = uuid.MustParse("6f0c3a52-8f3e-4b0a-9d1e-5b7c2f4a9e10")

// Manager is an in-memory [measurement.Manager]. It is safe for concurrent use.
type Manager struct {
	provider string

	mu    sync.RWMutex
	seq   int
	sets  map[string]*Set
	order []string
}

// Option configures a Manager.
type Option func(*Manager)

// WithProvider sets the data provider name reported in measurements.
func WithProvider(name string) Option { return func(m *Manager) { m.provider = name } }

// New creates an empty manager.
func New(opts ...Option) *Manager {
	m := &Manager{
		provider: DefaultProvider,
		sets:     make(map[string]*Set),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Ensure Manager implements measurement.Manager.
var _ measurement.Manager = (*Manager)(nil)

// AddMeasurements registers data and returns its measurement set.
//
// Set IDs are name-based UUIDs over the datasource name, the registration
// sequence number and the data itself, so replaying the same registrations
// yields the same IDs.
func (m *Manager) AddMeasurements(ctx context.Context, data any, name, originName string, params map[string]any) (measurement.Set, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := errors.ValidateDatasourceName(name); err != nil {
		return nil, err
	}
	if originName == "" {
		originName = name
	}

	kindOverride, group, err := parseParams(params)
	if err != nil {
		return nil, err
	}

	s, err := newSet(data, name, kindOverride)
	if err != nil {
		return nil, err
	}
	s.origin = originName
	s.group = group
	if s.group == "" {
		s.group = name
	}

	digest, err := json.Marshal(data)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "encode data for %s", name)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.seq++
	seed := append([]byte(name+"#"+strconv.Itoa(m.seq)+"\x00"), digest...)
	s.id = uuid.NewSHA1(idNamespace, seed).String()
	s.finalize(m.provider)

	m.sets[s.id] = s
	m.order = append(m.order, s.id)
	return s, nil
}

func parseParams(params map[string]any) (kind, group string, err error) {
	for k, v := range params {
		str, ok := v.(string)
		if !ok {
			return "", "", errors.New(errors.ErrCodeInvalidInput, "parameter %q must be a string, got %T", k, v)
		}
		switch k {
		case ParamType:
			kind = str
		case ParamGroup:
			group = str
		default:
			return "", "", errors.New(errors.ErrCodeUnsupported, "unsupported parameter %q", k)
		}
	}
	return kind, group, nil
}

// Get returns the set with the given ID.
func (m *Manager) Get(id string) (*Set, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sets[id]
	return s, ok
}

// Sets returns all registered sets in registration order.
func (m *Manager) Sets() []*Set {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*Set, 0, len(m.order))
	for _, id := range m.order {
		out = append(out, m.sets[id])
	}
	return out
}

// Remove unregisters the set with the given ID.
func (m *Manager) Remove(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sets[id]; !ok {
		return errors.New(errors.ErrCodeNotFound, "measurement set %q not found", id)
	}
	delete(m.sets, id)
	for i, v := range m.order {
		if v == id {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	return nil
}

// newSet validates data and builds an unregistered set from it.
func newSet(data any, name, kindOverride string) (*Set, error) {
	var s *Set
	switch d := data.(type) {
	case *BlockSet:
		if d == nil {
			return nil, errors.New(errors.ErrCodeInvalidInput, "nil block set")
		}
		s = &Set{kind: chart.BlocksTrack.String(), rows: copyIntervals(d.Intervals)}
	case *GeneSet:
		if d == nil {
			return nil, errors.New(errors.ErrCodeInvalidInput, "nil gene set")
		}
		rows := make([]row, len(d.Genes))
		for i, g := range d.Genes {
			rows[i] = row{Interval: copyInterval(g.Interval), gene: g.Name, exonStarts: g.ExonStarts, exonEnds: g.ExonEnds}
		}
		s = &Set{kind: chart.GenesTrack, rows: rows, genes: true}
	case *FeatureSet:
		if d == nil {
			return nil, errors.New(errors.ErrCodeInvalidInput, "nil feature set")
		}
		if err := validateFeatures(d); err != nil {
			return nil, err
		}
		kind := d.Kind
		if kind == "" {
			kind = chart.LineTrack.String()
		}
		s = &Set{kind: kind, rows: copyIntervals(d.Intervals), samples: d.Samples, annotations: d.Annotations}
		for i, r := range s.rows {
			r.values = make([]float64, len(d.Samples))
			for j := range d.Samples {
				r.values[j] = d.Values[j][i]
			}
			s.rows[i] = r
		}
	default:
		return nil, errors.New(errors.ErrCodeUnsupported, "unsupported data type %T", data)
	}

	for i, r := range s.rows {
		if err := validateInterval(r.Interval); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "feature %d", i)
		}
	}

	if kindOverride != "" {
		s.kind = kindOverride
	}
	k := chart.LookupKind(s.kind)
	if k.Tag == "" {
		return nil, errors.New(errors.ErrCodeInvalidChartType, "unknown chart kind %q", s.kind)
	}
	if k.HasValueSeries && len(s.samples) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "chart kind %s needs value columns, %s has none", s.kind, name)
	}
	s.name = name
	s.tag = k.Tag
	return s, nil
}

func validateFeatures(d *FeatureSet) error {
	if len(d.Samples) == 0 {
		return errors.New(errors.ErrCodeInvalidInput, "feature set has no samples")
	}
	if len(d.Values) != len(d.Samples) {
		return errors.New(errors.ErrCodeInvalidInput, "feature set has %d samples but %d value columns", len(d.Samples), len(d.Values))
	}
	seen := make(map[string]bool, len(d.Samples))
	for j, sample := range d.Samples {
		if sample == "" {
			return errors.New(errors.ErrCodeInvalidInput, "sample %d has no name", j)
		}
		if seen[sample] {
			return errors.New(errors.ErrCodeInvalidInput, "duplicate sample %q", sample)
		}
		seen[sample] = true
		if len(d.Values[j]) != len(d.Intervals) {
			return errors.New(errors.ErrCodeInvalidInput, "sample %q has %d values for %d features", sample, len(d.Values[j]), len(d.Intervals))
		}
		for i, v := range d.Values[j] {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return errors.New(errors.ErrCodeInvalidInput, "sample %q: value %d is not finite", sample, i)
			}
		}
	}
	return nil
}

func validateInterval(iv Interval) error {
	if err := errors.ValidateChromosome(iv.Chr); err != nil {
		return err
	}
	if iv.Start < 0 || iv.End < iv.Start {
		return fmt.Errorf("%s:%d-%d: invalid coordinates", iv.Chr, iv.Start, iv.End)
	}
	return nil
}

func copyInterval(iv Interval) Interval {
	if iv.Meta != nil {
		meta := make(map[string]string, len(iv.Meta))
		for k, v := range iv.Meta {
			meta[k] = v
		}
		iv.Meta = meta
	}
	return iv
}

func copyIntervals(in []Interval) []row {
	out := make([]row, len(in))
	for i, iv := range in {
		out[i] = row{Interval: copyInterval(iv)}
	}
	return out
}

// sortRows orders rows by chromosome, start and end. The sort is stable so
// ties keep their input order.
func sortRows(rows []row) {
	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if a.Chr != b.Chr {
			return a.Chr < b.Chr
		}
		if a.Start != b.Start {
			return a.Start < b.Start
		}
		return a.End < b.End
	})
}
