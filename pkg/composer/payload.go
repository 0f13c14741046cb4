package composer

import (
	"bytes"
	"context"
	"encoding/json"

	"github.com/matzehuels/genomechart/pkg/cache"
	"github.com/matzehuels/genomechart/pkg/chart"
	"github.com/matzehuels/genomechart/pkg/errors"
	"github.com/matzehuels/genomechart/pkg/measurement"
	"github.com/matzehuels/genomechart/pkg/observability"
)

// Payload holds the JSON payloads embedded into a chart.
type Payload struct {
	// Measurements is a JSON array of measurement descriptors.
	Measurements string
	// Rows is the JSON row data of the features in the window.
	Rows string
	// Cols is a JSON object mapping measurement IDs to value series, in
	// measurement order. It is nil for kinds without value series.
	Cols *string
	// RowCount is the number of rows in Rows.
	RowCount int
}

// Payload extracts all three payloads of set over the composer's window.
func (c *Composer) Payload(ctx context.Context, set measurement.Set, filter measurement.Filter) (Payload, error) {
	var p Payload
	var err error

	if p.Measurements, err = MeasurementData(set); err != nil {
		return Payload{}, err
	}
	if p.Rows, err = c.RowData(ctx, set, filter); err != nil {
		return Payload{}, err
	}
	if p.Cols, err = c.ColumnData(ctx, set, filter); err != nil {
		return Payload{}, err
	}
	p.RowCount = countRows(p.Rows)
	return p, nil
}

// RowData queries the rows of set overlapping the window and returns them as
// JSON. filter may be nil.
func (c *Composer) RowData(ctx context.Context, set measurement.Set, filter measurement.Filter) (string, error) {
	opts := cache.PayloadKeyOpts{Part: cache.PartRows, Filter: filter}
	data, err := c.cached(ctx, set.ID(), opts, func() ([]byte, error) {
		rows, err := set.Rows(ctx, c.window, filter)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeQueryFailed, err, "query rows of %s in %s", set.ID(), c.window)
		}
		return marshal(rows)
	})
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// ColumnData queries the values of every measurement of set and returns them
// as a JSON object keyed by measurement ID, in measurement order. Values are
// aligned with the rows RowData returns for the same filter. It returns nil
// without querying when the set's default kind has no value series.
func (c *Composer) ColumnData(ctx context.Context, set measurement.Set, filter measurement.Filter) (*string, error) {
	if !chart.HasValueSeries(set.DefaultChartKind()) {
		return nil, nil
	}

	opts := cache.PayloadKeyOpts{Part: cache.PartCols, Filter: filter}
	data, err := c.cached(ctx, set.ID(), opts, func() ([]byte, error) {
		var cols orderedColumns
		seen := make(map[string]bool)
		for _, m := range set.Measurements() {
			if seen[m.ID] {
				return nil, errors.New(errors.ErrCodeQueryFailed, "duplicate measurement id %q in %s", m.ID, set.ID())
			}
			seen[m.ID] = true

			values, err := set.Values(ctx, c.window, m.ID, filter)
			if err != nil {
				return nil, errors.Wrap(errors.ErrCodeQueryFailed, err, "query values of %s in %s", m.ID, c.window)
			}
			raw, err := marshal(values)
			if err != nil {
				return nil, err
			}
			cols = append(cols, column{key: m.ID, value: raw})
		}
		return marshal(cols)
	})
	if err != nil {
		return nil, err
	}
	s := string(data)
	return &s, nil
}

// MeasurementData returns the measurement descriptors of set as a JSON array.
func MeasurementData(set measurement.Set) (string, error) {
	ms := set.Measurements()
	if ms == nil {
		ms = []measurement.Measurement{}
	}
	data, err := marshal(ms)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// cached returns the payload stored under the key for (setID, window, opts),
// computing and storing it on a miss. Cache failures are logged and never
// fail the query.
func (c *Composer) cached(ctx context.Context, setID string, opts cache.PayloadKeyOpts, compute func() ([]byte, error)) ([]byte, error) {
	key := c.keyer.PayloadKey(setID, c.window, opts)
	hooks := observability.Cache()

	if data, hit, err := c.cache.Get(ctx, key); err != nil {
		c.logger.Warn("payload cache read failed", "part", opts.Part, "err", err)
	} else if hit {
		hooks.OnCacheHit(ctx, opts.Part)
		c.logger.Debug("payload cache hit", "part", opts.Part, "set", setID)
		return data, nil
	}
	hooks.OnCacheMiss(ctx, opts.Part)

	data, err := compute()
	if err != nil {
		return nil, err
	}

	if err := c.cache.Set(ctx, key, data, c.ttl); err != nil {
		c.logger.Warn("payload cache write failed", "part", opts.Part, "err", err)
	} else {
		hooks.OnCacheSet(ctx, opts.Part, len(data))
	}
	return data, nil
}

func marshal(v any) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "encode %T", v)
	}
	return data, nil
}

// countRows returns the number of row IDs in a row payload.
func countRows(rows string) int {
	var r struct {
		Values struct {
			ID []json.RawMessage `json:"id"`
		} `json:"values"`
	}
	if err := json.Unmarshal([]byte(rows), &r); err != nil {
		return 0
	}
	return len(r.Values.ID)
}

type column struct {
	key   string
	value json.RawMessage
}

// orderedColumns encodes as a JSON object whose keys keep slice order.
type orderedColumns []column

func (cols orderedColumns) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, col := range cols {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(col.key)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(col.value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
