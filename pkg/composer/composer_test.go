package composer

import (
	"bytes"
	"context"
	"encoding/json"
	stderrors "errors"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/genomechart/pkg/cache"
	"github.com/matzehuels/genomechart/pkg/chart"
	"github.com/matzehuels/genomechart/pkg/errors"
	"github.com/matzehuels/genomechart/pkg/genomics"
	"github.com/matzehuels/genomechart/pkg/measurement"
	"github.com/matzehuels/genomechart/pkg/measurement/memory"
	"github.com/matzehuels/genomechart/pkg/observability"
)

var testWindow = genomics.Window{Chr: "chr1", Start: 1000, End: 2000}

// fakeSet is a measurement set with canned answers.
type fakeSet struct {
	id           string
	kind         string
	tag          string
	measurements []measurement.Measurement
	rowsErr      error
	valuesErr    error

	rowCalls        int
	valueCalls      int
	lastFilter      measurement.Filter
	lastValueFilter measurement.Filter
	lastWindows     []genomics.Window
}

func (s *fakeSet) ID() string                              { return s.id }
func (s *fakeSet) DefaultChartKind() string                { return s.kind }
func (s *fakeSet) DefaultTagName() string                  { return s.tag }
func (s *fakeSet) Measurements() []measurement.Measurement { return s.measurements }

func (s *fakeSet) Rows(_ context.Context, w genomics.Window, f measurement.Filter) (*measurement.Rows, error) {
	s.rowCalls++
	s.lastFilter = f
	s.lastWindows = append(s.lastWindows, w)
	if s.rowsErr != nil {
		return nil, s.rowsErr
	}
	return &measurement.Rows{
		GlobalStartIndex: 4,
		Values: measurement.RowValues{
			ID:       []int{4, 5},
			Chr:      []string{w.Chr, w.Chr},
			Start:    []int64{w.Start, w.Start + 10},
			End:      []int64{w.Start + 10, w.Start + 20},
			Strand:   []string{"*", "*"},
			Metadata: map[string][]string{},
		},
	}, nil
}

func (s *fakeSet) Values(_ context.Context, w genomics.Window, id string, f measurement.Filter) (*measurement.Values, error) {
	s.valueCalls++
	s.lastValueFilter = f
	s.lastWindows = append(s.lastWindows, w)
	if s.valuesErr != nil {
		return nil, s.valuesErr
	}
	return &measurement.Values{GlobalStartIndex: 4, Values: []float64{float64(len(id)), 1}}, nil
}

// fakeManager returns set for every registration.
type fakeManager struct {
	set   measurement.Set
	err   error
	calls int

	names   []string
	origins []string
	params  []map[string]any
}

func (m *fakeManager) AddMeasurements(_ context.Context, _ any, name, origin string, params map[string]any) (measurement.Set, error) {
	m.calls++
	m.names = append(m.names, name)
	m.origins = append(m.origins, origin)
	m.params = append(m.params, params)
	if m.err != nil {
		return nil, m.err
	}
	return m.set, nil
}

func blocksSet() *fakeSet {
	return &fakeSet{
		id:   "set-blocks",
		kind: "BlocksTrack",
		tag:  "epiviz-json-blocks-track",
		measurements: []measurement.Measurement{
			{ID: "peaks", Name: "peaks", Type: measurement.TypeRange, DatasourceID: "set-blocks"},
		},
	}
}

func lineSet() *fakeSet {
	return &fakeSet{
		id:   "set-line",
		kind: "LinePlot",
		tag:  "epiviz-json-line-plot",
		measurements: []measurement.Measurement{
			{ID: "zeta", Type: measurement.TypeFeature},
			{ID: "alpha", Type: measurement.TypeFeature},
			{ID: "mid", Type: measurement.TypeFeature},
		},
	}
}

func quietLogger() *log.Logger {
	return log.NewWithOptions(&bytes.Buffer{}, log.Options{Level: log.DebugLevel})
}

func newComposer(t *testing.T, m measurement.Manager, opts ...Option) *Composer {
	t.Helper()
	opts = append([]Option{WithLogger(quietLogger())}, opts...)
	c, err := New(testWindow, m, opts...)
	require.NoError(t, err)
	return c
}

// decodeData decodes a chart's data attribute.
func decodeData(t *testing.T, ch *Chart) (rows, cols json.RawMessage) {
	t.Helper()
	raw, ok := ch.Tag().Attr(AttrData)
	require.True(t, ok, "data attribute missing")
	var d struct {
		Rows json.RawMessage `json:"rows"`
		Cols json.RawMessage `json:"cols"`
	}
	require.NoError(t, json.Unmarshal([]byte(raw), &d))
	return d.Rows, d.Cols
}

// objectKeys returns the keys of a JSON object in document order.
func objectKeys(t *testing.T, raw json.RawMessage) []string {
	t.Helper()
	dec := json.NewDecoder(bytes.NewReader(raw))
	tok, err := dec.Token()
	require.NoError(t, err)
	require.Equal(t, json.Delim('{'), tok)

	var keys []string
	for dec.More() {
		tok, err := dec.Token()
		require.NoError(t, err)
		keys = append(keys, tok.(string))
		var skip json.RawMessage
		require.NoError(t, dec.Decode(&skip))
	}
	return keys
}

func TestNew(t *testing.T) {
	_, err := New(genomics.Window{Chr: "chr1", Start: 10, End: 5}, &fakeManager{})
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidWindow))

	_, err = New(testWindow, nil)
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidInput))

	c, err := New(testWindow, &fakeManager{})
	require.NoError(t, err)
	assert.Equal(t, testWindow, c.Window())
	assert.Equal(t, 0, c.Environment().Len())

	chr, _ := c.Environment().Tag().Attr("chr")
	start, _ := c.Environment().Tag().Attr("start")
	end, _ := c.Environment().Tag().Attr("end")
	assert.Equal(t, []string{"chr1", "1000", "2000"}, []string{chr, start, end})
	assert.Equal(t, EnvironmentTag, c.Environment().Tag().Name())
}

func TestPlotChartTypeTags(t *testing.T) {
	tests := []struct {
		chartType string
		tag       string
	}{
		{"BlocksTrack", "epiviz-json-blocks-track"},
		{"HeatmapPlot", "epiviz-json-heatmap-plot"},
		{"LinePlot", "epiviz-json-line-plot"},
		{"LineTrack", "epiviz-json-line-track"},
		{"ScatterPlot", "epiviz-json-scatter-plot"},
		{"StackedLinePlot", "epiviz-json-stacked-line-plot"},
		{"StackedLineTrack", "epiviz-json-stacked-line-track"},
	}
	require.Len(t, tests, len(chart.Types()))

	for _, tt := range tests {
		t.Run(tt.chartType, func(t *testing.T) {
			c := newComposer(t, &fakeManager{set: lineSet()})
			ch, err := c.Plot(context.Background(), nil, PlotOptions{Name: "signal", ChartType: tt.chartType})
			require.NoError(t, err)
			assert.Equal(t, tt.tag, ch.TagName)
			assert.Equal(t, tt.tag, ch.Tag().Name())
		})
	}
}

func TestPlotDefaultTag(t *testing.T) {
	set := blocksSet()
	c := newComposer(t, &fakeManager{set: set})

	ch, err := c.Plot(context.Background(), nil, PlotOptions{Name: "peaks"})
	require.NoError(t, err)
	assert.Equal(t, "epiviz-json-blocks-track", ch.TagName)
	assert.Equal(t, set.ID(), ch.ID)

	id, _ := ch.Tag().Attr(AttrID)
	class, _ := ch.Tag().Attr(AttrClass)
	assert.Equal(t, "set-blocks", id)
	assert.Equal(t, ChartClass, class)
}

func TestPlotNoDefaultTag(t *testing.T) {
	set := blocksSet()
	set.tag = ""
	c := newComposer(t, &fakeManager{set: set})

	_, err := c.Plot(context.Background(), nil, PlotOptions{Name: "peaks"})
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidChartType))
	assert.Equal(t, 0, c.Environment().Len())
}

func TestPlotUnknownChartType(t *testing.T) {
	m := &fakeManager{set: lineSet()}
	c := newComposer(t, m)

	_, err := c.Plot(context.Background(), nil, PlotOptions{Name: "x", ChartType: "PieChart"})
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeInvalidChartType, errors.GetCode(err))
	assert.Contains(t, err.Error(), "PieChart")
	assert.Equal(t, 0, m.calls, "manager should not be called")
	assert.Equal(t, 0, c.Environment().Len())
}

func TestPlotValuelessKindsHaveNullCols(t *testing.T) {
	for _, kind := range []string{"BlocksTrack", chart.GenesTrack} {
		t.Run(kind, func(t *testing.T) {
			set := blocksSet()
			set.kind = kind
			c := newComposer(t, &fakeManager{set: set})

			ch, err := c.Plot(context.Background(), nil, PlotOptions{Name: "peaks"})
			require.NoError(t, err)
			assert.False(t, ch.HasColumns())
			assert.Equal(t, 0, set.valueCalls, "values should not be queried")

			_, cols := decodeData(t, ch)
			assert.Equal(t, "null", string(cols))
		})
	}
}

func TestPlotColumnsFollowMeasurementOrder(t *testing.T) {
	set := lineSet()
	c := newComposer(t, &fakeManager{set: set})

	ch, err := c.Plot(context.Background(), nil, PlotOptions{Name: "signal", ChartType: "LinePlot"})
	require.NoError(t, err)
	require.True(t, ch.HasColumns())
	assert.Equal(t, 3, set.valueCalls)

	_, cols := decodeData(t, ch)
	assert.Equal(t, []string{"zeta", "alpha", "mid"}, objectKeys(t, cols))

	var decoded map[string]measurement.Values
	require.NoError(t, json.Unmarshal(cols, &decoded))
	assert.Equal(t, []float64{4, 1}, decoded["zeta"].Values)
	assert.Equal(t, 4, decoded["alpha"].GlobalStartIndex)
}

func TestPlotDuplicateMeasurementIDs(t *testing.T) {
	set := lineSet()
	set.measurements = append(set.measurements, measurement.Measurement{ID: "alpha"})
	c := newComposer(t, &fakeManager{set: set})

	_, err := c.Plot(context.Background(), nil, PlotOptions{Name: "signal"})
	assert.True(t, errors.Is(err, errors.ErrCodeQueryFailed))
	assert.Equal(t, 0, c.Environment().Len())
}

func TestPlotMeasurementsRoundTrip(t *testing.T) {
	set := lineSet()
	c := newComposer(t, &fakeManager{set: set})

	ch, err := c.Plot(context.Background(), nil, PlotOptions{Name: "signal"})
	require.NoError(t, err)

	raw, _ := ch.Tag().Attr(AttrMeasurements)
	var got []measurement.Measurement
	require.NoError(t, json.Unmarshal([]byte(raw), &got))
	assert.Equal(t, set.measurements, got)
}

func TestPlotSettingsAndColors(t *testing.T) {
	c := newComposer(t, &fakeManager{set: lineSet()})

	ch, err := c.Plot(context.Background(), nil, PlotOptions{
		Name:     "signal",
		Settings: map[string]any{"step": 50},
		Colors:   map[string]any{"0": "#1f77b4"},
	})
	require.NoError(t, err)
	settings, _ := ch.Tag().Attr(AttrSettings)
	colors, _ := ch.Tag().Attr(AttrColors)
	assert.JSONEq(t, `{"step":50}`, settings)
	assert.JSONEq(t, `{"0":"#1f77b4"}`, colors)

	ch, err = c.Plot(context.Background(), nil, PlotOptions{Name: "signal"})
	require.NoError(t, err)
	settings, _ = ch.Tag().Attr(AttrSettings)
	colors, _ = ch.Tag().Attr(AttrColors)
	assert.Equal(t, "null", settings)
	assert.Equal(t, "null", colors)
}

func TestPlotRowsUseWindowAndFilter(t *testing.T) {
	set := lineSet()
	c := newComposer(t, &fakeManager{set: set})

	filter := measurement.Filter{"name": "p1"}
	ch, err := c.Plot(context.Background(), nil, PlotOptions{Name: "signal", RowFilter: filter})
	require.NoError(t, err)

	assert.Equal(t, filter, set.lastFilter)
	assert.Equal(t, filter, set.lastValueFilter)
	for _, w := range set.lastWindows {
		assert.Equal(t, testWindow, w)
	}
	assert.Equal(t, 2, ch.Payload.RowCount)

	rows, _ := decodeData(t, ch)
	var decoded measurement.Rows
	require.NoError(t, json.Unmarshal(rows, &decoded))
	assert.Equal(t, []int{4, 5}, decoded.Values.ID)
}

func TestPlotRegistrationFailure(t *testing.T) {
	cause := stderrors.New("unsupported data")
	m := &fakeManager{err: cause}
	c := newComposer(t, m)

	_, err := c.Plot(context.Background(), 42, PlotOptions{Name: "bad"})
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeRegistrationFailed, errors.GetCode(err))
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, 0, c.Environment().Len())
}

func TestPlotNilSet(t *testing.T) {
	c := newComposer(t, &fakeManager{})
	_, err := c.Plot(context.Background(), nil, PlotOptions{Name: "x"})
	assert.True(t, errors.Is(err, errors.ErrCodeRegistrationFailed))
}

func TestPlotQueryFailure(t *testing.T) {
	cause := stderrors.New("backend down")

	t.Run("rows", func(t *testing.T) {
		set := lineSet()
		set.rowsErr = cause
		c := newComposer(t, &fakeManager{set: set})

		_, err := c.Plot(context.Background(), nil, PlotOptions{Name: "signal"})
		assert.Equal(t, errors.ErrCodeQueryFailed, errors.GetCode(err))
		assert.ErrorIs(t, err, cause)
		assert.Equal(t, 0, c.Environment().Len())
	})

	t.Run("values", func(t *testing.T) {
		set := lineSet()
		set.valuesErr = cause
		c := newComposer(t, &fakeManager{set: set})

		_, err := c.Plot(context.Background(), nil, PlotOptions{Name: "signal"})
		assert.Equal(t, errors.ErrCodeQueryFailed, errors.GetCode(err))
		assert.ErrorIs(t, err, cause)
		assert.Equal(t, 0, c.Environment().Len())
	})
}

func TestPlotNames(t *testing.T) {
	m := &fakeManager{set: blocksSet()}
	c := newComposer(t, m, WithNamePrefix("track"))
	ctx := context.Background()

	_, err := c.Plot(ctx, nil, PlotOptions{Name: "peaks", OriginName: "peaks.bed"})
	require.NoError(t, err)
	_, err = c.Plot(ctx, nil, PlotOptions{OriginName: "genes.bed"})
	require.NoError(t, err)
	_, err = c.Plot(ctx, nil, PlotOptions{Name: "only"})
	require.NoError(t, err)
	_, err = c.Plot(ctx, nil, PlotOptions{})
	require.NoError(t, err)
	_, err = c.Plot(ctx, nil, PlotOptions{})
	require.NoError(t, err)

	assert.Equal(t, []string{"peaks", "genes.bed", "only", "track_1", "track_2"}, m.names)
	assert.Equal(t, []string{"peaks.bed", "genes.bed", "only", "track_1", "track_2"}, m.origins)
}

func TestPlotSameOriginTwice(t *testing.T) {
	m := &fakeManager{set: blocksSet()}
	c := newComposer(t, m)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		_, err := c.Plot(ctx, nil, PlotOptions{OriginName: "x"})
		require.NoError(t, err)
	}
	assert.Equal(t, []string{"x", "x"}, m.names)
	assert.Equal(t, []string{"x", "x"}, m.origins)

	// The synthetic counter only advances for unnamed data.
	_, err := c.Plot(ctx, nil, PlotOptions{})
	require.NoError(t, err)
	assert.Equal(t, DefaultNamePrefix+"_1", m.names[2])
}

func TestPlotForwardsParams(t *testing.T) {
	m := &fakeManager{set: blocksSet()}
	c := newComposer(t, m)

	params := map[string]any{"group": "chip"}
	_, err := c.Plot(context.Background(), nil, PlotOptions{Name: "peaks", Params: params})
	require.NoError(t, err)
	assert.Equal(t, params, m.params[0])
}

func TestPlotAppendsInOrder(t *testing.T) {
	c := newComposer(t, &fakeManager{set: blocksSet()})
	ctx := context.Background()

	first, err := c.Plot(ctx, nil, PlotOptions{Name: "a"})
	require.NoError(t, err)
	second, err := c.Plot(ctx, nil, PlotOptions{Name: "b", ChartType: "LineTrack"})
	require.NoError(t, err)

	env := c.Environment()
	require.Equal(t, 2, env.Len())
	assert.Same(t, first, env.Charts()[0])
	assert.Same(t, second, env.Charts()[1])

	children := env.Tag().Children()
	require.Len(t, children, 2)
	assert.Equal(t, "epiviz-json-blocks-track", children[0].Name())
	assert.Equal(t, "epiviz-json-line-track", children[1].Name())

	got, ok := env.Chart("set-blocks")
	assert.True(t, ok)
	assert.Same(t, first, got)
}

func TestPlotUsesCache(t *testing.T) {
	fc, err := cache.NewFileCache(t.TempDir())
	require.NoError(t, err)

	set := lineSet()
	m := &fakeManager{set: set}
	ctx := context.Background()

	c1 := newComposer(t, m, WithCache(fc, nil), WithCacheTTL(time.Hour))
	first, err := c1.Plot(ctx, nil, PlotOptions{Name: "signal"})
	require.NoError(t, err)
	assert.Equal(t, 1, set.rowCalls)
	assert.Equal(t, 3, set.valueCalls)

	c2 := newComposer(t, m, WithCache(fc, nil))
	second, err := c2.Plot(ctx, nil, PlotOptions{Name: "signal"})
	require.NoError(t, err)
	assert.Equal(t, 1, set.rowCalls, "rows should come from cache")
	assert.Equal(t, 3, set.valueCalls, "values should come from cache")
	assert.Equal(t, first.Payload, second.Payload)

	// A different filter is a different key.
	_, err = c2.Plot(ctx, nil, PlotOptions{Name: "signal", RowFilter: measurement.Filter{"k": "v"}})
	require.NoError(t, err)
	assert.Equal(t, 2, set.rowCalls)
	assert.Equal(t, 6, set.valueCalls, "filtered values must not come from the unfiltered entry")
}

type recordingHooks struct {
	observability.NoopComposerHooks
	starts []string
	tags   []string
	errs   []error
}

func (h *recordingHooks) OnPlotStart(_ context.Context, name, _ string) {
	h.starts = append(h.starts, name)
}

func (h *recordingHooks) OnPlotComplete(_ context.Context, _, tag string, _ int, _ time.Duration, err error) {
	h.tags = append(h.tags, tag)
	h.errs = append(h.errs, err)
}

func TestPlotHooks(t *testing.T) {
	hooks := &recordingHooks{}
	observability.SetComposerHooks(hooks)
	t.Cleanup(observability.Reset)

	c := newComposer(t, &fakeManager{set: blocksSet()})
	ctx := context.Background()
	_, err := c.Plot(ctx, nil, PlotOptions{Name: "peaks"})
	require.NoError(t, err)
	_, err = c.Plot(ctx, nil, PlotOptions{Name: "bad", ChartType: "Nope"})
	require.Error(t, err)

	assert.Equal(t, []string{"peaks", "bad"}, hooks.starts)
	assert.Equal(t, []string{"epiviz-json-blocks-track", ""}, hooks.tags)
	assert.NoError(t, hooks.errs[0])
	assert.Error(t, hooks.errs[1])
}

func TestShow(t *testing.T) {
	c := newComposer(t, &fakeManager{set: blocksSet()})
	_, err := c.Plot(context.Background(), nil, PlotOptions{Name: "peaks"})
	require.NoError(t, err)

	var seen *Environment
	err = c.Show(context.Background(), DisplayFunc(func(_ context.Context, env *Environment) error {
		seen = env
		return nil
	}))
	require.NoError(t, err)
	assert.Same(t, c.Environment(), seen)
}

func TestRenderEnvironment(t *testing.T) {
	c := newComposer(t, &fakeManager{set: blocksSet()})
	_, err := c.Plot(context.Background(), nil, PlotOptions{Name: "peaks"})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, c.Environment().Render(&buf))
	out := buf.String()
	assert.True(t, strings.HasPrefix(out, `<epiviz-environment chr="chr1" start="1000" end="2000">`), out)
	assert.Contains(t, out, `<epiviz-json-blocks-track class="charts" id="set-blocks"`)
	assert.True(t, strings.HasSuffix(out, "</epiviz-environment>"), out)
}

// The two scenarios below run against the in-memory manager.

func TestBlocksTrackWithMemoryManager(t *testing.T) {
	m := memory.New()
	c := newComposer(t, m)

	peaks := &memory.BlockSet{Intervals: []memory.Interval{
		{Chr: "chr1", Start: 1200, End: 1300},
		{Chr: "chr1", Start: 1500, End: 1700},
		{Chr: "chr2", Start: 1200, End: 1300},
	}}
	ch, err := c.Plot(context.Background(), peaks, PlotOptions{Name: "peaks"})
	require.NoError(t, err)

	sets := m.Sets()
	require.Len(t, sets, 1)
	assert.Equal(t, "epiviz-json-blocks-track", ch.TagName)
	assert.Equal(t, sets[0].ID(), ch.ID)
	assert.Equal(t, 2, ch.Payload.RowCount)

	_, cols := decodeData(t, ch)
	assert.Equal(t, "null", string(cols))
}

func TestLinePlotWithMemoryManager(t *testing.T) {
	m := memory.New()
	c := newComposer(t, m)

	signal := &memory.FeatureSet{
		Intervals: []memory.Interval{
			{Chr: "chr1", Start: 1000, End: 1100},
			{Chr: "chr1", Start: 1100, End: 1200},
			{Chr: "chr1", Start: 3000, End: 3100},
		},
		Samples: []string{"s1", "s2", "s3"},
		Values:  [][]float64{{1, 2, 3}, {4, 5, 6}, {7, 8, 9}},
	}
	ch, err := c.Plot(context.Background(), signal, PlotOptions{Name: "signal", ChartType: "LinePlot"})
	require.NoError(t, err)
	assert.Equal(t, "epiviz-json-line-plot", ch.TagName)

	_, cols := decodeData(t, ch)
	assert.Equal(t, []string{"s1", "s2", "s3"}, objectKeys(t, cols))

	var decoded map[string]measurement.Values
	require.NoError(t, json.Unmarshal(cols, &decoded))
	assert.Equal(t, []float64{1, 2}, decoded["s1"].Values)
	assert.Equal(t, []float64{7, 8}, decoded["s3"].Values)
}

func TestFilteredPlotWithMemoryManager(t *testing.T) {
	c := newComposer(t, memory.New())

	signal := &memory.FeatureSet{
		Intervals: []memory.Interval{
			{Chr: "chr1", Start: 1000, End: 1100, Meta: map[string]string{"name": "a"}},
			{Chr: "chr1", Start: 1100, End: 1200, Meta: map[string]string{"name": "b"}},
			{Chr: "chr1", Start: 1200, End: 1300, Meta: map[string]string{"name": "a"}},
		},
		Samples: []string{"s1", "s2"},
		Values:  [][]float64{{10, 20, 30}, {1, 2, 3}},
	}
	ch, err := c.Plot(context.Background(), signal, PlotOptions{
		Name:      "signal",
		ChartType: "LinePlot",
		RowFilter: measurement.Filter{"name": "b"},
	})
	require.NoError(t, err)

	rowsJSON, colsJSON := decodeData(t, ch)
	var rows measurement.Rows
	require.NoError(t, json.Unmarshal(rowsJSON, &rows))
	var cols map[string]measurement.Values
	require.NoError(t, json.Unmarshal(colsJSON, &cols))

	assert.Equal(t, []int{1}, rows.Values.ID)
	for _, id := range []string{"s1", "s2"} {
		assert.Len(t, cols[id].Values, len(rows.Values.ID), id)
		assert.Equal(t, rows.GlobalStartIndex, cols[id].GlobalStartIndex, id)
	}
	assert.Equal(t, []float64{20}, cols["s1"].Values)
	assert.Equal(t, []float64{2}, cols["s2"].Values)
}
