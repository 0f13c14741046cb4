// Package composer binds a genomic window to a measurement manager and
// assembles chart widgets for the epiviz web components.
//
// A [Composer] owns one [Environment]. Each [Composer.Plot] call registers a
// data object with the manager, extracts the row, column and measurement
// payloads for the composer's window, wraps them in a chart tag and appends
// the chart to the environment:
//
//	register → extract → assemble → append
//
// Plot is all-or-nothing: when any step fails the environment is left
// untouched.
//
// # Usage
//
//	w, _ := genomics.ParseWindow("chr1:1000-2000")
//	c, err := composer.New(w, memory.New(), composer.WithLogger(logger))
//	if err != nil {
//	    return err
//	}
//	chart, err := c.Plot(ctx, peaks, composer.PlotOptions{Name: "peaks"})
//	if err != nil {
//	    return err
//	}
//	err = c.Environment().Render(os.Stdout)
//
// # Concurrency
//
// A Composer serves a single session. Plot mutates the environment without
// synchronization; use one composer per session or request.
package composer

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/genomechart/pkg/cache"
	"github.com/matzehuels/genomechart/pkg/chart"
	"github.com/matzehuels/genomechart/pkg/errors"
	"github.com/matzehuels/genomechart/pkg/genomics"
	"github.com/matzehuels/genomechart/pkg/measurement"
	"github.com/matzehuels/genomechart/pkg/observability"
)

// DefaultNamePrefix prefixes synthetic datasource names.
const DefaultNamePrefix = "ds"

// Composer assembles charts for one genomic window.
type Composer struct {
	window  genomics.Window
	manager measurement.Manager
	env     *Environment

	cache  cache.Cache
	keyer  cache.Keyer
	ttl    time.Duration
	logger *log.Logger

	namePrefix string
	seq        int
}

// Option configures a Composer.
type Option func(*Composer)

// WithLogger sets the logger. Stages are logged at debug level.
func WithLogger(l *log.Logger) Option { return func(c *Composer) { c.logger = l } }

// WithCache enables payload caching. A nil keyer selects the default keyer.
func WithCache(ch cache.Cache, keyer cache.Keyer) Option {
	return func(c *Composer) {
		c.cache = ch
		c.keyer = keyer
	}
}

// WithCacheTTL sets the lifetime of cached payloads.
func WithCacheTTL(ttl time.Duration) Option { return func(c *Composer) { c.ttl = ttl } }

// WithNamePrefix sets the prefix of synthetic datasource names.
func WithNamePrefix(prefix string) Option { return func(c *Composer) { c.namePrefix = prefix } }

// New creates a composer for window w backed by manager.
func New(w genomics.Window, manager measurement.Manager, opts ...Option) (*Composer, error) {
	if err := w.Validate(); err != nil {
		return nil, err
	}
	if manager == nil {
		return nil, errors.New(errors.ErrCodeInvalidInput, "no measurement manager")
	}

	c := &Composer{
		window:     w,
		manager:    manager,
		env:        newEnvironment(w),
		ttl:        cache.DefaultTTL,
		namePrefix: DefaultNamePrefix,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.cache == nil {
		c.cache = cache.NewNullCache()
	}
	if c.keyer == nil {
		c.keyer = cache.NewDefaultKeyer()
	}
	if c.logger == nil {
		c.logger = log.Default()
	}
	return c, nil
}

// PlotOptions configures one [Composer.Plot] call.
type PlotOptions struct {
	// Name is the datasource name. Defaults to OriginName.
	Name string
	// OriginName records where the data came from. When both names are
	// empty a synthetic name "<prefix>_<n>" is used for both.
	OriginName string
	// ChartType is a chart type name such as "LinePlot". Empty selects the
	// measurement set's default tag.
	ChartType string
	// Settings and Colors are passed to the chart verbatim.
	Settings map[string]any
	Colors   map[string]any
	// Params are forwarded to the manager verbatim.
	Params map[string]any
	// RowFilter restricts the row payload by metadata. Nil means no filter.
	RowFilter measurement.Filter
}

// Window returns the composer's genomic window.
func (c *Composer) Window() genomics.Window { return c.window }

// Environment returns the environment holding all charts plotted so far.
func (c *Composer) Environment() *Environment { return c.env }

// Plot registers data with the manager, builds a chart for it and appends
// the chart to the environment.
//
// Errors carry the codes INVALID_CHART_TYPE (unknown ChartType, checked
// before registration), REGISTRATION_FAILED (manager rejected the data) and
// QUERY_FAILED (row or value query failed). Collaborator errors stay
// reachable with errors.As. On error the environment is unchanged.
func (c *Composer) Plot(ctx context.Context, data any, opts PlotOptions) (result *Chart, err error) {
	start := time.Now()
	name, origin := c.resolveNames(opts)
	logger := c.logger.With("name", name)

	hooks := observability.Composer()
	hooks.OnPlotStart(ctx, name, opts.ChartType)
	defer func() {
		tag, rows := "", 0
		if result != nil {
			tag, rows = result.TagName, result.Payload.RowCount
		}
		hooks.OnPlotComplete(ctx, name, tag, rows, time.Since(start), err)
	}()

	var tagName string
	if opts.ChartType != "" {
		t, err := chart.ParseType(opts.ChartType)
		if err != nil {
			return nil, err
		}
		tagName = t.TagName()
	}

	set, err := c.manager.AddMeasurements(ctx, data, name, origin, opts.Params)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeRegistrationFailed, err, "add measurements for %s", name)
	}
	if set == nil {
		return nil, errors.New(errors.ErrCodeRegistrationFailed, "add measurements for %s: manager returned no set", name)
	}
	logger.Debug("registered data source",
		"set", set.ID(),
		"kind", set.DefaultChartKind(),
		"measurements", len(set.Measurements()))

	payload, err := c.Payload(ctx, set, opts.RowFilter)
	if err != nil {
		return nil, err
	}
	logger.Debug("extracted payload",
		"rows", payload.RowCount,
		"cols", payload.Cols != nil,
		"window", c.window)

	if tagName == "" {
		tagName = set.DefaultTagName()
		if tagName == "" {
			return nil, errors.New(errors.ErrCodeInvalidChartType, "no chart type given and %s has no default tag", set.ID())
		}
	}

	ch, err := newChart(tagName, set.ID(), payload, opts.Settings, opts.Colors)
	if err != nil {
		return nil, err
	}
	c.env.Append(ch)

	logger.Debug("appended chart", "tag", tagName, "charts", c.env.Len(), "duration", time.Since(start))
	return ch, nil
}

// resolveNames applies the naming fallbacks: Name defaults to OriginName,
// and a synthetic name is used when both are empty.
func (c *Composer) resolveNames(opts PlotOptions) (name, origin string) {
	name, origin = opts.Name, opts.OriginName
	if name == "" && origin == "" {
		c.seq++
		origin = fmt.Sprintf("%s_%d", c.namePrefix, c.seq)
	}
	if name == "" {
		name = origin
	}
	if origin == "" {
		origin = name
	}
	return name, origin
}

// Displayer presents an environment, e.g. by writing a document or serving
// it over HTTP.
type Displayer interface {
	Display(ctx context.Context, env *Environment) error
}

// DisplayFunc adapts a function to [Displayer].
type DisplayFunc func(ctx context.Context, env *Environment) error

// Display calls f.
func (f DisplayFunc) Display(ctx context.Context, env *Environment) error { return f(ctx, env) }

// Show hands the environment to d.
func (c *Composer) Show(ctx context.Context, d Displayer) error {
	return d.Display(ctx, c.env)
}
