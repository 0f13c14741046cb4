// Package genomics contains definitions related to genomic coordinates.
package genomics

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/matzehuels/genomechart/pkg/errors"
)

// Window defines the genomic region every chart of an environment is scoped
// to. Coordinates are zero-based and half-open: a feature overlaps the window
// when it starts before End and ends after Start.
//
// A Window is a value; once constructed with NewWindow or ParseWindow it is
// never mutated.
type Window struct {
	// Chr is the chromosome (reference sequence) name, e.g. "chr1".
	Chr string `json:"chr"`
	// Start and End bound the region in base pairs. End >= Start.
	Start int64 `json:"start"`
	End   int64 `json:"end"`
}

// NewWindow returns a validated Window.
func NewWindow(chr string, start, end int64) (Window, error) {
	w := Window{Chr: chr, Start: start, End: end}
	if err := w.Validate(); err != nil {
		return Window{}, err
	}
	return w, nil
}

// Validate reports whether the window is well formed.
func (w Window) Validate() error {
	if err := errors.ValidateChromosome(w.Chr); err != nil {
		return err
	}
	if w.Start < 0 {
		return errors.New(errors.ErrCodeInvalidWindow, "%s: negative start", w)
	}
	if w.End < w.Start {
		return errors.New(errors.ErrCodeInvalidWindow, "%s: start > end", w)
	}
	return nil
}

// ParseWindow parses a region of the form "chr1:1000-2000". Thousands
// separators in the coordinates are accepted ("chr1:1,000-2,000").
func ParseWindow(s string) (Window, error) {
	chr, rng, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok {
		return Window{}, errors.New(errors.ErrCodeInvalidWindow, "region %q: missing ':'", s)
	}
	startStr, endStr, ok := strings.Cut(rng, "-")
	if !ok {
		return Window{}, errors.New(errors.ErrCodeInvalidWindow, "region %q: missing '-'", s)
	}

	start, err := parseCoordinate(startStr)
	if err != nil {
		return Window{}, errors.Wrap(errors.ErrCodeInvalidWindow, err, "region %q: parsing start", s)
	}
	end, err := parseCoordinate(endStr)
	if err != nil {
		return Window{}, errors.Wrap(errors.ErrCodeInvalidWindow, err, "region %q: parsing end", s)
	}
	return NewWindow(chr, start, end)
}

func parseCoordinate(s string) (int64, error) {
	return strconv.ParseInt(strings.ReplaceAll(strings.TrimSpace(s), ",", ""), 10, 64)
}

// Overlaps reports whether the interval [start, end) on chr intersects w.
// Zero-length intervals overlap when they fall inside the window.
func (w Window) Overlaps(chr string, start, end int64) bool {
	if chr != w.Chr {
		return false
	}
	if start == end {
		return start >= w.Start && start < w.End
	}
	return start < w.End && end > w.Start
}

// Width returns the number of base pairs covered by the window.
func (w Window) Width() int64 {
	return w.End - w.Start
}

// String formats the window as "chr:start-end".
func (w Window) String() string {
	return fmt.Sprintf("%s:%d-%d", w.Chr, w.Start, w.End)
}
