// Package pkg provides the libraries behind genomechart, a composer for
// epiviz genomic chart pages.
//
// # Overview
//
// genomechart turns genomic data files into declarative chart markup: an
// epiviz-environment tag holding one chart tag per data source, all scoped to
// a single genomic window. The browser-side web components do the drawing.
//
// The pkg directory is organized into these areas:
//
//  1. [composer] - Chart composition (register, extract, assemble, append)
//  2. [measurement] - The data manager contract and the in-memory [memory] manager
//  3. [chart], [genomics], [markup] - Vocabulary, windows and the tag tree
//  4. [io], [config], [display] - File import, configuration and output
//  5. [cache], [observability], [errors] - Infrastructure
//
// # Architecture
//
// The typical data flow:
//
//	BED / bedGraph / TSV / BED12 files
//	         ↓
//	    [io] package (parse into memory data types)
//	         ↓
//	    [measurement] manager (register, query rows and values)
//	         ↓
//	    [composer] package (payloads, chart tags, environment)
//	         ↓
//	    [display] package (HTML document or HTTP server)
//
// # Quick Start
//
//	w, _ := genomics.ParseWindow("chr1:1000-2000")
//	c, err := composer.New(w, memory.New())
//	if err != nil {
//	    return err
//	}
//	peaks, err := io.ImportFile("peaks.bed", io.FormatBED)
//	if err != nil {
//	    return err
//	}
//	if _, err := c.Plot(ctx, peaks, composer.PlotOptions{Name: "peaks"}); err != nil {
//	    return err
//	}
//	return c.Show(ctx, &display.File{Path: "peaks.html"})
//
// # Caching
//
// Row and column payloads are pure functions of a measurement set and a
// window, so the composer can memoize their JSON in any [cache] backend:
//
//	c, err := composer.New(w, m, composer.WithCache(fileCache, nil))
//
// [composer]: https://pkg.go.dev/github.com/matzehuels/genomechart/pkg/composer
// [measurement]: https://pkg.go.dev/github.com/matzehuels/genomechart/pkg/measurement
// [memory]: https://pkg.go.dev/github.com/matzehuels/genomechart/pkg/measurement/memory
// [chart]: https://pkg.go.dev/github.com/matzehuels/genomechart/pkg/chart
// [genomics]: https://pkg.go.dev/github.com/matzehuels/genomechart/pkg/genomics
// [markup]: https://pkg.go.dev/github.com/matzehuels/genomechart/pkg/markup
// [io]: https://pkg.go.dev/github.com/matzehuels/genomechart/pkg/io
// [config]: https://pkg.go.dev/github.com/matzehuels/genomechart/pkg/config
// [display]: https://pkg.go.dev/github.com/matzehuels/genomechart/pkg/display
// [cache]: https://pkg.go.dev/github.com/matzehuels/genomechart/pkg/cache
// [observability]: https://pkg.go.dev/github.com/matzehuels/genomechart/pkg/observability
// [errors]: https://pkg.go.dev/github.com/matzehuels/genomechart/pkg/errors
package pkg
