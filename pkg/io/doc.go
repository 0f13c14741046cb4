// Package io reads genomic data files into in-memory measurement data and
// writes composed chart environments as standalone HTML documents.
//
// # Formats
//
//   - "bed": BED3 to BED6 intervals, read with [ReadBED] into a
//     [memory.BlockSet]. Name, score and strand columns become row metadata
//     and strand.
//   - "bedgraph": bedGraph coverage, read with [ReadBedGraph] into a
//     [memory.FeatureSet] with a single "score" sample.
//   - "tsv": tab-separated tables with a "chr start end <sample>..."
//     header, read with [ReadTable] into a [memory.FeatureSet].
//   - "genes": BED12 gene models, read with [ReadGenes] into a
//     [memory.GeneSet]. BED6 input yields genes without exons.
//
// Comment lines ("#"), "track" and "browser" lines and blank lines are
// skipped in all formats. Coordinates are zero-based, half-open, as in BED.
//
// # Import
//
// Use [ImportFile] to read a file by format name:
//
//	data, err := io.ImportFile("peaks.bed", io.FormatBED)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	chart, err := c.Plot(ctx, data, composer.PlotOptions{Name: "peaks"})
//
// Malformed input fails with an INVALID_FORMAT error naming the offending
// line.
//
// # Export
//
// Use [ExportHTML] to write an environment to a file, or [WriteHTML] to
// write to any io.Writer. The document loads the web component scripts
// and component bundles given in [HTMLOptions], or [DefaultScripts] and
// [DefaultImports] when none are set.
//
// [memory.BlockSet]: github.com/matzehuels/genomechart/pkg/measurement/memory.BlockSet
// [memory.FeatureSet]: github.com/matzehuels/genomechart/pkg/measurement/memory.FeatureSet
// [memory.GeneSet]: github.com/matzehuels/genomechart/pkg/measurement/memory.GeneSet
package io
