package io

import (
	"bufio"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/matzehuels/genomechart/pkg/errors"
	"github.com/matzehuels/genomechart/pkg/measurement/memory"
)

// Supported import formats.
const (
	FormatBED      = "bed"
	FormatBedGraph = "bedgraph"
	FormatTable    = "tsv"
	FormatGenes    = "genes"
)

// ValidFormats is the set of supported import formats.
var ValidFormats = map[string]bool{
	FormatBED:      true,
	FormatBedGraph: true,
	FormatTable:    true,
	FormatGenes:    true,
}

// BedGraphSample is the sample name of bedGraph values.
const BedGraphSample = "score"

// maxLineSize bounds a single input line. BED12 lines of large genes carry
// long exon lists.
const maxLineSize = 4 << 20

// ValidateFormat checks that format is a supported import format.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return errors.New(errors.ErrCodeInvalidFormat,
			"invalid format: %q (must be one of: bed, bedgraph, tsv, genes)", format)
	}
	return nil
}

// ImportFile reads the file at path in the given format. The result is a
// *memory.BlockSet, *memory.FeatureSet or *memory.GeneSet.
func ImportFile(path, format string) (any, error) {
	if err := ValidateFormat(format); err != nil {
		return nil, err
	}
	if err := errors.ValidatePath(path); err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "open %s", path)
		}
		return nil, errors.Wrap(errors.ErrCodeInvalidPath, err, "open %s", path)
	}
	defer f.Close()

	var data any
	switch format {
	case FormatBED:
		data, err = ReadBED(f)
	case FormatBedGraph:
		data, err = ReadBedGraph(f)
	case FormatTable:
		data, err = ReadTable(f)
	case FormatGenes:
		data, err = ReadGenes(f)
	}
	if err != nil {
		return nil, errors.Wrap(errors.GetCode(err), err, "read %s", path)
	}
	return data, nil
}

// ReadBED decodes BED3 to BED6 records from r. Column 4 is stored as the
// "name" metadata, column 5 as "score", column 6 as the strand.
func ReadBED(r io.Reader) (*memory.BlockSet, error) {
	set := &memory.BlockSet{}
	err := scanRecords(r, func(line int, fields []string) error {
		iv, err := parseInterval(line, fields)
		if err != nil {
			return err
		}
		if len(fields) > 3 {
			iv.Meta = map[string]string{"name": fields[3]}
		}
		if len(fields) > 4 {
			iv.Meta["score"] = fields[4]
		}
		if len(fields) > 5 {
			if iv.Strand, err = parseStrand(line, fields[5]); err != nil {
				return err
			}
		}
		set.Intervals = append(set.Intervals, iv)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return set, nil
}

// ReadBedGraph decodes bedGraph records from r into a single-sample
// feature set.
func ReadBedGraph(r io.Reader) (*memory.FeatureSet, error) {
	set := &memory.FeatureSet{
		Samples: []string{BedGraphSample},
		Values:  [][]float64{nil},
	}
	err := scanRecords(r, func(line int, fields []string) error {
		if len(fields) < 4 {
			return formatError(line, "expected 4 columns, got %d", len(fields))
		}
		iv, err := parseInterval(line, fields)
		if err != nil {
			return err
		}
		v, err := parseValue(line, fields[3])
		if err != nil {
			return err
		}
		set.Intervals = append(set.Intervals, iv)
		set.Values[0] = append(set.Values[0], v)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return set, nil
}

// ReadTable decodes a tab-separated table from r. The first record is the
// header "chr start end <sample>..." and may be commented with "#".
func ReadTable(r io.Reader) (*memory.FeatureSet, error) {
	set := &memory.FeatureSet{}
	header := false
	err := scanLines(r, func(line int, text string) error {
		if !header {
			if strings.HasPrefix(text, "track") || strings.HasPrefix(text, "browser") {
				return nil
			}
			fields := strings.Split(strings.TrimPrefix(text, "#"), "\t")
			for i := range fields {
				fields[i] = strings.TrimSpace(fields[i])
			}
			if len(fields) < 4 {
				return formatError(line, "header needs chr, start, end and at least one sample")
			}
			for i, f := range fields[3:] {
				if f == "" {
					return formatError(line, "empty sample name in column %d", i+4)
				}
			}
			set.Samples = fields[3:]
			set.Values = make([][]float64, len(set.Samples))
			header = true
			return nil
		}
		if skipLine(text) {
			return nil
		}

		fields := strings.Split(text, "\t")
		if len(fields) != 3+len(set.Samples) {
			return formatError(line, "expected %d columns, got %d", 3+len(set.Samples), len(fields))
		}
		iv, err := parseInterval(line, fields)
		if err != nil {
			return err
		}
		for j, s := range fields[3:] {
			v, err := parseValue(line, s)
			if err != nil {
				return err
			}
			set.Values[j] = append(set.Values[j], v)
		}
		set.Intervals = append(set.Intervals, iv)
		return nil
	})
	if err != nil {
		return nil, err
	}
	if !header {
		return nil, errors.New(errors.ErrCodeInvalidFormat, "missing header")
	}
	return set, nil
}

// ReadGenes decodes BED12 gene models from r. Exons are derived from the
// blockSizes and blockStarts columns. Records with 6 to 11 columns yield
// genes without exons.
func ReadGenes(r io.Reader) (*memory.GeneSet, error) {
	set := &memory.GeneSet{}
	err := scanRecords(r, func(line int, fields []string) error {
		if len(fields) < 6 {
			return formatError(line, "expected at least 6 columns, got %d", len(fields))
		}
		iv, err := parseInterval(line, fields)
		if err != nil {
			return err
		}
		if iv.Strand, err = parseStrand(line, fields[5]); err != nil {
			return err
		}
		g := memory.Gene{Interval: iv, Name: fields[3]}
		if len(fields) >= 12 {
			if g.ExonStarts, g.ExonEnds, err = parseExons(line, iv, fields[9], fields[10], fields[11]); err != nil {
				return err
			}
		}
		set.Genes = append(set.Genes, g)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return set, nil
}

func parseExons(line int, gene memory.Interval, count, sizes, starts string) ([]int64, []int64, error) {
	n, err := strconv.Atoi(count)
	if err != nil || n < 0 {
		return nil, nil, formatError(line, "invalid blockCount %q", count)
	}
	sz, err := parseList(line, sizes)
	if err != nil {
		return nil, nil, err
	}
	st, err := parseList(line, starts)
	if err != nil {
		return nil, nil, err
	}
	if len(sz) != n || len(st) != n {
		return nil, nil, formatError(line, "blockCount %d does not match %d sizes and %d starts", n, len(sz), len(st))
	}

	exonStarts := make([]int64, n)
	exonEnds := make([]int64, n)
	for i := 0; i < n; i++ {
		exonStarts[i] = gene.Start + st[i]
		exonEnds[i] = exonStarts[i] + sz[i]
		if exonEnds[i] > gene.End {
			return nil, nil, formatError(line, "exon %d ends past the gene end", i+1)
		}
	}
	return exonStarts, exonEnds, nil
}

// parseList parses a comma-separated integer list. A trailing comma is
// allowed, as UCSC tools write one.
func parseList(line int, s string) ([]int64, error) {
	s = strings.TrimSuffix(s, ",")
	if s == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	out := make([]int64, len(parts))
	for i, p := range parts {
		v, err := strconv.ParseInt(strings.TrimSpace(p), 10, 64)
		if err != nil || v < 0 {
			return nil, formatError(line, "invalid list value %q", p)
		}
		out[i] = v
	}
	return out, nil
}

func parseInterval(line int, fields []string) (memory.Interval, error) {
	if len(fields) < 3 {
		return memory.Interval{}, formatError(line, "expected at least 3 columns, got %d", len(fields))
	}
	start, err := strconv.ParseInt(fields[1], 10, 64)
	if err != nil {
		return memory.Interval{}, formatError(line, "invalid start %q", fields[1])
	}
	end, err := strconv.ParseInt(fields[2], 10, 64)
	if err != nil {
		return memory.Interval{}, formatError(line, "invalid end %q", fields[2])
	}
	if start < 0 || end < start {
		return memory.Interval{}, formatError(line, "invalid interval %d-%d", start, end)
	}
	if err := errors.ValidateChromosome(fields[0]); err != nil {
		return memory.Interval{}, formatError(line, "invalid chromosome %q", fields[0])
	}
	return memory.Interval{Chr: fields[0], Start: start, End: end}, nil
}

func parseStrand(line int, s string) (string, error) {
	switch s {
	case "+", "-":
		return s, nil
	case ".", "*", "":
		return "", nil
	}
	return "", formatError(line, "invalid strand %q", s)
}

func parseValue(line int, s string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, formatError(line, "invalid value %q", s)
	}
	return v, nil
}

// scanRecords calls fn with the tab-separated fields of every data line.
func scanRecords(r io.Reader, fn func(line int, fields []string) error) error {
	return scanLines(r, func(line int, text string) error {
		if skipLine(text) {
			return nil
		}
		return fn(line, strings.Split(text, "\t"))
	})
}

// scanLines calls fn with every non-blank line, stripped of a trailing
// carriage return. Tabs are kept so that empty trailing fields survive.
// Line numbers start at 1.
func scanLines(r io.Reader, fn func(line int, text string) error) error {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSuffix(sc.Text(), "\r")
		if strings.TrimSpace(text) == "" {
			continue
		}
		if err := fn(line, text); err != nil {
			return err
		}
	}
	if err := sc.Err(); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidFormat, err, "line %d", line+1)
	}
	return nil
}

func skipLine(text string) bool {
	return strings.HasPrefix(text, "#") ||
		strings.HasPrefix(text, "track") ||
		strings.HasPrefix(text, "browser")
}

func formatError(line int, format string, args ...any) error {
	return errors.New(errors.ErrCodeInvalidFormat, "line %d: "+format, append([]any{line}, args...)...)
}
