package memory

// Interval is a genomic feature. Coordinates are zero-based, half-open.
type Interval struct {
	Chr    string            `json:"chr"`
	Start  int64             `json:"start"`
	End    int64             `json:"end"`
	Strand string            `json:"strand,omitempty"`
	Meta   map[string]string `json:"meta,omitempty"`
}

// BlockSet is a collection of intervals without values, such as peak calls.
// Its default chart kind is BlocksTrack.
type BlockSet struct {
	Intervals []Interval `json:"intervals"`
}

// Gene is a gene annotation: the gene body interval plus its exons.
type Gene struct {
	Interval
	Name       string  `json:"name"`
	ExonStarts []int64 `json:"exonStarts,omitempty"`
	ExonEnds   []int64 `json:"exonEnds,omitempty"`
}

// GeneSet is a gene annotation track. Its default chart kind is GenesTrack.
type GeneSet struct {
	Genes []Gene `json:"genes"`
}

// FeatureSet holds intervals with one numeric column per sample, such as
// coverage or expression tables.
type FeatureSet struct {
	Intervals []Interval `json:"intervals"`
	// Samples names the value columns in order.
	Samples []string `json:"samples"`
	// Values holds one column per sample, each aligned with Intervals.
	Values [][]float64 `json:"values"`
	// Annotations holds optional per-sample annotations keyed by sample.
	Annotations map[string]map[string]string `json:"annotations,omitempty"`
	// Kind is the default chart kind. Empty means LineTrack.
	Kind string `json:"kind,omitempty"`
}
