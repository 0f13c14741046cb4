package chart

// Kind describes a chart kind reported by a data manager.
type Kind struct {
	// Name is the kind name, e.g. "BlocksTrack".
	Name string
	// Tag is the default markup tag name for the kind.
	Tag string
	// HasValueSeries is false for interval-only kinds that render features
	// but never per-measurement values.
	HasValueSeries bool
}

// GenesTrack is the kind name of gene annotation tracks. It cannot be
// requested by name; managers report it as a default kind.
const GenesTrack = "GenesTrack"

var kinds = map[string]Kind{
	GenesTrack: {Name: GenesTrack, Tag: "epiviz-json-genes-track", HasValueSeries: false},
}

func init() {
	for _, t := range Types() {
		kinds[t.String()] = Kind{
			Name:           t.String(),
			Tag:            t.TagName(),
			HasValueSeries: t != BlocksTrack,
		}
	}
}

// LookupKind returns the descriptor for the named kind. Unknown kinds are
// assumed to carry value series and have no default tag.
func LookupKind(name string) Kind {
	if k, ok := kinds[name]; ok {
		return k
	}
	return Kind{Name: name, HasValueSeries: true}
}

// HasValueSeries reports whether charts of the named kind carry
// per-measurement values.
func HasValueSeries(kind string) bool {
	return LookupKind(kind).HasValueSeries
}
