package memory

import (
	"strconv"
	"strings"
)

// joinInts formats exon coordinates the way UCSC gene tables do.
func joinInts(vs []int64) string {
	parts := make([]string, len(vs))
	for i, v := range vs {
		parts[i] = strconv.FormatInt(v, 10)
	}
	return strings.Join(parts, ",")
}
