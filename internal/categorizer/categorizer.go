// Package categorizer buckets canonical records into the fixed result
// categories.
package categorizer

import (
	"sort"

	"github.com/jonesrussell/intelsleuth/internal/domain"
)

// Categorize assigns each record to the category named by its hint, or to
// raw_data when the hint is not a known category. Within a category
// records are ordered by number of corroborating sources, most first, and
// then by first appearance. Categories with no records are absent.
func Categorize(records []domain.CanonicalRecord) map[domain.Category][]domain.CanonicalRecord {
	out := make(map[domain.Category][]domain.CanonicalRecord)
	for _, r := range records {
		c := r.Hint
		if !c.Known() {
			c = domain.CategoryRawData
		}
		r.Category = c
		out[c] = append(out[c], r)
	}

	for _, recs := range out {
		sort.SliceStable(recs, func(i, j int) bool {
			if len(recs[i].Sources) != len(recs[j].Sources) {
				return len(recs[i].Sources) > len(recs[j].Sources)
			}
			return recs[i].FirstSeen < recs[j].FirstSeen
		})
	}
	return out
}
