package domain

// RawFinding is one uninterpreted fact produced by a single collector.
type RawFinding struct {
	SourceID     string
	Title        string
	Content      Content
	CategoryHint Category
	Confidence   float64
}

// CanonicalRecord is a deduplicated, source-attributed fact.
//
// Sources is an ordered set: the first element is the source that produced
// the surviving title and content.
type CanonicalRecord struct {
	DedupKey   string
	Title      string
	Sources    []string
	Content    Content
	Hint       Category
	Category   Category
	Confidence float64
	// FirstSeen is the position of the earliest contributing finding in
	// collection order.
	FirstSeen int
}

// AddSource records src unless it is already present.
func (r *CanonicalRecord) AddSource(src string) {
	for _, s := range r.Sources {
		if s == src {
			return
		}
	}
	r.Sources = append(r.Sources, src)
}
