// Package summary renders the executive summary of a result set.
package summary

import (
	"fmt"
	"strings"

	"github.com/jonesrussell/intelsleuth/internal/domain"
)

// NoResults is the summary of an empty result set.
const NoResults = "No information was found for this query."

// BreachCaution is appended when breach data was found.
const BreachCaution = "Caution: the subject appears in known data breaches; review the breach_data entries."

// Synthesize returns a deterministic summary: one sentence per non-empty
// category in presentation order, a sentence naming the categories
// present, and the breach caution when breach_data is non-empty.
func Synthesize(categories map[domain.Category][]domain.CanonicalRecord) string {
	var (
		sentences []string
		present   []string
	)
	for _, c := range domain.Categories {
		n := len(categories[c])
		if n == 0 {
			continue
		}
		present = append(present, string(c))
		sentences = append(sentences, fmt.Sprintf("%s: %d %s found.", c, n, plural(n, "record", "records")))
	}
	if len(present) == 0 {
		return NoResults
	}

	sentences = append(sentences, fmt.Sprintf("Information was found in %d %s: %s.",
		len(present), plural(len(present), "category", "categories"), strings.Join(present, ", ")))
	if len(categories[domain.CategoryBreachData]) > 0 {
		sentences = append(sentences, BreachCaution)
	}
	return strings.Join(sentences, " ")
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
