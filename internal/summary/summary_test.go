package summary_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jonesrussell/intelsleuth/internal/domain"
	"github.com/jonesrussell/intelsleuth/internal/summary"
)

func records(n int) []domain.CanonicalRecord {
	return make([]domain.CanonicalRecord, n)
}

func TestSynthesize(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name       string
		categories map[domain.Category][]domain.CanonicalRecord
		want       string
	}{
		{
			name:       "empty",
			categories: nil,
			want:       summary.NoResults,
		},
		{
			name: "domain lookup",
			categories: map[domain.Category][]domain.CanonicalRecord{
				domain.CategoryRelatedLinks: records(2),
				domain.CategoryDomainInfo:   records(1),
			},
			want: "domain_info: 1 record found. related_links: 2 records found. " +
				"Information was found in 2 categories: domain_info, related_links.",
		},
		{
			name: "breach adds caution",
			categories: map[domain.Category][]domain.CanonicalRecord{
				domain.CategoryBreachData: records(3),
			},
			want: "breach_data: 3 records found. Information was found in 1 category: breach_data. " + summary.BreachCaution,
		},
		{
			name: "empty category slice is ignored",
			categories: map[domain.Category][]domain.CanonicalRecord{
				domain.CategoryBreachData: {},
			},
			want: summary.NoResults,
		},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got := summary.Synthesize(tc.categories)
			assert.Equal(t, tc.want, got)
			assert.Equal(t, got, summary.Synthesize(tc.categories))
		})
	}
}

func TestSynthesize_NoBreachWordingWithoutBreaches(t *testing.T) {
	t.Parallel()

	got := summary.Synthesize(map[domain.Category][]domain.CanonicalRecord{
		domain.CategoryContactInfo: records(1),
	})
	assert.NotContains(t, got, "breach")
	assert.NotContains(t, got, "Caution")
}
