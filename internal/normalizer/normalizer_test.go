package normalizer_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonesrussell/intelsleuth/internal/domain"
	"github.com/jonesrussell/intelsleuth/internal/normalizer"
)

func contact(source, text string) domain.RawFinding {
	return domain.RawFinding{
		SourceID:     source,
		Title:        "Email",
		Content:      domain.Text(text),
		CategoryHint: domain.CategoryContactInfo,
		Confidence:   0.5,
	}
}

func TestNormalize_MergesCaseAndWhitespaceVariants(t *testing.T) {
	t.Parallel()

	records, discarded := normalizer.New(nil).Normalize([]domain.RawFinding{
		contact("hunter", "A@x.com"),
		contact("duckduckgo", "a@x.com "),
	})

	require.Len(t, records, 1)
	assert.Zero(t, discarded)
	assert.Equal(t, []string{"hunter", "duckduckgo"}, records[0].Sources)
	assert.Equal(t, "A@x.com", records[0].Content.Text, "first-seen content wins")
	assert.Equal(t, "contact_info|a@x.com", records[0].DedupKey)
}

func TestNormalize_SameKeyDifferentHintDoesNotMerge(t *testing.T) {
	t.Parallel()

	link := domain.RawFinding{SourceID: "bing", Content: domain.Text("a@x.com"), CategoryHint: domain.CategoryRelatedLinks}
	records, _ := normalizer.New(nil).Normalize([]domain.RawFinding{contact("hunter", "a@x.com"), link})

	assert.Len(t, records, 2)
}

func TestNormalize_DiscardsEmptyContent(t *testing.T) {
	t.Parallel()

	records, discarded := normalizer.New(nil).Normalize([]domain.RawFinding{
		contact("hunter", "   "),
		{SourceID: "bing", CategoryHint: domain.CategoryRelatedLinks, Content: domain.List()},
		contact("hunter", "b@x.com"),
	})

	assert.Len(t, records, 1)
	assert.Equal(t, 2, discarded)
}

func TestNormalize_ClampsConfidenceAndKeepsMax(t *testing.T) {
	t.Parallel()

	a := contact("a", "c@x.com")
	a.Confidence = -1
	b := contact("b", "C@X.COM")
	b.Confidence = 7

	records, _ := normalizer.New(nil).Normalize([]domain.RawFinding{a, b})

	require.Len(t, records, 1)
	assert.InDelta(t, 1.0, records[0].Confidence, 0.0001)
}

func TestNormalize_IsIdempotent(t *testing.T) {
	t.Parallel()

	n := normalizer.New(nil)
	first, _ := n.Normalize([]domain.RawFinding{
		contact("hunter", "A@x.com"),
		contact("bing", "a@x.com"),
		{SourceID: "bing", Title: "Example", Content: domain.Text("https://www.example.com/"), CategoryHint: domain.CategoryRelatedLinks},
	})

	var again []domain.RawFinding
	for _, r := range first {
		for _, s := range r.Sources {
			again = append(again, domain.RawFinding{SourceID: s, Title: r.Title, Content: r.Content, CategoryHint: r.Hint, Confidence: r.Confidence})
		}
	}
	second, discarded := n.Normalize(again)

	assert.Zero(t, discarded)
	require.Len(t, second, len(first))
	for i := range first {
		assert.Equal(t, first[i].DedupKey, second[i].DedupKey)
		assert.Equal(t, first[i].Sources, second[i].Sources)
		assert.Equal(t, first[i].Content, second[i].Content)
	}
}

func TestKeyStrategies(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name    string
		finding domain.RawFinding
		want    string
	}{
		{
			name:    "url strips scheme www and slash",
			finding: domain.RawFinding{CategoryHint: domain.CategoryRelatedLinks, Content: domain.Text("HTTPS://www.Example.com/")},
			want:    "related_links|example.com",
		},
		{
			name:    "social profile url",
			finding: domain.RawFinding{CategoryHint: domain.CategorySocialProfiles, Content: domain.Text("Profile at http://github.com/octo")},
			want:    "social_profiles|github.com/octo",
		},
		{
			name:    "phone digits",
			finding: domain.RawFinding{CategoryHint: domain.CategoryContactInfo, Content: domain.Text("Call +1 (555) 123-4567 today")},
			want:    "contact_info|15551234567",
		},
		{
			name:    "whois domain name",
			finding: domain.RawFinding{CategoryHint: domain.CategoryDomainInfo, Title: "WHOIS", Content: domain.Pre("Domain Name: EXAMPLE.COM\nRegistrar: X")},
			want:    "domain_info|example.com",
		},
		{
			name:    "breach by title",
			finding: domain.RawFinding{CategoryHint: domain.CategoryBreachData, Title: "Adobe", Content: domain.Text("153M accounts")},
			want:    "breach_data|adobe",
		},
		{
			name:    "unknown hint whole text with collapsed whitespace",
			finding: domain.RawFinding{CategoryHint: "misc", Content: domain.Text("  Some\t\nValue ")},
			want:    "misc|some value",
		},
		{
			name:    "fullwidth folds",
			finding: domain.RawFinding{CategoryHint: domain.CategoryRawData, Content: domain.Text("ＡＢＣ")},
			want:    "raw_data|abc",
		},
	}

	n := normalizer.New(nil)
	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got, ok := n.Key(tc.finding)
			require.True(t, ok)
			assert.Equal(t, tc.want, got)
		})
	}
}
