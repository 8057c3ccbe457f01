package classifier_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jonesrussell/intelsleuth/internal/classifier"
	"github.com/jonesrussell/intelsleuth/internal/domain"
)

func TestClassify(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name  string
		input string
		want  domain.QueryType
	}{
		{name: "plain email", input: "jane.doe@example.com", want: domain.QueryTypeEmail},
		{name: "email with plus", input: "jane+osint@mail.example.co.uk", want: domain.QueryTypeEmail},
		{name: "email wins over other text", input: "contact jane@example.com or 555-123-4567", want: domain.QueryTypeEmail},
		{name: "ipv4", input: "8.8.8.8", want: domain.QueryTypeIP},
		{name: "ipv6", input: "2001:4860:4860::8888", want: domain.QueryTypeIP},
		{name: "phone with separators", input: "+1 (555) 123-4567", want: domain.QueryTypePhone},
		{name: "phone seven digits", input: "555-1234", want: domain.QueryTypePhone},
		{name: "phone too short", input: "12345", want: domain.QueryTypeUsername},
		{name: "phone too long", input: "1234567890123456", want: domain.QueryTypeUsername},
		{name: "domain", input: "example.com", want: domain.QueryTypeDomain},
		{name: "subdomain", input: "mail.Example.ORG", want: domain.QueryTypeDomain},
		{name: "dotted quad is not a domain", input: "999.1.1.1", want: domain.QueryTypeUsername},
		{name: "username", input: "jdoe_1987", want: domain.QueryTypeUsername},
		{name: "at username", input: "@jdoe", want: domain.QueryTypeUsername},
		{name: "free text", input: "John Doe Toronto", want: domain.QueryTypeUnknown},
		{name: "url", input: "https://example.com/about", want: domain.QueryTypeUnknown},
		{name: "empty", input: "", want: domain.QueryTypeUnknown},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, classifier.Classify(tc.input))
		})
	}
}

func TestClassify_Deterministic(t *testing.T) {
	t.Parallel()

	inputs := []string{"a@b.io", "10.0.0.1", "example.com", "@someone", "what is this"}
	for _, in := range inputs {
		assert.Equal(t, classifier.Classify(in), classifier.Classify(in), in)
	}
}

func TestParse_ExtractsTerm(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		input    string
		wantType domain.QueryType
		wantTerm string
	}{
		{"Contact: Jane@Example.com", domain.QueryTypeEmail, "jane@example.com"},
		{"+1 (555) 123-4567", domain.QueryTypePhone, "+15551234567"},
		{"Example.COM", domain.QueryTypeDomain, "example.com"},
		{"@jdoe", domain.QueryTypeUsername, "jdoe"},
		{"  8.8.4.4 ", domain.QueryTypeIP, "8.8.4.4"},
	}

	for _, tc := range testCases {
		tc := tc
		q := classifier.Parse(tc.input)
		assert.Equal(t, tc.wantType, q.Type, tc.input)
		assert.Equal(t, tc.wantTerm, q.Term, tc.input)
	}
}

func TestSanitize(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "scriptalert(1)/script", classifier.Sanitize(" <script>alert(1)</script>; "))
	assert.Equal(t, "jane@example.com", classifier.Sanitize("'jane@example.com'"))
	assert.Empty(t, classifier.Sanitize("  <>  "))
}
