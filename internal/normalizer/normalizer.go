// Package normalizer merges raw findings that describe the same fact into
// canonical, source-attributed records.
package normalizer

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"

	"github.com/jonesrussell/intelsleuth/internal/domain"
)

// KeyFunc extracts the identifying substring of a finding. The result is
// folded before use, so implementations need not lowercase or trim.
type KeyFunc func(f domain.RawFinding) string

var (
	emailPattern      = regexp.MustCompile(`[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}`)
	urlPattern        = regexp.MustCompile(`(?i)\bhttps?://[^\s<>"']+`)
	phonePattern      = regexp.MustCompile(`\+?[0-9][0-9().\-\s]{5,}[0-9]`)
	domainNamePattern = regexp.MustCompile(`(?im)^\s*domain name:\s*(\S+)`)
)

const minPhoneDigits = 7

// DefaultKeyFuncs maps category hints to their key strategy. Hints not in
// the map fall back to WholeText.
func DefaultKeyFuncs() map[domain.Category]KeyFunc {
	return map[domain.Category]KeyFunc{
		domain.CategoryContactInfo:    ContactKey,
		domain.CategorySocialProfiles: URLKey,
		domain.CategoryRelatedLinks:   URLKey,
		domain.CategoryDomainInfo:     DomainInfoKey,
		domain.CategoryBreachData:     TitleKey,
		domain.CategoryLocationData:   WholeText,
		domain.CategoryRawData:        WholeText,
	}
}

// WholeText keys on the full content.
func WholeText(f domain.RawFinding) string { return f.Content.String() }

// TitleKey keys on the title, or the content when there is none.
func TitleKey(f domain.RawFinding) string {
	if strings.TrimSpace(f.Title) != "" {
		return f.Title
	}
	return f.Content.String()
}

// ContactKey keys on the first email address, then on the digits of the
// first phone number, then on the whole content.
func ContactKey(f domain.RawFinding) string {
	text := f.Content.String()
	if email := emailPattern.FindString(text); email != "" {
		return email
	}
	for _, candidate := range phonePattern.FindAllString(text, -1) {
		if digits := digitsOf(candidate); len(digits) >= minPhoneDigits {
			return digits
		}
	}
	return text
}

// URLKey keys on the first URL with scheme, "www." and trailing slash
// removed.
func URLKey(f domain.RawFinding) string {
	text := f.Content.String()
	u := urlPattern.FindString(text)
	if u == "" {
		return text
	}
	u = strings.ToLower(u)
	u = strings.TrimPrefix(u, "https://")
	u = strings.TrimPrefix(u, "http://")
	u = strings.TrimPrefix(u, "www.")
	return strings.TrimRight(u, "/")
}

// DomainInfoKey keys on a WHOIS "Domain Name:" value when present.
func DomainInfoKey(f domain.RawFinding) string {
	if m := domainNamePattern.FindStringSubmatch(f.Content.String()); m != nil {
		return m[1]
	}
	return f.Title + " " + f.Content.String()
}

func digitsOf(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Fold NFKC-normalizes s, collapses whitespace runs, trims and lowercases.
func Fold(s string) string {
	s = norm.NFKC.String(s)
	return strings.ToLower(strings.Join(strings.FieldsFunc(s, unicode.IsSpace), " "))
}

// Normalizer deduplicates findings.
type Normalizer struct {
	keys map[domain.Category]KeyFunc
}

// New returns a Normalizer using keys, or DefaultKeyFuncs when keys is nil.
func New(keys map[domain.Category]KeyFunc) *Normalizer {
	if keys == nil {
		keys = DefaultKeyFuncs()
	}
	return &Normalizer{keys: keys}
}

// Key returns the dedup key of f: its category hint and folded
// identifying substring. An empty second part means f cannot be keyed.
func (n *Normalizer) Key(f domain.RawFinding) (string, bool) {
	fn, ok := n.keys[f.CategoryHint]
	if !ok {
		fn = WholeText
	}
	id := Fold(fn(f))
	if id == "" {
		return "", false
	}
	return string(f.CategoryHint) + "|" + id, true
}

// Normalize merges findings sharing a key. The first finding seen for a
// key supplies the title and content; later ones only add their source.
// Findings with empty content or no key are dropped and counted in
// discarded. Output order is first-seen order.
func (n *Normalizer) Normalize(findings []domain.RawFinding) (records []domain.CanonicalRecord, discarded int) {
	index := make(map[string]int, len(findings))
	for pos, f := range findings {
		if f.Content.Empty() {
			discarded++
			continue
		}
		key, ok := n.Key(f)
		if !ok {
			discarded++
			continue
		}

		confidence := clamp(f.Confidence)
		if i, seen := index[key]; seen {
			rec := &records[i]
			if f.SourceID != "" {
				rec.AddSource(f.SourceID)
			}
			if confidence > rec.Confidence {
				rec.Confidence = confidence
			}
			continue
		}

		rec := domain.CanonicalRecord{
			DedupKey:   key,
			Title:      strings.TrimSpace(f.Title),
			Content:    f.Content,
			Hint:       f.CategoryHint,
			Confidence: confidence,
			FirstSeen:  pos,
		}
		if f.SourceID != "" {
			rec.Sources = []string{f.SourceID}
		}
		index[key] = len(records)
		records = append(records, rec)
	}
	return records, discarded
}

func clamp(c float64) float64 {
	switch {
	case c < 0:
		return 0
	case c > 1:
		return 1
	default:
		return c
	}
}
