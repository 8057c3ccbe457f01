// Package classifier maps raw search input to a query type.
package classifier

import (
	"net/netip"
	"regexp"
	"strings"

	"github.com/jonesrussell/intelsleuth/internal/domain"
)

// Phone numbers carry between minPhoneDigits and maxPhoneDigits digits.
const (
	minPhoneDigits = 7
	maxPhoneDigits = 15
	maxDomainLen   = 253
)

var (
	emailPattern    = regexp.MustCompile(`[A-Za-z0-9._%+\-]+@(?:[A-Za-z0-9](?:[A-Za-z0-9\-]{0,61}[A-Za-z0-9])?\.)+[A-Za-z]{2,63}`)
	phonePattern    = regexp.MustCompile(`^\+?[0-9().\-\s]+$`)
	domainPattern   = regexp.MustCompile(`^(?:[A-Za-z0-9](?:[A-Za-z0-9\-]{0,61}[A-Za-z0-9])?\.)+[A-Za-z]{2,63}$`)
	usernamePattern = regexp.MustCompile(`^@?[A-Za-z0-9._\-]{1,64}$`)

	unsafeChars = strings.NewReplacer("<", "", ">", "", "&", "", "'", "", `"`, "", ";", "")
)

// Sanitize removes markup and quoting characters and trims whitespace.
func Sanitize(raw string) string {
	return strings.TrimSpace(unsafeChars.Replace(raw))
}

// Classify returns the type of raw. It never fails: anything unrecognized
// is QueryTypeUnknown. Rules are tried in priority order and the first
// match wins.
func Classify(raw string) domain.QueryType {
	t, _ := classify(strings.TrimSpace(raw))
	return t
}

// Parse classifies raw and extracts the term collectors should look up:
// the email address, IP literal, phone digits, lowercased domain or the
// username without its leading @.
func Parse(raw string) domain.Query {
	text := strings.TrimSpace(raw)
	t, term := classify(text)
	return domain.Query{Text: text, Type: t, Term: term}
}

func classify(s string) (domain.QueryType, string) {
	if s == "" {
		return domain.QueryTypeUnknown, ""
	}
	if m := emailPattern.FindString(s); m != "" {
		return domain.QueryTypeEmail, strings.ToLower(m)
	}
	if addr, err := netip.ParseAddr(s); err == nil {
		return domain.QueryTypeIP, addr.String()
	}
	if digits, ok := phoneDigits(s); ok {
		return domain.QueryTypePhone, digits
	}
	if len(s) <= maxDomainLen && domainPattern.MatchString(s) {
		return domain.QueryTypeDomain, strings.ToLower(s)
	}
	if usernamePattern.MatchString(s) {
		return domain.QueryTypeUsername, strings.TrimPrefix(s, "@")
	}
	return domain.QueryTypeUnknown, s
}

// phoneDigits accepts digit-majority strings made of digits and the usual
// separators, and returns the digits with a leading + kept.
func phoneDigits(s string) (string, bool) {
	if !phonePattern.MatchString(s) {
		return "", false
	}

	var b strings.Builder
	if strings.HasPrefix(s, "+") {
		b.WriteByte('+')
	}
	digits := 0
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
			digits++
		}
	}

	if digits < minPhoneDigits || digits > maxPhoneDigits {
		return "", false
	}
	if digits*2 <= len(s) {
		return "", false
	}
	return b.String(), true
}
