package collector

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var titler = cases.Title(language.English)

// Label renders a snake_case field name for display, e.g. "breach_date"
// as "Breach Date".
func Label(field string) string {
	return titler.String(strings.ReplaceAll(field, "_", " "))
}

// Field is one labelled value of a structured upstream answer.
type Field struct {
	Name  string
	Value string
}

// Lines renders non-empty fields as "Label: value" strings.
func Lines(fields ...Field) []string {
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		if v := strings.TrimSpace(f.Value); v != "" {
			out = append(out, Label(f.Name)+": "+v)
		}
	}
	return out
}
