package api

import (
	"embed"
	"html/template"
	"strings"

	"github.com/jonesrussell/intelsleuth/internal/collector"
	"github.com/jonesrussell/intelsleuth/internal/domain"
	"github.com/jonesrussell/intelsleuth/internal/report"
)

//go:embed templates/*.html
var templateFS embed.FS

// Templates parses the embedded HTML views.
func Templates() *template.Template {
	funcs := template.FuncMap{
		"isLink": func(v any) bool {
			s, ok := v.(string)
			return ok && (strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://"))
		},
	}
	return template.Must(template.New("").Funcs(funcs).ParseFS(templateFS, "templates/*.html"))
}

type categoryView struct {
	Name  string
	Label string
	Items []report.Item
}

type resultsView struct {
	Query      string
	QueryType  string
	Summary    string
	Delivery   string
	Categories []categoryView
}

// newResultsView orders the non-empty categories for display.
func newResultsView(resp report.Response) resultsView {
	v := resultsView{
		Query:     resp.Query,
		QueryType: resp.QueryType,
		Summary:   resp.Summary,
		Delivery:  resp.Delivery,
	}
	for _, c := range domain.Categories {
		items := resp.Results[string(c)]
		if len(items) == 0 {
			continue
		}
		v.Categories = append(v.Categories, categoryView{
			Name:  string(c),
			Label: collector.Label(string(c)),
			Items: items,
		})
	}
	return v
}
