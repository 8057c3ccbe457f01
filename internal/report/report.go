// Package report renders a result set as the JSON body returned by the API
// and posted to webhooks.
package report

import (
	"strings"

	"github.com/jonesrussell/intelsleuth/internal/domain"
)

// Item is one record on the wire. Content is a string for text and pre
// records and a list of strings for list records.
type Item struct {
	Title       string `json:"title"`
	Source      string `json:"source"`
	ContentType string `json:"content_type"`
	Content     any    `json:"content"`
}

// Response is the public result body.
type Response struct {
	Query     string            `json:"query"`
	QueryType string            `json:"query_type"`
	Results   map[string][]Item `json:"results"`
	Summary   string            `json:"summary"`
	Delivery  string            `json:"delivery,omitempty"`
}

// FromResult builds the body for rs. Empty categories are omitted and
// Delivery is left for the caller to fill in.
func FromResult(rs *domain.ResultSet) Response {
	resp := Response{
		Query:     rs.Query.Text,
		QueryType: string(rs.Query.Type),
		Results:   make(map[string][]Item, len(rs.Categories)),
		Summary:   rs.Summary,
	}
	for _, c := range domain.Categories {
		recs := rs.Categories[c]
		if len(recs) == 0 {
			continue
		}
		items := make([]Item, len(recs))
		for i, r := range recs {
			items[i] = NewItem(r)
		}
		resp.Results[string(c)] = items
	}
	return resp
}

// NewItem converts one record.
func NewItem(r domain.CanonicalRecord) Item {
	item := Item{
		Title:       r.Title,
		Source:      strings.Join(r.Sources, ", "),
		ContentType: string(r.Content.Kind),
	}
	if r.Content.Kind == domain.ContentList {
		items := r.Content.Items
		if items == nil {
			items = []string{}
		}
		item.Content = items
	} else {
		item.Content = r.Content.Text
	}
	return item
}
