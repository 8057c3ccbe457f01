package domain

import "strings"

// ContentKind is the wire shape of a finding's content.
type ContentKind string

// Content kinds.
const (
	ContentText ContentKind = "text"
	ContentList ContentKind = "list"
	ContentPre  ContentKind = "pre"
)

// Content is plain text, a list of text items, or preformatted text.
// Text is used by the text and pre kinds, Items by the list kind.
type Content struct {
	Kind  ContentKind
	Text  string
	Items []string
}

// Text returns plain text content.
func Text(s string) Content { return Content{Kind: ContentText, Text: s} }

// Pre returns preformatted content.
func Pre(s string) Content { return Content{Kind: ContentPre, Text: s} }

// List returns list content.
func List(items ...string) Content { return Content{Kind: ContentList, Items: items} }

// String flattens the content, joining list items with newlines.
func (c Content) String() string {
	if c.Kind == ContentList {
		return strings.Join(c.Items, "\n")
	}
	return c.Text
}

// Empty reports whether the content carries no visible text.
func (c Content) Empty() bool {
	return strings.TrimSpace(c.String()) == ""
}
