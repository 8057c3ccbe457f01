// Package extract fetches a web page and reduces it to its title and
// readable text.
package extract

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	readability "github.com/go-shiori/go-readability"

	"github.com/jonesrussell/intelsleuth/infrastructure/logger"
	"github.com/jonesrussell/intelsleuth/internal/collector"
)

// DefaultMaxLength is the default text limit in characters.
const DefaultMaxLength = 5000

const (
	sourceID = "extract"
	ellipsis = "..."
)

// ErrInvalidURL is returned for anything but absolute http(s) URLs.
var ErrInvalidURL = errors.New("url must be an absolute http or https url")

// Page is the extracted content of one URL.
type Page struct {
	URL       string `json:"url"`
	Title     string `json:"title"`
	Text      string `json:"text"`
	Truncated bool   `json:"truncated"`
}

// Extractor fetches and extracts pages.
type Extractor struct {
	fetcher *collector.Fetcher
}

// New returns an Extractor.
func New(client *http.Client, cfg collector.FetcherConfig, log logger.Logger) *Extractor {
	return &Extractor{fetcher: collector.NewFetcher(sourceID, client, cfg, log)}
}

// Extract fetches rawURL and returns its title and visible text, cut to
// maxLength characters with an ellipsis appended when longer. A maxLength
// of zero or less uses DefaultMaxLength.
func (e *Extractor) Extract(ctx context.Context, rawURL string, maxLength int) (*Page, error) {
	u, err := url.Parse(rawURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, ErrInvalidURL
	}

	resp, err := e.fetcher.Get(ctx, u.String(), http.Header{"Accept": {"text/html,application/xhtml+xml"}})
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", u, err)
	}
	page, err := Parse(resp.Body)
	if err != nil {
		return nil, err
	}
	if page.Title == "" || page.Text == "" {
		applyReadability(page, resp.Body, u)
	}
	page.URL = u.String()
	page.Text, page.Truncated = Truncate(page.Text, maxLength)
	return page, nil
}

// Parse extracts the title and visible text of an HTML document. Scripts,
// styles and other non-content elements are ignored.
func Parse(body []byte) (*Page, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	title := collapse(doc.Find("title").First().Text())
	doc.Find("script, style, noscript, template, svg, iframe").Remove()

	root := doc.Find("body")
	if root.Length() == 0 {
		root = doc.Selection
	}

	var lines []string
	root.Find("*").Each(func(_ int, s *goquery.Selection) {
		// Only leaf-level text, so nested blocks are not repeated.
		if s.Children().Length() > 0 && !hasOwnText(s) {
			return
		}
		if line := collapse(ownText(s)); line != "" {
			lines = append(lines, line)
		}
	})
	if len(lines) == 0 {
		if text := collapse(root.Text()); text != "" {
			lines = append(lines, text)
		}
	}

	return &Page{Title: title, Text: strings.Join(lines, "\n")}, nil
}

// Truncate cuts s to maxLength characters, appending an ellipsis when it
// does.
func Truncate(s string, maxLength int) (string, bool) {
	if maxLength <= 0 {
		maxLength = DefaultMaxLength
	}
	if utf8.RuneCountInString(s) <= maxLength {
		return s, false
	}
	runes := []rune(s)
	return string(runes[:maxLength]) + ellipsis, true
}

// applyReadability fills a missing title or text from a readability pass
// over the whole document. Failures leave page untouched.
func applyReadability(page *Page, body []byte, u *url.URL) {
	article, err := readability.FromReader(bytes.NewReader(body), u)
	if err != nil {
		return
	}
	if page.Title == "" {
		page.Title = collapse(article.Title)
	}
	if page.Text == "" {
		page.Text = strings.TrimSpace(article.TextContent)
	}
}

func hasOwnText(s *goquery.Selection) bool {
	return strings.TrimSpace(ownText(s)) != ""
}

// ownText returns the text nodes directly under s.
func ownText(s *goquery.Selection) string {
	var b strings.Builder
	s.Contents().Each(func(_ int, c *goquery.Selection) {
		if goquery.NodeName(c) == "#text" {
			b.WriteString(c.Text())
			b.WriteByte(' ')
		}
	})
	return b.String()
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
