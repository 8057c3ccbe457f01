package searchengine

import (
	"bytes"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Source ids.
const (
	DuckDuckGo = "duckduckgo"
	Bing       = "bing"
)

// Default result page endpoints.
const (
	DuckDuckGoURL = "https://html.duckduckgo.com/html/"
	BingURL       = "https://www.bing.com/search"
)

// Result is one organic search result.
type Result struct {
	Title   string
	URL     string
	Snippet string
}

// Engine knows how to query one search engine and parse its result page.
type Engine struct {
	Name    string
	BaseURL string
	parse   func(doc *goquery.Document) []Result
}

// NewDuckDuckGo returns the DuckDuckGo HTML engine. An empty baseURL uses
// DuckDuckGoURL.
func NewDuckDuckGo(baseURL string) Engine {
	if baseURL == "" {
		baseURL = DuckDuckGoURL
	}
	return Engine{Name: DuckDuckGo, BaseURL: baseURL, parse: parseDuckDuckGo}
}

// NewBing returns the Bing engine. An empty baseURL uses BingURL.
func NewBing(baseURL string) Engine {
	if baseURL == "" {
		baseURL = BingURL
	}
	return Engine{Name: Bing, BaseURL: baseURL, parse: parseBing}
}

// SearchURL returns the result page URL for term.
func (e Engine) SearchURL(term string) string {
	return e.BaseURL + "?q=" + url.QueryEscape(term)
}

// Parse extracts results from a result page, in page order.
func (e Engine) Parse(body []byte) ([]Result, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse %s page: %w", e.Name, err)
	}
	return e.parse(doc), nil
}

func parseDuckDuckGo(doc *goquery.Document) []Result {
	var results []Result
	doc.Find(".result").Each(func(_ int, s *goquery.Selection) {
		link := s.Find(".result__title a").First()
		href, ok := link.Attr("href")
		if !ok {
			return
		}
		results = append(results, Result{
			Title:   cleanText(s.Find(".result__title").First().Text()),
			URL:     unwrapRedirect(href),
			Snippet: cleanText(s.Find(".result__snippet").First().Text()),
		})
	})
	return results
}

func parseBing(doc *goquery.Document) []Result {
	var results []Result
	doc.Find(".b_algo").Each(func(_ int, s *goquery.Selection) {
		link := s.Find("h2 a").First()
		href, ok := link.Attr("href")
		if !ok {
			return
		}
		results = append(results, Result{
			Title:   cleanText(s.Find("h2").First().Text()),
			URL:     href,
			Snippet: cleanText(s.Find(".b_caption p").First().Text()),
		})
	})
	return results
}

// unwrapRedirect returns the target of a DuckDuckGo redirect link, which
// carries it in the uddg parameter.
func unwrapRedirect(href string) string {
	u, err := url.Parse(href)
	if err != nil {
		return href
	}
	if target := u.Query().Get("uddg"); target != "" {
		return target
	}
	if strings.HasPrefix(href, "//") {
		return "https:" + href
	}
	return href
}

func cleanText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
