// Package api serves the IntelSleuth HTML form and JSON endpoints.
package api

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jonesrussell/intelsleuth/infrastructure/logger"
	"github.com/jonesrussell/intelsleuth/internal/extract"
	"github.com/jonesrussell/intelsleuth/internal/pipeline"
	"github.com/jonesrussell/intelsleuth/internal/querylog"
)

// Messages shown to callers.
const (
	msgInvalidQuery = "Please provide a valid search query"
	msgInvalidURL   = "Please provide a valid URL"
)

// Query listing bounds.
const (
	defaultQueryLimit = 20
	maxQueryLimit     = 100
)

// Searcher runs searches.
type Searcher interface {
	Search(ctx context.Context, req pipeline.Request) (*pipeline.Result, error)
}

// Extractor fetches page text.
type Extractor interface {
	Extract(ctx context.Context, rawURL string, maxLength int) (*extract.Page, error)
}

// QueryLister lists logged queries.
type QueryLister interface {
	Recent(ctx context.Context, limit int) ([]querylog.Row, error)
}

// Handler holds the route handlers.
type Handler struct {
	searcher  Searcher
	extractor Extractor
	queries   QueryLister
	log       logger.Logger
}

// NewHandler returns a Handler. queries may be nil when the query log is
// disabled.
func NewHandler(s Searcher, e Extractor, queries QueryLister, log logger.Logger) *Handler {
	return &Handler{searcher: s, extractor: e, queries: queries, log: log}
}

// Index renders the search form.
func (h *Handler) Index(c *gin.Context) {
	c.HTML(http.StatusOK, "index.html", gin.H{"Error": c.Query("error")})
}

// Search handles the form post and renders the result view.
func (h *Handler) Search(c *gin.Context) {
	req := pipeline.Request{
		Query:      c.PostForm("query"),
		WebhookURL: c.PostForm("webhook_url"),
	}

	res, err := h.searcher.Search(c.Request.Context(), req)
	if errors.Is(err, pipeline.ErrEmptyQuery) {
		c.Redirect(http.StatusSeeOther, "/?error="+url.QueryEscape(msgInvalidQuery))
		return
	}
	if err != nil {
		h.internalError(c, err)
		return
	}

	c.HTML(http.StatusOK, "results.html", newResultsView(res.Response))
}

// APISearch handles GET /api/search.
func (h *Handler) APISearch(c *gin.Context) {
	req := pipeline.Request{
		Query:      c.Query("query"),
		WebhookURL: c.Query("webhook_url"),
	}

	res, err := h.searcher.Search(c.Request.Context(), req)
	if errors.Is(err, pipeline.ErrEmptyQuery) {
		c.JSON(http.StatusBadRequest, gin.H{"error": msgInvalidQuery})
		return
	}
	if err != nil {
		h.internalError(c, err)
		return
	}

	c.JSON(http.StatusOK, res.Response)
}

// ExtractContent handles GET /api/extract-content.
func (h *Handler) ExtractContent(c *gin.Context) {
	maxLength := extract.DefaultMaxLength
	if raw := c.Query("max_length"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "max_length must be a positive integer"})
			return
		}
		maxLength = n
	}

	page, err := h.extractor.Extract(c.Request.Context(), c.Query("url"), maxLength)
	switch {
	case errors.Is(err, extract.ErrInvalidURL):
		c.JSON(http.StatusBadRequest, gin.H{"error": msgInvalidURL})
		return
	case err != nil:
		logger.FromContext(c.Request.Context()).Warn("Content extraction failed",
			logger.String("url", c.Query("url")),
			logger.Error(err),
		)
		c.JSON(http.StatusBadGateway, gin.H{"error": "failed to fetch content"})
		return
	}

	c.JSON(http.StatusOK, page)
}

type queryRow struct {
	ID        int64     `json:"id"`
	QueryText string    `json:"query_text"`
	QueryType string    `json:"query_type"`
	Timestamp time.Time `json:"timestamp"`
}

// RecentQueries handles GET /api/queries.
func (h *Handler) RecentQueries(c *gin.Context) {
	limit := defaultQueryLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
			return
		}
		limit = min(n, maxQueryLimit)
	}

	rows, err := h.queries.Recent(c.Request.Context(), limit)
	if err != nil {
		h.internalError(c, err)
		return
	}

	out := make([]queryRow, len(rows))
	for i, r := range rows {
		out[i] = queryRow{ID: r.ID, QueryText: r.QueryText, QueryType: r.QueryType, Timestamp: r.Timestamp}
	}
	c.JSON(http.StatusOK, gin.H{"queries": out, "count": len(out)})
}

func (h *Handler) internalError(c *gin.Context, err error) {
	_ = c.Error(err)
	h.log.Error("Request failed",
		logger.String("path", c.Request.URL.Path),
		logger.Error(err),
	)
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
}
