// Package api serves feeds over HTTP with gin.
package api

import (
	"bytes"
	"context"
	"mime"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ppiankov/tumblrsearch/internal/logger"
	"github.com/ppiankov/tumblrsearch/internal/search"
	"github.com/ppiankov/tumblrsearch/internal/store"
	"github.com/ppiankov/tumblrsearch/internal/syndication"
)

// Catalog resolves feeds by identifier.
type Catalog interface {
	Feed(ctx context.Context, id string) (*search.Feed, error)
	List(ctx context.Context) ([]store.Feed, error)
	BaseURL() string
}

// Handler holds HTTP request handlers
type Handler struct {
	catalog Catalog
	version string
	log     logger.Logger
}

// NewHandler creates a new handler instance
func NewHandler(catalog Catalog, version string, log logger.Logger) *Handler {
	if log == nil {
		log = logger.NewNop()
	}
	return &Handler{catalog: catalog, version: version, log: log}
}

// FeedResponse is one entry of GET /feeds.
type FeedResponse struct {
	ID             string    `json:"id"`
	Title          string    `json:"title,omitempty"`
	Abstract       string    `json:"abstract,omitempty"`
	Blog           string    `json:"blog"`
	Tags           []string  `json:"tags,omitempty"`
	PostType       string    `json:"post_type,omitempty"`
	SearchURL      string    `json:"search_url"`
	DescriptionURL string    `json:"description_url"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// Search renders one search of the feed named by :id.
func (h *Handler) Search(c *gin.Context) {
	id := c.Param("id")
	feed, err := h.catalog.Feed(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}

	mimeType, err := negotiate(c.Query(search.ParamFormat), c.GetHeader("Accept"), feed.DefaultMIMEType())
	if err != nil {
		h.fail(c, err)
		return
	}

	res, err := feed.Search(c.Request.Context(), mimeType, c.Request.URL.Query())
	if err != nil {
		h.fail(c, err)
		return
	}

	c.Header("X-Total-Results", strconv.Itoa(res.TotalResults))
	c.Header("Content-Location", res.URL)
	c.Data(http.StatusOK, res.ContentType, res.Body)
}

// Description serves the OpenSearch description of the feed named by :id.
func (h *Handler) Description(c *gin.Context) {
	feed, err := h.catalog.Feed(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	d, err := feed.Description()
	if err != nil {
		h.fail(c, err)
		return
	}

	var buf bytes.Buffer
	if _, err := d.WriteTo(&buf); err != nil {
		h.fail(c, err)
		return
	}
	c.Data(http.StatusOK, search.DescriptionMIME+"; charset=utf-8", buf.Bytes())
}

// ListFeeds lists the registered feeds.
func (h *Handler) ListFeeds(c *gin.Context) {
	feeds, err := h.catalog.List(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}

	base := h.catalog.BaseURL()
	out := make([]FeedResponse, 0, len(feeds))
	for _, f := range feeds {
		out = append(out, FeedResponse{
			ID:             f.Identifier,
			Title:          f.Title,
			Abstract:       f.Abstract,
			Blog:           f.Blog,
			Tags:           f.Tags,
			PostType:       f.PostType,
			SearchURL:      base + "/" + url.PathEscape(f.Identifier) + "/search",
			DescriptionURL: base + "/" + url.PathEscape(f.Identifier) + "/description",
			UpdatedAt:      f.UpdatedAt,
		})
	}
	c.JSON(http.StatusOK, gin.H{"feeds": out, "count": len(out)})
}

// HealthCheck reports liveness.
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"version": h.version,
	})
}

// negotiate picks the response media type. An explicit format wins and must
// be supported; otherwise the first supported Accept entry is used, falling
// back to def.
func negotiate(format, accept, def string) (string, error) {
	if format != "" {
		fm, err := syndication.ForFormat(format, nil)
		if err != nil {
			return "", err
		}
		m, _ := syndication.MIMEFor(fm.Name())
		return m, nil
	}
	for _, part := range strings.Split(accept, ",") {
		mt, _, err := mime.ParseMediaType(strings.TrimSpace(part))
		if err != nil {
			continue
		}
		if _, ok := syndication.FormatForMIME(mt); ok {
			return mt, nil
		}
	}
	return def, nil
}
