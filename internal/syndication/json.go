package syndication

import (
	"encoding/json"
	"io"
	"time"

	"github.com/ppiankov/tumblrsearch/internal/domain"
	"github.com/ppiankov/tumblrsearch/internal/summarize"
)

type jsonFeed struct {
	Meta  jsonMeta   `json:"meta"`
	Items []jsonItem `json:"items"`
}

type jsonMeta struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	Link         string `json:"link,omitempty"`
	Updated      string `json:"updated,omitempty"`
	Query        string `json:"query,omitempty"`
	TotalResults int    `json:"total_results"`
	StartIndex   int    `json:"start_index"`
	ItemsPerPage int    `json:"items_per_page"`
}

type jsonItem struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	URL         string   `json:"url,omitempty"`
	Published   string   `json:"published,omitempty"`
	Author      string   `json:"author,omitempty"`
	ContentType string   `json:"content_type,omitempty"`
	Tags        []string `json:"tags,omitempty"`
	Summary     string   `json:"summary,omitempty"`
	Abstract    string   `json:"abstract,omitempty"`
}

// JSONFormatter writes a page as an indented JSON document.
type JSONFormatter struct {
	summarizer summarize.Summarizer
}

// NewJSON creates a JSON formatter.
func NewJSON(s summarize.Summarizer) *JSONFormatter {
	return &JSONFormatter{summarizer: s}
}

func (f *JSONFormatter) Name() string        { return FormatJSON }
func (f *JSONFormatter) ContentType() string { return MIMEJSON + "; charset=utf-8" }

// Format writes page as JSON to w.
func (f *JSONFormatter) Format(w io.Writer, page domain.Page) error {
	out := jsonFeed{
		Meta: jsonMeta{
			ID:           page.FeedID,
			Title:        page.Title,
			Link:         page.Link,
			Updated:      jsonTime(page.LastUpdated()),
			Query:        page.Query,
			TotalResults: page.TotalResults,
			StartIndex:   page.StartIndex,
			ItemsPerPage: page.ItemsPerPage,
		},
		Items: make([]jsonItem, 0, len(page.Items)),
	}
	for _, it := range page.Items {
		out.Items = append(out.Items, jsonItem{
			ID:          it.ID,
			Title:       it.DisplayTitle(),
			URL:         it.URL,
			Published:   jsonTime(it.Published),
			Author:      it.Author,
			ContentType: it.ContentType,
			Tags:        it.TagList(),
			Summary:     f.summarizer.Summarize(it.Abstract),
			Abstract:    it.Abstract,
		})
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return writeErr(FormatJSON, enc.Encode(out))
}

func jsonTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(time.RFC3339)
}
