// Package domain holds the normalized feed types shared by the fetch, search and
// syndication layers, and the typed failures they report.
package domain

import (
	"strings"
	"time"
)

// Item is one blog post normalized for syndication.
type Item struct {
	ID          string    // source post id, stringified
	Title       string    // post title, may be empty for non-text posts
	Abstract    string    // caption when present, otherwise body (HTML)
	URL         string    // canonical short link to the post
	Published   time.Time // publication time, zone preserved
	Author      string    // blog name
	Tags        string    // comma-joined tag list
	ContentType string    // source post type: text, photo, quote, ...
}

// TagList splits the comma-joined tags back into a slice. Empty tags are dropped.
func (i Item) TagList() []string {
	if i.Tags == "" {
		return nil
	}
	parts := strings.Split(i.Tags, ",")
	tags := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			tags = append(tags, p)
		}
	}
	return tags
}

// DisplayTitle returns the title, falling back to the content type and id
// for untitled posts such as photos and quotes.
func (i Item) DisplayTitle() string {
	if strings.TrimSpace(i.Title) != "" {
		return i.Title
	}
	if i.ContentType != "" {
		return i.ContentType + " post " + i.ID
	}
	return "post " + i.ID
}

// Page is the result of one fetch: the mapped items plus the paging context
// needed to render an OpenSearch response.
type Page struct {
	FeedID       string
	Title        string
	Link         string
	Updated      time.Time
	Query        string
	TotalResults int
	StartIndex   int
	ItemsPerPage int
	Items        []Item
}

// LastUpdated returns the newest item time, or Updated when the page is empty.
func (p Page) LastUpdated() time.Time {
	latest := p.Updated
	for _, it := range p.Items {
		if it.Published.After(latest) {
			latest = it.Published
		}
	}
	return latest
}
