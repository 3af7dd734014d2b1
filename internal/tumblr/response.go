package tumblr

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// Response is the envelope every v2 API call returns.
type Response struct {
	Meta     Meta     `json:"meta"`
	Response *Payload `json:"response"`
}

// Meta carries the API status echoed in the body.
type Meta struct {
	Status int    `json:"status"`
	Msg    string `json:"msg"`
}

// Payload is the posts listing.
type Payload struct {
	Blog       Blog   `json:"blog"`
	Posts      []Post `json:"posts"`
	TotalPosts int    `json:"total_posts"`
}

// Blog describes the blog the posts belong to.
type Blog struct {
	Title        string `json:"title"`
	Name         string `json:"name"`
	Posts        int    `json:"posts"`
	URL          string `json:"url"`
	Updated      int64  `json:"updated"`
	Description  string `json:"description"`
	Ask          bool   `json:"ask"`
	AskPageTitle string `json:"ask_page_title"`
	AskAnon      bool   `json:"ask_anon"`
	IsNSFW       bool   `json:"is_nsfw"`
	ShareLikes   bool   `json:"share_likes"`
	Likes        int    `json:"likes"`
}

// UpdatedAt returns the blog's last update time.
func (b Blog) UpdatedAt() time.Time {
	if b.Updated == 0 {
		return time.Time{}
	}
	return time.Unix(b.Updated, 0).UTC()
}

// Post is one entry of the posts array. Which content fields are populated
// depends on Type: text posts carry Title and Body, photo and video posts a
// Caption.
type Post struct {
	ID          int64     `json:"id"`
	BlogName    string    `json:"blog_name"`
	PostURL     string    `json:"post_url"`
	Slug        string    `json:"slug"`
	Type        string    `json:"type"`
	Date        Timestamp `json:"date"`
	Timestamp   int64     `json:"timestamp"`
	State       string    `json:"state"`
	Format      string    `json:"format"`
	ReblogKey   string    `json:"reblog_key"`
	Tags        []string  `json:"tags"`
	ShortURL    string    `json:"short_url"`
	Summary     string    `json:"summary"`
	Highlighted []string  `json:"highlighted"`
	NoteCount   int       `json:"note_count"`
	SourceURL   string    `json:"source_url"`
	SourceTitle string    `json:"source_title"`
	Title       string    `json:"title"`
	Body        string    `json:"body"`
	Caption     string    `json:"caption"`
}

// Timestamp decodes the post "date" field. The API sends
// "2006-01-02 15:04:05 GMT"; RFC 3339 and zone-less ISO forms are accepted too,
// the latter read as UTC.
type Timestamp struct {
	time.Time
}

var timestampLayouts = []string{
	"2006-01-02 15:04:05 MST",
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// ParseTimestamp parses s with the layouts Timestamp accepts.
func ParseTimestamp(s string) (time.Time, error) {
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("parse date %q: unrecognized layout", s)
}

func (t *Timestamp) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		t.Time = time.Time{}
		return nil
	}
	s, err := strconv.Unquote(string(data))
	if err != nil {
		return fmt.Errorf("parse date: %w", err)
	}
	if s == "" {
		t.Time = time.Time{}
		return nil
	}
	parsed, err := ParseTimestamp(s)
	if err != nil {
		return err
	}
	t.Time = parsed
	return nil
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte(`""`), nil
	}
	return json.Marshal(t.UTC().Format("2006-01-02 15:04:05 GMT"))
}

// PublishedAt returns the post date, falling back to the unix timestamp.
func (p Post) PublishedAt() time.Time {
	if !p.Date.IsZero() {
		return p.Date.Time
	}
	if p.Timestamp != 0 {
		return time.Unix(p.Timestamp, 0).UTC()
	}
	return time.Time{}
}
