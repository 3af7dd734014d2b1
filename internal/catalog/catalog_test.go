package catalog

import (
	"context"
	"errors"
	"net/url"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ppiankov/tumblrsearch/internal/config"
	"github.com/ppiankov/tumblrsearch/internal/domain"
	"github.com/ppiankov/tumblrsearch/internal/logger"
	"github.com/ppiankov/tumblrsearch/internal/store"
	"github.com/ppiankov/tumblrsearch/internal/tumblr"
)

type recordingFetcher struct {
	urls []string
}

func (r *recordingFetcher) Fetch(_ context.Context, rawURL string) (*tumblr.Response, error) {
	r.urls = append(r.urls, rawURL)
	return &tumblr.Response{Response: &tumblr.Payload{Posts: []tumblr.Post{
		{ID: 7, Type: "text", Body: "<p>Contact me at jane@example.com today.</p>"},
	}}}, nil
}

func testConfig() *config.Config {
	return &config.Config{
		Tumblr: config.TumblrConfig{
			APIKey:   "k",
			BaseURL:  "https://api.example.com/v2/blog",
			Method:   "posts",
			PostType: "text",
		},
		Server:    config.ServerConfig{PublicURL: "https://search.example.com/"},
		Summarize: config.SummarizeConfig{MaxLen: 200},
		Feeds: []config.FeedConfig{
			{ID: "space", Title: "Space", Blog: "spacenews", Tags: []string{"mars"}},
			{ID: "art", Blog: "artblog", PostType: "photo"},
		},
	}
}

func openStore(t *testing.T) *store.Store {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "catalog.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })
	return st
}

func TestSyncAndFeed(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig()
	st := openStore(t)

	n, err := Sync(ctx, st, cfg)
	if err != nil {
		t.Fatalf("Sync: %v", err)
	}
	if n != 2 {
		t.Errorf("synced %d, want 2", n)
	}

	f := &recordingFetcher{}
	c := New(st, cfg, f)
	if c.BaseURL() != "https://search.example.com/feeds" {
		t.Errorf("base url = %q", c.BaseURL())
	}

	feed, err := c.Feed(ctx, "art")
	if err != nil {
		t.Fatalf("Feed: %v", err)
	}
	if feed.SearchBaseURL() != "https://search.example.com/feeds/art/search" {
		t.Errorf("search base = %q", feed.SearchBaseURL())
	}
	if _, err := feed.Search(ctx, "", url.Values{}); err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(f.urls) != 1 || !strings.HasPrefix(f.urls[0], "https://api.example.com/v2/blog/artblog.tumblr.com/posts/photo?") {
		t.Errorf("requested %v", f.urls)
	}

	feeds, err := c.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(feeds) != 2 || feeds[0].Identifier != "art" {
		t.Errorf("feeds = %+v", feeds)
	}
}

func TestFeed_NotFound(t *testing.T) {
	c := New(openStore(t), testConfig(), &recordingFetcher{})
	if _, err := c.Feed(context.Background(), "nope"); !errors.Is(err, domain.ErrFeedNotFound) {
		t.Errorf("error = %v, want ErrFeedNotFound", err)
	}
}

func TestMetadata(t *testing.T) {
	md := Metadata(config.DescriptionConfig{ShortName: "Mine", Contact: "a@b.c"})
	if md.ShortName != "Mine" || md.Contact != "a@b.c" {
		t.Errorf("overrides lost: %+v", md)
	}
	if md.SyndicationRight != "open" || md.OutputEncoding != "UTF-8" {
		t.Errorf("defaults lost: %+v", md)
	}
}

func TestOptions_Redaction(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig()
	cfg.Privacy.Redact.Enabled = true
	cfg.Privacy.Redact.Patterns = []string{`[\w.]+@[\w.]+\w`}

	opts, err := Options(cfg, logger.NewNop(), nil)
	if err != nil {
		t.Fatalf("Options: %v", err)
	}
	st := openStore(t)
	if _, err := Sync(ctx, st, cfg); err != nil {
		t.Fatalf("Sync: %v", err)
	}
	feed, err := New(st, cfg, &recordingFetcher{}, opts...).Feed(ctx, "space")
	if err != nil {
		t.Fatalf("Feed: %v", err)
	}
	res, err := feed.Search(ctx, "application/json", nil)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if !strings.Contains(string(res.Body), `"summary": "Contact me at [REDACTED] today."`) {
		t.Errorf("summary not redacted:\n%s", res.Body)
	}
}

func TestOptions_BadPattern(t *testing.T) {
	cfg := testConfig()
	cfg.Privacy.Redact.Enabled = true
	cfg.Privacy.Redact.Patterns = []string{"("}
	if _, err := Options(cfg, logger.NewNop(), nil); err == nil {
		t.Fatal("expected error for invalid pattern")
	}
}
