// Package catalog resolves registered feeds into searchable search.Feed values.
package catalog

import (
	"context"
	"fmt"
	"strings"

	"github.com/ppiankov/tumblrsearch/internal/config"
	"github.com/ppiankov/tumblrsearch/internal/logger"
	"github.com/ppiankov/tumblrsearch/internal/metrics"
	"github.com/ppiankov/tumblrsearch/internal/privacy"
	"github.com/ppiankov/tumblrsearch/internal/search"
	"github.com/ppiankov/tumblrsearch/internal/store"
	"github.com/ppiankov/tumblrsearch/internal/summarize"
	"github.com/ppiankov/tumblrsearch/internal/tumblr"
)

// FeedsPath is the path under the public URL where feeds are served.
const FeedsPath = "/feeds"

// FeedStore is the read side of the feed registry.
type FeedStore interface {
	GetFeed(ctx context.Context, id string) (store.Feed, error)
	ListFeeds(ctx context.Context) ([]store.Feed, error)
}

// Catalog builds a search.Feed per request from the registry row and the
// shared API settings. Nothing is cached, so registry edits apply immediately.
type Catalog struct {
	feeds   FeedStore
	cfg     *config.Config
	fetcher tumblr.Fetcher
	opts    []search.Option
}

// New creates a Catalog. opts are applied to every feed it builds.
func New(feeds FeedStore, cfg *config.Config, fetcher tumblr.Fetcher, opts ...search.Option) *Catalog {
	return &Catalog{feeds: feeds, cfg: cfg, fetcher: fetcher, opts: opts}
}

// BaseURL is the root the feeds' search and description URLs hang off.
func (c *Catalog) BaseURL() string {
	return BaseURL(c.cfg)
}

// BaseURL returns {server.public_url}/feeds.
func BaseURL(cfg *config.Config) string {
	return strings.TrimRight(cfg.Server.PublicURL, "/") + FeedsPath
}

// Feed returns the searchable feed registered as id.
func (c *Catalog) Feed(ctx context.Context, id string) (*search.Feed, error) {
	rec, err := c.feeds.GetFeed(ctx, id)
	if err != nil {
		return nil, err
	}
	return search.NewFeed(FeedConfig(rec, c.cfg.Application(rec.PostType)), c.BaseURL(), c.fetcher, c.opts...)
}

// List returns every registered feed.
func (c *Catalog) List(ctx context.Context) ([]store.Feed, error) {
	return c.feeds.ListFeeds(ctx)
}

// FeedConfig converts a registry row into a feed definition.
func FeedConfig(rec store.Feed, app tumblr.Application) search.FeedConfig {
	return search.FeedConfig{
		Identifier:  rec.Identifier,
		Title:       rec.Title,
		Abstract:    rec.Abstract,
		Blog:        rec.Blog,
		Tags:        rec.Tags,
		Application: app,
	}
}

// FromConfig converts a feed declared in config.yaml into a registry row.
func FromConfig(f config.FeedConfig) store.Feed {
	return store.Feed{
		Identifier: f.ID,
		Title:      f.Title,
		Abstract:   f.Abstract,
		Blog:       f.Blog,
		Tags:       f.Tags,
		PostType:   f.PostType,
	}
}

// Metadata converts the description section, filling blanks from
// search.DefaultMetadata.
func Metadata(d config.DescriptionConfig) search.Metadata {
	md := search.DefaultMetadata()
	set := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	set(&md.ShortName, d.ShortName)
	set(&md.LongName, d.LongName)
	set(&md.Description, d.Description)
	set(&md.Tags, d.Tags)
	set(&md.Contact, d.Contact)
	set(&md.Developer, d.Developer)
	set(&md.Attribution, d.Attribution)
	set(&md.SyndicationRight, d.SyndicationRight)
	set(&md.AdultContent, d.AdultContent)
	set(&md.Language, d.Language)
	set(&md.InputEncoding, d.InputEncoding)
	set(&md.OutputEncoding, d.OutputEncoding)
	return md
}

// Options derives the per-feed options from config.
func Options(cfg *config.Config, log logger.Logger, m *metrics.Metrics) ([]search.Option, error) {
	var s summarize.Summarizer = summarize.NewHeuristic(cfg.Summarize.MaxLen)
	if cfg.Privacy.Redact.Enabled {
		patterns, err := privacy.Compile(cfg.Privacy.Redact.Patterns)
		if err != nil {
			return nil, fmt.Errorf("privacy.redact: %w", err)
		}
		s = summarize.NewRedacting(s, patterns)
	}

	return []search.Option{
		search.WithMetadata(Metadata(cfg.Description)),
		search.WithQueryOptions(search.QueryOptions{KeepLeadingComma: cfg.Query.KeepLeadingComma}),
		search.WithSummarizer(s),
		search.WithLogger(log),
		search.WithMetrics(m),
	}, nil
}

// Sync upserts every feed declared in config.yaml into st and returns how many
// were written.
func Sync(ctx context.Context, st *store.Store, cfg *config.Config) (int, error) {
	for _, f := range cfg.Feeds {
		if _, err := st.UpsertFeed(ctx, FromConfig(f)); err != nil {
			return 0, fmt.Errorf("sync feed %s: %w", f.ID, err)
		}
	}
	return len(cfg.Feeds), nil
}
