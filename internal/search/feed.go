// Package search exposes a Tumblr blog as an OpenSearch-searchable feed:
// it translates inbound queries into API requests, maps posts to feed items
// and describes the URL templates it accepts.
package search

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/ppiankov/tumblrsearch/internal/domain"
	"github.com/ppiankov/tumblrsearch/internal/logger"
	"github.com/ppiankov/tumblrsearch/internal/metrics"
	"github.com/ppiankov/tumblrsearch/internal/summarize"
	"github.com/ppiankov/tumblrsearch/internal/syndication"
	"github.com/ppiankov/tumblrsearch/internal/tumblr"
)

// Search results recorded in metrics.
const (
	resultOK                = "ok"
	resultInvalidParameter  = "invalid_parameter"
	resultUnsupportedFormat = "unsupported_format"
	resultFetchFailure      = "fetch_failure"
	resultWriteFailure      = "write_failure"
	resultInvalidFeed       = "invalid_feed"
)

// FeedConfig is the stored definition of one searchable blog.
type FeedConfig struct {
	Identifier  string
	Title       string
	Abstract    string
	Blog        string
	Tags        []string
	Application tumblr.Application
}

// Validate checks the identity fields. Credentials are checked per request so
// a feed without an API key can still be described.
func (c FeedConfig) Validate() error {
	if strings.TrimSpace(c.Identifier) == "" {
		return fmt.Errorf("%w: identifier is required", domain.ErrInvalidFeed)
	}
	if strings.ContainsAny(c.Identifier, "/?#") {
		return fmt.Errorf("%w: identifier %q must not contain '/', '?' or '#'", domain.ErrInvalidFeed, c.Identifier)
	}
	if strings.TrimSpace(c.Blog) == "" {
		return fmt.Errorf("%w: feed %q has no blog", domain.ErrInvalidFeed, c.Identifier)
	}
	return nil
}

// Result is one rendered search response.
type Result struct {
	URL          string
	ContentType  string
	Body         []byte
	TotalResults int
}

// Feed is a searchable blog. It is immutable after NewFeed and safe for
// concurrent use.
type Feed struct {
	cfg        FeedConfig
	baseURL    string
	fetcher    tumblr.Fetcher
	md         Metadata
	params     []Param
	opts       QueryOptions
	summarizer summarize.Summarizer
	log        logger.Logger
	metrics    *metrics.Metrics
}

// Option configures a Feed.
type Option func(*Feed)

// WithMetadata sets the static description metadata.
func WithMetadata(md Metadata) Option {
	return func(f *Feed) { f.md = md }
}

// WithParams replaces the advertised base query parameters.
func WithParams(params []Param) Option {
	return func(f *Feed) { f.params = params }
}

// WithQueryOptions sets the upstream query translation options.
func WithQueryOptions(o QueryOptions) Option {
	return func(f *Feed) { f.opts = o }
}

// WithSummarizer sets the excerpt builder used by the formatters.
func WithSummarizer(s summarize.Summarizer) Option {
	return func(f *Feed) { f.summarizer = s }
}

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(f *Feed) { f.log = l }
}

// WithMetrics records searches on m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(f *Feed) { f.metrics = m }
}

// NewFeed creates a Feed served under baseURL.
func NewFeed(cfg FeedConfig, baseURL string, fetcher tumblr.Fetcher, opts ...Option) (*Feed, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if fetcher == nil {
		return nil, errors.New("search: fetcher is required")
	}
	base, err := parseBaseURL(baseURL)
	if err != nil {
		return nil, err
	}

	f := &Feed{
		cfg:        cfg,
		baseURL:    base,
		fetcher:    fetcher,
		md:         DefaultMetadata(),
		params:     DefaultParams(),
		summarizer: summarize.NewHeuristic(summarize.DefaultMaxLen),
		log:        logger.NewNop(),
	}
	for _, opt := range opts {
		opt(f)
	}
	f.log = f.log.With(logger.String("feed", cfg.Identifier))
	return f, nil
}

// Identifier returns the feed id used in URLs.
func (f *Feed) Identifier() string { return f.cfg.Identifier }

// Config returns a copy of the feed definition.
func (f *Feed) Config() FeedConfig { return f.cfg }

// DefaultMIMEType is the media type served when the caller names none.
func (f *Feed) DefaultMIMEType() string { return syndication.MIMEAtom }

// SearchBaseURL returns {base}/{id}/search.
func (f *Feed) SearchBaseURL() string {
	return f.baseURL + "/" + url.PathEscape(f.cfg.Identifier) + "/search"
}

// title falls back to the blog name for untitled feeds.
func (f *Feed) title() string {
	if f.cfg.Title != "" {
		return f.cfg.Title
	}
	return f.cfg.Blog
}

// Items fetches one page of posts for q.
func (f *Feed) Items(ctx context.Context, q Query) (domain.Page, error) {
	u, err := f.PostsURL(q)
	if err != nil {
		return domain.Page{}, err
	}
	resp, err := f.fetcher.Fetch(ctx, u)
	if err != nil {
		return domain.Page{}, fmt.Errorf("fetch %s: %w", f.cfg.Identifier, err)
	}

	items := itemsFromPosts(resp.Response.Posts)
	total := resp.Response.TotalPosts
	if seen := q.StartIndex + len(items); total < seen {
		total = seen
	}
	return domain.Page{
		FeedID:       f.cfg.Identifier,
		Title:        f.title(),
		Link:         f.SearchBaseURL(),
		Updated:      resp.Response.Blog.UpdatedAt(),
		Query:        q.Terms,
		TotalResults: total,
		StartIndex:   q.StartIndex,
		ItemsPerPage: q.Count,
		Items:        items,
	}, nil
}

// Latest fetches the blog's most recent posts of any type, without paging.
func (f *Feed) Latest(ctx context.Context) ([]domain.Item, error) {
	u, err := f.LatestURL()
	if err != nil {
		return nil, err
	}
	resp, err := f.fetcher.Fetch(ctx, u)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", f.cfg.Identifier, err)
	}
	return itemsFromPosts(resp.Response.Posts), nil
}

// Search runs one inbound request and renders it as mimeType. An empty
// mimeType selects DefaultMIMEType. The format is resolved and the
// parameters parsed before any network call.
func (f *Feed) Search(ctx context.Context, mimeType string, params url.Values) (*Result, error) {
	if strings.TrimSpace(mimeType) == "" {
		mimeType = f.DefaultMIMEType()
	}
	fm, err := syndication.ForMIME(mimeType, f.summarizer)
	if err != nil {
		f.metrics.ObserveSearch("unknown", resultUnsupportedFormat, 0)
		return nil, err
	}
	format := fm.Name()

	q, err := ParseQuery(params)
	if err != nil {
		f.metrics.ObserveSearch(format, resultInvalidParameter, 0)
		return nil, err
	}

	page, err := f.Items(ctx, q)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidFeed) {
			f.metrics.ObserveSearch(format, resultInvalidFeed, 0)
		} else {
			f.metrics.ObserveSearch(format, resultFetchFailure, 0)
		}
		f.log.Warn("search failed", logger.String("format", format), logger.Error(err))
		return nil, err
	}

	var buf bytes.Buffer
	if err := fm.Format(&buf, page); err != nil {
		f.metrics.ObserveSearch(format, resultWriteFailure, 0)
		return nil, err
	}

	f.metrics.ObserveSearch(format, resultOK, len(page.Items))
	f.log.Debug("search served",
		logger.String("format", format),
		logger.Int("items", len(page.Items)),
		logger.Int("start_index", q.StartIndex),
		logger.Int("count", q.Count),
	)
	return &Result{
		URL:          f.RequestURL(params),
		ContentType:  fm.ContentType(),
		Body:         buf.Bytes(),
		TotalResults: page.TotalResults,
	}, nil
}

// RequestURL returns the inbound URL {base}/{id}/?{params}, keys sorted and
// repeated values kept.
func (f *Feed) RequestURL(params url.Values) string {
	u := f.baseURL + "/" + url.PathEscape(f.cfg.Identifier) + "/"
	if enc := params.Encode(); enc != "" {
		u += "?" + enc
	}
	return u
}

func itemsFromPosts(posts []tumblr.Post) []domain.Item {
	items := make([]domain.Item, 0, len(posts))
	for _, p := range posts {
		items = append(items, itemFromPost(p))
	}
	return items
}

func itemFromPost(p tumblr.Post) domain.Item {
	abstract := p.Caption
	if abstract == "" {
		abstract = p.Body
	}
	link := p.ShortURL
	if link == "" {
		link = p.PostURL
	}
	return domain.Item{
		ID:          strconv.FormatInt(p.ID, 10),
		Title:       p.Title,
		Abstract:    abstract,
		URL:         link,
		Published:   p.PublishedAt(),
		Author:      p.BlogName,
		Tags:        strings.Join(p.Tags, ","),
		ContentType: p.Type,
	}
}

func parseBaseURL(raw string) (string, error) {
	raw = strings.TrimRight(strings.TrimSpace(raw), "/")
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("%w: base url %q: %v", domain.ErrInvalidFeed, raw, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("%w: base url %q must be absolute", domain.ErrInvalidFeed, raw)
	}
	return raw, nil
}
