package search

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/ppiankov/tumblrsearch/internal/domain"
	"github.com/ppiankov/tumblrsearch/internal/tumblr"
)

// Inbound parameter names.
const (
	ParamCount      = "count"
	ParamStartIndex = "startIndex"
	ParamTerms      = "q"
	ParamFormat     = "format"
)

// DefaultCount is the page size when the caller does not send count.
const DefaultCount = 20

var errNotNonNegative = errors.New("must be a non-negative integer")

// Query is a parsed inbound search request.
type Query struct {
	Count      int
	StartIndex int
	Terms      string
	// Extra holds every parameter other than count, startIndex and q.
	Extra url.Values
}

// QueryOptions tunes how queries are translated for the upstream API.
type QueryOptions struct {
	// KeepLeadingComma sends ",tag1,tag2" when q is empty instead of "tag1,tag2".
	KeepLeadingComma bool
}

// ParseQuery reads count, startIndex and q from params. Absent or empty count
// and startIndex take their defaults; anything else that is not a
// non-negative integer is a *domain.ParameterError.
func ParseQuery(params url.Values) (Query, error) {
	q := Query{Count: DefaultCount, Extra: url.Values{}}

	var err error
	if q.Count, err = intParam(params, ParamCount, DefaultCount); err != nil {
		return Query{}, err
	}
	if q.StartIndex, err = intParam(params, ParamStartIndex, 0); err != nil {
		return Query{}, err
	}
	q.Terms = strings.TrimSpace(params.Get(ParamTerms))

	for k, vs := range params {
		switch k {
		case ParamCount, ParamStartIndex, ParamTerms:
			continue
		}
		q.Extra[k] = append([]string(nil), vs...)
	}
	return q, nil
}

func intParam(params url.Values, name string, def int) (int, error) {
	raw := strings.TrimSpace(params.Get(name))
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, domain.NewParameterError(name, raw, errNotNonNegative)
	}
	return n, nil
}

// TagFilter joins the query terms and the feed's tags with commas. Empty
// terms and no tags give "".
func (f *Feed) TagFilter(q Query) string {
	tags := make([]string, 0, len(f.cfg.Tags))
	for _, t := range f.cfg.Tags {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}

	if f.opts.KeepLeadingComma {
		if len(tags) == 0 {
			return q.Terms
		}
		return q.Terms + "," + strings.Join(tags, ",")
	}

	parts := tags
	if q.Terms != "" {
		parts = append([]string{q.Terms}, tags...)
	}
	return strings.Join(parts, ",")
}

// PostsURL builds the paged, typed request for q:
// {base}/{blog}/{method}/{type}?api_key=&limit=&offset=[&tag=].
func (f *Feed) PostsURL(q Query) (string, error) {
	app := f.cfg.Application
	if err := app.Validate(); err != nil {
		return "", f.misconfigured(err)
	}

	v := url.Values{}
	v.Set("api_key", app.APIKey)
	v.Set("limit", strconv.Itoa(q.Count))
	v.Set("offset", strconv.Itoa(q.StartIndex))
	if tag := f.TagFilter(q); tag != "" {
		v.Set("tag", tag)
	}
	return fmt.Sprintf("%s/%s?%s", f.blogEndpoint(app), url.PathEscape(app.PostType), v.Encode()), nil
}

// LatestURL builds the un-paged, untyped request {base}/{blog}/{method}?api_key=.
func (f *Feed) LatestURL() (string, error) {
	app := f.cfg.Application
	if err := app.Validate(); err != nil {
		return "", f.misconfigured(err)
	}
	v := url.Values{}
	v.Set("api_key", app.APIKey)
	return f.blogEndpoint(app) + "?" + v.Encode(), nil
}

// misconfigured reports API settings that cannot produce a request. The
// fault is server-side, so it is an invalid feed rather than a bad parameter.
func (f *Feed) misconfigured(err error) error {
	return fmt.Errorf("%w: feed %q: %w", domain.ErrInvalidFeed, f.cfg.Identifier, err)
}

func (f *Feed) blogEndpoint(app tumblr.Application) string {
	return fmt.Sprintf("%s/%s/%s",
		strings.TrimRight(app.BaseURL, "/"),
		url.PathEscape(tumblr.BlogHost(f.cfg.Blog)),
		url.PathEscape(app.Method),
	)
}
