package syndication

import (
	"html/template"
	"io"
	"time"

	"github.com/ppiankov/tumblrsearch/internal/domain"
	"github.com/ppiankov/tumblrsearch/internal/summarize"
)

var pageTmpl = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
</head>
<body>
<h1>{{.Title}}</h1>
<p class="meta">{{.TotalResults}} results{{if .Query}} for &ldquo;{{.Query}}&rdquo;{{end}}, showing from {{.StartIndex}}</p>
{{if not .Items}}<p>No posts found.</p>
{{else}}<ol class="items">
{{range .Items}}<li class="item">
<h2>{{if .URL}}<a href="{{.URL}}">{{.Title}}</a>{{else}}{{.Title}}{{end}}</h2>
<p class="byline">{{if .Author}}{{.Author}}{{end}}{{if .Published}} &middot; <time datetime="{{.Published}}">{{.PublishedHuman}}</time>{{end}}{{if .ContentType}} &middot; {{.ContentType}}{{end}}</p>
{{if .Summary}}<p class="summary">{{.Summary}}</p>
{{end}}{{if .Tags}}<ul class="tags">{{range .Tags}}<li>#{{.}}</li>{{end}}</ul>
{{end}}</li>
{{end}}</ol>
{{end}}</body>
</html>
`))

type htmlPage struct {
	Title        string
	Query        string
	TotalResults int
	StartIndex   int
	Items        []htmlItem
}

type htmlItem struct {
	Title          string
	URL            string
	Author         string
	Published      string
	PublishedHuman string
	ContentType    string
	Summary        string
	Tags           []string
}

// HTMLFormatter writes a page as a standalone HTML listing. Post bodies are
// reduced to plain-text excerpts, so no upstream markup reaches the page.
type HTMLFormatter struct {
	summarizer summarize.Summarizer
}

// NewHTML creates an HTML formatter.
func NewHTML(s summarize.Summarizer) *HTMLFormatter {
	return &HTMLFormatter{summarizer: s}
}

func (f *HTMLFormatter) Name() string        { return FormatHTML }
func (f *HTMLFormatter) ContentType() string { return MIMEHTML + "; charset=utf-8" }

// Format writes page as HTML to w.
func (f *HTMLFormatter) Format(w io.Writer, page domain.Page) error {
	data := htmlPage{
		Title:        page.Title,
		Query:        page.Query,
		TotalResults: page.TotalResults,
		StartIndex:   page.StartIndex,
		Items:        make([]htmlItem, 0, len(page.Items)),
	}
	if data.Title == "" {
		data.Title = page.FeedID
	}
	for _, it := range page.Items {
		hi := htmlItem{
			Title:       it.DisplayTitle(),
			URL:         it.URL,
			Author:      it.Author,
			ContentType: it.ContentType,
			Summary:     f.summarizer.Summarize(it.Abstract),
			Tags:        it.TagList(),
		}
		if !it.Published.IsZero() {
			hi.Published = it.Published.Format(time.RFC3339)
			hi.PublishedHuman = it.Published.Format("2 Jan 2006 15:04")
		}
		data.Items = append(data.Items, hi)
	}
	return writeErr(FormatHTML, pageTmpl.Execute(w, data))
}
