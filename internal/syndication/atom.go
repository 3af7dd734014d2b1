package syndication

import (
	"encoding/xml"
	"io"
	"time"

	"github.com/ppiankov/tumblrsearch/internal/domain"
	"github.com/ppiankov/tumblrsearch/internal/summarize"
)

const (
	atomNS       = "http://www.w3.org/2005/Atom"
	openSearchNS = "http://a9.com/-/spec/opensearch/1.1/"
	generator    = "tumblrsearch"
	tagScheme    = "tag"
)

type atomFeed struct {
	XMLName      xml.Name    `xml:"feed"`
	Xmlns        string      `xml:"xmlns,attr"`
	XmlnsOS      string      `xml:"xmlns:os,attr"`
	ID           string      `xml:"id"`
	Title        string      `xml:"title"`
	Updated      string      `xml:"updated"`
	Generator    string      `xml:"generator"`
	Links        []atomLink  `xml:"link"`
	TotalResults int         `xml:"os:totalResults"`
	StartIndex   int         `xml:"os:startIndex"`
	ItemsPerPage int         `xml:"os:itemsPerPage"`
	Query        osQuery     `xml:"os:Query"`
	Entries      []atomEntry `xml:"entry"`
}

type osQuery struct {
	Role        string `xml:"role,attr"`
	SearchTerms string `xml:"searchTerms,attr,omitempty"`
	StartIndex  int    `xml:"startIndex,attr"`
	Count       int    `xml:"count,attr"`
}

type atomLink struct {
	Rel  string `xml:"rel,attr,omitempty"`
	Type string `xml:"type,attr,omitempty"`
	Href string `xml:"href,attr"`
}

type atomEntry struct {
	ID         string         `xml:"id"`
	Title      string         `xml:"title"`
	Published  string         `xml:"published,omitempty"`
	Updated    string         `xml:"updated"`
	Author     *atomPerson    `xml:"author,omitempty"`
	Links      []atomLink     `xml:"link"`
	Summary    *atomText      `xml:"summary,omitempty"`
	Content    *atomText      `xml:"content,omitempty"`
	Categories []atomCategory `xml:"category"`
}

type atomPerson struct {
	Name string `xml:"name"`
}

type atomText struct {
	Type string `xml:"type,attr,omitempty"`
	Body string `xml:",chardata"`
}

type atomCategory struct {
	Term   string `xml:"term,attr"`
	Scheme string `xml:"scheme,attr,omitempty"`
}

// AtomFormatter writes Atom 1.0 with OpenSearch response elements.
type AtomFormatter struct {
	summarizer summarize.Summarizer
}

// NewAtom creates an Atom formatter.
func NewAtom(s summarize.Summarizer) *AtomFormatter {
	return &AtomFormatter{summarizer: s}
}

func (f *AtomFormatter) Name() string        { return FormatAtom }
func (f *AtomFormatter) ContentType() string { return MIMEAtom + "; charset=utf-8" }

// Format writes page as an Atom feed document.
func (f *AtomFormatter) Format(w io.Writer, page domain.Page) error {
	out := atomFeed{
		Xmlns:        atomNS,
		XmlnsOS:      openSearchNS,
		ID:           feedID(page),
		Title:        page.Title,
		Updated:      atomTime(page.LastUpdated()),
		Generator:    generator,
		TotalResults: page.TotalResults,
		StartIndex:   page.StartIndex,
		ItemsPerPage: page.ItemsPerPage,
		Query: osQuery{
			Role:        "request",
			SearchTerms: page.Query,
			StartIndex:  page.StartIndex,
			Count:       page.ItemsPerPage,
		},
		Entries: make([]atomEntry, 0, len(page.Items)),
	}
	if page.Link != "" {
		out.Links = append(out.Links, atomLink{Rel: "self", Type: MIMEAtom, Href: page.Link})
	}
	for _, it := range page.Items {
		out.Entries = append(out.Entries, f.entry(it))
	}

	if _, err := io.WriteString(w, xml.Header); err != nil {
		return writeErr(FormatAtom, err)
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(out); err != nil {
		return writeErr(FormatAtom, err)
	}
	if err := enc.Flush(); err != nil {
		return writeErr(FormatAtom, err)
	}
	_, err := io.WriteString(w, "\n")
	return writeErr(FormatAtom, err)
}

func (f *AtomFormatter) entry(it domain.Item) atomEntry {
	e := atomEntry{
		ID:      it.ID,
		Title:   it.DisplayTitle(),
		Updated: atomTime(it.Published),
	}
	if !it.Published.IsZero() {
		e.Published = e.Updated
	}
	if it.Author != "" {
		e.Author = &atomPerson{Name: it.Author}
	}
	if it.URL != "" {
		e.Links = []atomLink{{Rel: "alternate", Type: MIMEHTML, Href: it.URL}}
	}
	if it.Abstract != "" {
		e.Content = &atomText{Type: "html", Body: it.Abstract}
		if s := f.summarizer.Summarize(it.Abstract); s != "" {
			e.Summary = &atomText{Type: "text", Body: s}
		}
	}
	if it.ContentType != "" {
		e.Categories = append(e.Categories, atomCategory{Term: it.ContentType})
	}
	for _, tag := range it.TagList() {
		e.Categories = append(e.Categories, atomCategory{Term: tag, Scheme: tagScheme})
	}
	return e
}

func feedID(page domain.Page) string {
	if page.Link != "" {
		return page.Link
	}
	return "urn:tumblrsearch:feed:" + page.FeedID
}

// atomTime formats t as RFC 3339, keeping its zone. Zero times use the epoch
// because updated is mandatory in Atom.
func atomTime(t time.Time) string {
	if t.IsZero() {
		t = time.Unix(0, 0).UTC()
	}
	return t.Format(time.RFC3339)
}
