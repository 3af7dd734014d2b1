package search

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/ppiankov/tumblrsearch/internal/domain"
	"github.com/ppiankov/tumblrsearch/internal/syndication"
)

// OpenSearchNS is the OpenSearch 1.1 namespace.
const OpenSearchNS = "http://a9.com/-/spec/opensearch/1.1/"

// Param is one name={template} pair of an advertised query string.
type Param struct {
	Name  string
	Value string
}

// DefaultParams returns the base parameters every URL template carries, in order.
func DefaultParams() []Param {
	return []Param{
		{Name: ParamCount, Value: "{count?}"},
		{Name: "startPage", Value: "{startPage?}"},
		{Name: ParamStartIndex, Value: "{startIndex?}"},
		{Name: ParamTerms, Value: "{searchTerms?}"},
		{Name: "lang", Value: "{language?}"},
	}
}

// Metadata is the static part of a description document.
type Metadata struct {
	ShortName        string
	LongName         string
	Description      string
	Tags             string
	Contact          string
	Developer        string
	Attribution      string
	SyndicationRight string
	AdultContent     string
	Language         string
	InputEncoding    string
	OutputEncoding   string
}

// DefaultMetadata returns the metadata used when none is configured.
func DefaultMetadata() Metadata {
	return Metadata{
		ShortName:        "Tumblr Search",
		Description:      "Searches the posts of a Tumblr blog, filtered by tag, as Atom, JSON or HTML.",
		Tags:             "tumblr blog posts",
		SyndicationRight: "open",
		AdultContent:     "false",
		Language:         "en-us",
		InputEncoding:    "UTF-8",
		OutputEncoding:   "UTF-8",
	}
}

// Description is an OpenSearch description document.
type Description struct {
	XMLName          xml.Name `xml:"http://a9.com/-/spec/opensearch/1.1/ OpenSearchDescription"`
	ShortName        string   `xml:"ShortName"`
	LongName         string   `xml:"LongName,omitempty"`
	Description      string   `xml:"Description"`
	Tags             string   `xml:"Tags,omitempty"`
	Contact          string   `xml:"Contact,omitempty"`
	URLs             []URL    `xml:"Url"`
	Developer        string   `xml:"Developer,omitempty"`
	Attribution      string   `xml:"Attribution,omitempty"`
	SyndicationRight string   `xml:"SyndicationRight,omitempty"`
	AdultContent     string   `xml:"AdultContent,omitempty"`
	Language         string   `xml:"Language,omitempty"`
	InputEncoding    string   `xml:"InputEncoding,omitempty"`
	OutputEncoding   string   `xml:"OutputEncoding,omitempty"`
}

// URL is one response-format template.
type URL struct {
	Type     string `xml:"type,attr"`
	Template string `xml:"template,attr"`
	Rel      string `xml:"rel,attr,omitempty"`
}

// Describe builds the description for the feed identifier served under
// baseURL: one template per output format, in syndication.Formats order.
// A nil params selects DefaultParams.
func Describe(identifier, baseURL string, md Metadata, params []Param) (Description, error) {
	if strings.TrimSpace(identifier) == "" {
		return Description{}, fmt.Errorf("%w: identifier is required", domain.ErrInvalidFeed)
	}
	base, err := parseBaseURL(baseURL)
	if err != nil {
		return Description{}, err
	}
	if params == nil {
		params = DefaultParams()
	}

	d := Description{
		ShortName:        md.ShortName,
		LongName:         md.LongName,
		Description:      md.Description,
		Tags:             md.Tags,
		Contact:          md.Contact,
		Developer:        md.Developer,
		Attribution:      md.Attribution,
		SyndicationRight: md.SyndicationRight,
		AdultContent:     md.AdultContent,
		Language:         md.Language,
		InputEncoding:    md.InputEncoding,
		OutputEncoding:   md.OutputEncoding,
		URLs:             make([]URL, 0, len(syndication.Formats)),
	}
	searchURL := base + "/" + url.PathEscape(identifier) + "/search"
	for _, f := range syndication.Formats {
		d.URLs = append(d.URLs, URL{
			Type:     f.MIME,
			Template: searchURL + "?" + templateQuery(params, f.Name),
			Rel:      "search",
		})
	}
	return d, nil
}

// templateQuery renders params plus format=<name>. Values are left unescaped
// so {placeholders} survive.
func templateQuery(params []Param, format string) string {
	parts := make([]string, 0, len(params)+1)
	for _, p := range params {
		parts = append(parts, p.Name+"="+p.Value)
	}
	parts = append(parts, ParamFormat+"="+format)
	return strings.Join(parts, "&")
}

// Description describes f. The feed title and abstract, when set, override
// the configured short name and description.
func (f *Feed) Description() (Description, error) {
	md := f.md
	if f.cfg.Title != "" {
		md.ShortName = f.cfg.Title
	}
	if f.cfg.Abstract != "" {
		md.Description = f.cfg.Abstract
	}
	return Describe(f.cfg.Identifier, f.baseURL, md, f.params)
}

// ByMIME returns the templates keyed by media type.
func (d Description) ByMIME() map[string]URL {
	out := make(map[string]URL, len(d.URLs))
	for _, u := range d.URLs {
		out[u.Type] = u
	}
	return out
}

// WriteTo writes d as an indented XML document with declaration.
func (d Description) WriteTo(w io.Writer) (int64, error) {
	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	enc := xml.NewEncoder(&buf)
	enc.Indent("", "  ")
	if err := enc.Encode(d); err != nil {
		return 0, &domain.WriteError{Format: "opensearchdescription", Err: err}
	}
	buf.WriteByte('\n')
	n, err := w.Write(buf.Bytes())
	if err != nil {
		return int64(n), &domain.WriteError{Format: "opensearchdescription", Err: err}
	}
	return int64(n), nil
}
