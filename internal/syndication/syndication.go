// Package syndication renders a page of feed items as Atom, JSON or HTML.
package syndication

import (
	"io"
	"strings"

	"github.com/ppiankov/tumblrsearch/internal/domain"
	"github.com/ppiankov/tumblrsearch/internal/summarize"
)

// Format names.
const (
	FormatAtom = "atom"
	FormatJSON = "json"
	FormatHTML = "html"
)

// Media types served for each format.
const (
	MIMEAtom = "application/atom+xml"
	MIMEJSON = "application/json"
	MIMEHTML = "text/html"
)

// Format pairs a format name with its media type.
type Format struct {
	Name string
	MIME string
}

// Formats lists the supported output formats in the order they are advertised.
var Formats = []Format{
	{Name: FormatAtom, MIME: MIMEAtom},
	{Name: FormatJSON, MIME: MIMEJSON},
	{Name: FormatHTML, MIME: MIMEHTML},
}

// Formatter writes a page of items to w.
type Formatter interface {
	Format(w io.Writer, page domain.Page) error
	ContentType() string
	Name() string
}

// ForFormat returns the formatter for a format name. A nil summarizer selects
// the heuristic excerpt builder.
func ForFormat(name string, s summarize.Summarizer) (Formatter, error) {
	if s == nil {
		s = summarize.NewHeuristic(summarize.DefaultMaxLen)
	}
	switch strings.ToLower(strings.TrimSpace(name)) {
	case FormatAtom:
		return NewAtom(s), nil
	case FormatJSON:
		return NewJSON(s), nil
	case FormatHTML:
		return NewHTML(s), nil
	}
	return nil, &domain.FormatError{Format: name}
}

// ForMIME returns the formatter for a media type. Parameters such as charset
// are ignored.
func ForMIME(mime string, s summarize.Summarizer) (Formatter, error) {
	name, ok := FormatForMIME(mime)
	if !ok {
		return nil, &domain.FormatError{Format: mime}
	}
	return ForFormat(name, s)
}

// FormatForMIME maps a media type to its format name.
func FormatForMIME(mime string) (string, bool) {
	mime, _, _ = strings.Cut(mime, ";")
	mime = strings.ToLower(strings.TrimSpace(mime))
	for _, f := range Formats {
		if f.MIME == mime {
			return f.Name, true
		}
	}
	return "", false
}

// MIMEFor maps a format name to its media type.
func MIMEFor(name string) (string, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	for _, f := range Formats {
		if f.Name == name {
			return f.MIME, true
		}
	}
	return "", false
}

func writeErr(format string, err error) error {
	if err == nil {
		return nil
	}
	return &domain.WriteError{Format: format, Err: err}
}
