// Package summarize turns post HTML into short plain-text excerpts for feed
// summaries and listings.
package summarize

// Summarizer produces a plain-text excerpt from post HTML.
type Summarizer interface {
	Summarize(html string) string
}
