package summarize

import (
	"regexp"

	"github.com/ppiankov/tumblrsearch/internal/privacy"
)

// Redacting masks pattern matches in the excerpts produced by Next.
type Redacting struct {
	Next     Summarizer
	Patterns []*regexp.Regexp
}

// NewRedacting wraps next. With no patterns next is returned unchanged.
func NewRedacting(next Summarizer, patterns []*regexp.Regexp) Summarizer {
	if len(patterns) == 0 {
		return next
	}
	return &Redacting{Next: next, Patterns: patterns}
}

func (r *Redacting) Summarize(html string) string {
	return privacy.Apply(r.Next.Summarize(html), r.Patterns)
}
