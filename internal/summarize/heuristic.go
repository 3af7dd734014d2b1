package summarize

import (
	"html"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

const (
	// DefaultMaxLen caps excerpts, in runes.
	DefaultMaxLen = 200
	ellipsis      = "..."
)

var (
	htmlTagRe = regexp.MustCompile(`<[^>]*>`)
	blockTags = "p, div, li, blockquote, h1, h2, h3, h4, h5, h6, figcaption, tr"
)

// HeuristicSummarizer extracts the first sentence of the post text, capped at MaxLen runes.
type HeuristicSummarizer struct {
	MaxLen int
}

// NewHeuristic creates a summarizer. maxLen <= 0 selects DefaultMaxLen.
func NewHeuristic(maxLen int) *HeuristicSummarizer {
	if maxLen <= 0 {
		maxLen = DefaultMaxLen
	}
	return &HeuristicSummarizer{MaxLen: maxLen}
}

// Summarize returns the first sentence of the visible text in s.
func (h *HeuristicSummarizer) Summarize(s string) string {
	maxLen := h.MaxLen
	if maxLen <= 0 {
		maxLen = DefaultMaxLen
	}
	return firstSentence(PlainText(s), maxLen)
}

// PlainText renders HTML as a single line of visible text. Block elements and
// line breaks become spaces so adjacent paragraphs do not run together.
func PlainText(s string) string {
	if strings.TrimSpace(s) == "" {
		return ""
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return collapseSpace(html.UnescapeString(htmlTagRe.ReplaceAllString(s, " ")))
	}
	doc.Find("script, style").Remove()
	doc.Find("br").ReplaceWithHtml(" ")
	doc.Find(blockTags).Each(func(_ int, sel *goquery.Selection) {
		sel.AppendHtml(" ")
	})
	return collapseSpace(doc.Text())
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// firstSentence returns text up to the first sentence boundary, capped at maxLen runes.
func firstSentence(text string, maxLen int) string {
	if text == "" {
		return ""
	}

	end := len(text)
	// First ". ", "! " or "? " ends the sentence.
	for i := 0; i < len(text)-1; i++ {
		c := text[i]
		if (c == '.' || c == '!' || c == '?') && text[i+1] == ' ' {
			end = i + 1
			break
		}
	}
	sentence := strings.TrimSpace(text[:end])

	runes := []rune(sentence)
	if len(runes) <= maxLen {
		return sentence
	}
	// Truncate at last space before maxLen to avoid cutting words.
	cut := string(runes[:maxLen])
	if idx := strings.LastIndexByte(cut, ' '); idx > 0 {
		return cut[:idx] + ellipsis
	}
	return cut + ellipsis
}
