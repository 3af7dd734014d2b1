package summarize

import (
	"strings"
	"testing"
)

func TestPlainText(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"empty", "", ""},
		{"plain", "hello world", "hello world"},
		{"simple tags", "<p>hello</p>", "hello"},
		{"paragraphs", "<p>one</p><p>two</p>", "one two"},
		{"line break", "line<br/>break", "line break"},
		{"entities", "<p>fish &amp; chips</p>", "fish & chips"},
		{"script dropped", "<p>text</p><script>alert(1)</script>", "text"},
		{"nested", "<div><p>Hello <b>bold</b> world</p></div>", "Hello bold world"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := PlainText(tt.input); got != tt.want {
				t.Errorf("PlainText(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestSummarize_FirstSentence(t *testing.T) {
	s := NewHeuristic(0)
	got := s.Summarize("<p>New telescope images are in. More to follow next week.</p>")
	if got != "New telescope images are in." {
		t.Errorf("got %q", got)
	}
}

func TestSummarize_QuestionAndExclamation(t *testing.T) {
	s := NewHeuristic(0)
	if got := s.Summarize("Did you see it? It was bright."); got != "Did you see it?" {
		t.Errorf("got %q", got)
	}
	if got := s.Summarize("Launch day! Go for liftoff."); got != "Launch day!" {
		t.Errorf("got %q", got)
	}
}

func TestSummarize_Empty(t *testing.T) {
	s := NewHeuristic(0)
	if got := s.Summarize(""); got != "" {
		t.Errorf("got %q, want empty", got)
	}
	if got := s.Summarize("<p>   </p>"); got != "" {
		t.Errorf("got %q, want empty", got)
	}
}

func TestSummarize_LongSentence(t *testing.T) {
	s := NewHeuristic(20)
	got := s.Summarize(strings.Repeat("word ", 20))
	if !strings.HasSuffix(got, "...") {
		t.Errorf("got %q, want ellipsis", got)
	}
	if len([]rune(got)) > 23 {
		t.Errorf("len = %d, want <= 23", len([]rune(got)))
	}
	if strings.Contains(strings.TrimSuffix(got, "..."), "wor ") {
		t.Errorf("got %q, cut mid-word", got)
	}
}

func TestSummarize_MultibyteTruncation(t *testing.T) {
	s := NewHeuristic(5)
	got := s.Summarize("日本語のテキストです")
	if got != "日本語のテ..." {
		t.Errorf("got %q", got)
	}
}
