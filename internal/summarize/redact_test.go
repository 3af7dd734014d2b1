package summarize

import (
	"testing"

	"github.com/ppiankov/tumblrsearch/internal/privacy"
)

func TestRedacting(t *testing.T) {
	patterns, err := privacy.Compile([]string{`\b[\w.]+@[\w.]+\b`})
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	s := NewRedacting(NewHeuristic(0), patterns)

	got := s.Summarize("<p>Write to jane@example.com for prints.</p>")
	if got != "Write to [REDACTED] for prints." {
		t.Errorf("got %q", got)
	}
}

func TestRedacting_NoPatterns(t *testing.T) {
	h := NewHeuristic(0)
	if s := NewRedacting(h, nil); s != Summarizer(h) {
		t.Error("expected the wrapped summarizer back")
	}
}
