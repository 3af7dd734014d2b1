package syndication

import (
	"bytes"
	"encoding/xml"
	"strings"
	"testing"

	"github.com/mmcdole/gofeed"

	"github.com/ppiankov/tumblrsearch/internal/summarize"
)

func TestAtomFormat_ParsesWithGofeed(t *testing.T) {
	var buf bytes.Buffer
	if err := NewAtom(summarize.NewHeuristic(0)).Format(&buf, samplePage()); err != nil {
		t.Fatalf("format: %v", err)
	}

	feed, err := gofeed.NewParser().ParseString(buf.String())
	if err != nil {
		t.Fatalf("parse: %v\noutput:\n%s", err, buf.String())
	}
	if feed.FeedType != "atom" {
		t.Errorf("feed type = %q, want atom", feed.FeedType)
	}
	if feed.Title != "Space News" {
		t.Errorf("title = %q", feed.Title)
	}
	if len(feed.Items) != 2 {
		t.Fatalf("items = %d, want 2", len(feed.Items))
	}

	first := feed.Items[0]
	if first.GUID != samplePage().Items[0].ID {
		t.Errorf("entry id = %q, want item id %q", first.GUID, samplePage().Items[0].ID)
	}
	if first.Title != "Rover update" {
		t.Errorf("item title = %q", first.Title)
	}
	if first.Link != "https://tmblr.co/a" {
		t.Errorf("item link = %q", first.Link)
	}
	if first.Content != "<p>Wheels turning. More later.</p>" {
		t.Errorf("item content = %q", first.Content)
	}
	if first.Description != "Wheels turning." {
		t.Errorf("item summary = %q", first.Description)
	}
	if first.PublishedParsed == nil || first.PublishedParsed.Unix() != samplePage().Items[0].Published.Unix() {
		t.Errorf("item published = %v", first.PublishedParsed)
	}
	if len(first.Authors) != 1 || first.Authors[0].Name != "spacenews" {
		t.Errorf("item authors = %+v", first.Authors)
	}
	if got := strings.Join(first.Categories, ","); got != "text,mars,rover" {
		t.Errorf("item categories = %q, want text,mars,rover", got)
	}

	if feed.Items[1].GUID != "102" {
		t.Errorf("second entry id = %q, want 102", feed.Items[1].GUID)
	}
	if feed.Items[1].Title != "photo post 102" {
		t.Errorf("untitled item title = %q", feed.Items[1].Title)
	}
}

func TestAtomFormat_OpenSearchElements(t *testing.T) {
	var buf bytes.Buffer
	if err := NewAtom(summarize.NewHeuristic(0)).Format(&buf, samplePage()); err != nil {
		t.Fatalf("format: %v", err)
	}

	var got struct {
		TotalResults int `xml:"http://a9.com/-/spec/opensearch/1.1/ totalResults"`
		StartIndex   int `xml:"http://a9.com/-/spec/opensearch/1.1/ startIndex"`
		ItemsPerPage int `xml:"http://a9.com/-/spec/opensearch/1.1/ itemsPerPage"`
		Query        struct {
			Role        string `xml:"role,attr"`
			SearchTerms string `xml:"searchTerms,attr"`
		} `xml:"http://a9.com/-/spec/opensearch/1.1/ Query"`
		Entries []struct {
			Updated    string `xml:"updated"`
			Categories []struct {
				Term   string `xml:"term,attr"`
				Scheme string `xml:"scheme,attr"`
			} `xml:"category"`
		} `xml:"entry"`
	}
	if err := xml.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if got.TotalResults != 57 || got.StartIndex != 20 || got.ItemsPerPage != 2 {
		t.Errorf("opensearch = %d/%d/%d, want 57/20/2", got.TotalResults, got.StartIndex, got.ItemsPerPage)
	}
	if got.Query.Role != "request" || got.Query.SearchTerms != "mars" {
		t.Errorf("query = %+v", got.Query)
	}
	if len(got.Entries) != 2 {
		t.Fatalf("entries = %d", len(got.Entries))
	}
	cats := got.Entries[0].Categories
	if len(cats) != 3 || cats[0].Scheme != "" || cats[1].Scheme != "tag" || cats[2].Term != "rover" {
		t.Errorf("categories = %+v", cats)
	}
	if got.Entries[1].Updated != "2023-11-13T10:00:00+01:00" {
		t.Errorf("zone not preserved: %q", got.Entries[1].Updated)
	}
}

func TestAtomFormat_Header(t *testing.T) {
	var buf bytes.Buffer
	if err := NewAtom(summarize.NewHeuristic(0)).Format(&buf, samplePage()); err != nil {
		t.Fatalf("format: %v", err)
	}
	out := buf.String()
	if !strings.HasPrefix(out, `<?xml version="1.0" encoding="UTF-8"?>`) {
		t.Errorf("missing xml header:\n%s", out)
	}
	for _, want := range []string{`xmlns="http://www.w3.org/2005/Atom"`, `xmlns:os="http://a9.com/-/spec/opensearch/1.1/"`, `<link rel="self"`} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %s", want)
		}
	}
}
