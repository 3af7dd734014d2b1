package tumblr

import (
	"strings"
	"testing"
)

func TestNewApplication_Defaults(t *testing.T) {
	app := NewApplication("key")
	if app.APIKey != "key" {
		t.Errorf("api key = %q, want key", app.APIKey)
	}
	if app.Method != "posts" {
		t.Errorf("method = %q, want posts", app.Method)
	}
	if app.PostType != "text" {
		t.Errorf("post type = %q, want text", app.PostType)
	}
	if app.BaseURL != DefaultBaseURL {
		t.Errorf("base url = %q, want %q", app.BaseURL, DefaultBaseURL)
	}
	if err := app.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
}

func TestApplication_Validate(t *testing.T) {
	valid := NewApplication("key")

	tests := []struct {
		name    string
		mutate  func(*Application)
		wantErr string
	}{
		{"missing key", func(a *Application) { a.APIKey = "" }, "api key"},
		{"blank key", func(a *Application) { a.APIKey = "   " }, "api key"},
		{"missing method", func(a *Application) { a.Method = "" }, "method"},
		{"missing base url", func(a *Application) { a.BaseURL = "" }, "base url"},
		{"missing post type", func(a *Application) { a.PostType = "" }, "post type"},
		{"unknown post type", func(a *Application) { a.PostType = "gif" }, "post type"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := valid
			tt.mutate(&app)
			err := app.Validate()
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %q, want mention of %q", err, tt.wantErr)
			}
		})
	}
}

func TestValidPostType(t *testing.T) {
	for _, pt := range []string{"text", "quote", "link", "answer", "video", "audio", "photo", "chat"} {
		if !ValidPostType(pt) {
			t.Errorf("ValidPostType(%q) = false", pt)
		}
	}
	if ValidPostType("TEXT") {
		t.Error("post types are case-sensitive")
	}
}

func TestBlogHost(t *testing.T) {
	tests := map[string]string{
		"staff":            "staff.tumblr.com",
		" staff ":          "staff.tumblr.com",
		"staff.tumblr.com": "staff.tumblr.com",
		"blog.example.org": "blog.example.org",
	}
	for in, want := range tests {
		if got := BlogHost(in); got != want {
			t.Errorf("BlogHost(%q) = %q, want %q", in, got, want)
		}
	}
}
