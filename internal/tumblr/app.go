// Package tumblr talks to the Tumblr v2 blog API: credentials, the post
// response model and the HTTP client that fetches it.
package tumblr

import (
	"errors"
	"fmt"
	"strings"
)

const (
	DefaultBaseURL  = "https://api.tumblr.com/v2/blog"
	DefaultMethod   = "posts"
	DefaultPostType = "text"
)

// PostTypes lists the post types the posts endpoint can filter on.
var PostTypes = []string{"text", "quote", "link", "answer", "video", "audio", "photo", "chat"}

// Application holds the credentials and endpoint selection for one feed.
// It is passed by value and never modified after construction.
type Application struct {
	APIKey   string
	Method   string
	PostType string
	BaseURL  string
}

// NewApplication creates an Application with the default endpoint, method and post type.
func NewApplication(apiKey string) Application {
	return Application{
		APIKey:   apiKey,
		Method:   DefaultMethod,
		PostType: DefaultPostType,
		BaseURL:  DefaultBaseURL,
	}
}

// Validate checks that every field is set and the post type is known.
func (a Application) Validate() error {
	if strings.TrimSpace(a.APIKey) == "" {
		return errors.New("tumblr: api key is required")
	}
	if strings.TrimSpace(a.Method) == "" {
		return errors.New("tumblr: method is required")
	}
	if strings.TrimSpace(a.BaseURL) == "" {
		return errors.New("tumblr: base url is required")
	}
	if !ValidPostType(a.PostType) {
		return fmt.Errorf("tumblr: unknown post type %q (want one of %s)", a.PostType, strings.Join(PostTypes, ", "))
	}
	return nil
}

// BlogHost returns the API host name for a blog, e.g. "staff" -> "staff.tumblr.com".
// Names that already carry a domain are returned unchanged.
func BlogHost(blog string) string {
	blog = strings.TrimSpace(blog)
	if strings.Contains(blog, ".") {
		return blog
	}
	return blog + ".tumblr.com"
}

// ValidPostType reports whether t is one of PostTypes.
func ValidPostType(t string) bool {
	for _, pt := range PostTypes {
		if t == pt {
			return true
		}
	}
	return false
}
