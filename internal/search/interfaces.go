package search

import (
	"context"
	"net/url"
)

// Identifiable has a stable id usable in URLs.
type Identifiable interface {
	Identifier() string
}

// SearchableFeed answers inbound search requests.
type SearchableFeed interface {
	Identifiable
	Search(ctx context.Context, mimeType string, params url.Values) (*Result, error)
	DefaultMIMEType() string
}

// DescribesCapabilities advertises its query templates.
type DescribesCapabilities interface {
	Description() (Description, error)
}

var (
	_ SearchableFeed        = (*Feed)(nil)
	_ DescribesCapabilities = (*Feed)(nil)
)

// DescriptionMIME is the media type of an OpenSearch description document.
const DescriptionMIME = "application/opensearchdescription+xml"
