package privacy

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

const redactedPlaceholder = "[REDACTED]"

// secretParams are query parameters whose values never reach logs or errors.
var secretParams = []string{"api_key", "oauth_token", "oauth_consumer_key"}

// Compile compiles a list of regex pattern strings into compiled regexps.
// Returns an error if any pattern is invalid.
func Compile(patterns []string) ([]*regexp.Regexp, error) {
	compiled := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("compile redact pattern %q: %w", p, err)
		}
		compiled = append(compiled, re)
	}
	return compiled, nil
}

// Apply replaces all matches of the compiled patterns in text with [REDACTED].
func Apply(text string, patterns []*regexp.Regexp) string {
	for _, re := range patterns {
		text = re.ReplaceAllString(text, redactedPlaceholder)
	}
	return text
}

// RedactURL hides the values of credential query parameters in rawURL.
// Unparseable input is returned fully redacted.
func RedactURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return redactedPlaceholder
	}
	q := u.Query()
	changed := false
	for _, p := range secretParams {
		if _, ok := q[p]; ok {
			q.Set(p, redactedPlaceholder)
			changed = true
		}
	}
	if !changed {
		return rawURL
	}
	u.RawQuery = q.Encode()
	return strings.ReplaceAll(u.String(), url.QueryEscape(redactedPlaceholder), redactedPlaceholder)
}

// Secret replaces every occurrence of secret in text. Empty secrets are ignored.
func Secret(text, secret string) string {
	if secret == "" {
		return text
	}
	return strings.ReplaceAll(text, secret, redactedPlaceholder)
}
