// Package text provides message normalization and media link detection.
package text

import (
	"net/url"
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

var (
	urlRegex        = regexp.MustCompile(`https?://\S+`)
	whitespaceRegex = regexp.MustCompile(`\s+`)

	youtubeDomains = map[string]bool{
		"youtube.com": true,
		"youtu.be":    true,
	}
)

type Parser struct{}

func NewParser() *Parser {
	return &Parser{}
}

// Normalize trims, NFKC-folds and collapses whitespace in a message.
func (p *Parser) Normalize(text string) string {
	text = strings.TrimSpace(text)
	text = norm.NFKC.String(text)
	text = whitespaceRegex.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}

// IsMediaLink reports whether the text is a single YouTube video link.
func (p *Parser) IsMediaLink(text string) bool {
	match := urlRegex.FindString(text)
	if match == "" {
		return false
	}

	u, err := url.Parse(strings.TrimRight(match, ".,!?;"))
	if err != nil || u.Host == "" {
		return false
	}

	return youtubeDomains[canonicalHost(u.Hostname())]
}

// ExtractLink returns the first URL in the text, cleaned of tracking
// parameters, or "" when the text contains no URL.
func (p *Parser) ExtractLink(text string) string {
	match := urlRegex.FindString(text)
	if match == "" {
		return ""
	}

	match = strings.TrimRight(match, ".,!?;")
	u, err := url.Parse(match)
	if err != nil || u.Host == "" {
		return ""
	}

	q := u.Query()
	for _, param := range []string{"utm_source", "utm_medium", "utm_campaign", "utm_term", "utm_content", "si"} {
		q.Del(param)
	}
	u.RawQuery = q.Encode()

	return u.String()
}

func canonicalHost(hostname string) string {
	hostname = strings.ToLower(hostname)
	hostname = strings.TrimPrefix(hostname, "www.")
	hostname = strings.TrimPrefix(hostname, "m.")
	if hostname == "music.youtube.com" {
		hostname = "youtube.com"
	}
	return hostname
}
