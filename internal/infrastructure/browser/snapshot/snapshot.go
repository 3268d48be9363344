// Package snapshot reduces a live page's HTML to a readable DOM dump that is
// stored next to failure screenshots.
package snapshot

import (
	"strings"

	"golang.org/x/net/html"
)

type Config struct {
	TagsToRemove  []string
	AttrsToRemove []string
	MaxOutputSize int
	// DropAttr lets callers filter more attributes, e.g. framework ids.
	DropAttr func(attr html.Attribute) bool
}

func DefaultConfig() Config {
	return Config{
		TagsToRemove: []string{
			"script", "style", "noscript", "svg", "iframe",
			"link", "meta", "head",
		},
		AttrsToRemove: []string{
			"style", "srcset", "sizes", "loading", "decoding", "fetchpriority",
		},
		MaxOutputSize: 256_000,
	}
}

// Clean parses rawHTML, strips noise from <body> and renders it back.
// Input that cannot be parsed or has no body is returned unchanged.
func Clean(rawHTML string, cfg Config) string {
	doc, err := html.Parse(strings.NewReader(rawHTML))
	if err != nil {
		return rawHTML
	}

	body := findBody(doc)
	if body == nil {
		return rawHTML
	}

	cleanNode(body, cfg)

	var sb strings.Builder
	if err := html.Render(&sb, body); err != nil {
		return rawHTML
	}
	return truncate(sb.String(), cfg.MaxOutputSize)
}

func findBody(n *html.Node) *html.Node {
	if n.Type == html.ElementNode && n.Data == "body" {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if b := findBody(c); b != nil {
			return b
		}
	}
	return nil
}

func cleanNode(n *html.Node, cfg Config) {
	if n.Type == html.CommentNode {
		if n.Parent != nil {
			n.Parent.RemoveChild(n)
		}
		return
	}
	if n.Type != html.ElementNode {
		return
	}

	if isOneOf(n.Data, cfg.TagsToRemove...) {
		if n.Parent != nil {
			n.Parent.RemoveChild(n)
		}
		return
	}

	n.Attr = filterAttributes(n.Attr, cfg)

	for c := n.FirstChild; c != nil; {
		next := c.NextSibling
		cleanNode(c, cfg)
		c = next
	}
}

func filterAttributes(attrs []html.Attribute, cfg Config) []html.Attribute {
	var kept []html.Attribute
	for _, attr := range attrs {
		if dropAttr(attr, cfg) {
			continue
		}
		kept = append(kept, attr)
	}
	return kept
}

// Inline handlers always go; data-* and aria-* stay because selectors and
// accessibility assertions refer to them.
func dropAttr(attr html.Attribute, cfg Config) bool {
	if isOneOf(attr.Key, cfg.AttrsToRemove...) {
		return true
	}
	if strings.HasPrefix(attr.Key, "on") {
		return true
	}
	if strings.HasPrefix(attr.Key, "data-v-") {
		return true
	}
	return cfg.DropAttr != nil && cfg.DropAttr(attr)
}

func truncate(s string, maxSize int) string {
	if maxSize <= 0 || len(s) <= maxSize {
		return s
	}
	return s[:maxSize] + "\n<!-- snapshot truncated -->"
}

func isOneOf(s string, candidates ...string) bool {
	for _, c := range candidates {
		if s == c {
			return true
		}
	}
	return false
}
