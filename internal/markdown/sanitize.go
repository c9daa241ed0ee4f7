package markdown

import (
	"regexp"

	"github.com/microcosm-cc/bluemonday"
)

var sanitizePolicy = newPolicy()

func newPolicy() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()

	// heading anchors and TOC links
	p.AllowElements("nav")
	p.AllowAttrs("id").OnElements("h1", "h2", "h3", "h4", "h5", "h6")
	p.AllowAttrs("class").Matching(regexp.MustCompile(`^[a-zA-Z0-9\s_-]+$`)).OnElements(
		"a", "div", "span", "pre", "code", "nav", "ul", "ol", "li", "table", "input",
	)

	// deferred mermaid diagrams carry their percent-encoded source
	p.AllowAttrs("data-diagram").OnElements("div")

	// GFM task list checkboxes
	p.AllowElements("input")
	p.AllowAttrs("type", "checked", "disabled").OnElements("input")

	return p
}

// Sanitize strips disallowed tags and attributes from rendered HTML before it
// is ever sent to a browser.
func Sanitize(html string) string {
	return sanitizePolicy.Sanitize(html)
}
