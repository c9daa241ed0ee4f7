package markdown

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestQuickRenderBasic(t *testing.T) {
	q := NewQuick()

	result := q.Render("# Title\n\nA **bold** and *italic* line with `code`.\n")

	assert.Contains(t, result.HTML, `<h1 id="title">Title</h1>`)
	assert.Contains(t, result.HTML, "<strong>bold</strong>")
	assert.Contains(t, result.HTML, "<em>italic</em>")
	assert.Contains(t, result.HTML, "<code>code</code>")
}

func TestQuickRenderHeadingIDsMatchPipeline(t *testing.T) {
	src := "## Getting Started\n\n## Getting Started\n"

	q := NewQuick()
	result := q.Render(src)

	assert.Contains(t, result.HTML, `id="getting-started"`)
	assert.Contains(t, result.HTML, `id="getting-started-1"`)
	assert.Equal(t, ExtractTOC(src), result.TOC)
}

func TestQuickRenderEscapesHTML(t *testing.T) {
	q := NewQuick()

	result := q.Render("hello <script>alert(1)</script>\n")

	assert.NotContains(t, result.HTML, "<script>")
}

func TestQuickRenderFences(t *testing.T) {
	q := NewQuick()

	result := q.Render("```go\nfunc main() {}\n```\n")

	assert.Contains(t, result.HTML, "<pre>")
	assert.Contains(t, result.HTML, "func main() {}")
}

func TestQuickRenderUnterminatedFence(t *testing.T) {
	q := NewQuick()

	result := q.Render("```\nstill shown\n")

	assert.NotEmpty(t, result.HTML)
	assert.Contains(t, result.HTML, "still shown")
}

func TestQuickRenderLinksAndLists(t *testing.T) {
	q := NewQuick()

	result := q.Render("- item one\n- [a link](https://example.com)\n")

	assert.Contains(t, result.HTML, "<li>item one</li>")
	assert.Contains(t, result.HTML, `href="https://example.com"`)
}
