package markdown

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPipelineRenderBasic(t *testing.T) {
	p := NewPipeline()

	result := p.Render("# Hello World\n\nA paragraph with **bold** text.\n")

	assert.Contains(t, result.HTML, `id="hello-world"`)
	assert.Contains(t, result.HTML, "<strong>bold</strong>")
	assert.Len(t, result.TOC, 1)
	assert.Equal(t, "hello-world", result.TOC[0].ID)
	assert.Equal(t, "Hello World", result.TOC[0].Title)
	assert.Equal(t, 1, result.TOC[0].Level)
}

func TestPipelineHeadingAnchors(t *testing.T) {
	p := NewPipeline()

	result := p.Render("## First Section\n")

	assert.Contains(t, result.HTML, `id="first-section"`)
	assert.Contains(t, result.HTML, `heading-anchor`)
	assert.Contains(t, result.HTML, `href="#first-section"`)
}

func TestPipelineTOCMatchesExtractor(t *testing.T) {
	src := `# Intro

## Getting *Started*

### With [links](https://example.com)

## Getting Started
`
	p := NewPipeline()

	rendered := p.Render(src)
	extracted := ExtractTOC(src)

	assert.Equal(t, len(extracted), len(rendered.TOC))
	for i := range extracted {
		assert.Equal(t, extracted[i].ID, rendered.TOC[i].ID,
			"extractor and renderer must agree on heading ids")
	}
}

func TestPipelineGFM(t *testing.T) {
	p := NewPipeline()

	src := `| a | b |
|---|---|
| 1 | 2 |

~~gone~~

- [x] done
- [ ] todo
`
	result := p.Render(src)

	assert.Contains(t, result.HTML, "<table>")
	assert.Contains(t, result.HTML, "<del>gone</del>")
	assert.Contains(t, result.HTML, `type="checkbox"`)
}

func TestPipelineMermaidDeferred(t *testing.T) {
	p := NewPipeline()

	src := "```mermaid\ngraph TD;\nA-->B;\n```\n"
	result := p.Render(src)

	assert.Contains(t, result.HTML, `class="mermaid-diagram"`)
	assert.Contains(t, result.HTML, "data-diagram=")
	assert.NotContains(t, result.HTML, "<svg")
	// the raw source must not leak unencoded into the markup
	assert.NotContains(t, result.HTML, "A-->B")
}

func TestPipelineTOCSection(t *testing.T) {
	p := NewPipeline()

	src := `## Table of Contents

## First

## Second
`
	result := p.Render(src)

	assert.Contains(t, result.HTML, `class="table-of-contents"`)
	assert.Contains(t, result.HTML, `href="#first"`)
	assert.Contains(t, result.HTML, `href="#second"`)
}

func TestPipelineSanitizesScript(t *testing.T) {
	p := NewPipeline()

	result := p.Render("hello <script>alert(1)</script> world\n")

	assert.NotContains(t, result.HTML, "<script>")
	assert.Contains(t, result.HTML, "hello")
}

func TestPipelineUnterminatedFence(t *testing.T) {
	p := NewPipeline()

	result := p.Render("# Title\n\n```go\nfunc main() {\n")

	assert.NotEmpty(t, result.HTML)
	// the highlighter splits tokens into spans, so match a bare token and
	// the code block wrapper rather than the full source line
	assert.Contains(t, result.HTML, "main")
	assert.Contains(t, result.HTML, "<pre")
}

func TestPipelineEmptyInput(t *testing.T) {
	p := NewPipeline()

	result := p.Render("")

	assert.Empty(t, result.TOC)
}

func TestPipelineCodeHighlighting(t *testing.T) {
	p := NewPipeline()

	result := p.Render("```go\npackage main\n```\n")

	// chroma emits class-based markup so themes can restyle it
	assert.Contains(t, result.HTML, "<pre")
	assert.True(t, strings.Contains(result.HTML, "chroma") || strings.Contains(result.HTML, "<code"))
}

func TestFallbackResult(t *testing.T) {
	result := fallbackResult("<raw & dangerous>")

	assert.Contains(t, result.HTML, "markdown-fallback")
	assert.Contains(t, result.HTML, "&lt;raw &amp; dangerous&gt;")
	assert.Empty(t, result.TOC)
}

func TestPipelineMathFlag(t *testing.T) {
	p := NewPipeline()

	result := p.Render("The identity $$e^{i\\pi} + 1 = 0$$ holds.")
	assert.True(t, result.Math)

	result = p.Render("It costs $5 and that is all.")
	assert.False(t, result.Math)
}
