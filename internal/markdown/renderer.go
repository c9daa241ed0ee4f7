package markdown

import (
	"bytes"
	"html"

	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/yuin/goldmark"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer"
	goldmarkhtml "github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"
)

// Result is the output of a render: sanitized HTML plus the table of
// contents derived from the document's headings. Math reports whether the
// source needs a math typesetter loaded on the client.
type Result struct {
	HTML string    `json:"html"`
	TOC  []Heading `json:"toc"`
	Math bool      `json:"math"`
}

// Renderer converts raw markdown to sanitized HTML. Implementations must not
// fail: on malformed input they fall back to an escaped preformatted block.
type Renderer interface {
	Render(src string) Result
}

// Pipeline is the full-featured renderer: GFM extensions, stable heading ids,
// self-referencing heading anchors, syntax highlighting, mermaid deferral and
// HTML sanitization.
type Pipeline struct {
	md goldmark.Markdown
}

func NewPipeline() *Pipeline {
	md := goldmark.New(
		goldmark.WithExtensions(
			extension.GFM,
			extension.Strikethrough,
			extension.Table,
			extension.TaskList,
			highlighting.NewHighlighting(
				highlighting.WithStyle("github"),
				highlighting.WithFormatOptions(
					chromahtml.WithClasses(true),
				),
			),
		),
		goldmark.WithParserOptions(
			parser.WithAutoHeadingID(),
			parser.WithASTTransformers(
				util.Prioritized(&mermaidTransformer{}, 100),
				util.Prioritized(&tocTransformer{}, 200),
				util.Prioritized(&anchorTransformer{}, 300),
			),
		),
		goldmark.WithRendererOptions(
			goldmarkhtml.WithUnsafe(),
			renderer.WithNodeRenderers(
				util.Prioritized(&extensionNodeRenderer{}, 100),
			),
		),
	)
	return &Pipeline{md: md}
}

func (p *Pipeline) Render(src string) (result Result) {
	// A parse failure must never reach the caller; the raw text is always
	// better than a blank page.
	defer func() {
		if r := recover(); r != nil {
			result = fallbackResult(src)
		}
	}()

	source := []byte(src)
	ctx := parser.NewContext(parser.WithIDs(newHeadingIDs()))
	reader := text.NewReader(source)
	doc := p.md.Parser().Parse(reader, parser.WithContext(ctx))

	var toc []Heading
	ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		if h, ok := n.(*ast.Heading); ok {
			toc = append(toc, Heading{
				ID:    headingAttrID(h),
				Title: nodeText(h, source),
				Level: h.Level,
			})
		}
		return ast.WalkContinue, nil
	})

	var buf bytes.Buffer
	if err := p.md.Renderer().Render(&buf, source, doc); err != nil {
		return fallbackResult(src)
	}

	return Result{
		HTML: Sanitize(buf.String()),
		TOC:  toc,
		Math: HasMath(src),
	}
}

func fallbackResult(src string) Result {
	return Result{
		HTML: `<pre class="markdown-fallback">` + html.EscapeString(src) + `</pre>`,
	}
}

// headingIDs adapts the shared heading-id rule to goldmark's parser.IDs so the
// renderer and ExtractTOC emit byte-identical anchors.
type headingIDs struct {
	set *idSet
}

func newHeadingIDs() *headingIDs {
	return &headingIDs{set: newIDSet()}
}

func (ids *headingIDs) Generate(value []byte, kind ast.NodeKind) []byte {
	return []byte(ids.set.unique(HeadingID(string(value))))
}

func (ids *headingIDs) Put(value []byte) {
	ids.set.seen[string(value)]++
}

func headingAttrID(h *ast.Heading) string {
	id, ok := h.AttributeString("id")
	if !ok {
		return ""
	}
	switch v := id.(type) {
	case string:
		return v
	case []byte:
		return string(v)
	}
	return ""
}

// nodeText collects the plain text under a node.
func nodeText(n ast.Node, source []byte) string {
	var buf bytes.Buffer
	ast.Walk(n, func(c ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		if t, ok := c.(*ast.Text); ok {
			buf.Write(t.Segment.Value(source))
		}
		return ast.WalkContinue, nil
	})
	return buf.String()
}

// anchorTransformer wraps every heading's children in a self-referencing
// anchor link.
type anchorTransformer struct{}

func (t *anchorTransformer) Transform(doc *ast.Document, reader text.Reader, pc parser.Context) {
	ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}

		h, ok := n.(*ast.Heading)
		if !ok {
			return ast.WalkContinue, nil
		}

		id := headingAttrID(h)
		if id == "" {
			return ast.WalkSkipChildren, nil
		}

		link := ast.NewLink()
		link.Destination = []byte("#" + id)
		link.SetAttributeString("class", []byte("heading-anchor"))

		for c := h.FirstChild(); c != nil; {
			next := c.NextSibling()
			link.AppendChild(link, c)
			c = next
		}
		h.AppendChild(h, link)

		return ast.WalkSkipChildren, nil
	})
}
