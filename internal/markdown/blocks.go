package markdown

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"
)

// mermaidBlock replaces a ```mermaid fence. The diagram source travels
// percent-encoded in a data attribute and is rendered client-side; the server
// never produces SVG.
type mermaidBlock struct {
	ast.BaseBlock
	source string
}

var kindMermaidBlock = ast.NewNodeKind("MermaidBlock")

func (n *mermaidBlock) Kind() ast.NodeKind {
	return kindMermaidBlock
}

func (n *mermaidBlock) Dump(source []byte, level int) {
	ast.DumpHelper(n, source, level, nil, nil)
}

type mermaidTransformer struct{}

func (t *mermaidTransformer) Transform(doc *ast.Document, reader text.Reader, pc parser.Context) {
	source := reader.Source()

	var blocks []*ast.FencedCodeBlock
	ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		if cb, ok := n.(*ast.FencedCodeBlock); ok {
			if string(cb.Language(source)) == "mermaid" {
				blocks = append(blocks, cb)
			}
		}
		return ast.WalkContinue, nil
	})

	for _, cb := range blocks {
		var sb strings.Builder
		for i := 0; i < cb.Lines().Len(); i++ {
			line := cb.Lines().At(i)
			sb.Write(line.Value(source))
		}

		replacement := &mermaidBlock{source: url.PathEscape(sb.String())}
		parent := cb.Parent()
		parent.ReplaceChild(parent, cb, replacement)
	}
}

// tocBlock is inserted after a "Table of Contents" marker heading and renders
// the document's heading list in place.
type tocBlock struct {
	ast.BaseBlock
	entries []Heading
}

var kindTOCBlock = ast.NewNodeKind("TOCBlock")

func (n *tocBlock) Kind() ast.NodeKind {
	return kindTOCBlock
}

func (n *tocBlock) Dump(source []byte, level int) {
	ast.DumpHelper(n, source, level, nil, nil)
}

func isTOCMarker(title string) bool {
	switch strings.ToLower(strings.TrimSpace(title)) {
	case "table of contents", "toc", "contents":
		return true
	}
	return false
}

type tocTransformer struct{}

func (t *tocTransformer) Transform(doc *ast.Document, reader text.Reader, pc parser.Context) {
	source := reader.Source()

	var marker *ast.Heading
	var entries []Heading

	ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		h, ok := n.(*ast.Heading)
		if !ok {
			return ast.WalkContinue, nil
		}

		title := nodeText(h, source)
		if marker == nil && isTOCMarker(title) {
			marker = h
			return ast.WalkSkipChildren, nil
		}
		entries = append(entries, Heading{
			ID:    headingAttrID(h),
			Title: title,
			Level: h.Level,
		})
		return ast.WalkSkipChildren, nil
	})

	if marker == nil || len(entries) == 0 {
		return
	}

	parent := marker.Parent()
	parent.InsertAfter(parent, marker, &tocBlock{entries: entries})
}

// extensionNodeRenderer emits HTML for the custom block nodes above.
type extensionNodeRenderer struct{}

func (r *extensionNodeRenderer) RegisterFuncs(reg renderer.NodeRendererFuncRegisterer) {
	reg.Register(kindMermaidBlock, r.renderMermaid)
	reg.Register(kindTOCBlock, r.renderTOC)
}

func (r *extensionNodeRenderer) renderMermaid(w util.BufWriter, source []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	if entering {
		n := node.(*mermaidBlock)
		fmt.Fprintf(w, "<div class=\"mermaid-diagram\" data-diagram=\"%s\"></div>\n", n.source)
	}
	return ast.WalkContinue, nil
}

func (r *extensionNodeRenderer) renderTOC(w util.BufWriter, source []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering {
		return ast.WalkContinue, nil
	}

	n := node.(*tocBlock)
	w.WriteString("<nav class=\"table-of-contents\">\n<ul>\n")
	for _, e := range n.entries {
		fmt.Fprintf(w, "<li class=\"toc-level-%d\"><a href=\"#%s\">%s</a></li>\n", e.Level, e.ID, util.EscapeHTML([]byte(e.Title)))
	}
	w.WriteString("</ul>\n</nav>\n")

	return ast.WalkContinue, nil
}
