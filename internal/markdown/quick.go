package markdown

import (
	"fmt"
	"html"
	"regexp"
	"strings"
)

// Quick is the preview renderer: literal regex substitution instead of a real
// parser. It deliberately trades fidelity (naive lists, no tables) for zero
// startup cost; its output is superseded by the Pipeline render on save.
type Quick struct{}

func NewQuick() *Quick {
	return &Quick{}
}

var (
	quickBoldRx   = regexp.MustCompile(`\*\*([^*]+)\*\*`)
	quickItalicRx = regexp.MustCompile(`\*([^*]+)\*`)
	quickStrikeRx = regexp.MustCompile(`~~([^~]+)~~`)
	quickCodeRx   = regexp.MustCompile("`([^`]+)`")
	quickImageRx  = regexp.MustCompile(`!\[([^\]]*)\]\(([^)]+)\)`)
	quickLinkRx   = regexp.MustCompile(`\[([^\]]+)\]\(([^)]+)\)`)
	quickHRRx     = regexp.MustCompile(`^(-{3,}|\*{3,})$`)
)

func (q *Quick) Render(src string) Result {
	toc := ExtractTOC(src)
	ids := newIDSet()

	var out strings.Builder
	var para []string
	var code []string
	inFence := false
	fenceLang := ""

	flushPara := func() {
		if len(para) == 0 {
			return
		}
		out.WriteString("<p>" + quickInline(strings.Join(para, " ")) + "</p>\n")
		para = nil
	}

	for _, line := range strings.Split(src, "\n") {
		trimmed := strings.TrimSpace(line)

		if fenceRx.MatchString(trimmed) {
			if inFence {
				lang := ""
				if fenceLang != "" {
					lang = fmt.Sprintf(` class="language-%s"`, html.EscapeString(fenceLang))
				}
				out.WriteString("<pre><code" + lang + ">" + html.EscapeString(strings.Join(code, "\n")) + "</code></pre>\n")
				code = nil
			} else {
				flushPara()
				fenceLang = strings.TrimSpace(strings.TrimLeft(trimmed, "`~"))
			}
			inFence = !inFence
			continue
		}
		if inFence {
			code = append(code, line)
			continue
		}

		if m := atxHeadingRx.FindStringSubmatch(line); m != nil {
			flushPara()
			level := len(m[1])
			id := ids.unique(HeadingID(m[2]))
			out.WriteString(fmt.Sprintf("<h%d id=%q>%s</h%d>\n", level, id, quickInline(m[2]), level))
			continue
		}

		if strings.HasPrefix(trimmed, "> ") {
			flushPara()
			out.WriteString("<blockquote><p>" + quickInline(strings.TrimPrefix(trimmed, "> ")) + "</p></blockquote>\n")
			continue
		}

		if strings.HasPrefix(trimmed, "- ") || strings.HasPrefix(trimmed, "* ") {
			flushPara()
			out.WriteString("<ul><li>" + quickInline(trimmed[2:]) + "</li></ul>\n")
			continue
		}

		if quickHRRx.MatchString(trimmed) {
			flushPara()
			out.WriteString("<hr>\n")
			continue
		}

		if trimmed == "" {
			flushPara()
			continue
		}

		para = append(para, trimmed)
	}

	// unterminated fences still show their content
	if inFence && len(code) > 0 {
		out.WriteString("<pre><code>" + html.EscapeString(strings.Join(code, "\n")) + "</code></pre>\n")
	}
	flushPara()

	return Result{
		HTML: Sanitize(out.String()),
		TOC:  toc,
		Math: HasMath(src),
	}
}

func quickInline(s string) string {
	s = html.EscapeString(s)
	s = quickImageRx.ReplaceAllString(s, `<img src="$2" alt="$1">`)
	s = quickLinkRx.ReplaceAllString(s, `<a href="$2">$1</a>`)
	s = quickCodeRx.ReplaceAllString(s, "<code>$1</code>")
	s = quickBoldRx.ReplaceAllString(s, "<strong>$1</strong>")
	s = quickStrikeRx.ReplaceAllString(s, "<del>$1</del>")
	s = quickItalicRx.ReplaceAllString(s, "<em>$1</em>")
	return s
}
