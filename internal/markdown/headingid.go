package markdown

import (
	"regexp"
	"strconv"
	"strings"
)

// Heading is a single table-of-contents entry.
type Heading struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Level int    `json:"level"`
}

const maxHeadingIDLen = 50

var (
	headingLinkRx   = regexp.MustCompile(`\[([^\]]*)\]\([^)]*\)`)
	headingInlineRx = regexp.MustCompile("[*_~`]")
	headingSpaceRx  = regexp.MustCompile(`\s+`)
	// word characters, CJK ideographs, kana, hangul and hyphens survive;
	// everything else is dropped.
	headingDropRx    = regexp.MustCompile(`[^\w\x{4E00}-\x{9FFF}\x{3040}-\x{30FF}\x{AC00}-\x{D7AF}-]`)
	headingHyphensRx = regexp.MustCompile(`-{2,}`)

	atxHeadingRx = regexp.MustCompile(`^(#{1,6})\s+(.*?)\s*#*\s*$`)
	fenceRx      = regexp.MustCompile("^(```|~~~)")
)

// HeadingID derives the anchor id for a heading. The TOC extractor and the
// HTML renderer both go through this function so in-page anchors line up.
func HeadingID(text string) string {
	s := strings.ToLower(strings.TrimSpace(text))
	s = headingLinkRx.ReplaceAllString(s, "$1")
	s = headingInlineRx.ReplaceAllString(s, "")
	s = headingSpaceRx.ReplaceAllString(s, "-")
	s = headingDropRx.ReplaceAllString(s, "")
	s = headingHyphensRx.ReplaceAllString(s, "-")
	s = strings.Trim(s, "-")

	if runes := []rune(s); len(runes) > maxHeadingIDLen {
		s = strings.TrimRight(string(runes[:maxHeadingIDLen]), "-")
	}

	return s
}

// stripInline removes markdown inline syntax for display purposes, replacing
// links with their link text.
func stripInline(text string) string {
	s := strings.TrimSpace(text)
	s = headingLinkRx.ReplaceAllString(s, "$1")
	s = headingInlineRx.ReplaceAllString(s, "")
	return s
}

// idSet disambiguates repeated heading ids with -1, -2 suffixes, matching the
// renderer's behaviour.
type idSet struct {
	seen map[string]int
}

func newIDSet() *idSet {
	return &idSet{seen: make(map[string]int)}
}

func (s *idSet) unique(id string) string {
	if id == "" {
		id = "heading"
	}
	n := s.seen[id]
	s.seen[id]++
	if n == 0 {
		return id
	}
	return id + "-" + strconv.Itoa(n)
}

// ExtractTOC scans raw markdown for ATX headings outside fenced code blocks
// and returns them in document order. It never parses HTML and is safe on
// malformed input.
func ExtractTOC(src string) []Heading {
	var toc []Heading
	ids := newIDSet()

	inFence := false
	for _, line := range strings.Split(src, "\n") {
		trimmed := strings.TrimSpace(line)
		if fenceRx.MatchString(trimmed) {
			inFence = !inFence
			continue
		}
		if inFence {
			continue
		}

		m := atxHeadingRx.FindStringSubmatch(line)
		if m == nil {
			continue
		}

		title := stripInline(m[2])
		if title == "" {
			continue
		}

		toc = append(toc, Heading{
			ID:    ids.unique(HeadingID(m[2])),
			Title: title,
			Level: len(m[1]),
		})
	}

	return toc
}
