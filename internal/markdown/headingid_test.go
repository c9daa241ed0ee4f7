package markdown

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHeadingID(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{name: "simple", text: "Hello World", want: "hello-world"},
		{name: "uppercase", text: "HELLO", want: "hello"},
		{name: "emphasis stripped", text: "Some *emphasis* and **bold**", want: "some-emphasis-and-bold"},
		{name: "link becomes text", text: "See [the docs](https://example.com)", want: "see-the-docs"},
		{name: "inline code", text: "Using `go test`", want: "using-go-test"},
		{name: "punctuation dropped", text: "What's new? (2024 edition)", want: "whats-new-2024-edition"},
		{name: "cjk preserved", text: "日本語の見出し", want: "日本語の見出し"},
		{name: "collapsed hyphens", text: "a -- b", want: "a-b"},
		{name: "empty", text: "!!!", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HeadingID(tt.text))
		})
	}
}

func TestHeadingIDIdempotent(t *testing.T) {
	texts := []string{"Hello World", "Some *emphasis*", "日本語の見出し", "a  b   c"}
	for _, text := range texts {
		first := HeadingID(text)
		second := HeadingID(first)
		assert.Equal(t, first, second, "id generation must be idempotent for %q", text)
	}
}

func TestHeadingIDTruncation(t *testing.T) {
	long := strings.Repeat("word ", 30)
	id := HeadingID(long)
	assert.LessOrEqual(t, len([]rune(id)), 50)
	assert.False(t, strings.HasSuffix(id, "-"))
}

func TestExtractTOC(t *testing.T) {
	src := `# Title

## First Section

some text

### Nested

` + "```" + `
# not a heading
` + "```" + `

## Second Section
`

	toc := ExtractTOC(src)

	assert.Len(t, toc, 4)
	assert.Equal(t, Heading{ID: "title", Title: "Title", Level: 1}, toc[0])
	assert.Equal(t, Heading{ID: "first-section", Title: "First Section", Level: 2}, toc[1])
	assert.Equal(t, Heading{ID: "nested", Title: "Nested", Level: 3}, toc[2])
	assert.Equal(t, Heading{ID: "second-section", Title: "Second Section", Level: 2}, toc[3])
}

func TestExtractTOCDuplicateHeadings(t *testing.T) {
	src := "## Setup\n\n## Setup\n\n## Setup\n"

	toc := ExtractTOC(src)

	assert.Len(t, toc, 3)
	assert.Equal(t, "setup", toc[0].ID)
	assert.Equal(t, "setup-1", toc[1].ID)
	assert.Equal(t, "setup-2", toc[2].ID)
}

func TestExtractTOCEmpty(t *testing.T) {
	assert.Empty(t, ExtractTOC("just a paragraph\n\nanother one"))
	assert.Empty(t, ExtractTOC(""))
}
