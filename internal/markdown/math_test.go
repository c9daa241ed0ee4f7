package markdown

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHasMath(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want bool
	}{
		{name: "block math", src: "before\n$$\nE = mc^2\n$$\nafter", want: true},
		{name: "bracket display", src: `\[ x^2 \]`, want: true},
		{name: "bracket inline", src: `\( a+b \)`, want: true},
		{name: "macro", src: `the value \frac{1}{2} here`, want: true},
		{name: "inline with operator", src: "so $a + b$ holds", want: true},
		{name: "inline with command", src: `so $\alpha$ holds`, want: true},
		{name: "bare currency", src: "it costs $5 today", want: false},
		{name: "two currencies no operator", src: "between $5 and $10 dollars", want: false},
		{name: "plain text", src: "no math here at all", want: false},
		{name: "empty", src: "", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HasMath(tt.src))
		})
	}
}
