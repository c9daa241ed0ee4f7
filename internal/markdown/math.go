package markdown

import (
	"regexp"
	"strings"
)

var (
	blockMathRx   = regexp.MustCompile(`(?s)\$\$.+?\$\$`)
	bracketMathRx = regexp.MustCompile(`\\\(|\\\[`)
	inlineMathRx  = regexp.MustCompile(`\$([^$\n]+)\$`)

	mathMacros = []string{
		`\frac`, `\sum`, `\int`, `\sqrt`, `\begin`, `\lim`, `\infty`,
		`\alpha`, `\beta`, `\gamma`, `\theta`, `\pi`, `\cdot`, `\times`,
		`\partial`, `\nabla`, `\vec`, `\mathbb`, `\mathcal`,
	}
)

// HasMath reports whether src likely contains LaTeX math. Detection is
// conservative: a bare dollar amount like "$5" must not trigger it, so inline
// $...$ only counts when the body carries an operator or a backslash command.
func HasMath(src string) bool {
	if blockMathRx.MatchString(src) {
		return true
	}
	if bracketMathRx.MatchString(src) {
		return true
	}
	for _, macro := range mathMacros {
		if strings.Contains(src, macro) {
			return true
		}
	}

	for _, m := range inlineMathRx.FindAllStringSubmatch(src, -1) {
		if strings.ContainsAny(m[1], `+-*/=^_\`) {
			return true
		}
	}

	return false
}
