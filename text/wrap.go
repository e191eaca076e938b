package text

import (
	"strings"
	"unicode/utf8"
)

// Ellipsis is appended to runs shortened by Ellipsize.
const Ellipsis = "..."

// Wrap breaks s into lines whose width, as reported by width, does not
// exceed maxWidth. Lines break at spaces; a word wider than maxWidth on its
// own is broken between characters. Explicit newlines always start a new
// line and blank lines are kept.
func Wrap(s string, maxWidth float64, width func(string) float64) []string {
	var lines []string
	for _, para := range strings.Split(s, "\n") {
		words := strings.Fields(para)
		if len(words) == 0 {
			lines = append(lines, "")
			continue
		}

		line := ""
		for _, w := range words {
			candidate := w
			if line != "" {
				candidate = line + " " + w
			}
			if width(candidate) <= maxWidth {
				line = candidate
				continue
			}
			if line != "" {
				lines = append(lines, line)
				line = ""
			}
			if width(w) <= maxWidth {
				line = w
				continue
			}
			parts := breakWord(w, maxWidth, width)
			lines = append(lines, parts[:len(parts)-1]...)
			line = parts[len(parts)-1]
		}
		lines = append(lines, line)
	}
	return lines
}

// breakWord splits a single word between characters. Every part holds at
// least one rune, so a maxWidth narrower than one glyph still terminates.
func breakWord(w string, maxWidth float64, width func(string) float64) []string {
	var parts []string
	var cur strings.Builder
	for _, r := range w {
		if cur.Len() > 0 && width(cur.String()+string(r)) > maxWidth {
			parts = append(parts, cur.String())
			cur.Reset()
		}
		cur.WriteRune(r)
	}
	if cur.Len() > 0 {
		parts = append(parts, cur.String())
	}
	return parts
}

// Ellipsize shortens s until it, plus Ellipsis, fits in maxWidth. Strings
// that already fit are returned unchanged. If not even the ellipsis fits the
// result is empty.
func Ellipsize(s string, maxWidth float64, width func(string) float64) string {
	if width(s) <= maxWidth {
		return s
	}
	for s != "" {
		_, size := utf8.DecodeLastRuneInString(s)
		s = s[:len(s)-size]
		trimmed := strings.TrimRight(s, " ")
		if width(trimmed+Ellipsis) <= maxWidth {
			return trimmed + Ellipsis
		}
	}
	return ""
}
