package text

import "strings"

// defaultGlyphWidth is used for runes missing from a standard width table,
// in 1000ths of an em.
const defaultGlyphWidth = 500.0

// Standard font names understood by StandardWidths. They match the core
// fonts every PDF writer can reference without embedding.
const (
	Helvetica     = "Helvetica"
	HelveticaBold = "Helvetica-Bold"
	Courier       = "Courier"
)

// Printable ASCII widths (0x20..0x7E) in 1000ths of an em.
var helveticaWidths = [95]float64{
	278, 278, 355, 556, 556, 889, 667, 191, 333, 333, 389, 584, 278, 333, 278, 278, // space../
	556, 556, 556, 556, 556, 556, 556, 556, 556, 556, // 0..9
	278, 278, 584, 584, 584, 556, 1015, // :..@
	667, 667, 722, 722, 667, 611, 778, 722, 278, 500, 667, 556, 833, // A..M
	722, 778, 667, 778, 722, 667, 611, 722, 667, 944, 667, 667, 611, // N..Z
	278, 278, 278, 469, 556, 333, // [..`
	556, 556, 500, 556, 556, 278, 556, 556, 222, 222, 500, 222, 833, // a..m
	556, 556, 556, 556, 333, 500, 278, 556, 500, 722, 500, 500, 500, // n..z
	334, 260, 334, 584, // {..~
}

var helveticaBoldWidths = [95]float64{
	278, 333, 474, 556, 556, 889, 722, 238, 333, 333, 389, 584, 278, 333, 278, 278,
	556, 556, 556, 556, 556, 556, 556, 556, 556, 556,
	333, 333, 584, 584, 584, 611, 975,
	722, 722, 722, 722, 667, 611, 778, 722, 278, 556, 722, 611, 833,
	722, 778, 667, 778, 722, 667, 611, 722, 667, 944, 667, 667, 611,
	333, 278, 333, 584, 556, 333,
	556, 611, 556, 611, 556, 333, 611, 611, 278, 278, 556, 278, 889,
	611, 611, 611, 611, 389, 556, 333, 611, 556, 778, 556, 556, 500,
	389, 280, 389, 584,
}

// Metrics gives per-rune advance widths for one of the standard fonts.
type Metrics struct {
	Name   string
	widths *[95]float64
	mono   float64
}

// StandardMetrics returns the metrics for a standard font name. The style
// suffixes -Oblique and -Italic share the upright widths.
func StandardMetrics(name string) (Metrics, bool) {
	base := strings.TrimSuffix(strings.TrimSuffix(name, "-Oblique"), "-Italic")
	switch base {
	case Helvetica:
		return Metrics{Name: name, widths: &helveticaWidths}, true
	case HelveticaBold, "Helvetica-BoldOblique":
		return Metrics{Name: name, widths: &helveticaBoldWidths}, true
	case Courier, "Courier-Bold", "Courier-BoldOblique":
		return Metrics{Name: name, mono: 600}, true
	}
	return Metrics{}, false
}

// Width returns the width of a rune in 1000ths of an em.
func (m Metrics) Width(r rune) float64 {
	if m.mono > 0 {
		return m.mono
	}
	if r >= 0x20 && r <= 0x7E && m.widths != nil {
		return m.widths[r-0x20]
	}
	return defaultGlyphWidth
}

// StringWidth returns the total width of s in 1000ths of an em.
func (m Metrics) StringWidth(s string) float64 {
	total := 0.0
	for _, r := range s {
		total += m.Width(r)
	}
	return total
}

// Measure returns the width of s set at pt points, in millimetres.
func (m Metrics) Measure(s string, pt float64) float64 {
	return m.StringWidth(s) / 1000 * pt * mmPerPt
}
