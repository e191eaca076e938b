// Package paper maps the supported paper sizes to layout profiles.
//
// Profiles are a fixed, designer-tuned table rather than values derived from
// the physical sheet, so proportions stay consistent as sizes grow. Every
// larger size has margins, type sizes and image heights at least as large as
// the size below it.
package paper

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownSize is returned by ParseSize for unrecognized names.
var ErrUnknownSize = errors.New("paper: unknown size")

// Size enumerates the supported paper sizes, smallest first.
type Size int

const (
	A5 Size = iota
	A4
	A3
	A2
)

// Sizes lists every supported size from smallest to largest.
var Sizes = []Size{A5, A4, A3, A2}

// String returns the conventional name of the size.
func (s Size) String() string {
	switch s {
	case A5:
		return "A5"
	case A4:
		return "A4"
	case A3:
		return "A3"
	case A2:
		return "A2"
	default:
		return fmt.Sprintf("Size(%d)", int(s))
	}
}

// ParseSize parses a size name such as "a4" or "A4".
func ParseSize(name string) (Size, error) {
	for _, s := range Sizes {
		if strings.EqualFold(strings.TrimSpace(name), s.String()) {
			return s, nil
		}
	}
	return A5, fmt.Errorf("%w: %q", ErrUnknownSize, name)
}

// Profile holds the physical dimensions and type scale for one paper size.
// Lengths are millimetres, font sizes are points.
type Profile struct {
	Size Size

	WidthMm  float64
	HeightMm float64
	MarginMm float64

	BaseFontPt      float64
	HeaderFontPt    float64
	SubHeaderFontPt float64

	GridCellMm         float64
	ThemeImageHeightMm float64
	QRSizeMm           float64
	FooterHeightMm     float64
}

var profiles = map[Size]Profile{
	A5: {
		Size: A5, WidthMm: 148, HeightMm: 210, MarginMm: 8,
		BaseFontPt: 7, HeaderFontPt: 14, SubHeaderFontPt: 10,
		GridCellMm: 17, ThemeImageHeightMm: 36, QRSizeMm: 10, FooterHeightMm: 12,
	},
	A4: {
		Size: A4, WidthMm: 210, HeightMm: 297, MarginMm: 10,
		BaseFontPt: 9, HeaderFontPt: 18, SubHeaderFontPt: 12,
		GridCellMm: 24, ThemeImageHeightMm: 50, QRSizeMm: 14, FooterHeightMm: 16,
	},
	A3: {
		Size: A3, WidthMm: 297, HeightMm: 420, MarginMm: 14,
		BaseFontPt: 12, HeaderFontPt: 24, SubHeaderFontPt: 16,
		GridCellMm: 34, ThemeImageHeightMm: 76, QRSizeMm: 20, FooterHeightMm: 22,
	},
	A2: {
		Size: A2, WidthMm: 420, HeightMm: 594, MarginMm: 18,
		BaseFontPt: 16, HeaderFontPt: 32, SubHeaderFontPt: 22,
		GridCellMm: 50, ThemeImageHeightMm: 110, QRSizeMm: 28, FooterHeightMm: 30,
	},
}

// Resolve returns the profile for a size. Unknown sizes fall back to the
// smallest profile.
func Resolve(s Size) Profile {
	if p, ok := profiles[s]; ok {
		return p
	}
	return profiles[A5]
}

// Name returns the size name.
func (p Profile) Name() string {
	return p.Size.String()
}

// ContentWidth is the page width between the side margins.
func (p Profile) ContentWidth() float64 {
	return p.WidthMm - 2*p.MarginMm
}

// UsableBottom is the lowest Y content may reach before the footer band.
func (p Profile) UsableBottom() float64 {
	return p.HeightMm - p.MarginMm - p.FooterHeightMm
}

// UsableHeight is the vertical space available to content on one page.
func (p Profile) UsableHeight() float64 {
	return p.UsableBottom() - p.MarginMm
}

// LineHeight returns the line advance for text set at pt points.
func (p Profile) LineHeight(pt float64) float64 {
	return PtToMm(pt) * 1.35
}

// PtToMm converts typographic points to millimetres.
func PtToMm(pt float64) float64 {
	return pt * 25.4 / 72
}

// MmToPt converts millimetres to typographic points.
func MmToPt(mm float64) float64 {
	return mm * 72 / 25.4
}
