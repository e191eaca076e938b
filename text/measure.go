package text

import (
	"fmt"

	xfont "golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

const mmPerPt = 25.4 / 72

// referenceSize is the point size registered faces are instantiated at.
// At 72 DPI one pixel equals one point, so advances scale linearly.
const referenceSize = 100

// Measurer measures and wraps text runs set in a named font.
// Widths are in millimetres; pt is the font size in points.
type Measurer interface {
	MeasureWidth(s, font string, pt float64) float64
	WrapToWidth(s, font string, pt, maxMm float64) []string
}

// FaceMeasurer measures text without an output surface. Standard font names
// use built-in width tables, fonts added with RegisterFont use their
// OpenType advances, and anything else is approximated with the 7x13 basic
// face.
//
// A FaceMeasurer is not safe for concurrent use.
type FaceMeasurer struct {
	faces map[string]xfont.Face
}

// NewFaceMeasurer creates a measurer with no registered faces.
func NewFaceMeasurer() *FaceMeasurer {
	return &FaceMeasurer{faces: make(map[string]xfont.Face)}
}

// RegisterFont parses an OpenType/TrueType payload and makes it measurable
// under name.
func (m *FaceMeasurer) RegisterFont(payload []byte, name string) error {
	f, err := opentype.Parse(payload)
	if err != nil {
		return fmt.Errorf("parse font %s: %w", name, err)
	}
	face, err := opentype.NewFace(f, &opentype.FaceOptions{
		Size:    referenceSize,
		DPI:     72,
		Hinting: xfont.HintingNone,
	})
	if err != nil {
		return fmt.Errorf("create face %s: %w", name, err)
	}
	m.faces[name] = face
	return nil
}

// MeasureWidth returns the advance width of s in millimetres.
func (m *FaceMeasurer) MeasureWidth(s, font string, pt float64) float64 {
	if metrics, ok := StandardMetrics(font); ok {
		return metrics.Measure(s, pt)
	}
	if face, ok := m.faces[font]; ok {
		adv := xfont.MeasureString(face, s)
		return fixedToFloat(adv) / referenceSize * pt * mmPerPt
	}
	face := basicfont.Face7x13
	adv := xfont.MeasureString(face, s)
	return fixedToFloat(adv) / float64(face.Height) * pt * mmPerPt
}

// WrapToWidth breaks s into lines no wider than maxMm.
func (m *FaceMeasurer) WrapToWidth(s, font string, pt, maxMm float64) []string {
	return Wrap(s, maxMm, func(line string) float64 {
		return m.MeasureWidth(line, font, pt)
	})
}

func fixedToFloat(v fixed.Int26_6) float64 {
	return float64(v) / 64
}
