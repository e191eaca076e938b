package layout

import (
	"fmt"
	"regexp"
	"strconv"

	"github.com/tsawler/patro/font"
	"github.com/tsawler/patro/model"
	"github.com/tsawler/patro/paper"
	"github.com/tsawler/patro/text"
)

// Footer element roles.
const (
	RoleFooter    = "footer"
	RolePageLabel = "page-label"
	RoleQR        = "qr"
)

// FooterConfig holds the chrome stamped into every page's footer band.
type FooterConfig struct {
	// Title is printed at the left of the band.
	Title string
	// Contact is printed under the title.
	Contact string
	// QR, when set, is placed at the right of the band. Its box is
	// replaced; only the image data is used.
	QR *model.Image
	// Fonts picks the font per run. Nil means the base font.
	Fonts *font.Selector
	Color model.Color
}

// DefaultFooterConfig returns a footer with page numbers only.
func DefaultFooterConfig() FooterConfig {
	return FooterConfig{Color: model.Color{R: 90, G: 90, B: 90}}
}

// Footer stamps "Page X of N", the document title, contact text and an
// optional QR code into the footer band below the usable area.
type Footer struct {
	profile paper.Profile
	config  FooterConfig
}

// NewFooter creates a footer stamper for profile.
func NewFooter(profile paper.Profile, config FooterConfig) *Footer {
	return &Footer{profile: profile, config: config}
}

// PageLabel returns the page label for a 0-based page index.
func PageLabel(index, total int) string {
	return fmt.Sprintf("Page %d of %d", index+1, total)
}

var pageLabelPattern = regexp.MustCompile(`^Page (\d+) of (\d+)$`)

// ParsePageLabel parses a label produced by PageLabel.
func ParsePageLabel(s string) (page, total int, ok bool) {
	m := pageLabelPattern.FindStringSubmatch(s)
	if m == nil {
		return 0, 0, false
	}
	page, err1 := strconv.Atoi(m[1])
	total, err2 := strconv.Atoi(m[2])
	if err1 != nil || err2 != nil || page < 1 || page > total {
		return 0, 0, false
	}
	return page, total, true
}

func (f *Footer) fontFor(run string) string {
	if f.config.Fonts == nil {
		return string(font.Base)
	}
	return string(f.config.Fonts.Select(run))
}

// Stamp implements Stamper.
func (f *Footer) Stamp(page *model.Page, index, total int) {
	p := f.profile
	top := p.UsableBottom()
	left := p.MarginMm
	width := p.ContentWidth()
	pt := p.BaseFontPt
	lh := p.LineHeight(pt)
	attrs := func(role string) model.Attrs {
		return model.Attrs{model.AttrRole: role}
	}

	page.AddElement(&model.Line{
		Start: model.Point{X: left, Y: top + 1},
		End:   model.Point{X: left + width, Y: top + 1},
		Width: 0.2,
		Color: f.config.Color,
		Attrs: attrs(RoleFooter),
	})

	textWidth := width
	if f.config.QR != nil {
		size := p.QRSizeMm
		qr := *f.config.QR
		qr.BBox = model.NewBBox(left+width-size, top+(p.FooterHeightMm-size)/2, size, size)
		qr.Attrs = attrs(RoleQR)
		page.AddElement(&qr)
		textWidth -= size + 2
	}

	y := top + 2
	label := PageLabel(index, total)
	page.AddElement(&model.Text{
		Text:   label,
		BBox:   model.NewBBox(left, y, textWidth, lh),
		Font:   string(font.Base),
		SizePt: pt,
		Style:  model.TextStyle{Color: f.config.Color, Align: model.AlignRight},
		Attrs:  attrs(RolePageLabel),
	})

	for _, run := range []string{f.config.Title, f.config.Contact} {
		if run == "" {
			continue
		}
		run = font.NormalizeUnicode(run)
		t := &model.Text{
			Text:   run,
			BBox:   model.NewBBox(left, y, textWidth*0.7, lh),
			Font:   f.fontFor(run),
			SizePt: pt,
			Style:  model.TextStyle{Color: f.config.Color},
			Attrs:  attrs(RoleFooter),
		}
		if text.DetectDirection(run) == text.RTL {
			t.Style.Align = model.AlignRight
			t.Attrs[model.AttrDirection] = "rtl"
		}
		page.AddElement(t)
		y += lh
	}
}
