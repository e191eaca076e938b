package render

import (
	"bytes"
	"fmt"
	"hash/fnv"
	"io"
	"strings"

	"github.com/go-pdf/fpdf"
	"go.uber.org/zap"
	"golang.org/x/image/font/opentype"

	"github.com/tsawler/patro/model"
	"github.com/tsawler/patro/paper"
	"github.com/tsawler/patro/text"
)

// defaultLineWidth is used for strokes that do not set a width.
const defaultLineWidth = 0.2

// PDFConfig holds the optional settings of a PDF surface.
type PDFConfig struct {
	// Compress enables stream compression.
	Compress bool
	Logger   *zap.Logger
}

// DefaultPDFConfig returns a config with compression on and logging off.
func DefaultPDFConfig() PDFConfig {
	return PDFConfig{
		Compress: true,
		Logger:   zap.NewNop(),
	}
}

// PDF is a Surface backed by fpdf. It also implements text.Measurer and
// font.Registrar so measurement and embedding share one font table.
//
// A PDF is single use: once Save or Write has run, the document is closed.
type PDF struct {
	pdf *fpdf.Fpdf

	// utf8 holds the names of fonts added with RegisterFont.
	utf8   map[string]bool
	images map[uint64]string

	// toLatin converts UTF-8 into the code page of the core fonts.
	toLatin func(string) string
	logger  *zap.Logger
}

// NewPDF creates a PDF surface sized for profile.
func NewPDF(profile paper.Profile) *PDF {
	return NewPDFWithConfig(profile, DefaultPDFConfig())
}

// NewPDFWithConfig creates a PDF surface with a custom configuration.
func NewPDFWithConfig(profile paper.Profile, config PDFConfig) *PDF {
	logger := config.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	f := fpdf.NewCustom(&fpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "mm",
		Size:           fpdf.SizeType{Wd: profile.WidthMm, Ht: profile.HeightMm},
	})
	f.SetMargins(0, 0, 0)
	f.SetCellMargin(0)
	f.SetAutoPageBreak(false, 0)
	f.SetCompression(config.Compress)
	f.SetFont(text.Helvetica, "", profile.BaseFontPt)

	return &PDF{
		pdf:     f,
		utf8:    make(map[string]bool),
		images:  make(map[uint64]string),
		toLatin: f.UnicodeTranslatorFromDescriptor(""),
		logger:  logger,
	}
}

// SetMetadata implements MetadataSetter.
func (p *PDF) SetMetadata(meta model.Metadata) {
	p.pdf.SetTitle(meta.Title, true)
	p.pdf.SetAuthor(meta.Author, true)
	p.pdf.SetSubject(meta.Subject, true)
	p.pdf.SetKeywords(meta.Keywords, true)
	p.pdf.SetCreator(meta.Creator, true)
	if meta.Producer != "" {
		p.pdf.SetProducer(meta.Producer, true)
	}
	if !meta.CreationDate.IsZero() {
		p.pdf.SetCreationDate(meta.CreationDate)
	}
}

// RegisterFont embeds a TrueType payload under name. It implements
// font.Registrar.
func (p *PDF) RegisterFont(payload []byte, name string) (err error) {
	// The TrueType reader panics on some truncated tables.
	defer func() {
		if r := recover(); r != nil {
			p.pdf.ClearError()
			err = fmt.Errorf("embedding font %q: %v", name, r)
		}
	}()

	// fpdf reports unreadable fonts on stdout only, without setting Err.
	if err := checkTrueType(payload); err != nil {
		return fmt.Errorf("embedding font %q: %w", name, err)
	}

	p.pdf.AddUTF8FontFromBytes(name, "", payload)
	if p.pdf.Err() {
		err := p.pdf.Error()
		p.pdf.ClearError()
		return fmt.Errorf("embedding font %q: %w", name, err)
	}
	p.utf8[name] = true
	return nil
}

// checkTrueType accepts a single font with TrueType outlines, the only kind
// fpdf can embed.
func checkTrueType(payload []byte) error {
	if len(payload) < 4 {
		return fmt.Errorf("not a TrueType font: %d bytes", len(payload))
	}
	switch tag := string(payload[:4]); tag {
	case "\x00\x01\x00\x00", "true":
	default:
		return fmt.Errorf("not a TrueType font: tag %q", tag)
	}
	if _, err := opentype.Parse(payload); err != nil {
		return fmt.Errorf("not a TrueType font: %w", err)
	}
	return nil
}

// setFont selects the fpdf family and style for a font ID. Names with a
// "-Bold" suffix map to the bold style of their core family. Unknown names
// fall back to Helvetica. It reports whether the font is a UTF-8 font.
func (p *PDF) setFont(id string, bold bool, pt float64) bool {
	if p.utf8[id] {
		p.pdf.SetFont(id, "", pt)
		return true
	}

	family, style := id, ""
	if base, ok := strings.CutSuffix(id, "-Bold"); ok {
		family, style = base, "B"
	}
	if bold {
		style = "B"
	}
	if _, ok := text.StandardMetrics(family); !ok {
		family = text.Helvetica
	}
	p.pdf.SetFont(family, style, pt)
	return false
}

func (p *PDF) encode(s string, utf8 bool) string {
	if utf8 {
		return s
	}
	return p.toLatin(s)
}

// MeasureWidth implements text.Measurer.
func (p *PDF) MeasureWidth(s, font string, pt float64) float64 {
	utf8 := p.setFont(font, false, pt)
	return p.pdf.GetStringWidth(p.encode(s, utf8))
}

// WrapToWidth implements text.Measurer. Runs the font can index directly
// use fpdf's own splitter; the rest are wrapped with measured widths.
func (p *PDF) WrapToWidth(s, font string, pt, maxMm float64) []string {
	utf8 := p.setFont(font, false, pt)
	if utf8 || text.IsASCII(s) {
		return p.pdf.SplitText(s, maxMm)
	}
	return text.Wrap(s, maxMm, func(run string) float64 {
		return p.pdf.GetStringWidth(p.toLatin(run))
	})
}

// AddPage implements Surface.
func (p *PDF) AddPage(width, height float64) error {
	p.pdf.AddPageFormat("P", fpdf.SizeType{Wd: width, Ht: height})
	return p.pdf.Error()
}

// DrawText implements Surface. The text is vertically centred in its box.
func (p *PDF) DrawText(t *model.Text) error {
	utf8 := p.setFont(t.Font, t.Style.Bold, t.SizePt)
	c := t.Style.Color
	p.pdf.SetTextColor(int(c.R), int(c.G), int(c.B))

	s := p.encode(t.Text, utf8)
	w := t.BBox.Width
	if w <= 0 {
		w = p.pdf.GetStringWidth(s)
	}

	align := "L"
	switch t.Style.Align {
	case model.AlignCenter:
		align = "C"
	case model.AlignRight:
		align = "R"
	}

	p.pdf.SetXY(t.BBox.X, t.BBox.Y)
	p.pdf.CellFormat(w, t.BBox.Height, s, "", 0, align+"M", false, 0, "")
	return p.pdf.Error()
}

// DrawImage implements Surface. Identical image data is embedded once.
func (p *PDF) DrawImage(img *model.Image) error {
	if len(img.Data) == 0 {
		return fmt.Errorf("image %q has no data", img.AltText)
	}
	h := fnv.New64a()
	h.Write(img.Data)
	sum := h.Sum64()

	opts := fpdf.ImageOptions{ImageType: img.Format.String()}
	name, ok := p.images[sum]
	if !ok {
		name = fmt.Sprintf("img%016x", sum)
		p.pdf.RegisterImageOptionsReader(name, opts, bytes.NewReader(img.Data))
		if p.pdf.Err() {
			return p.pdf.Error()
		}
		p.images[sum] = name
		p.logger.Debug("image embedded",
			zap.String("name", name),
			zap.Stringer("format", img.Format),
			zap.Int("bytes", len(img.Data)),
		)
	}

	b := img.BBox
	p.pdf.ImageOptions(name, b.X, b.Y, b.Width, b.Height, false, opts, 0, "")
	return p.pdf.Error()
}

// DrawRect implements Surface. A rect with neither fill nor stroke draws
// nothing.
func (p *PDF) DrawRect(r *model.Rect) error {
	style := ""
	if r.Fill != nil {
		p.pdf.SetFillColor(int(r.Fill.R), int(r.Fill.G), int(r.Fill.B))
		style += "F"
	}
	if r.Stroke != nil {
		p.pdf.SetDrawColor(int(r.Stroke.R), int(r.Stroke.G), int(r.Stroke.B))
		p.pdf.SetLineWidth(lineWidth(r.LineWidth))
		style += "D"
	}
	if style == "" {
		return nil
	}
	p.pdf.Rect(r.BBox.X, r.BBox.Y, r.BBox.Width, r.BBox.Height, style)
	return p.pdf.Error()
}

// DrawLine implements Surface.
func (p *PDF) DrawLine(l *model.Line) error {
	p.pdf.SetDrawColor(int(l.Color.R), int(l.Color.G), int(l.Color.B))
	p.pdf.SetLineWidth(lineWidth(l.Width))
	p.pdf.Line(l.Start.X, l.Start.Y, l.End.X, l.End.Y)
	return p.pdf.Error()
}

// Save implements Surface.
func (p *PDF) Save(filename string) error {
	if err := p.pdf.OutputFileAndClose(filename); err != nil {
		return fmt.Errorf("writing %s: %w", filename, err)
	}
	return nil
}

// Write implements Surface.
func (p *PDF) Write(w io.Writer) error {
	if err := p.pdf.Output(w); err != nil {
		return fmt.Errorf("writing pdf: %w", err)
	}
	return nil
}

// PageCount returns the number of pages added so far.
func (p *PDF) PageCount() int {
	return p.pdf.PageCount()
}

func lineWidth(w float64) float64 {
	if w <= 0 {
		return defaultLineWidth
	}
	return w
}
