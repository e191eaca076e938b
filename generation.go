package patro

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/tsawler/patro/assets"
	"github.com/tsawler/patro/font"
	"github.com/tsawler/patro/layout"
	"github.com/tsawler/patro/model"
	"github.com/tsawler/patro/paper"
	"github.com/tsawler/patro/text"
)

// Creator is written to the metadata of every generated document.
const Creator = "patro"

// qrPixels is the pixel size of the footer QR code.
const qrPixels = 256

var (
	colorText        = model.Color{R: 20, G: 20, B: 20}
	colorMuted       = model.Color{R: 110, G: 110, B: 110}
	colorRule        = model.Color{R: 180, G: 180, B: 180}
	colorPlaceholder = model.Color{R: 230, G: 230, B: 230}
	colorSaturday    = model.Color{R: 190, G: 30, B: 45}
	colorSaturdayBg  = model.Color{R: 253, G: 236, B: 236}
	colorTodayBg     = model.Color{R: 255, G: 243, B: 205}
	colorSelected    = model.Color{R: 30, G: 90, B: 200}
)

// generation is the state of one document generation. Nothing in it is
// shared with other generations.
type generation struct {
	ctx     context.Context
	opts    options
	profile paper.Profile

	fonts    *font.Selector
	measurer text.Measurer
	loader   *assets.Loader
	pager    *layout.Pager

	warnings []Warning
	logger   *zap.Logger
}

// newGeneration resolves the paper profile, picks a measurer and registers
// the fallback font. surface, when not nil, is the output surface the
// document will be rendered to; it is used as measurer and font registrar
// when it can serve as one.
func newGeneration(ctx context.Context, opts options, meta model.Metadata, surface any) *generation {
	profile := paper.Resolve(opts.paper)
	logger := opts.loggerOrNop().With(
		zap.String("document", meta.ID.String()),
		zap.Stringer("paper", profile.Size),
	)

	measurer := opts.measurer
	if measurer == nil {
		if m, ok := surface.(text.Measurer); ok {
			measurer = m
		} else {
			measurer = text.NewFaceMeasurer()
		}
	}

	meta.Creator = Creator
	meta.Producer = Creator
	if meta.CreationDate.IsZero() {
		meta.CreationDate = time.Now().UTC()
	}

	g := &generation{
		ctx:      ctx,
		opts:     opts,
		profile:  profile,
		fonts:    font.NewSelector(logger),
		measurer: measurer,
		loader:   assets.NewLoader(opts.fetcherOrDefault(), opts.maxImagePx, logger),
		pager:    layout.NewPagerWithConfig(profile, layout.PagerConfig{Metadata: meta, Logger: logger}),
		logger:   logger,
	}

	if opts.fontPayload != nil {
		var regs font.Registrars
		if r, ok := surface.(font.Registrar); ok {
			regs = append(regs, r)
		}
		if r, ok := measurer.(font.Registrar); ok && any(r) != surface {
			regs = append(regs, r)
		}
		var reg font.Registrar
		if len(regs) > 0 {
			reg = regs
		}
		if err := g.fonts.Register(reg, opts.fontPayload); err != nil {
			g.warn(WarningFontUnavailable, 0, err, "non-Latin text is set in the base font")
		}
	}
	return g
}

func (g *generation) warn(kind WarningKind, page int, err error, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	g.warnings = append(g.warnings, Warning{Kind: kind, Message: msg, Page: page, Err: err})
	g.logger.Warn(msg, zap.Stringer("kind", kind), zap.Int("page", page), zap.Error(err))
}

// page returns the 1-indexed number of the page being filled.
func (g *generation) page() int {
	return g.pager.Cursor().PageIndex + 1
}

func (g *generation) lineHeight(pt float64) float64 {
	return g.profile.LineHeight(pt)
}

func (g *generation) fontFor(run string, bold bool) string {
	if bold {
		return string(g.fonts.SelectBold(run))
	}
	return string(g.fonts.Select(run))
}

// label builds a text element. box is relative to the enclosing block.
func (g *generation) label(run string, box model.BBox, pt float64, bold bool, style model.TextStyle, role string) *model.Text {
	run = font.NormalizeUnicode(run)
	style.Bold = bold
	t := &model.Text{
		Text:   run,
		BBox:   box,
		Font:   g.fontFor(run, bold),
		SizePt: pt,
		Style:  style,
		Attrs:  model.Attrs{},
	}
	if role != "" {
		t.Attrs[model.AttrRole] = role
	}
	if text.DetectDirection(run) == text.RTL {
		t.Attrs[model.AttrDirection] = "rtl"
		if t.Style.Align == model.AlignLeft {
			t.Style.Align = model.AlignRight
		}
	}
	return t
}

// ellipsize shortens run so it fits in maxW at pt.
func (g *generation) ellipsize(run string, maxW, pt float64, bold bool) string {
	run = font.NormalizeUnicode(run)
	f := g.fontFor(run, bold)
	return text.Ellipsize(run, maxW, func(s string) float64 {
		return g.measurer.MeasureWidth(s, f, pt)
	})
}

// wrap reflows run into lines no wider than maxW.
func (g *generation) wrap(run string, maxW, pt float64, bold bool) []string {
	run = font.NormalizeUnicode(run)
	return g.measurer.WrapToWidth(run, g.fontFor(run, bold), pt, maxW)
}

// textBlock wraps run over the content width into a splittable block.
func (g *generation) textBlock(name string, kind layout.Kind, run string, pt float64, bold bool, indent float64, color model.Color) layout.Block {
	p := g.profile
	lh := g.lineHeight(pt)
	width := p.ContentWidth() - indent

	var rows [][]model.Element
	for _, line := range g.wrap(run, width, pt, bold) {
		rows = append(rows, []model.Element{
			g.label(line, model.NewBBox(p.MarginMm+indent, 0, width, lh), pt, bold, model.TextStyle{Color: color}, kind.String()),
		})
	}
	return layout.Lines(name, kind, lh, rows)
}

// image loads ref into box. When ref is empty or fails to load, a
// placeholder rectangle of the same box is returned instead, so the layout
// does not depend on the fetch.
func (g *generation) image(ref string, box model.BBox, alt, role string) model.Element {
	if ref != "" {
		img, err := g.loader.Load(g.ctx, ref)
		if err == nil {
			el := img.Element(box, alt)
			el.Attrs = model.Attrs{model.AttrRole: role, model.AttrSource: ref}
			return el
		}
		g.warn(WarningAssetUnavailable, g.page(), err, "%s: using placeholder", ref)
	}
	fill := colorPlaceholder
	return &model.Rect{
		BBox: box,
		Fill: &fill,
		Attrs: model.Attrs{
			model.AttrRole:        role,
			model.AttrPlaceholder: "true",
			model.AttrSource:      ref,
		},
	}
}

// place puts a block through the pager. Skipped optional blocks are
// reported by the pager itself.
func (g *generation) place(block layout.Block) error {
	_, err := g.pager.Place(block)
	return err
}

func (g *generation) checkContext() error {
	if err := g.ctx.Err(); err != nil {
		return fmt.Errorf("generation cancelled: %w", err)
	}
	return nil
}

// finish stamps the footer on every page and collects the warnings.
func (g *generation) finish(title string) (*model.Document, []Warning) {
	cfg := layout.DefaultFooterConfig()
	cfg.Title = title
	cfg.Contact = g.opts.contactText
	cfg.Fonts = g.fonts

	if g.opts.contactURL != "" {
		qr, err := assets.QR(g.opts.contactURL, qrPixels)
		if err != nil {
			g.warn(WarningAssetUnavailable, 0, err, "contact QR code omitted")
		} else {
			cfg.QR = qr.Element(model.BBox{}, g.opts.contactURL)
		}
		if cfg.Contact == "" {
			cfg.Contact = g.opts.contactURL
		}
	}

	doc, layoutWarnings := g.pager.Finish(layout.NewFooter(g.profile, cfg))
	warnings := append([]Warning(nil), g.warnings...)
	for _, w := range layoutWarnings {
		warnings = append(warnings, fromLayout(w))
	}
	g.logger.Info("document generated",
		zap.Int("pages", doc.PageCount()),
		zap.Int("warnings", len(warnings)),
	)
	return doc, warnings
}

// errInvalid wraps input validation failures.
func errInvalid(err error, format string, args ...any) error {
	return fmt.Errorf("%w: %s", err, fmt.Sprintf(format, args...))
}

var (
	// ErrInvalidYear is returned for a calendar year below 1.
	ErrInvalidYear = errors.New("patro: invalid year")
	// ErrInvalidMonth is returned when a requested month is outside 1..12.
	ErrInvalidMonth = errors.New("patro: invalid month")
	// ErrEmptyChapter is returned for a chapter with no title or body.
	ErrEmptyChapter = errors.New("patro: empty chapter")
)
