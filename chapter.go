package patro

import (
	"context"
	"fmt"
	"io"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/tsawler/patro/assets"
	"github.com/tsawler/patro/bsdate"
	"github.com/tsawler/patro/content"
	"github.com/tsawler/patro/format"
	"github.com/tsawler/patro/htmldoc"
	"github.com/tsawler/patro/layout"
	"github.com/tsawler/patro/model"
	"github.com/tsawler/patro/paper"
	"github.com/tsawler/patro/render"
	"github.com/tsawler/patro/text"
)

// Element roles used in chapter documents.
const (
	RoleChapterTitle = "chapter-title"
	RoleChapterImage = "chapter-image"
	RoleMetadata     = "metadata"
	RoleHeading      = "heading"
	RoleBodyImage    = "body-image"
)

// listIndentMm is the indent per list nesting level.
const listIndentMm = 4

var blankLines = regexp.MustCompile(`\n[ \t]*\n`)

// ChapterBuilder configures a chapter document. Like CalendarBuilder, every
// method returns a new builder.
type ChapterBuilder struct {
	chapter content.Chapter
	options options
}

// Chapter starts a document for one chapter.
//
// Example:
//
//	warnings, err := patro.Chapter(ch).Paper(paper.A5).Save(ctx, "chapter.pdf")
func Chapter(ch content.Chapter) *ChapterBuilder {
	return &ChapterBuilder{chapter: ch, options: defaultOptions()}
}

func (b *ChapterBuilder) clone() *ChapterBuilder {
	c := *b
	c.chapter.ImageURLs = append([]string(nil), b.chapter.ImageURLs...)
	c.chapter.Tags = append([]string(nil), b.chapter.Tags...)
	c.options = b.options.clone()
	return &c
}

// Paper sets the paper size. Unknown sizes use the smallest profile.
func (b *ChapterBuilder) Paper(size paper.Size) *ChapterBuilder {
	c := b.clone()
	c.options.paper = size
	return c
}

// Title overrides the document title. The chapter heading is unchanged.
func (b *ChapterBuilder) Title(title string) *ChapterBuilder {
	c := b.clone()
	c.options.title = title
	return c
}

// Fetcher sets how images are fetched.
func (b *ChapterBuilder) Fetcher(f assets.Fetcher) *ChapterBuilder {
	c := b.clone()
	c.options.fetcher = f
	return c
}

// FallbackFont sets a TrueType payload used for non-Latin runs.
func (b *ChapterBuilder) FallbackFont(payload []byte) *ChapterBuilder {
	c := b.clone()
	c.options.fontPayload = payload
	return c
}

// Contact sets the footer contact line and QR code.
func (b *ChapterBuilder) Contact(text, url string) *ChapterBuilder {
	c := b.clone()
	c.options.contactText = text
	c.options.contactURL = url
	return c
}

// Measurer sets the text measurer used for reflow.
func (b *ChapterBuilder) Measurer(m text.Measurer) *ChapterBuilder {
	c := b.clone()
	c.options.measurer = m
	return c
}

// Logger sets the logger.
func (b *ChapterBuilder) Logger(l *zap.Logger) *ChapterBuilder {
	c := b.clone()
	c.options.logger = l
	return c
}

// Document lays out the chapter and returns it without rendering.
func (b *ChapterBuilder) Document(ctx context.Context) (*model.Document, []Warning, error) {
	return b.build(ctx, nil)
}

// Render lays out the chapter and draws it onto s.
func (b *ChapterBuilder) Render(ctx context.Context, s render.Surface) (*model.Document, []Warning, error) {
	return renderTo(ctx, b.build, s)
}

// Save writes the chapter as a PDF file.
func (b *ChapterBuilder) Save(ctx context.Context, filename string) ([]Warning, error) {
	return savePDF(ctx, b.options, b.build, filename)
}

// Write writes the chapter as PDF to w.
func (b *ChapterBuilder) Write(ctx context.Context, w io.Writer) ([]Warning, error) {
	return writePDF(ctx, b.options, b.build, w)
}

func (b *ChapterBuilder) build(ctx context.Context, surface any) (*model.Document, []Warning, error) {
	ch := b.chapter
	if strings.TrimSpace(ch.Title) == "" || strings.TrimSpace(ch.Body) == "" {
		return nil, nil, errInvalid(ErrEmptyChapter, "chapter %q needs a title and a body", ch.ID)
	}

	meta := model.NewDocument().Metadata
	meta.Title = ch.Title
	if b.options.title != "" {
		meta.Title = b.options.title
	}
	meta.Author = ch.Author
	meta.Keywords = strings.Join(ch.Tags, ", ")

	g := newGeneration(ctx, b.options, meta, surface)
	cl := &chapterLayout{g: g, ch: ch}
	if err := cl.layout(); err != nil {
		return nil, g.warnings, err
	}

	doc, warnings := g.finish(meta.Title)
	return doc, warnings, nil
}

type chapterLayout struct {
	g  *generation
	ch content.Chapter
}

func (c *chapterLayout) layout() error {
	g := c.g
	p := g.profile
	bodyLH := g.lineHeight(p.BaseFontPt)

	if err := g.pager.NewPage(); err != nil {
		return err
	}

	title := g.textBlock("title", layout.KindHeader, c.ch.Title, p.HeaderFontPt, true, 0, colorText)
	title.Split = nil
	title.KeepWithNext = 2 * bodyLH
	retag(title.Elements, RoleChapterTitle)
	if err := g.place(title); err != nil {
		return err
	}
	g.pager.Advance(bodyLH / 2)

	if meta := c.metadataBlock(); meta.Height > 0 {
		if err := g.place(meta); err != nil {
			return err
		}
		g.pager.Advance(bodyLH / 2)
	}

	lead := ""
	if len(c.ch.ImageURLs) > 0 {
		lead = c.ch.ImageURLs[0]
		if err := g.place(c.imageBlock(lead, c.ch.Title, RoleChapterImage)); err != nil {
			return err
		}
	}

	if err := g.checkContext(); err != nil {
		return err
	}
	if isHTML(c.ch.Body) {
		return c.htmlBody(lead)
	}
	return c.plainBody()
}

// metadataBlock lists the author, the publication date in both calendars
// and the tags. It is empty when the chapter has none of them.
func (c *chapterLayout) metadataBlock() layout.Block {
	g := c.g
	p := g.profile

	var lines []string
	if c.ch.Author != "" {
		lines = append(lines, "By "+c.ch.Author)
	}
	if t, ok := c.ch.PublishedDate(); ok {
		bs := bsdate.ToBS(t)
		if bs.Clamped {
			g.warn(WarningConversionImprecision, g.page(), nil, "publication date %s clamped to %s BS", c.ch.Published, bs)
		}
		lines = append(lines, fmt.Sprintf("Published %s (%s BS)", t.Format("2 Jan 2006"), bs))
	}
	if len(c.ch.Tags) > 0 {
		lines = append(lines, "Tags: "+strings.Join(c.ch.Tags, ", "))
	}

	lh := g.lineHeight(p.BaseFontPt)
	rows := make([][]model.Element, len(lines))
	for i, line := range lines {
		line = g.ellipsize(line, p.ContentWidth(), p.BaseFontPt, false)
		rows[i] = []model.Element{
			g.label(line, model.NewBBox(p.MarginMm, 0, p.ContentWidth(), lh), p.BaseFontPt, false,
				model.TextStyle{Color: colorMuted}, RoleMetadata),
		}
	}
	block := layout.Lines("metadata", layout.KindList, lh, rows)
	block.Split = nil
	return block
}

func (c *chapterLayout) imageBlock(ref, alt, role string) layout.Block {
	p := c.g.profile
	box := model.NewBBox(p.MarginMm, 0, p.ContentWidth(), p.ThemeImageHeightMm)
	return layout.Block{
		Name:     role,
		Kind:     layout.KindImage,
		Height:   p.ThemeImageHeightMm + 2,
		Elements: []model.Element{c.g.image(ref, box, alt, role)},
	}
}

// plainBody reflows text paragraphs separated by blank lines.
func (c *chapterLayout) plainBody() error {
	g := c.g
	p := g.profile
	gap := g.lineHeight(p.BaseFontPt) / 2

	for i, para := range blankLines.Split(strings.ReplaceAll(c.ch.Body, "\r\n", "\n"), -1) {
		para = strings.TrimSpace(para)
		if para == "" {
			continue
		}
		block := g.textBlock(fmt.Sprintf("paragraph %d", i+1), layout.KindText, para, p.BaseFontPt, false, 0, colorText)
		if err := g.pager.Flow(block); err != nil {
			return err
		}
		g.pager.Advance(gap)
	}
	return nil
}

// htmlBody lays out parsed HTML sections. The lead image is not repeated
// when the body contains it too.
func (c *chapterLayout) htmlBody(lead string) error {
	g := c.g
	p := g.profile
	gap := g.lineHeight(p.BaseFontPt) / 2

	doc, err := htmldoc.Parse(strings.NewReader(c.ch.Body))
	if err != nil {
		return fmt.Errorf("chapter body: %w", err)
	}

	for i, s := range doc.Sections {
		if err := g.checkContext(); err != nil {
			return err
		}
		name := fmt.Sprintf("%s %d", s.Kind, i+1)

		switch s.Kind {
		case htmldoc.SectionImage:
			if s.Src == lead {
				continue
			}
			if err := g.place(c.imageBlock(s.Src, s.Text, RoleBodyImage)); err != nil {
				return err
			}
			continue

		case htmldoc.SectionHeading:
			pt := p.SubHeaderFontPt
			if s.Level > 2 {
				pt = p.BaseFontPt + 1
			}
			block := g.textBlock(name, layout.KindHeader, s.Text, pt, true, 0, colorText)
			block.Split = nil
			block.KeepWithNext = 2 * g.lineHeight(p.BaseFontPt)
			retag(block.Elements, RoleHeading)
			if err := g.place(block); err != nil {
				return err
			}

		case htmldoc.SectionListItem:
			indent := float64(listIndentMm * (s.Level + 1))
			block := g.textBlock(name, layout.KindList, s.Prefix()+s.Text, p.BaseFontPt, false, indent, colorText)
			if err := g.pager.Flow(block); err != nil {
				return err
			}
			continue

		case htmldoc.SectionQuote:
			block := g.textBlock(name, layout.KindText, s.Text, p.BaseFontPt, false, 2*listIndentMm, colorMuted)
			if err := g.pager.Flow(block); err != nil {
				return err
			}

		default:
			block := g.textBlock(name, layout.KindText, s.Text, p.BaseFontPt, false, 0, colorText)
			if err := g.pager.Flow(block); err != nil {
				return err
			}
		}
		g.pager.Advance(gap)
	}
	return nil
}

func isHTML(body string) bool {
	return format.DetectFromMagic([]byte(strings.TrimSpace(body))) == format.HTML
}

// retag sets the role of text elements.
func retag(elems []model.Element, role string) {
	for _, e := range elems {
		if t, ok := e.(*model.Text); ok {
			if t.Attrs == nil {
				t.Attrs = model.Attrs{}
			}
			t.Attrs[model.AttrRole] = role
		}
	}
}
