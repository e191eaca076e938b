package layout

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/tsawler/patro/model"
	"github.com/tsawler/patro/paper"
)

var (
	// ErrLayoutOverflow marks a block taller than a whole usable page.
	ErrLayoutOverflow = errors.New("layout: block taller than page")
	// ErrFinished is returned when placing into a finished pager.
	ErrFinished = errors.New("layout: pager already finished")
)

// epsilon absorbs floating point noise when comparing heights.
const epsilon = 1e-6

// State is the pager's position in its lifecycle.
type State int

const (
	StateIdle State = iota
	StatePlacing
	StatePageBreakCheck
	StateNewPage
	StateFinalizing
	StateDone
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StatePlacing:
		return "placing"
	case StatePageBreakCheck:
		return "page-break-check"
	case StateNewPage:
		return "new-page"
	case StateFinalizing:
		return "finalizing"
	default:
		return "done"
	}
}

// Cursor is the vertical write position on the current page.
type Cursor struct {
	Y         float64
	PageIndex int
}

// WarningKind classifies layout warnings.
type WarningKind int

const (
	// WarningOverflow reports a block that had to be split or clipped.
	WarningOverflow WarningKind = iota
	// WarningSkipped reports an optional block that did not fit.
	WarningSkipped
)

// Warning is a non-fatal layout problem.
type Warning struct {
	Kind    WarningKind
	Page    int // 1-indexed
	Block   string
	Message string
	Err     error
}

// Stamper decorates finished pages once the page count is known.
type Stamper interface {
	Stamp(page *model.Page, index, total int)
}

// StamperFunc adapts a function to Stamper.
type StamperFunc func(page *model.Page, index, total int)

// Stamp implements Stamper.
func (f StamperFunc) Stamp(page *model.Page, index, total int) { f(page, index, total) }

// PagerConfig holds the optional settings of a Pager.
type PagerConfig struct {
	Metadata model.Metadata
	Logger   *zap.Logger
}

// DefaultPagerConfig returns a config with a fresh document ID and logging
// disabled.
func DefaultPagerConfig() PagerConfig {
	return PagerConfig{
		Metadata: model.NewDocument().Metadata,
		Logger:   zap.NewNop(),
	}
}

// Pager places blocks top to bottom, opening pages as space runs out. One
// Pager serves one document and is not safe for concurrent use.
type Pager struct {
	profile paper.Profile
	doc     *model.Document
	page    *model.Page
	cursor  Cursor
	state   State

	// fresh is true while the current page holds nothing but chrome.
	fresh  bool
	chrome []Block

	warnings []Warning
	logger   *zap.Logger
}

// NewPager creates a pager with the default configuration.
func NewPager(profile paper.Profile) *Pager {
	return NewPagerWithConfig(profile, DefaultPagerConfig())
}

// NewPagerWithConfig creates a pager with a custom configuration.
func NewPagerWithConfig(profile paper.Profile, config PagerConfig) *Pager {
	logger := config.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	doc := &model.Document{Metadata: config.Metadata, Pages: make([]*model.Page, 0)}
	return &Pager{
		profile: profile,
		doc:     doc,
		state:   StateIdle,
		logger:  logger,
	}
}

// Profile returns the paper profile the pager lays out for.
func (p *Pager) Profile() paper.Profile { return p.profile }

// State returns the current lifecycle state.
func (p *Pager) State() State { return p.state }

// Cursor returns the current write position.
func (p *Pager) Cursor() Cursor { return p.cursor }

// PageCount returns the number of pages opened so far.
func (p *Pager) PageCount() int { return len(p.doc.Pages) }

// Warnings returns the warnings recorded so far.
func (p *Pager) Warnings() []Warning { return p.warnings }

// SetChrome sets the blocks repeated at the top of every page opened from
// now on. Pass nothing to clear it.
func (p *Pager) SetChrome(blocks ...Block) {
	p.chrome = append([]Block(nil), blocks...)
}

// Remaining returns the vertical space left above the footer band. Before
// the first page is opened it is a full usable page.
func (p *Pager) Remaining() float64 {
	if p.page == nil {
		return p.profile.UsableHeight()
	}
	r := p.profile.UsableBottom() - p.cursor.Y
	if r < 0 {
		return 0
	}
	return r
}

// Fits reports whether block, with its KeepWithNext reserve, fits in the
// remaining space of the current page.
func (p *Pager) Fits(block Block) bool {
	return block.Height+block.KeepWithNext <= p.Remaining()+epsilon
}

// NewPage closes the current page and opens the next one, placing the
// chrome blocks at its top.
func (p *Pager) NewPage() error {
	if p.state >= StateFinalizing {
		return ErrFinished
	}
	p.state = StateNewPage

	page := model.NewPage(p.profile.WidthMm, p.profile.HeightMm)
	p.doc.AddPage(page)
	p.page = page
	p.cursor = Cursor{Y: p.profile.MarginMm, PageIndex: len(p.doc.Pages) - 1}

	for _, c := range p.chrome {
		p.draw(c)
	}
	p.fresh = true
	p.state = StatePlacing

	p.logger.Debug("page opened",
		zap.Int("page", page.Number),
		zap.Int("chrome", len(p.chrome)),
	)
	return nil
}

// Place puts block on the current page, or on a new page when it does not
// fit. It returns false when an optional block was skipped.
func (p *Pager) Place(block Block) (bool, error) {
	if p.state >= StateFinalizing {
		return false, ErrFinished
	}
	if p.page == nil {
		if err := p.NewPage(); err != nil {
			return false, err
		}
	}

	p.state = StatePageBreakCheck
	defer func() {
		if p.state == StatePageBreakCheck {
			p.state = StatePlacing
		}
	}()

	if p.Fits(block) {
		p.draw(block)
		return true, nil
	}

	if block.Optional {
		p.warn(WarningSkipped, block, nil, fmt.Sprintf("%s section skipped: needs %.1fmm, %.1fmm left",
			block.Name, block.Height+block.KeepWithNext, p.Remaining()))
		return false, nil
	}

	// A fresh page only has to hold the block itself.
	if p.fresh && block.Height <= p.Remaining()+epsilon {
		p.draw(block)
		return true, nil
	}

	if block.Height > p.profile.UsableHeight()+epsilon {
		p.overflow(block)
		return true, nil
	}

	if err := p.NewPage(); err != nil {
		return false, err
	}
	if block.Height > p.Remaining()+epsilon {
		// Only possible when chrome eats into the page.
		p.overflow(block)
		return true, nil
	}
	p.draw(block)
	return true, nil
}

// Flow places block like Place, except that a splittable block that does
// not fit is split at the bottom of the current page and continued on the
// next one instead of moving whole.
func (p *Pager) Flow(block Block) error {
	if block.Split == nil || block.Optional {
		_, err := p.Place(block)
		return err
	}
	if p.state >= StateFinalizing {
		return ErrFinished
	}
	if p.page == nil {
		if err := p.NewPage(); err != nil {
			return err
		}
	}

	rest := block
	for !p.Fits(rest) {
		p.state = StatePageBreakCheck
		if rest.Split == nil {
			_, err := p.Place(rest)
			return err
		}
		head, tail, ok := rest.Split(p.Remaining())
		if !ok || head.Height <= 0 {
			if p.fresh {
				// Not even one row fits on an empty page.
				_, err := p.Place(rest)
				return err
			}
			if err := p.NewPage(); err != nil {
				return err
			}
			continue
		}
		p.draw(head)
		if tail.Height <= 0 {
			return nil
		}
		if err := p.NewPage(); err != nil {
			return err
		}
		rest = tail
	}
	p.draw(rest)
	return nil
}

// Advance moves the cursor down by dy without placing anything. The cursor
// never passes the bottom of the usable area.
func (p *Pager) Advance(dy float64) {
	if p.page == nil || dy <= 0 {
		return
	}
	p.cursor.Y += dy
	if p.cursor.Y > p.profile.UsableBottom() {
		p.cursor.Y = p.profile.UsableBottom()
	}
}

// Finish runs the stamper over every page with the final page count and
// returns the finished document. The pager cannot be used afterwards.
func (p *Pager) Finish(stamper Stamper) (*model.Document, []Warning) {
	if p.state == StateDone {
		return p.doc, p.warnings
	}
	p.state = StateFinalizing
	total := len(p.doc.Pages)
	if stamper != nil {
		for i, page := range p.doc.Pages {
			stamper.Stamp(page, i, total)
		}
	}
	p.state = StateDone
	p.logger.Debug("layout finished", zap.Int("pages", total), zap.Int("warnings", len(p.warnings)))
	return p.doc, p.warnings
}

// overflow handles a block taller than a page: split it across pages when
// possible, otherwise clip it to one fresh page.
func (p *Pager) overflow(block Block) {
	p.warn(WarningOverflow, block, ErrLayoutOverflow, fmt.Sprintf("%s is %.1fmm tall, usable page height is %.1fmm",
		block.Name, block.Height, p.profile.UsableHeight()))

	rest := block
	for rest.Split != nil && rest.Height > p.Remaining()+epsilon {
		head, tail, ok := rest.Split(p.Remaining())
		if !ok || head.Height <= 0 {
			if p.fresh {
				break
			}
			_ = p.NewPage()
			continue
		}
		p.draw(head)
		_ = p.NewPage()
		rest = tail
	}

	if rest.Height <= p.Remaining()+epsilon {
		p.draw(rest)
		return
	}
	if !p.fresh {
		_ = p.NewPage()
	}
	p.drawClipped(rest)
}

func (p *Pager) draw(block Block) {
	p.state = StatePlacing
	for _, e := range block.Elements {
		p.page.AddElement(e.Shift(p.cursor.Y))
	}
	p.cursor.Y += block.Height
	if block.Kind != KindSpacer || len(block.Elements) > 0 {
		p.fresh = false
	}
}

// drawClipped places the part of block that fits above the footer band.
func (p *Pager) drawClipped(block Block) {
	p.state = StatePlacing
	bottom := p.profile.UsableBottom()
	dropped := 0
	for _, e := range block.Elements {
		shifted := e.Shift(p.cursor.Y)
		if shifted.BoundingBox().Bottom() > bottom+epsilon {
			dropped++
			continue
		}
		p.page.AddElement(shifted)
	}
	p.cursor.Y = bottom
	p.fresh = false
	p.logger.Warn("block clipped to page",
		zap.String("block", block.Name),
		zap.Int("page", p.page.Number),
		zap.Int("dropped_elements", dropped),
	)
}

func (p *Pager) warn(kind WarningKind, block Block, err error, msg string) {
	page := 0
	if p.page != nil {
		page = p.page.Number
	}
	p.warnings = append(p.warnings, Warning{
		Kind:    kind,
		Page:    page,
		Block:   block.Name,
		Message: msg,
		Err:     err,
	})
	p.logger.Warn(msg, zap.String("block", block.Name), zap.Stringer("kind", block.Kind), zap.Int("page", page))
}
