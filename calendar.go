package patro

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/tsawler/patro/assets"
	"github.com/tsawler/patro/bsdate"
	"github.com/tsawler/patro/content"
	"github.com/tsawler/patro/layout"
	"github.com/tsawler/patro/model"
	"github.com/tsawler/patro/monthgrid"
	"github.com/tsawler/patro/paper"
	"github.com/tsawler/patro/render"
	"github.com/tsawler/patro/text"
)

// Element roles used in calendar documents.
const (
	RoleMonthTitle        = "month-title"
	RoleMonthSpan         = "month-span"
	RoleThemeImage        = "theme-image"
	RoleCaption           = "caption"
	RoleWeekday           = "weekday"
	RoleGridCell          = "grid-cell"
	RoleGridBlank         = "grid-blank"
	RoleDayNumber         = "day-number"
	RoleADDay             = "ad-day"
	RoleCellEvent         = "cell-event"
	RoleCellMore          = "cell-more"
	RoleSupplementalTitle = "supplemental-title"
	RoleSupplementalImage = "supplemental-image"
	RoleEventsTitle       = "events-title"
	RoleEvent             = "event"
	RoleEventsMore        = "events-more"
)

// maxSupplementalImages caps the image row of the supplemental section.
const maxSupplementalImages = 4

var weekdayNames = [7]string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"}

// CalendarBuilder configures a calendar for one BS year. Every method
// returns a new builder and leaves the receiver unchanged, so a partly
// configured builder can be reused.
type CalendarBuilder struct {
	year     int
	months   []int
	events   []content.Event
	themes   []content.ThemeImage
	today    time.Time
	selected *bsdate.Date

	options options
}

// Calendar starts a calendar for the BS year.
//
// Example:
//
//	warnings, err := patro.Calendar(2081).
//	    Paper(paper.A4).
//	    Events(events...).
//	    Save(ctx, "2081.pdf")
func Calendar(year int) *CalendarBuilder {
	return &CalendarBuilder{
		year:    year,
		options: defaultOptions(),
	}
}

func (b *CalendarBuilder) clone() *CalendarBuilder {
	c := *b
	c.months = append([]int(nil), b.months...)
	c.events = append([]content.Event(nil), b.events...)
	c.themes = append([]content.ThemeImage(nil), b.themes...)
	if b.selected != nil {
		sel := *b.selected
		c.selected = &sel
	}
	c.options = b.options.clone()
	return &c
}

// ============================================================================
// Options
// ============================================================================

// Paper sets the paper size. Unknown sizes use the smallest profile.
func (b *CalendarBuilder) Paper(size paper.Size) *CalendarBuilder {
	c := b.clone()
	c.options.paper = size
	return c
}

// Title overrides the document title.
func (b *CalendarBuilder) Title(title string) *CalendarBuilder {
	c := b.clone()
	c.options.title = title
	return c
}

// Events adds events. Multiple calls are cumulative.
func (b *CalendarBuilder) Events(events ...content.Event) *CalendarBuilder {
	c := b.clone()
	c.events = append(c.events, events...)
	return c
}

// Themes adds theme image records. Multiple calls are cumulative.
func (b *CalendarBuilder) Themes(themes ...content.ThemeImage) *CalendarBuilder {
	c := b.clone()
	c.themes = append(c.themes, themes...)
	return c
}

// Today sets the day highlighted as today. The default is the time of
// generation.
func (b *CalendarBuilder) Today(t time.Time) *CalendarBuilder {
	c := b.clone()
	c.today = t
	return c
}

// Selected highlights a BS date.
func (b *CalendarBuilder) Selected(d bsdate.Date) *CalendarBuilder {
	c := b.clone()
	c.selected = &d
	return c
}

// Months restricts the calendar to the given months, in the given order.
// The default is all twelve.
func (b *CalendarBuilder) Months(months ...int) *CalendarBuilder {
	c := b.clone()
	c.months = append([]int(nil), months...)
	return c
}

// Fetcher sets how theme images are fetched. The default handles http(s),
// file and data references.
func (b *CalendarBuilder) Fetcher(f assets.Fetcher) *CalendarBuilder {
	c := b.clone()
	c.options.fetcher = f
	return c
}

// FallbackFont sets a TrueType payload used for non-Latin runs.
func (b *CalendarBuilder) FallbackFont(payload []byte) *CalendarBuilder {
	c := b.clone()
	c.options.fontPayload = payload
	return c
}

// Contact sets the footer contact line. A non-empty url is also encoded as
// a QR code in every footer.
func (b *CalendarBuilder) Contact(text, url string) *CalendarBuilder {
	c := b.clone()
	c.options.contactText = text
	c.options.contactURL = url
	return c
}

// Measurer sets the text measurer. By default the output surface measures
// when it can, otherwise built-in metrics are used.
func (b *CalendarBuilder) Measurer(m text.Measurer) *CalendarBuilder {
	c := b.clone()
	c.options.measurer = m
	return c
}

// Logger sets the logger. The default discards everything.
func (b *CalendarBuilder) Logger(l *zap.Logger) *CalendarBuilder {
	c := b.clone()
	c.options.logger = l
	return c
}

// ============================================================================
// Terminal operations
// ============================================================================

// Document lays out the calendar and returns it without rendering.
func (b *CalendarBuilder) Document(ctx context.Context) (*model.Document, []Warning, error) {
	return b.build(ctx, nil)
}

// Render lays out the calendar and draws it onto s.
func (b *CalendarBuilder) Render(ctx context.Context, s render.Surface) (*model.Document, []Warning, error) {
	return renderTo(ctx, b.build, s)
}

// Save writes the calendar as a PDF file.
func (b *CalendarBuilder) Save(ctx context.Context, filename string) ([]Warning, error) {
	return savePDF(ctx, b.options, b.build, filename)
}

// Write writes the calendar as PDF to w.
func (b *CalendarBuilder) Write(ctx context.Context, w io.Writer) ([]Warning, error) {
	return writePDF(ctx, b.options, b.build, w)
}

func (b *CalendarBuilder) monthList() []int {
	if len(b.months) == 0 {
		return []int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12}
	}
	return b.months
}

func (b *CalendarBuilder) validate() error {
	if b.year <= 0 {
		return errInvalid(ErrInvalidYear, "%d", b.year)
	}
	for _, m := range b.monthList() {
		if m < 1 || m > 12 {
			return errInvalid(ErrInvalidMonth, "%d", m)
		}
	}
	return nil
}

func (b *CalendarBuilder) title() string {
	if b.options.title != "" {
		return b.options.title
	}
	return fmt.Sprintf("Calendar %d BS", b.year)
}

func (b *CalendarBuilder) build(ctx context.Context, surface any) (*model.Document, []Warning, error) {
	if err := b.validate(); err != nil {
		return nil, nil, err
	}

	meta := model.NewDocument().Metadata
	meta.Title = b.title()
	first, last := bsdate.YearSpan(b.year)
	meta.Subject = fmt.Sprintf("BS %d, %s to %s AD", b.year,
		first.Time.Format("2 Jan 2006"), last.Time.Format("2 Jan 2006"))
	meta.Keywords = "calendar, bikram sambat"

	g := newGeneration(ctx, b.options, meta, surface)
	for _, e := range b.events {
		if _, err := e.ADDate(); err != nil {
			g.warn(WarningEventUnparsed, 0, err, "event %q not placed", e.Title)
		}
	}

	today := b.today
	if today.IsZero() {
		today = time.Now()
	}

	cl := &calendarLayout{g: g, b: b, today: today}
	for _, month := range b.monthList() {
		if err := g.checkContext(); err != nil {
			return nil, g.warnings, err
		}
		if err := cl.month(month); err != nil {
			return nil, g.warnings, err
		}
	}

	doc, warnings := g.finish(meta.Title)
	return doc, warnings, nil
}

// calendarLayout turns months into blocks.
type calendarLayout struct {
	g     *generation
	b     *CalendarBuilder
	today time.Time
}

func (c *calendarLayout) month(month int) error {
	g := c.g
	grid := monthgrid.Build(month, c.b.year, c.b.events, c.today, c.b.selected)

	header := c.header(grid)
	g.pager.SetChrome(header)
	if err := g.pager.NewPage(); err != nil {
		return err
	}
	g.logger.Debug("month started",
		zap.Int("month", month),
		zap.Int("page", g.page()),
		zap.Int("events", grid.EventCount()),
	)
	for _, e := range grid.Unplaced {
		g.warn(WarningEventUnplaced, g.page(), bsdate.ErrInexact,
			"event %q on %s has no %s cell", e.Title, e.Date, bsdate.MonthName(month))
	}

	if grid.Approximate() {
		n := 0
		for _, cell := range grid.DayCells() {
			if cell.Approximate {
				n++
			}
		}
		g.warn(WarningConversionImprecision, g.page(), bsdate.ErrInexact,
			"%s %d: %d day(s) have approximate AD dates", bsdate.MonthName(month), c.b.year, n)
	}

	theme, hasTheme := content.ThemeFor(c.b.themes, c.b.year, month)
	if err := g.place(c.themeBlock(month, theme)); err != nil {
		return err
	}
	if err := g.place(c.gridBlock(grid)); err != nil {
		return err
	}
	if hasTheme && len(theme.Secondary()) > 0 {
		if err := c.supplemental(month, theme); err != nil {
			return err
		}
	}
	return c.eventList(grid, header.Height)
}

// header is the repeating month title with the AD span below it.
func (c *calendarLayout) header(grid monthgrid.Grid) layout.Block {
	g := c.g
	p := g.profile
	titleH := g.lineHeight(p.HeaderFontPt)
	spanH := g.lineHeight(p.SubHeaderFontPt)
	width := p.ContentWidth()

	title := fmt.Sprintf("%s %d", bsdate.MonthName(grid.Month), grid.Year)
	first, last := grid.Span()
	span := fmt.Sprintf("%s to %s", first.Format("2 Jan 2006"), last.Format("2 Jan 2006"))
	if grid.Approximate() {
		span += " (approximate)"
	}

	return layout.Block{
		Name:   "header",
		Kind:   layout.KindHeader,
		Height: titleH + spanH + 2,
		Elements: []model.Element{
			g.label(title, model.NewBBox(p.MarginMm, 0, width, titleH), p.HeaderFontPt, true,
				model.TextStyle{Color: colorText, Align: model.AlignCenter}, RoleMonthTitle),
			g.label(span, model.NewBBox(p.MarginMm, titleH, width, spanH), p.SubHeaderFontPt, false,
				model.TextStyle{Color: colorMuted, Align: model.AlignCenter}, RoleMonthSpan),
		},
	}
}

// themeBlock is the month's theme image, or a placeholder of the same
// height when there is none or it fails to load.
func (c *calendarLayout) themeBlock(month int, theme content.ThemeImage) layout.Block {
	g := c.g
	p := g.profile
	box := model.NewBBox(p.MarginMm, 0, p.ContentWidth(), p.ThemeImageHeightMm)

	alt := theme.Caption
	if alt == "" {
		alt = bsdate.MonthName(month)
	}
	elems := []model.Element{g.image(theme.Primary(), box, alt, RoleThemeImage)}
	height := p.ThemeImageHeightMm + 2

	if theme.Caption != "" {
		lh := g.lineHeight(p.BaseFontPt)
		caption := g.ellipsize(theme.Caption, p.ContentWidth(), p.BaseFontPt, false)
		elems = append(elems, g.label(caption, model.NewBBox(p.MarginMm, p.ThemeImageHeightMm+1, p.ContentWidth(), lh),
			p.BaseFontPt, false, model.TextStyle{Color: colorMuted, Align: model.AlignCenter}, RoleCaption))
		height += lh
	}
	return layout.Block{Name: "theme", Kind: layout.KindImage, Height: height, Elements: elems}
}

// gridBlock is the weekday header row followed by the 6x7 day cells.
func (c *calendarLayout) gridBlock(grid monthgrid.Grid) layout.Block {
	g := c.g
	p := g.profile
	size := p.GridCellMm
	x0 := p.MarginMm + (p.ContentWidth()-monthgrid.Columns*size)/2
	headH := g.lineHeight(p.BaseFontPt)

	var elems []model.Element
	for col, name := range weekdayNames {
		style := model.TextStyle{Color: colorText, Align: model.AlignCenter}
		if col == monthgrid.SaturdayColumn {
			style.Color = colorSaturday
		}
		t := g.label(name, model.NewBBox(x0+float64(col)*size, 0, size, headH), p.BaseFontPt, true, style, RoleWeekday)
		if col == monthgrid.SaturdayColumn {
			t.Attrs[model.AttrSaturday] = "true"
		}
		elems = append(elems, t)
	}

	top := headH + 0.5
	for r, row := range grid.Rows() {
		for col, cell := range row {
			elems = append(elems, c.cell(cell, x0+float64(col)*size, top+float64(r)*size, size)...)
		}
	}

	return layout.Block{
		Name:     "grid",
		Kind:     layout.KindGrid,
		Height:   top + monthgrid.RowCount*size + 2,
		Elements: elems,
	}
}

func (c *calendarLayout) cell(cell monthgrid.Cell, x, y, size float64) []model.Element {
	g := c.g
	p := g.profile

	stroke := colorRule
	rect := &model.Rect{
		BBox:      model.NewBBox(x, y, size, size),
		Stroke:    &stroke,
		LineWidth: 0.2,
		Attrs:     model.Attrs{model.AttrRole: RoleGridCell},
	}
	if cell.IsSaturday {
		rect.Attrs[model.AttrSaturday] = "true"
	}
	if cell.Kind == monthgrid.Blank {
		rect.Attrs[model.AttrRole] = RoleGridBlank
		return []model.Element{rect}
	}

	rect.Attrs[model.AttrBSDay] = strconv.Itoa(cell.BSDay)
	switch {
	case cell.IsToday:
		fill := colorTodayBg
		rect.Fill = &fill
		rect.Attrs[model.AttrToday] = "true"
	case cell.IsSaturday:
		fill := colorSaturdayBg
		rect.Fill = &fill
	}
	if cell.IsSelected {
		sel := colorSelected
		rect.Stroke = &sel
		rect.LineWidth = 0.6
		rect.Attrs[model.AttrSelected] = "true"
	}
	if cell.Approximate {
		rect.Attrs[model.AttrApprox] = "true"
	}

	const pad = 1.0
	dayPt := p.SubHeaderFontPt
	smallPt := p.BaseFontPt * 0.8
	dayH := g.lineHeight(dayPt)
	smallH := g.lineHeight(smallPt)
	inner := size - 2*pad

	numStyle := model.TextStyle{Color: colorText}
	if cell.IsSaturday {
		numStyle.Color = colorSaturday
	}
	adLabel := cell.AD.Format("2")
	if cell.BSDay == 1 || cell.AD.Day() == 1 {
		adLabel = cell.AD.Format("Jan 2")
	}
	if cell.Approximate {
		adLabel = "~" + adLabel
	}

	elems := []model.Element{
		rect,
		g.label(strconv.Itoa(cell.BSDay), model.NewBBox(x+pad, y+pad/2, inner/2, dayH), dayPt, true, numStyle, RoleDayNumber),
		g.label(adLabel, model.NewBBox(x+size/2, y+pad/2, inner/2, dayH), smallPt, false,
			model.TextStyle{Color: colorMuted, Align: model.AlignRight}, RoleADDay),
	}

	top := y + pad/2 + dayH
	capacity := int((y + size - pad/2 - top) / smallH)
	shown, more := layout.Truncate(len(cell.Events), capacity)
	for i, e := range cell.Events[:shown] {
		title := g.ellipsize(e.Title, inner, smallPt, false)
		elems = append(elems, g.label(title, model.NewBBox(x+pad, top+float64(i)*smallH, inner, smallH), smallPt, false,
			model.TextStyle{Color: colorText}, RoleCellEvent))
	}
	if more > 0 {
		elems = append(elems, g.label(layout.MoreLabel(more), model.NewBBox(x+pad, top+float64(shown)*smallH, inner, smallH),
			smallPt, false, model.TextStyle{Color: colorMuted}, RoleCellMore))
	}
	return elems
}

// supplemental places the secondary theme images under a title. The section
// is all or nothing: it needs room for its title, the image row and one
// following event line, and is skipped otherwise.
func (c *calendarLayout) supplemental(month int, theme content.ThemeImage) error {
	g := c.g
	p := g.profile
	titleH := g.lineHeight(p.SubHeaderFontPt)
	rowH := p.ThemeImageHeightMm / 3

	shell := layout.Block{
		Name:         "supplemental images",
		Kind:         layout.KindSection,
		Height:       titleH + rowH + 2,
		KeepWithNext: g.lineHeight(p.BaseFontPt),
		Optional:     true,
	}
	if !g.pager.Fits(shell) {
		// Nothing is fetched for a section that will be dropped.
		return g.place(shell)
	}

	refs := theme.Secondary()
	if len(refs) > maxSupplementalImages {
		refs = refs[:maxSupplementalImages]
	}
	const gap = 2.0
	n := float64(len(refs))
	w := (p.ContentWidth() - (n-1)*gap) / n

	title := fmt.Sprintf("More from %s", bsdate.MonthName(month))
	shell.Elements = append(shell.Elements, g.label(title, model.NewBBox(p.MarginMm, 0, p.ContentWidth(), titleH),
		p.SubHeaderFontPt, true, model.TextStyle{Color: colorText}, RoleSupplementalTitle))
	for i, ref := range refs {
		box := model.NewBBox(p.MarginMm+float64(i)*(w+gap), titleH, w, rowH)
		shell.Elements = append(shell.Elements, g.image(ref, box, theme.Caption, RoleSupplementalImage))
	}
	return g.place(shell)
}

// eventList lists the month's events in day order. When the list does not
// fit it is cut short and ends with a "+N more" line. A list that cannot
// show at least one event on the current page starts on a new page.
func (c *calendarLayout) eventList(grid monthgrid.Grid, chromeHeight float64) error {
	g := c.g
	p := g.profile

	var items []string
	for _, cell := range grid.DayCells() {
		for _, e := range cell.Events {
			items = append(items, fmt.Sprintf("%d %s (%s): %s",
				cell.BSDay, bsdate.MonthName(grid.Month), cell.AD.Format("Jan 2"), e.Label()))
		}
	}
	if len(items) == 0 {
		return nil
	}

	pt := p.BaseFontPt
	lh := g.lineHeight(pt)
	titleH := g.lineHeight(p.SubHeaderFontPt)
	width := p.ContentWidth()

	avail := g.pager.Remaining()
	if avail < titleH+2*lh {
		avail = p.UsableHeight() - chromeHeight
	}
	capacity := int((avail - titleH + 1e-6) / lh)
	shown, more := layout.Truncate(len(items), capacity)
	if shown+more == 0 {
		g.warn(WarningLayoutOverflow, g.page(), layout.ErrLayoutOverflow,
			"%s event list: no room for %d events", bsdate.MonthName(grid.Month), len(items))
		return nil
	}

	heading := layout.Block{
		Name:   "events title",
		Kind:   layout.KindHeader,
		Height: titleH,
		Elements: []model.Element{
			g.label("Events", model.NewBBox(p.MarginMm, 0, width, titleH), p.SubHeaderFontPt, true,
				model.TextStyle{Color: colorText}, RoleEventsTitle),
		},
	}

	rows := make([][]model.Element, 0, shown+1)
	for _, item := range items[:shown] {
		line := g.ellipsize(item, width, pt, false)
		rows = append(rows, []model.Element{
			g.label(line, model.NewBBox(p.MarginMm, 0, width, lh), pt, false, model.TextStyle{Color: colorText}, RoleEvent),
		})
	}
	if more > 0 {
		rows = append(rows, []model.Element{
			g.label(layout.MoreLabel(more), model.NewBBox(p.MarginMm, 0, width, lh), pt, false,
				model.TextStyle{Color: colorMuted}, RoleEventsMore),
		})
		g.logger.Debug("event list truncated", zap.Int("month", grid.Month), zap.Int("shown", shown), zap.Int("more", more))
	}

	return g.place(layout.Stack("events", layout.KindList, heading, layout.Lines("event lines", layout.KindList, lh, rows)))
}
