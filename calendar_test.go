package patro

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/tsawler/patro/assets"
	"github.com/tsawler/patro/bsdate"
	"github.com/tsawler/patro/content"
	"github.com/tsawler/patro/font"
	"github.com/tsawler/patro/layout"
	"github.com/tsawler/patro/model"
	"github.com/tsawler/patro/paper"
	"github.com/tsawler/patro/render"
)

var fixedToday = time.Date(2024, 4, 20, 9, 0, 0, 0, time.UTC)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: 40, G: 120, B: 200, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

// baseCalendar is an offline calendar for a fixed day.
func baseCalendar(fetch map[string][]byte) *CalendarBuilder {
	return Calendar(2081).Today(fixedToday).Fetcher(assets.StaticFetcher(fetch))
}

func byRole(page *model.Page, role string) []model.Element {
	return page.ElementsWithAttr(model.AttrRole, role)
}

func textsByRole(page *model.Page, role string) []string {
	var out []string
	for _, e := range byRole(page, role) {
		if t, ok := e.(*model.Text); ok {
			out = append(out, t.Text)
		}
	}
	return out
}

func allByRole(doc *model.Document, role string) []model.Element {
	var out []model.Element
	for _, p := range doc.Pages {
		out = append(out, byRole(p, role)...)
	}
	return out
}

// bsEventDate returns the ISO AD date of a BS day.
func bsEventDate(day, month, year int) string {
	return bsdate.ToAD(day, month, year).Time.Format("2006-01-02")
}

var moreLabel = regexp.MustCompile(`^\+(\d+) more$`)

func moreCount(t *testing.T, label string) int {
	t.Helper()
	m := moreLabel.FindStringSubmatch(label)
	require.NotNil(t, m, "not a +N more label: %q", label)
	n, err := strconv.Atoi(m[1])
	require.NoError(t, err)
	return n
}

// ============================================================================
// Structure
// ============================================================================

func TestCalendarOneMonthPerPage(t *testing.T) {
	doc, warnings, err := baseCalendar(nil).Paper(paper.A5).Document(context.Background())
	require.NoError(t, err)
	assert.False(t, HasWarning(warnings, WarningAssetUnavailable), "months without themes are not failures")

	require.Equal(t, 12, doc.PageCount())
	assert.Equal(t, "Calendar 2081 BS", doc.Metadata.Title)
	assert.Equal(t, Creator, doc.Metadata.Creator)

	for i, page := range doc.Pages {
		month := i + 1
		assert.Equal(t, []string{fmt.Sprintf("%s 2081", bsdate.MonthName(month))}, textsByRole(page, RoleMonthTitle))

		cells := len(byRole(page, RoleGridCell)) + len(byRole(page, RoleGridBlank))
		assert.Equal(t, 42, cells, "month %d", month)
		assert.Len(t, byRole(page, RoleGridCell), bsdate.MonthLength(month, 2081))

		placeholders := page.ElementsWithAttr(model.AttrPlaceholder, "true")
		assert.Len(t, placeholders, 1, "theme placeholder on month %d", month)
	}
}

func TestCalendarLeadingBlanksMatchWeekday(t *testing.T) {
	doc, _, err := baseCalendar(nil).Months(3).Document(context.Background())
	require.NoError(t, err)

	page := doc.Pages[0]
	want := int(bsdate.ToAD(1, 3, 2081).Time.Weekday())

	var first model.Element
	for _, e := range byRole(page, RoleGridCell) {
		if e.Attr(model.AttrBSDay) == "1" {
			first = e
		}
	}
	require.NotNil(t, first)

	blanksBefore := 0
	for _, e := range byRole(page, RoleGridBlank) {
		b := e.BoundingBox()
		if b.Y < first.BoundingBox().Y || (b.Y == first.BoundingBox().Y && b.X < first.BoundingBox().X) {
			blanksBefore++
		}
	}
	assert.Equal(t, want, blanksBefore)
}

func TestCalendarSaturdayColumn(t *testing.T) {
	doc, _, err := baseCalendar(nil).Months(1).Document(context.Background())
	require.NoError(t, err)
	page := doc.Pages[0]

	saturdays := page.ElementsWithAttr(model.AttrSaturday, "true")
	// Six cells plus the weekday heading.
	require.Len(t, saturdays, 7)
	x := saturdays[len(saturdays)-1].BoundingBox().X
	for _, e := range saturdays {
		if e.Type() == model.ElementTypeRect {
			assert.InDelta(t, x, e.BoundingBox().X, 1e-9)
		}
	}
}

func TestCalendarTodayAndSelected(t *testing.T) {
	selected := bsdate.Date{Year: 2081, Month: 1, Day: 20}
	doc, _, err := baseCalendar(nil).Months(1).Selected(selected).Document(context.Background())
	require.NoError(t, err)
	page := doc.Pages[0]

	today := page.ElementsWithAttr(model.AttrToday, "true")
	require.Len(t, today, 1)
	assert.Equal(t, strconv.Itoa(bsdate.ToBS(fixedToday).Day), today[0].Attr(model.AttrBSDay))

	sel := page.ElementsWithAttr(model.AttrSelected, "true")
	require.Len(t, sel, 1)
	assert.Equal(t, "20", sel[0].Attr(model.AttrBSDay))
}

func TestCalendarFooterOnEveryPage(t *testing.T) {
	doc, _, err := baseCalendar(nil).
		Months(1, 2, 3).
		Contact("Kathmandu Press", "https://example.com/patro").
		Document(context.Background())
	require.NoError(t, err)
	require.Equal(t, 3, doc.PageCount())

	for i, page := range doc.Pages {
		assert.Equal(t, []string{layout.PageLabel(i, 3)}, textsByRole(page, layout.RolePageLabel))
		assert.Len(t, byRole(page, layout.RoleQR), 1)
		assert.Contains(t, textsByRole(page, layout.RoleFooter), "Kathmandu Press")
	}
}

// ============================================================================
// Images
// ============================================================================

func TestCalendarThemePlaceholderKeepsLayout(t *testing.T) {
	theme := content.ThemeImage{Year: 2081, Month: 1, ImageURLs: []string{"theme.png"}}
	ctx := context.Background()

	loaded, lw, err := baseCalendar(map[string][]byte{"theme.png": pngBytes(t, 400, 200)}).
		Months(1).Themes(theme).Document(ctx)
	require.NoError(t, err)
	missing, mw, err := baseCalendar(nil).Months(1).Themes(theme).Document(ctx)
	require.NoError(t, err)

	assert.False(t, HasWarning(lw, WarningAssetUnavailable))
	assert.True(t, HasWarning(mw, WarningAssetUnavailable))

	img := byRole(loaded.Pages[0], RoleThemeImage)
	require.Len(t, img, 1)
	assert.Equal(t, model.ElementTypeImage, img[0].Type())

	ph := byRole(missing.Pages[0], RoleThemeImage)
	require.Len(t, ph, 1)
	assert.Equal(t, model.ElementTypeRect, ph[0].Type())
	assert.Equal(t, "true", ph[0].Attr(model.AttrPlaceholder))

	a := byRole(loaded.Pages[0], RoleGridCell)
	b := byRole(missing.Pages[0], RoleGridCell)
	require.Equal(t, len(a), len(b))
	for i := range a {
		assert.Equal(t, a[i].BoundingBox(), b[i].BoundingBox())
	}
}

func TestCalendarSupplementalImages(t *testing.T) {
	theme := content.ThemeImage{Year: 2081, Month: 1, ImageURLs: []string{"a.png", "b.png", "c.png"}}
	fetch := map[string][]byte{"a.png": pngBytes(t, 300, 200), "b.png": pngBytes(t, 200, 200), "c.png": pngBytes(t, 100, 200)}

	doc, warnings, err := baseCalendar(fetch).Paper(paper.A4).Months(1).Themes(theme).Document(context.Background())
	require.NoError(t, err)
	assert.False(t, HasWarning(warnings, WarningSectionSkipped))
	assert.Len(t, byRole(doc.Pages[0], RoleSupplementalTitle), 1)
	assert.Len(t, byRole(doc.Pages[0], RoleSupplementalImage), 2)
}

func TestCalendarSupplementalSkippedWhenShort(t *testing.T) {
	// The caption line leaves too little room on A5.
	theme := content.ThemeImage{Year: 2081, Month: 1, ImageURLs: []string{"a.png", "missing.png"}, Caption: "Spring"}
	fetch := map[string][]byte{"a.png": pngBytes(t, 300, 200)}

	doc, warnings, err := baseCalendar(fetch).Paper(paper.A5).Months(1).Themes(theme).Document(context.Background())
	require.NoError(t, err)

	assert.True(t, HasWarning(warnings, WarningSectionSkipped))
	assert.False(t, HasWarning(warnings, WarningAssetUnavailable), "a skipped section fetches nothing")
	assert.Empty(t, allByRole(doc, RoleSupplementalTitle))
	assert.Empty(t, allByRole(doc, RoleSupplementalImage))
}

// ============================================================================
// Events
// ============================================================================

func TestCalendarTruncatesEvents(t *testing.T) {
	const total = 14
	date := bsEventDate(5, 1, 2081)
	var events []content.Event
	for i := 0; i < total; i++ {
		events = append(events, content.Event{ID: strconv.Itoa(i), Title: fmt.Sprintf("Event %d", i+1), Date: date})
	}

	doc, _, err := baseCalendar(nil).Paper(paper.A4).Months(1).Events(events...).Document(context.Background())
	require.NoError(t, err)

	t.Run("cell", func(t *testing.T) {
		page := doc.Pages[0]
		shown := len(byRole(page, RoleCellEvent))
		more := textsByRole(page, RoleCellMore)
		require.Len(t, more, 1)
		assert.Equal(t, total, shown+moreCount(t, more[0]))
	})

	t.Run("list", func(t *testing.T) {
		shown := len(allByRole(doc, RoleEvent))
		more := 0
		for _, p := range doc.Pages {
			for _, label := range textsByRole(p, RoleEventsMore) {
				more += moreCount(t, label)
			}
		}
		assert.Greater(t, more, 0, "fourteen lines do not fit under an A4 grid")
		assert.Equal(t, total, shown+more)
	})
}

func TestCalendarEventsBoundToTheirDay(t *testing.T) {
	events := []content.Event{
		{ID: "a", Title: "New Year", Date: bsEventDate(1, 1, 2081)},
		{ID: "b", Title: "Later", Date: bsEventDate(10, 1, 2081)},
	}
	doc, _, err := baseCalendar(nil).Months(1).Events(events...).Document(context.Background())
	require.NoError(t, err)
	page := doc.Pages[0]

	cellOf := func(bsDay string) model.BBox {
		for _, e := range byRole(page, RoleGridCell) {
			if e.Attr(model.AttrBSDay) == bsDay {
				return e.BoundingBox()
			}
		}
		t.Fatalf("no cell for day %s", bsDay)
		return model.BBox{}
	}

	for _, e := range byRole(page, RoleCellEvent) {
		tx := e.(*model.Text)
		want := map[string]string{"New Year": "1", "Later": "10"}[tx.Text]
		require.NotEmpty(t, want, tx.Text)
		assert.True(t, cellOf(want).Contains(model.Point{X: tx.BBox.X, Y: tx.BBox.Y}), tx.Text)
	}
	assert.Len(t, byRole(page, RoleEvent), 2)
}

func TestCalendarEventsAppearOnce(t *testing.T) {
	events := []content.Event{
		{ID: "jul", Title: "July first", Date: "2024-07-01"},
		{ID: "dec", Title: "Year end", Date: "2024-12-30"},
	}
	jul := bsdate.ToBS(time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC))
	dec := bsdate.ToBS(time.Date(2024, 12, 30, 0, 0, 0, 0, time.UTC))

	doc, warnings, err := baseCalendar(nil).Months(jul.Month, dec.Month).Events(events...).Document(context.Background())
	require.NoError(t, err)

	listed := map[string]int{}
	for _, e := range allByRole(doc, RoleEvent) {
		for _, ev := range events {
			if strings.HasSuffix(e.(*model.Text).Text, ": "+ev.Title) {
				listed[ev.Title]++
			}
		}
	}
	unplaced := map[string]int{}
	for _, w := range warnings {
		if w.Kind != WarningEventUnplaced {
			continue
		}
		for _, ev := range events {
			if strings.Contains(w.Message, ev.Title) {
				unplaced[ev.Title]++
			}
		}
	}

	for _, ev := range events {
		assert.Equal(t, 1, listed[ev.Title]+unplaced[ev.Title], ev.Title)
	}
	assert.Zero(t, listed["Year end"])
	assert.Equal(t, 1, unplaced["Year end"])
}

func TestCalendarUnparsedEvents(t *testing.T) {
	events := []content.Event{{ID: "x", Title: "Someday", Date: "soon"}}
	doc, warnings, err := baseCalendar(nil).Months(1).Events(events...).Document(context.Background())
	require.NoError(t, err)
	assert.True(t, HasWarning(warnings, WarningEventUnparsed))
	assert.Empty(t, allByRole(doc, RoleCellEvent))
}

// ============================================================================
// Fonts
// ============================================================================

func TestCalendarFallbackFont(t *testing.T) {
	events := []content.Event{{ID: "d", Title: "दशैं", Date: bsEventDate(3, 1, 2081)}}

	t.Run("registered", func(t *testing.T) {
		doc, warnings, err := baseCalendar(nil).Months(1).Events(events...).FallbackFont(goregular.TTF).Document(context.Background())
		require.NoError(t, err)
		assert.False(t, HasWarning(warnings, WarningFontUnavailable))

		cell := byRole(doc.Pages[0], RoleCellEvent)
		require.Len(t, cell, 1)
		assert.Equal(t, string(font.Fallback), cell[0].(*model.Text).Font)

		title := byRole(doc.Pages[0], RoleMonthTitle)
		assert.Equal(t, string(font.BaseBold), title[0].(*model.Text).Font)
	})

	t.Run("placeholder payload", func(t *testing.T) {
		doc, warnings, err := baseCalendar(nil).Months(1).Events(events...).FallbackFont([]byte("TODO")).Document(context.Background())
		require.NoError(t, err)
		assert.True(t, HasWarning(warnings, WarningFontUnavailable))

		cell := byRole(doc.Pages[0], RoleCellEvent)
		require.Len(t, cell, 1)
		assert.Equal(t, string(font.Base), cell[0].(*model.Text).Font)
	})
}

// ============================================================================
// Builder and output
// ============================================================================

func TestCalendarInvalidInput(t *testing.T) {
	_, _, err := Calendar(0).Document(context.Background())
	assert.ErrorIs(t, err, ErrInvalidYear)

	_, _, err = Calendar(2081).Months(1, 13).Document(context.Background())
	assert.ErrorIs(t, err, ErrInvalidMonth)
}

func TestCalendarBuilderIsImmutable(t *testing.T) {
	base := baseCalendar(nil).Paper(paper.A5)
	first := base.Months(1)
	second := base.Months(2)

	a := MustDocument(first.Document(context.Background()))
	b := MustDocument(second.Document(context.Background()))
	all := MustDocument(base.Document(context.Background()))

	assert.Equal(t, []string{"Baishakh 2081"}, textsByRole(a.Pages[0], RoleMonthTitle))
	assert.Equal(t, []string{"Jestha 2081"}, textsByRole(b.Pages[0], RoleMonthTitle))
	assert.Equal(t, 12, all.PageCount())
}

func TestCalendarIsDeterministic(t *testing.T) {
	events := []content.Event{
		{ID: "1", Title: "Festival", Date: bsEventDate(7, 6, 2081)},
		{ID: "2", Title: "Market day", Date: bsEventDate(7, 6, 2081), Time: "10:00"},
	}
	b := baseCalendar(nil).Paper(paper.A4).Events(events...)

	first := MustDocument(b.Document(context.Background()))
	second := MustDocument(b.Document(context.Background()))

	require.Equal(t, first.PageCount(), second.PageCount())
	for i := range first.Pages {
		require.Equal(t, len(first.Pages[i].Elements), len(second.Pages[i].Elements), "page %d", i+1)
		for j := range first.Pages[i].Elements {
			assert.Equal(t, first.Pages[i].Elements[j].BoundingBox(), second.Pages[i].Elements[j].BoundingBox())
		}
	}
	assert.Equal(t, first.ExtractText(), second.ExtractText())
}

func TestCalendarCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, _, err := baseCalendar(nil).Document(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestCalendarRenderToRecorder(t *testing.T) {
	rec := render.NewRecorder()
	doc, _, err := baseCalendar(nil).Months(1, 2).Render(context.Background(), rec)
	require.NoError(t, err)
	assert.Equal(t, doc.PageCount(), rec.Pages())
	assert.Contains(t, rec.Texts(2), "Jestha 2081")
}

func TestCalendarWritePDF(t *testing.T) {
	var buf bytes.Buffer
	_, err := baseCalendar(nil).Paper(paper.A5).Months(1).Contact("", "https://example.com").Write(context.Background(), &buf)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))
}

func TestCalendarSavePDF(t *testing.T) {
	name := filepath.Join(t.TempDir(), "calendar.pdf")
	_, err := baseCalendar(nil).Months(1).FallbackFont(goregular.TTF).Save(context.Background(), name)
	require.NoError(t, err)

	data, err := os.ReadFile(name)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF-")))
}
